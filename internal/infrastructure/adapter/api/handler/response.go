package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/api/middleware"
)

// StatusCode maps a domain error to the HTTP status returned for it
func StatusCode(err error) int {
	code := domainerr.ErrorCode(err)
	switch {
	case code == domainerr.CodeRegistryClosed:
		return http.StatusServiceUnavailable
	case code >= 5000:
		return http.StatusInternalServerError
	case code >= 4090:
		return http.StatusConflict
	case code >= 4040:
		return http.StatusNotFound
	case code >= 4030:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// writeError renders err; server side failures never leak their message
func writeError(c *gin.Context, logger coreport.Logger, err error) {
	status := StatusCode(err)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", map[string]any{
			"path":       c.FullPath(),
			"request_id": middleware.RequestIDFrom(c),
			"error":      err.Error(),
		})
		if status == http.StatusInternalServerError {
			message = "Internal server error"
		}
	}

	_ = c.Error(err)
	c.JSON(status, dto.ErrorResponse{
		Code:      domainerr.ErrorCode(err),
		Message:   message,
		RequestID: middleware.RequestIDFrom(c),
	})
}

// badRequest renders a malformed request
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:      domainerr.ErrorCode(domainerr.ErrInvalidRequest),
		Message:   message,
		RequestID: middleware.RequestIDFrom(c),
	})
}

// caller reads the calling principal from the request header
func caller(c *gin.Context) (entity.Principal, error) {
	return entity.ParsePrincipal(c.GetHeader(middleware.PrincipalHeader))
}

// loanIDParam parses the loan id path segment
func loanIDParam(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("loanId"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid loan id format")
	}
	return id, nil
}
