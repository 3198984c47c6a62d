package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/api/dto"
)

const (
	// IdempotencyKeyHeader names the client chosen key of a mutating request
	IdempotencyKeyHeader = "Idempotency-Key"

	// IdempotentReplayHeader marks a response served from the store
	IdempotentReplayHeader = "Idempotent-Replayed"

	// provisionalLockTTL bounds how long an unfinished request holds its key
	provisionalLockTTL = 60 * time.Second

	storeTimeout   = 2 * time.Second
	maxKeyLength   = 128
	idempKeyPrefix = "idemp:loan:"
)

// idempEntry is the stored state of one idempotency key
type idempEntry struct {
	InProgress bool      `json:"in_progress"`
	Code       int       `json:"code"`
	Body       []byte    `json:"body"`
	BodySHA256 string    `json:"body_sha256"`
	RequestID  string    `json:"request_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// bodyRecorder copies the response body while it is written
type bodyRecorder struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.buf.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// Idempotency makes mutating requests carrying an Idempotency-Key safe to
// retry. The first completed response is stored for ttl and replayed for
// repeats with the same body. A repeat with a different body, or one that
// arrives while the first is still running, is answered with 409. Server
// errors release the key so the request can be retried.
func Idempotency(rdb redis.UniversalClient, ttl time.Duration, logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if idemKey == "" {
			c.Next()
			return
		}
		if len(idemKey) > maxKeyLength {
			abortWith(c, http.StatusBadRequest, domainerr.ErrInvalidRequest, "Idempotency-Key is too long")
			return
		}

		var body []byte
		if c.Request.Body != nil {
			var err error
			body, err = io.ReadAll(c.Request.Body)
			if err != nil {
				abortWith(c, http.StatusBadRequest, domainerr.ErrInvalidRequest, "unreadable request body")
				return
			}
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		bhash := bodyHash(body)

		key := buildKey(c.Request.Method, c.Request.URL.Path, callerScope(c), idemKey)
		ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
		defer cancel()

		acquired, err := provisionalSet(ctx, rdb, key, idempEntry{
			InProgress: true,
			BodySHA256: bhash,
			RequestID:  RequestIDFrom(c),
			CreatedAt:  time.Now().UTC(),
		})
		if err != nil {
			logger.Error("Idempotency store unavailable", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
			abortWith(c, http.StatusServiceUnavailable, domainerr.ErrInternalServer, "idempotency store unavailable")
			return
		}

		if !acquired {
			current, err := loadEntry(ctx, rdb, key)
			if err != nil && !errors.Is(err, redis.Nil) {
				logger.Warn("Failed to load idempotency entry", map[string]any{
					"key":   key,
					"error": err.Error(),
				})
			}

			switch {
			case current.BodySHA256 != "" && current.BodySHA256 != bhash:
				abortWith(c, http.StatusConflict, domainerr.ErrDuplicateRequest, "Idempotency-Key reused with a different body")
			case !current.InProgress && current.Code != 0:
				logger.Debug("Replaying idempotent response", map[string]any{
					"key":  key,
					"code": current.Code,
				})
				c.Header(IdempotentReplayHeader, "true")
				c.Data(current.Code, "application/json; charset=utf-8", current.Body)
				c.Abort()
			default:
				abortWith(c, http.StatusConflict, domainerr.ErrDuplicateRequest, "request is already in progress")
			}
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		// the request context may already be done once the handler returns
		storeCtx, storeCancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), storeTimeout)
		defer storeCancel()

		status := rec.Status()
		if status >= http.StatusInternalServerError {
			if err := rdb.Del(storeCtx, key).Err(); err != nil {
				logger.Warn("Failed to release idempotency key", map[string]any{
					"key":   key,
					"error": err.Error(),
				})
			}
			return
		}

		if err := saveFinal(storeCtx, rdb, key, idempEntry{
			Code:       status,
			Body:       rec.buf.Bytes(),
			BodySHA256: bhash,
			RequestID:  RequestIDFrom(c),
			CreatedAt:  time.Now().UTC(),
		}, ttl); err != nil {
			logger.Warn("Failed to store idempotent response", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
}

func abortWith(c *gin.Context, status int, err error, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Code:      domainerr.ErrorCode(err),
		Message:   message,
		RequestID: RequestIDFrom(c),
	})
}

func bodyHash(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

// callerScope reads the principal header the way handlers parse it.
// An absent or invalid header scopes the key to no caller.
func callerScope(c *gin.Context) string {
	principal, err := entity.ParsePrincipal(c.GetHeader(PrincipalHeader))
	if err != nil {
		return ""
	}
	return principal.String()
}

// buildKey scopes a client key to the request path and the caller
func buildKey(method, path, principal, idemKey string) string {
	return idempKeyPrefix + strings.ToLower(method) + ":" + path + ":" + principal + ":" + idemKey
}

func provisionalSet(ctx context.Context, rdb redis.UniversalClient, key string, entry idempEntry) (bool, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func loadEntry(ctx context.Context, rdb redis.UniversalClient, key string) (idempEntry, error) {
	var e idempEntry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return idempEntry{}, err
	}
	return e, nil
}

func saveFinal(ctx context.Context, rdb redis.UniversalClient, key string, entry idempEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, payload, ttl).Err()
}
