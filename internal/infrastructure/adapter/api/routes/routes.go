package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/api/middleware"
)

// Handlers groups the endpoint handlers served by the API
type Handlers struct {
	Loan    *handler.LoanHandler
	Account *handler.AccountHandler
	System  *handler.SystemHandler
}

// SetupRoutes configures all the routes for the API.
// idempotency guards the mutating endpoints and may be nil.
func SetupRoutes(router *gin.Engine, handlers Handlers, idempotency gin.HandlerFunc) {
	mutating := []gin.HandlerFunc{}
	if idempotency != nil {
		mutating = append(mutating, idempotency)
	}

	loanRoutes := router.Group("/loans")
	{
		loanRoutes.GET("", handlers.Loan.ListLoans)
		loanRoutes.GET("/:loanId", handlers.Loan.GetLoan)
		loanRoutes.GET("/:loanId/events", handlers.Loan.ListLoanEvents)

		guarded := loanRoutes.Group("", mutating...)
		guarded.POST("", handlers.Loan.RequestLoan)
		guarded.POST("/:loanId/fund", handlers.Loan.FundLoan)
		guarded.POST("/:loanId/repay", handlers.Loan.RepayLoan)
		guarded.POST("/:loanId/claim", handlers.Loan.ClaimCollateral)
	}

	accountRoutes := router.Group("/accounts")
	{
		accountRoutes.GET("/:principal/balance", handlers.Account.GetBalance)

		guarded := accountRoutes.Group("", mutating...)
		guarded.POST("/:principal/deposit", handlers.Account.Deposit)
		guarded.POST("/:principal/withdraw", handlers.Account.Withdraw)
	}

	router.GET("/clock", handlers.System.Now)
	router.POST("/clock/advance", handlers.System.AdvanceClock)
	router.GET("/health", handlers.System.Health)
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
}
