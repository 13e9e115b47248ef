package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/valeriaulyamaeva/budget-ledger/internal/auth"
	"github.com/valeriaulyamaeva/budget-ledger/internal/handlers"
	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
)

// SetupRouter builds the owner API. Everything under /api/v1 needs a bearer token.
func SetupRouter(h *handlers.Handler, signer *auth.Signer, allowedOrigins []string, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(handlers.RequestLogger(log), gin.Recovery(), handlers.CORS(allowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(handlers.Auth(signer))

	accounts := api.Group("/accounts")
	accounts.GET("", h.ListAccounts)
	accounts.POST("", h.CreateAccount)
	accounts.GET("/summary", h.AccountsSummary)
	accounts.GET("/integrity", h.Integrity)
	accounts.GET("/:id", h.GetAccount)
	accounts.PUT("/:id", h.UpdateAccount)
	accounts.DELETE("/:id", h.DeleteAccount)
	accounts.POST("/:id/deactivate", h.DeactivateAccount)
	accounts.POST("/:id/fix", h.FixAccount)

	categories := api.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.POST("", h.CreateCategory)

	transactions := api.Group("/transactions")
	transactions.GET("", h.ListTransactions)
	transactions.POST("", h.CreateTransaction)
	transactions.GET("/:id", h.GetTransaction)
	transactions.PUT("/:id", h.UpdateTransaction)
	transactions.DELETE("/:id", h.DeleteTransaction)

	transfers := api.Group("/transfers")
	transfers.GET("", h.ListTransfers)
	transfers.POST("", h.CreateTransfer)
	transfers.GET("/types", handlers.TransferTypes)
	transfers.GET("/types/rules", handlers.TransferRules)
	transfers.GET("/statistics", h.TransferStatistics)
	transfers.GET("/loans", h.Loans)
	transfers.GET("/:id", h.GetTransfer)
	transfers.PUT("/:id", h.UpdateTransfer)
	transfers.DELETE("/:id", h.DeleteTransfer)

	analytics := api.Group("/analytics")
	analytics.GET("/summary", h.Summary)
	analytics.GET("/monthly-trend", h.MonthlyTrend)
	analytics.GET("/by-category", h.ByCategory)
	analytics.GET("/by-account", h.ByAccount)
	analytics.GET("/daily", h.Daily)
	analytics.GET("/year-comparison", h.YearComparison)

	return r
}

// SetupAdminRouter builds the operator router for balance verification and
// repair. It is meant to listen on a private address.
func SetupAdminRouter(rec *ledger.Reconciler, token string, log logrus.FieldLogger) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", handlers.HealthHandler(log)).Methods("GET")

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(handlers.AdminToken(token, log))
	admin.HandleFunc("/users/{user}/integrity", handlers.VerifyOwnerHandler(rec, log)).Methods("GET")
	admin.HandleFunc("/users/{user}/fix", handlers.FixOwnerHandler(rec, log)).Methods("POST")
	admin.HandleFunc("/users/{user}/accounts/{account}/fix", handlers.FixAccountHandler(rec, log)).Methods("POST")

	return r
}
