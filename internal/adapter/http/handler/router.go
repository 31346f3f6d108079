package handler

import (
	"emoney-wallet/internal/adapter/http/middleware"
	"emoney-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	PinSvc         ports.PinService
	AccountSvc     ports.AccountService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	AuditSvc       ports.AuditService   // nil = audit logging disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- Authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	userHandler := NewUserHandler(deps.AccountSvc, deps.ReportingSvc, deps.PinSvc)
	users := v1.Group("/users/me", jwtAuth)
	{
		users.GET("", userHandler.GetProfile)
		users.POST("/kyc", userHandler.RequestKYC)
		users.PUT("/pin", userHandler.SetPin)
	}

	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.ReportingSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance", walletHandler.GetBalance)
		wallets.POST("/deposit", rl("deposits"), walletHandler.Deposit)
		wallets.POST("/transfer", rl("transfers"), walletHandler.Transfer)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", walletHandler.ListTransactions)
		transactions.GET("/records", walletHandler.SearchRecords)
		transactions.GET("/:id", walletHandler.GetTransaction)
	}

	// --- Merchant routes (merchant flag enforced in the ledger service) ---
	merchantHandler := NewMerchantHandler(deps.LedgerSvc, deps.ReportingSvc)
	merchant := v1.Group("/merchant", jwtAuth)
	{
		merchant.POST("/charge", rl("merchant_ops"), merchantHandler.Charge)
		merchant.POST("/refund", rl("merchant_ops"), merchantHandler.Refund)
		merchant.POST("/refund/by-transaction", rl("merchant_ops"), merchantHandler.RefundByTransaction)
		merchant.GET("/records", merchantHandler.Records)
	}

	// --- Admin routes ---
	adminHandler := NewAdminHandler(deps.AccountSvc, deps.PinSvc, deps.ReportingSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.RequireAdmin())
	{
		admin.PUT("/users/:username/kyc", adminHandler.SetKYCStatus)
		admin.PUT("/users/:username/merchant", adminHandler.SetMerchant)
		admin.POST("/users/:username/unlock-pin", adminHandler.UnlockPin)
		admin.GET("/reconcile/:user_id", adminHandler.Reconcile)
	}

	return r
}
