package handler

import (
	"wine-lot-exchange/internal/adapter/http/middleware"
	redisStore "wine-lot-exchange/internal/adapter/storage/redis"
	"wine-lot-exchange/internal/core/domain"
	"wine-lot-exchange/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	RegistrySvc    ports.RegistryService
	MarketSvc      ports.MarketplaceService
	RedemptionSvc  ports.RedemptionService
	DistributorSvc ports.DistributorService
	WhitelistSvc   ports.WhitelistService
	WalletSvc      ports.WalletService
	ListingRepo    ports.ListingRepository
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
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

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	wineHandler := NewWineHandler(deps.RegistrySvc, deps.RedemptionSvc)
	wines := v1.Group("/wines", jwtAuth)
	{
		wines.POST("", rl("mint"), middleware.RequireRole(domain.RoleProducer, domain.RoleAdmin), wineHandler.Mint)
		wines.GET("", wineHandler.List)
		wines.GET("/:id", wineHandler.Get)
		wines.PUT("/:id/maturity", adminOnly, wineHandler.SetMaturity)
		wines.POST("/:id/redeem", rl("trade"), wineHandler.Redeem)
	}

	marketHandler := NewMarketHandler(deps.MarketSvc, deps.ListingRepo)
	listings := v1.Group("/listings", jwtAuth)
	{
		listings.POST("", rl("trade"), marketHandler.Create)
		listings.GET("", marketHandler.ListActive)
		listings.POST("/:id/buy", rl("trade"), marketHandler.Buy)
		listings.DELETE("/:id", rl("trade"), marketHandler.Cancel)
	}

	distributorHandler := NewDistributorHandler(deps.DistributorSvc)
	distributor := v1.Group("/distributor", jwtAuth)
	{
		distributor.POST("/purchases", rl("trade"), distributorHandler.Purchase)
		distributor.POST("/redemptions", rl("trade"), distributorHandler.Redemption)
		distributor.POST("/resales", rl("trade"), distributorHandler.Resale)
	}

	whitelistHandler := NewWhitelistHandler(deps.WhitelistSvc)
	whitelist := v1.Group("/whitelist", jwtAuth, adminOnly)
	{
		whitelist.POST("", whitelistHandler.Add)
		whitelist.DELETE("/:id", whitelistHandler.Remove)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance", walletHandler.GetBalance)
		wallets.POST("/topup", rl("wallets_topup"), walletHandler.Topup)
	}

	return r
}
