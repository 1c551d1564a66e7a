package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wine-lot-exchange/config"
	httpHandler "wine-lot-exchange/internal/adapter/http/handler"
	pgStorage "wine-lot-exchange/internal/adapter/storage/postgres"
	redisStorage "wine-lot-exchange/internal/adapter/storage/redis"
	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/internal/service"
	"wine-lot-exchange/pkg/logger"

	"github.com/google/uuid"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Wine Lot Exchange")

	adminID, err := uuid.Parse(cfg.Whitelist.AdminID)
	if err != nil {
		log.Fatal().Err(err).Msg("whitelist.admin_id must be a valid account UUID")
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	wineRepo := pgStorage.NewWineRepo(pool)
	listingRepo := pgStorage.NewListingRepo(pool)
	whitelistRepo := pgStorage.NewWhitelistRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	whitelistCache := redisStorage.NewWhitelistCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	authSvc := service.NewAuthService(accountRepo, walletRepo, hashSvc, encSvc, tokenSvc)
	whitelistSvc := service.NewWhitelistService(whitelistRepo, whitelistCache, adminID, log)
	registrySvc := service.NewRegistryService(wineRepo, walletRepo, encSvc, transactor, cfg.Mint.MinFee, adminID, log)
	webhookSvc := service.NewWebhookService(accountRepo, sigSvc, cfg.Webhook.SigningSecret, &http.Client{Timeout: 10 * time.Second}, log)
	marketSvc := service.NewMarketplaceService(wineRepo, listingRepo, walletRepo, whitelistSvc, encSvc, transactor, webhookSvc, log)
	redemptionSvc := service.NewRedemptionService(wineRepo, listingRepo, transactor, webhookSvc, log)
	distributorSvc := service.NewDistributorService(marketSvc, redemptionSvc, log)
	walletSvc := service.NewWalletService(walletRepo, encSvc, transactor, log)
	auditRepo := pgStorage.NewAuditRepository(pool)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		RegistrySvc:    registrySvc,
		MarketSvc:      marketSvc,
		RedemptionSvc:  redemptionSvc,
		DistributorSvc: distributorSvc,
		WhitelistSvc:   whitelistSvc,
		WalletSvc:      walletSvc,
		ListingRepo:    listingRepo,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
