package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/lineform-api/internal/application/service"
	"github.com/sangkips/lineform-api/internal/config"
	"github.com/sangkips/lineform-api/internal/domain/lineitem"
	"github.com/sangkips/lineform-api/internal/infrastructure/database"
	"github.com/sangkips/lineform-api/internal/infrastructure/repository"
	"github.com/sangkips/lineform-api/internal/presentation/http/handler"
	"github.com/sangkips/lineform-api/internal/presentation/http/middleware"
	"github.com/sangkips/lineform-api/internal/presentation/http/routes"
	"github.com/sangkips/lineform-api/pkg/utils"
)

func main() {
	cfg := config.Load()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	baseCurrency, err := lineitem.NormalizeCurrency(cfg.Currency.Base)
	if err != nil {
		log.Fatalf("Invalid BASE_CURRENCY %q", cfg.Currency.Base)
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Repositories
	rateRepo := repository.NewExchangeRateRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Services
	rateService := service.NewRateService(rateRepo, baseCurrency)
	if err := rateService.EnsureBaseRate(context.Background()); err != nil {
		log.Printf("Warning: Failed to seed base currency rate: %v", err)
	}

	formService := service.NewFormService(service.NewRepositoryRateSource(rateRepo), service.FormServiceConfig{
		BaseCurrency:    baseCurrency,
		LookupTimeout:   cfg.Currency.LookupTimeout,
		SessionTTL:      cfg.Session.TTL,
		CleanupInterval: cfg.Session.CleanupInterval,
	})
	defer formService.Close()

	purgeCtx, stopPurge := context.WithCancel(context.Background())
	defer stopPurge()
	go middleware.PurgeExpiredKeys(purgeCtx, idempotencyRepo, time.Hour)

	rateLimiter := routes.NewRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	handlers := &routes.Handlers{
		Form: handler.NewFormHandler(formService, cfg.Import.MaxSize),
		Rate: handler.NewRateHandler(rateService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s, base currency: %s", cfg.App.Env, baseCurrency)

	if err := router.Run(":" + port); err != nil {
		log.Printf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
