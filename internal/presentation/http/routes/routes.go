package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/lineform-api/internal/config"
	domainRepo "github.com/sangkips/lineform-api/internal/domain/repository"
	"github.com/sangkips/lineform-api/internal/presentation/http/handler"
	"github.com/sangkips/lineform-api/internal/presentation/http/middleware"
	"github.com/sangkips/lineform-api/pkg/utils"
)

// RateManagerRole may change stored exchange rates
const RateManagerRole = "admin"

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Form *handler.FormHandler
	Rate *handler.RateHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.UserRateLimiter
}

// NewRateLimiter builds the per-user limiter from the rate limit config
func NewRateLimiter(cfg config.RateLimitConfig) *middleware.UserRateLimiter {
	perSecond := float64(cfg.Requests)
	if cfg.Duration > 0 {
		perSecond = float64(cfg.Requests) / float64(cfg.Duration)
	}
	return middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: perSecond,
		BurstSize:         cfg.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerFormRoutes(protected, h, deps)
		registerRateRoutes(protected, h)
	}

	return router
}

func registerFormRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	forms := protected.Group("/forms")
	{
		forms.POST("", h.Form.Create)
		forms.GET("/:id", h.Form.GetByID)
		forms.DELETE("/:id", h.Form.Discard)
		forms.PUT("/:id/subjects", h.Form.ReplaceSubjects)

		forms.POST("/:id/groups", h.Form.AddGroup)
		forms.DELETE("/:id/groups/:group_id", h.Form.RemoveGroup)
		forms.POST("/:id/groups/:group_id/entries", h.Form.AddEntry)
		forms.POST("/:id/groups/:group_id/propagate", h.Form.ApplyToSiblings)

		forms.PATCH("/:id/entries/:entry_id", h.Form.UpdateEntry)
		forms.DELETE("/:id/entries/:entry_id", h.Form.RemoveEntry)

		forms.POST("/:id/propagate", h.Form.ApplyToAllGroups)
		forms.POST("/:id/rates/:code/retry", h.Form.RetryRate)
		forms.POST("/:id/import", h.Form.Import)

		// A retried submit with the same Idempotency-Key replays the first result
		forms.POST("/:id/submit", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			TTL:  deps.Cfg.Idempotency.TTL,
		}), h.Form.Submit)
	}
}

func registerRateRoutes(protected *gin.RouterGroup, h *Handlers) {
	rates := protected.Group("/rates")
	{
		rates.GET("", h.Rate.List)
		rates.PUT("/:code", middleware.RequireRole(RateManagerRole), h.Rate.Set)
	}
}
