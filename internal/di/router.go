package di

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/pkg/logger"
	pkgmiddleware "github.com/prohmpiriya/postboard-api/pkg/middleware"
	"github.com/prohmpiriya/postboard-api/pkg/telemetry"
)

// RouterConfig holds the HTTP-layer settings
type RouterConfig struct {
	Logger    *logger.Logger
	CORS      pkgmiddleware.CORSConfig
	RateLimit pkgmiddleware.RateLimitConfig
}

// NewRouter registers every route on a new gin engine
func NewRouter(c *Container, cfg *RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(pkgmiddleware.RequestID())
	router.Use(telemetry.TracingMiddleware())
	router.Use(pkgmiddleware.Logger(log))
	router.Use(pkgmiddleware.CORSWithConfig(cfg.CORS))

	// Health check endpoints
	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)

	rateLimit := cfg.RateLimit
	rateLimit.RedisClient = c.Redis
	if rateLimit.KeyPrefix == "" {
		rateLimit.KeyPrefix = "ratelimit:auth:"
	}

	idempotency := pkgmiddleware.DefaultIdempotencyConfig(nil)
	if c.Redis != nil {
		idempotency.Redis = c.Redis
	}

	authenticated := c.Guard.Require()
	adminOnly := c.Guard.Require(domain.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(pkgmiddleware.RateLimiter(rateLimit))
		{
			auth.POST("/register", c.AuthHandler.Register)
			auth.POST("/login", c.AuthHandler.Login)
			auth.POST("/logout", authenticated, c.AuthHandler.Logout)
		}

		users := v1.Group("/users")
		{
			users.GET("", c.UserHandler.List)
			users.GET("/current-user", authenticated, c.UserHandler.CurrentUser)
			users.GET("/profile", authenticated, c.UserHandler.Profile)
			users.GET("/:id", c.UserHandler.Get)
			users.PATCH("/:id", authenticated, c.UserHandler.Update)
			users.DELETE("/:id", authenticated, c.UserHandler.Delete)
		}

		admin := v1.Group("/admin", adminOnly)
		{
			admin.DELETE("/users/:id", c.UserHandler.AdminDelete)
			admin.PATCH("/users/:id/role", c.UserHandler.ChangeRole)
		}

		posts := v1.Group("/posts")
		{
			posts.POST("", authenticated, pkgmiddleware.Idempotency(idempotency), c.PostHandler.Create)
			posts.GET("", c.PostHandler.List)
			posts.GET("/user/:id", c.PostHandler.ListByUser)
			posts.GET("/:id", c.PostHandler.Get)
			posts.PATCH("/:id", authenticated, c.PostHandler.Update)
			posts.DELETE("/:id", authenticated, c.PostHandler.Delete)
		}
	}

	return router
}
