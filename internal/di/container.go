package di

import (
	"errors"

	"github.com/prohmpiriya/postboard-api/internal/handler"
	"github.com/prohmpiriya/postboard-api/internal/middleware"
	"github.com/prohmpiriya/postboard-api/internal/repository"
	"github.com/prohmpiriya/postboard-api/internal/service"
	pkgredis "github.com/prohmpiriya/postboard-api/pkg/redis"
)

// Container holds all dependencies for the API
type Container struct {
	// Infrastructure
	DB    handler.Pinger
	Redis *pkgredis.Client

	// Repositories
	UserRepo repository.UserRepository
	PostRepo repository.PostRepository

	// Events
	Publisher service.EventPublisher

	// Services
	AuthService service.AuthService
	UserService service.UserService
	PostService service.PostService

	// Guard
	Guard *middleware.Guard

	// Handlers
	HealthHandler *handler.HealthHandler
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	PostHandler   *handler.PostHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	ServiceName string
	DB          handler.Pinger
	// Redis is optional
	Redis     *pkgredis.Client
	UserRepo  repository.UserRepository
	PostRepo  repository.PostRepository
	Publisher service.EventPublisher
	Auth      *service.AuthServiceConfig
	Cookie    handler.CookieConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	if cfg == nil || cfg.UserRepo == nil || cfg.PostRepo == nil || cfg.DB == nil {
		return nil, errors.New("database and repositories are required")
	}

	c := &Container{
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		UserRepo:  cfg.UserRepo,
		PostRepo:  cfg.PostRepo,
		Publisher: cfg.Publisher,
	}
	if c.Publisher == nil {
		c.Publisher = service.NewNoOpEventPublisher()
	}

	// Initialize services
	authService, err := service.NewAuthService(c.UserRepo, c.Publisher, cfg.Auth)
	if err != nil {
		return nil, err
	}
	c.AuthService = authService

	bcryptCost := 0
	if cfg.Auth != nil {
		bcryptCost = cfg.Auth.BcryptCost
	}
	c.UserService = service.NewUserService(c.UserRepo, c.PostRepo, c.Publisher, &service.UserServiceConfig{
		BcryptCost: bcryptCost,
	})
	c.PostService = service.NewPostService(c.PostRepo, c.UserRepo, c.Publisher)

	c.Guard = middleware.NewGuard(c.AuthService)

	// Initialize handlers
	var redisPinger handler.Pinger
	if c.Redis != nil {
		redisPinger = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(cfg.ServiceName, c.DB, redisPinger)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService, cfg.Cookie)
	c.UserHandler = handler.NewUserHandler(c.UserService, cfg.Cookie)
	c.PostHandler = handler.NewPostHandler(c.PostService)

	return c, nil
}
