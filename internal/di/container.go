package di

import (
	"context"
	"fmt"
	"sync"

	"course-station/internal/auth"
	authconfig "course-station/internal/auth/config"
	"course-station/internal/catalog"
	catalogconfig "course-station/internal/catalog/config"
	"course-station/internal/shared/eventbus"
	"course-station/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Container holds the application modules and their shared dependencies with
// explicit lifecycle management. Nothing here is ambient: every component
// receives its collaborators at construction time.
type Container struct {
	mu sync.RWMutex

	AuthModule    *auth.AuthModule
	CatalogModule *catalog.CatalogModule

	MongoDB     *mongo.Database
	RedisClient *redis.Client

	AuthConfig    *authconfig.Config
	CatalogConfig *catalogconfig.CatalogConfig

	Bus    *eventbus.EventBus
	Logger logger.Logger
}

// NewContainer creates a new DI container
func NewContainer(log logger.Logger) *Container {
	return &Container{
		Logger: log,
		Bus:    eventbus.NewEventBus(log),
	}
}

// InitializeAuth initializes the token issuance module
func (c *Container) InitializeAuth(cfg *authconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	authModule, err := auth.NewAuthModule(cfg)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}

	c.AuthConfig = cfg
	c.AuthModule = authModule
	return nil
}

// InitializeCatalog initializes the course/enrollment core module
func (c *Container) InitializeCatalog(db *mongo.Database, cfg *catalogconfig.CatalogConfig, zapLog *zap.Logger) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before the catalog module")
	}

	c.MongoDB = db
	c.CatalogConfig = cfg
	c.RedisClient = catalogconfig.NewRedisClient(cfg)

	catalogModule, err := catalog.NewCatalogModule(db, cfg, c.Bus, c.RedisClient, zapLog)
	if err != nil {
		return fmt.Errorf("failed to create catalog module: %w", err)
	}

	c.CatalogModule = catalogModule
	return nil
}

// HealthCheck verifies the container's backing services are reachable
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("mongodb unhealthy: %w", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis unhealthy: %w", err)
		}
	}
	return nil
}

// Close releases container-owned resources
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
		c.RedisClient = nil
	}
	return nil
}
