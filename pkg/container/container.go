package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"library-catalog/internal/config"
	catalogHandler "library-catalog/internal/domains/catalog/handler"
	catalogRepo "library-catalog/internal/domains/catalog/repository"
	catalogService "library-catalog/internal/domains/catalog/service"
	infraCache "library-catalog/internal/infrastructure/cache"
	"library-catalog/internal/infrastructure/database"
	"library-catalog/pkg/cache"
)

// Container holds the application's dependency graph.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config *config.Config
	DB     *database.PostgresDB // nil when STORAGE_DRIVER=sqlite
	SQLite *sqlx.DB             // nil when STORAGE_DRIVER=postgres
	Redis  *infraCache.RedisCache
	Cache  cache.Cache // nil when Redis is disabled or unreachable

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	CatalogStore catalogRepo.Store

	// ========================================
	// SERVICE LAYER
	// ========================================
	CatalogService catalogService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================
	CatalogHandler *catalogHandler.CatalogHandler

	stopMonitor func()
}

// NewContainer builds the graph in dependency order:
// config, storage, cache, repositories, services, handlers.
func NewContainer(ctx context.Context) (*Container, error) {
	log.Info().Msg("initializing container")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewContainerWithConfig(ctx, cfg)
}

// NewContainerWithConfig builds the graph from an already loaded config.
func NewContainerWithConfig(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	if err := c.initStorage(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initCache(ctx)

	if err := c.initServices(); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	c.initHandlers()

	log.Info().
		Str("env", cfg.App.Environment).
		Str("storage", cfg.Storage.Driver).
		Bool("cache", c.Cache != nil).
		Msg("container initialized")
	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch c.Config.Storage.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(connectCtx, config.LoadSQLiteConfig(c.Config))
		if err != nil {
			return fmt.Errorf("failed to open sqlite: %w", err)
		}
		c.SQLite = db
		c.CatalogStore = catalogRepo.NewSQLiteStore(db)

	default:
		dbConfig, err := config.LoadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}

		db := database.NewPostgresDB(dbConfig)
		if err := db.Connect(connectCtx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db

		level, err := database.ParseIsoLevel(c.Config.Transaction.Isolation)
		if err != nil {
			return err
		}
		c.CatalogStore = catalogRepo.NewPostgresStore(db.Pool, database.TxOptions(level))

		c.stopMonitor = db.StartPoolMonitor(time.Minute)
	}

	if err := c.CatalogStore.EnsureSchema(connectCtx); err != nil {
		return fmt.Errorf("failed to prepare schema: %w", err)
	}
	return nil
}

// initCache connects Redis when enabled. Redis is not critical: on failure
// the catalog is served straight from storage.
func (c *Container) initCache(ctx context.Context) {
	if !c.Config.Redis.Enabled {
		return
	}

	rc := infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rc.Connect(ctx); err != nil {
		log.Warn().Err(err).Str("host", c.Config.Redis.Host).Msg("redis connection failed (non-critical)")
		_ = rc.Close()
		return
	}

	c.Redis = rc
	c.Cache = rc
}

func (c *Container) initServices() error {
	if c.CatalogStore == nil {
		return fmt.Errorf("catalog store is not initialized")
	}

	c.CatalogService = catalogService.NewCatalogService(
		c.CatalogStore,
		catalogService.NewDuplicateChecker(),
		catalogService.NewCatalogCache(c.Cache, c.Config.Redis.TTL),
		catalogService.RetryPolicy{
			MaxAttempts: c.Config.Transaction.MaxAttempts,
			BaseDelay:   c.Config.Transaction.RetryDelay,
		},
	)
	return nil
}

func (c *Container) initHandlers() {
	c.CatalogHandler = catalogHandler.NewCatalogHandler(c.CatalogService)
}

// Cleanup releases storage and cache connections.
func (c *Container) Cleanup() {
	// the monitor reads the pool, so it must be gone before Close
	if c.stopMonitor != nil {
		c.stopMonitor()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}

	if c.DB != nil {
		_ = c.DB.Close()
	}
	if c.SQLite != nil {
		if err := c.SQLite.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close sqlite")
		}
	}
}
