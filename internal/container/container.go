package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"petmarket/catalog/internal/api"
	"petmarket/catalog/internal/cache"
	"petmarket/catalog/internal/client"
	"petmarket/catalog/internal/config"
	"petmarket/catalog/internal/directory"
	"petmarket/catalog/internal/repository"
	"petmarket/catalog/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized server components
type Container struct {
	Config     *config.Config
	Repository repository.BreedRepository
	Cache      cache.BreedCache
	Service    *service.Service
	Server     *http.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	container.db = db

	log.Info("✅ Connected to PostgreSQL successfully")

	breedRepo := repository.NewBreedRepository(db)
	if err := breedRepo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	container.Repository = breedRepo

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		db.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	container.redis = rdb

	log.Info("✅ Connected to Redis successfully")

	breedCache := cache.NewRedisBreedCache(rdb, cfg.Redis.KeyPrefix, time.Duration(cfg.Cache.RedisTTL)*time.Second)
	container.Cache = breedCache

	container.Service = service.NewService(
		breedRepo,
		breedCache,
		time.Duration(cfg.Cache.LocalTTL)*time.Second,
		time.Duration(cfg.Cache.CleanupInterval)*time.Second,
	)

	container.Server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewHandler(container.Service).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return container, nil
}

// NewDirectory builds a breed directory backed by the catalog API client.
// The returned client must be closed by the caller.
func NewDirectory(cfg config.CatalogConfig) (*directory.Directory, client.CatalogClient) {
	catalogClient := client.NewCatalogClient(cfg)

	dir := directory.New(catalogClient,
		directory.WithFetchTimeout(time.Duration(cfg.FetchTimeout)*time.Second),
	)

	return dir, catalogClient
}

// Run serves the HTTP API until ctx is cancelled
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("🚀 Listening on %s", c.Server.Addr)
		if err := c.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(c.Config.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		log.Info("🛑 Shutting down HTTP server...")
		return c.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis client: %w", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
