// Command api runs the storefront HTTP API.
//
// @title                       Storefront API
// @version                     1.0
// @description                 Product catalog, shopping cart and admin catalog management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/storefront/storefront-api/docs"
	"github.com/storefront/storefront-api/internal/api"
	"github.com/storefront/storefront-api/internal/api/handler"
	"github.com/storefront/storefront-api/internal/core/ports"
	"github.com/storefront/storefront-api/internal/core/service"
	"github.com/storefront/storefront-api/internal/core/session"
	mongodb "github.com/storefront/storefront-api/internal/infrastructure/db/mongo"
	redisdb "github.com/storefront/storefront-api/internal/infrastructure/db/redis"
	"github.com/storefront/storefront-api/internal/infrastructure/queue"
	"github.com/storefront/storefront-api/internal/infrastructure/storage/s3store"
	"github.com/storefront/storefront-api/internal/pkg/config"
	"github.com/storefront/storefront-api/pkg/logger"
)

const (
	serviceName     = "storefront-api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("storefront api stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage backends ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("db", cfg.Mongo.Database).Msg("connected to mongodb")

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	products := mongodb.NewProductRepository(db)
	carts := mongodb.NewCartRepository(db)
	profiles := mongodb.NewProfileRepository(db)
	if err := mongodb.EnsureIndexes(ctx, products, carts, profiles); err != nil {
		return err
	}

	files, images, err := newFileStorage(ctx, cfg, db)
	if err != nil {
		return err
	}
	log.Info().Str("driver", cfg.Storage.Driver).Msg("image storage ready")

	// --- Services ---
	imageService := service.NewImageService(files, log)

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.CleanupWorkers, imageService, log)
	dispatcher.Start(cleanupCtx)
	defer func() {
		stopCleanup()
		dispatcher.Wait()
	}()

	revoker := redisdb.NewTokenRevoker(rdb)
	authService := service.NewAuthService(profiles, revoker, cfg.JWTSecret, cfg.TokenTTL)
	if cfg.Bootstrap.AdminEmail != "" {
		adminProfile, err := authService.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		log.Info().Str("user_id", adminProfile.ID).Msg("admin account ready")
	}

	e := api.NewRouter(api.Deps{
		JWTSecret: cfg.JWTSecret,
		Revoker:   revoker,
		Auth:      authService,
		NewCatalogReader: func() ports.CatalogReader {
			return service.NewCatalogReader(products, log)
		},
		NewCartEngine: func(sess *session.Session) ports.CartEngine {
			return service.NewCartEngine(carts, products, sess, log)
		},
		NewAdminCatalog: func(sess *session.Session) ports.AdminCatalog {
			return service.NewAdminCatalog(products, imageService, dispatcher, sess, log)
		},
		Images:       images,
		HealthChecks: healthChecks(db, rdb),
	}, log)

	// --- Serve until signalled ---
	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newFileStorage selects the image backend. GridFS objects are served by this
// API, so it is also returned as the FileSource for GET /images/*.
func newFileStorage(ctx context.Context, cfg *config.Config, db *mongo.Database) (ports.FileStorage, ports.FileSource, error) {
	switch cfg.Storage.Driver {
	case config.StorageS3:
		store, err := s3store.New(ctx, s3store.Config{
			Bucket:        cfg.Storage.S3Bucket,
			Region:        cfg.Storage.S3Region,
			Endpoint:      cfg.Storage.S3Endpoint,
			PublicBaseURL: cfg.Storage.S3PublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		store := mongodb.NewGridFSStorage(db, cfg.ImageURLPrefix())
		return store, store, nil
	}
}

func healthChecks(db *mongo.Database, rdb *redis.Client) map[string]handler.DependencyCheck {
	return map[string]handler.DependencyCheck{
		"mongodb": func(ctx context.Context) error {
			return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
		},
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	}
}
