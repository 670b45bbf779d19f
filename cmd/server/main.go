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

	"github.com/anonto42/socialcore/backend/internal/cache"
	"github.com/anonto42/socialcore/backend/internal/database"
	"github.com/anonto42/socialcore/backend/internal/middleware"
	"github.com/anonto42/socialcore/backend/internal/repositories"
	"github.com/anonto42/socialcore/backend/internal/router"
	"github.com/anonto42/socialcore/backend/internal/service"
	"github.com/anonto42/socialcore/backend/pkg/config"
	"github.com/anonto42/socialcore/backend/pkg/firebase"
	"github.com/anonto42/socialcore/backend/pkg/logging"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "socialcore",
		Short:         "Social network interaction and notification service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations, then serve the HTTP API and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}

	var olderThan time.Duration
	purgeCmd := &cobra.Command{
		Use:   "purge-stories",
		Short: "Delete stories that expired more than --older-than ago",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPurgeStories(cmd.Context(), olderThan)
		},
	}
	purgeCmd.Flags().DurationVar(&olderThan, "older-than", 0, "only purge stories expired at least this long ago")

	rootCmd.AddCommand(serveCmd, migrateCmd, purgeCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	logger *zap.Logger
	db     *config.DB
}

func setup(cfg *config.Config) (*app, error) {
	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &app{logger: logger, db: db}, nil
}

func (r *app) close() {
	r.db.CloseDB()
	_ = r.logger.Sync()
}

func runMigrate() error {
	rt, err := setup(config.Load())
	if err != nil {
		return err
	}
	defer rt.close()
	return database.Migrate(rt.db.Postgres, rt.logger)
}

func runPurgeStories(ctx context.Context, olderThan time.Duration) error {
	rt, err := setup(config.Load())
	if err != nil {
		return err
	}
	defer rt.close()

	stories := service.NewStoryService(
		repositories.NewPostgresStoryRepository(rt.db.Postgres),
		repositories.NewPostgresFollowRepository(rt.db.Postgres),
		repositories.NewPostgresUserRepository(rt.db.Postgres),
		rt.logger, nil)
	_, err = stories.PurgeExpired(ctx, olderThan)
	return err
}

func runServe(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	rt, err := setup(cfg)
	if err != nil {
		return err
	}
	defer rt.close()
	logger := rt.logger

	if err := database.Migrate(rt.db.Postgres, logger); err != nil {
		return err
	}

	var unread *cache.UnreadCache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, unread counts will not be cached", zap.Error(err))
		} else {
			unread = cache.NewUnreadCache(redisCache)
			logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
		}
	}

	var mongoDB *mongo.Database
	if rt.db.Mongo != nil {
		mongoDB = rt.db.Mongo.Database(cfg.MongoDatabase)
	}
	services, err := router.BuildServices(ctx, rt.db.Postgres, mongoDB, unread, logger)
	if err != nil {
		return err
	}

	auth, err := authMiddleware(ctx, cfg, services.Users)
	if err != nil {
		return err
	}
	logger.Info("authentication configured", zap.String("mode", cfg.AuthMode))

	e := echo.New()
	router.SetupMiddleware(e, logger)
	router.SetupRoutes(e, auth, services, logger)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: metricsMux}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(signalCtx)
	g.Go(func() error {
		logger.Info("API server starting", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("metrics server starting", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return errors.Join(e.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})
	return g.Wait()
}

func authMiddleware(ctx context.Context, cfg *config.Config, users repositories.UserRepository) (echo.MiddlewareFunc, error) {
	if cfg.AuthMode == config.AuthModeFirebase {
		fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		return middleware.FirebaseAuthMiddleware(fb.AuthClient, users), nil
	}
	return middleware.JWTAuthMiddleware(cfg.JWTSecret), nil
}
