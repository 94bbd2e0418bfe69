package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/config"
	"github.com/Houmeecl/pilotonotary-backend/internal/events"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository/memory"
	"github.com/Houmeecl/pilotonotary-backend/migrations"
	"github.com/Houmeecl/pilotonotary-backend/pkg/jwtutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewLogger builds the process logger: development output when APP_ENV=development.
func NewLogger(cfg config.AppConfig) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Run connects the configured backends, serves HTTP and runs the scheduler and
// websocket heartbeat until ctx is cancelled or one of them fails.
func Run(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	cleanup = append(cleanup, closeStore)

	var rdb redis.UniversalClient
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limits fail open", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		rdb = client
		cleanup = append(cleanup, func() { _ = client.Close() })
	}

	var publisher events.Publisher = events.Discard{}
	if len(cfg.KafkaBrokers) > 0 {
		writer := events.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		publisher = events.NewKafkaPublisher(writer, logger)
		cleanup = append(cleanup, func() {
			if err := writer.Close(); err != nil {
				logger.Warn("kafka writer close failed", zap.Error(err))
			}
		})
		logger.Info("publishing lifecycle events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	tokens, verifier, err := jwtutil.LoadAndBuild(jwtutil.JWTConfig{
		PrivPath: cfg.JWTPrivKeyPath,
		PubPath:  cfg.JWTPubKeyPath,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		KeyID:    cfg.JWTKeyID,
	}, cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("jwt setup: %w", err)
	}

	app, err := Build(Deps{
		Config:    cfg,
		Store:     store,
		Redis:     rdb,
		Publisher: publisher,
		Tokens:    tokens,
		Verifier:  verifier,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return app.Scheduler.Run(gctx) })
	g.Go(func() error { return app.WS.Heartbeat(gctx, cfg.WSHeartbeat) })

	return g.Wait()
}

func openStore(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (repository.Store, func(), error) {
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("using in-memory storage; data is lost on restart")
		return memory.New(), func() {}, nil
	case "postgres", "":
		dsn := cfg.DSN()
		if cfg.MigrateOnStartup {
			if err := migrations.Up(dsn); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("database migrations applied")
		}
		pool, err := config.ConnectDB(ctx, dsn, logger)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
