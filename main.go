package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ammiranda/forest_service/cache"
	"github.com/ammiranda/forest_service/config"
	"github.com/ammiranda/forest_service/handlers"
	"github.com/ammiranda/forest_service/logger"
	"github.com/ammiranda/forest_service/middleware"
	"github.com/ammiranda/forest_service/repository"
	"github.com/ammiranda/forest_service/tree"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := config.NewProviderFromEnv(ctx)
	if err != nil {
		panic(err)
	}
	cfg, err := config.Load(ctx, provider)
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.LogDebug)
	defer log.Sync()

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) error {
	repo, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Cleanup(context.Background()); err != nil {
			log.Error("failed to close repository", zap.Error(err))
		}
	}()

	forestCache, err := cache.New(ctx, cfg.Cache, log)
	if err != nil {
		return err
	}

	engine := tree.NewEngine(repo, log)
	router := handlers.NewRouter(handlers.NewTreeHandler(engine, forestCache, log), handlers.RouterOptions{
		Log:            log,
		Metrics:        middleware.NewMetrics(),
		RateLimiter:    middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreDriver),
			zap.String("cache", cfg.Cache.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
