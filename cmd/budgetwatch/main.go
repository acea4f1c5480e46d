package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"budgetwatch/internal/amqp"
	"budgetwatch/internal/backend"
	"budgetwatch/internal/cache"
	"budgetwatch/internal/cli"
	"budgetwatch/internal/config"
	apphttp "budgetwatch/internal/http"
	"budgetwatch/internal/log"
	"budgetwatch/internal/middleware/ratelimit"
	"budgetwatch/internal/services"

	"golang.org/x/sync/errgroup"
)

const (
	reportCacheSize      = 64
	cacheCleanupInterval = time.Minute
	shutdownTimeout      = 30 * time.Second
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)
	if err := run(cfg, logger); err != nil {
		cli.Fatal(logger, "budgetwatch stopped with error", err)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext()
	defer stop()

	table, err := cfg.BudgetTable()
	if err != nil {
		return err
	}
	evaluator, err := cfg.Evaluator()
	if err != nil {
		return err
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Error("Failed to close backend", "error", err)
		}
	}()

	reports := cache.NewLRUCache[services.MonthlyReport](reportCacheSize, cfg.ReportCacheTTL)
	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	caches.Register(reports)
	caches.StartCleanup(cacheCleanupInterval)
	defer caches.Stop()

	opts := []services.Option{services.WithReportCache(reports)}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// alerts are optional; the API still works without a broker
			logger.Error("Failed to initialize AMQP client, alert publication disabled", "error", err)
		} else {
			defer client.Close()
			opts = append(opts, services.WithPublisher(client))
			logger.Info("Alert publication enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("Alert publication disabled - no AMQP_URL provided")
	}

	svc := services.NewLedgerService(result.Store, table, evaluator, opts...)
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Config{
		Classifier:    cfg.Classifier,
		NearThreshold: cfg.NearThreshold,
		RateLimit:     ratelimit.DefaultConfig(),
		Logger:        logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budgetwatch server", "port", cfg.Port, "backend", backendCfg.Type.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
