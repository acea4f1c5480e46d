package main

import (
	"context"
	"errors"
	"time"

	"budgetwatch/internal/amqp"
	"budgetwatch/internal/cache"
	"budgetwatch/internal/cli"
	"budgetwatch/internal/config"
	"budgetwatch/internal/log"
	"budgetwatch/internal/services"

	"golang.org/x/sync/errgroup"
)

const statsInterval = 10 * time.Minute

var errNoBroker = errors.New("AMQP_URL is required by the notifier")

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentNotify)
	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "Cannot start notifier", errNoBroker)
	}
	if err := run(cfg, logger); err != nil {
		cli.Fatal(logger, "budget-notifier stopped with error", err)
	}
	logger.Info("Notifier stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext()
	defer stop()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	procCfg := services.DefaultAlertProcessorConfig()
	processor := services.NewAlertProcessor(services.LogNotifier{Logger: logger.Logger}, procCfg)

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	caches.Register(processor.Cache())
	caches.StartCleanup(procCfg.DedupeWindow / 4)
	defer caches.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Consuming budget alerts", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		err := client.ConsumeBudgetAlerts(gctx, processor.Handle)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				processed, suppressed := processor.Stats()
				logger.Info("Alert processor stats", "processed", processed, "suppressed", suppressed)
			}
		}
	})
	return g.Wait()
}
