package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"budgetwatch/internal/amqp"
	"budgetwatch/internal/cache"
)

// AlertProcessorConfig holds configuration for the alert processor
type AlertProcessorConfig struct {
	// DedupeWindow suppresses repeats of the same month, category and status
	// for this long (default: 1h)
	DedupeWindow time.Duration

	// DedupeSize bounds the number of remembered alerts (default: 1024)
	DedupeSize int
}

// DefaultAlertProcessorConfig returns sensible defaults
func DefaultAlertProcessorConfig() AlertProcessorConfig {
	return AlertProcessorConfig{
		DedupeWindow: time.Hour,
		DedupeSize:   1024,
	}
}

// Notifier delivers a budget alert to a person or system.
type Notifier interface {
	Notify(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg *amqp.BudgetAlertMessage) error

func (f NotifierFunc) Notify(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	return f(ctx, msg)
}

// LogNotifier writes alerts to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, msg.Message,
		"month", msg.Month,
		"category", msg.Category,
		"status", msg.Status,
		"percent", msg.Percent,
		"alert_id", msg.ID)
	return nil
}

// AlertProcessor handles consumed budget alerts: repeats within the dedupe
// window are acknowledged without notifying again.
type AlertProcessor struct {
	notifier Notifier
	seen     *cache.LRUCache[string]

	processed  atomic.Int64
	suppressed atomic.Int64
}

// NewAlertProcessor creates a new alert processor
func NewAlertProcessor(notifier Notifier, config AlertProcessorConfig) *AlertProcessor {
	def := DefaultAlertProcessorConfig()
	if config.DedupeWindow <= 0 {
		config.DedupeWindow = def.DedupeWindow
	}
	if config.DedupeSize <= 0 {
		config.DedupeSize = def.DedupeSize
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &AlertProcessor{
		notifier: notifier,
		seen:     cache.NewLRUCache[string](config.DedupeSize, config.DedupeWindow),
	}
}

// Cache exposes the dedupe cache so it can be registered for cleanup.
func (p *AlertProcessor) Cache() cache.Cleaner {
	return p.seen
}

func dedupeKey(msg *amqp.BudgetAlertMessage) string {
	return fmt.Sprintf("%s|%s|%s", msg.Month, msg.Category, msg.Status)
}

// Handle is an amqp.Handler. A notifier error is returned so the message is
// requeued.
func (p *AlertProcessor) Handle(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	key := dedupeKey(msg)
	if _, ok := p.seen.Get(key); ok {
		p.suppressed.Add(1)
		slog.DebugContext(ctx, "Suppressing repeated budget alert",
			"month", msg.Month, "category", msg.Category, "status", msg.Status)
		return nil
	}

	if err := p.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("notify %s: %w", key, err)
	}
	p.seen.Set(key, msg.ID)
	p.processed.Add(1)
	return nil
}

// Stats returns the number of delivered and suppressed alerts.
func (p *AlertProcessor) Stats() (processed, suppressed int64) {
	return p.processed.Load(), p.suppressed.Load()
}
