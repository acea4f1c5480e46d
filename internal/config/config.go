package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"budgetwatch/internal/budget"
	"budgetwatch/internal/storage"

	"github.com/shopspring/decimal"
)

const (
	defaultCategories = "Food,Transport,Entertainment,Living,Education,Medical"
	defaultBudgets    = "Food:3000,Transport:1500,Entertainment:2000,Living:1500,Education:2000,Medical:1000"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend   string
	SQLiteDSN     string
	DataDirectory string

	// AMQP, empty URL disables alert publication
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Budgets
	Categories         string
	Budgets            string
	NearThreshold      float64
	Classifier         string
	NearMargin         string
	CategoryThresholds string

	ReportCacheTTL time.Duration
	LogLevel       string

	// envErrors holds variables Load could not parse; Validate reports them.
	envErrors []string
}

func Load() *Config {
	var envErrors []string
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:   getEnv("DATA_BACKEND", "memory"),
		SQLiteDSN:     getEnv("SQLITE_DSN", storage.MemoryDSN("budgetwatch")),
		DataDirectory: getEnv("DATA_DIR", "data"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budgetwatch"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "budget_alerts"),

		Categories:         getEnv("CATEGORIES", defaultCategories),
		Budgets:            getEnv("BUDGETS", defaultBudgets),
		NearThreshold:      getEnvFloat("NEAR_THRESHOLD", budget.DefaultNearThreshold, &envErrors),
		Classifier:         getEnv("CLASSIFIER", budget.StrategyRatio),
		NearMargin:         getEnv("NEAR_MARGIN", "200"),
		CategoryThresholds: getEnv("CATEGORY_THRESHOLDS", ""),

		ReportCacheTTL: getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute, &envErrors),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
	cfg.envErrors = envErrors
	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	errors := append([]string(nil), c.envErrors...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" && !storage.IsMemoryDSN(c.SQLiteDSN) {
		errors = append(errors, fmt.Sprintf("invalid SQLite DSN '%s': must be an in-memory shared-cache database", c.SQLiteDSN))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(c.CategoryList()) == 0 {
		errors = append(errors, "at least one category is required")
	}
	if _, err := c.BudgetTable(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid budgets '%s': %v", c.Budgets, err))
	}
	if _, err := c.Evaluator(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid classifier settings: %v", err))
	}

	if c.ReportCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: must be at least 1 second", c.ReportCacheTTL))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// CategoryList splits CATEGORIES, dropping blanks.
func (c *Config) CategoryList() []string {
	var out []string
	for _, part := range strings.Split(c.Categories, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// BudgetTable parses BUDGETS.
func (c *Config) BudgetTable() (budget.Table, error) {
	return budget.ParseTable(c.Budgets)
}

// Evaluator builds the configured classification strategy with its
// per-category overrides.
func (c *Config) Evaluator() (budget.Evaluator, error) {
	margin, err := decimal.NewFromString(strings.TrimSpace(c.NearMargin))
	if err != nil {
		return budget.Evaluator{}, fmt.Errorf("near margin '%s': %w", c.NearMargin, budget.ErrInvalidMargin)
	}
	def, err := budget.NewClassifier(c.Classifier, budget.Options{
		NearThreshold: c.NearThreshold,
		NearMargin:    margin,
	})
	if err != nil {
		return budget.Evaluator{}, err
	}
	overrides, err := budget.ParseThresholds(c.CategoryThresholds)
	if err != nil {
		return budget.Evaluator{}, err
	}
	return budget.Evaluator{Default: def, Overrides: overrides}, nil
}

// ParseLevel maps LOG_LEVEL to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be debug, info, warn or error", s)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64, errs *[]string) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
		*errs = append(*errs, fmt.Sprintf("invalid %s '%s': must be a number", key, value))
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
		*errs = append(*errs, fmt.Sprintf("invalid %s '%s': must be a duration such as 30s or 5m", key, value))
	}
	return defaultValue
}
