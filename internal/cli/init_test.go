package cli

import (
	"context"
	"log/slog"
	"testing"

	"budgetwatch/internal/config"
	"budgetwatch/internal/log"

	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"warn", false, false},
		{"nonsense", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := SetupLogger(&config.Config{LogLevel: tt.level}, log.ComponentNotify)
			assert.Equal(t, log.ComponentNotify, logger.Component())
			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, logger.Enabled(context.Background(), slog.LevelInfo))
		})
	}
}

func TestBootstrap_Defaults(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("PORT", "9090")

	cfg, logger := Bootstrap(log.ComponentApp)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, log.ComponentApp, logger.Component())
}
