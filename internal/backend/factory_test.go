package backend

import (
	"context"
	"errors"
	"testing"

	"budgetwatch/internal/config"
	"budgetwatch/internal/core"
	"budgetwatch/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errIs   error
	}{
		{"memory", Config{Type: MemoryBackend}, false, nil},
		{"sqlite in memory", Config{Type: SQLiteBackend, SQLiteDSN: storage.MemoryDSN("x")}, false, nil},
		{"sqlite on disk", Config{Type: SQLiteBackend, SQLiteDSN: "./budget.db"}, true, storage.ErrNotInMemory},
		{"sqlite without dsn", Config{Type: SQLiteBackend}, true, nil},
		{"unknown", Config{Type: "sheets"}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.errIs != nil {
				assert.True(t, errors.Is(err, tt.errIs), "got %v", err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg := &config.Config{DataBackend: "sqlite", SQLiteDSN: storage.MemoryDSN("app"), Categories: "Food, Rent"}
	bc, err := FromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, bc.Type)
	assert.Equal(t, []string{"Food", "Rent"}, bc.Categories)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)
}

func TestFactory_CreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	for _, cfg := range []Config{
		{Type: MemoryBackend, Categories: []string{"Food", "Rent"}},
		{Type: SQLiteBackend, SQLiteDSN: storage.MemoryDSN("factory_test"), Categories: []string{"Food", "Rent"}},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.CreateBackend(ctx, cfg)
			require.NoError(t, err)
			defer res.Close()

			cats, err := res.Store.Categories(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"Food", "Rent"}, cats)

			_, err = res.Store.Append(ctx, core.NewExpense(core.NewDate(2025, 5, 1), "Food", decimal.NewFromInt(12), "lunch"))
			require.NoError(t, err)
			txs, err := res.Store.Snapshot(ctx)
			require.NoError(t, err)
			assert.Len(t, txs, 1)
		})
	}

	_, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDSN: "./budget.db"})
	assert.ErrorIs(t, err, storage.ErrNotInMemory)
}
