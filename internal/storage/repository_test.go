package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"budgetwatch/internal/core"

	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T, cats []string) *SQLiteStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := NewSQLiteStore(context.Background(), MemoryDSN(name), cats)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIsMemoryDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want bool
	}{
		{MemoryDSN("ledger"), true},
		{"file:ledger?cache=shared&mode=memory", true},
		{":memory:", false},
		{"file:ledger?mode=memory", false},
		{"./data/ledger.db", false},
	}
	for _, tt := range tests {
		if got := IsMemoryDSN(tt.dsn); got != tt.want {
			t.Errorf("IsMemoryDSN(%q) = %v, want %v", tt.dsn, got, tt.want)
		}
	}
}

func TestNewSQLiteStore_RejectsFileDSN(t *testing.T) {
	if _, err := NewSQLiteStore(context.Background(), "./ledger.db", nil); !errors.Is(err, ErrNotInMemory) {
		t.Fatalf("expected ErrNotInMemory, got %v", err)
	}
}

func TestSQLiteStore_AppendAndSnapshot(t *testing.T) {
	s := newTestStore(t, []string{"Food", "Transport", "Food", core.IncomeCategory})
	ctx := context.Background()

	cats, err := s.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(cats) != 2 || cats[0] != "Food" || cats[1] != "Transport" {
		t.Fatalf("Categories() = %v", cats)
	}

	in := []core.Transaction{
		core.NewIncome(core.NewDate(2025, 5, 1), decimal.NewFromInt(5000), "salary"),
		core.NewExpense(core.NewDate(2025, 5, 2), "Food", decimal.RequireFromString("12.35"), "lunch"),
	}
	for i, tx := range in {
		ref, err := s.Append(ctx, tx)
		if err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
		if ref == "" {
			t.Fatalf("Append(%d) returned empty ref", i)
		}
	}

	out, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Snapshot() len = %d", len(out))
	}
	got := out[1]
	if got.Kind != core.Expense || got.Category != "Food" || got.Note != "lunch" || got.Date.String() != "2025-05-02" {
		t.Errorf("unexpected round trip: %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("12.35")) {
		t.Errorf("amount = %s, want 12.35", got.Amount)
	}
	if got.ID == "" {
		t.Error("expected generated ID")
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestSQLiteStore_RejectsInvalid(t *testing.T) {
	s := newTestStore(t, nil)
	_, err := s.Append(context.Background(), core.NewExpense(core.NewDate(2025, 5, 2), "Food", decimal.Zero, ""))
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	s := newTestStore(t, nil)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	// the store's pinned connection keeps the database alive across runs
	version, err := RunMigrations(MemoryDSN(strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())))
	if err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	if version != 2 {
		t.Errorf("RunMigrations() version = %d, want 2", version)
	}
}
