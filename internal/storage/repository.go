// Package storage keeps the session ledger in an in-memory SQLite database.
//
// The database lives only as long as the store is open; nothing is written
// to disk.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"budgetwatch/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var ErrNotInMemory = errors.New("sqlite dsn must be an in-memory shared-cache database")

// MemoryDSN returns a shared-cache in-memory DSN for the named database.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// IsMemoryDSN reports whether dsn names a shared-cache in-memory database.
func IsMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") &&
		strings.Contains(dsn, "mode=memory") &&
		strings.Contains(dsn, "cache=shared")
}

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database, applies migrations and seeds the known
// categories in the given order.
func NewSQLiteStore(ctx context.Context, dsn string, categories []string) (*SQLiteStore, error) {
	if !IsMemoryDSN(dsn) {
		return nil, fmt.Errorf("%w: %q", ErrNotInMemory, dsn)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single pinned connection keeps the in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dsn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.DebugContext(ctx, "SQLite schema ready", "component", "storage", "version", version)

	s := &SQLiteStore{db: db}
	if err := s.seedCategories(ctx, categories); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) seedCategories(ctx context.Context, categories []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	position := 0
	for _, name := range categories {
		name = strings.TrimSpace(name)
		if name == "" || name == core.IncomeCategory {
			continue
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (name, position) VALUES (?, ?)`, name, position)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			position++
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	slog.InfoContext(ctx, "Categories seeded", "count", position)
	return nil
}

// Append implements ledger.Writer
func (s *SQLiteStore) Append(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, kind, note, category, amount) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.String(), string(t.Kind), t.Note, t.Category, t.Amount.String())
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read transaction id: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"seq", seq,
		"kind", t.Kind,
		"category", t.Category,
		"amount", t.Amount.String(),
		"date", t.Date.String())

	return strconv.FormatInt(seq, 10), nil
}

// Snapshot implements ledger.Lister
func (s *SQLiteStore) Snapshot(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, kind, note, category, amount FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t                  core.Transaction
			date, kind, amount string
		)
		if err := rows.Scan(&t.ID, &date, &kind, &t.Note, &t.Category, &amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("parse date of %s: %w", t.ID, err)
		}
		t.Date = core.Date{Time: parsed}
		t.Kind = core.Kind(kind)
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount of %s: %w", t.ID, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Categories implements ledger.TaxonomyReader
func (s *SQLiteStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
