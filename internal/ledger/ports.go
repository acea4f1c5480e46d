package ledger

import (
	"context"

	"budgetwatch/internal/core"
)

// Ports for the session ledger. Stores keep records for the lifetime of the
// process only.
type (
	Writer interface {
		// Append validates and stores the transaction, returning a store reference.
		Append(ctx context.Context, tx core.Transaction) (ref string, err error)
	}

	Lister interface {
		// Snapshot returns a copy of every stored transaction in insertion order.
		Snapshot(ctx context.Context) ([]core.Transaction, error)
	}

	// TaxonomyReader provides the known expense categories.
	TaxonomyReader interface {
		Categories(ctx context.Context) ([]string, error)
	}

	Store interface {
		Writer
		Lister
		TaxonomyReader
	}
)
