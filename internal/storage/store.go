// Package storage persists per-user ledgers. Every backend implements Store:
// Load returns the whole ledger and Save overwrites it.
package storage

import (
	"context"

	"financeiro/internal/core"
)

// Store is the ledger persistence contract.
type Store interface {
	// Load returns the ledger of key in stored order. A ledger that does not
	// exist yet loads as nil with no error.
	Load(ctx context.Context, key string) ([]core.Transaction, error)
	// Save replaces the whole ledger of key.
	Save(ctx context.Context, key string, txs []core.Transaction) error
	Close() error
}

// Lister is implemented by stores that can enumerate their ledgers.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}
