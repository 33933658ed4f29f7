// Package memory is a process-local ledger store for tests and demos.
package memory

import (
	"context"
	"sort"
	"sync"

	"financeiro/internal/core"
)

type Store struct {
	mu      sync.Mutex
	ledgers map[string][]core.Transaction
	saves   int
	failing error
}

func New() *Store {
	return &Store{ledgers: make(map[string][]core.Transaction)}
}

// Seed installs a ledger for key without counting it as a save.
func (s *Store) Seed(key string, txs []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[key] = clone(txs)
}

// FailWith makes every following Load and Save return err. A nil err restores
// normal behaviour.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = err
}

// Load returns a copy of the stored ledger.
func (s *Store) Load(_ context.Context, key string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return nil, s.failing
	}
	txs, ok := s.ledgers[key]
	if !ok {
		return nil, nil
	}
	return clone(txs), nil
}

// Save replaces the stored ledger with a copy of txs.
func (s *Store) Save(_ context.Context, key string, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return s.failing
	}
	s.ledgers[key] = clone(txs)
	s.saves++
	return nil
}

// Saves returns how many successful saves the store received.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Keys returns the stored ledger keys, sorted.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.ledgers))
	for k := range s.ledgers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Close() error { return nil }

func clone(txs []core.Transaction) []core.Transaction {
	if txs == nil {
		return nil
	}
	return append([]core.Transaction(nil), txs...)
}
