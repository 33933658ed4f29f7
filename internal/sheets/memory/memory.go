// Package memory is a LedgerMirror that keeps the mirrored rows in process,
// for tests and for running the worker without a spreadsheet.
package memory

import (
	"context"
	"sync"

	"financeiro/internal/core"
	"financeiro/internal/sheets"
)

var _ sheets.LedgerMirror = (*Mirror)(nil)

type Mirror struct {
	mu      sync.Mutex
	tabs    map[string][][]any
	mirrors int
	failing error
}

func New() *Mirror {
	return &Mirror{tabs: make(map[string][][]any)}
}

// MirrorLedger replaces the tab of key with the rows of txs.
func (m *Mirror) MirrorLedger(_ context.Context, key string, txs []core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}
	m.tabs[sheets.TabName(key)] = sheets.Rows(txs)
	m.mirrors++
	return nil
}

// FailWith makes every following MirrorLedger return err. A nil err restores
// normal behaviour.
func (m *Mirror) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = err
}

// Tab returns the rows of a tab, header included.
func (m *Mirror) Tab(name string) ([][]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tabs[name]
	return rows, ok
}

// Mirrors returns how many ledgers were mirrored successfully.
func (m *Mirror) Mirrors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mirrors
}
