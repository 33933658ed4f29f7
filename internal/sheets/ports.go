// Package sheets defines how a ledger is copied to an external spreadsheet.
package sheets

import (
	"context"

	"financeiro/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerMirror replaces the spreadsheet copy of a user's ledger.
	LedgerMirror interface {
		MirrorLedger(ctx context.Context, key string, txs []core.Transaction) error
	}
)

// TabName returns the spreadsheet tab holding the ledger of key.
func TabName(key string) string {
	return core.LedgerName(key)
}

// Rows renders txs as spreadsheet rows, header first. Amounts are numbers so
// the spreadsheet can sum them; undated rows keep their stored text.
func Rows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	header := make([]any, len(core.Columns))
	for i, c := range core.Columns {
		header[i] = c
	}
	rows = append(rows, header)
	for _, t := range txs {
		rows = append(rows, []any{
			t.ID,
			t.DateText(),
			string(t.Kind),
			t.Description,
			t.Amount.Reais(),
			string(t.PaymentMethod),
			t.Category,
		})
	}
	return rows
}
