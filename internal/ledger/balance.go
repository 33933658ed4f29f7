package ledger

import (
	"fmt"

	"financeiro/internal/core"
)

// isOpeningBalanceFor matches the sentinel record of year/month.
func isOpeningBalanceFor(t core.Transaction, year, month int) bool {
	return t.IsOpeningBalance() && t.InPeriod(year, month)
}

// FindOpeningBalance returns the opening-balance record of year/month, if any.
func FindOpeningBalance(txs []core.Transaction, year, month int) (core.Transaction, bool) {
	for _, t := range txs {
		if isOpeningBalanceFor(t, year, month) {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// RemoveOpeningBalance drops every opening-balance record of year/month.
func RemoveOpeningBalance(txs []core.Transaction, year, month int) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if !isOpeningBalanceFor(t, year, month) {
			out = append(out, t)
		}
	}
	return out
}

// NewOpeningBalance builds the sentinel income record for year/month.
func NewOpeningBalance(year, month int, amount core.Money) core.Transaction {
	return core.Transaction{
		ID:            core.NewID(),
		Date:          core.NewDate(year, month, 1),
		Kind:          core.Income,
		Description:   core.OpeningBalanceDescription,
		Amount:        amount,
		PaymentMethod: core.Balance,
		Category:      core.OpeningBalanceCategory,
	}
}

// SetOpeningBalance replaces the opening balance of year/month with amount,
// appending the new record at the end. Repeated calls leave a single record.
func SetOpeningBalance(txs []core.Transaction, year, month int, amount core.Money) ([]core.Transaction, error) {
	if _, err := core.NewPeriod(year, month); err != nil {
		return nil, err
	}
	if amount.Cents < 0 {
		return nil, fmt.Errorf("opening balance: %w", core.ErrInvalidAmount)
	}
	out := RemoveOpeningBalance(txs, year, month)
	return append(out, NewOpeningBalance(year, month, amount)), nil
}

// Add appends t and returns the new ledger.
func Add(txs []core.Transaction, t core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs)+1)
	out = append(out, txs...)
	return append(out, t)
}

// Remove drops the transaction with id. It reports ErrTransactionNotFound when
// no record carries that id.
func Remove(txs []core.Transaction, id string) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(txs))
	found := false
	for _, t := range txs {
		if t.ID == id {
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		return txs, fmt.Errorf("%w: %s", core.ErrTransactionNotFound, id)
	}
	return out, nil
}
