package ledger

import (
	"sort"

	"financeiro/internal/core"
)

// Summarize computes the monthly totals of txs. Card expenses are totalled
// apart and do not reduce the balance.
func Summarize(txs []core.Transaction) core.MonthlySummary {
	var s core.MonthlySummary
	for _, t := range txs {
		switch t.Kind {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case core.Expense:
			if t.PaymentMethod == core.Card {
				s.TotalExpenseCard = s.TotalExpenseCard.Add(t.Amount)
			} else {
				s.TotalExpenseExcludingCard = s.TotalExpenseExcludingCard.Add(t.Amount)
			}
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenseExcludingCard)
	return s
}

// GroupByCategory sums the amounts of the given kind per category, largest
// first. Ties are ordered by name so the result is stable.
func GroupByCategory(txs []core.Transaction, kind core.Kind) []core.CategoryAmount {
	totals := make(map[string]int64)
	for _, t := range txs {
		if t.Kind != kind {
			continue
		}
		totals[t.Category] += t.Amount.Cents
	}
	out := make([]core.CategoryAmount, 0, len(totals))
	for name, cents := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}
