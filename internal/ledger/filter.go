// Package ledger holds the pure operations over a user's transactions:
// period filtering, aggregation and the opening-balance injector.
// Every function returns a new slice and never mutates its input.
package ledger

import (
	"sort"
	"time"

	"financeiro/internal/core"
)

// FilterByPeriod returns the transactions dated in year/month, in input order.
// Transactions without a valid date never match.
func FilterByPeriod(txs []core.Transaction, year, month int) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.InPeriod(year, month) {
			out = append(out, t)
		}
	}
	return out
}

// Dated returns only the transactions with a valid date, in input order.
func Dated(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.HasValidDate() {
			out = append(out, t)
		}
	}
	return out
}

// AvailablePeriods lists the distinct periods present in txs, newest first.
// An empty ledger yields the period containing now.
func AvailablePeriods(txs []core.Transaction, now time.Time) []core.Period {
	seen := make(map[core.Period]struct{})
	var periods []core.Period
	for _, t := range txs {
		if !t.HasValidDate() {
			continue
		}
		p := core.Period{Year: t.Date.Year(), Month: t.Date.Month()}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		periods = append(periods, p)
	}
	if len(periods) == 0 {
		return []core.Period{{Year: now.Year(), Month: int(now.Month())}}
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[j].Before(periods[i])
	})
	return periods
}

// Years returns the distinct years of periods, newest first.
func Years(periods []core.Period) []int {
	var years []int
	seen := make(map[int]bool)
	for _, p := range periods {
		if !seen[p.Year] {
			seen[p.Year] = true
			years = append(years, p.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Months returns the months available in year, ascending.
func Months(periods []core.Period, year int) []int {
	var months []int
	for _, p := range periods {
		if p.Year == year {
			months = append(months, p.Month)
		}
	}
	sort.Ints(months)
	return months
}
