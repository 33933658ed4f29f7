package core

import "fmt"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthlySummary holds the derived totals of a set of transactions.
// Card expenses are reported apart and do not reduce Balance.
type MonthlySummary struct {
	TotalIncome               Money
	TotalExpenseExcludingCard Money
	TotalExpenseCard          Money
	Balance                   Money
}

// Period is a (year, month) pair, the unit of filtering and reporting.
type Period struct {
	Year  int
	Month int // 1-12
}

func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// String renders the period as MM/YYYY.
func (p Period) String() string {
	return fmt.Sprintf("%02d/%d", p.Month, p.Year)
}

// FirstDay returns the first calendar day of the period.
func (p Period) FirstDay() Date {
	return NewDate(p.Year, p.Month, 1)
}

// Before orders periods chronologically.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}
