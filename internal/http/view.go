package http

import (
	"time"

	"financeiro/internal/core"
	"financeiro/internal/ledger"
	"financeiro/internal/services"
)

// pageData feeds index.html.
type pageData struct {
	Title             string
	LedgerName        string
	Today             string
	Kinds             []core.Kind
	PaymentMethods    []core.PaymentMethod
	IncomeCategories  []string
	ExpenseCategories []string
	Years             []int
	Months            []int
	Month             monthData
}

// loginData feeds login.html.
type loginData struct {
	Title   string
	Email   string
	Warning string
}

// monthData feeds the "month" partial: summary box, opening balance, table
// and category bars of one period.
type monthData struct {
	Period         core.Period
	Label          string
	Query          string
	HasData        bool
	Summary        summaryData
	OpeningBalance string // formatted; empty when the month has none
	Rows           []rowData
	IncomeBars     []barData
	ExpenseBars    []barData
	Notice         *noticeData
}

type summaryData struct {
	Income      string
	ExpenseCash string
	Balance     string
	ExpenseCard string
	Negative    bool
}

type rowData struct {
	ID            string
	Date          string
	Kind          string
	Income        bool
	Description   string
	Amount        string
	PaymentMethod string
	Category      string
}

type barData struct {
	Name   string
	Amount string
	Width  int
}

type noticeData struct {
	Type    NotificationType
	Message string
}

func newMonthData(v services.MonthView) monthData {
	m := monthData{
		Period:  v.Period,
		Label:   v.Period.String(),
		Query:   periodQuery(v.Period),
		HasData: len(v.Transactions) > 0,
		Summary: summaryData{
			Income:      core.FormatBRL(v.Summary.TotalIncome),
			ExpenseCash: core.FormatBRL(v.Summary.TotalExpenseExcludingCard),
			Balance:     core.FormatBRL(v.Summary.Balance),
			ExpenseCard: core.FormatBRL(v.Summary.TotalExpenseCard),
			Negative:    v.Summary.Balance.Cents < 0,
		},
		IncomeBars:  newBars(v.IncomeByCategory),
		ExpenseBars: newBars(v.ExpenseByCategory),
	}
	if v.OpeningBalance != nil {
		m.OpeningBalance = core.FormatBRL(v.OpeningBalance.Amount)
	}
	for _, t := range v.Transactions {
		m.Rows = append(m.Rows, rowData{
			ID:            t.ID,
			Date:          t.Date.Display(),
			Kind:          string(t.Kind),
			Income:        t.Kind == core.Income,
			Description:   t.Description,
			Amount:        core.FormatBRL(t.Amount),
			PaymentMethod: string(t.PaymentMethod),
			Category:      t.Category,
		})
	}
	return m
}

// newBars scales category sums against the largest one.
func newBars(sums []core.CategoryAmount) []barData {
	var max int64
	for _, s := range sums {
		if s.Amount.Cents > max {
			max = s.Amount.Cents
		}
	}
	bars := make([]barData, 0, len(sums))
	for _, s := range sums {
		bars = append(bars, barData{
			Name:   s.Name,
			Amount: core.FormatBRL(s.Amount),
			Width:  barWidth(s.Amount.Cents, max),
		})
	}
	return bars
}

func (s *Server) newPageData(sess *services.Session, v services.MonthView, periods []core.Period) pageData {
	return pageData{
		Title:             s.deps.Report.Title,
		LedgerName:        core.LedgerName(sess.Key()),
		Today:             s.now().Format(core.DateLayout),
		Kinds:             core.Kinds(),
		PaymentMethods:    core.PaymentMethods(),
		IncomeCategories:  s.deps.Taxonomy.CategoriesFor(core.Income),
		ExpenseCategories: s.deps.Taxonomy.CategoriesFor(core.Expense),
		Years:             ledger.Years(periods),
		Months:            ledger.Months(periods, v.Period.Year),
		Month:             newMonthData(v),
	}
}

func (s *Server) now() time.Time {
	if s.deps.Now != nil {
		return s.deps.Now()
	}
	return time.Now()
}

// JSON shapes of the /api endpoints. Amounts are exposed in cents and as
// formatted text.

type apiAmount struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func newAPIAmount(m core.Money) apiAmount {
	return apiAmount{Cents: m.Cents, Formatted: core.FormatBRL(m)}
}

type apiPeriod struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type apiSummary struct {
	Period                    apiPeriod  `json:"period"`
	Transactions              int        `json:"transactions"`
	TotalIncome               apiAmount  `json:"total_income"`
	TotalExpenseExcludingCard apiAmount  `json:"total_expense_excluding_card"`
	TotalExpenseCard          apiAmount  `json:"total_expense_card"`
	Balance                   apiAmount  `json:"balance"`
	OpeningBalance            *apiAmount `json:"opening_balance,omitempty"`
}

type apiCategory struct {
	Name   string    `json:"name"`
	Amount apiAmount `json:"amount"`
}

type apiCategories struct {
	Period  apiPeriod     `json:"period"`
	Income  []apiCategory `json:"income"`
	Expense []apiCategory `json:"expense"`
}

type apiPeriods struct {
	Periods []apiPeriod `json:"periods"`
	Years   []int       `json:"years"`
}

func newAPISummary(v services.MonthView) apiSummary {
	out := apiSummary{
		Period:                    apiPeriod{v.Period.Year, v.Period.Month},
		Transactions:              len(v.Transactions),
		TotalIncome:               newAPIAmount(v.Summary.TotalIncome),
		TotalExpenseExcludingCard: newAPIAmount(v.Summary.TotalExpenseExcludingCard),
		TotalExpenseCard:          newAPIAmount(v.Summary.TotalExpenseCard),
		Balance:                   newAPIAmount(v.Summary.Balance),
	}
	if v.OpeningBalance != nil {
		ob := newAPIAmount(v.OpeningBalance.Amount)
		out.OpeningBalance = &ob
	}
	return out
}

func newAPICategories(v services.MonthView) apiCategories {
	conv := func(sums []core.CategoryAmount) []apiCategory {
		out := make([]apiCategory, 0, len(sums))
		for _, s := range sums {
			out = append(out, apiCategory{Name: s.Name, Amount: newAPIAmount(s.Amount)})
		}
		return out
	}
	return apiCategories{
		Period:  apiPeriod{v.Period.Year, v.Period.Month},
		Income:  conv(v.IncomeByCategory),
		Expense: conv(v.ExpenseByCategory),
	}
}

func newAPIPeriods(periods []core.Period) apiPeriods {
	out := apiPeriods{Periods: make([]apiPeriod, 0, len(periods)), Years: ledger.Years(periods)}
	for _, p := range periods {
		out.Periods = append(out.Periods, apiPeriod{p.Year, p.Month})
	}
	return out
}
