package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  Kind = "Receita"
	Expense Kind = "Despesa"
)

const (
	Card     PaymentMethod = "Cartão"
	Pix      PaymentMethod = "Pix"
	Cash     PaymentMethod = "Dinheiro"
	Boleto   PaymentMethod = "Boleto"
	Transfer PaymentMethod = "Transferência"
	// Balance is reserved for synthetic opening-balance records.
	Balance PaymentMethod = "Saldo"
)

const (
	OpeningBalanceDescription = "Saldo inicial do mês"
	OpeningBalanceCategory    = "Saldo Inicial"
	OtherCategory             = "Outros"
)

const (
	// DateLayout is the canonical stored form of a transaction date.
	DateLayout = "2006-01-02"
	// DisplayDateLayout is used in tables and reports.
	DisplayDateLayout = "02/01/2006"

	maxDescriptionLen = 200
)

type (
	Kind          string
	PaymentMethod string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID            string
		Date          Date
		RawDate       string // stored text, kept only when Date could not be parsed
		Kind          Kind
		Description   string
		Amount        Money
		PaymentMethod PaymentMethod
		Category      string
	}
)

var (
	ErrInvalidDay           = errors.New("invalid day")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidKind          = errors.New("invalid transaction kind")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrEmptyCategory        = errors.New("empty category")
	ErrInvalidPeriod        = errors.New("invalid period")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrDescriptionTooLong   = errors.New("description too long (max 200 characters)")
)

// Kinds lists the transaction kinds in display order.
func Kinds() []Kind {
	return []Kind{Expense, Income}
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// PaymentMethods lists the methods a user may pick. Balance is not included.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{Card, Pix, Cash, Boleto, Transfer}
}

// IsValid reports whether m is a user-selectable method.
func (m PaymentMethod) IsValid() bool {
	for _, pm := range PaymentMethods() {
		if m == pm {
			return true
		}
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// String renders the canonical YYYY-MM-DD form, or "" for a zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Display renders the date as dd/mm/yyyy.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DisplayDateLayout)
}

// ParseDate parses the strict ISO form used in the ledger file.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// inputDateLayouts are tried in order for dates typed by a user. Day-first forms
// follow the pt-BR convention.
var inputDateLayouts = []string{
	DateLayout,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
}

// ParseInputDate accepts ISO or day-first user input and returns the normalized date.
func ParseInputDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, ErrInvalidDate
}

// HasValidDate reports whether the transaction takes part in date-based views.
func (t Transaction) HasValidDate() bool {
	return !t.Date.IsZero()
}

// DateText is the value written back to storage.
func (t Transaction) DateText() string {
	if t.Date.IsZero() {
		return t.RawDate
	}
	return t.Date.String()
}

// InPeriod reports whether the transaction date falls in year/month.
func (t Transaction) InPeriod(year, month int) bool {
	return t.HasValidDate() && t.Date.Year() == year && t.Date.Month() == month
}

// IsOpeningBalance reports whether t is the synthetic opening-balance record.
func (t Transaction) IsOpeningBalance() bool {
	return t.Description == OpeningBalanceDescription
}

// Validate checks a transaction entered by a user before it joins the ledger.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if utf8.RuneCountInString(t.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !t.PaymentMethod.IsValid() && t.PaymentMethod != Balance {
		return ErrInvalidPaymentMethod
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
