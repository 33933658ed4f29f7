// Package core provides the ledger domain types and the money, date and
// identity helpers shared by every other package.
package core

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	maxCents       = decimal.NewFromInt(math.MaxInt64 / 100)
	mathExpression = regexp.MustCompile(`^[0-9+\-*/.() ]+$`)
	brlPrinter     = message.NewPrinter(language.BrazilianPortuguese)
)

// ParseDecimalToCents converts a non-negative decimal string to cents.
//
// Both dot (12.34) and comma (12,34) separators are accepted. A third decimal
// digit is rounded half-up. Signs are rejected.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return decimalToCents(d)
}

func decimalToCents(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	if d.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

// ParseAmount is the lenient parser used when loading stored rows. Values that
// cannot be read, and negative values, become zero.
func ParseAmount(s string) Money {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}
	}
	cents, err := decimalToCents(d)
	if err != nil {
		return Money{}
	}
	return Money{Cents: cents}
}

// ParseBRL reads a pt-BR amount such as "1.234,56". Dots are thousands
// separators and the comma is the decimal separator.
func ParseBRL(s string) (Money, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(s, "R$")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents, err := decimalToCents(d)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// EvaluateAmount accepts either a plain amount or a small arithmetic
// expression such as "19,90 * 3" and returns the resulting non-negative amount.
func EvaluateAmount(expr string) (Money, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Money{}, ErrInvalidAmount
	}
	if cents, err := ParseDecimalToCents(expr); err == nil {
		return Money{Cents: cents}, nil
	}
	clean := strings.TrimSpace(strings.TrimPrefix(expr, "R$"))
	clean = strings.ReplaceAll(clean, ",", ".")
	if !mathExpression.MatchString(clean) {
		return Money{}, fmt.Errorf("%w: %q is not an arithmetic expression", ErrInvalidAmount, expr)
	}
	expression, err := govaluate.NewEvaluableExpression(clean)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	result, err := expression.Evaluate(nil)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	v, ok := result.(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return Money{}, fmt.Errorf("%w: expression result %v", ErrInvalidAmount, result)
	}
	cents, err := decimalToCents(decimal.NewFromFloat(v))
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// Reais returns the value as a float64 for display purposes.
// Use cents for calculations.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Decimal renders the amount with a dot and two decimals, the stored form.
func (m Money) Decimal() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// FormatBRL renders the amount in Brazilian currency notation, e.g. "R$ 1.234,56".
func FormatBRL(m Money) string {
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + brlPrinter.Sprintf("R$ %.2f", float64(cents)/100.0)
}

func (m Money) String() string {
	return FormatBRL(m)
}
