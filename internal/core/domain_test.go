package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-03-15 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 15 {
		t.Fatalf("unexpected date %v", d)
	}
	for _, in := range []string{"", "15/03/2024", "2024-13-01", "2024-02-30", "garbage"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", in, err)
		}
	}
}

func TestParseInputDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-05", "2024-03-05"},
		{"05/03/2024", "2024-03-05"},
		{"5/3/2024", "2024-03-05"},
		{"05-03-2024", "2024-03-05"},
	}
	for _, tc := range cases {
		d, err := ParseInputDate(tc.in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if d.String() != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.in, tc.want, d.String())
		}
	}
	if _, err := ParseInputDate("31/02/2024"); err == nil {
		t.Fatalf("expected error for impossible date")
	}
}

func TestDateDisplay(t *testing.T) {
	if got := NewDate(2024, 1, 9).Display(); got != "09/01/2024" {
		t.Fatalf("unexpected display %q", got)
	}
	if got := (Date{}).String(); got != "" {
		t.Fatalf("zero date should render empty, got %q", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:            "1",
		Date:          NewDate(2025, 1, 1),
		Kind:          Expense,
		Description:   "mercado",
		Amount:        Money{Cents: 100},
		PaymentMethod: Pix,
		Category:      "Alimentação",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = Money{}
	zero.Description = ""
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount and empty description should be accepted, got %v", err)
	}

	bads := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.Kind = "Transfer" }, ErrInvalidKind},
		{func(tx *Transaction) { tx.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.PaymentMethod = "Cheque" }, ErrInvalidPaymentMethod},
		{func(tx *Transaction) { tx.Category = " " }, ErrEmptyCategory},
		{func(tx *Transaction) { tx.Date = Date{} }, nil},
	}
	for i, b := range bads {
		tx := good
		b.mutate(&tx)
		err := tx.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if b.want != nil && !errors.Is(err, b.want) {
			t.Fatalf("case %d expected %v, got %v", i, b.want, err)
		}
	}
}

func TestTransactionInPeriod(t *testing.T) {
	tx := Transaction{Date: NewDate(2024, 2, 29)}
	if !tx.InPeriod(2024, 2) {
		t.Fatalf("expected transaction in 02/2024")
	}
	if tx.InPeriod(2024, 3) || tx.InPeriod(2023, 2) {
		t.Fatalf("transaction matched the wrong period")
	}
	undated := Transaction{RawDate: "ontem"}
	if undated.InPeriod(1, 1) {
		t.Fatalf("undated transaction must not match any period")
	}
	if undated.DateText() != "ontem" {
		t.Fatalf("raw date must be preserved, got %q", undated.DateText())
	}
}

func TestPaymentMethodIsValid(t *testing.T) {
	for _, m := range PaymentMethods() {
		if !m.IsValid() {
			t.Fatalf("%s should be valid", m)
		}
	}
	if Balance.IsValid() {
		t.Fatalf("balance method is reserved and must not be user-selectable")
	}
}

func TestPeriod(t *testing.T) {
	p, err := NewPeriod(2024, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.String() != "03/2024" {
		t.Fatalf("unexpected period string %q", p.String())
	}
	if p.FirstDay().String() != "2024-03-01" {
		t.Fatalf("unexpected first day %s", p.FirstDay())
	}
	if !p.Before(Period{Year: 2024, Month: 4}) || !(Period{Year: 2023, Month: 12}).Before(p) {
		t.Fatalf("period ordering is wrong")
	}
	for _, bad := range []Period{{2024, 0}, {2024, 13}, {0, 1}} {
		if _, err := NewPeriod(bad.Year, bad.Month); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("%v expected ErrInvalidPeriod, got %v", bad, err)
		}
	}
}
