package core

import (
	"errors"
	"strings"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"100.5", 10050},
		{"100,5", 10050},
		{"1.234,56", 123456},
		{"R$ 10,00", 1000},
		{"", 0},
		{"n/a", 0},
		{"-50", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got.Cents != tc.out {
			t.Fatalf("%q expected %d, got %d", tc.in, tc.out, got.Cents)
		}
	}
}

func TestParseBRL(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"1.234,56", 123456},
		{" 1 234,56 ", 123456},
		{"0,00", 0},
		{"150", 15000},
		{"R$ 99,9", 9990},
	}
	for _, tc := range cases {
		got, err := ParseBRL(tc.in)
		if err != nil || got.Cents != tc.out {
			t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
		}
	}
	for _, bad := range []string{"", "abc", "-10,00", "1,2,3"} {
		if _, err := ParseBRL(bad); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", bad, err)
		}
	}
}

func TestEvaluateAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"12,50", 1250},
		{"19.90 * 3", 5970},
		{"19,90*2", 3980},
		{"(10 + 5) / 2", 750},
		{"100 - 0.01", 9999},
	}
	for _, tc := range cases {
		got, err := EvaluateAmount(tc.in)
		if err != nil || got.Cents != tc.out {
			t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
		}
	}
	for _, bad := range []string{"", "rm -rf", "10 - 20", "1 / 0"} {
		if _, err := EvaluateAmount(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1050}
	b := Money{Cents: 300}
	if a.Add(b).Cents != 1350 || a.Sub(b).Cents != 750 {
		t.Fatalf("unexpected arithmetic result")
	}
	if got := a.Decimal(); got != "10.50" {
		t.Fatalf("unexpected decimal %q", got)
	}
	if got := (Money{Cents: 5}).Decimal(); got != "0.05" {
		t.Fatalf("unexpected decimal %q", got)
	}
}

func TestFormatBRL(t *testing.T) {
	got := FormatBRL(Money{Cents: 123456})
	if !strings.HasPrefix(got, "R$ ") || !strings.HasSuffix(got, ",56") {
		t.Fatalf("unexpected format %q", got)
	}
	neg := FormatBRL(Money{Cents: -1000})
	if !strings.HasPrefix(neg, "-R$ ") || !strings.HasSuffix(neg, ",00") {
		t.Fatalf("unexpected negative format %q", neg)
	}
}
