package memory

import (
	"context"
	"errors"
	"testing"

	"financeiro/internal/core"
	"financeiro/internal/sheets"
)

func TestMirrorLedger(t *testing.T) {
	m := New()
	txs := []core.Transaction{
		{ID: "a", Date: core.NewDate(2024, 3, 2), Kind: core.Expense, Description: "mercado",
			Amount: core.Money{Cents: 1990}, PaymentMethod: core.Card, Category: "Alimentação"},
		{ID: "b", RawDate: "32/13/2024", Kind: core.Income, Amount: core.Money{Cents: 100}},
	}

	if err := m.MirrorLedger(context.Background(), "abc", txs); err != nil {
		t.Fatalf("MirrorLedger() error = %v", err)
	}

	rows, ok := m.Tab(sheets.TabName("abc"))
	if !ok {
		t.Fatal("tab gastos_abc not written")
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != core.FieldID || rows[0][6] != core.FieldCategory {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "2024-03-02" || rows[1][4] != 19.9 {
		t.Errorf("unexpected first row %v", rows[1])
	}
	if rows[2][1] != "32/13/2024" {
		t.Errorf("undated row should keep its text, got %v", rows[2])
	}

	// a second mirror replaces the tab
	if err := m.MirrorLedger(context.Background(), "abc", nil); err != nil {
		t.Fatalf("MirrorLedger() error = %v", err)
	}
	rows, _ = m.Tab("gastos_abc")
	if len(rows) != 1 || m.Mirrors() != 2 {
		t.Errorf("expected header only after clearing, got %v (mirrors=%d)", rows, m.Mirrors())
	}
}

func TestMirrorLedger_Failure(t *testing.T) {
	m := New()
	boom := errors.New("quota exceeded")
	m.FailWith(boom)

	if err := m.MirrorLedger(context.Background(), "abc", nil); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if m.Mirrors() != 0 {
		t.Errorf("failed mirror should not count")
	}
}
