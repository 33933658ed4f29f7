package core

import (
	"strings"

	"github.com/google/uuid"
)

// Canonical ledger columns, in file order.
const (
	FieldID            = "Id"
	FieldDate          = "Data"
	FieldKind          = "Tipo"
	FieldDescription   = "Descrição"
	FieldAmount        = "Valor"
	FieldPaymentMethod = "Forma de pagamento"
	FieldCategory      = "Categoria"
)

// Columns is the ledger header in canonical order.
var Columns = []string{
	FieldID,
	FieldDate,
	FieldKind,
	FieldDescription,
	FieldAmount,
	FieldPaymentMethod,
	FieldCategory,
}

// RawRecord is one stored row keyed by column name. Missing columns read as "".
type RawRecord map[string]string

// NewID returns a fresh transaction identifier.
func NewID() string {
	return uuid.NewString()
}

// Normalize turns stored rows into transactions.
//
// When any id is empty or repeated, every record gets a fresh id. Amounts are
// read leniently and fall back to zero. A date that is not YYYY-MM-DD leaves
// Date zero and keeps the text in RawDate so it can be written back untouched.
func Normalize(records []RawRecord) []Transaction {
	regenerate := needsNewIDs(records)
	txs := make([]Transaction, 0, len(records))
	for _, r := range records {
		t := Transaction{
			ID:            strings.TrimSpace(r[FieldID]),
			Kind:          Kind(strings.TrimSpace(r[FieldKind])),
			Description:   r[FieldDescription],
			Amount:        ParseAmount(r[FieldAmount]),
			PaymentMethod: PaymentMethod(strings.TrimSpace(r[FieldPaymentMethod])),
			Category:      strings.TrimSpace(r[FieldCategory]),
		}
		if regenerate {
			t.ID = NewID()
		}
		if d, err := ParseDate(r[FieldDate]); err == nil {
			t.Date = d
		} else {
			t.RawDate = r[FieldDate]
		}
		txs = append(txs, t)
	}
	return txs
}

func needsNewIDs(records []RawRecord) bool {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		id := strings.TrimSpace(r[FieldID])
		if id == "" {
			return true
		}
		if _, dup := seen[id]; dup {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

// Record converts a transaction back to its stored row.
func (t Transaction) Record() RawRecord {
	return RawRecord{
		FieldID:            t.ID,
		FieldDate:          t.DateText(),
		FieldKind:          string(t.Kind),
		FieldDescription:   t.Description,
		FieldAmount:        t.Amount.Decimal(),
		FieldPaymentMethod: string(t.PaymentMethod),
		FieldCategory:      t.Category,
	}
}

// Values returns the stored row in Columns order.
func (t Transaction) Values() []string {
	r := t.Record()
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = r[c]
	}
	return out
}
