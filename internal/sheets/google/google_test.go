package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"financeiro/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const testSpreadsheet = "sheet-id"

// fakeSheets answers the few Sheets API calls the mirror makes.
type fakeSheets struct {
	mu      sync.Mutex
	titles  []string
	gets    int
	added   []string
	cleared []string
	updated map[string][][]any
	failPut bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	base := "/v4/spreadsheets/" + testSpreadsheet
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && path == base:
		f.gets++
		ss := gsheet.Spreadsheet{}
		for _, t := range f.titles {
			ss.Sheets = append(ss.Sheets, &gsheet.Sheet{Properties: &gsheet.SheetProperties{Title: t}})
		}
		_ = json.NewEncoder(w).Encode(ss)
	case r.Method == http.MethodPost && path == base+":batchUpdate":
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.added = append(f.added, rq.AddSheet.Properties.Title)
				f.titles = append(f.titles, rq.AddSheet.Properties.Title)
			}
		}
		_, _ = w.Write([]byte(`{"spreadsheetId":"` + testSpreadsheet + `"}`))
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		rng := strings.TrimSuffix(strings.TrimPrefix(path, base+"/values/"), ":clear")
		f.cleared = append(f.cleared, rng)
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut && strings.HasPrefix(path, base+"/values/"):
		if f.failPut {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend error"}}`))
			return
		}
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.updated[strings.TrimPrefix(path, base+"/values/")] = vr.Values
		_, _ = w.Write([]byte(`{}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	if fake.updated == nil {
		fake.updated = make(map[string][][]any)
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewWithService(svc, testSpreadsheet)
}

func ledger() []core.Transaction {
	return []core.Transaction{
		{ID: "a", Date: core.NewDate(2024, 3, 2), Kind: core.Expense, Description: "=SUM(A1)",
			Amount: core.Money{Cents: 1990}, PaymentMethod: core.Card, Category: "Alimentação"},
		{ID: "b", Date: core.NewDate(2024, 3, 5), Kind: core.Income, Description: "salário",
			Amount: core.Money{Cents: 500000}, PaymentMethod: core.Transfer, Category: "Salário"},
	}
}

func TestMirrorLedger_CreatesTab(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Sheet1"}}
	c := newTestClient(t, fake)

	if err := c.MirrorLedger(context.Background(), "abc", ledger()); err != nil {
		t.Fatalf("MirrorLedger() error = %v", err)
	}

	if len(fake.added) != 1 || fake.added[0] != "gastos_abc" {
		t.Errorf("expected tab gastos_abc to be added, got %v", fake.added)
	}
	if len(fake.cleared) != 1 || fake.cleared[0] != "gastos_abc!A:G" {
		t.Errorf("unexpected cleared ranges %v", fake.cleared)
	}
	rows := fake.updated["gastos_abc!A1"]
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %v", rows)
	}
	if rows[0][0] != "Id" || rows[1][3] != "=SUM(A1)" || rows[2][4] != 5000.0 {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestMirrorLedger_ReusesKnownTab(t *testing.T) {
	fake := &fakeSheets{titles: []string{"gastos_abc"}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := c.MirrorLedger(ctx, "abc", ledger()[:i]); err != nil {
			t.Fatalf("MirrorLedger() error = %v", err)
		}
	}

	if len(fake.added) != 0 {
		t.Errorf("existing tab must not be added again, got %v", fake.added)
	}
	if fake.gets != 1 {
		t.Errorf("spreadsheet should be read once, got %d reads", fake.gets)
	}
	if rows := fake.updated["gastos_abc!A1"]; len(rows) != 3 {
		t.Errorf("last mirror should win, got %v", rows)
	}
}

func TestMirrorLedger_WriteFailure(t *testing.T) {
	fake := &fakeSheets{titles: []string{"gastos_abc"}, failPut: true}
	c := newTestClient(t, fake)

	err := c.MirrorLedger(context.Background(), "abc", ledger())
	if err == nil || !strings.Contains(err.Error(), "write gastos_abc") {
		t.Fatalf("expected write error, got %v", err)
	}
}

func TestMirrorLedger_NoService(t *testing.T) {
	c := &Client{}
	if err := c.MirrorLedger(context.Background(), "abc", nil); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"missing spreadsheet", Config{}, "missing GOOGLE_SPREADSHEET_ID"},
		{"missing credentials", Config{SpreadsheetID: "id"}, "missing service account credentials"},
		{"missing credentials file", Config{SpreadsheetID: "id", ServiceAccountFile: "/non/existent.json"}, "read service account file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ctx, tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("New() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}
