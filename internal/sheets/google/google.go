package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"financeiro/internal/core"
	ports "financeiro/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client mirrors each ledger to its own tab of one spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu   sync.Mutex
	tabs map[string]bool // tabs known to exist
}

// Ensure interface conformance
var _ ports.LedgerMirror = (*Client)(nil)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	credentialsJSON, err := readCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return NewWithService(svc, spreadsheetID), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test server.
func NewWithService(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		tabs:          make(map[string]bool),
	}
}

// readCredentials returns the service account JSON, inline or from a file.
func readCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// MirrorLedger replaces the content of the ledger's tab with txs, creating
// the tab on first use.
func (c *Client) MirrorLedger(ctx context.Context, key string, txs []core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	tab := ports.TabName(key)

	if err := c.ensureTab(ctx, tab); err != nil {
		return err
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, tab+"!A:G", &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		c.forget(tab)
		return fmt.Errorf("clear %s: %w", tab, err)
	}

	vr := &gsheet.ValueRange{Values: ports.Rows(txs)}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, tab+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", tab, err)
	}

	slog.DebugContext(ctx, "Ledger mirrored to Google Sheets", "tab", tab, "rows", len(txs))
	return nil
}

func (c *Client) ensureTab(ctx context.Context, tab string) error {
	c.mu.Lock()
	known := c.tabs[tab]
	c.mu.Unlock()
	if known {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}

	c.mu.Lock()
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.tabs[s.Properties.Title] = true
		}
	}
	known = c.tabs[tab]
	c.mu.Unlock()
	if known {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: tab},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add tab %s: %w", tab, err)
	}
	slog.InfoContext(ctx, "Created ledger tab", "tab", tab)

	c.mu.Lock()
	c.tabs[tab] = true
	c.mu.Unlock()
	return nil
}

// forget drops a cached tab so the next mirror checks it again, e.g. after it
// was deleted by hand.
func (c *Client) forget(tab string) {
	c.mu.Lock()
	delete(c.tabs, tab)
	c.mu.Unlock()
}
