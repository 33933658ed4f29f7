// Package csvfile stores each ledger as a ';'-separated file named
// gastos_{key}.csv under a base directory.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"financeiro/internal/core"
)

const separator = ';'

type Store struct {
	mu  sync.Mutex
	dir string
}

// New returns a store rooted at dir, creating the directory when missing.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the ledger file of key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, core.LedgerFileName(key))
}

// Load implements storage.Store. A missing or empty file is an empty ledger.
func (s *Store) Load(_ context.Context, key string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", filepath.Base(f.Name()), err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return core.Normalize(records), nil
}

// Save implements storage.Store. The file is replaced atomically.
func (s *Store) Save(_ context.Context, key string, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)
	tmp, err := os.CreateTemp(s.dir, ".gastos-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteRecords(tmp, txs); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}

	slog.Debug("Ledger file written", "path", path, "count", len(txs))
	return nil
}

// Keys implements storage.Lister by listing the ledger files of the directory.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list data directory: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, core.LedgerFilePrefix) || !strings.HasSuffix(name, core.LedgerFileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(strings.TrimPrefix(name, core.LedgerFilePrefix), core.LedgerFileExt))
	}
	return keys, nil
}

func (s *Store) Close() error { return nil }

// ReadRecords parses a ledger file into rows keyed by header name. Rows shorter
// than the header leave the trailing columns empty.
func ReadRecords(r io.Reader) ([]core.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = separator
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var out []core.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := make(core.RawRecord, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// WriteRecords writes the canonical header followed by one row per transaction.
func WriteRecords(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	cw.Comma = separator
	if err := cw.Write(core.Columns); err != nil {
		return err
	}
	for _, t := range txs {
		if err := cw.Write(t.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
