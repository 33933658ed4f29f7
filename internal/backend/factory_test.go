package backend

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"financeiro/internal/config"
	"financeiro/internal/core"
	"financeiro/internal/storage"
	"financeiro/internal/storage/csvfile"
	"financeiro/internal/storage/memory"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "csv", DataDir: "/tmp/ledgers", AMQPQueue: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != CSVBackend || cfg.DataDirectory != "/tmp/ledgers" || cfg.AMQPQueue != "q" {
		t.Errorf("unexpected backend config %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"csv", Config{Type: CSVBackend}, false},
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without dsn", Config{Type: PostgresBackend}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	want := []string{"csv", "sqlite", "postgres", "memory"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	factory := NewFactory(quietLogger())
	ctx := context.Background()

	tests := []struct {
		name   string
		config Config
		check  func(t *testing.T, s storage.Store)
	}{
		{
			name:   "csv",
			config: Config{Type: CSVBackend, DataDirectory: filepath.Join(dir, "csv")},
			check: func(t *testing.T, s storage.Store) {
				if _, ok := s.(*csvfile.Store); !ok {
					t.Errorf("expected csv store, got %T", s)
				}
			},
		},
		{
			name:   "sqlite",
			config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "financeiro.db")},
			check: func(t *testing.T, s storage.Store) {
				if _, ok := s.(*storage.SQLRepository); !ok {
					t.Errorf("expected SQL repository, got %T", s)
				}
			},
		},
		{
			name:   "memory",
			config: Config{Type: MemoryBackend},
			check: func(t *testing.T, s storage.Store) {
				if _, ok := s.(*memory.Store); !ok {
					t.Errorf("expected memory store, got %T", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := factory.CreateBackend(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			tt.check(t, res.Store)
			if res.Publisher != nil {
				t.Errorf("publisher should be nil without AMQP_URL")
			}

			txs := []core.Transaction{{
				ID: "1", Date: core.NewDate(2024, 3, 1), Kind: core.Income,
				Amount: core.Money{Cents: 100}, PaymentMethod: core.Pix, Category: "Outros",
			}}
			if err := res.Store.Save(ctx, "key", txs); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := res.Store.Load(ctx, "key")
			if err != nil || len(got) != 1 {
				t.Fatalf("Load() = %v, %v", got, err)
			}
			if err := res.Cleanup(); err != nil {
				t.Errorf("Cleanup() error = %v", err)
			}
		})
	}
}

func TestCreateBackend_Invalid(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	if err == nil {
		t.Fatal("expected validation error")
	}
}
