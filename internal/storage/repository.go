package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"financeiro/internal/core"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL database behind a SQLRepository.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	return string(d)
}

// SQLRepository stores ledgers in a transactions table, one row per
// transaction ordered by position.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLiteRepository opens (creating if needed) the SQLite database at dbPath.
func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return openRepository(SQLite, dbPath)
}

// NewPostgresRepository connects to the Postgres database at dsn.
func NewPostgresRepository(dsn string) (*SQLRepository, error) {
	return openRepository(Postgres, dsn)
}

func openRepository(d Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if d == SQLite {
		// A single writer avoids SQLITE_BUSY between concurrent sessions.
		db.SetMaxOpenConns(1)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, dialect: d}, nil
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// rebind rewrites ? placeholders into $n for Postgres.
func (r *SQLRepository) rebind(query string) string {
	if r.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Load implements Store.
func (r *SQLRepository) Load(ctx context.Context, key string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT id, date, kind, description, amount_cents, payment_method, category
		FROM transactions
		WHERE user_key = ?
		ORDER BY position`), key)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var records []core.RawRecord
	for rows.Next() {
		var (
			id, date, kind, description, method, category string
			cents                                         int64
		)
		if err := rows.Scan(&id, &date, &kind, &description, &cents, &method, &category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		records = append(records, core.RawRecord{
			core.FieldID:            id,
			core.FieldDate:          date,
			core.FieldKind:          kind,
			core.FieldDescription:   description,
			core.FieldAmount:        core.Money{Cents: cents}.Decimal(),
			core.FieldPaymentMethod: method,
			core.FieldCategory:      category,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return core.Normalize(records), nil
}

// Keys implements Lister.
func (r *SQLRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_key FROM transactions ORDER BY user_key`)
	if err != nil {
		return nil, fmt.Errorf("query ledger keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan ledger key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Save implements Store. The ledger of key is replaced inside one database
// transaction.
func (r *SQLRepository) Save(ctx context.Context, key string, txs []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.rebind(`DELETE FROM transactions WHERE user_key = ?`), key); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, r.rebind(`
		INSERT INTO transactions
			(user_key, position, id, date, kind, description, amount_cents, payment_method, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txs {
		if _, err := stmt.ExecContext(ctx,
			key, i, t.ID, t.DateText(), string(t.Kind), t.Description,
			t.Amount.Cents, string(t.PaymentMethod), t.Category,
		); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger: %w", err)
	}

	slog.DebugContext(ctx, "Ledger saved to database",
		"dialect", r.dialect,
		"user_key", key,
		"count", len(txs))
	return nil
}
