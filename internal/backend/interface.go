package backend

import (
	"context"

	"financeiro/internal/services"
	"financeiro/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the ledger store, the optional ledger-saved publisher
// and a cleanup function releasing both.
type BackendResult struct {
	Store     storage.Store
	Publisher services.Publisher // nil when AMQP is not configured
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// csv specific
	DataDirectory string

	// SQL specific
	SQLiteDBPath string
	PostgresDSN  string

	// Optional ledger-saved events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	CSVBackend      BackendType = "csv"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
