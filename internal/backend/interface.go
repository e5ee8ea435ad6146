package backend

import (
	"context"

	"ledger/internal/events"
	"ledger/internal/services"
)

// Result bundles what the factory built for a LedgerService.
type Result struct {
	Repository services.Repository
	Publisher  events.Publisher
	Mirrors    []services.Mirror
}

// Deps returns the result as LedgerService dependencies.
func (r *Result) Deps() services.Deps {
	return services.Deps{
		Repository: r.Repository,
		Publisher:  r.Publisher,
		Mirrors:    r.Mirrors,
	}
}

// Factory creates backends based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// csv
	CSVPath string

	// sqlite
	SQLiteDBPath string

	// Change events, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sheets mirror, disabled when GoogleSpreadsheetID is empty
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	CSVBackend    BackendType = "csv"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
