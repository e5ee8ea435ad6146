package backend

import (
	"context"
	"fmt"

	"ledger/internal/events"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/sheets"
	"ledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// Create builds the repository for config.Type plus the optional event
// publisher and sheets mirror. A broker that cannot be reached only disables
// events; a misconfigured mirror is an error.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := f.createRepository(config)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Repository: repo,
		Publisher:  f.createPublisher(config),
	}

	if config.GoogleSpreadsheetID != "" {
		client, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			repo.Close()
			result.Publisher.Close()
			return nil, fmt.Errorf("failed to initialize Google Sheets mirror: %w", err)
		}
		result.Mirrors = append(result.Mirrors, client)
		f.logger.Debug("Initialized Google Sheets mirror", "sheet", config.GoogleSheetName)
	}

	return result, nil
}

func (f *DefaultFactory) createRepository(config Config) (services.Repository, error) {
	switch config.Type {
	case CSVBackend:
		repo := NewCSVRepository(config.CSVPath)
		f.logger.Debug("Initialized CSV backend", log.FieldPath, repo.Path())
		return repo, nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Debug("Initialized SQLite backend", log.FieldPath, config.SQLiteDBPath)
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createPublisher(config Config) events.Publisher {
	if config.AMQPURL == "" {
		return events.Nop{}
	}
	client, err := events.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return events.Nop{}
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
