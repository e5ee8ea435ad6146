package backend

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/csvcodec"
)

// CSVRepository keeps the ledger in a single CSV file.
type CSVRepository struct {
	path string
}

// NewCSVRepository returns a repository for path, or csvcodec.DefaultPath
// when path is empty.
func NewCSVRepository(path string) *CSVRepository {
	if path == "" {
		path = csvcodec.DefaultPath
	}
	return &CSVRepository{path: path}
}

// Path returns the file the repository reads and writes.
func (r *CSVRepository) Path() string {
	return r.path
}

func (r *CSVRepository) Load(ctx context.Context) ([]core.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return csvcodec.Load(r.path)
}

func (r *CSVRepository) Save(ctx context.Context, records []core.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return csvcodec.Save(records, r.path)
}

func (r *CSVRepository) Close() error {
	return nil
}
