package csvcodec

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"ledger/internal/core"
)

// DefaultPath is used whenever Save or Load get an empty path.
const DefaultPath = "expenses.csv"

func resolve(path string) string {
	if path == "" {
		return DefaultPath
	}
	return path
}

// Save overwrites the file at path with the full collection. The data is
// written to a temporary file next to the target and renamed over it, so a
// failed save leaves the previous file untouched.
func Save(records []core.Expense, path string) error {
	path = resolve(path)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := Encode(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("write expenses: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	slog.Debug("Expenses saved", "path", path, "count", len(records))
	return nil
}

// Load reads every expense from path. A missing file yields an empty
// collection and no error.
func Load(path string) ([]core.Expense, error) {
	path = resolve(path)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Expense file not found, starting empty", "path", path)
		return []core.Expense{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load expenses from %s: %w", path, err)
	}

	slog.Debug("Expenses loaded", "path", path, "count", len(records))
	return records, nil
}
