package services

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/core"
	"ledger/internal/events"
	"ledger/internal/ledger"
	"ledger/internal/log"

	"golang.org/x/sync/errgroup"
)

// Repository persists the whole expense collection.
type Repository interface {
	Load(ctx context.Context) ([]core.Expense, error)
	Save(ctx context.Context, records []core.Expense) error
	Close() error
}

// Mirror receives a copy of the collection on export.
type Mirror interface {
	Name() string
	Export(ctx context.Context, records []core.Expense) error
}

// Source is a mirror whose content can be read back.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]core.Expense, error)
}

// ErrNoSource is returned by Import when no mirror can be read back.
var ErrNoSource = errors.New("no readable mirror configured")

// Deps are the collaborators of a LedgerService. Publisher and Logger may
// be nil.
type Deps struct {
	Repository Repository
	Publisher  events.Publisher
	Mirrors    []Mirror
	Logger     *log.Logger
}

// LedgerService orchestrates the in-memory ledger, its durable copy, change
// events and mirrors.
type LedgerService struct {
	store     *ledger.Store
	repo      Repository
	publisher events.Publisher
	mirrors   []Mirror
	logger    *log.Logger
}

// Open loads the persisted collection and returns a service over it.
func Open(ctx context.Context, deps Deps, opts ...ledger.Option) (*LedgerService, error) {
	if deps.Repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentLedger)

	records, err := deps.Repository.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	logger.DebugContext(ctx, "Ledger loaded", log.FieldOperation, log.OpLoad, log.FieldCount, len(records))

	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &LedgerService{
		store:     ledger.New(append(opts, ledger.WithExpenses(records))...),
		repo:      deps.Repository,
		publisher: publisher,
		mirrors:   deps.Mirrors,
		logger:    logger,
	}, nil
}

// Store exposes the ledger for queries.
func (s *LedgerService) Store() *ledger.Store {
	return s.store
}

// Add validates e and records it under a fresh id.
func (s *LedgerService) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validation failed: %w", err)
	}
	stored := s.store.Add(e)

	s.logger.InfoContext(ctx, "Expense added", log.NewFields().WithOperation(log.OpAdd).WithExpense(stored).ToSlice()...)
	s.publish(ctx, events.NewExpenseEvent(events.ExpenseAdded, stored))
	return stored, nil
}

// Update replaces the record with e's id. It reports false when no such
// record exists.
func (s *LedgerService) Update(ctx context.Context, e core.Expense) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}
	if !s.store.Update(e) {
		return false, nil
	}

	s.logger.InfoContext(ctx, "Expense updated", log.NewFields().WithOperation(log.OpUpdate).WithExpense(e).ToSlice()...)
	s.publish(ctx, events.NewExpenseEvent(events.ExpenseUpdated, e))
	return true, nil
}

// Remove deletes the record with id and reports whether it existed.
func (s *LedgerService) Remove(ctx context.Context, id string) bool {
	if !s.store.Remove(id) {
		return false
	}

	s.logger.InfoContext(ctx, "Expense removed", log.FieldOperation, log.OpRemove, log.FieldExpenseID, id)
	s.publish(ctx, events.NewRemovedEvent(id))
	return true
}

// Save writes the current collection to the repository.
func (s *LedgerService) Save(ctx context.Context) error {
	records := s.store.List()
	if err := s.repo.Save(ctx, records); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	s.logger.DebugContext(ctx, "Ledger saved", log.FieldOperation, log.OpSave, log.FieldCount, len(records))
	s.publish(ctx, events.NewSavedEvent(len(records)))
	return nil
}

// Import replaces the ledger with the content of the first mirror that can
// be read back, then saves it. It reports whether the ledger changed. On a
// failed save the previous content is restored.
func (s *LedgerService) Import(ctx context.Context) (bool, error) {
	var src Source
	for _, m := range s.mirrors {
		if r, ok := m.(Source); ok {
			src = r
			break
		}
	}
	if src == nil {
		return false, ErrNoSource
	}

	records, err := src.Fetch(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch from %s: %w", src.Name(), err)
	}
	seen := make(map[string]bool, len(records))
	for _, e := range records {
		if seen[e.ID()] {
			return false, fmt.Errorf("fetch from %s: duplicate id %q", src.Name(), e.ID())
		}
		seen[e.ID()] = true
	}

	previous := s.store.List()
	if !s.store.Replace(records) {
		s.logger.InfoContext(ctx, "Ledger already matches mirror", log.FieldMirror, src.Name(), log.FieldCount, len(records))
		return false, nil
	}
	if err := s.Save(ctx); err != nil {
		s.store.Replace(previous)
		return false, err
	}
	s.logger.InfoContext(ctx, "Ledger imported", log.FieldMirror, src.Name(), log.FieldCount, len(records))
	return true, nil
}

// Export pushes the collection to every mirror.
func (s *LedgerService) Export(ctx context.Context) error {
	return FanOut(ctx, s.logger, s.mirrors, s.store.List())
}

// Mirrors returns the names of the configured mirrors.
func (s *LedgerService) Mirrors() []string {
	names := make([]string, len(s.mirrors))
	for i, m := range s.mirrors {
		names[i] = m.Name()
	}
	return names
}

// Close releases the repository and the publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("repository: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}

func (s *LedgerService) publish(ctx context.Context, ev events.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			log.FieldEvent, string(ev.Type), log.FieldError, err)
	}
}

// FanOut exports records to every mirror concurrently, each with its own
// copy of the slice. The first failure is returned once all have finished.
func FanOut(ctx context.Context, logger *log.Logger, mirrors []Mirror, records []core.Expense) error {
	if len(mirrors) == 0 {
		return fmt.Errorf("no mirrors configured")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range mirrors {
		snapshot := append([]core.Expense(nil), records...)
		g.Go(func() error {
			if err := m.Export(gctx, snapshot); err != nil {
				logger.ErrorContext(gctx, "Mirror export failed",
					log.FieldMirror, m.Name(), log.FieldError, err)
				return fmt.Errorf("export to %s: %w", m.Name(), err)
			}
			logger.InfoContext(gctx, "Mirror export completed",
				log.FieldOperation, log.OpExport, log.FieldMirror, m.Name(), log.FieldCount, len(snapshot))
			return nil
		})
	}
	return g.Wait()
}
