package worker

import (
	"context"
	"fmt"
	"time"

	"ledger/internal/core"
	"ledger/internal/events"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/reports"
	"ledger/internal/services"
)

// MirrorWorker keeps mirrors in step with the durable ledger. Every
// ledger.saved event triggers a reload and a full export.
//
// The worker keeps its own copy of the ledger between events and logs a
// summary of the current month after each sync. Reloads that bring no
// change keep the store revision, so the summary comes from the report cache.
type MirrorWorker struct {
	repo      services.Repository
	mirrors   []services.Mirror
	logger    *log.Logger
	now       func() time.Time
	cacheSize int
	cacheTTL  time.Duration
	store     *ledger.Store
	reports   *reports.Service
}

// Option configures a MirrorWorker.
type Option func(*MirrorWorker)

// WithClock sets the clock used to pick the month to summarise.
func WithClock(now func() time.Time) Option {
	return func(w *MirrorWorker) { w.now = now }
}

// WithReportCache sizes the summary cache.
func WithReportCache(size int, ttl time.Duration) Option {
	return func(w *MirrorWorker) {
		w.cacheSize = size
		w.cacheTTL = ttl
	}
}

func NewMirrorWorker(repo services.Repository, mirrors []services.Mirror, logger *log.Logger, opts ...Option) *MirrorWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	w := &MirrorWorker{
		repo:      repo,
		mirrors:   mirrors,
		logger:    logger.WithComponent(log.ComponentWorker),
		now:       time.Now,
		cacheSize: 64,
		cacheTTL:  5 * time.Minute,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.store = ledger.New(ledger.WithClock(w.now))
	w.reports = reports.New(w.store, w.cacheSize, w.cacheTTL,
		reports.WithClock(w.now), reports.WithLogger(logger))
	return w
}

// HandleEvent reacts to ledger.saved and ignores per-expense events, which
// are always followed by a save.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev events.Event) error {
	if ev.Type != events.LedgerSaved {
		w.logger.DebugContext(ctx, "Ignoring event", log.FieldEvent, string(ev.Type))
		return nil
	}
	return w.Sync(ctx)
}

// Sync exports the current durable ledger to every mirror.
func (w *MirrorWorker) Sync(ctx context.Context) error {
	records, err := w.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	changed := w.store.Replace(records)
	w.logger.InfoContext(ctx, "Syncing mirrors", log.FieldCount, len(records), "changed", changed)
	if err := services.FanOut(ctx, w.logger, w.mirrors, records); err != nil {
		return err
	}
	w.summarise(ctx)
	return nil
}

func (w *MirrorWorker) summarise(ctx context.Context) {
	ym := core.YearMonthOf(core.DateOf(w.now()))
	ov := w.reports.MonthOverview(ym)
	stats := w.reports.CacheStats()
	w.logger.InfoContext(ctx, "Month to date",
		log.FieldYear, ym.Year,
		log.FieldMonth, ym.Month,
		log.FieldAmount, core.FormatAmount(ov.Total),
		log.FieldCount, ov.Count,
		"cache_hits", stats.Hits,
		"cache_misses", stats.Misses)
	w.reports.Prune()
}

// Consumer is the subscribe side of the event broker.
type Consumer interface {
	Consume(ctx context.Context, handler events.Handler) error
}

// Run syncs once at startup, then follows the event stream until ctx is
// cancelled. A failed startup sync is logged and does not stop the worker.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer) error {
	if err := w.Sync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup sync failed", log.FieldError, err)
	}
	err := consumer.Consume(ctx, w.HandleEvent)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
