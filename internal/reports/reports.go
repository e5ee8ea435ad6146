// Package reports builds month overviews and spending trends from the
// ledger, memoising results until the ledger changes or the entry expires.
package reports

import (
	"fmt"
	"sort"
	"time"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/log"

	"github.com/shopspring/decimal"
)

// Source is the read side of the ledger the reports are computed from.
type Source interface {
	Revision() uint64
	ByMonth(year, month int) []core.Expense
	MonthlyTotal(year, month int) decimal.Decimal
	CategoryTotals(year, month int) map[core.Category]decimal.Decimal
	TrailingMonthlyTotals(n int) map[core.YearMonth]decimal.Decimal
}

// Service answers report queries against a Source.
type Service struct {
	src       Source
	now       func() time.Time
	logger    *log.Logger
	overviews *cache.LRU[string, core.MonthOverview]
	trends    *cache.LRU[string, []core.MonthTotal]
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used to key trend reports and to expire cached
// entries. It should match the clock of the Source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l.WithComponent(log.ComponentReports) }
}

// New creates a report service caching up to cacheSize results of each kind.
func New(src Source, cacheSize int, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		src:    src,
		now:    time.Now,
		logger: log.New(log.Config{Component: log.ComponentReports}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.overviews = cache.NewLRU[string, core.MonthOverview](cacheSize, ttl, cache.WithClock(s.now))
	s.trends = cache.NewLRU[string, []core.MonthTotal](cacheSize, ttl, cache.WithClock(s.now))
	return s
}

// MonthOverview summarises one month: total, record count and one entry
// per category in declaration order.
func (s *Service) MonthOverview(ym core.YearMonth) core.MonthOverview {
	key := fmt.Sprintf("%d:%s", s.src.Revision(), ym)
	if ov, ok := s.overviews.Get(key); ok {
		s.logger.Debug("Month overview cache hit", log.FieldYear, ym.Year, log.FieldMonth, ym.Month)
		return cloneOverview(ov)
	}

	records := s.src.ByMonth(ym.Year, ym.Month)
	totals := s.src.CategoryTotals(ym.Year, ym.Month)

	ov := core.MonthOverview{
		YearMonth:  ym,
		Total:      s.src.MonthlyTotal(ym.Year, ym.Month),
		Count:      len(records),
		ByCategory: make([]core.CategoryAmount, 0, len(totals)),
	}
	for _, c := range core.Categories() {
		ov.ByCategory = append(ov.ByCategory, core.CategoryAmount{Category: c, Amount: totals[c]})
	}

	s.overviews.Set(key, ov)
	return cloneOverview(ov)
}

// Trend returns the totals of the current month and the n-1 before it,
// oldest first.
func (s *Service) Trend(n int) []core.MonthTotal {
	current := core.YearMonthOf(core.DateOf(s.now()))
	key := fmt.Sprintf("%d:%s:%d", s.src.Revision(), current, n)
	if t, ok := s.trends.Get(key); ok {
		s.logger.Debug("Trend cache hit", log.FieldCount, n)
		return append([]core.MonthTotal(nil), t...)
	}

	totals := s.src.TrailingMonthlyTotals(n)
	out := make([]core.MonthTotal, 0, len(totals))
	for ym, total := range totals {
		out = append(out, core.MonthTotal{YearMonth: ym, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].YearMonth.Before(out[j].YearMonth)
	})

	s.trends.Set(key, out)
	return append([]core.MonthTotal(nil), out...)
}

// CacheStats reports hits and misses across both caches.
func (s *Service) CacheStats() cache.Stats {
	a, b := s.overviews.Stats(), s.trends.Stats()
	return cache.Stats{Hits: a.Hits + b.Hits, Misses: a.Misses + b.Misses}
}

// Prune drops expired entries from both caches and returns how many went.
func (s *Service) Prune() int {
	n := s.overviews.CleanExpired() + s.trends.CleanExpired()
	if n > 0 {
		s.logger.Debug("Pruned report cache", log.FieldCount, n)
	}
	return n
}

func cloneOverview(ov core.MonthOverview) core.MonthOverview {
	ov.ByCategory = append([]core.CategoryAmount(nil), ov.ByCategory...)
	return ov
}
