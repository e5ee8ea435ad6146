// Package ledger holds the authoritative in-memory expense collection and
// the aggregate queries over it.
package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// Store owns the live expense records. Callers only ever see copies.
type Store struct {
	mu       sync.Mutex
	items    []core.Expense
	ids      core.IDGenerator
	now      func() time.Time
	revision uint64
}

type Option func(*Store)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(g core.IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithClock sets the time source used to find the current month.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithExpenses seeds the store with already identified records, typically
// the result of a load. Identifiers are kept as they are.
func WithExpenses(es []core.Expense) Option {
	return func(s *Store) { s.items = append([]core.Expense(nil), es...) }
}

func New(opts ...Option) *Store {
	s := &Store{
		ids: core.UUIDGenerator{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add stores a copy of e under a freshly generated identifier and returns
// the stored record. Any identifier already carried by e is ignored.
func (s *Store) Add(e core.Expense) core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := core.Restore(s.ids.NewID(), e)
	s.items = append(s.items, stored)
	s.revision++
	return stored
}

// Remove deletes the record with the given id and reports whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.revision++
	return true
}

// Update replaces, in full, the record whose id matches e.ID(). An expense
// that never went through Add has no id and matches nothing.
func (s *Store) Update(e core.Expense) bool {
	if e.ID() == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(e.ID())
	if i < 0 {
		return false
	}
	s.items[i] = e
	s.revision++
	return true
}

// Replace swaps the whole collection for es, keeping their ids. It reports
// whether anything changed; an identical collection leaves the revision
// untouched.
func (s *Store) Replace(es []core.Expense) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sameRecords(s.items, es) {
		return false
	}
	s.items = append([]core.Expense(nil), es...)
	s.revision++
	return true
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Expense{}, false
	}
	return s.items[i], true
}

// List returns every record in insertion order.
func (s *Store) List() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Revision increases by one on every successful Add, Remove, Update or
// Replace.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Total sums every amount in the store.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Sum(s.items)
}

// ByMonth returns the records dated in the given year and month.
func (s *Store) ByMonth(year, month int) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(e core.Expense) bool {
		return e.Date.Year() == year && e.Date.Month() == month
	})
}

func (s *Store) MonthlyTotal(year, month int) decimal.Decimal {
	return core.Sum(s.ByMonth(year, month))
}

// ByCategory returns the records of exactly category c.
func (s *Store) ByCategory(c core.Category) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(e core.Expense) bool {
		return e.Category == c
	})
}

// TrailingMonthlyTotals sums spending for the current month and the n-1
// months before it. Every month key is present, empty months map to zero.
func (s *Store) TrailingMonthlyTotals(n int) map[core.YearMonth]decimal.Decimal {
	totals := make(map[core.YearMonth]decimal.Decimal)
	if n <= 0 {
		return totals
	}

	current := core.YearMonthOf(core.DateOf(s.now()))
	for i := 0; i < n; i++ {
		totals[current.AddMonths(-i)] = decimal.Zero
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		key := core.YearMonthOf(e.Date)
		if total, ok := totals[key]; ok {
			totals[key] = total.Add(e.Amount)
		}
	}
	return totals
}

// CategoryTotals sums the month's spending per category. The result always
// holds one entry for every category.
func (s *Store) CategoryTotals(year, month int) map[core.Category]decimal.Decimal {
	totals := make(map[core.Category]decimal.Decimal, len(core.Categories()))
	for _, c := range core.Categories() {
		totals[c] = decimal.Zero
	}
	for _, e := range s.ByMonth(year, month) {
		if total, ok := totals[e.Category]; ok {
			totals[e.Category] = total.Add(e.Amount)
		}
	}
	return totals
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID() == id {
			return i
		}
	}
	return -1
}

func (s *Store) filter(keep func(core.Expense) bool) []core.Expense {
	out := make([]core.Expense, 0)
	for _, e := range s.items {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func sameRecords(a, b []core.Expense) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
