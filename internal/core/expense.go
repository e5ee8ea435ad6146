package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidCategory = errors.New("invalid category")
)

// Expense is one ledger entry. The identifier is assigned once, by the
// ledger store or by a decoder restoring persisted records, and cannot be
// changed afterwards. All other fields are plain values; changes reach the
// store only through its Update method.
type Expense struct {
	id          string
	Name        string
	Amount      decimal.Decimal
	Date        Date
	Category    Category
	Description string
}

// NewExpense builds an expense that has not been stored yet (empty ID).
func NewExpense(name string, amount decimal.Decimal, date Date, category Category, description string) Expense {
	return Expense{
		Name:        name,
		Amount:      amount,
		Date:        date,
		Category:    category,
		Description: description,
	}
}

// Restore returns a copy of e carrying id. It is meant for code that
// reconstructs records whose identity already exists (decoders, repositories).
func Restore(id string, e Expense) Expense {
	e.id = id
	return e
}

// ID returns the immutable identifier. Empty for expenses not yet stored.
func (e Expense) ID() string {
	return e.id
}

// Validate checks the contract expected from user input. The ledger store
// itself never calls it.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// Equal reports whether both expenses carry the same id and field values.
func (e Expense) Equal(other Expense) bool {
	return e.id == other.id &&
		e.Name == other.Name &&
		e.Amount.Equal(other.Amount) &&
		e.Date.Equal(other.Date.Time) &&
		e.Category == other.Category &&
		e.Description == other.Description
}

func (e Expense) String() string {
	return fmt.Sprintf("%s - $%s (%s) - %s", e.Name, FormatAmount(e.Amount), e.Category, e.Date)
}
