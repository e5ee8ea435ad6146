package events

import (
	"encoding/json"
	"time"

	"ledger/internal/core"
)

type Type string

const (
	ExpenseAdded   Type = "expense.added"
	ExpenseUpdated Type = "expense.updated"
	ExpenseRemoved Type = "expense.removed"
	LedgerSaved    Type = "ledger.saved"
)

// Event describes one change to the ledger. Expense fields are empty for
// ledger-wide events, Count is only set for LedgerSaved.
type Event struct {
	Type      Type      `json:"type"`
	ExpenseID string    `json:"expense_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Date      string    `json:"date,omitempty"`
	Category  string    `json:"category,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEvent snapshots e into an event of the given type.
func NewExpenseEvent(t Type, e core.Expense) Event {
	return Event{
		Type:      t,
		ExpenseID: e.ID(),
		Name:      e.Name,
		Amount:    core.FormatAmount(e.Amount),
		Date:      e.Date.String(),
		Category:  e.Category.Name(),
		Timestamp: time.Now().UTC(),
	}
}

// NewRemovedEvent only carries the id; the record is gone by the time the
// event is built.
func NewRemovedEvent(id string) Event {
	return Event{Type: ExpenseRemoved, ExpenseID: id, Timestamp: time.Now().UTC()}
}

func NewSavedEvent(count int) Event {
	return Event{Type: LedgerSaved, Count: count, Timestamp: time.Now().UTC()}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON creates an event from JSON bytes
func EventFromJSON(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}
