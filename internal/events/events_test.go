package events

import (
	"context"
	"errors"
	"testing"

	"ledger/internal/core"
)

func TestNewExpenseEvent(t *testing.T) {
	e := core.Restore("id-7", core.NewExpense("Cinema", core.MustAmount("9.5"), core.NewDate(2024, 4, 2), core.Entertainment, "late show"))
	ev := NewExpenseEvent(ExpenseAdded, e)

	if ev.Type != ExpenseAdded || ev.ExpenseID != "id-7" || ev.Name != "Cinema" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Amount != "9.50" || ev.Date != "2024-04-02" || ev.Category != "ENTERTAINMENT" {
		t.Fatalf("unexpected formatted fields %+v", ev)
	}
	if ev.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}
}

func TestEventJSON(t *testing.T) {
	ev := NewSavedEvent(3)
	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := EventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != LedgerSaved || got.Count != 3 || got.ExpenseID != "" || !got.Timestamp.Equal(ev.Timestamp) {
		t.Fatalf("unexpected decoded event %+v", got)
	}

	if _, err := EventFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}

func TestRemovedEventCarriesOnlyID(t *testing.T) {
	ev := NewRemovedEvent("gone")
	if ev.Type != ExpenseRemoved || ev.ExpenseID != "gone" || ev.Name != "" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), NewSavedEvent(1)); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("nop close: %v", err)
	}
}

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeue = true, requeue
	return nil
}

func TestSettle(t *testing.T) {
	saved, _ := NewSavedEvent(2).ToJSON()
	failing := func(context.Context, Event) error { return errors.New("sheets down") }
	ok := func(_ context.Context, ev Event) error {
		if ev.Type != LedgerSaved || ev.Count != 2 {
			return errors.New("unexpected event")
		}
		return nil
	}

	tests := []struct {
		name        string
		body        []byte
		handler     Handler
		wantAck     bool
		wantRequeue bool
	}{
		{"handled", saved, ok, true, false},
		{"handler failure is requeued", saved, failing, false, true},
		{"garbage is dropped", []byte("nope"), ok, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeAck{}
			settle(context.Background(), a, tt.body, tt.handler)
			if a.acked != tt.wantAck {
				t.Errorf("acked = %v, want %v", a.acked, tt.wantAck)
			}
			if !tt.wantAck && !a.nacked {
				t.Error("expected a nack")
			}
			if a.requeue != tt.wantRequeue {
				t.Errorf("requeue = %v, want %v", a.requeue, tt.wantRequeue)
			}
		})
	}
}
