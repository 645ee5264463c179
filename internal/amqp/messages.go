package amqp

import (
	"encoding/json"
	"time"

	"hissab/internal/core"
)

// Event types published on the exchange; also used as routing key suffix.
const (
	EventPurchaseRecorded = "purchase.recorded"
	EventPurchaseUpdated  = "purchase.updated"
	EventPurchaseDeleted  = "purchase.deleted"
	EventSyncCompleted    = "sync.completed"
	EventSyncFailed       = "sync.failed"
)

// Event is a notification about a ledger change or a finished drain pass.
type Event struct {
	Type       string    `json:"type"`
	PurchaseID string    `json:"purchase_id,omitempty"`
	ItemID     string    `json:"item_id,omitempty"`
	ItemName   string    `json:"item_name,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	TotalCents int64     `json:"total_cents,omitempty"`
	Date       string    `json:"date,omitempty"`
	Synced     int       `json:"synced,omitempty"`
	Pending    int       `json:"pending,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewPurchaseEvent describes a change of p.
func NewPurchaseEvent(eventType string, p core.Purchase) *Event {
	return &Event{
		Type:       eventType,
		PurchaseID: p.ID,
		ItemID:     p.ItemID,
		ItemName:   p.ItemName,
		Quantity:   p.Quantity,
		TotalCents: p.Total.Cents,
		Date:       p.Date.String(),
		Timestamp:  time.Now().UTC(),
	}
}

// NewSyncEvent describes the outcome of a drain pass.
func NewSyncEvent(synced, pending int, err error) *Event {
	ev := &Event{
		Type:      EventSyncCompleted,
		Synced:    synced,
		Pending:   pending,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		ev.Type = EventSyncFailed
		ev.Error = err.Error()
	}
	return ev
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON parses an event published by ToJSON
func EventFromJSON(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
