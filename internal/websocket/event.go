package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeSnapshot EventType = "snapshot"
	EventTypeArchived EventType = "archived"
)

// EntityType names the view or resource an event is about
type EntityType string

const (
	EntityTypeExpenses          EntityType = "expenses"
	EntityTypeCategories        EntityType = "categories"
	EntityTypeExpenseReport     EntityType = "expense_report"
	EntityTypePlantationRecords EntityType = "plantation_records"
	EntityTypePlantationReport  EntityType = "plantation_report"
	EntityTypeStayWorkers       EntityType = "stay_workers"
	EntityTypeStayHistory       EntityType = "stay_history"
	EntityTypeStayBalances      EntityType = "stay_balances"
	EntityTypeExport            EntityType = "export"
)

// Views lists the entity types a client may subscribe to
var Views = []EntityType{
	EntityTypeExpenses,
	EntityTypeCategories,
	EntityTypeExpenseReport,
	EntityTypePlantationRecords,
	EntityTypePlantationReport,
	EntityTypeStayWorkers,
	EntityTypeStayHistory,
	EntityTypeStayBalances,
}

// ParseView returns the view named by s
func ParseView(s string) (EntityType, bool) {
	for _, v := range Views {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "expenses.snapshot"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "expenses"
	Payload   interface{} `json:"payload"`   // Full view data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Snapshot creates a <view>.snapshot event
func Snapshot(view EntityType, payload interface{}) Event {
	return NewEvent(EventTypeSnapshot, view, payload)
}

// ExportArchived creates an export.archived event
func ExportArchived(payload interface{}) Event {
	return NewEvent(EventTypeArchived, EntityTypeExport, payload)
}
