package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RecordType names a per-tenant collection
type RecordType string

const (
	RecordTypeExpenses          RecordType = "expenses"
	RecordTypeCategories        RecordType = "categories"
	RecordTypePlantationRecords RecordType = "plantation_records"
	RecordTypeStayWorkers       RecordType = "stay_workers"
	RecordTypeStayRecords       RecordType = "stay_records"
	RecordTypeStayPayments      RecordType = "stay_payments"
)

// CollectionKey returns the store key {record-type}_{tenantId}
func CollectionKey(recordType RecordType, tenantID string) string {
	return fmt.Sprintf("%s_%s", recordType, tenantID)
}

// Document is a stored record with its store-assigned id
type Document struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Snapshot is the full current content of a collection.
// Version increases on every mutation of the collection.
type Snapshot struct {
	Collection string     `json:"collection"`
	Version    uint64     `json:"version"`
	Documents  []Document `json:"documents"`
}

// Record is implemented by types decoded from documents
type Record interface {
	SetDocumentID(id string)
}

// DocumentStore is the document database collaborator.
//
// Subscribe delivers an initial snapshot and then one full snapshot per mutation.
// The channel is closed when ctx is done or the store is closed. A subscriber that
// falls behind only ever sees the latest snapshot.
type DocumentStore interface {
	Insert(ctx context.Context, collection string, record any) (string, error)
	Remove(ctx context.Context, collection string, id string) error
	List(ctx context.Context, collection string) (*Snapshot, error)
	Subscribe(ctx context.Context, collection string) (<-chan *Snapshot, error)
	Close() error
}
