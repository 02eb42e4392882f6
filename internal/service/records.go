package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/metrics"
)

// recordPtr constrains decode targets to pointers implementing domain.Record
type recordPtr[T any] interface {
	*T
	domain.Record
}

// decodeSnapshot decodes every document of snap in snapshot order.
// Documents that fail to decode are logged and skipped.
func decodeSnapshot[T any, PT recordPtr[T]](logger zerolog.Logger, snap *domain.Snapshot) []PT {
	if snap == nil {
		return []PT{}
	}
	out := make([]PT, 0, len(snap.Documents))
	for _, doc := range snap.Documents {
		rec := PT(new(T))
		if err := json.Unmarshal(doc.Data, rec); err != nil {
			logger.Warn().
				Err(err).
				Str("collection", snap.Collection).
				Str("document_id", doc.ID).
				Msg("Skipping malformed document")
			continue
		}
		rec.SetDocumentID(doc.ID)
		out = append(out, rec)
	}
	return out
}

// records wraps the document store with tenant-scoped keys and write metrics
type records struct {
	store  domain.DocumentStore
	logger zerolog.Logger
}

func (r records) insert(ctx context.Context, rt domain.RecordType, tenantID string, record any) (string, error) {
	if tenantID == "" {
		return "", domain.ErrTenantRequired
	}
	id, err := r.store.Insert(ctx, domain.CollectionKey(rt, tenantID), record)
	metrics.RecordWrite(string(rt), "insert", err)
	if err != nil {
		r.logger.Error().Err(err).Str("tenant_id", tenantID).Str("record_type", string(rt)).Msg("Insert failed")
		return "", fmt.Errorf("insert %s: %w", rt, err)
	}
	return id, nil
}

func (r records) remove(ctx context.Context, rt domain.RecordType, tenantID, id string) error {
	if tenantID == "" {
		return domain.ErrTenantRequired
	}
	if id == "" {
		return domain.ErrInvalidInput
	}
	err := r.store.Remove(ctx, domain.CollectionKey(rt, tenantID), id)
	metrics.RecordWrite(string(rt), "remove", err)
	if err != nil {
		r.logger.Error().Err(err).Str("tenant_id", tenantID).Str("record_type", string(rt)).Msg("Remove failed")
		return fmt.Errorf("remove %s: %w", rt, err)
	}
	return nil
}

func (r records) list(ctx context.Context, rt domain.RecordType, tenantID string) (*domain.Snapshot, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	snap, err := r.store.List(ctx, domain.CollectionKey(rt, tenantID))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", rt, err)
	}
	return snap, nil
}

func (r records) subscribe(ctx context.Context, rt domain.RecordType, tenantID string) (<-chan *domain.Snapshot, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	ch, err := r.store.Subscribe(ctx, domain.CollectionKey(rt, tenantID))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", rt, err)
	}
	return ch, nil
}

// listRecords loads and decodes a collection
func listRecords[T any, PT recordPtr[T]](ctx context.Context, r records, rt domain.RecordType, tenantID string) ([]PT, uint64, error) {
	snap, err := r.list(ctx, rt, tenantID)
	if err != nil {
		return nil, 0, err
	}
	return decodeSnapshot[T, PT](r.logger, snap), snap.Version, nil
}

// newestFirst sorts by createdAt descending, keeping snapshot order on ties
func newestFirst[T any](items []T, createdAt func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]) > createdAt(items[j])
	})
}
