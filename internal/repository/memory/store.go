// Package memory is a process-local document store, used for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/repository/broker"
)

type collection struct {
	version uint64
	docs    []domain.Document
}

var _ domain.DocumentStore = (*Store)(nil)

// Store implements domain.DocumentStore in memory
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	closed      bool
	broker      *broker.Broker
	now         func() time.Time
}

// NewStore creates an empty store
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		collections: make(map[string]*collection),
		broker:      broker.New(logger),
		now:         time.Now,
	}
}

// Insert stores record under a new id and notifies subscribers
func (s *Store) Insert(ctx context.Context, key string, record any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", domain.ErrStoreClosed
	}
	c := s.collection(key)
	id := uuid.NewString()
	c.docs = append(c.docs, domain.Document{ID: id, Data: data, CreatedAt: s.now()})
	c.version++
	snap := c.snapshot(key)
	s.mu.Unlock()

	s.broker.Publish(snap)
	return id, nil
}

// Remove deletes a document. Removing a missing document is a no-op.
func (s *Store) Remove(ctx context.Context, key string, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrStoreClosed
	}
	c, ok := s.collections[key]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	idx := -1
	for i, d := range c.docs {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	c.docs = append(c.docs[:idx:idx], c.docs[idx+1:]...)
	c.version++
	snap := c.snapshot(key)
	s.mu.Unlock()

	s.broker.Publish(snap)
	return nil
}

// List returns the current snapshot
func (s *Store) List(ctx context.Context, key string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	c, ok := s.collections[key]
	if !ok {
		return &domain.Snapshot{Collection: key, Documents: []domain.Document{}}, nil
	}
	return c.snapshot(key), nil
}

// Subscribe streams snapshots of key until ctx is done
func (s *Store) Subscribe(ctx context.Context, key string) (<-chan *domain.Snapshot, error) {
	return s.broker.Subscribe(ctx, key, func(ctx context.Context) (*domain.Snapshot, error) {
		return s.List(ctx, key)
	})
}

// Close releases subscribers; further calls fail with ErrStoreClosed
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.broker.Close()
	return nil
}

// collection must be called with s.mu held
func (s *Store) collection(key string) *collection {
	c, ok := s.collections[key]
	if !ok {
		c = &collection{}
		s.collections[key] = c
	}
	return c
}

func (c *collection) snapshot(key string) *domain.Snapshot {
	docs := make([]domain.Document, len(c.docs))
	copy(docs, c.docs)
	return &domain.Snapshot{Collection: key, Version: c.version, Documents: docs}
}
