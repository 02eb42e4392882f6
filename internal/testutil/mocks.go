package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/repository/storage"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/websocket"
)

// MockDocumentStore decorates a real store so tests can inject failures.
// A nil *Fn field passes the call through to Inner.
type MockDocumentStore struct {
	Inner       domain.DocumentStore
	InsertFn    func(ctx context.Context, collection string, record any) (string, error)
	RemoveFn    func(ctx context.Context, collection, id string) error
	ListFn      func(ctx context.Context, collection string) (*domain.Snapshot, error)
	SubscribeFn func(ctx context.Context, collection string) (<-chan *domain.Snapshot, error)

	mu      sync.Mutex
	Inserts []string
	Removes []string
}

var _ domain.DocumentStore = (*MockDocumentStore)(nil)

// NewMockDocumentStore creates a MockDocumentStore over inner
func NewMockDocumentStore(inner domain.DocumentStore) *MockDocumentStore {
	return &MockDocumentStore{Inner: inner}
}

// FailWrites makes every Insert and Remove return err
func (m *MockDocumentStore) FailWrites(err error) {
	m.InsertFn = func(context.Context, string, any) (string, error) { return "", err }
	m.RemoveFn = func(context.Context, string, string) error { return err }
}

// Insert records the collection and delegates
func (m *MockDocumentStore) Insert(ctx context.Context, collection string, record any) (string, error) {
	m.mu.Lock()
	m.Inserts = append(m.Inserts, collection)
	m.mu.Unlock()
	if m.InsertFn != nil {
		return m.InsertFn(ctx, collection, record)
	}
	return m.Inner.Insert(ctx, collection, record)
}

// Remove records the collection and delegates
func (m *MockDocumentStore) Remove(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	m.Removes = append(m.Removes, collection+"/"+id)
	m.mu.Unlock()
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, collection, id)
	}
	return m.Inner.Remove(ctx, collection, id)
}

// List delegates
func (m *MockDocumentStore) List(ctx context.Context, collection string) (*domain.Snapshot, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, collection)
	}
	return m.Inner.List(ctx, collection)
}

// Subscribe delegates
func (m *MockDocumentStore) Subscribe(ctx context.Context, collection string) (<-chan *domain.Snapshot, error) {
	if m.SubscribeFn != nil {
		return m.SubscribeFn(ctx, collection)
	}
	return m.Inner.Subscribe(ctx, collection)
}

// Close closes the inner store
func (m *MockDocumentStore) Close() error {
	if m.Inner == nil {
		return nil
	}
	return m.Inner.Close()
}

// InsertCount returns how many inserts were attempted
func (m *MockDocumentStore) InsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Inserts)
}

// MockArchiveRepository is an in-memory storage.ArchiveRepository
type MockArchiveRepository struct {
	mu           sync.Mutex
	Objects      map[string][]byte
	ContentTypes map[string]string
	PutErr       error
	PresignErr   error
}

var _ storage.ArchiveRepository = (*MockArchiveRepository)(nil)

// NewMockArchiveRepository creates an empty MockArchiveRepository
func NewMockArchiveRepository() *MockArchiveRepository {
	return &MockArchiveRepository{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

// Put stores the object
func (m *MockArchiveRepository) Put(ctx context.Context, objectPath string, data []byte, contentType string) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = append([]byte(nil), data...)
	m.ContentTypes[objectPath] = contentType
	return nil
}

// PresignedURL returns a fake link to the object
func (m *MockArchiveRepository) PresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	if m.PresignErr != nil {
		return "", m.PresignErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[objectPath]; !ok {
		return "", fmt.Errorf("object %s: %w", objectPath, domain.ErrNotFound)
	}
	return fmt.Sprintf("https://archive.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// Get returns a stored object
func (m *MockArchiveRepository) Get(objectPath string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[objectPath]
	return data, ok
}

// MockEventPublisher captures published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events map[string][]websocket.Event
}

var _ websocket.EventPublisher = (*MockEventPublisher)(nil)

// NewMockEventPublisher creates a MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{Events: make(map[string][]websocket.Event)}
}

// Publish records the event under its tenant
func (m *MockEventPublisher) Publish(tenantID string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events[tenantID] = append(m.Events[tenantID], event)
}

// EventsFor returns the events published for a tenant
func (m *MockEventPublisher) EventsFor(tenantID string) []websocket.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]websocket.Event, len(m.Events[tenantID]))
	copy(out, m.Events[tenantID])
	return out
}
