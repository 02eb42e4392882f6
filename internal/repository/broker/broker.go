// Package broker fans out full collection snapshots to in-process subscribers.
package broker

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
)

// Loader reads the current snapshot of a collection
type Loader func(ctx context.Context) (*domain.Snapshot, error)

type subscription struct {
	ch          chan *domain.Snapshot
	lastVersion uint64
	delivered   bool
}

// Broker keeps, per collection, a set of one-slot mailboxes. Publishing never
// blocks: a snapshot that has not been received yet is replaced by the newer one,
// and snapshots older than the last one offered are dropped.
type Broker struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]*subscription
	nextID uint64
	closed bool
	done   chan struct{}
	logger zerolog.Logger
}

// New creates an empty broker
func New(logger zerolog.Logger) *Broker {
	return &Broker{
		subs:   make(map[string]map[uint64]*subscription),
		done:   make(chan struct{}),
		logger: logger.With().Str("component", "broker").Logger(),
	}
}

// Subscribe registers a mailbox for collection, then offers the snapshot returned
// by load as the initial delivery. Registering first means a write racing with
// the initial read is never lost. The channel is closed when ctx is done or the
// broker is closed.
func (b *Broker) Subscribe(ctx context.Context, collection string, load Loader) (<-chan *domain.Snapshot, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, domain.ErrStoreClosed
	}
	b.nextID++
	id := b.nextID
	sub := &subscription{ch: make(chan *domain.Snapshot, 1)}
	if b.subs[collection] == nil {
		b.subs[collection] = make(map[uint64]*subscription)
	}
	b.subs[collection][id] = sub
	b.mu.Unlock()

	initial, err := load(ctx)
	if err != nil {
		b.remove(collection, id)
		return nil, err
	}

	b.mu.Lock()
	if _, ok := b.subs[collection][id]; ok {
		offer(sub, initial)
	}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			b.remove(collection, id)
		case <-b.done:
		}
	}()

	b.logger.Debug().Str("collection", collection).Uint64("subscriber", id).Msg("Subscribed")
	return sub.ch, nil
}

// Publish offers snap to every subscriber of its collection
func (b *Broker) Publish(snap *domain.Snapshot) {
	if snap == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs[snap.Collection] {
		offer(sub, snap)
	}
}

// HasSubscribers reports whether anyone listens to collection
func (b *Broker) HasSubscribers(collection string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[collection]) > 0
}

// Collections lists the collections with at least one subscriber, sorted
func (b *Broker) Collections() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.subs))
	for collection := range b.subs {
		keys = append(keys, collection)
	}
	sort.Strings(keys)
	return keys
}

// Close closes every subscription channel. Later subscribes fail.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for collection, subs := range b.subs {
		for _, sub := range subs {
			close(sub.ch)
		}
		delete(b.subs, collection)
	}
}

func (b *Broker) remove(collection string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.subs[collection]
	if !ok {
		return
	}
	if sub, ok := subs[id]; ok {
		close(sub.ch)
		delete(subs, id)
	}
	if len(subs) == 0 {
		delete(b.subs, collection)
	}
}

// offer must be called with b.mu held
func offer(sub *subscription, snap *domain.Snapshot) {
	if sub.delivered && snap.Version <= sub.lastVersion {
		return
	}
	sub.delivered = true
	sub.lastVersion = snap.Version
	select {
	case sub.ch <- snap:
		return
	default:
	}
	// mailbox full: replace the stale snapshot
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- snap
}
