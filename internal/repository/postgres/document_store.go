package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/repository/broker"
)

// ChangeChannel is the LISTEN/NOTIFY channel carrying changed collection keys
const ChangeChannel = "farmbook_documents"

const listenRetryDelay = 2 * time.Second

var _ domain.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements domain.DocumentStore using PostgreSQL. Every write
// sends a NOTIFY with the collection key inside its transaction; a listener
// connection turns notifications into fresh snapshots for local subscribers, so
// writes made by other instances reach them too.
type DocumentStore struct {
	pool   *pgxpool.Pool
	broker *broker.Broker
	logger zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDocumentStore wraps pool and starts the change listener
func NewDocumentStore(pool *pgxpool.Pool, logger zerolog.Logger) *DocumentStore {
	logger = logger.With().Str("component", "postgres_store").Logger()
	ctx, cancel := context.WithCancel(context.Background())
	s := &DocumentStore{
		pool:   pool,
		broker: broker.New(logger),
		logger: logger,
		cancel: cancel,
	}
	s.wg.Add(1)
	go s.listen(ctx)
	return s
}

// Insert stores record, bumps the collection version and notifies listeners
func (s *DocumentStore) Insert(ctx context.Context, key string, record any) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.New()

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO documents (id, collection, data) VALUES ($1, $2, $3::jsonb)`,
			id.String(), key, string(data),
		); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		return bumpVersion(ctx, tx, key)
	})
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Remove deletes a document. Removing a missing document is a no-op.
func (s *DocumentStore) Remove(ctx context.Context, key string, id string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, key, docID.String())
		if err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		return bumpVersion(ctx, tx, key)
	})
}

// List reads documents and version in one repeatable-read transaction
func (s *DocumentStore) List(ctx context.Context, key string) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{Collection: key, Documents: []domain.Document{}}
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		var version int64
		err := tx.QueryRow(ctx, `SELECT version FROM collection_versions WHERE collection = $1`, key).Scan(&version)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("read collection version: %w", err)
		}
		snap.Version = uint64(version)

		rows, err := tx.Query(ctx,
			`SELECT id, data, created_at FROM documents WHERE collection = $1 ORDER BY seq`, key)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				data []byte
				doc  domain.Document
			)
			if err := rows.Scan(&doc.ID, &data, &doc.CreatedAt); err != nil {
				return fmt.Errorf("scan document: %w", err)
			}
			doc.Data = json.RawMessage(data)
			snap.Documents = append(snap.Documents, doc)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Subscribe streams snapshots of key until ctx is done
func (s *DocumentStore) Subscribe(ctx context.Context, key string) (<-chan *domain.Snapshot, error) {
	return s.broker.Subscribe(ctx, key, func(ctx context.Context) (*domain.Snapshot, error) {
		return s.List(ctx, key)
	})
}

// Close stops the listener and ends subscriptions. The pool is owned by the caller.
func (s *DocumentStore) Close() error {
	s.cancel()
	s.wg.Wait()
	s.broker.Close()
	return nil
}

func (s *DocumentStore) listen(ctx context.Context) {
	defer s.wg.Done()
	for {
		err := s.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Dur("retry_in", listenRetryDelay).Msg("Change listener disconnected")
		select {
		case <-ctx.Done():
			return
		case <-time.After(listenRetryDelay):
		}
	}
}

func (s *DocumentStore) listenOnce(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.logger.Info().Str("channel", ChangeChannel).Msg("Listening for document changes")

	// Notifications sent while disconnected are gone; resync what is watched
	s.refreshAll(ctx)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		s.refresh(ctx, n.Payload)
	}
}

func (s *DocumentStore) refreshAll(ctx context.Context) {
	for _, key := range s.broker.Collections() {
		s.refresh(ctx, key)
	}
}

func (s *DocumentStore) refresh(ctx context.Context, key string) {
	if !s.broker.HasSubscribers(key) {
		return
	}
	snap, err := s.List(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("collection", key).Msg("Failed to read snapshot after notification")
		return
	}
	s.broker.Publish(snap)
}

func bumpVersion(ctx context.Context, tx pgx.Tx, key string) error {
	var version int64
	err := tx.QueryRow(ctx, `INSERT INTO collection_versions (collection, version) VALUES ($1, 1)
ON CONFLICT (collection) DO UPDATE SET version = collection_versions.version + 1
RETURNING version`, key).Scan(&version)
	if err != nil {
		return fmt.Errorf("bump collection version: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, ChangeChannel, key); err != nil {
		return fmt.Errorf("notify change: %w", err)
	}
	return nil
}
