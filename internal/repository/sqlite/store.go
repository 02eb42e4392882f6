// Package sqlite is a single-file document store for one-device installs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/repository/broker"
)

var _ domain.DocumentStore = (*Store)(nil)

const bumpVersionSQL = `INSERT INTO collection_versions (collection, version) VALUES (?, 1)
ON CONFLICT (collection) DO UPDATE SET version = version + 1
RETURNING version`

// Store implements domain.DocumentStore on SQLite. Writes notify the in-process
// broker after commit.
type Store struct {
	db     *sql.DB
	broker *broker.Broker
	logger zerolog.Logger
	now    func() time.Time
}

// NewStore opens (creating if needed) the database at dbPath and migrates it
func NewStore(dbPath string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one connection serialises writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger = logger.With().Str("component", "sqlite_store").Logger()
	return &Store{
		db:     db,
		broker: broker.New(logger),
		logger: logger,
		now:    time.Now,
	}, nil
}

// Insert stores record and bumps the collection version in one transaction
func (s *Store) Insert(ctx context.Context, key string, record any) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (id, collection, data, created_at) VALUES (?, ?, ?, ?)`,
			id, key, string(data), s.now().UnixMilli(),
		); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		return bumpVersion(ctx, tx, key)
	})
	if err != nil {
		return "", err
	}

	s.notify(key)
	return id, nil
}

// Remove deletes a document. Removing a missing document is a no-op.
func (s *Store) Remove(ctx context.Context, key string, id string) error {
	removed := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, key, id)
		if err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		if n == 0 {
			return nil
		}
		removed = true
		return bumpVersion(ctx, tx, key)
	})
	if err != nil {
		return err
	}
	if removed {
		s.notify(key)
	}
	return nil
}

// List reads the documents and version of key in one transaction
func (s *Store) List(ctx context.Context, key string) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{Collection: key, Documents: []domain.Document{}}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var version int64
		err := tx.QueryRowContext(ctx, `SELECT version FROM collection_versions WHERE collection = ?`, key).Scan(&version)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read collection version: %w", err)
		}
		snap.Version = uint64(version)

		rows, err := tx.QueryContext(ctx,
			`SELECT id, data, created_at FROM documents WHERE collection = ? ORDER BY seq`, key)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				doc       domain.Document
				data      string
				createdAt int64
			)
			if err := rows.Scan(&doc.ID, &data, &createdAt); err != nil {
				return fmt.Errorf("scan document: %w", err)
			}
			doc.Data = json.RawMessage(data)
			doc.CreatedAt = time.UnixMilli(createdAt)
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
func (s *Store) Subscribe(ctx context.Context, key string) (<-chan *domain.Snapshot, error) {
	return s.broker.Subscribe(ctx, key, func(ctx context.Context) (*domain.Snapshot, error) {
		return s.List(ctx, key)
	})
}

// Close ends subscriptions and closes the database
func (s *Store) Close() error {
	s.broker.Close()
	return s.db.Close()
}

func (s *Store) notify(key string) {
	if !s.broker.HasSubscribers(key) {
		return
	}
	snap, err := s.List(context.Background(), key)
	if err != nil {
		s.logger.Error().Err(err).Str("collection", key).Msg("Failed to read snapshot after write")
		return
	}
	s.broker.Publish(snap)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func bumpVersion(ctx context.Context, tx *sql.Tx, key string) error {
	var version int64
	if err := tx.QueryRowContext(ctx, bumpVersionSQL, key).Scan(&version); err != nil {
		return fmt.Errorf("bump collection version: %w", err)
	}
	return nil
}
