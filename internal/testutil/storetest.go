package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
)

type storedNote struct {
	Text string `json:"text"`
}

// NextSnapshot waits for one snapshot on ch
func NextSnapshot(t *testing.T, ch <-chan *domain.Snapshot) *domain.Snapshot {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

// RunDocumentStoreTests exercises the behaviour every domain.DocumentStore must share
func RunDocumentStoreTests(t *testing.T, newStore func(t *testing.T) domain.DocumentStore) {
	t.Run("insert then list", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id1, err := s.Insert(ctx, "notes_a", storedNote{Text: "first"})
		require.NoError(t, err)
		id2, err := s.Insert(ctx, "notes_a", storedNote{Text: "second"})
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2)

		snap, err := s.List(ctx, "notes_a")
		require.NoError(t, err)
		require.Len(t, snap.Documents, 2)
		assert.Equal(t, id1, snap.Documents[0].ID)
		assert.Equal(t, id2, snap.Documents[1].ID)

		var n storedNote
		require.NoError(t, json.Unmarshal(snap.Documents[1].Data, &n))
		assert.Equal(t, "second", n.Text)
	})

	t.Run("empty collection", func(t *testing.T) {
		s := newStore(t)
		snap, err := s.List(context.Background(), "nothing_here")
		require.NoError(t, err)
		assert.Empty(t, snap.Documents)
		assert.Equal(t, "nothing_here", snap.Collection)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.Insert(ctx, "notes_a", storedNote{Text: "a"})
		require.NoError(t, err)

		snap, err := s.List(ctx, "notes_b")
		require.NoError(t, err)
		assert.Empty(t, snap.Documents)
	})

	t.Run("remove and remove missing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id, err := s.Insert(ctx, "notes_a", storedNote{Text: "gone soon"})
		require.NoError(t, err)
		before, err := s.List(ctx, "notes_a")
		require.NoError(t, err)

		require.NoError(t, s.Remove(ctx, "notes_a", id))
		after, err := s.List(ctx, "notes_a")
		require.NoError(t, err)
		assert.Empty(t, after.Documents)
		assert.Greater(t, after.Version, before.Version)

		require.NoError(t, s.Remove(ctx, "notes_a", id))
		require.NoError(t, s.Remove(ctx, "notes_a", "00000000-0000-0000-0000-000000000000"))
		require.NoError(t, s.Remove(ctx, "never_created", id))
	})

	t.Run("subscription sees initial snapshot then every write", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		_, err := s.Insert(ctx, "notes_a", storedNote{Text: "existing"})
		require.NoError(t, err)

		ch, err := s.Subscribe(ctx, "notes_a")
		require.NoError(t, err)
		initial := NextSnapshot(t, ch)
		assert.Len(t, initial.Documents, 1)

		id, err := s.Insert(ctx, "notes_a", storedNote{Text: "new"})
		require.NoError(t, err)
		assert.Eventually(t, func() bool {
			select {
			case snap := <-ch:
				return len(snap.Documents) == 2 && snap.Documents[1].ID == id
			default:
				return false
			}
		}, 5*time.Second, 10*time.Millisecond)

		require.NoError(t, s.Remove(ctx, "notes_a", id))
		assert.Eventually(t, func() bool {
			select {
			case snap := <-ch:
				return len(snap.Documents) == 1
			default:
				return false
			}
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("cancel closes subscription", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := s.Subscribe(ctx, "notes_a")
		require.NoError(t, err)
		NextSnapshot(t, ch)

		cancel()
		assert.Eventually(t, func() bool {
			select {
			case _, ok := <-ch:
				return !ok
			default:
				return false
			}
		}, 5*time.Second, 10*time.Millisecond)
	})
}
