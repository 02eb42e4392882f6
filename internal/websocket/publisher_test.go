package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_Publish(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1", "joe")
	hub.Register(client)

	var publisher EventPublisher = hub
	publisher.Publish("joe", ExportArchived(map[string]string{"objectPath": "joe/2025/03/x.csv"}))

	require.Eventually(t, func() bool {
		return len(client.GetMessages()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestNoOpPublisher_Publish(t *testing.T) {
	publisher := &NoOpPublisher{}

	assert.NotPanics(t, func() {
		publisher.Publish("joe", ExportArchived(nil))
	})
}
