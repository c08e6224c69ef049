package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishReachesSubscriber(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	conn := &Connection{ID: "c1", Send: make(chan []byte, 8)}
	h.Register(conn)

	// Wait until the run loop has picked up the registration.
	require.Eventually(t, func() bool { return h.ConnectionCount() == 1 },
		time.Second, 5*time.Millisecond)

	h.Publish(EventDraftCreated, map[string]string{"id": "1"})

	select {
	case data := <-conn.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, EventDraftCreated, ev.Type)
		assert.NotEmpty(t, ev.EventID)
		assert.NotZero(t, ev.Ts)
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestPublishWithoutSubscribersNeverBlocks(t *testing.T) {
	h := NewHub(zap.NewNop())
	// No run loop: once the backlog fills, events must be dropped, not
	// block the caller.
	for i := 0; i < 1000; i++ {
		h.Publish(EventDraftFiled, map[string]string{"id": "1"})
	}
}

func TestPublishNilHub(t *testing.T) {
	var h *Hub
	h.Publish(EventDraftCreated, nil)
}

func TestSlowSubscriberDropped(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	// Unbuffered send channel with no reader: the first broadcast
	// cannot be delivered and must drop the subscriber instead of
	// blocking the loop.
	slow := &Connection{ID: "slow", Send: make(chan []byte)}
	fast := &Connection{ID: "fast", Send: make(chan []byte, 8)}
	h.Register(slow)
	h.Register(fast)
	require.Eventually(t, func() bool { return h.ConnectionCount() == 2 },
		time.Second, 5*time.Millisecond)

	h.Publish(EventDraftCreated, map[string]string{"id": "1"})

	require.Eventually(t, func() bool { return h.ConnectionCount() == 1 },
		time.Second, 5*time.Millisecond)

	// The healthy subscriber still got the event.
	select {
	case data := <-fast.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, EventDraftCreated, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event never delivered to healthy subscriber")
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	conn := &Connection{ID: "c1", Send: make(chan []byte, 8)}
	h.Register(conn)
	require.Eventually(t, func() bool { return h.ConnectionCount() == 1 },
		time.Second, 5*time.Millisecond)

	h.Unregister(conn)
	require.Eventually(t, func() bool { return h.ConnectionCount() == 0 },
		time.Second, 5*time.Millisecond)

	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok, "send channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}
}
