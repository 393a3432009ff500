package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(h *Hub) *Client {
	return &Client{Hub: h, Send: make(chan []byte, 8), ID: "test-client", done: make(chan struct{})}
}

func TestHubBroadcastReachesEveryClient(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	c1 := testClient(h)
	c2 := testClient(h)
	h.Register(c1)
	h.Register(c2)

	require.Eventually(t, func() bool { return h.ClientCount() == 2 },
		time.Second, 10*time.Millisecond)

	h.Broadcast(MsgTypeMusicUpdate, map[string]string{"action": "queued"})

	for _, c := range []*Client{c1, c2} {
		select {
		case raw := <-c.Send:
			var msg WSMessage
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, MsgTypeMusicUpdate, msg.Type)
			assert.NotZero(t, msg.Timestamp)

			var data map[string]string
			require.NoError(t, json.Unmarshal(msg.Data, &data))
			assert.Equal(t, "queued", data["action"])
		case <-time.After(time.Second):
			t.Fatal("client never received the broadcast")
		}
	}
}

func TestHubUnregisterSignalsClientDone(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	c := testClient(h)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)

	select {
	case <-c.done:
	default:
		t.Fatal("unregistered client was never signalled")
	}
}

func TestHubDropsClientWithFullSendBuffer(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	stuck := &Client{Hub: h, Send: make(chan []byte), ID: "stuck", done: make(chan struct{})} // Unbuffered, never read
	h.Register(stuck)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	h.Broadcast(MsgTypeSearchActivity, map[string]string{"query": "queen"})

	require.Eventually(t, func() bool { return h.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestHubDropLeavesSendChannelOpen(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	stuck := &Client{Hub: h, Send: make(chan []byte), ID: "stuck", done: make(chan struct{})}
	h.Register(stuck)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	h.Broadcast(MsgTypeSearchActivity, map[string]string{"query": "queen"})
	require.Eventually(t, func() bool { return h.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)

	// The read pump replies to guest pings with a non-blocking send on its
	// own channel. That reply races with the hub dropping the client, so
	// the drop must signal done without closing Send.
	assert.NotPanics(t, func() {
		select {
		case stuck.Send <- []byte(`{"type":"pong"}`):
		default:
		}
	})

	select {
	case <-stuck.done:
	default:
		t.Fatal("dropped client was never signalled")
	}
}
