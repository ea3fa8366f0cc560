package live

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovenest/logging"
)

type fakeFeed struct {
	mu    sync.Mutex
	items []string
}

func (f *fakeFeed) set(items ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
}

func (f *fakeFeed) List(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.items...), nil
}

func recv(t *testing.T, ch <-chan []byte) Snapshot {
	t.Helper()
	select {
	case data, ok := <-ch:
		require.True(t, ok, "channel closed")
		var s Snapshot
		require.NoError(t, json.Unmarshal(data, &s))
		return s
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for snapshot")
	}
	return Snapshot{}
}

func TestHub_SnapshotOnRegisterAndNotify(t *testing.T) {
	feed := &fakeFeed{}
	feed.set("a")
	hub := NewHub(logging.Nop())
	hub.Feed("plans", FeedOf(feed.List))
	go hub.Run()
	defer hub.Stop()

	client := &Client{Send: make(chan []byte, 10), Collection: "plans"}
	other := &Client{Send: make(chan []byte, 10), Collection: "cinema"}
	hub.register <- client
	hub.register <- other

	first := recv(t, client.Send)
	assert.Equal(t, OpSnapshot, first.Op)
	assert.JSONEq(t, `["a"]`, string(first.Items))

	feed.set("a", "b")
	hub.Notify(context.Background(), "plans", "insert", "b")

	got := recv(t, client.Send)
	assert.Equal(t, "plans", got.Collection)
	assert.Equal(t, "insert", got.Op)
	assert.Equal(t, "b", got.ID)
	assert.JSONEq(t, `["a","b"]`, string(got.Items))

	// No feed for cinema: nothing is delivered there.
	select {
	case msg := <-other.Send:
		t.Fatalf("unexpected message %s", msg)
	case <-time.After(50 * time.Millisecond):
	}

	hub.unregister <- client
	_, ok := <-client.Send
	assert.False(t, ok)
}

type capturePublisher struct {
	mu      sync.Mutex
	changes []Change
}

func (c *capturePublisher) Publish(_ context.Context, ch Change) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, ch)
	return nil
}

func TestHub_NotifyForwardsToPublisher(t *testing.T) {
	hub := NewHub(logging.Nop())
	pub := &capturePublisher{}
	hub.SetPublisher(pub)
	go hub.Run()
	defer hub.Stop()

	hub.Notify(context.Background(), "dreams", "delete", "d1")

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, []Change{{Collection: "dreams", Op: "delete", ID: "d1"}}, pub.changes)
}

func TestWebSocketHandler(t *testing.T) {
	feed := &fakeFeed{}
	feed.set("x")
	hub := NewHub(logging.Nop())
	hub.Feed("bucketList", FeedOf(feed.List))
	go hub.Run()
	defer hub.Stop()

	router := httprouter.New()
	router.GET("/api/live/:collection", WebSocketHandler(hub))
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live/bucketList"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var s Snapshot
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&s))
	assert.Equal(t, OpSnapshot, s.Op)
	assert.JSONEq(t, `["x"]`, string(s.Items))

	feed.set("x", "y")
	hub.Notify(context.Background(), "bucketList", "update", "y")
	require.NoError(t, conn.ReadJSON(&s))
	assert.Equal(t, "update", s.Op)
	assert.JSONEq(t, `["x","y"]`, string(s.Items))

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/live/nope", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}
