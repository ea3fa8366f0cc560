package live

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovenest/logging"
)

// TestRedisBridge_RelaysForeignChanges needs LOVENEST_TEST_REDIS_URL.
func TestRedisBridge_RelaysForeignChanges(t *testing.T) {
	url := os.Getenv("LOVENEST_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LOVENEST_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	channel := "lovenest:test:" + time.Now().Format("150405.000")
	local := NewRedisBridge(rdb, channel, logging.Nop())
	remote := NewRedisBridge(rdb, channel, logging.Nop())

	feed := &fakeFeed{}
	feed.set("z")
	hub := NewHub(logging.Nop())
	hub.Feed("plans", FeedOf(feed.List))
	go hub.Run()
	defer hub.Stop()

	client := &Client{Send: make(chan []byte, 10), Collection: "plans"}
	hub.register <- client
	recv(t, client.Send)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go local.Run(ctx, hub)
	time.Sleep(200 * time.Millisecond)

	// Our own echo is ignored; the other instance's change is delivered.
	require.NoError(t, local.Publish(ctx, Change{Collection: "plans", Op: "update", ID: "mine"}))
	require.NoError(t, remote.Publish(ctx, Change{Collection: "plans", Op: "update", ID: "theirs"}))

	got := recv(t, client.Send)
	assert.Equal(t, "theirs", got.ID)
}
