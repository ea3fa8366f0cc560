package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"lovenest/live"
)

// ErrFeedClosed is returned by Next after the feed was closed.
var ErrFeedClosed = errors.New("live feed closed")

// Subscription is an open live feed of one collection.
type Subscription struct {
	conn   *websocket.Conn
	stop   context.CancelFunc
	closed sync.Once
}

// Subscribe opens /api/live/:collection. The first snapshot arrives right
// away; later ones follow every change. Cancelling ctx closes the feed.
func (c *Client) Subscribe(ctx context.Context, collection string) (*Subscription, error) {
	u := c.URL("/api/live/"+collection, nil)
	u = "ws" + strings.TrimPrefix(u, "http")

	header := http.Header{}
	if t := c.token(); t != "" {
		header.Set("Authorization", "Bearer "+t)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if serr := checkStatus(resp); serr != nil {
				return nil, serr
			}
		}
		return nil, fmt.Errorf("subscribe %s: %w", collection, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{conn: conn, stop: cancel}
	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return s, nil
}

// Next blocks until the next snapshot. It returns an error once the feed
// is closed.
func (s *Subscription) Next() (live.Snapshot, error) {
	var snap live.Snapshot
	if err := s.conn.ReadJSON(&snap); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(err, net.ErrClosed) {
			return snap, ErrFeedClosed
		}
		return snap, err
	}
	return snap, nil
}

func (s *Subscription) Close() error {
	var err error
	s.closed.Do(func() {
		s.stop()
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = s.conn.Close()
	})
	return err
}
