// Package live pushes collection snapshots to websocket subscribers after
// every committed mutation. A Hub owns the subscriber sets from a single
// goroutine; an optional redis bridge fans changes out to other instances.
package live

import (
	"context"
	"encoding/json"
	"time"

	"lovenest/logging"
)

// Change is one committed mutation.
type Change struct {
	Collection string `json:"collection"`
	Op         string `json:"op"`
	ID         string `json:"id,omitempty"`
	// Origin identifies the instance that made the change.
	Origin string `json:"origin,omitempty"`
}

// Snapshot is what subscribers receive: the change plus the full collection.
type Snapshot struct {
	Collection string          `json:"collection"`
	Op         string          `json:"op"`
	ID         string          `json:"id,omitempty"`
	Items      json.RawMessage `json:"items"`
}

// OpSnapshot marks the snapshot sent right after subscribing.
const OpSnapshot = "snapshot"

// Lister loads the current contents of a collection.
type Lister func(ctx context.Context) (any, error)

// FeedOf adapts any typed List method to a Lister.
func FeedOf[T any](list func(ctx context.Context) ([]T, error)) Lister {
	return func(ctx context.Context) (any, error) {
		return list(ctx)
	}
}

// Publisher forwards local changes to other instances.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

type Client struct {
	Send       chan []byte
	Collection string
}

type Hub struct {
	feeds      map[string]Lister
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Change
	quit       chan struct{}

	publisher    Publisher
	fetchTimeout time.Duration
	log          logging.Logger
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		feeds:        map[string]Lister{},
		rooms:        map[string]map[*Client]bool{},
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		broadcast:    make(chan Change, 64),
		quit:         make(chan struct{}),
		fetchTimeout: 5 * time.Second,
		log:          log.With("component", "live"),
	}
}

// Feed registers the source of a collection. Call before Run.
func (h *Hub) Feed(collection string, l Lister) {
	h.feeds[collection] = l
}

func (h *Hub) HasFeed(collection string) bool {
	_, ok := h.feeds[collection]
	return ok
}

// SetPublisher attaches a cross-instance publisher. Call before Run.
func (h *Hub) SetPublisher(p Publisher) {
	h.publisher = p
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			if h.rooms[c.Collection] == nil {
				h.rooms[c.Collection] = map[*Client]bool{}
			}
			h.rooms[c.Collection][c] = true
			if data, ok := h.snapshot(Change{Collection: c.Collection, Op: OpSnapshot}); ok {
				h.deliver(c, data)
			}

		case c := <-h.unregister:
			if conns := h.rooms[c.Collection]; conns[c] {
				delete(conns, c)
				close(c.Send)
			}

		case ch := <-h.broadcast:
			if len(h.rooms[ch.Collection]) == 0 {
				continue
			}
			data, ok := h.snapshot(ch)
			if !ok {
				continue
			}
			for c := range h.rooms[ch.Collection] {
				h.deliver(c, data)
			}

		case <-h.quit:
			for _, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
			}
			h.rooms = map[string]map[*Client]bool{}
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.quit)
}

// deliver drops clients that cannot keep up.
func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
		h.log.Warn(context.Background(), "dropping slow subscriber", "collection", c.Collection)
		close(c.Send)
		delete(h.rooms[c.Collection], c)
	}
}

func (h *Hub) snapshot(ch Change) ([]byte, bool) {
	feed, ok := h.feeds[ch.Collection]
	if !ok {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.fetchTimeout)
	defer cancel()

	items, err := feed(ctx)
	if err != nil {
		h.log.Error(ctx, "snapshot failed", "collection", ch.Collection, "error", err)
		return nil, false
	}
	raw, err := json.Marshal(items)
	if err != nil {
		h.log.Error(ctx, "encode snapshot", "collection", ch.Collection, "error", err)
		return nil, false
	}
	data, err := json.Marshal(Snapshot{Collection: ch.Collection, Op: ch.Op, ID: ch.ID, Items: raw})
	if err != nil {
		return nil, false
	}
	return data, true
}

// Notify implements records.Notifier: local subscribers are refreshed and
// the change is forwarded to the publisher, if any.
func (h *Hub) Notify(ctx context.Context, collection, op, id string) {
	ch := Change{Collection: collection, Op: op, ID: id}
	h.Broadcast(ch)
	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, ch); err != nil {
			h.log.Warn(ctx, "publish change", "collection", collection, "error", err)
		}
	}
}

// Broadcast refreshes local subscribers only.
func (h *Hub) Broadcast(ch Change) {
	select {
	case h.broadcast <- ch:
	case <-h.quit:
	}
}
