// Package memstore is an in-process Record Store used by tests and by
// `serve --store=memory`.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"lovenest/models"
	"lovenest/store"
)

// Collection keeps documents as JSON so callers never share memory with the
// stored copy.
type Collection[T any] struct {
	mu    sync.RWMutex
	order []string
	docs  map[string][]byte
}

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{docs: map[string][]byte{}}
}

// New returns a Store whose five collections live in memory.
func New() *store.Store {
	return store.New(
		NewCollection[models.Plan](),
		NewCollection[models.BucketListItem](),
		NewCollection[models.Dream](),
		NewCollection[models.Milestone](),
		NewCollection[models.Movie](),
		nil,
	)
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		var doc T
		if err := json.Unmarshal(c.docs[id], &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", id, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	c.mu.RLock()
	body, ok := c.docs[id]
	c.mu.RUnlock()
	if !ok {
		return doc, store.ErrNotFound
	}
	err := json.Unmarshal(body, &doc)
	return doc, err
}

func (c *Collection[T]) Insert(ctx context.Context, id string, doc T) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[id]; exists {
		return fmt.Errorf("insert %s: duplicate id", id)
	}
	c.docs[id] = body
	c.order = append(c.order, id)
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, set store.Fields) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	merged, err := store.MergeJSON(body, set)
	if err != nil {
		return err
	}
	c.docs[id] = merged
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	return nil
}
