// Package records is the validation and notification layer in front of a
// store.Collection. Every entity package builds a Service from an Entity
// descriptor; handlers never touch a collection directly.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"lovenest/logging"
	"lovenest/store"
	"lovenest/validate"
	"lovenest/viewmodel"
)

// Change operations reported to the Notifier.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Notifier is told about every committed mutation.
type Notifier interface {
	Notify(ctx context.Context, collection, op, id string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, string, string) {}

// Entity describes how records of one collection are created and patched.
type Entity[T any] struct {
	Name  string
	SetID func(*T, string)
	// Prepare resets server-owned fields on creation.
	Prepare func(*T)
	// Derive recomputes derived fields; it runs on every write and the
	// Derived fields are always part of the resulting update.
	Derive   func(*T)
	Derived  []string
	Validate func(T) error
	// Mutable lists the fields a partial update may touch.
	Mutable []string
	View    viewmodel.Schema[T]
}

type Service[T any] struct {
	entity Entity[T]
	coll   store.Collection[T]
	notify Notifier
	log    logging.Logger
	newID  func() string
}

// NewService wires an entity to its collection. notify may be nil.
func NewService[T any](e Entity[T], coll store.Collection[T], notify Notifier, log logging.Logger) *Service[T] {
	if notify == nil {
		notify = nopNotifier{}
	}
	return &Service[T]{
		entity: e,
		coll:   coll,
		notify: notify,
		log:    log.With("collection", e.Name),
		newID:  uuid.NewString,
	}
}

func (s *Service[T]) Name() string { return s.entity.Name }

func (s *Service[T]) Schema() viewmodel.Schema[T] { return s.entity.View }

// List returns the raw collection in storage order.
func (s *Service[T]) List(ctx context.Context) ([]T, error) {
	items, err := s.coll.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.entity.Name, err)
	}
	return items, nil
}

// Query returns the collection as seen through vs.
func (s *Service[T]) Query(ctx context.Context, vs viewmodel.ViewState) ([]T, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.entity.View.Apply(items, vs), nil
}

func (s *Service[T]) Get(ctx context.Context, id string) (T, error) {
	doc, err := s.coll.Get(ctx, id)
	if err != nil {
		return doc, fmt.Errorf("get %s/%s: %w", s.entity.Name, id, err)
	}
	return doc, nil
}

// Add validates doc, assigns a fresh id and stores it.
func (s *Service[T]) Add(ctx context.Context, doc T) (string, error) {
	if s.entity.Prepare != nil {
		s.entity.Prepare(&doc)
	}
	if s.entity.Derive != nil {
		s.entity.Derive(&doc)
	}
	if err := s.entity.Validate(doc); err != nil {
		return "", err
	}
	id := s.newID()
	s.entity.SetID(&doc, id)
	if err := s.coll.Insert(ctx, id, doc); err != nil {
		s.log.Error(ctx, "insert failed", "error", err)
		return "", fmt.Errorf("add %s: %w", s.entity.Name, err)
	}
	s.log.Info(ctx, "record added", "id", id)
	s.notify.Notify(ctx, s.entity.Name, OpInsert, id)
	return id, nil
}

// Patch applies a partial JSON update. Only Mutable fields are accepted and
// the merged record must validate before anything is written.
func (s *Service[T]) Patch(ctx context.Context, id string, body []byte) (T, error) {
	var zero T
	patch := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &patch); err != nil {
		return zero, validate.Errors{"body": "must be a JSON object"}
	}
	if len(patch) == 0 {
		return zero, validate.Errors{"body": "no fields to update"}
	}
	ve := validate.Errors{}
	for k := range patch {
		if !slices.Contains(s.entity.Mutable, k) {
			ve.Add(k, "cannot be updated")
		}
	}
	if err := ve.Err(); err != nil {
		return zero, err
	}

	cur, err := s.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	merged, err := overlay(cur, patch)
	if err != nil {
		return zero, validate.Errors{"body": err.Error()}
	}
	if s.entity.Derive != nil {
		s.entity.Derive(&merged)
	}
	if err := s.entity.Validate(merged); err != nil {
		return zero, err
	}

	keys := make([]string, 0, len(patch)+len(s.entity.Derived))
	for k := range patch {
		keys = append(keys, k)
	}
	keys = append(keys, s.entity.Derived...)
	fields, err := pick(merged, keys)
	if err != nil {
		return zero, err
	}
	if err := s.write(ctx, id, fields); err != nil {
		return zero, err
	}
	return merged, nil
}

// Set writes already validated fields. Entity specific mutations (toggle,
// add-memory, watched) go through here.
func (s *Service[T]) Set(ctx context.Context, id string, fields store.Fields) error {
	return s.write(ctx, id, fields)
}

func (s *Service[T]) write(ctx context.Context, id string, fields store.Fields) error {
	if err := s.coll.Update(ctx, id, fields); err != nil {
		return fmt.Errorf("update %s/%s: %w", s.entity.Name, id, err)
	}
	s.log.Info(ctx, "record updated", "id", id)
	s.notify.Notify(ctx, s.entity.Name, OpUpdate, id)
	return nil
}

func (s *Service[T]) Remove(ctx context.Context, id string) error {
	if err := s.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove %s/%s: %w", s.entity.Name, id, err)
	}
	s.log.Info(ctx, "record removed", "id", id)
	s.notify.Notify(ctx, s.entity.Name, OpDelete, id)
	return nil
}

// overlay returns cur with the patch fields replaced, going through the
// JSON wire form so field names match the API.
func overlay[T any](cur T, patch map[string]json.RawMessage) (T, error) {
	var out T
	raw, err := json.Marshal(cur)
	if err != nil {
		return out, err
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return out, err
	}
	for k, v := range patch {
		doc[k] = v
	}
	raw, err = json.Marshal(doc)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("invalid field value: %v", err)
	}
	return out, nil
}

// pick extracts keys from the wire form of doc. Keys the encoder omitted
// (empty optional fields) become nil, which removes them from the store.
func pick[T any](doc T, keys []string) (store.Fields, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	all := map[string]any{}
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	fields := store.Fields{}
	for _, k := range keys {
		fields[k] = all[k]
	}
	return fields, nil
}
