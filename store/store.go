// Package store defines the Record Store contract shared by every backend.
package store

import (
	"context"
	"errors"

	"lovenest/models"
)

var ErrNotFound = errors.New("record not found")

// Collection names, as used on the wire and by every backend.
const (
	Plans      = "plans"
	BucketList = "bucketList"
	Dreams     = "dreams"
	Milestones = "milestones"
	Cinema     = "cinema"
)

var Names = []string{Plans, BucketList, Dreams, Milestones, Cinema}

// Fields is a partial update keyed by wire field name. A nil value removes
// the field from the stored record.
type Fields map[string]any

// Collection is a typed, flat document collection. Update and Delete return
// ErrNotFound for unknown ids.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, id string, doc T) error
	Update(ctx context.Context, id string, set Fields) error
	Delete(ctx context.Context, id string) error
}

// Store groups the five collections of one backend.
type Store struct {
	Plans      Collection[models.Plan]
	BucketList Collection[models.BucketListItem]
	Dreams     Collection[models.Dream]
	Milestones Collection[models.Milestone]
	Cinema     Collection[models.Movie]

	closeFn func(context.Context) error
}

// New assembles a Store. closeFn may be nil.
func New(
	plans Collection[models.Plan],
	bucket Collection[models.BucketListItem],
	dreams Collection[models.Dream],
	milestones Collection[models.Milestone],
	cinema Collection[models.Movie],
	closeFn func(context.Context) error,
) *Store {
	return &Store{
		Plans:      plans,
		BucketList: bucket,
		Dreams:     dreams,
		Milestones: milestones,
		Cinema:     cinema,
		closeFn:    closeFn,
	}
}

func (s *Store) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}
