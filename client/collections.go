package client

import (
	"context"
	"net/http"

	"lovenest/models"
	"lovenest/store"
	"lovenest/viewmodel"
)

// Collection is the client side of one record collection.
type Collection[T any] struct {
	c    *Client
	name string
}

func NewCollection[T any](c *Client, name string) *Collection[T] {
	return &Collection[T]{c: c, name: name}
}

func (col *Collection[T]) Name() string { return col.name }

// List fetches the collection as seen through vs. The zero ViewState gives
// the server's default order.
func (col *Collection[T]) List(ctx context.Context, vs viewmodel.ViewState) ([]T, error) {
	var out []T
	if err := col.c.do(ctx, http.MethodGet, "/api/"+col.name, vs.Query(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Add creates a record and returns its id.
func (col *Collection[T]) Add(ctx context.Context, doc T) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := col.c.do(ctx, http.MethodPost, "/api/"+col.name, nil, doc, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Update sends a partial update. A nil value clears the field.
func (col *Collection[T]) Update(ctx context.Context, id string, fields store.Fields) error {
	return col.c.do(ctx, http.MethodPatch, "/api/"+col.name+"/"+id, nil, fields, nil)
}

func (col *Collection[T]) Remove(ctx context.Context, id string) error {
	return col.c.do(ctx, http.MethodDelete, "/api/"+col.name+"/"+id, nil, nil, nil)
}

// API bundles the five collections with their extra mutations.
type API struct {
	*Client
	Plans      *Collection[models.Plan]
	BucketList *Collection[models.BucketListItem]
	Dreams     *Collection[models.Dream]
	Milestones *Collection[models.Milestone]
	Cinema     *Collection[models.Movie]
}

func NewAPI(c *Client) *API {
	return &API{
		Client:     c,
		Plans:      NewCollection[models.Plan](c, store.Plans),
		BucketList: NewCollection[models.BucketListItem](c, store.BucketList),
		Dreams:     NewCollection[models.Dream](c, store.Dreams),
		Milestones: NewCollection[models.Milestone](c, store.Milestones),
		Cinema:     NewCollection[models.Movie](c, store.Cinema),
	}
}

func (a *API) TogglePlan(ctx context.Context, id string, done bool) error {
	return a.do(ctx, http.MethodPost, "/api/plans/"+id+"/toggle", nil, map[string]bool{"isCompleted": done}, nil)
}

// AddMemory replaces the memory of a plan.
func (a *API) AddMemory(ctx context.Context, id string, m models.Memory) error {
	return a.do(ctx, http.MethodPut, "/api/plans/"+id+"/memory", nil, map[string]models.Memory{"memory": m}, nil)
}

func (a *API) ToggleBucketItem(ctx context.Context, id string, done bool) error {
	return a.do(ctx, http.MethodPost, "/api/bucketList/"+id+"/toggle", nil, map[string]bool{"isCompleted": done}, nil)
}

// AddMovie creates a movie; the server looks its poster up first.
func (a *API) AddMovie(ctx context.Context, title, link string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := a.do(ctx, http.MethodPost, "/api/cinema", nil, map[string]string{"title": title, "link": link}, &out)
	return out.ID, err
}

// MarkWatched records a viewing at epoch-ms watchedAt; 0 lets the server
// use its clock.
func (a *API) MarkWatched(ctx context.Context, id string, watchedAt int64) error {
	var body any
	if watchedAt != 0 {
		body = map[string]int64{"watchedAt": watchedAt}
	}
	return a.do(ctx, http.MethodPost, "/api/cinema/"+id+"/watched", nil, body, nil)
}

func (a *API) MarkUnwatched(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/cinema/"+id+"/watched", nil, nil, nil)
}
