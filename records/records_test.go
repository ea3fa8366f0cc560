package records

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovenest/logging"
	"lovenest/models"
	"lovenest/store"
	"lovenest/store/memstore"
	"lovenest/validate"
	"lovenest/viewmodel"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Notify(_ context.Context, collection, op, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, collection+":"+op+":"+id)
}

var milestoneEntity = Entity[models.Milestone]{
	Name:     store.Milestones,
	SetID:    func(m *models.Milestone, id string) { m.ID = id },
	Derive:   func(m *models.Milestone) { m.DeriveIcon() },
	Derived:  []string{"icon"},
	Validate: models.Milestone.Validate,
	Mutable:  []string{"title", "date", "description", "category", "photos"},
	View:     viewmodel.Milestones,
}

func newMilestones(t *testing.T) (*Service[models.Milestone], *recorder) {
	t.Helper()
	rec := &recorder{}
	svc := NewService(milestoneEntity, memstore.NewCollection[models.Milestone](), rec, logging.Nop())
	n := 0
	svc.newID = func() string {
		n++
		return "m" + string(rune('0'+n))
	}
	return svc, rec
}

func TestService_AddPatchRemove(t *testing.T) {
	ctx := context.Background()
	svc, rec := newMilestones(t)

	id, err := svc.Add(ctx, models.Milestone{Title: "First date", Date: "2020-02-14", Category: models.MilestoneFirstDate})
	require.NoError(t, err)
	assert.Equal(t, "m1", id)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "💕", got.Icon)
	assert.Equal(t, id, got.ID)

	updated, err := svc.Patch(ctx, id, []byte(`{"category":"anniversary","photos":["https://img.example.com/1.jpg"]}`))
	require.NoError(t, err)
	assert.Equal(t, "💍", updated.Icon)

	got, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "💍", got.Icon)
	assert.Equal(t, []string{"https://img.example.com/1.jpg"}, got.Photos)
	assert.Equal(t, "First date", got.Title)

	require.NoError(t, svc.Remove(ctx, id))
	assert.ErrorIs(t, svc.Remove(ctx, id), store.ErrNotFound)

	assert.Equal(t, []string{"milestones:insert:m1", "milestones:update:m1", "milestones:delete:m1"}, rec.events)
}

func TestService_ValidationNeverReachesStore(t *testing.T) {
	ctx := context.Background()
	svc, rec := newMilestones(t)

	_, err := svc.Add(ctx, models.Milestone{Title: "", Date: "yesterday", Category: models.MilestoneTrip})
	require.ErrorIs(t, err, validate.ErrValidation)

	id, err := svc.Add(ctx, models.Milestone{Title: "Trip", Date: "2021-07-01", Category: models.MilestoneTrip})
	require.NoError(t, err)

	_, err = svc.Patch(ctx, id, []byte(`{"date":"07/01/2021"}`))
	assert.ErrorIs(t, err, validate.ErrValidation)
	_, err = svc.Patch(ctx, id, []byte(`{"icon":"🙃"}`))
	assert.Equal(t, "cannot be updated", validate.Fields(err)["icon"])
	_, err = svc.Patch(ctx, id, []byte(`{}`))
	assert.ErrorIs(t, err, validate.ErrValidation)
	_, err = svc.Patch(ctx, id, []byte(`{"title":42}`))
	assert.ErrorIs(t, err, validate.ErrValidation)
	_, err = svc.Patch(ctx, "missing", []byte(`{"title":"x"}`))
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2021-07-01", got.Date)
	assert.Len(t, rec.events, 1)
}

func TestService_PatchClearsOptionalField(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMilestones(t)
	id, err := svc.Add(ctx, models.Milestone{Title: "Trip", Date: "2021-07-01", Category: models.MilestoneTrip, Description: "Lisbon"})
	require.NoError(t, err)

	_, err = svc.Patch(ctx, id, []byte(`{"description":null}`))
	require.NoError(t, err)
	got, _ := svc.Get(ctx, id)
	assert.Empty(t, got.Description)
}

func TestResource_HTTP(t *testing.T) {
	svc, _ := newMilestones(t)
	res := NewResource(svc)
	router := httprouter.New()
	router.GET("/api/milestones", res.List)
	router.POST("/api/milestones", res.Create)
	router.PATCH("/api/milestones/:id", res.Patch)
	router.DELETE("/api/milestones/:id", res.Delete)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/milestones", `{"title":"Moved in","date":"2022-09-01","category":"special-moment"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	do(http.MethodPost, "/api/milestones", `{"title":"Anniversary","date":"2021-09-01","category":"anniversary"}`)

	rec = do(http.MethodPost, "/api/milestones", `{"title":"","date":"2022-09-01","category":"trip"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"is required"`)

	rec = do(http.MethodGet, "/api/milestones?sort=date&dir=desc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Milestone
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Moved in", list[0].Title)

	rec = do(http.MethodPatch, "/api/milestones/"+created["id"], `{"title":"Moved in together"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Moved in together")

	rec = do(http.MethodDelete, "/api/milestones/"+created["id"], "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(http.MethodDelete, "/api/milestones/"+created["id"], "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
