package export

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovenest/logging"
	"lovenest/milestones"
	"lovenest/models"
	"lovenest/plans"
	"lovenest/store/memstore"
	"lovenest/viewmodel"
)

func TestRender(t *testing.T) {
	book := Book{
		Generated: time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		Plans: []models.Plan{{
			ID: "p1", Title: "Picnic 🧺", Date: "2026-01-10", Type: models.PlanDate, IsCompleted: true,
			Website: "https://parks.example.com",
			Memory:  &models.Memory{Rating: 4, Notes: []string{"sunny", "ants"}, Photos: []string{"https://img.example.com/1.jpg"}},
		}},
		Milestones: []models.Milestone{{ID: "m1", Title: "First date", Date: "2024-02-14", Category: models.MilestoneFirstDate}},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, book))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Book{Generated: time.Now()}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestPlanLink(t *testing.T) {
	assert.Equal(t, "https://w", planLink(models.Plan{Website: "https://w", MapsLink: "https://m"}))
	assert.Equal(t, "https://m", planLink(models.Plan{MapsLink: "https://m"}))
	assert.Equal(t, "https://p", planLink(models.Plan{Memory: &models.Memory{Photos: []string{"https://p"}}}))
	assert.Empty(t, planLink(models.Plan{}))
}

func TestLatin(t *testing.T) {
	assert.Equal(t, "Café …", latin("Café 💕…"))
}

func TestMemoryBookHandler(t *testing.T) {
	ctx := context.Background()
	ps := plans.NewService(memstore.NewCollection[models.Plan](), nil, logging.Nop())
	ms := milestones.NewService(memstore.NewCollection[models.Milestone](), nil, logging.Nop())

	done, err := ps.Add(ctx, models.Plan{Title: "Concert", Date: "2026-03-01", Type: models.PlanActivity})
	require.NoError(t, err)
	require.NoError(t, ps.Toggle(ctx, done, true))
	_, err = ps.Add(ctx, models.Plan{Title: "Road trip", Date: "2026-07-04", Type: models.PlanTrip})
	require.NoError(t, err)
	_, err = ms.Add(ctx, models.Milestone{Title: "Moved in", Date: "2025-09-01", Category: models.MilestoneCelebration})
	require.NoError(t, err)

	h := NewHandler(ps, ms, logging.Nop())
	book, err := h.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, book.Plans, 1)
	assert.Equal(t, "Concert", book.Plans[0].Title)
	require.Len(t, book.Milestones, 1)

	router := httprouter.New()
	router.GET("/api/export/memories.pdf", h.MemoryBook)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/memories.pdf", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

type failing[T any] struct{}

func (failing[T]) Query(context.Context, viewmodel.ViewState) ([]T, error) {
	return nil, errors.New("store down")
}

func TestMemoryBookHandler_StoreError(t *testing.T) {
	h := NewHandler(failing[models.Plan]{}, failing[models.Milestone]{}, logging.Nop())
	rec := httptest.NewRecorder()
	h.MemoryBook(rec, httptest.NewRequest(http.MethodGet, "/api/export/memories.pdf", nil), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
