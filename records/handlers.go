package records

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"lovenest/utils"
	"lovenest/viewmodel"
)

// RequestTimeout bounds every store call made by a handler.
const RequestTimeout = 10 * time.Second

// Resource exposes the generic CRUD endpoints of one collection.
type Resource[T any] struct {
	svc *Service[T]
}

func NewResource[T any](svc *Service[T]) *Resource[T] {
	return &Resource[T]{svc: svc}
}

// GET /api/:collection?status=&category=&sort=&dir=&q=
func (h *Resource[T]) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	items, err := h.svc.Query(ctx, viewmodel.FromQuery(r.URL.Query()))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

// POST /api/:collection
func (h *Resource[T]) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var doc T
	if err := utils.DecodeJSON(w, r, &doc); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.CreateDoc(w, r, doc)
}

// CreateDoc stores an already decoded record and answers 201 {id}.
func (h *Resource[T]) CreateDoc(w http.ResponseWriter, r *http.Request, doc T) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	id, err := h.svc.Add(ctx, doc)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": id})
}

// PATCH /api/:collection/:id
func (h *Resource[T]) Patch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	body, err := utils.ReadBody(w, r)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	doc, err := h.svc.Patch(ctx, ps.ByName("id"), body)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, doc)
}

// DELETE /api/:collection/:id
func (h *Resource[T]) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	if err := h.svc.Remove(ctx, ps.ByName("id")); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
