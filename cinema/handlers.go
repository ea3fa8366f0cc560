package cinema

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lovenest/models"
	"lovenest/moviemeta"
	"lovenest/records"
	"lovenest/utils"
	"lovenest/validate"
)

type Handler struct {
	*records.Resource[models.Movie]
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Resource: records.NewResource(svc.Service), svc: svc}
}

// POST /api/cinema {title, link}
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ve := validate.Errors{}
	validate.Required(ve, "title", body.Title)
	validate.Required(ve, "link", body.Link)
	validate.URL(ve, "link", body.Link)
	if err := ve.Err(); err != nil {
		utils.RespondWithErr(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), records.RequestTimeout)
	defer cancel()

	id, err := h.svc.AddMovie(ctx, body.Title, body.Link)
	switch {
	case errors.Is(err, moviemeta.ErrPosterNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "poster not found")
	case errors.Is(err, validate.ErrValidation):
		utils.RespondWithErr(w, err)
	case err != nil:
		utils.RespondWithError(w, http.StatusBadGateway, "poster lookup failed")
	default:
		utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": id})
	}
}

// POST /api/cinema/:id/watched {watchedAt?}
func (h *Handler) MarkWatched(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		WatchedAt int64 `json:"watchedAt"`
	}
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(w, r, &body); err != nil {
			utils.RespondWithErr(w, err)
			return
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), records.RequestTimeout)
	defer cancel()

	if err := h.svc.MarkWatched(ctx, ps.ByName("id"), body.WatchedAt); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/cinema/:id/watched
func (h *Handler) MarkUnwatched(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), records.RequestTimeout)
	defer cancel()

	if err := h.svc.MarkUnwatched(ctx, ps.ByName("id")); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
