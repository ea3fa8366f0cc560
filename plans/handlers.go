package plans

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lovenest/models"
	"lovenest/records"
	"lovenest/utils"
	"lovenest/validate"
	"lovenest/viewmodel"
)

type Handler struct {
	*records.Resource[models.Plan]
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Resource: records.NewResource(svc.Service), svc: svc}
}

// GET /api/plans  (group=month returns [{label, items}])
func (h *Handler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if r.URL.Query().Get("group") != "month" {
		h.Resource.List(w, r, ps)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), records.RequestTimeout)
	defer cancel()

	groups, err := h.svc.Grouped(ctx, viewmodel.FromQuery(r.URL.Query()))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, groups)
}

// POST /api/plans/:id/toggle
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		IsCompleted *bool `json:"isCompleted"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	if body.IsCompleted == nil {
		utils.RespondWithErr(w, validate.Errors{"isCompleted": "is required"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), records.RequestTimeout)
	defer cancel()

	if err := h.svc.Toggle(ctx, ps.ByName("id"), *body.IsCompleted); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": ps.ByName("id"), "isCompleted": *body.IsCompleted})
}

// PUT /api/plans/:id/memory
func (h *Handler) AddMemory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Memory *models.Memory `json:"memory"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	if body.Memory == nil {
		utils.RespondWithErr(w, validate.Errors{"memory": "is required"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), records.RequestTimeout)
	defer cancel()

	if err := h.svc.AddMemory(ctx, ps.ByName("id"), *body.Memory); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
