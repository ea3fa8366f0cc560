// Package bucketlist holds the shared bucket list: CRUD plus a completion toggle.
package bucketlist

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lovenest/logging"
	"lovenest/models"
	"lovenest/records"
	"lovenest/store"
	"lovenest/utils"
	"lovenest/validate"
	"lovenest/viewmodel"
)

var Entity = records.Entity[models.BucketListItem]{
	Name:     store.BucketList,
	SetID:    func(b *models.BucketListItem, id string) { b.ID = id },
	Prepare:  func(b *models.BucketListItem) { b.IsCompleted = false },
	Validate: models.BucketListItem.Validate,
	Mutable:  []string{"title", "category", "targetDate", "links", "notes"},
	View:     viewmodel.BucketList,
}

type Service struct {
	*records.Service[models.BucketListItem]
}

func NewService(coll store.Collection[models.BucketListItem], notify records.Notifier, log logging.Logger) *Service {
	return &Service{Service: records.NewService(Entity, coll, notify, log)}
}

func (s *Service) Toggle(ctx context.Context, id string, done bool) error {
	return s.Set(ctx, id, store.Fields{"isCompleted": done})
}

type Handler struct {
	*records.Resource[models.BucketListItem]
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Resource: records.NewResource(svc.Service), svc: svc}
}

// POST /api/bucketList/:id/toggle
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
