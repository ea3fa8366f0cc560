package export

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"lovenest/logging"
	"lovenest/models"
	"lovenest/utils"
	"lovenest/viewmodel"
)

// Querier lists a collection through the view model.
type Querier[T any] interface {
	Query(ctx context.Context, vs viewmodel.ViewState) ([]T, error)
}

type Handler struct {
	plans      Querier[models.Plan]
	milestones Querier[models.Milestone]
	log        logging.Logger
	now        func() time.Time
}

func NewHandler(plans Querier[models.Plan], milestones Querier[models.Milestone], log logging.Logger) *Handler {
	return &Handler{plans: plans, milestones: milestones, log: log, now: time.Now}
}

// Collect loads completed plans and all milestones in date order.
func (h *Handler) Collect(ctx context.Context) (Book, error) {
	plans, err := h.plans.Query(ctx, viewmodel.ViewState{Status: "completed", Sort: "date", Direction: viewmodel.Asc})
	if err != nil {
		return Book{}, err
	}
	milestones, err := h.milestones.Query(ctx, viewmodel.ViewState{Sort: "date", Direction: viewmodel.Asc})
	if err != nil {
		return Book{}, err
	}
	return Book{Generated: h.now(), Plans: plans, Milestones: milestones}, nil
}

// GET /api/export/memories.pdf
func (h *Handler) MemoryBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	book, err := h.Collect(ctx)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	var buf bytes.Buffer
	if err := Render(&buf, book); err != nil {
		h.log.Error(ctx, "render memory book", "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=memories-"+book.Generated.Format("2006-01-02")+".pdf")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
