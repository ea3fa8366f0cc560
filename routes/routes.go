package routes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lovenest/auth"
	"lovenest/bucketlist"
	"lovenest/cinema"
	"lovenest/export"
	"lovenest/live"
	"lovenest/media"
	"lovenest/models"
	"lovenest/moviemeta"
	"lovenest/plans"
	"lovenest/records"
	"lovenest/utils"
)

// Guard wraps a handler with the middlewares of protected routes.
type Guard func(httprouter.Handle) httprouter.Handle

// Health is a simple health check handler.
func Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
}

func AddHealthRoutes(router *httprouter.Router) {
	router.GET("/health", Health)
}

func AddSessionRoutes(router *httprouter.Router, svc *auth.Service, limit Guard) {
	router.POST("/api/session", limit(svc.Login))
	router.DELETE("/api/session", limit(svc.Logout))
}

func AddPlanRoutes(router *httprouter.Router, h *plans.Handler, protect Guard) {
	router.GET("/api/plans", protect(h.List))
	router.POST("/api/plans", protect(h.Create))
	router.PATCH("/api/plans/:id", protect(h.Patch))
	router.DELETE("/api/plans/:id", protect(h.Delete))
	router.POST("/api/plans/:id/toggle", protect(h.Toggle))
	router.PUT("/api/plans/:id/memory", protect(h.AddMemory))
}

func AddBucketListRoutes(router *httprouter.Router, h *bucketlist.Handler, protect Guard) {
	router.GET("/api/bucketList", protect(h.List))
	router.POST("/api/bucketList", protect(h.Create))
	router.PATCH("/api/bucketList/:id", protect(h.Patch))
	router.DELETE("/api/bucketList/:id", protect(h.Delete))
	router.POST("/api/bucketList/:id/toggle", protect(h.Toggle))
}

// Dreams are never edited, only created and removed.
func AddDreamRoutes(router *httprouter.Router, h *records.Resource[models.Dream], protect Guard) {
	router.GET("/api/dreams", protect(h.List))
	router.POST("/api/dreams", protect(h.Create))
	router.DELETE("/api/dreams/:id", protect(h.Delete))
}

func AddMilestoneRoutes(router *httprouter.Router, h *records.Resource[models.Milestone], protect Guard) {
	router.GET("/api/milestones", protect(h.List))
	router.POST("/api/milestones", protect(h.Create))
	router.PATCH("/api/milestones/:id", protect(h.Patch))
	router.DELETE("/api/milestones/:id", protect(h.Delete))
}

func AddCinemaRoutes(router *httprouter.Router, h *cinema.Handler, posters moviemeta.PosterFinder, protect Guard) {
	router.GET("/api/cinema", protect(h.List))
	router.POST("/api/cinema", protect(h.Create))
	router.DELETE("/api/cinema/:id", protect(h.Delete))
	router.POST("/api/cinema/:id/watched", protect(h.MarkWatched))
	router.DELETE("/api/cinema/:id/watched", protect(h.MarkUnwatched))
	router.GET("/api/posters", protect(moviemeta.Handler(posters)))
}

func AddLiveRoutes(router *httprouter.Router, hub *live.Hub, protect Guard) {
	router.GET("/api/live/:collection", protect(live.WebSocketHandler(hub)))
}

// AddMediaRoutes registers the upload endpoint, and serves dir at /media/
// when photos are stored locally.
func AddMediaRoutes(router *httprouter.Router, svc *media.Service, dir string, protect Guard) {
	router.POST("/api/uploads", protect(svc.Upload))
	if dir != "" {
		router.ServeFiles("/media/*filepath", http.Dir(dir))
	}
}

func AddExportRoutes(router *httprouter.Router, h *export.Handler, protect Guard) {
	router.GET("/api/export/memories.pdf", protect(h.MemoryBook))
}
