package routes

import (
	"github.com/julienschmidt/httprouter"

	"lovenest/auth"
	"lovenest/bucketlist"
	"lovenest/cinema"
	"lovenest/export"
	"lovenest/live"
	"lovenest/media"
	"lovenest/middleware"
	"lovenest/models"
	"lovenest/moviemeta"
	"lovenest/plans"
	"lovenest/ratelim"
	"lovenest/records"
)

// Handlers is everything the router exposes.
type Handlers struct {
	Auth       *auth.Service
	Plans      *plans.Handler
	BucketList *bucketlist.Handler
	Dreams     *records.Resource[models.Dream]
	Milestones *records.Resource[models.Milestone]
	Cinema     *cinema.Handler
	Posters    moviemeta.PosterFinder
	Hub        *live.Hub
	Media      *media.Service
	MediaDir   string
	Export     *export.Handler
}

// RoutesWrapper registers every route. All /api routes except the session
// endpoints require a valid session; every /api route is rate limited.
func RoutesWrapper(router *httprouter.Router, h Handlers, rateLimiter *ratelim.RateLimiter) {
	protect := Guard(middleware.Chain(rateLimiter.Limit, middleware.Authenticate(h.Auth)))

	AddHealthRoutes(router)
	AddSessionRoutes(router, h.Auth, rateLimiter.Limit)
	AddPlanRoutes(router, h.Plans, protect)
	AddBucketListRoutes(router, h.BucketList, protect)
	AddDreamRoutes(router, h.Dreams, protect)
	AddMilestoneRoutes(router, h.Milestones, protect)
	AddCinemaRoutes(router, h.Cinema, h.Posters, protect)
	AddLiveRoutes(router, h.Hub, protect)
	AddMediaRoutes(router, h.Media, h.MediaDir, protect)
	AddExportRoutes(router, h.Export, protect)
}
