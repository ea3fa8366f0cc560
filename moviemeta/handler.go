package moviemeta

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lovenest/utils"
)

// PosterFinder is implemented by Client.
type PosterFinder interface {
	Poster(ctx context.Context, title string) (string, error)
}

// GET /api/posters?title=
func Handler(finder PosterFinder) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		poster, err := finder.Poster(r.Context(), r.URL.Query().Get("title"))
		switch {
		case errors.Is(err, ErrPosterNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "poster not found")
		case err != nil:
			utils.RespondWithError(w, http.StatusBadGateway, "poster lookup failed")
		default:
			utils.RespondWithJSON(w, http.StatusOK, utils.M{"poster": poster})
		}
	}
}
