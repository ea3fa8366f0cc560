package utils

import (
	"context"
	"errors"
	"net/http"

	"lovenest/store"
	"lovenest/validate"
)

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, validate.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithErr writes err using StatusFor. Validation errors carry their
// per-field messages; internal errors are not echoed to the client.
func RespondWithErr(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	switch code {
	case http.StatusBadRequest:
		RespondWithJSON(w, code, M{"error": "validation failed", "fields": validate.Fields(err)})
	case http.StatusNotFound:
		RespondWithError(w, code, "record not found")
	case http.StatusInternalServerError:
		RespondWithError(w, code, "internal server error")
	default:
		RespondWithError(w, code, http.StatusText(code))
	}
}
