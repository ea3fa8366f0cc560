package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"lovenest/validate"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// DecodeJSON reads a single JSON value from the request body into dst.
// Malformed bodies come back as validation errors keyed "body".
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return validate.Errors{"body": "is empty"}
		}
		return validate.Errors{"body": fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// ReadBody returns the raw request body, capped at MaxBodyBytes.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, validate.Errors{"body": err.Error()}
	}
	return data, nil
}
