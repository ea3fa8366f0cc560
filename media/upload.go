// Package media is the Media Upload Service: it accepts a multipart image,
// normalizes it and stores it on the configured backend.
package media

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"lovenest/blob"
	"lovenest/logging"
	"lovenest/utils"
)

var ErrFileTooLarge = errors.New("file size exceeds limit")

type Service struct {
	backend  Backend
	maxBytes int64
	preset   string
	log      logging.Logger
	now      func() time.Time
}

// NewService builds the upload handler. When preset is not empty, uploads
// must carry a matching upload_preset field.
func NewService(backend Backend, maxBytes int64, preset string, log logging.Logger) *Service {
	return &Service{
		backend:  backend,
		maxBytes: maxBytes,
		preset:   preset,
		log:      log.With("component", "media"),
		now:      time.Now,
	}
}

// POST /api/uploads multipart {file, upload_preset} -> {secure_url}
func (s *Service) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Leave room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+1<<20)
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			utils.RespondWithError(w, http.StatusRequestEntityTooLarge, ErrFileTooLarge.Error())
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	if s.preset != "" && r.FormValue("upload_preset") != s.preset {
		utils.RespondWithError(w, http.StatusBadRequest, "unknown upload_preset")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if int64(len(data)) > s.maxBytes {
		utils.RespondWithError(w, http.StatusRequestEntityTooLarge, ErrFileTooLarge.Error())
		return
	}

	img, err := Normalize(data)
	if err != nil {
		s.log.Warn(r.Context(), "rejected upload", "file", header.Filename, "error", err)
		utils.RespondWithError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}

	key := blob.NewKey("memories", ".jpg", s.now())
	url, err := s.backend.Put(r.Context(), key, "image/jpeg", img.Full)
	if err != nil {
		s.log.Error(r.Context(), "store upload", "key", key, "error", err)
		utils.RespondWithError(w, http.StatusBadGateway, "failed to store file")
		return
	}
	thumbKey := strings.TrimSuffix(key, ".jpg") + "_thumb.jpg"
	thumbURL, err := s.backend.Put(r.Context(), thumbKey, "image/jpeg", img.Thumb)
	if err != nil {
		// The full image is stored; a missing thumbnail is not fatal.
		s.log.Warn(r.Context(), "store thumbnail", "key", thumbKey, "error", err)
		thumbURL = ""
	}

	s.log.Info(r.Context(), "upload stored", "key", key, "bytes", len(img.Full))
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"secure_url":    url,
		"thumbnail_url": thumbURL,
		"bytes":         len(img.Full),
		"format":        "jpg",
		"public_id":     strings.TrimSuffix(key, ".jpg"),
	})
}
