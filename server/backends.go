package server

import (
	"context"
	"fmt"
	"strings"

	"lovenest/blob"
	"lovenest/config"
	"lovenest/logging"
	"lovenest/media"
	"lovenest/store"
	"lovenest/store/memstore"
	"lovenest/store/mongostore"
	"lovenest/store/sqlitestore"
)

func openStore(ctx context.Context, cfg config.Server) (*store.Store, error) {
	switch cfg.Store {
	case "mongo":
		return mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "sqlite":
		return sqlitestore.Open(ctx, cfg.SQLitePath)
	case "memory":
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
}

// newMedia returns the upload service and, for local storage, the
// directory to serve at /media/.
func newMedia(ctx context.Context, cfg config.Server, log logging.Logger) (*media.Service, string, error) {
	switch cfg.Media {
	case "s3":
		s3cfg := blob.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicURL,
		}
		client, err := blob.NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, "", err
		}
		backend := media.S3Backend{API: client, Config: s3cfg}
		return media.NewService(backend, cfg.MaxUploadBytes, cfg.UploadPreset, log), "", nil
	case "local", "":
		backend := media.LocalBackend{
			Dir:     cfg.MediaDir,
			BaseURL: strings.TrimRight(cfg.PublicURL, "/") + "/media",
		}
		return media.NewService(backend, cfg.MaxUploadBytes, cfg.UploadPreset, log), cfg.MediaDir, nil
	}
	return nil, "", fmt.Errorf("unknown media backend %q", cfg.Media)
}
