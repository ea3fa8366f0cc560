package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lovenest/blob"
)

// Backend stores processed images and returns their public URL.
type Backend interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// LocalBackend writes under Dir; the server exposes Dir at BaseURL.
type LocalBackend struct {
	Dir     string
	BaseURL string // e.g. http://localhost:8080/media
}

func (b LocalBackend) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	full := filepath.Join(b.Dir, filepath.FromSlash(key))
	if !strings.HasPrefix(full, filepath.Clean(b.Dir)+string(filepath.Separator)) {
		return "", fmt.Errorf("media key %q escapes %s", key, b.Dir)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", full, err)
	}
	return strings.TrimRight(b.BaseURL, "/") + "/" + key, nil
}

type S3Backend struct {
	API    blob.PutObjectAPI
	Config blob.S3Config
}

func (b S3Backend) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	return blob.Put(ctx, b.API, b.Config, key, contentType, bytes.NewReader(data), int64(len(data)))
}
