package upload

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"lovenest/blob"
)

// S3Uploader puts files straight into a bucket.
type S3Uploader struct {
	API    blob.PutObjectAPI
	Config blob.S3Config
	Prefix string
	Now    func() time.Time
}

func (u *S3Uploader) Upload(ctx context.Context, f File, progress ProgressFunc) (string, error) {
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	prefix := u.Prefix
	if prefix == "" {
		prefix = "memories"
	}
	key := blob.NewKey(prefix, strings.ToLower(filepath.Ext(f.Name)), now())
	body := newSeekingReader(bytes.NewReader(f.Data), f.Size(), progress)
	return blob.Put(ctx, u.API, u.Config, key, f.ContentType, body, f.Size())
}
