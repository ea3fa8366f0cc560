// Package upload sends photos from the client to the media service and
// tracks their progress.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// DefaultMaxBytes is the per-file ceiling.
const DefaultMaxBytes = 5 << 20

var ErrTooLarge = errors.New("file exceeds upload limit")

// File is one photo queued for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f File) Size() int64 { return int64(len(f.Data)) }

// ProgressFunc receives the bytes sent so far for the current file.
type ProgressFunc func(sent, total int64)

// Uploader stores a single file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, f File, progress ProgressFunc) (string, error)
}

// ReadFile loads path, refusing files over maxBytes before reading them.
func ReadFile(path string, maxBytes int64) (File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if maxBytes > 0 && st.Size() > maxBytes {
		return File{}, fmt.Errorf("%s (%d bytes): %w", filepath.Base(path), st.Size(), ErrTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	ctype := mime.TypeByExtension(filepath.Ext(path))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	return File{Name: filepath.Base(path), ContentType: ctype, Data: data}, nil
}

// countingReader reports every read to fn.
type countingReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		if c.fn != nil {
			c.fn(c.sent, c.total)
		}
	}
	return n, err
}

// seekingReader is a countingReader over a seekable body; the S3 client may
// rewind it to compute checksums or retry.
type seekingReader struct {
	countingReader
	rs io.ReadSeeker
}

func newSeekingReader(rs io.ReadSeeker, total int64, fn ProgressFunc) *seekingReader {
	return &seekingReader{countingReader: countingReader{r: rs, total: total, fn: fn}, rs: rs}
}

func (s *seekingReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := s.rs.Seek(offset, whence)
	if err == nil {
		s.sent = pos
	}
	return pos, err
}
