package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"slices"

	"github.com/disintegration/imaging"
)

const (
	MaxDimension = 2048
	ThumbSize    = 320
)

var ErrUnsupportedType = errors.New("unsupported image type")

var allowedMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/bmp"}

// Processed is an uploaded image after normalization.
type Processed struct {
	Full  []byte
	Thumb []byte
}

// Normalize decodes data honoring its EXIF orientation, bounds it to
// MaxDimension, and re-encodes it as JPEG together with a thumbnail. The
// re-encode drops all metadata.
func Normalize(data []byte) (Processed, error) {
	mime := http.DetectContentType(data)
	if !slices.Contains(allowedMIMEs, mime) {
		return Processed{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Processed{}, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}

	b := img.Bounds()
	if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}
	full, err := encodeJPEG(img, 88)
	if err != nil {
		return Processed{}, err
	}
	thumb, err := encodeJPEG(imaging.Fit(img, ThumbSize, ThumbSize, imaging.Lanczos), 80)
	if err != nil {
		return Processed{}, err
	}
	return Processed{Full: full, Thumb: thumb}, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
