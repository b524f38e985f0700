package media

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // frames from engines configured for WebP output
)

const (
	// PosterWidth and PosterHeight bound poster frames.
	PosterWidth  = 640
	PosterHeight = 360

	jpegQuality = 80
)

// ErrEmptyImage is returned for an empty input buffer.
var ErrEmptyImage = errors.New("empty image")

// Thumbnail decodes data and fits it inside width x height, preserving the
// aspect ratio. Images already inside the box are re-encoded at their
// original size.
func Thumbnail(data []byte, width, height int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > width || bounds.Dy() > height {
		img = imaging.Fit(img, width, height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
