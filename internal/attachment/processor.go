// Package attachment stores the photos a duty student uploads with a
// completion report.
package attachment

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage is returned for uploads that do not decode as an image.
var ErrInvalidImage = errors.New("invalid image")

const (
	DefaultQuality      = 35
	DefaultMaxDimension = 1920
)

// Processor re-encodes uploads as JPEG, shrinking large images.
type Processor struct {
	// Quality is the JPEG quality, 1 to 100.
	Quality int
	// MaxDimension bounds width and height. Zero keeps the original size.
	MaxDimension int
}

func NewProcessor(quality, maxDimension int) Processor {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	if maxDimension < 0 {
		maxDimension = 0
	}
	return Processor{Quality: quality, MaxDimension: maxDimension}
}

// Process decodes any supported image format from r and returns it as a
// compressed JPEG.
func (p Processor) Process(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if p.MaxDimension > 0 && (b.Dx() > p.MaxDimension || b.Dy() > p.MaxDimension) {
		img = imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.Quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDataURL decodes a base64 image, with or without a
// "data:image/...;base64," prefix.
func DecodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 || !strings.HasSuffix(s[:comma], ";base64") {
			return nil, fmt.Errorf("%w: malformed data url", ErrInvalidImage)
		}
		s = s[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, nil
}
