// Package imageprep turns a raw captured photo into the compressed base64 payload
// sent to text detection.
package imageprep

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"ocr-lens/api/internal/ocr"
)

const (
	DefaultQuality = 70
	mimeJPEG       = "image/jpeg"

	enhanceContrast = 0.25
)

// Prepared is the encoded image together with its actual pixel size.
type Prepared struct {
	Base64 string `json:"-"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	MIME   string `json:"mime_type"`
}

type Preparer struct {
	Quality int
	// Enhance converts to grayscale and raises contrast before encoding.
	Enhance bool
}

func New(quality int) *Preparer {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Preparer{Quality: quality}
}

// Prepare decodes raw (EXIF orientation applied), shrinks it to targetWidth keeping the
// aspect ratio and re-encodes it as JPEG. Images narrower than targetWidth are not enlarged.
// Every failure is an ocr.ImagePreparationFailure.
func (p *Preparer) Prepare(raw []byte, targetWidth int) (Prepared, error) {
	if len(raw) == 0 {
		return Prepared{}, ocr.ImagePreparationFailure(errors.New("empty image"))
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return Prepared{}, ocr.ImagePreparationFailure(fmt.Errorf("decode: %w", err))
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return Prepared{}, ocr.ImagePreparationFailure(errors.New("image has no pixels"))
	}

	if targetWidth > 0 && img.Bounds().Dx() > targetWidth {
		img = imaging.Resize(img, targetWidth, 0, imaging.Lanczos)
	}
	if p.Enhance {
		img = adjust.Contrast(effect.Grayscale(img), enhanceContrast)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.Quality)); err != nil {
		return Prepared{}, ocr.ImagePreparationFailure(fmt.Errorf("encode: %w", err))
	}
	b64 := base64.StdEncoding.EncodeToString(buf.Bytes())
	if b64 == "" {
		return Prepared{}, ocr.ImagePreparationFailure(errors.New("no base64 output"))
	}

	return Prepared{
		Base64: b64,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
		MIME:   mimeJPEG,
	}, nil
}
