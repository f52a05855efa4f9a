// Package demo provides the fixed result shown when real text detection cannot run.
package demo

import (
	"context"
	"strconv"

	"ocr-lens/api/internal/ocr"
)

const FullText = "OCR Lens demo\n" +
	"Point the camera at printed text and tap capture.\n" +
	"Configure VISION_API_KEY to see real results."

// word boxes as fractions of the target display area
var fixture = []struct {
	text       string
	confidence float64
	x, y, w, h float64
}{
	{"OCR", 0.98, 0.10, 0.10, 0.20, 0.06},
	{"Lens", 0.95, 0.35, 0.10, 0.25, 0.06},
	{"demo", 0.92, 0.10, 0.20, 0.30, 0.05},
}

// Result returns the demo ExtractedText scaled to the target dimensions.
func Result(targetWidth, targetHeight int) ocr.ExtractedText {
	w, h := float64(targetWidth), float64(targetHeight)
	words := make([]ocr.Word, 0, len(fixture))
	for i, f := range fixture {
		words = append(words, ocr.Word{
			ID:         "demo-" + strconv.Itoa(i),
			Text:       f.text,
			Confidence: f.confidence,
			Box: ocr.Box{
				X:      f.x * w,
				Y:      f.y * h,
				Width:  f.w * w,
				Height: f.h * h,
			},
		})
	}
	return ocr.ExtractedText{FullText: FullText, Words: words}
}

// Engine exposes the demo result as a Detector, for explicit selection.
type Engine struct{}

func (Engine) Name() string { return "demo" }

func (Engine) DetectText(_ context.Context, _ string, targetWidth, targetHeight int) (ocr.ExtractedText, error) {
	return Result(targetWidth, targetHeight), nil
}
