package telegram

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lucasb-eyer/go-colorful"

	"ocr-lens/api/internal/capture"
	"ocr-lens/api/internal/imageprep"
	"ocr-lens/api/internal/ocr"
)

const (
	maxMessageLen = 3900
	strokeWidth   = 2
)

var (
	lowConfidence  = colorful.Color{R: 1, G: 0.25, B: 0.25}
	highConfidence = colorful.Color{R: 0.15, G: 0.8, B: 0.2}
)

// boxColor blends from red to green as confidence rises.
func boxColor(confidence float64) color.NRGBA {
	r, g, b := lowConfidence.BlendLab(highConfidence, ocr.ClampConfidence(confidence)).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// present shows out in the requested view. The image view falls back to text
// when the overlay cannot be rendered or sent.
func (r *Router) present(chatID int64, out capture.Outcome, view capture.View) {
	kb := resultKeyboard(view)
	if view == capture.ViewImage {
		jpg, err := renderOverlay(out.Image, out.Result.Words)
		if err == nil {
			p := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "result.jpg", Bytes: jpg})
			p.Caption = summary(out)
			p.ReplyMarkup = kb
			if _, err = r.Bot.Send(p); err == nil {
				return
			}
		}
		r.Log.Warn().Err(err).Int64("chat", chatID).Msg("overlay unavailable, sending text")
	}
	msg := tgbotapi.NewMessage(chatID, truncate(formatText(out), maxMessageLen))
	msg.ReplyMarkup = kb
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Warn().Err(err).Int64("chat", chatID).Msg("send failed")
	}
}

func summary(out capture.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d words with %s.", len(out.Result.Words), out.Engine)
	if out.Fallback {
		b.WriteString(" Demo result.")
	}
	return b.String()
}

// formatText renders the text view: full text, then words with box and confidence.
func formatText(out capture.Outcome) string {
	var b strings.Builder
	b.WriteString(summary(out))
	b.WriteString("\n\n")
	if s := strings.TrimSpace(out.Result.FullText); s != "" {
		b.WriteString(s)
	} else {
		b.WriteString("No text found.")
	}
	if out.Result.HasWords() {
		b.WriteString("\n\nWords:")
		for i, w := range out.Result.Words {
			fmt.Fprintf(&b, "\n%d. %s  %d%%  [x=%.0f y=%.0f w=%.0f h=%.0f]",
				i+1, w.Text, int(math.Round(w.Confidence*100)), w.X, w.Y, w.Width, w.Height)
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

// renderOverlay outlines every word box on the prepared image, coloured by
// confidence. Boxes are clipped to the image bounds.
func renderOverlay(img imageprep.Prepared, words []ocr.Word) ([]byte, error) {
	if img.Base64 == "" {
		return nil, errors.New("no image")
	}
	raw, err := base64.StdEncoding.DecodeString(img.Base64)
	if err != nil {
		return nil, err
	}
	src, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	dst := imaging.Clone(src)
	bounds := dst.Bounds()

	for _, w := range words {
		if w.Width <= 0 || w.Height <= 0 {
			continue
		}
		fill := &image.Uniform{C: boxColor(w.Confidence)}
		x0, y0 := int(math.Floor(w.X)), int(math.Floor(w.Y))
		x1, y1 := int(math.Ceil(w.X+w.Width)), int(math.Ceil(w.Y+w.Height))
		edges := []image.Rectangle{
			image.Rect(x0, y0, x1, y0+strokeWidth),
			image.Rect(x0, y1-strokeWidth, x1, y1),
			image.Rect(x0, y0, x0+strokeWidth, y1),
			image.Rect(x1-strokeWidth, y0, x1, y1),
		}
		for _, e := range edges {
			draw.Draw(dst, e.Intersect(bounds), fill, image.Point{}, draw.Src)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
