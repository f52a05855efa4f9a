package vision

import (
	"fmt"

	visionapi "google.golang.org/api/vision/v1"

	"ocr-lens/api/internal/ocr"
)

// toExtractedText applies the Vision convention: textAnnotations[0] holds the whole
// text, every later entry is one word. fullTextAnnotation wins over textAnnotations[0].
func toExtractedText(r *visionapi.AnnotateImageResponse) ocr.ExtractedText {
	var out ocr.ExtractedText

	switch {
	case r.FullTextAnnotation != nil && r.FullTextAnnotation.Text != "":
		out.FullText = r.FullTextAnnotation.Text
	case len(r.TextAnnotations) > 0 && r.TextAnnotations[0] != nil:
		out.FullText = r.TextAnnotations[0].Description
	}

	if len(r.TextAnnotations) < 2 {
		out.Words = []ocr.Word{}
		return out
	}
	words := r.TextAnnotations[1:]
	out.Words = make([]ocr.Word, 0, len(words))
	for i, a := range words {
		w := ocr.Word{
			ID:         fmt.Sprintf("word-%d", i),
			Confidence: ocr.DefaultConfidence,
		}
		if a != nil {
			w.Text = a.Description
			w.Box = ocr.BoxOrZero(polygon(a.BoundingPoly))
		}
		out.Words = append(out.Words, w)
	}
	return out
}

func polygon(p *visionapi.BoundingPoly) []ocr.Vertex {
	if p == nil {
		return nil
	}
	vs := make([]ocr.Vertex, 0, len(p.Vertices))
	for _, v := range p.Vertices {
		if v == nil {
			vs = append(vs, ocr.Vertex{})
			continue
		}
		vs = append(vs, ocr.Vertex{X: float64(v.X), Y: float64(v.Y)})
	}
	return vs
}
