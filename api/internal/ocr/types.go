package ocr

// DefaultConfidence is assigned to words when the provider reports no per-word score.
const DefaultConfidence = 0.9

// ExtractedText is the render-ready result of one capture-and-analyze cycle.
type ExtractedText struct {
	FullText string `json:"full_text"`
	Words    []Word `json:"words"`
}

// Word is a recognized token with a screen-space box in pixels.
// ID is unique inside one ExtractedText only.
type Word struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Box
}

// Box is an axis-aligned rectangle. Width and Height are zero for degenerate polygons.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Vertex is one corner of a provider bounding polygon.
// A coordinate the provider omitted decodes as 0.
type Vertex struct {
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
}

// HasWords reports whether the result carries any word-level annotation.
func (t ExtractedText) HasWords() bool { return len(t.Words) > 0 }

// ClampConfidence forces a provider score into [0,1].
func ClampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
