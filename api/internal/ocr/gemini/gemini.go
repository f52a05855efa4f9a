package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"ocr-lens/api/internal/ocr"
	"ocr-lens/api/internal/util"
)

const (
	DefaultModel  = "gemini-1.5-flash"
	apiKeySetting = "GEMINI_API_KEY"
)

const systemPrompt = `You are a text detection module. Read every printed word in the image.
Return STRICT JSON, nothing else:
{
  "full_text": string,   // all text in reading order, lines separated by \n
  "words": [
    {
      "text": string,          // one word, never empty
      "confidence": number,    // 0..1
      "vertices": [{"x": number, "y": number}, ...]  // 4 corners in image pixels, clockwise from top-left
    }
  ]
}
If there is no text return {"full_text": "", "words": []}.`

type Engine struct {
	APIKey string
	log    zerolog.Logger

	mu    sync.RWMutex
	model string
}

func New(key, model string, log zerolog.Logger) *Engine {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Engine{
		APIKey: strings.TrimSpace(key),
		model:  strings.TrimSpace(model),
		log:    log.With().Str("engine", "gemini").Logger(),
	}
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) GetModel() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model
}

// SetModel switches the model for every later request. Blank names are ignored.
func (e *Engine) SetModel(m string) {
	if m = strings.TrimSpace(m); m != "" {
		e.mu.Lock()
		e.model = m
		e.mu.Unlock()
	}
}

func (e *Engine) DetectText(ctx context.Context, imageB64 string, targetWidth, targetHeight int) (ocr.ExtractedText, error) {
	if e.APIKey == "" {
		return ocr.ExtractedText{}, ocr.ConfigurationMissing(apiKeySetting)
	}
	imgBytes, mime, err := util.DecodeImage(imageB64)
	if err != nil {
		return ocr.ExtractedText{}, ocr.ImagePreparationFailure(fmt.Errorf("gemini: %w", err))
	}
	model := e.GetModel()
	log := e.log.With().Str("model", model).Int("target_width", targetWidth).Int("target_height", targetHeight).Logger()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return ocr.ExtractedText{}, ocr.TransportFailure(0, "", fmt.Errorf("gemini client: %w", err))
	}
	defer cl.Close()

	m := cl.GenerativeModel(model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := m.GenerateContent(ctx,
		genai.Text("Detect the text in this image."),
		&genai.Blob{MIMEType: mime, Data: imgBytes},
	)
	if err != nil {
		return ocr.ExtractedText{}, classify(err)
	}

	out, err := decodeReply(firstText(resp))
	if err != nil {
		log.Warn().Err(err).Msg("unusable model reply")
		return ocr.ExtractedText{}, err
	}
	log.Debug().Int("words", len(out.Words)).Msg("text detected")
	return out, nil
}

func classify(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return ocr.ProviderError(0, blocked.Error())
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return ocr.TransportFailure(gerr.Code, gerr.Body, err)
	}
	return ocr.TransportFailure(0, "", err)
}

type reply struct {
	FullText string `json:"full_text"`
	Words    []struct {
		Text       string       `json:"text"`
		Confidence *float64     `json:"confidence"`
		Vertices   []ocr.Vertex `json:"vertices"`
	} `json:"words"`
}

// decodeReply maps the model JSON onto ExtractedText. Unlike Vision, every entry is a word.
func decodeReply(txt string) (ocr.ExtractedText, error) {
	txt = stripFence(txt)
	if txt == "" {
		return ocr.ExtractedText{}, ocr.ProviderError(0, "empty model reply")
	}
	var r reply
	if err := json.Unmarshal([]byte(txt), &r); err != nil {
		return ocr.ExtractedText{}, ocr.ProviderError(0, "model reply is not JSON: "+err.Error())
	}

	out := ocr.ExtractedText{FullText: r.FullText, Words: make([]ocr.Word, 0, len(r.Words))}
	for _, w := range r.Words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		conf := ocr.DefaultConfidence
		if w.Confidence != nil {
			conf = ocr.ClampConfidence(*w.Confidence)
		}
		out.Words = append(out.Words, ocr.Word{
			ID:         fmt.Sprintf("word-%d", len(out.Words)),
			Text:       text,
			Confidence: conf,
			Box:        ocr.BoxOrZero(w.Vertices),
		})
	}
	return out, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return strings.TrimSpace(string(t))
			}
		}
	}
	return ""
}

func ptrFloat32(f float32) *float32 { return &f }

// stripFence removes a ```json fence some models wrap around JSON-mode replies.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
