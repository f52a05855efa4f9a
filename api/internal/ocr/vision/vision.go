// Package vision detects text through the Google Cloud Vision images:annotate REST API.
package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	visionapi "google.golang.org/api/vision/v1"

	"ocr-lens/api/internal/ocr"
)

const (
	DefaultEndpoint   = "https://vision.googleapis.com/"
	DefaultMaxResults = 100

	featureTextDetection = "TEXT_DETECTION"
	apiKeySetting        = "VISION_API_KEY"
)

type Config struct {
	APIKey     string
	Endpoint   string
	MaxResults int64
	Timeout    time.Duration
}

type Engine struct {
	cfg   Config
	httpc *http.Client
	log   zerolog.Logger
}

type Option func(*Engine)

// WithHTTPClient replaces the base client. The API key is still attached to every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(e *Engine) { e.httpc = hc }
}

func New(cfg Config, log zerolog.Logger, opts ...Option) *Engine {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	e := &Engine{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
		log:   log.With().Str("engine", "vision").Logger(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Name() string { return "vision" }

// DetectText sends one TEXT_DETECTION request. The target dimensions are only logged:
// provider coordinates are already in the pixel space of the submitted image.
func (e *Engine) DetectText(ctx context.Context, imageB64 string, targetWidth, targetHeight int) (ocr.ExtractedText, error) {
	if e.cfg.APIKey == "" {
		return ocr.ExtractedText{}, ocr.ConfigurationMissing(apiKeySetting)
	}
	log := e.log.With().Int("target_width", targetWidth).Int("target_height", targetHeight).Logger()
	log.Debug().Int("payload_bytes", len(imageB64)).Msg("text detection request")

	hc := &http.Client{
		Transport: &transport.APIKey{Key: e.cfg.APIKey, Transport: e.httpc.Transport},
		Timeout:   e.httpc.Timeout,
	}
	svc, err := visionapi.NewService(ctx, option.WithHTTPClient(hc), option.WithEndpoint(e.cfg.Endpoint))
	if err != nil {
		return ocr.ExtractedText{}, ocr.TransportFailure(0, "", fmt.Errorf("vision client: %w", err))
	}

	req := &visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{{
			Image:    &visionapi.Image{Content: imageB64},
			Features: []*visionapi.Feature{{Type: featureTextDetection, MaxResults: e.cfg.MaxResults}},
		}},
	}
	resp, err := svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			log.Warn().Int("status", gerr.Code).Msg("text detection rejected")
			return ocr.ExtractedText{}, ocr.TransportFailure(gerr.Code, gerr.Body, err)
		}
		log.Warn().Err(err).Msg("text detection transport error")
		return ocr.ExtractedText{}, ocr.TransportFailure(0, "", err)
	}

	if len(resp.Responses) == 0 || resp.Responses[0] == nil {
		log.Debug().Msg("empty annotate response")
		return ocr.ExtractedText{Words: []ocr.Word{}}, nil
	}
	r := resp.Responses[0]
	if r.Error != nil {
		log.Warn().Int64("code", r.Error.Code).Str("message", r.Error.Message).Msg("provider error")
		return ocr.ExtractedText{}, ocr.ProviderError(int(r.Error.Code), r.Error.Message)
	}

	out := toExtractedText(r)
	log.Debug().Int("words", len(out.Words)).Int("full_text_len", len(out.FullText)).Msg("text detected")
	return out, nil
}
