package handle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocr-lens/api/internal/imageprep"
	"ocr-lens/api/internal/ocr"
	"ocr-lens/api/internal/ocr/demo"
)

type stubDetector struct {
	name string
	res  ocr.ExtractedText
	err  error

	gotWidth, gotHeight int
}

func (s *stubDetector) Name() string { return s.name }

func (s *stubDetector) DetectText(_ context.Context, img string, w, h int) (ocr.ExtractedText, error) {
	s.gotWidth, s.gotHeight = w, h
	return s.res, s.err
}

func pngB64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newHandle(t *testing.T, ds ...ocr.Detector) *Handle {
	t.Helper()
	engs, err := ocr.NewEngines(ds[0].Name(), ds...)
	require.NoError(t, err)
	return New(engs, imageprep.New(70), Defaults{TargetWidth: 100, TargetHeight: 200}, zerolog.Nop())
}

func post(t *testing.T, h *Handle, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/ocr/detect", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Detect(rec, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func body(t *testing.T, v DetectRequest) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestDetect_Success(t *testing.T) {
	det := &stubDetector{name: "vision", res: ocr.ExtractedText{
		FullText: "Hello",
		Words:    []ocr.Word{{ID: "word-0", Text: "Hello", Confidence: 0.9, Box: ocr.Box{X: 1, Y: 2, Width: 3, Height: 4}}},
	}}
	h := newHandle(t, det)

	rec, out := post(t, h, body(t, DetectRequest{ImageB64: "data:image/png;base64," + pngB64(t, 300, 150)}))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Hello", out["full_text"])
	assert.Equal(t, false, out["fallback"])
	assert.Equal(t, "vision", out["engine"])
	assert.NotEmpty(t, out["cycle_id"])
	assert.NotContains(t, out, "error_kind")
	words := out["words"].([]any)
	require.Len(t, words, 1)
	assert.Equal(t, "Hello", words[0].(map[string]any)["text"])
	assert.Equal(t, 3.0, words[0].(map[string]any)["width"])

	img := out["image"].(map[string]any)
	assert.Equal(t, 100.0, img["width"])
	assert.Equal(t, 50.0, img["height"])
	assert.Equal(t, 100, det.gotWidth)
	assert.Equal(t, 200, det.gotHeight)
}

func TestDetect_FallbackToDemo(t *testing.T) {
	det := &stubDetector{name: "vision", err: ocr.ConfigurationMissing("VISION_API_KEY")}
	h := newHandle(t, det)

	rec, out := post(t, h, body(t, DetectRequest{ImageB64: pngB64(t, 40, 40), TargetWidth: 1000, TargetHeight: 500}))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, true, out["fallback"])
	assert.Equal(t, "configuration_missing", out["error_kind"])
	assert.Contains(t, out["notice"], "VISION_API_KEY")
	assert.Equal(t, demo.FullText, out["full_text"])

	want := demo.Result(1000, 500)
	words := out["words"].([]any)
	require.Len(t, words, len(want.Words))
	first := words[0].(map[string]any)
	assert.Equal(t, want.Words[0].X, first["x"])
	assert.Equal(t, want.Words[0].Width, first["width"])
}

func TestDetect_TransportFailureNotice(t *testing.T) {
	h := newHandle(t, &stubDetector{name: "vision", err: ocr.TransportFailure(500, "oops", nil)})
	rec, out := post(t, h, body(t, DetectRequest{ImageB64: pngB64(t, 10, 10)}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "transport_failure", out["error_kind"])
	assert.Contains(t, out["notice"], "Could not analyze the photo")
}

func TestDetect_ImagePreparationFailure(t *testing.T) {
	det := &stubDetector{name: "vision"}
	h := newHandle(t, det)

	garbage := base64.StdEncoding.EncodeToString([]byte("not an image"))
	rec, out := post(t, h, body(t, DetectRequest{ImageB64: garbage}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "image_preparation_failure", out["error_kind"])
	assert.NotContains(t, out, "words")
	assert.Zero(t, det.gotWidth)
}

func TestDetect_SelectsEngine(t *testing.T) {
	vision := &stubDetector{name: "vision"}
	h := newHandle(t, vision, demo.Engine{})

	rec, out := post(t, h, body(t, DetectRequest{ImageB64: pngB64(t, 20, 20), Engine: "DEMO"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "demo", out["engine"])
	assert.Equal(t, false, out["fallback"])
	assert.Zero(t, vision.gotWidth)
}

func TestDetect_BadRequests(t *testing.T) {
	h := newHandle(t, &stubDetector{name: "vision"})

	tests := []struct {
		name string
		body string
	}{
		{"bad json", "{"},
		{"empty image", `{"image_b64":""}`},
		{"bad base64", `{"image_b64":"%%%"}`},
		{"empty data url", `{"image_b64":"data:image/png;base64,"}`},
		{"unknown engine", body(t, DetectRequest{ImageB64: pngB64(t, 4, 4), Engine: "tesseract"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := post(t, h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestEngines(t *testing.T) {
	h := newHandle(t, &stubDetector{name: "vision"}, demo.Engine{})
	rec := httptest.NewRecorder()
	h.Engines(rec, httptest.NewRequest(http.MethodGet, "/v1/ocr/engines", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"default":"vision","engines":["demo","vision"]}`, rec.Body.String())
}

func TestRequestDeadline(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/ocr/detect?timeoutSec=5", nil)
	assert.Equal(t, 5*time.Second, requestDeadline(r))

	r.Header.Set("X-Request-Timeout", "7")
	assert.Equal(t, 7*time.Second, requestDeadline(r))

	assert.Equal(t, defaultDeadline, requestDeadline(httptest.NewRequest(http.MethodPost, "/", nil)))
}
