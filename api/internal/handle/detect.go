package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ocr-lens/api/internal/capture"
	"ocr-lens/api/internal/imageprep"
	"ocr-lens/api/internal/ocr"
	"ocr-lens/api/internal/util"
)

const defaultDeadline = 90 * time.Second

type DetectRequest struct {
	ImageB64     string `json:"image_b64"`
	TargetWidth  int    `json:"target_width,omitempty"`
	TargetHeight int    `json:"target_height,omitempty"`
	Engine       string `json:"engine,omitempty"`
}

type DetectResponse struct {
	CycleID string `json:"cycle_id"`
	Engine  string `json:"engine"`
	ocr.ExtractedText
	Image     imageprep.Prepared `json:"image"`
	Fallback  bool               `json:"fallback"`
	ErrorKind string             `json:"error_kind,omitempty"`
	Notice    string             `json:"notice,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind,omitempty"`
	Notice    string `json:"notice,omitempty"`
}

// Detect runs one capture cycle over the posted image. Detection failures still
// answer 200 with the demo result marked as a fallback.
func (h *Handle) Detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json: " + err.Error()})
		return
	}

	raw, mime, err := util.DecodeImage(req.ImageB64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "image_b64: " + err.Error()})
		return
	}

	det, err := h.engs.GetEngine(req.Engine)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestDeadline(r))
	defer cancel()

	cfg := capture.Config{TargetWidth: req.TargetWidth, TargetHeight: req.TargetHeight}
	if cfg.TargetWidth <= 0 {
		cfg.TargetWidth = h.def.TargetWidth
	}
	if cfg.TargetHeight <= 0 {
		cfg.TargetHeight = h.def.TargetHeight
	}

	var notice string
	notify := capture.NotifierFunc(func(_ context.Context, n capture.Notice) { notice = n.Text() })
	log := h.log.With().Str("mime", mime).Logger()
	sess := capture.NewSession(cfg, h.prep, notify, log)

	out, err := sess.Capture(ctx, capture.CameraFunc(func(context.Context) ([]byte, error) {
		return raw, nil
	}), det)
	if err != nil {
		if kind := ocr.KindOf(err); kind == ocr.KindImagePreparationFailure {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:     err.Error(),
				ErrorKind: kind.String(),
				Notice:    notice,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	resp := DetectResponse{
		CycleID:       out.CycleID,
		Engine:        out.Engine,
		ExtractedText: out.Result,
		Image:         out.Image,
		Fallback:      out.Fallback,
		Notice:        notice,
	}
	if out.Fallback {
		resp.ErrorKind = out.Kind.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// requestDeadline honours X-Request-Timeout or ?timeoutSec=, in seconds.
func requestDeadline(r *http.Request) time.Duration {
	ts := r.Header.Get("X-Request-Timeout")
	if ts == "" {
		ts = r.URL.Query().Get("timeoutSec")
	}
	if v, _ := strconv.Atoi(ts); v > 0 {
		return time.Duration(v) * time.Second
	}
	return defaultDeadline
}
