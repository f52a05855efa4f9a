package handle

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"ocr-lens/api/internal/capture"
	"ocr-lens/api/internal/ocr"
)

// Defaults are used when a request leaves the target size unset.
type Defaults struct {
	TargetWidth  int
	TargetHeight int
}

type Handle struct {
	engs *ocr.Engines
	prep capture.Preparer
	def  Defaults
	log  zerolog.Logger
}

func New(engs *ocr.Engines, prep capture.Preparer, def Defaults, log zerolog.Logger) *Handle {
	return &Handle{
		engs: engs,
		prep: prep,
		def:  def,
		log:  log,
	}
}

// Engines lists the configured detectors.
func (h *Handle) Engines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": h.engs.Default().Name(),
		"engines": h.engs.Names(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
