package ocr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Detector turns one encoded image into an ExtractedText.
// Failures are always *Error values. Detectors never retry.
type Detector interface {
	Name() string
	DetectText(ctx context.Context, imageB64 string, targetWidth, targetHeight int) (ExtractedText, error)
}

// Engines is the set of configured detectors addressable by name.
type Engines struct {
	byName map[string]Detector
	def    string
}

func NewEngines(def string, ds ...Detector) (*Engines, error) {
	e := &Engines{byName: make(map[string]Detector, len(ds))}
	for _, d := range ds {
		if d == nil {
			continue
		}
		e.byName[strings.ToLower(d.Name())] = d
	}
	def = strings.ToLower(strings.TrimSpace(def))
	if _, ok := e.byName[def]; !ok {
		return nil, fmt.Errorf("default engine %q is not configured", def)
	}
	e.def = def
	return e, nil
}

// GetEngine resolves name, falling back to the default engine for an empty name.
func (e *Engines) GetEngine(name string) (Detector, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = e.def
	}
	d, ok := e.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown engine %q (available: %s)", name, strings.Join(e.Names(), " | "))
	}
	return d, nil
}

func (e *Engines) Default() Detector { return e.byName[e.def] }

func (e *Engines) Names() []string {
	out := make([]string, 0, len(e.byName))
	for n := range e.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Manager keeps the detector chosen by each chat.
type Manager struct {
	def Detector
	m   sync.Map // chatID -> Detector
}

func NewManager(defaultDetector Detector) *Manager {
	return &Manager{def: defaultDetector}
}

func (m *Manager) Get(chatID int64) Detector {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Detector)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, d Detector) {
	m.m.Store(chatID, d)
}
