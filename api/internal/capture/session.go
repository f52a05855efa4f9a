// Package capture runs capture-and-analyze cycles and owns the current result.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ocr-lens/api/internal/imageprep"
	"ocr-lens/api/internal/ocr"
	"ocr-lens/api/internal/ocr/demo"
)

var (
	ErrBusy            = errors.New("capture: a cycle is already running")
	ErrDisplaying      = errors.New("capture: a result is displayed, reset first")
	ErrNothingToReset  = errors.New("capture: no result to reset")
	ErrNothingToToggle = errors.New("capture: no result to toggle")
)

type State int

const (
	Idle State = iota
	Capturing
	Analyzing
	Displaying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Analyzing:
		return "analyzing"
	case Displaying:
		return "displaying"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// View is the display mode of the current result.
type View int

const (
	ViewImage View = iota
	ViewText
)

func (v View) String() string {
	if v == ViewText {
		return "text"
	}
	return "image"
}

// Camera produces the raw bytes of one photo.
type Camera interface {
	TakePhoto(ctx context.Context) ([]byte, error)
}

type CameraFunc func(ctx context.Context) ([]byte, error)

func (f CameraFunc) TakePhoto(ctx context.Context) ([]byte, error) { return f(ctx) }

type Preparer interface {
	Prepare(raw []byte, targetWidth int) (imageprep.Prepared, error)
}

// Outcome is one resolved cycle.
type Outcome struct {
	CycleID  string
	Result   ocr.ExtractedText
	Image    imageprep.Prepared
	Engine   string
	Fallback bool
	// Kind is KindUnknown when real results were produced.
	Kind ocr.ErrorKind
}

type Config struct {
	TargetWidth  int
	TargetHeight int
}

// Session allows one cycle at a time. Its state and result slot change only under mu.
type Session struct {
	cfg    Config
	prep   Preparer
	notify Notifier
	log    zerolog.Logger

	mu         sync.Mutex
	state      State
	view       View
	current    *Outcome
	setupShown bool
}

func NewSession(cfg Config, prep Preparer, notify Notifier, log zerolog.Logger) *Session {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Session{cfg: cfg, prep: prep, notify: notify, log: log}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CanCapture reports whether the capture control is enabled.
func (s *Session) CanCapture() bool { return s.State() == Idle }

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Current returns the displayed outcome, if any.
func (s *Session) Current() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Outcome{}, false
	}
	return *s.current, true
}

// Capture runs one full cycle with det. Detection failures other than image
// preparation end in Displaying with demo content and a nil error. Image
// preparation failures return the session to Idle and are returned.
func (s *Session) Capture(ctx context.Context, cam Camera, det ocr.Detector) (Outcome, error) {
	s.mu.Lock()
	switch s.state {
	case Idle:
	case Displaying:
		s.mu.Unlock()
		return Outcome{}, ErrDisplaying
	default:
		s.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	s.state = Capturing
	s.mu.Unlock()

	id := uuid.NewString()
	log := s.log.With().Str("cycle", id).Str("engine", det.Name()).Logger()
	log.Debug().Msg("capture started")

	raw, err := cam.TakePhoto(ctx)
	if err != nil {
		return s.abort(ctx, log, ocr.ImagePreparationFailure(fmt.Errorf("take photo: %w", err)))
	}
	img, err := s.prep.Prepare(raw, s.cfg.TargetWidth)
	if err != nil {
		if ocr.KindOf(err) != ocr.KindImagePreparationFailure {
			err = ocr.ImagePreparationFailure(err)
		}
		return s.abort(ctx, log, err)
	}

	s.setState(Analyzing)
	out := Outcome{CycleID: id, Image: img, Engine: det.Name()}

	res, err := det.DetectText(ctx, img.Base64, s.cfg.TargetWidth, s.cfg.TargetHeight)
	if err != nil {
		kind := ocr.KindOf(err)
		if kind == ocr.KindUnknown {
			err = ocr.TransportFailure(0, "", err)
			kind = ocr.KindTransportFailure
		}
		if !kind.FallsBackToDemo() {
			return s.abort(ctx, log, err)
		}
		log.Warn().Err(err).Str("kind", kind.String()).Msg("detection failed, showing demo result")
		s.notifyFailure(ctx, kind, err)
		res = demo.Result(s.cfg.TargetWidth, s.cfg.TargetHeight)
		out.Fallback = true
		out.Kind = kind
	}
	out.Result = res

	s.mu.Lock()
	s.state = Displaying
	s.view = ViewImage
	s.current = &out
	s.mu.Unlock()

	log.Info().Int("words", len(res.Words)).Bool("fallback", out.Fallback).Msg("capture displayed")
	return out, nil
}

// Reset discards the displayed result and the captured image.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Displaying {
		return ErrNothingToReset
	}
	s.state = Idle
	s.view = ViewImage
	s.current = nil
	return nil
}

// ToggleView flips the displayed result between image and text view.
func (s *Session) ToggleView() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Displaying {
		return s.view, ErrNothingToToggle
	}
	if s.view == ViewImage {
		s.view = ViewText
	} else {
		s.view = ViewImage
	}
	return s.view, nil
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) abort(ctx context.Context, log zerolog.Logger, err error) (Outcome, error) {
	log.Warn().Err(err).Msg("capture aborted")
	s.notify.Notify(ctx, Notice{Kind: NoticeGenericError, Err: err})
	s.setState(Idle)
	return Outcome{}, err
}

// notifyFailure sends setup guidance once per session for missing configuration,
// the generic error notice for everything else.
func (s *Session) notifyFailure(ctx context.Context, kind ocr.ErrorKind, err error) {
	if kind == ocr.KindConfigurationMissing {
		s.mu.Lock()
		first := !s.setupShown
		s.setupShown = true
		s.mu.Unlock()
		if first {
			s.notify.Notify(ctx, Notice{Kind: NoticeSetupGuidance, Err: err})
		}
		return
	}
	s.notify.Notify(ctx, Notice{Kind: NoticeGenericError, Err: err})
}
