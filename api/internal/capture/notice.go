package capture

import (
	"context"
	"errors"

	"ocr-lens/api/internal/ocr"
)

type NoticeKind int

const (
	NoticeGenericError NoticeKind = iota
	NoticeSetupGuidance
)

// Notice is a user-facing message raised during a cycle.
type Notice struct {
	Kind NoticeKind
	Err  error
}

const (
	setupGuidanceText = "Text detection is not configured yet. Set VISION_API_KEY to your Google Cloud Vision API key. " +
		"Showing demo results for now."
	genericErrorText = "Could not analyze the photo. Please try again."
	demoSuffix       = " Showing demo results."
)

// Text renders the message shown to the user.
func (n Notice) Text() string {
	if n.Kind == NoticeSetupGuidance {
		var oe *ocr.Error
		if errors.As(n.Err, &oe) && oe.Setting != "" && oe.Setting != "VISION_API_KEY" {
			return "Text detection is not configured yet. Set " + oe.Setting + ". Showing demo results for now."
		}
		return setupGuidanceText
	}
	if ocr.KindOf(n.Err).FallsBackToDemo() && ocr.KindOf(n.Err) != ocr.KindUnknown {
		return genericErrorText + demoSuffix
	}
	return genericErrorText
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notice) {}
