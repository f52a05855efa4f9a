package ocr

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a detection cycle did not produce real results.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConfigurationMissing
	KindTransportFailure
	KindProviderError
	KindImagePreparationFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfigurationMissing:
		return "configuration_missing"
	case KindTransportFailure:
		return "transport_failure"
	case KindProviderError:
		return "provider_error"
	case KindImagePreparationFailure:
		return "image_preparation_failure"
	default:
		return "unknown"
	}
}

// FallsBackToDemo reports whether a failure of this kind is answered with demo content.
// Image preparation failures end the cycle instead.
func (k ErrorKind) FallsBackToDemo() bool {
	return k != KindImagePreparationFailure
}

// Error is the single error type returned by detectors and the image preparer.
// Only the fields relevant to Kind are set.
type Error struct {
	Kind ErrorKind

	// ConfigurationMissing
	Setting string

	// TransportFailure; Status is 0 when no HTTP response was received.
	Status int
	Body   string

	// ProviderError
	Code    int
	Message string

	Err error
}

func (e *Error) Error() string {
	var s string
	switch e.Kind {
	case KindConfigurationMissing:
		s = fmt.Sprintf("%s: %s is not set", e.Kind, e.Setting)
	case KindTransportFailure:
		if e.Status != 0 {
			s = fmt.Sprintf("%s: status %d: %s", e.Kind, e.Status, e.Body)
		} else {
			s = e.Kind.String()
		}
	case KindProviderError:
		s = fmt.Sprintf("%s: code %d: %s", e.Kind, e.Code, e.Message)
	default:
		s = e.Kind.String()
	}
	if e.Err != nil {
		return s + ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

func ConfigurationMissing(setting string) *Error {
	return &Error{Kind: KindConfigurationMissing, Setting: setting}
}

func TransportFailure(status int, body string, err error) *Error {
	return &Error{Kind: KindTransportFailure, Status: status, Body: body, Err: err}
}

func ProviderError(code int, message string) *Error {
	return &Error{Kind: KindProviderError, Code: code, Message: message}
}

func ImagePreparationFailure(err error) *Error {
	return &Error{Kind: KindImagePreparationFailure, Err: err}
}

// KindOf returns the kind carried by err, or KindUnknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
