// Package util decodes base64 image payloads posted by clients and engines.
package util

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrEmptyImage = errors.New("empty image payload")

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// splitDataURL separates "data:<mime>[;base64],<payload>" into mime and payload.
// Plain base64 comes back unchanged with an empty mime.
func splitDataURL(s string) (mime, payload string) {
	s = strings.TrimSpace(s)
	head, rest, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(strings.ToLower(head), "data:") {
		return "", s
	}
	mime, _, _ = strings.Cut(head[len("data:"):], ";")
	return strings.TrimSpace(mime), rest
}

// DecodeImage decodes a base64 image, with or without a data URL prefix, and
// reports its MIME type. The prefix wins over content sniffing.
func DecodeImage(s string) ([]byte, string, error) {
	mime, payload := splitDataURL(s)
	if payload == "" {
		return nil, "", ErrEmptyImage
	}

	var firstErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(payload)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(b) == 0 {
			return nil, "", ErrEmptyImage
		}
		if mime == "" {
			mime = http.DetectContentType(b)
		}
		return b, mime, nil
	}
	return nil, "", fmt.Errorf("bad base64: %w", firstErr)
}
