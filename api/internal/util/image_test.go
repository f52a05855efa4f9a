package util

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func TestDecodeImage(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}

	tests := []struct {
		name     string
		in       string
		wantData []byte
		wantMIME string
	}{
		{"data url", "data:image/webp;base64," + base64.StdEncoding.EncodeToString(jpeg), jpeg, "image/webp"},
		{"upper case prefix", "DATA:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader), pngHeader, "image/png"},
		{"plain sniffed", " " + base64.StdEncoding.EncodeToString(pngHeader) + "\n", pngHeader, "image/png"},
		{"url safe", base64.URLEncoding.EncodeToString(jpeg), jpeg, "image/jpeg"},
		{"unpadded", base64.RawStdEncoding.EncodeToString(jpeg), jpeg, "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, mime, err := DecodeImage(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, b)
			assert.Equal(t, tt.wantMIME, mime)
		})
	}
}

func TestDecodeImage_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "data:image/png;base64,"} {
		_, _, err := DecodeImage(in)
		assert.ErrorIs(t, err, ErrEmptyImage, in)
	}
}

func TestDecodeImage_BadBase64(t *testing.T) {
	_, _, err := DecodeImage("%%%")
	require.Error(t, err)
	assert.ErrorContains(t, err, "bad base64")
	assert.NotErrorIs(t, err, ErrEmptyImage)
}
