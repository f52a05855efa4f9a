package ocr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"configuration", ConfigurationMissing("VISION_API_KEY"), KindConfigurationMissing},
		{"transport", TransportFailure(503, "unavailable", nil), KindTransportFailure},
		{"provider", ProviderError(3, "Bad image data."), KindProviderError},
		{"image", ImagePreparationFailure(io.ErrUnexpectedEOF), KindImagePreparationFailure},
		{"wrapped", fmt.Errorf("cycle: %w", ProviderError(7, "denied")), KindProviderError},
		{"foreign", errors.New("configuration_missing"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_Fields(t *testing.T) {
	var e *Error

	require.True(t, errors.As(TransportFailure(500, `{"error":"boom"}`, nil), &e))
	assert.Equal(t, 500, e.Status)
	assert.Equal(t, `{"error":"boom"}`, e.Body)
	assert.Contains(t, e.Error(), "status 500")

	require.True(t, errors.As(ProviderError(3, "Bad image data."), &e))
	assert.Equal(t, 3, e.Code)
	assert.Equal(t, "Bad image data.", e.Message)

	require.True(t, errors.As(ConfigurationMissing("VISION_API_KEY"), &e))
	assert.Equal(t, "configuration_missing: VISION_API_KEY is not set", e.Error())
}

func TestError_Unwrap(t *testing.T) {
	err := TransportFailure(0, "", io.EOF)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "transport_failure: EOF", err.Error())
}

func TestErrorKind_FallsBackToDemo(t *testing.T) {
	assert.True(t, KindConfigurationMissing.FallsBackToDemo())
	assert.True(t, KindTransportFailure.FallsBackToDemo())
	assert.True(t, KindProviderError.FallsBackToDemo())
	assert.False(t, KindImagePreparationFailure.FallsBackToDemo())
}
