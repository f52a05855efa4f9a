package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "VISION_API_KEY", "VISION_ENDPOINT", "VISION_MAX_RESULTS", "GEMINI_API_KEY", "GEMINI_MODEL",
	"OCR_ENGINE", "TARGET_WIDTH", "TARGET_HEIGHT", "JPEG_QUALITY", "IMAGE_ENHANCE", "TELEGRAM_BOT_TOKEN", "WEBHOOK_URL",
	"LOG_LEVEL", "LOG_FORMAT", "HTTP_TIMEOUT",
}

// clearEnv blanks every key for the test. Empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Empty(t, cfg.VisionAPIKey)
	assert.Equal(t, "https://vision.googleapis.com/", cfg.VisionEndpoint)
	assert.Equal(t, int64(100), cfg.VisionMaxResults)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, "vision", cfg.Engine)
	assert.Equal(t, 1080, cfg.TargetWidth)
	assert.Equal(t, 1920, cfg.TargetHeight)
	assert.Equal(t, 70, cfg.JPEGQuality)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.WebhookURL)
	assert.False(t, cfg.ImageEnhance)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("VISION_API_KEY", " key-123 ")
	t.Setenv("OCR_ENGINE", "Gemini")
	t.Setenv("TARGET_WIDTH", "720")
	t.Setenv("HTTP_TIMEOUT", "15s")
	t.Setenv("IMAGE_ENHANCE", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "key-123", cfg.VisionAPIKey)
	assert.Equal(t, "gemini", cfg.Engine)
	assert.Equal(t, 720, cfg.TargetWidth)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.ImageEnhance)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv only fills unset variables, so drop the blank ones set above.
	require.NoError(t, os.Unsetenv("VISION_API_KEY"))
	require.NoError(t, os.Unsetenv("PORT"))
	t.Cleanup(func() {
		_ = os.Unsetenv("VISION_API_KEY")
		_ = os.Unsetenv("PORT")
	})

	f := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(f, []byte("VISION_API_KEY=from-file\nPORT=9090\n"), 0o600))

	cfg, err := Load(f)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.VisionAPIKey)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct{ key, val string }{
		{"TARGET_WIDTH", "wide"},
		{"TARGET_HEIGHT", "-1"},
		{"JPEG_QUALITY", "120"},
		{"VISION_MAX_RESULTS", "0"},
		{"HTTP_TIMEOUT", "soon"},
		{"IMAGE_ENHANCE", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
