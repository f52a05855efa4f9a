package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	VisionAPIKey     string
	VisionEndpoint   string
	VisionMaxResults int64

	GeminiAPIKey string
	GeminiModel  string

	// Engine is the detector used when a caller does not pick one.
	Engine string

	TargetWidth  int
	TargetHeight int
	JPEGQuality  int
	ImageEnhance bool

	TelegramBotToken string
	// WebhookURL switches the bot from long polling to webhook mode.
	WebhookURL string

	LogLevel  string
	LogFormat string

	HTTPTimeout time.Duration
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive integer, got %q", k, v)
	}
	return n, nil
}

func getBool(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean, got %q", k, v)
	}
	return b, nil
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive duration, got %q", k, v)
	}
	return d, nil
}

// Load reads the environment, after merging values from the given .env files
// (".env" when none are given). Missing files are ignored and variables already
// set in the process win. Credentials may be empty: engines report that themselves.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port: getEnv("PORT", "8000"),

		VisionAPIKey:   strings.TrimSpace(os.Getenv("VISION_API_KEY")),
		VisionEndpoint: getEnv("VISION_ENDPOINT", "https://vision.googleapis.com/"),

		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		Engine: strings.ToLower(getEnv("OCR_ENGINE", "vision")),

		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		WebhookURL:       strings.TrimSpace(os.Getenv("WEBHOOK_URL")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	maxResults, err := getInt("VISION_MAX_RESULTS", 100)
	if err != nil {
		return nil, err
	}
	cfg.VisionMaxResults = int64(maxResults)
	if cfg.TargetWidth, err = getInt("TARGET_WIDTH", 1080); err != nil {
		return nil, err
	}
	if cfg.TargetHeight, err = getInt("TARGET_HEIGHT", 1920); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality, err = getInt("JPEG_QUALITY", 70); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("config: JPEG_QUALITY must be at most 100, got %d", cfg.JPEGQuality)
	}
	if cfg.ImageEnhance, err = getBool("IMAGE_ENHANCE", false); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	return cfg, nil
}
