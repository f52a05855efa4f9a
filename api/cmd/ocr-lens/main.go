package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ocr-lens/api/internal/config"
	"ocr-lens/api/internal/imageprep"
	"ocr-lens/api/internal/logging"
	"ocr-lens/api/internal/ocr"
	"ocr-lens/api/internal/ocr/demo"
	"ocr-lens/api/internal/ocr/gemini"
	"ocr-lens/api/internal/ocr/vision"
)

var (
	envFile   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "ocr-lens",
	Short:         "Detect text in photos and return word boxes",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if envFile != "" {
			cfg, err = config.Load(envFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		logger = logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "dotenv file to load (default .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console or json")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newDetectCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildEngines registers every detector. Missing credentials are not an error
// here: the detectors report them per request.
func buildEngines(cfg *config.Config, log zerolog.Logger) (*ocr.Engines, error) {
	v := vision.New(vision.Config{
		APIKey:     cfg.VisionAPIKey,
		Endpoint:   cfg.VisionEndpoint,
		MaxResults: cfg.VisionMaxResults,
		Timeout:    cfg.HTTPTimeout,
	}, log)
	g := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, log)
	return ocr.NewEngines(cfg.Engine, v, g, demo.Engine{})
}

func buildPreparer(cfg *config.Config) *imageprep.Preparer {
	p := imageprep.New(cfg.JPEGQuality)
	p.Enhance = cfg.ImageEnhance
	return p
}
