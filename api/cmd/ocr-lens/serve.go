package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ocr-lens/api/internal/capture"
	"ocr-lens/api/internal/handle"
	"ocr-lens/api/internal/httpserver"
	"ocr-lens/api/internal/telegram"
)

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when TELEGRAM_BOT_TOKEN is set, the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default $PORT or 8000)")
	return cmd
}

func serve(ctx context.Context) error {
	engs, err := buildEngines(cfg, logger)
	if err != nil {
		return err
	}
	prep := buildPreparer(cfg)
	logger.Info().
		Str("default_engine", engs.Default().Name()).
		Strs("engines", engs.Names()).
		Bool("vision_configured", cfg.VisionAPIKey != "").
		Msg("engines ready")

	h := handle.New(engs, prep, handle.Defaults{TargetWidth: cfg.TargetWidth, TargetHeight: cfg.TargetHeight}, logger)

	var bot *tgbotapi.BotAPI
	if cfg.TelegramBotToken != "" {
		if bot, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken); err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
	} else {
		logger.Info().Msg("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	g, ctx := errgroup.WithContext(ctx)

	var (
		routes []httpserver.Route
		r      *telegram.Router
	)
	if bot != nil {
		r = telegram.NewRouter(bot, engs, prep,
			capture.Config{TargetWidth: cfg.TargetWidth, TargetHeight: cfg.TargetHeight}, logger)
		if cfg.WebhookURL != "" {
			public, err := telegram.RegisterWebhook(bot, cfg.WebhookURL, cfg.TelegramBotToken)
			if err != nil {
				return err
			}
			routes = append(routes, httpserver.Route{
				Method:  http.MethodPost,
				Pattern: telegram.WebhookPath(cfg.TelegramBotToken),
				Handler: r.WebhookHandler(ctx),
			})
			logger.Info().Str("bot", bot.Self.UserName).Str("url", public).Msg("telegram webhook")
		} else {
			// polling needs the webhook cleared
			if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
				logger.Warn().Err(err).Msg("delete webhook")
			}
			g.Go(func() error {
				logger.Info().Str("bot", bot.Self.UserName).Msg("telegram polling")
				telegram.Poll(ctx, bot, logger, r.HandleUpdate)
				return nil
			})
		}
	}

	g.Go(func() error {
		return httpserver.Serve(ctx, "0.0.0.0:"+cfg.Port, httpserver.NewRouter(h, logger, routes...), logger)
	})

	err = g.Wait()
	if r != nil {
		// photo cycles started by either mode run on their own goroutines
		r.Wait()
	}
	return err
}
