package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ocr-lens/api/internal/capture"
	"ocr-lens/api/internal/handle"
)

func newDetectCmd() *cobra.Command {
	var (
		engine        string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Run one capture cycle on a local image and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width > 0 {
				cfg.TargetWidth = width
			}
			if height > 0 {
				cfg.TargetHeight = height
			}
			if engine != "" {
				cfg.Engine = engine
			}
			return detectFile(cmd.Context(), args[0], cmd)
		},
	}
	cmd.Flags().StringVarP(&engine, "engine", "e", "", "detector: vision, gemini or demo (default $OCR_ENGINE)")
	cmd.Flags().IntVar(&width, "width", 0, "target width in pixels (default $TARGET_WIDTH)")
	cmd.Flags().IntVar(&height, "height", 0, "target height in pixels (default $TARGET_HEIGHT)")
	return cmd
}

func detectFile(ctx context.Context, path string, cmd *cobra.Command) error {
	engs, err := buildEngines(cfg, logger)
	if err != nil {
		return err
	}
	det, err := engs.GetEngine(cfg.Engine)
	if err != nil {
		return err
	}

	notify := capture.NotifierFunc(func(_ context.Context, n capture.Notice) {
		fmt.Fprintln(cmd.ErrOrStderr(), n.Text())
	})
	sess := capture.NewSession(capture.Config{TargetWidth: cfg.TargetWidth, TargetHeight: cfg.TargetHeight},
		buildPreparer(cfg), notify, logger)

	out, err := sess.Capture(ctx, capture.CameraFunc(func(context.Context) ([]byte, error) {
		return os.ReadFile(path)
	}), det)
	if err != nil {
		return err
	}

	resp := handle.DetectResponse{
		CycleID:       out.CycleID,
		Engine:        out.Engine,
		ExtractedText: out.Result,
		Image:         out.Image,
		Fallback:      out.Fallback,
	}
	if out.Fallback {
		resp.ErrorKind = out.Kind.String()
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
