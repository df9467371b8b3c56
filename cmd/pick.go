package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ytpicker/config"
	"ytpicker/internal/client"
	"ytpicker/internal/terminal"
	"ytpicker/internal/workflow"
	"ytpicker/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var pickCmd = &cobra.Command{
	Use:   "pick [url]",
	Short: "pick a quality and download from a terminal",
	Long:  "Fetch the qualities of a video from the picker server, choose one and download it.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cmd.Flags().Changed("server") {
			cfg.Client.BaseURL, _ = cmd.Flags().GetString("server")
		}
		if cmd.Flags().Changed("output") {
			cfg.Client.OutputDir, _ = cmd.Flags().GetString("output")
		}

		// the terminal belongs to the picker, so logs only go to the file
		cfg.Logging.Console = false
		if err := logger.Init(&cfg.Logging); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		initial := ""
		if len(args) == 1 {
			initial = args[0]
		}
		return runPicker(ctx, cfg.Client.BaseURL, cfg.Client.OutputDir,
			time.Duration(cfg.Client.FetchTimeout)*time.Second,
			time.Duration(cfg.Client.AlertSeconds)*time.Second,
			initial)
	},
}

func init() {
	pickCmd.Flags().String("server", "", "picker server base URL (overrides CLIENT_BASE_URL)")
	pickCmd.Flags().String("output", "", "directory for downloaded files (overrides CLIENT_OUTPUT_DIR)")
	rootCmd.AddCommand(pickCmd)
}

func runPicker(ctx context.Context, baseURL, outputDir string, fetchTimeout, alertDelay time.Duration, initial string) error {
	cl, err := client.New(baseURL, outputDir)
	if err != nil {
		return err
	}

	loop := workflow.NewLoop(64)
	view := terminal.NewView(os.Stdout)

	cl.SetProgressFunc(func(written, total int64) {
		loop.Post(func() { view.ShowProgress(written, total) })
	})

	ctrl := workflow.New(view, cl, loop,
		workflow.WithSubmitter(cl),
		workflow.WithFetchTimeout(fetchTimeout),
		workflow.WithAlertDelay(alertDelay),
	)
	defer ctrl.Close()

	logger.Logger.Info("Picker started", zap.String("server", baseURL), zap.String("output_dir", outputDir))

	session := terminal.NewSession(ctrl, view, loop, loop.Stop)
	view.ShowHelp()
	if initial != "" {
		loop.Post(func() { session.Handle(initial) })
	}
	go func() {
		if err := session.ReadCommands(os.Stdin); err != nil {
			logger.Logger.Error("Failed to read commands", zap.Error(err))
		}
	}()

	if err := loop.Run(ctx); err != nil {
		logger.Logger.Info("Picker interrupted", zap.Error(err))
		return nil
	}
	logger.Logger.Info("Picker stopped")
	return nil
}
