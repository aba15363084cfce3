package main

import (
	"context"
	"fmt"
	"image"
	"os"

	"cv-analyser/internal/config"
	"cv-analyser/internal/logger"
	"cv-analyser/internal/opencv/memory"
	"cv-analyser/internal/pipeline"
	"cv-analyser/internal/prompt"
	"cv-analyser/internal/render"
	"cv-analyser/internal/session"
	"cv-analyser/internal/shutdown"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	AppName = "cv-analyser"
	AppID   = "com.imageprocessing.cv-analyser"
)

// CLI flags
var (
	configFlag   string
	logLevelFlag string
	outputFlag   string
	previewFlag  string
)

// rootCmd is the main Cobra command for the cv-analyser CLI.
var rootCmd = &cobra.Command{
	Use:   "cv-analyser [image]",
	Short: "Interactive image analysis: denoise, gradients, edges and histograms",
	Long: `cv-analyser loads an image and offers a menu of analysis operations.
Every result can be previewed side by side in color and grayscale, saved
as JPEG below the output directory and then kept as the working image.

Examples:
  cv-analyser
  cv-analyser photos/lena.png
  cv-analyser --preview none --output results lena.png
  cv-analyser init-config`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runMain,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a configuration file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configFlag); err == nil {
			return fmt.Errorf("%s already exists", configFlag)
		}
		if err := config.CreateDefaultConfigFile(configFlag); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configFlag)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", config.DefaultPath, "Configuration file (missing file means defaults)")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level override: debug, info, warn, error")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output root directory override")
	rootCmd.Flags().StringVar(&previewFlag, "preview", "", "Preview backend override: highgui, fyne or none")
	rootCmd.AddCommand(initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain wires the session from configuration and runs it until the user
// exits, input closes or a signal arrives.
func runMain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log := logger.NewConsoleLogger(level).With("session", uuid.NewString())

	histogramMode, err := cfg.HistogramMode()
	if err != nil {
		return err
	}

	memManager := memory.NewManager()
	codec := pipeline.NewCodec(memManager, log)
	prompter := prompt.New(os.Stdin, os.Stdout, cfg.Prompt.MaxAttempts, log)
	limit := image.Pt(cfg.Preview.MaxWidth, cfg.Preview.MaxHeight)

	var fyneApp fyne.App
	var renderer render.Renderer
	switch cfg.Preview.Backend {
	case config.BackendFyne:
		fyneApp = app.NewWithID(AppID)
		renderer = render.NewFyne(fyneApp, limit, log)
	case config.BackendNone:
		renderer = render.NewNone(log)
	default:
		renderer = render.NewHighGUI(limit, log)
	}

	controller := session.NewController(prompter, codec, renderer, session.Options{
		OutputDir:              cfg.Output.Directory,
		Edges:                  cfg.EdgeThresholds(),
		HistogramMode:          histogramMode,
		DenoiseBeforeHistogram: cfg.Histogram.DenoiseFirst,
		Memory:                 memManager,
	}, log)

	shutdownManager := shutdown.NewManager(log)
	shutdownManager.Register(codec)
	shutdownManager.Register(shutdown.Func(func() {
		if err := renderer.Close(); err != nil {
			log.Error("Main", err, nil)
		}
	}))
	shutdownManager.Register(controller)
	shutdownManager.Listen()
	defer shutdownManager.Shutdown()

	log.Info("Main", "session starting", map[string]interface{}{
		"config":  configFlag,
		"output":  cfg.Output.Directory,
		"preview": cfg.Preview.Backend,
	})

	run := func(ctx context.Context) error {
		if len(args) == 1 {
			if err := controller.Preload(args[0]); err != nil {
				prompter.Error(err)
			}
		}
		return controller.Run(ctx)
	}

	if fyneApp == nil {
		return run(shutdownManager.Context())
	}
	return runWithFyne(fyneApp, renderer, shutdownManager.Context(), run)
}

// runWithFyne keeps the fyne event loop on the main goroutine and runs the
// session beside it. Closing the renderer quits the loop.
func runWithFyne(a fyne.App, renderer render.Renderer, ctx context.Context, run func(context.Context) error) error {
	master := a.NewWindow(AppName)
	master.SetContent(widget.NewLabel("Session running in the terminal. Previews open here."))
	master.SetCloseIntercept(master.Hide)
	master.Show()

	errc := make(chan error, 1)
	go func() {
		errc <- run(ctx)
		_ = renderer.Close()
	}()

	a.Run()
	return <-errc
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if outputFlag != "" {
		cfg.Output.Directory = outputFlag
	}
	if previewFlag != "" {
		cfg.Preview.Backend = previewFlag
	}
	return cfg, cfg.Validate()
}
