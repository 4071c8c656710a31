// Package main provides the CLI entrypoint for duckpunch.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/duckpunch/internal/app"
	"github.com/ayusman/duckpunch/internal/calibration"
	"github.com/ayusman/duckpunch/internal/config"
	"github.com/ayusman/duckpunch/internal/game"
	"github.com/ayusman/duckpunch/internal/tray"
)

var (
	configPath string

	cameraSource string
	cameraWidth  int
	cameraHeight int
	cameraMirror bool
	scriptPath   string
	pythonPath   string

	playDuration  time.Duration
	playProximity float64
	playSound     string
	playVolume    float64
	playMute      bool
	playTray      bool

	calibrateLive bool
	calibratePlot string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.Defaults()

	rootCmd := &cobra.Command{
		Use:           "duckpunch",
		Short:         "Punch the duck with your hand in front of the webcam",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPlayCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default: "+config.DefaultConfigPath()+")")
	pf.StringVar(&cameraSource, "camera", defaults.CameraSource, "camera index or video file")
	pf.IntVar(&cameraWidth, "width", defaults.Width, "capture width")
	pf.IntVar(&cameraHeight, "height", defaults.Height, "capture height")
	pf.BoolVar(&cameraMirror, "mirror", false, "flip frames horizontally")
	pf.StringVar(&scriptPath, "script", "", "path to the hand tracking service script")
	pf.StringVar(&pythonPath, "python", "", "python interpreter for the hand tracking service")

	rootCmd.Flags().DurationVar(&playDuration, "duration", defaults.Duration, "length of a session")
	rootCmd.Flags().Float64Var(&playProximity, "proximity", defaults.ProximityCM, "hand must be closer than this many cm to strike")
	rootCmd.Flags().StringVar(&playSound, "sound", "", "mp3 or wav played on a strike (default: built-in chime)")
	rootCmd.Flags().Float64Var(&playVolume, "volume", defaults.Volume, "sound volume (0-1)")
	rootCmd.Flags().BoolVar(&playMute, "mute", false, "disable sound")
	rootCmd.Flags().BoolVar(&playTray, "tray", false, "show restart and quit in the system tray")

	rootCmd.AddCommand(newCalibrateCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	a, err := app.NewFromSettings(settings)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Printf("Error releasing resources: %v", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !playTray {
		return a.Run(ctx)
	}

	// systray owns the main goroutine until Stop.
	tr := tray.New()
	a.AddCommandSource(tr)
	a.OnFrame(func(f game.Frame) { tr.SetScore(f.Session.Score) })

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
		tr.Stop()
	}()
	tr.Run()
	return <-errCh
}

func newCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Print the fitted distance model, or measure a hand live",
		Args:  cobra.NoArgs,
		RunE:  runCalibrateCmd,
	}
	cmd.Flags().BoolVar(&calibrateLive, "live", false, "open the camera and show the knuckle span and estimate")
	cmd.Flags().StringVar(&calibratePlot, "plot", "", "write the samples and fitted curve to this image (png, svg or pdf)")
	return cmd
}

func runCalibrateCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	est, err := calibration.NewEstimator(settings.Calibration)
	if err != nil {
		return err
	}
	printCalibration(cmd, settings.Calibration, est.Model())

	if calibratePlot != "" {
		if err := calibration.Plot(settings.Calibration, est.Model(), calibratePlot); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nplot written to %s\n", calibratePlot)
	}

	if !calibrateLive {
		return nil
	}

	a, err := app.NewFromSettings(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	last := -1.0
	return a.Measure(ctx, func(m app.Measurement) {
		if m.Raw != last {
			last = m.Raw
			fmt.Fprintf(cmd.OutOrStdout(), "raw %4.0f px  ->  %6.1f cm\n", m.Raw, m.CM)
		}
	})
}

func printCalibration(cmd *cobra.Command, table calibration.Table, model calibration.Model) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, model)
	if model.A > 0 {
		fmt.Fprintf(out, "decreasing up to raw %.1f px\n", model.Vertex())
	}
	fmt.Fprintf(out, "\n%8s %8s %10s %8s\n", "raw px", "cm", "estimate", "error")
	for _, s := range table {
		est := model.Estimate(s.Raw)
		fmt.Fprintf(out, "%8.0f %8.1f %10.2f %+8.2f\n", s.Raw, s.CM, est, est-s.CM)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := resolveConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return errors.New("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// loadSettings layers defaults, the config file and explicitly set flags,
// in that order.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings := config.Defaults()

	fileCfg, err := config.LoadConfig(resolveConfigPath())
	if err != nil {
		return settings, fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg.Apply(&settings)

	overrideString(cmd, "camera", &settings.CameraSource, cameraSource)
	overrideInt(cmd, "width", &settings.Width, cameraWidth)
	overrideInt(cmd, "height", &settings.Height, cameraHeight)
	overrideBool(cmd, "mirror", &settings.Mirror, cameraMirror)
	overrideString(cmd, "script", &settings.DetectorScript, scriptPath)
	overrideString(cmd, "python", &settings.Python, pythonPath)

	overrideDuration(cmd, "duration", &settings.Duration, playDuration)
	overrideFloat(cmd, "proximity", &settings.ProximityCM, playProximity)
	overrideString(cmd, "sound", &settings.Sound, playSound)
	overrideFloat(cmd, "volume", &settings.Volume, playVolume)
	if changed(cmd, "mute") {
		settings.AudioEnabled = !playMute
	}

	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

func overrideString(cmd *cobra.Command, name string, target *string, value string) {
	if changed(cmd, name) {
		*target = value
	}
}

func overrideInt(cmd *cobra.Command, name string, target *int, value int) {
	if changed(cmd, name) {
		*target = value
	}
}

func overrideFloat(cmd *cobra.Command, name string, target *float64, value float64) {
	if changed(cmd, name) {
		*target = value
	}
}

func overrideBool(cmd *cobra.Command, name string, target *bool, value bool) {
	if changed(cmd, name) {
		*target = value
	}
}

func overrideDuration(cmd *cobra.Command, name string, target *time.Duration, value time.Duration) {
	if changed(cmd, name) {
		*target = value
	}
}
