package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/logging"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	dt         float64
	steps      uint64
	realTime   bool
	frameRate  int
	sampleN    uint64
	outDir     string
	metricAddr string
	tracked    string
	svgPath    string
)

// main registers the softsim commands and executes the root command.
// It exits with status 1 when the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "softsim",
		Short:         "deformable body simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".softsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene and record it",
		Args:  cobra.NoArgs,
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().Uint64Var(&sampleN, "sample", 10, "record every n-th step")
	runCmd.Flags().StringVar(&outDir, "out", "", "write the final visual meshes as VTK files into this directory")
	runCmd.Flags().StringVar(&metricAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a scene with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&tracked, "track", "", "object whose lowest point is graphed (default: first deformable)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the lowest point of every object over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the xz centroid trajectories as svg")

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [path]",
		Short: "export run metadata as json",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scene presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				cfg := config.GetPreset(p)
				fmt.Printf("  %-12s %d objects, %d interactions, %d controllers\n", p,
					len(cfg.Scene.Objects), len(cfg.Scene.Interactions), len(cfg.Scene.Controllers))
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene config file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "floor-drop", "scene preset when no config file is given")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep (0 uses the scene's)")
	cmd.Flags().Uint64Var(&steps, "steps", config.DefaultSteps, "number of steps (0 runs until stopped)")
	cmd.Flags().BoolVar(&realTime, "real-time", false, "pace steps to wall-clock time")
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "readout frame rate")
}

func newLogger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// loadConfig resolves the scene config from --config or --preset, then
// applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	} else {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("real-time") {
		cfg.RealTime = realTime
	}
	if cmd.Flags().Changed("fps") {
		if frameRate <= 0 {
			return nil, fmt.Errorf("fps must be positive, got %d: %w", frameRate, dynamo.ErrInvalidConfig)
		}
		cfg.FPS = frameRate
	}
	if cfg.FPS <= 0 {
		cfg.FPS = config.DefaultFPS
	}
	return cfg, cfg.Validate()
}
