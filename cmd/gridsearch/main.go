package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/logging"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFormat  string
	logFile    string
	// graph and search overrides
	gridW       int
	gridH       int
	tileSize    int
	rate        int
	algorithm   string
	neighbours  string
	seed        int64
	fixedOrder  bool
	theme       string
	joinTimeout int
)

// main launches the interactive TUI when no subcommand is provided and exits
// with status 1 if the command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gridsearch",
		Short:         "animate grid traversal algorithms in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".gridsearch", "data directory for saved runs")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")
	pf.IntVar(&gridW, "width", config.DefaultGridSize, "grid width in cells")
	pf.IntVar(&gridH, "height", config.DefaultGridSize, "grid height in cells")
	pf.IntVar(&tileSize, "tile", config.DefaultTileSize, "tile size in pixels (svg and gif output)")
	pf.IntVar(&rate, "rate", config.DefaultStepsPerSecond, "playback steps per second")
	pf.StringVar(&algorithm, "algorithm", config.DefaultAlgorithm, "traversal algorithm (dfs, bfs)")
	pf.StringVar(&neighbours, "neighbours", config.DefaultNeighbours, "neighbour policy (cross, square)")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	pf.BoolVar(&fixedOrder, "fixed-order", false, "expand neighbours in a fixed order")
	pf.StringVar(&theme, "theme", "classic", "colour theme")
	pf.IntVar(&joinTimeout, "join-timeout", config.DefaultJoinTimeoutMs, "milliseconds to wait for a cancelled search")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal playback",
		RunE:  runTUI,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "headless playback, optionally driven by a script",
		RunE:  runHeadless,
	}
	runCmd.Flags().StringVar(&scriptFile, "script", "", "playback script (yaml)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&showGrid, "show", false, "print the final colouring")

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "compute a full traversal and print the visit order",
		RunE:  printTrace,
	}
	traceCmd.Flags().StringVar(&traceFormat, "format", "text", "output format (text, json, grid)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot playback progress of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the final colouring of a saved run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().BoolVar(&svgPath, "path", false, "draw the visit order instead of the colouring")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	compareCmd := &cobra.Command{
		Use:   "compare [algorithm1] [algorithm2] ...",
		Short: "compare traversal algorithms over many seeds",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareAlgorithms,
	}
	compareCmd.Flags().IntVar(&compareRuns, "runs", 20, "traversals per algorithm")
	compareCmd.Flags().IntVar(&compareParallel, "parallel", 0, "concurrent traversals (0 uses all cores)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective config to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(tuiCmd, runCmd, traceCmd, listCmd, plotCmd, exportSVGCmd, exportJSONCmd, compareCmd, presetsCmd, configCmd)
	return rootCmd
}

// loadConfig applies defaults, then the preset, then the config file, then any
// flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Graph.GridSize.X = gridW
	}
	if flags.Changed("height") {
		cfg.Graph.GridSize.Y = gridH
	}
	if flags.Changed("tile") {
		cfg.Graph.TileSize = config.Size{X: tileSize, Y: tileSize}
	}
	if flags.Changed("rate") {
		cfg.Graph.StepsPerSecond = rate
	}
	if flags.Changed("algorithm") {
		cfg.Search.Algorithm = algorithm
	}
	if flags.Changed("neighbours") {
		cfg.Search.Neighbours = neighbours
	}
	if flags.Changed("seed") {
		cfg.Search.Seed = seed
	}
	if flags.Changed("fixed-order") {
		cfg.Search.Randomise = !fixedOrder
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("join-timeout") {
		cfg.Session.JoinTimeoutMs = joinTimeout
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging installs the global handler. With no log file, interactive
// commands discard logs so the alternate screen stays clean.
func setupLogging(cfg *config.Config, interactive bool) (func(), error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	closer := func() {}
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closer = func() { _ = f.Close() }
	case interactive:
		w = io.Discard
	}

	logging.Init(level, cfg.Log.Format, w)
	slog.Debug("logging configured", "level", level.String(), "format", cfg.Log.Format)
	return closer, nil
}
