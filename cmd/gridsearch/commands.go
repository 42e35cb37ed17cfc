package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gridsearch/internal/automation"
	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/ensemble"
	"github.com/san-kum/gridsearch/internal/export"
	"github.com/san-kum/gridsearch/internal/grid"
	"github.com/san-kum/gridsearch/internal/logging"
	"github.com/san-kum/gridsearch/internal/playback"
	"github.com/san-kum/gridsearch/internal/search"
	"github.com/san-kum/gridsearch/internal/session"
	"github.com/san-kum/gridsearch/internal/storage"
	"github.com/san-kum/gridsearch/internal/trace"
	"github.com/san-kum/gridsearch/internal/viz"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	scriptFile  string
	noSave      bool
	showGrid    bool
	traceFormat string
	outFile     string
	svgPath     bool

	compareRuns     int
	compareParallel int
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logging.New("tui")
	canvas := viz.NewCanvas(cfg.Graph)
	sess, err := session.New(ctx, cfg, canvas, session.Options{Logger: logging.New("session")})
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn("worker abandoned on exit", "error", err)
		}
	}()

	return viz.Run(viz.NewModel(sess, canvas, viz.GetTheme(cfg.Theme), log))
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	script := automation.PlayToEnd()
	if scriptFile != "" {
		if script, err = automation.LoadScript(scriptFile); err != nil {
			return err
		}
	}
	if cfg.Search.Seed == 0 {
		cfg.Search.Seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	graph := cfg.Graph
	if script.Graph != nil {
		graph = *script.Graph
	}
	canvas := viz.NewCanvas(graph)

	fmt.Printf("running %s playback (%s)...\n", cfg.Search.Algorithm, script.Name)
	start := time.Now()
	report, err := automation.Run(ctx, cfg, canvas, script, session.Options{
		Rand:   rand.New(rand.NewSource(cfg.Search.Seed)),
		Logger: logging.New("session"),
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("ticks: %d\n", report.Ticks)
	fmt.Printf("cursor: %d / %d (complete=%v)\n", report.Final.Cursor, report.Final.Len, report.Final.Complete)
	fmt.Printf("start: %s\n", report.Final.Start)
	if report.Final.Hangs > 0 {
		fmt.Printf("abandoned workers: %d\n", report.Final.Hangs)
	}
	if len(report.Samples) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(cursorSeries(report.Samples), asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("cursor vs tick")))
	}
	if showGrid {
		fmt.Println()
		fmt.Print(canvas.String())
	}
	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(&storage.Run{
		Meta: storage.RunMetadata{
			Script:     script.Name,
			Algorithm:  report.Final.Algorithm,
			Neighbours: cfg.Search.Neighbours,
			Seed:       cfg.Search.Seed,
			Graph:      report.Final.Config,
			Start:      report.Final.Start,
			Ticks:      report.Ticks,
			TraceLen:   report.Final.Len,
			Cursor:     report.Final.Cursor,
			Complete:   report.Final.Complete,
			Hangs:      report.Final.Hangs,
		},
		Trace:   report.Trace,
		Samples: report.Samples,
	})
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func cursorSeries(samples []automation.Sample) []float64 {
	data := make([]float64, len(samples))
	for i, s := range samples {
		data[i] = float64(s.Cursor)
	}
	return data
}

func printTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	popts, err := session.PlaybackOptions(cfg, nil, nil)
	if err != nil {
		return err
	}
	g, err := grid.New(cfg.Graph.GridSize.X, cfg.Graph.GridSize.Y)
	if err != nil {
		return err
	}
	var policyRand *rand.Rand
	if popts.Randomise {
		policyRand = rand.New(rand.NewSource(popts.Rand.Int63()))
	}
	start := grid.RandomEdgePoint(popts.Rand, g)
	policy := grid.NewNeighbourPolicy(popts.Adjacency, policyRand)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := trace.Start(ctx, popts.Algorithm, g, start, policy, logging.New("trace"))
	if err := w.Wait(ctx); err != nil {
		_ = w.CancelAndJoin(popts.JoinTimeout)
		return err
	}
	cells, _ := w.Snapshot()

	switch traceFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Algorithm string            `json:"algorithm"`
			Start     grid.Coordinate   `json:"start"`
			Cells     []grid.Coordinate `json:"cells"`
		}{w.Algorithm(), start, cells})
	case "grid":
		canvas := viz.NewCanvas(cfg.Graph)
		paint(canvas, cells, len(cells))
		fmt.Print(canvas.String())
		return nil
	case "text":
		fmt.Printf("# %s from %s, %d cells\n", w.Algorithm(), start, len(cells))
		for i, c := range cells {
			fmt.Printf("%d\t%d\t%d\n", i, c.X, c.Y)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s (text, json, grid)", traceFormat)
}

// paint applies the colouring a controller shows at cursor.
func paint(sink playback.RenderSink, cells []grid.Coordinate, cursor int) {
	sink.ClearAll()
	for i := 0; i < cursor && i < len(cells); i++ {
		if i == cursor-1 {
			sink.SetCellColour(cells[i], playback.Frontier)
		} else {
			sink.SetCellColour(cells[i], playback.Explored)
		}
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tALGO\tTIME\tGRID\tRATE\tTICKS\tSHOWN")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d/s\t%d\t%d/%d\n",
			run.ID,
			run.Algorithm,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Graph.GridSize.X, run.Graph.GridSize.Y,
			run.Graph.StepsPerSecond,
			run.Ticks,
			run.Cursor, run.TraceLen,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	cursor, length, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(cursor) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("algorithm: %s from %s\n", meta.Algorithm, meta.Start)
	fmt.Printf("samples: %d\n\n", len(cursor))

	graph := asciigraph.PlotMany([][]float64{cursor, length},
		asciigraph.Height(12), asciigraph.Width(70),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption("cursor (green) and trace length (red) per tick"))
	fmt.Println(graph)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	cells, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	th := viz.GetTheme(theme)
	var svg string
	if svgPath {
		g := grid.Grid{Width: meta.Graph.GridSize.X, Height: meta.Graph.GridSize.Y}
		svg = export.TraceToSVG(cells, g, meta.Graph.TileSize.X, meta.Graph.TileSize.Y, string(th.Frontier))
	} else {
		canvas := viz.NewCanvas(meta.Graph)
		paint(canvas, cells, meta.Cursor)
		svg = export.CanvasToSVG(canvas, th)
	}
	if svg == "" {
		return fmt.Errorf("run %s has nothing to draw", runID)
	}
	return writeOutput(svg)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	cells, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	cursor, _, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(struct {
		*storage.RunMetadata
		Cells  []grid.Coordinate `json:"cells"`
		Cursor []float64         `json:"cursor_per_tick"`
	}{meta, cells, cursor}, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(string(data) + "\n")
}

func writeOutput(s string) (err error) {
	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}
	_, err = io.WriteString(w, s)
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRID\tTILE\tRATE\tALGO")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%dx%d\t%dx%d\t%d/s\t%s\n",
			name,
			p.Graph.GridSize.X, p.Graph.GridSize.Y,
			p.Graph.TileSize.X, p.Graph.TileSize.Y,
			p.Graph.StepsPerSecond,
			p.Search.Algorithm)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return yaml.NewEncoder(os.Stdout).Encode(cfg)
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func compareAlgorithms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	g, err := grid.New(cfg.Graph.GridSize.X, cfg.Graph.GridSize.Y)
	if err != nil {
		return err
	}
	adj, err := grid.ParseAdjacency(cfg.Search.Neighbours)
	if err != nil {
		return err
	}
	seedStart := cfg.Search.Seed
	if seedStart == 0 {
		seedStart = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := search.NewRegistry()
	fmt.Printf("comparing algorithms on %dx%d %s grid (%d runs each)\n\n", g.Width, g.Height, adj, compareRuns)
	fmt.Printf("%-10s  %-10s  %-12s  %-10s  %-10s  %-10s\n", "algorithm", "visited", "step_length", "jumps", "spread", "time_ms")
	fmt.Println(strings.Repeat("-", 72))

	for _, name := range args {
		alg, err := registry.Get(name)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}
		e := ensemble.New(alg, ensemble.Config{
			Grid:      g,
			Adjacency: adj,
			Randomise: cfg.Search.Randomise,
			Runs:      compareRuns,
			SeedStart: seedStart,
			Parallel:  compareParallel,
		}, logging.New("ensemble"))

		results, err := e.Run(ctx)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}
		s := ensemble.Summarise(name, results)
		fmt.Printf("%-10s  %10.1f  %12.3f  %10.1f  %10.1f  %10.2f\n",
			name, s.Visited,
			s.Metrics["step_length"], s.Metrics["jumps"], s.Metrics["spread"],
			float64(s.Elapsed.Microseconds())/1000)
	}
	return nil
}
