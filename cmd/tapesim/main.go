package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/tapesim/internal/automation"
	"github.com/san-kum/tapesim/internal/config"
	"github.com/san-kum/tapesim/internal/export"
	"github.com/san-kum/tapesim/internal/logging"
	"github.com/san-kum/tapesim/internal/machine"
	"github.com/san-kum/tapesim/internal/metrics"
	"github.com/san-kum/tapesim/internal/program"
	"github.com/san-kum/tapesim/internal/runner"
	"github.com/san-kum/tapesim/internal/storage"
	"github.com/san-kum/tapesim/internal/tui"
	"github.com/san-kum/tapesim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logFile  string
	// Machine setup
	tapes     int
	input     string
	inputTape int
	startPos  int
	file      string
	// Driver
	maxSteps int
	delay    = config.DefaultDelay
	window   int
	live     bool
	save     bool
	// Config file
	configFile string
	// Preset name
	preset string
	// Prometheus endpoint, empty disables it
	metricsAddr string
	theme       string
	// Export
	exportFormat string
	exportOut    string
	// Fuzz
	alphabet string
	minLen   int
	maxLen   int
	trials   int
	workers  int
	seed     int64
)

// main registers commands and flags, runs the six tape copy demonstration when
// no subcommand is given, and exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "tapesim",
		Short:         "multi-tape turing machine interpreter",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			live = true
			return runMachine(cmd, []string{config.DefaultProgram})
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")

	runCmd := &cobra.Command{
		Use:   "run [program]",
		Short: "run a machine until it halts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMachine,
	}
	addMachineFlags(runCmd)
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "stop after this many steps (0 = unbounded)")
	runCmd.Flags().BoolVar(&live, "live", false, "redraw the tapes after every step")
	runCmd.Flags().BoolVar(&save, "save", false, "store a run record in the data directory")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	liveCmd := &cobra.Command{
		Use:   "live [program]",
		Short: "step a machine in an interactive terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInteractive,
	}
	addMachineFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "color theme")

	programsCmd := &cobra.Command{
		Use:   "programs",
		Short: "list built-in programs",
		RunE:  listPrograms,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [program]",
		Short: "list available presets for a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for program: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot head positions of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as json or svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json, svg)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every entry of a scenario file and check expected outcomes",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	fuzzCmd := &cobra.Command{
		Use:   "fuzz [program]",
		Short: "run a program on random inputs and tally outcomes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFuzz,
	}
	fuzzCmd.Flags().StringVar(&file, "file", "", "table program (yaml) instead of a built-in")
	fuzzCmd.Flags().IntVar(&tapes, "tapes", 0, "number of tapes (0 = program default)")
	fuzzCmd.Flags().StringVar(&alphabet, "alphabet", "ab", "symbols drawn for inputs")
	fuzzCmd.Flags().IntVar(&minLen, "min-len", 0, "shortest input")
	fuzzCmd.Flags().IntVar(&maxLen, "max-len", 8, "longest input")
	fuzzCmd.Flags().IntVar(&trials, "trials", 100, "number of inputs")
	fuzzCmd.Flags().IntVar(&maxSteps, "max-steps", 10000, "step limit per input")
	fuzzCmd.Flags().IntVar(&workers, "workers", 4, "parallel workers")
	fuzzCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")

	rootCmd.AddCommand(runCmd, liveCmd, programsCmd, presetsCmd, listCmd, showCmd, plotCmd,
		exportCmd, scenarioCmd, fuzzCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addMachineFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&tapes, "tapes", 0, "number of tapes (0 = program default)")
	cmd.Flags().StringVar(&input, "input", config.DefaultInput, "input written on the input tape")
	cmd.Flags().IntVar(&inputTape, "input-tape", 0, "tape receiving the input")
	cmd.Flags().IntVar(&startPos, "start", 0, "position of the first input symbol")
	cmd.Flags().StringVar(&file, "file", "", "table program (yaml) instead of a built-in")
	cmd.Flags().DurationVar(&delay, "delay", config.DefaultDelay, "pause between steps")
	cmd.Flags().IntVar(&window, "window", config.DefaultWindow, "cells shown on each side of a head")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func runeString(r rune) string { return string(r) }

// resolveConfig layers preset, config file and flags, in that order of
// increasing priority. Flags only win when they were set explicitly.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Program = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Program, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Program))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Program = args[0]
		}
	}

	flags := cmd.Flags()
	if flags.Changed("tapes") {
		cfg.Tapes = tapes
	}
	if flags.Changed("input") {
		cfg.Input = input
	}
	if flags.Changed("input-tape") {
		cfg.InputTape = inputTape
	}
	if flags.Changed("start") {
		cfg.StartPos = startPos
	}
	if flags.Changed("file") {
		cfg.ProgramFile = file
	}
	if flags.Changed("delay") {
		cfg.Delay = delay
	}
	if flags.Changed("window") {
		cfg.Window = window
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDefinition(cfg *config.Config) (*program.Definition, error) {
	return program.NewRegistry().Resolve(cfg.Program, cfg.ProgramFile, cfg.Tapes)
}

func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return logging.NewWithFile(level, cfg.LogFile)
}

func runMachine(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	def, err := loadDefinition(cfg)
	if err != nil {
		return err
	}
	m, err := def.Build()
	if err != nil {
		return err
	}
	if err := m.LoadInput([]rune(cfg.Input), cfg.InputTape, cfg.StartPos); err != nil {
		return err
	}

	r := runner.New(m, logger)
	rec := storage.NewRecorder[string, rune]()
	if save {
		r.AddObserver(rec)
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector, err := metrics.New[string, rune](reg)
		if err != nil {
			return err
		}
		r.AddObserver(collector)

		srv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler(reg)}
		go func() {
			logger.Info("serving metrics", "addr", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	opts := runner.Options{MaxSteps: cfg.MaxSteps}
	var lr *tui.LiveRenderer[string, rune]
	if live {
		lr = tui.NewLiveRenderer(os.Stdout, m, cfg.Window, runeString)
		r.AddObserver(lr)
		opts.Delay = cfg.Delay
	} else if cmd.Flags().Changed("delay") {
		opts.Delay = cfg.Delay
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if lr != nil {
		lr.Begin()
	}
	res, runErr := r.Run(ctx, opts)
	if res == nil {
		return runErr
	}
	if lr != nil {
		lr.End(res)
	} else {
		printSummary(os.Stdout, def, m, res, cfg.Window)
		if res.Reason == runner.StopCanceled {
			fmt.Printf("\nstopped manually at step %d\n", res.Steps)
		}
	}

	if save {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.RunMetadata{
			Program:  def.Name,
			Input:    cfg.Input,
			Tapes:    m.NumTapes(),
			Steps:    res.Steps,
			State:    res.State,
			Outcome:  res.Outcome.String(),
			Reason:   string(res.Reason),
			Halted:   res.Halted,
			Contents: contents(m),
		}
		if runErr != nil {
			meta.Error = runErr.Error()
		}
		runID, err := st.Save(meta, rec.Rows())
		if err != nil {
			return err
		}
		fmt.Printf("saved run: %s\n", runID)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func contents(m *program.Machine) []string {
	out := make([]string, m.NumTapes())
	for i := range out {
		lo, hi, ok := m.Span(i)
		if !ok {
			continue
		}
		syms := make([]rune, 0, hi-lo+1)
		for pos := lo; pos <= hi; pos++ {
			syms = append(syms, m.Cell(i, pos))
		}
		out[i] = string(syms)
	}
	return out
}

func printSummary(w io.Writer, def *program.Definition, m *program.Machine, res *runner.Result[string], radius int) {
	fmt.Fprintf(w, "program: %s\n", def.Name)
	fmt.Fprintf(w, "state:   %s\n", res.State)
	fmt.Fprintf(w, "steps:   %d\n", res.Steps)
	fmt.Fprintf(w, "outcome: %s\n", res.Outcome)
	fmt.Fprintf(w, "stopped: %s\n\n", res.Reason)
	for i := 0; i < m.NumTapes(); i++ {
		fmt.Fprintf(w, "Tape %d : %s\n", i, m.Render(i, radius, runeString))
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	def, err := loadDefinition(cfg)
	if err != nil {
		return err
	}
	m, err := def.Build()
	if err != nil {
		return err
	}

	return viz.Run(def.Name, m, viz.Options{
		Input:     []rune(cfg.Input),
		InputTape: cfg.InputTape,
		StartPos:  cfg.StartPos,
		Delay:     cfg.Delay,
		Window:    cfg.Window,
		Theme:     theme,
	})
}

func listPrograms(cmd *cobra.Command, args []string) error {
	registry := program.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTAPES\tDESCRIPTION")
	for _, name := range registry.Names() {
		desc, k, _ := registry.Describe(name)
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, k, desc)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tPROGRAM\tTIME\tTAPES\tSTEPS\tSTATE\tOUTCOME")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.Program,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Tapes,
			run.Steps,
			run.State,
			run.Outcome,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rows, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	if len(rows) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("program: %s\n", meta.Program)
	fmt.Printf("steps: %d\n\n", meta.Steps)

	numTapes := min(meta.Tapes, 6)
	for tape := 0; tape < numTapes; tape++ {
		data := make([]float64, len(rows))
		for i, row := range rows {
			if tape < len(row.Heads) {
				data[i] = float64(row.Heads[tape])
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("head %d position", tape)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "json":
		return export.WriteJSON(out, *meta, rows)
	case "svg":
		svg := export.TraceToSVG(rows, meta.Tapes, 800, 400)
		if svg == "" {
			return fmt.Errorf("no data to export")
		}
		_, err := io.WriteString(out, svg)
		return err
	default:
		return fmt.Errorf("unknown format: %s (available: json, svg)", exportFormat)
	}
}

func cliLogger() (*slog.Logger, io.Closer, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, err
	}
	return logging.NewWithFile(level, logFile)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	logger, closer, err := cliLogger()
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports, runErr := automation.RunScenario(ctx, sc, program.NewRegistry(), logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tPROGRAM\tSTEPS\tOUTCOME\tRESULT")
	for _, r := range reports {
		steps, outcome, result := "-", "-", "ok"
		if r.Result != nil {
			steps = fmt.Sprint(r.Result.Steps)
			outcome = r.Result.Outcome.String()
		}
		switch {
		case r.Err != nil:
			result = "error: " + r.Err.Error()
		case !r.Passed:
			result = "FAIL"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Program, steps, outcome, result)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	passed, failed := automation.Summary(reports)
	fmt.Printf("\n%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		return fmt.Errorf("scenario %s: %d runs failed", sc.Name, failed)
	}
	return nil
}

func runFuzz(cmd *cobra.Command, args []string) error {
	name := config.DefaultProgram
	if len(args) > 0 {
		name = args[0]
	}

	logger, closer, err := cliLogger()
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := automation.RunFuzz(ctx, &automation.FuzzConfig{
		Program:     name,
		ProgramFile: file,
		Tapes:       tapes,
		Alphabet:    alphabet,
		MinLen:      minLen,
		MaxLen:      maxLen,
		Trials:      trials,
		MaxSteps:    maxSteps,
		Workers:     workers,
		Seed:        seed,
	}, program.NewRegistry(), logger)
	if err != nil {
		return err
	}

	outcomes, errs := automation.Tally(results)
	fmt.Printf("trials: %d\n", len(results))
	for _, o := range []machine.Outcome{machine.Accept, machine.Reject, machine.NoAction, machine.Running} {
		fmt.Printf("  %-10s %d\n", o, outcomes[o])
	}
	if errs > 0 {
		fmt.Printf("  %-10s %d\n", "error", errs)
		for _, t := range results {
			if t.Err != nil {
				fmt.Printf("first error on input %q: %v\n", t.Input, t.Err)
				break
			}
		}
	}
	return nil
}
