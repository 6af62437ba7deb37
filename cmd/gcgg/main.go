// Command gcgg post-processes a G-code stream: coalescing collinear moves,
// filleting sharp corners with arcs, folding long runs of short segments
// into regular-arc accumulators, re-subdividing the result, and planning
// jerk-bounded feedrates, before emitting the transformed stream.
//
// Build:
//
//	go build -o gcgg ./cmd/gcgg
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/pipeline"
	"github.com/ameisen/gcgg-go/internal/report"
	"github.com/ameisen/gcgg-go/internal/trace"
)

const (
	exitOK         = 0
	exitIOFailure  = 1
	exitParseError = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("gcgg", flag.ContinueOnError)
	inPath := fs.String("in", "", "input G-code path, - for stdin (required)")
	outPath := fs.String("out", "", "output G-code path, - for stdout (required)")
	configPath := fs.String("config", "", "JSON configuration path (optional)")
	reportKind := fs.String("report", "none", "report format: none|pdf|xlsx")
	reportOut := fs.String("report-out", "", "report output path (required unless -report=none)")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	traceDXF := fs.String("trace-dxf", "", "dump reconstructed geometry as DXF to this path (optional)")

	if err := fs.Parse(args); err != nil {
		return exitParseError
	}

	logger := newLogger(*logLevel)

	if *inPath == "" || *outPath == "" {
		logger.Error("missing required flag", "in", *inPath, "out", *outPath)
		return exitParseError
	}
	if *reportKind != "none" && *reportOut == "" {
		logger.Error("-report-out is required when -report is not none", "report", *reportKind)
		return exitParseError
	}
	switch *reportKind {
	case "none", "pdf", "xlsx":
	default:
		logger.Error("unknown report format", "report", *reportKind)
		return exitParseError
	}

	if *configPath != "" {
		if _, err := os.Stat(*configPath); err != nil {
			logger.Error("failed to open configuration", "error", err)
			return exitIOFailure
		}
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return exitParseError
	}

	in, closeIn, err := openInput(*inPath)
	if err != nil {
		logger.Error("failed to open input", "error", err)
		return exitIOFailure
	}
	defer closeIn()

	result, err := pipeline.Run(in, cfg)
	if err != nil {
		logger.Error("failed to process input", "error", err)
		return exitParseError
	}

	out, closeOut, err := openOutput(*outPath)
	if err != nil {
		logger.Error("failed to open output", "error", err)
		return exitIOFailure
	}
	defer closeOut()

	if _, err := fmt.Fprint(out, result.Output); err != nil {
		logger.Error("failed to write output", "error", err)
		return exitIOFailure
	}

	summary := report.Summarize(result.Commands, result.Sink)
	fmt.Fprint(os.Stderr, summary.Text())

	logger.Info("pipeline complete",
		"run_id", result.Sink.RunID,
		"failed_jerk_tests", result.Sink.FailedJerkTests,
		"rejected_arcs", result.Sink.RejectedArcs,
		"degenerate_geometry", result.Sink.DegenerateGeometry,
		"unknown_commands", result.Sink.UnknownCommands,
		"accumulators_emitted", result.Sink.AccumulatorsEmitted,
	)

	if err := writeReport(*reportKind, *reportOut, summary); err != nil {
		logger.Error("failed to write report", "error", err)
		return exitIOFailure
	}

	if *traceDXF != "" {
		if err := trace.WriteDXF(*traceDXF, result.Commands); err != nil {
			logger.Error("failed to write trace DXF", "error", err)
			return exitIOFailure
		}
	}

	return exitOK
}

func writeReport(kind, path string, summary report.Summary) error {
	switch kind {
	case "none":
		return nil
	case "pdf":
		return report.WritePDF(path, summary)
	case "xlsx":
		return report.WriteXLSX(path, summary)
	default:
		return fmt.Errorf("unknown report format %q", kind)
	}
}

func openInput(path string) (*os.File, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
