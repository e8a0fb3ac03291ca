package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/pflag"

	"github.com/a3tai/mcp-pdf-figures/internal/config"
	"github.com/a3tai/mcp-pdf-figures/internal/document"
	"github.com/a3tai/mcp-pdf-figures/internal/layout"
	"github.com/a3tai/mcp-pdf-figures/internal/report"
)

const (
	debugFiguresJSON = "figures.json"
	debugFiguresMD   = "figures.md"
	debugLayoutJSON  = "layout.json"
)

type options struct {
	format        string
	debug         bool
	outputDir     string
	contextWindow int
	workers       int
	maxFileSize   int64
	path          string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		printUsage(stderr)
		return 2
	}

	if err := extract(context.Background(), opts, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := pflag.NewFlagSet("pdf_extract_figures", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }
	fs.StringVarP(&opts.format, "format", "f", string(report.FormatText), "Output format: text, json, yaml, markdown")
	fs.BoolVar(&opts.debug, "debug", false, "Log at debug level and write figures and layout files to --output-dir")
	fs.StringVarP(&opts.outputDir, "output-dir", "o", "./tmp", "Directory for debug output files")
	fs.IntVar(&opts.contextWindow, "context-window", config.DefaultContextWindow, "Characters of context kept on each side of an inline figure")
	fs.IntVar(&opts.workers, "workers", runtime.NumCPU(), "Pages extracted in parallel")
	fs.Int64Var(&opts.maxFileSize, "maxfilesize", config.DefaultMaxFileSize, "Maximum document size in bytes")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, errors.New("exactly one document path is required")
	}
	if _, err := report.ParseFormat(opts.format); err != nil {
		return nil, err
	}
	if opts.contextWindow < 0 {
		return nil, errors.New("context window cannot be negative")
	}
	if opts.workers < 1 {
		opts.workers = 1
	}

	opts.path = fs.Arg(0)
	return opts, nil
}

func extract(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	path, err := filepath.Abs(opts.path)
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", opts.path, err)
	}

	svc, err := document.NewService(document.Options{
		Directory:     filepath.Dir(path),
		MaxFileSize:   opts.maxFileSize,
		ContextWindow: opts.contextWindow,
		Workers:       opts.workers,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	doc, err := svc.Load(path)
	if err != nil {
		return err
	}

	rep, err := svc.ExtractDocument(ctx, doc)
	if err != nil {
		return err
	}

	if opts.debug {
		if err := writeDebugFiles(opts.outputDir, doc, rep); err != nil {
			return err
		}
	}

	format, _ := report.ParseFormat(opts.format)
	if err := rep.Write(stdout, format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.debug && format == report.FormatText {
		fmt.Fprintf(stdout, "\nDebug files:\n")
		fmt.Fprintf(stdout, "  %s  structured data\n", filepath.Join(opts.outputDir, debugFiguresJSON))
		fmt.Fprintf(stdout, "  %s    readable summary\n", filepath.Join(opts.outputDir, debugFiguresMD))
		fmt.Fprintf(stdout, "  %s   laid-out pages\n", filepath.Join(opts.outputDir, debugLayoutJSON))
	}
	return nil
}

// writeDebugFiles saves the report as JSON and Markdown next to the layout
// the figures were extracted from.
func writeDebugFiles(dir string, doc *document.Document, rep *report.Report) error {
	if err := os.MkdirAll(dir, config.DefaultDirPerm); err != nil {
		return fmt.Errorf("cannot create output directory %s: %w", dir, err)
	}

	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{debugFiguresJSON, func(w io.Writer) error { return rep.Write(w, report.FormatJSON) }},
		{debugFiguresMD, func(w io.Writer) error { return rep.Write(w, report.FormatMarkdown) }},
		{debugLayoutJSON, func(w io.Writer) error { return layout.EncodeJSON(w, doc.Pages) }},
	}

	for _, dw := range writers {
		if err := writeFile(filepath.Join(dir, dw.name), dw.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: pdf_extract_figures [options] <file>\n\n")
	fmt.Fprintf(w, "Extracts scaled financial figures from a budget document (.pdf, layout .json, .html).\n\n")
	fmt.Fprintf(w, "Options:\n")
	fmt.Fprintf(w, "  -f, --format FORMAT        Output format: text, json, yaml, markdown (default text)\n")
	fmt.Fprintf(w, "      --debug                Debug logging; write %s, %s and %s\n",
		debugFiguresJSON, debugFiguresMD, debugLayoutJSON)
	fmt.Fprintf(w, "  -o, --output-dir DIR       Directory for debug output files (default ./tmp)\n")
	fmt.Fprintf(w, "      --context-window N     Characters of context around inline figures (default %d)\n",
		config.DefaultContextWindow)
	fmt.Fprintf(w, "      --workers N            Pages extracted in parallel (default: number of CPUs)\n")
	fmt.Fprintf(w, "      --maxfilesize BYTES    Maximum document size (default %d)\n", config.DefaultMaxFileSize)
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  pdf_extract_figures budget.pdf\n")
	fmt.Fprintf(w, "  pdf_extract_figures --format markdown capital-plan.json\n")
	fmt.Fprintf(w, "  pdf_extract_figures --debug --output-dir ./out budget.html\n")
}
