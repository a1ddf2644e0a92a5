package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/krysczajkowski/ytcomments"
	"github.com/krysczajkowski/ytcomments/extract"
	ytchttp "github.com/krysczajkowski/ytcomments/http"
	"github.com/krysczajkowski/ytcomments/innertube"
	ytcslog "github.com/krysczajkowski/ytcomments/slog"
	"golang.org/x/time/rate"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("ytcomments"),
		kong.Description("Extract YouTube comments to NDJSON or SQLite"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	_, err = parser.Parse(args)
	if err != nil {
		return err
	}

	refs, invalid := normalizeInputs(cli.URLs)
	for _, rejected := range invalid {
		fmt.Fprintf(stderr, "skipping %s: %s\n", rejected.URL, ytcomments.ErrorMessage(rejected.Err))
	}
	if len(refs) == 0 {
		return fmt.Errorf("no valid video URLs or ids provided")
	}

	logger := newLogger(stderr, cli.Verbose)

	// Wire dependencies
	transport := ytcslog.NewLoggingTransport(
		ytchttp.NewTransport(ytchttp.WithTimeout(cli.RequestTimeout)),
		logger,
	)
	defer transport.Close()

	client, err := innertube.NewClient(transport)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	runID := uuid.New().String()

	sink, closeSinks, err := buildSink(cli, runID, stdout)
	if err != nil {
		return err
	}
	defer closeSinks()
	sink = ytcslog.NewLoggingSink(sink, logger)

	retry := ytcomments.DefaultRetryPolicy()
	if cli.Fast {
		retry = ytcomments.FastRetryPolicy()
	}

	extractor := &extract.Extractor{
		Source: client,
		Sink:   sink,
		Retry:  retry,
		Limits: extract.Limits{
			MaxComments:       cli.MaxComments,
			ExtractionTimeout: cli.Timeout,
			FirstBatchTimeout: cli.FirstBatchTimeout,
			RequestTimeout:    cli.RequestTimeout,
		},
		Pacer: rate.NewLimiter(rate.Limit(cli.Rate), 1),
	}

	runner := &extract.Runner{
		Extractor:   extractor,
		Egress:      ytchttp.NewProxyRing(cli.Proxy),
		Concurrency: cli.Concurrency,
		RunID:       runID,
	}

	results := runner.Run(ctx, refs)

	for _, result := range results {
		line := fmt.Sprintf("%s: %s, %d comments", result.Metadata.VideoID, result.Status(), len(result.Comments))
		if result.Err != nil {
			line += fmt.Sprintf(" (%s: %s)", result.ErrClass, ytcomments.ErrorMessage(result.Err))
		}
		fmt.Fprintln(stderr, line)
	}

	summary := extract.Summarize(results)
	fmt.Fprintf(stderr, "run %s: %d videos, %d completed, %d partial, %d failed, %d comments\n",
		summary.RunID, summary.Videos, summary.Completed, summary.Partial, summary.Failed, summary.Comments)

	if summary.Failed == summary.Videos {
		return fmt.Errorf("all %d videos failed", summary.Videos)
	}
	return nil
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	MaxComments       int           `short:"n" help:"Stop after this many comments per video (0 = unlimited)"`
	Timeout           time.Duration `default:"5m" help:"Total extraction budget per video"`
	FirstBatchTimeout time.Duration `default:"60s" help:"Budget for the first non-empty page"`
	RequestTimeout    time.Duration `default:"30s" help:"Per-request timeout"`
	Fast              bool          `help:"Fail fast with a single quick retry"`
	Rate              float64       `default:"1" help:"Page requests per second"`
	Out               string        `short:"o" type:"path" help:"Append comments to this NDJSON file"`
	DB                string        `type:"path" help:"Persist comments to this SQLite database"`
	Proxy             []string      `help:"Proxy URL for egress rotation (repeatable)"`
	Concurrency       int           `short:"c" default:"1" help:"Concurrent video limit"`
	Verbose           bool          `short:"v" help:"Enable debug logging"`
	URLs              []string      `arg:"" name:"url" help:"Video URLs or bare 11-character video ids"`
}

// normalizeInputs accepts both URLs and bare video ids, preserving
// input order in both partitions.
func normalizeInputs(inputs []string) ([]*ytcomments.VideoRef, []ytcomments.InvalidURL) {
	var refs []*ytcomments.VideoRef
	var invalid []ytcomments.InvalidURL

	for _, input := range inputs {
		if ytcomments.IsVideoID(input) {
			refs = append(refs, &ytcomments.VideoRef{
				VideoID:      input,
				OriginalURL:  input,
				CanonicalURL: ytcomments.CanonicalWatchURL(input),
			})
			continue
		}

		valid, rejected := ytcomments.NormalizeURLs([]string{input})
		refs = append(refs, valid...)
		invalid = append(invalid, rejected...)
	}
	return refs, invalid
}

// newLogger builds the stderr logger. Verbose mode lowers the level to
// debug, which includes per-request and per-batch logging.
func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}
