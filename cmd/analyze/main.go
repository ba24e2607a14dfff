// Command analyze runs the sentiment pipeline over a posts dataset and writes
// the CSV tables, charts and workbook to the reports directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tweetpulse/internal/app"
	"tweetpulse/internal/operations"
	"tweetpulse/pkg/contracts"
)

// errVersion stops the command after -version
var errVersion = errors.New("version requested")

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, errVersion) || errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		slog.Error("Analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (app.Options, error) {
	var opts app.Options

	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.InputPath, "in", "", "posts dataset, .csv or .xlsx (defaults to data/input/bitcoin_tweets.csv relative to executable)")
	fs.StringVar(&opts.OutputDir, "out", "", "output directory for reports (defaults to data/reports relative to executable)")
	fs.StringVar(&opts.ConfigFile, "config", "", "YAML configuration file")
	fs.StringVar(&opts.Symbol, "symbol", "", "market symbol for the price chart (e.g. BTC-USD)")
	fs.StringVar(&opts.StartDate, "start", "", "first price date, yyyy-MM-dd")
	fs.StringVar(&opts.EndDate, "end", "", "price end date (exclusive), yyyy-MM-dd")
	fs.IntVar(&opts.Workers, "workers", 0, "sentiment scoring workers (defaults to config)")
	fs.BoolVar(&opts.SkipPrices, "skip-prices", false, "do not fetch market prices")
	version := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if *version {
		fmt.Fprintln(stderr, contracts.GetFullVersionString())
		return opts, errVersion
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %v", fs.Args())
		fmt.Fprintln(stderr, err)
		return opts, err
	}
	return opts, nil
}

func run(ctx context.Context, opts app.Options, stdout io.Writer) error {
	application, err := app.NewApplication(opts)
	if err != nil {
		return err
	}

	resp, runErr := application.Run(ctx)
	if err := application.Close(context.Background()); err != nil {
		slog.Warn("Shutdown incomplete", slog.String("error", err.Error()))
	}
	if resp != nil {
		printSummary(stdout, resp)
	}
	return runErr
}

func printSummary(w io.Writer, resp *operations.OperationResponse) {
	fmt.Fprintf(w, "Run %s %s in %s\n", resp.ID, resp.Status, resp.Duration.Round(time.Millisecond))
	for _, s := range resp.Steps {
		line := fmt.Sprintf("  %-26s %s", s.Name, s.GetStatus())
		if s.Message != "" {
			line += " (" + s.Message + ")"
		}
		fmt.Fprintln(w, line)
	}
	for _, a := range resp.Artifacts {
		fmt.Fprintf(w, "  %-4s %s\n", a.Kind, a.Path)
	}
	if resp.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", resp.Error)
	}
}
