// Command fetchprices downloads a daily close series from the market-data
// provider and writes it as date,close CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tweetpulse/internal/app"
)

type options struct {
	app app.Options
	out string
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		slog.Error("Price fetch failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("fetchprices", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.app.Symbol, "symbol", "", "market symbol (defaults to config, BTC-USD)")
	fs.StringVar(&opts.app.StartDate, "start", "", "first date, yyyy-MM-dd")
	fs.StringVar(&opts.app.EndDate, "end", "", "end date (exclusive), yyyy-MM-dd")
	fs.StringVar(&opts.app.ConfigFile, "config", "", "YAML configuration file")
	fs.StringVar(&opts.out, "out", "", "output CSV path (defaults to prices_<symbol>_<start>_<end>.csv in the reports directory)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %v", fs.Args())
		fmt.Fprintln(stderr, err)
		return opts, err
	}
	return opts, nil
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	application, err := app.NewApplication(opts.app)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			slog.Warn("Shutdown incomplete", slog.String("error", err.Error()))
		}
	}()

	series, path, err := application.FetchPrices(ctx, opts.out)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d daily closes written to %s\n", series.Symbol, series.Len(), path)
	return nil
}
