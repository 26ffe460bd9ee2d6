// Command bulltab fetches the latest wave bulletin for a station and prints
// the forecast table, or writes it as an .xlsx workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/wave-bulletin-service/internal/adapter/nomads"
	"github.com/couchcryptid/wave-bulletin-service/internal/adapter/xlsx"
	"github.com/couchcryptid/wave-bulletin-service/internal/catalog"
	"github.com/couchcryptid/wave-bulletin-service/internal/config"
	"github.com/couchcryptid/wave-bulletin-service/internal/domain"
	"github.com/couchcryptid/wave-bulletin-service/internal/observability"
	"github.com/couchcryptid/wave-bulletin-service/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	station := flag.String("station", "", "station id, e.g. 41001")
	at := flag.String("at", "", "reference time (RFC3339), defaults to now")
	out := flag.String("o", "", "write an .xlsx workbook to this path instead of printing")
	flag.Parse()

	if *station == "" {
		fmt.Fprintln(os.Stderr, "usage: bulltab -station 41001 [-at 2024-01-01T13:00:00Z] [-o table.xlsx]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ref := domain.Now()
	if *at != "" {
		ref, err = time.Parse(time.RFC3339, *at)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -at value %q: %v\n", *at, err)
			os.Exit(2)
		}
		ref = ref.UTC()
	}

	cat, err := catalog.Load(cfg.StationFile)
	if err != nil {
		logger.Error("failed to load station catalog", "error", err)
		os.Exit(1)
	}

	client := nomads.NewClient(cfg.NOMADSBaseURL, cfg.FetchTimeout, logger, metrics)
	fetcher := nomads.NewCachedFetcher(client, cfg.CacheSize, metrics)
	resolver := pipeline.NewResolver(fetcher, cfg.LookbackCycles, logger, metrics)
	svc := pipeline.New(cat, fetcher, resolver, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, cycle, err := svc.BuildTable(ctx, *station, ref)
	if err != nil {
		logger.Error("table build failed", "station", *station, "error", err)
		os.Exit(1)
	}
	logger.Info("bulletin resolved", "station", *station, "cycle", cycle.String())

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Error("create output file", "path", *out, "error", err)
			os.Exit(1)
		}
		if err := xlsx.NewWriter().WriteTable(f, table); err != nil {
			f.Close()
			logger.Error("write workbook", "path", *out, "error", err)
			os.Exit(1)
		}
		if err := f.Close(); err != nil {
			logger.Error("close output file", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("workbook written", "path", *out)
		return
	}

	printTable(os.Stdout, table)
}

func printTable(w io.Writer, table domain.RenderedTable) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row.Cells, "\t"))
	}
	tw.Flush()
}
