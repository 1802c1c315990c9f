package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/i474232898/climatenet-analytics/internal/app"
	"github.com/i474232898/climatenet-analytics/internal/config"
	"github.com/i474232898/climatenet-analytics/internal/logging"
	"github.com/i474232898/climatenet-analytics/internal/report"
)

func main() {
	var (
		year  = flag.Int("year", 0, "Year to analyze (e.g. 2025)")
		month = flag.Int("month", 0, "Month to analyze (1-12)")
		out   = flag.String("out", "", "Output directory (default $OUTPUT_DIR)")
	)
	flag.Parse()

	if *year <= 0 || *month < 1 || *month > 12 {
		fmt.Fprintf(os.Stderr, "Usage: %s -year <YYYY> -month <1-12> [-out <dir>]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *out != "" {
		cfg.OutputDir = *out
	}

	zlog, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer zlog.Sync()

	writer, err := report.NewFileWriter(cfg.OutputDir)
	if err != nil {
		zlog.Fatalw("cannot prepare output directory", "dir", cfg.OutputDir, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := app.NewService(cfg, zlog)
	if err := service.AnalyzeMonth(ctx, *year, time.Month(*month), writer); err != nil {
		zlog.Errorw("monthly analysis failed", "year", *year, "month", *month, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Monthly analysis for %04d-%02d written to %s\n", *year, *month, cfg.OutputDir)
}
