package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/i474232898/climatenet-analytics/internal/app"
	"github.com/i474232898/climatenet-analytics/internal/climate"
	"github.com/i474232898/climatenet-analytics/internal/config"
	"github.com/i474232898/climatenet-analytics/internal/logging"
)

func main() {
	var (
		top    = flag.Int("top", 5, "Number of locations to print")
		asJSON = flag.Bool("json", false, "Print the full ranking as JSON")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	zlog, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := app.NewService(cfg, zlog)
	rec, err := service.Recommend(ctx)
	if err != nil {
		zlog.Errorw("recommendations failed", "error", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printTop(rec.Locations, *top)
}

func printTop(locations []climate.LocationScore, n int) {
	fmt.Printf("\nFound %d recommended locations\n", len(locations))
	if n > len(locations) {
		n = len(locations)
	}
	if n < 0 {
		n = 0
	}
	for i, loc := range locations[:n] {
		fmt.Printf("%d. %s (Score: %d)\n", i+1, loc.Location, loc.Score)
		fmt.Printf("   Coordinates: %g, %g\n", loc.Latitude, loc.Longitude)
		fmt.Printf("   Weather: %s\n\n", formatSummary(loc.Summary))
	}
}

func formatSummary(s climate.Summary) string {
	out := ""
	for i, c := range climate.AveragedChannels {
		if i > 0 {
			out += ", "
		}
		if v, ok := s.Get(c); ok {
			out += fmt.Sprintf("%s=%.2f", c, v)
		} else {
			out += fmt.Sprintf("%s=n/a", c)
		}
	}
	return out
}
