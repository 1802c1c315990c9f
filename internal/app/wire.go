// Package app assembles the climate service from configuration.
package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/i474232898/climatenet-analytics/internal/climate"
	"github.com/i474232898/climatenet-analytics/internal/climate/sources"
	"github.com/i474232898/climatenet-analytics/internal/config"
	"github.com/i474232898/climatenet-analytics/internal/geo"
	"github.com/i474232898/climatenet-analytics/internal/store"
)

// NewService wires the device source, reading fetcher, cache and optional
// region resolver into a climate.Service.
func NewService(cfg *config.AppConfig, log *zap.SugaredLogger) *climate.Service {
	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var devices climate.DeviceSource
	if cfg.DevicesFile != "" {
		devices = sources.NewFileDeviceSource(cfg.DevicesFile)
	} else {
		devices = sources.NewHTTPDeviceSource(httpClient, cfg.DevicesURL)
	}
	fetcher := sources.NewHTTPReadingFetcher(httpClient, cfg.DataURL)

	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	opts := climate.Options{
		LookbackDays: cfg.LookbackDays,
		MinEntries:   cfg.MinEntries,
		FetchTimeout: cfg.HTTPTimeout,
		Workers:      cfg.FetchWorkers,
	}
	service := climate.NewService(devices, fetcher, memStore, opts, log)

	if cfg.GeocoderAPIKey != "" {
		resolver, err := geo.NewResolver(cfg.GeocoderAPIKey, cfg.HTTPTimeout)
		if err != nil {
			log.Warnw("region lookup disabled", "error", err)
		} else {
			service.WithRegions(resolver)
		}
	}
	return service
}
