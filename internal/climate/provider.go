package climate

import (
	"context"
	"time"
)

// DeviceSource supplies the monitored devices in a stable order.
type DeviceSource interface {
	Devices(ctx context.Context) ([]Device, error)
}

// ReadingFetcher abstracts the time-series API of the device fleet.
// A payload without rows is not an error.
type ReadingFetcher interface {
	FetchDay(ctx context.Context, deviceID string, day time.Time) (FetchResult, error)
	FetchRange(ctx context.Context, deviceID string, from, to time.Time) (FetchResult, error)
}

// RegionResolver turns coordinates into a coarse place name.
type RegionResolver interface {
	Region(ctx context.Context, lat, lon float64) (string, error)
}

// DaySink receives the result of each day of a monthly scan.
type DaySink interface {
	WriteDay(day DayExtremes) error
}

// Store caches computed results for the HTTP layer.
type Store interface {
	SaveExtremes(day DayExtremes)
	GetExtremes(date string) (DayExtremes, error)
	SaveRecommendations(rec Recommendations)
	GetRecommendations() (Recommendations, error)
}
