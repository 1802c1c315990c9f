package climate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DateLayout is the calendar date format used for cache keys and queries.
const DateLayout = "2006-01-02"

var (
	// ErrNoDevices is returned when the device list is missing or empty.
	ErrNoDevices = errors.New("no devices available")
	// ErrInvalidMonth is returned for a month outside 1..12.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)

// Options tunes the scans run by Service.
type Options struct {
	// LookbackDays is the recommendation window.
	LookbackDays int
	// MinEntries is the minimum number of readings a device needs to be ranked.
	MinEntries int
	// FetchTimeout bounds each reading fetch; 0 disables the bound.
	FetchTimeout time.Duration
	// Workers is the number of concurrent device fetches; <= 1 is sequential.
	Workers int
	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions mirrors the production defaults.
func DefaultOptions() Options {
	return Options{
		LookbackDays: 120,
		MinEntries:   10,
		FetchTimeout: 30 * time.Second,
		Workers:      1,
	}
}

// Service runs the extremes and recommendation scans over the device fleet.
type Service struct {
	devices DeviceSource
	fetcher ReadingFetcher
	store   Store
	regions RegionResolver
	opts    Options
	log     *zap.SugaredLogger
}

// NewService creates a new Service. store and log may be nil.
func NewService(devices DeviceSource, fetcher ReadingFetcher, store Store, opts Options, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MinEntries <= 0 {
		opts.MinEntries = DefaultOptions().MinEntries
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultOptions().LookbackDays
	}
	return &Service{
		devices: devices,
		fetcher: fetcher,
		store:   store,
		opts:    opts,
		log:     log,
	}
}

// WithRegions enables region labels on recommendations.
func (s *Service) WithRegions(r RegionResolver) *Service {
	s.regions = r
	return s
}

// Today returns midnight UTC of the current day.
func (s *Service) Today() time.Time {
	now := s.opts.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) loadDevices(ctx context.Context) ([]Device, error) {
	devices, err := s.devices.Devices(ctx)
	if err != nil {
		s.log.Warnw("device list unavailable", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNoDevices, err)
	}
	if len(devices) == 0 {
		s.log.Warn("device list is empty")
		return nil, ErrNoDevices
	}
	return devices, nil
}

// AnalyzeToday returns the extremes of the current UTC day.
func (s *Service) AnalyzeToday(ctx context.Context) (DayExtremes, error) {
	return s.AnalyzeDay(ctx, s.Today())
}

// AnalyzeDay scans every device for day and returns its extremes. When the
// device list is unavailable the result is empty and ErrNoDevices is returned.
func (s *Service) AnalyzeDay(ctx context.Context, day time.Time) (DayExtremes, error) {
	devices, err := s.loadDevices(ctx)
	if err != nil {
		return s.emptyDay(day), err
	}
	return s.analyzeDay(ctx, devices, day), nil
}

// AnalyzeMonth scans every day of the month and hands each result to sink.
// Days share no state; a sink error stops the scan.
func (s *Service) AnalyzeMonth(ctx context.Context, year int, month time.Month, sink DaySink) error {
	if month < time.January || month > time.December {
		return ErrInvalidMonth
	}
	devices, err := s.loadDevices(ctx)
	if err != nil {
		return err
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return err
		}
		result := s.analyzeDay(ctx, devices, day)
		if err := sink.WriteDay(result); err != nil {
			return fmt.Errorf("write %s: %w", result.Date, err)
		}
		s.log.Infow("day analyzed", "date", result.Date, "devices", result.Devices)
	}
	return nil
}

func (s *Service) emptyDay(day time.Time) DayExtremes {
	t := NewExtremesTracker(ExtremeChannels)
	return DayExtremes{
		RunID:   uuid.NewString(),
		Date:    day.Format(DateLayout),
		Highest: t.Highest(),
		Lowest:  t.Lowest(),
		Created: s.opts.Now().UTC(),
	}
}

// analyzeDay skips every device with a known issue, whatever the issue.
// This is coarser than the per-channel exclusion used by Recommend.
func (s *Service) analyzeDay(ctx context.Context, devices []Device, day time.Time) DayExtremes {
	tracker := NewExtremesTracker(ExtremeChannels)
	date := day.Format(DateLayout)

	var eligible []Device
	for _, d := range devices {
		if d.HasIssues() {
			continue
		}
		if d.ID == "" {
			s.log.Warnw("device without id skipped", "location", d.Label())
			continue
		}
		eligible = append(eligible, d)
	}

	contributed := 0
	fetch := func(ctx context.Context, d Device) (FetchResult, error) {
		return s.fetcher.FetchDay(ctx, d.ID, day)
	}
	s.forEachDevice(ctx, eligible, fetch, func(d Device, res FetchResult, err error) {
		if err != nil {
			s.log.Warnw("fetch failed", "device", d.ID, "date", date, "error", err)
			return
		}
		readings := OnDay(Normalize(res, RequireTimestamp), day)
		if len(readings) == 0 {
			return
		}
		contributed++
		location := d.Label()
		for _, r := range readings {
			tracker.Observe(location, r)
		}
	})

	return DayExtremes{
		RunID:   uuid.NewString(),
		Date:    date,
		Highest: tracker.Highest(),
		Lowest:  tracker.Lowest(),
		Devices: contributed,
		Created: s.opts.Now().UTC(),
	}
}

// Recommend scores every device over the lookback window and returns the
// locations ranked by score. Devices with a known issue are kept; only the
// affected channels are dropped.
func (s *Service) Recommend(ctx context.Context) (Recommendations, error) {
	rec := Recommendations{
		RunID:     uuid.NewString(),
		Window:    s.opts.LookbackDays,
		Locations: []LocationScore{},
		Created:   s.opts.Now().UTC(),
	}

	devices, err := s.loadDevices(ctx)
	if err != nil {
		return rec, err
	}

	var eligible []Device
	for _, d := range devices {
		if d.ID == "" {
			continue
		}
		eligible = append(eligible, d)
	}

	end := s.Today()
	start := end.AddDate(0, 0, -s.opts.LookbackDays)
	fetch := func(ctx context.Context, d Device) (FetchResult, error) {
		return s.fetcher.FetchRange(ctx, d.ID, start, end)
	}

	s.forEachDevice(ctx, eligible, fetch, func(d Device, res FetchResult, err error) {
		if err != nil {
			s.log.Warnw("fetch failed", "device", d.ID, "error", err)
			return
		}
		if loc, ok := s.scoreDevice(ctx, d, res); ok {
			rec.Locations = append(rec.Locations, loc)
		}
	})

	Rank(rec.Locations)
	return rec, nil
}

func (s *Service) scoreDevice(ctx context.Context, d Device, res FetchResult) (LocationScore, bool) {
	label := d.Label()
	declared := DeclaredProblems(d)
	if len(declared) > 0 {
		s.log.Infow("device has problematic measurements", "device", d.ID, "channels", declared.Sorted())
	}

	readings := Normalize(res, AllowUndated)
	if len(readings) < s.opts.MinEntries {
		s.log.Infow("insufficient data", "device", d.ID, "location", label, "entries", len(readings))
		return LocationScore{}, false
	}

	report := FilterQuality(readings, declared)
	for _, c := range report.RateExcluded {
		s.log.Warnw("measurement dropped for invalid rate",
			"device", d.ID, "channel", c,
			"invalid", report.Invalid[c], "total", report.Total,
			"rate", report.InvalidRate(c))
	}
	for _, c := range report.SensorFault {
		s.log.Warnw("implausible mean, likely sensor fault", "device", d.ID, "channel", c)
	}

	loc := LocationScore{
		DeviceID:  d.ID,
		Location:  label,
		Score:     Score(report.Summary),
		Summary:   report.Summary,
		Latitude:  float64(d.Latitude),
		Longitude: float64(d.Longitude),
	}
	if s.regions != nil {
		region, err := s.regions.Region(ctx, loc.Latitude, loc.Longitude)
		if err != nil {
			s.log.Debugw("region lookup failed", "device", d.ID, "error", err)
		} else {
			loc.Region = region
		}
	}
	s.log.Debugw("device scored", "device", d.ID, "score", loc.Score)
	return loc, true
}

// Extremes returns the cached extremes for day, computing and caching them
// on a miss. Results built without a device list are not cached.
func (s *Service) Extremes(ctx context.Context, day time.Time) (DayExtremes, error) {
	date := day.Format(DateLayout)
	if s.store != nil {
		if cached, err := s.store.GetExtremes(date); err == nil {
			return cached, nil
		}
	}
	result, err := s.AnalyzeDay(ctx, day)
	if err != nil {
		return result, err
	}
	if s.store != nil {
		s.store.SaveExtremes(result)
	}
	return result, nil
}

// RefreshToday recomputes today's extremes and replaces the cached copy.
func (s *Service) RefreshToday(ctx context.Context) error {
	result, err := s.AnalyzeToday(ctx)
	if err != nil {
		return err
	}
	if s.store != nil {
		s.store.SaveExtremes(result)
	}
	return nil
}

// LatestRecommendations returns the cached ranking, computing it on a miss.
func (s *Service) LatestRecommendations(ctx context.Context) (Recommendations, error) {
	if s.store != nil {
		if cached, err := s.store.GetRecommendations(); err == nil {
			return cached, nil
		}
	}
	rec, err := s.Recommend(ctx)
	if err != nil {
		return rec, err
	}
	if s.store != nil {
		s.store.SaveRecommendations(rec)
	}
	return rec, nil
}

// RefreshRecommendations recomputes the ranking and replaces the cached copy.
func (s *Service) RefreshRecommendations(ctx context.Context) error {
	rec, err := s.Recommend(ctx)
	if err != nil {
		return err
	}
	if s.store != nil {
		s.store.SaveRecommendations(rec)
	}
	return nil
}
