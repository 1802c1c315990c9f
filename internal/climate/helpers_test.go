package climate

import (
	"context"
	"sync"
	"time"
)

var testKeys = []string{"timestamp", "temperature", "pm2_5", "humidity", "uv", "wind_speed", "rain", "pressure"}

// series builds perDay rows per day starting at start, every row carrying vals.
func series(start time.Time, days, perDay int, vals map[string]any) FetchResult {
	res := FetchResult{Keys: testKeys}
	step := 24 * time.Hour / time.Duration(perDay)
	for d := 0; d < days; d++ {
		for i := 0; i < perDay; i++ {
			ts := start.AddDate(0, 0, d).Add(time.Duration(i) * step)
			row := make([]any, len(testKeys))
			row[0] = ts.Format(TimestampLayout)
			for k, key := range testKeys[1:] {
				row[k+1] = vals[key]
			}
			res.Data = append(res.Data, row)
		}
	}
	return res
}

// readingsOf builds n readings with channel c set to the given values in order.
func readingsOf(c Channel, values ...float64) []Reading {
	out := make([]Reading, len(values))
	for i, v := range values {
		out[i].set(c, Sample{Value: v, State: SampleOK})
	}
	return out
}

type fakeSource struct {
	devices []Device
	err     error
}

func (f fakeSource) Devices(context.Context) ([]Device, error) {
	return f.devices, f.err
}

type fakeFetcher struct {
	mu      sync.Mutex
	results map[string]FetchResult
	errs    map[string]error
	block   map[string]bool
	calls   []string
	// perDay, when set, serves FetchDay from this map keyed by id and date.
	perDay map[string]map[string]FetchResult
}

func (f *fakeFetcher) record(id string) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
}

func (f *fakeFetcher) serve(ctx context.Context, id string) (FetchResult, error) {
	if f.block[id] {
		<-ctx.Done()
		return FetchResult{}, ctx.Err()
	}
	if err := f.errs[id]; err != nil {
		return FetchResult{}, err
	}
	return f.results[id], nil
}

func (f *fakeFetcher) FetchDay(ctx context.Context, id string, day time.Time) (FetchResult, error) {
	f.record(id)
	if f.perDay != nil {
		if byDate, ok := f.perDay[id]; ok {
			return byDate[day.Format(DateLayout)], nil
		}
	}
	return f.serve(ctx, id)
}

func (f *fakeFetcher) FetchRange(ctx context.Context, id string, _, _ time.Time) (FetchResult, error) {
	f.record(id)
	return f.serve(ctx, id)
}

type sliceSink struct {
	days []DayExtremes
	err  error
}

func (s *sliceSink) WriteDay(d DayExtremes) error {
	if s.err != nil {
		return s.err
	}
	s.days = append(s.days, d)
	return nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
