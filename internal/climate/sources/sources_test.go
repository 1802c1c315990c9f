package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/climatenet-analytics/internal/climate"
)

const devicesJSON = `[
	{"generated_id": "dev-1", "name": "Center", "parent_name": "Yerevan", "latitude": "40.18", "longitude": 44.51, "issues": []},
	{"generated_id": "dev-2", "name": "Park", "parent_name": "Gyumri", "latitude": null, "longitude": "", "issues": [{"name": "Rain"}]}
]`

func checkDevices(t *testing.T, devices []climate.Device) {
	t.Helper()
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].ID != "dev-1" || devices[0].Latitude != 40.18 || devices[0].Longitude != 44.51 {
		t.Fatalf("unexpected first device: %+v", devices[0])
	}
	if devices[1].Latitude != 0 || !devices[1].HasIssues() || devices[1].Issues[0].Name != "Rain" {
		t.Fatalf("unexpected second device: %+v", devices[1])
	}
}

func TestHTTPDeviceSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(devicesJSON))
	}))
	defer srv.Close()

	devices, err := NewHTTPDeviceSource(srv.Client(), srv.URL).Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	checkDevices(t, devices)
}

func TestHTTPDeviceSourceNotConfigured(t *testing.T) {
	if _, err := NewHTTPDeviceSource(http.DefaultClient, "").Devices(context.Background()); err == nil {
		t.Fatalf("expected an error for an empty url")
	}
}

func TestFileDeviceSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devices.json")
	if err := os.WriteFile(path, []byte(devicesJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	devices, err := NewFileDeviceSource(path).Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	checkDevices(t, devices)

	if _, err := NewFileDeviceSource(filepath.Join(dir, "missing.json")).Devices(context.Background()); err == nil {
		t.Fatalf("expected an error for a missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"not": "a list"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileDeviceSource(bad).Devices(context.Background()); err == nil {
		t.Fatalf("expected a decode error")
	}
}

func TestReadingFetcherQueries(t *testing.T) {
	var (
		mu  sync.Mutex
		got []map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		defer mu.Unlock()
		got = append(got, map[string]string{
			"device_id":  q.Get("device_id"),
			"date":       q.Get("date"),
			"start_time": q.Get("start_time"),
			"end_time":   q.Get("end_time"),
		})
		_, _ = w.Write([]byte(`{"keys": ["timestamp", "temperature"], "data": [["2025-06-10 10:00:00", 21.5], ["2025-06-10 11:00:00", "22"]]}`))
	}))
	defer srv.Close()

	f := NewHTTPReadingFetcher(srv.Client(), srv.URL)
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	res, err := f.FetchDay(context.Background(), "dev 1", day)
	if err != nil {
		t.Fatalf("FetchDay: %v", err)
	}
	if len(res.Keys) != 2 || len(res.Data) != 2 || res.Data[0][1] != 21.5 {
		t.Fatalf("unexpected payload: %+v", res)
	}

	if _, err := f.FetchRange(context.Background(), "dev-2", day.AddDate(0, 0, -120), day); err != nil {
		t.Fatalf("FetchRange: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0]["device_id"] != "dev 1" || got[0]["date"] != "2025-06-10" || got[0]["start_time"] != "" {
		t.Fatalf("unexpected day query: %v", got[0])
	}
	if got[1]["device_id"] != "dev-2" || got[1]["start_time"] != "2025-02-10" || got[1]["end_time"] != "2025-06-10" || got[1]["date"] != "" {
		t.Fatalf("unexpected range query: %v", got[1])
	}
}

func TestReadingFetcherErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusBadGateway, "", ErrServerError},
		{"rate limited", http.StatusTooManyRequests, "", ErrRateLimited},
		{"not found", http.StatusNotFound, "", ErrUnexpected},
		{"bad body", http.StatusOK, "<html>", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPReadingFetcher(srv.Client(), srv.URL).FetchDay(context.Background(), "dev-1", time.Now())
			if err == nil {
				t.Fatalf("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if n := calls.Load(); n != 1 {
				t.Fatalf("failed fetches must not be retried, calls = %d", n)
			}
		})
	}
}

func TestReadingFetcherEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	res, err := NewHTTPReadingFetcher(srv.Client(), srv.URL).FetchDay(context.Background(), "dev-1", time.Now())
	if err != nil {
		t.Fatalf("FetchDay: %v", err)
	}
	if !res.Empty() {
		t.Fatalf("expected an empty payload, got %+v", res)
	}
}

func TestReadingFetcherCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request should not be sent")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPReadingFetcher(srv.Client(), srv.URL).FetchDay(ctx, "dev-1", time.Now())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReadingFetcherFailuresDoNotBlockOthers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("device_id") != "healthy" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"keys": ["timestamp", "temperature"], "data": [["2025-06-10 10:00:00", 21]]}`))
	}))
	defer srv.Close()

	f := NewHTTPReadingFetcher(srv.Client(), srv.URL)
	for i := 0; i < 15; i++ {
		if _, err := f.FetchDay(context.Background(), fmt.Sprintf("dead-%d", i), time.Now()); !errors.Is(err, ErrUnexpected) {
			t.Fatalf("dead-%d: expected ErrUnexpected, got %v", i, err)
		}
	}

	res, err := f.FetchDay(context.Background(), "healthy", time.Now())
	if err != nil {
		t.Fatalf("healthy device should still be read: %v", err)
	}
	if len(res.Data) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Data))
	}
}

func TestReadingFetcherMixedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"keys": ["timestamp", "temperature"], "data": [["2025-06-10 10:00:00", 21], "garbage", ["2025-06-10 11:00:00", 22]]}`))
	}))
	defer srv.Close()

	res, err := NewHTTPReadingFetcher(srv.Client(), srv.URL).FetchDay(context.Background(), "dev-1", time.Now())
	if err != nil {
		t.Fatalf("FetchDay: %v", err)
	}
	if got := climate.Normalize(res, climate.RequireTimestamp); len(got) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(got))
	}
}

func TestDeviceSourceCircuitOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPDeviceSource(srv.Client(), srv.URL)
	s.httpCfg.Backoff = NoRetry
	for i := 0; i < 10; i++ {
		if _, err := s.Devices(context.Background()); !errors.Is(err, ErrServerError) {
			t.Fatalf("call %d: expected ErrServerError, got %v", i, err)
		}
	}

	if _, err := s.Devices(context.Background()); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen after repeated failures, got %v", err)
	}
	if n := calls.Load(); n != 10 {
		t.Fatalf("open circuit must not reach the server, calls = %d", n)
	}
}

type staticDevices []climate.Device

func (s staticDevices) Devices(context.Context) ([]climate.Device, error) { return s, nil }

func TestDayScanAfterFailingDevices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("device_id") != "healthy" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"keys": ["timestamp", "temperature"], "data": [["2025-06-10 10:00:00", 21]]}`))
	}))
	defer srv.Close()

	var devices staticDevices
	for i := 0; i < 12; i++ {
		devices = append(devices, climate.Device{ID: fmt.Sprintf("dead-%d", i), Name: "dead"})
	}
	devices = append(devices, climate.Device{ID: "healthy", Name: "Center", ParentName: "Yerevan"})

	svc := climate.NewService(devices, NewHTTPReadingFetcher(srv.Client(), srv.URL), nil, climate.Options{}, nil)
	got, err := svc.AnalyzeDay(context.Background(), time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("AnalyzeDay: %v", err)
	}
	if got.Devices != 1 {
		t.Fatalf("expected the healthy device to contribute, got %d devices", got.Devices)
	}
	if ex := got.Highest[climate.ChannelTemperature]; ex == nil || ex.Location != "Yerevan - Center" {
		t.Fatalf("unexpected temperature extremum: %+v", ex)
	}
}
