package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/climatenet-analytics/internal/climate"
)

const queryDateLayout = "2006-01-02"

// HTTPReadingFetcher implements climate.ReadingFetcher against the
// ClimateNet getData endpoint.
type HTTPReadingFetcher struct {
	baseURL string
	httpCfg HTTPClientConfig
}

// NewHTTPReadingFetcher makes a single attempt per call; a failed device
// is reported to the caller rather than retried. There is no circuit
// breaker here: one device failing must not keep the next from being read.
func NewHTTPReadingFetcher(client *http.Client, baseURL string) *HTTPReadingFetcher {
	return &HTTPReadingFetcher{
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: NoRetry,
		},
	}
}

func (f *HTTPReadingFetcher) FetchDay(ctx context.Context, deviceID string, day time.Time) (climate.FetchResult, error) {
	values := url.Values{}
	values.Set("device_id", deviceID)
	values.Set("date", day.Format(queryDateLayout))
	return f.fetch(ctx, values)
}

func (f *HTTPReadingFetcher) FetchRange(ctx context.Context, deviceID string, from, to time.Time) (climate.FetchResult, error) {
	values := url.Values{}
	values.Set("device_id", deviceID)
	values.Set("start_time", from.Format(queryDateLayout))
	values.Set("end_time", to.Format(queryDateLayout))
	return f.fetch(ctx, values)
}

func (f *HTTPReadingFetcher) fetch(ctx context.Context, values url.Values) (climate.FetchResult, error) {
	if f.baseURL == "" {
		return climate.FetchResult{}, fmt.Errorf("readings url is not configured")
	}

	var payload climate.FetchResult
	u := fmt.Sprintf("%s?%s", f.baseURL, values.Encode())
	if err := getJSON(ctx, f.httpCfg, nil, u, &payload); err != nil {
		return climate.FetchResult{}, err
	}
	return payload, nil
}
