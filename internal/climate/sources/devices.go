package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/climatenet-analytics/internal/climate"
)

// HTTPDeviceSource reads the device list from the ClimateNet API.
type HTTPDeviceSource struct {
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewHTTPDeviceSource(client *http.Client, url string) *HTTPDeviceSource {
	return &HTTPDeviceSource{
		url: url,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newBreaker("climatenet-devices"),
	}
}

func (s *HTTPDeviceSource) Devices(ctx context.Context) ([]climate.Device, error) {
	if s.url == "" {
		return nil, fmt.Errorf("device list url is not configured")
	}
	var devices []climate.Device
	if err := getJSON(ctx, s.httpCfg, s.circuit, s.url, &devices); err != nil {
		return nil, fmt.Errorf("fetch device list: %w", err)
	}
	return devices, nil
}

// FileDeviceSource reads the device list from a static JSON file.
type FileDeviceSource struct {
	path string
}

func NewFileDeviceSource(path string) *FileDeviceSource {
	return &FileDeviceSource{path: path}
}

func (s *FileDeviceSource) Devices(_ context.Context) ([]climate.Device, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read devices file: %w", err)
	}
	var devices []climate.Device
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil, fmt.Errorf("decode devices file %s: %w", s.path, err)
	}
	return devices, nil
}
