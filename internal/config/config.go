package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	defaultDataURL    = "https://emvnh9buoh.execute-api.us-east-1.amazonaws.com/getData"
	defaultDevicesURL = "https://climatenet.am/device_inner/list"
)

type AppConfig struct {
	Port  string `validate:"required,numeric"`
	Debug bool

	// Reading fetcher and device list endpoints.
	DataURL    string `validate:"required,url"`
	DevicesURL string `validate:"omitempty,url"`
	// DevicesFile, when set, replaces DevicesURL with a static JSON file.
	DevicesFile string

	// HTTPTimeout bounds every outbound call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	LookbackDays int `validate:"min=1,max=3650"`
	MinEntries   int `validate:"min=1"`
	FetchWorkers int `validate:"min=1,max=64"`

	// RefreshInterval controls how often today's extremes are recomputed.
	RefreshInterval time.Duration `validate:"gt=0"`
	// RecommendationsAt is the daily UTC time ("HH:MM") of the ranking job.
	RecommendationsAt string `validate:"required,datetime=15:04"`

	// In-memory cache retention.
	StoreMaxHistory int           `validate:"min=0"` // max number of cached days (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"min=0"` // max age of cached results (0 = unlimited)

	OutputDir      string `validate:"required"`
	GeocoderAPIKey string
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		Debug:             getenvBool("DEBUG", false),
		DataURL:           getenvDefault("CLIMATENET_DATA_URL", defaultDataURL),
		DevicesURL:        getenvDefault("CLIMATENET_DEVICES_URL", defaultDevicesURL),
		DevicesFile:       os.Getenv("DEVICES_FILE"),
		LookbackDays:      getenvInt("LOOKBACK_DAYS", 120),
		MinEntries:        getenvInt("MIN_ENTRIES", 10),
		FetchWorkers:      getenvInt("FETCH_WORKERS", 1),
		RecommendationsAt: getenvDefault("RECOMMENDATIONS_AT", "03:00"),
		StoreMaxHistory:   getenvInt("STORE_MAX_HISTORY", 62),
		OutputDir:         getenvDefault("OUTPUT_DIR", "monthly_analysis"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "1h"); err != nil {
		return nil, err
	}
	// roughly two months of daily results
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "1488h"); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	s := getenvDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
