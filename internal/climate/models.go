package climate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Channel is a single named measurement type reported by a device.
type Channel string

const (
	ChannelTemperature Channel = "temperature"
	ChannelUV          Channel = "uv"
	ChannelPM25        Channel = "pm2_5"
	ChannelHumidity    Channel = "humidity"
	ChannelPressure    Channel = "pressure"
	ChannelWindSpeed   Channel = "wind_speed"
	ChannelRain        Channel = "rain"
)

// Issue is a known problem reported for a device.
type Issue struct {
	Name string `json:"name"`
}

// Coordinate accepts both JSON numbers and numeric strings.
type Coordinate float64

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*c = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	*c = Coordinate(f)
	return nil
}

// Device is a monitored climate station as described by the device list.
type Device struct {
	ID         string     `json:"generated_id"`
	Name       string     `json:"name"`
	ParentName string     `json:"parent_name"`
	Latitude   Coordinate `json:"latitude"`
	Longitude  Coordinate `json:"longitude"`
	Issues     []Issue    `json:"issues"`
}

// Label returns the human readable location used in results.
func (d Device) Label() string {
	parent := d.ParentName
	if parent == "" {
		parent = "Unknown"
	}
	name := d.Name
	if name == "" {
		name = "Unknown"
	}
	return parent + " - " + name
}

// HasIssues reports whether the device carries any known issue.
func (d Device) HasIssues() bool {
	return len(d.Issues) > 0
}

// FetchResult is the column oriented payload returned by the reading API.
type FetchResult struct {
	Keys []string `json:"keys"`
	Data [][]any  `json:"data"`
}

// UnmarshalJSON drops rows that are not arrays instead of failing the
// whole payload.
func (r *FetchResult) UnmarshalJSON(b []byte) error {
	var raw struct {
		Keys []string          `json:"keys"`
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	r.Keys = raw.Keys
	r.Data = nil
	for _, row := range raw.Data {
		var cells []any
		if err := json.Unmarshal(row, &cells); err != nil || cells == nil {
			continue
		}
		r.Data = append(r.Data, cells)
	}
	return nil
}

// Empty reports whether the payload carries no rows.
func (r FetchResult) Empty() bool {
	return len(r.Data) == 0
}

// SampleState describes what a row carried for one channel.
type SampleState uint8

const (
	// SampleMissing means the column was absent, null or empty.
	SampleMissing SampleState = iota
	// SampleMalformed means a value was present but not a number.
	SampleMalformed
	// SampleOK means Value holds a parsed number.
	SampleOK
)

// Sample is one channel value of a reading.
type Sample struct {
	Value float64
	State SampleState
}

// Reading is one normalized row of a device's time series.
type Reading struct {
	// Timestamp is zero when the raw timestamp could not be parsed.
	Timestamp    time.Time
	RawTimestamp string

	Temperature Sample
	UV          Sample
	PM25        Sample
	Humidity    Sample
	Pressure    Sample
	WindSpeed   Sample
	Rain        Sample
}

// Sample returns the sample recorded for c.
func (r Reading) Sample(c Channel) Sample {
	switch c {
	case ChannelTemperature:
		return r.Temperature
	case ChannelUV:
		return r.UV
	case ChannelPM25:
		return r.PM25
	case ChannelHumidity:
		return r.Humidity
	case ChannelPressure:
		return r.Pressure
	case ChannelWindSpeed:
		return r.WindSpeed
	case ChannelRain:
		return r.Rain
	}
	return Sample{}
}

func (r *Reading) set(c Channel, s Sample) {
	switch c {
	case ChannelTemperature:
		r.Temperature = s
	case ChannelUV:
		r.UV = s
	case ChannelPM25:
		r.PM25 = s
	case ChannelHumidity:
		r.Humidity = s
	case ChannelPressure:
		r.Pressure = s
	case ChannelWindSpeed:
		r.WindSpeed = s
	case ChannelRain:
		r.Rain = s
	}
}

// Extremum is the highest or lowest value seen for a channel on a day.
type Extremum struct {
	Value     float64 `json:"value"`
	Location  string  `json:"location"`
	Timestamp string  `json:"timestamp"`
}

// Extremes maps each channel to its extremum; a nil entry means unset.
type Extremes map[Channel]*Extremum

// columnNames holds the device API column name of channels whose name differs.
var columnNames = map[Channel]string{
	ChannelWindSpeed: "wind speed",
}

// ByColumn keys the extremes by the column names of the daily device API,
// the keys the dashboard and the monthly result files are built on.
func (e Extremes) ByColumn() map[string]*Extremum {
	out := make(map[string]*Extremum, len(e))
	for c, v := range e {
		key := string(c)
		if name, ok := columnNames[c]; ok {
			key = name
		}
		out[key] = v
	}
	return out
}

// DayExtremes is the result of one day's extremes scan.
type DayExtremes struct {
	RunID   string    `json:"runId"`
	Date    string    `json:"date"`
	Highest Extremes  `json:"highest"`
	Lowest  Extremes  `json:"lowest"`
	Devices int       `json:"devices"`
	Created time.Time `json:"createdAt"`
}

// Summary maps each averaged channel to its mean; nil means unavailable.
type Summary map[Channel]*float64

// Get returns the mean for c and whether it was available.
func (s Summary) Get(c Channel) (float64, bool) {
	v, ok := s[c]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// LocationScore is one ranked entry of the recommendations list.
type LocationScore struct {
	DeviceID  string  `json:"deviceId"`
	Location  string  `json:"location"`
	Region    string  `json:"region,omitempty"`
	Score     int     `json:"score"`
	Summary   Summary `json:"summary"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Recommendations is a ranked list produced by one scoring run.
type Recommendations struct {
	RunID     string          `json:"runId"`
	Window    int             `json:"windowDays"`
	Locations []LocationScore `json:"locations"`
	Created   time.Time       `json:"createdAt"`
}
