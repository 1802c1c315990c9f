package climate

import (
	"sort"

	"github.com/i474232898/climatenet-analytics/internal/common"
)

// ExtremeChannels are the channels tracked by the daily extremes scan.
var ExtremeChannels = []Channel{
	ChannelTemperature,
	ChannelUV,
	ChannelPM25,
	ChannelHumidity,
	ChannelPressure,
	ChannelWindSpeed,
	ChannelRain,
}

// AveragedChannels are the channels summarized for recommendations.
var AveragedChannels = []Channel{
	ChannelTemperature,
	ChannelPM25,
	ChannelHumidity,
	ChannelUV,
	ChannelWindSpeed,
	ChannelRain,
}

// Range is a closed interval of plausible values.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether Min <= v <= Max.
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// ValidRanges holds the plausible value interval of every channel.
var ValidRanges = map[Channel]Range{
	ChannelTemperature: {Min: -50, Max: 60},   // Celsius
	ChannelPM25:        {Min: 0, Max: 1000},   // µg/m³
	ChannelHumidity:    {Min: 0, Max: 100},    // percent
	ChannelUV:          {Min: 0, Max: 15},     // UV index
	ChannelWindSpeed:   {Min: 0, Max: 150},    // km/h
	ChannelRain:        {Min: 0, Max: 50},     // mm
	ChannelPressure:    {Min: 300, Max: 1100}, // hPa
}

// IssueChannels maps a device issue name to the channels it invalidates.
var IssueChannels = map[string][]Channel{
	"Wind Speed and Direction": {ChannelWindSpeed},
	"Rain":                     {ChannelRain},
	"Temperature":              {ChannelTemperature},
	"UV":                       {ChannelUV},
	"Humidity":                 {ChannelHumidity},
	"Air Pollution":            {ChannelPM25},
}

var channelByKey = func() map[string]Channel {
	m := make(map[string]Channel, len(ExtremeChannels))
	for _, c := range ExtremeChannels {
		m[string(c)] = c
	}
	return m
}()

// ParseChannel resolves a raw column name ("wind speed", "PM2_5") to a channel.
func ParseChannel(key string) (Channel, bool) {
	c, ok := channelByKey[common.NormalizeKey(key)]
	return c, ok
}

// ChannelSet is a set of channels scoped to a single invocation.
type ChannelSet map[Channel]struct{}

// Add inserts c into the set.
func (s ChannelSet) Add(c Channel) {
	s[c] = struct{}{}
}

// Has reports whether c is in the set.
func (s ChannelSet) Has(c Channel) bool {
	_, ok := s[c]
	return ok
}

// Clone returns an independent copy of s.
func (s ChannelSet) Clone() ChannelSet {
	out := make(ChannelSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s ChannelSet) Sorted() []Channel {
	out := make([]Channel, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DeclaredProblems returns the channels invalidated by the device's issue list.
// Unknown issue names are ignored.
func DeclaredProblems(d Device) ChannelSet {
	set := make(ChannelSet)
	for _, issue := range d.Issues {
		for _, c := range IssueChannels[issue.Name] {
			set.Add(c)
		}
	}
	return set
}
