package climate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the format of the "timestamp" column.
const TimestampLayout = "2006-01-02 15:04:05"

const timestampKey = "timestamp"

// TimestampPolicy decides what the normalizer does with undated rows.
type TimestampPolicy int

const (
	// RequireTimestamp drops rows whose timestamp does not parse.
	RequireTimestamp TimestampPolicy = iota
	// AllowUndated keeps such rows with a zero Timestamp.
	AllowUndated
)

// Normalize converts a column/row payload into typed readings.
// Rows whose length differs from the key list are skipped.
func Normalize(res FetchResult, policy TimestampPolicy) []Reading {
	if res.Empty() || len(res.Keys) == 0 {
		return nil
	}

	tsIdx := -1
	channelIdx := make(map[Channel]int)
	for i, k := range res.Keys {
		if k == timestampKey {
			tsIdx = i
			continue
		}
		if c, ok := ParseChannel(k); ok {
			if _, dup := channelIdx[c]; !dup {
				channelIdx[c] = i
			}
		}
	}

	out := make([]Reading, 0, len(res.Data))
	for _, row := range res.Data {
		if len(row) != len(res.Keys) {
			continue
		}

		var r Reading
		if tsIdx >= 0 {
			if raw, ok := row[tsIdx].(string); ok {
				r.RawTimestamp = raw
				if ts, err := time.Parse(TimestampLayout, raw); err == nil {
					r.Timestamp = ts
				}
			}
		}
		if r.Timestamp.IsZero() && policy == RequireTimestamp {
			continue
		}

		for c, i := range channelIdx {
			r.set(c, parseSample(row[i]))
		}
		out = append(out, r)
	}
	return out
}

// parseSample interprets one raw cell. Null, empty and "null" count as missing.
func parseSample(v any) Sample {
	switch x := v.(type) {
	case nil:
		return Sample{}
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Sample{State: SampleMalformed}
		}
		return Sample{Value: x, State: SampleOK}
	case int:
		return Sample{Value: float64(x), State: SampleOK}
	case int64:
		return Sample{Value: float64(x), State: SampleOK}
	case json.Number:
		return parseString(x.String())
	case string:
		return parseString(x)
	default:
		return parseString(fmt.Sprint(x))
	}
}

func parseString(s string) Sample {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return Sample{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Sample{State: SampleMalformed}
	}
	return Sample{Value: f, State: SampleOK}
}

// OnDay returns the readings whose timestamp falls on the calendar day of day.
func OnDay(readings []Reading, day time.Time) []Reading {
	y, m, d := day.Date()
	var out []Reading
	for _, r := range readings {
		if r.Timestamp.IsZero() {
			continue
		}
		ry, rm, rd := r.Timestamp.Date()
		if ry == y && rm == m && rd == d {
			out = append(out, r)
		}
	}
	return out
}
