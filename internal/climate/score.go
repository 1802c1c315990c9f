package climate

import "sort"

// MinMeasuredAspects is the number of scored channels that must be
// available for a score to count.
const MinMeasuredAspects = 2

// Score rates how pleasant the averaged weather in s is.
//
//	temperature in [18, 28]  +2
//	pm2_5 <= 25              +2
//	rain < 0.5               +1
//	1 < uv < 3               +1
//	wind_speed < 10          +1
//
// Channels that are unavailable add nothing. With fewer than
// MinMeasuredAspects available channels the score is 0.
func Score(s Summary) int {
	score, measured := 0, 0

	if t, ok := s.Get(ChannelTemperature); ok {
		measured++
		if t >= 18 && t <= 28 {
			score += 2
		}
	}
	if pm, ok := s.Get(ChannelPM25); ok {
		measured++
		if pm <= 25 {
			score += 2
		}
	}
	if rain, ok := s.Get(ChannelRain); ok {
		measured++
		if rain < 0.5 {
			score++
		}
	}
	if uv, ok := s.Get(ChannelUV); ok {
		measured++
		if uv > 1 && uv < 3 {
			score++
		}
	}
	if wind, ok := s.Get(ChannelWindSpeed); ok {
		measured++
		if wind < 10 {
			score++
		}
	}

	if measured < MinMeasuredAspects {
		return 0
	}
	return score
}

// Rank sorts locations by score, highest first, keeping input order for ties.
func Rank(locations []LocationScore) {
	sort.SliceStable(locations, func(i, j int) bool {
		return locations[i].Score > locations[j].Score
	})
}
