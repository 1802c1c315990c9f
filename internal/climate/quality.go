package climate

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// MaxInvalidRate is the share of out-of-range values above which a
	// channel is dropped for the device.
	MaxInvalidRate = 0.3
	// PM25FaultMean is the pm2_5 mean above which the sensor is assumed faulty.
	PM25FaultMean = 500.0
)

// QualityReport is the outcome of filtering one device's readings.
type QualityReport struct {
	Summary Summary
	// Problematic holds declared channels plus channels dropped for their
	// invalid rate.
	Problematic ChannelSet
	// RateExcluded lists channels dropped for their invalid rate, in
	// AveragedChannels order.
	RateExcluded []Channel
	// SensorFault lists channels whose mean was rejected as implausible.
	SensorFault []Channel
	Invalid     map[Channel]int
	Total       int
}

// InvalidRate returns the invalid share of c over all entries.
func (q QualityReport) InvalidRate(c Channel) float64 {
	if q.Total == 0 {
		return 0
	}
	return float64(q.Invalid[c]) / float64(q.Total)
}

// FilterQuality computes per-channel means of readings, skipping declared
// channels, out-of-range values and channels whose invalid rate is too
// high. declared is not modified.
func FilterQuality(readings []Reading, declared ChannelSet) QualityReport {
	problematic := declared.Clone()
	values := make(map[Channel][]float64)
	invalid := make(map[Channel]int)

	for _, r := range readings {
		for _, c := range AveragedChannels {
			if problematic.Has(c) {
				continue
			}
			s := r.Sample(c)
			switch s.State {
			case SampleMissing:
				continue
			case SampleMalformed:
				invalid[c]++
				continue
			}
			if rng, ok := ValidRanges[c]; ok && !rng.Contains(s.Value) {
				invalid[c]++
				continue
			}
			values[c] = append(values[c], s.Value)
		}
	}

	report := QualityReport{
		Summary:     make(Summary, len(AveragedChannels)),
		Problematic: problematic,
		Invalid:     invalid,
		Total:       len(readings),
	}

	for _, c := range AveragedChannels {
		if report.Total > 0 && float64(invalid[c])/float64(report.Total) > MaxInvalidRate {
			problematic.Add(c)
			delete(values, c)
			report.RateExcluded = append(report.RateExcluded, c)
		}
	}

	for _, c := range AveragedChannels {
		vs := values[c]
		if len(vs) == 0 {
			report.Summary[c] = nil
			continue
		}
		mean := stat.Mean(vs, nil)
		if c == ChannelPM25 && mean > PM25FaultMean {
			report.Summary[c] = nil
			report.SensorFault = append(report.SensorFault, c)
			continue
		}
		rounded := round2(mean)
		report.Summary[c] = &rounded
	}
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
