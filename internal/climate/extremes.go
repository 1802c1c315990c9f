package climate

// ExtremesTracker folds readings into per-channel highs and lows.
// Replacement needs a strictly greater (or lower) value, so the first
// reading seen keeps a tie.
type ExtremesTracker struct {
	channels []Channel
	highest  Extremes
	lowest   Extremes
}

// NewExtremesTracker returns a tracker with every channel unset.
func NewExtremesTracker(channels []Channel) *ExtremesTracker {
	t := &ExtremesTracker{
		channels: channels,
		highest:  make(Extremes, len(channels)),
		lowest:   make(Extremes, len(channels)),
	}
	for _, c := range channels {
		t.highest[c] = nil
		t.lowest[c] = nil
	}
	return t
}

// Observe folds one reading taken at location into the tracker.
func (t *ExtremesTracker) Observe(location string, r Reading) {
	for _, c := range t.channels {
		s := r.Sample(c)
		if s.State != SampleOK {
			continue
		}

		if cur := t.highest[c]; cur == nil || s.Value > cur.Value {
			t.highest[c] = &Extremum{Value: s.Value, Location: location, Timestamp: r.RawTimestamp}
		}
		if cur := t.lowest[c]; cur == nil || s.Value < cur.Value {
			t.lowest[c] = &Extremum{Value: s.Value, Location: location, Timestamp: r.RawTimestamp}
		}
	}
}

// Highest returns the current maxima. The map is owned by the tracker.
func (t *ExtremesTracker) Highest() Extremes {
	return t.highest
}

// Lowest returns the current minima. The map is owned by the tracker.
func (t *ExtremesTracker) Lowest() Extremes {
	return t.lowest
}
