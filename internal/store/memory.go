package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/climatenet-analytics/internal/climate"
)

var (
	// ErrNotFound is returned when nothing is cached for the requested key.
	ErrNotFound = errors.New("no cached result")
)

// MemoryStore is a concurrency-safe in-memory cache of scan results.
type MemoryStore struct {
	mu sync.RWMutex

	// key: date (YYYY-MM-DD)
	extremes        map[string]climate.DayExtremes
	recommendations *climate.Recommendations

	// retention configuration
	maxHistory int           // max number of days kept
	maxAge     time.Duration // max age of a cached result

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		extremes:   make(map[string]climate.DayExtremes),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveExtremes stores the extremes of one day and enforces retention.
func (s *MemoryStore) SaveExtremes(day climate.DayExtremes) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.extremes[day.Date] = day

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		for date, d := range s.extremes {
			if d.Created.Before(cutoff) {
				delete(s.extremes, date)
			}
		}
	}

	// Enforce retention by count, dropping the oldest dates first.
	if s.maxHistory > 0 && len(s.extremes) > s.maxHistory {
		dates := make([]string, 0, len(s.extremes))
		for date := range s.extremes {
			dates = append(dates, date)
		}
		sort.Strings(dates)
		for _, date := range dates[:len(dates)-s.maxHistory] {
			delete(s.extremes, date)
		}
	}
}

// GetExtremes returns the cached extremes for date.
func (s *MemoryStore) GetExtremes(date string) (climate.DayExtremes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.extremes[date]
	if !ok || s.expired(d.Created) {
		return climate.DayExtremes{}, ErrNotFound
	}
	return d, nil
}

// SaveRecommendations replaces the cached ranking.
func (s *MemoryStore) SaveRecommendations(rec climate.Recommendations) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations = &rec
}

// GetRecommendations returns the cached ranking.
func (s *MemoryStore) GetRecommendations() (climate.Recommendations, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.recommendations == nil || s.expired(s.recommendations.Created) {
		return climate.Recommendations{}, ErrNotFound
	}
	return *s.recommendations, nil
}

func (s *MemoryStore) expired(created time.Time) bool {
	return s.maxAge > 0 && created.Before(s.now().Add(-s.maxAge))
}
