// Package geo resolves device coordinates to a place name.
package geo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
)

var (
	ErrNoAPIKey  = errors.New("geocoder api key is not configured")
	ErrNoAddress = errors.New("no address found for coordinates")
)

// DefaultTimeout bounds a single reverse lookup.
const DefaultTimeout = 10 * time.Second

// reverseFunc matches geocoder.GeocodingReverse.
type reverseFunc func(geocoder.Location) ([]geocoder.Address, error)

type lookup struct {
	addresses []geocoder.Address
	err       error
}

// Resolver reverse geocodes coordinates through the Google geocoding API
// and remembers every answer for the life of the process.
type Resolver struct {
	reverse reverseFunc
	timeout time.Duration

	mu    sync.Mutex
	cache map[[2]float64]string
}

// NewResolver configures the geocoder package with apiKey. A timeout <= 0
// means DefaultTimeout.
func NewResolver(apiKey string, timeout time.Duration) (*Resolver, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	geocoder.ApiKey = apiKey
	r := newResolver(geocoder.GeocodingReverse)
	if timeout > 0 {
		r.timeout = timeout
	}
	return r, nil
}

func newResolver(fn reverseFunc) *Resolver {
	return &Resolver{reverse: fn, timeout: DefaultTimeout, cache: make(map[[2]float64]string)}
}

// Region returns "City, Country" (or the closest available parts).
// The geocoder call takes no context, so it runs on its own goroutine and
// is abandoned when ctx ends or the timeout elapses.
func (r *Resolver) Region(ctx context.Context, lat, lon float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if lat == 0 && lon == 0 {
		return "", ErrNoAddress
	}

	key := [2]float64{lat, lon}
	r.mu.Lock()
	if v, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan lookup, 1)
	go func() {
		addresses, err := r.reverse(geocoder.Location{Latitude: lat, Longitude: lon})
		done <- lookup{addresses: addresses, err: err}
	}()

	var addresses []geocoder.Address
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("reverse geocode %f,%f: %w", lat, lon, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("reverse geocode %f,%f: %w", lat, lon, res.err)
		}
		addresses = res.addresses
	}
	if len(addresses) == 0 {
		return "", ErrNoAddress
	}

	region := regionOf(addresses[0])
	if region == "" {
		return "", ErrNoAddress
	}

	r.mu.Lock()
	r.cache[key] = region
	r.mu.Unlock()
	return region, nil
}

func regionOf(a geocoder.Address) string {
	place := a.City
	if place == "" {
		place = a.State
	}
	switch {
	case place != "" && a.Country != "":
		return place + ", " + a.Country
	case place != "":
		return place
	default:
		return a.Country
	}
}
