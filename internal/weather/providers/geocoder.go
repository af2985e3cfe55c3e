package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-now/internal/weather"
)

// ReverseFunc resolves coordinates to candidate addresses, best match first.
type ReverseFunc func(geocoder.Location) ([]geocoder.Address, error)

// GoogleGeocoder resolves coordinates through the Google Geocoding API.
type GoogleGeocoder struct {
	reverse ReverseFunc
}

// NewGoogleGeocoder configures the geocoder package with apiKey. The
// underlying client keeps its key in package state, so only one key per
// process is supported.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{reverse: geocoder.GeocodingReverse}
}

// NewGeocoderWith builds a geocoder around a custom resolver.
func NewGeocoderWith(fn ReverseFunc) *GoogleGeocoder {
	return &GoogleGeocoder{reverse: fn}
}

// ReverseCity returns "<city>,<state>" for the first address found, or just
// the city when no state is known. The geocoding client has no context
// support; ctx is only checked before the call.
func (g *GoogleGeocoder) ReverseCity(ctx context.Context, lat, lon float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	addrs, err := g.reverse(geocoder.Location{Latitude: lat, Longitude: lon})
	if err != nil {
		return "", fmt.Errorf("geocoding reverse: %w", err)
	}
	if len(addrs) == 0 {
		return "", weather.ErrLocationNotFound
	}

	city := strings.TrimSpace(addrs[0].City)
	state := strings.TrimSpace(addrs[0].State)
	if city == "" {
		return "", weather.ErrLocationNotFound
	}
	if state == "" {
		return city, nil
	}
	return city + "," + state, nil
}
