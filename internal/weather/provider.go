package weather

import (
	"context"
)

// Fetcher abstracts the weather data source. Fetch returns the raw response
// body; any failure is a *FetchError.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// LocationStore persists the last location that produced a record.
type LocationStore interface {
	LastLocation(ctx context.Context) (string, bool, error)
	SaveLastLocation(ctx context.Context, location string) error
}

// Geocoder turns coordinates into a "<city>,<state>" location string.
type Geocoder interface {
	ReverseCity(ctx context.Context, lat, lon float64) (string, error)
}
