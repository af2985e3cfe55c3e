package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-now/internal/metrics"
)

// Service runs the fetch-and-parse pipeline on behalf of a caller and
// remembers the last location that produced a record.
type Service struct {
	fetcher  Fetcher
	store    LocationStore
	geocoder Geocoder
	defaults Defaults
	tz       *time.Location
	log      *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithGeocoder enables coordinate lookups.
func WithGeocoder(g Geocoder) Option {
	return func(s *Service) { s.geocoder = g }
}

// WithTimezone sets the zone used to render the observation time.
func WithTimezone(tz *time.Location) Option {
	return func(s *Service) {
		if tz != nil {
			s.tz = tz
		}
	}
}

// WithLogger sets the logger lookups are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a new Service.
func NewService(fetcher Fetcher, store LocationStore, defaults Defaults, opts ...Option) *Service {
	s := &Service{
		fetcher:  fetcher,
		store:    store,
		defaults: defaults,
		tz:       time.UTC,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Timezone returns the zone records are rendered in.
func (s *Service) Timezone() *time.Location {
	return s.tz
}

// Current fetches and parses the conditions for req. It touches no state.
func (s *Service) Current(ctx context.Context, req Request) (Record, error) {
	if err := req.Validate(); err != nil {
		return Record{}, err
	}

	body, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return Record{}, err
	}

	rec, err := Parse(body, s.tz)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Lookup fetches the conditions for free text entered by a user. Text
// without any letters is rejected before any network call.
func (s *Service) Lookup(ctx context.Context, text string) (Record, error) {
	if !IsValidLocationInput(text) {
		metrics.LookupsTotal.WithLabelValues("invalid_input").Inc()
		return Record{}, fmt.Errorf("%w: %q", ErrInvalidLocation, text)
	}
	return s.lookup(ctx, text)
}

// LookupDefault fetches the conditions for the last saved location, or the
// configured default when nothing has been saved yet.
func (s *Service) LookupDefault(ctx context.Context) (Record, error) {
	return s.lookup(ctx, s.DefaultLocation(ctx))
}

// LookupCoordinates resolves lat/lon to a city and fetches its conditions.
func (s *Service) LookupCoordinates(ctx context.Context, lat, lon float64) (Record, error) {
	if s.geocoder == nil {
		return Record{}, ErrGeocoderUnavailable
	}

	location, err := s.geocoder.ReverseCity(ctx, lat, lon)
	if err != nil {
		metrics.LookupsTotal.WithLabelValues("error").Inc()
		return Record{}, fmt.Errorf("reverse geocode %f,%f: %w", lat, lon, err)
	}
	if location == "" {
		metrics.LookupsTotal.WithLabelValues("error").Inc()
		return Record{}, ErrLocationNotFound
	}

	s.log.Debug("resolved coordinates", "lat", lat, "lon", lon, "location", location)
	return s.lookup(ctx, location)
}

// DefaultLocation returns the location LookupDefault would use.
func (s *Service) DefaultLocation(ctx context.Context) string {
	if s.store == nil {
		return s.defaults.Location
	}

	saved, ok, err := s.store.LastLocation(ctx)
	if err != nil {
		s.log.Warn("load last location failed; using default", "err", err, "default", s.defaults.Location)
		return s.defaults.Location
	}
	if !ok || saved == "" {
		return s.defaults.Location
	}
	return saved
}

func (s *Service) lookup(ctx context.Context, location string) (Record, error) {
	id := uuid.NewString()
	log := s.log.With("lookup_id", id, "location", location, "provider", s.fetcher.Name())

	req := Request{
		Location: location,
		Units:    s.defaults.Units,
		APIKey:   s.defaults.APIKey,
	}

	rec, err := s.Current(ctx, req)
	if err != nil {
		result := lookupResult(err)
		metrics.LookupsTotal.WithLabelValues(result).Inc()
		log.Warn("lookup failed", "result", result, "err", err)
		return Record{}, err
	}

	if s.store != nil {
		if err := s.store.SaveLastLocation(ctx, location); err != nil {
			log.Warn("save last location failed", "err", err)
		}
	}

	metrics.LookupsTotal.WithLabelValues("ok").Inc()
	log.Info("lookup succeeded", "address", rec.Address, "temp", rec.Temp)
	return rec, nil
}

func lookupResult(err error) string {
	var fetchErr *FetchError
	var parseErr *ParseError
	switch {
	case errors.As(err, &fetchErr):
		return "fetch_error"
	case errors.As(err, &parseErr):
		return "parse_error"
	default:
		return "error"
	}
}
