package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLocation is returned when location text contains no letters.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrInvalidRequest is returned when a Request fails validation.
	ErrInvalidRequest = errors.New("invalid weather request")
	// ErrGeocoderUnavailable is returned for coordinate lookups when no geocoder is configured.
	ErrGeocoderUnavailable = errors.New("reverse geocoding is not configured")
	// ErrLocationNotFound is returned when coordinates resolve to no address.
	ErrLocationNotFound = errors.New("no location found for coordinates")

	ErrEmptyBody    = errors.New("empty body")
	ErrInvalidJSON  = errors.New("body is not valid JSON")
	ErrMissingField = errors.New("missing field")
	ErrWrongType    = errors.New("wrong type")
)

// FetchError reports a failed call to the weather provider. StatusCode is
// zero when no HTTP response was received.
type FetchError struct {
	Location   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch weather for %q: status %d: %v", e.Location, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch weather for %q: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a provider body that could not be turned into a Record.
// Field is the JSON path at fault, empty for document-level failures.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse weather response: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("parse weather response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
