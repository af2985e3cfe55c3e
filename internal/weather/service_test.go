package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeFetcher struct {
	mu    sync.Mutex
	body  []byte
	err   error
	calls []Request
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(_ context.Context, req Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

type fakeStore struct {
	location string
	saved    bool
	loadErr  error
	saveErr  error
	saves    int
}

func (s *fakeStore) LastLocation(context.Context) (string, bool, error) {
	return s.location, s.saved, s.loadErr
}

func (s *fakeStore) SaveLastLocation(_ context.Context, location string) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.location, s.saved = location, true
	return nil
}

type fakeGeocoder struct {
	location string
	err      error
}

func (g fakeGeocoder) ReverseCity(context.Context, float64, float64) (string, error) {
	return g.location, g.err
}

var testDefaults = Defaults{Location: "palo alto,ca", Units: UnitsMetric, APIKey: "key"}

func TestServiceLookupSavesLocation(t *testing.T) {
	f := &fakeFetcher{body: []byte(paloAltoFixture)}
	st := &fakeStore{}
	svc := NewService(f, st, testDefaults)

	rec, err := svc.Lookup(context.Background(), "Palo Alto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Address != "Palo Alto, US" {
		t.Fatalf("expected address %q, got %q", "Palo Alto, US", rec.Address)
	}

	want := Request{Location: "Palo Alto", Units: UnitsMetric, APIKey: "key"}
	if len(f.calls) != 1 || f.calls[0] != want {
		t.Fatalf("expected one fetch with %+v, got %+v", want, f.calls)
	}
	if st.location != "Palo Alto" {
		t.Fatalf("expected last location %q, got %q", "Palo Alto", st.location)
	}
}

func TestServiceLookupRejectsInvalidInput(t *testing.T) {
	f := &fakeFetcher{body: []byte(paloAltoFixture)}
	st := &fakeStore{}
	svc := NewService(f, st, testDefaults)

	_, err := svc.Lookup(context.Background(), "12345")
	if !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation, got %v", err)
	}
	if len(f.calls) != 0 {
		t.Fatalf("expected no fetch, got %d", len(f.calls))
	}
	if st.saves != 0 {
		t.Fatalf("expected no save, got %d", st.saves)
	}
}

func TestServiceFailuresKeepTypesAndDoNotSave(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
		check   func(error) bool
	}{
		{
			name:    "fetch error",
			fetcher: &fakeFetcher{err: &FetchError{Location: "Nowhere", StatusCode: 404, Err: errors.New("not found")}},
			check: func(err error) bool {
				var fe *FetchError
				return errors.As(err, &fe) && fe.StatusCode == 404
			},
		},
		{
			name:    "parse error",
			fetcher: &fakeFetcher{body: []byte(`{"cod":"404","message":"city not found"}`)},
			check: func(err error) bool {
				var pe *ParseError
				return errors.As(err, &pe) && errors.Is(err, ErrMissingField)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStore{}
			svc := NewService(tt.fetcher, st, testDefaults)

			rec, err := svc.Lookup(context.Background(), "Nowhere")
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec != (Record{}) {
				t.Fatalf("expected zero record, got %+v", rec)
			}
			if st.saves != 0 {
				t.Fatalf("expected no save after failure, got %d", st.saves)
			}
		})
	}
}

func TestServiceLookupDefault(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStore
		want  string
	}{
		{"nothing saved", &fakeStore{}, "palo alto,ca"},
		{"saved location", &fakeStore{location: "Seattle", saved: true}, "Seattle"},
		{"store error", &fakeStore{loadErr: errors.New("disk gone")}, "palo alto,ca"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{body: []byte(paloAltoFixture)}
			svc := NewService(f, tt.store, testDefaults)

			if got := svc.DefaultLocation(context.Background()); got != tt.want {
				t.Fatalf("DefaultLocation = %q, want %q", got, tt.want)
			}
			if _, err := svc.LookupDefault(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.calls[0].Location != tt.want {
				t.Fatalf("expected fetch for %q, got %q", tt.want, f.calls[0].Location)
			}
		})
	}
}

func TestServiceSaveFailureDoesNotFailLookup(t *testing.T) {
	f := &fakeFetcher{body: []byte(paloAltoFixture)}
	st := &fakeStore{saveErr: errors.New("read-only")}
	svc := NewService(f, st, testDefaults)

	if _, err := svc.Lookup(context.Background(), "Palo Alto"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.saves != 1 {
		t.Fatalf("expected one save attempt, got %d", st.saves)
	}
}

func TestServiceCurrentValidatesRequest(t *testing.T) {
	f := &fakeFetcher{body: []byte(paloAltoFixture)}
	svc := NewService(f, nil, Defaults{Location: "palo alto,ca", Units: UnitsMetric})

	_, err := svc.LookupDefault(context.Background())
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest without api key, got %v", err)
	}
	if len(f.calls) != 0 {
		t.Fatalf("expected no fetch, got %d", len(f.calls))
	}
}

func TestServiceLookupCoordinates(t *testing.T) {
	t.Run("no geocoder", func(t *testing.T) {
		svc := NewService(&fakeFetcher{}, nil, testDefaults)
		if _, err := svc.LookupCoordinates(context.Background(), 37.44, -122.14); !errors.Is(err, ErrGeocoderUnavailable) {
			t.Fatalf("expected ErrGeocoderUnavailable, got %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewService(&fakeFetcher{}, nil, testDefaults, WithGeocoder(fakeGeocoder{err: ErrLocationNotFound}))
		if _, err := svc.LookupCoordinates(context.Background(), 0, 0); !errors.Is(err, ErrLocationNotFound) {
			t.Fatalf("expected ErrLocationNotFound, got %v", err)
		}
	})

	t.Run("resolved", func(t *testing.T) {
		f := &fakeFetcher{body: []byte(paloAltoFixture)}
		st := &fakeStore{}
		svc := NewService(f, st, testDefaults, WithGeocoder(fakeGeocoder{location: "Palo Alto,California"}))

		if _, err := svc.LookupCoordinates(context.Background(), 37.44, -122.14); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.calls[0].Location != "Palo Alto,California" {
			t.Fatalf("expected fetch for geocoded city, got %q", f.calls[0].Location)
		}
		if st.location != "Palo Alto,California" {
			t.Fatalf("expected geocoded city saved, got %q", st.location)
		}
	})
}

func TestServiceConcurrentLookups(t *testing.T) {
	f := &fakeFetcher{body: []byte(paloAltoFixture)}
	svc := NewService(f, nil, testDefaults)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Lookup(context.Background(), "Palo Alto"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(f.calls) != 8 {
		t.Fatalf("expected 8 fetches, got %d", len(f.calls))
	}
}
