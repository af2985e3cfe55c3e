package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-now/internal/metrics"
	"github.com/i474232898/weather-now/internal/weather"
)

const (
	defaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"
	defaultCountry        = "us"
	defaultMaxBody        = 1 << 20
)

// OpenWeatherProvider fetches current conditions by city name from OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	baseURL string
	country string
	maxBody int64
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// OpenWeatherOption customizes an OpenWeatherProvider.
type OpenWeatherOption func(*OpenWeatherProvider)

// WithBaseURL points the provider at another endpoint.
func WithBaseURL(u string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) { p.baseURL = u }
}

// WithCountry sets the country qualifier appended to every location.
func WithCountry(code string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		if code != "" {
			p.country = code
		}
	}
}

// WithBreakerSettings replaces the default circuit breaker.
func WithBreakerSettings(st gobreaker.Settings) OpenWeatherOption {
	return func(p *OpenWeatherProvider) { p.circuit = newBreaker(st) }
}

// NewOpenWeatherProvider creates a provider that calls OpenWeatherMap through client.
func NewOpenWeatherProvider(client *http.Client, opts ...OpenWeatherOption) *OpenWeatherProvider {
	cb := newBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	p := &OpenWeatherProvider{
		name:    "openweathermap",
		baseURL: defaultOpenWeatherURL,
		country: defaultCountry,
		maxBody: defaultMaxBody,
		client:  client,
		circuit: cb,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Fetch issues one GET for req and returns the body unvalidated.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, req weather.Request) ([]byte, error) {
	start := time.Now()
	body, err := p.fetch(ctx, req)
	metrics.ProviderLatency.WithLabelValues(p.name).Observe(time.Since(start).Seconds())

	if err != nil {
		fetchErr := &weather.FetchError{Location: req.Location, Err: err}
		var se *statusError
		if errors.As(err, &se) {
			fetchErr.StatusCode = se.code
		}
		metrics.ProviderCallsTotal.WithLabelValues(p.name, outcome(fetchErr)).Inc()
		return nil, fetchErr
	}

	metrics.ProviderCallsTotal.WithLabelValues(p.name, "ok").Inc()
	return body, nil
}

func (p *OpenWeatherProvider) fetch(ctx context.Context, req weather.Request) ([]byte, error) {
	httpReq, err := http.NewRequest(http.MethodGet, p.requestURL(req), nil)
	if err != nil {
		return nil, stripURL(err)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// requestURL keeps the provider's q, units, appid order and the literal
// ",<country>" suffix; the values themselves are query-escaped.
func (p *OpenWeatherProvider) requestURL(req weather.Request) string {
	var b strings.Builder
	b.WriteString(p.baseURL)
	b.WriteString("?q=")
	b.WriteString(url.QueryEscape(req.Location))
	b.WriteString(",")
	b.WriteString(url.QueryEscape(p.country))
	b.WriteString("&units=")
	b.WriteString(url.QueryEscape(req.Units))
	b.WriteString("&appid=")
	b.WriteString(url.QueryEscape(req.APIKey))
	return b.String()
}

func outcome(err *weather.FetchError) string {
	switch {
	case errors.Is(err, errCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case err.StatusCode != 0:
		return strconv.Itoa(err.StatusCode)
	default:
		return "transport_error"
	}
}
