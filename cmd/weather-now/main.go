package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	httpapi "github.com/i474232898/weather-now/internal/api/http"
	"github.com/i474232898/weather-now/internal/config"
	"github.com/i474232898/weather-now/internal/logging"
	"github.com/i474232898/weather-now/internal/render"
	"github.com/i474232898/weather-now/internal/scheduler"
	"github.com/i474232898/weather-now/internal/store"
	"github.com/i474232898/weather-now/internal/weather"
	"github.com/i474232898/weather-now/internal/weather/providers"
)

type cli struct {
	Serve   serveCmd   `cmd:"" default:"1" help:"Run the HTTP API and the refresh scheduler."`
	Current currentCmd `cmd:"" help:"Print the current conditions for a location and exit."`
}

// deps is built once per run and bound into every command.
type deps struct {
	cfg     *config.AppConfig
	log     *slog.Logger
	service *weather.Service
	store   closer
}

type closer interface {
	Close() error
}

type serveCmd struct{}

func (serveCmd) Run(d *deps) error {
	sched := scheduler.New(d.cfg.RefreshInterval, d.service, d.log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(d.service)

	errCh := make(chan error, 1)
	go func() {
		d.log.Info("starting server", "port", d.cfg.Port)
		errCh <- app.Listen(":" + d.cfg.Port)
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		d.log.Error("error during shutdown", "err", err)
	}
	return nil
}

type currentCmd struct {
	Location string `arg:"" optional:"" help:"City to look up (defaults to the last saved location)."`
	Lat      string `help:"Latitude for a coordinate lookup."`
	Lon      string `help:"Longitude for a coordinate lookup."`
}

func (c currentCmd) Run(d *deps) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.HTTPTimeout+5*time.Second)
	defer cancel()

	var (
		rec weather.Record
		err error
	)
	switch {
	case c.Lat != "" || c.Lon != "":
		lat, lon, perr := parseCoordinates(c.Lat, c.Lon)
		if perr != nil {
			return perr
		}
		rec, err = d.service.LookupCoordinates(ctx, lat, lon)
	case c.Location != "":
		rec, err = d.service.Lookup(ctx, c.Location)
	default:
		rec, err = d.service.LookupDefault(ctx)
	}
	if err != nil {
		return describe(err)
	}

	return render.WriteText(os.Stdout, render.FromRecord(rec, d.cfg.Timezone))
}

func parseCoordinates(latText, lonText string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid --lat %q", latText)
	}
	lon, err := strconv.ParseFloat(lonText, 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid --lon %q", lonText)
	}
	return lat, lon, nil
}

// describe turns a lookup failure into the message shown to the user.
func describe(err error) error {
	var fetchErr *weather.FetchError
	var parseErr *weather.ParseError
	switch {
	case errors.Is(err, weather.ErrInvalidLocation):
		return errors.New("please enter a valid location")
	case errors.As(err, &fetchErr):
		return fmt.Errorf("sorry, no results: %w", err)
	case errors.As(err, &parseErr):
		return fmt.Errorf("sorry, the weather provider sent an unreadable response: %w", err)
	default:
		return err
	}
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("weather-now"),
		kong.Description("Current weather conditions from OpenWeatherMap."),
		kong.UsageOnError(),
	)

	d, err := build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer d.store.Close()

	kctx.FatalIfErrorf(kctx.Run(d))
}

func build() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.New(os.Stderr, cfg.AppEnv, cfg.LogLevel, "weather-now")
	slog.SetDefault(log)

	var st interface {
		weather.LocationStore
		closer
	}
	if cfg.StorePath != "" {
		sq, err := store.NewSQLite(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		st = sq
	} else {
		st = store.NewMemoryStore()
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	provider := providers.NewOpenWeatherProvider(httpClient, providers.WithCountry(cfg.Country))

	opts := []weather.Option{
		weather.WithTimezone(cfg.Timezone),
		weather.WithLogger(log),
	}
	if cfg.GeocoderAPIKey != "" {
		opts = append(opts, weather.WithGeocoder(providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)))
	}

	if cfg.OpenWeatherAPIKey == "" {
		log.Warn("OPENWEATHER_API_KEY is not set; lookups will fail")
	}

	return &deps{
		cfg:     cfg,
		log:     log,
		service: weather.NewService(provider, st, cfg.Defaults(), opts...),
		store:   st,
	}, nil
}
