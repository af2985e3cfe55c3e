package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weather-now/internal/render"
	"github.com/i474232898/weather-now/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		var (
			rec weather.Record
			err error
		)
		if city := utils.CopyString(c.Query("city")); city != "" {
			rec, err = service.Lookup(c.UserContext(), city)
		} else {
			rec, err = service.LookupDefault(c.UserContext())
		}
		if err != nil {
			return lookupError(err)
		}

		return c.JSON(render.FromRecord(rec, service.Timezone()))
	})

	v1.Get("/weather/coordinates", func(c *fiber.Ctx) error {
		q := coordinatesQuery{
			Lat: c.Query("lat"),
			Lon: c.Query("lon"),
		}
		lat, lon, err := q.parse()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := service.LookupCoordinates(c.UserContext(), lat, lon)
		if err != nil {
			return lookupError(err)
		}

		return c.JSON(render.FromRecord(rec, service.Timezone()))
	})

	v1.Get("/location", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"location": service.DefaultLocation(c.UserContext()),
		})
	})
}

// coordinatesQuery holds query parameters for the coordinates endpoint.
type coordinatesQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

func (q coordinatesQuery) parse() (float64, float64, error) {
	if err := validate.Struct(q); err != nil {
		return 0, 0, errors.New("lat and lon must be valid coordinates")
	}
	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// lookupError maps service failures to HTTP errors. Fetch and parse
// failures stay distinguishable to clients.
func lookupError(err error) error {
	var fetchErr *weather.FetchError
	var parseErr *weather.ParseError

	switch {
	case errors.Is(err, weather.ErrInvalidLocation):
		return fiber.NewError(fiber.StatusBadRequest, "please enter a valid location")
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no location found for coordinates")
	case errors.Is(err, weather.ErrGeocoderUnavailable):
		return fiber.NewError(fiber.StatusNotImplemented, "coordinate lookups are not configured")
	case errors.Is(err, weather.ErrInvalidRequest):
		return fiber.NewError(fiber.StatusInternalServerError, "weather provider is not configured")
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode == http.StatusNotFound {
			return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
		}
		return fiber.NewError(fiber.StatusBadGateway, "weather provider unavailable")
	case errors.As(err, &parseErr):
		return fiber.NewError(fiber.StatusBadGateway, "weather provider returned an unreadable response")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}
