// Package render turns weather records into what a user sees.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/i474232898/weather-now/internal/weather"
)

const (
	clockLayout = "03:04 PM"
	iconURLFmt  = "https://openweathermap.org/img/wn/%s@2x.png"
)

// View is a Record plus the fields a display needs but the record leaves raw.
type View struct {
	weather.Record
	SunriseText string `json:"sunriseText"`
	SunsetText  string `json:"sunsetText"`
	IconURL     string `json:"iconUrl"`
}

// FromRecord builds a View, formatting sunrise and sunset in tz (UTC if nil).
func FromRecord(rec weather.Record, tz *time.Location) View {
	return View{
		Record:      rec,
		SunriseText: Clock(rec.Sunrise, tz),
		SunsetText:  Clock(rec.Sunset, tz),
		IconURL:     IconURL(rec.WeatherIcon),
	}
}

// Clock formats UNIX seconds as "hh:mm AM" in tz.
func Clock(epoch int64, tz *time.Location) string {
	if tz == nil {
		tz = time.UTC
	}
	return time.Unix(epoch, 0).In(tz).Format(clockLayout)
}

// IconURL returns the provider's image for an icon code.
func IconURL(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf(iconURLFmt, code)
}

// WriteText prints v in the same order the app screen shows it.
func WriteText(w io.Writer, v View) error {
	_, err := fmt.Fprintf(w,
		"%s\n%s\n%s\n\n%s\n%s\n%s\n\nSunrise:    %s\nSunset:     %s\nWind:       %s\nPressure:   %s\nHumidity:   %s\nFeels like: %s\n",
		v.Address,
		v.UpdatedAtText,
		v.WeatherDescription,
		v.Temp,
		v.TempMin,
		v.TempMax,
		v.SunriseText,
		v.SunsetText,
		v.WindSpeed,
		v.Pressure,
		v.Humidity,
		v.FeelsLike,
	)
	return err
}
