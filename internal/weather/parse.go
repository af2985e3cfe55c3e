package weather

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const updatedAtLayout = "02/01/2006 03:04 PM"

// maxReading bounds numeric readings so rounding stays within int64.
const maxReading = 1 << 62

// Parse converts an OpenWeatherMap current-weather body into a Record.
// Timestamps are rendered in tz, or UTC when tz is nil. On failure the
// returned error is a *ParseError and the Record is zero.
func Parse(body []byte, tz *time.Location) (Record, error) {
	if tz == nil {
		tz = time.UTC
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return Record{}, &ParseError{Err: ErrEmptyBody}
	}
	if !gjson.ValidBytes(body) {
		return Record{}, &ParseError{Err: ErrInvalidJSON}
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return Record{}, &ParseError{Err: fmt.Errorf("%w: document is not an object", ErrWrongType)}
	}

	f := &fields{doc: doc}
	f.object("main")
	f.object("sys")
	f.object("wind")
	f.nonEmptyArray("weather")
	f.object("weather.0")

	var rec Record
	rec.Temp = celsius(f.float("main.temp"))
	rec.TempMin = "Min Temp: " + celsius(f.float("main.temp_min"))
	rec.TempMax = "Max Temp: " + celsius(f.float("main.temp_max"))
	rec.FeelsLike = celsius(f.float("main.feels_like"))
	rec.Pressure = f.text("main.pressure") + " inHg"
	rec.Humidity = f.text("main.humidity") + "%"

	rec.Sunrise = f.epoch("sys.sunrise")
	rec.Sunset = f.epoch("sys.sunset")
	country := f.text("sys.country")

	rec.WindSpeed = f.text("wind.speed") + "mph"
	rec.WeatherDescription = f.text("weather.0.description")
	rec.WeatherIcon = f.text("weather.0.icon")

	dt := f.epoch("dt")
	rec.UpdatedAtText = "Updated at: " + time.Unix(dt, 0).In(tz).Format(updatedAtLayout)
	rec.Address = f.text("name") + ", " + country

	if f.err != nil {
		return Record{}, f.err
	}
	return rec, nil
}

func celsius(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10) + "°C"
}

// fields reads required values out of doc, keeping the first failure.
// Once a failure is recorded every accessor returns a zero value.
type fields struct {
	doc gjson.Result
	err error
}

func (f *fields) fail(path string, err error) {
	if f.err == nil {
		f.err = &ParseError{Field: path, Err: err}
	}
}

func (f *fields) lookup(path string) (gjson.Result, bool) {
	if f.err != nil {
		return gjson.Result{}, false
	}
	v := f.doc.Get(path)
	if !v.Exists() {
		f.fail(path, ErrMissingField)
		return gjson.Result{}, false
	}
	return v, true
}

func (f *fields) object(path string) {
	v, ok := f.lookup(path)
	if ok && !v.IsObject() {
		f.fail(path, fmt.Errorf("%w: want object", ErrWrongType))
	}
}

func (f *fields) nonEmptyArray(path string) {
	v, ok := f.lookup(path)
	if !ok {
		return
	}
	if !v.IsArray() {
		f.fail(path, fmt.Errorf("%w: want array", ErrWrongType))
		return
	}
	if len(v.Array()) == 0 {
		f.fail(path, fmt.Errorf("%w: empty array", ErrMissingField))
	}
}

// text accepts a string or a number; numbers keep their JSON text.
func (f *fields) text(path string) string {
	v, ok := f.lookup(path)
	if !ok {
		return ""
	}
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	default:
		f.fail(path, fmt.Errorf("%w: want string or number, got %s", ErrWrongType, v.Type))
		return ""
	}
}

func (f *fields) float(path string) float64 {
	s := f.text(path)
	if f.err != nil {
		return 0
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		f.fail(path, fmt.Errorf("%w: %q is not a number", ErrWrongType, s))
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		f.fail(path, fmt.Errorf("%w: %q is not finite", ErrWrongType, s))
		return 0
	}
	if math.Abs(n) >= maxReading {
		f.fail(path, fmt.Errorf("%w: %q is out of range", ErrWrongType, s))
		return 0
	}
	return n
}

// epoch accepts an integer JSON number or a string holding one.
func (f *fields) epoch(path string) int64 {
	s := f.text(path)
	if f.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		f.fail(path, fmt.Errorf("%w: %q is not an integer timestamp", ErrWrongType, s))
		return 0
	}
	return n
}
