package weather

// Units accepted by the provider.
const (
	UnitsStandard = "standard"
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// Request holds the parameters of a single current-conditions fetch.
// It is passed by value and never mutated once built.
type Request struct {
	Location string `validate:"required"`
	Units    string `validate:"required,oneof=standard metric imperial"`
	APIKey   string `validate:"required"`
}

// Record is the normalized, display-ready view of one provider response.
// Every field is derived from the same JSON document.
type Record struct {
	Address            string `json:"address"`
	UpdatedAtText      string `json:"updatedAtText"`
	Temp               string `json:"temp"`
	TempMin            string `json:"tempMin"`
	TempMax            string `json:"tempMax"`
	Pressure           string `json:"pressure"`
	Humidity           string `json:"humidity"`
	FeelsLike          string `json:"feelsLike"`
	WindSpeed          string `json:"windSpeed"`
	WeatherDescription string `json:"weatherDescription"`
	WeatherIcon        string `json:"weatherIcon"`

	// Sunrise and Sunset are UNIX seconds.
	Sunrise int64 `json:"sunrise"`
	Sunset  int64 `json:"sunset"`
}

// Defaults are the values the service falls back to when a caller only
// supplies a location, or nothing at all.
type Defaults struct {
	Location string
	Units    string
	APIKey   string
}
