package domain

import (
	"context"
	"errors"
	"fmt"
)

// Request defaults applied when a field is left empty.
const (
	DefaultUnits = "metric"
	DefaultLang  = "de"
)

// ErrInvalidRequest means neither a place name nor a coordinate pair was supplied.
var ErrInvalidRequest = errors.New("must supply either a place name or a coordinate pair")

// WeatherRequest selects the location, unit system and language of a
// current-weather lookup. City takes precedence over Lat/Lon.
type WeatherRequest struct {
	City    string
	Country string
	Lat     *float64
	Lon     *float64
	Units   string
	Lang    string
}

// WeatherFetcher retrieves the current weather for a request.
type WeatherFetcher interface {
	FetchCurrentWeather(ctx context.Context, req WeatherRequest) (WeatherSnapshot, error)
}

// APIError is returned when the provider answers with a non-2xx status.
type APIError struct {
	StatusCode int
	StatusText string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.StatusText)
}
