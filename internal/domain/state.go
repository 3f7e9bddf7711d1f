package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// Default coordinate used when nothing else is configured (Berlin Mitte).
const (
	DefaultLat = 52.5170365
	DefaultLon = 13.3888599
)

// Coordinate is a WGS-84 latitude/longitude pair. Both fields are nil when
// the location has been cleared.
type Coordinate struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// NewCoordinate returns a fully set coordinate.
func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: &lat, Lon: &lon}
}

// IsSet reports whether both components are present.
func (c Coordinate) IsSet() bool {
	return c.Lat != nil && c.Lon != nil
}

// Usable reports whether the coordinate can drive a weather lookup. Nil, zero
// and NaN components all count as unset.
func (c Coordinate) Usable() bool {
	return usable(c.Lat) && usable(c.Lon)
}

// Clone returns a copy that shares no pointers with c.
func (c Coordinate) Clone() Coordinate {
	out := Coordinate{}
	if c.Lat != nil {
		lat := *c.Lat
		out.Lat = &lat
	}
	if c.Lon != nil {
		lon := *c.Lon
		out.Lon = &lon
	}
	return out
}

func usable(v *float64) bool {
	return v != nil && *v != 0 && !math.IsNaN(*v)
}

// WeatherSnapshot is the provider payload, passed through unmodified.
type WeatherSnapshot = json.RawMessage

// State is a point-in-time copy of the application state.
type State struct {
	DarkMode  bool            `json:"dark_mode"`
	Location  Coordinate      `json:"location"`
	Weather   WeatherSnapshot `json:"weather"`
	Error     *string         `json:"error"`
	Loading   bool            `json:"loading"`
	FetchedAt *time.Time      `json:"fetched_at,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Clone returns a deep copy so callers can't alias the store's fields.
func (s State) Clone() State {
	out := s
	out.Location = s.Location.Clone()
	if s.Weather != nil {
		out.Weather = bytes.Clone(s.Weather)
	}
	if s.Error != nil {
		msg := *s.Error
		out.Error = &msg
	}
	if s.FetchedAt != nil {
		t := *s.FetchedAt
		out.FetchedAt = &t
	}
	return out
}
