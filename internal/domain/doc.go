// Package domain models the application state shared with UI layers and the
// request/response contract of the current-weather provider.
//
// # State
//
// [State] is a value copy of everything a UI renders: the dark-mode
// preference, the selected [Coordinate], the last weather payload, the last
// refresh error and whether a refresh is in flight. Only the appstate store
// mutates it; every other package reads copies.
//
// # Coordinates
//
// A coordinate is either fully set or fully unset:
//
//	{"lat": 52.5170365, "lon": 13.3888599}
//	{"lat": null, "lon": null}
//
// Weather lookups treat a component equal to 0 (or NaN) the same as unset.
// A real equatorial or prime-meridian position therefore never triggers a
// refresh. See [Coordinate.Usable].
//
// # Weather payloads
//
// The provider body is kept as raw JSON ([WeatherSnapshot]) and is never
// interpreted here. The schema belongs to OpenWeatherMap:
// https://openweathermap.org/current
//
// # Errors
//
// [ErrInvalidRequest] is returned before any network call when a request
// carries neither a place name nor a coordinate pair. [*APIError] carries a
// non-2xx provider status. Decode and transport failures are wrapped with %w
// and not otherwise classified.
package domain
