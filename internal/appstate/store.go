// Package appstate owns the application state shared by UI layers: the
// dark-mode preference, the selected coordinate and the outcome of the last
// weather refresh.
//
// A Store is created once at startup and handed to whatever serves the UI.
// Every mutation notifies subscribers synchronously, so an observer has seen
// the new state by the time the mutator returns. Subscribers are called one
// at a time in commit order; they may read the store but must not mutate it.
package appstate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/weather-state-service/internal/domain"
	"github.com/couchcryptid/weather-state-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Settings configures the initial location and the parameters sent on refresh.
type Settings struct {
	Location domain.Coordinate
	Units    string
	Lang     string
}

// DefaultSettings starts at the default coordinate and requests metric units in German.
func DefaultSettings() Settings {
	return Settings{
		Location: domain.NewCoordinate(domain.DefaultLat, domain.DefaultLon),
		Units:    domain.DefaultUnits,
		Lang:     domain.DefaultLang,
	}
}

// Store is the single source of truth for application state.
//
// The mutex only guards field access. It is never held across the provider
// call, so overlapping LoadWeather calls are not serialized and the last one
// to finish decides Weather, Error and Loading.
type Store struct {
	mu       sync.Mutex
	notifyMu sync.Mutex // held while subscribers run; acquired before mu is released
	state    domain.State
	subs     map[uint64]func(domain.State)
	next     uint64

	fetcher  domain.WeatherFetcher
	settings Settings
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// New creates a Store seeded from settings. Pass a nil clock to use real time.
func New(fetcher domain.WeatherFetcher, settings Settings, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		state: domain.State{
			Location:  settings.Location.Clone(),
			UpdatedAt: clock.Now(),
		},
		subs:     make(map[uint64]func(domain.State)),
		fetcher:  fetcher,
		settings: settings,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to receive every new state. The returned function
// removes the subscription and is safe to call more than once.
func (s *Store) Subscribe(fn func(domain.State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.metrics.Subscribers.Set(float64(len(s.subs)))
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.metrics.Subscribers.Set(float64(len(s.subs)))
			s.mu.Unlock()
		})
	}
}

// Close drops all subscribers. The state itself stays readable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.subs)
	s.metrics.Subscribers.Set(0)
}

// ToggleDarkMode flips the dark-mode flag.
func (s *Store) ToggleDarkMode() {
	s.update("toggle_dark_mode", func(st *domain.State) {
		st.DarkMode = !st.DarkMode
	})
}

// SetDarkMode sets the dark-mode flag to v.
func (s *Store) SetDarkMode(v bool) {
	s.update("set_dark_mode", func(st *domain.State) {
		st.DarkMode = v
	})
}

// SetLocation replaces the coordinate. Values are not range-checked and no
// refresh is triggered.
func (s *Store) SetLocation(lat, lon float64) {
	s.update("set_location", func(st *domain.State) {
		st.Location = domain.NewCoordinate(lat, lon)
	})
}

// ClearLocation unsets both coordinate components.
func (s *Store) ClearLocation() {
	s.update("clear_location", func(st *domain.State) {
		st.Location = domain.Coordinate{}
	})
}

// LoadWeather fetches current weather for the stored coordinate and records
// the outcome. It returns without touching state when the coordinate is not
// usable (nil, zero or NaN). Failures end up in State.Error; nothing is
// returned to the caller.
func (s *Store) LoadWeather(ctx context.Context) {
	loc := s.Snapshot().Location
	if !loc.Usable() {
		s.metrics.RefreshSkipped.Inc()
		s.logger.Debug("weather refresh skipped, no usable location")
		return
	}

	refreshID := uuid.NewString()
	s.update("load_weather", func(st *domain.State) {
		st.Loading = true
		st.Error = nil
	})

	s.metrics.RefreshesInFlight.Inc()
	snapshot, err := s.fetcher.FetchCurrentWeather(ctx, domain.WeatherRequest{
		Lat:   loc.Lat,
		Lon:   loc.Lon,
		Units: s.settings.Units,
		Lang:  s.settings.Lang,
	})
	s.metrics.RefreshesInFlight.Dec()

	if err != nil {
		msg := err.Error()
		s.logger.Warn("weather refresh failed",
			"refresh_id", refreshID,
			"lat", *loc.Lat,
			"lon", *loc.Lon,
			"error", err,
		)
		s.update("load_weather", func(st *domain.State) {
			st.Weather = nil
			st.Error = &msg
			st.Loading = false
		})
		return
	}

	fetchedAt := s.clock.Now()
	s.update("load_weather", func(st *domain.State) {
		st.Weather = snapshot
		st.FetchedAt = &fetchedAt
		st.Loading = false
	})
	s.ready.Store(true)
	s.logger.Info("weather refreshed", "refresh_id", refreshID, "lat", *loc.Lat, "lon", *loc.Lon)
}

// CheckReadiness returns nil once at least one weather payload has been stored.
func (s *Store) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no weather data loaded yet")
	}
	return nil
}

// update applies fn under mu, then notifies subscribers with a copy of the
// resulting state under notifyMu only. Taking notifyMu before releasing mu
// keeps delivery in commit order across goroutines.
func (s *Store) update(op string, fn func(st *domain.State)) {
	s.mu.Lock()
	fn(&s.state)
	s.state.UpdatedAt = s.clock.Now()
	next := s.state.Clone()
	subs := make([]func(domain.State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Unlock()

	s.metrics.StateChanges.WithLabelValues(op).Inc()
	for _, sub := range subs {
		sub(next.Clone())
	}
}
