package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-state-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StateService is the application state surface driven by the API.
type StateService interface {
	Snapshot() domain.State
	ToggleDarkMode()
	SetDarkMode(v bool)
	SetLocation(lat, lon float64)
	ClearLocation()
	LoadWeather(ctx context.Context)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the state API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	state      StateService
	weather    domain.WeatherFetcher
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api/*, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, state StateService, weather domain.WeatherFetcher, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second, // refresh waits on the provider
			IdleTimeout:  60 * time.Second,
		},
		state:   state,
		weather: weather,
		logger:  logger,
	}

	r.Use(requestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(state))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/dark-mode/toggle", s.handleToggleDarkMode)
		r.Put("/dark-mode", s.handleSetDarkMode)
		r.Put("/location", s.handleSetLocation)
		r.Delete("/location", s.handleClearLocation)
		r.Post("/weather/refresh", s.handleRefresh)
		r.Get("/weather", s.handleFetchWeather)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleToggleDarkMode(w http.ResponseWriter, _ *http.Request) {
	s.state.ToggleDarkMode()
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

type darkModeRequest struct {
	DarkMode *bool `json:"dark_mode"`
}

func (s *Server) handleSetDarkMode(w http.ResponseWriter, r *http.Request) {
	var req darkModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DarkMode == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"dark_mode\": bool}")
		return
	}
	s.state.SetDarkMode(*req.DarkMode)
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (s *Server) handleSetLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Lat == nil || req.Lon == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"lat\": number, \"lon\": number}")
		return
	}
	s.state.SetLocation(*req.Lat, *req.Lon)
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleClearLocation(w http.ResponseWriter, _ *http.Request) {
	s.state.ClearLocation()
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

// handleRefresh runs a refresh to completion even if the client goes away.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.state.LoadWeather(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

// handleFetchWeather is a one-off lookup that leaves the application state alone.
func (s *Server) handleFetchWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := domain.WeatherRequest{
		City:    q.Get("city"),
		Country: q.Get("country"),
		Units:   q.Get("units"),
		Lang:    q.Get("lang"),
	}

	var err error
	if req.Lat, err = parseOptionalFloat(q.Get("lat")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid lat")
		return
	}
	if req.Lon, err = parseOptionalFloat(q.Get("lon")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid lon")
		return
	}

	snapshot, err := s.weather.FetchCurrentWeather(r.Context(), req)
	if err != nil {
		s.writeFetchError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(snapshot) //nolint:errcheck // client may have gone away
}

func (s *Server) writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Provider auth failures are our misconfiguration, not the caller's.
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 &&
		apiErr.StatusCode != http.StatusUnauthorized && apiErr.StatusCode != http.StatusForbidden {
		writeError(w, apiErr.StatusCode, err.Error())
		return
	}

	s.logger.Error("weather lookup failed", "error", err, "request_id", w.Header().Get(requestIDHeader), "path", r.URL.Path)
	writeError(w, http.StatusBadGateway, err.Error())
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
