package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/weather-state-service/internal/domain"
	"github.com/couchcryptid/weather-state-service/internal/observability"
)

// Client implements domain.WeatherFetcher using the OpenWeatherMap current weather API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client. A zero timeout keeps the
// transport default. An empty apiKey is sent as-is; the provider rejects it.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchCurrentWeather issues a single GET for the requested location and
// returns the response body unmodified.
func (c *Client) FetchCurrentWeather(ctx context.Context, req domain.WeatherRequest) (domain.WeatherSnapshot, error) {
	params, err := c.buildQuery(req)
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("invalid_request").Inc()
		return nil, err
	}

	snapshot, outcome, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.WeatherRequests.WithLabelValues(outcome).Inc()
	return snapshot, err
}

// buildQuery resolves the location parameters. A city wins over coordinates;
// coordinates need both components present and non-zero.
func (c *Client) buildQuery(req domain.WeatherRequest) (url.Values, error) {
	units := req.Units
	if units == "" {
		units = domain.DefaultUnits
	}
	lang := req.Lang
	if lang == "" {
		lang = domain.DefaultLang
	}

	params := url.Values{
		"appid": {c.apiKey},
		"units": {units},
		"lang":  {lang},
	}

	coord := domain.Coordinate{Lat: req.Lat, Lon: req.Lon}
	switch {
	case req.City != "":
		q := req.City
		if req.Country != "" {
			q = req.City + "," + req.Country
		}
		params.Set("q", q)
	case coord.Usable():
		params.Set("lat", formatFloat(*req.Lat))
		params.Set("lon", formatFloat(*req.Lon))
	default:
		return nil, domain.ErrInvalidRequest
	}
	return params, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.WeatherSnapshot, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, "transport_error", fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, "transport_error", fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		apiErr := &domain.APIError{StatusCode: resp.StatusCode, StatusText: statusText(resp)}
		c.logger.Debug("weather provider returned error status", "status", resp.StatusCode)
		return nil, "api_error", apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "transport_error", fmt.Errorf("read weather response: %w", err)
	}

	var payload json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, "parse_error", fmt.Errorf("decode weather response: %w", err)
	}
	return payload, "success", nil
}

// statusText strips the numeric prefix Go puts in resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
