// Command weatherfetch performs a single current-weather lookup and prints
// the provider's JSON payload to stdout. It reads OWM_API_KEY (and an optional
// .env file) the same way the service does.
//
// Usage:
//
//	go run ./cmd/weatherfetch -city Berlin -country de
//	go run ./cmd/weatherfetch -lat 52.5170365 -lon 13.3888599 -units imperial -lang en
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/weather-state-service/internal/adapter/openweather"
	"github.com/couchcryptid/weather-state-service/internal/config"
	"github.com/couchcryptid/weather-state-service/internal/domain"
	"github.com/couchcryptid/weather-state-service/internal/observability"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "weatherfetch:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("weatherfetch", flag.ContinueOnError)
	city := fs.String("city", "", "place name, e.g. Berlin")
	country := fs.String("country", "", "optional country code appended to -city")
	lat := fs.Float64("lat", 0, "latitude (used when -city is empty)")
	lon := fs.Float64("lon", 0, "longitude (used when -city is empty)")
	units := fs.String("units", "", "metric | imperial | standard (default from WEATHER_UNITS)")
	lang := fs.String("lang", "", "response language (default from WEATHER_LANG)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if cfg.WeatherKeyMissing() {
		logger.Warn("OWM_API_KEY is not set, the provider will reject the request")
	}

	req := domain.WeatherRequest{
		City:    *city,
		Country: *country,
		Units:   firstNonEmpty(*units, cfg.WeatherUnits),
		Lang:    firstNonEmpty(*lang, cfg.WeatherLang),
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			req.Lat = lat
		case "lon":
			req.Lon = lon
		}
	})

	client := openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.WeatherTimeout, observability.NewUnregisteredMetrics(), logger)
	snapshot, err := client.FetchCurrentWeather(ctx, req)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, snapshot, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	pretty.WriteByte('\n')
	_, err = out.Write(pretty.Bytes())
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
