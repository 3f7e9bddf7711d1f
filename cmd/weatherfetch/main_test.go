package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/couchcryptid/weather-state-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeProvider(t *testing.T, status int, body string) chan url.Values {
	t.Helper()
	queries := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("OWM_BASE_URL", srv.URL)
	t.Setenv("OWM_API_KEY", "cli-key")
	return queries
}

func TestRun_City(t *testing.T) {
	queries := fakeProvider(t, http.StatusOK, `{"name":"Berlin"}`)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-city", "Berlin", "-country", "de"}, &out))
	assert.JSONEq(t, `{"name":"Berlin"}`, out.String())

	q := <-queries
	assert.Equal(t, "Berlin,de", q.Get("q"))
	assert.Equal(t, "cli-key", q.Get("appid"))
	assert.Equal(t, "metric", q.Get("units"))
	assert.Equal(t, "de", q.Get("lang"))
}

func TestRun_CoordinatesAndOverrides(t *testing.T) {
	queries := fakeProvider(t, http.StatusOK, `{"name":"Munich"}`)

	var out bytes.Buffer
	err := run(context.Background(), []string{"-lat", "48.1374", "-lon", "11.5755", "-units", "imperial", "-lang", "en"}, &out)
	require.NoError(t, err)

	q := <-queries
	assert.Equal(t, "48.1374", q.Get("lat"))
	assert.Equal(t, "11.5755", q.Get("lon"))
	assert.Equal(t, "imperial", q.Get("units"))
	assert.Equal(t, "en", q.Get("lang"))
}

func TestRun_NoLocation(t *testing.T) {
	queries := fakeProvider(t, http.StatusOK, `{}`)

	err := run(context.Background(), nil, &bytes.Buffer{})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Empty(t, queries)
}

func TestRun_ProviderError(t *testing.T) {
	fakeProvider(t, http.StatusNotFound, `{"cod":"404"}`)

	var out bytes.Buffer
	err := run(context.Background(), []string{"-city", "Atlantis"}, &out)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Empty(t, out.String())
}

func TestRun_BadFlag(t *testing.T) {
	err := run(context.Background(), []string{"-lat", "north"}, &bytes.Buffer{})
	require.Error(t, err)
}
