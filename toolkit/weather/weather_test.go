package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hupe1980/agentacademy/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastPayload = `{
  "city": {"name": "Berlin"},
  "list": [
    {"dt_txt": "2024-05-01 09:00:00", "weather": [{"main": "Clouds", "description": "scattered clouds"}], "main": {"temp": 14.1, "feels_like": 13.2, "humidity": 70}, "wind": {"speed": 3.4}},
    {"dt_txt": "2024-05-01 12:00:00", "weather": [{"main": "Clear", "description": "clear sky"}], "main": {"temp": 18.5, "feels_like": 17.9, "humidity": 55}, "wind": {"speed": 4.1}},
    {"dt_txt": "2024-05-02 12:00:00", "weather": [{"main": "Rain", "description": "light rain"}], "main": {"temp": 12.0, "feels_like": 11.0, "humidity": 85}, "wind": {"speed": 6.0}}
  ]
}`

const currentPayload = `{
  "name": "Berlin",
  "weather": [{"main": "Clear", "description": "clear sky"}],
  "main": {"temp": 21.3, "feels_like": 20.8, "humidity": 40, "pressure": 1015},
  "wind": {"speed": 2.5, "deg": 180},
  "clouds": {"all": 10},
  "sys": {"country": "DE", "sunrise": 1714536000, "sunset": 1714589000},
  "coord": {"lat": 52.52, "lon": 13.41}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient("test-key", func(o *Options) {
		o.BaseURL = srv.URL
		o.HTTPClient = srv.Client()
	})
}

func TestGetForecast(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(forecastPayload))
	})

	out, err := client.GetForecast(context.Background(), 52.52, 13.41)
	require.NoError(t, err)

	assert.Contains(t, out, "5-Day Forecast for Berlin:")
	// One entry per day; the first slot of 2024-05-01 wins and the midday slot is skipped.
	assert.Contains(t, out, "2024-05-01 09:00:00")
	assert.NotContains(t, out, "2024-05-01 12:00:00")
	assert.Contains(t, out, "2024-05-02 12:00:00")
	assert.Contains(t, out, "\n---\n")
}

func TestGetCurrentConditions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		w.Write([]byte(currentPayload))
	})

	out, err := client.GetCurrentConditions(context.Background(), 52.52, 13.41)
	require.NoError(t, err)

	assert.Contains(t, out, "Current Weather in Berlin:")
	assert.Contains(t, out, "Temperature: 21.3°C (feels like 20.8°C)")
	assert.Contains(t, out, "Weather: Clear - clear sky")
	assert.Contains(t, out, "Pressure: 1015 hPa")
	assert.Contains(t, out, "Wind Direction: 180°")
}

func TestGetWeatherByCity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Berlin,DE", r.URL.Query().Get("q"))
		w.Write([]byte(currentPayload))
	})

	out, err := client.GetWeatherByCity(context.Background(), "Berlin", "DE")
	require.NoError(t, err)

	assert.Contains(t, out, "Current Weather in Berlin, DE:")
	assert.Contains(t, out, "Coordinates: lat=52.52, lon=13.41")
}

func TestCoordinateValidation(t *testing.T) {
	client := NewClient("test-key")

	_, err := client.GetForecast(context.Background(), 91, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")

	_, err = client.GetCurrentConditions(context.Background(), 0, -181)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitude")
}

func TestUpstreamErrorSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":401,"message":"Invalid API key"}`, http.StatusUnauthorized)
	})

	_, err := client.GetCurrentConditions(context.Background(), 52.52, 13.41)
	require.Error(t, err)

	toolErr, ok := err.(*tool.ToolError)
	require.True(t, ok)
	assert.Equal(t, tool.CodeUpstream, toolErr.Code)
	assert.Contains(t, toolErr.Message, "401")
}

func TestTools(t *testing.T) {
	client := NewClient("test-key")
	tools := client.Tools()
	require.Len(t, tools, 3)

	names := map[string]bool{}
	for _, tl := range tools {
		names[tl.Name()] = true
	}
	assert.True(t, names["get_forecast"])
	assert.True(t, names["get_current_conditions"])
	assert.True(t, names["get_weather_by_city"])
}
