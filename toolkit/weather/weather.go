// Package weather wraps the OpenWeatherMap API (current conditions, 5-day
// forecast, city lookup) as tools. Requires an API key, see
// https://openweathermap.org/api.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/internal/util"
	"github.com/hupe1980/agentacademy/tool"
)

// DefaultBaseURL is the OpenWeatherMap data API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Options configure the weather client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the OpenWeatherMap API. All requests use metric units.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a weather client.
func NewClient(apiKey string, optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
	}
}

// Tools returns the weather operations as tool values.
func (c *Client) Tools() []tool.Tool {
	coordParams := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"latitude":  map[string]any{"type": "number", "description": "Latitude of the location"},
			"longitude": map[string]any{"type": "number", "description": "Longitude of the location"},
		},
		"required": []string{"latitude", "longitude"},
	}

	return []tool.Tool{
		tool.NewFunctionTool("get_forecast", "Get 5-day weather forecast for a location.", coordParams,
			func(tc *core.ToolContext, args map[string]any) (any, error) {
				lat, lon := args["latitude"].(float64), args["longitude"].(float64)
				return c.GetForecast(tc.Context(), lat, lon)
			}),
		tool.NewFunctionTool("get_current_conditions", "Get current weather conditions for a location.", coordParams,
			func(tc *core.ToolContext, args map[string]any) (any, error) {
				lat, lon := args["latitude"].(float64), args["longitude"].(float64)
				return c.GetCurrentConditions(tc.Context(), lat, lon)
			}),
		tool.NewFunctionTool("get_weather_by_city", "Get current weather for a city by name.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"city":         map[string]any{"type": "string", "description": "City name (e.g. \"London\", \"New York\")"},
					"country_code": map[string]any{"type": "string", "description": "Optional ISO 3166 country code (e.g. \"GB\", \"US\")"},
				},
				"required": []string{"city"},
			},
			func(tc *core.ToolContext, args map[string]any) (any, error) {
				city := args["city"].(string)
				countryCode, _ := args["country_code"].(string)
				return c.GetWeatherByCity(tc.Context(), city, countryCode)
			}),
	}
}

// forecastResponse mirrors the subset of the /forecast payload we render.
type forecastResponse struct {
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	List []struct {
		DtTxt   string          `json:"dt_txt"`
		Weather []conditionInfo `json:"weather"`
		Main    mainInfo        `json:"main"`
		Wind    windInfo        `json:"wind"`
	} `json:"list"`
}

type currentResponse struct {
	Name    string          `json:"name"`
	Weather []conditionInfo `json:"weather"`
	Main    mainInfo        `json:"main"`
	Wind    windInfo        `json:"wind"`
	Clouds  struct {
		All *int `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
}

type conditionInfo struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type mainInfo struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
}

type windInfo struct {
	Speed float64  `json:"speed"`
	Deg   *float64 `json:"deg"`
}

// GetForecast returns a 5-day forecast with one entry per day, preferring
// the midday slot.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64) (string, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return "", err
	}

	var data forecastResponse
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%v", lat))
	params.Set("lon", fmt.Sprintf("%v", lon))
	if err := c.get(ctx, "/forecast", params, &data); err != nil {
		return "", err
	}

	if len(data.List) == 0 {
		return "Unable to fetch forecast data for this location.", nil
	}

	cityName := data.City.Name
	if cityName == "" {
		cityName = "Unknown location"
	}

	blocks := []string{fmt.Sprintf("5-Day Forecast for %s:", cityName)}
	seenDates := map[string]bool{}
	for _, item := range data.List {
		fields := strings.SplitN(item.DtTxt, " ", 2)
		if len(fields) != 2 || len(item.Weather) == 0 {
			continue
		}
		date, clock := fields[0], fields[1]

		if seenDates[date] || (clock != "12:00:00" && len(seenDates) >= 5) {
			continue
		}
		seenDates[date] = true

		blocks = append(blocks, fmt.Sprintf(`
Date: %s %s
Temperature: %v°C (feels like %v°C)
Weather: %s - %s
Humidity: %d%%
Wind: %v m/s
`, date, clock, item.Main.Temp, item.Main.FeelsLike, item.Weather[0].Main, item.Weather[0].Description, item.Main.Humidity, item.Wind.Speed))

		if len(seenDates) >= 5 {
			break
		}
	}

	return util.JoinBlocks(blocks), nil
}

// GetCurrentConditions returns the current weather at the given coordinates.
func (c *Client) GetCurrentConditions(ctx context.Context, lat, lon float64) (string, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return "", err
	}

	var data currentResponse
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%v", lat))
	params.Set("lon", fmt.Sprintf("%v", lon))
	if err := c.get(ctx, "/weather", params, &data); err != nil {
		return "", err
	}

	if len(data.Weather) == 0 {
		return "Unable to fetch weather data for this location.", nil
	}

	locationName := data.Name
	if locationName == "" {
		locationName = "Unknown location"
	}

	windDeg := "N/A"
	if data.Wind.Deg != nil {
		windDeg = fmt.Sprintf("%v", *data.Wind.Deg)
	}
	cloudiness := "N/A"
	if data.Clouds.All != nil {
		cloudiness = fmt.Sprintf("%d", *data.Clouds.All)
	}

	return fmt.Sprintf(`
Current Weather in %s:
Temperature: %v°C (feels like %v°C)
Weather: %s - %s
Humidity: %d%%
Pressure: %d hPa
Wind Speed: %v m/s
Wind Direction: %s°
Cloudiness: %s%%
Sunrise: %s
Sunset: %s
`, locationName, data.Main.Temp, data.Main.FeelsLike, data.Weather[0].Main, data.Weather[0].Description,
		data.Main.Humidity, data.Main.Pressure, data.Wind.Speed, windDeg, cloudiness,
		formatUnix(data.Sys.Sunrise), formatUnix(data.Sys.Sunset)), nil
}

// GetWeatherByCity returns the current weather for a city name with an
// optional country code.
func (c *Client) GetWeatherByCity(ctx context.Context, city, countryCode string) (string, error) {
	if strings.TrimSpace(city) == "" {
		return "", fmt.Errorf("city must not be empty")
	}

	query := city
	if countryCode != "" {
		query = city + "," + countryCode
	}

	var data currentResponse
	params := url.Values{}
	params.Set("q", query)
	if err := c.get(ctx, "/weather", params, &data); err != nil {
		return "", err
	}

	if len(data.Weather) == 0 {
		return fmt.Sprintf("Unable to fetch weather data for %s.", city), nil
	}

	locationName := data.Name
	if locationName == "" {
		locationName = city
	}

	return fmt.Sprintf(`
Current Weather in %s, %s:
Temperature: %v°C (feels like %v°C)
Weather: %s - %s
Humidity: %d%%
Pressure: %d hPa
Wind Speed: %v m/s
Coordinates: lat=%v, lon=%v
`, locationName, data.Sys.Country, data.Main.Temp, data.Main.FeelsLike, data.Weather[0].Main,
		data.Weather[0].Description, data.Main.Humidity, data.Main.Pressure, data.Wind.Speed,
		data.Coord.Lat, data.Coord.Lon), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return tool.NewUpstreamError("weather", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return tool.NewUpstreamError("weather", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return tool.NewUpstreamError("weather", fmt.Errorf("openweathermap returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return tool.NewUpstreamError("weather", fmt.Errorf("decode response: %w", err))
	}

	return nil
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %v", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %v", lon)
	}
	return nil
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return "N/A"
	}
	return time.Unix(ts, 0).UTC().Format("15:04 MST")
}
