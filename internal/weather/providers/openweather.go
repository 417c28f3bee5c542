package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-500-years/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenWeatherProvider implements weather.CurrentProvider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		client:  client,
		circuit: newCircuit("openweather"),
	}
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, loc weather.Location) (weather.CurrentReading, error) {
	if p.apiKey == "" {
		return weather.CurrentReading{}, fmt.Errorf("%w: %s: api key is not configured", weather.ErrWeatherAPI, p.name)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lat", formatCoord(loc.Latitude))
		values.Set("lon", formatCoord(loc.Longitude))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.CurrentReading{}, fmt.Errorf("%s current: %w", p.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
	}

	if err := decodeBody(p.name, resp, &payload); err != nil {
		return weather.CurrentReading{}, err
	}
	if payload.Main.Temp == nil {
		return weather.CurrentReading{}, fmt.Errorf("%w: %s: missing main.temp", weather.ErrWeatherAPI, p.name)
	}

	ts := time.Now().UTC()
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	return weather.CurrentReading{
		TemperatureC: *payload.Main.Temp,
		ObservedAt:   ts.In(resolveZone(loc.Timezone)),
	}, nil
}
