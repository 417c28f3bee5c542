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

// WeatherAPIProvider implements weather.CurrentProvider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		client:  client,
		circuit: newCircuit("weatherapi"),
	}
}

func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, loc weather.Location) (weather.CurrentReading, error) {
	if p.apiKey == "" {
		return weather.CurrentReading{}, fmt.Errorf("%w: %s: api key is not configured", weather.ErrWeatherAPI, p.name)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "lat,lon".
		values.Set("q", fmt.Sprintf("%f,%f", loc.Latitude, loc.Longitude))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.CurrentReading{}, fmt.Errorf("%s current: %w", p.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			LastUpdatedEpoch int64    `json:"last_updated_epoch"`
			TempC            *float64 `json:"temp_c"`
		} `json:"current"`
	}

	if err := decodeBody(p.name, resp, &payload); err != nil {
		return weather.CurrentReading{}, err
	}
	if payload.Current.TempC == nil {
		return weather.CurrentReading{}, fmt.Errorf("%w: %s: missing current.temp_c", weather.ErrWeatherAPI, p.name)
	}

	ts := time.Now().UTC()
	if payload.Current.LastUpdatedEpoch > 0 {
		ts = time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC()
	}

	return weather.CurrentReading{
		TemperatureC: *payload.Current.TempC,
		ObservedAt:   ts.In(resolveZone(loc.Timezone)),
	}, nil
}
