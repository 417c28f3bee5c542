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

// openMeteoTimeLayout is the local, zone-less timestamp format Open-Meteo returns.
const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider implements weather.CurrentProvider on the Open-Meteo forecast API.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  client,
		circuit: newCircuit("openmeteo"),
	}
}

// FetchCurrent returns the current 2m temperature. Today's forecast extremes are
// requested in the same call; they are optional and never fail the fetch.
func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, loc weather.Location) (weather.CurrentReading, error) {
	tz := loc.Timezone
	if tz == "" {
		tz = "auto"
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", formatCoord(loc.Latitude))
		values.Set("longitude", formatCoord(loc.Longitude))
		values.Set("current", "temperature_2m")
		values.Set("daily", "temperature_2m_max,temperature_2m_min")
		values.Set("forecast_days", "1")
		values.Set("timezone", tz)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.CurrentReading{}, fmt.Errorf("%s current: %w", p.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Timezone string `json:"timezone"`
		Current  struct {
			Time          string   `json:"time"`
			Temperature2m *float64 `json:"temperature_2m"`
		} `json:"current"`
		Daily struct {
			Time             []string   `json:"time"`
			Temperature2mMax []*float64 `json:"temperature_2m_max"`
			Temperature2mMin []*float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}

	if err := decodeBody(p.name, resp, &payload); err != nil {
		return weather.CurrentReading{}, err
	}

	if payload.Current.Temperature2m == nil {
		return weather.CurrentReading{}, fmt.Errorf("%w: %s: missing current.temperature_2m", weather.ErrWeatherAPI, p.name)
	}

	zone := resolveZone(payload.Timezone, loc.Timezone)
	observed, err := time.ParseInLocation(openMeteoTimeLayout, payload.Current.Time, zone)
	if err != nil {
		return weather.CurrentReading{}, fmt.Errorf("%w: %s: invalid current.time %q", weather.ErrWeatherAPI, p.name, payload.Current.Time)
	}

	reading := weather.CurrentReading{
		TemperatureC: *payload.Current.Temperature2m,
		ObservedAt:   observed,
	}

	d := payload.Daily
	if len(d.Temperature2mMax) > 0 && len(d.Temperature2mMin) > 0 &&
		d.Temperature2mMax[0] != nil && d.Temperature2mMin[0] != nil {
		mean := (*d.Temperature2mMax[0] + *d.Temperature2mMin[0]) / 2
		reading.TodayMeanC = &mean
	}

	return reading, nil
}

// resolveZone loads the first valid IANA zone name, defaulting to UTC.
func resolveZone(names ...string) *time.Location {
	for _, n := range names {
		if n == "" {
			continue
		}
		if z, err := time.LoadLocation(n); err == nil {
			return z
		}
	}
	return time.UTC
}
