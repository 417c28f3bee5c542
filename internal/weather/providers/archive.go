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

// ArchiveProvider implements weather.NormalProvider on the Open-Meteo ERA5 archive.
type ArchiveProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewArchiveProvider(client *http.Client) *ArchiveProvider {
	return &ArchiveProvider{
		name:    "openmeteo-era5",
		baseURL: "https://archive-api.open-meteo.com/v1/era5",
		client:  client,
		circuit: newCircuit("openmeteo-era5"),
	}
}

// FetchNormal requests daily extremes for the whole reference window in a single
// call and averages the rows falling on md. Every reference year is represented;
// years without a row (Feb 29 outside leap years) are left empty and excluded.
func (p *ArchiveProvider) FetchNormal(ctx context.Context, loc weather.Location, md weather.MonthDay) (weather.ClimatologyNormal, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", formatCoord(loc.Latitude))
		values.Set("longitude", formatCoord(loc.Longitude))
		values.Set("start_date", fmt.Sprintf("%d-01-01", weather.NormalStartYear))
		values.Set("end_date", fmt.Sprintf("%d-12-31", weather.NormalEndYear))
		values.Set("daily", "temperature_2m_max,temperature_2m_min")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.ClimatologyNormal{}, fmt.Errorf("%s normal: %w", p.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Daily *struct {
			Time             []string   `json:"time"`
			Temperature2mMax []*float64 `json:"temperature_2m_max"`
			Temperature2mMin []*float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}

	if err := decodeBody(p.name, resp, &payload); err != nil {
		return weather.ClimatologyNormal{}, err
	}
	if payload.Daily == nil {
		return weather.ClimatologyNormal{}, fmt.Errorf("%w: %s: missing daily block", weather.ErrWeatherAPI, p.name)
	}

	d := payload.Daily
	byYear := make(map[int]weather.YearSample)
	for i, ts := range d.Time {
		day, err := time.Parse(time.DateOnly, ts)
		if err != nil || !md.Matches(day) {
			continue
		}
		s := weather.YearSample{Year: day.Year()}
		if i < len(d.Temperature2mMax) {
			s.MaxC = d.Temperature2mMax[i]
		}
		if i < len(d.Temperature2mMin) {
			s.MinC = d.Temperature2mMin[i]
		}
		byYear[day.Year()] = s
	}

	samples := make([]weather.YearSample, 0, weather.NormalEndYear-weather.NormalStartYear+1)
	for y := weather.NormalStartYear; y <= weather.NormalEndYear; y++ {
		s, ok := byYear[y]
		if !ok {
			s = weather.YearSample{Year: y}
		}
		samples = append(samples, s)
	}

	normal, err := weather.AggregateNormal(md, samples)
	if err != nil {
		return weather.ClimatologyNormal{}, fmt.Errorf("%s normal: %w", p.name, err)
	}
	return normal, nil
}
