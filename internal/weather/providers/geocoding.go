package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/weather-500-years/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenMeteoGeocoder implements weather.Geocoder on the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	name       string
	baseURL    string
	language   string
	fallbackTZ string
	client     *http.Client
	circuit    *gobreaker.CircuitBreaker
}

// NewOpenMeteoGeocoder creates a geocoder returning names in the given language.
// fallbackTZ is used when a result carries no timezone.
func NewOpenMeteoGeocoder(client *http.Client, language, fallbackTZ string) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		name:       "openmeteo-geocoding",
		baseURL:    "https://geocoding-api.open-meteo.com/v1/search",
		language:   language,
		fallbackTZ: fallbackTZ,
		client:     client,
		circuit:    newCircuit("openmeteo-geocoding"),
	}
}

func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, name string) (weather.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return weather.Location{}, fmt.Errorf("%w: empty place name", weather.ErrLocationNotFound)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", name)
		values.Set("count", "1")
		values.Set("format", "json")
		if g.language != "" {
			values.Set("language", g.language)
		}

		u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, g.client, g.circuit, buildRequest)
	if err != nil {
		return weather.Location{}, fmt.Errorf("geocode %q: %w", name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Country   string  `json:"country"`
			Admin1    string  `json:"admin1"`
			Timezone  string  `json:"timezone"`
		} `json:"results"`
	}

	if err := decodeBody(g.name, resp, &payload); err != nil {
		return weather.Location{}, err
	}

	if len(payload.Results) == 0 {
		return weather.Location{}, fmt.Errorf("%w: no results for %q", weather.ErrLocationNotFound, name)
	}

	r := payload.Results[0]
	tz := r.Timezone
	if tz == "" {
		tz = g.fallbackTZ
	}

	return weather.Location{
		DisplayName: displayName(name, r.Name, r.Admin1, r.Country),
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Timezone:    tz,
	}, nil
}

// displayName joins the non-empty parts; query is used when all are empty.
func displayName(query string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return query
	}
	return strings.Join(kept, ", ")
}
