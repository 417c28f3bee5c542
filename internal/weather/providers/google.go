package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-500-years/internal/common"
	"github.com/i474232898/weather-500-years/internal/weather"
)

// GoogleGeocoder implements weather.Geocoder on the Google Geocoding API.
// The Google API returns no timezone, so the configured one is used.
type GoogleGeocoder struct {
	timezone string
}

// NewGoogleGeocoder sets the package-level key used by kelvins/geocoder.
func NewGoogleGeocoder(apiKey, timezone string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{timezone: timezone}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, name string) (weather.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return weather.Location{}, fmt.Errorf("%w: empty place name", weather.ErrLocationNotFound)
	}
	if err := ctx.Err(); err != nil {
		return weather.Location{}, fmt.Errorf("%w: %v", weather.ErrNetwork, err)
	}

	loc, err := geocoder.Geocoding(geocoder.Address{City: name})
	if err != nil {
		return weather.Location{}, classifyGoogleError(name, err)
	}

	return weather.Location{
		DisplayName: name,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		Timezone:    g.timezone,
	}, nil
}

func classifyGoogleError(name string, err error) error {
	if common.ContainsAnyFold(err.Error(), "zero_results", "empty", "no results") {
		return fmt.Errorf("%w: no results for %q", weather.ErrLocationNotFound, name)
	}
	return fmt.Errorf("geocode %q: %w: %v", name, weather.ErrNetwork, err)
}
