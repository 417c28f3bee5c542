package weather

import "errors"

// Error kinds surfaced by the pipeline. Providers and publishers wrap one of
// these with %w so callers can classify with errors.Is.
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrNetwork          = errors.New("network error")
	ErrWeatherAPI       = errors.New("weather api error")
	ErrPublish          = errors.New("publish error")
)
