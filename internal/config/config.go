package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/i474232898/weather-500-years/internal/publish"
)

var validate = validator.New()

type AppConfig struct {
	LocationName string `validate:"required"`
	Language     string `validate:"required"`
	Timezone     string `validate:"required"`

	// Location is Timezone resolved with time.LoadLocation.
	Location *time.Location `validate:"-"`

	PostEnabled bool

	// Offsets subtracted from the 1991-2020 normal.
	WarmingSince1850C float64 `validate:"gte=0,lte=5"`
	LIAExtraCoolingC  float64 `validate:"gte=0,lte=5"`

	HTTPTimeout time.Duration `validate:"gt=0"`

	// Backend selection.
	Geocoder             string `validate:"oneof=openmeteo google"`
	GoogleGeocoderAPIKey string `validate:"required_if=Geocoder google"`
	CurrentProvider      string `validate:"oneof=openmeteo openweathermap weatherapi"`
	OpenWeatherAPIKey    string `validate:"required_if=CurrentProvider openweathermap"`
	WeatherAPIKey        string `validate:"required_if=CurrentProvider weatherapi"`

	Twitter publish.TwitterCredentials `validate:"-"`

	// Normals cache retention.
	NormalsCacheMax int           `validate:"gte=0"`
	NormalsCacheTTL time.Duration `validate:"gte=0"`

	// Scheduled runs; tags are matched to cron entries by position.
	ScheduleCron []string `validate:"dive,required"`
	ScheduleTags []string

	AnnalsPath string
	AnnalsMode string `validate:"oneof=exact monthday yearshift doy"`
	AnnalsLoc  string
	AnnalsTol  int `validate:"gte=0"`

	Port string `validate:"required,numeric"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.LocationName = getenvDefault("LOCATION_NAME", "Seoul")
	cfg.Language = getenvDefault("LANGUAGE", "ko")
	cfg.Timezone = getenvDefault("TIMEZONE", "Asia/Seoul")
	cfg.PostEnabled = getenvBool("POST_TO_TWITTER", false)

	var err error
	if cfg.WarmingSince1850C, err = getenvFloat("WARMING_SINCE_1850_C", 1.2); err != nil {
		return nil, err
	}
	if cfg.LIAExtraCoolingC, err = getenvFloat("LIA_EXTRA_COOLING_C", 0.4); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	cfg.Geocoder = strings.ToLower(getenvDefault("GEOCODER", "openmeteo"))
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
	cfg.CurrentProvider = strings.ToLower(getenvDefault("CURRENT_PROVIDER", "openmeteo"))
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")

	cfg.Twitter = publish.TwitterCredentials{
		APIKey:            os.Getenv("TWITTER_API_KEY"),
		APISecret:         os.Getenv("TWITTER_API_SECRET"),
		AccessToken:       os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessTokenSecret: os.Getenv("TWITTER_ACCESS_TOKEN_SECRET"),
	}

	if cfg.NormalsCacheMax, err = getenvInt("NORMALS_CACHE_MAX", 366); err != nil {
		return nil, err
	}
	if cfg.NormalsCacheTTL, err = getenvDuration("NORMALS_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	cfg.ScheduleCron = splitList(getenvDefault("SCHEDULE_CRON", "0 8 * * *"))
	cfg.ScheduleTags = splitList(os.Getenv("SCHEDULE_TAGS"))

	cfg.AnnalsPath = os.Getenv("ANNALS_PATH")
	cfg.AnnalsMode = strings.ToLower(getenvDefault("ANNALS_MODE", "exact"))
	cfg.AnnalsLoc = os.Getenv("ANNALS_LOC")
	if cfg.AnnalsTol, err = getenvInt("ANNALS_TOL", 0); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints, resolves the timezone and parses every
// cron entry. Call it again after overriding fields from flags.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	for _, spec := range c.ScheduleCron {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid SCHEDULE_CRON entry %q: %w", spec, err)
		}
	}
	if len(c.ScheduleTags) > len(c.ScheduleCron) {
		return fmt.Errorf("SCHEDULE_TAGS has %d entries but SCHEDULE_CRON only %d", len(c.ScheduleTags), len(c.ScheduleCron))
	}
	return nil
}

// TagFor returns the tag configured for the i-th cron entry, or "".
func (c *AppConfig) TagFor(i int) string {
	if i < 0 || i >= len(c.ScheduleTags) {
		return ""
	}
	return c.ScheduleTags[i]
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
