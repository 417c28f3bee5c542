package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"LOCATION_NAME", "LANGUAGE", "TIMEZONE", "POST_TO_TWITTER", "WARMING_SINCE_1850_C",
		"LIA_EXTRA_COOLING_C", "HTTP_TIMEOUT", "GEOCODER", "CURRENT_PROVIDER", "SCHEDULE_CRON",
		"SCHEDULE_TAGS", "ANNALS_MODE", "NORMALS_CACHE_TTL", "NORMALS_CACHE_MAX", "PORT",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LocationName != "Seoul" || cfg.Language != "ko" || cfg.Timezone != "Asia/Seoul" {
		t.Errorf("unexpected location defaults: %+v", cfg)
	}
	if cfg.PostEnabled {
		t.Errorf("posting must be off by default")
	}
	if cfg.WarmingSince1850C != 1.2 || cfg.LIAExtraCoolingC != 0.4 {
		t.Errorf("offsets = %v / %v", cfg.WarmingSince1850C, cfg.LIAExtraCoolingC)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.Location == nil || cfg.Location.String() != "Asia/Seoul" {
		t.Errorf("Location = %v", cfg.Location)
	}
	if len(cfg.ScheduleCron) != 1 || cfg.ScheduleCron[0] != "0 8 * * *" {
		t.Errorf("ScheduleCron = %v", cfg.ScheduleCron)
	}
	if cfg.NormalsCacheMax != 366 || cfg.NormalsCacheTTL != 24*time.Hour {
		t.Errorf("cache settings = %d / %v", cfg.NormalsCacheMax, cfg.NormalsCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOCATION_NAME", "Busan")
	t.Setenv("POST_TO_TWITTER", "Yes")
	t.Setenv("WARMING_SINCE_1850_C", "1.5")
	t.Setenv("SCHEDULE_CRON", "0 8 * * *, 0 20 * * *")
	t.Setenv("SCHEDULE_TAGS", "morning,evening")
	t.Setenv("ANNALS_MODE", "YearShift")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LocationName != "Busan" || !cfg.PostEnabled || cfg.WarmingSince1850C != 1.5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.ScheduleCron) != 2 || cfg.ScheduleCron[1] != "0 20 * * *" {
		t.Errorf("ScheduleCron = %q", cfg.ScheduleCron)
	}
	if cfg.TagFor(1) != "evening" || cfg.TagFor(2) != "" {
		t.Errorf("TagFor = %q / %q", cfg.TagFor(1), cfg.TagFor(2))
	}
	if cfg.AnnalsMode != "yearshift" {
		t.Errorf("AnnalsMode = %q", cfg.AnnalsMode)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad float", "WARMING_SINCE_1850_C", "warm", "WARMING_SINCE_1850_C"},
		{"bad int", "ANNALS_TOL", "three", "ANNALS_TOL"},
		{"bad cache size", "NORMALS_CACHE_MAX", "lots", "NORMALS_CACHE_MAX"},
		{"bad duration", "HTTP_TIMEOUT", "soon", "HTTP_TIMEOUT"},
		{"bad timezone", "TIMEZONE", "Mars/Olympus", "TIMEZONE"},
		{"bad cron", "SCHEDULE_CRON", "every morning", "SCHEDULE_CRON"},
		{"unknown geocoder", "GEOCODER", "bing", "Geocoder"},
		{"google without key", "GEOCODER", "google", "GoogleGeocoderAPIKey"},
		{"weatherapi without key", "CURRENT_PROVIDER", "weatherapi", "WeatherAPIKey"},
		{"unknown annals mode", "ANNALS_MODE", "fuzzy", "AnnalsMode"},
		{"negative offset", "LIA_EXTRA_COOLING_C", "-1", "LIAExtraCoolingC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOOGLE_GEOCODER_API_KEY", "")
			t.Setenv("WEATHERAPI_API_KEY", "")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestValidateTagsLongerThanCron(t *testing.T) {
	t.Setenv("SCHEDULE_CRON", "0 8 * * *")
	t.Setenv("SCHEDULE_TAGS", "a,b")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when tags outnumber cron entries")
	}
}
