// Package pipeline runs one comparison: geocode, fetch, estimate, format, publish.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-500-years/internal/annals"
	"github.com/i474232898/weather-500-years/internal/message"
	"github.com/i474232898/weather-500-years/internal/publish"
	"github.com/i474232898/weather-500-years/internal/weather"
)

// AnnalsOptions point at an optional historical records file.
type AnnalsOptions struct {
	Path  string
	Match annals.Options
}

// Dependencies are the collaborators of a Service. Store may be nil.
type Dependencies struct {
	Geocoder  weather.Geocoder
	Current   weather.CurrentProvider
	Normals   weather.NormalProvider
	Store     weather.NormalStore
	Formatter *message.Formatter
	Publisher publish.Publisher
}

// Settings are the fixed inputs of every run.
type Settings struct {
	Offsets  weather.Offsets
	Timezone *time.Location // zone used to pick "today"; UTC when nil
	Annals   AnnalsOptions
}

// Request selects what a single run compares.
type Request struct {
	Place string
	Date  time.Time // zero means today in the configured timezone
	Tag   string
}

// Outcome is everything a run produced.
type Outcome struct {
	RunID    string                     `json:"runId"`
	Date     string                     `json:"date"`
	Location weather.Location           `json:"location"`
	Current  weather.CurrentReading     `json:"current"`
	Normal   weather.ClimatologyNormal  `json:"normal"`
	Estimate weather.HistoricalEstimate `json:"estimate"`
	Annals   string                     `json:"annals,omitempty"`
	Text     string                     `json:"text"`
	Result   publish.Result             `json:"result"`
}

// Service sequences the steps of a run and stops at the first failure.
type Service struct {
	deps     Dependencies
	settings Settings
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(deps Dependencies, settings Settings) *Service {
	if settings.Timezone == nil {
		settings.Timezone = time.UTC
	}
	return &Service{
		deps:     deps,
		settings: settings,
		now:      time.Now,
	}
}

// Run composes the message and publishes it. Nothing is published when an
// earlier step fails.
func (s *Service) Run(ctx context.Context, req Request) (Outcome, error) {
	out, err := s.Compose(ctx, req)
	if err != nil {
		return out, err
	}

	res, err := s.deps.Publisher.Publish(ctx, out.Text)
	if err != nil {
		log.Printf("ERROR: run %s: publish failed: %v", out.RunID, err)
		return out, err
	}
	out.Result = res
	if res.Posted {
		log.Printf("INFO: run %s: posted %s", out.RunID, res.URL)
	}
	return out, nil
}

// Compose performs every step except publishing.
func (s *Service) Compose(ctx context.Context, req Request) (Outcome, error) {
	out := Outcome{RunID: uuid.NewString()}

	day := s.targetDay(req.Date)
	out.Date = day.Format(time.DateOnly)
	log.Printf("DEBUG: run %s: compose %q for %s", out.RunID, req.Place, out.Date)

	loc, err := s.deps.Geocoder.Geocode(ctx, req.Place)
	if err != nil {
		return out, s.fail(out.RunID, "geocode", err)
	}
	out.Location = loc

	current, err := s.deps.Current.FetchCurrent(ctx, loc)
	if err != nil {
		return out, s.fail(out.RunID, "current weather", err)
	}
	if !day.Equal(s.targetDay(time.Time{})) {
		// the provider's daily mean is today's forecast, not the target day's
		current.TodayMeanC = nil
	}
	out.Current = current

	normal, err := s.normal(ctx, loc, weather.MonthDayOf(day))
	if err != nil {
		return out, s.fail(out.RunID, "historical normal", err)
	}
	out.Normal = normal

	out.Estimate = weather.EstimatePast(normal, s.settings.Offsets)
	out.Annals = s.annalsLine(day)

	out.Text = s.deps.Formatter.Format(message.Input{
		Date:     day,
		Location: loc,
		Current:  current,
		Normal:   normal,
		Estimate: out.Estimate,
		Offsets:  s.settings.Offsets,
		Tag:      req.Tag,
		Annals:   out.Annals,
	})

	log.Printf("INFO: run %s: %s current=%.1f normal=%.1f (%d years) estimate=%.1f",
		out.RunID, loc.DisplayName, current.TemperatureC, normal.MeanC, normal.Years, out.Estimate.EstimatedC)
	return out, nil
}

func (s *Service) fail(runID, step string, err error) error {
	log.Printf("ERROR: run %s: %s failed: %v", runID, step, err)
	return err
}

func (s *Service) targetDay(d time.Time) time.Time {
	if d.IsZero() {
		d = s.now().In(s.settings.Timezone)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.settings.Timezone)
}

// normal serves from the cache when possible and fills it on a miss.
func (s *Service) normal(ctx context.Context, loc weather.Location, md weather.MonthDay) (weather.ClimatologyNormal, error) {
	if s.deps.Store != nil {
		if n, err := s.deps.Store.GetNormal(loc, md); err == nil {
			log.Printf("DEBUG: normal for %s on %s served from cache", loc.Key(), md)
			return n, nil
		}
	}

	n, err := s.deps.Normals.FetchNormal(ctx, loc, md)
	if err != nil {
		return weather.ClimatologyNormal{}, err
	}
	if s.deps.Store != nil {
		s.deps.Store.SaveNormal(loc, n)
	}
	return n, nil
}

// annalsLine never fails the run; load errors are rendered into the line.
func (s *Service) annalsLine(day time.Time) string {
	opts := s.settings.Annals
	if strings.TrimSpace(opts.Path) == "" {
		return ""
	}

	records, err := annals.Load(opts.Path)
	if err != nil {
		log.Printf("ERROR: annals: %v", err)
		return annals.FailureSummary(err)
	}
	rec, ok := annals.Match(records, day, opts.Match)
	if !ok {
		return ""
	}
	return annals.Summary(rec)
}

// ExitCode maps a run error to the process exit status. Configuration
// problems are reported by the caller before a run starts.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// Describe is a short operator-facing label for a run error.
func Describe(err error) string {
	switch {
	case errors.Is(err, weather.ErrLocationNotFound):
		return "location not found"
	case errors.Is(err, weather.ErrNetwork):
		return "network failure"
	case errors.Is(err, weather.ErrWeatherAPI):
		return "weather API error"
	case errors.Is(err, weather.ErrPublish):
		return "publish failed"
	default:
		return fmt.Sprintf("unexpected error (%T)", err)
	}
}
