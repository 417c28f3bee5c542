package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	httpapi "github.com/i474232898/weather-500-years/internal/api/http"
	"github.com/i474232898/weather-500-years/internal/annals"
	"github.com/i474232898/weather-500-years/internal/config"
	"github.com/i474232898/weather-500-years/internal/message"
	"github.com/i474232898/weather-500-years/internal/pipeline"
	"github.com/i474232898/weather-500-years/internal/publish"
	"github.com/i474232898/weather-500-years/internal/scheduler"
	"github.com/i474232898/weather-500-years/internal/store"
	"github.com/i474232898/weather-500-years/internal/weather"
	"github.com/i474232898/weather-500-years/internal/weather/providers"
)

const exitConfig = 2

type options struct {
	place      string
	date       string
	post       bool
	dryRun     bool
	tag        string
	annalsPath string
	annalsLoc  string
	annalsTol  int
	annalsMode string
	schedule   bool
	serve      bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.place, "place", "", "place name to compare (default LOCATION_NAME)")
	flag.StringVar(&o.date, "date", "", "target day YYYY-MM-DD (default today in TIMEZONE)")
	flag.BoolVar(&o.post, "post", false, "post to X/Twitter (wins over --dry-run)")
	flag.BoolVar(&o.dryRun, "dry-run", false, "print the message instead of posting")
	flag.StringVar(&o.tag, "tag", "", "optional header label, e.g. morning")
	flag.StringVar(&o.annalsPath, "annals-path", "", "CSV/TSV/JSON file of historical records (default ANNALS_PATH)")
	flag.StringVar(&o.annalsLoc, "annals-loc", "", "preferred location in the records (default ANNALS_LOC)")
	flag.IntVar(&o.annalsTol, "annals-tol", -1, "days of tolerance for exact/doy matching (default ANNALS_TOL)")
	flag.StringVar(&o.annalsMode, "annals-mode", "", "exact, monthday, yearshift or doy (default ANNALS_MODE)")
	flag.BoolVar(&o.schedule, "schedule", false, "run on SCHEDULE_CRON until interrupted")
	flag.BoolVar(&o.serve, "serve", false, "serve the preview API on PORT until interrupted")
	flag.Parse()
	return o
}

func main() {
	os.Exit(run(parseFlags()))
}

func run(o options) int {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Printf("ERROR: failed to load config: %v", err)
		return exitConfig
	}
	if err := applyFlags(cfg, o); err != nil {
		log.Printf("ERROR: %v", err)
		return exitConfig
	}

	var date time.Time
	if o.date != "" {
		date, err = time.ParseInLocation(time.DateOnly, o.date, cfg.Location)
		if err != nil {
			log.Printf("ERROR: invalid --date %q: %v", o.date, err)
			return exitConfig
		}
	}

	// Shared HTTP client for outbound calls; its timeout is the only one applied.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var pub publish.Publisher = publish.NewStdoutPublisher(os.Stdout)
	if resolvePost(cfg.PostEnabled, o) {
		tp, err := publish.NewTwitterPublisher(cfg.Twitter, httpClient)
		if err != nil {
			log.Printf("ERROR: %v", err)
			return pipeline.ExitCode(err)
		}
		pub = tp
	}

	// In-memory normals cache; only hit in the long-running modes.
	memStore := store.NewMemoryStore(cfg.NormalsCacheMax, cfg.NormalsCacheTTL)

	service := pipeline.NewService(pipeline.Dependencies{
		Geocoder:  newGeocoder(cfg, httpClient),
		Current:   newCurrentProvider(cfg, httpClient),
		Normals:   providers.NewArchiveProvider(httpClient),
		Store:     memStore,
		Formatter: message.NewFormatter(cfg.Language),
		Publisher: pub,
	}, pipeline.Settings{
		Offsets: weather.Offsets{
			WarmingSince1850C: cfg.WarmingSince1850C,
			LIAExtraCoolingC:  cfg.LIAExtraCoolingC,
		},
		Timezone: cfg.Location,
		Annals: pipeline.AnnalsOptions{
			Path: cfg.AnnalsPath,
			Match: annals.Options{
				Mode:         annals.Mode(cfg.AnnalsMode),
				LocationHint: cfg.AnnalsLoc,
				Tolerance:    cfg.AnnalsTol,
			},
		},
	})

	if !o.schedule && !o.serve {
		_, err := service.Run(context.Background(), pipeline.Request{Place: cfg.LocationName, Date: date, Tag: o.tag})
		if err != nil {
			log.Printf("ERROR: %s: %v", pipeline.Describe(err), err)
		}
		return pipeline.ExitCode(err)
	}

	return runDaemon(cfg, o, service)
}

// resolvePost applies --dry-run and then --post over POST_TO_TWITTER, so
// --post wins when both are given.
func resolvePost(configured bool, o options) bool {
	if o.post {
		return true
	}
	if o.dryRun {
		return false
	}
	return configured
}

// applyFlags overrides configuration with explicit flags and re-validates it.
func applyFlags(cfg *config.AppConfig, o options) error {
	if p := strings.TrimSpace(o.place); p != "" {
		cfg.LocationName = p
	}
	if o.annalsPath != "" {
		cfg.AnnalsPath = o.annalsPath
	}
	if o.annalsLoc != "" {
		cfg.AnnalsLoc = o.annalsLoc
	}
	if o.annalsTol >= 0 {
		cfg.AnnalsTol = o.annalsTol
	}
	if o.annalsMode != "" {
		cfg.AnnalsMode = strings.ToLower(o.annalsMode)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func newGeocoder(cfg *config.AppConfig, client *http.Client) weather.Geocoder {
	if cfg.Geocoder == "google" {
		return providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey, cfg.Timezone)
	}
	return providers.NewOpenMeteoGeocoder(client, cfg.Language, cfg.Timezone)
}

func newCurrentProvider(cfg *config.AppConfig, client *http.Client) weather.CurrentProvider {
	switch cfg.CurrentProvider {
	case "openweathermap":
		return providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey)
	case "weatherapi":
		return providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey)
	default:
		return providers.NewOpenMeteoProvider(client)
	}
}

// runDaemon starts the scheduler and/or the preview API and blocks until a
// termination signal arrives.
func runDaemon(cfg *config.AppConfig, o options, service *pipeline.Service) int {
	if o.schedule {
		jobs := make([]scheduler.Job, 0, len(cfg.ScheduleCron))
		for i, spec := range cfg.ScheduleCron {
			tag := cfg.TagFor(i)
			if tag == "" {
				tag = o.tag
			}
			jobs = append(jobs, scheduler.Job{Cron: spec, Tag: tag})
		}

		sched := scheduler.New(cfg.Location, cfg.LocationName, jobs, service)
		if err := sched.Start(); err != nil {
			log.Printf("ERROR: failed to start scheduler: %v", err)
			return exitConfig
		}
		defer sched.Stop()
	}

	var app *fiber.App
	if o.serve {
		app = httpapi.NewApp(service)
		go func() {
			if err := app.Listen(":" + cfg.Port); err != nil {
				log.Printf("fiber server stopped: %v", err)
			}
		}()
		log.Printf("INFO: preview API listening on :%s", cfg.Port)
	}

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	if app != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	}
	return 0
}
