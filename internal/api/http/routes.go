package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/weather-500-years/internal/pipeline"
	"github.com/i474232898/weather-500-years/internal/weather"
)

const serviceName = "weather-500-years"

var validate = validator.New()

// Composer builds a comparison without publishing it.
type Composer interface {
	Compose(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
}

// NewApp returns a Fiber app with the health endpoint, JSON error responses
// and the preview routes registered.
func NewApp(composer Composer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// upstream calls are bounded by the HTTP client timeout
		WriteTimeout: 90 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})

	RegisterRoutes(app, composer)
	return app
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, composer Composer) {
	v1 := app.Group("/api/v1")

	// Preview only; this endpoint never publishes.
	v1.Get("/comparison", func(c *fiber.Ctx) error {
		q, err := parseComparisonQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		out, err := composer.Compose(c.UserContext(), q.toRequest())
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(out)
	})
}

// comparisonQuery holds query parameters for the comparison endpoint.
type comparisonQuery struct {
	Place string `validate:"required,max=100"`
	Date  string `validate:"omitempty,datetime=2006-01-02"`
	Tag   string `validate:"max=32"`
}

func parseComparisonQuery(c *fiber.Ctx) (comparisonQuery, error) {
	q := comparisonQuery{
		Place: c.Query("place"),
		Date:  c.Query("date"),
		Tag:   c.Query("tag"),
	}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func (q comparisonQuery) toRequest() pipeline.Request {
	req := pipeline.Request{Place: q.Place, Tag: q.Tag}
	if q.Date != "" {
		// already validated
		req.Date, _ = time.Parse(time.DateOnly, q.Date)
	}
	return req
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, weather.ErrNetwork), errors.Is(err, weather.ErrWeatherAPI):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
