package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/helpmepack/internal/planner"
	"github.com/i474232898/helpmepack/internal/store"
	"github.com/i474232898/helpmepack/internal/trip"
)

var validate = validator.New()

const requestTimeout = 60 * time.Second

// Planner is what the trip routes need from the planning service.
type Planner interface {
	Plan(ctx context.Context, req planner.Request) (*planner.PackingPlan, error)
	Forecast(ctx context.Context, req planner.Request) (*trip.Forecast, error)
}

// ProbeStatus reports the latest upstream probe results.
type ProbeStatus interface {
	LatestAll() []store.ProbeResult
}

// Options tunes request validation.
type Options struct {
	MaxTripDays int
	// Zone in which dates are parsed and "today" is evaluated.
	Location *time.Location
	Now      func() time.Time
	Status   ProbeStatus
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, p Planner, opts Options) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	app.Get("/health/ready", func(c *fiber.Ctx) error {
		if opts.Status == nil {
			return c.JSON(fiber.Map{"status": "ok", "probes": []store.ProbeResult{}})
		}
		probes := opts.Status.LatestAll()
		status := "ok"
		for _, pr := range probes {
			if !pr.OK {
				status = "degraded"
			}
		}
		if status != "ok" {
			c.Status(fiber.StatusServiceUnavailable)
		}
		return c.JSON(fiber.Map{"status": status, "probes": probes})
	})

	v1 := app.Group("/api/v1")

	v1.Post("/trips", func(c *fiber.Ctx) error {
		var in tripInput
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		req, err := in.toRequest(opts)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
		defer cancel()

		plan, err := p.Plan(ctx, req)
		if err != nil {
			return planError(err)
		}
		return c.JSON(plan)
	})

	v1.Get("/trips/forecast", func(c *fiber.Ctx) error {
		var in tripInput
		if err := c.QueryParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
		}
		req, err := in.toRequest(opts)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
		defer cancel()

		forecast, err := p.Forecast(ctx, req)
		if err != nil {
			return planError(err)
		}
		return c.JSON(forecast)
	})
}

func planError(err error) error {
	switch {
	case errors.Is(err, trip.ErrNoForecastAvailable):
		return fiber.NewError(fiber.StatusBadGateway, trip.ErrNoForecastAvailable.Error())
	case errors.Is(err, planner.ErrPackingUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, planner.ErrPackingUnavailable.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to plan trip")
	}
}

// tripInput is the raw form, JSON or query input of a trip.
type tripInput struct {
	Destination string `json:"destination" form:"destination" query:"destination"`
	From        string `json:"from" form:"from" query:"from"`
	To          string `json:"to" form:"to" query:"to"`
}

// tripQuery holds the parsed trip for validation.
type tripQuery struct {
	Destination string    `validate:"required"`
	From        time.Time `validate:"required"`
	To          time.Time `validate:"required,gtefield=From"`
}

func (in tripInput) toRequest(opts Options) (planner.Request, error) {
	q := tripQuery{Destination: strings.TrimSpace(in.Destination)}

	if q.Destination == "" {
		return planner.Request{}, errors.New("the destination is required")
	}
	if in.From == "" || in.To == "" {
		return planner.Request{}, errors.New("from and to dates are required")
	}

	var err error
	if q.From, err = parseDay(in.From, opts.Location); err != nil {
		return planner.Request{}, errors.New("invalid from date; use yyyy-MM-dd")
	}
	if q.To, err = parseDay(in.To, opts.Location); err != nil {
		return planner.Request{}, errors.New("invalid to date; use yyyy-MM-dd")
	}

	if err := validate.Struct(q); err != nil {
		return planner.Request{}, validationMessage(err)
	}

	today := trip.StartOfDay(opts.Now(), opts.Location)
	if q.From.Before(today) {
		return planner.Request{}, errors.New("the from date must be today or later")
	}

	if opts.MaxTripDays > 0 {
		if n := len(trip.ExpandDateRange(q.From, q.To, opts.Location)); n > opts.MaxTripDays {
			return planner.Request{}, fmt.Errorf("trips are limited to %d days, got %d", opts.MaxTripDays, n)
		}
	}

	return planner.Request{Destination: q.Destination, From: q.From, To: q.To}, nil
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	day, err := trip.ParseDayID(s)
	if err != nil {
		return time.Time{}, err
	}
	return day.Time(loc)
}

// validationMessage turns the first failed tripQuery rule into a user-facing message.
func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.New("invalid trip request")
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		switch fe.Field() {
		case "Destination":
			return errors.New("the destination is required")
		case "From":
			return errors.New("the from date is required")
		case "To":
			return errors.New("the to date is required")
		}
	case "gtefield":
		return errors.New("the to date cannot be before the from date")
	}
	return fmt.Errorf("invalid %s", strings.ToLower(fe.Field()))
}
