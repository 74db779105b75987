package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/helpmepack/internal/logger"
	"github.com/i474232898/helpmepack/internal/summary"
	"github.com/i474232898/helpmepack/internal/trip"
)

// FallbackSummary stands in for the forecast summary when it cannot be generated.
const FallbackSummary = "Unable to fetch weather forecast summary"

// ErrPackingUnavailable is returned when no packing list could be generated.
var ErrPackingUnavailable = errors.New("could not produce packing suggestions")

// Aggregator produces a trip forecast for a location and date range.
type Aggregator interface {
	Aggregate(ctx context.Context, query string, start, end time.Time) (*trip.Forecast, error)
}

// Request describes one trip.
type Request struct {
	Destination string
	From        time.Time
	To          time.Time
}

// PackingPlan is everything returned to the user for a trip.
type PackingPlan struct {
	ID          string         `json:"id"`
	Destination string         `json:"destination"`
	From        trip.DayID     `json:"from"`
	To          trip.DayID     `json:"to"`
	Forecast    *trip.Forecast `json:"forecast"`
	Summary     string         `json:"summary"`
	PackingList []string       `json:"packingList"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// Service runs forecast aggregation followed by the two summarization steps.
type Service struct {
	aggregator Aggregator
	completer  summary.Completer
	logger     logger.Logger
	now        func() time.Time
}

func NewService(aggregator Aggregator, completer summary.Completer, log logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		aggregator: aggregator,
		completer:  completer,
		logger:     log.WithField("component", "planner"),
		now:        time.Now,
	}
}

// Forecast returns the trip forecast without any summarization.
func (s *Service) Forecast(ctx context.Context, req Request) (*trip.Forecast, error) {
	return s.aggregator.Aggregate(ctx, req.Destination, req.From, req.To)
}

// Plan builds the forecast, its summary and a packing list. A failed summary
// degrades to FallbackSummary; a failed packing list fails the plan.
func (s *Service) Plan(ctx context.Context, req Request) (*PackingPlan, error) {
	forecast, err := s.Forecast(ctx, req)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithField("destination", req.Destination)
	if missing := forecast.Missing(); missing > 0 {
		log.Infof("forecast missing for %d of %d days", missing, len(forecast.Days))
	}

	forecastSummary, err := s.completer.Complete(ctx, forecastSummaryPrompt(forecast))
	if err != nil {
		log.Warnf("forecast summary failed: %v", err)
		forecastSummary = FallbackSummary
	}

	from, to := trip.NewDayID(req.From), trip.NewDayID(req.To)

	suggestions, err := s.completer.Complete(ctx, packingPrompt(req.Destination, from, to, forecastSummary))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackingUnavailable, err)
	}
	items := parsePackingList(suggestions)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: completion was empty", ErrPackingUnavailable)
	}

	return &PackingPlan{
		ID:          uuid.NewString(),
		Destination: req.Destination,
		From:        from,
		To:          to,
		Forecast:    forecast,
		Summary:     forecastSummary,
		PackingList: items,
		GeneratedAt: s.now().UTC(),
	}, nil
}
