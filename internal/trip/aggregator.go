package trip

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/helpmepack/internal/logger"
)

// ErrNoForecastAvailable is returned when no requested day produced a forecast.
var ErrNoForecastAvailable = errors.New("could not find forecast for given dates")

// Aggregator fans out one fetch per trip day and assembles a trip forecast.
type Aggregator struct {
	upcoming   Source
	future     Source
	loc        *time.Location
	dayTimeout time.Duration
	now        func() time.Time
	logger     logger.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the wall clock used to decide "today".
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLocation sets the zone in which days are normalized to midnight.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithDayTimeout bounds each per-day fetch. Zero means no extra bound.
func WithDayTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.dayTimeout = d }
}

// WithLogger sets the logger used for per-day failures. A nil logger is ignored.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAggregator creates an Aggregator over the two upstream sources.
func NewAggregator(upcoming, future Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		upcoming: upcoming,
		future:   future,
		loc:      time.UTC,
		now:      time.Now,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithField("component", "aggregator")
	return a
}

// Location returns the zone the aggregator normalizes days in.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Aggregate fetches every day of [start, end] concurrently and waits for all of
// them. A failed day becomes an empty slot; only an empty range or a trip with
// no successful day fails, with ErrNoForecastAvailable.
func (a *Aggregator) Aggregate(ctx context.Context, query string, start, end time.Time) (*Forecast, error) {
	// Captured once so a slow fan-out cannot classify days against different dates.
	today := StartOfDay(a.now(), a.loc)

	days := ExpandDateRange(start, end, a.loc)
	if len(days) == 0 {
		return nil, ErrNoForecastAvailable
	}

	results := make([]*DayResult, len(days))

	var wg sync.WaitGroup
	for i, day := range days {
		wg.Add(1)
		go func(i int, day DayID) {
			defer wg.Done()
			results[i] = a.fetchDay(ctx, query, day, today)
		}(i, day)
	}
	wg.Wait()

	forecast := &Forecast{Days: make([]DaySlot, len(days))}
	found := false
	for i, day := range days {
		forecast.Days[i] = DaySlot{Date: day}
		r := results[i]
		if r == nil {
			continue
		}
		if !found {
			forecast.Location = r.Location
			found = true
		}
		f := r.Forecast
		forecast.Days[i].Forecast = &f
	}

	if !found {
		a.logger.WithField("location", query).Warnf("no forecast for any of %d days", len(days))
		return nil, ErrNoForecastAvailable
	}

	return forecast, nil
}

// fetchDay returns nil for any day without a usable forecast.
func (a *Aggregator) fetchDay(ctx context.Context, query string, day DayID, today time.Time) *DayResult {
	log := a.logger.WithFields(map[string]interface{}{
		"day":      day.String(),
		"location": query,
	})

	t, err := day.Time(a.loc)
	if err != nil {
		log.Warnf("invalid day: %v", err)
		return nil
	}

	kind := Classify(daysBetween(today, t))
	src := a.sourceFor(kind)
	if src == nil {
		log.Debugf("no source for %s day", kind)
		return nil
	}

	if a.dayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.dayTimeout)
		defer cancel()
	}

	res, err := src.FetchDay(ctx, query, day)
	if err != nil {
		log.WithField("source", src.Name()).Warnf("forecast fetch failed: %v", err)
		return nil
	}
	return &res
}

func (a *Aggregator) sourceFor(kind SourceKind) Source {
	switch kind {
	case KindUpcoming:
		return a.upcoming
	case KindFuture:
		return a.future
	default:
		return nil
	}
}
