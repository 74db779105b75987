package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/helpmepack/internal/logger"
	"github.com/i474232898/helpmepack/internal/store"
	"github.com/i474232898/helpmepack/internal/trip"
)

const probeTimeout = 30 * time.Second

// Target is a source to probe and the day offset it is probed at.
type Target struct {
	Source trip.Source
	Offset int
}

// Scheduler periodically probes the upstream forecast sources and records
// the outcome for readiness reporting.
type Scheduler struct {
	scheduler *gocron.Scheduler
	targets   []Target
	store     *store.MemoryStore
	location  string
	zone      *time.Location
	interval  time.Duration
	now       func() time.Time
	logger    logger.Logger
}

// New creates a new Scheduler. Probe days are counted from today in zone,
// the same zone the aggregator classifies days in.
func New(targets []Target, location string, zone *time.Location, interval time.Duration, st *store.MemoryStore, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}
	if zone == nil {
		zone = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		targets:   targets,
		store:     st,
		location:  location,
		zone:      zone,
		interval:  interval,
		now:       time.Now,
		logger:    log.WithField("component", "scheduler"),
	}
}

// Start schedules the probe job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.targets) == 0 || s.interval <= 0 {
		s.logger.Info("probes disabled; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce probes every target concurrently and waits for all of them.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.logger.Debug("running upstream probes")

	today := trip.StartOfDay(s.now(), s.zone)

	var wg sync.WaitGroup
	for _, target := range s.targets {
		wg.Add(1)
		go func(target Target) {
			defer wg.Done()
			s.store.Save(s.probe(ctx, target, today))
		}(target)
	}
	wg.Wait()
}

func (s *Scheduler) probe(ctx context.Context, target Target, today time.Time) store.ProbeResult {
	day := trip.NewDayID(today.AddDate(0, 0, target.Offset))
	started := time.Now()

	_, err := target.Source.FetchDay(ctx, s.location, day)

	result := store.ProbeResult{
		Source:  target.Source.Name(),
		At:      started.UTC(),
		OK:      err == nil,
		Latency: time.Since(started),
	}
	if err != nil {
		result.Error = err.Error()
		s.logger.WithField("source", result.Source).Warnf("probe failed: %v", err)
	}
	return result
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
