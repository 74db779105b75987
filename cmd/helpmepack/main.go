package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	httpapi "github.com/i474232898/helpmepack/internal/api/http"
	"github.com/i474232898/helpmepack/internal/config"
	"github.com/i474232898/helpmepack/internal/logger"
	"github.com/i474232898/helpmepack/internal/planner"
	"github.com/i474232898/helpmepack/internal/scheduler"
	"github.com/i474232898/helpmepack/internal/store"
	"github.com/i474232898/helpmepack/internal/summary"
	"github.com/i474232898/helpmepack/internal/trip"
	"github.com/i474232898/helpmepack/internal/trip/providers"
)

func main() {
	dotenvErr := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog := logger.New(cfg.LogLevel, cfg.Env).WithField("service", "helpmepack")
	if dotenvErr != nil {
		appLog.Infof("no .env file loaded: %v", dotenvErr)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Both sources draw from one WeatherAPI account, so they share a limiter.
	weatherLimiter := providers.NewLimiter(cfg.WeatherAPIRPS, cfg.WeatherAPIBurst)
	upcoming := providers.NewRateLimitedSource(
		providers.NewUpcomingSource(httpClient, cfg.WeatherAPIBaseURL, cfg.WeatherAPIKey), weatherLimiter)
	future := providers.NewRateLimitedSource(
		providers.NewFutureSource(httpClient, cfg.WeatherAPIBaseURL, cfg.WeatherAPIKey), weatherLimiter)

	aggregator := trip.NewAggregator(upcoming, future,
		trip.WithLocation(cfg.Timezone),
		trip.WithDayTimeout(cfg.DayFetchTimeout),
		trip.WithLogger(appLog),
	)

	if !cfg.SummarizationEnabled() {
		appLog.Warn("OPENAI_API_KEY not set; packing suggestions will fail")
	}
	completer := summary.NewClient(httpClient, cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)

	service := planner.NewService(aggregator, completer, appLog)

	// Upstream probes feed the readiness endpoint.
	probeStore := store.NewMemoryStore(cfg.ProbeHistory)
	sched := scheduler.New([]scheduler.Target{
		{Source: upcoming, Offset: 0},
		{Source: future, Offset: trip.FutureHorizonDays},
	}, cfg.ProbeLocation, cfg.Timezone, cfg.ProbeInterval, probeStore, appLog)
	if err := sched.Start(); err != nil {
		appLog.Errorf("failed to start scheduler: %v", err)
		return
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "helpmepack",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          90 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use("/api", limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded, please try again later")
		},
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "helpmepack",
		})
	})

	httpapi.RegisterRoutes(app, service, httpapi.Options{
		MaxTripDays: cfg.MaxTripDays,
		Location:    cfg.Timezone,
		Status:      probeStore,
	})

	go func() {
		appLog.Infof("listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLog.Errorf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLog.Errorf("error during shutdown: %v", err)
	}
}
