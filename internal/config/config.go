package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Env      string
	LogLevel string
	Port     string

	WeatherAPIKey     string
	WeatherAPIBaseURL string
	// Outbound rate limit shared by every day fetch.
	WeatherAPIRPS   float64
	WeatherAPIBurst int

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	HTTPTimeout     time.Duration
	DayFetchTimeout time.Duration

	MaxTripDays int
	// Location used for midnight normalization and "today".
	Timezone *time.Location

	// Upstream probe. A zero interval disables the scheduler.
	ProbeInterval time.Duration
	ProbeLocation string
	ProbeHistory  int
}

var errMissingWeatherKey = errors.New("WEATHER_API_KEY is required")

var defaults = map[string]interface{}{
	"APP_ENV":              "development",
	"LOG_LEVEL":            "info",
	"PORT":                 "8080",
	"WEATHER_API_BASE_URL": "https://api.weatherapi.com/v1",
	"WEATHER_API_RPS":      5.0,
	"WEATHER_API_BURST":    10,
	"OPENAI_BASE_URL":      "https://api.openai.com/v1",
	"OPENAI_MODEL":         "gpt-3.5-turbo-0613",
	"HTTP_TIMEOUT":         "10s",
	"DAY_FETCH_TIMEOUT":    "8s",
	"MAX_TRIP_DAYS":        22,
	"TIMEZONE":             "UTC",
	"PROBE_INTERVAL":       "15m",
	"PROBE_LOCATION":       "London",
	"PROBE_HISTORY":        20,
}

// LoadDotEnv loads a .env file into the process environment if one exists.
func LoadDotEnv() error {
	return godotenv.Load()
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	v := viper.New()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	v.AutomaticEnv()

	cfg := &AppConfig{
		Env:               v.GetString("APP_ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		Port:              v.GetString("PORT"),
		WeatherAPIKey:     v.GetString("WEATHER_API_KEY"),
		WeatherAPIBaseURL: v.GetString("WEATHER_API_BASE_URL"),
		WeatherAPIRPS:     v.GetFloat64("WEATHER_API_RPS"),
		WeatherAPIBurst:   v.GetInt("WEATHER_API_BURST"),
		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:     v.GetString("OPENAI_BASE_URL"),
		OpenAIModel:       v.GetString("OPENAI_MODEL"),
		MaxTripDays:       v.GetInt("MAX_TRIP_DAYS"),
		ProbeLocation:     v.GetString("PROBE_LOCATION"),
		ProbeHistory:      v.GetInt("PROBE_HISTORY"),
	}

	if cfg.WeatherAPIKey == "" {
		return nil, errMissingWeatherKey
	}

	var err error
	if cfg.HTTPTimeout, err = duration(v, "HTTP_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.DayFetchTimeout, err = duration(v, "DAY_FETCH_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.ProbeInterval, err = duration(v, "PROBE_INTERVAL"); err != nil {
		return nil, err
	}

	tz, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Timezone = tz

	if cfg.MaxTripDays <= 0 {
		return nil, fmt.Errorf("invalid MAX_TRIP_DAYS: %d", cfg.MaxTripDays)
	}

	return cfg, nil
}

// SummarizationEnabled reports whether a language-model key is configured.
func (c *AppConfig) SummarizationEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
