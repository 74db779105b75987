package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/helpmepack/internal/httpclient"
	"github.com/i474232898/helpmepack/internal/trip"
)

// DefaultBaseURL is the WeatherAPI.com v1 endpoint root.
const DefaultBaseURL = "https://api.weatherapi.com/v1"

// upcomingDays is how many days forecast.json is asked for.
const upcomingDays = 10

var (
	// ErrDayNotInForecast is returned when the payload has no entry for the requested date.
	ErrDayNotInForecast = errors.New("could not find forecast for given date")
	errNoAPIKey         = errors.New("weatherapi api key is not configured")
)

// forecastResponse is the subset of the forecast.json / future.json payload we read.
type forecastResponse struct {
	Location struct {
		Name    string `json:"name"`
		Region  string `json:"region"`
		Country string `json:"country"`
		TzID    string `json:"tz_id"`
	} `json:"location"`
	Forecast struct {
		ForecastDay []forecastDay `json:"forecastday"`
	} `json:"forecast"`
}

type forecastDay struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempC      float64 `json:"maxtemp_c"`
		MinTempC      float64 `json:"mintemp_c"`
		AvgTempC      float64 `json:"avgtemp_c"`
		MaxWindKph    float64 `json:"maxwind_kph"`
		AvgHumidity   float64 `json:"avghumidity"`
		TotalPrecipMm float64 `json:"totalprecip_mm"`
	} `json:"day"`
}

// weatherAPIClient holds what both WeatherAPI.com sources share.
type weatherAPIClient struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg httpclient.Config
	circuit *gobreaker.CircuitBreaker
}

func newWeatherAPIClient(name string, client *http.Client, baseURL, apiKey string) weatherAPIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return weatherAPIClient{
		name:    name,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: httpclient.Config{
			Client:  client,
			Backoff: httpclient.DefaultBackoff,
		},
		circuit: httpclient.NewBreaker(name),
	}
}

func (c *weatherAPIClient) get(ctx context.Context, endpoint string, values url.Values) (*forecastResponse, error) {
	if c.apiKey == "" {
		return nil, errNoAPIKey
	}
	values.Set("key", c.apiKey)

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := httpclient.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	defer resp.Body.Close()

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", c.name, err)
	}
	return &payload, nil
}

// UpcomingSource serves near-term days from the rolling 10-day forecast.json
// endpoint, picking the requested date out of the response.
type UpcomingSource struct {
	weatherAPIClient
}

var _ trip.Source = (*UpcomingSource)(nil)

func NewUpcomingSource(client *http.Client, baseURL, apiKey string) *UpcomingSource {
	return &UpcomingSource{newWeatherAPIClient("weatherapi-forecast", client, baseURL, apiKey)}
}

func (s *UpcomingSource) Name() string { return s.name }

func (s *UpcomingSource) FetchDay(ctx context.Context, query string, day trip.DayID) (trip.DayResult, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("days", fmt.Sprint(upcomingDays))
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	payload, err := s.get(ctx, "forecast.json", values)
	if err != nil {
		return trip.DayResult{}, err
	}

	for _, fd := range payload.Forecast.ForecastDay {
		if fd.Date == day.String() {
			return trip.DayResult{
				Location: normalizeLocation(payload),
				Forecast: normalizeDay(fd),
			}, nil
		}
	}
	return trip.DayResult{}, fmt.Errorf("%w: %s %s", ErrDayNotInForecast, query, day)
}

// FutureSource serves far-future days from future.json, which answers for
// exactly one date.
type FutureSource struct {
	weatherAPIClient
}

var _ trip.Source = (*FutureSource)(nil)

func NewFutureSource(client *http.Client, baseURL, apiKey string) *FutureSource {
	return &FutureSource{newWeatherAPIClient("weatherapi-future", client, baseURL, apiKey)}
}

func (s *FutureSource) Name() string { return s.name }

func (s *FutureSource) FetchDay(ctx context.Context, query string, day trip.DayID) (trip.DayResult, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("dt", day.String())

	payload, err := s.get(ctx, "future.json", values)
	if err != nil {
		return trip.DayResult{}, err
	}

	if len(payload.Forecast.ForecastDay) == 0 {
		return trip.DayResult{}, fmt.Errorf("%w: %s %s", ErrDayNotInForecast, query, day)
	}
	return trip.DayResult{
		Location: normalizeLocation(payload),
		Forecast: normalizeDay(payload.Forecast.ForecastDay[0]),
	}, nil
}

func normalizeLocation(p *forecastResponse) trip.Location {
	loc := trip.Location{
		Name:     p.Location.Name,
		Country:  p.Location.Country,
		Timezone: p.Location.TzID,
	}
	if p.Location.Region != "" {
		region := p.Location.Region
		loc.Region = &region
	}
	return loc
}

// normalizeDay copies the day block verbatim; WeatherAPI already reports
// Celsius, km/h, percent and millimetres.
func normalizeDay(fd forecastDay) trip.DailyForecast {
	return trip.DailyForecast{
		Date:                 trip.DayID(fd.Date),
		MaxTemperatureC:      fd.Day.MaxTempC,
		MinTemperatureC:      fd.Day.MinTempC,
		AvgTemperatureC:      fd.Day.AvgTempC,
		MaxWindKph:           fd.Day.MaxWindKph,
		AvgHumidityPct:       fd.Day.AvgHumidity,
		TotalPrecipitationMm: fd.Day.TotalPrecipMm,
	}
}
