package trip

// Location is the resolved display location of a trip.
// Region is nil when the upstream leaves it blank.
type Location struct {
	Name     string  `json:"name"`
	Region   *string `json:"region"`
	Country  string  `json:"country"`
	Timezone string  `json:"tz_id"`
}

// DailyForecast holds one day's statistics, passed through from the upstream
// payload without unit conversion.
type DailyForecast struct {
	Date                 DayID   `json:"date"`
	MaxTemperatureC      float64 `json:"maxTemperatureInCelsius"`
	MinTemperatureC      float64 `json:"minTemperatureInCelsius"`
	AvgTemperatureC      float64 `json:"avgTemperatureInCelsius"`
	MaxWindKph           float64 `json:"maxWindInKph"`
	AvgHumidityPct       float64 `json:"avgHumidity"`
	TotalPrecipitationMm float64 `json:"totalPrecipitationInMm"`
}

// DaySlot is one position of a trip forecast. Forecast is nil when the day
// could not be fetched or falls between the sources' windows.
type DaySlot struct {
	Date     DayID          `json:"date"`
	Forecast *DailyForecast `json:"stats"`
}

// Available reports whether the slot holds a forecast.
func (s DaySlot) Available() bool {
	return s.Forecast != nil
}

// Forecast is the trip-level result: one shared location plus one slot per
// requested day in chronological order.
type Forecast struct {
	Location Location  `json:"location"`
	Days     []DaySlot `json:"forecast"`
}

// Missing returns the number of days without a forecast.
func (f *Forecast) Missing() int {
	n := 0
	for _, d := range f.Days {
		if !d.Available() {
			n++
		}
	}
	return n
}

// DayResult is what a Source returns for a single day.
type DayResult struct {
	Location Location
	Forecast DailyForecast
}
