package planner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/i474232898/helpmepack/internal/trip"
)

const missingDayText = "could not get forecast"

func forecastSummaryPrompt(f *trip.Forecast) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a travel agent helping a traveller who is heading to %s, %s.\n\n", f.Location.Name, regionOrCountry(f.Location))
	b.WriteString("Your task:\n")
	b.WriteString("- Point out anything unusual in the forecast, such as sudden temperature swings, strong wind or heavy rain.\n")
	b.WriteString("- Call out events like a heat wave or a cold snap.\n")
	b.WriteString("- Summarize the whole trip in about the length of a tweet.\n")
	b.WriteString("- Do not give a day by day summary.\n")
	b.WriteString("- Prefer plain words like rain or showers over precipitation.\n")
	b.WriteString("- Do not open with \"Weather forecast for your trip to\".\n\n")
	b.WriteString("Example answer:\n")
	b.WriteString("Mostly sunny with highs between 32.5-33.4°C and lows between 21-23.6°C. Humidity sits around 70-80% with a chance of light showers on one day. Enjoy your trip!\n\n")
	b.WriteString(forecastBlock(f))

	return b.String()
}

func forecastBlock(f *trip.Forecast) string {
	var b strings.Builder

	loc := f.Location
	if loc.Region != nil {
		fmt.Fprintf(&b, "Weather forecast for a trip to %s, %s, %s:\n", loc.Name, *loc.Region, loc.Country)
	} else {
		fmt.Fprintf(&b, "Weather forecast for a trip to %s, %s:\n", loc.Name, loc.Country)
	}

	for _, slot := range f.Days {
		if !slot.Available() {
			fmt.Fprintf(&b, "- %s: %s\n", slot.Date, missingDayText)
			continue
		}
		d := slot.Forecast
		fmt.Fprintf(&b, "- %s:\n", slot.Date)
		fmt.Fprintf(&b, "  - Max temperature: %g°C\n", d.MaxTemperatureC)
		fmt.Fprintf(&b, "  - Min temperature: %g°C\n", d.MinTemperatureC)
		fmt.Fprintf(&b, "  - Avg temperature: %g°C\n", d.AvgTemperatureC)
		fmt.Fprintf(&b, "  - Max wind: %gkph\n", d.MaxWindKph)
		fmt.Fprintf(&b, "  - Avg humidity: %g%%\n", d.AvgHumidityPct)
		fmt.Fprintf(&b, "  - Total precipitation: %gmm\n", d.TotalPrecipitationMm)
	}
	return b.String()
}

func packingPrompt(destination string, from, to trip.DayID, forecastSummary string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are helping a traveller pack for a trip to %s from %s until %s.\n\n", destination, from, to)
	b.WriteString("Your task:\n")
	b.WriteString("- Read the weather summary below.\n")
	b.WriteString("- List everything the traveller should pack, given the weather and the length of the trip.\n")
	b.WriteString("- Answer with a list where every line is a quantity followed by an item.\n")
	b.WriteString("- Only include clothing, shoes, socks, underwear and accessories.\n")
	b.WriteString("- Only return the list, with no introduction.\n\n")
	b.WriteString("Example answer:\n")
	b.WriteString("- 2 pairs of shorts\n- 5 t-shirts\n- 1 pair of jeans\n- 1 pair of sneakers\n- 5 pairs of socks\n- 5 pairs of underwear\n\n")
	b.WriteString("Weather summary:\n")
	b.WriteString(forecastSummary)
	b.WriteString("\n")

	return b.String()
}

func regionOrCountry(loc trip.Location) string {
	if loc.Region != nil {
		return *loc.Region
	}
	return loc.Country
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)

// parsePackingList keeps the lines of a completion that look like list items,
// with their markers removed. A completion without any list markers is taken
// line by line as it is.
func parsePackingList(text string) []string {
	var items, plain []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		plain = append(plain, line)
		if !listMarker.MatchString(line) {
			continue
		}
		item := strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return plain
	}
	return items
}
