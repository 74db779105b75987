package trip

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// now is mid-afternoon so day offsets must not depend on the time of day.
var now = time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC)

func offset(n int) time.Time {
	return date(2024, 5, 1).AddDate(0, 0, n)
}

type fakeSource struct {
	name  string
	fail  map[DayID]bool
	delay map[DayID]time.Duration
	// Location returned for a day, keyed by DayID; defaults to "Paris".
	names map[DayID]string

	mu    sync.Mutex
	calls []DayID
}

func newFakeSource(name string) *fakeSource {
	return &fakeSource{
		name:  name,
		fail:  map[DayID]bool{},
		delay: map[DayID]time.Duration{},
		names: map[DayID]string{},
	}
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchDay(ctx context.Context, query string, day DayID) (DayResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, day)
	f.mu.Unlock()

	if d := f.delay[day]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return DayResult{}, ctx.Err()
		}
	}
	if f.fail[day] {
		return DayResult{}, errors.New("upstream failure")
	}

	name := f.names[day]
	if name == "" {
		name = "Paris"
	}
	region := "Ile-de-France"
	return DayResult{
		Location: Location{Name: name, Region: &region, Country: "France", Timezone: "Europe/Paris"},
		Forecast: DailyForecast{Date: day, MaxTemperatureC: 20, MinTemperatureC: 10, AvgTemperatureC: 15},
	}, nil
}

func (f *fakeSource) called() []DayID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]DayID, len(f.calls))
	copy(out, f.calls)
	return out
}

func newTestAggregator(up, fut Source, opts ...Option) *Aggregator {
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return NewAggregator(up, fut, opts...)
}

func slotState(f *Forecast) []bool {
	out := make([]bool, len(f.Days))
	for i, d := range f.Days {
		out[i] = d.Available()
	}
	return out
}

func TestAggregateDispatch(t *testing.T) {
	cases := []struct {
		name         string
		offset       int
		wantUpcoming int
		wantFuture   int
	}{
		{"offset 5 uses upcoming", 5, 1, 0},
		{"offset 13 uses future", 13, 0, 1},
		{"offset 10 uses neither", 10, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			up := newFakeSource("upcoming")
			fut := newFakeSource("future")
			agg := newTestAggregator(up, fut)

			_, _ = agg.Aggregate(context.Background(), "Paris", offset(tc.offset), offset(tc.offset))

			assert.Len(t, up.called(), tc.wantUpcoming)
			assert.Len(t, fut.called(), tc.wantFuture)
		})
	}
}

func TestAggregateAllUpcomingSucceed(t *testing.T) {
	up := newFakeSource("upcoming")
	fut := newFakeSource("future")
	agg := newTestAggregator(up, fut)

	f, err := agg.Aggregate(context.Background(), "Paris", offset(0), offset(3))
	require.NoError(t, err)

	require.Len(t, f.Days, 4)
	for i, slot := range f.Days {
		assert.Equal(t, NewDayID(offset(i)), slot.Date)
		require.NotNil(t, slot.Forecast)
		assert.Equal(t, slot.Date, slot.Forecast.Date)
	}
	assert.Equal(t, "Paris", f.Location.Name)
	assert.Equal(t, 0, f.Missing())
	assert.Empty(t, fut.called())
}

func TestAggregatePartialFailure(t *testing.T) {
	up := newFakeSource("upcoming")
	up.fail[NewDayID(offset(3))] = true
	agg := newTestAggregator(up, newFakeSource("future"))

	f, err := agg.Aggregate(context.Background(), "Paris", offset(1), offset(5))
	require.NoError(t, err)

	assert.Equal(t, []bool{true, true, false, true, true}, slotState(f))
	assert.Equal(t, NewDayID(offset(3)), f.Days[2].Date)
	assert.Equal(t, 1, f.Missing())
}

func TestAggregateNilLoggerIgnored(t *testing.T) {
	up := newFakeSource("upcoming")
	up.fail[NewDayID(offset(2))] = true
	agg := NewAggregator(up, newFakeSource("future"), WithClock(func() time.Time { return now }), WithLogger(nil))

	var f *Forecast
	var err error
	require.NotPanics(t, func() {
		f, err = agg.Aggregate(context.Background(), "Paris", offset(1), offset(3))
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, slotState(f))
}

func TestAggregateCrossesGap(t *testing.T) {
	up := newFakeSource("upcoming")
	fut := newFakeSource("future")
	agg := newTestAggregator(up, fut)

	f, err := agg.Aggregate(context.Background(), "Paris", offset(8), offset(14))
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false, false, false, false, true, true}, slotState(f))
	assert.ElementsMatch(t, []DayID{NewDayID(offset(8))}, up.called())
	assert.ElementsMatch(t, []DayID{NewDayID(offset(13)), NewDayID(offset(14))}, fut.called())
}

func TestAggregateNoForecast(t *testing.T) {
	t.Run("every day fails", func(t *testing.T) {
		up := newFakeSource("upcoming")
		for i := 0; i < 3; i++ {
			up.fail[NewDayID(offset(i))] = true
		}
		agg := newTestAggregator(up, newFakeSource("future"))

		_, err := agg.Aggregate(context.Background(), "Paris", offset(0), offset(2))
		assert.ErrorIs(t, err, ErrNoForecastAvailable)
	})

	t.Run("only gap days", func(t *testing.T) {
		agg := newTestAggregator(newFakeSource("upcoming"), newFakeSource("future"))

		_, err := agg.Aggregate(context.Background(), "Paris", offset(9), offset(12))
		assert.ErrorIs(t, err, ErrNoForecastAvailable)
	})

	t.Run("empty range", func(t *testing.T) {
		up := newFakeSource("upcoming")
		agg := newTestAggregator(up, newFakeSource("future"))

		_, err := agg.Aggregate(context.Background(), "Paris", offset(3), offset(1))
		assert.ErrorIs(t, err, ErrNoForecastAvailable)
		assert.Empty(t, up.called())
	})
}

func TestAggregateOrderIndependentOfCompletion(t *testing.T) {
	up := newFakeSource("upcoming")
	// The first day finishes last and carries a different location name.
	up.delay[NewDayID(offset(0))] = 50 * time.Millisecond
	up.names[NewDayID(offset(0))] = "Paris (slow)"
	up.fail[NewDayID(offset(1))] = true
	agg := newTestAggregator(up, newFakeSource("future"))

	f, err := agg.Aggregate(context.Background(), "Paris", offset(0), offset(3))
	require.NoError(t, err)

	for i, slot := range f.Days {
		assert.Equal(t, NewDayID(offset(i)), slot.Date)
	}
	assert.Equal(t, "Paris (slow)", f.Location.Name)
}

func TestAggregateFirstSuccessfulLocationWins(t *testing.T) {
	up := newFakeSource("upcoming")
	up.fail[NewDayID(offset(0))] = true
	up.names[NewDayID(offset(1))] = "Paris 1"
	up.names[NewDayID(offset(2))] = "Paris 2"
	agg := newTestAggregator(up, newFakeSource("future"))

	f, err := agg.Aggregate(context.Background(), "Paris", offset(0), offset(2))
	require.NoError(t, err)
	assert.Equal(t, "Paris 1", f.Location.Name)
}

func TestAggregateDayTimeout(t *testing.T) {
	up := newFakeSource("upcoming")
	up.delay[NewDayID(offset(1))] = time.Second
	agg := newTestAggregator(up, newFakeSource("future"), WithDayTimeout(20*time.Millisecond))

	f, err := agg.Aggregate(context.Background(), "Paris", offset(0), offset(2))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, slotState(f))
}

func TestAggregateUsesConfiguredZone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2024-05-01 15:30 UTC is already 2024-05-02 in UTC+10, so that date is offset 0
	// and 2024-05-15 is offset 13.
	up := newFakeSource("upcoming")
	fut := newFakeSource("future")
	agg := newTestAggregator(up, fut, WithLocation(loc))

	start := time.Date(2024, 5, 15, 0, 0, 0, 0, loc)
	_, err := agg.Aggregate(context.Background(), "Sydney", start, start)
	require.NoError(t, err)

	assert.Empty(t, up.called())
	assert.Equal(t, []DayID{"2024-05-15"}, fut.called())
	assert.Equal(t, loc, agg.Location())
}
