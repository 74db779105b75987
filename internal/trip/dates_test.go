package trip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandDateRange(t *testing.T) {
	t.Run("inclusive ascending range", func(t *testing.T) {
		days := ExpandDateRange(date(2024, 5, 1), date(2024, 5, 4), time.UTC)
		assert.Equal(t, []DayID{"2024-05-01", "2024-05-02", "2024-05-03", "2024-05-04"}, days)
	})

	t.Run("single day", func(t *testing.T) {
		days := ExpandDateRange(date(2024, 5, 1), date(2024, 5, 1), time.UTC)
		assert.Equal(t, []DayID{"2024-05-01"}, days)
	})

	t.Run("inverted range is empty", func(t *testing.T) {
		days := ExpandDateRange(date(2024, 5, 4), date(2024, 5, 1), time.UTC)
		assert.NotNil(t, days)
		assert.Empty(t, days)
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		start := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
		end := time.Date(2024, 5, 2, 0, 1, 0, 0, time.UTC)
		assert.Equal(t, []DayID{"2024-05-01", "2024-05-02"}, ExpandDateRange(start, end, time.UTC))

		sameDay := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, []DayID{"2024-05-01"}, ExpandDateRange(start, sameDay, time.UTC))
	})

	t.Run("crosses month and leap day", func(t *testing.T) {
		days := ExpandDateRange(date(2024, 2, 28), date(2024, 3, 1), time.UTC)
		assert.Equal(t, []DayID{"2024-02-28", "2024-02-29", "2024-03-01"}, days)
	})

	t.Run("crosses DST change", func(t *testing.T) {
		loc, err := time.LoadLocation("Europe/Paris")
		require.NoError(t, err)

		start := time.Date(2024, 3, 30, 0, 0, 0, 0, loc)
		end := time.Date(2024, 4, 1, 0, 0, 0, 0, loc)
		assert.Equal(t, []DayID{"2024-03-30", "2024-03-31", "2024-04-01"}, ExpandDateRange(start, end, loc))
	})

	t.Run("length matches day count without duplicates", func(t *testing.T) {
		start := date(2023, 12, 20)
		for n := 0; n < 40; n++ {
			days := ExpandDateRange(start, start.AddDate(0, 0, n), time.UTC)
			require.Len(t, days, n+1)

			seen := make(map[DayID]bool, len(days))
			for i, d := range days {
				assert.False(t, seen[d], "duplicate %s", d)
				seen[d] = true
				if i > 0 {
					assert.Less(t, string(days[i-1]), string(d))
				}
			}
		}
	})
}

func TestParseDayID(t *testing.T) {
	d, err := ParseDayID("2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, DayID("2024-05-10"), d)

	_, err = ParseDayID("10/05/2024")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, daysBetween(date(2024, 5, 1), date(2024, 5, 1)))
	assert.Equal(t, 13, daysBetween(date(2024, 5, 1), date(2024, 5, 14)))
	assert.Equal(t, -2, daysBetween(date(2024, 5, 3), date(2024, 5, 1)))
}

func TestClassify(t *testing.T) {
	cases := map[int]SourceKind{
		-1: KindUpcoming,
		0:  KindUpcoming,
		5:  KindUpcoming,
		8:  KindUpcoming,
		9:  KindUnsupported,
		10: KindUnsupported,
		12: KindUnsupported,
		13: KindFuture,
		30: KindFuture,
	}
	for offset, want := range cases {
		assert.Equal(t, want, Classify(offset), "offset %d", offset)
	}
}
