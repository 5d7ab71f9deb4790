package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidDay(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		month    time.Month
		desired  int
		expected int
	}{
		{"day 31 in April clamps to 30", 2025, time.April, 31, 30},
		{"day 31 in January stays", 2025, time.January, 31, 31},
		{"day 30 in February clamps to 28", 2025, time.February, 30, 28},
		{"day 29 in leap February stays", 2024, time.February, 29, 29},
		{"day 29 in non-leap February clamps to 28", 2025, time.February, 29, 28},
		{"day 15 never clamps", 2025, time.June, 15, 15},
		{"day 1 never clamps", 2025, time.June, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidDay(tt.year, tt.month, tt.desired))
		})
	}
}

func TestFirstScheduledDate(t *testing.T) {
	tests := []struct {
		name       string
		start      time.Time
		savingsDay int
		expected   time.Time
	}{
		{
			name:       "savings day later in start month",
			start:      date(2025, time.March, 10),
			savingsDay: 15,
			expected:   date(2025, time.March, 15),
		},
		{
			name:       "savings day equals start date rolls forward",
			start:      date(2025, time.March, 15),
			savingsDay: 15,
			expected:   date(2025, time.April, 15),
		},
		{
			name:       "savings day before start date rolls forward",
			start:      date(2025, time.March, 20),
			savingsDay: 15,
			expected:   date(2025, time.April, 15),
		},
		{
			name:       "clamped day in start month",
			start:      date(2025, time.April, 10),
			savingsDay: 31,
			expected:   date(2025, time.April, 30),
		},
		{
			name:       "clamped day not after start rolls and re-clamps",
			start:      date(2025, time.April, 30),
			savingsDay: 31,
			expected:   date(2025, time.May, 31),
		},
		{
			name:       "december rolls into january",
			start:      date(2025, time.December, 20),
			savingsDay: 5,
			expected:   date(2026, time.January, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FirstScheduledDate(tt.start, tt.savingsDay))
		})
	}
}

func TestMonthlyDates(t *testing.T) {
	t.Run("same nominal day with per-month clamping", func(t *testing.T) {
		first := date(2025, time.January, 31)
		got := MonthlyDates(first, 31, 5)

		assert.Equal(t, []time.Time{
			date(2025, time.January, 31),
			date(2025, time.February, 28),
			date(2025, time.March, 31),
			date(2025, time.April, 30),
			date(2025, time.May, 31),
		}, got)
	})

	t.Run("periods are independent of prior clamping", func(t *testing.T) {
		// February clamping must not drag March down to the 28th.
		got := MonthlyDates(date(2025, time.January, 30), 30, 3)
		assert.Equal(t, date(2025, time.March, 30), got[2])
	})

	t.Run("crosses year boundary", func(t *testing.T) {
		got := MonthlyDates(date(2025, time.November, 15), 15, 4)
		assert.Equal(t, date(2026, time.February, 15), got[3])
	})

	t.Run("every generated date exists", func(t *testing.T) {
		for day := 1; day <= 31; day++ {
			for _, d := range MonthlyDates(date(2025, time.January, ValidDay(2025, time.January, day)), day, 24) {
				assert.Equal(t, d, StartOfDay(d))
				assert.LessOrEqual(t, d.Day(), DaysInMonth(d.Year(), d.Month()))
			}
		}
	})
}

func TestWindow(t *testing.T) {
	t.Run("window ends on clamped savings day", func(t *testing.T) {
		start, end := Window(2025, time.April, 31, 10)
		assert.Equal(t, date(2025, time.April, 30), end)
		assert.Equal(t, date(2025, time.April, 20), start)
	})

	t.Run("window derives from stored period not today", func(t *testing.T) {
		start, end := Window(2024, time.September, 15, 10)
		assert.Equal(t, date(2024, time.September, 15), end)
		assert.Equal(t, date(2024, time.September, 5), start)
	})
}

func TestClassify(t *testing.T) {
	windowStart, windowEnd := Window(2025, time.June, 15, 10)

	tests := []struct {
		name     string
		now      time.Time
		expected Timing
	}{
		{"day before window opens", date(2025, time.June, 4), TooEarly},
		{"first day of window", date(2025, time.June, 5), OnTime},
		{"savings day itself", date(2025, time.June, 15), OnTime},
		{"savings day with time of day", time.Date(2025, time.June, 15, 23, 30, 0, 0, time.UTC), OnTime},
		{"day after savings day", date(2025, time.June, 16), Late},
		{"weeks after savings day", date(2025, time.June, 30), Late},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.now, windowStart, windowEnd))
		})
	}
}

func TestAddMonths(t *testing.T) {
	assert.Equal(t, date(2025, time.February, 28), AddMonths(date(2025, time.January, 31), 1))
	assert.Equal(t, date(2025, time.July, 10), AddMonths(date(2025, time.January, 10), 6))
	assert.Equal(t, date(2026, time.January, 31), AddMonths(date(2025, time.December, 31), 1))
}
