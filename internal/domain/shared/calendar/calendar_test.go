package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"same day exists", date(2024, time.March, 15), 3, date(2024, time.June, 15)},
		{"zero months", date(2024, time.January, 31), 0, date(2024, time.January, 31)},
		{"jan 31 into leap february", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"jan 31 into common february", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"march 31 into april", date(2024, time.March, 31), 1, date(2024, time.April, 30)},
		{"jan 30 into leap february", date(2024, time.January, 30), 1, date(2024, time.February, 29)},
		{"jan 29 into leap february", date(2024, time.January, 29), 1, date(2024, time.February, 29)},
		{"jan 29 into common february", date(2023, time.January, 29), 1, date(2023, time.February, 28)},
		{"jan 31 plus two months", date(2024, time.January, 31), 2, date(2024, time.March, 31)},
		{"jan 31 plus three months", date(2024, time.January, 31), 3, date(2024, time.April, 30)},
		{"aug 31 quarterly", date(2024, time.August, 31), 3, date(2024, time.November, 30)},
		{"leap day plus a year", date(2024, time.February, 29), 12, date(2025, time.February, 28)},
		{"leap day plus four years", date(2024, time.February, 29), 48, date(2028, time.February, 29)},
		{"crosses year end", date(2024, time.December, 31), 2, date(2025, time.February, 28)},
		{"negative months", date(2024, time.March, 31), -1, date(2024, time.February, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonthsClamped(tt.from, tt.n))
		})
	}
}

func TestAddMonthsClamped_AlwaysLandsInTargetMonth(t *testing.T) {
	for day := 1; day <= 31; day++ {
		from := date(2024, time.January, day)
		for n := 1; n <= 36; n++ {
			got := AddMonthsClamped(from, n)
			wantMonth := time.Month((int(time.January)-1+n)%12 + 1)
			require.Equal(t, wantMonth, got.Month(), "day=%d n=%d", day, n)
			last := LastDayOfMonth(got.Year(), got.Month())
			if day <= last {
				require.Equal(t, day, got.Day(), "day=%d n=%d", day, n)
			} else {
				require.Equal(t, last, got.Day(), "day=%d n=%d", day, n)
			}
		}
	}
}

func TestAddMonthsClamped_KeepsTimeOfDay(t *testing.T) {
	from := time.Date(2024, time.January, 31, 9, 30, 0, 0, time.UTC)
	got := AddMonthsClamped(from, 1)
	assert.Equal(t, time.Date(2024, time.February, 29, 9, 30, 0, 0, time.UTC), got)
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, 29, LastDayOfMonth(2024, time.February))
	assert.Equal(t, 28, LastDayOfMonth(2100, time.February))
	assert.Equal(t, 31, LastDayOfMonth(2024, time.December))
	assert.Equal(t, 30, LastDayOfMonth(2024, time.April))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 15), d)

	d, err = ParseDate("2024-03-15T10:20:30Z")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 15), d)

	_, err = ParseDate("15/03/2024")
	assert.Error(t, err)

	_, err = ParseDate("2024-02-31")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2026-03-15", Format(date(2026, time.March, 15)))
}
