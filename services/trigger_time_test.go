package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveTriggerInstant(t *testing.T) {
	clock := testClock(t)

	t.Run("returns nil for missing or invalid input", func(t *testing.T) {
		require.Nil(t, clock.ResolveTriggerInstant(nil))
		require.Nil(t, clock.ResolveTriggerInstant(strPtr("")))
		require.Nil(t, clock.ResolveTriggerInstant(strPtr("   ")))
		require.Nil(t, clock.ResolveTriggerInstant(strPtr("not-a-date")))
		require.Nil(t, clock.ResolveTriggerInstant(strPtr("2031-13-45")))
	})

	t.Run("normalizes a calendar date to the trigger hour", func(t *testing.T) {
		got := clock.ResolveTriggerInstant(strPtr("2031-05-10"))
		require.NotNil(t, got)
		require.Equal(t, 2031, got.Year())
		require.Equal(t, time.May, got.Month())
		require.Equal(t, 10, got.Day())
		require.Equal(t, 10, got.Hour())
		require.Equal(t, 0, got.Minute())
		require.Equal(t, clock.Location.String(), got.Location().String())
	})

	t.Run("reinterprets UTC timestamps as business-zone wall clock", func(t *testing.T) {
		// 2031-05-10T23:00:00Z is already 2031-05-11 in Tokyo, but the
		// literal wall-clock day of the UTC string must be kept
		got := clock.ResolveTriggerInstant(strPtr("2031-05-10T23:00:00Z"))
		require.NotNil(t, got)
		require.Equal(t, 10, got.Day())
		require.Equal(t, 10, got.Hour())
	})

	t.Run("same calendar day resolves identically across representations", func(t *testing.T) {
		inputs := []string{
			"2031-05-10",
			"2031-05-10T00:00:00Z",
			"2031-05-10T15:30:00Z",
			"2031-05-10T09:00:00+09:00",
			"2031-05-10T12:00:00",
		}
		first := clock.ResolveTriggerInstant(strPtr(inputs[0]))
		require.NotNil(t, first)
		for _, in := range inputs[1:] {
			got := clock.ResolveTriggerInstant(strPtr(in))
			require.NotNil(t, got, "input %q", in)
			require.True(t, first.Equal(*got), "input %q resolved to %s, want %s", in, got, first)
		}
	})

	t.Run("repeated calls are deterministic", func(t *testing.T) {
		a := clock.ResolveTriggerInstant(strPtr("2030-01-01"))
		b := clock.ResolveTriggerInstant(strPtr("2030-01-01"))
		require.NotNil(t, a)
		require.NotNil(t, b)
		require.True(t, a.Equal(*b))
	})
}

func TestNextWeekDays(t *testing.T) {
	loc := testLocation(t)

	t.Run("starts the Monday after the current week", func(t *testing.T) {
		// Wednesday 2031-05-07
		now := time.Date(2031, 5, 7, 14, 0, 0, 0, loc)
		days := NextWeekDays(now, loc)
		require.Len(t, days, 7)
		require.Equal(t, "2031-05-12", days[0])
		require.Equal(t, "2031-05-18", days[6])
	})

	t.Run("treats Sunday as the end of the current week", func(t *testing.T) {
		// Sunday 2031-05-11
		now := time.Date(2031, 5, 11, 9, 0, 0, 0, loc)
		days := NextWeekDays(now, loc)
		require.Equal(t, "2031-05-12", days[0])
	})

	t.Run("Monday plans the following week, not its own", func(t *testing.T) {
		now := time.Date(2031, 5, 12, 9, 0, 0, 0, loc)
		days := NextWeekDays(now, loc)
		require.Equal(t, "2031-05-19", days[0])
	})
}
