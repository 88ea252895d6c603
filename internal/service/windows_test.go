package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDayBounds(t *testing.T) {
	now := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	from, to := dayBounds(now)
	require.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, from, to)
}

func TestWeekBoundsStartsSunday(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	from, to := weekBounds(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Weekday(0), from.Weekday())
	require.Equal(t, time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), to)
}

func TestWeekBoundsOnSunday(t *testing.T) {
	from, to := weekBounds(time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC))
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), to)
}

func TestMonthBounds(t *testing.T) {
	from, to := monthBounds(time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), to)
}
