package service

import "time"

// Attendance dates are stored at day precision, so window bounds are
// inclusive calendar dates in local server time.

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayBounds(now time.Time) (time.Time, time.Time) {
	d := dateOnly(now)
	return d, d
}

// weekBounds returns the Sunday-through-Saturday week containing now.
func weekBounds(now time.Time) (time.Time, time.Time) {
	d := dateOnly(now)
	start := d.AddDate(0, 0, -int(d.Weekday()))
	return start, start.AddDate(0, 0, 6)
}

func monthBounds(now time.Time) (time.Time, time.Time) {
	d := dateOnly(now)
	start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	return start, start.AddDate(0, 1, -1)
}
