package util

import "time"

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfHour truncates t to the top of its wall-clock hour. Unlike
// t.Truncate(time.Hour) it respects half-hour offsets such as +05:30.
func StartOfHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

// AtHour returns the instant hour elapsed hours after local midnight of t's
// day. Slots stay one hour apart across DST transitions, so on those days the
// wall-clock hour of a slot can differ from its index.
func AtHour(t time.Time, hour int) time.Time {
	return StartOfDay(t).Add(time.Duration(hour) * time.Hour)
}
