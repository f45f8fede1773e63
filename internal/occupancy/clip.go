// Package occupancy turns a bedspace's bookings, turnarounds and voids into
// day counts for a reporting window. It performs no I/O; the working-day
// calendar is the only collaborator and is injected.
package occupancy

import (
	"time"

	"bedreport/internal/models"
)

// ClipRange intersects the inclusive range [start, end] with [windowStart, windowEnd].
// ok is false when the ranges are disjoint.
func ClipRange(start, end, windowStart, windowEnd time.Time) (from, to time.Time, ok bool) {
	from = models.MaxDate(models.DateOf(start), models.DateOf(windowStart))
	to = models.MinDate(models.DateOf(end), models.DateOf(windowEnd))
	if from.After(to) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// Clip returns the number of days of [start, end] inside [windowStart, windowEnd],
// counting both ends.
func Clip(start, end, windowStart, windowEnd time.Time) int {
	from, to, ok := ClipRange(start, end, windowStart, windowEnd)
	if !ok {
		return 0
	}
	return models.DaysBetween(from, to) + 1
}
