package occupancy

import "errors"

// ErrCalendarUnavailable wraps working-day calendar failures.
var ErrCalendarUnavailable = errors.New("working day calendar unavailable")
