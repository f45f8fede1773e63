package calendar

import (
	"sync/atomic"
	"time"
)

// Dynamic delegates to a calendar that can be replaced on config reload.
type Dynamic struct {
	current atomic.Pointer[Calendar]
}

// NewDynamic wraps an initial calendar.
func NewDynamic(c *Calendar) *Dynamic {
	d := &Dynamic{}
	d.current.Store(c)
	return d
}

// Swap installs a new calendar for subsequent calls.
func (d *Dynamic) Swap(c *Calendar) {
	if c != nil {
		d.current.Store(c)
	}
}

// Current returns the active calendar.
func (d *Dynamic) Current() *Calendar {
	return d.current.Load()
}

func (d *Dynamic) AddWorkingDays(date time.Time, n int) (time.Time, error) {
	return d.Current().AddWorkingDays(date, n)
}

func (d *Dynamic) WorkingDaysBetween(start, end time.Time) (int, error) {
	return d.Current().WorkingDaysBetween(start, end)
}
