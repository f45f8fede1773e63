package models

import (
	"fmt"
	"strings"
	"time"
)

// ReportingWindow is an inclusive date range.
type ReportingWindow struct {
	Start time.Time
	End   time.Time
}

// NewWindow normalises and validates a window.
func NewWindow(start, end time.Time) (ReportingWindow, error) {
	w := ReportingWindow{Start: DateOf(start), End: DateOf(end)}
	if err := w.Validate(); err != nil {
		return ReportingWindow{}, err
	}
	return w, nil
}

// MonthWindow covers a whole calendar month.
func MonthWindow(year int, month time.Month) ReportingWindow {
	start := Date(year, month, 1)
	return ReportingWindow{Start: start, End: start.AddDate(0, 1, -1)}
}

// MonthRangeWindow covers every month from the month of from to the month of to.
func MonthRangeWindow(from, to time.Time) (ReportingWindow, error) {
	start := Date(from.Year(), from.Month(), 1)
	end := Date(to.Year(), to.Month(), 1).AddDate(0, 1, -1)
	return NewWindow(start, end)
}

// ParseWindow accepts either "YYYY-MM" or "YYYY-MM-DD..YYYY-MM-DD".
func ParseWindow(s string) (ReportingWindow, error) {
	s = strings.TrimSpace(s)
	if from, to, ok := strings.Cut(s, ".."); ok {
		start, err := ParseDate(from)
		if err != nil {
			return ReportingWindow{}, err
		}
		end, err := ParseDate(to)
		if err != nil {
			return ReportingWindow{}, err
		}
		return NewWindow(start, end)
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return ReportingWindow{}, fmt.Errorf("%w: window %q: expected YYYY-MM or YYYY-MM-DD..YYYY-MM-DD", ErrInvalidInput, s)
	}
	return MonthWindow(t.Year(), t.Month()), nil
}

// Validate checks the window bounds.
func (w ReportingWindow) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: reporting window is missing bounds", ErrInvalidInput)
	}
	if DateOf(w.End).Before(DateOf(w.Start)) {
		return fmt.Errorf("%w: reporting window starts %s after it ends %s",
			ErrInvalidInput, FormatDate(w.Start), FormatDate(w.End))
	}
	return nil
}

// Days returns the inclusive length of the window.
func (w ReportingWindow) Days() int {
	return DaysBetween(w.Start, w.End) + 1
}

// Contains reports whether d falls inside the window.
func (w ReportingWindow) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(w.Start)) && !d.After(DateOf(w.End))
}

func (w ReportingWindow) String() string {
	return FormatDate(w.Start) + ".." + FormatDate(w.End)
}
