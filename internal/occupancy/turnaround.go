package occupancy

import (
	"fmt"

	"bedreport/internal/calendar"
	"bedreport/internal/models"
)

// TurnaroundDays are the two independent turnaround counts for one window.
type TurnaroundDays struct {
	// Scheduled counts working days of the interval inside the window.
	Scheduled int
	// Effective counts calendar days of the interval inside the window.
	Effective int
}

// TurnaroundResolver derives turnaround intervals using a working-day calendar.
type TurnaroundResolver struct {
	cal         calendar.WorkingDayCalendar
	defaultDays int
}

// NewTurnaroundResolver builds a resolver. A negative default falls back to
// models.DefaultTurnaroundWorkingDays.
func NewTurnaroundResolver(cal calendar.WorkingDayCalendar, defaultDays int) *TurnaroundResolver {
	if defaultDays < 0 {
		defaultDays = models.DefaultTurnaroundWorkingDays
	}
	return &TurnaroundResolver{cal: cal, defaultDays: defaultDays}
}

func (r *TurnaroundResolver) workingDays(b *models.Booking) int {
	if b.TurnaroundWorkingDays != nil {
		return *b.TurnaroundWorkingDays
	}
	return r.defaultDays
}

// Resolve returns the turnaround interval of a departed booking, or nil for
// any other state. A zero-day turnaround yields an empty interval.
func (r *TurnaroundResolver) Resolve(b *models.Booking) (*models.TurnaroundInterval, error) {
	if b.State != models.BookingDeparted {
		return nil, nil
	}
	n := r.workingDays(b)
	if n < 0 {
		return nil, fmt.Errorf("%w: booking %s has negative turnaround %d", models.ErrInvalidInput, b.ID, n)
	}

	departure := models.DateOf(b.DepartureDate)
	end, err := r.cal.AddWorkingDays(departure, n)
	if err != nil {
		return nil, fmt.Errorf("%w: booking %s: %w", ErrCalendarUnavailable, b.ID, err)
	}

	return &models.TurnaroundInterval{
		BookingID:   b.ID,
		Start:       models.AddDays(departure, 1),
		End:         models.DateOf(end),
		WorkingDays: n,
	}, nil
}

// Days counts the interval's scheduled and effective days inside the window.
func (r *TurnaroundResolver) Days(t *models.TurnaroundInterval, w models.ReportingWindow) (TurnaroundDays, error) {
	if t.Empty() {
		return TurnaroundDays{}, nil
	}
	from, to, ok := ClipRange(t.Start, t.End, w.Start, w.End)
	if !ok {
		return TurnaroundDays{}, nil
	}

	scheduled, err := r.cal.WorkingDaysBetween(from, to)
	if err != nil {
		return TurnaroundDays{}, fmt.Errorf("%w: booking %s: %w", ErrCalendarUnavailable, t.BookingID, err)
	}

	return TurnaroundDays{
		Scheduled: scheduled,
		Effective: models.DaysBetween(from, to) + 1,
	}, nil
}
