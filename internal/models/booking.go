package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingState is the lifecycle state of a booking.
type BookingState string

const (
	BookingProvisional BookingState = "provisional"
	BookingConfirmed   BookingState = "confirmed"
	BookingArrived     BookingState = "arrived"
	BookingDeparted    BookingState = "departed"
	BookingNonArrived  BookingState = "not-arrived"
	BookingCancelled   BookingState = "cancelled"
)

// DefaultTurnaroundWorkingDays applies when a booking carries no explicit turnaround.
const DefaultTurnaroundWorkingDays = 2

var bookingStates = map[BookingState]bool{
	BookingProvisional: true,
	BookingConfirmed:   true,
	BookingArrived:     true,
	BookingDeparted:    true,
	BookingNonArrived:  true,
	BookingCancelled:   true,
}

// ParseBookingState converts a stored status into a BookingState.
func ParseBookingState(s string) (BookingState, error) {
	st := BookingState(s)
	if !bookingStates[st] {
		return "", fmt.Errorf("%w: unknown booking state %q", ErrInvalidInput, s)
	}
	return st, nil
}

// Valid reports whether the state is one of the known states.
func (s BookingState) Valid() bool {
	return bookingStates[s]
}

// Occupied reports whether the person is or was physically in the bed.
func (s BookingState) Occupied() bool {
	return s == BookingArrived || s == BookingDeparted
}

// Booking reserves a bedspace for a person.
type Booking struct {
	ID            uuid.UUID
	BedspaceID    uuid.UUID
	CRN           string
	ArrivalDate   time.Time
	DepartureDate time.Time
	State         BookingState

	// TurnaroundWorkingDays overrides the default turnaround length.
	TurnaroundWorkingDays *int

	CancellationReason string
	CreatedAt          time.Time
}

// Cancelled reports whether the booking is excluded from all counts.
func (b *Booking) Cancelled() bool {
	return b.State == BookingCancelled
}

// Validate checks the booking's dates and state.
func (b *Booking) Validate() error {
	if b.ArrivalDate.IsZero() || b.DepartureDate.IsZero() {
		return fmt.Errorf("%w: booking %s is missing dates", ErrInvalidInput, b.ID)
	}
	if DateOf(b.DepartureDate).Before(DateOf(b.ArrivalDate)) {
		return fmt.Errorf("%w: booking %s departs %s before arriving %s",
			ErrInvalidInput, b.ID, FormatDate(b.DepartureDate), FormatDate(b.ArrivalDate))
	}
	if !b.State.Valid() {
		return fmt.Errorf("%w: booking %s has unknown state %q", ErrInvalidInput, b.ID, b.State)
	}
	if b.TurnaroundWorkingDays != nil && *b.TurnaroundWorkingDays < 0 {
		return fmt.Errorf("%w: booking %s has negative turnaround %d",
			ErrInvalidInput, b.ID, *b.TurnaroundWorkingDays)
	}
	return nil
}

// VoidPeriod takes a bedspace out of service.
type VoidPeriod struct {
	ID                uuid.UUID
	BedspaceID        uuid.UUID
	StartDate         time.Time
	EndDate           time.Time
	Reason            string
	Cancelled         bool
	CancellationNotes string
}

// Validate checks the void's date ordering.
func (v *VoidPeriod) Validate() error {
	if v.StartDate.IsZero() || v.EndDate.IsZero() {
		return fmt.Errorf("%w: void %s is missing dates", ErrInvalidInput, v.ID)
	}
	if DateOf(v.EndDate).Before(DateOf(v.StartDate)) {
		return fmt.Errorf("%w: void %s ends %s before it starts %s",
			ErrInvalidInput, v.ID, FormatDate(v.EndDate), FormatDate(v.StartDate))
	}
	return nil
}

// TurnaroundInterval is the derived post-departure preparation period.
// Start after End means the interval is empty.
type TurnaroundInterval struct {
	BookingID   uuid.UUID
	Start       time.Time
	End         time.Time
	WorkingDays int
}

// Empty reports whether the interval covers no days.
func (t *TurnaroundInterval) Empty() bool {
	return t == nil || t.Start.After(t.End)
}
