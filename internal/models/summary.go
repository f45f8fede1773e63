package models

import (
	"time"

	"github.com/google/uuid"
)

// UtilizationSummary holds the per-bedspace day counts for one window.
type UtilizationSummary struct {
	BedspaceID uuid.UUID
	Window     ReportingWindow

	BedspaceOnlineDays        int
	TotalBookedDays           int
	ConfirmedDays             int
	BookedDaysActiveAndClosed int
	ScheduledTurnaroundDays   int
	EffectiveTurnaroundDays   int
	VoidDays                  int

	// OccupancyRate is nil when the bedspace was not online in the window.
	OccupancyRate *float64
}

// EventKind identifies the source of an event row.
type EventKind string

const (
	EventBooking    EventKind = "booking"
	EventTurnaround EventKind = "turnaround"
	EventVoid       EventKind = "void"
)

// EventRow is a single booking, turnaround or void clipped to a window.
type EventRow struct {
	Kind              EventKind
	BedspaceID        uuid.UUID
	BedspaceReference string
	SourceID          uuid.UUID

	Start        time.Time
	End          time.Time
	DurationDays int

	// Turnaround rows only.
	WorkingDays int

	BookingState       BookingState
	CRN                string
	CancellationReason string
	VoidReason         string
}
