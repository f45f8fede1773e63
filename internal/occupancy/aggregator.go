package occupancy

import (
	"bedreport/internal/models"
)

// Aggregator computes per-bedspace utilisation summaries.
type Aggregator struct {
	turnarounds *TurnaroundResolver
}

// NewAggregator builds an aggregator around a turnaround resolver.
func NewAggregator(turnarounds *TurnaroundResolver) *Aggregator {
	return &Aggregator{turnarounds: turnarounds}
}

// Aggregate sums clipped day counts per category for one bedspace and window.
// All inputs are validated before anything is counted.
func (a *Aggregator) Aggregate(
	bedspace *models.Bedspace,
	bookings []models.Booking,
	voids []models.VoidPeriod,
	w models.ReportingWindow,
) (*models.UtilizationSummary, error) {
	if err := validateInputs(bedspace, bookings, voids, w); err != nil {
		return nil, err
	}

	summary := &models.UtilizationSummary{BedspaceID: bedspace.ID, Window: w}
	if online, ok := ResolveOnlineWindow(bedspace, w); ok {
		summary.BedspaceOnlineDays = online.Days
	}

	for i := range bookings {
		b := &bookings[i]
		if b.Cancelled() {
			continue
		}

		days := Clip(b.ArrivalDate, b.DepartureDate, w.Start, w.End)
		switch {
		case b.State.Occupied():
			summary.BookedDaysActiveAndClosed += days
		case b.State == models.BookingConfirmed:
			summary.ConfirmedDays += days
		}

		interval, err := a.turnarounds.Resolve(b)
		if err != nil {
			return nil, err
		}
		if interval == nil {
			continue
		}
		td, err := a.turnarounds.Days(interval, w)
		if err != nil {
			return nil, err
		}
		summary.ScheduledTurnaroundDays += td.Scheduled
		summary.EffectiveTurnaroundDays += td.Effective
	}

	for i := range voids {
		v := &voids[i]
		if v.Cancelled {
			continue
		}
		summary.VoidDays += Clip(v.StartDate, v.EndDate, w.Start, w.End)
	}

	summary.TotalBookedDays = summary.BookedDaysActiveAndClosed
	if summary.BedspaceOnlineDays > 0 {
		rate := float64(summary.TotalBookedDays) / float64(summary.BedspaceOnlineDays)
		summary.OccupancyRate = &rate
	}

	return summary, nil
}
