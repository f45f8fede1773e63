package occupancy

import (
	"iter"
	"time"

	"bedreport/internal/models"
)

// EventGenerator emits one row per booking, turnaround and void in a window.
type EventGenerator struct {
	turnarounds *TurnaroundResolver
}

// NewEventGenerator builds a generator around a turnaround resolver.
func NewEventGenerator(turnarounds *TurnaroundResolver) *EventGenerator {
	return &EventGenerator{turnarounds: turnarounds}
}

// Generate returns a lazy sequence of event rows. Each booking row is followed
// by its turnaround row, and void rows come after all bookings. Every range
// over the sequence recomputes from the inputs. Invalid input is reported
// before any row. An error is yielded once and ends the sequence.
func (g *EventGenerator) Generate(
	bedspace *models.Bedspace,
	bookings []models.Booking,
	voids []models.VoidPeriod,
	w models.ReportingWindow,
) iter.Seq2[models.EventRow, error] {
	return func(yield func(models.EventRow, error) bool) {
		if err := validateInputs(bedspace, bookings, voids, w); err != nil {
			yield(models.EventRow{}, err)
			return
		}

		for i := range bookings {
			b := &bookings[i]
			if b.Cancelled() {
				continue
			}

			if from, to, ok := ClipRange(b.ArrivalDate, b.DepartureDate, w.Start, w.End); ok {
				row := g.row(bedspace, models.EventBooking, from, to)
				row.SourceID = b.ID
				row.BookingState = b.State
				row.CRN = b.CRN
				row.CancellationReason = b.CancellationReason
				if !yield(row, nil) {
					return
				}
			}

			interval, err := g.turnarounds.Resolve(b)
			if err != nil {
				yield(models.EventRow{}, err)
				return
			}
			if interval.Empty() {
				continue
			}
			from, to, ok := ClipRange(interval.Start, interval.End, w.Start, w.End)
			if !ok {
				continue
			}
			td, err := g.turnarounds.Days(interval, w)
			if err != nil {
				yield(models.EventRow{}, err)
				return
			}
			row := g.row(bedspace, models.EventTurnaround, from, to)
			row.SourceID = b.ID
			row.WorkingDays = td.Scheduled
			row.BookingState = b.State
			row.CRN = b.CRN
			if !yield(row, nil) {
				return
			}
		}

		for i := range voids {
			v := &voids[i]
			if v.Cancelled {
				continue
			}
			from, to, ok := ClipRange(v.StartDate, v.EndDate, w.Start, w.End)
			if !ok {
				continue
			}
			row := g.row(bedspace, models.EventVoid, from, to)
			row.SourceID = v.ID
			row.VoidReason = v.Reason
			if !yield(row, nil) {
				return
			}
		}
	}
}

func (g *EventGenerator) row(b *models.Bedspace, kind models.EventKind, from, to time.Time) models.EventRow {
	return models.EventRow{
		Kind:              kind,
		BedspaceID:        b.ID,
		BedspaceReference: b.Reference,
		Start:             from,
		End:               to,
		DurationDays:      models.DaysBetween(from, to) + 1,
	}
}

// Collect drains a sequence, stopping at the first error.
func Collect(seq iter.Seq2[models.EventRow, error]) ([]models.EventRow, error) {
	var rows []models.EventRow
	for row, err := range seq {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
