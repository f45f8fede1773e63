package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedreport/internal/calendar"
	"bedreport/internal/models"
)

func kinds(rows []models.EventRow) []models.EventKind {
	out := make([]models.EventKind, len(rows))
	for i, r := range rows {
		out[i] = r.Kind
	}
	return out
}

func TestEventGenerator_Rows(t *testing.T) {
	bs := newBedspace(day(2023, 1, 1))
	departed := booking(bs, models.BookingDeparted, day(2023, 3, 28), day(2023, 4, 14))
	zeroTurnaround := booking(bs, models.BookingDeparted, day(2023, 4, 17), day(2023, 4, 18))
	zeroTurnaround.TurnaroundWorkingDays = intPtr(0)
	confirmed := booking(bs, models.BookingConfirmed, day(2023, 4, 28), day(2023, 5, 4))
	cancelled := booking(bs, models.BookingCancelled, day(2023, 4, 20), day(2023, 4, 22))
	outside := booking(bs, models.BookingArrived, day(2023, 6, 1), day(2023, 6, 3))

	voids := []models.VoidPeriod{
		void(bs, day(2023, 4, 20), day(2023, 4, 22), false),
		void(bs, day(2023, 4, 23), day(2023, 4, 24), true),
	}

	gen := NewEventGenerator(NewTurnaroundResolver(weekendCalendar(t), 2))
	rows, err := Collect(gen.Generate(bs,
		[]models.Booking{departed, zeroTurnaround, confirmed, cancelled, outside}, voids, april2023))
	require.NoError(t, err)

	assert.Equal(t, []models.EventKind{
		models.EventBooking, models.EventTurnaround,
		models.EventBooking,
		models.EventBooking,
		models.EventVoid,
	}, kinds(rows))

	first := rows[0]
	assert.Equal(t, departed.ID, first.SourceID)
	assert.Equal(t, day(2023, 4, 1), first.Start)
	assert.Equal(t, day(2023, 4, 14), first.End)
	assert.Equal(t, 14, first.DurationDays)
	assert.Equal(t, "BS-1", first.BedspaceReference)
	assert.Equal(t, models.BookingDeparted, first.BookingState)

	turnaround := rows[1]
	assert.Equal(t, departed.ID, turnaround.SourceID)
	assert.Equal(t, day(2023, 4, 15), turnaround.Start)
	assert.Equal(t, day(2023, 4, 18), turnaround.End)
	assert.Equal(t, 4, turnaround.DurationDays)
	assert.Equal(t, 2, turnaround.WorkingDays)

	assert.Equal(t, 3, rows[3].DurationDays)
	assert.Equal(t, "Repairs", rows[4].VoidReason)
}

func TestEventGenerator_Restartable(t *testing.T) {
	bs := newBedspace(day(2023, 1, 1))
	bookings := []models.Booking{
		booking(bs, models.BookingDeparted, day(2023, 4, 3), day(2023, 4, 5)),
		booking(bs, models.BookingArrived, day(2023, 4, 20), day(2023, 4, 25)),
	}
	gen := NewEventGenerator(NewTurnaroundResolver(weekendCalendar(t), 2))
	seq := gen.Generate(bs, bookings, nil, april2023)

	first, err := Collect(seq)
	require.NoError(t, err)
	second, err := Collect(seq)
	require.NoError(t, err)
	assert.Len(t, first, 3)
	assert.Equal(t, first, second)

	count := 0
	for range seq {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestEventGenerator_TurnaroundOnlyInWindow(t *testing.T) {
	bs := newBedspace(day(2023, 1, 1))
	bookings := []models.Booking{booking(bs, models.BookingDeparted, day(2023, 3, 20), day(2023, 3, 31))}

	gen := NewEventGenerator(NewTurnaroundResolver(weekendCalendar(t), 2))
	rows, err := Collect(gen.Generate(bs, bookings, nil, april2023))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.EventTurnaround, rows[0].Kind)
	assert.Equal(t, day(2023, 4, 1), rows[0].Start)
	assert.Equal(t, day(2023, 4, 4), rows[0].End)
}

func TestEventGenerator_Errors(t *testing.T) {
	bs := newBedspace(day(2023, 1, 1))

	valid := []models.Booking{
		booking(bs, models.BookingArrived, day(2023, 4, 1), day(2023, 4, 3)),
		booking(bs, models.BookingDeparted, day(2023, 4, 10), day(2023, 4, 12)),
	}
	tests := []struct {
		name     string
		bookings []models.Booking
		voids    []models.VoidPeriod
	}{
		{
			name: "invalid booking after valid ones",
			bookings: append(append([]models.Booking{}, valid...),
				booking(bs, models.BookingArrived, day(2023, 4, 9), day(2023, 4, 5))),
		},
		{
			name:     "invalid void after valid bookings",
			bookings: valid,
			voids:    []models.VoidPeriod{void(bs, day(2023, 4, 20), day(2023, 4, 18), false)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name+" yields no rows", func(t *testing.T) {
			gen := NewEventGenerator(NewTurnaroundResolver(weekendCalendar(t), 2))

			var rows, errs int
			for _, err := range gen.Generate(bs, tt.bookings, tt.voids, april2023) {
				if err != nil {
					errs++
					assert.ErrorIs(t, err, models.ErrInvalidInput)
					continue
				}
				rows++
			}
			assert.Equal(t, 0, rows)
			assert.Equal(t, 1, errs)
		})
	}

	t.Run("calendar failure", func(t *testing.T) {
		cal, err := calendar.New(&calendar.Config{
			DaysOff: []int{6, 7},
			Horizon: calendar.HorizonConfig{End: "2023-04-15"},
		}, nil)
		require.NoError(t, err)

		bookings := []models.Booking{booking(bs, models.BookingDeparted, day(2023, 4, 10), day(2023, 4, 14))}
		gen := NewEventGenerator(NewTurnaroundResolver(cal, 2))
		_, err = Collect(gen.Generate(bs, bookings, nil, april2023))
		assert.ErrorIs(t, err, calendar.ErrBeyondHorizon)
	})
}
