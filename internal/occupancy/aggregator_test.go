package occupancy

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedreport/internal/calendar"
	"bedreport/internal/models"
)

func newAggregator(t *testing.T) *Aggregator {
	return NewAggregator(NewTurnaroundResolver(weekendCalendar(t), models.DefaultTurnaroundWorkingDays))
}

func TestAggregate_Scenarios(t *testing.T) {
	agg := newAggregator(t)

	t.Run("booking straddling window start", func(t *testing.T) {
		bs := newBedspace(day(2023, 2, 16))
		bookings := []models.Booking{booking(bs, models.BookingArrived, day(2023, 3, 28), day(2023, 4, 4))}

		got, err := agg.Aggregate(bs, bookings, nil, april2023)
		require.NoError(t, err)
		assert.Equal(t, 4, got.BookedDaysActiveAndClosed)
		assert.Equal(t, 4, got.TotalBookedDays)
		assert.Equal(t, 30, got.BedspaceOnlineDays)
	})

	t.Run("booking straddling window end", func(t *testing.T) {
		bs := newBedspace(day(2023, 2, 16))
		bookings := []models.Booking{booking(bs, models.BookingArrived, day(2023, 4, 28), day(2023, 5, 4))}

		got, err := agg.Aggregate(bs, bookings, nil, april2023)
		require.NoError(t, err)
		assert.Equal(t, 3, got.TotalBookedDays)
	})

	t.Run("voids", func(t *testing.T) {
		bs := newBedspace(day(2023, 2, 16))

		got, err := agg.Aggregate(bs, nil, []models.VoidPeriod{void(bs, day(2023, 4, 5), day(2023, 4, 7), false)}, april2023)
		require.NoError(t, err)
		assert.Equal(t, 3, got.VoidDays)

		got, err = agg.Aggregate(bs, nil, []models.VoidPeriod{void(bs, day(2023, 3, 28), day(2023, 4, 7), false)}, april2023)
		require.NoError(t, err)
		assert.Equal(t, 7, got.VoidDays)
	})

	t.Run("online days february 2024", func(t *testing.T) {
		bs := newBedspace(day(2024, 2, 5))
		got, err := agg.Aggregate(bs, nil, nil, models.MonthWindow(2024, time.February))
		require.NoError(t, err)
		assert.Equal(t, 25, got.BedspaceOnlineDays)
		require.NotNil(t, got.OccupancyRate)
		assert.Zero(t, *got.OccupancyRate)
	})
}

func TestAggregate_AllCategories(t *testing.T) {
	bs := newBedspace(day(2023, 1, 1))
	bookings := []models.Booking{
		booking(bs, models.BookingArrived, day(2023, 4, 1), day(2023, 4, 10)),
		booking(bs, models.BookingDeparted, day(2023, 4, 14), day(2023, 4, 14)),
		booking(bs, models.BookingConfirmed, day(2023, 4, 20), day(2023, 4, 25)),
		booking(bs, models.BookingProvisional, day(2023, 4, 26), day(2023, 4, 30)),
		booking(bs, models.BookingNonArrived, day(2023, 4, 26), day(2023, 4, 30)),
		booking(bs, models.BookingCancelled, day(2023, 4, 1), day(2023, 4, 30)),
	}
	voids := []models.VoidPeriod{
		void(bs, day(2023, 4, 11), day(2023, 4, 13), false),
		void(bs, day(2023, 4, 26), day(2023, 4, 28), true),
	}

	got, err := newAggregator(t).Aggregate(bs, bookings, voids, april2023)
	require.NoError(t, err)

	assert.Equal(t, 30, got.BedspaceOnlineDays)
	assert.Equal(t, 11, got.BookedDaysActiveAndClosed)
	assert.Equal(t, 11, got.TotalBookedDays)
	assert.Equal(t, 6, got.ConfirmedDays)
	assert.Equal(t, 2, got.ScheduledTurnaroundDays)
	assert.Equal(t, 4, got.EffectiveTurnaroundDays)
	assert.Equal(t, 3, got.VoidDays)
	require.NotNil(t, got.OccupancyRate)
	assert.InDelta(t, 11.0/30.0, *got.OccupancyRate, 1e-9)
}

func TestAggregate_TurnaroundFromPreviousWindow(t *testing.T) {
	bs := newBedspace(day(2023, 1, 1))
	// Friday departure, turnaround Mon 3rd and Tue 4th after the weekend.
	bookings := []models.Booking{booking(bs, models.BookingDeparted, day(2023, 3, 20), day(2023, 3, 31))}

	got, err := newAggregator(t).Aggregate(bs, bookings, nil, april2023)
	require.NoError(t, err)
	assert.Zero(t, got.TotalBookedDays)
	assert.Equal(t, 2, got.ScheduledTurnaroundDays)
	assert.Equal(t, 4, got.EffectiveTurnaroundDays)
}

func TestAggregate_CancelledNeverCounts(t *testing.T) {
	bs := newBedspace(day(2023, 1, 1))
	b := booking(bs, models.BookingCancelled, day(2023, 3, 1), day(2023, 6, 30))
	b.CancellationReason = "Alternative accommodation"
	bookings := []models.Booking{b}
	voids := []models.VoidPeriod{void(bs, day(2023, 3, 1), day(2023, 6, 30), true)}

	agg := newAggregator(t)
	for m := time.March; m <= time.June; m++ {
		got, err := agg.Aggregate(bs, bookings, voids, models.MonthWindow(2023, m))
		require.NoError(t, err)
		assert.Zero(t, got.TotalBookedDays, m)
		assert.Zero(t, got.ConfirmedDays, m)
		assert.Zero(t, got.ScheduledTurnaroundDays, m)
		assert.Zero(t, got.EffectiveTurnaroundDays, m)
		assert.Zero(t, got.VoidDays, m)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	bs := newBedspace(day(2023, 1, 1))
	bookings := []models.Booking{
		booking(bs, models.BookingDeparted, day(2023, 4, 3), day(2023, 4, 6)),
		booking(bs, models.BookingConfirmed, day(2023, 4, 20), day(2023, 5, 2)),
	}
	voids := []models.VoidPeriod{void(bs, day(2023, 4, 11), day(2023, 4, 13), false)}

	agg := newAggregator(t)
	first, err := agg.Aggregate(bs, bookings, voids, april2023)
	require.NoError(t, err)
	second, err := agg.Aggregate(bs, bookings, voids, april2023)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAggregate_MonthsSumToRange(t *testing.T) {
	bs := newBedspace(day(2023, 2, 16))
	bookings := []models.Booking{
		booking(bs, models.BookingArrived, day(2023, 3, 28), day(2023, 4, 4)),
		booking(bs, models.BookingConfirmed, day(2023, 4, 28), day(2023, 5, 4)),
	}
	voids := []models.VoidPeriod{void(bs, day(2023, 3, 30), day(2023, 5, 2), false)}

	agg := newAggregator(t)
	whole, err := models.MonthRangeWindow(day(2023, 3, 1), day(2023, 5, 1))
	require.NoError(t, err)
	total, err := agg.Aggregate(bs, bookings, voids, whole)
	require.NoError(t, err)

	var booked, confirmed, voided, online int
	for m := time.March; m <= time.May; m++ {
		got, err := agg.Aggregate(bs, bookings, voids, models.MonthWindow(2023, m))
		require.NoError(t, err)
		booked += got.TotalBookedDays
		confirmed += got.ConfirmedDays
		voided += got.VoidDays
		online += got.BedspaceOnlineDays
	}

	assert.Equal(t, total.TotalBookedDays, booked)
	assert.Equal(t, total.ConfirmedDays, confirmed)
	assert.Equal(t, total.VoidDays, voided)
	assert.Equal(t, total.BedspaceOnlineDays, online)
}

func TestAggregate_NotOnline(t *testing.T) {
	bs := newBedspace(day(2023, 5, 1))
	bookings := []models.Booking{booking(bs, models.BookingArrived, day(2023, 4, 1), day(2023, 4, 3))}

	got, err := newAggregator(t).Aggregate(bs, bookings, nil, april2023)
	require.NoError(t, err)
	assert.Zero(t, got.BedspaceOnlineDays)
	assert.Nil(t, got.OccupancyRate)
}

func TestAggregate_InvalidInput(t *testing.T) {
	bs := newBedspace(day(2023, 1, 1))
	other := newBedspace(day(2023, 1, 1))
	agg := newAggregator(t)

	tests := []struct {
		name     string
		bookings []models.Booking
		voids    []models.VoidPeriod
		window   models.ReportingWindow
	}{
		{
			name:     "inverted booking",
			bookings: []models.Booking{booking(bs, models.BookingArrived, day(2023, 4, 5), day(2023, 4, 1))},
			window:   april2023,
		},
		{
			name:   "inverted void",
			voids:  []models.VoidPeriod{void(bs, day(2023, 4, 5), day(2023, 4, 1), false)},
			window: april2023,
		},
		{
			name:     "booking of another bedspace",
			bookings: []models.Booking{booking(other, models.BookingArrived, day(2023, 4, 1), day(2023, 4, 5))},
			window:   april2023,
		},
		{
			name:   "inverted window",
			window: models.ReportingWindow{Start: day(2023, 4, 30), End: day(2023, 4, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agg.Aggregate(bs, tt.bookings, tt.voids, tt.window)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}

	_, err := agg.Aggregate(&models.Bedspace{ID: uuid.Nil, OnlineFrom: day(2023, 1, 1)}, nil, nil, april2023)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestAggregate_CalendarFailurePropagates(t *testing.T) {
	bs := newBedspace(day(2023, 1, 1))
	bookings := []models.Booking{booking(bs, models.BookingDeparted, day(2023, 12, 20), day(2023, 12, 29))}

	cal, err := calendar.New(&calendar.Config{
		DaysOff: []int{6, 7},
		Horizon: calendar.HorizonConfig{Start: "2023-01-01", End: "2023-12-31"},
	}, nil)
	require.NoError(t, err)

	agg := NewAggregator(NewTurnaroundResolver(cal, 2))
	_, err = agg.Aggregate(bs, bookings, nil, models.MonthWindow(2023, time.December))
	assert.True(t, errors.Is(err, ErrCalendarUnavailable))
	assert.True(t, errors.Is(err, calendar.ErrBeyondHorizon))
}
