package occupancy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bedreport/internal/calendar"
	"bedreport/internal/models"
)

type mockCalendar struct {
	mock.Mock
}

func (m *mockCalendar) AddWorkingDays(date time.Time, n int) (time.Time, error) {
	args := m.Called(date, n)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *mockCalendar) WorkingDaysBetween(start, end time.Time) (int, error) {
	args := m.Called(start, end)
	return args.Int(0), args.Error(1)
}

func weekendCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.New(calendar.DefaultConfig(), nil)
	require.NoError(t, err)
	return cal
}

func intPtr(v int) *int { return &v }

func newBedspace(from time.Time) *models.Bedspace {
	return &models.Bedspace{ID: uuid.New(), Reference: "BS-1", OnlineFrom: from}
}

func booking(bs *models.Bedspace, state models.BookingState, arrival, departure time.Time) models.Booking {
	return models.Booking{
		ID:            uuid.New(),
		BedspaceID:    bs.ID,
		CRN:           "X" + arrival.Format("0102"),
		ArrivalDate:   arrival,
		DepartureDate: departure,
		State:         state,
	}
}

func void(bs *models.Bedspace, start, end time.Time, cancelled bool) models.VoidPeriod {
	return models.VoidPeriod{
		ID:         uuid.New(),
		BedspaceID: bs.ID,
		StartDate:  start,
		EndDate:    end,
		Reason:     "Repairs",
		Cancelled:  cancelled,
	}
}
