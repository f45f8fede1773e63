package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bedreport/internal/events"
	"bedreport/internal/models"
)

func TestPreviousMonth(t *testing.T) {
	w := previousMonth(time.Date(2024, 3, 1, 0, 5, 0, 0, time.Local))
	assert.Equal(t, models.MonthWindow(2024, time.February), w)

	w = previousMonth(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, models.MonthWindow(2023, time.December), w)
}

func TestNextFirstOfMonth(t *testing.T) {
	got := nextFirstOfMonth(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC), got)
}

func TestScheduler_RunWindow(t *testing.T) {
	store := newFakeStore()
	b := store.addBedspace("BS-1", models.Date(2023, 1, 1))
	store.addBooking(b, models.BookingDeparted, models.Date(2023, 4, 3), models.Date(2023, 4, 5))

	pub := new(mockPublisher)
	pub.On("PublishJSON", events.EventReportCompleted, mock.MatchedBy(func(c Completed) bool {
		return c.Bedspaces == 1 && c.UsageEvents == 2 && c.Failed == 0
	})).Return(nil).Once()

	dir := t.TempDir()
	svc := NewService(nil, store, weekendCalendar(t), nil, nil, nil)
	sched := NewScheduler(SchedulerConfig{OutputDir: dir}, svc, nil, pub, nil)

	path, err := sched.RunWindow(context.Background(), Request{Window: april2023})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bedspace-report_2023-04-01_2023-04-30.xlsx"), path)
	assert.FileExists(t, path)
	pub.AssertExpectations(t)
}

func TestScheduler_RunWindowFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = assert.AnError

	pub := new(mockPublisher)
	pub.On("PublishJSON", events.EventReportFailed, mock.Anything).Return(nil).Once()

	svc := NewService(nil, store, weekendCalendar(t), nil, nil, nil)
	sched := NewScheduler(SchedulerConfig{OutputDir: t.TempDir()}, svc, nil, pub, nil)

	_, err := sched.RunWindow(context.Background(), Request{Window: april2023})
	assert.ErrorIs(t, err, assert.AnError)
	pub.AssertExpectations(t)
}

func TestScheduler_RunPreviousMonthAndCleanup(t *testing.T) {
	store := newFakeStore()
	store.addBedspace("BS-1", models.Date(2023, 1, 1))

	dir := t.TempDir()
	stale := filepath.Join(dir, "bedspace-report_2022-01-01_2022-01-31.xlsx")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	old := time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(stale, old, old))

	svc := NewService(nil, store, weekendCalendar(t), nil, nil, nil)
	sched := NewScheduler(SchedulerConfig{OutputDir: dir, RetentionDays: 90}, svc, nil, nil, nil)
	sched.now = func() time.Time { return time.Date(2023, 5, 1, 0, 5, 0, 0, time.UTC) }

	sched.RunPreviousMonth()

	assert.FileExists(t, filepath.Join(dir, "bedspace-report_2023-04-01_2023-04-30.xlsx"))
	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestScheduler_StartStop(t *testing.T) {
	store := newFakeStore()
	svc := NewService(nil, store, weekendCalendar(t), nil, nil, nil)
	dir := t.TempDir()
	sched := NewScheduler(SchedulerConfig{OutputDir: dir, RunOnStart: true}, svc, nil, nil, nil)

	sched.Start()
	sched.Start()
	sched.Stop()
	sched.Stop()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(entries), 1)
}
