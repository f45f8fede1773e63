package calendar

import (
	"errors"
	"fmt"
	"time"

	"bedreport/internal/models"
)

// ErrBeyondHorizon is returned for dates the calendar has no data for.
var ErrBeyondHorizon = errors.New("date beyond calendar horizon")

// WorkingDayCalendar answers working-day questions for turnaround arithmetic.
type WorkingDayCalendar interface {
	// AddWorkingDays returns the date n working days after date. n == 0 returns date.
	AddWorkingDays(date time.Time, n int) (time.Time, error)
	// WorkingDaysBetween counts working days in [start, end]; 0 when start > end.
	WorkingDaysBetween(start, end time.Time) (int, error)
}

// Holiday is a named non-working date.
type Holiday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// Calendar is an immutable working-day calendar built from configuration.
type Calendar struct {
	daysOff  map[time.Weekday]bool
	holidays map[time.Time]string

	// Zero bounds mean unbounded.
	horizonStart time.Time
	horizonEnd   time.Time
}

// New builds a calendar from config plus holidays from an external feed.
// When the config has no horizon and the feed is non-empty, the horizon
// covers the whole years present in the feed.
func New(cfg *Config, feed []Holiday) (*Calendar, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Calendar{
		daysOff:  make(map[time.Weekday]bool, len(cfg.DaysOff)),
		holidays: make(map[time.Time]string, len(cfg.Holidays)+len(feed)),
	}
	for _, d := range cfg.DaysOff {
		c.daysOff[isoWeekday(d)] = true
	}
	for _, h := range cfg.Holidays {
		d, _ := time.Parse(models.DateFormat, h.Date)
		c.holidays[d] = h.Name
	}
	for _, h := range feed {
		d := models.DateOf(h.Date)
		if _, ok := c.holidays[d]; !ok {
			c.holidays[d] = h.Name
		}
	}

	start, end, err := cfg.horizon()
	if err != nil {
		return nil, err
	}
	if start.IsZero() && end.IsZero() && len(feed) > 0 {
		start, end = feedHorizon(feed)
	}
	c.horizonStart, c.horizonEnd = start, end

	return c, nil
}

func feedHorizon(feed []Holiday) (time.Time, time.Time) {
	first, last := feed[0].Date.Year(), feed[0].Date.Year()
	for _, h := range feed[1:] {
		y := h.Date.Year()
		if y < first {
			first = y
		}
		if y > last {
			last = y
		}
	}
	return models.Date(first, time.January, 1), models.Date(last, time.December, 31)
}

// Horizon returns the bounds of known data; zero values mean unbounded.
func (c *Calendar) Horizon() (time.Time, time.Time) {
	return c.horizonStart, c.horizonEnd
}

// HolidayName returns the holiday name for a date, if any.
func (c *Calendar) HolidayName(d time.Time) (string, bool) {
	name, ok := c.holidays[models.DateOf(d)]
	return name, ok
}

func (c *Calendar) checkHorizon(d time.Time) error {
	if !c.horizonStart.IsZero() && d.Before(c.horizonStart) {
		return fmt.Errorf("%w: %s is before %s", ErrBeyondHorizon, models.FormatDate(d), models.FormatDate(c.horizonStart))
	}
	if !c.horizonEnd.IsZero() && d.After(c.horizonEnd) {
		return fmt.Errorf("%w: %s is after %s", ErrBeyondHorizon, models.FormatDate(d), models.FormatDate(c.horizonEnd))
	}
	return nil
}

// IsWorkingDay reports whether d is neither a day off nor a holiday.
func (c *Calendar) IsWorkingDay(d time.Time) (bool, error) {
	d = models.DateOf(d)
	if err := c.checkHorizon(d); err != nil {
		return false, err
	}
	if c.daysOff[d.Weekday()] {
		return false, nil
	}
	_, holiday := c.holidays[d]
	return !holiday, nil
}

// AddWorkingDays implements WorkingDayCalendar.
func (c *Calendar) AddWorkingDays(date time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, fmt.Errorf("%w: negative working day offset %d", models.ErrInvalidInput, n)
	}
	d := models.DateOf(date)
	if err := c.checkHorizon(d); err != nil {
		return time.Time{}, err
	}
	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		ok, err := c.IsWorkingDay(d)
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			added++
		}
	}
	return d, nil
}

// WorkingDaysBetween implements WorkingDayCalendar.
func (c *Calendar) WorkingDaysBetween(start, end time.Time) (int, error) {
	start, end = models.DateOf(start), models.DateOf(end)
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		ok, err := c.IsWorkingDay(d)
		if err != nil {
			return 0, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}
