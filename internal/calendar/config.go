package calendar

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"bedreport/internal/models"
)

// HolidayConfig is a single non-working date.
type HolidayConfig struct {
	Date string `yaml:"date"` // "2026-12-25"
	Name string `yaml:"name"`
}

// HorizonConfig bounds the dates the calendar can answer for.
type HorizonConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Config is the root of calendar.yaml.
type Config struct {
	DaysOff  []int           `yaml:"days_off"` // 1=Mon, 7=Sun
	Holidays []HolidayConfig `yaml:"holidays"`
	Horizon  HorizonConfig   `yaml:"horizon"`
}

// DefaultConfig treats Saturday and Sunday as days off with no holidays.
func DefaultConfig() *Config {
	return &Config{DaysOff: []int{6, 7}}
}

// LoadConfig reads and validates calendar configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "configs/calendar.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse calendar config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate calendar config: %w", err)
	}

	return &cfg, nil
}

// Validate checks day numbers, holiday dates and horizon bounds.
func (c *Config) Validate() error {
	for i, d := range c.DaysOff {
		if d < 1 || d > 7 {
			return fmt.Errorf("days_off[%d]: invalid day %d, must be 1-7 (1=Mon, 7=Sun)", i, d)
		}
	}
	if len(c.DaysOff) == 7 {
		return fmt.Errorf("days_off: at least one working weekday is required")
	}

	for i, h := range c.Holidays {
		if h.Date == "" {
			return fmt.Errorf("holiday[%d]: date is required", i)
		}
		if _, err := time.Parse(models.DateFormat, h.Date); err != nil {
			return fmt.Errorf("holiday[%d]: invalid date format '%s', expected YYYY-MM-DD", i, h.Date)
		}
	}

	start, end, err := c.horizon()
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("horizon: end %s is before start %s", c.Horizon.End, c.Horizon.Start)
	}

	return nil
}

func (c *Config) horizon() (start, end time.Time, err error) {
	if c.Horizon.Start != "" {
		if start, err = time.Parse(models.DateFormat, c.Horizon.Start); err != nil {
			return start, end, fmt.Errorf("horizon.start: invalid date format '%s'", c.Horizon.Start)
		}
	}
	if c.Horizon.End != "" {
		if end, err = time.Parse(models.DateFormat, c.Horizon.End); err != nil {
			return start, end, fmt.Errorf("horizon.end: invalid date format '%s'", c.Horizon.End)
		}
	}
	return start, end, nil
}

// isoWeekday maps 1=Mon..7=Sun onto time.Weekday.
func isoWeekday(d int) time.Weekday {
	return time.Weekday(d % 7)
}
