package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Watch loads the calendar file, hands it to apply, then polls the file's
// modification time and applies every change. A change that fails to parse or
// that apply rejects is logged, and whatever apply last accepted stays in use
// until the file is edited again.
func Watch(ctx context.Context, path string, interval time.Duration, logger *zerolog.Logger, apply func(*Config) error) error {
	if path == "" {
		path = "configs/calendar.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	log := logger.With().Str("component", "calendar_watch").Str("path", path).Logger()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat calendar: %w", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	if err := apply(cfg); err != nil {
		return fmt.Errorf("apply calendar %s: %w", path, err)
	}
	lastMod := info.ModTime()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			info, err := os.Stat(path)
			if err != nil {
				log.Warn().Err(err).Msg("Calendar file unreadable, keeping current calendar")
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			lastMod = info.ModTime()

			cfg, err := LoadConfig(path)
			if err == nil {
				err = apply(cfg)
			}
			if err != nil {
				log.Error().Err(err).Time("modified", lastMod).Msg("Calendar reload rejected, keeping current calendar")
				continue
			}
			log.Debug().Ints("days_off", cfg.DaysOff).Int("holidays", len(cfg.Holidays)).Msg("Calendar change applied")
		}
	}()

	return nil
}
