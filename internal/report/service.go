// Package report builds bed utilisation and bed usage reports across many
// bedspaces and writes them as XLSX workbooks.
package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bedreport/internal/calendar"
	"bedreport/internal/database"
	"bedreport/internal/events"
	"bedreport/internal/models"
	"bedreport/internal/occupancy"
)

// Report kinds, used as metric labels.
const (
	KindUtilization = "utilization"
	KindUsage       = "usage"
)

// ErrBedspaceFailed is returned in fail-fast mode when any bedspace fails.
var ErrBedspaceFailed = errors.New("bedspace report failed")

// Config holds configuration for the report service.
type Config struct {
	// Workers bounds concurrent bedspace computations. Default: 8.
	Workers int

	// FailFast aborts the whole report on the first bedspace error.
	FailFast bool

	// LookbackDays is the calendar-day slack added to booking reads so earlier
	// turnarounds are seen. Default: 31.
	LookbackDays int

	// DefaultTurnaroundWorkingDays applies to bookings without their own value.
	DefaultTurnaroundWorkingDays int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:                      8,
		LookbackDays:                 31,
		DefaultTurnaroundWorkingDays: models.DefaultTurnaroundWorkingDays,
	}
}

// Request selects the window and bedspaces of a report.
type Request struct {
	Window     models.ReportingWindow
	PremisesID *uuid.UUID
}

// UtilizationRow is one bedspace's summary or its failure.
type UtilizationRow struct {
	Bedspace models.Bedspace
	Summary  *models.UtilizationSummary
	Err      error
}

// UtilizationReport is the bed utilisation report for a window.
type UtilizationReport struct {
	ID          uuid.UUID
	Window      models.ReportingWindow
	GeneratedAt time.Time
	Rows        []UtilizationRow
	Failed      int
}

// UsageBedspace is one bedspace's event rows or its failure.
type UsageBedspace struct {
	Bedspace models.Bedspace
	Events   []models.EventRow
	Err      error
}

// UsageReport is the bed usage report for a window.
type UsageReport struct {
	ID          uuid.UUID
	Window      models.ReportingWindow
	GeneratedAt time.Time
	Bedspaces   []UsageBedspace
	Failed      int
}

// Service fans report work out per bedspace.
type Service struct {
	config     *Config
	store      Store
	aggregator *occupancy.Aggregator
	generator  *occupancy.EventGenerator
	publisher  Publisher
	metrics    *Metrics
	logger     *zerolog.Logger
	now        func() time.Time
}

// NewService creates a report service. publisher and metrics may be nil.
func NewService(
	config *Config,
	store Store,
	cal calendar.WorkingDayCalendar,
	publisher Publisher,
	metrics *Metrics,
	logger *zerolog.Logger,
) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers <= 0 {
		config.Workers = 8
	}
	if config.LookbackDays <= 0 {
		config.LookbackDays = 31
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "report").Logger()

	turnarounds := occupancy.NewTurnaroundResolver(cal, config.DefaultTurnaroundWorkingDays)
	return &Service{
		config:     config,
		store:      store,
		aggregator: occupancy.NewAggregator(turnarounds),
		generator:  occupancy.NewEventGenerator(turnarounds),
		publisher:  publisher,
		metrics:    metrics,
		logger:     &l,
		now:        time.Now,
	}
}

// Utilization builds the bed utilisation report. Per-bedspace failures are
// recorded on their rows unless the service runs in fail-fast mode.
func (s *Service) Utilization(ctx context.Context, req Request) (*UtilizationReport, error) {
	rep := &UtilizationReport{ID: uuid.New(), Window: req.Window, GeneratedAt: s.now()}

	bedspaces, err := s.begin(ctx, KindUtilization, rep.ID, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rep.Rows = make([]UtilizationRow, len(bedspaces))
	for i := range bedspaces {
		rep.Rows[i].Bedspace = bedspaces[i]
	}
	errs := s.forEach(ctx, bedspaces, func(ctx context.Context, i int) error {
		b := &bedspaces[i]

		bookings, voids, err := s.load(ctx, b, req.Window)
		if err != nil {
			return err
		}
		summary, err := s.aggregator.Aggregate(b, bookings, voids, req.Window)
		if err != nil {
			return err
		}
		rep.Rows[i].Summary = summary
		return nil
	})

	for i, err := range errs {
		rep.Rows[i].Err = err
	}
	rep.Failed, err = s.finish(ctx, KindUtilization, rep.ID, bedspaces, errs, start)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// Usage builds the bed usage report of booking, turnaround and void rows.
func (s *Service) Usage(ctx context.Context, req Request) (*UsageReport, error) {
	rep := &UsageReport{ID: uuid.New(), Window: req.Window, GeneratedAt: s.now()}

	bedspaces, err := s.begin(ctx, KindUsage, rep.ID, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rep.Bedspaces = make([]UsageBedspace, len(bedspaces))
	for i := range bedspaces {
		rep.Bedspaces[i].Bedspace = bedspaces[i]
	}
	errs := s.forEach(ctx, bedspaces, func(ctx context.Context, i int) error {
		b := &bedspaces[i]

		bookings, voids, err := s.load(ctx, b, req.Window)
		if err != nil {
			return err
		}
		rows, err := occupancy.Collect(s.generator.Generate(b, bookings, voids, req.Window))
		if err != nil {
			return err
		}
		rep.Bedspaces[i].Events = rows
		return nil
	})

	for i, err := range errs {
		rep.Bedspaces[i].Err = err
	}
	rep.Failed, err = s.finish(ctx, KindUsage, rep.ID, bedspaces, errs, start)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Service) begin(ctx context.Context, kind string, id uuid.UUID, req Request) ([]models.Bedspace, error) {
	if err := req.Window.Validate(); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("report_id", id.String()).
		Str("kind", kind).
		Str("window", req.Window.String()).
		Msg("Building report")

	bedspaces, err := s.store.ListBedspaces(ctx, database.BedspaceFilter{Window: req.Window, PremisesID: req.PremisesID})
	if err != nil {
		s.metrics.observeReport(kind, "failed", 0)
		return nil, fmt.Errorf("list bedspaces: %w", err)
	}
	return bedspaces, nil
}

func (s *Service) load(ctx context.Context, b *models.Bedspace, w models.ReportingWindow) ([]models.Booking, []models.VoidPeriod, error) {
	bookings, err := s.store.BookingsForBedspace(ctx, b.ID, w, s.config.LookbackDays, s.config.DefaultTurnaroundWorkingDays)
	if err != nil {
		return nil, nil, fmt.Errorf("load bookings: %w", err)
	}
	voids, err := s.store.VoidsForBedspace(ctx, b.ID, w)
	if err != nil {
		return nil, nil, fmt.Errorf("load voids: %w", err)
	}
	return bookings, voids, nil
}

// forEach runs fn for every bedspace on a bounded pool and returns the
// per-index errors. In fail-fast mode the first error cancels the rest.
func (s *Service) forEach(ctx context.Context, bedspaces []models.Bedspace, fn func(ctx context.Context, i int) error) []error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make([]error, len(bedspaces))
	sem := make(chan struct{}, s.config.Workers)
	var wg sync.WaitGroup

	for i := range bedspaces {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := fn(ctx, i); err != nil {
				errs[i] = err
				if s.config.FailFast {
					cancel()
				}
			}
		}(i)
	}

	wg.Wait()
	return errs
}

func (s *Service) finish(ctx context.Context, kind string, id uuid.UUID, bedspaces []models.Bedspace, errs []error, start time.Time) (int, error) {
	failed := 0
	var first error
	for i, err := range errs {
		if err == nil {
			s.metrics.observeBedspace(kind, "ok")
			continue
		}
		failed++
		s.metrics.observeBedspace(kind, "failed")

		b := &bedspaces[i]
		if first == nil && !errors.Is(err, context.Canceled) {
			first = fmt.Errorf("%w: bedspace %s: %w", ErrBedspaceFailed, b.Reference, err)
		}
		s.logger.Warn().
			Err(err).
			Str("report_id", id.String()).
			Str("bedspace_id", b.ID.String()).
			Str("reference", b.Reference).
			Msg("Bedspace skipped")
		s.publish(events.EventBedspaceFailed, map[string]string{
			"report_id":   id.String(),
			"kind":        kind,
			"bedspace_id": b.ID.String(),
			"reference":   b.Reference,
			"error":       err.Error(),
		})
	}

	elapsed := time.Since(start)
	if err := ctx.Err(); err != nil {
		s.metrics.observeReport(kind, "cancelled", elapsed)
		return failed, err
	}
	if s.config.FailFast && failed > 0 {
		s.metrics.observeReport(kind, "failed", elapsed)
		if first == nil {
			first = ErrBedspaceFailed
		}
		return failed, first
	}

	status := "ok"
	if failed > 0 {
		status = "partial"
	}
	s.metrics.observeReport(kind, status, elapsed)
	s.logger.Info().
		Str("report_id", id.String()).
		Str("kind", kind).
		Int("bedspaces", len(bedspaces)).
		Int("failed", failed).
		Dur("elapsed", elapsed).
		Msg("Report built")
	return failed, nil
}

func (s *Service) publish(eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
