package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bedreport/internal/events"
	"bedreport/internal/models"
	"bedreport/internal/retention"
)

// SchedulerConfig holds configuration for the monthly report run.
type SchedulerConfig struct {
	// OutputDir receives the generated workbooks.
	OutputDir string

	// RetentionDays is how long workbooks are kept. 0 keeps them forever.
	RetentionDays int

	// RunOnStart runs the previous month immediately on Start.
	RunOnStart bool

	// PremisesID restricts scheduled runs to one premises.
	PremisesID *uuid.UUID
}

// Scheduler writes the previous month's workbook on the first of every month.
type Scheduler struct {
	config    SchedulerConfig
	service   *Service
	writer    func() ExcelWriter
	publisher Publisher
	logger    *zerolog.Logger
	now       func() time.Time

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler. writerFactory defaults to excelize.
func NewScheduler(
	config SchedulerConfig,
	service *Service,
	writerFactory func() ExcelWriter,
	publisher Publisher,
	logger *zerolog.Logger,
) *Scheduler {
	if config.OutputDir == "" {
		config.OutputDir = "reports"
	}
	if writerFactory == nil {
		writerFactory = NewExcelizeWriter
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "scheduler").Logger()

	return &Scheduler{
		config:    config,
		service:   service,
		writer:    writerFactory,
		publisher: publisher,
		logger:    &l,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the monthly loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	if s.config.RunOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.RunPreviousMonth()
		}()
	}

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().Str("output_dir", s.config.OutputDir).Msg("Report scheduler started")
}

// Stop waits for the loop and any in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	s.logger.Info().Msg("Report scheduler stopped")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	nextRun := nextFirstOfMonth(s.now())
	timer := time.NewTimer(time.Until(nextRun))
	defer timer.Stop()

	s.logger.Info().Time("next_run", nextRun).Msg("Next report scheduled")

	for {
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
			s.RunPreviousMonth()

			nextRun = nextFirstOfMonth(s.now())
			timer.Reset(time.Until(nextRun))
			s.logger.Info().Time("next_run", nextRun).Msg("Next report scheduled")
		}
	}
}

// nextFirstOfMonth is 00:05 on the first day of the month after now.
func nextFirstOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 5, 0, 0, now.Location())
}

// previousMonth returns the calendar month before now.
func previousMonth(now time.Time) models.ReportingWindow {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return models.MonthWindow(first.Year(), first.Month())
}

// RunPreviousMonth builds last month's workbook and prunes old ones.
func (s *Scheduler) RunPreviousMonth() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	w := previousMonth(s.now())
	if _, err := s.RunWindow(ctx, Request{Window: w, PremisesID: s.config.PremisesID}); err != nil {
		s.logger.Error().Err(err).Str("window", w.String()).Msg("Scheduled report failed")
	}
	s.CleanupArchive()
}

// Completed is the payload of a report.completed event.
type Completed struct {
	Window      string `json:"window"`
	Path        string `json:"path"`
	Bedspaces   int    `json:"bedspaces"`
	Failed      int    `json:"failed"`
	UsageEvents int    `json:"usage_events"`
}

// RunWindow builds both reports for req and saves them as one workbook in
// the output directory. It returns the workbook path.
func (s *Scheduler) RunWindow(ctx context.Context, req Request) (string, error) {
	path, summary, err := s.runWindow(ctx, req)
	if err != nil {
		s.publish(events.EventReportFailed, map[string]string{
			"window": req.Window.String(),
			"error":  err.Error(),
		})
		return "", err
	}
	s.publish(events.EventReportCompleted, summary)
	s.logger.Info().
		Str("path", path).
		Int("bedspaces", summary.Bedspaces).
		Int("failed", summary.Failed).
		Msg("Report written")
	return path, nil
}

func (s *Scheduler) runWindow(ctx context.Context, req Request) (string, Completed, error) {
	util, err := s.service.Utilization(ctx, req)
	if err != nil {
		return "", Completed{}, fmt.Errorf("utilisation report: %w", err)
	}
	usage, err := s.service.Usage(ctx, req)
	if err != nil {
		return "", Completed{}, fmt.Errorf("usage report: %w", err)
	}

	excel := s.writer()
	if excel == nil {
		return "", Completed{}, fmt.Errorf("failed to create excel writer")
	}
	defer excel.Close()

	if err := RenderWorkbook(excel, util, usage); err != nil {
		return "", Completed{}, err
	}

	if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		return "", Completed{}, fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(s.config.OutputDir, GenerateFilename(req.Window))
	if err := excel.SaveToFile(path); err != nil {
		return "", Completed{}, fmt.Errorf("save workbook: %w", err)
	}

	eventRows := 0
	for _, b := range usage.Bedspaces {
		eventRows += len(b.Events)
	}
	return path, Completed{
		Window:      req.Window.String(),
		Path:        path,
		Bedspaces:   len(util.Rows),
		Failed:      util.Failed,
		UsageEvents: eventRows,
	}, nil
}

// CleanupArchive removes workbooks older than the retention period.
func (s *Scheduler) CleanupArchive() int {
	removed := retention.Prune(s.config.OutputDir, filePrefix, s.config.RetentionDays, s.now(), s.logger)
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Int("retention_days", s.config.RetentionDays).Msg("Cleaned up old reports")
	}
	return removed
}

func (s *Scheduler) publish(eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
