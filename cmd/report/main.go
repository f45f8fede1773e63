package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"bedreport/internal/calendar"
	"bedreport/internal/config"
	"bedreport/internal/database"
	"bedreport/internal/events"
	"bedreport/internal/models"
	"bedreport/internal/report"
)

func main() {
	configPath := flag.String("config", os.Getenv("REPORT_CONFIG_PATH"), "path to config.yaml")
	month := flag.String("month", "", "report month, YYYY-MM")
	from := flag.String("from", "", "window start, YYYY-MM-DD")
	to := flag.String("to", "", "window end, YYYY-MM-DD")
	outDir := flag.String("out", "", "output directory, overrides report.output_dir")
	premises := flag.String("premises", "", "only bedspaces of this premises id")
	once := flag.Bool("once", false, "build one workbook and exit")
	flag.Parse()

	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if *outDir != "" {
		cfg.Report.OutputDir = *outDir
	}

	var premisesID *uuid.UUID
	if *premises != "" {
		id, err := uuid.Parse(*premises)
		if err != nil {
			logger.Fatal().Err(err).Str("premises", *premises).Msg("invalid premises id")
		}
		premisesID = &id
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}

	metrics := report.NewMetrics(cfg.Monitoring.Namespace, prometheus.DefaultRegisterer)

	bus := events.NewEventBus()
	bus.OnError(func(e events.Event, err error) {
		logger.Error().Err(err).Str("event", e.Type).Msg("event handler failed")
	})
	bus.Subscribe(events.EventReportCompleted, func(e events.Event) error {
		logger.Info().RawJSON("payload", e.Payload).Msg("report completed")
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cal, err := startCalendar(ctx, cfg, rdb, metrics, bus, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("calendar error")
	}

	svc := report.NewService(&report.Config{
		Workers:                      cfg.Report.Workers,
		FailFast:                     cfg.Report.FailFast,
		LookbackDays:                 cfg.Report.TurnaroundLookbackDays,
		DefaultTurnaroundWorkingDays: cfg.TurnaroundWorkingDays(),
	}, db, cal, bus, metrics, &logger)

	scheduler := report.NewScheduler(report.SchedulerConfig{
		OutputDir:     cfg.Report.OutputDir,
		RetentionDays: cfg.Report.RetentionDays,
		RunOnStart:    cfg.Report.RunOnStart,
		PremisesID:    premisesID,
	}, svc, report.NewExcelizeWriter, bus, &logger)

	if *once {
		window, err := resolveWindow(*month, *from, *to, time.Now())
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid window")
		}
		path, err := scheduler.RunWindow(ctx, report.Request{Window: window, PremisesID: premisesID})
		if err != nil {
			logger.Fatal().Err(err).Str("window", window.String()).Msg("report failed")
		}
		fmt.Println(path)
		return
	}

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)
	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	backup := database.NewBackupService(db, database.BackupConfig{
		Enabled:       cfg.Backup.Enabled,
		Interval:      cfg.BackupInterval(),
		StoragePath:   cfg.Backup.Path,
		RetentionDays: cfg.Backup.RetentionDays,
	}, &logger)
	go backup.Start(ctx)

	if cfg.Report.ScheduleEnabled {
		scheduler.Start()
		defer scheduler.Stop()
	}

	logger.Info().Msg("Report service started")
	<-ctx.Done()
	logger.Info().Msg("Shutting down")
}

// startCalendar loads the calendar, merges bank holidays and keeps it fresh on config changes.
func startCalendar(
	ctx context.Context,
	cfg *config.Config,
	rdb *redis.Client,
	metrics *report.Metrics,
	bus *events.EventBus,
	logger *zerolog.Logger,
) (*calendar.Dynamic, error) {
	var feed []calendar.Holiday
	if cfg.BankHolidays.Enabled {
		client := calendar.NewBankHolidayClient(calendar.BankHolidayConfig{
			BaseURL:           cfg.BankHolidays.BaseURL,
			Division:          cfg.BankHolidays.Division,
			Timeout:           cfg.BankHolidayTimeout(),
			RetryCount:        cfg.BankHolidays.RetryCount,
			RequestsPerSecond: cfg.BankHolidays.RequestsPerSecond,
		}, logger)
		if rdb != nil && cfg.BankHolidayCacheTTL() > 0 {
			client.UseRedisCache(rdb, cfg.BankHolidayCacheTTL())
		}
		client.OnFetch = metrics.ObserveBankHolidayFetch

		holidays, err := client.Fetch(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("bank holidays unavailable, using configured holidays only")
		}
		feed = holidays
	}

	var dyn *calendar.Dynamic
	err := calendar.Watch(ctx, cfg.Calendar.Path, cfg.CalendarReloadInterval(), logger, func(c *calendar.Config) error {
		cal, err := calendar.New(c, feed)
		if err != nil {
			return err
		}
		if dyn == nil {
			dyn = calendar.NewDynamic(cal)
			return nil
		}
		dyn.Swap(cal)
		metrics.ObserveCalendarReload()
		_ = bus.PublishJSON(events.EventCalendarReload, map[string]string{"path": cfg.Calendar.Path})
		logger.Info().Str("path", cfg.Calendar.Path).Msg("calendar reloaded")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dyn, nil
}

// resolveWindow picks the report window from flags, defaulting to last month.
func resolveWindow(month, from, to string, now time.Time) (models.ReportingWindow, error) {
	switch {
	case month != "":
		return models.ParseWindow(month)
	case from != "" || to != "":
		return models.ParseWindow(from + ".." + to)
	default:
		first := models.Date(now.Year(), now.Month(), 1).AddDate(0, -1, 0)
		return models.MonthWindow(first.Year(), first.Month()), nil
	}
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
