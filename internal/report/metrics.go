package report

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for report generation.
type Metrics struct {
	// ReportsGenerated counts report runs by kind and status.
	ReportsGenerated *prometheus.CounterVec

	// BedspacesProcessed counts bedspaces by kind and outcome.
	BedspacesProcessed *prometheus.CounterVec

	// ReportDuration is the wall time of a report run.
	ReportDuration *prometheus.HistogramVec

	// BankHolidayFetches counts bank holiday lookups by source.
	BankHolidayFetches *prometheus.CounterVec

	// CalendarReloads counts calendar config reloads.
	CalendarReloads prometheus.Counter
}

// NewMetrics creates metrics and registers them with reg.
// A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ReportsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_generated_total",
				Help:      "Total number of report runs",
			},
			[]string{"kind", "status"},
		),

		BedspacesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bedspaces_processed_total",
				Help:      "Total number of bedspaces processed",
			},
			[]string{"kind", "outcome"},
		),

		ReportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_duration_seconds",
				Help:      "Time to build a report",
				Buckets:   []float64{.05, .1, .5, 1, 5, 15, 60, 300},
			},
			[]string{"kind"},
		),

		BankHolidayFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bank_holiday_fetch_total",
				Help:      "Bank holiday lookups by source",
			},
			[]string{"source"},
		),

		CalendarReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calendar_reloads_total",
				Help:      "Total number of calendar reloads",
			},
		),
	}
}

func (m *Metrics) observeReport(kind, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ReportsGenerated.WithLabelValues(kind, status).Inc()
	m.ReportDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) observeBedspace(kind, outcome string) {
	if m == nil {
		return
	}
	m.BedspacesProcessed.WithLabelValues(kind, outcome).Inc()
}

// ObserveBankHolidayFetch records where bank holidays came from.
func (m *Metrics) ObserveBankHolidayFetch(source string) {
	if m == nil {
		return
	}
	m.BankHolidayFetches.WithLabelValues(source).Inc()
}

// ObserveCalendarReload records a calendar reload.
func (m *Metrics) ObserveCalendarReload() {
	if m == nil {
		return
	}
	m.CalendarReloads.Inc()
}
