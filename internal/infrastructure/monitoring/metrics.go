package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	InstallmentsRecorded *prometheus.CounterVec
	ExportsGenerated     *prometheus.CounterVec
	OpenOverdueLoans     prometheus.Gauge
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loanbook_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		InstallmentsRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanbook_installments_recorded_total",
				Help: "Total number of installment payments recorded, by outcome.",
			},
			[]string{"status"},
		),
		ExportsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanbook_exports_generated_total",
				Help: "Total number of report exports generated.",
			},
			[]string{"report", "format"},
		),
		OpenOverdueLoans: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "loanbook_open_overdue_loans",
				Help: "Number of Open loans whose end date has passed.",
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordInstallment(status string) {
	Business.InstallmentsRecorded.WithLabelValues(status).Inc()
}

func RecordExport(report, format string) {
	Business.ExportsGenerated.WithLabelValues(report, format).Inc()
}

func SetOpenOverdueLoans(count int) {
	Business.OpenOverdueLoans.Set(float64(count))
}
