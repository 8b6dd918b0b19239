package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Loan metrics
	LoansCreated  prometheus.Counter
	LoanPrincipal prometheus.Histogram

	// Payment metrics
	PaymentsAllocated  *prometheus.CounterVec
	PaymentAmount      *prometheus.HistogramVec
	AllocationDuration prometheus.Histogram
	AllocationErrors   *prometheus.CounterVec
	LateFeesCollected  prometheus.Counter

	// Cash session metrics
	SessionsOpened    prometheus.Counter
	SessionsClosed    prometheus.Counter
	SessionDifference prometheus.Histogram
	MovementsRecorded *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Loan metrics
		LoansCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_loans_created_total",
			Help: "Total number of loans created",
		}),
		LoanPrincipal: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanledger_loan_principal",
			Help:    "Loan principal amounts",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
		}),

		// Payment metrics
		PaymentsAllocated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_payments_allocated_total",
				Help: "Total number of payments allocated by method",
			},
			[]string{"method"},
		),
		PaymentAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loanledger_payment_amount",
				Help:    "Payment amounts by method",
				Buckets: []float64{10, 50, 100, 500, 1000, 5000},
			},
			[]string{"method"},
		),
		AllocationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanledger_allocation_duration_seconds",
			Help:    "Duration of payment allocation",
			Buckets: prometheus.DefBuckets,
		}),
		AllocationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_allocation_errors_total",
				Help: "Total payment allocation errors by type",
			},
			[]string{"error_type"},
		),
		LateFeesCollected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_late_fees_collected_total",
			Help: "Total number of late fees collected",
		}),

		// Cash session metrics
		SessionsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_sessions_opened_total",
			Help: "Total number of cash sessions opened",
		}),
		SessionsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_sessions_closed_total",
			Help: "Total number of cash sessions closed",
		}),
		SessionDifference: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanledger_session_difference",
			Help:    "Absolute counted-vs-computed difference at session close",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		MovementsRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_movements_recorded_total",
				Help: "Total cash movements recorded by type",
			},
			[]string{"type"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loanledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loanledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),
	}
}
