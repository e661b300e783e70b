package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Operation metrics
	OperationsCommitted prometheus.Counter
	OperationsRejected  *prometheus.CounterVec
	OperationErrors     *prometheus.CounterVec
	OperationDuration   prometheus.Histogram
	OperationAmount     prometheus.Histogram

	// Approval metrics
	ApprovalsRequested prometheus.Counter
	ApprovalsDecided   *prometheus.CounterVec

	// Account metrics
	AccountsOpened      *prometheus.CounterVec
	AccountsDeactivated prometheus.Counter

	// Reconciliation metrics
	ReconciliationRuns    prometheus.Counter
	ReconciliationDrifted prometheus.Gauge

	// Outbox metrics
	EventsPublished prometheus.Counter
	EventsFailed    prometheus.Counter

	// Database metrics
	DBErrors    *prometheus.CounterVec
	DBConflicts prometheus.Counter
	DBRetries   prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		OperationsCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tillbooks_operations_committed_total",
			Help: "Total number of committed transfer operations",
		}),
		OperationsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tillbooks_operations_rejected_total",
				Help: "Total number of rejected transfer operations by reason",
			},
			[]string{"reason"},
		),
		OperationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tillbooks_operation_errors_total",
				Help: "Total number of transfer operation errors by type",
			},
			[]string{"error_type"},
		),
		OperationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tillbooks_operation_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		OperationAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tillbooks_operation_amount",
			Help:    "Transfer operation amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		ApprovalsRequested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tillbooks_approvals_requested_total",
			Help: "Total number of approval workflows opened",
		}),
		ApprovalsDecided: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tillbooks_approvals_decided_total",
				Help: "Total number of approval decisions by outcome",
			},
			[]string{"state"},
		),

		AccountsOpened: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tillbooks_accounts_opened_total",
				Help: "Total number of ledger accounts opened by owner type",
			},
			[]string{"owner_type"},
		),
		AccountsDeactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tillbooks_accounts_deactivated_total",
			Help: "Total number of ledger accounts deactivated",
		}),

		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tillbooks_reconciliation_runs_total",
			Help: "Total number of reconciliation runs",
		}),
		ReconciliationDrifted: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tillbooks_reconciliation_drifted_accounts",
			Help: "Accounts with audit drift found by the last reconciliation run",
		}),

		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tillbooks_outbox_events_published_total",
			Help: "Total number of outbox events delivered",
		}),
		EventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tillbooks_outbox_events_failed_total",
			Help: "Total number of outbox event delivery failures",
		}),

		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tillbooks_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),
		DBConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tillbooks_db_conflicts_total",
			Help: "Total serialization conflicts and deadlocks seen",
		}),
		DBRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tillbooks_db_retries_total",
			Help: "Total transaction retries after transient conflicts",
		}),
	}
}
