package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auditoria"

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	RowsSaved    prometheus.Counter
	RowsDeleted  prometheus.Counter
	RowsImported prometheus.Counter
	// StoreOps counts row store operations. Labels: op, status (ok, empty, failed)
	StoreOps *prometheus.CounterVec
	// HTTPRequests counts API requests. Labels: route, code
	HTTPRequests *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RowsSaved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_saved_total",
			Help:      "Total number of audit rows created or edited",
		}),
		RowsDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_deleted_total",
			Help:      "Total number of audit rows deleted",
		}),
		RowsImported: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_imported_total",
			Help:      "Total number of audit rows merged from imported files",
		}),
		StoreOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Row store operations by operation and result status",
		}, []string{"op", "status"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route and status code",
		}, []string{"route", "code"}),
	}
}

// ObserveStoreOp records the outcome of one row store operation.
func (m *Metrics) ObserveStoreOp(op, status string) {
	m.StoreOps.WithLabelValues(op, status).Inc()
}
