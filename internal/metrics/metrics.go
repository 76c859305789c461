// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsCreated counts sessions created, including quick sessions.
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classtrack_sessions_created_total",
		Help: "Number of attendance sessions created.",
	})

	// MarksRecorded counts upserted attendance marks by status.
	MarksRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classtrack_marks_recorded_total",
		Help: "Number of attendance marks recorded, by status.",
	}, []string{"status"})

	// BulkRollbacks counts bulk or quick operations rolled back on validation.
	BulkRollbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classtrack_bulk_rollbacks_total",
		Help: "Number of bulk marking transactions rolled back.",
	})
)
