// Package metrics defines and registers the custom Prometheus metrics of the
// notes API. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry on import; HTTP
// request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "technotes"

// ── Resource metrics ──────────────────────────────────────────────────────────

// ResourceOperationsTotal counts successful manager operations.
// Labels:
//   - resource: "user" or "note"
//   - operation: "create", "update" or "delete"
var ResourceOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resource_operations_total",
		Help:      "Total number of successful create/update/delete operations.",
	},
	[]string{"resource", "operation"},
)

// ── Error metrics ─────────────────────────────────────────────────────────────

// ErrorsTotal counts failures rendered by the error handler.
// Labels:
//   - kind: normalized error kind (e.g. "InvalidInput", "UniqueViolation")
//   - status: HTTP status code returned to the client
var ErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Total number of error responses, by kind and status code.",
	},
	[]string{"kind", "status"},
)

// OriginRejectionsTotal counts requests denied by the origin allow-list.
var OriginRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "origin_rejections_total",
		Help:      "Total number of requests rejected because their Origin is not allowed.",
	},
)

// ── Error event log ───────────────────────────────────────────────────────────

// ErrorLogDroppedTotal counts error events dropped because the sink buffer was full.
var ErrorLogDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "error_log_dropped_total",
		Help:      "Total number of error log events dropped on a full buffer.",
	},
)

// ErrorLogQueueDepth tracks events waiting to be written to the error log.
var ErrorLogQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "error_log_queue_depth",
		Help:      "Current number of error log events pending in the sink buffer.",
	},
)

// ── Username cache ────────────────────────────────────────────────────────────

// UsernameCacheTotal counts username cache lookups.
// Label:
//   - result: "hit" or "miss"
var UsernameCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "username_cache_total",
		Help:      "Total number of username cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)
