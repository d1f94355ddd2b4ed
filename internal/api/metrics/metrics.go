// Package metrics defines and registers all custom Prometheus metrics for the
// storefront API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the /metrics route.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/storefront/storefront-api/internal/core/domain"
)

const namespace = "storefront"

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartOperationsTotal counts cart mutations.
// Labels:
//   - op: "add", "update", "remove" or "clear"
//   - result: see Result
var CartOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Total number of cart operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// ProductMutationsTotal counts admin writes to the catalog.
// Labels:
//   - op: "create", "update", "delete", "visibility", "sale", "stock", "image"
//   - result: see Result
var ProductMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_mutations_total",
		Help:      "Total number of admin catalog mutations, by operation and result.",
	},
	[]string{"op", "result"},
)

// ImageUploadBytes observes the size of accepted product images.
var ImageUploadBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_upload_bytes",
		Help:      "Size of accepted product image uploads.",
		Buckets:   prometheus.ExponentialBuckets(16<<10, 2, 9), // 16KiB .. 4MiB
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts sign-up and sign-in attempts.
// Labels:
//   - op: "signup", "signin" or "signout"
//   - result: see Result
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"op", "result"},
)

// ── Image cleanup metrics ─────────────────────────────────────────────────────

// ImageCleanupTotal counts removals of superseded images.
// Label:
//   - result: "ok" or "error"
var ImageCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_cleanup_total",
		Help:      "Total number of superseded product images removed from storage.",
	},
	[]string{"result"},
)

// ImageCleanupQueueDepth tracks the cleanup jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ImageCleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "image_cleanup_queue_depth",
		Help:      "Current number of cleanup jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// Result turns an operation error into a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrInvalidCredentials):
		return "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrEmailTaken):
		return "conflict"
	case errors.Is(err, domain.ErrLoad):
		return "load_failed"
	case errors.Is(err, domain.ErrWrite):
		return "write_failed"
	}
	return "error"
}
