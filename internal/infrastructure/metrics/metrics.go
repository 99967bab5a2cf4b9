// Package metrics defines and registers all custom Prometheus metrics for the
// stem-bound API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is first imported. Services reach them through Prometheus, which
// implements ports.Recorder.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

const namespace = "stembound"

// ── Metadata metrics ──────────────────────────────────────────────────────────

// MetadataUpdatesTotal counts metadata fan-outs.
// Labels:
//   - operation: the triggering event (e.g. "course_enroll", "user_deleted")
//   - result: "ok", "partial" (some targets applied) or "failed"
var MetadataUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "metadata_updates_total",
		Help:      "Total number of metadata fan-out operations, by outcome.",
	},
	[]string{"operation", "result"},
)

// MetadataUpdateDuration measures a whole fan-out, from first write to join.
var MetadataUpdateDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "metadata_update_duration_seconds",
		Help:      "Duration of metadata fan-out operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UsersCreatedTotal counts sign-ups.
// Label:
//   - role: STUDENT, INSTRUCTOR or SCHOOL_OFFICIAL
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created, by role.",
	},
	[]string{"role"},
)

// EnrollmentsTotal counts enroll and drop requests that reached the store.
// Label:
//   - action: "enroll" or "drop"
var EnrollmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "course_enrollments_total",
		Help:      "Total number of course enroll/drop operations.",
	},
	[]string{"action"},
)

var MessagesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_messages_created_total",
		Help:      "Total number of chat messages created.",
	},
)

// LocationCacheTotal counts zip lookups against the location cache.
// Label:
//   - result: "hit", "miss" or "error"
var LocationCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_cache_total",
		Help:      "Total number of location cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// Prometheus records service events on the collectors above.
type Prometheus struct{}

var _ ports.Recorder = Prometheus{}

func (Prometheus) MetadataUpdate(operation, result string, elapsed time.Duration) {
	MetadataUpdateDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	MetadataUpdatesTotal.WithLabelValues(operation, result).Inc()
}

func (Prometheus) UserCreated(role domain.Role) {
	UsersCreatedTotal.WithLabelValues(string(role)).Inc()
}

func (Prometheus) Enrollment(action string) {
	EnrollmentsTotal.WithLabelValues(action).Inc()
}

func (Prometheus) MessageCreated() {
	MessagesCreatedTotal.Inc()
}

func (Prometheus) LocationCache(result string) {
	LocationCacheTotal.WithLabelValues(result).Inc()
}
