package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

func TestPrometheus_RecordsOnCollectors(t *testing.T) {
	var rec Prometheus

	before := testutil.ToFloat64(MetadataUpdatesTotal.WithLabelValues("enrollment_link", "partial"))
	rec.MetadataUpdate("enrollment_link", "partial", 20*time.Millisecond)
	if got := testutil.ToFloat64(MetadataUpdatesTotal.WithLabelValues("enrollment_link", "partial")); got != before+1 {
		t.Fatalf("metadata updates: expected %v, got %v", before+1, got)
	}

	before = testutil.ToFloat64(UsersCreatedTotal.WithLabelValues(string(domain.RoleStudent)))
	rec.UserCreated(domain.RoleStudent)
	if got := testutil.ToFloat64(UsersCreatedTotal.WithLabelValues(string(domain.RoleStudent))); got != before+1 {
		t.Fatalf("users created: expected %v, got %v", before+1, got)
	}

	before = testutil.ToFloat64(LocationCacheTotal.WithLabelValues("hit"))
	rec.LocationCache("hit")
	rec.LocationCache("hit")
	if got := testutil.ToFloat64(LocationCacheTotal.WithLabelValues("hit")); got != before+2 {
		t.Fatalf("cache hits: expected %v, got %v", before+2, got)
	}

	before = testutil.ToFloat64(MessagesCreatedTotal)
	rec.MessageCreated()
	if got := testutil.ToFloat64(MessagesCreatedTotal); got != before+1 {
		t.Fatalf("messages: expected %v, got %v", before+1, got)
	}
}
