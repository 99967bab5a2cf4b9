package redis

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

func TestLocationKey(t *testing.T) {
	if got := locationKey("11201"); got != "location:zip:11201" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestNewLocationCache_DefaultTTL(t *testing.T) {
	if c := NewLocationCache(nil, 0); c.ttl != defaultLocationTTL {
		t.Fatalf("expected default ttl, got %s", c.ttl)
	}
	if c := NewLocationCache(nil, time.Minute); c.ttl != time.Minute {
		t.Fatalf("expected 1m, got %s", c.ttl)
	}
}

// The cache must decode what the zip collection stores, GeoJSON included.
func TestLocationEncoding(t *testing.T) {
	in := domain.ZipLocation{Zip: "11201", City: "Brooklyn", State: "NY", GeoJSON: domain.NewPoint(-73.99, 40.69)}

	raw, err := bson.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := bson.Raw(raw).LookupErr("_id"); err == nil {
		t.Error("a zero id must be omitted")
	}

	var out domain.ZipLocation
	if err := bson.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.City != in.City || out.GeoJSON.Type != "Point" || len(out.GeoJSON.Coordinates) != 2 {
		t.Fatalf("unexpected round trip result: %+v", out)
	}
}

func TestConfigOptions(t *testing.T) {
	opts := Config{Addr: "cache:6379", Password: "pw", DB: 2}.options()
	if opts.Addr != "cache:6379" || opts.Password != "pw" || opts.DB != 2 {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
