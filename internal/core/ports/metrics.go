package ports

import (
	"time"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// Recorder receives the business events the services count.
type Recorder interface {
	// MetadataUpdate reports a finished fan-out; result is "ok", "partial"
	// or "failed".
	MetadataUpdate(operation, result string, elapsed time.Duration)
	UserCreated(role domain.Role)
	// Enrollment reports an "enroll" or "drop" that reached the store.
	Enrollment(action string)
	MessageCreated()
	// LocationCache reports a zip lookup; result is "hit", "miss" or "error".
	LocationCache(result string)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) MetadataUpdate(string, string, time.Duration) {}
func (NopRecorder) UserCreated(domain.Role)                      {}
func (NopRecorder) Enrollment(string)                            {}
func (NopRecorder) MessageCreated()                              {}
func (NopRecorder) LocationCache(string)                         {}
