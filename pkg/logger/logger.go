// Package logger holds the process-wide zerolog logger.
//
// Init it once at startup, then derive per-component loggers with Component.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else is info.
	Level string
	// Pretty switches to coloured console output for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is attached to every event when set.
	Service string
}

var (
	mu          sync.RWMutex
	instance    zerolog.Logger
	initialized bool
)

// Init builds the process logger. Only the first call has any effect; later
// calls return the existing logger.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return instance
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	instance = ctx.Logger()
	initialized = true
	return instance
}

// Get returns the process logger. Panics if Init has not been called yet.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Component returns the process logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the process logger so the next Init rebuilds it. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	instance = zerolog.Logger{}
	initialized = false
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
