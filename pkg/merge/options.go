package merge

import (
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Option customises an Engine.
type Option func(*Engine)

// WithLogger routes engine logs to logger. The default discards everything.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFrameReindex renumbers appended frames after a combine so frame_index
// continues from the end of the target's list.
func WithFrameReindex(enabled bool) Option {
	return func(e *Engine) {
		e.reindex = enabled
	}
}

// WithStrictSources makes a missing source page fail the merge instead of
// being skipped.
func WithStrictSources(enabled bool) Option {
	return func(e *Engine) {
		e.strict = enabled
	}
}

// WithRunID overrides how run identifiers are generated.
func WithRunID(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.runID = fn
		}
	}
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newRunID() string {
	return uuid.NewString()
}
