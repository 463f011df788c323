package pending

import (
	"time"

	"github.com/sirupsen/logrus"
)

// TrackerBuilderOption is a functional option applied to a tracker during NewTracker.
type TrackerBuilderOption func(*trackerImpl)

// WithPollInterval sets how often ExecuteWhenReady re-checks readiness. Non-positive values
// keep DefaultPollInterval.
//
// Parameters:
//   - d: the poll interval
//
// Returns:
//   - TrackerBuilderOption: option function to apply
func WithPollInterval(d time.Duration) TrackerBuilderOption {
	return func(t *trackerImpl) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithReadyFunc adds a readiness condition checked after the token count, such as "no entity is
// mid delay-load".
//
// Parameters:
//   - fn: returns true when nothing besides tokens is outstanding
//
// Returns:
//   - TrackerBuilderOption: option function to apply
func WithReadyFunc(fn func() bool) TrackerBuilderOption {
	return func(t *trackerImpl) {
		t.ready = fn
	}
}

// WithLogger sets the logger used for poll diagnostics.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - TrackerBuilderOption: option function to apply
func WithLogger(log logrus.FieldLogger) TrackerBuilderOption {
	return func(t *trackerImpl) {
		if log != nil {
			t.log = log
		}
	}
}
