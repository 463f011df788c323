package profiler

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithLogger sets the logger the interval line is written to.
//
// Parameters:
//   - l: the logger (nil is ignored)
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the logger option to a Profiler
func WithLogger(l logrus.FieldLogger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if l != nil {
			p.log = l
		}
	}
}

// WithInterval sets how often statistics are logged.
//
// Parameters:
//   - d: the interval (values <= 0 are ignored)
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval option to a Profiler
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
