package profiler

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTick_LogsOncePerInterval(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l, hook := test.NewNullLogger()
	p := NewProfiler(
		WithLogger(l),
		WithInterval(time.Second),
		WithClock(func() time.Time { return now }),
	)

	for range 49 {
		now = now.Add(20 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	assert.Empty(t, hook.AllEntries())

	now = now.Add(20 * time.Millisecond)
	require.True(t, p.Tick())
	require.Len(t, hook.AllEntries(), 1)

	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "profiler: interval", entry.Message)
	assert.InDelta(t, 50, entry.Data["fps"], 0.01)
	assert.InDelta(t, 50, p.FPS(), 0.01)

	now = now.Add(time.Millisecond)
	assert.False(t, p.Tick())
}
