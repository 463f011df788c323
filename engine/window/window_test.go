package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/stretchr/testify/assert"
)

func TestAspect(t *testing.T) {
	assert.InDelta(t, 16.0/9.0, aspect(1280, 720), 1e-6)
	assert.Equal(t, float32(1), aspect(640, 0))
}

func TestOptions(t *testing.T) {
	s := defaultSettings()
	WithConfig(config.Window{Title: "viewer", Width: 800})(&s)
	WithSize(0, -5)(&s)
	WithEscapeCloses(false)(&s)

	assert.Equal(t, "viewer", s.title)
	assert.Equal(t, 800, s.width)
	assert.Equal(t, 720, s.height)
	assert.False(t, s.escapeCloses)

	WithSizeLimits(100, 100, 1920, 1080)(&s)
	assert.Equal(t, [4]int{100, 100, 1920, 1080}, [4]int{s.minWidth, s.minHeight, s.maxWidth, s.maxHeight})
}
