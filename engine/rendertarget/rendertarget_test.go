package rendertarget

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/stretchr/testify/assert"
)

func shouldRenderSequence(t RenderTarget, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = t.ShouldRender()
	}
	return out
}

func TestShouldRenderFollowsRefreshRate(t *testing.T) {
	every := NewTexture("every", 64, 64)
	once := NewTexture("once", 64, 64, WithRefreshRate(RefreshRateOnce))
	third := NewTexture("third", 64, 64, WithRefreshRate(3))

	assert.Equal(t, []bool{true, true, true, true}, shouldRenderSequence(every, 4))
	assert.Equal(t, []bool{true, false, false, false}, shouldRenderSequence(once, 4))
	assert.Equal(t, []bool{true, false, false, true, false, false, true}, shouldRenderSequence(third, 7))
}

func TestDisabledOrDisposedNeverRenders(t *testing.T) {
	disabled := NewTexture("off", 1, 1, WithEnabled(false))
	assert.False(t, disabled.ShouldRender())

	disposed := 0
	tex := NewTexture("gone", 1, 1, WithOnDispose(func() { disposed++ }))
	tex.Dispose()
	tex.Dispose()
	assert.True(t, tex.IsDisposed())
	assert.Equal(t, 1, disposed)
	assert.False(t, tex.ShouldRender())
}

func TestRenderCallsRenderFunc(t *testing.T) {
	boom := errors.New("boom")
	var seen uint64
	tex := NewTexture("rt", 8, 8,
		WithCamera(camera.NewCamera("reflection")),
		WithRenderFunc(func(rt RenderTarget, renderID uint64) error {
			seen = renderID
			return boom
		}),
	)

	err := tex.Render(42)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(42), seen)
	assert.Equal(t, uint64(42), tex.LastRenderID())
	assert.Equal(t, 1, tex.RenderCount())
	assert.NotNil(t, tex.Camera())

	w, h := tex.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)
}
