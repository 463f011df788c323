package light

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight("sun", LightTypeDirectional, WithDirection(mgl32.Vec3{0, -2, 0}))

	assert.Equal(t, LightTypeDirectional, l.Type())
	assert.True(t, l.Enabled())
	assert.InDelta(t, 1.0, l.Direction().Len(), 1e-6)
	assert.Nil(t, l.ShadowGenerator())
}

func TestShadowGeneratorAttachesToLight(t *testing.T) {
	l := NewLight("sun", LightTypeDirectional)
	renders := 0
	g := NewShadowGenerator(l, 0, func(rt rendertarget.RenderTarget, renderID uint64) error {
		renders++
		return nil
	})

	require.Same(t, g, l.ShadowGenerator())
	w, h := g.ShadowMap().Size()
	assert.Equal(t, ShadowMapResolution, w)
	assert.Equal(t, ShadowMapResolution, h)
	assert.Equal(t, DefaultShadowBias, g.Bias())

	require.NoError(t, g.ShadowMap().Render(7))
	assert.Equal(t, 1, renders)
}

func TestShadowCastersDedup(t *testing.T) {
	g := NewShadowGenerator(NewLight("sun", LightTypeDirectional), 512, nil)
	g.AddShadowCaster(1)
	g.AddShadowCaster(2)
	g.AddShadowCaster(1)
	assert.Equal(t, []uint64{1, 2}, g.ShadowCasters())

	g.RemoveShadowCaster(1)
	assert.Equal(t, []uint64{2}, g.ShadowCasters())
}

func TestDirectionalLightTransformSeesFocus(t *testing.T) {
	l := NewLight("sun", LightTypeDirectional, WithDirection(mgl32.Vec3{-1, -1, 0}))
	g := NewShadowGenerator(l, 256, nil)

	f := common.ExtractFrustumFromMatrix(g.LightTransformMatrix(mgl32.Vec3{0, 0, 0}))
	assert.True(t, f.ContainsPoint(mgl32.Vec3{0, 0, 0}))
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 500, 0}))
}

func TestDisposeCascadesToShadowMap(t *testing.T) {
	l := NewLight("lamp", LightTypeSpot, WithPosition(mgl32.Vec3{0, 5, 0}))
	g := NewShadowGenerator(l, 256, nil)

	l.Dispose()
	assert.True(t, l.IsDisposed())
	assert.False(t, l.Enabled())
	assert.True(t, g.ShadowMap().IsDisposed())
	assert.Nil(t, l.ShadowGenerator())
}
