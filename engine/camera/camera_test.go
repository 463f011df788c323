package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera("main")

	assert.NotEmpty(t, c.ID())
	assert.Equal(t, "main", c.Name())
	assert.Equal(t, common.FullViewport, c.Viewport())
	assert.Equal(t, DefaultLayerMask, c.LayerMask())
	assert.Nil(t, c.Parent())
	assert.Empty(t, c.SubCameras())
}

func TestUpdateTransformMatrixProjectsTargetToCenter(t *testing.T) {
	c := NewCamera("main",
		WithPosition(mgl32.Vec3{0, 0, 10}),
		WithTarget(mgl32.Vec3{0, 0, 0}),
	)
	vp := c.UpdateTransformMatrix()

	clip := vp.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-5)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-5)
	assert.Equal(t, vp, c.TransformMatrix())
}

func TestActiveEntityAccumulatorResets(t *testing.T) {
	c := NewCamera("main")
	c.AddActiveEntity(1)
	c.AddActiveEntity(2)
	assert.Equal(t, []uint64{1, 2}, c.ActiveEntities())

	c.ResetActiveEntities()
	assert.Empty(t, c.ActiveEntities())
}

func TestHasMovedTracksRenderedState(t *testing.T) {
	c := NewCamera("main")
	assert.True(t, c.HasMoved(), "never rendered")

	c.UpdateFromScene()
	assert.False(t, c.HasMoved())

	c.SetPosition(mgl32.Vec3{1, 2, 3})
	assert.True(t, c.HasMoved())
}

func TestStereoRigSplitsViewportAndOffsetsEyes(t *testing.T) {
	parent := NewCamera("rig",
		WithPosition(mgl32.Vec3{0, 0, 10}),
		WithTarget(mgl32.Vec3{0, 0, 0}),
	)
	left, right := NewStereoRig(parent, 2)

	subs := parent.SubCameras()
	require.Len(t, subs, 2)
	assert.Same(t, left, subs[0])
	assert.Same(t, right, subs[1])
	assert.Equal(t, parent, left.Parent())

	assert.InDelta(t, 0.5, left.Viewport().Width, 1e-6)
	assert.InDelta(t, 0.5, right.Viewport().X, 1e-6)

	dist := right.Position().Sub(left.Position()).Len()
	assert.InDelta(t, 2, dist, 1e-5)

	parent.SetPosition(mgl32.Vec3{5, 0, 10})
	assert.InDelta(t, 5, left.Position().Add(right.Position()).Mul(0.5).X(), 1e-5, "eyes follow the parent")

	parent.SetAspect(2)
	assert.Equal(t, float32(2), left.Aspect())
}

func TestAddSubCameraRejectsSelf(t *testing.T) {
	c := NewCamera("main")
	assert.Panics(t, func() { c.AddSubCamera(c, 1) })
}
