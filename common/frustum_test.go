package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func testFrustum() Frustum {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	return ExtractFrustumFromMatrix(proj.Mul4(view))
}

func TestFrustumContainsPoint(t *testing.T) {
	f := testFrustum()

	assert.True(t, f.ContainsPoint(mgl32.Vec3{0, 0, 0}))
	assert.True(t, f.ContainsPoint(mgl32.Vec3{1, 1, -20}))
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, 20}), "behind the camera")
	assert.False(t, f.ContainsPoint(mgl32.Vec3{100, 0, 0}), "far to the right")
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, -200}), "past the far plane")
}

func TestFrustumPlanesAreNormalized(t *testing.T) {
	f := testFrustum()
	for i, p := range f.Planes {
		assert.InDelta(t, 1.0, p.Normal.Len(), 1e-5, "plane %d", i)
	}
}

func TestFrustumSetFromMatrixReusesPlanes(t *testing.T) {
	f := testFrustum()
	before := &f.Planes[0]

	view := mgl32.LookAtV(mgl32.Vec3{0, 0, -10}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	f.SetFromMatrix(proj.Mul4(view))

	assert.Same(t, before, &f.Planes[0])
	assert.True(t, f.ContainsPoint(mgl32.Vec3{0, 0, 20}), "now in front of the moved camera")
}

func TestFrustumIntersectsMinMax(t *testing.T) {
	f := testFrustum()

	assert.True(t, f.IntersectsMinMax(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}))
	assert.True(t, f.IntersectsMinMax(mgl32.Vec3{-1000, -1, -1}, mgl32.Vec3{1000, 1, 1}), "straddles the frustum")
	assert.False(t, f.IntersectsMinMax(mgl32.Vec3{50, 50, 50}, mgl32.Vec3{60, 60, 60}))
	assert.False(t, f.IntersectsPoints(nil))
}

func TestPlaneFromPoints(t *testing.T) {
	p := NewPlaneFromPoints(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})

	assert.InDelta(t, 1.0, p.Normal.Z(), 1e-6)
	assert.InDelta(t, 2.0, p.SignedDistanceTo(mgl32.Vec3{5, 5, 2}), 1e-6)
	assert.True(t, p.IsFrontFacingTo(mgl32.Vec3{0, 0, -1}, 0))
	assert.False(t, p.IsFrontFacingTo(mgl32.Vec3{0, 0, 1}, 0))

	degenerate := NewPlaneFromPoints(mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{}, degenerate.Normal)
}

func TestSignedDistanceToPlane(t *testing.T) {
	d := SignedDistanceToPlane(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{3, 4, 3})
	assert.InDelta(t, 3.0, d, 1e-6)
}
