package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CullingStrategy selects how an entity's bounding volumes are tested against a frustum.
type CullingStrategy int

const (
	// CullingStandard tests the bounding sphere first, then the bounding box. Both are exclusion tests.
	CullingStandard CullingStrategy = iota

	// CullingBoundingSphereOnly tests the bounding sphere only.
	CullingBoundingSphereOnly

	// CullingOptimisticInclusion accepts the entity when its sphere center is inside the frustum,
	// otherwise falls back to CullingStandard.
	CullingOptimisticInclusion

	// CullingOptimisticInclusionThenSphere accepts the entity when its sphere center is inside the
	// frustum, otherwise falls back to CullingBoundingSphereOnly.
	CullingOptimisticInclusionThenSphere
)

// String returns the strategy name.
func (s CullingStrategy) String() string {
	switch s {
	case CullingStandard:
		return "standard"
	case CullingBoundingSphereOnly:
		return "bounding_sphere_only"
	case CullingOptimisticInclusion:
		return "optimistic_inclusion"
	case CullingOptimisticInclusionThenSphere:
		return "optimistic_inclusion_then_sphere"
	default:
		return "unknown"
	}
}

// BoxCorners returns the eight corners of the axis-aligned box [minimum, maximum].
func BoxCorners(minimum, maximum mgl32.Vec3) [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{minimum[0], minimum[1], minimum[2]},
		{maximum[0], maximum[1], maximum[2]},
		{maximum[0], minimum[1], minimum[2]},
		{minimum[0], maximum[1], minimum[2]},
		{minimum[0], minimum[1], maximum[2]},
		{maximum[0], maximum[1], minimum[2]},
		{minimum[0], maximum[1], maximum[2]},
		{maximum[0], minimum[1], maximum[2]},
	}
}

// BoundingBox is an oriented box stored as local extents plus its world-space image.
type BoundingBox struct {
	Minimum mgl32.Vec3
	Maximum mgl32.Vec3
	Center  mgl32.Vec3

	// ExtendSize is the local half size.
	ExtendSize mgl32.Vec3

	Vectors      [8]mgl32.Vec3
	VectorsWorld [8]mgl32.Vec3

	MinimumWorld mgl32.Vec3
	MaximumWorld mgl32.Vec3
	CenterWorld  mgl32.Vec3

	// Directions are the world axes of the box including scale.
	Directions [3]mgl32.Vec3
}

// NewBoundingBox creates a box from local extents with an identity world transform.
func NewBoundingBox(minimum, maximum mgl32.Vec3) BoundingBox {
	b := BoundingBox{
		Minimum:    minimum,
		Maximum:    maximum,
		Center:     minimum.Add(maximum).Mul(0.5),
		ExtendSize: maximum.Sub(minimum).Mul(0.5),
		Vectors:    BoxCorners(minimum, maximum),
	}
	b.Update(mgl32.Ident4())
	return b
}

// Update recomputes the world-space corners, extents, and directions from a world matrix.
func (b *BoundingBox) Update(world mgl32.Mat4) {
	inf := float32(math.MaxFloat32)
	b.MinimumWorld = mgl32.Vec3{inf, inf, inf}
	b.MaximumWorld = mgl32.Vec3{-inf, -inf, -inf}

	for i, v := range b.Vectors {
		w := TransformCoordinates(v, world)
		b.VectorsWorld[i] = w
		b.MinimumWorld = MinVec3(b.MinimumWorld, w)
		b.MaximumWorld = MaxVec3(b.MaximumWorld, w)
	}

	b.CenterWorld = b.MaximumWorld.Add(b.MinimumWorld).Mul(0.5)
	for i := range 3 {
		b.Directions[i] = MatrixAxis(world, i)
	}
}

// IsInFrustum reports whether at least part of the box may be inside the frustum.
func (b *BoundingBox) IsInFrustum(f *Frustum) bool {
	return f.IntersectsPoints(b.VectorsWorld[:])
}

// IsCompletelyInFrustum reports whether every corner is inside the frustum.
func (b *BoundingBox) IsCompletelyInFrustum(f *Frustum) bool {
	for i := range f.Planes {
		for _, v := range b.VectorsWorld {
			if f.Planes[i].DotCoordinate(v) < 0 {
				return false
			}
		}
	}
	return true
}

// IntersectsPoint reports whether point lies inside the world-space box.
func (b *BoundingBox) IntersectsPoint(point mgl32.Vec3) bool {
	const epsilon = -1e-7
	for i := range 3 {
		if b.MaximumWorld[i]-point[i] < epsilon || point[i]-b.MinimumWorld[i] < epsilon {
			return false
		}
	}
	return true
}

// IntersectsMinMax reports whether the world-space box overlaps [minimum, maximum].
func (b *BoundingBox) IntersectsMinMax(minimum, maximum mgl32.Vec3) bool {
	for i := range 3 {
		if b.MaximumWorld[i] < minimum[i] || b.MinimumWorld[i] > maximum[i] {
			return false
		}
	}
	return true
}

// IntersectsBoxes reports whether two world-space boxes overlap on every axis.
func IntersectsBoxes(a, b *BoundingBox) bool {
	return a.IntersectsMinMax(b.MinimumWorld, b.MaximumWorld)
}

// IntersectsBoxAASphere reports whether the box [boxMin, boxMax] overlaps the axis-aligned
// bounds of a sphere.
func IntersectsBoxAASphere(boxMin, boxMax, sphereCenter mgl32.Vec3, sphereRadius float32) bool {
	for i := range 3 {
		if boxMin[i] > sphereCenter[i]+sphereRadius {
			return false
		}
		if sphereCenter[i]-sphereRadius > boxMax[i] {
			return false
		}
	}
	return true
}

// BoundingSphere is a sphere enclosing the local box, with its world-space image.
type BoundingSphere struct {
	Center      mgl32.Vec3
	Radius      float32
	CenterWorld mgl32.Vec3
	RadiusWorld float32
}

// NewBoundingSphere creates the sphere enclosing [minimum, maximum].
func NewBoundingSphere(minimum, maximum mgl32.Vec3) BoundingSphere {
	s := BoundingSphere{
		Center: minimum.Add(maximum).Mul(0.5),
		Radius: maximum.Sub(minimum).Len() * 0.5,
	}
	s.Update(mgl32.Ident4())
	return s
}

// Update recomputes the world center and radius. The radius scales with the largest axis scale.
func (s *BoundingSphere) Update(world mgl32.Mat4) {
	s.CenterWorld = TransformCoordinates(s.Center, world)
	scale := TransformNormal(mgl32.Vec3{1, 1, 1}, world)
	largest := max(abs32(scale[0]), abs32(scale[1]), abs32(scale[2]))
	s.RadiusWorld = largest * s.Radius
}

// IsInFrustum reports false as soon as the sphere lies entirely behind one plane.
func (s *BoundingSphere) IsInFrustum(f *Frustum) bool {
	for i := range f.Planes {
		if f.Planes[i].DotCoordinate(s.CenterWorld) <= -s.RadiusWorld {
			return false
		}
	}
	return true
}

// IsCenterInFrustum reports whether the world center is inside all six planes.
func (s *BoundingSphere) IsCenterInFrustum(f *Frustum) bool {
	return f.ContainsPoint(s.CenterWorld)
}

// IntersectsPoint reports whether point lies inside the world sphere.
func (s *BoundingSphere) IntersectsPoint(point mgl32.Vec3) bool {
	d := s.CenterWorld.Sub(point)
	return d.Dot(d) <= s.RadiusWorld*s.RadiusWorld
}

// IntersectsSpheres reports whether two world spheres overlap.
func IntersectsSpheres(a, b *BoundingSphere) bool {
	d := a.CenterWorld.Sub(b.CenterWorld).Len()
	return a.RadiusWorld+b.RadiusWorld >= d
}

// BoundingInfo pairs a box and a sphere built from the same local extents.
type BoundingInfo struct {
	Box    BoundingBox
	Sphere BoundingSphere
}

// NewBoundingInfo creates bounding info from local extents.
func NewBoundingInfo(minimum, maximum mgl32.Vec3) *BoundingInfo {
	return &BoundingInfo{
		Box:    NewBoundingBox(minimum, maximum),
		Sphere: NewBoundingSphere(minimum, maximum),
	}
}

// Update refreshes both volumes from a world matrix.
func (bi *BoundingInfo) Update(world mgl32.Mat4) {
	bi.Box.Update(world)
	bi.Sphere.Update(world)
}

// IsInFrustum tests the volumes against the frustum using the given strategy.
// The same plane set is used for the inclusion test and for any fallback.
//
// Parameters:
//   - f: the frustum planes computed for this evaluation pass
//   - strategy: the culling strategy to apply
//
// Returns:
//   - bool: true if the entity must be treated as visible
func (bi *BoundingInfo) IsInFrustum(f *Frustum, strategy CullingStrategy) bool {
	inclusion := strategy == CullingOptimisticInclusion || strategy == CullingOptimisticInclusionThenSphere
	if inclusion && bi.Sphere.IsCenterInFrustum(f) {
		return true
	}

	if !bi.Sphere.IsInFrustum(f) {
		return false
	}

	sphereOnly := strategy == CullingBoundingSphereOnly || strategy == CullingOptimisticInclusionThenSphere
	if sphereOnly {
		return true
	}

	return bi.Box.IsInFrustum(f)
}

// IsCompletelyInFrustum reports whether the box is fully inside the frustum.
func (bi *BoundingInfo) IsCompletelyInFrustum(f *Frustum) bool {
	return bi.Box.IsCompletelyInFrustum(f)
}

// IntersectsPoint reports whether point is inside both the sphere and the box.
func (bi *BoundingInfo) IntersectsPoint(point mgl32.Vec3) bool {
	return bi.Sphere.IntersectsPoint(point) && bi.Box.IntersectsPoint(point)
}

// Intersects reports whether two bounding infos overlap. Sphere and axis-aligned box tests
// run first; precise mode adds a separating-axis test on the oriented boxes.
//
// Parameters:
//   - other: the bounding info to test against
//   - precise: run the oriented box test after the coarse tests pass
//
// Returns:
//   - bool: true if the volumes overlap
func (bi *BoundingInfo) Intersects(other *BoundingInfo, precise bool) bool {
	if !IntersectsSpheres(&bi.Sphere, &other.Sphere) {
		return false
	}
	if !IntersectsBoxes(&bi.Box, &other.Box) {
		return false
	}
	if !precise {
		return true
	}

	a, b := &bi.Box, &other.Box
	axes := make([]mgl32.Vec3, 0, 15)
	axes = append(axes, a.Directions[:]...)
	axes = append(axes, b.Directions[:]...)
	for i := range 3 {
		for j := range 3 {
			axes = append(axes, a.Directions[i].Cross(b.Directions[j]))
		}
	}
	for _, axis := range axes {
		if !axisOverlap(axis, a, b) {
			return false
		}
	}
	return true
}

// axisOverlap reports whether the projections of both boxes on axis overlap.
func axisOverlap(axis mgl32.Vec3, a, b *BoundingBox) bool {
	minA, maxA := projectBox(axis, a)
	minB, maxB := projectBox(axis, b)
	return !(minA > maxB || minB > maxA)
}

func projectBox(axis mgl32.Vec3, b *BoundingBox) (float32, float32) {
	p := b.CenterWorld.Dot(axis)
	r := abs32(b.Directions[0].Dot(axis))*b.ExtendSize[0] +
		abs32(b.Directions[1].Dot(axis))*b.ExtendSize[1] +
		abs32(b.Directions[2].Dot(axis))*b.ExtendSize[2]
	return p - r, p + r
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
