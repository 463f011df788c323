package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half line from Origin along the unit Direction, limited to Length.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
	Length    float32
}

// NewRay creates a ray with a normalized direction. A non-positive length makes the ray unbounded.
//
// Parameters:
//   - origin: the ray origin in world space
//   - direction: the ray direction, normalized by the constructor
//   - length: the farthest distance a hit may lie at
//
// Returns:
//   - Ray: the newly created ray
func NewRay(origin, direction mgl32.Vec3, length float32) Ray {
	if length <= 0 {
		length = math.MaxFloat32
	}
	return Ray{Origin: origin, Direction: SafeNormalize(direction), Length: length}
}

// At returns the point at distance d along the ray.
func (r Ray) At(d float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(d))
}

// IntersectsSphere reports whether the ray passes through the world sphere within its length.
func (r Ray) IntersectsSphere(s *BoundingSphere) bool {
	oc := r.Origin.Sub(s.CenterWorld)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - s.RadiusWorld*s.RadiusWorld
	if c > 0 && b > 0 {
		return false
	}
	disc := b*b - c
	if disc < 0 {
		return false
	}
	near := -b - float32(math.Sqrt(float64(disc)))
	return near <= r.Length
}

// IntersectsBox reports whether the ray crosses the world axis-aligned extents of the box.
func (r Ray) IntersectsBox(b *BoundingBox) bool {
	return r.IntersectsMinMax(b.MinimumWorld, b.MaximumWorld)
}

// IntersectsMinMax runs the slab test against [minimum, maximum].
func (r Ray) IntersectsMinMax(minimum, maximum mgl32.Vec3) bool {
	tMin := float32(0)
	tMax := r.Length
	for i := range 3 {
		if abs32(r.Direction[i]) < 1e-7 {
			if r.Origin[i] < minimum[i] || r.Origin[i] > maximum[i] {
				return false
			}
			continue
		}
		inv := 1 / r.Direction[i]
		t1 := (minimum[i] - r.Origin[i]) * inv
		t2 := (maximum[i] - r.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = max(tMin, t1)
		tMax = min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// IntersectsTriangle runs the Moller-Trumbore test against the world triangle (p0, p1, p2).
// Both faces are hit.
//
// Parameters:
//   - p0, p1, p2: the triangle vertices in world space
//
// Returns:
//   - float32: the distance from the origin to the hit
//   - bool: true if the ray hits the triangle within its length
func (r Ray) IntersectsTriangle(p0, p1, p2 mgl32.Vec3) (float32, bool) {
	const epsilon = 1e-7
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	pv := r.Direction.Cross(e2)
	det := e1.Dot(pv)
	if abs32(det) < epsilon {
		return 0, false
	}
	inv := 1 / det
	tv := r.Origin.Sub(p0)
	u := tv.Dot(pv) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	qv := tv.Cross(e1)
	v := r.Direction.Dot(qv) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	d := e2.Dot(qv) * inv
	if d < 0 || d > r.Length {
		return 0, false
	}
	return d, true
}
