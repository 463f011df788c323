package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// NewPlaneFromPoints builds the plane passing through three points.
// The normal follows the winding p1 -> p2 -> p3 and is normalized; degenerate
// triangles produce a zero normal.
//
// Parameters:
//   - p1, p2, p3: the triangle corners
//
// Returns:
//   - Plane: the plane through the three points
func NewPlaneFromPoints(p1, p2, p3 mgl32.Vec3) Plane {
	e1 := p2.Sub(p1)
	e2 := p3.Sub(p1)

	yz := e1[1]*e2[2] - e1[2]*e2[1]
	xz := e1[2]*e2[0] - e1[0]*e2[2]
	xy := e1[0]*e2[1] - e1[1]*e2[0]

	pyth := float32(math.Sqrt(float64(yz*yz + xz*xz + xy*xy)))
	var invPyth float32
	if pyth != 0 {
		invPyth = 1 / pyth
	}

	n := mgl32.Vec3{yz * invPyth, xz * invPyth, xy * invPyth}
	return Plane{Normal: n, Distance: -n.Dot(p1)}
}

// DotCoordinate returns the signed distance of point from the plane.
// Positive values lie on the side the normal points to.
func (p Plane) DotCoordinate(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// SignedDistanceTo is an alias of DotCoordinate used by the collision code.
func (p Plane) SignedDistanceTo(point mgl32.Vec3) float32 {
	return p.DotCoordinate(point)
}

// IsFrontFacingTo reports whether direction points against the plane normal.
//
// Parameters:
//   - direction: the direction to test, usually a normalized velocity
//   - epsilon: tolerance added to the facing threshold
//
// Returns:
//   - bool: true if dot(normal, direction) <= epsilon
func (p Plane) IsFrontFacingTo(direction mgl32.Vec3, epsilon float32) bool {
	return p.Normal.Dot(direction) <= epsilon
}

// SignedDistanceToPlane returns the signed distance of point from the plane defined by
// origin and normal.
func SignedDistanceToPlane(origin, normal, point mgl32.Vec3) float32 {
	d := -normal.Dot(origin)
	return normal.Dot(point) + d
}

// normalize rescales the plane so its normal has unit length.
func (p *Plane) normalize() {
	length := p.Normal.Len()
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
}
