package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum
	f.SetFromMatrix(viewProj)
	return f
}

// SetFromMatrix recomputes the planes in place from a view-projection matrix.
// Reusing a Frustum across frames avoids reallocating the plane set.
//
// Parameters:
//   - m: the view-projection matrix (column-major)
func (f *Frustum) SetFromMatrix(m mgl32.Mat4) {
	// For column-major M, element M[row][col] is at index col*4 + row.
	row := func(r int) (float32, float32, float32, float32) {
		return m[r], m[4+r], m[8+r], m[12+r]
	}
	r0x, r0y, r0z, r0w := row(0)
	r1x, r1y, r1z, r1w := row(1)
	r2x, r2y, r2z, r2w := row(2)
	r3x, r3y, r3z, r3w := row(3)

	f.Planes[FrustumLeft] = Plane{Normal: mgl32.Vec3{r3x + r0x, r3y + r0y, r3z + r0z}, Distance: r3w + r0w}
	f.Planes[FrustumRight] = Plane{Normal: mgl32.Vec3{r3x - r0x, r3y - r0y, r3z - r0z}, Distance: r3w - r0w}
	f.Planes[FrustumBottom] = Plane{Normal: mgl32.Vec3{r3x + r1x, r3y + r1y, r3z + r1z}, Distance: r3w + r1w}
	f.Planes[FrustumTop] = Plane{Normal: mgl32.Vec3{r3x - r1x, r3y - r1y, r3z - r1z}, Distance: r3w - r1w}
	f.Planes[FrustumNear] = Plane{Normal: mgl32.Vec3{r3x + r2x, r3y + r2y, r3z + r2z}, Distance: r3w + r2w}
	f.Planes[FrustumFar] = Plane{Normal: mgl32.Vec3{r3x - r2x, r3y - r2y, r3z - r2z}, Distance: r3w - r2w}

	for i := range f.Planes {
		f.Planes[i].normalize()
	}
}

// ContainsPoint reports whether point lies on the inner side of all six planes.
func (f *Frustum) ContainsPoint(point mgl32.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DotCoordinate(point) < 0 {
			return false
		}
	}
	return true
}

// IntersectsPoints reports whether the convex hull of points is not fully behind any one plane.
// An empty point set never intersects.
//
// Parameters:
//   - points: the corners of the volume to test, usually the eight box corners
//
// Returns:
//   - bool: false if every point lies outside a single plane
func (f *Frustum) IntersectsPoints(points []mgl32.Vec3) bool {
	if len(points) == 0 {
		return false
	}
	for i := range f.Planes {
		inCount := len(points)
		for _, p := range points {
			if f.Planes[i].DotCoordinate(p) < 0 {
				inCount--
			}
		}
		if inCount == 0 {
			return false
		}
	}
	return true
}

// IntersectsMinMax reports whether the axis-aligned box [minimum, maximum] intersects the frustum.
func (f *Frustum) IntersectsMinMax(minimum, maximum mgl32.Vec3) bool {
	corners := BoxCorners(minimum, maximum)
	return f.IntersectsPoints(corners[:])
}
