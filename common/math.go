package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CollisionsEpsilon is the smallest displacement considered a movement by the collision system.
const CollisionsEpsilon float32 = 0.001

// BuildModelMatrix constructs a model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll). The result is column-major.
//
// Parameters:
//   - position: translation in world space
//   - rotation: rotation angles in radians around each axis
//   - scaling: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: the composed model matrix
func BuildModelMatrix(position, rotation, scaling mgl32.Vec3) mgl32.Mat4 {
	cx := float32(math.Cos(float64(rotation[0])))
	sx := float32(math.Sin(float64(rotation[0])))
	cy := float32(math.Cos(float64(rotation[1])))
	sy := float32(math.Sin(float64(rotation[1])))
	cz := float32(math.Cos(float64(rotation[2])))
	sz := float32(math.Sin(float64(rotation[2])))

	return mgl32.Mat4{
		(cy*cz + sy*sx*sz) * scaling[0],
		(cx * sz) * scaling[0],
		(-sy*cz + cy*sx*sz) * scaling[0],
		0,

		(cy*-sz + sy*sx*cz) * scaling[1],
		(cx * cz) * scaling[1],
		(sy*sz + cy*sx*cz) * scaling[1],
		0,

		(sy * cx) * scaling[2],
		(-sx) * scaling[2],
		(cy * cx) * scaling[2],
		0,

		position[0],
		position[1],
		position[2],
		1,
	}
}

// TransformCoordinates transforms a point by a matrix, applying the perspective divide.
//
// Parameters:
//   - v: the point to transform
//   - m: the transform matrix (column-major)
//
// Returns:
//   - mgl32.Vec3: the transformed point
func TransformCoordinates(v mgl32.Vec3, m mgl32.Mat4) mgl32.Vec3 {
	x := v[0]*m[0] + v[1]*m[4] + v[2]*m[8] + m[12]
	y := v[0]*m[1] + v[1]*m[5] + v[2]*m[9] + m[13]
	z := v[0]*m[2] + v[1]*m[6] + v[2]*m[10] + m[14]
	w := v[0]*m[3] + v[1]*m[7] + v[2]*m[11] + m[15]
	if w == 0 {
		w = 1
	}
	return mgl32.Vec3{x / w, y / w, z / w}
}

// TransformNormal transforms a direction by the upper 3x3 part of a matrix (no translation).
//
// Parameters:
//   - v: the direction to transform
//   - m: the transform matrix (column-major)
//
// Returns:
//   - mgl32.Vec3: the transformed direction
func TransformNormal(v mgl32.Vec3, m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{
		v[0]*m[0] + v[1]*m[4] + v[2]*m[8],
		v[0]*m[1] + v[1]*m[5] + v[2]*m[9],
		v[0]*m[2] + v[1]*m[6] + v[2]*m[10],
	}
}

// MatrixAxis returns column i (0..2) of the matrix, which is the world direction of local axis i
// including its scale.
func MatrixAxis(m mgl32.Mat4, i int) mgl32.Vec3 {
	return mgl32.Vec3{m[i*4], m[i*4+1], m[i*4+2]}
}

// LengthSquared returns the squared length of v.
func LengthSquared(v mgl32.Vec3) float32 {
	return v.Dot(v)
}

// SafeNormalize normalizes v, returning the zero vector when v has no length.
func SafeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// MinVec3 returns the component-wise minimum of a and b.
func MinVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

// MaxVec3 returns the component-wise maximum of a and b.
func MaxVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

// DivVec3 divides a by b component-wise.
func DivVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] / b[0], a[1] / b[1], a[2] / b[2]}
}

// MulVec3 multiplies a by b component-wise.
func MulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Clamp restricts value to the closed range [lo, hi].
//
// Parameters:
//   - value: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - T: value limited to [lo, hi]
func Clamp[T ~float32 | ~float64 | ~int](value, lo, hi T) T {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
