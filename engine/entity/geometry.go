package entity

import "github.com/go-gl/mathgl/mgl32"

// Geometry builders emit triangles wound clockwise when seen from the front, so the collider's
// triangle planes face outward.

// BoxGeometry returns an axis-aligned box of the given size centered on the origin, with four
// vertices per face.
//
// Parameters:
//   - size: the edge lengths
//
// Returns:
//   - []mgl32.Vec3: the positions
//   - []uint32: the indices
func BoxGeometry(size mgl32.Vec3) ([]mgl32.Vec3, []uint32) {
	h := size.Mul(0.5)
	faces := [6][3]mgl32.Vec3{
		// normal, u, v with u x v = normal
		{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}},
	}

	positions := make([]mgl32.Vec3, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		n, u, v := f[0], f[1], f[2]
		base := uint32(len(positions))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := n.Add(u.Mul(c[0])).Add(v.Mul(c[1]))
			positions = append(positions, mgl32.Vec3{p[0] * h[0], p[1] * h[1], p[2] * h[2]})
		}
		indices = append(indices, base, base+2, base+1, base, base+3, base+2)
	}
	return positions, indices
}

// GroundGeometry returns a horizontal square of the given width facing +Y.
//
// Parameters:
//   - width: the edge length
//
// Returns:
//   - []mgl32.Vec3: the positions
//   - []uint32: the indices
func GroundGeometry(width float32) ([]mgl32.Vec3, []uint32) {
	h := width / 2
	// u = +Z, v = +X; corners listed as (-u-v, u-v, u+v, -u+v).
	positions := []mgl32.Vec3{{-h, 0, -h}, {-h, 0, h}, {h, 0, h}, {h, 0, -h}}
	return positions, []uint32{0, 2, 1, 0, 3, 2}
}
