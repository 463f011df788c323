package collision

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Collidable is the geometry the collider sweeps against.
type Collidable interface {
	// IsEnabled reports whether the entity takes part in the world.
	IsEnabled() bool

	// CheckCollisions reports whether the entity blocks collider movement.
	CheckCollisions() bool

	// BoundingInfo returns the world-space bounding volumes.
	BoundingInfo() *common.BoundingInfo

	// WorldMatrix returns the cached world matrix.
	WorldMatrix() mgl32.Mat4

	// Positions returns the local vertex positions.
	Positions() []mgl32.Vec3

	// Indices returns the triangle list indices.
	Indices() []uint32

	// CollisionCandidates returns the submeshes that may touch a sphere in world space.
	//
	// Parameters:
	//   - center: the query sphere center in world space
	//   - radius: the query sphere radius
	//
	// Returns:
	//   - []SubMesh: the candidate submeshes
	CollisionCandidates(center mgl32.Vec3, radius float32) []SubMesh
}

// SubMesh is a contiguous index and vertex range of a Collidable.
type SubMesh interface {
	// BoundingInfo returns the world-space bounding volumes of the range.
	BoundingInfo() *common.BoundingInfo

	// IndexRange returns the first index and the index count.
	IndexRange() (start, count int)

	// VertexRange returns the first vertex and the vertex count.
	VertexRange() (start, count int)

	// HasMaterial reports whether a material is bound. Back faces are skipped without one.
	HasMaterial() bool

	// CollisionCache returns the per-submesh transformed vertex cache.
	CollisionCache() *Cache
}

// Cache holds a submesh's vertices in collider space and its triangle planes.
// It is rebuilt only when the collider-space transform changes.
type Cache struct {
	valid     bool
	transform mgl32.Mat4
	vertices  []mgl32.Vec3
	planes    map[int]common.Plane
}

// Invalidate drops the cached vertices and planes.
func (c *Cache) Invalidate() {
	c.valid = false
	c.vertices = c.vertices[:0]
	clear(c.planes)
}

// refresh transforms positions[start:start+count] when transform differs from the cached one.
func (c *Cache) refresh(positions []mgl32.Vec3, start, count int, transform mgl32.Mat4) {
	if c.valid && c.transform == transform {
		return
	}
	c.transform = transform
	c.vertices = c.vertices[:0]
	if c.planes == nil {
		c.planes = make(map[int]common.Plane)
	} else {
		clear(c.planes)
	}
	end := min(start+count, len(positions))
	for i := start; i < end; i++ {
		c.vertices = append(c.vertices, common.TransformCoordinates(positions[i], transform))
	}
	c.valid = true
}
