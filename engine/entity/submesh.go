package entity

import (
	"math"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/collision"
	"github.com/go-gl/mathgl/mgl32"
)

// SubMesh is a contiguous index range of a mesh drawn with one material.
type SubMesh struct {
	MaterialIndex int
	VerticesStart int
	VerticesCount int
	IndexStart    int
	IndexCount    int

	owner    Mesh
	info     *common.BoundingInfo
	material Material
	cache    collision.Cache
}

var _ collision.SubMesh = &SubMesh{}

// NewSubMesh creates a submesh over a range of the owner's geometry and computes its local
// bounding info from the vertices its indices reference.
//
// Parameters:
//   - owner: the mesh whose geometry the range indexes
//   - materialIndex: the index resolved through the owner's material
//   - verticesStart, verticesCount: the vertex range
//   - indexStart, indexCount: the index range
//
// Returns:
//   - *SubMesh: the newly created submesh
func NewSubMesh(owner Mesh, materialIndex, verticesStart, verticesCount, indexStart, indexCount int) *SubMesh {
	if owner == nil {
		panic("entity: NewSubMesh requires a non-nil owner")
	}
	s := &SubMesh{
		MaterialIndex: materialIndex,
		VerticesStart: verticesStart,
		VerticesCount: verticesCount,
		IndexStart:    indexStart,
		IndexCount:    indexCount,
		owner:         owner,
	}
	s.RefreshBoundingInfo()
	return s
}

// Owner returns the mesh the submesh belongs to.
func (s *SubMesh) Owner() Mesh {
	return s.owner
}

// BoundingInfo returns the submesh bounds, updated with the owner's world matrix.
func (s *SubMesh) BoundingInfo() *common.BoundingInfo {
	return s.info
}

// RefreshBoundingInfo recomputes the local bounds from the referenced vertices.
func (s *SubMesh) RefreshBoundingInfo() {
	positions := s.owner.Positions()
	indices := s.owner.Indices()

	inf := float32(math.MaxFloat32)
	lo := mgl32.Vec3{inf, inf, inf}
	hi := mgl32.Vec3{-inf, -inf, -inf}
	found := false

	end := min(s.IndexStart+s.IndexCount, len(indices))
	for i := s.IndexStart; i < end; i++ {
		idx := int(indices[i])
		if idx < 0 || idx >= len(positions) {
			continue
		}
		lo = common.MinVec3(lo, positions[idx])
		hi = common.MaxVec3(hi, positions[idx])
		found = true
	}
	if !found {
		lo, hi = mgl32.Vec3{}, mgl32.Vec3{}
	}

	s.info = common.NewBoundingInfo(lo, hi)
	s.info.Update(s.owner.WorldMatrix())
	s.cache.Invalidate()
}

// UpdateBoundingInfo moves the bounds with a world matrix.
func (s *SubMesh) UpdateBoundingInfo(world mgl32.Mat4) {
	s.info.Update(world)
}

// IsGlobal reports whether the submesh covers all of the owner's vertices.
func (s *SubMesh) IsGlobal() bool {
	return s.VerticesStart == 0 && s.VerticesCount == s.owner.TotalVertices()
}

// IsInFrustum tests the submesh bounds with the owner's culling strategy.
func (s *SubMesh) IsInFrustum(f *common.Frustum) bool {
	return s.info.IsInFrustum(f, s.owner.CullingStrategy())
}

// Material resolves the submesh material: the override when set, otherwise the owner's
// material indexed by MaterialIndex.
func (s *SubMesh) Material() Material {
	if s.material != nil {
		return s.material
	}
	m := s.owner.Material()
	if m == nil {
		return nil
	}
	return m.SubMaterial(s.MaterialIndex)
}

// SetMaterial overrides the owner's material for this submesh. Nil restores the owner's.
func (s *SubMesh) SetMaterial(m Material) {
	s.material = m
}

func (s *SubMesh) IndexRange() (int, int) {
	return s.IndexStart, s.IndexCount
}

func (s *SubMesh) VertexRange() (int, int) {
	return s.VerticesStart, s.VerticesCount
}

func (s *SubMesh) HasMaterial() bool {
	return s.Material() != nil
}

func (s *SubMesh) CollisionCache() *collision.Cache {
	return &s.cache
}
