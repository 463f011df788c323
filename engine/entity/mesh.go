package entity

import (
	"math"
	"slices"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/collision"
	"github.com/Carmen-Shannon/oxy-scene/engine/spatial"
	"github.com/go-gl/mathgl/mgl32"
)

// meshImpl is the implementation of the Mesh interface. A mesh with a skeleton is skinned.
type meshImpl struct {
	node

	positions []mgl32.Vec3
	indices   []uint32
	subMeshes []*SubMesh
	material  Material
	skeleton  Skeleton

	lods   lodLevels
	master *meshImpl

	octree              *spatial.Octree[*SubMesh]
	useOctreeForRender  bool
	useOctreeForCollide bool

	delayLoading bool
	ready        func() bool

	instances []*instancedMeshImpl

	frameID      uint64
	activations  map[uint64]*activation
	dispatchedID uint64
}

// activation records what was activated against a mesh in one pass.
type activation struct {
	instances []InstancedMesh
	self      bool
}

// Mesh is a drawable entity that owns geometry. It is static unless a skeleton is set.
type Mesh interface {
	Entity

	// Positions returns the local vertex positions.
	//
	// Returns:
	//   - []mgl32.Vec3: the vertex positions
	Positions() []mgl32.Vec3

	// SetGeometry replaces the vertex data, refreshes the bounds, and resets the submeshes to one
	// global submesh.
	//
	// Parameters:
	//   - positions: the local vertex positions
	//   - indices: the triangle list indices
	SetGeometry(positions []mgl32.Vec3, indices []uint32)

	// AddSubMesh appends a submesh over a range of the geometry.
	//
	// Parameters:
	//   - materialIndex: the index resolved through the mesh material
	//   - verticesStart, verticesCount: the vertex range
	//   - indexStart, indexCount: the index range
	//
	// Returns:
	//   - *SubMesh: the new submesh
	AddSubMesh(materialIndex, verticesStart, verticesCount, indexStart, indexCount int) *SubMesh

	// ClearSubMeshes removes every submesh.
	ClearSubMeshes()

	// SetMaterial sets the mesh material. Nil leaves submeshes undrawn.
	//
	// Parameters:
	//   - m: the material
	SetMaterial(m Material)

	// SetSkeleton sets the skeleton, making the mesh skinned. Nil makes it static.
	//
	// Parameters:
	//   - s: the skeleton
	SetSkeleton(s Skeleton)

	// IsSkinned reports whether a skeleton is set.
	//
	// Returns:
	//   - bool: true if skinned
	IsSkinned() bool

	SetAlphaIndex(index int)
	SetRenderGroupID(id int)
	SetBlocked(blocked bool)
	SetAlwaysSelectAsActive(always bool)
	SetDelayLoading(loading bool)
	SetEllipsoid(radii mgl32.Vec3)
	SetEllipsoidOffset(offset mgl32.Vec3)

	// AddLODLevel registers a level used beyond distance. A nil mesh culls the entity there.
	//
	// Parameters:
	//   - distance: the camera distance the level starts at
	//   - m: the replacement mesh, or nil
	AddLODLevel(distance float32, m Mesh)

	// RemoveLODLevel removes every level using m.
	//
	// Parameters:
	//   - m: the level mesh to remove
	RemoveLODLevel(m Mesh)

	// LODLevels returns the levels sorted by descending distance.
	//
	// Returns:
	//   - []LODLevel: the levels
	LODLevels() []LODLevel

	// CreateOrUpdateSubMeshesOctree rebuilds the submesh octree over the current world bounds.
	//
	// Parameters:
	//   - maxCapacity: entries per block before subdividing
	//   - maxDepth: the subdivision limit
	//
	// Returns:
	//   - *spatial.Octree[*SubMesh]: the rebuilt octree
	CreateOrUpdateSubMeshesOctree(maxCapacity, maxDepth int) *spatial.Octree[*SubMesh]

	// SubMeshesOctree returns the submesh octree, or nil.
	SubMeshesOctree() *spatial.Octree[*SubMesh]

	SetUseOctreeForRenderingSelection(use bool)
	UseOctreeForRenderingSelection() bool
	SetUseOctreeForCollisions(use bool)
	UseOctreeForCollisions() bool

	// CreateInstance creates an instance sharing this mesh's geometry and material.
	//
	// Parameters:
	//   - name: the instance name
	//
	// Returns:
	//   - InstancedMesh: the new instance
	CreateInstance(name string) InstancedMesh

	// Instances returns every live instance.
	Instances() []InstancedMesh

	// VisibleInstances returns the instances registered in the pass stamped renderID.
	VisibleInstances(renderID uint64) []InstancedMesh

	// RenderWorlds returns one world matrix per copy drawn in the pass stamped renderID: the
	// visible instances, then the mesh itself when it was activated directly. A mesh serving as
	// a LOD level draws with the world of the mesh that owns the level.
	//
	// Parameters:
	//   - renderID: the render id of the pass
	//
	// Returns:
	//   - []mgl32.Mat4: the world matrices, empty when nothing was activated
	RenderWorlds(renderID uint64) []mgl32.Mat4
}

var _ Mesh = &meshImpl{}

// NewMesh creates a mesh. Geometry given with WithGeometry gets one global submesh.
//
// Parameters:
//   - name: the mesh name
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the newly created mesh
func NewMesh(name string, options ...MeshBuilderOption) Mesh {
	m := &meshImpl{}
	m.init(m, name)
	for _, option := range options {
		option(m)
	}
	m.SetGeometry(m.positions, m.indices)
	m.ComputeWorldMatrix(true)
	return m
}

func (m *meshImpl) ComputeWorldMatrix(force bool) mgl32.Mat4 {
	world, changed := m.computeWorld(force)
	if changed {
		for _, sm := range m.subMeshes {
			sm.UpdateBoundingInfo(world)
		}
	}
	return world
}

func (m *meshImpl) Positions() []mgl32.Vec3 {
	return m.positions
}

func (m *meshImpl) Indices() []uint32 {
	return m.indices
}

func (m *meshImpl) SetGeometry(positions []mgl32.Vec3, indices []uint32) {
	m.positions = positions
	m.indices = indices

	lo, hi := extents(positions)
	m.boundingInfo = common.NewBoundingInfo(lo, hi)
	m.boundingInfo.Update(m.world)

	m.subMeshes = nil
	if len(positions) > 0 {
		m.AddSubMesh(0, 0, len(positions), 0, len(indices))
	}
	for _, inst := range m.instances {
		inst.refreshBoundingInfo()
	}
	m.octree = nil
}

func (m *meshImpl) AddSubMesh(materialIndex, verticesStart, verticesCount, indexStart, indexCount int) *SubMesh {
	sm := NewSubMesh(m, materialIndex, verticesStart, verticesCount, indexStart, indexCount)
	m.subMeshes = append(m.subMeshes, sm)
	return sm
}

func (m *meshImpl) ClearSubMeshes() {
	m.subMeshes = nil
	m.octree = nil
}

func (m *meshImpl) SubMeshes() []*SubMesh {
	return m.subMeshes
}

func (m *meshImpl) SubMeshCandidates(f *common.Frustum) []*SubMesh {
	if m.useOctreeForRender && m.octree != nil {
		return m.octree.Select(f)
	}
	return m.subMeshes
}

func (m *meshImpl) CollisionCandidates(center mgl32.Vec3, radius float32) []collision.SubMesh {
	list := m.subMeshes
	if m.useOctreeForCollide && m.octree != nil {
		list = m.octree.Intersects(center, radius)
	}
	out := make([]collision.SubMesh, len(list))
	for i, sm := range list {
		out[i] = sm
	}
	return out
}

func (m *meshImpl) TotalVertices() int {
	return len(m.positions)
}

func (m *meshImpl) Material() Material {
	return m.material
}

func (m *meshImpl) SetMaterial(mat Material) {
	m.material = mat
}

func (m *meshImpl) Skeleton() Skeleton {
	return m.skeleton
}

func (m *meshImpl) SetSkeleton(s Skeleton) {
	m.skeleton = s
}

func (m *meshImpl) IsSkinned() bool {
	return m.skeleton != nil
}

func (m *meshImpl) IsReady() bool {
	if m.IsDisposed() || m.delayLoading {
		return false
	}
	return m.ready == nil || m.ready()
}

func (m *meshImpl) IsDelayLoading() bool {
	return m.delayLoading
}

func (m *meshImpl) SetAlphaIndex(index int) {
	m.alphaIndex = index
}

func (m *meshImpl) SetRenderGroupID(id int) {
	m.renderGroupID = id
}

func (m *meshImpl) SetBlocked(blocked bool) {
	m.blocked = blocked
}

func (m *meshImpl) SetAlwaysSelectAsActive(always bool) {
	m.alwaysSelectAsActive = always
}

func (m *meshImpl) SetDelayLoading(loading bool) {
	m.delayLoading = loading
}

func (m *meshImpl) SetEllipsoid(radii mgl32.Vec3) {
	m.ellipsoid = radii
}

func (m *meshImpl) SetEllipsoidOffset(offset mgl32.Vec3) {
	m.ellipsoidOffset = offset
}

func (m *meshImpl) AddLODLevel(distance float32, level Mesh) {
	if level == Mesh(m) {
		panic("entity: AddLODLevel requires a mesh other than the owner")
	}
	m.lods.add(distance, level)
	if impl, ok := level.(*meshImpl); ok {
		impl.master = m
	}
}

func (m *meshImpl) RemoveLODLevel(level Mesh) {
	m.lods.remove(level)
	if impl, ok := level.(*meshImpl); ok && impl.master == m {
		impl.master = nil
	}
}

func (m *meshImpl) LODLevels() []LODLevel {
	return slices.Clone(m.lods)
}

func (m *meshImpl) LOD(cam camera.Camera) Entity {
	return m.resolveLOD(m, cam)
}

// resolveLOD picks the level for owner, which is this mesh or one of its instances.
func (m *meshImpl) resolveLOD(owner Entity, cam camera.Camera) Entity {
	level, ok := m.lods.resolve(owner, cam)
	if !ok {
		return m
	}
	if level == nil {
		return nil
	}
	if impl, isImpl := level.(*meshImpl); isImpl {
		world := owner.ComputeWorldMatrix(false)
		for _, sm := range impl.subMeshes {
			sm.UpdateBoundingInfo(world)
		}
	}
	return level
}

func (m *meshImpl) CreateOrUpdateSubMeshesOctree(maxCapacity, maxDepth int) *spatial.Octree[*SubMesh] {
	o := spatial.NewOctree[*SubMesh](spatial.BoundingBoxCreationFunc[*SubMesh],
		spatial.WithMaxCapacity[*SubMesh](maxCapacity),
		spatial.WithMaxDepth[*SubMesh](maxDepth),
	)
	m.ComputeWorldMatrix(true)
	box := m.boundingInfo.Box
	o.Update(box.MinimumWorld, box.MaximumWorld, m.subMeshes)
	m.octree = o
	return o
}

func (m *meshImpl) SubMeshesOctree() *spatial.Octree[*SubMesh] {
	return m.octree
}

func (m *meshImpl) SetUseOctreeForRenderingSelection(use bool) {
	m.useOctreeForRender = use
}

func (m *meshImpl) UseOctreeForRenderingSelection() bool {
	return m.useOctreeForRender
}

func (m *meshImpl) SetUseOctreeForCollisions(use bool) {
	m.useOctreeForCollide = use
}

func (m *meshImpl) UseOctreeForCollisions() bool {
	return m.useOctreeForCollide
}

func (m *meshImpl) CreateInstance(name string) InstancedMesh {
	inst := newInstancedMesh(m, name)
	m.instances = append(m.instances, inst)
	return inst
}

func (m *meshImpl) Instances() []InstancedMesh {
	out := make([]InstancedMesh, len(m.instances))
	for i, inst := range m.instances {
		out[i] = inst
	}
	return out
}

func (m *meshImpl) VisibleInstances(renderID uint64) []InstancedMesh {
	if a := m.activations[renderID]; a != nil {
		return a.instances
	}
	return nil
}

func (m *meshImpl) PreActivate(frameID uint64) {
	if m.activations != nil && m.frameID == frameID {
		return
	}
	m.frameID = frameID
	m.activations = make(map[uint64]*activation)
}

func (m *meshImpl) Activate(renderID uint64, lod Entity) bool {
	m.renderID = renderID
	target, ok := lod.(*meshImpl)
	if !ok {
		return false
	}
	target.activation(renderID).self = true
	return target.markDispatched(renderID)
}

func (m *meshImpl) RenderInstanceCount(renderID uint64) int {
	a := m.activations[renderID]
	if a == nil {
		return 0
	}
	n := len(a.instances)
	if a.self {
		n++
	}
	return n
}

func (m *meshImpl) RenderWorlds(renderID uint64) []mgl32.Mat4 {
	a := m.activations[renderID]
	if a == nil {
		return nil
	}
	out := make([]mgl32.Mat4, 0, len(a.instances)+1)
	for _, inst := range a.instances {
		out = append(out, inst.WorldMatrix())
	}
	if a.self {
		if m.master != nil {
			out = append(out, m.master.WorldMatrix())
		} else {
			out = append(out, m.WorldMatrix())
		}
	}
	return out
}

// activation returns the record for renderID, creating it on first use.
func (m *meshImpl) activation(renderID uint64) *activation {
	if m.activations == nil {
		m.activations = make(map[uint64]*activation)
	}
	a := m.activations[renderID]
	if a == nil {
		a = &activation{}
		m.activations[renderID] = a
	}
	return a
}

func (m *meshImpl) registerInstance(inst InstancedMesh, renderID uint64) {
	a := m.activation(renderID)
	if !slices.Contains(a.instances, inst) {
		a.instances = append(a.instances, inst)
	}
}

// markDispatched reports whether this is the first activation for renderID.
func (m *meshImpl) markDispatched(renderID uint64) bool {
	if m.dispatchedID == renderID {
		return false
	}
	m.dispatchedID = renderID
	return true
}

func (m *meshImpl) Dispose() {
	instances := slices.Clone(m.instances)
	if !m.dispose() {
		return
	}
	for _, inst := range instances {
		inst.Dispose()
	}
	m.instances = nil
	m.lods = nil
	m.octree = nil
	m.activations = nil
}

func (m *meshImpl) removeInstance(inst *instancedMeshImpl) {
	m.instances = slices.DeleteFunc(m.instances, func(x *instancedMeshImpl) bool { return x == inst })
}

// extents returns the component-wise bounds of positions, or zero bounds when empty.
func extents(positions []mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	if len(positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	inf := float32(math.MaxFloat32)
	lo := mgl32.Vec3{inf, inf, inf}
	hi := mgl32.Vec3{-inf, -inf, -inf}
	for _, p := range positions {
		lo = common.MinVec3(lo, p)
		hi = common.MaxVec3(hi, p)
	}
	return lo, hi
}
