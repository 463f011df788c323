package entity

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/collision"
	"github.com/go-gl/mathgl/mgl32"
)

// instancedMeshImpl is the implementation of the InstancedMesh interface.
type instancedMeshImpl struct {
	node

	source *meshImpl
}

// InstancedMesh is a transform-only copy of a source mesh. It shares the source's geometry,
// material, and skeleton; the source's submeshes are dispatched once per pass with the
// instance count.
type InstancedMesh interface {
	Entity

	// Source returns the mesh whose geometry is drawn.
	//
	// Returns:
	//   - Mesh: the source mesh
	Source() Mesh
}

var _ InstancedMesh = &instancedMeshImpl{}

func newInstancedMesh(source *meshImpl, name string) *instancedMeshImpl {
	i := &instancedMeshImpl{source: source}
	i.init(i, name)
	i.layerMask = source.layerMask
	i.renderGroupID = source.renderGroupID
	i.alphaIndex = source.alphaIndex
	i.cullingStrategy = source.cullingStrategy
	i.refreshBoundingInfo()
	return i
}

func (i *instancedMeshImpl) refreshBoundingInfo() {
	sb := i.source.boundingInfo
	if sb == nil {
		i.boundingInfo = common.NewBoundingInfo(mgl32.Vec3{}, mgl32.Vec3{})
	} else {
		i.boundingInfo = common.NewBoundingInfo(sb.Box.Minimum, sb.Box.Maximum)
	}
	i.boundingInfo.Update(i.world)
}

func (i *instancedMeshImpl) Source() Mesh {
	return i.source
}

func (i *instancedMeshImpl) ComputeWorldMatrix(force bool) mgl32.Mat4 {
	world, _ := i.computeWorld(force)
	return world
}

func (i *instancedMeshImpl) Positions() []mgl32.Vec3 {
	return i.source.positions
}

func (i *instancedMeshImpl) Indices() []uint32 {
	return i.source.indices
}

func (i *instancedMeshImpl) SubMeshes() []*SubMesh {
	return i.source.subMeshes
}

func (i *instancedMeshImpl) SubMeshCandidates(f *common.Frustum) []*SubMesh {
	return i.source.SubMeshCandidates(f)
}

func (i *instancedMeshImpl) CollisionCandidates(center mgl32.Vec3, radius float32) []collision.SubMesh {
	return i.source.CollisionCandidates(center, radius)
}

func (i *instancedMeshImpl) TotalVertices() int {
	return i.source.TotalVertices()
}

func (i *instancedMeshImpl) Material() Material {
	return i.source.material
}

func (i *instancedMeshImpl) Skeleton() Skeleton {
	return i.source.skeleton
}

func (i *instancedMeshImpl) IsReady() bool {
	return !i.IsDisposed() && i.source.IsReady()
}

func (i *instancedMeshImpl) IsDelayLoading() bool {
	return i.source.IsDelayLoading()
}

func (i *instancedMeshImpl) LOD(cam camera.Camera) Entity {
	return i.source.resolveLOD(i, cam)
}

func (i *instancedMeshImpl) PreActivate(frameID uint64) {
	i.source.PreActivate(frameID)
}

func (i *instancedMeshImpl) Activate(renderID uint64, lod Entity) bool {
	i.renderID = renderID
	target, ok := lod.(*meshImpl)
	if !ok {
		return false
	}
	target.registerInstance(i, renderID)
	return target.markDispatched(renderID)
}

func (i *instancedMeshImpl) RenderInstanceCount(renderID uint64) int {
	return i.source.RenderInstanceCount(renderID)
}

func (i *instancedMeshImpl) Dispose() {
	if !i.dispose() {
		return
	}
	i.source.removeInstance(i)
}
