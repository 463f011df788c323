package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/go-gl/mathgl/mgl32"
)

// PickingInfo is the closest hit of a pick query. SubMeshID and FaceID are -1 without a hit;
// FaceID counts triangles from the start of the submesh.
type PickingInfo struct {
	Hit         bool
	Entity      entity.Entity
	Distance    float32
	PickedPoint mgl32.Vec3
	SubMeshID   int
	FaceID      int
	Ray         common.Ray
}

func (s *sceneImpl) PickWithRay(ray common.Ray, predicate func(entity.Entity) bool) PickingInfo {
	best := PickingInfo{SubMeshID: -1, FaceID: -1, Ray: ray}
	for _, e := range s.Entities() {
		if !e.IsEnabled() || !e.IsPickable() {
			continue
		}
		if predicate == nil && !e.IsVisible() {
			continue
		}
		if predicate != nil && !predicate(e) {
			continue
		}
		hit, ok := intersectRay(ray, e)
		if !ok || (best.Hit && hit.Distance >= best.Distance) {
			continue
		}
		best = hit
	}
	return best
}

func (s *sceneImpl) CreatePickingRay(x, y float32, cam camera.Camera) common.Ray {
	if cam == nil {
		return common.NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 0)
	}
	width, height := s.backend.Size()
	vx, vy, vw, vh := cam.Viewport().ToPixels(width, height)
	if vw <= 0 || vh <= 0 {
		return common.NewRay(cam.Position(), cam.Target().Sub(cam.Position()), cam.Far())
	}
	ndcX := 2*(x-vx)/vw - 1
	ndcY := 1 - 2*(y-vy)/vh

	inv := cam.UpdateTransformMatrix().Inv()
	near := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, -1}, inv)
	far := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, 1}, inv)
	dir := far.Sub(near)
	return common.NewRay(near, dir, dir.Len())
}

func (s *sceneImpl) Pick(x, y float32, predicate func(entity.Entity) bool) PickingInfo {
	cam := s.ActiveCamera()
	if cam == nil {
		return PickingInfo{SubMeshID: -1, FaceID: -1}
	}
	return s.PickWithRay(s.CreatePickingRay(x, y, cam), predicate)
}

// intersectRay narrows from the bounding sphere to the box before walking the triangles of
// every submesh in world space.
func intersectRay(ray common.Ray, e entity.Entity) (PickingInfo, bool) {
	world := e.ComputeWorldMatrix(false)
	bi := e.BoundingInfo()
	if bi == nil || !ray.IntersectsSphere(&bi.Sphere) || !ray.IntersectsBox(&bi.Box) {
		return PickingInfo{}, false
	}

	positions, indices := e.Positions(), e.Indices()
	hit := PickingInfo{Entity: e, SubMeshID: -1, FaceID: -1, Ray: ray}
	for si, sm := range e.SubMeshes() {
		start, count := sm.IndexRange()
		end := min(start+count, len(indices))
		for i := start; i+2 < end; i += 3 {
			a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
			if max(a, b, c) >= len(positions) {
				continue
			}
			d, ok := ray.IntersectsTriangle(
				common.TransformCoordinates(positions[a], world),
				common.TransformCoordinates(positions[b], world),
				common.TransformCoordinates(positions[c], world),
			)
			if !ok || (hit.Hit && d >= hit.Distance) {
				continue
			}
			hit.Hit = true
			hit.Distance = d
			hit.SubMeshID = si
			hit.FaceID = (i - start) / 3
		}
	}
	if !hit.Hit {
		return PickingInfo{}, false
	}
	hit.PickedPoint = ray.At(hit.Distance)
	return hit, true
}
