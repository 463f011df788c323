package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
)

// evalContext holds the output of one evaluation pass. The main pass and every render target
// pass own separate contexts so a target drawn mid-camera never clobbers the main dispatcher.
type evalContext struct {
	// main marks the camera pass: it feeds the camera accumulator, statistics and intersections.
	main bool

	dispatcher    renderer.RenderDispatcher
	frustum       common.Frustum
	active        []entity.Entity
	renderTargets []rendertarget.RenderTarget
	processed     map[string]struct{}
	particles     []ParticleSystem
	skeletons     []entity.Skeleton
	skeletonSeen  map[string]struct{}
	boxes         []*common.BoundingBox
}

func newEvalContext(main bool, autoClear map[int]bool) *evalContext {
	ec := &evalContext{
		main:         main,
		dispatcher:   renderer.NewRenderDispatcher(),
		processed:    make(map[string]struct{}),
		skeletonSeen: make(map[string]struct{}),
	}
	for id, enabled := range autoClear {
		ec.dispatcher.SetAutoClearDepthStencil(id, enabled)
	}
	return ec
}

func (ec *evalContext) reset(renderID uint64) {
	ec.dispatcher.Reset(renderID)
	ec.active = ec.active[:0]
	ec.renderTargets = ec.renderTargets[:0]
	ec.particles = ec.particles[:0]
	ec.skeletons = ec.skeletons[:0]
	ec.boxes = ec.boxes[:0]
	clear(ec.processed)
	clear(ec.skeletonSeen)
}

// evaluate selects the entities and submeshes cam must draw and dispatches them into ec.
// The frustum is refreshed from the camera's current transform matrix, so the caller must
// update that matrix first.
func (s *sceneImpl) evaluate(cam camera.Camera, ec *evalContext, entities []entity.Entity, renderID uint64, f Features) {
	start := s.now()
	if ec.main {
		cam.ResetActiveEntities()
	}
	ec.reset(renderID)
	ec.frustum.SetFromMatrix(cam.TransformMatrix())

	candidates := entities
	if idx := s.SelectionIndex(); idx != nil {
		candidates = idx.Select(&ec.frustum)
	} else if f.SelectionOctreeRequired && !s.warnedIndex {
		s.warnedIndex = true
		s.log.WithField("scene", s.name).Warn("scene: selection octree required but not built, using linear scan")
	}

	for _, e := range candidates {
		if e.IsBlocked() || e.IsDisposed() {
			continue
		}
		if ec.main {
			s.stats.TotalVertices += e.TotalVertices()
		}
		if !e.IsReady() {
			continue
		}

		e.ComputeWorldMatrix(false)

		if ec.main && e.HasIntersectionTriggers() {
			s.markForIntersections(e)
		}

		lod := e.LOD(cam)
		if lod == nil {
			continue
		}

		e.PreActivate(s.frameID)
		if lod != e {
			lod.PreActivate(s.frameID)
		}

		if !isActiveFor(e, cam, &ec.frustum) {
			continue
		}

		ec.active = append(ec.active, e)
		if ec.main {
			cam.AddActiveEntity(e.ID())
		}
		if e.Activate(renderID, lod) {
			s.activateEntity(ec, lod, f)
		}
	}

	if ec.main {
		s.stats.ActiveEntities += len(ec.active)
		if f.ParticlesEnabled {
			s.evaluateParticles(ec)
		}
		since(s.now, start, &s.stats.EvaluationDuration)
	}
}

// isActiveFor runs the visibility test of an entity for a camera.
func isActiveFor(e entity.Entity, cam camera.Camera, f *common.Frustum) bool {
	if !e.IsEnabled() || !e.IsVisible() || e.Visibility() <= 0 {
		return false
	}
	if e.LayerMask()&cam.LayerMask() == 0 {
		return false
	}
	return e.AlwaysSelectAsActive() || e.IsInFrustum(f)
}

// activateEntity collects the skeleton, the debug box and the submeshes of the entity drawn
// at the selected level of detail.
func (s *sceneImpl) activateEntity(ec *evalContext, lod entity.Entity, f Features) {
	if sk := lod.Skeleton(); sk != nil && f.SkeletonsEnabled {
		if _, ok := ec.skeletonSeen[sk.ID()]; !ok {
			ec.skeletonSeen[sk.ID()] = struct{}{}
			ec.skeletons = append(ec.skeletons, sk)
			if ec.main {
				s.stats.ActiveBones += sk.BoneCount()
			}
		}
	}

	if ec.main && (lod.ShowBoundingBox() || f.ForceShowBoundingBoxes) {
		ec.boxes = append(ec.boxes, &lod.BoundingInfo().Box)
	}

	single := len(lod.SubMeshes()) == 1
	for _, sm := range lod.SubMeshCandidates(&ec.frustum) {
		s.evaluateSubMesh(ec, lod, sm, single, f)
	}
}

func (s *sceneImpl) evaluateSubMesh(ec *evalContext, owner entity.Entity, sm *entity.SubMesh, single bool, f Features) {
	if !single && !sm.IsGlobal() && !sm.IsInFrustum(&ec.frustum) {
		return
	}

	if ec.main && owner.ShowSubMeshesBoundingBox() {
		ec.boxes = append(ec.boxes, &sm.BoundingInfo().Box)
	}

	if ec.main {
		_, indexCount := sm.IndexRange()
		_, vertexCount := sm.VertexRange()
		s.stats.ActiveIndices += indexCount
		s.stats.ActiveVertices += vertexCount
	}

	mat := sm.Material()
	if mat == nil || !mat.IsReady(owner) {
		return
	}

	if f.RenderTargetsEnabled {
		if _, seen := ec.processed[mat.ID()]; !seen {
			ec.processed[mat.ID()] = struct{}{}
			ec.renderTargets = append(ec.renderTargets, mat.RenderTargetTextures()...)
		}
	}

	ec.dispatcher.Dispatch(sm)
}

// evaluateParticles activates started particle systems whose emitter is positionless or enabled.
func (s *sceneImpl) evaluateParticles(ec *evalContext) {
	start := s.now()
	s.mu.RLock()
	systems := s.particleSystems
	s.mu.RUnlock()

	ratio := s.stats.AnimationRatio
	for _, ps := range systems {
		if !ps.IsStarted() {
			continue
		}
		if em := ps.Emitter(); em == nil || em.IsEnabled() {
			ec.particles = append(ec.particles, ps)
			ps.Animate(ratio)
		}
	}
	since(s.now, start, &s.stats.ParticlesDuration)
}

func (s *sceneImpl) markForIntersections(e entity.Entity) {
	if _, ok := s.intersectSet[e]; ok {
		return
	}
	s.intersectSet[e] = struct{}{}
	s.intersections = append(s.intersections, e)
}
