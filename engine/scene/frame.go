package scene

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MinDeltaTime is the smallest frame delta, in milliseconds, that drives animation.
	MinDeltaTime float32 = 1.0

	// MaxDeltaTime is the largest frame delta, in milliseconds, that drives animation.
	MaxDeltaTime float32 = 1000.0

	// constantDeltaTime is used instead of the measured delta when
	// Features.ConstantAnimationDeltaTime is set.
	constantDeltaTime float32 = 16.0
)

// ClampDelta clamps a raw frame delta to [MinDeltaTime, MaxDeltaTime] and derives the
// animation ratio, 1 for a 60 frames per second frame.
//
// Parameters:
//   - rawMs: the measured frame delta in milliseconds
//
// Returns:
//   - delta: the clamped delta in milliseconds
//   - ratio: delta * 60 / 1000
func ClampDelta(rawMs float32) (delta, ratio float32) {
	delta = common.Clamp(rawMs, MinDeltaTime, MaxDeltaTime)
	return delta, delta * (60.0 / 1000.0)
}

// frameSnapshot is the registry state a frame renders with.
type frameSnapshot struct {
	entities      []entity.Entity
	activeCamera  camera.Camera
	activeCameras []camera.Camera
	lights        []light.Light
	textures      []rendertarget.RenderTarget
	customTargets []rendertarget.RenderTarget
	procedural    []rendertarget.RenderTarget
	sprites       []SpriteManager
	layers        []Layer
	lensFlares    []LensFlareSystem
	animatables   []Animatable
	features      Features
	clearColor    common.Color4
}

func (s *sceneImpl) snapshot() *frameSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &frameSnapshot{
		entities:      slices.Clone(s.entities),
		activeCamera:  s.activeCamera,
		activeCameras: slices.Clone(s.activeCameras),
		textures:      slices.Clone(s.textures),
		customTargets: slices.Clone(s.customTargets),
		procedural:    slices.Clone(s.procedural),
		sprites:       slices.Clone(s.spriteManagers),
		layers:        slices.Clone(s.layers),
		lensFlares:    slices.Clone(s.lensFlares),
		features:      s.features,
		clearColor:    s.clearColor,
		lights:        slices.Clone(s.lights),
	}
	for _, a := range s.animatables {
		snap.animatables = append(snap.animatables, a.a)
	}
	return snap
}

func (s *sceneImpl) RenderFrame(ctx context.Context) (err error) {
	if s.IsDisposed() {
		return ErrSceneDisposed
	}

	ctx, span := s.tracer.Start(ctx, "scene.render_frame", trace.WithAttributes(attribute.String("scene", s.name)))
	start := s.now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.finishFrame(start)
		span.End()
	}()

	snap := s.snapshot()
	f := snap.features

	// 1. statistics
	s.frameID++
	s.stats = FrameStatistics{FrameID: s.frameID}
	s.intersections = s.intersections[:0]
	clear(s.intersectSet)

	// 2. before render
	s.onBeforeRender.Notify(s)

	// 3. delta and animation
	raw := float32(0)
	if !s.lastFrame.IsZero() {
		raw = float32(start.Sub(s.lastFrame).Seconds() * 1000)
	}
	s.lastFrame = start
	if f.ConstantAnimationDeltaTime {
		raw = constantDeltaTime
	}
	s.stats.DeltaTime, s.stats.AnimationRatio = ClampDelta(raw)
	s.advanceAnimatables(snap.animatables, raw)

	// 4. physics
	if p := s.Physics(); p != nil {
		p.Step(s.stats.DeltaTime / 1000)
	}

	// 5. custom render targets
	if f.RenderTargetsEnabled {
		if err := s.renderCustomTargets(snap); err != nil {
			return err
		}
	}

	// 6. procedural textures
	if f.ProceduralTexturesEnabled {
		for _, t := range snap.procedural {
			if !t.ShouldRender() {
				continue
			}
			if err := t.Render(s.renderID.Load()); err != nil {
				return fmt.Errorf("scene: procedural texture %q: %w", t.Name(), err)
			}
		}
	}

	// 7. clear
	s.backend.Clear(snap.clearColor, f.AutoClear || f.ForceWireframe || f.ForcePointsCloud, true, true)

	// 8. shadow maps and depth map
	s.collectFrameTargets(snap)

	// 9. render pipelines
	s.mu.RLock()
	pipelines := s.pipelines
	s.mu.RUnlock()
	if pipelines != nil {
		pipelines.Update()
	}

	// 10. cameras
	if len(snap.activeCameras) > 0 {
		for i, cam := range snap.activeCameras {
			if i > 0 {
				s.backend.Clear(common.Color4{}, false, true, true)
			}
			if err := s.renderCamera(ctx, snap, cam); err != nil {
				return err
			}
		}
	} else {
		if snap.activeCamera == nil {
			return ErrNoActiveCamera
		}
		if err := s.renderCamera(ctx, snap, snap.activeCamera); err != nil {
			return err
		}
	}

	// 11. intersections
	s.checkIntersections()

	// 12. audio
	s.updateAudio(snap)

	// 13. after render
	s.onAfterRender.Notify(s)

	// 14. deferred disposal
	s.flushDisposal()
	s.sweepTargetContexts()

	return nil
}

// finishFrame records the frame duration and publishes the statistics.
func (s *sceneImpl) finishFrame(start time.Time) {
	since(s.now, start, &s.stats.FrameDuration)
	s.stats.RenderID = s.renderID.Load()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = slices.Clone(s.main.active)
	s.lastStats = s.stats
}

// renderCustomTargets renders the due custom targets, each from its own camera or the active one.
func (s *sceneImpl) renderCustomTargets(snap *frameSnapshot) error {
	start := s.now()
	defer since(s.now, start, &s.stats.RenderTargetsDuration)

	rendered := 0
	for _, t := range snap.customTargets {
		if !t.ShouldRender() {
			continue
		}
		rid := s.renderID.Add(1)
		cam := t.Camera()
		if cam == nil {
			cam = snap.activeCamera
		}
		if cam == nil {
			return fmt.Errorf("scene: render target %q: %w", t.Name(), ErrNoActiveCamera)
		}
		s.backend.SetViewport(cam.Viewport())
		cam.UpdateTransformMatrix()
		if err := t.Render(rid); err != nil {
			return fmt.Errorf("scene: render target %q: %w", t.Name(), err)
		}
		rendered++
	}
	s.renderID.Add(1)

	if rendered > 0 {
		s.backend.RestoreDefaultFramebuffer()
	}
	return nil
}

// collectFrameTargets gathers the shadow maps of enabled lights that are still members of the
// texture list, and the depth map.
func (s *sceneImpl) collectFrameTargets(snap *frameSnapshot) {
	s.frameTargets = s.frameTargets[:0]
	if snap.features.ShadowsEnabled {
		for _, l := range snap.lights {
			g := l.ShadowGenerator()
			if !l.Enabled() || g == nil {
				continue
			}
			sm := g.ShadowMap()
			if sm == nil || sm.IsDisposed() {
				continue
			}
			if slices.Contains(snap.textures, sm) {
				s.frameTargets = append(s.frameTargets, sm)
			}
		}
	}
	s.mu.RLock()
	depth := s.depthRenderer
	s.mu.RUnlock()
	if depth != nil {
		if dm := depth.DepthMap(); dm != nil && !dm.IsDisposed() {
			s.frameTargets = append(s.frameTargets, dm)
		}
	}
}

// renderCamera renders cam, or each of its sub-cameras followed by restoring the parent.
func (s *sceneImpl) renderCamera(ctx context.Context, snap *frameSnapshot, cam camera.Camera) error {
	if cam == nil {
		return ErrNoActiveCamera
	}
	subs := cam.SubCameras()
	if len(subs) == 0 {
		return s.renderForCamera(ctx, snap, cam)
	}
	for _, sub := range subs {
		if err := s.renderForCamera(ctx, snap, sub); err != nil {
			return err
		}
	}
	cam.UpdateTransformMatrix()
	cam.UpdateFromScene()
	return nil
}

// renderForCamera runs the per-camera procedure for a camera without sub-cameras.
func (s *sceneImpl) renderForCamera(ctx context.Context, snap *frameSnapshot, cam camera.Camera) error {
	_, span := s.tracer.Start(ctx, "scene.render_camera", trace.WithAttributes(attribute.String("camera", cam.Name())))
	defer span.End()

	f := snap.features
	s.stats.Cameras++
	s.backend.SetViewport(cam.Viewport())
	rid := s.renderID.Add(1)
	cam.UpdateTransformMatrix()
	s.onBeforeCameraRender.Notify(cam)

	s.evaluate(cam, s.main, snap.entities, rid, f)
	s.prepareSkeletons(s.main.skeletons)

	if err := s.renderCameraTargets(cam, f); err != nil {
		span.RecordError(err)
		return err
	}

	s.mu.RLock()
	post := s.postProcess
	s.mu.RUnlock()
	if post != nil {
		if err := post.PrepareFrame(cam); err != nil {
			return fmt.Errorf("scene: prepare post process: %w", err)
		}
	}

	renderStart := s.now()
	if err := s.renderLayers(snap.layers, cam, true); err != nil {
		return err
	}

	draws, err := s.main.dispatcher.Render(s.backend, cam, s.groupHooks(snap, s.main, cam))
	s.stats.DrawCalls += draws
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("scene: render camera %q: %w", cam.Name(), err)
	}

	if len(s.main.boxes) > 0 {
		if err := s.backend.DrawBoundingBoxes(cam.TransformMatrix(), s.main.boxes); err != nil {
			return fmt.Errorf("scene: bounding boxes: %w", err)
		}
	}

	if f.LensFlaresEnabled {
		for _, lf := range snap.lensFlares {
			if err := lf.Render(cam); err != nil {
				return fmt.Errorf("scene: lens flare: %w", err)
			}
		}
	}

	if err := s.renderLayers(snap.layers, cam, false); err != nil {
		return err
	}
	since(s.now, renderStart, &s.stats.RenderDuration)

	if post != nil {
		if err := post.FinalizeFrame(cam, cam.IsIntermediate()); err != nil {
			return fmt.Errorf("scene: finalize post process: %w", err)
		}
	}

	cam.UpdateFromScene()
	s.onAfterCameraRender.Notify(cam)
	return nil
}

// renderCameraTargets renders the frame targets and the material targets collected by the
// camera's evaluation, bumping the render id for each.
func (s *sceneImpl) renderCameraTargets(cam camera.Camera, f Features) error {
	start := s.now()
	defer since(s.now, start, &s.stats.RenderTargetsDuration)
	if !f.RenderTargetsEnabled {
		return nil
	}

	targets := slices.Concat(s.frameTargets, s.main.renderTargets)
	rendered := 0
	for _, t := range targets {
		if !t.ShouldRender() {
			continue
		}
		rid := s.renderID.Add(1)
		if err := t.Render(rid); err != nil {
			return fmt.Errorf("scene: render target %q: %w", t.Name(), err)
		}
		rendered++
	}
	s.renderID.Add(1)

	if rendered > 0 {
		s.backend.RestoreDefaultFramebuffer()
		s.backend.SetViewport(cam.Viewport())
	}
	return nil
}

func (s *sceneImpl) renderLayers(layers []Layer, cam camera.Camera, background bool) error {
	var due []Layer
	for _, l := range layers {
		if l.IsBackground() == background {
			due = append(due, l)
		}
	}
	if len(due) == 0 {
		return nil
	}
	s.backend.SetDepthWrite(false)
	defer s.backend.SetDepthWrite(true)
	for _, l := range due {
		if err := l.Render(cam); err != nil {
			return fmt.Errorf("scene: layer: %w", err)
		}
	}
	return nil
}

// groupHooks draws the sprites and particles of each rendering group between its alpha-tested
// and transparent buckets.
func (s *sceneImpl) groupHooks(snap *frameSnapshot, ec *evalContext, cam camera.Camera) renderer.GroupHooks {
	var hooks renderer.GroupHooks
	if !ec.main {
		return hooks
	}
	mask := cam.LayerMask()

	if snap.features.SpritesEnabled && len(snap.sprites) > 0 {
		hooks.Sprites = func(groupID int) error {
			start := s.now()
			defer since(s.now, start, &s.stats.SpritesDuration)
			for _, m := range snap.sprites {
				if renderer.ClampGroupID(m.RenderingGroupID()) != groupID || m.LayerMask()&mask == 0 {
					continue
				}
				if err := m.Render(cam); err != nil {
					return err
				}
			}
			return nil
		}
	}

	if snap.features.ParticlesEnabled && len(ec.particles) > 0 {
		hooks.Particles = func(groupID int) error {
			start := s.now()
			defer since(s.now, start, &s.stats.ParticlesDuration)
			for _, ps := range ec.particles {
				if renderer.ClampGroupID(ps.RenderingGroupID()) != groupID || ps.LayerMask()&mask == 0 {
					continue
				}
				n, err := ps.Render(cam)
				s.stats.ActiveParticles += n
				if err != nil {
					return fmt.Errorf("particle system %q: %w", ps.Name(), err)
				}
			}
			return nil
		}
	}
	return hooks
}

func (s *sceneImpl) RenderPass(t rendertarget.RenderTarget, cam camera.Camera, renderID uint64) error {
	if t == nil {
		return fmt.Errorf("scene: render pass requires a target")
	}
	if cam == nil {
		return fmt.Errorf("scene: render target %q: %w", t.Name(), ErrNoActiveCamera)
	}

	ec := s.targetCtx[t.ID()]
	if ec == nil {
		s.mu.RLock()
		ec = newEvalContext(false, s.autoClearGroups)
		s.mu.RUnlock()
		s.targetCtx[t.ID()] = ec
	}

	if err := s.backend.BindRenderTarget(t); err != nil {
		return fmt.Errorf("scene: bind render target %q: %w", t.Name(), err)
	}
	s.backend.SetViewport(common.FullViewport)
	s.backend.Clear(s.ClearColor(), true, true, true)

	cam.UpdateTransformMatrix()
	s.evaluate(cam, ec, s.Entities(), renderID, s.Features())

	draws, err := ec.dispatcher.Render(s.backend, cam, renderer.GroupHooks{})
	s.stats.DrawCalls += draws
	if err != nil {
		return fmt.Errorf("scene: render target %q: %w", t.Name(), err)
	}
	return nil
}

// sweepTargetContexts drops the evaluation contexts of disposed targets.
func (s *sceneImpl) sweepTargetContexts() {
	live := make(map[string]struct{})
	for _, t := range slices.Concat(s.Textures(), s.CustomRenderTargets(), s.frameTargets) {
		if !t.IsDisposed() {
			live[t.ID()] = struct{}{}
		}
	}
	for _, t := range s.main.renderTargets {
		if !t.IsDisposed() {
			live[t.ID()] = struct{}{}
		}
	}
	for id := range s.targetCtx {
		if _, ok := live[id]; !ok {
			delete(s.targetCtx, id)
		}
	}
}

func (s *sceneImpl) updateAudio(snap *frameSnapshot) {
	s.mu.RLock()
	listener, cam := s.audio, s.audioCamera
	s.mu.RUnlock()
	if listener == nil {
		return
	}
	if cam == nil {
		if len(snap.activeCameras) > 0 {
			cam = snap.activeCameras[0]
		} else {
			cam = snap.activeCamera
		}
	}
	if cam == nil {
		return
	}
	forward := common.SafeNormalize(cam.Target().Sub(cam.Position()))
	listener.SetListener(cam.Position(), forward, cam.Up())
}

// advanceAnimatables runs the animatables in registration order on the calling goroutine.
// Animatables share entities, so they are never fanned out to the compute pool.
func (s *sceneImpl) advanceAnimatables(anims []Animatable, deltaMs float32) {
	for _, a := range anims {
		a.Animate(deltaMs)
	}
}

// prepareSkeletons computes the bone matrices of the active skeletons on the compute pool.
func (s *sceneImpl) prepareSkeletons(skeletons []entity.Skeleton) {
	fns := make([]func(), len(skeletons))
	for i, sk := range skeletons {
		fns[i] = sk.Prepare
	}
	s.runParallel(fns)
}

// runParallel spreads fns round-robin over the compute pools. Workers are reused across frames;
// a WaitGroup gives the per-frame barrier since pool.Wait() blocks until workers idle-exit.
func (s *sceneImpl) runParallel(fns []func()) {
	switch len(fns) {
	case 0:
		return
	case 1:
		fns[0]()
		return
	}
	var wg sync.WaitGroup
	for i, fn := range fns {
		wg.Add(1)
		s.computePools[i%len(s.computePools)].SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				fn()
				return nil, nil
			},
		})
	}
	wg.Wait()
}
