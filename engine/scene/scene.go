package scene

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/collision"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"
	"github.com/Carmen-Shannon/oxy-scene/engine/observer"
	"github.com/Carmen-Shannon/oxy-scene/engine/pending"
	"github.com/Carmen-Shannon/oxy-scene/engine/physics"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
	"github.com/Carmen-Shannon/oxy-scene/engine/spatial"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	// ErrNoActiveCamera is returned when a render pass needs a camera and none is set.
	ErrNoActiveCamera = errors.New("scene: no active camera")

	// ErrSceneDisposed is returned by RenderFrame after Dispose.
	ErrSceneDisposed = errors.New("scene: scene is disposed")
)

// Features toggles optional frame phases. The zero value disables everything; DefaultFeatures
// returns the values a new scene starts with.
type Features struct {
	AutoClear                  bool
	ForceWireframe             bool
	ForcePointsCloud           bool
	ForceShowBoundingBoxes     bool
	SkeletonsEnabled           bool
	ParticlesEnabled           bool
	SpritesEnabled             bool
	RenderTargetsEnabled       bool
	ProceduralTexturesEnabled  bool
	ShadowsEnabled             bool
	LensFlaresEnabled          bool
	CollisionsEnabled          bool
	ConstantAnimationDeltaTime bool

	// SelectionOctreeRequired logs a warning, once, when evaluation runs without a selection index.
	SelectionOctreeRequired bool
}

// DefaultFeatures returns every phase enabled, with no debug overrides.
func DefaultFeatures() Features {
	return Features{
		AutoClear:                 true,
		SkeletonsEnabled:          true,
		ParticlesEnabled:          true,
		SpritesEnabled:            true,
		RenderTargetsEnabled:      true,
		ProceduralTexturesEnabled: true,
		ShadowsEnabled:            true,
		LensFlaresEnabled:         true,
		CollisionsEnabled:         true,
	}
}

// Scene owns the entity, camera, light and render target registries and drives one frame per
// RenderFrame call. Registry methods are safe to call from any goroutine; RenderFrame and
// RenderPass must be called from a single goroutine.
type Scene interface {
	Name() string

	// Backend returns the backend the scene draws with.
	Backend() renderer.Backend

	// AddEntity registers an entity and assigns it an ID if it has none. The entity is removed
	// automatically when it is disposed.
	//
	// Parameters:
	//   - e: the entity to register
	//
	// Returns:
	//   - uint64: the entity's ID
	AddEntity(e entity.Entity) uint64

	// RemoveEntity unregisters an entity without disposing it.
	//
	// Parameters:
	//   - e: the entity to remove
	//
	// Returns:
	//   - bool: true if the entity was registered
	RemoveEntity(e entity.Entity) bool

	// Entities returns a snapshot of the registered entities in registration order.
	Entities() []entity.Entity

	// EntityByID returns the entity with the given ID, or nil.
	EntityByID(id uint64) entity.Entity

	// EntityByName returns the first entity with the given name, or nil.
	EntityByName(name string) entity.Entity

	AddCamera(c camera.Camera)
	RemoveCamera(c camera.Camera) bool
	Cameras() []camera.Camera

	// ActiveCamera returns the camera rendered when no active camera list is set.
	ActiveCamera() camera.Camera

	// SetActiveCamera sets the active camera, registering it if needed.
	SetActiveCamera(c camera.Camera)

	// ActiveCameras returns the multi-camera list, rendered in order instead of ActiveCamera.
	ActiveCameras() []camera.Camera

	// SetActiveCameras replaces the multi-camera list. An empty list renders ActiveCamera.
	SetActiveCameras(cams ...camera.Camera)

	// CreateDefaultCamera creates and activates a camera framing the world extents when no
	// active camera exists.
	//
	// Returns:
	//   - camera.Camera: the active camera
	CreateDefaultCamera() camera.Camera

	// AddLight registers a light. A shadow map owned by the light is added to the texture list.
	AddLight(l light.Light)
	RemoveLight(l light.Light) bool
	Lights() []light.Light

	// AddTexture adds a render target to the scene's texture list. Shadow maps are only rendered
	// while they are members of this list.
	AddTexture(t rendertarget.RenderTarget)
	RemoveTexture(t rendertarget.RenderTarget) bool
	Textures() []rendertarget.RenderTarget

	// AddCustomRenderTarget adds a target rendered at the start of every frame it is due.
	AddCustomRenderTarget(t rendertarget.RenderTarget)
	RemoveCustomRenderTarget(t rendertarget.RenderTarget) bool
	CustomRenderTargets() []rendertarget.RenderTarget

	// AddProceduralTexture adds a target rendered after the custom render targets.
	AddProceduralTexture(t rendertarget.RenderTarget)

	AddParticleSystem(p ParticleSystem)
	AddSpriteManager(m SpriteManager)
	AddLayer(l Layer)
	AddLensFlareSystem(l LensFlareSystem)

	// AddAnimatable registers an animatable advanced every frame, after the animatables
	// registered before it.
	//
	// Parameters:
	//   - a: the animatable
	//
	// Returns:
	//   - observer.Handle: the handle to pass to RemoveAnimatable
	AddAnimatable(a Animatable) observer.Handle
	RemoveAnimatable(h observer.Handle) bool

	SetPhysics(p physics.Stepper)
	Physics() physics.Stepper
	SetDepthRenderer(d DepthRenderer)
	SetPipelineManager(m PipelineManager)
	SetPostProcessManager(m PostProcessManager)

	// SetAudioListener sets the listener updated after the cameras render.
	//
	// Parameters:
	//   - l: the listener (nil disables updates)
	//   - cam: the listening camera, or nil to follow the first rendered camera
	SetAudioListener(l AudioListener, cam camera.Camera)

	Features() Features
	SetFeatures(f Features)
	ClearColor() common.Color4
	SetClearColor(c common.Color4)

	// SetAutoClearDepthStencil toggles the depth and stencil clear before a rendering group.
	SetAutoClearDepthStencil(groupID int, clear bool)

	// Pending returns the tracker used by asynchronous loaders.
	Pending() pending.Tracker

	// IsReady reports whether no pending work is outstanding and every entity and its material
	// are ready.
	IsReady() bool

	// ExecuteWhenReady runs fn once the scene is ready. See pending.Tracker.
	ExecuteWhenReady(fn func())

	// QueueForDisposal defers x.Dispose to the end of the next RenderFrame.
	QueueForDisposal(x Disposable)

	OnBeforeRender() *observer.Registry[Scene]
	OnAfterRender() *observer.Registry[Scene]
	OnBeforeCameraRender() *observer.Registry[camera.Camera]
	OnAfterCameraRender() *observer.Registry[camera.Camera]
	OnDispose() *observer.Registry[Scene]

	// RenderFrame runs one frame: hooks, animation, physics, render targets, every active camera,
	// intersection triggers and deferred disposal. It does not begin or present a backend frame.
	//
	// Parameters:
	//   - ctx: carries the trace span parent
	//
	// Returns:
	//   - error: ErrNoActiveCamera, ErrSceneDisposed, or an error from a render stage
	RenderFrame(ctx context.Context) error

	// RenderPass renders the scene into a render target from cam. Render functions of shadow maps
	// and custom targets call it. The target stays bound afterwards.
	//
	// Parameters:
	//   - t: the target to draw into
	//   - cam: the camera to render from
	//   - renderID: the render id handed to the target's render function
	//
	// Returns:
	//   - error: a backend or draw error
	RenderPass(t rendertarget.RenderTarget, cam camera.Camera, renderID uint64) error

	// RenderID returns the current render id. It only increases.
	RenderID() uint64

	// Statistics returns the counters of the last completed frame.
	Statistics() FrameStatistics

	// ActiveEntities returns the entities selected by the last main evaluation.
	ActiveEntities() []entity.Entity

	// CreateOrUpdateSelectionOctree rebuilds the selection octree over the world extents.
	//
	// Parameters:
	//   - maxCapacity: entries per block before subdividing (spatial.DefaultMaxCapacity when <= 0)
	//   - maxDepth: the subdivision limit (spatial.DefaultMaxDepth when <= 0)
	//
	// Returns:
	//   - *spatial.Octree[entity.Entity]: the rebuilt octree
	CreateOrUpdateSelectionOctree(maxCapacity, maxDepth int) *spatial.Octree[entity.Entity]

	// SetSelectionIndex replaces the selection index. Nil restores the linear scan.
	SetSelectionIndex(idx spatial.Index[entity.Entity])
	SelectionIndex() spatial.Index[entity.Entity]

	// WorldExtends returns the min and max of every entity's world bounding box.
	WorldExtends() (minimum, maximum mgl32.Vec3)

	// MoveWithCollisions moves e by displacement, sliding along collision-enabled entities.
	//
	// Parameters:
	//   - e: the entity to move
	//   - displacement: the requested movement in world space
	//
	// Returns:
	//   - mgl32.Vec3: the entity's new position
	//   - entity.Entity: the entity hit, or nil
	MoveWithCollisions(e entity.Entity, displacement mgl32.Vec3) (mgl32.Vec3, entity.Entity)

	// PickWithRay returns the closest enabled, pickable entity whose triangles the ray hits.
	// Candidates pass the bounding sphere and box tests first.
	//
	// Parameters:
	//   - ray: the world-space ray
	//   - predicate: filters candidates; nil accepts every visible entity
	//
	// Returns:
	//   - PickingInfo: the closest hit, Hit is false when nothing was hit
	PickWithRay(ray common.Ray, predicate func(entity.Entity) bool) PickingInfo

	// CreatePickingRay unprojects a surface pixel through cam from its near plane to its far plane.
	CreatePickingRay(x, y float32, cam camera.Camera) common.Ray

	// Pick casts the picking ray of a surface pixel through the active camera.
	Pick(x, y float32, predicate func(entity.Entity) bool) PickingInfo

	IsDisposed() bool

	// Dispose disposes every registered entity, light, render target and satellite, flushes the
	// disposal queue, clears the registries and hooks, and stops the pending poll and the compute
	// workers. Call it from the goroutine driving RenderFrame. Later calls are no-ops.
	Dispose()
}

type animatableEntry struct {
	handle observer.Handle
	a      Animatable
}

type sceneImpl struct {
	mu      *sync.RWMutex
	name    string
	backend renderer.Backend
	log     logrus.FieldLogger
	tracer  trace.Tracer
	now     func() time.Time

	nextID          uint64
	entities        []entity.Entity
	disposeHandles  map[entity.Entity]observer.Handle
	cameras         []camera.Camera
	activeCamera    camera.Camera
	activeCameras   []camera.Camera
	lights          []light.Light
	textures        []rendertarget.RenderTarget
	customTargets   []rendertarget.RenderTarget
	procedural      []rendertarget.RenderTarget
	particleSystems []ParticleSystem
	spriteManagers  []SpriteManager
	layers          []Layer
	lensFlares      []LensFlareSystem
	animatables     []animatableEntry
	nextAnimatable  observer.Handle
	stepper         physics.Stepper
	depthRenderer   DepthRenderer
	pipelines       PipelineManager
	postProcess     PostProcessManager
	audio           AudioListener
	audioCamera     camera.Camera
	index           spatial.Index[entity.Entity]
	octree          *spatial.Octree[entity.Entity]
	features        Features
	clearColor      common.Color4
	autoClearGroups map[int]bool
	lastStats       FrameStatistics
	lastActive      []entity.Entity
	disposed        bool

	tracker        pending.Tracker
	pollInterval   time.Duration
	solver         collision.Solver
	collisionRetry int
	computeWorkers int
	computePools   []worker.DynamicWorkerPool

	onBeforeRender       observer.Registry[Scene]
	onAfterRender        observer.Registry[Scene]
	onBeforeCameraRender observer.Registry[camera.Camera]
	onAfterCameraRender  observer.Registry[camera.Camera]
	onDispose            observer.Registry[Scene]

	disposalMu *sync.Mutex
	toDispose  []Disposable

	// Frame state, owned by the RenderFrame goroutine.
	renderID      atomic.Uint64
	frameID       uint64
	lastFrame     time.Time
	stats         FrameStatistics
	main          *evalContext
	targetCtx     map[string]*evalContext
	frameTargets  []rendertarget.RenderTarget
	intersections []entity.Entity
	intersectSet  map[entity.Entity]struct{}
	warnedIndex   bool
}

var _ Scene = &sceneImpl{}

// NewScene creates an empty scene drawing with backend.
//
// Parameters:
//   - name: the scene name
//   - backend: the backend to draw with (must not be nil)
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, backend renderer.Backend, options ...SceneBuilderOption) Scene {
	if backend == nil {
		panic("scene: NewScene requires a non-nil Backend")
	}

	s := &sceneImpl{
		mu:              &sync.RWMutex{},
		name:            name,
		backend:         backend,
		log:             logger.Noop(),
		tracer:          noop.NewTracerProvider().Tracer("oxy-scene/scene"),
		now:             time.Now,
		nextID:          1,
		disposeHandles:  make(map[entity.Entity]observer.Handle),
		features:        DefaultFeatures(),
		clearColor:      common.DefaultClearColor,
		autoClearGroups: make(map[int]bool),
		pollInterval:    pending.DefaultPollInterval,
		collisionRetry:  collision.DefaultMaxRetry,
		computeWorkers:  max(runtime.NumCPU()-1, 1),
		disposalMu:      &sync.Mutex{},
		targetCtx:       make(map[string]*evalContext),
		intersectSet:    make(map[entity.Entity]struct{}),
	}

	for _, option := range options {
		option(s)
	}

	s.main = newEvalContext(true, s.autoClearGroups)
	s.solver = collision.NewSolver(collision.WithLogger(s.log))
	s.tracker = pending.NewTracker(
		pending.WithPollInterval(s.pollInterval),
		pending.WithReadyFunc(s.entitiesReady),
		pending.WithLogger(s.log),
	)
	// One single-worker pool per compute worker; a pool's stop signal then always reaches its
	// own worker.
	s.computePools = make([]worker.DynamicWorkerPool, s.computeWorkers)
	for i := range s.computePools {
		s.computePools[i] = worker.NewDynamicWorkerPool(1, 64, 1*time.Second)
	}

	return s
}

func (s *sceneImpl) Name() string {
	return s.name
}

func (s *sceneImpl) Backend() renderer.Backend {
	return s.backend
}

func (s *sceneImpl) AddEntity(e entity.Entity) uint64 {
	if e == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.disposeHandles[e]; ok {
		return e.ID()
	}
	if e.ID() == 0 {
		e.SetID(s.nextID)
		s.nextID++
	}
	s.entities = append(s.entities, e)
	if s.octree != nil {
		e.ComputeWorldMatrix(true)
		s.octree.AddEntry(e)
	}
	s.disposeHandles[e] = e.OnDispose().Add(func(d entity.Entity) {
		s.RemoveEntity(d)
	})
	return e.ID()
}

func (s *sceneImpl) RemoveEntity(e entity.Entity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.disposeHandles[e]
	if !ok {
		return false
	}
	delete(s.disposeHandles, e)
	e.OnDispose().Remove(h)
	s.entities = slices.DeleteFunc(s.entities, func(x entity.Entity) bool { return x == e })
	if s.octree != nil {
		s.octree.RemoveEntry(e)
	}
	return true
}

func (s *sceneImpl) Entities() []entity.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entities)
}

func (s *sceneImpl) EntityByID(id uint64) entity.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entities {
		if e.ID() == id {
			return e
		}
	}
	return nil
}

func (s *sceneImpl) EntityByName(name string) entity.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entities {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

func (s *sceneImpl) AddCamera(c camera.Camera) {
	if c == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCameraLocked(c)
}

func (s *sceneImpl) addCameraLocked(c camera.Camera) {
	if !slices.Contains(s.cameras, c) {
		s.cameras = append(s.cameras, c)
	}
}

func (s *sceneImpl) RemoveCamera(c camera.Camera) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.cameras)
	s.cameras = slices.DeleteFunc(s.cameras, func(x camera.Camera) bool { return x == c })
	s.activeCameras = slices.DeleteFunc(s.activeCameras, func(x camera.Camera) bool { return x == c })
	if s.activeCamera == c {
		s.activeCamera = nil
	}
	return len(s.cameras) != n
}

func (s *sceneImpl) Cameras() []camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cameras)
}

func (s *sceneImpl) ActiveCamera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeCamera
}

func (s *sceneImpl) SetActiveCamera(c camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c != nil {
		s.addCameraLocked(c)
	}
	s.activeCamera = c
}

func (s *sceneImpl) ActiveCameras() []camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.activeCameras)
}

func (s *sceneImpl) SetActiveCameras(cams ...camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeCameras = s.activeCameras[:0]
	for _, c := range cams {
		if c == nil {
			continue
		}
		s.addCameraLocked(c)
		s.activeCameras = append(s.activeCameras, c)
	}
}

func (s *sceneImpl) CreateDefaultCamera() camera.Camera {
	if c := s.ActiveCamera(); c != nil {
		return c
	}
	minimum, maximum := s.WorldExtends()
	if len(s.Entities()) == 0 {
		minimum, maximum = mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}
	}
	center := minimum.Add(maximum.Sub(minimum).Mul(0.5))
	c := camera.NewCamera("default camera",
		camera.WithPosition(mgl32.Vec3{center[0], center[1], minimum[2] - (maximum[2] - minimum[2])}),
		camera.WithTarget(center),
	)
	s.SetActiveCamera(c)
	return c
}

func (s *sceneImpl) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	if !slices.Contains(s.lights, l) {
		s.lights = append(s.lights, l)
	}
	s.mu.Unlock()
	if g := l.ShadowGenerator(); g != nil {
		s.AddTexture(g.ShadowMap())
	}
}

func (s *sceneImpl) RemoveLight(l light.Light) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.lights)
	s.lights = slices.DeleteFunc(s.lights, func(x light.Light) bool { return x == l })
	return len(s.lights) != n
}

func (s *sceneImpl) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lights)
}

func (s *sceneImpl) AddTexture(t rendertarget.RenderTarget) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.textures, t) {
		s.textures = append(s.textures, t)
	}
}

func (s *sceneImpl) RemoveTexture(t rendertarget.RenderTarget) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.textures)
	s.textures = slices.DeleteFunc(s.textures, func(x rendertarget.RenderTarget) bool { return x == t })
	return len(s.textures) != n
}

func (s *sceneImpl) Textures() []rendertarget.RenderTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.textures)
}

func (s *sceneImpl) AddCustomRenderTarget(t rendertarget.RenderTarget) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.customTargets, t) {
		s.customTargets = append(s.customTargets, t)
	}
}

func (s *sceneImpl) RemoveCustomRenderTarget(t rendertarget.RenderTarget) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.customTargets)
	s.customTargets = slices.DeleteFunc(s.customTargets, func(x rendertarget.RenderTarget) bool { return x == t })
	return len(s.customTargets) != n
}

func (s *sceneImpl) CustomRenderTargets() []rendertarget.RenderTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.customTargets)
}

func (s *sceneImpl) AddProceduralTexture(t rendertarget.RenderTarget) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.procedural = append(s.procedural, t)
}

func (s *sceneImpl) AddParticleSystem(p ParticleSystem) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.particleSystems = append(s.particleSystems, p)
}

func (s *sceneImpl) AddSpriteManager(m SpriteManager) {
	if m == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spriteManagers = append(s.spriteManagers, m)
}

func (s *sceneImpl) AddLayer(l Layer) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = append(s.layers, l)
}

func (s *sceneImpl) AddLensFlareSystem(l LensFlareSystem) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lensFlares = append(s.lensFlares, l)
}

func (s *sceneImpl) AddAnimatable(a Animatable) observer.Handle {
	if a == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAnimatable++
	s.animatables = append(s.animatables, animatableEntry{handle: s.nextAnimatable, a: a})
	return s.nextAnimatable
}

func (s *sceneImpl) RemoveAnimatable(h observer.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.animatables)
	s.animatables = slices.DeleteFunc(s.animatables, func(e animatableEntry) bool { return e.handle == h })
	return len(s.animatables) != n
}

func (s *sceneImpl) SetPhysics(p physics.Stepper) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepper = p
}

func (s *sceneImpl) Physics() physics.Stepper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stepper
}

func (s *sceneImpl) SetDepthRenderer(d DepthRenderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depthRenderer = d
}

func (s *sceneImpl) SetPipelineManager(m PipelineManager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipelines = m
}

func (s *sceneImpl) SetPostProcessManager(m PostProcessManager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postProcess = m
}

func (s *sceneImpl) SetAudioListener(l AudioListener, cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = l
	s.audioCamera = cam
}

func (s *sceneImpl) Features() Features {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.features
}

func (s *sceneImpl) SetFeatures(f Features) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features = f
}

func (s *sceneImpl) ClearColor() common.Color4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clearColor
}

func (s *sceneImpl) SetClearColor(c common.Color4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearColor = c
}

func (s *sceneImpl) SetAutoClearDepthStencil(groupID int, clear bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groupID = renderer.ClampGroupID(groupID)
	s.autoClearGroups[groupID] = clear
	s.main.dispatcher.SetAutoClearDepthStencil(groupID, clear)
	for _, ec := range s.targetCtx {
		ec.dispatcher.SetAutoClearDepthStencil(groupID, clear)
	}
}

func (s *sceneImpl) Pending() pending.Tracker {
	return s.tracker
}

func (s *sceneImpl) IsReady() bool {
	return s.tracker.IsReady()
}

// entitiesReady is the tracker's readiness condition beyond its tokens.
func (s *sceneImpl) entitiesReady() bool {
	for _, e := range s.Entities() {
		if e.IsDelayLoading() || !e.IsReady() {
			return false
		}
		if m := e.Material(); m != nil && !m.IsReady(e) {
			return false
		}
	}
	return true
}

func (s *sceneImpl) ExecuteWhenReady(fn func()) {
	s.tracker.ExecuteWhenReady(fn)
}

func (s *sceneImpl) OnBeforeRender() *observer.Registry[Scene] {
	return &s.onBeforeRender
}

func (s *sceneImpl) OnAfterRender() *observer.Registry[Scene] {
	return &s.onAfterRender
}

func (s *sceneImpl) OnBeforeCameraRender() *observer.Registry[camera.Camera] {
	return &s.onBeforeCameraRender
}

func (s *sceneImpl) OnAfterCameraRender() *observer.Registry[camera.Camera] {
	return &s.onAfterCameraRender
}

func (s *sceneImpl) OnDispose() *observer.Registry[Scene] {
	return &s.onDispose
}

func (s *sceneImpl) RenderID() uint64 {
	return s.renderID.Load()
}

func (s *sceneImpl) Statistics() FrameStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStats
}

func (s *sceneImpl) ActiveEntities() []entity.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lastActive)
}

func (s *sceneImpl) IsDisposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

func (s *sceneImpl) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	entities := slices.Clone(s.entities)
	lights := s.lights
	targets := slices.Concat(s.textures, s.customTargets, s.procedural)
	particles, sprites, layers, flares := s.particleSystems, s.spriteManagers, s.layers, s.lensFlares
	depth := s.depthRenderer
	s.mu.Unlock()

	s.onDispose.Notify(s)
	s.tracker.Stop()
	s.flushDisposal()

	for _, l := range lights {
		l.Dispose()
	}
	for _, e := range entities {
		e.Dispose()
	}
	for _, t := range targets {
		t.Dispose()
	}
	for _, p := range particles {
		p.Dispose()
	}
	for _, m := range sprites {
		m.Dispose()
	}
	for _, l := range layers {
		l.Dispose()
	}
	for _, f := range flares {
		f.Dispose()
	}
	if depth != nil {
		depth.Dispose()
	}
	for _, p := range s.computePools {
		p.Stop()
	}

	s.mu.Lock()
	s.entities = nil
	clear(s.disposeHandles)
	s.cameras, s.activeCamera, s.activeCameras = nil, nil, nil
	s.lights, s.textures, s.customTargets, s.procedural = nil, nil, nil, nil
	s.particleSystems, s.spriteManagers, s.layers, s.lensFlares = nil, nil, nil, nil
	s.animatables = nil
	s.stepper, s.depthRenderer, s.pipelines, s.postProcess, s.audio = nil, nil, nil, nil, nil
	s.index, s.octree = nil, nil
	s.lastActive = nil
	s.mu.Unlock()

	s.onBeforeRender.Clear()
	s.onAfterRender.Clear()
	s.onBeforeCameraRender.Clear()
	s.onAfterCameraRender.Clear()
	s.onDispose.Clear()
}
