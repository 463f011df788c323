package camera

import (
	"math"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// DefaultLayerMask makes a camera see every layer.
const DefaultLayerMask uint32 = 0x0FFFFFFF

type cameraImpl struct {
	mu *sync.Mutex

	id   string
	name string

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewport     common.Viewport
	layerMask    uint32
	intermediate bool

	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4
	transformMatrix  mgl32.Mat4

	// rig state
	parent     *cameraImpl
	subCameras []Camera
	rigOffset  float32

	activeEntities []uint64

	// cached at the end of each rendered frame
	cachedPosition mgl32.Vec3
	cachedTarget   mgl32.Vec3
	cachedFov      float32
	cachedAspect   float32
	synced         bool
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings, a normalized viewport and a layer mask, and computes
// view/projection matrices from its position and target. A camera may own sub-cameras (a rig);
// a rig parent is never rendered directly, each of its sub-cameras is.
type Camera interface {
	// ID returns the camera's unique identifier.
	//
	// Returns:
	//   - string: the camera ID
	ID() string

	// Name returns the camera's display name.
	//
	// Returns:
	//   - string: the camera name
	Name() string

	// Position returns the camera's world-space position.
	// Sub-cameras derive their position from the parent and their rig offset.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: up vector
	Up() mgl32.Vec3

	// Fov returns the field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// Viewport returns the normalized viewport rectangle.
	//
	// Returns:
	//   - common.Viewport: the viewport in [0, 1] surface coordinates
	Viewport() common.Viewport

	// LayerMask returns the bit mask an entity's layer mask must share to be visible.
	//
	// Returns:
	//   - uint32: the layer mask
	LayerMask() uint32

	// IsIntermediate reports whether the camera renders into an intermediate target
	// rather than the final surface.
	//
	// Returns:
	//   - bool: true for intermediate cameras
	IsIntermediate() bool

	// ViewMatrix returns the view matrix computed by the last UpdateTransformMatrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the projection matrix computed by the last UpdateTransformMatrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// TransformMatrix returns the combined projection * view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view-projection matrix
	TransformMatrix() mgl32.Mat4

	// UpdateTransformMatrix recomputes the view, projection and combined matrices from the
	// current position, target and lens settings.
	//
	// Returns:
	//   - mgl32.Mat4: the new view-projection matrix
	UpdateTransformMatrix() mgl32.Mat4

	// SetPosition sets the camera's world-space position.
	//
	// Parameters:
	//   - p: world-space position
	SetPosition(p mgl32.Vec3)

	// SetTarget sets the look-at point.
	//
	// Parameters:
	//   - t: world-space target
	SetTarget(t mgl32.Vec3)

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - up: up vector
	SetUp(up mgl32.Vec3)

	// SetFov sets the field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height). Sub-cameras inherit the change.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// SetViewport sets the normalized viewport rectangle.
	//
	// Parameters:
	//   - v: the viewport in [0, 1] surface coordinates
	SetViewport(v common.Viewport)

	// SetLayerMask sets the camera layer mask.
	//
	// Parameters:
	//   - mask: the layer mask
	SetLayerMask(mask uint32)

	// SubCameras returns a copy of the rig's sub-cameras in render order.
	//
	// Returns:
	//   - []Camera: the sub-cameras, empty when the camera is not a rig
	SubCameras() []Camera

	// AddSubCamera attaches a sub-camera created with NewCamera to this rig.
	// The sub-camera follows this camera, offset along its right axis by offset world units.
	//
	// Parameters:
	//   - sub: the sub-camera to attach
	//   - offset: signed offset along the parent's right axis
	AddSubCamera(sub Camera, offset float32)

	// Parent returns the rig parent, or nil for a top-level camera.
	//
	// Returns:
	//   - Camera: the parent camera or nil
	Parent() Camera

	// ResetActiveEntities clears the active-entity accumulator.
	ResetActiveEntities()

	// AddActiveEntity records an entity accepted for rendering by this camera.
	//
	// Parameters:
	//   - id: the entity ID
	AddActiveEntity(id uint64)

	// ActiveEntities returns a copy of the active-entity accumulator.
	//
	// Returns:
	//   - []uint64: the entity IDs in activation order
	ActiveEntities() []uint64

	// UpdateFromScene caches the camera state at the end of a rendered frame.
	UpdateFromScene()

	// HasMoved reports whether position, target or lens changed since the last UpdateFromScene.
	// A camera that has never been rendered reports true.
	//
	// Returns:
	//   - bool: true if the camera changed
	HasMoved() bool
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings, looking from (0, 0, -10)
// at the origin with a full-surface viewport.
//
// Parameters:
//   - name: the camera name
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(name string, options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:        &sync.Mutex{},
		id:        uuid.NewString(),
		name:      name,
		position:  mgl32.Vec3{0, 0, -10},
		up:        mgl32.Vec3{0, 1, 0},
		fov:       45.0 * (math.Pi / 180.0), // radians
		aspect:    1.0,
		near:      0.1,
		far:       1000.0,
		viewport:  common.FullViewport,
		layerMask: DefaultLayerMask,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) ID() string {
	return c.id
}

func (c *cameraImpl) Name() string {
	return c.name
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, _ := c.eyeAndTarget()
	return p
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, t := c.eyeAndTarget()
	return t
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Viewport() common.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

func (c *cameraImpl) LayerMask() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layerMask
}

func (c *cameraImpl) IsIntermediate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intermediate
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) TransformMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transformMatrix
}

func (c *cameraImpl) UpdateTransformMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
	return c.transformMatrix
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *cameraImpl) SetTarget(t mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	subs := slices.Clone(c.subCameras)
	c.aspect = aspect
	c.mu.Unlock()

	for _, sub := range subs {
		sub.SetAspect(aspect)
	}
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
}

func (c *cameraImpl) SetViewport(v common.Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = v
}

func (c *cameraImpl) SetLayerMask(mask uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layerMask = mask
}

func (c *cameraImpl) SubCameras() []Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.subCameras)
}

func (c *cameraImpl) AddSubCamera(sub Camera, offset float32) {
	impl, ok := sub.(*cameraImpl)
	if !ok {
		panic("camera: AddSubCamera requires a Camera created by NewCamera")
	}
	if impl == c {
		panic("camera: AddSubCamera cannot attach a camera to itself")
	}

	impl.mu.Lock()
	impl.parent = c
	impl.rigOffset = offset
	impl.mu.Unlock()

	c.mu.Lock()
	c.subCameras = append(c.subCameras, sub)
	c.mu.Unlock()
}

func (c *cameraImpl) Parent() Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.parent == nil {
		return nil
	}
	return c.parent
}

func (c *cameraImpl) ResetActiveEntities() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeEntities = c.activeEntities[:0]
}

func (c *cameraImpl) AddActiveEntity(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeEntities = append(c.activeEntities, id)
}

func (c *cameraImpl) ActiveEntities() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.activeEntities)
}

func (c *cameraImpl) UpdateFromScene() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cachedPosition, c.cachedTarget = c.eyeAndTarget()
	c.cachedFov = c.fov
	c.cachedAspect = c.aspect
	c.synced = true
}

func (c *cameraImpl) HasMoved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.synced {
		return true
	}
	p, t := c.eyeAndTarget()
	return p != c.cachedPosition || t != c.cachedTarget || c.fov != c.cachedFov || c.aspect != c.cachedAspect
}

// eyeAndTarget resolves the effective eye and target. A rig sub-camera shifts the parent's
// eye and target along the parent's right axis. Caller must hold the mutex.
func (c *cameraImpl) eyeAndTarget() (mgl32.Vec3, mgl32.Vec3) {
	if c.parent == nil {
		return c.position, c.target
	}

	c.parent.mu.Lock()
	eye, target, up := c.parent.position, c.parent.target, c.parent.up
	c.parent.mu.Unlock()

	forward := common.SafeNormalize(target.Sub(eye))
	right := common.SafeNormalize(forward.Cross(up))
	shift := right.Mul(c.rigOffset)
	return eye.Add(shift), target.Add(shift)
}

// updateMatrices recalculates the view, projection, and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	eye, target := c.eyeAndTarget()
	if eye == target {
		// LookAt is undefined for a zero-length view direction; look down -Z instead.
		target = eye.Add(mgl32.Vec3{0, 0, -1})
	}
	c.viewMatrix = mgl32.LookAtV(eye, target, c.up)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.transformMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
