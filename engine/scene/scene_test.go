package scene

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/pending"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to.
type fakeClock struct {
	mu *sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{mu: &sync.Mutex{}, t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type disposable struct {
	mu       *sync.Mutex
	disposed bool
}

func newDisposable() *disposable {
	return &disposable{mu: &sync.Mutex{}}
}

func (d *disposable) Dispose() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disposed = true
}

func (d *disposable) IsDisposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}

func newTestScene(t *testing.T, options ...SceneBuilderOption) (Scene, *renderer.Headless) {
	t.Helper()
	h := renderer.NewHeadless(800, 600)
	s := NewScene("test", h, options...)
	t.Cleanup(s.Dispose)
	return s, h
}

func lookingDownZ(name string) camera.Camera {
	return camera.NewCamera(name,
		camera.WithPosition(mgl32.Vec3{0, 0, 0}),
		camera.WithTarget(mgl32.Vec3{0, 0, -1}),
	)
}

func newBox(name string, mat entity.Material, options ...entity.MeshBuilderOption) entity.Mesh {
	positions, indices := entity.BoxGeometry(mgl32.Vec3{1, 1, 1})
	opts := append([]entity.MeshBuilderOption{
		entity.WithGeometry(positions, indices),
		entity.WithMaterial(mat),
	}, options...)
	return entity.NewMesh(name, opts...)
}

func activeNames(s Scene) []string {
	var out []string
	for _, e := range s.ActiveEntities() {
		out = append(out, e.Name())
	}
	return out
}

func TestNewScene_PanicsWithoutBackend(t *testing.T) {
	assert.PanicsWithValue(t, "scene: NewScene requires a non-nil Backend", func() {
		NewScene("x", nil)
	})
}

func TestAddEntity_AssignsIDsAndRemovesOnDispose(t *testing.T) {
	s, _ := newTestScene(t)
	a := newBox("a", entity.NewMaterial("m"))
	b := newBox("b", entity.NewMaterial("m"))

	idA := s.AddEntity(a)
	idB := s.AddEntity(b)
	assert.NotZero(t, idA)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, idA, s.AddEntity(a))
	assert.Len(t, s.Entities(), 2)
	assert.Same(t, b, s.EntityByID(idB))
	assert.Same(t, a, s.EntityByName("a"))
	assert.Nil(t, s.EntityByName("missing"))

	a.Dispose()
	assert.Equal(t, []entity.Entity{b}, s.Entities())

	assert.True(t, s.RemoveEntity(b))
	assert.False(t, s.RemoveEntity(b))
	assert.Empty(t, s.Entities())
}

func TestCameras_ActiveSelection(t *testing.T) {
	s, _ := newTestScene(t)
	assert.Nil(t, s.ActiveCamera())

	c := s.CreateDefaultCamera()
	require.NotNil(t, c)
	assert.Same(t, c, s.ActiveCamera())
	assert.Contains(t, s.Cameras(), c)

	other := lookingDownZ("other")
	s.SetActiveCameras(c, other)
	assert.Equal(t, []camera.Camera{c, other}, s.ActiveCameras())
	assert.Contains(t, s.Cameras(), other)

	assert.True(t, s.RemoveCamera(c))
	assert.Nil(t, s.ActiveCamera())
	assert.Equal(t, []camera.Camera{other}, s.ActiveCameras())
}

func TestAddLight_RegistersShadowMap(t *testing.T) {
	s, _ := newTestScene(t)
	sun := light.NewLight("sun", light.LightTypeDirectional)
	g := light.NewShadowGenerator(sun, 256, nil)

	s.AddLight(sun)
	assert.Equal(t, []light.Light{sun}, s.Lights())
	assert.Contains(t, s.Textures(), g.ShadowMap())

	assert.True(t, s.RemoveLight(sun))
	assert.Empty(t, s.Lights())
}

func TestIsReady_FollowsPendingTokensAndEntities(t *testing.T) {
	s, _ := newTestScene(t)
	loading := newBox("loading", entity.NewMaterial("m"), entity.WithDelayLoading(true))
	s.AddEntity(loading)
	assert.False(t, s.IsReady())

	loading.SetDelayLoading(false)
	assert.True(t, s.IsReady())

	tok := pending.NewToken()
	s.Pending().AddPendingData(tok)
	assert.False(t, s.IsReady())
	require.NoError(t, s.Pending().RemovePendingData(tok))
	assert.True(t, s.IsReady())
}

func TestIsReady_WaitsForMaterials(t *testing.T) {
	s, _ := newTestScene(t)
	ready := false
	mat := entity.NewMaterial("slow", entity.WithMaterialReadyFunc(func(entity.Entity) bool { return ready }))
	s.AddEntity(newBox("box", mat))
	assert.False(t, s.IsReady())
	ready = true
	assert.True(t, s.IsReady())
}

func TestExecuteWhenReady_FiresOnceAfterLastToken(t *testing.T) {
	s, _ := newTestScene(t, WithPollInterval(5*time.Millisecond))
	tok := pending.NewToken()
	s.Pending().AddPendingData(tok)

	var mu sync.Mutex
	calls := 0
	s.ExecuteWhenReady(func() {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Zero(t, calls)
	mu.Unlock()

	require.NoError(t, s.Pending().RemovePendingData(tok))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
	assert.False(t, s.Pending().Polling())
}

func TestDispose_ReleasesEverything(t *testing.T) {
	s, _ := newTestScene(t)
	box := newBox("box", entity.NewMaterial("m"))
	s.AddEntity(box)
	rt := rendertarget.NewTexture("reflection", 64, 64)
	s.AddCustomRenderTarget(rt)
	queued := newDisposable()
	s.QueueForDisposal(queued)

	disposed := 0
	s.OnDispose().Add(func(Scene) { disposed++ })

	s.Dispose()
	s.Dispose()

	assert.True(t, s.IsDisposed())
	assert.Equal(t, 1, disposed)
	assert.True(t, box.IsDisposed())
	assert.True(t, rt.IsDisposed())
	assert.True(t, queued.IsDisposed())
	assert.Empty(t, s.Entities())
}

func TestDispose_StopsComputeWorkers(t *testing.T) {
	before := runtime.NumGoroutine()

	s := NewScene("workers", renderer.NewHeadless(64, 64), WithComputeWorkers(4))
	s.SetActiveCamera(lookingDownZ("cam"))
	for i := range 3 {
		sk := entity.NewSkeleton(fmt.Sprintf("rig%d", i), []entity.Bone{{Name: "root", ParentIndex: -1}})
		s.AddEntity(newBox(fmt.Sprintf("body%d", i), entity.NewMaterial("m"),
			entity.WithSkeleton(sk),
			entity.WithPosition(mgl32.Vec3{float32(i), 0, -10}),
		))
	}
	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Greater(t, runtime.NumGoroutine(), before)

	s.Dispose()
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWithConfig_AppliesSceneSection(t *testing.T) {
	off := false
	cfg := config.Scene{
		UseSelectionOctree: true,
		CollisionsEnabled:  &off,
		AutoClear:          &off,
		ClearColor:         [4]float32{1, 0, 0, 1},
		ComputeWorkers:     2,
		CollisionRetries:   5,
	}
	s, _ := newTestScene(t, WithConfig(cfg))

	f := s.Features()
	assert.True(t, f.SelectionOctreeRequired)
	assert.False(t, f.CollisionsEnabled)
	assert.False(t, f.AutoClear)
	assert.Equal(t, common.Color4{R: 1, A: 1}, s.ClearColor())

	impl := s.(*sceneImpl)
	assert.Equal(t, 2, impl.computeWorkers)
	assert.Equal(t, 5, impl.collisionRetry)
}
