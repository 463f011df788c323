package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViewScene(t *testing.T, name string, b renderer.Backend) scene.Scene {
	t.Helper()
	s := scene.NewScene(name, b)
	t.Cleanup(s.Dispose)
	s.SetActiveCamera(camera.NewCamera(name+"_cam",
		camera.WithPosition(mgl32.Vec3{0, 0, 0}),
		camera.WithTarget(mgl32.Vec3{0, 0, -1}),
	))
	positions, indices := entity.BoxGeometry(mgl32.Vec3{1, 1, 1})
	s.AddEntity(entity.NewMesh(name+"_box",
		entity.WithGeometry(positions, indices),
		entity.WithMaterial(entity.NewMaterial("m")),
		entity.WithPosition(mgl32.Vec3{0, 0, -10}),
	))
	return s
}

func drawnMeshes(h *renderer.Headless) []string {
	var out []string
	for _, d := range h.Draws() {
		out = append(out, d.Mesh.Name())
	}
	return out
}

func TestRenderOnce_NoBackend(t *testing.T) {
	e := NewEngine()
	assert.ErrorIs(t, e.RenderOnce(context.Background()), ErrNoBackend)
}

func TestRenderOnce_ScenesInZOrderWithinOneFrame(t *testing.T) {
	h := renderer.NewHeadless(800, 600)
	e := NewEngine(
		WithBackend(h),
		WithScene(10, newViewScene(t, "hud", h)),
		WithScene(-1, newViewScene(t, "world", h)),
	)

	require.NoError(t, e.RenderOnce(context.Background()))
	assert.Equal(t, []string{"world_box", "hud_box"}, drawnMeshes(h))

	ops := h.Ops()
	require.NotEmpty(t, ops)
	assert.Equal(t, renderer.OpBeginFrame, ops[0])
	assert.Equal(t, []renderer.Op{renderer.OpEndFrame, renderer.OpPresent}, ops[len(ops)-2:])
}

func TestRenderOnce_SceneFailureIsContained(t *testing.T) {
	h := renderer.NewHeadless(800, 600)
	m, err := profiler.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	log, hook := test.NewNullLogger()

	broken := scene.NewScene("broken", h)
	t.Cleanup(broken.Dispose)
	e := NewEngine(
		WithBackend(h),
		WithMetrics(m),
		WithLogger(log),
		WithScene(0, broken),
		WithScene(1, newViewScene(t, "ok", h)),
	)

	require.NoError(t, e.RenderOnce(context.Background()))
	assert.Equal(t, []string{"ok_box"}, drawnMeshes(h))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FrameErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Frames))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "broken", hook.LastEntry().Data["scene"])
}

func TestRenderOnce_SkipsDisposedScenes(t *testing.T) {
	h := renderer.NewHeadless(800, 600)
	gone := newViewScene(t, "gone", h)
	e := NewEngine(WithBackend(h), WithScene(0, gone), WithScene(1, newViewScene(t, "kept", h)))
	gone.Dispose()

	require.NoError(t, e.RenderOnce(context.Background()))
	assert.Equal(t, []string{"kept_box"}, drawnMeshes(h))
}

func TestRenderOnce_CanceledContext(t *testing.T) {
	h := renderer.NewHeadless(800, 600)
	e := NewEngine(WithBackend(h), WithScene(0, newViewScene(t, "s", h)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.RenderOnce(ctx), context.Canceled)
	assert.Empty(t, h.Draws())
	assert.Contains(t, h.Ops(), renderer.OpPresent)
}

func TestResize_UpdatesBackendAndCameras(t *testing.T) {
	h := renderer.NewHeadless(800, 600)
	s := newViewScene(t, "s", h)
	extra := camera.NewCamera("extra")
	s.AddCamera(extra)
	e := NewEngine(WithBackend(h), WithScene(0, s))

	e.Resize(1600, 800)
	w, ht := h.Size()
	assert.Equal(t, [2]int{1600, 800}, [2]int{w, ht})
	for _, c := range s.Cameras() {
		assert.InDelta(t, 2.0, c.Aspect(), 1e-6)
	}

	e.Resize(0, 100)
	w, _ = h.Size()
	assert.Equal(t, 1600, w)
}

func TestRun_HeadlessUntilQuit(t *testing.T) {
	h := renderer.NewHeadless(800, 600)
	s := newViewScene(t, "s", h)
	e := NewEngine(WithBackend(h), WithScene(0, s), WithTickRate(200), WithRenderFrameLimit(500))

	var ticks, frames atomic.Int32
	e.SetRenderCallback(func(float32) { frames.Add(1) })
	e.SetTickCallback(func(float32) {
		if ticks.Add(1) == 5 {
			e.Quit()
		}
	})

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}
	assert.GreaterOrEqual(t, ticks.Load(), int32(5))
	assert.Positive(t, frames.Load())
	assert.Greater(t, s.Statistics().RenderID, uint64(0))
	assert.False(t, s.Pending().Polling())

	e.Quit()
}

func TestSetTickRate_WhileRunning(t *testing.T) {
	e := NewEngine(WithBackend(renderer.NewHeadless(8, 8)), WithTickRate(1))

	var ticks atomic.Int32
	e.SetTickCallback(func(float32) { ticks.Add(1) })

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	require.Eventually(t, func() bool {
		impl := e.(*engine)
		impl.mu.RLock()
		defer impl.mu.RUnlock()
		return impl.running
	}, time.Second, time.Millisecond)

	e.SetTickRate(500)
	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	e.Quit()
	<-done
}

func TestScenesRegistry(t *testing.T) {
	h := renderer.NewHeadless(8, 8)
	s := newViewScene(t, "s", h)
	e := NewEngine()

	e.AddScene(3, s)
	e.AddScene(4, nil)
	assert.Same(t, s, e.Scene(3))
	assert.Len(t, e.Scenes(), 1)

	cp := e.Scenes()
	delete(cp, 3)
	assert.NotNil(t, e.Scene(3))

	e.RemoveScene(3)
	assert.Nil(t, e.Scene(3))
}

func TestWithConfig(t *testing.T) {
	e := NewEngine(WithConfig(config.Engine{TickRate: 120, RenderFrameLimit: 50, Profiling: true})).(*engine)
	assert.Equal(t, time.Second/120, e.engineTickRate)
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)
	assert.True(t, e.profilingEnabled)

	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}
