package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBox(name string, mat entity.Material, options ...entity.MeshBuilderOption) entity.Mesh {
	positions, indices := entity.BoxGeometry(mgl32.Vec3{1, 1, 1})
	opts := append([]entity.MeshBuilderOption{
		entity.WithGeometry(positions, indices),
		entity.WithMaterial(mat),
	}, options...)
	return entity.NewMesh(name, opts...)
}

func lookingDownZ() camera.Camera {
	return camera.NewCamera("cam",
		camera.WithPosition(mgl32.Vec3{0, 0, 0}),
		camera.WithTarget(mgl32.Vec3{0, 0, -1}),
	)
}

func drawnNames(h *Headless) []string {
	var out []string
	for _, d := range h.Draws() {
		out = append(out, d.Mesh.Name())
	}
	return out
}

func TestDispatch_BucketsByModeAndGroup(t *testing.T) {
	d := NewRenderDispatcher()
	opaque := newBox("opaque", entity.NewMaterial("solid"))
	tested := newBox("tested", entity.NewMaterial("leaves", entity.WithAlphaTest(true)))
	glass := newBox("glass", entity.NewMaterial("glass", entity.WithBaseColor([4]float32{1, 1, 1, 0.4})))
	ghost := newBox("ghost", entity.NewMaterial("solid2"), entity.WithVisibility(0.5))
	overlay := newBox("overlay", entity.NewMaterial("hud"), entity.WithRenderGroupID(2))

	d.Reset(1)
	for _, m := range []entity.Mesh{opaque, tested, glass, ghost, overlay} {
		d.Dispatch(m.SubMeshes()[0])
	}

	assert.Equal(t, 5, d.Len())
	assert.Equal(t, []*entity.SubMesh{opaque.SubMeshes()[0]}, d.Items(0, BlendOpaque))
	assert.Equal(t, []*entity.SubMesh{tested.SubMeshes()[0]}, d.Items(0, BlendAlphaTest))
	assert.ElementsMatch(t, []*entity.SubMesh{glass.SubMeshes()[0], ghost.SubMeshes()[0]}, d.Items(0, BlendAlpha))
	assert.Equal(t, []*entity.SubMesh{overlay.SubMeshes()[0]}, d.Items(2, BlendOpaque))

	d.Reset(2)
	assert.Zero(t, d.Len())
	assert.Empty(t, d.Items(0, BlendOpaque))
}

func TestDispatch_IgnoresMissingMaterial(t *testing.T) {
	d := NewRenderDispatcher()
	bare := newBox("bare", nil)
	d.Reset(1)
	d.Dispatch(bare.SubMeshes()[0])
	d.Dispatch(nil)
	assert.Zero(t, d.Len())
}

func TestClampGroupID(t *testing.T) {
	assert.Equal(t, 0, ClampGroupID(-3))
	assert.Equal(t, 2, ClampGroupID(2))
	assert.Equal(t, MaxRenderingGroups-1, ClampGroupID(9))

	d := NewRenderDispatcher()
	far := newBox("far", entity.NewMaterial("m"), entity.WithRenderGroupID(9))
	d.Reset(1)
	d.Dispatch(far.SubMeshes()[0])
	assert.Len(t, d.Items(3, BlendOpaque), 1)
}

func TestRender_OpaqueThenAlphaTestThenHooksThenTransparent(t *testing.T) {
	d := NewRenderDispatcher()
	h := NewHeadless(640, 480)
	glass := newBox("glass", entity.NewMaterial("glass", entity.WithBaseColor([4]float32{1, 1, 1, 0.5})), entity.WithPosition(mgl32.Vec3{0, 0, -5}))
	tested := newBox("tested", entity.NewMaterial("leaves", entity.WithAlphaTest(true)), entity.WithPosition(mgl32.Vec3{0, 0, -5}))
	opaque := newBox("opaque", entity.NewMaterial("solid"), entity.WithPosition(mgl32.Vec3{0, 0, -5}))

	d.Reset(1)
	for _, m := range []entity.Mesh{glass, tested, opaque} {
		d.Dispatch(m.SubMeshes()[0])
	}

	var order []string
	hooks := GroupHooks{
		Sprites: func(id int) error {
			if id == 0 {
				order = append(order, "sprites:"+drawnNames(h)[len(drawnNames(h))-1])
			}
			return nil
		},
		Particles: func(id int) error {
			if id == 0 {
				order = append(order, "particles")
			}
			return nil
		},
	}
	draws, err := d.Render(h, lookingDownZ(), hooks)
	require.NoError(t, err)

	assert.Equal(t, 3, draws)
	assert.Equal(t, []string{"opaque", "tested", "glass"}, drawnNames(h))
	assert.Equal(t, []string{"sprites:tested", "particles"}, order)

	items := h.Draws()
	assert.Equal(t, BlendOpaque, items[0].Mode)
	assert.Equal(t, BlendAlphaTest, items[1].Mode)
	assert.Equal(t, BlendAlpha, items[2].Mode)
	assert.Equal(t, 1, items[0].InstanceCount())
}

func TestRender_GroupsAscendingWithDepthClear(t *testing.T) {
	h := NewHeadless(640, 480)
	front := newBox("front", entity.NewMaterial("a"), entity.WithRenderGroupID(1))
	back := newBox("back", entity.NewMaterial("b"))

	d := NewRenderDispatcher()
	d.Reset(1)
	d.Dispatch(front.SubMeshes()[0])
	d.Dispatch(back.SubMeshes()[0])
	_, err := d.Render(h, lookingDownZ(), GroupHooks{})
	require.NoError(t, err)

	assert.Equal(t, []Op{OpDraw, OpClear, OpDraw}, h.Ops())
	clearCall := h.Calls()[1]
	assert.False(t, clearCall.ClearBackBuffer)
	assert.True(t, clearCall.ClearDepth)
	assert.True(t, clearCall.ClearStencil)
	assert.Equal(t, []string{"back", "front"}, drawnNames(h))

	h.Reset()
	noClear := NewRenderDispatcher(WithAutoClearDepthBetweenGroups(false))
	noClear.Reset(1)
	noClear.Dispatch(front.SubMeshes()[0])
	noClear.Dispatch(back.SubMeshes()[0])
	_, err = noClear.Render(h, lookingDownZ(), GroupHooks{})
	require.NoError(t, err)
	assert.Equal(t, []Op{OpDraw, OpDraw}, h.Ops())
}

func TestRender_OpaqueBatchedByMaterial(t *testing.T) {
	h := NewHeadless(640, 480)
	red, blue := entity.NewMaterial("red"), entity.NewMaterial("blue")
	a1 := newBox("a1", red)
	b1 := newBox("b1", blue)
	a2 := newBox("a2", red)

	d := NewRenderDispatcher()
	d.Reset(1)
	for _, m := range []entity.Mesh{a1, b1, a2} {
		d.Dispatch(m.SubMeshes()[0])
	}
	_, err := d.Render(h, lookingDownZ(), GroupHooks{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "b1"}, drawnNames(h))
}

func TestRender_TransparentAlphaIndexThenFarthestFirst(t *testing.T) {
	h := NewHeadless(640, 480)
	glass := func() entity.Material {
		return entity.NewMaterial("glass", entity.WithBaseColor([4]float32{1, 1, 1, 0.5}))
	}
	near := newBox("near", glass(), entity.WithPosition(mgl32.Vec3{0, 0, -5}))
	far := newBox("far", glass(), entity.WithPosition(mgl32.Vec3{0, 0, -20}))
	middle := newBox("middle", glass(), entity.WithPosition(mgl32.Vec3{0, 0, -10}))
	pinned := newBox("pinned", glass(), entity.WithPosition(mgl32.Vec3{0, 0, -2}), entity.WithAlphaIndex(1))

	d := NewRenderDispatcher()
	d.Reset(1)
	for _, m := range []entity.Mesh{near, far, pinned, middle} {
		d.Dispatch(m.SubMeshes()[0])
	}
	_, err := d.Render(h, lookingDownZ(), GroupHooks{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pinned", "far", "middle", "near"}, drawnNames(h))
}

func TestRender_InstancesDrawOnceWithCount(t *testing.T) {
	h := NewHeadless(640, 480)
	src := newBox("src", entity.NewMaterial("m"))
	a := src.CreateInstance("a")
	b := src.CreateInstance("b")

	src.PreActivate(1)
	require.True(t, src.Activate(4, src))
	require.False(t, a.Activate(4, src))
	require.False(t, b.Activate(4, src))

	d := NewRenderDispatcher()
	d.Reset(4)
	d.Dispatch(src.SubMeshes()[0])
	draws, err := d.Render(h, lookingDownZ(), GroupHooks{})
	require.NoError(t, err)
	assert.Equal(t, 1, draws)
	require.Len(t, h.Draws(), 1)
	assert.Equal(t, 3, h.Draws()[0].InstanceCount())
}

func TestRender_PropagatesErrors(t *testing.T) {
	h := NewHeadless(640, 480)
	boom := errors.New("boom")
	h.DrawErr = boom

	d := NewRenderDispatcher()
	d.Reset(1)
	d.Dispatch(newBox("box", entity.NewMaterial("m")).SubMeshes()[0])
	_, err := d.Render(h, lookingDownZ(), GroupHooks{})
	assert.ErrorIs(t, err, boom)

	h.DrawErr = nil
	hookErr := errors.New("sprites failed")
	_, err = d.Render(h, lookingDownZ(), GroupHooks{Sprites: func(int) error { return hookErr }})
	assert.ErrorIs(t, err, hookErr)

	_, err = d.Render(h, nil, GroupHooks{})
	assert.Error(t, err)
}

func TestHeadless_FrameInFlight(t *testing.T) {
	h := NewHeadless(10, 10)
	require.NoError(t, h.BeginFrame())
	assert.ErrorIs(t, h.BeginFrame(), ErrFrameInFlight)
	require.NoError(t, h.EndFrame())
	h.Present()
	assert.NoError(t, h.BeginFrame())

	h.SetViewport(common.Viewport{X: 0.5, Width: 0.5, Height: 1})
	assert.Equal(t, OpViewport, h.Calls()[len(h.Calls())-1].Op)
}

func TestParsePresentMode(t *testing.T) {
	m, err := ParsePresentMode("uncapped")
	require.NoError(t, err)
	assert.Equal(t, PresentModeUncapped, m)

	m, err = ParsePresentMode("vsync")
	require.NoError(t, err)
	assert.Equal(t, PresentModeVSync, m)

	_, err = ParsePresentMode("triple")
	assert.Error(t, err)
}

func TestGPUDrawUniform_Marshal(t *testing.T) {
	u := GPUDrawUniform{ViewProj: mgl32.Ident4(), Color: [4]float32{1, 0.5, 0.25, 1}}
	buf := u.Marshal()
	assert.Len(t, buf, 80)
	assert.Equal(t, 80, u.Size())
}
