package scene

import (
	"context"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStrategies = []common.CullingStrategy{
	common.CullingStandard,
	common.CullingBoundingSphereOnly,
	common.CullingOptimisticInclusion,
	common.CullingOptimisticInclusionThenSphere,
}

func TestEvaluate_CullsEntitiesOutsideFrustum(t *testing.T) {
	outside := map[string]mgl32.Vec3{
		"behind": {0, 0, 20},
		"left":   {-200, 0, -10},
		"right":  {200, 0, -10},
		"above":  {0, 200, -10},
		"below":  {0, -200, -10},
		"beyond": {0, 0, -5000},
	}

	for _, strategy := range allStrategies {
		t.Run(fmt.Sprint(strategy), func(t *testing.T) {
			s, _ := newTestScene(t)
			s.SetActiveCamera(lookingDownZ("cam"))
			s.AddEntity(newBox("visible", entity.NewMaterial("m"),
				entity.WithPosition(mgl32.Vec3{0, 0, -10}),
				entity.WithCullingStrategy(strategy),
			))
			for name, p := range outside {
				s.AddEntity(newBox(name, entity.NewMaterial("m"),
					entity.WithPosition(p),
					entity.WithCullingStrategy(strategy),
				))
			}

			require.NoError(t, s.RenderFrame(context.Background()))
			assert.Equal(t, []string{"visible"}, activeNames(s))
		})
	}
}

func TestEvaluate_OptimisticAgreesWithStandardWhenCenterInside(t *testing.T) {
	// Centers inside the frustum, including one whose box crosses the left plane.
	positions := []mgl32.Vec3{{0, 0, -10}, {-3.9, 0, -10}, {0, 0, -999}}

	include := func(strategy common.CullingStrategy) []string {
		s, _ := newTestScene(t)
		s.SetActiveCamera(lookingDownZ("cam"))
		for i, p := range positions {
			s.AddEntity(newBox(fmt.Sprintf("box%d", i), entity.NewMaterial("m"),
				entity.WithPosition(p),
				entity.WithCullingStrategy(strategy),
			))
		}
		require.NoError(t, s.RenderFrame(context.Background()))
		return activeNames(s)
	}

	standard := include(common.CullingStandard)
	assert.Len(t, standard, len(positions))
	assert.Equal(t, standard, include(common.CullingOptimisticInclusion))
	assert.Equal(t, standard, include(common.CullingOptimisticInclusionThenSphere))
}

func TestEvaluate_SkipsBlockedAndNotReady(t *testing.T) {
	s, _ := newTestScene(t)
	s.SetActiveCamera(lookingDownZ("cam"))
	at := entity.WithPosition(mgl32.Vec3{0, 0, -10})

	blocked := newBox("blocked", entity.NewMaterial("m"), at)
	blocked.SetBlocked(true)
	s.AddEntity(blocked)
	s.AddEntity(newBox("loading", entity.NewMaterial("m"), at, entity.WithReadyFunc(func() bool { return false })))
	s.AddEntity(newBox("hidden", entity.NewMaterial("m"), at, entity.WithVisible(false)))
	s.AddEntity(newBox("faded", entity.NewMaterial("m"), at, entity.WithVisibility(0)))
	s.AddEntity(newBox("disabled", entity.NewMaterial("m"), at, entity.WithEnabled(false)))
	s.AddEntity(newBox("masked", entity.NewMaterial("m"), at, entity.WithLayerMask(0x10000000)))
	s.AddEntity(newBox("shown", entity.NewMaterial("m"), at))

	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Equal(t, []string{"shown"}, activeNames(s))

	// Blocked entities are not counted; not-ready ones are.
	assert.Equal(t, 6*24, s.Statistics().TotalVertices)
	assert.Equal(t, 1, s.Statistics().ActiveEntities)
}

func TestEvaluate_MaterialGatesDispatchButNotCounts(t *testing.T) {
	s, h := newTestScene(t)
	s.SetActiveCamera(lookingDownZ("cam"))
	at := entity.WithPosition(mgl32.Vec3{0, 0, -10})
	slow := entity.NewMaterial("slow", entity.WithMaterialReadyFunc(func(entity.Entity) bool { return false }))

	s.AddEntity(newBox("bare", nil, at))
	s.AddEntity(newBox("waiting", slow, at))
	s.AddEntity(newBox("drawn", entity.NewMaterial("m"), at))

	require.NoError(t, s.RenderFrame(context.Background()))
	assert.ElementsMatch(t, []string{"bare", "waiting", "drawn"}, activeNames(s))
	require.Len(t, h.Draws(), 1)
	assert.Equal(t, "drawn", h.Draws()[0].Mesh.Name())

	st := s.Statistics()
	assert.Equal(t, 3*24, st.ActiveVertices)
	assert.Equal(t, 3*36, st.ActiveIndices)
	assert.Equal(t, 1, st.DrawCalls)
}

func TestEvaluate_SubMeshFrustumTest(t *testing.T) {
	s, h := newTestScene(t)
	s.SetActiveCamera(lookingDownZ("cam"))

	// Two separate quads far apart in one mesh: only the one ahead of the camera is drawn.
	positions := []mgl32.Vec3{
		{-1, -1, -10}, {1, -1, -10}, {1, 1, -10}, {-1, 1, -10},
		{-1, -1, 10}, {1, -1, 10}, {1, 1, 10}, {-1, 1, 10},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}
	m := entity.NewMesh("split", entity.WithGeometry(positions, indices), entity.WithMaterial(entity.NewMaterial("m")))
	m.ClearSubMeshes()
	front := m.AddSubMesh(0, 0, 4, 0, 6)
	m.AddSubMesh(0, 4, 4, 6, 6)
	m.ComputeWorldMatrix(true)
	s.AddEntity(m)

	require.NoError(t, s.RenderFrame(context.Background()))
	require.Len(t, h.Draws(), 1)
	assert.Same(t, front, h.Draws()[0].SubMesh)
	assert.Equal(t, 6, s.Statistics().ActiveIndices)
}

func TestEvaluate_InstancesActivateSourceOnce(t *testing.T) {
	s, h := newTestScene(t)
	s.SetActiveCamera(lookingDownZ("cam"))
	src := newBox("tree", entity.NewMaterial("bark"), entity.WithPosition(mgl32.Vec3{0, 0, -10}))
	s.AddEntity(src)
	for i, x := range []float32{-2, 2} {
		inst := src.CreateInstance(fmt.Sprintf("tree%d", i))
		inst.SetPosition(mgl32.Vec3{x, 0, -10})
		s.AddEntity(inst)
	}

	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Len(t, activeNames(s), 3)
	require.Len(t, h.Draws(), 1)
	assert.Equal(t, 3, h.Draws()[0].InstanceCount())
}

func TestEvaluate_BoundingBoxesCollected(t *testing.T) {
	s, h := newTestScene(t)
	s.SetActiveCamera(lookingDownZ("cam"))
	s.AddEntity(newBox("debug", entity.NewMaterial("m"),
		entity.WithPosition(mgl32.Vec3{0, 0, -10}),
		entity.WithShowBoundingBox(true),
	))
	s.AddEntity(newBox("plain", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{1, 0, -10})))

	require.NoError(t, s.RenderFrame(context.Background()))
	var boxes int
	for _, c := range h.Calls() {
		boxes += c.Boxes
	}
	assert.Equal(t, 1, boxes)
}

func TestEvaluate_SelectionOctreeMatchesLinearScan(t *testing.T) {
	build := func(withIndex bool) []string {
		s, _ := newTestScene(t)
		s.SetActiveCamera(lookingDownZ("cam"))
		for x := -4; x <= 4; x++ {
			for z := -4; z <= 4; z++ {
				s.AddEntity(newBox(fmt.Sprintf("b_%d_%d", x, z), entity.NewMaterial("m"),
					entity.WithPosition(mgl32.Vec3{float32(x) * 6, 0, float32(z) * 6}),
				))
			}
		}
		if withIndex {
			o := s.CreateOrUpdateSelectionOctree(4, 2)
			require.NotNil(t, o)
			assert.NotNil(t, s.SelectionIndex())
		}
		require.NoError(t, s.RenderFrame(context.Background()))
		return activeNames(s)
	}

	linear := build(false)
	require.NotEmpty(t, linear)
	assert.ElementsMatch(t, linear, build(true))
}

func TestEvaluate_SelectionOctreeTracksRegistry(t *testing.T) {
	s, _ := newTestScene(t)
	s.SetActiveCamera(lookingDownZ("cam"))
	a := newBox("a", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{0, 0, -10}))
	s.AddEntity(a)
	require.NotNil(t, s.CreateOrUpdateSelectionOctree(4, 2))

	late := newBox("late", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{1, 0, -10}))
	farther := newBox("farther", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{0, 0, -40}))
	s.AddEntity(late)
	s.AddEntity(farther)
	require.NoError(t, s.RenderFrame(context.Background()))
	assert.ElementsMatch(t, []string{"a", "late", "farther"}, activeNames(s))

	assert.True(t, s.RemoveEntity(a))
	late.Dispose()
	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Equal(t, []string{"farther"}, activeNames(s))
}

func TestWorldExtends(t *testing.T) {
	s, _ := newTestScene(t)
	s.AddEntity(newBox("a", nil, entity.WithPosition(mgl32.Vec3{-5, 0, 0})))
	s.AddEntity(newBox("b", nil, entity.WithPosition(mgl32.Vec3{5, 2, 1})))

	lo, hi := s.WorldExtends()
	assert.InDelta(t, -5.5, lo[0], 1e-5)
	assert.InDelta(t, -0.5, lo[1], 1e-5)
	assert.InDelta(t, 5.5, hi[0], 1e-5)
	assert.InDelta(t, 2.5, hi[1], 1e-5)
	assert.InDelta(t, 1.5, hi[2], 1e-5)
}
