package collision

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubMesh struct {
	info        *common.BoundingInfo
	indexStart  int
	indexCount  int
	hasMaterial bool
	cache       Cache
	vertexCount int
}

func (s *fakeSubMesh) BoundingInfo() *common.BoundingInfo { return s.info }
func (s *fakeSubMesh) IndexRange() (int, int)             { return s.indexStart, s.indexCount }
func (s *fakeSubMesh) VertexRange() (int, int)            { return 0, s.vertexCount }
func (s *fakeSubMesh) HasMaterial() bool                  { return s.hasMaterial }
func (s *fakeSubMesh) CollisionCache() *Cache             { return &s.cache }

type fakeMesh struct {
	enabled   bool
	collide   bool
	world     mgl32.Mat4
	positions []mgl32.Vec3
	indices   []uint32
	info      *common.BoundingInfo
	subMeshes []SubMesh
}

func (m *fakeMesh) IsEnabled() bool                    { return m.enabled }
func (m *fakeMesh) CheckCollisions() bool              { return m.collide }
func (m *fakeMesh) BoundingInfo() *common.BoundingInfo { return m.info }
func (m *fakeMesh) WorldMatrix() mgl32.Mat4            { return m.world }
func (m *fakeMesh) Positions() []mgl32.Vec3            { return m.positions }
func (m *fakeMesh) Indices() []uint32                  { return m.indices }
func (m *fakeMesh) CollisionCandidates(mgl32.Vec3, float32) []SubMesh {
	return m.subMeshes
}

// newWall builds a 10x10 quad in the plane x = 0 facing -x, moved by world.
func newWall(world mgl32.Mat4) *fakeMesh {
	positions := []mgl32.Vec3{{0, -5, -5}, {0, 5, -5}, {0, 5, 5}, {0, -5, 5}}
	info := common.NewBoundingInfo(mgl32.Vec3{0, -5, -5}, mgl32.Vec3{0, 5, 5})
	info.Update(world)
	return &fakeMesh{
		enabled:   true,
		collide:   true,
		world:     world,
		positions: positions,
		indices:   []uint32{0, 1, 2, 0, 2, 3},
		info:      info,
		subMeshes: []SubMesh{&fakeSubMesh{info: info, indexCount: 6, vertexCount: 4}},
	}
}

func TestGetNewPosition_Unobstructed(t *testing.T) {
	s := NewSolver()
	c := NewCollider(mgl32.Vec3{0.5, 1, 0.5})

	res := s.GetNewPosition(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, c, DefaultMaxRetry, nil, nil)

	assert.InDelta(t, 1, res.Position[0], 1e-6)
	assert.InDelta(t, 0, res.Position[1], 1e-6)
	assert.InDelta(t, 0, res.Position[2], 1e-6)
	assert.Nil(t, res.Collided)
	assert.Equal(t, 1, res.Attempts)
}

func TestGetNewPosition_UnitRadiusUnobstructed(t *testing.T) {
	res := NewSolver().GetNewPosition(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, NewCollider(mgl32.Vec3{1, 1, 1}), 3, nil, nil)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, res.Position)
	assert.LessOrEqual(t, res.Attempts, 4)
}

func TestGetNewPosition_StopsAtWall(t *testing.T) {
	wall := newWall(mgl32.Translate3D(2, 0, 0))
	s := NewSolver()
	c := NewCollider(mgl32.Vec3{0.5, 0.5, 0.5})

	res := s.GetNewPosition(mgl32.Vec3{}, mgl32.Vec3{5, 0, 0}, c, DefaultMaxRetry, []Collidable{wall}, nil)

	assert.Less(t, res.Position[0], float32(1.5))
	assert.Greater(t, res.Position[0], float32(1.45))
	assert.Same(t, wall, res.Collided)
	assert.LessOrEqual(t, res.Attempts, DefaultMaxRetry+1)
}

func TestGetNewPosition_SlidesAlongWall(t *testing.T) {
	wall := newWall(mgl32.Translate3D(2, 0, 0))
	s := NewSolver()
	c := NewCollider(mgl32.Vec3{0.5, 0.5, 0.5})

	res := s.GetNewPosition(mgl32.Vec3{}, mgl32.Vec3{4, 0, 2}, c, DefaultMaxRetry, []Collidable{wall}, nil)

	assert.Less(t, res.Position[0], float32(1.5))
	assert.Greater(t, res.Position[2], float32(0.5), "tangential motion survives the slide")
	assert.Same(t, wall, res.Collided)
}

func TestGetNewPosition_SkipsExcludedAndDisabled(t *testing.T) {
	wall := newWall(mgl32.Translate3D(2, 0, 0))
	s := NewSolver()
	c := NewCollider(mgl32.Vec3{0.5, 0.5, 0.5})

	res := s.GetNewPosition(mgl32.Vec3{}, mgl32.Vec3{5, 0, 0}, c, DefaultMaxRetry, []Collidable{wall}, wall)
	assert.InDelta(t, 5, res.Position[0], 1e-5)
	assert.Nil(t, res.Collided)

	wall.enabled = false
	res = s.GetNewPosition(mgl32.Vec3{}, mgl32.Vec3{5, 0, 0}, c, DefaultMaxRetry, []Collidable{wall}, nil)
	assert.InDelta(t, 5, res.Position[0], 1e-5)
}

func TestGetNewPosition_BoundedAttempts(t *testing.T) {
	// A box of four walls around the origin; every sweep hits something.
	walls := []Collidable{
		newWall(mgl32.Translate3D(1, 0, 0)),
		newWall(mgl32.Translate3D(-1, 0, 0).Mul4(mgl32.HomogRotate3DY(math.Pi))),
		newWall(mgl32.Translate3D(0, 0, 1).Mul4(mgl32.HomogRotate3DY(-math.Pi / 2))),
		newWall(mgl32.Translate3D(0, 0, -1).Mul4(mgl32.HomogRotate3DY(math.Pi / 2))),
	}
	s := NewSolver()

	for i := range 16 {
		angle := float64(i) * math.Pi / 8
		d := mgl32.Vec3{float32(math.Cos(angle)) * 10, 0, float32(math.Sin(angle)) * 10}
		c := NewCollider(mgl32.Vec3{0.25, 0.25, 0.25})

		res := s.GetNewPosition(mgl32.Vec3{}, d, c, DefaultMaxRetry, walls, nil)
		require.LessOrEqual(t, res.Attempts, DefaultMaxRetry+1)
		assert.Less(t, res.Position.Len(), float32(1.5), "mover stays inside the box")
	}
}

func TestGetNewPosition_ZeroRetryKeepsPosition(t *testing.T) {
	s := NewSolver()
	c := NewCollider(mgl32.Vec3{1, 1, 1})

	res := s.GetNewPosition(mgl32.Vec3{3, 0, 0}, mgl32.Vec3{1, 0, 0}, c, 0, nil, nil)
	assert.Equal(t, mgl32.Vec3{3, 0, 0}, res.Position)
	assert.Equal(t, 1, res.Attempts)
}

func TestCollider_CacheReusedForSameTransform(t *testing.T) {
	wall := newWall(mgl32.Translate3D(2, 0, 0))
	sm := wall.subMeshes[0].(*fakeSubMesh)
	s := NewSolver()

	s.GetNewPosition(mgl32.Vec3{}, mgl32.Vec3{5, 0, 0}, NewCollider(mgl32.Vec3{0.5, 0.5, 0.5}), DefaultMaxRetry, []Collidable{wall}, nil)
	require.True(t, sm.cache.valid)
	first := sm.cache.transform

	s.GetNewPosition(mgl32.Vec3{}, mgl32.Vec3{5, 0, 0}, NewCollider(mgl32.Vec3{1, 1, 1}), DefaultMaxRetry, []Collidable{wall}, nil)
	assert.NotEqual(t, first, sm.cache.transform, "a new radius rebuilds the collider-space vertices")
}

func TestLowestRoot(t *testing.T) {
	r, ok := lowestRoot(1, -3, 2, 5)
	require.True(t, ok)
	assert.InDelta(t, 1, r, 1e-6)

	_, ok = lowestRoot(1, 0, 1, 5)
	assert.False(t, ok)

	r, ok = lowestRoot(1, -3, 2, 1.5)
	require.True(t, ok)
	assert.InDelta(t, 1, r, 1e-6)

	_, ok = lowestRoot(1, -3, 2, 0.5)
	assert.False(t, ok)
}
