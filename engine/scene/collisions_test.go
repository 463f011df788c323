package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveWithCollisions_Disabled(t *testing.T) {
	f := DefaultFeatures()
	f.CollisionsEnabled = false
	s, _ := newTestScene(t, WithFeatures(f))
	wall := newBox("wall", entity.NewMaterial("m"), entity.WithCheckCollisions(true), entity.WithPosition(mgl32.Vec3{2, 0, 0}))
	mover := newBox("mover", nil)
	s.AddEntity(wall)
	s.AddEntity(mover)

	pos, hit := s.MoveWithCollisions(mover, mgl32.Vec3{5, 0, 0})
	assert.Nil(t, hit)
	assert.Equal(t, mgl32.Vec3{5, 0, 0}, pos)
}

func TestMoveWithCollisions_Unobstructed(t *testing.T) {
	s, _ := newTestScene(t)
	mover := newBox("mover", nil, entity.WithEllipsoid(mgl32.Vec3{0.5, 1, 0.5}))
	s.AddEntity(mover)

	pos, hit := s.MoveWithCollisions(mover, mgl32.Vec3{1, 0, 0})
	assert.Nil(t, hit)
	assert.InDelta(t, 1, pos[0], 1e-4)
	assert.InDelta(t, 0, pos[1], 1e-4)
}

func TestMoveWithCollisions_LandsOnGround(t *testing.T) {
	s, _ := newTestScene(t)
	positions, indices := entity.BoxGeometry(mgl32.Vec3{20, 1, 20})
	ground := entity.NewMesh("ground",
		entity.WithGeometry(positions, indices),
		entity.WithMaterial(entity.NewMaterial("dirt")),
		entity.WithPosition(mgl32.Vec3{0, -0.5, 0}),
		entity.WithCheckCollisions(true),
	)
	mover := newBox("mover", nil,
		entity.WithPosition(mgl32.Vec3{0, 3, 0}),
		entity.WithEllipsoid(mgl32.Vec3{0.5, 1, 0.5}),
	)
	s.AddEntity(ground)
	s.AddEntity(mover)

	collided := 0
	mover.OnCollide().Add(func(other entity.Entity) {
		assert.Same(t, ground, other)
		collided++
	})

	pos, hit := s.MoveWithCollisions(mover, mgl32.Vec3{0, -5, 0})
	require.NotNil(t, hit)
	assert.Same(t, ground, hit)
	assert.Equal(t, 1, collided)
	assert.Greater(t, pos[1], float32(1.5))
	assert.Less(t, pos[1], float32(2.5))
}

func TestMoveWithCollisions_NilEntity(t *testing.T) {
	s, _ := newTestScene(t)
	pos, hit := s.MoveWithCollisions(nil, mgl32.Vec3{1, 0, 0})
	assert.Nil(t, hit)
	assert.Equal(t, mgl32.Vec3{}, pos)
}
