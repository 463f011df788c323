package scene

import (
	"context"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIntersections_EnterThenExit(t *testing.T) {
	s, _ := newTestScene(t)
	s.SetActiveCamera(lookingDownZ("cam"))
	source := newBox("source", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{0, 0, -10}))
	target := newBox("target", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{0.5, 0, -10}))
	s.AddEntity(source)
	s.AddEntity(target)

	var enters, exits int
	source.RegisterAction(entity.NewIntersectionAction(entity.TriggerOnIntersectionEnter, target, false, func(evt entity.ActionEvent) {
		assert.Same(t, source, evt.Source)
		assert.Same(t, target, evt.Target)
		enters++
	}))
	source.RegisterAction(entity.NewIntersectionAction(entity.TriggerOnIntersectionExit, target, false, func(entity.ActionEvent) {
		exits++
	}))

	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Equal(t, 1, enters)
	assert.Zero(t, exits)
	assert.True(t, source.IsIntersectionInProgress(target))

	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Equal(t, 1, enters)
	assert.Zero(t, exits)

	target.SetPosition(mgl32.Vec3{50, 0, -10})
	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Equal(t, 1, enters)
	assert.Equal(t, 1, exits)
	assert.False(t, source.IsIntersectionInProgress(target))

	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Equal(t, 1, exits)
}

func TestCheckIntersections_ExitArmsSilently(t *testing.T) {
	s, _ := newTestScene(t)
	s.SetActiveCamera(lookingDownZ("cam"))
	source := newBox("source", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{0, 0, -10}))
	target := newBox("target", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{0.5, 0, -10}))
	s.AddEntity(source)
	s.AddEntity(target)

	exits := 0
	source.RegisterAction(entity.NewIntersectionAction(entity.TriggerOnIntersectionExit, target, false, func(entity.ActionEvent) {
		exits++
	}))

	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Zero(t, exits)
	assert.True(t, source.IsIntersectionInProgress(target))

	target.SetPosition(mgl32.Vec3{50, 0, -10})
	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Equal(t, 1, exits)
}

func TestCheckIntersections_NoExitWithoutEnter(t *testing.T) {
	s, _ := newTestScene(t)
	s.SetActiveCamera(lookingDownZ("cam"))
	source := newBox("source", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{0, 0, -10}))
	target := newBox("target", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{50, 0, -10}))
	s.AddEntity(source)
	s.AddEntity(target)

	fired := 0
	source.RegisterAction(entity.NewIntersectionAction(entity.TriggerOnIntersectionExit, target, true, func(entity.ActionEvent) {
		fired++
	}))

	for range 3 {
		require.NoError(t, s.RenderFrame(context.Background()))
	}
	assert.Zero(t, fired)
	assert.False(t, source.IsIntersectionInProgress(target))
}

func TestCheckIntersections_OffscreenSourcesStillChecked(t *testing.T) {
	s, _ := newTestScene(t)
	s.SetActiveCamera(lookingDownZ("cam"))
	source := newBox("source", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{0, 0, 30}))
	target := newBox("target", entity.NewMaterial("m"), entity.WithPosition(mgl32.Vec3{0, 0.5, 30}))
	s.AddEntity(source)
	s.AddEntity(target)

	enters := 0
	source.RegisterAction(entity.NewIntersectionAction(entity.TriggerOnIntersectionEnter, target, false, func(entity.ActionEvent) {
		enters++
	}))

	require.NoError(t, s.RenderFrame(context.Background()))
	assert.Empty(t, activeNames(s))
	assert.Equal(t, 1, enters)
}
