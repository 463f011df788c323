package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEngine struct {
	steps []float32
}

func (r *recordingEngine) Step(seconds float32) {
	r.steps = append(r.steps, seconds)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, MinStep, Clamp(0))
	assert.Equal(t, MinStep, Clamp(-1))
	assert.Equal(t, MinStep, Clamp(0.001))
	assert.Equal(t, float32(0.05), Clamp(0.05))
	assert.Equal(t, MaxStep, Clamp(1))
	assert.Equal(t, MaxStep, Clamp(1000))
}

func TestStepper_ClampsLongFrames(t *testing.T) {
	eng := &recordingEngine{}
	s := NewStepper(eng)

	assert.Equal(t, MaxStep, s.Step(2.5))
	assert.Equal(t, MinStep, s.Step(0.004))
	assert.Equal(t, []float32{MaxStep, MinStep}, eng.steps)
	assert.Equal(t, MinStep, s.LastStep())
}

func TestStepper_SubSteps(t *testing.T) {
	eng := &recordingEngine{}
	s := NewStepper(eng, WithSubStep(0.04))

	s.Step(0.1)
	require.Len(t, eng.steps, 3)
	var total float32
	for _, st := range eng.steps {
		assert.LessOrEqual(t, st, float32(0.04))
		total += st
	}
	assert.InDelta(t, 0.1, total, 1e-6)
}

func TestStepper_Disabled(t *testing.T) {
	calls := 0
	s := NewStepper(EngineFunc(func(float32) { calls++ }), WithEnabled(false))
	assert.Zero(t, s.Step(0.05))
	assert.Zero(t, calls)

	s.SetEnabled(true)
	assert.True(t, s.Enabled())
	s.Step(0.05)
	assert.Equal(t, 1, calls)
}

func TestNewStepper_NilEnginePanics(t *testing.T) {
	assert.Panics(t, func() { NewStepper(nil) })
}
