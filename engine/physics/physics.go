package physics

import (
	"sync"
)

const (
	// MinStep is the smallest step, in seconds, handed to a physics engine.
	MinStep float32 = 1.0 / 60.0

	// MaxStep is the largest step, in seconds, handed to a physics engine.
	MaxStep float32 = 0.1
)

// Engine is a physics simulation attached to a scene. Implementations live outside this module.
type Engine interface {
	// Step advances the simulation.
	//
	// Parameters:
	//   - seconds: the step length, already clamped to [MinStep, MaxStep]
	Step(seconds float32)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(seconds float32)

// Step calls f(seconds).
func (f EngineFunc) Step(seconds float32) {
	f(seconds)
}

// Stepper owns the clamping contract between the frame loop and an attached Engine.
type Stepper interface {
	// Step advances the engine by a frame delta. The delta is clamped to [MinStep, MaxStep]; with a
	// sub-step configured, the clamped delta is split into sub-steps of at most that length.
	//
	// Parameters:
	//   - seconds: the frame delta in seconds
	//
	// Returns:
	//   - float32: the clamped delta actually simulated, 0 when disabled
	Step(seconds float32) float32

	// Engine retrieves the attached engine.
	//
	// Returns:
	//   - Engine: the engine
	Engine() Engine

	// Enabled reports whether Step forwards to the engine.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled toggles stepping.
	//
	// Parameters:
	//   - enabled: forward steps to the engine when true
	SetEnabled(enabled bool)

	// LastStep retrieves the clamped delta of the most recent Step.
	//
	// Returns:
	//   - float32: the last simulated delta in seconds
	LastStep() float32
}

type stepperImpl struct {
	mu      *sync.Mutex
	engine  Engine
	subStep float32
	enabled bool
	last    float32
}

var _ Stepper = &stepperImpl{}

// NewStepper wraps an engine.
//
// Parameters:
//   - engine: the physics engine to drive
//   - options: functional options such as WithSubStep
//
// Returns:
//   - Stepper: the new stepper
func NewStepper(engine Engine, options ...StepperBuilderOption) Stepper {
	if engine == nil {
		panic("physics: NewStepper requires a non-nil engine")
	}
	s := &stepperImpl{
		mu:      &sync.Mutex{},
		engine:  engine,
		enabled: true,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Clamp limits a frame delta in seconds to [MinStep, MaxStep]. Non-positive deltas map to MinStep.
func Clamp(seconds float32) float32 {
	switch {
	case seconds > MaxStep:
		return MaxStep
	case seconds < MinStep:
		return MinStep
	default:
		return seconds
	}
}

func (s *stepperImpl) Step(seconds float32) float32 {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return 0
	}
	dt := Clamp(seconds)
	sub := s.subStep
	s.last = dt
	s.mu.Unlock()

	if sub <= 0 || sub >= dt {
		s.engine.Step(dt)
		return dt
	}
	remaining := dt
	for remaining > sub {
		s.engine.Step(sub)
		remaining -= sub
	}
	if remaining > 0 {
		s.engine.Step(remaining)
	}
	return dt
}

func (s *stepperImpl) Engine() Engine {
	return s.engine
}

func (s *stepperImpl) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *stepperImpl) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

func (s *stepperImpl) LastStep() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
