package physics

// StepperBuilderOption is a functional option applied to a stepper during NewStepper.
type StepperBuilderOption func(*stepperImpl)

// WithSubStep splits each clamped delta into fixed sub-steps. Values at or below zero disable
// sub-stepping.
//
// Parameters:
//   - seconds: the maximum sub-step length
//
// Returns:
//   - StepperBuilderOption: option function to apply
func WithSubStep(seconds float32) StepperBuilderOption {
	return func(s *stepperImpl) {
		s.subStep = seconds
	}
}

// WithEnabled sets whether the stepper starts enabled.
//
// Parameters:
//   - enabled: true to forward steps
//
// Returns:
//   - StepperBuilderOption: option function to apply
func WithEnabled(enabled bool) StepperBuilderOption {
	return func(s *stepperImpl) {
		s.enabled = enabled
	}
}
