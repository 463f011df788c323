package collision

import "github.com/sirupsen/logrus"

// SolverBuilderOption is a functional option for configuring a Solver.
type SolverBuilderOption func(*solverImpl)

// WithLogger sets the logger used for retry diagnostics.
//
// Parameters:
//   - l: the logger (nil is ignored)
//
// Returns:
//   - SolverBuilderOption: option function to apply
func WithLogger(l logrus.FieldLogger) SolverBuilderOption {
	return func(s *solverImpl) {
		if l != nil {
			s.logger = l
		}
	}
}
