package collision

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// DefaultMaxRetry is the number of slide responses computed before the solver gives up.
const DefaultMaxRetry = 3

// Result is the outcome of a GetNewPosition call.
type Result struct {
	// Position is the final position in world space.
	Position mgl32.Vec3

	// Collided is the last entity hit, or nil.
	Collided Collidable

	// Attempts counts loop iterations, including the terminating one.
	Attempts int
}

// Solver resolves swept-ellipsoid movement against a set of collidables.
type Solver interface {
	// GetNewPosition moves a collider from position by displacement, sliding along anything it hits.
	// The loop runs at most maxRetry+1 iterations and always terminates.
	//
	// Parameters:
	//   - position: the start position in world space
	//   - displacement: the requested movement in world space
	//   - collider: the collider carrying the ellipsoid radii
	//   - maxRetry: the number of slide responses allowed
	//   - world: the entities to test against
	//   - excluded: an entity to skip, usually the mover itself (may be nil)
	//
	// Returns:
	//   - Result: the final position, the entity hit, and the iteration count
	GetNewPosition(position, displacement mgl32.Vec3, collider *Collider, maxRetry int, world []Collidable, excluded Collidable) Result
}

type solverImpl struct {
	logger logrus.FieldLogger
}

var _ Solver = &solverImpl{}

// NewSolver creates a Solver.
//
// Parameters:
//   - options: functional options to configure the solver
//
// Returns:
//   - Solver: the newly created solver
func NewSolver(options ...SolverBuilderOption) Solver {
	s := &solverImpl{logger: logger.Noop()}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *solverImpl) GetNewPosition(position, displacement mgl32.Vec3, collider *Collider, maxRetry int, world []Collidable, excluded Collidable) Result {
	if collider == nil {
		panic("collision: GetNewPosition requires a non-nil Collider")
	}

	pos := common.DivVec3(position, collider.radius)
	vel := common.DivVec3(displacement, collider.radius)

	collider.collidedMesh = nil
	collider.retry = 0
	collider.initialPosition = pos
	collider.initialVelocity = vel

	closeDistance := common.CollisionsEpsilon * 10
	attempts := 0
	var final mgl32.Vec3

	for {
		attempts++
		if collider.retry >= maxRetry {
			final = pos
			s.logger.WithFields(logrus.Fields{
				"component": "collision",
				"retries":   collider.retry,
			}).Debug("collision retries exhausted")
			break
		}

		collider.initialize(pos, vel, closeDistance)
		for _, m := range world {
			if m == nil || m == excluded || !m.IsEnabled() || !m.CheckCollisions() {
				continue
			}
			collider.CheckCollidable(m)
		}

		if !collider.collisionFound {
			final = pos.Add(vel)
			break
		}

		if vel != (mgl32.Vec3{}) {
			pos, vel = collider.response(pos, vel)
		}

		if vel.Len() <= closeDistance {
			final = pos
			break
		}
		collider.retry++
	}

	return Result{
		Position: common.MulVec3(final, collider.radius),
		Collided: collider.collidedMesh,
		Attempts: attempts,
	}
}
