package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/collision"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/go-gl/mathgl/mgl32"
)

// MoveWithCollisions sweeps the entity's ellipsoid from its absolute position, lowered by the
// ellipsoid's vertical radius and shifted by its offset. The position only changes when the
// resolved movement is longer than common.CollisionsEpsilon. With collisions disabled the
// displacement is applied as is.
func (s *sceneImpl) MoveWithCollisions(e entity.Entity, displacement mgl32.Vec3) (mgl32.Vec3, entity.Entity) {
	if e == nil {
		return mgl32.Vec3{}, nil
	}
	if !s.Features().CollisionsEnabled {
		e.SetPosition(e.Position().Add(displacement))
		return e.Position(), nil
	}

	radius := e.Ellipsoid()
	start := e.AbsolutePosition().Sub(mgl32.Vec3{0, radius[1], 0}).Add(e.EllipsoidOffset())

	entities := s.Entities()
	world := make([]collision.Collidable, 0, len(entities))
	for _, other := range entities {
		world = append(world, other)
	}

	s.mu.RLock()
	retries := s.collisionRetry
	s.mu.RUnlock()

	res := s.solver.GetNewPosition(start, displacement, collision.NewCollider(radius), retries, world, e)

	diff := res.Position.Sub(start)
	if diff.Len() > common.CollisionsEpsilon {
		e.SetPosition(e.Position().Add(diff))
	}

	var hit entity.Entity
	if res.Collided != nil {
		if c, ok := res.Collided.(entity.Entity); ok {
			hit = c
			e.OnCollide().Notify(c)
		}
	}
	return e.Position(), hit
}
