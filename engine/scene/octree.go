package scene

import (
	"math"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/spatial"
	"github.com/go-gl/mathgl/mgl32"
)

func (s *sceneImpl) WorldExtends() (mgl32.Vec3, mgl32.Vec3) {
	inf := float32(math.MaxFloat32)
	minimum := mgl32.Vec3{inf, inf, inf}
	maximum := mgl32.Vec3{-inf, -inf, -inf}
	for _, e := range s.Entities() {
		e.ComputeWorldMatrix(true)
		box := &e.BoundingInfo().Box
		minimum = common.MinVec3(minimum, box.MinimumWorld)
		maximum = common.MaxVec3(maximum, box.MaximumWorld)
	}
	return minimum, maximum
}

func (s *sceneImpl) CreateOrUpdateSelectionOctree(maxCapacity, maxDepth int) *spatial.Octree[entity.Entity] {
	if maxCapacity <= 0 {
		maxCapacity = spatial.DefaultMaxCapacity
	}
	if maxDepth <= 0 {
		maxDepth = spatial.DefaultMaxDepth
	}

	s.mu.Lock()
	o := s.octree
	if o == nil || o.MaxCapacity() != maxCapacity || o.MaxDepth() != maxDepth {
		o = spatial.NewOctree(spatial.BoundingBoxCreationFunc[entity.Entity],
			spatial.WithMaxCapacity[entity.Entity](maxCapacity),
			spatial.WithMaxDepth[entity.Entity](maxDepth),
		)
		s.octree = o
	}
	s.index = o
	s.mu.Unlock()

	entities := s.Entities()
	minimum, maximum := s.WorldExtends()
	o.Update(minimum, maximum, entities)

	s.log.WithField("scene", s.name).
		WithField("capacity", maxCapacity).
		WithField("depth", maxDepth).
		WithField("entities", len(entities)).
		Debug("scene: selection octree rebuilt")
	return o
}

func (s *sceneImpl) SetSelectionIndex(idx spatial.Index[entity.Entity]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = idx
	if o, ok := idx.(*spatial.Octree[entity.Entity]); ok {
		s.octree = o
	}
}

func (s *sceneImpl) SelectionIndex() spatial.Index[entity.Entity] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}
