package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
)

// checkIntersections runs the enter/exit trigger state machine for every entity flagged during
// evaluation:
//   - not in progress, intersecting, Enter: fire, then mark in progress
//   - not in progress, intersecting, Exit: mark in progress without firing
//   - in progress, not intersecting, Exit: fire, then clear
//
// Every other combination leaves the state unchanged.
func (s *sceneImpl) checkIntersections() {
	for _, source := range s.intersections {
		for _, action := range source.IntersectionActions() {
			if action.Trigger != entity.TriggerOnIntersectionEnter && action.Trigger != entity.TriggerOnIntersectionExit {
				continue
			}
			other := action.Target
			if other == nil || other.IsDisposed() {
				continue
			}

			intersecting := source.IntersectsEntity(other, action.Precise)
			inProgress := source.IsIntersectionInProgress(other)

			switch {
			case intersecting && !inProgress:
				if action.Trigger == entity.TriggerOnIntersectionEnter {
					action.Fire(source)
				}
				source.AddIntersectionInProgress(other)
			case !intersecting && inProgress && action.Trigger == entity.TriggerOnIntersectionExit:
				action.Fire(source)
				source.RemoveIntersectionInProgress(other)
			}
		}
	}
}
