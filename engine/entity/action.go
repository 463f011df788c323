package entity

// Trigger selects when an IntersectionAction fires.
type Trigger int

const (
	// TriggerNone never fires.
	TriggerNone Trigger = iota

	// TriggerOnIntersectionEnter fires when the source starts intersecting the target.
	TriggerOnIntersectionEnter

	// TriggerOnIntersectionExit fires when the source stops intersecting a target it was
	// previously registered as intersecting.
	TriggerOnIntersectionExit
)

// String returns the trigger name.
func (t Trigger) String() string {
	switch t {
	case TriggerOnIntersectionEnter:
		return "intersection_enter"
	case TriggerOnIntersectionExit:
		return "intersection_exit"
	default:
		return "none"
	}
}

// ActionEvent is passed to an action when it fires.
type ActionEvent struct {
	Source Entity
	Target Entity
}

// IntersectionAction runs Execute when the owning entity's intersection state with Target changes.
type IntersectionAction struct {
	Trigger Trigger
	Target  Entity

	// Precise selects the oriented box test instead of the axis-aligned one.
	Precise bool

	Execute func(evt ActionEvent)
}

// NewIntersectionAction creates an action.
//
// Parameters:
//   - trigger: when the action fires
//   - target: the entity tested against the action's owner
//   - precise: use the oriented box test
//   - execute: the callback (may be nil)
//
// Returns:
//   - *IntersectionAction: the newly created action
func NewIntersectionAction(trigger Trigger, target Entity, precise bool, execute func(ActionEvent)) *IntersectionAction {
	if target == nil {
		panic("entity: NewIntersectionAction requires a non-nil target")
	}
	return &IntersectionAction{
		Trigger: trigger,
		Target:  target,
		Precise: precise,
		Execute: execute,
	}
}

// Fire runs the callback.
func (a *IntersectionAction) Fire(source Entity) {
	if a.Execute != nil {
		a.Execute(ActionEvent{Source: source, Target: a.Target})
	}
}
