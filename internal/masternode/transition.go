package masternode

import "tmn"

// Action is a power-state operation on a container.
type Action uint8

const (
	ActionNone Action = iota
	ActionStart
	ActionStop
	ActionUnpause
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionUnpause:
		return "unpause"
	default:
		return "unknown"
	}
}

// StartTransition returns the action that moves a container in status s
// towards running. handled is false for statuses with no defined
// transition (removing, or anything the daemon adds later); the action is
// then ActionNone.
func StartTransition(s tmn.ContainerStatus) (action Action, handled bool) {
	switch s {
	case tmn.StatusRunning, tmn.StatusRestarting:
		return ActionNone, true
	case tmn.StatusPaused:
		return ActionUnpause, true
	case tmn.StatusCreated, tmn.StatusExited, tmn.StatusDead:
		return ActionStart, true
	default:
		return ActionNone, false
	}
}

// StopTransition returns the action that moves a container in status s
// towards stopped. See StartTransition for handled.
func StopTransition(s tmn.ContainerStatus) (action Action, handled bool) {
	switch s {
	case tmn.StatusRestarting, tmn.StatusRunning, tmn.StatusPaused:
		return ActionStop, true
	case tmn.StatusCreated, tmn.StatusExited, tmn.StatusDead:
		return ActionNone, true
	default:
		return ActionNone, false
	}
}

func transition(intent Intent, s tmn.ContainerStatus) (Action, bool) {
	if intent == IntentStop {
		return StopTransition(s)
	}
	return StartTransition(s)
}
