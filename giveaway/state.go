package giveaway

// State is the scheduler's position in the round lifecycle.
type State int32

const (
	StateIdle State = iota
	StateIntake
	StateSelecting
	StateFulfilling
	StateCooldown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIntake:
		return "intake"
	case StateSelecting:
		return "selecting"
	case StateFulfilling:
		return "fulfilling"
	case StateCooldown:
		return "cooldown"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
