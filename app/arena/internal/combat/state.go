package combat

// State 角色战斗状态
type State int

const (
	StateNormal State = iota
	StateAttacking
	StateBlocking
	StateStunned
	StateDeath
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "Normal"
	case StateAttacking:
		return "Attacking"
	case StateBlocking:
		return "Blocking"
	case StateStunned:
		return "Stunned"
	case StateDeath:
		return "Death"
	default:
		return "Unknown"
	}
}
