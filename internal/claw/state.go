package claw

// State is the automation state of the claw.
type State int

const (
	ManualHorizontal State = iota
	Descending
	Operating
	Ascending
	DeliveringMoveX
	DeliveringMoveZ
	DeliveringDescend
	ReleasingObject
	ReturningAscend
	ReturningMoveZ
	ReturningMoveX
)

var stateNames = [...]string{
	ManualHorizontal:  "MANUAL_HORIZONTAL",
	Descending:        "DESCENDING",
	Operating:         "OPERATING",
	Ascending:         "ASCENDING",
	DeliveringMoveX:   "DELIVERING_MOVE_X",
	DeliveringMoveZ:   "DELIVERING_MOVE_Z",
	DeliveringDescend: "DELIVERING_DESCEND",
	ReleasingObject:   "RELEASING_OBJECT",
	ReturningAscend:   "RETURNING_ASCEND",
	ReturningMoveZ:    "RETURNING_MOVE_Z",
	ReturningMoveX:    "RETURNING_MOVE_X",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Direction is a manual movement input.
type Direction int

const (
	Left Direction = iota
	Right
	Forward
	Backward
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "?"
	}
}

// StateChange is the payload of OnStateChange.
type StateChange struct {
	From, To State
}
