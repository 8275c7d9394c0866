package model

// Side identifies one of the two factions on the board.
type Side uint8

const (
	SideLeft  Side = iota // player side
	SideRight             // enemy side
)

// String returns LEFT or RIGHT.
func (s Side) String() string {
	if s == SideRight {
		return "RIGHT"
	}
	return "LEFT"
}

// Opposite returns the other faction.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// ParseSide parses LEFT/RIGHT (case-sensitive, as stored in rosters).
func ParseSide(v string) (Side, bool) {
	switch v {
	case "LEFT":
		return SideLeft, true
	case "RIGHT":
		return SideRight, true
	default:
		return SideLeft, false
	}
}
