package model

// Board geometry.
// Поле 5×10: колонки 0..4 принадлежат LEFT, 5..9 принадлежат RIGHT.
// Front line LEFT = колонка 4, front line RIGHT = колонка 5.
const (
	Rows       = 5
	Cols       = 10
	SideCols   = 5
	LeftFront  = SideCols - 1
	RightFront = SideCols
)

// Position is a board cell.
type Position struct {
	Row int
	Col int
}

// InBounds reports whether the cell lies on the board.
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < Rows && p.Col >= 0 && p.Col < Cols
}

// FrontCol returns the front-line column of the side.
func FrontCol(side Side) int {
	if side == SideRight {
		return RightFront
	}
	return LeftFront
}

// SideColumns returns the side's columns ordered from its front line outward.
func SideColumns(side Side) []int {
	cols := make([]int, 0, SideCols)
	if side == SideRight {
		for c := RightFront; c < Cols; c++ {
			cols = append(cols, c)
		}
		return cols
	}
	for c := LeftFront; c >= 0; c-- {
		cols = append(cols, c)
	}
	return cols
}

// OwnsColumn reports whether col belongs to side's half of the board.
func OwnsColumn(side Side, col int) bool {
	if side == SideRight {
		return col >= RightFront && col < Cols
	}
	return col >= 0 && col <= LeftFront
}

// PushDirection returns the column delta that moves a unit of the given
// side away from its attacker, i.e. toward its own backline.
func PushDirection(attacker Side) int {
	if attacker == SideLeft {
		return 1
	}
	return -1
}

// DistanceToFrontline returns how many columns the unit stands behind its front line.
func DistanceToFrontline(u *CombatUnit) int {
	if u.Side == SideLeft {
		return LeftFront - u.Col
	}
	return u.Col - RightFront
}

// DistanceToBackline returns how many columns the unit stands in front of its back line.
func DistanceToBackline(u *CombatUnit) int {
	if u.Side == SideLeft {
		return u.Col
	}
	return Cols - 1 - u.Col
}

// Manhattan returns the grid distance between two units.
func Manhattan(a, b *CombatUnit) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

// Adjacent8 reports whether b is within one cell of a (diagonals included), excluding a itself.
func Adjacent8(a, b *CombatUnit) bool {
	if a == b {
		return false
	}
	return abs(a.Row-b.Row) <= 1 && abs(a.Col-b.Col) <= 1
}

// Adjacent4 reports whether b is orthogonally adjacent to a.
func Adjacent4(a, b *CombatUnit) bool {
	return abs(a.Row-b.Row)+abs(a.Col-b.Col) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
