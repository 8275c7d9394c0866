package skill

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/model"
)

// ErrOffBoard is returned when a unit to be pushed does not stand on the board.
var ErrOffBoard = errors.New("unit column off board")

// KnockbackCol computes where target lands when pushed along its row in
// direction dir (+1/-1) among units on a board width columns wide.
//
// Cells are scanned outward from the target; the last empty cell before the
// first occupied one (tank or not) is the landing cell. If the very next cell
// is occupied or off the board the target stays put.
// An off-board starting column returns the clamped column and ErrOffBoard.
func KnockbackCol(target *model.CombatUnit, dir int, units []*model.CombatUnit, width int) (int, error) {
	if target.Col < 0 || target.Col >= width {
		return min(max(target.Col, 0), width-1), fmt.Errorf("knockback %s at col %d: %w", target.ID, target.Col, ErrOffBoard)
	}
	if dir == 0 {
		return target.Col, nil
	}
	dir = max(-1, min(1, dir))

	landing := target.Col
	for c := target.Col + dir; c >= 0 && c < width; c += dir {
		if occupied(units, target, target.Row, c) {
			break
		}
		landing = c
	}
	return landing, nil
}

func occupied(units []*model.CombatUnit, self *model.CombatUnit, row, col int) bool {
	for _, u := range units {
		if u != self && u.IsAlive() && u.Row == row && u.Col == col {
			return true
		}
	}
	return false
}

// Knockback pushes target toward its backline and reports whether it moved.
func (c *Context) Knockback(target *model.CombatUnit, dir int) bool {
	col, err := KnockbackCol(target, dir, c.S.Living(target.Side), model.Cols)
	if err != nil {
		slog.Error("knockback aborted", "unit", target.ID, "error", err)
		target.MoveTo(target.Row, col)
		return false
	}
	if col == target.Col {
		return false
	}
	target.MoveTo(target.Row, col)
	c.S.Emit(combat.Event{Kind: combat.EventMove, Target: target.ID, Row: target.Row, Col: col, Text: "knockback"})
	return true
}
