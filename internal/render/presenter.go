// Package render draws a running battle on a terminal screen.
package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/model"
)

// Board layout in screen cells.
const (
	boardX   = 2
	boardY   = 2
	cellW    = 5
	sideGap  = 3
	rowH     = 2
	keepLogs = 200
)

var sideColor = map[model.Side]tcell.Color{
	model.SideLeft:  tcell.ColorGreen,
	model.SideRight: tcell.ColorRed,
}

// Presenter is a combat.Observer that redraws the board and an event log
// on every event. It never changes the units it draws.
type Presenter struct {
	screen   tcell.Screen
	units    []*model.CombatUnit
	byID     map[string]*model.CombatUnit
	messages []string
	round    int
	result   string
}

// NewPresenter creates a presenter over units. The screen must be initialized.
func NewPresenter(screen tcell.Screen, units []*model.CombatUnit) *Presenter {
	p := &Presenter{
		screen: screen,
		units:  units,
		byID:   make(map[string]*model.CombatUnit, len(units)),
	}
	for _, u := range units {
		p.byID[u.ID] = u
	}
	return p
}

// Observe implements combat.Observer.
func (p *Presenter) Observe(e combat.Event) {
	switch e.Kind {
	case combat.EventRoundStart:
		p.round = e.Amount
	case combat.EventBattleEnd:
		p.result = e.Text
	}
	p.messages = append(p.messages, p.Format(e))
	if len(p.messages) > keepLogs {
		p.messages = p.messages[len(p.messages)-keepLogs:]
	}
	p.Draw()
}

// Messages returns the kept log lines, oldest first.
func (p *Presenter) Messages() []string { return p.messages }

// Format renders one event as a log line.
func (p *Presenter) Format(e combat.Event) string {
	src, tgt := p.name(e.Source), p.name(e.Target)
	switch e.Kind {
	case combat.EventDamage:
		if e.Text != "" {
			return fmt.Sprintf("%s → %s -%d (%s)", src, tgt, e.Amount, e.Text)
		}
		return fmt.Sprintf("%s → %s -%d", src, tgt, e.Amount)
	case combat.EventMiss:
		return fmt.Sprintf("%s misses %s", src, tgt)
	case combat.EventAbsorb:
		return fmt.Sprintf("%s shield absorbs %d", tgt, e.Amount)
	case combat.EventHeal:
		return fmt.Sprintf("%s heals %s +%d", src, tgt, e.Amount)
	case combat.EventShield:
		return fmt.Sprintf("%s shields %s +%d", src, tgt, e.Amount)
	case combat.EventStatus:
		if e.Text != "" {
			return fmt.Sprintf("%s: %s %s", tgt, e.Status, e.Text)
		}
		return fmt.Sprintf("%s: %s for %d", tgt, e.Status, e.Amount)
	case combat.EventDeath:
		return fmt.Sprintf("%s is defeated", tgt)
	case combat.EventRevive:
		return fmt.Sprintf("%s revives %s", src, tgt)
	case combat.EventMove:
		return fmt.Sprintf("%s moves to %d:%d", p.name(firstID(e.Target, e.Source)), e.Row, e.Col)
	case combat.EventSkill:
		return fmt.Sprintf("%s casts %s", src, e.Text)
	case combat.EventTurnSkip:
		return fmt.Sprintf("%s skips the turn (%s)", tgt, e.Status)
	case combat.EventRoundStart:
		return fmt.Sprintf("== round %d ==", e.Amount)
	case combat.EventBattleEnd:
		return fmt.Sprintf("battle over: %s", e.Text)
	default:
		if e.Source != "" {
			return fmt.Sprintf("%s: %s", src, e.Text)
		}
		return e.Text
	}
}

// Draw redraws the whole screen.
func (p *Presenter) Draw() {
	s := p.screen
	s.Clear()
	w, h := s.Size()

	title := fmt.Sprintf("Round %d", p.round)
	if p.result != "" {
		title += "  result: " + p.result
	}
	drawText(s, 0, 0, w, title, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))

	for _, u := range p.units {
		p.drawUnit(u)
	}

	hudY := boardY + model.Rows*rowH
	if hudY < h {
		drawHLine(s, hudY, tcell.ColorGray)
	}
	lines := h - hudY - 1
	if lines > 0 {
		start := max(0, len(p.messages)-lines)
		for i, msg := range p.messages[start:] {
			drawText(s, 0, hudY+1+i, w, msg, tcell.StyleDefault.Foreground(tcell.ColorLightYellow))
		}
	}
	s.Show()
}

// CellOrigin returns the screen position of a board cell's top-left corner.
func CellOrigin(row, col int) (x, y int) {
	x = boardX + col*cellW
	if col >= model.SideCols {
		x += sideGap
	}
	return x, boardY + row*rowH
}

func (p *Presenter) drawUnit(u *model.CombatUnit) {
	if !u.Pos().InBounds() {
		return
	}
	x, y := CellOrigin(u.Row, u.Col)
	if !u.IsAlive() {
		putGlyph(p.screen, x, y, "✖", tcell.StyleDefault.Foreground(tcell.ColorDarkGray))
		return
	}

	style := tcell.StyleDefault.Foreground(sideColor[u.Side])
	n := putGlyph(p.screen, x, y, glyph(u), style)
	if u.Star > 1 {
		drawText(p.screen, x+n, y, x+cellW, fmt.Sprint(u.Star), tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}
	hp := fmt.Sprintf("%d%%", int(u.HPRatio()*100))
	drawText(p.screen, x, y+1, x+cellW, hp, style)
}

func (p *Presenter) name(id string) string {
	if id == "" {
		return "effect"
	}
	if u, ok := p.byID[id]; ok && u.Name != "" {
		return u.Name
	}
	return id
}

func glyph(u *model.CombatUnit) string {
	if u.Icon != "" {
		return u.Icon
	}
	for _, r := range u.ID {
		return string(r)
	}
	return "?"
}

func firstID(ids ...string) string {
	for _, id := range ids {
		if id != "" {
			return id
		}
	}
	return ""
}
