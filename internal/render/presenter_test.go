package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/model"
)

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	ss := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, ss.Init())
	ss.SetSize(60, 20)
	t.Cleanup(ss.Fini)
	return ss
}

func runeAt(ss tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := ss.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return ' '
	}
	return c.Runes[0]
}

func rowText(ss tcell.SimulationScreen, y int) string {
	_, w, _ := ss.GetContents()
	var b strings.Builder
	for x := range w {
		b.WriteRune(runeAt(ss, x, y))
	}
	return strings.TrimRight(b.String(), " ")
}

func testUnits() (*model.CombatUnit, *model.CombatUnit) {
	a := model.NewCombatUnit("a", model.SideLeft, 2, 4, 100)
	a.Name = "Alpha"
	b := model.NewCombatUnit("b", model.SideRight, 0, 5, 100)
	b.Icon = "🐺"
	b.Star = 2
	return a, b
}

func TestPresenter_DrawsBoard(t *testing.T) {
	ss := newSimScreen(t)
	a, b := testUnits()
	p := NewPresenter(ss, []*model.CombatUnit{a, b})

	p.Observe(combat.Event{Kind: combat.EventRoundStart, Amount: 3})
	assert.Equal(t, "Round 3", rowText(ss, 0))

	ax, ay := CellOrigin(a.Row, a.Col)
	assert.Equal(t, 'a', runeAt(ss, ax, ay))
	assert.True(t, strings.HasPrefix(rowText(ss, ay+1)[ax:], "100%"))

	bx, by := CellOrigin(b.Row, b.Col)
	assert.Equal(t, 30, bx, "right half is offset by the side gap")
	assert.Equal(t, '🐺', runeAt(ss, bx, by))
	assert.Equal(t, '2', runeAt(ss, bx+2, by), "star after the wide glyph")
}

func TestPresenter_LogAndDeath(t *testing.T) {
	ss := newSimScreen(t)
	a, b := testUnits()
	p := NewPresenter(ss, []*model.CombatUnit{a, b})

	b.SetHP(60)
	p.Observe(combat.Event{Kind: combat.EventDamage, Source: "a", Target: "b", Amount: 40})
	bx, by := CellOrigin(b.Row, b.Col)
	assert.True(t, strings.HasPrefix(rowText(ss, by+1)[bx:], "60%"))

	hudY := boardY + model.Rows*rowH
	assert.Equal(t, '─', runeAt(ss, 0, hudY))
	assert.Equal(t, "Alpha → b -40", rowText(ss, hudY+1))

	b.Kill()
	p.Observe(combat.Event{Kind: combat.EventDeath, Source: "a", Target: "b"})
	assert.Equal(t, '✖', runeAt(ss, bx, by))
	assert.Equal(t, "b is defeated", rowText(ss, hudY+2))

	p.Observe(combat.Event{Kind: combat.EventBattleEnd, Text: "LEFT"})
	assert.Contains(t, rowText(ss, 0), "result: LEFT")
}

func TestPresenter_LogScrolls(t *testing.T) {
	ss := newSimScreen(t)
	a, b := testUnits()
	p := NewPresenter(ss, []*model.CombatUnit{a, b})
	for i := range keepLogs + 50 {
		p.Observe(combat.Event{Kind: combat.EventRoundStart, Amount: i})
	}
	assert.Len(t, p.Messages(), keepLogs)
	_, h := ss.Size()
	assert.Equal(t, "== round 249 ==", rowText(ss, h-1))
}

func TestPresenter_Format(t *testing.T) {
	a, b := testUnits()
	p := NewPresenter(nil, []*model.CombatUnit{a, b})
	tests := []struct {
		e    combat.Event
		want string
	}{
		{combat.Event{Kind: combat.EventDamage, Target: "a", Amount: 7, Text: "burn"}, "effect → Alpha -7 (burn)"},
		{combat.Event{Kind: combat.EventMiss, Source: "b", Target: "a"}, "b misses Alpha"},
		{combat.Event{Kind: combat.EventAbsorb, Target: "a", Amount: 12}, "Alpha shield absorbs 12"},
		{combat.Event{Kind: combat.EventHeal, Source: "a", Target: "a", Amount: 30}, "Alpha heals Alpha +30"},
		{combat.Event{Kind: combat.EventStatus, Target: "b", Status: "stun", Amount: 1}, "b: stun for 1"},
		{combat.Event{Kind: combat.EventStatus, Target: "b", Status: "stun", Text: "expired"}, "b: stun expired"},
		{combat.Event{Kind: combat.EventMove, Target: "b", Row: 1, Col: 9}, "b moves to 1:9"},
		{combat.Event{Kind: combat.EventSkill, Source: "a", Text: "Roar"}, "Alpha casts Roar"},
		{combat.Event{Kind: combat.EventTurnSkip, Target: "a", Status: "freeze"}, "Alpha skips the turn (freeze)"},
		{combat.Event{Kind: combat.EventNote, Source: "b", Text: "drop claw"}, "b: drop claw"},
		{combat.Event{Kind: combat.EventNote, Text: "sudden death"}, "sudden death"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Format(tt.e), tt.e.Kind.String())
	}
}

func TestIsQuit(t *testing.T) {
	assert.True(t, IsQuit(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.True(t, IsQuit(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.False(t, IsQuit(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
	assert.False(t, IsQuit(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)))
}
