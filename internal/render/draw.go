package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at (x, y)
// and returns its width in cells.
func putGlyph(s tcell.Screen, x, y int, glyph string, style tcell.Style) int {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return 0
	}
	s.SetContent(x, y, runes[0], runes[1:], style)
	w := runewidth.StringWidth(glyph)
	if w == 2 {
		s.SetContent(x+1, y, ' ', nil, style)
	}
	return max(w, 1)
}

// drawText draws text from (x, y), advancing by each rune's display width.
// Text past maxX is cut.
func drawText(s tcell.Screen, x, y, maxX int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if col+w > maxX {
			return
		}
		s.SetContent(col, y, ch, nil, style)
		col += w
	}
}

func drawHLine(s tcell.Screen, y int, color tcell.Color) {
	w, _ := s.Size()
	style := tcell.StyleDefault.Foreground(color)
	for x := range w {
		s.SetContent(x, y, '─', nil, style)
	}
}

// IsQuit reports whether a key event asks to leave the battle view.
func IsQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	}
	switch ev.Rune() {
	case 'q', 'Q':
		return true
	}
	return false
}
