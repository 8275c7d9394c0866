package combat

import "github.com/udisondev/beastarena/internal/model"

// QueueEntry is one scanned cell of the turn queue.
// Unit is nil for empty cells; dead units are skipped when the entry is reached.
type QueueEntry struct {
	Side model.Side
	Row  int
	Col  int
	Unit *model.CombatUnit
}

// Occupied reports whether the entry holds a unit.
func (e QueueEntry) Occupied() bool { return e.Unit != nil }

// BuildTurnQueue computes the round order from the live board.
//
// Each side scans its columns from the front line outward, rows 0..Rows-1 within
// a column. The scan is split into chunks (empty cells followed by one occupied
// cell, a trailing all-empty chunk allowed) and the two chunk lists are
// interleaved LEFT first, one chunk per side, until both are exhausted.
func BuildTurnQueue(units []*model.CombatUnit) []QueueEntry {
	left := chunkScan(scanSide(model.SideLeft, units))
	right := chunkScan(scanSide(model.SideRight, units))

	queue := make([]QueueEntry, 0, 2*model.Rows*model.SideCols)
	for i := 0; i < len(left) || i < len(right); i++ {
		if i < len(left) {
			queue = append(queue, left[i]...)
		}
		if i < len(right) {
			queue = append(queue, right[i]...)
		}
	}
	return queue
}

func scanSide(side model.Side, units []*model.CombatUnit) []QueueEntry {
	var board [model.Rows][model.Cols]*model.CombatUnit
	for _, u := range units {
		if !u.IsAlive() || u.Side != side || !u.Pos().InBounds() {
			continue
		}
		board[u.Row][u.Col] = u
	}

	entries := make([]QueueEntry, 0, model.Rows*model.SideCols)
	for _, col := range model.SideColumns(side) {
		for row := range model.Rows {
			entries = append(entries, QueueEntry{Side: side, Row: row, Col: col, Unit: board[row][col]})
		}
	}
	return entries
}

func chunkScan(entries []QueueEntry) [][]QueueEntry {
	var chunks [][]QueueEntry
	start := 0
	for i, e := range entries {
		if e.Occupied() {
			chunks = append(chunks, entries[start:i+1])
			start = i + 1
		}
	}
	if start < len(entries) {
		chunks = append(chunks, entries[start:])
	}
	return chunks
}

// QueueUnits returns the occupied entries' units in queue order.
func QueueUnits(queue []QueueEntry) []*model.CombatUnit {
	var out []*model.CombatUnit
	for _, e := range queue {
		if e.Occupied() {
			out = append(out, e.Unit)
		}
	}
	return out
}
