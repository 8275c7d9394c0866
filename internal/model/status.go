package model

// StatusKind enumerates every per-unit status counter.
type StatusKind uint8

const (
	// control
	StatusFreeze StatusKind = iota
	StatusStun
	StatusSleep
	StatusSilence
	StatusDisarm
	StatusImmune

	// damage over time
	StatusBurn
	StatusPoison
	StatusBleed
	StatusDisease

	// stat modifiers
	StatusArmorBreak
	StatusAtkBuff
	StatusAtkDebuff
	StatusDefBuff
	StatusDefDebuff
	StatusMdefBuff
	StatusMdefDebuff
	StatusEvadeBuff
	StatusEvadeDebuff

	// relational
	StatusTaunt
	StatusSoulLink
	StatusReflect
	StatusPhysReflect
	StatusCounter
	StatusProtecting

	numStatusKinds
)

var statusNames = [numStatusKinds]string{
	StatusFreeze:      "freeze",
	StatusStun:        "stun",
	StatusSleep:       "sleep",
	StatusSilence:     "silence",
	StatusDisarm:      "disarm",
	StatusImmune:      "immune",
	StatusBurn:        "burn",
	StatusPoison:      "poison",
	StatusBleed:       "bleed",
	StatusDisease:     "disease",
	StatusArmorBreak:  "armorBreak",
	StatusAtkBuff:     "atkBuff",
	StatusAtkDebuff:   "atkDebuff",
	StatusDefBuff:     "defBuff",
	StatusDefDebuff:   "defDebuff",
	StatusMdefBuff:    "mdefBuff",
	StatusMdefDebuff:  "mdefDebuff",
	StatusEvadeBuff:   "evadeBuff",
	StatusEvadeDebuff: "evadeDebuff",
	StatusTaunt:       "taunt",
	StatusSoulLink:    "soulLink",
	StatusReflect:     "reflect",
	StatusPhysReflect: "physReflect",
	StatusCounter:     "counter",
	StatusProtecting:  "protecting",
}

func (k StatusKind) String() string {
	if k < numStatusKinds {
		return statusNames[k]
	}
	return "unknown"
}

// IsControl reports whether the status skips the unit's turn.
func (k StatusKind) IsControl() bool {
	return k == StatusFreeze || k == StatusStun || k == StatusSleep
}

// IsDOT reports whether the status ticks damage at turn start.
func (k StatusKind) IsDOT() bool {
	return k >= StatusBurn && k <= StatusDisease
}

// Stacks reports whether repeated applications add their per-turn value.
func (k StatusKind) Stacks() bool {
	return k == StatusPoison || k == StatusBleed
}

// IsDebuff reports whether the status is harmful and can be removed by a cleanse.
func (k StatusKind) IsDebuff() bool {
	switch k {
	case StatusFreeze, StatusStun, StatusSleep, StatusSilence, StatusDisarm,
		StatusBurn, StatusPoison, StatusBleed, StatusDisease,
		StatusArmorBreak, StatusAtkDebuff, StatusDefDebuff, StatusMdefDebuff, StatusEvadeDebuff:
		return true
	}
	return false
}

// IsTimer reports whether the status is decremented by the generic timer pass.
// Control statuses are consumed when they skip a turn, DOTs when they tick.
func (k StatusKind) IsTimer() bool {
	return k < numStatusKinds && !k.IsControl() && !k.IsDOT()
}

// StatusKinds returns every status kind in declaration order.
func StatusKinds() []StatusKind {
	kinds := make([]StatusKind, 0, numStatusKinds)
	for k := StatusKind(0); k < numStatusKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Status is one counter: remaining turns plus an optional magnitude.
// SourceID references another unit for relational statuses (taunt target, soul-link protector).
type Status struct {
	Turns    int
	Value    float64
	SourceID string
}

// StatusSet holds all status counters of a unit.
// Magnitudes may outlive their timers; reads gate on Turns > 0.
type StatusSet struct {
	entries [numStatusKinds]Status
}

// Apply adds or refreshes a status.
// Turns are extended with max() and never shortened. Stacking DOTs add their
// value while active, others keep the stronger value.
func (s *StatusSet) Apply(kind StatusKind, turns int, value float64, sourceID string) {
	if kind >= numStatusKinds || turns <= 0 {
		return
	}
	e := &s.entries[kind]
	active := e.Turns > 0
	switch {
	case !active:
		e.Value = value
	case kind.Stacks():
		e.Value += value
	case value > e.Value:
		e.Value = value
	}
	e.Turns = max(e.Turns, turns)
	if sourceID != "" {
		e.SourceID = sourceID
	}
}

// Active reports whether the status has turns remaining.
func (s *StatusSet) Active(kind StatusKind) bool {
	return kind < numStatusKinds && s.entries[kind].Turns > 0
}

// Turns returns the remaining turns.
func (s *StatusSet) Turns(kind StatusKind) int {
	if kind >= numStatusKinds {
		return 0
	}
	return s.entries[kind].Turns
}

// Value returns the magnitude, or 0 when the status is not active.
func (s *StatusSet) Value(kind StatusKind) float64 {
	if !s.Active(kind) {
		return 0
	}
	return s.entries[kind].Value
}

// Source returns the linked unit id of an active relational status.
func (s *StatusSet) Source(kind StatusKind) string {
	if !s.Active(kind) {
		return ""
	}
	return s.entries[kind].SourceID
}

// Get returns the raw entry, including stale magnitudes.
func (s *StatusSet) Get(kind StatusKind) Status {
	if kind >= numStatusKinds {
		return Status{}
	}
	return s.entries[kind]
}

// Tick removes one turn and reports whether the status just expired.
func (s *StatusSet) Tick(kind StatusKind) bool {
	if !s.Active(kind) {
		return false
	}
	s.entries[kind].Turns--
	return s.entries[kind].Turns == 0
}

// Clear removes the status entirely.
func (s *StatusSet) Clear(kind StatusKind) {
	if kind < numStatusKinds {
		s.entries[kind] = Status{}
	}
}

// ClearAll resets every counter.
func (s *StatusSet) ClearAll() {
	s.entries = [numStatusKinds]Status{}
}

// ActiveDebuffs lists harmful statuses with turns remaining.
func (s *StatusSet) ActiveDebuffs() []StatusKind {
	var out []StatusKind
	for k := StatusKind(0); k < numStatusKinds; k++ {
		if k.IsDebuff() && s.entries[k].Turns > 0 {
			out = append(out, k)
		}
	}
	return out
}
