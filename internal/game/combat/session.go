package combat

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/beastarena/internal/ai"
	"github.com/udisondev/beastarena/internal/config"
	"github.com/udisondev/beastarena/internal/model"
)

// Session хранит состояние одного боя (CombatSession).
// Every resolver call goes through it; it owns the randomness, the
// prolonged-fight multiplier, the action counter and the loot bookkeeping.
// A Session is single-threaded: only the component currently running mutates it.
type Session struct {
	Units []*model.CombatUnit

	Rand     *rand.Rand
	Battle   config.Battle
	Profile  config.Difficulty
	Rates    config.Rates
	Selector ai.TargetSelector

	// Gold is the player's banked gold; it drives the gold reserve multiplier.
	Gold int

	DamageMult  float64
	ActionCount int
	BonusGold   int
	Drops       []DropResult

	observer   Observer
	rageFilled []func(*model.CombatUnit)

	depth    int
	maxDepth int
}

// NewSession creates a session over units with a runtime-seeded generator.
func NewSession(units []*model.CombatUnit, battle config.Battle, profile config.Difficulty) *Session {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	s := &Session{
		Units:    units,
		Rand:     rng,
		Battle:   battle,
		Profile:  profile,
		Rates:    config.DefaultRates(),
		Selector: ai.NewScoreSelector(rng),
		observer: nopObserver{},
	}
	s.Reset()
	return s
}

// SetRand replaces the generator; the default selector follows it.
func (s *Session) SetRand(rng *rand.Rand) {
	s.Rand = rng
	if sel, ok := s.Selector.(*ai.ScoreSelector); ok {
		sel.Rand = rng
	}
}

// SetObserver sets the presentation observer (nil detaches it).
func (s *Session) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	s.observer = o
}

// OnRageFilled registers a listener called when a unit's rage just reached RageMax.
func (s *Session) OnRageFilled(fn func(*model.CombatUnit)) {
	s.rageFilled = append(s.rageFilled, fn)
}

// Reset clears the per-combat counters. Called at combat start and end.
func (s *Session) Reset() {
	s.DamageMult = 1
	s.ActionCount = 0
	s.BonusGold = 0
	s.Drops = nil
	s.depth = 0
	s.maxDepth = 0
}

// MaxDepth returns the deepest resolver nesting observed since Reset.
func (s *Session) MaxDepth() int { return s.maxDepth }

// GoldMult returns the gold reserve multiplier for the banked gold.
func (s *Session) GoldMult() float64 {
	return s.Battle.GoldReserve.Multiplier(s.Gold)
}

// RecordAction counts one acted turn and raises the prolonged-fight multiplier
// every SuddenDeath.Every actions past SuddenDeath.AfterActions.
func (s *Session) RecordAction() {
	s.ActionCount++
	sd := s.Battle.SuddenDeath
	if sd.Every <= 0 || s.ActionCount <= sd.AfterActions {
		return
	}
	if (s.ActionCount-sd.AfterActions)%sd.Every == 0 {
		s.DamageMult += sd.Step
		slog.Debug("sudden death multiplier raised", "actions", s.ActionCount, "mult", s.DamageMult)
		s.emit(Event{Kind: EventNote, Text: "sudden death", Amount: int(s.DamageMult * 100)})
	}
}

// Emit forwards an event to the observer.
func (s *Session) Emit(e Event) { s.emit(e) }

func (s *Session) emit(e Event) {
	s.observer.Observe(e)
}

// SelectTarget asks the target selector for a living enemy of u.
func (s *Session) SelectTarget(u *model.CombatUnit, deterministic bool) *model.CombatUnit {
	if s.Selector == nil {
		return nil
	}
	return s.Selector.SelectTarget(u, s.Units, s.Profile, ai.Options{Deterministic: deterministic})
}

// Enemies returns living units of the side opposite to u.
func (s *Session) Enemies(u *model.CombatUnit) []*model.CombatUnit {
	return s.living(u.Side.Opposite())
}

// Allies returns living units on u's side, u included.
func (s *Session) Allies(u *model.CombatUnit) []*model.CombatUnit {
	return s.living(u.Side)
}

// DeadAllies returns dead units on u's side.
func (s *Session) DeadAllies(u *model.CombatUnit) []*model.CombatUnit {
	var out []*model.CombatUnit
	for _, v := range s.Units {
		if !v.IsAlive() && v.Side == u.Side {
			out = append(out, v)
		}
	}
	return out
}

// Living returns living units of one side in board order of s.Units.
func (s *Session) Living(side model.Side) []*model.CombatUnit {
	return s.living(side)
}

func (s *Session) living(side model.Side) []*model.CombatUnit {
	out := make([]*model.CombatUnit, 0, len(s.Units))
	for _, v := range s.Units {
		if v.IsAlive() && v.Side == side {
			out = append(out, v)
		}
	}
	return out
}

// UnitAt returns the living unit of side at (row, col), or nil.
func (s *Session) UnitAt(side model.Side, row, col int) *model.CombatUnit {
	for _, v := range s.Units {
		if v.IsAlive() && v.Side == side && v.Row == row && v.Col == col {
			return v
		}
	}
	return nil
}

// Occupant returns the living unit at (row, col) regardless of side.
func (s *Session) Occupant(row, col int) *model.CombatUnit {
	for _, v := range s.Units {
		if v.IsAlive() && v.Row == row && v.Col == col {
			return v
		}
	}
	return nil
}

// UnitByID returns a unit by id, dead or alive.
func (s *Session) UnitByID(id string) *model.CombatUnit {
	if id == "" {
		return nil
	}
	for _, v := range s.Units {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// SideAlive reports whether side has at least one living unit.
func (s *Session) SideAlive(side model.Side) bool {
	for _, v := range s.Units {
		if v.IsAlive() && v.Side == side {
			return true
		}
	}
	return false
}

// AddRage gives delta rage to u and fires the rage-filled listeners
// when the bar just filled.
func (s *Session) AddRage(u *model.CombatUnit, delta int) {
	if u == nil || !u.IsAlive() || delta == 0 {
		return
	}
	if u.AddRage(delta) {
		for _, fn := range s.rageFilled {
			fn(u)
		}
	}
}

func unitID(u *model.CombatUnit) string {
	if u == nil {
		return ""
	}
	return u.ID
}
