package combat

import (
	"log/slog"
	"math"

	"github.com/udisondev/beastarena/internal/model"
)

// dotOrder is the tick order of damage-over-time statuses.
var dotOrder = [...]model.StatusKind{
	model.StatusBurn,
	model.StatusPoison,
	model.StatusBleed,
	model.StatusDisease,
}

// controlOrder is the precedence of turn-skipping controls.
var controlOrder = [...]model.StatusKind{
	model.StatusFreeze,
	model.StatusStun,
	model.StatusSleep,
}

// ApplyStatus applies a status to target. Immune units ignore debuffs.
// Returns false when nothing was applied.
func (s *Session) ApplyStatus(source, target *model.CombatUnit, kind model.StatusKind, turns int, value float64) bool {
	if target == nil || !target.IsAlive() || turns <= 0 {
		return false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		slog.Error("invalid status value, clamped to 0", "status", kind.String(), "value", value, "target", target.ID)
		value = 0
	}
	if kind.IsDebuff() && target.Statuses.Active(model.StatusImmune) {
		s.emit(Event{Kind: EventStatus, Source: unitID(source), Target: target.ID, Status: kind.String(), Text: "immune"})
		return false
	}
	target.Statuses.Apply(kind, turns, value, unitID(source))
	s.emit(Event{
		Kind:   EventStatus,
		Source: unitID(source),
		Target: target.ID,
		Status: kind.String(),
		Amount: turns,
	})
	return true
}

// TurnStart is the outcome of status processing at the start of a unit's turn.
type TurnStart struct {
	Skipped bool
	Reason  string // "dot" when DOTs killed the unit, else the control status name
}

// StartTurn runs the status processor for u: timers tick, DOTs deal one true-damage
// tick each, then a freeze/stun/sleep consumes the turn.
func (s *Session) StartTurn(u *model.CombatUnit) TurnStart {
	if !u.IsAlive() {
		return TurnStart{Skipped: true, Reason: "dead"}
	}

	for _, k := range model.StatusKinds() {
		if !k.IsTimer() {
			continue
		}
		if u.Statuses.Tick(k) {
			s.emit(Event{Kind: EventStatus, Target: u.ID, Status: k.String(), Text: "expired"})
		}
	}

	for _, k := range dotOrder {
		if !u.IsAlive() {
			break
		}
		if !u.Statuses.Active(k) {
			continue
		}
		amount := max(1, int(math.Round(u.Statuses.Value(k))))
		s.Resolve(nil, u, float64(amount), model.DamageTrue, HitOptions{
			ForceHit:    true,
			NoRage:      true,
			NoReflect:   true,
			NoCounter:   true,
			NoStunBonus: true,
			Label:       k.String(),
		})
		if k == model.StatusDisease && u.IsAlive() {
			s.spreadDisease(u)
		}
		u.Statuses.Tick(k)
	}

	if !u.IsAlive() {
		return TurnStart{Skipped: true, Reason: "dot"}
	}

	for _, k := range controlOrder {
		if !u.Statuses.Active(k) {
			continue
		}
		u.Statuses.Tick(k)
		slog.Debug("turn skipped", "unit", u.ID, "status", k.String())
		s.emit(Event{Kind: EventTurnSkip, Target: u.ID, Status: k.String()})
		return TurnStart{Skipped: true, Reason: k.String()}
	}
	return TurnStart{}
}

// spreadDisease infects orthogonal same-side neighbours that are not diseased yet.
func (s *Session) spreadDisease(u *model.CombatUnit) {
	value := u.Statuses.Value(model.StatusDisease)
	src := s.UnitByID(u.Statuses.Source(model.StatusDisease))
	for _, v := range s.Units {
		if v == u || !v.IsAlive() || v.Side != u.Side {
			continue
		}
		if !model.Adjacent4(u, v) || v.Statuses.Active(model.StatusDisease) {
			continue
		}
		s.ApplyStatus(src, v, model.StatusDisease, s.Battle.DiseaseSpreadTurns, value)
	}
}
