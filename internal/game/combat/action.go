package combat

import (
	"log/slog"

	"github.com/udisondev/beastarena/internal/model"
)

// ActionKind is the per-turn decision of the action resolver.
type ActionKind uint8

const (
	ActionNone     ActionKind = iota // no living enemy left
	ActionDisarmed                   // turn consumed, no damage
	ActionSkill
	ActionBasic
)

func (k ActionKind) String() string {
	switch k {
	case ActionDisarmed:
		return "disarmed"
	case ActionSkill:
		return "skill"
	case ActionBasic:
		return "basic"
	default:
		return "none"
	}
}

// Action is what a unit does this turn.
type Action struct {
	Kind   ActionKind
	Target *model.CombatUnit
	// ResetRage tells the caller to empty the rage bar before casting.
	ResetRage bool
}

// DecideAction picks the action of u after status processing.
// It does not mutate u; the caller applies ResetRage.
func (s *Session) DecideAction(u *model.CombatUnit) Action {
	if u.Statuses.Active(model.StatusDisarm) {
		return Action{Kind: ActionDisarmed}
	}
	target := s.SelectTarget(u, false)
	if u.RageFull() && !u.Statuses.Active(model.StatusSilence) {
		return Action{Kind: ActionSkill, Target: target, ResetRage: true}
	}
	if target == nil {
		return Action{Kind: ActionNone}
	}
	return Action{Kind: ActionBasic, Target: target}
}

// BasicAttack hits target with u's basic attack: raw = scale stat + rand[-5, 6].
// Units whose scale stat is 0 deal no damage.
func (s *Session) BasicAttack(u, target *model.CombatUnit, opts HitOptions) int {
	if u == nil || target == nil || !u.IsAlive() || !target.IsAlive() {
		return 0
	}
	stat := u.StatValue(u.Mods.BasicScaleStat)
	if stat <= 0 {
		slog.Debug("basic attack without damage", "unit", u.ID, "stat", string(u.Mods.BasicScaleStat))
		return 0
	}
	raw := max(1, stat+s.Rand.IntN(12)-5)
	if opts.Label == "" {
		opts.Label = "basic"
	}
	return s.Resolve(u, target, float64(raw), u.Mods.BasicDamageType, opts)
}
