package combat

import (
	"log/slog"
	"math"

	"github.com/udisondev/beastarena/internal/model"
)

// Множители урона.
const (
	CritMultiplier       = 1.5
	CounterBonus         = 1.5 // non-tank attacker hitting the element it beats
	CounterTankReduction = 0.5 // tank defender hit by the element that beats it
)

// HitOptions tune a single Resolve call.
type HitOptions struct {
	IsSplash    bool // area damage, may be redirected to a protecting tank
	IsProtected bool // already redirected once
	ForceHit    bool // skips the accuracy roll
	IsSkill     bool // skill damage: no accuracy roll, no attacker rage for non-casters
	NoRage      bool
	NoReflect   bool
	NoCounter   bool
	NoStunBonus bool
	ArmorPen    float64 // added to the attacker's ArmorPenPct
	CritBonus   float64 // added to the attacker's CritPct
	Label       string
}

// HitResult содержит результат одного удара.
type HitResult struct {
	Attacker   string
	Defender   string
	Final      int // damage after mitigation and multipliers, before shield
	Absorbed   int
	HPLoss     int
	Miss       bool
	Crit       bool
	Killed     bool
	Redirected bool
}

// Mitigate applies the defense formula raw × 100 / (100 + max(0, def − armorBreak) × (1 − pen)).
func Mitigate(raw float64, def, armorBreak int, pen float64) float64 {
	pen = math.Min(math.Max(pen, 0), 1)
	eff := float64(max(0, def-armorBreak)) * (1 - pen)
	return raw * 100 / (100 + eff)
}

// HitChance returns the probability that a physical basic hit lands.
func HitChance(attacker, defender *model.CombatUnit, maxEvade float64) float64 {
	miss := defender.Evasion() - attacker.Mods.AccuracyPct
	miss = math.Min(math.Max(miss, 0), maxEvade)
	return 1 - miss
}

// ElementalFactor returns the raw damage factor for the element counter table.
func ElementalFactor(attacker, defender *model.CombatUnit) float64 {
	if !attacker.Element.Counters(defender.Element) {
		return 1
	}
	switch {
	case attacker.IsTank():
		return 1
	case defender.IsTank():
		return CounterTankReduction
	default:
		return CounterBonus
	}
}

// TierStunChance returns the bonus stun chance of an attacker tier.
func TierStunChance(tier int) float64 {
	switch {
	case tier >= 5:
		return 0.3
	case tier >= 4:
		return 0.2
	default:
		return 0
	}
}

// Resolve applies one damage event and returns the HP actually lost by the defender.
// attacker may be nil for environmental damage (DOT ticks).
func (s *Session) Resolve(attacker, defender *model.CombatUnit, raw float64, dt model.DamageType, opts HitOptions) int {
	return s.ResolveHit(attacker, defender, raw, dt, opts).HPLoss
}

// ResolveHit is Resolve with the full breakdown.
func (s *Session) ResolveHit(attacker, defender *model.CombatUnit, raw float64, dt model.DamageType, opts HitOptions) HitResult {
	res := HitResult{Attacker: unitID(attacker), Defender: unitID(defender)}
	if defender == nil || !defender.IsAlive() {
		return res
	}
	if attacker != nil && !attacker.IsAlive() {
		return res
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
		slog.Error("invalid damage amount, clamped to 0",
			"raw", raw,
			"attacker", res.Attacker,
			"defender", res.Defender,
			"label", opts.Label)
		return res
	}
	if raw == 0 {
		return res
	}
	switch dt {
	case model.DamagePhysical, model.DamageMagic, model.DamageTrue:
	default:
		slog.Error("unknown damage type, using physical", "type", string(dt), "label", opts.Label)
		dt = model.DamagePhysical
	}

	s.depth++
	s.maxDepth = max(s.maxDepth, s.depth)
	defer func() { s.depth-- }()

	// перенаправление сплеша на защищающего танка
	if opts.IsSplash && !opts.IsProtected {
		if p := s.protectorOf(defender); p != nil {
			s.emit(Event{Kind: EventNote, Source: p.ID, Target: defender.ID, Text: "protect"})
			defender = p
			res.Defender = p.ID
			res.Redirected = true
			raw *= s.Battle.ProtectRedirect
			opts.IsSplash = false
			opts.IsProtected = true
			opts.ForceHit = true
		}
	}

	if attacker != nil && dt == model.DamagePhysical && !opts.ForceHit && !opts.IsSkill {
		if s.Rand.Float64() >= HitChance(attacker, defender, s.Battle.MaxEvade) {
			res.Miss = true
			s.emit(Event{Kind: EventMiss, Source: attacker.ID, Target: defender.ID, Text: opts.Label})
			if !opts.NoRage {
				s.AddRage(defender, 1)
			}
			return res
		}
	}

	if attacker != nil {
		raw *= ElementalFactor(attacker, defender)
	}

	if attacker != nil && dt == model.DamagePhysical {
		if chance := attacker.Mods.CritPct + opts.CritBonus; chance > 0 && s.Rand.Float64() < chance {
			res.Crit = true
			raw *= CritMultiplier
		}
	}

	final := raw
	if !res.Crit {
		pen := opts.ArmorPen
		if attacker != nil {
			pen += attacker.Mods.ArmorPenPct
		}
		switch dt {
		case model.DamagePhysical:
			final = Mitigate(raw, defender.EffectiveDef(), defender.ArmorBreak(), pen)
		case model.DamageMagic:
			final = Mitigate(raw, defender.EffectiveMdef(), 0, pen)
		}
	}

	stunBonus := false
	if attacker != nil && !opts.NoStunBonus {
		if chance := TierStunChance(attacker.Tier); chance > 0 && s.Rand.Float64() < chance {
			stunBonus = true
		}
	}

	final *= s.DamageMult
	dmg := max(1, int(math.Round(final)))
	res.Final = dmg

	res.Absorbed = defender.AbsorbDamage(dmg)
	if res.Absorbed > 0 {
		s.emit(Event{Kind: EventAbsorb, Source: res.Attacker, Target: defender.ID, Amount: res.Absorbed})
	}
	damageLeft := dmg - res.Absorbed
	res.HPLoss = defender.TakeDamage(damageLeft)
	if res.HPLoss > 0 {
		s.emit(Event{
			Kind:   EventDamage,
			Source: res.Attacker,
			Target: defender.ID,
			Amount: res.HPLoss,
			Text:   opts.Label,
			Row:    defender.Row,
			Col:    defender.Col,
		})
	}

	slog.Debug("damage resolved",
		"attacker", res.Attacker,
		"defender", defender.ID,
		"type", string(dt),
		"final", dmg,
		"absorbed", res.Absorbed,
		"hp_loss", res.HPLoss,
		"crit", res.Crit,
		"label", opts.Label)

	if !opts.NoRage {
		if attacker != nil && res.HPLoss > 0 && !(opts.IsSkill && !attacker.Class.IsCaster()) {
			s.AddRage(attacker, s.attackerRageGain(attacker))
		}
		s.AddRage(defender, 1)
	}

	if attacker != nil && defender.IsAlive() {
		if attacker.Mods.BurnOnHit > 0 {
			s.ApplyStatus(attacker, defender, model.StatusBurn, 2, float64(attacker.Mods.BurnOnHit))
		}
		if attacker.Mods.PoisonOnHit > 0 {
			s.ApplyStatus(attacker, defender, model.StatusPoison, 2, float64(attacker.Mods.PoisonOnHit))
		}
	}

	if stunBonus && defender.IsAlive() {
		s.ApplyStatus(attacker, defender, model.StatusStun, 1, 0)
	}

	// отражение: ответный удар всегда несёт NoReflect
	if attacker != nil && !opts.NoReflect && damageLeft > 0 && attacker.IsAlive() {
		reflectOpts := HitOptions{
			NoReflect:   true,
			NoCounter:   true,
			ForceHit:    true,
			NoStunBonus: true,
			Label:       "reflect",
		}
		if pct := defender.Statuses.Value(model.StatusReflect); pct > 0 {
			reflected := max(1, int(math.Round(float64(damageLeft)*pct)))
			s.Resolve(defender, attacker, float64(reflected), model.DamageTrue, reflectOpts)
		} else if dt == model.DamagePhysical && defender.Statuses.Active(model.StatusPhysReflect) {
			s.Resolve(defender, attacker, float64(damageLeft), model.DamageTrue, reflectOpts)
		}
	}

	if attacker != nil && attacker.IsMelee() && !opts.NoCounter &&
		defender.IsAlive() && attacker.IsAlive() && defender.Statuses.Active(model.StatusCounter) {
		s.BasicAttack(defender, attacker, HitOptions{NoCounter: true, NoReflect: true, Label: "counter"})
	}

	if attacker != nil && attacker.IsAlive() && damageLeft > 0 && attacker.Mods.LifestealPct > 0 {
		if heal := int(math.Round(float64(damageLeft) * attacker.Mods.LifestealPct)); heal > 0 {
			s.Heal(attacker, attacker, float64(heal))
		}
	}

	if !defender.IsAlive() {
		res.Killed = true
		s.onDeath(attacker, defender)
	}
	return res
}

func (s *Session) attackerRageGain(attacker *model.CombatUnit) int {
	if attacker.Side == model.SideRight {
		return max(1, s.Profile.RageGain)
	}
	return 1
}

// protectorOf returns the living ally protecting u: its soul-link guardian,
// or an adjacent ally that protects its neighbours.
func (s *Session) protectorOf(u *model.CombatUnit) *model.CombatUnit {
	if g := s.UnitByID(u.Statuses.Source(model.StatusSoulLink)); g != nil && g != u &&
		g.IsAlive() && g.Statuses.Active(model.StatusProtecting) {
		return g
	}
	for _, v := range s.Units {
		if v == u || !v.IsAlive() || v.Side != u.Side {
			continue
		}
		if v.Statuses.Active(model.StatusProtecting) && model.Adjacent8(u, v) {
			return v
		}
	}
	return nil
}

func (s *Session) onDeath(killer, u *model.CombatUnit) {
	u.Kill()
	slog.Debug("unit died", "unit", u.ID, "killer", unitID(killer))
	s.emit(Event{Kind: EventDeath, Source: unitID(killer), Target: u.ID, Row: u.Row, Col: u.Col})
	if u.Generated && (killer == nil || killer.Side != u.Side) {
		s.rollLoot(u)
	}
}

// Heal restores HP to target, boosted by the caster's heal bonus. Returns the HP restored.
func (s *Session) Heal(caster, target *model.CombatUnit, amount float64) int {
	if target == nil || !target.IsAlive() {
		return 0
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		slog.Error("invalid heal amount, clamped to 0", "amount", amount, "target", target.ID)
		return 0
	}
	bonus := 1.0
	if caster != nil {
		bonus += caster.Mods.HealPct
	}
	raw := max(1, int(math.Round(amount*bonus)))
	applied := target.Heal(raw)
	if applied > 0 {
		s.emit(Event{Kind: EventHeal, Source: unitID(caster), Target: target.ID, Amount: applied})
	}
	return applied
}

// AddShield grants max(1, round(amount)) shield to a living target.
func (s *Session) AddShield(target *model.CombatUnit, amount float64) int {
	if target == nil || !target.IsAlive() {
		return 0
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		slog.Error("invalid shield amount, clamped to 0", "amount", amount, "target", target.ID)
		return 0
	}
	val := max(1, int(math.Round(amount)))
	target.AddShield(val)
	s.emit(Event{Kind: EventShield, Target: target.ID, Amount: val})
	return val
}

// Revive brings a dead unit back with pct of its MaxHP.
func (s *Session) Revive(caster, target *model.CombatUnit, pct float64) bool {
	if target == nil || !target.Revive(pct) {
		return false
	}
	s.emit(Event{Kind: EventRevive, Source: unitID(caster), Target: target.ID, Amount: target.HP()})
	return true
}
