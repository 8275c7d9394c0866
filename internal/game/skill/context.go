package skill

import (
	"log/slog"
	"math"
	"sort"

	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/model"
)

// Context gives handlers access to the session and the shared skill math.
type Context struct {
	S *combat.Session
}

// Raw returns the skill's raw amount for attacker:
// (base + stat × scale) × star power × gold reserve multiplier.
func (c *Context) Raw(attacker *model.CombatUnit, sk *data.Skill) float64 {
	return c.RawWith(attacker, sk, sk.Base, sk.Scale)
}

// RawWith is Raw with explicit base and scale (multi-hit and echo parts).
func (c *Context) RawWith(attacker *model.CombatUnit, sk *data.Skill, base, scale float64) float64 {
	stat := sk.ScaleStat
	if stat == "" {
		stat = model.ScaleAtk
	}
	raw := base + float64(attacker.StatValue(stat))*scale
	return raw * c.S.Battle.StarPower(attacker.Star) * c.S.GoldMult()
}

// DamageType returns the skill's damage type; unknown values are logged and read as physical.
func (c *Context) DamageType(sk *data.Skill) model.DamageType {
	dt, ok := model.ParseDamageType(sk.DamageType)
	if !ok {
		slog.Error("unknown skill damage type, using physical", "skill", sk.ID, "type", sk.DamageType)
	}
	return dt
}

// Hit resolves one skill damage instance of the skill's damage type.
func (c *Context) Hit(attacker, target *model.CombatUnit, sk *data.Skill, raw float64) combat.HitResult {
	return c.HitWith(attacker, target, sk, raw, c.DamageType(sk), combat.HitOptions{})
}

// Splash resolves a secondary area hit that a protecting tank may intercept.
func (c *Context) Splash(attacker, target *model.CombatUnit, sk *data.Skill, raw float64) combat.HitResult {
	return c.HitWith(attacker, target, sk, raw, c.DamageType(sk), combat.HitOptions{IsSplash: true})
}

// HitWith resolves a skill hit with explicit type and options.
func (c *Context) HitWith(attacker, target *model.CombatUnit, sk *data.Skill, raw float64, dt model.DamageType, opts combat.HitOptions) combat.HitResult {
	opts.IsSkill = true
	if opts.Label == "" {
		opts.Label = sk.Name
	}
	return c.S.ResolveHit(attacker, target, raw, dt, opts)
}

// Chance scales a base proc chance by star and gold reserve, capped at 1.
func (c *Context) Chance(attacker *model.CombatUnit, base float64) float64 {
	return math.Min(1, base*c.S.Battle.StarChanceMult(attacker.Star)*c.S.GoldMult())
}

// Roll reports whether a proc with the scaled chance fires.
func (c *Context) Roll(attacker *model.CombatUnit, base float64) bool {
	p := c.Chance(attacker, base)
	if p <= 0 {
		return false
	}
	return p >= 1 || c.S.Rand.Float64() < p
}

// AreaBonus returns the extra area radius granted at high star.
func (c *Context) AreaBonus(attacker *model.CombatUnit) int {
	if n := c.S.Battle.AreaBonusStar; n > 0 && attacker.Star >= n {
		return 1
	}
	return 0
}

// TargetBonus returns the extra target count of multi-target skills.
func (c *Context) TargetBonus(attacker *model.CombatUnit) int {
	return max(0, attacker.Star-1)
}

// Power returns the star power multiplier of attacker.
func (c *Context) Power(attacker *model.CombatUnit) float64 {
	return c.S.Battle.StarPower(attacker.Star)
}

// KillCredit grants the skill's last-hit bonuses: kill_gold and kill_rage.
func (c *Context) KillCredit(attacker *model.CombatUnit, sk *data.Skill) {
	if gold := sk.IntParam("kill_gold", 0); gold > 0 {
		c.S.BonusGold += gold
		c.S.Emit(combat.Event{Kind: combat.EventNote, Source: attacker.ID, Text: "kill gold", Amount: gold})
	}
	if rage := sk.IntParam("kill_rage", 0); rage > 0 {
		c.S.AddRage(attacker, rage)
	}
}

// Sample returns up to n units drawn without replacement.
func (c *Context) Sample(units []*model.CombatUnit, n int) []*model.CombatUnit {
	pool := append([]*model.CombatUnit(nil), units...)
	c.S.Rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n < len(pool) {
		pool = pool[:max(0, n)]
	}
	return pool
}

// ByHPRatio sorts units by ascending HP ratio; ties keep input order.
func ByHPRatio(units []*model.CombatUnit) []*model.CombatUnit {
	out := append([]*model.CombatUnit(nil), units...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].HPRatio() < out[j].HPRatio() })
	return out
}

// ByDistance sorts units by Manhattan distance from origin; ties keep input order.
func ByDistance(origin *model.CombatUnit, units []*model.CombatUnit) []*model.CombatUnit {
	out := append([]*model.CombatUnit(nil), units...)
	sort.SliceStable(out, func(i, j int) bool {
		return model.Manhattan(origin, out[i]) < model.Manhattan(origin, out[j])
	})
	return out
}

// buff applies a status to each unit with the attacker as source.
func (c *Context) buff(attacker *model.CombatUnit, units []*model.CombatUnit, kind model.StatusKind, turns int, value float64) {
	for _, u := range units {
		c.S.ApplyStatus(attacker, u, kind, turns, value)
	}
}

func others(self *model.CombatUnit, units []*model.CombatUnit) []*model.CombatUnit {
	out := make([]*model.CombatUnit, 0, len(units))
	for _, u := range units {
		if u != self {
			out = append(out, u)
		}
	}
	return out
}
