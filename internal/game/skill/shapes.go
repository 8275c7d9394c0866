package skill

import (
	"math"

	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/model"
)

// Shape selects the enemies an area skill hits.
type Shape string

const (
	ShapeSingle Shape = "single"
	ShapeCross  Shape = "cross"
	ShapeCircle Shape = "aoe_circle"
	ShapeRow    Shape = "row"
	ShapeColumn Shape = "column"
	ShapeCone   Shape = "cone"
	ShapeGlobal Shape = "global"
	ShapeRandom Shape = "random"
)

// Shapes lists every composite shape.
var Shapes = []Shape{ShapeSingle, ShapeCross, ShapeCircle, ShapeRow, ShapeColumn, ShapeCone, ShapeGlobal, ShapeRandom}

// Rider is the status a composite skill applies to each surviving victim.
type Rider string

const (
	RiderNone        Rider = ""
	RiderStun        Rider = "stun"
	RiderFreeze      Rider = "freeze"
	RiderSleep       Rider = "sleep"
	RiderSilence     Rider = "silence"
	RiderDisarm      Rider = "disarm"
	RiderBurn        Rider = "burn"
	RiderPoison      Rider = "poison"
	RiderBleed       Rider = "bleed"
	RiderDisease     Rider = "disease"
	RiderArmorBreak  Rider = "armor_break"
	RiderAtkDebuff   Rider = "atk_debuff"
	RiderEvadeDebuff Rider = "evade_debuff"
)

// Riders lists every composite rider.
var Riders = []Rider{
	RiderNone, RiderStun, RiderFreeze, RiderSleep, RiderSilence, RiderDisarm,
	RiderBurn, RiderPoison, RiderBleed, RiderDisease,
	RiderArmorBreak, RiderAtkDebuff, RiderEvadeDebuff,
}

// CompositeTag returns the effect tag of a shape and rider.
func CompositeTag(shape Shape, rider Rider) string {
	if rider == RiderNone {
		return string(shape)
	}
	return string(shape) + "_" + string(rider)
}

func init() {
	for _, shape := range Shapes {
		for _, rider := range Riders {
			RegisterHandler(CompositeTag(shape, rider), composite(shape, rider))
		}
	}
}

// composite hits every victim of the shape, then applies the rider to survivors.
func composite(shape Shape, rider Rider) Handler {
	return HandlerFunc(func(ctx *Context, attacker, target *model.CombatUnit, sk *data.Skill) {
		if target == nil {
			return
		}
		raw := ctx.Raw(attacker, sk)
		for _, v := range ctx.Victims(shape, attacker, target, sk) {
			var r combat.HitResult
			if v == target || shape == ShapeGlobal || shape == ShapeRandom {
				r = ctx.Hit(attacker, v, sk, raw)
			} else {
				r = ctx.Splash(attacker, v, sk, raw)
			}
			// a redirected splash landed on the protector, not on v
			if r.Final > 0 && !r.Redirected && v.IsAlive() {
				ctx.applyRider(attacker, v, sk, rider, raw)
			}
		}
	})
}

// Victims returns the living enemies hit by a shape centred on target,
// the primary target first.
func (c *Context) Victims(shape Shape, attacker, target *model.CombatUnit, sk *data.Skill) []*model.CombatUnit {
	enemies := c.S.Enemies(attacker)
	if shape == ShapeRandom {
		n := sk.IntParam("max_hits", 3) + c.TargetBonus(attacker)
		return c.Sample(enemies, n)
	}

	r := 1 + c.AreaBonus(attacker)
	dir := model.PushDirection(attacker.Side)
	in := func(e *model.CombatUnit) bool {
		dr, dc := e.Row-target.Row, e.Col-target.Col
		switch shape {
		case ShapeSingle:
			return e == target
		case ShapeCross:
			return (dr == 0 || dc == 0) && iabs(dr)+iabs(dc) <= r
		case ShapeCircle:
			return iabs(dr) <= r && iabs(dc) <= r
		case ShapeRow:
			return iabs(dr) <= r-1
		case ShapeColumn:
			return iabs(dc) <= r-1
		case ShapeCone:
			depth := dc * dir
			return depth >= 0 && depth <= r && iabs(dr) <= depth
		case ShapeGlobal:
			return true
		}
		return false
	}

	out := []*model.CombatUnit{target}
	for _, e := range enemies {
		if e != target && in(e) {
			out = append(out, e)
		}
	}
	if !target.IsAlive() {
		out = out[1:]
	}
	return out
}

// applyRider applies a composite rider. Parameters are read as
// <rider>_chance, <rider>_turns and a rider-specific magnitude.
func (c *Context) applyRider(attacker, v *model.CombatUnit, sk *data.Skill, rider Rider, raw float64) {
	switch rider {
	case RiderNone:
		return
	case RiderStun, RiderFreeze, RiderSleep, RiderSilence, RiderDisarm:
		if !c.Roll(attacker, sk.Param(string(rider)+"_chance", 1)) {
			return
		}
		turns := sk.IntParam(string(rider)+"_turns", 1)
		c.S.ApplyStatus(attacker, v, riderStatus[rider], turns, 0)
	case RiderBurn:
		value := sk.Param("burn_per_turn", math.Round(raw*sk.Param("burn_mult", 0.2)))
		c.dot(attacker, v, sk, model.StatusBurn, "burn", 2, value)
	case RiderPoison:
		value := sk.Param("poison_per_turn", math.Round(raw*sk.Param("poison_mult", 0.25)))
		c.dot(attacker, v, sk, model.StatusPoison, "poison", 3, value)
	case RiderBleed:
		value := sk.Param("bleed_per_turn", math.Round(raw*sk.Param("bleed_scale", 0.25)))
		c.dot(attacker, v, sk, model.StatusBleed, "bleed", 2, value)
	case RiderDisease:
		value := sk.Param("disease_damage", math.Round(raw*0.2))
		c.dot(attacker, v, sk, model.StatusDisease, "disease", 3, value)
	case RiderArmorBreak:
		turns := firstInt(sk, 2, "armor_break_turns", "turns")
		c.S.ApplyStatus(attacker, v, model.StatusArmorBreak, turns, sk.Param("armor_break", 10))
	case RiderAtkDebuff:
		turns := firstInt(sk, 2, "debuff_turns", "turns")
		c.S.ApplyStatus(attacker, v, model.StatusAtkDebuff, turns, sk.Param("atk_debuff", 10))
	case RiderEvadeDebuff:
		turns := firstInt(sk, 2, "debuff_turns", "slow_turns", "turns")
		c.S.ApplyStatus(attacker, v, model.StatusEvadeDebuff, turns, sk.Param("evade_debuff", 0.1))
	}
}

var riderStatus = map[Rider]model.StatusKind{
	RiderStun:    model.StatusStun,
	RiderFreeze:  model.StatusFreeze,
	RiderSleep:   model.StatusSleep,
	RiderSilence: model.StatusSilence,
	RiderDisarm:  model.StatusDisarm,
}

// dot applies a damage-over-time rider with an optional <name>_chance roll.
func (c *Context) dot(attacker, v *model.CombatUnit, sk *data.Skill, kind model.StatusKind, name string, defTurns int, value float64) {
	if sk.Has(name+"_chance") && !c.Roll(attacker, sk.Param(name+"_chance", 1)) {
		return
	}
	c.S.ApplyStatus(attacker, v, kind, sk.IntParam(name+"_turns", defTurns), math.Max(1, value))
}

// firstInt returns the first present integer parameter among names, else def.
func firstInt(sk *data.Skill, def int, names ...string) int {
	for _, n := range names {
		if sk.Has(n) {
			return sk.IntParam(n, def)
		}
	}
	return def
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
