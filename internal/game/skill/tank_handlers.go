package skill

import (
	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/model"
)

func init() {
	RegisterHandler("soul_link", HandlerFunc(soulLink))
	RegisterHandler("turtle_protection", selfStatus(model.StatusProtecting, 0))
	RegisterHandler("rhino_counter", selfStatus(model.StatusCounter, 0))
	RegisterHandler("pangolin_reflect", selfStatus(model.StatusPhysReflect, 1))
	RegisterHandler("damage_shield_taunt", HandlerFunc(damageShieldTaunt))
	RegisterHandler("damage_shield_reflect", HandlerFunc(damageShieldReflect))
	RegisterHandler("knockback_charge", HandlerFunc(knockbackCharge))
}

// selfStatus grants the caster one status for "turns" turns.
func selfStatus(kind model.StatusKind, value float64) Handler {
	return HandlerFunc(func(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
		ctx.S.ApplyStatus(att, att, kind, sk.IntParam("turns", 2), value)
	})
}

// soulLink makes the caster the guardian of the weakest allies: splash aimed
// at them is redirected to the caster regardless of distance.
func soulLink(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	turns := sk.IntParam("turns", 3)
	ctx.S.ApplyStatus(att, att, model.StatusProtecting, turns, 0)
	for i, a := range ByHPRatio(others(att, ctx.S.Allies(att))) {
		if i >= sk.IntParam("max_targets", 2) {
			break
		}
		ctx.S.ApplyStatus(att, a, model.StatusSoulLink, turns, 0)
	}
}

// damageShieldTaunt hits, shields the caster and forces every enemy to target it.
func damageShieldTaunt(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target != nil {
		ctx.Hit(att, target, sk, ctx.Raw(att, sk))
	}
	shield := sk.Param("shield_base", 30) + float64(att.EffectiveAtk())*sk.Param("shield_scale", 0.3)
	ctx.S.AddShield(att, shield*ctx.Power(att))
	// +1: the taunt ticks once at the start of the caster's own turn.
	turns := sk.IntParam("taunt_turns", 2) + 1
	for _, e := range ctx.S.Enemies(att) {
		ctx.S.ApplyStatus(att, e, model.StatusTaunt, turns, 0)
	}
}

func damageShieldReflect(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target != nil {
		ctx.Hit(att, target, sk, ctx.Raw(att, sk))
	}
	shield := sk.Param("shield_base", 30) + float64(att.EffectiveDef())*sk.Param("shield_scale", 0.5)
	ctx.S.AddShield(att, shield*ctx.Power(att))
	ctx.S.ApplyStatus(att, att, model.StatusReflect, sk.IntParam("reflect_turns", 2), sk.Param("reflect_pct", 0.3))
}

// knockbackCharge hits and pushes a surviving target toward its backline.
func knockbackCharge(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	ctx.Hit(att, target, sk, ctx.Raw(att, sk))
	if target.IsAlive() {
		ctx.Knockback(target, model.PushDirection(att.Side))
	}
}
