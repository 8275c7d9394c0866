package skill

import (
	"math"

	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/model"
)

func init() {
	RegisterHandler("single_burst", HandlerFunc(singleBurst))
	RegisterHandler("true_single", HandlerFunc(trueSingle))
	RegisterHandler("single_burst_armor_pen", HandlerFunc(singleBurstArmorPen))
	RegisterHandler("single_burst_lifesteal", HandlerFunc(singleBurstLifesteal))
	RegisterHandler("single_delayed_echo", HandlerFunc(singleDelayedEcho))
	RegisterHandler("single_strong_poison", HandlerFunc(singleStrongPoison))
	RegisterHandler("single_poison_slow", HandlerFunc(singlePoisonSlow))
	RegisterHandler("true_execute", HandlerFunc(trueExecute))
	RegisterHandler("execute_heal", HandlerFunc(executeHeal))
	RegisterHandler("double_hit", HandlerFunc(doubleHit))
	RegisterHandler("triple_hit", HandlerFunc(tripleHit))
	RegisterHandler("chain_strike", HandlerFunc(chainStrike))
	RegisterHandler("assassin_blink", HandlerFunc(assassinBlink))
	RegisterHandler("row_multi", HandlerFunc(rowMulti))
	RegisterHandler("column_plus_splash", HandlerFunc(columnPlusSplash))
	RegisterHandler("cleave_armor_break", HandlerFunc(cleaveArmorBreak))
	RegisterHandler("multi_disarm", HandlerFunc(multiDisarm))
	RegisterHandler("charge_dash", HandlerFunc(chargeDash))

	// Catalogue names for composite shapes.
	alias("damage_stun", ShapeSingle, RiderStun)
	alias("cross_5", ShapeCross, RiderNone)
	alias("random_multi", ShapeRandom, RiderNone)
	alias("random_lightning", ShapeRandom, RiderNone)
	alias("row_cleave", ShapeRow, RiderArmorBreak)
	alias("aoe_poison", ShapeCircle, RiderPoison)
	alias("cone_smash", ShapeCircle, RiderNone)
	alias("cone_shot", ShapeCone, RiderNone)
	alias("global_fire", ShapeGlobal, RiderBurn)
	alias("global_debuff_atk", ShapeGlobal, RiderAtkDebuff)
	alias("global_slow", ShapeGlobal, RiderEvadeDebuff)
}

func alias(tag string, shape Shape, rider Rider) {
	RegisterHandler(tag, composite(shape, rider))
}

func singleBurst(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	ctx.Hit(att, target, sk, ctx.Raw(att, sk))
}

func trueSingle(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	ctx.HitWith(att, target, sk, ctx.Raw(att, sk), model.DamageTrue, combat.HitOptions{})
}

func singleBurstArmorPen(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	ctx.HitWith(att, target, sk, ctx.Raw(att, sk), ctx.DamageType(sk), combat.HitOptions{
		ArmorPen: sk.Param("armor_pen", 0.3),
	})
}

func singleBurstLifesteal(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	r := ctx.Hit(att, target, sk, ctx.Raw(att, sk))
	if r.HPLoss > 0 {
		ctx.S.Heal(att, att, float64(r.HPLoss)*sk.Param("lifesteal", 0.3))
	}
}

// singleDelayedEcho hits, then repeats a weaker echo if the target survived.
func singleDelayedEcho(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	ctx.Hit(att, target, sk, ctx.Raw(att, sk))
	if !target.IsAlive() || !att.IsAlive() {
		return
	}
	echo := ctx.RawWith(att, sk, sk.Param("echo_base", sk.Base/2), sk.Param("echo_scale", sk.Scale/2))
	ctx.HitWith(att, target, sk, echo, ctx.DamageType(sk), combat.HitOptions{Label: sk.Name + " echo"})
}

func singleStrongPoison(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	raw := ctx.Raw(att, sk)
	if ctx.Hit(att, target, sk, raw).Final > 0 {
		value := math.Max(1, math.Round(raw*sk.Param("poison_mult", 0.4)))
		ctx.S.ApplyStatus(att, target, model.StatusPoison, sk.IntParam("poison_turns", 3), value)
	}
}

func singlePoisonSlow(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	raw := ctx.Raw(att, sk)
	if ctx.Hit(att, target, sk, raw).Final <= 0 {
		return
	}
	ctx.applyRider(att, target, sk, RiderPoison, raw)
	ctx.S.ApplyStatus(att, target, model.StatusEvadeDebuff, sk.IntParam("slow_turns", 2), sk.Param("evade_debuff", 0.1))
}

// trueExecute multiplies the hit against targets at or below the execute threshold.
func trueExecute(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	raw := ctx.Raw(att, sk)
	if target.HPRatio() <= sk.Param("execute_threshold", 0.3) {
		raw *= sk.Param("execute_mult", 2)
	}
	if ctx.Hit(att, target, sk, raw).Killed {
		ctx.KillCredit(att, sk)
	}
}

func executeHeal(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	if !ctx.Hit(att, target, sk, ctx.Raw(att, sk)).Killed {
		return
	}
	ctx.S.Heal(att, att, float64(att.MaxHP)*sk.Param("heal_pct", 0.2))
	ctx.KillCredit(att, sk)
}

// doubleHit lands hit1 and hit2 with their own base/scale; hit2 retargets when hit1 killed.
func doubleHit(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	parts := [2][2]string{{"hit1_base", "hit1_scale"}, {"hit2_base", "hit2_scale"}}
	for _, p := range parts {
		target = ctx.retarget(att, target)
		if target == nil || !att.IsAlive() {
			return
		}
		raw := ctx.RawWith(att, sk, sk.Param(p[0], sk.Base), sk.Param(p[1], sk.Scale))
		if ctx.Hit(att, target, sk, raw).Killed {
			ctx.KillCredit(att, sk)
		}
	}
}

func tripleHit(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	for range sk.IntParam("hits", 3) {
		target = ctx.retarget(att, target)
		if target == nil || !att.IsAlive() {
			return
		}
		if ctx.Hit(att, target, sk, ctx.Raw(att, sk)).Killed {
			ctx.KillCredit(att, sk)
		}
	}
}

// chainStrike follows a killing blow with a weaker hit on a fresh target.
func chainStrike(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	raw := ctx.Raw(att, sk)
	if !ctx.Hit(att, target, sk, raw).Killed {
		return
	}
	ctx.KillCredit(att, sk)
	next := ctx.retarget(att, nil)
	if next == nil || !att.IsAlive() {
		return
	}
	r := ctx.HitWith(att, next, sk, raw*sk.Param("chain_mult", 0.6), ctx.DamageType(sk), combat.HitOptions{Label: sk.Name + " chain"})
	if r.Killed {
		ctx.KillCredit(att, sk)
	}
}

func assassinBlink(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	ctx.S.Emit(combat.Event{Kind: combat.EventMove, Source: att.ID, Target: target.ID, Row: target.Row, Col: target.Col, Text: "blink"})
	ctx.HitWith(att, target, sk, ctx.Raw(att, sk), ctx.DamageType(sk), combat.HitOptions{
		CritBonus: sk.Param("crit_bonus", 0.3),
	})
	ctx.S.Emit(combat.Event{Kind: combat.EventMove, Source: att.ID, Target: att.ID, Row: att.Row, Col: att.Col, Text: "return"})
}

// rowMulti pierces the target row, nearest enemies first.
func rowMulti(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	var row []*model.CombatUnit
	for _, e := range ctx.S.Enemies(att) {
		if e.Row == target.Row {
			row = append(row, e)
		}
	}
	row = ByDistance(att, row)
	n := sk.IntParam("max_hits", 3) + ctx.TargetBonus(att)
	raw := ctx.Raw(att, sk)
	for i, e := range row {
		if i >= n {
			break
		}
		ctx.Hit(att, e, sk, raw)
	}
}

// columnPlusSplash hits the target column in full and the neighbouring columns at splash_rate.
func columnPlusSplash(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	raw := ctx.Raw(att, sk)
	rate := sk.Param("splash_rate", 0.5)
	for _, e := range ctx.S.Enemies(att) {
		switch iabs(e.Col - target.Col) {
		case 0:
			if e == target {
				ctx.Hit(att, e, sk, raw)
			} else {
				ctx.Splash(att, e, sk, raw)
			}
		case 1:
			ctx.Splash(att, e, sk, raw*rate)
		}
	}
}

// cleaveArmorBreak hits the target and its column neighbours, breaking armor on survivors.
func cleaveArmorBreak(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	raw := ctx.Raw(att, sk)
	victims := []*model.CombatUnit{target}
	for _, e := range ctx.S.Enemies(att) {
		if e != target && e.Col == target.Col && iabs(e.Row-target.Row) <= 1 {
			victims = append(victims, e)
		}
	}
	for _, v := range victims {
		var r combat.HitResult
		if v == target {
			r = ctx.Hit(att, v, sk, raw)
		} else {
			r = ctx.Splash(att, v, sk, raw)
		}
		if r.Final > 0 && v.IsAlive() {
			ctx.applyRider(att, v, sk, RiderArmorBreak, raw)
		}
	}
}

func multiDisarm(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	raw := ctx.Raw(att, sk) * sk.Param("damage_mult", 0.5)
	turns := sk.IntParam("disarm_turns", 1)
	for _, e := range ctx.Sample(ctx.S.Enemies(att), sk.IntParam("max_targets", 3)) {
		r := ctx.Hit(att, e, sk, raw)
		if r.Final > 0 && e.IsAlive() && ctx.Roll(att, sk.Param("disarm_chance", 1)) {
			ctx.S.ApplyStatus(att, e, model.StatusDisarm, turns, 0)
		}
	}
}

// chargeDash runs to the target and back; the dash is visual only.
func chargeDash(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if target == nil {
		return
	}
	ctx.S.Emit(combat.Event{Kind: combat.EventMove, Source: att.ID, Target: target.ID, Row: target.Row, Col: target.Col, Text: "dash"})
	ctx.Hit(att, target, sk, ctx.Raw(att, sk)*sk.Param("dash_mult", 1.2))
	att.ReturnHome()
	ctx.S.Emit(combat.Event{Kind: combat.EventMove, Source: att.ID, Target: att.ID, Row: att.Row, Col: att.Col, Text: "return"})
}

// retarget keeps a living target or asks the selector for a new one.
func (c *Context) retarget(att, target *model.CombatUnit) *model.CombatUnit {
	if target != nil && target.IsAlive() {
		return target
	}
	return c.S.SelectTarget(att, false)
}
