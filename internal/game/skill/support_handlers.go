package skill

import (
	"math"

	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/model"
)

// Статусы, снимаемые shield_cleanse.
var shieldCleanseKinds = []model.StatusKind{
	model.StatusFreeze,
	model.StatusStun,
	model.StatusSleep,
	model.StatusSilence,
	model.StatusBurn,
	model.StatusPoison,
}

// Metamorphosis appearance.
const (
	MetamorphosisElement = model.ElementWind
	MetamorphosisIcon    = "🦋"
)

func init() {
	RegisterHandler("dual_heal", HandlerFunc(dualHeal))
	RegisterHandler("team_heal", HandlerFunc(teamHeal))
	RegisterHandler("heal_lowest", HandlerFunc(healLowest))
	RegisterHandler("shield_cleanse", HandlerFunc(shieldCleanse))
	RegisterHandler("cleanse_ally", HandlerFunc(cleanseAlly))
	RegisterHandler("shield_immune", HandlerFunc(shieldImmune))
	RegisterHandler("revive_or_heal", HandlerFunc(reviveOrHeal))
	RegisterHandler("team_shield", HandlerFunc(teamShield))
	RegisterHandler("team_rage", HandlerFunc(teamRage))
	RegisterHandler("rage_transfer", HandlerFunc(rageTransfer))
	RegisterHandler("column_bless", HandlerFunc(columnBless))
	RegisterHandler("ally_row_def_buff", HandlerFunc(allyRowDefBuff))
	RegisterHandler("team_buff_def", teamBuff(model.StatusDefBuff, "def_buff", 20))
	RegisterHandler("team_buff_atk", teamBuff(model.StatusAtkBuff, "atk_buff", 15))
	RegisterHandler("team_evade", teamBuff(model.StatusEvadeBuff, "evade_buff", 0.15))
	RegisterHandler("self_bersek", HandlerFunc(selfBerserk))
	RegisterHandler("self_atk_and_assist", HandlerFunc(selfAtkAndAssist))
	RegisterHandler("metamorphosis", HandlerFunc(metamorphosis))
}

func dualHeal(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	raw := ctx.Raw(att, sk)
	for i, a := range ByHPRatio(ctx.S.Allies(att)) {
		if i >= 2 {
			break
		}
		ctx.S.Heal(att, a, raw)
	}
}

func teamHeal(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	raw := ctx.Raw(att, sk)
	for _, a := range ctx.S.Allies(att) {
		ctx.S.Heal(att, a, raw)
	}
}

func healLowest(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	if a := lowest(ctx.S.Allies(att)); a != nil {
		ctx.S.Heal(att, a, ctx.Raw(att, sk))
	}
}

// shieldCleanse shields the most wounded ally and clears its control and burn/poison.
func shieldCleanse(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	a := lowest(ctx.S.Allies(att))
	if a == nil {
		return
	}
	ctx.S.AddShield(a, ctx.RawWith(att, sk, sk.Param("shield_base", sk.Base), sk.Param("shield_scale", sk.Scale)))
	for _, k := range shieldCleanseKinds {
		if a.Statuses.Active(k) {
			a.Statuses.Clear(k)
			ctx.S.Emit(combat.Event{Kind: combat.EventStatus, Source: att.ID, Target: a.ID, Status: k.String(), Text: "cleansed"})
		}
	}
}

// cleanseAlly removes one random debuff from a debuffed ally (the most wounded
// when nobody is debuffed) and heals it.
func cleanseAlly(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	allies := ctx.S.Allies(att)
	var debuffed []*model.CombatUnit
	for _, a := range allies {
		if len(a.Statuses.ActiveDebuffs()) > 0 {
			debuffed = append(debuffed, a)
		}
	}
	var a *model.CombatUnit
	if len(debuffed) > 0 {
		a = debuffed[ctx.S.Rand.IntN(len(debuffed))]
		kinds := a.Statuses.ActiveDebuffs()
		k := kinds[ctx.S.Rand.IntN(len(kinds))]
		a.Statuses.Clear(k)
		ctx.S.Emit(combat.Event{Kind: combat.EventStatus, Source: att.ID, Target: a.ID, Status: k.String(), Text: "cleansed"})
	} else {
		a = lowest(allies)
	}
	if a != nil {
		ctx.S.Heal(att, a, ctx.Raw(att, sk))
	}
}

func shieldImmune(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	a := lowest(ctx.S.Allies(att))
	if a == nil {
		return
	}
	ctx.S.AddShield(a, ctx.Raw(att, sk))
	ctx.S.ApplyStatus(att, a, model.StatusImmune, sk.IntParam("turns", 2), 0)
}

// reviveOrHeal revives one random dead ally on a free cell with revive_chance,
// otherwise heals the whole team.
func reviveOrHeal(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	var dead []*model.CombatUnit
	for _, d := range ctx.S.DeadAllies(att) {
		if ctx.S.Occupant(d.Row, d.Col) == nil {
			dead = append(dead, d)
		}
	}
	if len(dead) > 0 && ctx.Roll(att, sk.Param("revive_chance", 0.5)) {
		d := dead[ctx.S.Rand.IntN(len(dead))]
		ctx.S.Revive(att, d, sk.Param("revive_pct", 0.4))
		return
	}
	teamHeal(ctx, att, nil, sk)
}

func teamShield(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	raw := ctx.Raw(att, sk)
	for _, a := range ctx.S.Allies(att) {
		ctx.S.AddShield(a, raw)
	}
}

// teamRage gives rage_gain to the max_targets allies closest to the caster.
func teamRage(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	gain := sk.IntParam("rage_gain", 1)
	for i, a := range ByDistance(att, others(att, ctx.S.Allies(att))) {
		if i >= sk.IntParam("max_targets", 2) {
			break
		}
		ctx.S.AddRage(a, gain)
	}
}

// rageTransfer feeds the ally that is closest to a full rage bar.
func rageTransfer(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	var best *model.CombatUnit
	for _, a := range others(att, ctx.S.Allies(att)) {
		if a.RageFull() {
			continue
		}
		if best == nil || a.RageMax-a.Rage() < best.RageMax-best.Rage() {
			best = a
		}
	}
	if best != nil {
		ctx.S.AddRage(best, sk.IntParam("rage_gain", 2))
	}
}

func columnBless(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	var col []*model.CombatUnit
	for _, a := range ctx.S.Allies(att) {
		if a.Col == att.Col {
			col = append(col, a)
		}
	}
	turns := sk.IntParam("turns", 3)
	ctx.buff(att, col, model.StatusAtkBuff, turns, sk.Param("atk_buff", 15))
	ctx.buff(att, col, model.StatusEvadeBuff, turns, sk.Param("evade_buff", 0.1))
}

func allyRowDefBuff(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	var row []*model.CombatUnit
	for _, a := range ctx.S.Allies(att) {
		if a.Row == att.Row {
			row = append(row, a)
		}
	}
	turns := sk.IntParam("turns", 3)
	ctx.buff(att, row, model.StatusDefBuff, turns, sk.Param("def_buff", 20))
	ctx.buff(att, row, model.StatusMdefBuff, turns, sk.Param("mdef_buff", 0))
}

func teamBuff(kind model.StatusKind, param string, def float64) Handler {
	return HandlerFunc(func(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
		ctx.buff(att, ctx.S.Allies(att), kind, sk.IntParam("turns", 3), sk.Param(param, def))
	})
}

func selfBerserk(ctx *Context, att, _ *model.CombatUnit, sk *data.Skill) {
	value := math.Round(float64(att.Atk) * sk.Param("atk_ratio", 0.5))
	ctx.S.ApplyStatus(att, att, model.StatusAtkBuff, sk.IntParam("turns", 3), value)
}

// selfAtkAndAssist buffs the caster, strikes, then the nearest same-row ally assists.
func selfAtkAndAssist(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	ctx.S.ApplyStatus(att, att, model.StatusAtkBuff, sk.IntParam("turns", 3), sk.Param("self_atk_buff", 10))
	if target == nil {
		return
	}
	ctx.Hit(att, target, sk, ctx.Raw(att, sk))

	var row []*model.CombatUnit
	for _, a := range others(att, ctx.S.Allies(att)) {
		if a.Row == att.Row && a.EffectiveAtk() > 0 {
			row = append(row, a)
		}
	}
	if len(row) == 0 || !target.IsAlive() {
		return
	}
	helper := ByDistance(att, row)[0]
	raw := float64(helper.EffectiveAtk()) * sk.Param("assist_rate", 0.5)
	ctx.HitWith(helper, target, sk, raw, model.DamagePhysical, combat.HitOptions{Label: "assist"})
}

// metamorphosis transforms the caster once; later casts are a plain hit.
func metamorphosis(ctx *Context, att, target *model.CombatUnit, sk *data.Skill) {
	if att.Transformed {
		if target != nil {
			ctx.HitWith(att, target, sk, ctx.Raw(att, sk), att.Mods.BasicDamageType, combat.HitOptions{})
		}
		return
	}
	att.Transformed = true
	att.Element = MetamorphosisElement
	att.Icon = MetamorphosisIcon
	att.Atk = int(math.Round(float64(att.Atk) * sk.Param("atk_mult", 1)))
	att.Matk = int(math.Round(float64(att.Matk) * sk.Param("matk_mult", 1)))
	if m := sk.Param("hp_mult", 1); m > 1 {
		grown := int(math.Round(float64(att.MaxHP) * m))
		diff := grown - att.MaxHP
		att.MaxHP = grown
		att.Heal(diff)
	}
	att.Mods.BasicDamageType = model.DamageMagic
	att.Mods.BasicScaleStat = model.ScaleMatk
	ctx.S.Emit(combat.Event{Kind: combat.EventNote, Source: att.ID, Target: att.ID, Text: "metamorphosis"})

	if att.Star >= 2 {
		ctx.buff(att, ctx.S.Allies(att), model.StatusEvadeBuff, sk.IntParam("turns", 3), sk.Param("evade_buff", 0.15))
	}
}

// lowest returns the unit with the lowest HP ratio, or nil.
func lowest(units []*model.CombatUnit) *model.CombatUnit {
	if len(units) == 0 {
		return nil
	}
	return ByHPRatio(units)[0]
}
