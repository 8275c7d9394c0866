package skill

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/model"
)

// Engine dispatches skill casts to the registered effect handlers.
type Engine struct{}

// NewEngine creates a skill engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Cast runs attacker's skill against target. A skill missing from the
// catalog degrades to a basic attack.
func (e *Engine) Cast(s *combat.Session, attacker, target *model.CombatUnit) {
	sk, err := data.GetSkill(attacker.SkillID)
	if err != nil {
		slog.Error("casting skill", "unit", attacker.ID, "error", err)
		if target != nil {
			s.BasicAttack(attacker, target, combat.HitOptions{})
		}
		return
	}
	e.Apply(s, attacker, target, sk)
}

// Apply runs sk cast by attacker. Unknown effect tags and handler panics fall
// back to a plain hit of the skill's damage type.
func (e *Engine) Apply(s *combat.Session, attacker, target *model.CombatUnit, sk *data.Skill) {
	ctx := &Context{S: s}
	s.Emit(combat.Event{Kind: combat.EventSkill, Source: attacker.ID, Target: targetID(target), Text: sk.Name})
	slog.Debug("skill cast", "unit", attacker.ID, "skill", sk.ID, "effect", sk.Effect)

	h, ok := LookupHandler(sk.Effect)
	if !ok {
		slog.Error("unknown skill effect, falling back to a plain hit",
			"skill", sk.ID,
			"effect", sk.Effect,
			"unit", attacker.ID)
		e.fallback(ctx, attacker, target, sk)
		return
	}

	if err := run(ctx, h, attacker, target, sk); err != nil {
		slog.Error("skill handler failed, falling back to a plain hit",
			"skill", sk.ID,
			"effect", sk.Effect,
			"unit", attacker.ID,
			"error", err)
		e.fallback(ctx, attacker, target, sk)
	}
}

// fallback lands one plain hit; a second failure ends the cast.
func (e *Engine) fallback(ctx *Context, attacker, target *model.CombatUnit, sk *data.Skill) {
	if target == nil || !target.IsAlive() || !attacker.IsAlive() {
		return
	}
	err := run(ctx, HandlerFunc(plainHit), attacker, target, sk)
	if err != nil {
		slog.Error("skill fallback failed, turn ends",
			"skill", sk.ID,
			"unit", attacker.ID,
			"error", err)
	}
}

func plainHit(ctx *Context, attacker, target *model.CombatUnit, sk *data.Skill) {
	ctx.Hit(attacker, target, sk, ctx.Raw(attacker, sk))
}

func run(ctx *Context, h Handler, attacker, target *model.CombatUnit, sk *data.Skill) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", sk.Effect, r)
		}
	}()
	h.Apply(ctx, attacker, target, sk)
	return nil
}

func targetID(u *model.CombatUnit) string {
	if u == nil {
		return ""
	}
	return u.ID
}
