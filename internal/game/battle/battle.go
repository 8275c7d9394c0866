// Package battle drives one combat session from the first round to its outcome.
package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/udisondev/beastarena/internal/config"
	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/game/skill"
	"github.com/udisondev/beastarena/internal/game/synergy"
	"github.com/udisondev/beastarena/internal/model"
)

var (
	ErrFinished = errors.New("battle finished")
	ErrBusy     = errors.New("turn in progress")
)

// Winner is the resolved side of a battle.
type Winner string

const (
	WinnerLeft  Winner = "LEFT"
	WinnerRight Winner = "RIGHT"
	WinnerDraw  Winner = "DRAW"
)

// Outcome содержит итог боя.
type Outcome struct {
	Winner         Winner
	Rounds         int
	Actions        int
	LeftSurvivors  int
	RightSurvivors int
	Drops          []combat.DropResult
	BonusGold      int

	LeftSynergies  []synergy.Active
	RightSynergies []synergy.Active
}

// Options configure a battle beyond the combat tuning.
type Options struct {
	Rand     *rand.Rand // nil: runtime-seeded
	Observer combat.Observer
	Rates    config.Rates
	Gold     int // player's banked gold, drives the gold reserve multiplier

	LeftExtra  synergy.Extra
	RightExtra synergy.Extra
}

// Battle is the combat orchestrator. Step and Run are driven by one caller;
// a Step arriving while a turn is in progress is rejected with ErrBusy.
type Battle struct {
	s      *combat.Session
	engine *skill.Engine

	queue []combat.QueueEntry
	pos   int
	round int

	stepping atomic.Bool
	current  *model.CombatUnit
	casting  map[string]bool
	pending  []*model.CombatUnit // tanks whose rage filled this turn

	done    bool
	outcome Outcome
}

// New prepares a battle over units: synergies are applied once per side
// and the tank auto-cast watcher is attached to the session.
func New(units []*model.CombatUnit, battle config.Battle, profile config.Difficulty, opts Options) *Battle {
	s := combat.NewSession(units, battle, profile)
	if opts.Rand != nil {
		s.SetRand(opts.Rand)
	}
	if opts.Observer != nil {
		s.SetObserver(opts.Observer)
	}
	if opts.Rates.DropChanceMultiplier > 0 {
		s.Rates = opts.Rates
	}
	s.Gold = opts.Gold

	b := &Battle{
		s:       s,
		engine:  skill.NewEngine(),
		casting: make(map[string]bool),
	}
	b.outcome.LeftSynergies = synergy.ApplyTeam(side(units, model.SideLeft), opts.LeftExtra)
	b.outcome.RightSynergies = synergy.ApplyTeam(side(units, model.SideRight), opts.RightExtra)
	s.OnRageFilled(b.onRageFilled)

	slog.Info("battle started",
		"left", len(side(units, model.SideLeft)),
		"right", len(side(units, model.SideRight)),
		"round_cap", battle.RoundCap)
	return b
}

// Session returns the underlying combat session.
func (b *Battle) Session() *combat.Session { return b.s }

// Round returns the current round, 0 before the first turn.
func (b *Battle) Round() int { return b.round }

// Done reports whether the battle has resolved.
func (b *Battle) Done() bool { return b.done }

// Outcome returns the result; valid once Done is true.
func (b *Battle) Outcome() Outcome { return b.outcome }

// Preview returns the target u would attack now without consuming randomness.
func (b *Battle) Preview(u *model.CombatUnit) *model.CombatUnit {
	if u == nil || !u.IsAlive() {
		return nil
	}
	return b.s.SelectTarget(u, true)
}

// Step performs exactly one queued turn. It returns ErrBusy while another
// turn is in progress and ErrFinished once the battle has resolved.
func (b *Battle) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.stepping.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer b.stepping.Store(false)

	if b.done || b.checkEnd() {
		return ErrFinished
	}
	u := b.next()
	if u == nil {
		b.finish(WinnerDraw)
		return ErrFinished
	}
	b.turn(u)
	b.checkEnd()
	return nil
}

// Run steps until the battle resolves, waiting Battle.Pacing between turns.
func (b *Battle) Run(ctx context.Context) (Outcome, error) {
	var tick <-chan time.Time
	if p := b.s.Battle.Pacing; p > 0 {
		t := time.NewTicker(p)
		defer t.Stop()
		tick = t.C
	}

	for {
		err := b.Step(ctx)
		if errors.Is(err, ErrFinished) {
			return b.outcome, nil
		}
		if err != nil {
			return b.outcome, fmt.Errorf("running battle: %w", err)
		}
		if b.done {
			return b.outcome, nil
		}
		if tick == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return b.outcome, fmt.Errorf("running battle: %w", ctx.Err())
		case <-tick:
		}
	}
}

// next pops the next living unit, rebuilding the queue when a round ends.
// Returns nil when the round cap is reached.
func (b *Battle) next() *model.CombatUnit {
	for {
		for b.pos < len(b.queue) {
			e := b.queue[b.pos]
			b.pos++
			if e.Occupied() && e.Unit.IsAlive() {
				return e.Unit
			}
		}
		if b.round >= b.s.Battle.RoundCap {
			slog.Info("round cap reached", "rounds", b.round)
			return nil
		}
		b.round++
		b.queue = combat.BuildTurnQueue(b.s.Units)
		b.pos = 0
		b.s.Emit(combat.Event{Kind: combat.EventRoundStart, Amount: b.round})
		slog.Debug("round started", "round", b.round, "units", len(combat.QueueUnits(b.queue)))
		if len(combat.QueueUnits(b.queue)) == 0 {
			return nil
		}
	}
}

// turn runs one unit's turn. Every popped actor counts toward the
// prolonged-fight counter, skipped turns included. A panic forfeits the turn
// and is logged. Tank auto-casts queued during the turn run after it.
func (b *Battle) turn(u *model.CombatUnit) {
	b.current = u
	b.pending = b.pending[:0]
	defer func() {
		b.current = nil
		if r := recover(); r != nil {
			b.pending = b.pending[:0]
			slog.Error("turn forfeited",
				"unit", u.ID,
				"round", b.round,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	b.s.RecordAction()
	if ts := b.s.StartTurn(u); !ts.Skipped {
		b.act(u)
	}
	b.autoCast()
}

func (b *Battle) act(u *model.CombatUnit) {
	act := b.s.DecideAction(u)
	switch act.Kind {
	case combat.ActionSkill:
		if act.ResetRage {
			u.SetRage(0)
		}
		b.engine.Cast(b.s, u, act.Target)
	case combat.ActionBasic:
		b.s.BasicAttack(u, act.Target, combat.HitOptions{})
	case combat.ActionDisarmed:
		b.s.Emit(combat.Event{Kind: combat.EventTurnSkip, Target: u.ID, Status: model.StatusDisarm.String()})
	}
}

// onRageFilled queues a tank whose rage filled outside its own turn.
// The cast itself runs from autoCast, once the hit that filled the bar
// has fully resolved.
func (b *Battle) onRageFilled(u *model.CombatUnit) {
	if b.done || !u.IsTank() || u == b.current || b.casting[u.ID] {
		return
	}
	for _, p := range b.pending {
		if p == u {
			return
		}
	}
	b.pending = append(b.pending, u)
}

// autoCast drains the queued tanks in fill order. A tank casts at most once
// per drain: rage it regains from its own cast waits for its turn.
func (b *Battle) autoCast() {
	cast := make(map[string]bool)
	for len(b.pending) > 0 {
		u := b.pending[0]
		b.pending = b.pending[1:]
		if cast[u.ID] || !u.IsAlive() || !u.RageFull() || u.Statuses.Active(model.StatusSilence) {
			continue
		}
		if !b.s.SideAlive(model.SideLeft) || !b.s.SideAlive(model.SideRight) {
			b.pending = b.pending[:0]
			return
		}
		target := b.s.SelectTarget(u, false)
		if target == nil {
			continue
		}

		cast[u.ID] = true
		b.castOutOfTurn(u, target)
	}
}

func (b *Battle) castOutOfTurn(u, target *model.CombatUnit) {
	b.casting[u.ID] = true
	defer delete(b.casting, u.ID)

	slog.Debug("tank auto-cast", "unit", u.ID, "skill", u.SkillID, "target", target.ID)
	u.SetRage(0)
	b.engine.Cast(b.s, u, target)
}

// checkEnd resolves the battle when a side has no living unit.
func (b *Battle) checkEnd() bool {
	if b.done {
		return true
	}
	left := b.s.SideAlive(model.SideLeft)
	right := b.s.SideAlive(model.SideRight)
	switch {
	case !left && !right:
		b.finish(WinnerDraw)
	case !right:
		b.finish(WinnerLeft)
	case !left:
		b.finish(WinnerRight)
	default:
		return false
	}
	return true
}

func (b *Battle) finish(w Winner) {
	b.done = true
	b.outcome.Winner = w
	b.outcome.Rounds = b.round
	b.outcome.Actions = b.s.ActionCount
	b.outcome.LeftSurvivors = len(b.s.Living(model.SideLeft))
	b.outcome.RightSurvivors = len(b.s.Living(model.SideRight))
	b.outcome.Drops = append([]combat.DropResult(nil), b.s.Drops...)
	b.outcome.BonusGold = b.s.BonusGold

	b.s.Emit(combat.Event{Kind: combat.EventBattleEnd, Text: string(w), Amount: b.round})
	slog.Info("battle finished",
		"winner", string(w),
		"rounds", b.round,
		"actions", b.outcome.Actions,
		"left_survivors", b.outcome.LeftSurvivors,
		"right_survivors", b.outcome.RightSurvivors,
		"drops", len(b.outcome.Drops))
	b.s.Reset()
}

func side(units []*model.CombatUnit, s model.Side) []*model.CombatUnit {
	var out []*model.CombatUnit
	for _, u := range units {
		if u.Side == s {
			out = append(out, u)
		}
	}
	return out
}
