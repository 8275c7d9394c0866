package skill

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/udisondev/beastarena/internal/config"
	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/model"
)

func newSession(t *testing.T, units ...*model.CombatUnit) (*combat.Session, *combat.EventLog) {
	t.Helper()
	s := combat.NewSession(units, config.DefaultBattle(), config.DefaultDifficulties()[config.DifficultyMedium])
	s.SetRand(rand.New(rand.NewPCG(7, 77)))
	log := &combat.EventLog{}
	s.SetObserver(log)
	return s, log
}

// unit returns a tier-1 FIRE fighter with no crit or evasion.
func unit(id string, side model.Side, row, col, hp, atk int) *model.CombatUnit {
	u := model.NewCombatUnit(id, side, row, col, hp)
	u.Class = model.ClassFighter
	u.Element = model.ElementFire
	u.Atk = atk
	u.RageMax = 100
	return u
}

// castSkill builds a skill with the given effect and params.
func castSkill(effect string, base, scale float64, params map[string]float64) *data.Skill {
	return &data.Skill{
		ID:     "test_" + effect,
		Name:   "Test " + effect,
		Effect: effect,
		Base:   base,
		Scale:  scale,
		Params: params,
	}
}

// errorCounter counts records at slog.LevelError.
type errorCounter struct {
	n atomic.Int32
}

func (h *errorCounter) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelError }
func (h *errorCounter) Handle(context.Context, slog.Record) error {
	h.n.Add(1)
	return nil
}
func (h *errorCounter) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *errorCounter) WithGroup(string) slog.Handler      { return h }

func countErrors(t *testing.T) *errorCounter {
	t.Helper()
	h := &errorCounter{}
	prev := slog.Default()
	slog.SetDefault(slog.New(h))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return h
}
