package combat

import (
	"math/rand/v2"
	"testing"

	"github.com/udisondev/beastarena/internal/config"
	"github.com/udisondev/beastarena/internal/model"
)

// newTestSession builds a session with a fixed generator and stock tuning.
func newTestSession(t *testing.T, units ...*model.CombatUnit) (*Session, *EventLog) {
	t.Helper()
	s := NewSession(units, config.DefaultBattle(), config.DefaultDifficulties()[config.DifficultyMedium])
	s.SetRand(rand.New(rand.NewPCG(42, 1024)))
	log := &EventLog{}
	s.SetObserver(log)
	return s, log
}

// fighter returns a tier-1 FIRE fighter with no crit or evasion.
func fighter(id string, side model.Side, row, col, hp, atk int) *model.CombatUnit {
	u := model.NewCombatUnit(id, side, row, col, hp)
	u.Class = model.ClassFighter
	u.Element = model.ElementFire
	u.Atk = atk
	u.RageMax = 100
	return u
}
