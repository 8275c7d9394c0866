package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/beastarena/internal/model"
)

func TestStartTurn_DOTIsTrueDamageWithoutRage(t *testing.T) {
	u := fighter("u", model.SideLeft, 0, 4, 100, 10)
	u.Def = 500
	u.Statuses.Apply(model.StatusBurn, 2, 6, "")
	u.Statuses.Apply(model.StatusPoison, 3, 4, "")
	s, log := newTestSession(t, u)

	got := s.StartTurn(u)

	assert.False(t, got.Skipped)
	assert.Equal(t, 90, u.HP(), "burn 6 + poison 4, defense ignored")
	assert.Zero(t, u.Rage())
	assert.Equal(t, 1, u.Statuses.Turns(model.StatusBurn))
	assert.Equal(t, 2, u.Statuses.Turns(model.StatusPoison))
	assert.Equal(t, 2, log.Count(EventDamage))
}

func TestStartTurn_DOTDoesNotTriggerReflect(t *testing.T) {
	u := fighter("u", model.SideLeft, 0, 4, 100, 10)
	u.Statuses.Apply(model.StatusReflect, 3, 1, "")
	u.Statuses.Apply(model.StatusBleed, 2, 5, "")
	s, _ := newTestSession(t, u)

	s.StartTurn(u)
	assert.Equal(t, 95, u.HP())
}

func TestStartTurn_DOTKill(t *testing.T) {
	u := fighter("u", model.SideLeft, 0, 4, 5, 10)
	u.Statuses.Apply(model.StatusPoison, 2, 10, "")
	u.Statuses.Apply(model.StatusStun, 2, 0, "")
	s, _ := newTestSession(t, u)

	got := s.StartTurn(u)
	assert.Equal(t, TurnStart{Skipped: true, Reason: "dot"}, got)
	assert.False(t, u.IsAlive())
}

func TestStartTurn_ControlPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		kinds  []model.StatusKind
		reason string
	}{
		{"freeze first", []model.StatusKind{model.StatusSleep, model.StatusStun, model.StatusFreeze}, "freeze"},
		{"stun before sleep", []model.StatusKind{model.StatusSleep, model.StatusStun}, "stun"},
		{"sleep", []model.StatusKind{model.StatusSleep}, "sleep"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := fighter("u", model.SideLeft, 0, 4, 100, 10)
			for _, k := range tt.kinds {
				u.Statuses.Apply(k, 1, 0, "")
			}
			s, _ := newTestSession(t, u)

			got := s.StartTurn(u)
			assert.True(t, got.Skipped)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestStartTurn_StunConsumesOneTurn(t *testing.T) {
	u := fighter("u", model.SideLeft, 0, 4, 100, 10)
	u.Statuses.Apply(model.StatusStun, 2, 0, "")
	s, _ := newTestSession(t, u)

	assert.True(t, s.StartTurn(u).Skipped)
	assert.True(t, s.StartTurn(u).Skipped)
	assert.False(t, s.StartTurn(u).Skipped)
}

func TestStartTurn_TimersExpire(t *testing.T) {
	u := fighter("u", model.SideLeft, 0, 4, 100, 10)
	u.Def = 10
	u.Statuses.Apply(model.StatusDefBuff, 1, 20, "")
	u.Statuses.Apply(model.StatusSilence, 2, 0, "")
	require.Equal(t, 30, u.EffectiveDef())
	s, _ := newTestSession(t, u)

	s.StartTurn(u)

	assert.Equal(t, 10, u.EffectiveDef(), "expired buff stops applying")
	assert.Equal(t, 20.0, u.Statuses.Get(model.StatusDefBuff).Value, "stale magnitude is kept")
	assert.True(t, u.Statuses.Active(model.StatusSilence))
}

func TestStartTurn_DiseaseSpreads(t *testing.T) {
	sick := fighter("sick", model.SideLeft, 2, 3, 100, 10)
	up := fighter("up", model.SideLeft, 1, 3, 100, 10)
	side := fighter("side", model.SideLeft, 2, 2, 100, 10)
	diag := fighter("diag", model.SideLeft, 1, 2, 100, 10)
	already := fighter("already", model.SideLeft, 3, 3, 100, 10)
	enemy := fighter("enemy", model.SideRight, 2, 5, 100, 10)
	sick.Statuses.Apply(model.StatusDisease, 3, 4, "enemy")
	already.Statuses.Apply(model.StatusDisease, 5, 1, "")
	s, _ := newTestSession(t, sick, up, side, diag, already, enemy)

	s.StartTurn(sick)

	assert.True(t, up.Statuses.Active(model.StatusDisease))
	assert.True(t, side.Statuses.Active(model.StatusDisease))
	assert.Equal(t, 2, up.Statuses.Turns(model.StatusDisease))
	assert.Equal(t, 4.0, up.Statuses.Value(model.StatusDisease))
	assert.False(t, diag.Statuses.Active(model.StatusDisease), "only orthogonal neighbours")
	assert.Equal(t, 1.0, already.Statuses.Value(model.StatusDisease), "existing disease is left alone")
	assert.False(t, enemy.Statuses.Active(model.StatusDisease))
}

func TestApplyStatus_Immune(t *testing.T) {
	u := fighter("u", model.SideLeft, 0, 4, 100, 10)
	u.Statuses.Apply(model.StatusImmune, 2, 0, "")
	s, _ := newTestSession(t, u)

	assert.False(t, s.ApplyStatus(nil, u, model.StatusStun, 2, 0))
	assert.False(t, s.ApplyStatus(nil, u, model.StatusPoison, 2, 5))
	assert.True(t, s.ApplyStatus(nil, u, model.StatusAtkBuff, 2, 5))
	assert.False(t, u.Statuses.Active(model.StatusStun))

	u.Kill()
	assert.False(t, s.ApplyStatus(nil, u, model.StatusAtkBuff, 2, 5))
}
