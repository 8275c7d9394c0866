package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArena_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadArena(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultArena().Battle.RoundCap, cfg.Battle.RoundCap)
	assert.Equal(t, DifficultyMedium, cfg.DefaultDifficulty)
	assert.Len(t, cfg.Difficulty, 3)
}

func TestLoadArena_OverridesAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	body := `
log_level: debug
battle:
  round_cap: 12
  pacing: 150ms
  sudden_death:
    after_actions: 40
    every: 2
    step: 0.5
difficulty:
  NIGHTMARE:
    rage_gain: 2
    random_target_chance: 0.0
    enemy_budget: 1.5
default_difficulty: NIGHTMARE
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadArena(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 12, cfg.Battle.RoundCap)
	assert.Equal(t, 150*time.Millisecond, cfg.Battle.Pacing)
	assert.Equal(t, 40, cfg.Battle.SuddenDeath.AfterActions)
	assert.Equal(t, []float64{1.0, 1.6, 2.5}, cfg.Battle.StarStatScale, "untouched keys keep defaults")
	assert.Len(t, cfg.Difficulty, 4)
	assert.Equal(t, 2, cfg.Profile("nightmare").RageGain)
}

func TestLoadArena_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("battle: [1, 2"), 0o644))

	_, err := LoadArena(path)
	assert.Error(t, err)
}

func TestLoadArena_Validation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	require.NoError(t, os.WriteFile(path, []byte("battle:\n  round_cap: 0\n"), 0o644))

	_, err := LoadArena(path)
	assert.ErrorContains(t, err, "round_cap")
}

func TestArena_Profile_Fallback(t *testing.T) {
	cfg := DefaultArena()

	assert.InDelta(t, 0.58, cfg.Profile("easy").RandomTargetChance, 1e-9)
	assert.InDelta(t, 0.30, cfg.Profile("unknown").RandomTargetChance, 1e-9)
}

func TestGoldReserve_Multiplier(t *testing.T) {
	g := DefaultBattle().GoldReserve

	tests := []struct {
		gold int
		want float64
	}{
		{0, 1.0},
		{99, 1.0},
		{100, 1.0},
		{109, 1.0},
		{110, 1.01},
		{250, 1.15},
		{10_000, 1.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, g.Multiplier(tt.gold), 1e-9, "gold=%d", tt.gold)
	}
}

func TestBattle_StarTables(t *testing.T) {
	b := DefaultBattle()

	assert.Equal(t, 1.0, b.StarStat(0), "below range clamps to star 1")
	assert.Equal(t, 1.6, b.StarStat(2))
	assert.Equal(t, 2.5, b.StarStat(7), "above range clamps to star 3")
	assert.Equal(t, 1.3, b.StarChanceMult(3))
	assert.Equal(t, 1.2, b.StarPower(2))
	assert.Equal(t, 1.0, Battle{}.StarPower(3), "empty table is neutral")
}
