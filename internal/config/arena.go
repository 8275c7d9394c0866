package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Difficulty names.
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// Difficulty задаёт профиль ИИ противника.
type Difficulty struct {
	// RageGain is the attacker rage per damaging hit for the enemy side.
	RageGain int `yaml:"rage_gain"`
	// RandomTargetChance is the chance an enemy backliner ignores scoring and picks at random.
	RandomTargetChance float64 `yaml:"random_target_chance"`
	// EnemyBudget scales the generated enemy roster strength.
	EnemyBudget float64 `yaml:"enemy_budget"`
}

// SuddenDeath raises the global damage multiplier in prolonged fights.
type SuddenDeath struct {
	AfterActions int     `yaml:"after_actions"`
	Every        int     `yaml:"every"`
	Step         float64 `yaml:"step"`
}

// GoldReserve describes the economy-coupled skill power curve.
type GoldReserve struct {
	Threshold int     `yaml:"threshold"`
	StepGold  int     `yaml:"step_gold"`
	StepBonus float64 `yaml:"step_bonus"`
	Cap       float64 `yaml:"cap"`
}

// Multiplier returns the skill power/chance multiplier for the banked gold.
func (g GoldReserve) Multiplier(gold int) float64 {
	if g.StepGold <= 0 || gold < g.Threshold {
		return 1
	}
	m := 1 + float64((gold-g.Threshold)/g.StepGold)*g.StepBonus
	if g.Cap > 0 {
		m = math.Min(m, g.Cap)
	}
	return m
}

// Battle holds combat tuning.
type Battle struct {
	RoundCap    int           `yaml:"round_cap"`
	SuddenDeath SuddenDeath   `yaml:"sudden_death"`
	Pacing      time.Duration `yaml:"pacing"` // cosmetic delay between turns
	GoldReserve GoldReserve   `yaml:"gold_reserve"`

	StarStatScale  []float64 `yaml:"star_stat_scale"`
	StarChance     []float64 `yaml:"star_chance"`
	StarSkillPower []float64 `yaml:"star_skill_power"`
	AreaBonusStar  int       `yaml:"area_bonus_star"`

	DiseaseSpreadTurns int     `yaml:"disease_spread_turns"`
	ProtectRedirect    float64 `yaml:"protect_redirect"`
	MaxEvade           float64 `yaml:"max_evade"`
}

// starValue returns table[star-1] clamped to the table bounds, or 1.
func starValue(table []float64, star int) float64 {
	if len(table) == 0 {
		return 1
	}
	idx := min(max(star-1, 0), len(table)-1)
	return table[idx]
}

// StarStat returns the stat multiplier for a star level.
func (b Battle) StarStat(star int) float64 { return starValue(b.StarStatScale, star) }

// StarChanceMult returns the proc chance multiplier for a star level.
func (b Battle) StarChanceMult(star int) float64 { return starValue(b.StarChance, star) }

// StarPower returns the skill damage multiplier for a star level.
func (b Battle) StarPower(star int) float64 { return starValue(b.StarSkillPower, star) }

// DefaultBattle returns the stock combat tuning.
func DefaultBattle() Battle {
	return Battle{
		RoundCap: 20,
		SuddenDeath: SuddenDeath{
			AfterActions: 100,
			Every:        5,
			Step:         0.2,
		},
		GoldReserve: GoldReserve{
			Threshold: 100,
			StepGold:  10,
			StepBonus: 0.01,
			Cap:       1.5,
		},
		StarStatScale:      []float64{1.0, 1.6, 2.5},
		StarChance:         []float64{1.0, 1.15, 1.3},
		StarSkillPower:     []float64{1.0, 1.2, 1.4},
		AreaBonusStar:      3,
		DiseaseSpreadTurns: 2,
		ProtectRedirect:    0.75,
		MaxEvade:           0.6,
	}
}

// Batch holds batch simulation settings for the CLI.
type Batch struct {
	Count    int `yaml:"count"`
	Parallel int `yaml:"parallel"`
}

// Arena holds all configuration for the arena binary.
type Arena struct {
	LogLevel string `yaml:"log_level"`

	Battle            Battle                `yaml:"battle"`
	DefaultDifficulty string                `yaml:"default_difficulty"`
	Difficulty        map[string]Difficulty `yaml:"difficulty"`
	Rates             Rates                 `yaml:"rates"`
	Batch             Batch                 `yaml:"batch"`

	Database DatabaseConfig `yaml:"database"`
}

// DefaultDifficulties returns the EASY/MEDIUM/HARD profiles.
func DefaultDifficulties() map[string]Difficulty {
	return map[string]Difficulty{
		DifficultyEasy:   {RageGain: 1, RandomTargetChance: 0.58, EnemyBudget: 0.85},
		DifficultyMedium: {RageGain: 1, RandomTargetChance: 0.30, EnemyBudget: 1.0},
		DifficultyHard:   {RageGain: 1, RandomTargetChance: 0.12, EnemyBudget: 1.2},
	}
}

// DefaultArena returns Arena config with sensible defaults.
func DefaultArena() Arena {
	return Arena{
		LogLevel:          "info",
		Battle:            DefaultBattle(),
		DefaultDifficulty: DifficultyMedium,
		Difficulty:        DefaultDifficulties(),
		Rates:             DefaultRates(),
		Batch: Batch{
			Count:    1,
			Parallel: 4,
		},
		Database: DefaultDatabase(),
	}
}

// LoadArena loads arena config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadArena(path string) (Arena, error) {
	cfg := DefaultArena()
	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the tunables that the engine cannot recover from.
func (a Arena) Validate() error {
	if a.Battle.RoundCap <= 0 {
		return fmt.Errorf("battle.round_cap must be positive, got %d", a.Battle.RoundCap)
	}
	if a.Battle.SuddenDeath.Every <= 0 {
		return fmt.Errorf("battle.sudden_death.every must be positive, got %d", a.Battle.SuddenDeath.Every)
	}
	if _, ok := a.Difficulty[a.DefaultDifficulty]; !ok {
		return fmt.Errorf("unknown default_difficulty %q", a.DefaultDifficulty)
	}
	return nil
}

// Profile returns the difficulty profile by name (case-insensitive),
// falling back to the default difficulty.
func (a Arena) Profile(name string) Difficulty {
	if p, ok := a.Difficulty[strings.ToUpper(name)]; ok {
		return p
	}
	if p, ok := a.Difficulty[a.DefaultDifficulty]; ok {
		return p
	}
	return DefaultDifficulties()[DifficultyMedium]
}
