package ai

import (
	"math"
	"math/rand/v2"

	"github.com/udisondev/beastarena/internal/config"
	"github.com/udisondev/beastarena/internal/model"
)

// Options tune a single target query.
type Options struct {
	// Deterministic disables random picks (attack previews, tests).
	Deterministic bool
}

// TargetSelector picks the enemy a unit attacks.
type TargetSelector interface {
	// SelectTarget returns one living enemy of attacker, or nil when none is left.
	SelectTarget(attacker *model.CombatUnit, units []*model.CombatUnit, profile config.Difficulty, opts Options) *model.CombatUnit
}

// ScoreSelector ranks enemies by a class-specific lexicographic score.
type ScoreSelector struct {
	Rand *rand.Rand
}

// NewScoreSelector creates a selector drawing random picks from rng.
func NewScoreSelector(rng *rand.Rand) *ScoreSelector {
	return &ScoreSelector{Rand: rng}
}

// SelectTarget implements TargetSelector.
func (s *ScoreSelector) SelectTarget(attacker *model.CombatUnit, units []*model.CombatUnit, profile config.Difficulty, opts Options) *model.CombatUnit {
	enemies := LivingEnemies(attacker, units)
	if len(enemies) == 0 {
		return nil
	}

	// провокация перекрывает любой выбор
	if id := attacker.Statuses.Source(model.StatusTaunt); id != "" {
		for _, e := range enemies {
			if e.ID == id {
				return e
			}
		}
	}

	keepFrontline := attacker.IsMelee() && attacker.Class != model.ClassAssassin
	if attacker.Side == model.SideRight &&
		attacker.Class != model.ClassAssassin &&
		!keepFrontline &&
		!opts.Deterministic &&
		s.Rand != nil &&
		s.Rand.Float64() < profile.RandomTargetChance {
		return enemies[s.Rand.IntN(len(enemies))]
	}

	best := enemies[0]
	bestScore := Score(attacker, best)
	for _, e := range enemies[1:] {
		sc := Score(attacker, e)
		if lessScore(sc, bestScore) {
			best, bestScore = e, sc
		}
	}
	return best
}

// LivingEnemies returns alive units of the opposite side, in input order.
func LivingEnemies(attacker *model.CombatUnit, units []*model.CombatUnit) []*model.CombatUnit {
	out := make([]*model.CombatUnit, 0, len(units))
	for _, u := range units {
		if u.IsAlive() && u.Side != attacker.Side {
			out = append(out, u)
		}
	}
	return out
}

// Score returns the ordering key of target for attacker; lower is better.
func Score(attacker, target *model.CombatUnit) [5]int {
	sameRow := 1
	if target.Row == attacker.Row {
		sameRow = 0
	}
	lineDist := model.Manhattan(attacker, target)
	lateral := iabs(target.Row - attacker.Row)
	var forward int
	if attacker.Side == model.SideLeft {
		forward = max(0, target.Col-attacker.Col)
	} else {
		forward = max(0, attacker.Col-target.Col)
	}
	frontDist := model.DistanceToFrontline(target)
	backDist := model.DistanceToBackline(target)
	hpRatio := int(math.Round(target.HPRatio() * 1000))
	hp := target.HP()

	switch attacker.Class {
	case model.ClassAssassin:
		return [5]int{backDist, hpRatio, lineDist, frontDist, hp}
	case model.ClassArcher, model.ClassMage:
		return [5]int{sameRow, lineDist, frontDist, hpRatio, hp}
	default:
		return [5]int{frontDist, forward, lateral, hpRatio, hp}
	}
}

func lessScore(a, b [5]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
