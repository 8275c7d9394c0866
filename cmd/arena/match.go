package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/beastarena/internal/config"
	"github.com/udisondev/beastarena/internal/game/battle"
	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/game/roster"
	"github.com/udisondev/beastarena/internal/model"
)

// match describes the battles to simulate. It is read-only once built,
// every battle builds its own units.
type match struct {
	cfg     config.Arena
	profile config.Difficulty
	round   int
	gold    int
	player  []roster.Entry
	enemy   []roster.Entry // nil: generated per battle
}

// newBattle builds a fresh battle with its own generator. observe, when set,
// receives the built units and returns the battle observer.
func (m *match) newBattle(observe func([]*model.CombatUnit) combat.Observer, pacing bool) (*battle.Battle, error) {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	left, err := roster.BuildTeam(m.player, model.SideLeft, m.cfg.Battle)
	if err != nil {
		return nil, err
	}
	enemy := m.enemy
	if enemy == nil {
		enemy = roster.Generate(rng, m.round, m.profile)
	}
	right, err := roster.BuildTeam(enemy, model.SideRight, m.cfg.Battle)
	if err != nil {
		return nil, err
	}

	tuning := m.cfg.Battle
	if !pacing {
		tuning.Pacing = 0
	}
	units := append(left, right...)
	var observer combat.Observer
	if observe != nil {
		observer = observe(units)
	}
	b := battle.New(units, tuning, m.profile, battle.Options{
		Rand:     rng,
		Observer: observer,
		Rates:    m.cfg.Rates,
		Gold:     m.gold,
	})
	return b, nil
}

// runBatch simulates count independent battles, at most parallel at a time.
func runBatch(ctx context.Context, m *match, count, parallel int) ([]battle.Outcome, error) {
	results := make([]battle.Outcome, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i := range count {
		g.Go(func() error {
			b, err := m.newBattle(nil, false)
			if err != nil {
				return fmt.Errorf("battle %d: %w", i, err)
			}
			out, err := b.Run(gctx)
			if err != nil {
				return fmt.Errorf("battle %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type summary struct {
	battles   int
	wins      int
	losses    int
	draws     int
	rounds    int
	bonusGold int
	drops     map[string]int
}

func summarize(results []battle.Outcome) summary {
	s := summary{battles: len(results), drops: make(map[string]int)}
	for _, out := range results {
		switch out.Winner {
		case battle.WinnerLeft:
			s.wins++
		case battle.WinnerRight:
			s.losses++
		default:
			s.draws++
		}
		s.rounds += out.Rounds
		s.bonusGold += out.BonusGold
		for _, d := range out.Drops {
			s.drops[d.ItemID] += d.Count
		}
	}
	return s
}

func printOutcome(w io.Writer, out battle.Outcome) {
	fmt.Fprintf(w, "winner: %s after %d rounds (%d actions)\n", out.Winner, out.Rounds, out.Actions)
	fmt.Fprintf(w, "survivors: left %d, right %d\n", out.LeftSurvivors, out.RightSurvivors)
	for _, a := range out.LeftSynergies {
		fmt.Fprintf(w, "synergy: %s x%d (tier %d)\n", a.Key, a.Count, a.Tier+1)
	}
	for _, d := range out.Drops {
		fmt.Fprintf(w, "drop: %s x%d\n", d.ItemID, d.Count)
	}
	if out.BonusGold > 0 {
		fmt.Fprintf(w, "bonus gold: %d\n", out.BonusGold)
	}
}

func printSummary(w io.Writer, s summary) {
	if s.battles == 0 {
		return
	}
	pct := func(n int) float64 { return float64(n) * 100 / float64(s.battles) }
	fmt.Fprintf(w, "battles: %d  win %.1f%%  loss %.1f%%  draw %.1f%%  avg rounds %.1f\n",
		s.battles, pct(s.wins), pct(s.losses), pct(s.draws), float64(s.rounds)/float64(s.battles))
	if s.bonusGold > 0 || len(s.drops) > 0 {
		fmt.Fprintf(w, "bonus gold: %d  drop kinds: %d\n", s.bonusGold, len(s.drops))
	}
}
