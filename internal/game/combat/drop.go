package combat

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/beastarena/internal/config"
	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/model"
)

// DropResult is one item stack dropped by a defeated generated unit.
type DropResult struct {
	ItemID string
	Count  int
	Source string // unit id
}

// CalculateDrops rolls a loot table.
//
// For each entry: chance% × rates.DropChanceMultiplier, then
// count = random(min..max) × rates.DropAmountMultiplier, at least 1.
func CalculateDrops(rng *rand.Rand, entries []data.LootEntry, rates config.Rates) []DropResult {
	if len(entries) == 0 {
		return nil
	}

	chanceMultiplier := rates.DropChanceMultiplier
	if chanceMultiplier <= 0 {
		chanceMultiplier = 1
	}
	amountMultiplier := rates.DropAmountMultiplier
	if amountMultiplier <= 0 {
		amountMultiplier = 1
	}

	var results []DropResult
	for _, e := range entries {
		chance := e.Chance * chanceMultiplier
		if chance <= 0 {
			continue
		}
		if chance < 100 && rng.Float64()*100 >= chance {
			continue
		}

		minCount := max(1, e.Min)
		maxCount := max(minCount, e.Max)
		count := minCount
		if maxCount > minCount {
			count += rng.IntN(maxCount - minCount + 1)
		}
		count = max(1, int(float64(count)*amountMultiplier))

		results = append(results, DropResult{ItemID: e.Item, Count: count})
	}
	return results
}

// rollLoot records the drops of a defeated generated unit on the session.
func (s *Session) rollLoot(u *model.CombatUnit) {
	drops := CalculateDrops(s.Rand, data.LootFor(u.Species, u.Tier), s.Rates)
	for i := range drops {
		drops[i].Source = u.ID
		s.emit(Event{Kind: EventNote, Source: u.ID, Text: "drop " + drops[i].ItemID, Amount: drops[i].Count})
	}
	if len(drops) > 0 {
		slog.Debug("loot dropped", "unit", u.ID, "species", u.Species, "drops", len(drops))
	}
	s.Drops = append(s.Drops, drops...)
}
