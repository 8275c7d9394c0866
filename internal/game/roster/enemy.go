package roster

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/udisondev/beastarena/internal/config"
	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/model"
)

// classWeights is the class mix of generated enemy rosters.
var classWeights = []struct {
	class  model.Class
	weight float64
}{
	{model.ClassTanker, 0.24},
	{model.ClassFighter, 0.24},
	{model.ClassArcher, 0.17},
	{model.ClassSupport, 0.13},
	{model.ClassMage, 0.13},
	{model.ClassAssassin, 0.09},
}

// Placement slots on the RIGHT half, in preference order.
var (
	frontSlots = []model.Position{
		{Row: 2, Col: 5}, {Row: 1, Col: 5}, {Row: 3, Col: 5}, {Row: 2, Col: 6},
		{Row: 0, Col: 5}, {Row: 4, Col: 5}, {Row: 1, Col: 6}, {Row: 3, Col: 6},
		{Row: 2, Col: 7}, {Row: 0, Col: 6}, {Row: 4, Col: 6}, {Row: 1, Col: 7},
	}
	backSlots = []model.Position{
		{Row: 2, Col: 9}, {Row: 1, Col: 9}, {Row: 3, Col: 9}, {Row: 2, Col: 8},
		{Row: 0, Col: 9}, {Row: 4, Col: 9}, {Row: 1, Col: 8}, {Row: 3, Col: 8},
		{Row: 0, Col: 8}, {Row: 4, Col: 8}, {Row: 2, Col: 7}, {Row: 1, Col: 7},
		{Row: 0, Col: 7}, {Row: 4, Col: 7}, {Row: 3, Col: 7},
	}
	assassinSlots = []model.Position{
		{Row: 0, Col: 9}, {Row: 4, Col: 9}, {Row: 1, Col: 9}, {Row: 3, Col: 9},
		{Row: 0, Col: 8}, {Row: 4, Col: 8},
	}
)

// TeamSize returns the enemy team size for a round: grows with the
// estimated player level, clamped to 2..15.
func TeamSize(round int) int {
	level := min(max(1+round/2, 1), 15)
	base := min(max(level+2, 3), 12)
	growth := min(max((round-1)/5, 0), 1)
	return min(max(base+growth, 2), 15)
}

// MaxTier returns the highest unit tier an enemy roster may contain.
func MaxTier(round int) int {
	return min(max(1+round/3, 1), 5)
}

// starChances returns the 2★ and 3★ chances for a round.
func starChances(round int) (two, three float64) {
	two = math.Min(math.Max(float64(round-6)*0.045, 0), 0.38)
	three = math.Min(math.Max(float64(round-11)*0.018, 0), 0.08)
	return two, three
}

// Generate builds an enemy roster for round. The coin budget
// (8 + 2.6 per round) is scaled by the profile's EnemyBudget; every
// pick costs max(1, tier − (star − 1)) coins.
func Generate(rng *rand.Rand, round int, profile config.Difficulty) []Entry {
	round = max(round, 1)
	mult := profile.EnemyBudget
	if mult <= 0 {
		mult = 1
	}
	size := TeamSize(round)
	coins := int(math.Round((8 + float64(round)*2.6) * mult))
	maxTier := MaxTier(round)
	twoStar, threeStar := starChances(round)

	var pool []*data.UnitTemplate
	for t := 1; t <= maxTier; t++ {
		pool = append(pool, data.UnitsByTier(t)...)
	}
	if len(pool) == 0 {
		return nil
	}

	var picks []Entry
	var classes []model.Class
	for guard := 0; len(picks) < size && guard < 260; guard++ {
		candidates := affordable(pool, coins)
		class := pickClass(rng)
		byClass := filterClass(candidates, class)
		var pick *data.UnitTemplate
		if len(byClass) > 0 {
			pick = byClass[rng.IntN(len(byClass))]
		} else {
			pick = candidates[rng.IntN(len(candidates))]
		}

		star := 1
		switch roll := rng.Float64(); {
		case roll < threeStar:
			star = 3
		case roll < threeStar+twoStar:
			star = 2
		}

		picks = append(picks, Entry{BaseID: pick.ID, Star: star, Generated: true})
		classes = append(classes, pick.Class)
		coins -= max(1, pick.Tier-(star-1))
		if coins <= 0 && len(picks) >= int(math.Ceil(float64(size)*0.7)) {
			break
		}
	}
	return place(picks, classes)
}

func affordable(pool []*data.UnitTemplate, coins int) []*data.UnitTemplate {
	var out []*data.UnitTemplate
	for _, u := range pool {
		if u.Tier <= max(1, coins) {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		for _, u := range pool {
			if u.Tier == 1 {
				out = append(out, u)
			}
		}
	}
	if len(out) == 0 {
		out = pool
	}
	return out
}

func filterClass(units []*data.UnitTemplate, class model.Class) []*data.UnitTemplate {
	var out []*data.UnitTemplate
	for _, u := range units {
		if u.Class == class {
			out = append(out, u)
		}
	}
	return out
}

func pickClass(rng *rand.Rand) model.Class {
	total := 0.0
	for _, w := range classWeights {
		total += w.weight
	}
	roll := rng.Float64() * total
	for _, w := range classWeights {
		roll -= w.weight
		if roll < 0 {
			return w.class
		}
	}
	return classWeights[len(classWeights)-1].class
}

// place assigns RIGHT-side cells: front line classes first, then the
// back line, assassins last in the corners. Picks without a free slot are dropped.
func place(picks []Entry, classes []model.Class) []Entry {
	used := make(map[model.Position]bool, len(picks))
	take := func(lists ...[]model.Position) (model.Position, bool) {
		for _, list := range lists {
			for _, p := range list {
				if !used[p] {
					used[p] = true
					return p, true
				}
			}
		}
		return model.Position{}, false
	}

	order := make([]int, len(picks))
	for i := range order {
		order[i] = i
	}
	rank := func(c model.Class) int {
		switch c {
		case model.ClassTanker, model.ClassFighter:
			return 0
		case model.ClassAssassin:
			return 2
		default:
			return 1
		}
	}
	slices.SortStableFunc(order, func(a, b int) int { return rank(classes[a]) - rank(classes[b]) })

	out := make([]Entry, 0, len(picks))
	for _, i := range order {
		var pos model.Position
		var ok bool
		switch rank(classes[i]) {
		case 0:
			pos, ok = take(frontSlots, backSlots)
		case 2:
			pos, ok = take(assassinSlots, backSlots, frontSlots)
		default:
			pos, ok = take(backSlots, frontSlots)
		}
		if !ok {
			continue
		}
		e := picks[i]
		e.Row, e.Col = pos.Row, pos.Col
		out = append(out, e)
	}
	return out
}
