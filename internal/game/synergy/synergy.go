// Package synergy applies class and tribe team bonuses before combat starts.
package synergy

import (
	"log/slog"
	"math"
	"sort"

	"github.com/udisondev/beastarena/internal/model"
)

// MaxStartingRage caps the rage a unit can start a combat with from synergies.
const MaxStartingRage = 4

// Bonus is one synergy tier. Zero fields are not applied.
type Bonus struct {
	DefFlat      int
	MdefFlat     int
	HPPct        float64
	AtkPct       float64
	MatkPct      float64
	HealPct      float64
	LifestealPct float64
	EvadePct     float64
	CritPct      float64
	ShieldStart  int
	StartingRage int
	BurnOnHit    int
	PoisonOnHit  int
}

// Def is a synergy: ascending unit-count thresholds with one bonus per threshold.
type Def struct {
	Thresholds []int
	Bonuses    []Bonus
}

// Tier returns the index of the highest threshold count reaches, or -1.
func (d Def) Tier(count int) int {
	idx := -1
	for i, t := range d.Thresholds {
		if count >= t && i < len(d.Bonuses) {
			idx = i
		}
	}
	return idx
}

var thresholds = []int{2, 4, 6}

// ClassSynergy maps class → synergy.
var ClassSynergy = map[model.Class]Def{
	model.ClassTanker: {thresholds, []Bonus{
		{DefFlat: 8, MdefFlat: 6},
		{DefFlat: 16, MdefFlat: 12},
		{DefFlat: 28, MdefFlat: 20},
	}},
	model.ClassAssassin: {thresholds, []Bonus{
		{AtkPct: 0.08}, {AtkPct: 0.18}, {AtkPct: 0.32},
	}},
	model.ClassArcher: {thresholds, []Bonus{
		{AtkPct: 0.1}, {AtkPct: 0.22}, {AtkPct: 0.36},
	}},
	model.ClassMage: {thresholds, []Bonus{
		{MatkPct: 0.1}, {MatkPct: 0.22}, {MatkPct: 0.36},
	}},
	model.ClassSupport: {thresholds, []Bonus{
		{HealPct: 0.12}, {HealPct: 0.25}, {HealPct: 0.4},
	}},
	model.ClassFighter: {thresholds, []Bonus{
		{HPPct: 0.08, AtkPct: 0.06},
		{HPPct: 0.16, AtkPct: 0.14},
		{HPPct: 0.3, AtkPct: 0.24},
	}},
}

// TribeSynergy maps element → synergy.
var TribeSynergy = map[model.Element]Def{
	model.ElementStone: {thresholds, []Bonus{
		{ShieldStart: 18}, {ShieldStart: 40}, {ShieldStart: 72},
	}},
	model.ElementWind: {thresholds, []Bonus{
		{AtkPct: 0.06, MatkPct: 0.06},
		{AtkPct: 0.14, MatkPct: 0.14},
		{AtkPct: 0.24, MatkPct: 0.24},
	}},
	model.ElementFire: {thresholds, []Bonus{
		{BurnOnHit: 6}, {BurnOnHit: 12}, {BurnOnHit: 20},
	}},
	model.ElementTide: {thresholds, []Bonus{
		{MdefFlat: 6, HealPct: 0.06},
		{MdefFlat: 14, HealPct: 0.14},
		{MdefFlat: 24, HealPct: 0.24},
	}},
	model.ElementNight: {thresholds, []Bonus{
		{CritPct: 0.08}, {CritPct: 0.18}, {CritPct: 0.3},
	}},
	model.ElementSpirit: {thresholds, []Bonus{
		{StartingRage: 1},
		{StartingRage: 1, HealPct: 0.12},
		{StartingRage: 2, HealPct: 0.24},
	}},
	model.ElementSwarm: {thresholds, []Bonus{
		{PoisonOnHit: 8}, {PoisonOnHit: 14}, {PoisonOnHit: 22},
	}},
}

// Extra are run-scoped bonus counts added to the team's most common class and tribe.
type Extra struct {
	ClassCount int
	TribeCount int
}

// Counts holds per-class and per-tribe unit counts of a team.
type Counts struct {
	Classes map[model.Class]int
	Tribes  map[model.Element]int
}

// Active describes one synergy that reached a threshold.
type Active struct {
	Key   string
	Tribe bool
	Count int
	Tier  int
	Bonus Bonus
}

// Count tallies a team. Extra counts go to the top class and tribe
// (ties broken by name) and only when the team is not empty.
func Count(units []*model.CombatUnit, extra Extra) Counts {
	c := Counts{
		Classes: make(map[model.Class]int),
		Tribes:  make(map[model.Element]int),
	}
	for _, u := range units {
		if u.Class != "" {
			c.Classes[u.Class]++
		}
		if u.Element != "" {
			c.Tribes[u.Element]++
		}
	}
	if extra.ClassCount > 0 {
		if top, ok := topKey(c.Classes); ok {
			c.Classes[top] += extra.ClassCount
		}
	}
	if extra.TribeCount > 0 {
		if top, ok := topKey(c.Tribes); ok {
			c.Tribes[top] += extra.TribeCount
		}
	}
	return c
}

// ActiveSynergies lists the synergies a count set activates, sorted classes first then by key.
func (c Counts) ActiveSynergies() []Active {
	var out []Active
	for class, n := range c.Classes {
		if def, ok := ClassSynergy[class]; ok {
			if tier := def.Tier(n); tier >= 0 {
				out = append(out, Active{Key: string(class), Count: n, Tier: tier, Bonus: def.Bonuses[tier]})
			}
		}
	}
	for tribe, n := range c.Tribes {
		if def, ok := TribeSynergy[tribe]; ok {
			if tier := def.Tier(n); tier >= 0 {
				out = append(out, Active{Key: string(tribe), Tribe: true, Count: n, Tier: tier, Bonus: def.Bonuses[tier]})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tribe != out[j].Tribe {
			return !out[i].Tribe
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ApplyTeam applies class and tribe bonuses to every unit of a team, then
// grants the accumulated starting rage (capped) and starting shield.
func ApplyTeam(units []*model.CombatUnit, extra Extra) []Active {
	counts := Count(units, extra)
	for _, u := range units {
		var rage, shield int
		for _, b := range bonusesFor(u, counts) {
			applyBonus(u, b)
			rage += b.StartingRage
			shield += b.ShieldStart
		}
		if rage > 0 {
			u.SetRage(u.Rage() + min(rage, MaxStartingRage))
		}
		if shield > 0 {
			u.AddShield(shield)
		}
	}
	active := counts.ActiveSynergies()
	for _, a := range active {
		slog.Debug("synergy active", "key", a.Key, "count", a.Count, "tier", a.Tier)
	}
	return active
}

func bonusesFor(u *model.CombatUnit, c Counts) []Bonus {
	var out []Bonus
	if def, ok := ClassSynergy[u.Class]; ok {
		if tier := def.Tier(c.Classes[u.Class]); tier >= 0 {
			out = append(out, def.Bonuses[tier])
		}
	}
	if def, ok := TribeSynergy[u.Element]; ok {
		if tier := def.Tier(c.Tribes[u.Element]); tier >= 0 {
			out = append(out, def.Bonuses[tier])
		}
	}
	return out
}

// applyBonus applies one bonus to base stats and mods.
func applyBonus(u *model.CombatUnit, b Bonus) {
	u.Def += b.DefFlat
	u.Mdef += b.MdefFlat
	if b.HPPct != 0 {
		add := int(math.Round(float64(u.MaxHP) * b.HPPct))
		u.MaxHP += add
		u.Heal(add)
	}
	if b.AtkPct != 0 {
		u.Atk = int(math.Round(float64(u.Atk) * (1 + b.AtkPct)))
	}
	if b.MatkPct != 0 {
		u.Matk = int(math.Round(float64(u.Matk) * (1 + b.MatkPct)))
	}
	u.Mods.HealPct += b.HealPct
	u.Mods.LifestealPct += b.LifestealPct
	u.Mods.EvadePct += b.EvadePct
	u.Mods.CritPct += b.CritPct
	u.Mods.BurnOnHit += b.BurnOnHit
	u.Mods.PoisonOnHit += b.PoisonOnHit
}

func topKey[K ~string](m map[K]int) (K, bool) {
	var best K
	found := false
	for k, n := range m {
		if !found || n > m[best] || (n == m[best] && k < best) {
			best, found = k, true
		}
	}
	return best, found
}
