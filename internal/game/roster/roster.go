// Package roster turns persisted roster entries into combat units and
// generates enemy rosters.
package roster

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/beastarena/internal/config"
	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/model"
)

// MaxEquips is the number of equipment slots per unit.
const MaxEquips = 3

var (
	ErrUnknownUnit = errors.New("unknown unit")
	ErrBadPosition = errors.New("position outside the side's half")
	ErrCellTaken   = errors.New("cell already occupied")
)

// Entry описывает один юнит сохранённого ростера.
type Entry struct {
	BaseID string   `yaml:"base_id"`
	Star   int      `yaml:"star"`
	Row    int      `yaml:"row"`
	Col    int      `yaml:"col"`
	Equips []string `yaml:"equips,omitempty"`

	// Generated marks enemy roster entries; their units are loot eligible.
	Generated bool `yaml:"-"`
}

// File is the YAML roster file layout.
type File struct {
	Units []Entry `yaml:"units"`
}

// LoadFile reads a roster YAML file.
func LoadFile(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing roster %s: %w", path, err)
	}
	return f.Units, nil
}

// SaveFile writes entries as a roster YAML file.
func SaveFile(path string, entries []Entry) error {
	raw, err := yaml.Marshal(File{Units: entries})
	if err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing roster %s: %w", path, err)
	}
	return nil
}

// NormalizeName lower-cases s, trims it and collapses internal whitespace.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Normalize clamps the star to 1..3 and filters the equipment list:
// unknown or non-equipment ids and items with tier > star+1 are dropped,
// duplicates by normalized name are removed, and at most MaxEquips remain.
func Normalize(e Entry) Entry {
	e.Star = min(max(e.Star, 1), 3)

	var equips []string
	seen := make(map[string]struct{}, len(e.Equips))
	for _, id := range e.Equips {
		if len(equips) == MaxEquips {
			break
		}
		it := data.GetItem(id)
		if it == nil || !it.IsEquipment() {
			slog.Warn("roster equipment dropped", "unit", e.BaseID, "item", id, "reason", "not equipment")
			continue
		}
		if it.Tier > e.Star+1 {
			continue
		}
		key := NormalizeName(it.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		equips = append(equips, id)
	}
	e.Equips = equips
	return e
}

// Build creates the combat unit of one roster entry.
func Build(id string, e Entry, side model.Side, battle config.Battle) (*model.CombatUnit, error) {
	tmpl := data.GetUnit(e.BaseID)
	if tmpl == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownUnit, e.BaseID)
	}
	if e.Row < 0 || e.Row >= model.Rows || !model.OwnsColumn(side, e.Col) {
		return nil, fmt.Errorf("unit %q at (%d,%d) on %s: %w", e.BaseID, e.Row, e.Col, side, ErrBadPosition)
	}
	e = Normalize(e)

	mult := battle.StarStat(e.Star)
	scale := func(v int) int { return int(math.Round(float64(v) * mult)) }

	u := model.NewCombatUnit(id, side, e.Row, e.Col, scale(tmpl.Stats.HP))
	u.BaseID = tmpl.ID
	u.Name = tmpl.Name
	u.Species = tmpl.Species
	u.Icon = tmpl.Icon
	u.Element = tmpl.Element
	u.Class = tmpl.Class
	u.Tier = tmpl.Tier
	u.Star = e.Star
	u.Atk = scale(tmpl.Stats.Atk)
	u.Def = scale(tmpl.Stats.Def)
	u.Matk = scale(tmpl.Stats.Matk)
	u.Mdef = scale(tmpl.Stats.Mdef)
	u.Range = max(1, tmpl.Stats.Range)
	u.RageMax = max(1, tmpl.Stats.RageMax)
	u.SkillID = data.ResolveSkillID(tmpl, e.Star)
	u.Generated = e.Generated

	for _, itemID := range e.Equips {
		applyItem(u, data.GetItem(itemID))
	}
	return u, nil
}

// applyItem applies an equipment bonus map to u.
func applyItem(u *model.CombatUnit, it *data.Item) {
	if it == nil {
		return
	}
	pct := func(v int, p float64) int { return int(math.Round(float64(v) * (1 + p))) }
	for key, v := range it.Bonus {
		switch key {
		case "hp_pct":
			add := pct(u.MaxHP, v) - u.MaxHP
			u.MaxHP += add
			u.Heal(add)
		case "atk_pct":
			u.Atk = pct(u.Atk, v)
		case "matk_pct":
			u.Matk = pct(u.Matk, v)
		case "def_flat":
			u.Def += int(v)
		case "mdef_flat":
			u.Mdef += int(v)
		case "crit_pct":
			u.Mods.CritPct += v
		case "lifesteal_pct":
			u.Mods.LifestealPct += v
		case "heal_pct":
			u.Mods.HealPct += v
		case "evade_pct":
			u.Mods.EvadePct += v
		case "burn_on_hit":
			u.Mods.BurnOnHit += int(v)
		case "poison_on_hit":
			u.Mods.PoisonOnHit += int(v)
		case "starting_rage":
			u.SetRage(u.Rage() + int(v))
		case "shield_start":
			u.AddShield(int(v))
		default:
			slog.Warn("unknown item bonus", "item", it.ID, "key", key)
		}
	}
}

// BuildTeam builds every entry of a side. Unit ids are "<L|R><index>-<base id>".
func BuildTeam(entries []Entry, side model.Side, battle config.Battle) ([]*model.CombatUnit, error) {
	prefix := side.String()[:1]
	taken := make(map[model.Position]string, len(entries))
	units := make([]*model.CombatUnit, 0, len(entries))
	for i, e := range entries {
		pos := model.Position{Row: e.Row, Col: e.Col}
		if other, ok := taken[pos]; ok {
			return nil, fmt.Errorf("unit %q at (%d,%d) collides with %s: %w", e.BaseID, e.Row, e.Col, other, ErrCellTaken)
		}
		u, err := Build(fmt.Sprintf("%s%d-%s", prefix, i+1, e.BaseID), e, side, battle)
		if err != nil {
			return nil, fmt.Errorf("building %s roster: %w", side, err)
		}
		taken[pos] = u.ID
		units = append(units, u)
	}
	return units, nil
}

// Mirror reflects entries across the board centre so a LEFT roster can fight as RIGHT.
func Mirror(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.Col = model.Cols - 1 - e.Col
		e.Equips = append([]string(nil), e.Equips...)
		out[i] = e
	}
	return out
}
