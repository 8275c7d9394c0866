package data

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/beastarena/internal/model"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

// ErrUnknownSkill is returned when a skill id is not in the catalog.
var ErrUnknownSkill = errors.New("unknown skill")

// UnitStats are star-1 base stats.
type UnitStats struct {
	HP      int `yaml:"hp"`
	Atk     int `yaml:"atk"`
	Def     int `yaml:"def"`
	Matk    int `yaml:"matk"`
	Mdef    int `yaml:"mdef"`
	Range   int `yaml:"range"`
	RageMax int `yaml:"rage_max"`
}

// UnitTemplate содержит шаблон юнита из каталога.
type UnitTemplate struct {
	ID      string        `yaml:"id"`
	Name    string        `yaml:"name"`
	Species string        `yaml:"species"`
	Icon    string        `yaml:"icon"`
	Element model.Element `yaml:"element"`
	Class   model.Class   `yaml:"class"`
	Tier    int           `yaml:"tier"`
	Stats   UnitStats     `yaml:"stats"`
	Skill   string        `yaml:"skill"`

	// StarSkills replaces the skill from the given star upward.
	StarSkills map[int]string `yaml:"star_skills"`
}

// Skill is a catalog skill. Handlers read their numeric knobs from Params.
type Skill struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Effect      string             `yaml:"effect"`
	DamageType  string             `yaml:"damage_type"`
	ScaleStat   model.ScaleStat    `yaml:"scale_stat"`
	Base        float64            `yaml:"base"`
	Scale       float64            `yaml:"scale"`
	Pattern     string             `yaml:"pattern"`
	Params      map[string]float64 `yaml:"params"`
	Description string             `yaml:"description"`
}

// Param returns a named parameter or def when absent.
func (s *Skill) Param(name string, def float64) float64 {
	if v, ok := s.Params[name]; ok {
		return v
	}
	return def
}

// IntParam returns a named parameter truncated to int, or def when absent.
func (s *Skill) IntParam(name string, def int) int {
	if v, ok := s.Params[name]; ok {
		return int(v)
	}
	return def
}

// Has reports whether the parameter is set.
func (s *Skill) Has(name string) bool {
	_, ok := s.Params[name]
	return ok
}

// Item is an equipment or base material.
type Item struct {
	ID    string             `yaml:"id"`
	Name  string             `yaml:"name"`
	Icon  string             `yaml:"icon"`
	Kind  string             `yaml:"kind"` // base | equipment
	Tier  int                `yaml:"tier"`
	Bonus map[string]float64 `yaml:"bonus"`
}

// IsEquipment reports whether the item can be worn.
func (i *Item) IsEquipment() bool { return i.Kind == "equipment" }

// LootEntry is one possible drop.
type LootEntry struct {
	Item   string  `yaml:"item"`
	Chance float64 `yaml:"chance"` // percent
	Min    int     `yaml:"min"`
	Max    int     `yaml:"max"`
}

// TierLoot is the fallback loot for a tier band.
type TierLoot struct {
	MinTier int         `yaml:"min_tier"`
	MaxTier int         `yaml:"max_tier"`
	Entries []LootEntry `yaml:"entries"`
}

type lootFile struct {
	Species map[string][]LootEntry `yaml:"species"`
	Tiers   []TierLoot             `yaml:"tiers"`
}

// Catalog tables. Populated by Load.
var (
	UnitTable  map[string]*UnitTemplate
	SkillTable map[string]*Skill
	ItemTable  map[string]*Item

	speciesLoot map[string][]LootEntry
	tierLoot    []TierLoot
)

// Load parses the embedded catalogs. Safe to call more than once.
func Load() error {
	var units []UnitTemplate
	if err := readCatalog("catalog/units.yaml", &units); err != nil {
		return err
	}
	var skills []Skill
	if err := readCatalog("catalog/skills.yaml", &skills); err != nil {
		return err
	}
	var items []Item
	if err := readCatalog("catalog/items.yaml", &items); err != nil {
		return err
	}
	var loot lootFile
	if err := readCatalog("catalog/loot.yaml", &loot); err != nil {
		return err
	}

	SkillTable = make(map[string]*Skill, len(skills))
	for i := range skills {
		s := &skills[i]
		if _, dup := SkillTable[s.ID]; dup {
			return fmt.Errorf("duplicate skill %q", s.ID)
		}
		SkillTable[s.ID] = s
	}

	UnitTable = make(map[string]*UnitTemplate, len(units))
	for i := range units {
		u := &units[i]
		if _, dup := UnitTable[u.ID]; dup {
			return fmt.Errorf("duplicate unit %q", u.ID)
		}
		if !u.Element.Valid() || !u.Class.Valid() {
			return fmt.Errorf("unit %q: invalid element %q or class %q", u.ID, u.Element, u.Class)
		}
		if _, ok := SkillTable[u.Skill]; !ok {
			return fmt.Errorf("unit %q: %w %q", u.ID, ErrUnknownSkill, u.Skill)
		}
		for star, id := range u.StarSkills {
			if _, ok := SkillTable[id]; !ok {
				return fmt.Errorf("unit %q star %d: %w %q", u.ID, star, ErrUnknownSkill, id)
			}
		}
		UnitTable[u.ID] = u
	}

	ItemTable = make(map[string]*Item, len(items))
	for i := range items {
		ItemTable[items[i].ID] = &items[i]
	}

	speciesLoot = loot.Species
	tierLoot = loot.Tiers

	slog.Debug("loaded catalogs",
		"units", len(UnitTable),
		"skills", len(SkillTable),
		"items", len(ItemTable),
		"loot_species", len(speciesLoot))
	return nil
}

func readCatalog(name string, out any) error {
	raw, err := catalogFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading catalog %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing catalog %s: %w", name, err)
	}
	return nil
}

// GetUnit returns a unit template by id, or nil.
func GetUnit(id string) *UnitTemplate {
	return UnitTable[id]
}

// GetSkill returns a skill by id.
func GetSkill(id string) (*Skill, error) {
	s, ok := SkillTable[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSkill, id)
	}
	return s, nil
}

// GetItem returns an item by id, or nil.
func GetItem(id string) *Item {
	return ItemTable[id]
}

// ResolveSkillID picks the highest star override not above star, else the base skill.
func ResolveSkillID(u *UnitTemplate, star int) string {
	best, id := 0, u.Skill
	for s, sid := range u.StarSkills {
		if s <= star && s > best {
			best, id = s, sid
		}
	}
	return id
}

// LootFor returns the loot entries for a species, falling back to the tier band.
func LootFor(species string, tier int) []LootEntry {
	if entries, ok := speciesLoot[species]; ok {
		return entries
	}
	for _, band := range tierLoot {
		if tier >= band.MinTier && tier <= band.MaxTier {
			return band.Entries
		}
	}
	return nil
}

// UnitIDs returns all unit ids sorted.
func UnitIDs() []string {
	ids := make([]string, 0, len(UnitTable))
	for id := range UnitTable {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UnitsByTier returns unit templates of the tier sorted by id.
func UnitsByTier(tier int) []*UnitTemplate {
	var out []*UnitTemplate
	for _, id := range UnitIDs() {
		if u := UnitTable[id]; u.Tier == tier {
			out = append(out, u)
		}
	}
	return out
}

// SkillIDs returns all skill ids sorted.
func SkillIDs() []string {
	ids := make([]string, 0, len(SkillTable))
	for id := range SkillTable {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
