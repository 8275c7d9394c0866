package model

import "math"

// CombatUnit описывает одну боевую единицу на поле.
// Stats are exported; hp, rage and shield go through methods that keep
// 0 ≤ hp ≤ MaxHP, 0 ≤ rage ≤ RageMax, shield ≥ 0 and alive == (hp > 0).
type CombatUnit struct {
	ID      string
	BaseID  string
	Name    string
	Species string
	Icon    string

	Side    Side
	Row     int
	Col     int
	HomeRow int
	HomeCol int

	Element Element
	Class   Class
	Tier    int
	Star    int

	MaxHP   int
	Atk     int
	Def     int
	Matk    int
	Mdef    int
	Range   int
	RageMax int

	SkillID     string
	Generated   bool
	Transformed bool

	Mods     Mods
	Statuses StatusSet

	hp     int
	rage   int
	shield int
	alive  bool
}

// NewCombatUnit returns a living unit at full HP. RageMax is at least 1.
func NewCombatUnit(id string, side Side, row, col, maxHP int) *CombatUnit {
	u := &CombatUnit{
		ID:      id,
		Side:    side,
		Row:     row,
		Col:     col,
		HomeRow: row,
		HomeCol: col,
		Star:    1,
		Tier:    1,
		Range:   1,
		RageMax: 1,
		MaxHP:   max(1, maxHP),
		Mods:    DefaultMods(),
	}
	u.hp = u.MaxHP
	u.alive = true
	return u
}

// HP возвращает текущее HP.
func (u *CombatUnit) HP() int { return u.hp }

// Rage возвращает текущую ярость.
func (u *CombatUnit) Rage() int { return u.rage }

// Shield возвращает текущий щит.
func (u *CombatUnit) Shield() int { return u.shield }

// IsAlive reports whether the unit can act and be targeted as alive.
func (u *CombatUnit) IsAlive() bool { return u.alive }

// IsTank reports whether the unit is of the tank archetype.
func (u *CombatUnit) IsTank() bool { return u.Class == ClassTanker }

// IsMelee reports whether the unit attacks at range ≤ 1.
func (u *CombatUnit) IsMelee() bool { return u.Range <= 1 }

// Pos returns the unit's board cell.
func (u *CombatUnit) Pos() Position { return Position{Row: u.Row, Col: u.Col} }

// HPRatio returns hp/maxHp in [0, 1].
func (u *CombatUnit) HPRatio() float64 {
	if u.MaxHP <= 0 {
		return 0
	}
	return float64(u.hp) / float64(u.MaxHP)
}

// SetHP sets HP clamped to [0, MaxHP]. Reaching 0 kills the unit.
// Dead units are not affected; use Revive.
func (u *CombatUnit) SetHP(hp int) {
	if !u.alive {
		return
	}
	u.hp = min(max(hp, 0), u.MaxHP)
	if u.hp == 0 {
		u.Kill()
	}
}

// TakeDamage removes HP and returns the HP actually lost.
func (u *CombatUnit) TakeDamage(amount int) int {
	if !u.alive || amount <= 0 {
		return 0
	}
	before := u.hp
	u.SetHP(u.hp - amount)
	return before - u.hp
}

// Heal restores HP up to MaxHP and returns the HP actually restored.
func (u *CombatUnit) Heal(amount int) int {
	if !u.alive || amount <= 0 {
		return 0
	}
	before := u.hp
	u.SetHP(u.hp + amount)
	return u.hp - before
}

// AddRage adds (or removes, if negative) rage clamped to [0, RageMax].
// Returns true when the rage bar just became full.
func (u *CombatUnit) AddRage(delta int) bool {
	if !u.alive || delta == 0 {
		return false
	}
	before := u.rage
	u.rage = min(max(u.rage+delta, 0), u.RageMax)
	return before < u.RageMax && u.rage >= u.RageMax
}

// SetRage sets rage clamped to [0, RageMax].
func (u *CombatUnit) SetRage(rage int) {
	u.rage = min(max(rage, 0), u.RageMax)
}

// RageFull reports whether the skill is ready.
func (u *CombatUnit) RageFull() bool { return u.rage >= u.RageMax }

// AddShield increases the shield.
func (u *CombatUnit) AddShield(amount int) {
	if !u.alive || amount <= 0 {
		return
	}
	u.shield += amount
}

// AbsorbDamage consumes shield against amount and returns the absorbed part.
func (u *CombatUnit) AbsorbDamage(amount int) int {
	if amount <= 0 || u.shield <= 0 {
		return 0
	}
	absorbed := min(u.shield, amount)
	u.shield -= absorbed
	return absorbed
}

// Kill marks the unit dead: hp and shield drop to zero.
func (u *CombatUnit) Kill() {
	u.alive = false
	u.hp = 0
	u.shield = 0
	u.rage = 0
}

// Revive brings a dead unit back with the given HP fraction of MaxHP (at least 1 HP).
func (u *CombatUnit) Revive(pct float64) bool {
	if u.alive {
		return false
	}
	u.Statuses.ClearAll()
	u.alive = true
	u.hp = min(max(1, int(math.Round(float64(u.MaxHP)*pct))), u.MaxHP)
	u.rage = 0
	u.shield = 0
	return true
}

// EffectiveAtk = round(atk × (1 + AtkPct)) + buff − debuff, at least 1.
// Units without base atk (dummies, pacifists) stay at 0.
func (u *CombatUnit) EffectiveAtk() int {
	if u.Atk <= 0 {
		return 0
	}
	base := math.Round(float64(u.Atk) * (1 + u.Mods.AtkPct))
	v := base + u.Statuses.Value(StatusAtkBuff) - u.Statuses.Value(StatusAtkDebuff)
	return max(1, int(math.Round(v)))
}

// EffectiveMatk = round(matk × (1 + MatkPct)), at least 1.
func (u *CombatUnit) EffectiveMatk() int {
	if u.Matk <= 0 {
		return 0
	}
	return max(1, int(math.Round(float64(u.Matk)*(1+u.Mods.MatkPct))))
}

// EffectiveDef = def + buff − debuff, at least 0.
func (u *CombatUnit) EffectiveDef() int {
	v := float64(u.Def) + u.Statuses.Value(StatusDefBuff) - u.Statuses.Value(StatusDefDebuff)
	return max(0, int(math.Round(v)))
}

// EffectiveMdef = mdef + buff − debuff, at least 0.
func (u *CombatUnit) EffectiveMdef() int {
	v := float64(u.Mdef) + u.Statuses.Value(StatusMdefBuff) - u.Statuses.Value(StatusMdefDebuff)
	return max(0, int(math.Round(v)))
}

// Evasion returns the dodge fraction clamped to [0, 0.6].
func (u *CombatUnit) Evasion() float64 {
	v := u.Mods.EvadePct + u.Statuses.Value(StatusEvadeBuff) - u.Statuses.Value(StatusEvadeDebuff)
	return math.Min(math.Max(v, 0), 0.6)
}

// ArmorBreak returns the active flat defense reduction.
func (u *CombatUnit) ArmorBreak() int {
	return int(math.Round(u.Statuses.Value(StatusArmorBreak)))
}

// StatValue reads a scaling stat. Unknown stats read as effective atk.
func (u *CombatUnit) StatValue(stat ScaleStat) int {
	switch stat {
	case ScaleMatk:
		return u.EffectiveMatk()
	case ScaleDef:
		return u.EffectiveDef()
	case ScaleMdef:
		return u.EffectiveMdef()
	case ScaleMaxHP:
		return u.MaxHP
	default:
		return u.EffectiveAtk()
	}
}

// ReturnHome moves the unit back to its home cell.
func (u *CombatUnit) ReturnHome() {
	u.Row, u.Col = u.HomeRow, u.HomeCol
}

// MoveTo places the unit on a new cell and makes it the new home.
func (u *CombatUnit) MoveTo(row, col int) {
	u.Row, u.Col = row, col
	u.HomeRow, u.HomeCol = row, col
}
