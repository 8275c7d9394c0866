package model

// DamageType selects the mitigation path of a hit.
type DamageType string

const (
	DamagePhysical DamageType = "physical"
	DamageMagic    DamageType = "magic"
	DamageTrue     DamageType = "true"
)

// ParseDamageType returns the damage type for v.
// Unknown values map to physical and ok=false so the caller can log the fallback.
func ParseDamageType(v string) (DamageType, bool) {
	switch DamageType(v) {
	case DamagePhysical, DamageMagic, DamageTrue:
		return DamageType(v), true
	case "":
		return DamagePhysical, true
	default:
		return DamagePhysical, false
	}
}

// ScaleStat names the stat a skill or basic attack scales from.
type ScaleStat string

const (
	ScaleAtk   ScaleStat = "atk"
	ScaleMatk  ScaleStat = "matk"
	ScaleDef   ScaleStat = "def"
	ScaleMdef  ScaleStat = "mdef"
	ScaleMaxHP ScaleStat = "maxHp"
)
