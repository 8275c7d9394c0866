package model

// Mods are per-unit modifiers granted by synergies, equipment and skills.
// Percentages are fractions: 0.2 means +20%.
type Mods struct {
	AtkPct       float64
	MatkPct      float64
	HealPct      float64
	LifestealPct float64
	CritPct      float64
	EvadePct     float64
	AccuracyPct  float64
	ArmorPenPct  float64

	// on-hit procs, damage per turn
	BurnOnHit   int
	PoisonOnHit int

	BasicDamageType DamageType
	BasicScaleStat  ScaleStat
}

// DefaultMods returns mods with the physical/atk basic attack.
func DefaultMods() Mods {
	return Mods{
		BasicDamageType: DamagePhysical,
		BasicScaleStat:  ScaleAtk,
	}
}
