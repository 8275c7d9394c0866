package model

// Element is a unit's tribe. Elements form a fixed one-directional counter table.
type Element string

const (
	ElementFire   Element = "FIRE"
	ElementSpirit Element = "SPIRIT"
	ElementTide   Element = "TIDE"
	ElementStone  Element = "STONE"
	ElementWind   Element = "WIND"
	ElementNight  Element = "NIGHT"
	ElementSwarm  Element = "SWARM"
)

// counterTable maps attacker element → the element it beats.
// SWARM не имеет контр-элемента.
var counterTable = map[Element]Element{
	ElementFire:   ElementSpirit,
	ElementSpirit: ElementTide,
	ElementTide:   ElementFire,
	ElementStone:  ElementWind,
	ElementWind:   ElementNight,
	ElementNight:  ElementStone,
}

// Counters reports whether attacker element e beats defender element d.
func (e Element) Counters(d Element) bool {
	beaten, ok := counterTable[e]
	return ok && beaten == d
}

// Valid reports whether e is a known element.
func (e Element) Valid() bool {
	switch e {
	case ElementFire, ElementSpirit, ElementTide, ElementStone, ElementWind, ElementNight, ElementSwarm:
		return true
	}
	return false
}

// Class is a unit archetype.
type Class string

const (
	ClassTanker   Class = "TANKER"
	ClassFighter  Class = "FIGHTER"
	ClassAssassin Class = "ASSASSIN"
	ClassArcher   Class = "ARCHER"
	ClassMage     Class = "MAGE"
	ClassSupport  Class = "SUPPORT"
)

// Valid reports whether c is a known class.
func (c Class) Valid() bool {
	switch c {
	case ClassTanker, ClassFighter, ClassAssassin, ClassArcher, ClassMage, ClassSupport:
		return true
	}
	return false
}

// IsCaster reports whether skill hits of this class grant rage to the attacker.
func (c Class) IsCaster() bool {
	return c == ClassMage || c == ClassSupport
}
