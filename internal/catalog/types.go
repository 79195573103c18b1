package catalog

import "strings"

// CardType is one of the card types printed on the type line.
type CardType string

const (
	TypeArtifact     CardType = "artifact"
	TypeCreature     CardType = "creature"
	TypeEnchantment  CardType = "enchantment"
	TypeInstant      CardType = "instant"
	TypeLand         CardType = "land"
	TypePlaneswalker CardType = "planeswalker"
	TypeSorcery      CardType = "sorcery"
	TypeTribal       CardType = "tribal"
)

var knownTypes = map[CardType]bool{
	TypeArtifact:     true,
	TypeCreature:     true,
	TypeEnchantment:  true,
	TypeInstant:      true,
	TypeLand:         true,
	TypePlaneswalker: true,
	TypeSorcery:      true,
	TypeTribal:       true,
}

// IsPermanent reports whether objects of this type resolve onto the
// battlefield.
func (t CardType) IsPermanent() bool {
	switch t {
	case TypeArtifact, TypeCreature, TypeEnchantment, TypeLand, TypePlaneswalker:
		return true
	}
	return false
}

// Supertype is one of basic, legendary, snow, world or ongoing.
type Supertype string

const (
	SupertypeBasic     Supertype = "basic"
	SupertypeLegendary Supertype = "legendary"
	SupertypeOngoing   Supertype = "ongoing"
	SupertypeSnow      Supertype = "snow"
	SupertypeWorld     Supertype = "world"
)

var knownSupertypes = map[Supertype]bool{
	SupertypeBasic:     true,
	SupertypeLegendary: true,
	SupertypeOngoing:   true,
	SupertypeSnow:      true,
	SupertypeWorld:     true,
}

// Subtype is a free-form subtype such as "bear" or "forest".
type Subtype string

// Types is a set of card types.
type Types []CardType

// Has reports whether t is in the set.
func (ts Types) Has(t CardType) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

func (ts Types) String() string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = string(t)
	}
	return strings.Join(parts, " ")
}
