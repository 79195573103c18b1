package game

import (
	"github.com/magefree/mage-rules-go/internal/catalog"
	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/mana"
)

// Object is the core component of every in-game object.
//
// Controller is meaningful only while HasController is set, which holds
// exactly when Zone is the stack or the battlefield.
type Object struct {
	Name       string
	Types      catalog.Types
	Supertypes []catalog.Supertype
	Subtypes   []catalog.Subtype
	ManaCost   mana.Cost
	HasCost    bool
	// PT is nil for objects without power/toughness.
	PT *effects.PTCharacteristic

	Zone          ZoneID
	Owner         PlayerID
	Controller    PlayerID
	HasController bool
}

// IsCreature reports whether the object has the creature type.
func (o *Object) IsCreature() bool {
	return o.Types.Has(catalog.TypeCreature)
}

// IsLand reports whether the object has the land type.
func (o *Object) IsLand() bool {
	return o.Types.Has(catalog.TypeLand)
}

// IsInstant reports whether the object has the instant type.
func (o *Object) IsInstant() bool {
	return o.Types.Has(catalog.TypeInstant)
}

// IsPermanentCard reports whether the object would become a permanent on
// resolution.
func (o *Object) IsPermanentCard() bool {
	for _, t := range o.Types {
		if t.IsPermanent() {
			return true
		}
	}
	return false
}

// Permanent is attached exactly while the object is on the battlefield.
type Permanent struct {
	Tapped bool
}

// Card links an object to its catalog descriptor.
type Card struct {
	ID catalog.CardID
}

// IncompleteSpell is attached to a spell on the stack while its cost is being
// paid. Paid[i] pays Cost[i], so len(Paid) <= len(Cost).
type IncompleteSpell struct {
	FromZone ZoneID
	Cost     mana.Cost
	Paid     []mana.ManaID
}

// Remaining returns the number of unpaid cost items.
func (s *IncompleteSpell) Remaining() int {
	return len(s.Cost) - len(s.Paid)
}

// Damage is damage marked on a permanent this turn.
type Damage struct {
	Amount int
}

// Attacking marks a creature declared as an attacker.
type Attacking struct {
	Defender PlayerID
}

// Blocked lists, in declaration order, the creatures blocking an attacker.
type Blocked struct {
	By []ecs.Entity
}

// Blocking marks a creature declared as a blocker.
type Blocking struct {
	Attacker ecs.Entity
}
