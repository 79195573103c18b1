package game

import (
	"errors"

	"github.com/magefree/mage-rules-go/internal/game/mana"
)

// Rule violations. Workflows return these, wrapped with detail; DoAction logs
// and drops them.
var (
	// Protocol
	ErrGameOver          = errors.New("game is over")
	ErrWrongState        = errors.New("game is not waiting for this action")
	ErrNotPriorityHolder = errors.New("player does not hold priority")
	ErrNotActivePlayer   = errors.New("player is not the active player")
	ErrUnknownPlayer     = errors.New("no such player")
	ErrPlayerLost        = errors.New("player has lost the game")
	ErrUnknownAction     = errors.New("unknown action")

	// Objects and zones
	ErrNoSuchObject  = errors.New("no such object")
	ErrNotPermanent  = errors.New("object is not a permanent")
	ErrNotCreature   = errors.New("object is not a creature")
	ErrNotController = errors.New("player does not control the object")
	ErrTapped        = errors.New("permanent is tapped")
	ErrUnknownCard   = errors.New("card not in catalog")
	ErrUnknownZone   = errors.New("no such zone")

	// Timing
	ErrStackNotEmpty = errors.New("stack is not empty")
	ErrNotMainPhase  = errors.New("it is not a main phase")

	// Lands
	ErrNotALand          = errors.New("object is not a land")
	ErrLandAlreadyPlayed = errors.New("a land was already played this turn")
	ErrNoManaAbility     = errors.New("permanent has no mana ability")

	// Casting
	ErrNotInHand         = errors.New("object is not in the player's hand")
	ErrNoManaCost        = errors.New("object has no mana cost")
	ErrNotIncomplete     = errors.New("spell is not being cast")
	ErrNoCostRemaining   = errors.New("every cost item is already paid")
	ErrManaAlreadyUsed   = errors.New("mana already applied to this spell")
	ErrManaMismatch      = errors.New("mana cannot pay the next cost item")
	ErrPaymentOutOfOrder = errors.New("cost items must be paid in order")
	ErrCostUnpaid        = errors.New("cost is not fully paid")
	ErrUnknownMana       = mana.ErrUnknownMana
	ErrDuplicateMana     = mana.ErrDuplicateMana

	// Combat
	ErrNotAttacking    = errors.New("creature is not attacking this player")
	ErrAlreadyDeclared = errors.New("creature declared more than once")
)
