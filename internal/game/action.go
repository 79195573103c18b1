package game

import (
	"fmt"

	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/mana"
)

// ActionCategory is the kind of input the game is waiting for.
type ActionCategory int

const (
	CategoryPriority ActionCategory = iota
	CategoryChooseAttackers
	CategoryChooseBlockers
	// CategorySpellManaAbilities is used while a spell's cost is being paid.
	CategorySpellManaAbilities
)

var categoryNames = map[ActionCategory]string{
	CategoryPriority:           "PRIORITY",
	CategoryChooseAttackers:    "CHOOSE_ATTACKERS",
	CategoryChooseBlockers:     "CHOOSE_BLOCKERS",
	CategorySpellManaAbilities: "SPELL_MANA_ABILITIES",
}

func (c ActionCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CATEGORY_%d", int(c))
}

// MarshalText renders the category name.
func (c ActionCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// OutcomeKind tells a win apart from a draw.
type OutcomeKind int

const (
	OutcomeWin OutcomeKind = iota
	OutcomeDraw
)

// Outcome is the result of a completed match. Winner is meaningful only for
// OutcomeWin.
type Outcome struct {
	Kind   OutcomeKind
	Winner PlayerID
}

func (o Outcome) String() string {
	if o.Kind == OutcomeDraw {
		return "draw"
	}
	return fmt.Sprintf("win(%s)", o.Winner)
}

// State is the protocol state: either waiting on one player for one category
// of action, or complete.
type State struct {
	Complete bool
	Outcome  Outcome

	Player   PlayerID
	Category ActionCategory
}

func waiting(p PlayerID, c ActionCategory) State {
	return State{Player: p, Category: c}
}

func complete(o Outcome) State {
	return State{Complete: true, Outcome: o}
}

// IsWaiting reports whether the state is waiting on p for c.
func (s State) IsWaiting(p PlayerID, c ActionCategory) bool {
	return !s.Complete && s.Player == p && s.Category == c
}

func (s State) String() string {
	if s.Complete {
		return "complete(" + s.Outcome.String() + ")"
	}
	return fmt.Sprintf("waiting(%s, %s)", s.Player, s.Category)
}

// Action is a player input accepted by Game.DoAction.
type Action interface {
	Name() string
}

// Concede makes the acting player lose.
type Concede struct{}

// PassPriority passes priority to the next player.
type PassPriority struct{}

// ChooseAttackers declares every attacking creature at once.
type ChooseAttackers struct {
	Attackers []ecs.Entity
}

// Block pairs a blocking creature with the attacker it blocks.
type Block struct {
	Blocker  ecs.Entity
	Attacker ecs.Entity
}

// ChooseBlockers declares every blocking creature at once.
type ChooseBlockers struct {
	Blockers []Block
}

// PlayLand plays a land from hand as a special action.
type PlayLand struct {
	Card ecs.Entity
}

// StartCastingSpell moves a spell from hand to the stack and begins paying
// its cost.
type StartCastingSpell struct {
	Spell ecs.Entity
}

// PayIncompleteSpellMana applies one mana unit to the next unpaid cost item.
type PayIncompleteSpellMana struct {
	Spell ecs.Entity
	Mana  mana.ManaID
}

// FinishCastingSpell spends the applied mana and completes the cast.
type FinishCastingSpell struct {
	Spell ecs.Entity
}

// CancelCastingSpell abandons a cast and returns the spell to where it came
// from.
type CancelCastingSpell struct {
	Spell ecs.Entity
}

func (Concede) Name() string                { return "CONCEDE" }
func (PassPriority) Name() string           { return "PASS_PRIORITY" }
func (ChooseAttackers) Name() string        { return "CHOOSE_ATTACKERS" }
func (ChooseBlockers) Name() string         { return "CHOOSE_BLOCKERS" }
func (PlayLand) Name() string               { return "PLAY_LAND" }
func (StartCastingSpell) Name() string      { return "START_CASTING_SPELL" }
func (PayIncompleteSpellMana) Name() string { return "PAY_INCOMPLETE_SPELL_MANA" }
func (FinishCastingSpell) Name() string     { return "FINISH_CASTING_SPELL" }
func (CancelCastingSpell) Name() string     { return "CANCEL_CASTING_SPELL" }
