// Package rules holds the turn structure, the synchronous event bus, and
// watchers that track per-turn conditions.
package rules

import (
	"fmt"
)

// Phase represents the broad phases of a turn.
type Phase int

const (
	PhaseBeginning Phase = iota
	PhasePrecombatMain
	PhaseCombat
	PhasePostcombatMain
	PhaseEnding
)

var phaseNames = map[Phase]string{
	PhaseBeginning:      "BEGINNING",
	PhasePrecombatMain:  "PRECOMBAT_MAIN",
	PhaseCombat:         "COMBAT",
	PhasePostcombatMain: "POSTCOMBAT_MAIN",
	PhaseEnding:         "ENDING",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Step represents the individual steps that comprise a turn.
type Step int

const (
	StepUntap Step = iota
	StepUpkeep
	StepDraw
	StepMain1
	StepBeginCombat
	StepDeclareAttackers
	StepDeclareBlockers
	StepCombatDamage
	StepEndCombat
	StepMain2
	StepEnd
	StepCleanup
)

var stepNames = map[Step]string{
	StepUntap:            "UNTAP",
	StepUpkeep:           "UPKEEP",
	StepDraw:             "DRAW",
	StepMain1:            "MAIN1",
	StepBeginCombat:      "BEGIN_COMBAT",
	StepDeclareAttackers: "DECLARE_ATTACKERS",
	StepDeclareBlockers:  "DECLARE_BLOCKERS",
	StepCombatDamage:     "COMBAT_DAMAGE",
	StepEndCombat:        "END_COMBAT",
	StepMain2:            "MAIN2",
	StepEnd:              "END",
	StepCleanup:          "CLEANUP",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

// MarshalText renders the step name, so YAML and JSON views show "MAIN1"
// instead of an index.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsMain reports whether s is a main phase.
func (s Step) IsMain() bool {
	return s == StepMain1 || s == StepMain2
}

// IsCombat reports whether s belongs to the combat phase.
func (s Step) IsCombat() bool {
	return s.Phase() == PhaseCombat
}

// Phase returns the phase containing s.
func (s Step) Phase() Phase {
	for _, entry := range turnSequence {
		if entry.step == s {
			return entry.phase
		}
	}
	return Phase(-1)
}

type turnEntry struct {
	phase Phase
	step  Step
}

// turnSequence is the fixed order of steps within a turn.
var turnSequence = []turnEntry{
	{PhaseBeginning, StepUntap},
	{PhaseBeginning, StepUpkeep},
	{PhaseBeginning, StepDraw},
	{PhasePrecombatMain, StepMain1},
	{PhaseCombat, StepBeginCombat},
	{PhaseCombat, StepDeclareAttackers},
	{PhaseCombat, StepDeclareBlockers},
	{PhaseCombat, StepCombatDamage},
	{PhaseCombat, StepEndCombat},
	{PhasePostcombatMain, StepMain2},
	{PhaseEnding, StepEnd},
	{PhaseEnding, StepCleanup},
}

// Steps returns every step of a turn in order.
func Steps() []Step {
	out := make([]Step, len(turnSequence))
	for i, entry := range turnSequence {
		out[i] = entry.step
	}
	return out
}

// Successor returns the step after s. ok is false when s is the last step of
// the turn.
func Successor(s Step) (next Step, ok bool) {
	for i, entry := range turnSequence {
		if entry.step == s {
			if i+1 < len(turnSequence) {
				return turnSequence[i+1].step, true
			}
			return StepUntap, false
		}
	}
	return StepUntap, false
}

// TurnManager tracks the turn number, the current step and the index of the
// active player within a fixed turn order.
type TurnManager struct {
	turnNumber  int
	step        Step
	activeIndex int
	players     int
}

// NewTurnManager creates a turn manager at turn 1 with the first player in
// turn order active. The opening turn starts at the upkeep step.
func NewTurnManager(players int) *TurnManager {
	if players < 1 {
		players = 1
	}
	return &TurnManager{
		turnNumber:  1,
		step:        StepUpkeep,
		activeIndex: 0,
		players:     players,
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return tm.step.Phase()
}

// CurrentStep returns the step currently in progress.
func (tm *TurnManager) CurrentStep() Step {
	return tm.step
}

// TurnNumber returns the current turn number (1-based). It counts full laps of
// the turn order, not individual turns.
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActiveIndex returns the turn-order index of the active player.
func (tm *TurnManager) ActiveIndex() int {
	return tm.activeIndex
}

// SkipsDraw reports whether the draw step is skipped this turn: the first
// player in turn order does not draw on turn 1.
func (tm *TurnManager) SkipsDraw() bool {
	return tm.turnNumber == 1 && tm.activeIndex == 0
}

// AdvanceStep moves to the next step of the current turn. It returns false,
// leaving the step unchanged, when the turn has no further steps.
func (tm *TurnManager) AdvanceStep() (Step, bool) {
	next, ok := Successor(tm.step)
	if !ok {
		return tm.step, false
	}
	if next == StepDraw && tm.SkipsDraw() {
		next, _ = Successor(next)
	}
	tm.step = next
	return tm.step, true
}

// EndTurn rotates the active player and moves to the untap step. The turn
// number increments each time turn order wraps back to the first player.
func (tm *TurnManager) EndTurn() (activeIndex int) {
	tm.activeIndex = (tm.activeIndex + 1) % tm.players
	if tm.activeIndex == 0 {
		tm.turnNumber++
	}
	tm.step = StepUntap
	return tm.activeIndex
}
