package game

import (
	"testing"

	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityPassesInTurnOrder(t *testing.T) {
	g := newTestGame(t, "A", "B", "C")

	require.NoError(t, g.do(0, PassPriority{}))
	assert.True(t, g.State().IsWaiting(1, CategoryPriority))
	require.NoError(t, g.do(1, PassPriority{}))
	assert.True(t, g.State().IsWaiting(2, CategoryPriority))
	assert.Equal(t, rules.StepUpkeep, g.Step())

	assert.ErrorIs(t, g.do(0, PassPriority{}), ErrNotPriorityHolder)

	require.NoError(t, g.do(2, PassPriority{}))
	assert.Equal(t, rules.StepMain1, g.Step(), "all passed in succession")
	assert.True(t, g.State().IsWaiting(0, CategoryPriority))
}

func TestActionRestartsPriorityRound(t *testing.T) {
	g := newTestGame(t)
	bolt := createCard(t, g, "Lightning Bolt", HandZone(bob), bob)
	require.NoError(t, g.do(alice, PassPriority{}))

	// Bob responds in alice's upkeep. Alice passed already, but the cast
	// gives everyone a new chance.
	castWithMana(t, g, bob, bolt, mana.ManaRed)
	assert.True(t, g.State().IsWaiting(bob, CategoryPriority))
	require.NoError(t, g.do(bob, PassPriority{}))
	assert.True(t, g.State().IsWaiting(alice, CategoryPriority), "alice may respond")
	stack, _ := g.Zone(StackZone)
	assert.Equal(t, 1, stack.Len())

	require.NoError(t, g.do(alice, PassPriority{}))
	assert.True(t, stack.IsEmpty())
	assert.Equal(t, rules.StepUpkeep, g.Step())
	assert.True(t, g.State().IsWaiting(alice, CategoryPriority), "the active player gets priority after resolution")
}

func TestConcedeEndsTwoPlayerGame(t *testing.T) {
	g := newTestGame(t)
	var over rules.Event
	g.Subscribe(func(ev rules.Event) {
		if ev.Type == rules.EventGameOver {
			over = ev
		}
	})

	require.NoError(t, g.do(bob, Concede{}), "conceding does not need priority")
	s := g.State()
	require.True(t, s.Complete)
	assert.Equal(t, Outcome{Kind: OutcomeWin, Winner: alice}, s.Outcome)
	assert.Equal(t, rules.EventGameOver, over.Type)
	assert.Equal(t, s.Outcome.String(), over.Data)

	assert.NoError(t, AdvanceWithNoActions(g), "nothing to do once the game is over")
}

func TestConcedeInMultiplayer(t *testing.T) {
	g := newTestGame(t, "A", "B", "C")
	stockLibraries(t, g, 10)
	require.NoError(t, g.do(0, PassPriority{}))

	// The priority holder concedes; priority moves on.
	require.NoError(t, g.do(1, Concede{}))
	assert.False(t, g.State().Complete)
	assert.True(t, g.State().IsWaiting(2, CategoryPriority))
	assert.Equal(t, []PlayerID{0, 2}, g.players.Remaining())

	require.NoError(t, g.do(2, PassPriority{}))
	assert.Equal(t, rules.StepMain1, g.Step())

	// Player 1 takes no turns.
	var actives []PlayerID
	g.Subscribe(func(ev rules.Event) {
		if ev.Type == rules.EventBeginTurn {
			actives = append(actives, PlayerID(ev.Player))
		}
	})
	ok, err := AdvanceUntil(g, 500, func(g *Game) bool { return len(actives) == 3 })
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []PlayerID{2, 0, 2}, actives)
}

func TestDefenderSkipsLostPlayers(t *testing.T) {
	g := newTestGame(t, "A", "B", "C")
	require.NoError(t, g.do(1, Concede{}))
	assert.Equal(t, PlayerID(2), g.defendingPlayer())
}

func TestActivePlayerConcedesMidTurn(t *testing.T) {
	g := newTestGame(t, "A", "B", "C")
	stockLibraries(t, g, 10)
	advanceTo(t, g, 0, rules.StepMain1)

	var declared []rules.Event
	g.Subscribe(func(ev rules.Event) {
		if ev.Type == rules.EventAttackersDeclared {
			declared = append(declared, ev)
		}
	})
	require.NoError(t, g.do(0, Concede{}))
	assert.True(t, g.State().IsWaiting(1, CategoryPriority))

	// The rest of player 0's turn plays out without waiting on them.
	waitedOnLoser := false
	ok, err := AdvanceUntil(g, 200, func(g *Game) bool {
		waitedOnLoser = waitedOnLoser || g.State().Player == 0
		return g.ActivePlayer() == 1
	})
	require.NoError(t, err)
	require.True(t, ok, "state %s in %s", g.State(), g.Step())
	assert.False(t, waitedOnLoser)
	require.Len(t, declared, 1)
	assert.Equal(t, 0, declared[0].Player)
	assert.Equal(t, 0, declared[0].Amount)
}

func TestConcedeWhileCastingRollsBack(t *testing.T) {
	g := newTestGame(t, "A", "B", "C")
	bear := createCard(t, g, "Grizzly Bears", HandZone(0), 0)
	advanceTo(t, g, 0, rules.StepMain1)

	ids := g.AddMana(0, mana.ManaGreen, 1)
	require.NoError(t, g.do(0, StartCastingSpell{Spell: bear}))
	require.NoError(t, g.do(0, PayIncompleteSpellMana{Spell: bear, Mana: ids[0]}))
	require.NoError(t, g.do(0, Concede{}))

	obj, _ := g.Object(bear)
	assert.Equal(t, HandZone(0), obj.Zone)
	assert.False(t, ecs.Has[IncompleteSpell](g.world, bear))
	stack, _ := g.Zone(StackZone)
	assert.True(t, stack.IsEmpty())
	assert.True(t, g.State().IsWaiting(1, CategoryPriority))

	require.NoError(t, g.do(1, PassPriority{}))
	require.NoError(t, g.do(2, PassPriority{}))
	assert.Equal(t, rules.StepBeginCombat, g.Step(), "nothing left to resolve")
	obj, _ = g.Object(bear)
	assert.Equal(t, HandZone(0), obj.Zone)
	requireValidZones(t, g)
}
