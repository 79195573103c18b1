package game

import (
	"testing"

	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayLand(t *testing.T) {
	g := newTestGame(t)
	stockLibraries(t, g, 5)
	first := createCard(t, g, "Forest", HandZone(alice), alice)
	second := createCard(t, g, "Mountain", HandZone(alice), alice)

	assert.ErrorIs(t, g.do(alice, PlayLand{Card: first}), ErrNotMainPhase, "upkeep")
	advanceTo(t, g, alice, rules.StepMain1)

	require.NoError(t, g.do(alice, PlayLand{Card: first}))
	obj, _ := g.Object(first)
	assert.Equal(t, BattlefieldZone, obj.Zone)
	assert.Equal(t, alice, obj.Controller)
	assert.True(t, g.State().IsWaiting(alice, CategoryPriority), "playing a land keeps priority")
	player, _ := g.Player(alice)
	assert.Equal(t, 1, player.LandsPlayedThisTurn)

	assert.ErrorIs(t, g.do(alice, PlayLand{Card: second}), ErrLandAlreadyPlayed)
	obj, _ = g.Object(second)
	assert.Equal(t, HandZone(alice), obj.Zone)

	// The count resets for the next turn.
	advanceTo(t, g, alice, rules.StepMain2)
	ok, err := AdvanceUntil(g, 50, func(g *Game) bool { return g.ActivePlayer() == bob })
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, player.LandsPlayedThisTurn)
	requireValidZones(t, g)
}

func TestPlayLandValidation(t *testing.T) {
	g := newTestGame(t)
	bear := createCard(t, g, "Grizzly Bears", HandZone(alice), alice)
	inLibrary := createCard(t, g, "Forest", LibraryZone(alice), alice)
	bobsLand := createCard(t, g, "Forest", HandZone(bob), bob)
	advanceTo(t, g, alice, rules.StepMain1)

	assert.ErrorIs(t, g.do(alice, PlayLand{Card: bear}), ErrNotALand)
	assert.ErrorIs(t, g.do(alice, PlayLand{Card: inLibrary}), ErrNotInHand)
	assert.ErrorIs(t, g.do(alice, PlayLand{Card: g.world.Spawn()}), ErrNoSuchObject)
	assert.ErrorIs(t, g.do(bob, PlayLand{Card: bobsLand}), ErrNotActivePlayer)

	// Not while a spell is on the stack.
	require.NoError(t, g.do(alice, StartCastingSpell{Spell: bear}))
	land := createCard(t, g, "Plains", HandZone(alice), alice)
	assert.ErrorIs(t, g.do(alice, PlayLand{Card: land}), ErrWrongState)
	require.NoError(t, g.do(alice, CancelCastingSpell{Spell: bear}))

	require.NoError(t, g.do(alice, PassPriority{}))
	assert.ErrorIs(t, g.do(alice, PlayLand{Card: land}), ErrNotPriorityHolder)
}

func TestActivateManaAbility(t *testing.T) {
	g := newTestGame(t)
	forest := createCard(t, g, "Forest", BattlefieldZone, alice)
	snowy := createCard(t, g, "Snow-Covered Forest", BattlefieldZone, alice)
	bear := createCard(t, g, "Grizzly Bears", BattlefieldZone, alice)
	bobsIsland := createCard(t, g, "Island", BattlefieldZone, bob)

	var tapped int
	g.Subscribe(func(ev rules.Event) {
		if ev.Type == rules.EventTapped {
			tapped++
		}
	})

	id, err := g.ActivateManaAbility(alice, forest)
	require.NoError(t, err)
	player, _ := g.Player(alice)
	m, ok := player.ManaPool.Get(id)
	require.True(t, ok)
	assert.Equal(t, mana.Mana{Type: mana.ManaGreen}, m)
	perm, _ := g.Permanent(forest)
	assert.True(t, perm.Tapped)
	assert.Equal(t, 1, tapped)

	_, err = g.ActivateManaAbility(alice, forest)
	assert.ErrorIs(t, err, ErrTapped)

	id, err = g.ActivateManaAbility(alice, snowy)
	require.NoError(t, err)
	m, _ = player.ManaPool.Get(id)
	assert.True(t, m.Snow)

	_, err = g.ActivateManaAbility(alice, bear)
	assert.ErrorIs(t, err, ErrNoManaAbility)
	_, err = g.ActivateManaAbility(alice, bobsIsland)
	assert.ErrorIs(t, err, ErrNotController)
	_, err = g.ActivateManaAbility(bob, bobsIsland)
	assert.ErrorIs(t, err, ErrWrongState, "bob does not hold priority")
}

func TestTapLandsToCast(t *testing.T) {
	g := newTestGame(t)
	createCard(t, g, "Forest", BattlefieldZone, alice)
	createCard(t, g, "Forest", BattlefieldZone, alice)
	bear := createCard(t, g, "Grizzly Bears", HandZone(alice), alice)
	advanceTo(t, g, alice, rules.StepMain1)

	require.NoError(t, g.do(alice, StartCastingSpell{Spell: bear}))
	for _, land := range g.zones[BattlefieldZone].Members() {
		id, err := g.ActivateManaAbility(alice, land)
		require.NoError(t, err, "mana abilities are allowed while paying")
		require.NoError(t, g.do(alice, PayIncompleteSpellMana{Spell: bear, Mana: id}))
	}
	require.NoError(t, g.do(alice, FinishCastingSpell{Spell: bear}))

	player, _ := g.Player(alice)
	assert.True(t, player.ManaPool.IsEmpty())
}

func TestManaEmptiesBetweenSteps(t *testing.T) {
	g := newTestGame(t)
	g.AddMana(alice, mana.ManaRed, 2)
	g.AddMana(bob, mana.ManaBlue, 1)

	var emptied int
	g.Subscribe(func(ev rules.Event) {
		if ev.Type == rules.EventEmptyMana {
			emptied += ev.Amount
		}
	})
	require.NoError(t, g.do(alice, PassPriority{}))
	require.NoError(t, g.do(bob, PassPriority{}))

	assert.Equal(t, rules.StepMain1, g.Step())
	assert.Equal(t, 3, emptied)
	for _, p := range g.Players() {
		assert.True(t, p.ManaPool.IsEmpty())
	}
}
