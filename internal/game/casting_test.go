package game

import (
	"strings"
	"testing"

	"github.com/magefree/mage-rules-go/internal/catalog"
	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testCards = `
cards:
  - name: Clay Golem
    types: [artifact, creature]
    mana_cost: "{2}"
    power: "2"
    toughness: "2"
  - name: Stone Rain
    types: [sorcery]
    mana_cost: "{2}{R}"
  - name: Wild Growth
    types: [instant]
    mana_cost: "{G}"
  - name: Waste Token
    types: [artifact]
`

func newCatalogGame(t *testing.T) *Game {
	t.Helper()
	c, err := catalog.Load(strings.NewReader(testCards))
	require.NoError(t, err)
	g, err := New(Options{Players: []string{"Alice", "Bob"}, Catalog: c, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	return g
}

// castWithMana casts spell from p's hand, paying every item with fresh mana
// of type mt.
func castWithMana(t *testing.T, g *Game, p PlayerID, spell ecs.Entity, mt mana.ManaType) {
	t.Helper()
	require.NoError(t, g.do(p, StartCastingSpell{Spell: spell}))
	incomplete, ok := ecs.Get[IncompleteSpell](g.world, spell)
	require.True(t, ok)
	for _, id := range g.AddMana(p, mt, len(incomplete.Cost)) {
		require.NoError(t, g.do(p, PayIncompleteSpellMana{Spell: spell, Mana: id}))
	}
	require.NoError(t, g.do(p, FinishCastingSpell{Spell: spell}))
}

func TestCastCreatureResolves(t *testing.T) {
	g := newTestGame(t)
	bear := createCard(t, g, "Grizzly Bears", HandZone(alice), alice)
	advanceTo(t, g, alice, rules.StepMain1)

	require.NoError(t, g.do(alice, StartCastingSpell{Spell: bear}))
	obj, _ := g.Object(bear)
	assert.Equal(t, StackZone, obj.Zone)
	assert.True(t, g.State().IsWaiting(alice, CategorySpellManaAbilities))
	_, hasPriority := g.PriorityPlayer()
	assert.False(t, hasPriority)

	green := g.AddMana(alice, mana.ManaGreen, 2)
	require.NoError(t, g.do(alice, PayIncompleteSpellMana{Spell: bear, Mana: green[0]}))
	require.NoError(t, g.do(alice, PayIncompleteSpellMana{Spell: bear, Mana: green[1]}))
	require.NoError(t, g.do(alice, FinishCastingSpell{Spell: bear}))

	assert.True(t, g.State().IsWaiting(alice, CategoryPriority), "caster receives priority")
	assert.False(t, ecs.Has[IncompleteSpell](g.world, bear))
	assert.Equal(t, 1, g.SpellsCastThisTurn(alice))
	player, _ := g.Player(alice)
	assert.True(t, player.ManaPool.IsEmpty())

	var resolved bool
	g.Subscribe(func(ev rules.Event) {
		if ev.Type == rules.EventSpellResolved && ev.Object == bear {
			resolved = true
		}
	})
	require.NoError(t, g.do(alice, PassPriority{}))
	require.NoError(t, g.do(bob, PassPriority{}))

	assert.True(t, resolved)
	obj, _ = g.Object(bear)
	assert.Equal(t, BattlefieldZone, obj.Zone)
	assert.Equal(t, rules.StepMain1, g.Step(), "resolving does not end the step")
	assert.True(t, g.State().IsWaiting(alice, CategoryPriority))
	pt, ok := g.QueryPT(bear)
	require.True(t, ok)
	assert.Equal(t, 2, pt.Power)
	requireValidZones(t, g)
}

func TestCastRejectedWithNonEmptyStack(t *testing.T) {
	g := newTestGame(t)
	first := createCard(t, g, "Grizzly Bears", HandZone(alice), alice)
	second := createCard(t, g, "Grizzly Bears", HandZone(alice), alice)
	advanceTo(t, g, alice, rules.StepMain1)
	castWithMana(t, g, alice, first, mana.ManaGreen)

	err := g.do(alice, StartCastingSpell{Spell: second})
	assert.ErrorIs(t, err, ErrStackNotEmpty)
	obj, _ := g.Object(second)
	assert.Equal(t, HandZone(alice), obj.Zone, "rejected spell stays where it was")
	assert.False(t, ecs.Has[IncompleteSpell](g.world, second))
	assert.True(t, g.State().IsWaiting(alice, CategoryPriority))

	// Instants may still be cast on top.
	growth := createCard(t, g, "Giant Growth", HandZone(alice), alice)
	castWithMana(t, g, alice, growth, mana.ManaGreen)
	stack, _ := g.Zone(StackZone)
	assert.Equal(t, []ecs.Entity{first, growth}, stack.Members())

	// Objects resolve one at a time, top first.
	require.NoError(t, g.do(alice, PassPriority{}))
	require.NoError(t, g.do(bob, PassPriority{}))
	obj, _ = g.Object(growth)
	assert.Equal(t, GraveyardZone(alice), obj.Zone, "non-permanent spells go to the graveyard")
	assert.Equal(t, []ecs.Entity{first}, stack.Members())
	requireValidZones(t, g)
}

func TestCastTimingRules(t *testing.T) {
	g := newCatalogGame(t)
	golem := createCard(t, g, "Clay Golem", HandZone(alice), alice)
	bobsGolem := createCard(t, g, "Clay Golem", HandZone(bob), bob)
	instant := createCard(t, g, "Wild Growth", HandZone(bob), bob)

	assert.ErrorIs(t, g.do(alice, StartCastingSpell{Spell: golem}), ErrNotMainPhase, "upkeep")

	advanceTo(t, g, alice, rules.StepMain1)
	require.NoError(t, g.do(alice, PassPriority{}))
	require.True(t, g.State().IsWaiting(bob, CategoryPriority))

	assert.ErrorIs(t, g.do(bob, StartCastingSpell{Spell: bobsGolem}), ErrNotActivePlayer)
	require.NoError(t, g.do(bob, StartCastingSpell{Spell: instant}), "instants need only priority")
	assert.ErrorIs(t, g.do(alice, StartCastingSpell{Spell: golem}), ErrWrongState)
}

func TestCastValidationErrors(t *testing.T) {
	g := newCatalogGame(t)
	token := createCard(t, g, "Waste Token", HandZone(alice), alice)
	inLibrary := createCard(t, g, "Clay Golem", LibraryZone(alice), alice)
	bobs := createCard(t, g, "Clay Golem", HandZone(bob), bob)
	advanceTo(t, g, alice, rules.StepMain1)

	assert.ErrorIs(t, g.do(alice, StartCastingSpell{Spell: token}), ErrNoManaCost)
	assert.ErrorIs(t, g.do(alice, StartCastingSpell{Spell: inLibrary}), ErrNotInHand)
	assert.ErrorIs(t, g.do(alice, StartCastingSpell{Spell: bobs}), ErrNotInHand)
	assert.ErrorIs(t, g.do(alice, StartCastingSpell{Spell: g.world.Spawn()}), ErrNoSuchObject)
	assert.ErrorIs(t, g.do(bob, StartCastingSpell{Spell: bobs}), ErrNotPriorityHolder)

	for _, e := range []ecs.Entity{token, inLibrary, bobs} {
		assert.False(t, ecs.Has[IncompleteSpell](g.world, e))
	}
	stack, _ := g.Zone(StackZone)
	assert.True(t, stack.IsEmpty())
	requireValidZones(t, g)
}

func TestPositionalPayment(t *testing.T) {
	g := newCatalogGame(t)
	golem := createCard(t, g, "Clay Golem", HandZone(alice), alice)
	advanceTo(t, g, alice, rules.StepMain1)

	ids := g.AddMana(alice, mana.ManaColorless, 3)
	require.NoError(t, g.do(alice, StartCastingSpell{Spell: golem}))

	err := g.payCostItem(alice, golem, 1, ids[0])
	assert.ErrorIs(t, err, ErrPaymentOutOfOrder)
	incomplete, _ := ecs.Get[IncompleteSpell](g.world, golem)
	assert.Empty(t, incomplete.Paid)

	require.NoError(t, g.payCostItem(alice, golem, 0, ids[0]))
	require.NoError(t, g.payCostItem(alice, golem, 1, ids[1]))
	require.NoError(t, g.do(alice, FinishCastingSpell{Spell: golem}))

	player, _ := g.Player(alice)
	require.Equal(t, 1, player.ManaPool.Len(), "exactly two units were debited")
	_, ok := player.ManaPool.Get(ids[2])
	assert.True(t, ok)
}

func TestPaymentErrors(t *testing.T) {
	g := newCatalogGame(t)
	rain := createCard(t, g, "Stone Rain", HandZone(alice), alice)
	advanceTo(t, g, alice, rules.StepMain1)

	red := g.AddMana(alice, mana.ManaRed, 1)
	green := g.AddMana(alice, mana.ManaGreen, 2)
	require.NoError(t, g.do(alice, StartCastingSpell{Spell: rain}))

	assert.ErrorIs(t, g.do(alice, PayIncompleteSpellMana{Spell: rain, Mana: 99}), ErrUnknownMana)
	assert.ErrorIs(t, g.do(alice, FinishCastingSpell{Spell: rain}), ErrCostUnpaid)

	require.NoError(t, g.do(alice, PayIncompleteSpellMana{Spell: rain, Mana: green[0]}))
	assert.ErrorIs(t, g.do(alice, PayIncompleteSpellMana{Spell: rain, Mana: green[0]}), ErrManaAlreadyUsed)
	require.NoError(t, g.do(alice, PayIncompleteSpellMana{Spell: rain, Mana: green[1]}))
	assert.ErrorIs(t, g.do(alice, PayIncompleteSpellMana{Spell: rain, Mana: g.AddMana(alice, mana.ManaGreen, 1)[0]}), ErrManaMismatch)
	require.NoError(t, g.do(alice, PayIncompleteSpellMana{Spell: rain, Mana: red[0]}))
	assert.ErrorIs(t, g.do(alice, PayIncompleteSpellMana{Spell: rain, Mana: g.AddMana(alice, mana.ManaRed, 1)[0]}), ErrNoCostRemaining)

	assert.ErrorIs(t, g.do(bob, FinishCastingSpell{Spell: rain}), ErrWrongState)
	require.NoError(t, g.do(alice, FinishCastingSpell{Spell: rain}))
	assert.ErrorIs(t, g.do(alice, FinishCastingSpell{Spell: rain}), ErrWrongState)
}

func TestFinishRechecksPayments(t *testing.T) {
	g := newTestGame(t)
	bear := createCard(t, g, "Grizzly Bears", HandZone(alice), alice)
	advanceTo(t, g, alice, rules.StepMain1)

	ids := g.AddMana(alice, mana.ManaGreen, 2)
	require.NoError(t, g.do(alice, StartCastingSpell{Spell: bear}))
	require.NoError(t, g.do(alice, PayIncompleteSpellMana{Spell: bear, Mana: ids[0]}))
	require.NoError(t, g.do(alice, PayIncompleteSpellMana{Spell: bear, Mana: ids[1]}))

	// The pool changed behind the spell's back.
	player, _ := g.Player(alice)
	require.NoError(t, player.ManaPool.Spend([]mana.ManaID{ids[1]}))

	assert.ErrorIs(t, g.do(alice, FinishCastingSpell{Spell: bear}), ErrUnknownMana)
	assert.True(t, ecs.Has[IncompleteSpell](g.world, bear), "failed finish leaves the spell incomplete")
	assert.Equal(t, 1, player.ManaPool.Len(), "nothing was spent")
	assert.Equal(t, 0, g.SpellsCastThisTurn(alice))
}

func TestCancelCasting(t *testing.T) {
	g := newTestGame(t)
	bear := createCard(t, g, "Grizzly Bears", HandZone(alice), alice)
	advanceTo(t, g, alice, rules.StepMain1)

	ids := g.AddMana(alice, mana.ManaGreen, 1)
	require.NoError(t, g.do(alice, StartCastingSpell{Spell: bear}))
	require.NoError(t, g.do(alice, PayIncompleteSpellMana{Spell: bear, Mana: ids[0]}))

	var canceled bool
	g.Subscribe(func(ev rules.Event) { canceled = canceled || ev.Type == rules.EventCastCanceled })
	require.NoError(t, g.do(alice, CancelCastingSpell{Spell: bear}))

	assert.True(t, canceled)
	obj, _ := g.Object(bear)
	assert.Equal(t, HandZone(alice), obj.Zone)
	assert.False(t, ecs.Has[IncompleteSpell](g.world, bear))
	assert.True(t, g.State().IsWaiting(alice, CategoryPriority))
	player, _ := g.Player(alice)
	assert.Equal(t, 1, player.ManaPool.Len(), "applied mana stays in the pool")
	requireValidZones(t, g)

	assert.ErrorIs(t, g.do(alice, CancelCastingSpell{Spell: bear}), ErrWrongState)
}

func TestCastXIsZero(t *testing.T) {
	g := newTestGame(t)
	bear := createCard(t, g, "Grizzly Bears", HandZone(alice), alice)
	obj, _ := ecs.Get[Object](g.world, bear)
	obj.ManaCost = mana.MustParseCost("{X}{G}")
	advanceTo(t, g, alice, rules.StepMain1)

	require.NoError(t, g.do(alice, StartCastingSpell{Spell: bear}))
	incomplete, _ := ecs.Get[IncompleteSpell](g.world, bear)
	assert.Equal(t, mana.MustParseCost("{G}"), incomplete.Cost)
}
