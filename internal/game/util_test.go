package game

import (
	"testing"

	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceWithNoActions(t *testing.T) {
	g := newTestGame(t)
	createCard(t, g, "Grizzly Bears", BattlefieldZone, alice)
	advanceTo(t, g, alice, rules.StepDeclareAttackers)
	require.True(t, g.State().IsWaiting(alice, CategoryChooseAttackers))

	require.NoError(t, AdvanceWithNoActions(g), "declares no attackers")
	assert.True(t, g.State().IsWaiting(alice, CategoryPriority))
	assert.Empty(t, ecs.Query[Attacking](g.world))
}

func TestAdvanceWithNoActionsWhileCasting(t *testing.T) {
	g := newTestGame(t)
	bear := createCard(t, g, "Grizzly Bears", HandZone(alice), alice)
	advanceTo(t, g, alice, rules.StepMain1)
	require.NoError(t, g.do(alice, StartCastingSpell{Spell: bear}))

	err := AdvanceWithNoActions(g)
	assert.ErrorIs(t, err, ErrWrongState)
	assert.True(t, g.State().IsWaiting(alice, CategorySpellManaAbilities))

	ok, err := AdvanceUntil(g, 5, func(*Game) bool { return false })
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestAdvanceUntilLimit(t *testing.T) {
	g := newTestGame(t)
	ok, err := AdvanceUntil(g, 1, func(g *Game) bool { return g.Step() == rules.StepEnd })
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, g.State().IsWaiting(bob, CategoryPriority), "exactly one pass")
}
