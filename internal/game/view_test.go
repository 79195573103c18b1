package game

import (
	"testing"

	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"
)

func findZone(t *testing.T, v GameView, id ZoneID) ZoneView {
	t.Helper()
	for _, z := range v.Zones {
		if z.Zone == id {
			return z
		}
	}
	require.Failf(t, "zone missing from view", "%s", id)
	return ZoneView{}
}

func TestViewHidesLibraries(t *testing.T) {
	g := newTestGame(t)
	stockLibraries(t, g, 3)
	createCard(t, g, "Island", HandZone(bob), bob)

	v := g.View()
	lib := findZone(t, v, LibraryZone(alice))
	assert.Equal(t, 3, lib.Count)
	assert.Empty(t, lib.Objects)

	hand := findZone(t, v, HandZone(bob))
	require.Len(t, hand.Objects, 1)
	assert.Equal(t, "Island", hand.Objects[0].Name)
}

func TestViewObjects(t *testing.T) {
	g := newTestGame(t)
	bear := createCard(t, g, "Grizzly Bears", BattlefieldZone, alice)
	g.AdjustPT(bear, ptOf(1, 1), true)
	g.damagePermanent(bear, 1, bear)

	v := g.View()
	bf := findZone(t, v, BattlefieldZone)
	require.Len(t, bf.Objects, 1)
	ov := bf.Objects[0]
	assert.Equal(t, "Grizzly Bears", ov.Name)
	assert.Equal(t, "{1}{G}", ov.ManaCost)
	require.NotNil(t, ov.Power)
	assert.Equal(t, 3, *ov.Power, "views show the queried value")
	assert.Equal(t, 3, *ov.Toughness)
	assert.Equal(t, 1, ov.Damage)
	assert.Equal(t, "Alice", ov.Controller)
}

func TestViewPlayers(t *testing.T) {
	g := newTestGame(t)
	g.AddMana(bob, mana.ManaBlue, 2)

	v := g.View()
	assert.Equal(t, "Alice", v.ActivePlayer)
	assert.Equal(t, rules.StepUpkeep, v.Step)
	require.Len(t, v.Players, 2)
	assert.True(t, v.Players[alice].HasPriority)
	assert.False(t, v.Players[bob].HasPriority)
	assert.Equal(t, "{U}{U}", v.Players[bob].ManaPool)
	assert.Equal(t, DefaultStartingLife, v.Players[alice].Life)
}

func TestViewMarshalsYAML(t *testing.T) {
	g := newTestGame(t)
	createCard(t, g, "Grizzly Bears", GraveyardZone(bob), bob)

	out, err := yaml.Marshal(g.View())
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "step: UPKEEP")
	assert.Contains(t, text, "zone: GRAVEYARD(player-1)")
	assert.Contains(t, text, "name: Grizzly Bears")
	assert.NotContains(t, text, "power:", "cards outside the battlefield have no queried P/T")
}

func TestChecksumIsDeterministic(t *testing.T) {
	play := func() *Game {
		g, err := New(Options{Players: []string{"Alice", "Bob"}, Logger: zaptest.NewLogger(t), Seed: 7})
		require.NoError(t, err)
		require.NoError(t, g.Setup(SampleDeck()))
		advanceTo(t, g, alice, rules.StepMain1)
		return g
	}
	first, second := play(), play()
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, first.Checksum(), second.Checksum(), "match IDs do not affect the digest")

	before := first.Checksum()
	require.NoError(t, first.do(alice, PassPriority{}))
	after := first.Checksum()
	assert.NotEqual(t, before.Hash, after.Hash)
	assert.Equal(t, ChecksumVersion, after.Version)
	assert.Equal(t, 1, after.Turn)
	assert.Len(t, after.Hash, 64)
}
