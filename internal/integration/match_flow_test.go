package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/mage-rules-go/internal/config"
	"github.com/magefree/mage-rules-go/internal/game"
	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"github.com/magefree/mage-rules-go/internal/sim"
	"github.com/magefree/mage-rules-go/internal/tournament"
)

const (
	alice game.PlayerID = 0
	bob   game.PlayerID = 1
)

func passUntil(t *testing.T, g *game.Game, p game.PlayerID, step rules.Step) {
	t.Helper()
	ok, err := game.AdvanceUntil(g, 200, func(g *game.Game) bool {
		return g.ActivePlayer() == p && g.Step() == step && g.State().Player == p
	})
	require.NoError(t, err)
	require.True(t, ok, "never reached %s for %s, state %s", step, p, g.State())
}

func zoneOf(t *testing.T, g *game.Game, e ecs.Entity) game.ZoneID {
	t.Helper()
	obj, ok := g.Object(e)
	require.True(t, ok)
	return obj.Zone
}

// TestBearsAttack plays a land, casts a creature with its mana and swings on
// the next turn, recording the match along the way.
func TestBearsAttack(t *testing.T) {
	g, err := game.New(game.Options{Players: []string{"Alice", "Bob"}, Logger: zaptest.NewLogger(t), Seed: 1})
	require.NoError(t, err)
	for _, p := range []game.PlayerID{alice, bob} {
		require.NoError(t, g.LoadLibrary(p, []game.DeckEntry{{Card: "Forest", Count: 10}}))
	}
	recorder := game.NewReplayRecorder(zaptest.NewLogger(t))
	replay := recorder.StartRecording(g)

	forest1, err := g.CreateCardByName("Forest", game.BattlefieldZone, alice)
	require.NoError(t, err)
	forest2, err := g.CreateCardByName("Forest", game.HandZone(alice), alice)
	require.NoError(t, err)
	bears, err := g.CreateCardByName("Grizzly Bears", game.HandZone(alice), alice)
	require.NoError(t, err)

	passUntil(t, g, alice, rules.StepMain1)
	require.NoError(t, g.Apply(alice, game.PlayLand{Card: forest2}))
	assert.Equal(t, game.BattlefieldZone, zoneOf(t, g, forest2))

	require.NoError(t, g.Apply(alice, game.StartCastingSpell{Spell: bears}))
	assert.True(t, g.State().IsWaiting(alice, game.CategorySpellManaAbilities))
	for _, land := range []ecs.Entity{forest1, forest2} {
		id, err := g.ActivateManaAbility(alice, land)
		require.NoError(t, err)
		require.NoError(t, g.Apply(alice, game.PayIncompleteSpellMana{Spell: bears, Mana: id}))
	}
	require.NoError(t, g.Apply(alice, game.FinishCastingSpell{Spell: bears}))
	assert.Equal(t, game.StackZone, zoneOf(t, g, bears))
	assert.Equal(t, 1, g.SpellsCastThisTurn(alice))

	require.NoError(t, g.Apply(alice, game.PassPriority{}))
	require.NoError(t, g.Apply(bob, game.PassPriority{}))
	assert.Equal(t, game.BattlefieldZone, zoneOf(t, g, bears))

	// Alice's next turn: the bears attack and Bob has nothing to block with.
	passUntil(t, g, alice, rules.StepUpkeep)
	assert.Equal(t, 3, g.TurnNumber())
	ok, err := game.AdvanceUntil(g, 50, func(g *game.Game) bool {
		return g.State().IsWaiting(alice, game.CategoryChooseAttackers)
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, g.Apply(alice, game.ChooseAttackers{Attackers: []ecs.Entity{bears}}))
	assert.Equal(t, []ecs.Entity{bears}, g.AttackersOn(bob))

	ok, err = game.AdvanceUntil(g, 50, func(g *game.Game) bool { return g.Step() == rules.StepMain2 })
	require.NoError(t, err)
	require.True(t, ok)
	p, _ := g.Player(bob)
	assert.Equal(t, game.DefaultStartingLife-2, p.Life)
	require.NoError(t, g.ValidateZoneIndex())

	require.NoError(t, g.Apply(bob, game.Concede{}))
	assert.Equal(t, "complete(win(player-0))", g.State().String())

	recorder.StopRecording(g.ID())
	last, ok := replay.At(replay.Size() - 1)
	require.True(t, ok)
	assert.Equal(t, "complete(win(player-0))", last.State)

	var buf bytes.Buffer
	require.NoError(t, replay.WriteYAML(&buf))
	assert.Contains(t, buf.String(), "Grizzly Bears")
}

// TestConfiguredEvent loads entrants from a config file and runs the event to
// the end.
func TestConfiguredEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed: 21
tournament:
  rounds: 2
  entrants:
    - name: Green
      deck:
        - card: Forest
          count: 18
        - card: Grizzly Bears
          count: 22
    - name: Red
      deck:
        - card: Mountain
          count: 18
        - card: Hill Giant
          count: 22
    - name: Flyers
      deck:
        - card: Island
          count: 20
        - card: Ornithopter
          count: 20
`), 0o600))
	cfg, err := config.Load(path)
	require.NoError(t, err)

	tour := tournament.NewTournament("League", cfg.Tournament.Rounds)
	for _, e := range cfg.Tournament.Entrants {
		require.NoError(t, tour.AddPlayer(e.Name, e.Deck))
	}
	runner := tournament.NewRunner(sim.Match{
		StartingLife: cfg.Match.StartingLife,
		MaxHandSize:  cfg.Match.MaxHandSize,
		MaxTurns:     30,
		Logger:       zaptest.NewLogger(t),
	}, cfg.Seed, zaptest.NewLogger(t))
	require.NoError(t, runner.Run(context.Background(), tour))

	snap := tour.Snapshot()
	assert.Equal(t, "FINISHED", snap.State)
	require.Len(t, snap.Rounds, 2)
	byes := 0
	for _, r := range snap.Rounds {
		assert.True(t, r.Finished)
		require.Len(t, r.Pairings, 1)
		assert.NotEmpty(t, r.Pairings[0].GameID)
		if r.Bye != "" {
			byes++
		}
	}
	assert.Equal(t, 2, byes, "three entrants leave one out every round")
	assert.NotEqual(t, snap.Rounds[0].Bye, snap.Rounds[1].Bye)
}
