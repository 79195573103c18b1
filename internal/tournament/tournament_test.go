package tournament

import (
	"context"
	"errors"
	"testing"

	"github.com/magefree/mage-rules-go/internal/game"
	"github.com/magefree/mage-rules-go/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTournament(t *testing.T, rounds int, names ...string) *Tournament {
	t.Helper()
	tour := NewTournament("Friday Night", rounds)
	for _, name := range names {
		require.NoError(t, tour.AddPlayer(name, game.SampleDeck()))
	}
	return tour
}

func TestAddPlayer(t *testing.T) {
	tour := newTournament(t, 3, "Ann", "Ben")
	assert.NotEmpty(t, tour.ID)
	assert.Equal(t, 2, tour.GetPlayerCount())
	assert.Equal(t, TournamentStateWaiting, tour.GetState())

	assert.ErrorIs(t, tour.AddPlayer("Ann", nil), ErrDuplicatePlayer)

	require.NoError(t, tour.Start())
	assert.ErrorIs(t, tour.AddPlayer("Cal", nil), ErrAlreadyStarted)
	assert.ErrorIs(t, tour.Start(), ErrAlreadyStarted)
	assert.NotNil(t, tour.StartTime)
}

func TestStartNeedsTwoPlayers(t *testing.T) {
	tour := newTournament(t, 1, "Ann")
	assert.ErrorIs(t, tour.Start(), ErrNotEnoughPlayers)

	_, err := tour.CreateRound()
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestSwissPairingWithBye(t *testing.T) {
	tour := newTournament(t, 2, "Ann", "Ben", "Cal")
	require.NoError(t, tour.Start())

	round, err := tour.CreateRound()
	require.NoError(t, err)
	require.Len(t, round.Pairings, 1)
	assert.Equal(t, "Ann", round.Pairings[0].Player1)
	assert.Equal(t, "Ben", round.Pairings[0].Player2)
	assert.Equal(t, "Cal", round.Bye)
	assert.Equal(t, PointsBye, tour.Players["Cal"].Points)

	require.NoError(t, tour.RecordMatchResult(1, "Ann", "Ben", "Ben", "g1", 9))
	assert.True(t, round.Finished)

	// Ben and Cal lead; Ann, who has no bye yet, gets it.
	round, err = tour.CreateRound()
	require.NoError(t, err)
	assert.Equal(t, "Ann", round.Bye)
	require.Len(t, round.Pairings, 1)
	assert.Equal(t, "Ben", round.Pairings[0].Player1)
	assert.Equal(t, "Cal", round.Pairings[0].Player2)
}

func TestRecordMatchResult(t *testing.T) {
	tour := newTournament(t, 1, "Ann", "Ben", "Cal", "Dee")
	require.NoError(t, tour.Start())
	_, err := tour.CreateRound()
	require.NoError(t, err)

	require.NoError(t, tour.RecordMatchResult(1, "Ann", "Ben", "Ann", "g1", 7))
	require.NoError(t, tour.RecordMatchResult(1, "Cal", "Dee", "", "g2", 50))

	assert.Equal(t, PointsWin, tour.Players["Ann"].Points)
	assert.Equal(t, 1, tour.Players["Ben"].Losses)
	assert.Equal(t, PointsDraw, tour.Players["Cal"].Points)
	assert.Equal(t, 1, tour.Players["Dee"].Draws)
	assert.True(t, tour.Rounds[0].Finished)

	assert.ErrorIs(t, tour.RecordMatchResult(2, "Ann", "Ben", "Ann", "", 0), ErrInvalidRound)
	assert.ErrorIs(t, tour.RecordMatchResult(1, "Ann", "Cal", "Ann", "", 0), ErrPairingNotFound)

	snap := tour.Snapshot()
	assert.Equal(t, "IN_PROGRESS", snap.State)
	require.Len(t, snap.Standings, 4)
	assert.Equal(t, "Ann", snap.Standings[0].Name)
	assert.Equal(t, "Ben", snap.Standings[3].Name)
	require.Len(t, snap.Rounds, 1)
	assert.Equal(t, "g2", snap.Rounds[0].Pairings[1].GameID)
}

func TestRunnerPlaysEveryRound(t *testing.T) {
	tour := newTournament(t, 2, "Ann", "Ben", "Cal", "Dee")
	runner := NewRunner(sim.Match{MaxTurns: 5}, 100, zaptest.NewLogger(t))

	var seeds []uint64
	runner.Play = func(_ context.Context, m sim.Match) (sim.Result, error) {
		seeds = append(seeds, m.Seed)
		assert.Equal(t, 5, m.MaxTurns, "template is kept")
		require.Len(t, m.Seats, 2)
		assert.Equal(t, game.SampleDeck(), m.Seats[0].Deck)
		return sim.Result{GameID: "g", Complete: true, Winner: m.Seats[0].Name, Turns: 4}, nil
	}
	require.NoError(t, runner.Run(context.Background(), tour))

	assert.Equal(t, []uint64{101, 102, 103, 104}, seeds)
	snap := tour.Snapshot()
	assert.Equal(t, "FINISHED", snap.State)
	assert.NotNil(t, snap.EndTime)
	assert.Equal(t, "Ann", snap.Standings[0].Name)
	assert.Equal(t, 2*PointsWin, snap.Standings[0].Points)
	for _, r := range snap.Rounds {
		assert.True(t, r.Finished)
	}
}

func TestRunnerStopsOnMatchError(t *testing.T) {
	tour := newTournament(t, 1, "Ann", "Ben")
	runner := NewRunner(sim.Match{}, 0, nil)
	boom := errors.New("boom")
	runner.Play = func(context.Context, sim.Match) (sim.Result, error) { return sim.Result{}, boom }

	err := runner.Run(context.Background(), tour)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Ann vs Ben")
}

func TestRunnerWithAutopilot(t *testing.T) {
	tour := newTournament(t, 1, "Ann", "Ben")
	runner := NewRunner(sim.Match{}, 5, zaptest.NewLogger(t))
	require.NoError(t, runner.Run(context.Background(), tour))

	snap := tour.Snapshot()
	require.Len(t, snap.Rounds, 1)
	pairing := snap.Rounds[0].Pairings[0]
	assert.NotEmpty(t, pairing.GameID)
	total := snap.Standings[0].Points + snap.Standings[1].Points
	if pairing.Winner == "" {
		assert.Equal(t, 2*PointsDraw, total)
	} else {
		assert.Equal(t, PointsWin, total)
		assert.Equal(t, pairing.Winner, snap.Standings[0].Name)
	}
}

func TestRecordMatchResultOnce(t *testing.T) {
	tour := newTournament(t, 1, "Ann", "Ben")
	require.NoError(t, tour.Start())
	_, err := tour.CreateRound()
	require.NoError(t, err)

	require.NoError(t, tour.RecordMatchResult(1, "Ann", "Ben", "Ann", "g1", 7))
	err = tour.RecordMatchResult(1, "Ann", "Ben", "Ann", "g1", 7)
	assert.ErrorIs(t, err, ErrAlreadyRecorded)

	assert.Equal(t, PointsWin, tour.Players["Ann"].Points)
	assert.Equal(t, 1, tour.Players["Ann"].Wins)
	assert.Equal(t, 1, tour.Players["Ben"].Losses)
}

func TestSwissPairingAvoidsRematches(t *testing.T) {
	tour := newTournament(t, 3, "Ann", "Ben", "Cal", "Dee")
	require.NoError(t, tour.Start())

	pairs := func(r *Round) [][2]string {
		var out [][2]string
		for _, p := range r.Pairings {
			out = append(out, [2]string{p.Player1, p.Player2})
		}
		return out
	}

	round, err := tour.CreateRound()
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"Ann", "Ben"}, {"Cal", "Dee"}}, pairs(round))
	require.NoError(t, tour.RecordMatchResult(1, "Ann", "Ben", "Ann", "", 0))
	require.NoError(t, tour.RecordMatchResult(1, "Cal", "Dee", "Cal", "", 0))

	round, err = tour.CreateRound()
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"Ann", "Cal"}, {"Ben", "Dee"}}, pairs(round))
	require.NoError(t, tour.RecordMatchResult(2, "Ann", "Cal", "Ann", "", 0))
	require.NoError(t, tour.RecordMatchResult(2, "Ben", "Dee", "Ben", "", 0))

	// Ann and Ben are next to each other in the standings but already met.
	round, err = tour.CreateRound()
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"Ann", "Dee"}, {"Ben", "Cal"}}, pairs(round))
}

func TestSwissPairingFallsBackToRematch(t *testing.T) {
	tour := newTournament(t, 2, "Ann", "Ben")
	require.NoError(t, tour.Start())
	_, err := tour.CreateRound()
	require.NoError(t, err)
	require.NoError(t, tour.RecordMatchResult(1, "Ann", "Ben", "", "", 0))

	round, err := tour.CreateRound()
	require.NoError(t, err)
	require.Len(t, round.Pairings, 1)
	assert.Equal(t, "Ann", round.Pairings[0].Player1)
	assert.Equal(t, "Ben", round.Pairings[0].Player2)
}
