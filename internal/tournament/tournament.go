// Package tournament runs Swiss events between decks, with every match played
// out by the autopilot.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/magefree/mage-rules-go/internal/game"
	"github.com/magefree/mage-rules-go/internal/sim"
	"go.uber.org/zap"
)

// Points awarded per match.
const (
	PointsWin  = 3
	PointsDraw = 1
	PointsBye  = PointsWin
)

var (
	ErrAlreadyStarted   = errors.New("tournament already started")
	ErrNotStarted       = errors.New("tournament not started")
	ErrDuplicatePlayer  = errors.New("player already joined")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrInvalidRound     = errors.New("invalid round number")
	ErrPairingNotFound  = errors.New("pairing not found")
	ErrAlreadyRecorded  = errors.New("match result already recorded")
)

// TournamentState represents the state of a tournament
type TournamentState int

const (
	TournamentStateWaiting TournamentState = iota
	TournamentStateInProgress
	TournamentStateFinished
)

func (s TournamentState) String() string {
	switch s {
	case TournamentStateWaiting:
		return "WAITING"
	case TournamentStateInProgress:
		return "IN_PROGRESS"
	case TournamentStateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Player is a tournament entrant and the deck it plays.
type Player struct {
	Name   string
	Deck   []game.DeckEntry
	Points int
	Wins   int
	Losses int
	Draws  int
	Byes   int
}

// Pairing is one match of a round. Winner is empty for a draw.
type Pairing struct {
	Player1 string
	Player2 string
	GameID  string
	Winner  string
	Turns   int
	Played  bool
}

// Round represents a tournament round
type Round struct {
	Number   int
	Pairings []*Pairing
	Bye      string
	Finished bool
}

// Standing is one line of the standings table.
type Standing struct {
	Name   string `yaml:"name"`
	Points int    `yaml:"points"`
	Wins   int    `yaml:"wins"`
	Losses int    `yaml:"losses"`
	Draws  int    `yaml:"draws"`
	Byes   int    `yaml:"byes,omitempty"`
}

// PairingSnapshot captures pairing data for external use.
type PairingSnapshot struct {
	Player1 string `yaml:"player1"`
	Player2 string `yaml:"player2"`
	GameID  string `yaml:"game_id,omitempty"`
	Winner  string `yaml:"winner,omitempty"`
	Turns   int    `yaml:"turns,omitempty"`
}

// RoundSnapshot captures round data for external use.
type RoundSnapshot struct {
	Number   int               `yaml:"number"`
	Bye      string            `yaml:"bye,omitempty"`
	Finished bool              `yaml:"finished"`
	Pairings []PairingSnapshot `yaml:"pairings"`
}

// TournamentSnapshot captures a consistent view of a tournament.
type TournamentSnapshot struct {
	ID        string          `yaml:"id"`
	Name      string          `yaml:"name"`
	State     string          `yaml:"state"`
	NumRounds int             `yaml:"num_rounds"`
	Standings []Standing      `yaml:"standings"`
	Rounds    []RoundSnapshot `yaml:"rounds"`
	StartTime *time.Time      `yaml:"start_time,omitempty"`
	EndTime   *time.Time      `yaml:"end_time,omitempty"`
}

// Tournament represents a tournament
type Tournament struct {
	ID           string
	Name         string
	State        TournamentState
	Players      map[string]*Player
	PlayerOrder  []string // Maintains insertion order
	Rounds       []*Round
	CurrentRound int
	NumRounds    int
	StartTime    *time.Time
	EndTime      *time.Time
	mu           sync.RWMutex
}

// NewTournament creates a new tournament
func NewTournament(name string, numRounds int) *Tournament {
	return &Tournament{
		ID:        uuid.New().String(),
		Name:      name,
		State:     TournamentStateWaiting,
		Players:   make(map[string]*Player),
		NumRounds: numRounds,
	}
}

// AddPlayer adds a player to the tournament
func (t *Tournament) AddPlayer(name string, deck []game.DeckEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TournamentStateWaiting {
		return ErrAlreadyStarted
	}
	if _, exists := t.Players[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlayer, name)
	}

	t.Players[name] = &Player{Name: name, Deck: deck}
	t.PlayerOrder = append(t.PlayerOrder, name)
	return nil
}

// GetPlayerCount returns the number of players
func (t *Tournament) GetPlayerCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.Players)
}

// GetState returns the current tournament state
func (t *Tournament) GetState() TournamentState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.State
}

// Start transitions the tournament into progress.
func (t *Tournament) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TournamentStateWaiting {
		return ErrAlreadyStarted
	}
	if len(t.Players) < 2 {
		return fmt.Errorf("%w: have %d", ErrNotEnoughPlayers, len(t.Players))
	}

	now := time.Now()
	t.StartTime = &now
	t.State = TournamentStateInProgress
	return nil
}

// CreateRound pairs the next round.
func (t *Tournament) CreateRound() (*Round, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TournamentStateInProgress {
		return nil, ErrNotStarted
	}
	t.CurrentRound++
	round := &Round{Number: t.CurrentRound}
	round.Pairings, round.Bye = t.generatePairings()
	t.Rounds = append(t.Rounds, round)
	return round, nil
}

// generatePairings pairs players with similar points, in standings order.
// With an odd count the lowest-ranked player without a bye gets one.
func (t *Tournament) generatePairings() ([]*Pairing, string) {
	ranked := t.rankedPlayers()

	bye := ""
	if len(ranked)%2 == 1 {
		idx := len(ranked) - 1
		for i := len(ranked) - 1; i >= 0; i-- {
			if ranked[i].Byes == 0 {
				idx = i
				break
			}
		}
		p := ranked[idx]
		p.Points += PointsBye
		p.Byes++
		bye = p.Name
		ranked = append(ranked[:idx], ranked[idx+1:]...)
	}

	// Each player takes the highest-ranked opponent they have not met yet,
	// falling back to a rematch when everyone left is a previous opponent.
	met := t.opponents()
	paired := make([]bool, len(ranked))
	pairings := make([]*Pairing, 0, len(ranked)/2)
	for i := range ranked {
		if paired[i] {
			continue
		}
		j := -1
		for k := i + 1; k < len(ranked); k++ {
			if paired[k] {
				continue
			}
			if j < 0 {
				j = k
			}
			if !met[ranked[i].Name][ranked[k].Name] {
				j = k
				break
			}
		}
		if j < 0 {
			break
		}
		paired[i], paired[j] = true, true
		pairings = append(pairings, &Pairing{
			Player1: ranked[i].Name,
			Player2: ranked[j].Name,
		})
	}
	return pairings, bye
}

// opponents maps each player to everyone they were paired with so far.
func (t *Tournament) opponents() map[string]map[string]bool {
	met := make(map[string]map[string]bool, len(t.Players))
	for name := range t.Players {
		met[name] = make(map[string]bool)
	}
	for _, round := range t.Rounds {
		for _, p := range round.Pairings {
			met[p.Player1][p.Player2] = true
			met[p.Player2][p.Player1] = true
		}
	}
	return met
}

// rankedPlayers orders players by points, then by join order.
func (t *Tournament) rankedPlayers() []*Player {
	ranked := make([]*Player, 0, len(t.PlayerOrder))
	for _, name := range t.PlayerOrder {
		ranked = append(ranked, t.Players[name])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})
	return ranked
}

// RecordMatchResult records the result of a match. An empty winner is a draw.
func (t *Tournament) RecordMatchResult(roundNum int, player1, player2, winner, gameID string, turns int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if roundNum <= 0 || roundNum > len(t.Rounds) {
		return fmt.Errorf("%w: %d", ErrInvalidRound, roundNum)
	}
	round := t.Rounds[roundNum-1]

	for _, pairing := range round.Pairings {
		if pairing.Player1 != player1 || pairing.Player2 != player2 {
			continue
		}
		if pairing.Played {
			return fmt.Errorf("%w: %s vs %s in round %d", ErrAlreadyRecorded, player1, player2, roundNum)
		}
		pairing.Winner = winner
		pairing.GameID = gameID
		pairing.Turns = turns
		pairing.Played = true

		p1, p2 := t.Players[player1], t.Players[player2]
		switch winner {
		case player1:
			p1.Wins++
			p1.Points += PointsWin
			p2.Losses++
		case player2:
			p2.Wins++
			p2.Points += PointsWin
			p1.Losses++
		default:
			p1.Draws++
			p1.Points += PointsDraw
			p2.Draws++
			p2.Points += PointsDraw
		}

		round.Finished = true
		for _, other := range round.Pairings {
			if !other.Played {
				round.Finished = false
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %s vs %s in round %d", ErrPairingNotFound, player1, player2, roundNum)
}

// Finish ends the tournament.
func (t *Tournament) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.EndTime = &now
	t.State = TournamentStateFinished
}

// Snapshot returns a consistent copy of the tournament state.
func (t *Tournament) Snapshot() TournamentSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	standings := make([]Standing, 0, len(t.PlayerOrder))
	for _, p := range t.rankedPlayers() {
		standings = append(standings, Standing{
			Name:   p.Name,
			Points: p.Points,
			Wins:   p.Wins,
			Losses: p.Losses,
			Draws:  p.Draws,
			Byes:   p.Byes,
		})
	}

	rounds := make([]RoundSnapshot, 0, len(t.Rounds))
	for _, r := range t.Rounds {
		pairings := make([]PairingSnapshot, 0, len(r.Pairings))
		for _, p := range r.Pairings {
			pairings = append(pairings, PairingSnapshot{
				Player1: p.Player1,
				Player2: p.Player2,
				GameID:  p.GameID,
				Winner:  p.Winner,
				Turns:   p.Turns,
			})
		}
		rounds = append(rounds, RoundSnapshot{
			Number:   r.Number,
			Bye:      r.Bye,
			Finished: r.Finished,
			Pairings: pairings,
		})
	}

	return TournamentSnapshot{
		ID:        t.ID,
		Name:      t.Name,
		State:     t.State.String(),
		NumRounds: t.NumRounds,
		Standings: standings,
		Rounds:    rounds,
		StartTime: cloneTime(t.StartTime),
		EndTime:   cloneTime(t.EndTime),
	}
}

func cloneTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	cp := *src
	return &cp
}

// MatchFunc plays one pairing and reports the result.
type MatchFunc func(ctx context.Context, m sim.Match) (sim.Result, error)

// Runner plays every round of a tournament.
type Runner struct {
	// Template supplies everything but the seats and seed of each match.
	Template sim.Match
	// Seed is offset per match so that no two pairings shuffle alike.
	Seed   uint64
	Play   MatchFunc
	logger *zap.Logger
}

// NewRunner creates a runner that plays matches with sim.Play.
func NewRunner(template sim.Match, seed uint64, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Template: template, Seed: seed, Play: sim.Play, logger: logger}
}

// Run starts t and plays all of its rounds. Unfinished matches count as
// draws.
func (r *Runner) Run(ctx context.Context, t *Tournament) error {
	if err := t.Start(); err != nil {
		return err
	}
	r.logger.Info("tournament started",
		zap.String("tournament_id", t.ID),
		zap.String("name", t.Name),
		zap.Int("players", t.GetPlayerCount()),
		zap.Int("rounds", t.NumRounds),
	)

	matchNo := uint64(0)
	for range t.NumRounds {
		round, err := t.CreateRound()
		if err != nil {
			return err
		}
		for _, pairing := range round.Pairings {
			matchNo++
			m := r.Template
			m.Seed = r.Seed + matchNo
			m.Seats = []sim.Seat{
				{Name: pairing.Player1, Deck: t.deckOf(pairing.Player1)},
				{Name: pairing.Player2, Deck: t.deckOf(pairing.Player2)},
			}
			res, err := r.Play(ctx, m)
			if err != nil {
				return fmt.Errorf("round %d, %s vs %s: %w", round.Number, pairing.Player1, pairing.Player2, err)
			}
			if err := t.RecordMatchResult(round.Number, pairing.Player1, pairing.Player2, res.Winner, res.GameID, res.Turns); err != nil {
				return err
			}
			r.logger.Debug("match recorded",
				zap.String("tournament_id", t.ID),
				zap.Int("round", round.Number),
				zap.String("player1", pairing.Player1),
				zap.String("player2", pairing.Player2),
				zap.String("winner", res.Winner),
			)
		}
	}

	t.Finish()
	r.logger.Info("tournament finished", zap.String("tournament_id", t.ID))
	return nil
}

func (t *Tournament) deckOf(name string) []game.DeckEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Players[name].Deck
}
