package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/magefree/mage-rules-go/internal/catalog"
	"github.com/magefree/mage-rules-go/internal/game"
	"go.uber.org/zap"
)

// DefaultMaxTurns bounds a match that nobody wins.
const DefaultMaxTurns = 50

// ErrNoDeck is returned when a seat has no deck.
var ErrNoDeck = errors.New("every player needs a deck")

// Seat is one player in a simulated match.
type Seat struct {
	Name string
	Deck []game.DeckEntry
}

// Match configures a simulated match.
type Match struct {
	Seats        []Seat
	StartingLife int
	MaxHandSize  int
	Seed         uint64
	// MaxTurns ends the match unfinished once exceeded. Zero selects
	// DefaultMaxTurns.
	MaxTurns int
	Catalog  *catalog.Catalog
	Logger   *zap.Logger
	// OnGame is called with the match once it is set up, before the first
	// action. Used to attach recorders.
	OnGame func(*game.Game)
}

// Result summarizes a finished or abandoned match.
type Result struct {
	GameID   string
	Complete bool
	Outcome  game.Outcome
	// Winner is the winning seat's name, empty for draws and unfinished
	// matches.
	Winner   string
	Turns    int
	Actions  int
	Checksum game.Checksum
	Final    game.GameView
}

// Play sets up the match and lets the autopilot play it out. It stops early
// when ctx is done.
func Play(ctx context.Context, m Match) (Result, error) {
	if m.Logger == nil {
		m.Logger = zap.NewNop()
	}
	if m.MaxTurns <= 0 {
		m.MaxTurns = DefaultMaxTurns
	}
	names := make([]string, len(m.Seats))
	for i, seat := range m.Seats {
		if len(seat.Deck) == 0 {
			return Result{}, fmt.Errorf("%w: %s", ErrNoDeck, seat.Name)
		}
		names[i] = seat.Name
	}

	g, err := game.New(game.Options{
		Players:      names,
		StartingLife: m.StartingLife,
		MaxHandSize:  m.MaxHandSize,
		Catalog:      m.Catalog,
		Logger:       m.Logger,
		Seed:         m.Seed,
	})
	if err != nil {
		return Result{}, err
	}
	for i, seat := range m.Seats {
		if err := g.SetupPlayer(game.PlayerID(i), seat.Deck); err != nil {
			return Result{}, fmt.Errorf("failed to set up %s: %w", seat.Name, err)
		}
	}
	if m.OnGame != nil {
		m.OnGame(g)
	}

	pilot := NewAutopilot(m.Logger)
	actions := 0
	for !g.State().Complete && g.TurnNumber() <= m.MaxTurns {
		if err := ctx.Err(); err != nil {
			return summarize(g, actions), err
		}
		if err := pilot.Act(g); err != nil {
			return summarize(g, actions), fmt.Errorf("autopilot failed on turn %d: %w", g.TurnNumber(), err)
		}
		actions++
	}

	res := summarize(g, actions)
	m.Logger.Info("simulated match finished",
		zap.String("game_id", res.GameID),
		zap.Bool("complete", res.Complete),
		zap.String("winner", res.Winner),
		zap.Int("turns", res.Turns),
		zap.Int("actions", res.Actions),
	)
	return res, nil
}

func summarize(g *game.Game, actions int) Result {
	s := g.State()
	res := Result{
		GameID:   g.ID(),
		Complete: s.Complete,
		Outcome:  s.Outcome,
		Turns:    g.TurnNumber(),
		Actions:  actions,
		Checksum: g.Checksum(),
		Final:    g.View(),
	}
	if s.Complete && s.Outcome.Kind == game.OutcomeWin {
		if p, ok := g.Player(s.Outcome.Winner); ok {
			res.Winner = p.Name
		}
	}
	return res
}
