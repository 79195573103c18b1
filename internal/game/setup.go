package game

import (
	"fmt"

	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// OpeningHandSize is the number of cards drawn before the first turn.
const OpeningHandSize = 7

// DeckEntry is a number of copies of one card.
type DeckEntry struct {
	Card  string `mapstructure:"card" yaml:"card"`
	Count int    `mapstructure:"count" yaml:"count"`
}

// LoadLibrary creates every card of deck in p's library. Unknown cards are
// all reported; nothing is created if any entry is invalid.
func (g *Game) LoadLibrary(p PlayerID, deck []DeckEntry) error {
	if _, ok := g.players.Get(p); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, p)
	}
	var errs error
	for i, entry := range deck {
		if _, ok := g.catalog.Lookup(entry.Card); !ok {
			errs = multierr.Append(errs, fmt.Errorf("deck entry %d: %w: %q", i, ErrUnknownCard, entry.Card))
		}
		if entry.Count <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("deck entry %d: count must be positive, got %d", i, entry.Count))
		}
	}
	if errs != nil {
		return errs
	}

	for _, entry := range deck {
		for range entry.Count {
			if _, err := g.CreateCardByName(entry.Card, LibraryZone(p), p); err != nil {
				return err
			}
		}
	}
	return nil
}

// ShuffleLibrary randomizes the order of p's library.
func (g *Game) ShuffleLibrary(p PlayerID) {
	lib, ok := g.zones[LibraryZone(p)]
	if !ok {
		return
	}
	g.rng.Shuffle(len(lib.members), func(i, j int) {
		lib.members[i], lib.members[j] = lib.members[j], lib.members[i]
	})
}

// DrawCards draws n cards for p and returns what was drawn.
func (g *Game) DrawCards(p PlayerID, n int) []ecs.Entity {
	var drawn []ecs.Entity
	for range n {
		top, _ := g.zones[LibraryZone(p)].Top()
		if !g.drawCard(p) {
			break
		}
		drawn = append(drawn, top)
	}
	return drawn
}

// SetupPlayer loads p's library from deck, shuffles it and draws an opening
// hand.
func (g *Game) SetupPlayer(p PlayerID, deck []DeckEntry) error {
	if err := g.LoadLibrary(p, deck); err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	g.ShuffleLibrary(p)
	g.DrawCards(p, OpeningHandSize)
	return nil
}

// Setup sets up every player from the same deck list.
func (g *Game) Setup(deck []DeckEntry) error {
	for _, p := range g.players.IDs() {
		if err := g.SetupPlayer(p, deck); err != nil {
			return err
		}
	}
	g.logger.Debug("players set up",
		zap.String("game_id", g.id),
		zap.Int("deck_cards", deckSize(deck)),
	)
	return nil
}

func deckSize(deck []DeckEntry) int {
	n := 0
	for _, entry := range deck {
		n += entry.Count
	}
	return n
}

// SampleDeck is 15 Forests and 25 Grizzly Bears.
func SampleDeck() []DeckEntry {
	return []DeckEntry{
		{Card: "Forest", Count: 15},
		{Card: "Grizzly Bears", Count: 25},
	}
}
