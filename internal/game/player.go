package game

import (
	"fmt"

	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/mana"
)

// PlayerID identifies a player. IDs are assigned in turn order starting at 0.
type PlayerID uint32

func (id PlayerID) String() string {
	return fmt.Sprintf("player-%d", uint32(id))
}

// Player is one participant's state.
type Player struct {
	ID   PlayerID
	Name string
	Life int
	// HasLost is set by state-based actions or by conceding.
	HasLost             bool
	LandsPlayedThisTurn int
	ManaPool            *mana.Pool
	Counters            counters.Counters
	// DrewFromEmptyLibrary is set when the player was asked to draw with an
	// empty library; the next state-based action check makes them lose.
	DrewFromEmptyLibrary bool
}

// Players is the fixed turn order.
type Players struct {
	inner []*Player
}

func newPlayers(names []string, life int) *Players {
	ps := &Players{inner: make([]*Player, 0, len(names))}
	for i, name := range names {
		ps.inner = append(ps.inner, &Player{
			ID:       PlayerID(i),
			Name:     name,
			Life:     life,
			ManaPool: mana.NewPool(),
		})
	}
	return ps
}

// Len returns the number of players.
func (ps *Players) Len() int {
	return len(ps.inner)
}

// Get returns the player with the given ID.
func (ps *Players) Get(id PlayerID) (*Player, bool) {
	if int(id) >= len(ps.inner) {
		return nil, false
	}
	return ps.inner[id], true
}

// All returns players in turn order.
func (ps *Players) All() []*Player {
	out := make([]*Player, len(ps.inner))
	copy(out, ps.inner)
	return out
}

// IDs returns player IDs in turn order.
func (ps *Players) IDs() []PlayerID {
	out := make([]PlayerID, len(ps.inner))
	for i, p := range ps.inner {
		out[i] = p.ID
	}
	return out
}

// After returns the next player in turn order who has not lost. If every
// other player has lost, id itself is returned.
func (ps *Players) After(id PlayerID) PlayerID {
	if int(id) >= len(ps.inner) {
		panic(fmt.Sprintf("Players.After called with unknown player %d", id))
	}
	n := len(ps.inner)
	for step := 1; step <= n; step++ {
		next := ps.inner[(int(id)+step)%n]
		if !next.HasLost || next.ID == id {
			return next.ID
		}
	}
	return id
}

// Remaining returns the players who have not lost, in turn order.
func (ps *Players) Remaining() []PlayerID {
	var out []PlayerID
	for _, p := range ps.inner {
		if !p.HasLost {
			out = append(out, p.ID)
		}
	}
	return out
}
