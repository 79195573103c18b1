package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ChecksumVersion changes whenever the canonical representation does.
const ChecksumVersion = 1

// Checksum is a digest of a match's observable state. Two matches played with
// the same seed, decks and actions have equal checksums.
type Checksum struct {
	Hash    string
	Turn    int
	Version int
}

// Checksum computes the digest of the current view, ignoring the match ID.
func (g *Game) Checksum() Checksum {
	v := g.View()
	sum := sha256.Sum256(v.canonical())
	return Checksum{
		Hash:    hex.EncodeToString(sum[:]),
		Turn:    v.Turn,
		Version: ChecksumVersion,
	}
}

// canonical writes the view one line per record. Players and zones are
// already in a fixed order; zone members keep their order since it matters
// for libraries and the stack.
func (v GameView) canonical() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "GAME:%d|%s|%s|%s\n", v.Turn, v.Step, v.ActivePlayer, v.State)
	for _, p := range v.Players {
		fmt.Fprintf(&buf, "PLAYER:%s|%d|%d|%t|%d|%s|%t\n",
			p.Name, p.Life, p.Poison, p.Lost, p.LandsPlayed, p.ManaPool, p.HasPriority)
	}
	for _, z := range v.Zones {
		fmt.Fprintf(&buf, "ZONE:%s|%d\n", z.Zone, z.Count)
		for _, o := range z.Objects {
			fmt.Fprintf(&buf, "  OBJECT:%s|%s|%s|%s|%s|%s|%t|%d|%s|%t|%t\n",
				o.ID, o.Name, o.Types, o.ManaCost,
				optionalInt(o.Power), optionalInt(o.Toughness),
				o.Tapped, o.Damage, o.Controller, o.Attacking, o.Casting)
		}
	}
	return buf.Bytes()
}

func optionalInt(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}
