package game

import (
	"fmt"

	"github.com/magefree/mage-rules-go/internal/game/ecs"
)

// ZoneKind names a kind of zone.
type ZoneKind int

const (
	ZoneLibrary ZoneKind = iota
	ZoneHand
	ZoneGraveyard
	ZoneStack
	ZoneBattlefield
	ZoneExile
	ZoneCommand
)

var zoneKindNames = map[ZoneKind]string{
	ZoneLibrary:     "LIBRARY",
	ZoneHand:        "HAND",
	ZoneGraveyard:   "GRAVEYARD",
	ZoneStack:       "STACK",
	ZoneBattlefield: "BATTLEFIELD",
	ZoneExile:       "EXILE",
	ZoneCommand:     "COMMAND",
}

func (k ZoneKind) String() string {
	if name, ok := zoneKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(k))
}

// IsShared reports whether a single zone of this kind is shared by all players.
func (k ZoneKind) IsShared() bool {
	switch k {
	case ZoneStack, ZoneBattlefield, ZoneExile, ZoneCommand:
		return true
	}
	return false
}

// ZoneID identifies a zone. Player is ignored for shared zones.
type ZoneID struct {
	Kind   ZoneKind
	Player PlayerID
}

var (
	StackZone       = ZoneID{Kind: ZoneStack}
	BattlefieldZone = ZoneID{Kind: ZoneBattlefield}
	ExileZone       = ZoneID{Kind: ZoneExile}
	CommandZone     = ZoneID{Kind: ZoneCommand}
)

func LibraryZone(p PlayerID) ZoneID   { return ZoneID{Kind: ZoneLibrary, Player: p} }
func HandZone(p PlayerID) ZoneID      { return ZoneID{Kind: ZoneHand, Player: p} }
func GraveyardZone(p PlayerID) ZoneID { return ZoneID{Kind: ZoneGraveyard, Player: p} }

func (z ZoneID) String() string {
	if z.Kind.IsShared() {
		return z.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", z.Kind, z.Player)
}

// canonical zeroes Player for shared zones so any ZoneID naming the same zone
// maps to the same key.
func (z ZoneID) canonical() ZoneID {
	if z.Kind.IsShared() {
		z.Player = 0
	}
	return z
}

// MarshalText renders the zone name for views.
func (z ZoneID) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// Zone is an ordered list of objects. For the library and the stack the last
// member is the top.
type Zone struct {
	members []ecs.Entity
}

// Members returns a copy of the zone's objects, bottom first.
func (z *Zone) Members() []ecs.Entity {
	out := make([]ecs.Entity, len(z.members))
	copy(out, z.members)
	return out
}

// Len returns the number of objects in the zone.
func (z *Zone) Len() int {
	return len(z.members)
}

// IsEmpty reports whether the zone has no objects.
func (z *Zone) IsEmpty() bool {
	return len(z.members) == 0
}

// Top returns the last object added.
func (z *Zone) Top() (ecs.Entity, bool) {
	if len(z.members) == 0 {
		return ecs.Nil, false
	}
	return z.members[len(z.members)-1], true
}

// Contains reports whether e is in the zone.
func (z *Zone) Contains(e ecs.Entity) bool {
	return z.indexOf(e) >= 0
}

func (z *Zone) indexOf(e ecs.Entity) int {
	for i, m := range z.members {
		if m == e {
			return i
		}
	}
	return -1
}

func (z *Zone) push(e ecs.Entity) {
	z.members = append(z.members, e)
}

func (z *Zone) remove(e ecs.Entity) bool {
	i := z.indexOf(e)
	if i < 0 {
		return false
	}
	z.members = append(z.members[:i], z.members[i+1:]...)
	return true
}

// newZones creates every zone for the given players.
func newZones(players []PlayerID) map[ZoneID]*Zone {
	zones := map[ZoneID]*Zone{
		StackZone:       {},
		BattlefieldZone: {},
		ExileZone:       {},
		CommandZone:     {},
	}
	for _, p := range players {
		zones[LibraryZone(p)] = &Zone{}
		zones[HandZone(p)] = &Zone{}
		zones[GraveyardZone(p)] = &Zone{}
	}
	return zones
}

// zoneOrder is the stable ordering used by views and index rebuilds.
func zoneOrder(players []PlayerID) []ZoneID {
	var out []ZoneID
	for _, p := range players {
		out = append(out, LibraryZone(p), HandZone(p), GraveyardZone(p))
	}
	return append(out, StackZone, BattlefieldZone, ExileZone, CommandZone)
}
