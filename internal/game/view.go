package game

import (
	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// GameView is a read-only snapshot of a match.
type GameView struct {
	ID           string       `yaml:"id"`
	Turn         int          `yaml:"turn"`
	Step         rules.Step   `yaml:"step"`
	ActivePlayer string       `yaml:"active_player"`
	State        string       `yaml:"state"`
	Players      []PlayerView `yaml:"players"`
	Zones        []ZoneView   `yaml:"zones"`
}

// PlayerView is one player's public state.
type PlayerView struct {
	Name        string `yaml:"name"`
	Life        int    `yaml:"life"`
	Poison      int    `yaml:"poison,omitempty"`
	Lost        bool   `yaml:"lost,omitempty"`
	LandsPlayed int    `yaml:"lands_played"`
	ManaPool    string `yaml:"mana_pool,omitempty"`
	HasPriority bool   `yaml:"has_priority,omitempty"`
}

// ZoneView lists a zone's objects, bottom first.
type ZoneView struct {
	Zone    ZoneID       `yaml:"zone"`
	Objects []ObjectView `yaml:"objects,omitempty"`
	Count   int          `yaml:"count"`
}

// ObjectView is an object as it appears in a view. P/T is the queried value.
type ObjectView struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Types      string `yaml:"types"`
	ManaCost   string `yaml:"mana_cost,omitempty"`
	Power      *int   `yaml:"power,omitempty"`
	Toughness  *int   `yaml:"toughness,omitempty"`
	Tapped     bool   `yaml:"tapped,omitempty"`
	Damage     int    `yaml:"damage,omitempty"`
	Controller string `yaml:"controller,omitempty"`
	Attacking  bool   `yaml:"attacking,omitempty"`
	Casting    bool   `yaml:"casting,omitempty"`
}

// View snapshots the match. Libraries are reported by count only.
func (g *Game) View() GameView {
	v := GameView{
		ID:           g.id,
		Turn:         g.TurnNumber(),
		Step:         g.Step(),
		ActivePlayer: g.playerName(g.ActivePlayer()),
		State:        g.state.String(),
	}
	priority, hasPriority := g.PriorityPlayer()
	for _, p := range g.players.inner {
		pv := PlayerView{
			Name:        p.Name,
			Life:        p.Life,
			Poison:      p.Counters.Count(counters.CounterTypePoison),
			Lost:        p.HasLost,
			LandsPlayed: p.LandsPlayedThisTurn,
			HasPriority: hasPriority && priority == p.ID,
		}
		for _, u := range p.ManaPool.Units() {
			pv.ManaPool += u.Mana.String()
		}
		v.Players = append(v.Players, pv)
	}

	for _, id := range zoneOrder(g.players.IDs()) {
		z := g.zones[id]
		zv := ZoneView{Zone: id, Count: z.Len()}
		if id.Kind != ZoneLibrary {
			for _, e := range z.members {
				zv.Objects = append(zv.Objects, g.objectView(e))
			}
		}
		v.Zones = append(v.Zones, zv)
	}
	return v
}

func (g *Game) objectView(e ecs.Entity) ObjectView {
	ov := ObjectView{ID: e.String()}
	obj, ok := ecs.Get[Object](g.world, e)
	if !ok {
		return ov
	}
	ov.Name = obj.Name
	ov.Types = obj.Types.String()
	if obj.HasCost {
		ov.ManaCost = obj.ManaCost.String()
	}
	if obj.HasController {
		ov.Controller = g.playerName(obj.Controller)
	}
	if pt, ok := g.QueryPT(e); ok {
		ov.Power, ov.Toughness = &pt.Power, &pt.Toughness
	}
	if perm, ok := ecs.Get[Permanent](g.world, e); ok {
		ov.Tapped = perm.Tapped
	}
	ov.Damage = g.DamageOn(e)
	ov.Attacking = ecs.Has[Attacking](g.world, e)
	ov.Casting = ecs.Has[IncompleteSpell](g.world, e)
	return ov
}

func (g *Game) playerName(id PlayerID) string {
	if p, ok := g.players.Get(id); ok {
		return p.Name
	}
	return id.String()
}
