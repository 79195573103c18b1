package game

import (
	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"go.uber.org/zap"
)

// QueryPT computes e's power and toughness: base characteristic, then set,
// adjust, counter and switch effects, in that order. ok is false unless e is
// a permanent with power/toughness.
func (g *Game) QueryPT(e ecs.Entity) (pt effects.PT, ok bool) {
	obj, ok := ecs.Get[Object](g.world, e)
	if !ok || obj.PT == nil || !ecs.Has[Permanent](g.world, e) {
		return effects.PT{}, false
	}
	base, err := obj.PT.Resolve(g.resolver, g.exprVars(obj))
	if err != nil {
		g.logger.Warn("cannot resolve power/toughness",
			zap.String("game_id", g.id),
			zap.Stringer("object", e),
			zap.String("name", obj.Name),
			zap.Error(err),
		)
		return effects.PT{}, false
	}
	return effects.Collect(g.world, e).Apply(base), true
}

// exprVars is the context for characteristic-defining expressions of obj.
func (g *Game) exprVars(obj *Object) effects.Vars {
	var vars effects.Vars
	for _, p := range g.players.inner {
		for _, e := range g.zones[GraveyardZone(p.ID)].members {
			vars.GraveyardCards++
			if o, ok := ecs.Get[Object](g.world, e); ok && o.IsCreature() {
				vars.GraveyardCreatures++
			}
		}
	}
	for _, e := range g.zones[BattlefieldZone].members {
		if o, ok := ecs.Get[Object](g.world, e); ok && o.IsCreature() {
			vars.BattlefieldCreatures++
		}
	}
	controller := obj.Owner
	if obj.HasController {
		controller = obj.Controller
	}
	if p, ok := g.players.Get(controller); ok {
		vars.ControllerLife = p.Life
		vars.ControllerHand = g.zones[HandZone(controller)].Len()
	}
	return vars
}

// QueryCreatures returns every creature on the battlefield in battlefield
// order.
func (g *Game) QueryCreatures() []ecs.Entity {
	var out []ecs.Entity
	for _, e := range g.zones[BattlefieldZone].members {
		obj, ok := ecs.Get[Object](g.world, e)
		if ok && obj.IsCreature() && ecs.Has[Permanent](g.world, e) {
			out = append(out, e)
		}
	}
	return out
}

// QueryMaxHandSize returns p's maximum hand size.
func (g *Game) QueryMaxHandSize(p PlayerID) int {
	return g.maxHandSize
}

// AdjustPT creates an effect adding adj to target's power and toughness. The
// effect ends with target, or at cleanup when untilEndOfTurn is set.
func (g *Game) AdjustPT(target ecs.Entity, adj effects.PT, untilEndOfTurn bool) ecs.Entity {
	return spawnEffect(g, target, untilEndOfTurn, effects.AdjustPT{
		Target:     target,
		Adjustment: adj,
		Timestamp:  g.nextTimestamp(),
	})
}

// SetPT creates an effect setting target's power and toughness to value.
func (g *Game) SetPT(target ecs.Entity, value effects.PT, untilEndOfTurn bool) ecs.Entity {
	return spawnEffect(g, target, untilEndOfTurn, effects.SetPT{
		Target:    target,
		Value:     value,
		Timestamp: g.nextTimestamp(),
	})
}

// SwitchPT creates an effect switching target's power and toughness.
func (g *Game) SwitchPT(target ecs.Entity, untilEndOfTurn bool) ecs.Entity {
	return spawnEffect(g, target, untilEndOfTurn, effects.SwitchPT{
		Target:    target,
		Timestamp: g.nextTimestamp(),
	})
}

// EndEffect removes an effect created by AdjustPT, SetPT or SwitchPT.
func (g *Game) EndEffect(effect ecs.Entity) bool {
	if !ecs.Has[effects.AttachedTo](g.world, effect) {
		return false
	}
	return g.world.Despawn(effect)
}

func spawnEffect[T any](g *Game, target ecs.Entity, untilEndOfTurn bool, c T) ecs.Entity {
	e := g.world.Spawn()
	ecs.Insert(g.world, e, c)
	ecs.Insert(g.world, e, effects.AttachedTo{Target: target})
	if untilEndOfTurn {
		ecs.Insert(g.world, e, effects.UntilEndOfTurn{})
	}
	return e
}

// AddCounters puts n counters of type t on permanent e.
func (g *Game) AddCounters(e ecs.Entity, t counters.CounterType, n int) bool {
	if !ecs.Has[Permanent](g.world, e) {
		return false
	}
	if cs, ok := ecs.Get[counters.Counters](g.world, e); ok {
		cs.Add(t, n)
		return true
	}
	return ecs.Insert(g.world, e, counters.New(counters.Counter{Type: t, Count: n}))
}

// Counters returns a copy of the counters on e.
func (g *Game) Counters(e ecs.Entity) counters.Counters {
	if cs, ok := ecs.Get[counters.Counters](g.world, e); ok {
		return cs.Copy()
	}
	return counters.Counters{}
}

// DamageOn returns the damage marked on e.
func (g *Game) DamageOn(e ecs.Entity) int {
	if d, ok := ecs.Get[Damage](g.world, e); ok {
		return d.Amount
	}
	return 0
}
