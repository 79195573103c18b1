package game

import (
	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"go.uber.org/zap"
)

// PoisonLimit is the number of poison counters at which a player loses.
const PoisonLimit = 10

// stateBasedAction performs one check and reports whether it changed
// anything. Every check only ever shrinks the set of violations it looks for,
// so repeating the battery reaches a fixed point.
type stateBasedAction struct {
	name  string
	apply func(g *Game) bool
}

var stateBasedActions = []stateBasedAction{
	{"orphaned effects", (*Game).sbaOrphanedEffects},
	{"zero life", (*Game).sbaZeroLife},
	{"drew from empty library", (*Game).sbaDrewFromEmptyLibrary},
	{"poison", (*Game).sbaPoison},
	{"zero toughness", (*Game).sbaZeroToughness},
	{"lethal damage", (*Game).sbaLethalDamage},
}

// applyStateBasedActions repeats the battery until a pass changes nothing,
// then ends the game if at most one player remains. It reports whether any
// action was performed.
func (g *Game) applyStateBasedActions() bool {
	performed := false
	for g.checkStateBasedActions() {
		performed = true
	}
	g.checkGameOver()
	return performed
}

// checkStateBasedActions runs every check once.
func (g *Game) checkStateBasedActions() bool {
	var applied []string
	for _, sba := range stateBasedActions {
		if sba.apply(g) {
			applied = append(applied, sba.name)
		}
	}
	if len(applied) == 0 {
		return false
	}
	g.logger.Debug("state-based actions performed",
		zap.String("game_id", g.id),
		zap.Strings("actions", applied),
	)
	g.publish(rules.NewEventWithAmount(rules.EventStateBasedActions, rules.NoPlayer, ecs.Nil, len(applied)))
	return true
}

func (g *Game) sbaOrphanedEffects() bool {
	return len(effects.CleanupOrphanedEffects(g.world)) > 0
}

func (g *Game) playerLoses(p *Player, reason string) {
	p.HasLost = true
	g.logger.Info("player lost",
		zap.String("game_id", g.id),
		zap.Stringer("player", p.ID),
		zap.String("reason", reason),
		zap.Int("life", p.Life),
	)
	ev := rules.NewEvent(rules.EventPlayerLost, int(p.ID), ecs.Nil)
	ev.Data = reason
	g.publish(ev)
}

// 704.5a
func (g *Game) sbaZeroLife() bool {
	performed := false
	for _, p := range g.players.inner {
		if !p.HasLost && p.Life <= 0 {
			g.playerLoses(p, "life")
			performed = true
		}
	}
	return performed
}

// 704.5b
func (g *Game) sbaDrewFromEmptyLibrary() bool {
	performed := false
	for _, p := range g.players.inner {
		if !p.DrewFromEmptyLibrary {
			continue
		}
		p.DrewFromEmptyLibrary = false
		if !p.HasLost {
			g.playerLoses(p, "drew from empty library")
			performed = true
		}
	}
	return performed
}

// 704.5c
func (g *Game) sbaPoison() bool {
	performed := false
	for _, p := range g.players.inner {
		if !p.HasLost && p.Counters.Count(counters.CounterTypePoison) >= PoisonLimit {
			g.playerLoses(p, "poison")
			performed = true
		}
	}
	return performed
}

// 704.5f
func (g *Game) sbaZeroToughness() bool {
	var dying []ecs.Entity
	for _, e := range g.QueryCreatures() {
		if pt, ok := g.QueryPT(e); ok && pt.Toughness <= 0 {
			dying = append(dying, e)
		}
	}
	return g.putIntoGraveyard(dying, "zero toughness")
}

// 704.5g
func (g *Game) sbaLethalDamage() bool {
	var dying []ecs.Entity
	for _, e := range g.QueryCreatures() {
		pt, ok := g.QueryPT(e)
		if !ok || pt.Toughness <= 0 {
			continue
		}
		if d, ok := ecs.Get[Damage](g.world, e); ok && d.Amount >= pt.Toughness {
			dying = append(dying, e)
		}
	}
	return g.putIntoGraveyard(dying, "lethal damage")
}

func (g *Game) putIntoGraveyard(objects []ecs.Entity, reason string) bool {
	for _, e := range objects {
		obj, _ := ecs.Get[Object](g.world, e)
		owner, name := obj.Owner, obj.Name
		g.moveObjectToZone(e, GraveyardZone(owner))
		g.logger.Debug("creature died",
			zap.String("game_id", g.id),
			zap.Stringer("object", e),
			zap.String("name", name),
			zap.String("reason", reason),
		)
	}
	return len(objects) > 0
}
