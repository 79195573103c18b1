package game

import (
	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"go.uber.org/zap"
)

// endCurrentStep moves to the next step, or to the next turn after cleanup.
func (g *Game) endCurrentStep() {
	if !g.zones[StackZone].IsEmpty() {
		panic("game: ending a step with a non-empty stack")
	}
	leaving := g.turn.CurrentStep()
	g.logger.Debug("ending step", zap.String("game_id", g.id), zap.Stringer("step", leaving))

	g.emptyManaPools()
	if leaving == rules.StepEndCombat {
		g.endCombat()
	}
	if leaving == rules.StepCleanup && g.cleanupAgain {
		g.cleanupAgain = false
		g.enterStep(rules.StepCleanup)
		return
	}

	next, ok := g.turn.AdvanceStep()
	if !ok {
		g.endCurrentTurn()
		return
	}
	g.enterStep(next)
}

func (g *Game) endCurrentTurn() {
	if !g.zones[StackZone].IsEmpty() {
		panic("game: ending a turn with a non-empty stack")
	}
	for _, p := range g.players.inner {
		p.LandsPlayedThisTurn = 0
	}

	// Players who have lost take no turns.
	for range g.players.Len() {
		idx := g.turn.EndTurn()
		if !g.players.inner[idx].HasLost {
			break
		}
	}

	g.watchers.Reset()
	g.logger.Debug("turn began",
		zap.String("game_id", g.id),
		zap.Int("turn", g.TurnNumber()),
		zap.Stringer("active_player", g.ActivePlayer()),
	)
	g.emit(rules.EventBeginTurn, g.ActivePlayer(), ecs.Nil)
	g.enterStep(rules.StepUntap)
}

func (g *Game) enterStep(step rules.Step) {
	g.logger.Debug("entering step", zap.String("game_id", g.id), zap.Stringer("step", step))
	ev := rules.NewEvent(rules.EventStepChanged, int(g.ActivePlayer()), ecs.Nil)
	ev.Data = step.String()
	g.publish(ev)

	ap := g.ActivePlayer()
	switch step {
	case rules.StepUntap:
		// Nobody gets priority during untap.
		g.untapPermanents(ap)
		g.endCurrentStep()
	case rules.StepUpkeep, rules.StepMain1, rules.StepMain2, rules.StepEnd:
		g.startPriorityRound(ap)
	case rules.StepDraw:
		g.drawCard(ap)
		g.startPriorityRound(ap)
	case rules.StepBeginCombat, rules.StepEndCombat:
		g.givePriority(ap)
	case rules.StepDeclareAttackers:
		if player, _ := g.players.Get(ap); player.HasLost {
			// A player who left mid-turn declares no attackers.
			g.publish(rules.NewEventWithAmount(rules.EventAttackersDeclared, int(ap), ecs.Nil, 0))
			g.startPriorityRound(ap)
			return
		}
		g.state = waiting(ap, CategoryChooseAttackers)
	case rules.StepDeclareBlockers:
		g.state = waiting(g.defendingPlayer(), CategoryChooseBlockers)
	case rules.StepCombatDamage:
		g.dealCombatDamage()
		g.givePriority(ap)
	case rules.StepCleanup:
		g.cleanup()
	}
}

func (g *Game) untapPermanents(p PlayerID) {
	for _, e := range g.zones[BattlefieldZone].Members() {
		obj, _ := ecs.Get[Object](g.world, e)
		perm, ok := ecs.Get[Permanent](g.world, e)
		if !ok || obj == nil || obj.Controller != p || !perm.Tapped {
			continue
		}
		perm.Tapped = false
		g.emit(rules.EventUntapped, p, e)
	}
}

// drawCard moves the top of p's library to their hand. Drawing from an empty
// library is remembered for the next state-based action check.
func (g *Game) drawCard(p PlayerID) bool {
	player, ok := g.players.Get(p)
	if !ok {
		return false
	}
	top, ok := g.zones[LibraryZone(p)].Top()
	if !ok {
		player.DrewFromEmptyLibrary = true
		g.logger.Debug("draw from empty library", zap.String("game_id", g.id), zap.Stringer("player", p))
		return false
	}
	g.moveObjectToZone(top, HandZone(p))
	g.emit(rules.EventDrewCard, p, top)
	return true
}

func (g *Game) emptyManaPools() {
	for _, p := range g.players.inner {
		if p.ManaPool.IsEmpty() {
			continue
		}
		g.publish(rules.NewEventWithAmount(rules.EventEmptyMana, int(p.ID), ecs.Nil, p.ManaPool.Len()))
		p.ManaPool.Empty()
	}
}

// cleanup performs the cleanup step's turn-based actions. If state-based
// actions were performed the active player gets priority and the step repeats
// once everyone passes; otherwise the turn ends.
func (g *Game) cleanup() {
	ap := g.ActivePlayer()
	g.discardToHandSize(ap)

	for _, e := range ecs.Query[Damage](g.world) {
		ecs.Remove[Damage](g.world, e)
	}
	expired := effects.CleanupEndOfTurnEffects(g.world)
	if len(expired) > 0 {
		g.logger.Debug("until-end-of-turn effects ended",
			zap.String("game_id", g.id),
			zap.Int("count", len(expired)),
		)
	}

	performed := g.applyStateBasedActions()
	if g.state.Complete {
		return
	}
	if performed {
		g.cleanupAgain = true
		g.startPriorityRound(ap)
		return
	}
	g.endCurrentStep()
}

// discardToHandSize discards the most recently drawn cards above the maximum
// hand size.
func (g *Game) discardToHandSize(p PlayerID) {
	hand := g.zones[HandZone(p)]
	excess := hand.Len() - g.QueryMaxHandSize(p)
	for i := 0; i < excess; i++ {
		top, ok := hand.Top()
		if !ok {
			return
		}
		g.moveObjectToZone(top, GraveyardZone(p))
	}
}
