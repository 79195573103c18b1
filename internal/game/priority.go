package game

import (
	"fmt"

	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"go.uber.org/zap"
)

// givePriority checks state-based actions and then gives p priority, unless
// the game ended. A player who has lost is skipped in favor of the next one.
func (g *Game) givePriority(p PlayerID) {
	g.applyStateBasedActions()
	if g.state.Complete {
		return
	}
	if player, _ := g.players.Get(p); player != nil && player.HasLost {
		p = g.players.After(p)
	}
	g.state = waiting(p, CategoryPriority)
}

// startPriorityRound forgets who has passed and gives p priority. Used after
// any action or resolution so that every player may respond again.
func (g *Game) startPriorityRound(p PlayerID) {
	clear(g.passed)
	g.givePriority(p)
}

// requireState rejects input unless the game is waiting on p for c.
func (g *Game) requireState(p PlayerID, c ActionCategory) error {
	if g.state.IsWaiting(p, c) {
		return nil
	}
	if c == CategoryPriority && g.state.Category == CategoryPriority {
		return fmt.Errorf("%w: %s, waiting on %s", ErrNotPriorityHolder, p, g.state.Player)
	}
	return fmt.Errorf("%w: need %s for %s, state is %s", ErrWrongState, c, p, g.state)
}

func (g *Game) passPriority(p PlayerID) error {
	if err := g.requireState(p, CategoryPriority); err != nil {
		return err
	}
	g.passed[p] = true

	next := g.players.After(p)
	g.logger.Debug("priority passed",
		zap.String("game_id", g.id),
		zap.Stringer("player", p),
		zap.Stringer("next", next),
	)
	if !g.passed[next] {
		g.givePriority(next)
		return nil
	}

	// Everyone passed in succession.
	clear(g.passed)
	if g.zones[StackZone].IsEmpty() {
		g.endCurrentStep()
	} else {
		g.resolveTopOfStack()
	}
	return nil
}

// resolveTopOfStack resolves exactly one object. Permanent spells enter the
// battlefield; anything else goes to its owner's graveyard.
func (g *Game) resolveTopOfStack() {
	top, ok := g.zones[StackZone].Top()
	if !ok {
		return
	}
	obj, ok := ecs.Get[Object](g.world, top)
	if !ok {
		g.logger.Error("stack object without Object component",
			zap.String("game_id", g.id),
			zap.Stringer("object", top),
		)
		return
	}
	owner, name := obj.Owner, obj.Name

	if obj.IsPermanentCard() {
		g.moveObjectToZone(top, BattlefieldZone)
	} else {
		g.logger.Warn("no resolution rules for object, moving to graveyard",
			zap.String("game_id", g.id),
			zap.Stringer("object", top),
			zap.String("name", name),
			zap.Stringer("types", obj.Types),
		)
		g.moveObjectToZone(top, GraveyardZone(owner))
	}
	g.emit(rules.EventSpellResolved, owner, top)

	g.startPriorityRound(g.ActivePlayer())
}

func (g *Game) concede(p PlayerID) error {
	player, _ := g.players.Get(p)
	player.HasLost = true
	g.logger.Info("player conceded", zap.String("game_id", g.id), zap.Stringer("player", p))
	g.emit(rules.EventPlayerLost, p, ecs.Nil)
	g.abandonCasts(p)

	if g.checkGameOver() {
		return nil
	}
	delete(g.passed, p)
	if g.state.Player == p {
		g.givePriority(g.players.After(p))
	}
	return nil
}

// checkGameOver completes the match once at most one player remains.
func (g *Game) checkGameOver() bool {
	if g.state.Complete {
		return true
	}
	remaining := g.players.Remaining()
	switch len(remaining) {
	case 0:
		g.state = complete(Outcome{Kind: OutcomeDraw})
	case 1:
		g.state = complete(Outcome{Kind: OutcomeWin, Winner: remaining[0]})
	default:
		return false
	}

	ev := rules.NewEvent(rules.EventGameOver, rules.NoPlayer, ecs.Nil)
	ev.Data = g.state.Outcome.String()
	g.publish(ev)
	g.logger.Info("game over",
		zap.String("game_id", g.id),
		zap.Stringer("outcome", g.state.Outcome),
		zap.Int("turn", g.TurnNumber()),
	)
	return true
}
