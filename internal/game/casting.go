package game

import (
	"fmt"

	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"go.uber.org/zap"
)

// startCastingSpell proposes spell: it is validated in full, then moved to the
// stack with an IncompleteSpell snapshot of its cost, and the caster is asked
// for mana.
func (g *Game) startCastingSpell(p PlayerID, spell ecs.Entity) error {
	if err := g.requireState(p, CategoryPriority); err != nil {
		return err
	}
	obj, ok := ecs.Get[Object](g.world, spell)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchObject, spell)
	}

	// Instants may be cast whenever the caster has priority. Anything else
	// needs the caster's own main phase and an empty stack.
	if !obj.IsInstant() {
		if !g.zones[StackZone].IsEmpty() {
			return fmt.Errorf("%w: cannot cast %s", ErrStackNotEmpty, obj.Name)
		}
		if !g.Step().IsMain() {
			return fmt.Errorf("%w: step is %s", ErrNotMainPhase, g.Step())
		}
		if g.ActivePlayer() != p {
			return fmt.Errorf("%w: %s", ErrNotActivePlayer, p)
		}
	}
	if obj.Zone != HandZone(p) {
		return fmt.Errorf("%w: %s is in %s", ErrNotInHand, obj.Name, obj.Zone)
	}
	if !obj.HasCost {
		return fmt.Errorf("%w: %s", ErrNoManaCost, obj.Name)
	}

	from := obj.Zone
	// X is always chosen as zero.
	cost := obj.ManaCost.WithoutX()
	name := obj.Name

	g.moveObjectToZone(spell, StackZone)
	ecs.Insert(g.world, spell, IncompleteSpell{FromZone: from, Cost: cost})
	g.state = waiting(p, CategorySpellManaAbilities)

	g.logger.Debug("casting spell",
		zap.String("game_id", g.id),
		zap.Stringer("player", p),
		zap.Stringer("object", spell),
		zap.String("name", name),
		zap.Stringer("cost", cost),
	)
	return nil
}

// incompleteSpell looks up a spell that p is in the middle of casting.
func (g *Game) incompleteSpell(p PlayerID, spell ecs.Entity) (*IncompleteSpell, error) {
	obj, ok := ecs.Get[Object](g.world, spell)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchObject, spell)
	}
	incomplete, ok := ecs.Get[IncompleteSpell](g.world, spell)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotIncomplete, obj.Name)
	}
	if !obj.HasController || obj.Controller != p {
		return nil, fmt.Errorf("%w: %s", ErrNotController, obj.Name)
	}
	return incomplete, nil
}

// paySpellMana applies id to the next unpaid cost item.
func (g *Game) paySpellMana(p PlayerID, spell ecs.Entity, id mana.ManaID) error {
	if err := g.requireState(p, CategorySpellManaAbilities); err != nil {
		return err
	}
	incomplete, err := g.incompleteSpell(p, spell)
	if err != nil {
		return err
	}
	return g.payCostItem(p, spell, len(incomplete.Paid), id)
}

// payCostItem applies id to cost item index. Items are paid strictly in
// order, so index must be the first unpaid item.
func (g *Game) payCostItem(p PlayerID, spell ecs.Entity, index int, id mana.ManaID) error {
	incomplete, err := g.incompleteSpell(p, spell)
	if err != nil {
		return err
	}
	player, _ := g.players.Get(p)

	m, ok := player.ManaPool.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMana, id)
	}
	for _, used := range incomplete.Paid {
		if used == id {
			return fmt.Errorf("%w: %d", ErrManaAlreadyUsed, id)
		}
	}
	if incomplete.Remaining() == 0 {
		return ErrNoCostRemaining
	}
	if index != len(incomplete.Paid) {
		return fmt.Errorf("%w: item %d, next unpaid is %d", ErrPaymentOutOfOrder, index, len(incomplete.Paid))
	}
	item := incomplete.Cost[index]
	if !item.CanBePaidWith(m) {
		return fmt.Errorf("%w: %s cannot pay %s", ErrManaMismatch, m, item)
	}

	incomplete.Paid = append(incomplete.Paid, id)
	return nil
}

// finishCastingSpell checks every payment again, spends the mana in one step
// and completes the cast. On failure the spell stays incomplete.
func (g *Game) finishCastingSpell(p PlayerID, spell ecs.Entity) error {
	if err := g.requireState(p, CategorySpellManaAbilities); err != nil {
		return err
	}
	incomplete, err := g.incompleteSpell(p, spell)
	if err != nil {
		return err
	}
	player, _ := g.players.Get(p)

	spent := make(map[mana.ManaID]bool, len(incomplete.Paid))
	for i, item := range incomplete.Cost {
		if i >= len(incomplete.Paid) {
			return fmt.Errorf("%w: item %d (%s)", ErrCostUnpaid, i, item)
		}
		id := incomplete.Paid[i]
		if spent[id] {
			return fmt.Errorf("%w: %d", ErrDuplicateMana, id)
		}
		spent[id] = true

		m, ok := player.ManaPool.Get(id)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownMana, id)
		}
		if !item.CanBePaidWith(m) {
			return fmt.Errorf("%w: item %d (%s) with %s", ErrManaMismatch, i, item, m)
		}
	}
	if err := player.ManaPool.Spend(incomplete.Paid); err != nil {
		return err
	}

	ecs.Remove[IncompleteSpell](g.world, spell)
	g.emit(rules.EventSpellCast, p, spell)
	g.logger.Debug("spell cast",
		zap.String("game_id", g.id),
		zap.Stringer("player", p),
		zap.Stringer("object", spell),
	)
	g.startPriorityRound(p)
	return nil
}

// cancelCastingSpell abandons a cast and puts the spell back where it came
// from. The caster keeps priority.
func (g *Game) cancelCastingSpell(p PlayerID, spell ecs.Entity) error {
	if err := g.requireState(p, CategorySpellManaAbilities); err != nil {
		return err
	}
	incomplete, err := g.incompleteSpell(p, spell)
	if err != nil {
		return err
	}
	g.rollbackCast(p, spell, incomplete)
	g.state = waiting(p, CategoryPriority)
	return nil
}

// rollbackCast puts a half-cast spell back in the zone it was cast from.
// Mana already applied stays in the pool.
func (g *Game) rollbackCast(p PlayerID, spell ecs.Entity, incomplete *IncompleteSpell) {
	from := incomplete.FromZone
	ecs.Remove[IncompleteSpell](g.world, spell)
	if obj, _ := ecs.Get[Object](g.world, spell); obj.Zone != from {
		g.moveObjectToZone(spell, from)
	}
	g.emit(rules.EventCastCanceled, p, spell)
}

// abandonCasts rolls back every spell p is in the middle of casting.
func (g *Game) abandonCasts(p PlayerID) {
	for _, spell := range ecs.Query[IncompleteSpell](g.world) {
		obj, ok := ecs.Get[Object](g.world, spell)
		if !ok || !obj.HasController || obj.Controller != p {
			continue
		}
		incomplete, _ := ecs.Get[IncompleteSpell](g.world, spell)
		g.rollbackCast(p, spell, incomplete)
	}
}
