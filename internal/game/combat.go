package game

import (
	"fmt"

	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"go.uber.org/zap"
)

// defendingPlayer is the player after the active player in turn order.
func (g *Game) defendingPlayer() PlayerID {
	return g.players.After(g.ActivePlayer())
}

// AttackersOn returns the creatures attacking p, in battlefield order.
func (g *Game) AttackersOn(p PlayerID) []ecs.Entity {
	var out []ecs.Entity
	for _, e := range g.zones[BattlefieldZone].members {
		if attacking, ok := ecs.Get[Attacking](g.world, e); ok && attacking.Defender == p {
			out = append(out, e)
		}
	}
	return out
}

// checkCombatant validates a creature p wants to attack or block with.
func (g *Game) checkCombatant(p PlayerID, e ecs.Entity) error {
	obj, ok := ecs.Get[Object](g.world, e)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchObject, e)
	}
	if !obj.HasController || obj.Controller != p {
		return fmt.Errorf("%w: %s (%s)", ErrNotController, obj.Name, e)
	}
	perm, ok := ecs.Get[Permanent](g.world, e)
	if !ok {
		return fmt.Errorf("%w: %s (%s)", ErrNotPermanent, obj.Name, e)
	}
	if !obj.IsCreature() {
		return fmt.Errorf("%w: %s (%s)", ErrNotCreature, obj.Name, e)
	}
	if perm.Tapped {
		return fmt.Errorf("%w: %s (%s)", ErrTapped, obj.Name, e)
	}
	return nil
}

// chooseAttackers declares attackers all at once. Nothing is tapped unless
// every attacker is legal.
func (g *Game) chooseAttackers(p PlayerID, attackers []ecs.Entity) error {
	if err := g.requireState(p, CategoryChooseAttackers); err != nil {
		return err
	}
	seen := make(map[ecs.Entity]bool, len(attackers))
	for _, e := range attackers {
		if seen[e] {
			return fmt.Errorf("%w: %s", ErrAlreadyDeclared, e)
		}
		seen[e] = true
		if err := g.checkCombatant(p, e); err != nil {
			return err
		}
	}

	defender := g.defendingPlayer()
	for _, e := range attackers {
		perm, _ := ecs.Get[Permanent](g.world, e)
		perm.Tapped = true
		ecs.Insert(g.world, e, Attacking{Defender: defender})
		g.emit(rules.EventTapped, p, e)
	}
	g.publish(rules.NewEventWithAmount(rules.EventAttackersDeclared, int(p), ecs.Nil, len(attackers)))
	g.logger.Debug("attackers declared",
		zap.String("game_id", g.id),
		zap.Stringer("player", p),
		zap.Int("count", len(attackers)),
	)

	g.startPriorityRound(g.ActivePlayer())
	return nil
}

// chooseBlockers declares blockers all at once. Each blocker blocks one
// creature attacking the declaring player.
func (g *Game) chooseBlockers(p PlayerID, blocks []Block) error {
	if err := g.requireState(p, CategoryChooseBlockers); err != nil {
		return err
	}
	seen := make(map[ecs.Entity]bool, len(blocks))
	for _, b := range blocks {
		if seen[b.Blocker] {
			return fmt.Errorf("%w: %s", ErrAlreadyDeclared, b.Blocker)
		}
		seen[b.Blocker] = true
		if err := g.checkCombatant(p, b.Blocker); err != nil {
			return err
		}
		attacking, ok := ecs.Get[Attacking](g.world, b.Attacker)
		if !ok || attacking.Defender != p {
			return fmt.Errorf("%w: %s", ErrNotAttacking, b.Attacker)
		}
	}

	for _, b := range blocks {
		ecs.Insert(g.world, b.Blocker, Blocking{Attacker: b.Attacker})
		if blocked, ok := ecs.Get[Blocked](g.world, b.Attacker); ok {
			blocked.By = append(blocked.By, b.Blocker)
		} else {
			ecs.Insert(g.world, b.Attacker, Blocked{By: []ecs.Entity{b.Blocker}})
		}
	}
	g.publish(rules.NewEventWithAmount(rules.EventBlockersDeclared, int(p), ecs.Nil, len(blocks)))

	g.startPriorityRound(g.ActivePlayer())
	return nil
}

type combatDamage struct {
	source ecs.Entity
	// target is Nil when damage goes to player.
	target ecs.Entity
	player PlayerID
	amount int
}

// dealCombatDamage assigns all combat damage first and then deals it at once.
// A blocked attacker assigns lethal damage to each blocker in declaration
// order and the rest to the last one.
func (g *Game) dealCombatDamage() {
	var assigned []combatDamage

	ecs.Each(g.world, func(attacker ecs.Entity, a *Attacking) {
		power := g.combatPower(attacker)
		blocked, isBlocked := ecs.Get[Blocked](g.world, attacker)
		if !isBlocked {
			if power > 0 {
				assigned = append(assigned, combatDamage{source: attacker, player: a.Defender, amount: power})
			}
			return
		}

		var blockers []ecs.Entity
		for _, b := range blocked.By {
			if ecs.Has[Permanent](g.world, b) {
				blockers = append(blockers, b)
			}
		}
		remaining := power
		for i, b := range blockers {
			amount := remaining
			if i < len(blockers)-1 {
				amount = min(remaining, g.lethalDamage(b))
			}
			if amount > 0 {
				assigned = append(assigned, combatDamage{source: attacker, target: b, amount: amount})
			}
			remaining -= amount
		}
	})

	ecs.Each(g.world, func(blocker ecs.Entity, b *Blocking) {
		if !ecs.Has[Permanent](g.world, b.Attacker) {
			return
		}
		if power := g.combatPower(blocker); power > 0 {
			assigned = append(assigned, combatDamage{source: blocker, target: b.Attacker, amount: power})
		}
	})

	for _, d := range assigned {
		if d.target.IsNil() {
			g.damagePlayer(d.player, d.amount, d.source)
		} else {
			g.damagePermanent(d.target, d.amount, d.source)
		}
	}
}

func (g *Game) combatPower(e ecs.Entity) int {
	pt, ok := g.QueryPT(e)
	if !ok || pt.Power < 0 {
		return 0
	}
	return pt.Power
}

// lethalDamage is the damage still needed to destroy e.
func (g *Game) lethalDamage(e ecs.Entity) int {
	pt, ok := g.QueryPT(e)
	if !ok {
		return 0
	}
	marked := 0
	if d, ok := ecs.Get[Damage](g.world, e); ok {
		marked = d.Amount
	}
	return max(0, pt.Toughness-marked)
}

func (g *Game) damagePlayer(p PlayerID, amount int, source ecs.Entity) {
	player, ok := g.players.Get(p)
	if !ok || amount <= 0 {
		return
	}
	player.Life -= amount
	g.publish(rules.NewEventWithAmount(rules.EventDamagedPlayer, int(p), source, amount))
	g.publish(rules.NewEventWithAmount(rules.EventLostLife, int(p), source, amount))
}

func (g *Game) damagePermanent(e ecs.Entity, amount int, source ecs.Entity) {
	if amount <= 0 || !ecs.Has[Permanent](g.world, e) {
		return
	}
	if d, ok := ecs.Get[Damage](g.world, e); ok {
		d.Amount += amount
	} else {
		ecs.Insert(g.world, e, Damage{Amount: amount})
	}
	controller := rules.NoPlayer
	if obj, ok := ecs.Get[Object](g.world, e); ok {
		controller = int(obj.Controller)
	}
	ev := rules.NewEventWithAmount(rules.EventDamagedPermanent, controller, e, amount)
	ev.Data = source.String()
	g.publish(ev)
}

// endCombat removes every creature from combat.
func (g *Game) endCombat() {
	for _, e := range ecs.Query[Attacking](g.world) {
		ecs.Remove[Attacking](g.world, e)
	}
	for _, e := range ecs.Query[Blocked](g.world) {
		ecs.Remove[Blocked](g.world, e)
	}
	for _, e := range ecs.Query[Blocking](g.world) {
		ecs.Remove[Blocking](g.world, e)
	}
}

func (g *Game) removeFromCombat(e ecs.Entity) {
	ecs.Remove[Attacking](g.world, e)
	ecs.Remove[Blocked](g.world, e)
	ecs.Remove[Blocking](g.world, e)
}
