// Package sim plays matches without human input. The autopilot makes simple,
// always-legal decisions for whichever player the game is waiting on.
package sim

import (
	"fmt"
	"sort"

	"github.com/magefree/mage-rules-go/internal/game"
	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"go.uber.org/zap"
)

// Autopilot plays lands, casts the most expensive permanent it can pay for
// from untapped lands, attacks with every untapped creature and blocks when
// the blocker survives.
type Autopilot struct {
	logger *zap.Logger
}

// NewAutopilot creates an autopilot. A nil logger discards output.
func NewAutopilot(logger *zap.Logger) *Autopilot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autopilot{logger: logger}
}

// Act takes one decision for the player g is waiting on. It does nothing
// once the game is over. An error means the autopilot proposed an illegal
// action.
func (a *Autopilot) Act(g *game.Game) error {
	s := g.State()
	if s.Complete {
		return nil
	}
	switch s.Category {
	case game.CategoryPriority:
		acted, err := a.mainPhase(g, s.Player)
		if err != nil || acted {
			return err
		}
		return g.Apply(s.Player, game.PassPriority{})
	case game.CategoryChooseAttackers:
		return g.Apply(s.Player, game.ChooseAttackers{Attackers: a.attackers(g, s.Player)})
	case game.CategoryChooseBlockers:
		return g.Apply(s.Player, game.ChooseBlockers{Blockers: a.blocks(g, s.Player)})
	default:
		return fmt.Errorf("autopilot cannot act in %s", s)
	}
}

// mainPhase plays a land or casts a spell when p may do so at sorcery speed.
func (a *Autopilot) mainPhase(g *game.Game, p game.PlayerID) (bool, error) {
	stack, _ := g.Zone(game.StackZone)
	if g.ActivePlayer() != p || !g.Step().IsMain() || !stack.IsEmpty() {
		return false, nil
	}
	hand, _ := g.Zone(game.HandZone(p))
	player, _ := g.Player(p)

	if player.LandsPlayedThisTurn < game.LandsPerTurn {
		for _, e := range hand.Members() {
			if obj, _ := g.Object(e); obj.IsLand() {
				a.logger.Debug("playing land", zap.String("game_id", g.ID()), zap.String("card", obj.Name))
				return true, g.Apply(p, game.PlayLand{Card: e})
			}
		}
	}

	for _, spell := range a.castable(g, hand.Members()) {
		lands, ok := a.planPayment(g, p, spell)
		if !ok {
			continue
		}
		return true, a.cast(g, p, spell, lands)
	}
	return false, nil
}

// castable returns the permanent spells in hand, most expensive first.
func (a *Autopilot) castable(g *game.Game, hand []ecs.Entity) []ecs.Entity {
	var out []ecs.Entity
	for _, e := range hand {
		obj, _ := g.Object(e)
		if obj.HasCost && !obj.IsLand() && obj.IsPermanentCard() {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, _ := g.Object(out[i])
		oj, _ := g.Object(out[j])
		return oi.ManaCost.WithoutX().ManaValue() > oj.ManaCost.WithoutX().ManaValue()
	})
	return out
}

// planPayment picks one untapped land per cost item, with item i paid by
// lands[i]. Specific items are matched first so that generic items do not
// use up a land a colored item needs.
func (a *Autopilot) planPayment(g *game.Game, p game.PlayerID, spell ecs.Entity) ([]ecs.Entity, bool) {
	obj, _ := g.Object(spell)
	cost := obj.ManaCost.WithoutX()

	type source struct {
		land ecs.Entity
		mana mana.Mana
	}
	var sources []source
	bf, _ := g.Zone(game.BattlefieldZone)
	for _, e := range bf.Members() {
		o, _ := g.Object(e)
		perm, _ := g.Permanent(e)
		if o.Controller != p || perm.Tapped {
			continue
		}
		if m, ok := g.ManaAbility(e); ok {
			sources = append(sources, source{land: e, mana: m})
		}
	}
	if len(sources) < len(cost) {
		return nil, false
	}

	lands := make([]ecs.Entity, len(cost))
	used := make([]bool, len(sources))
	assign := func(i int) bool {
		for j, src := range sources {
			if !used[j] && cost[i].CanBePaidWith(src.mana) {
				used[j] = true
				lands[i] = src.land
				return true
			}
		}
		return false
	}
	for i, item := range cost {
		if item.Kind != mana.CostGeneric && !assign(i) {
			return nil, false
		}
	}
	for i, item := range cost {
		if item.Kind == mana.CostGeneric && !assign(i) {
			return nil, false
		}
	}
	return lands, true
}

func (a *Autopilot) cast(g *game.Game, p game.PlayerID, spell ecs.Entity, lands []ecs.Entity) error {
	obj, _ := g.Object(spell)
	if err := g.Apply(p, game.StartCastingSpell{Spell: spell}); err != nil {
		return err
	}
	for _, land := range lands {
		id, err := g.ActivateManaAbility(p, land)
		if err != nil {
			return err
		}
		if err := g.Apply(p, game.PayIncompleteSpellMana{Spell: spell, Mana: id}); err != nil {
			return err
		}
	}
	a.logger.Debug("casting spell",
		zap.String("game_id", g.ID()),
		zap.Stringer("player", p),
		zap.String("card", obj.Name),
	)
	return g.Apply(p, game.FinishCastingSpell{Spell: spell})
}

// creaturesOf returns the untapped creatures p controls.
func creaturesOf(g *game.Game, p game.PlayerID) []ecs.Entity {
	var out []ecs.Entity
	for _, e := range g.QueryCreatures() {
		obj, _ := g.Object(e)
		perm, _ := g.Permanent(e)
		if obj.Controller == p && !perm.Tapped {
			out = append(out, e)
		}
	}
	return out
}

func (a *Autopilot) attackers(g *game.Game, p game.PlayerID) []ecs.Entity {
	var out []ecs.Entity
	for _, e := range creaturesOf(g, p) {
		if pt, ok := g.QueryPT(e); ok && pt.Power > 0 {
			out = append(out, e)
		}
	}
	return out
}

// blocks assigns each attacker at most one blocker that survives it.
func (a *Autopilot) blocks(g *game.Game, p game.PlayerID) []game.Block {
	available := creaturesOf(g, p)
	var out []game.Block
	for _, attacker := range g.AttackersOn(p) {
		attackerPT, _ := g.QueryPT(attacker)
		for i, blocker := range available {
			pt, _ := g.QueryPT(blocker)
			if pt.Toughness-g.DamageOn(blocker) > attackerPT.Power {
				out = append(out, game.Block{Blocker: blocker, Attacker: attacker})
				available = append(available[:i], available[i+1:]...)
				break
			}
		}
	}
	return out
}
