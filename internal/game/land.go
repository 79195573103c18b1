package game

import (
	"fmt"

	"github.com/magefree/mage-rules-go/internal/catalog"
	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"go.uber.org/zap"
)

// LandsPerTurn is how many lands a player may play each turn.
const LandsPerTurn = 1

// basicLandMana maps basic land types to the mana their intrinsic ability
// produces.
var basicLandMana = map[catalog.Subtype]mana.ManaType{
	"plains":   mana.ManaWhite,
	"island":   mana.ManaBlue,
	"swamp":    mana.ManaBlack,
	"mountain": mana.ManaRed,
	"forest":   mana.ManaGreen,
	"wastes":   mana.ManaColorless,
}

// playLand is the play-land special action. It does not use the stack and
// the player keeps priority.
func (g *Game) playLand(p PlayerID, land ecs.Entity) error {
	if g.ActivePlayer() != p {
		return fmt.Errorf("%w: %s", ErrNotActivePlayer, p)
	}
	if !g.Step().IsMain() {
		return fmt.Errorf("%w: step is %s", ErrNotMainPhase, g.Step())
	}
	if err := g.requireState(p, CategoryPriority); err != nil {
		return err
	}
	if !g.zones[StackZone].IsEmpty() {
		return ErrStackNotEmpty
	}
	obj, ok := ecs.Get[Object](g.world, land)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchObject, land)
	}
	if !obj.IsLand() {
		return fmt.Errorf("%w: %s", ErrNotALand, obj.Name)
	}
	if obj.Zone != HandZone(p) {
		return fmt.Errorf("%w: %s is in %s", ErrNotInHand, obj.Name, obj.Zone)
	}
	player, _ := g.players.Get(p)
	if player.LandsPlayedThisTurn >= LandsPerTurn {
		return ErrLandAlreadyPlayed
	}

	player.LandsPlayedThisTurn++
	g.moveObjectToZone(land, BattlefieldZone)
	g.emit(rules.EventLandPlayed, p, land)
	return nil
}

// ActivateManaAbility taps a basic land p controls for one mana, which goes
// into p's pool. It may be used whenever p has priority or is paying for a
// spell.
func (g *Game) ActivateManaAbility(p PlayerID, land ecs.Entity) (mana.ManaID, error) {
	if g.state.Complete {
		return 0, ErrGameOver
	}
	if !g.state.IsWaiting(p, CategoryPriority) && !g.state.IsWaiting(p, CategorySpellManaAbilities) {
		return 0, fmt.Errorf("%w: state is %s", ErrWrongState, g.state)
	}
	obj, ok := ecs.Get[Object](g.world, land)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoSuchObject, land)
	}
	if !obj.HasController || obj.Controller != p {
		return 0, fmt.Errorf("%w: %s", ErrNotController, obj.Name)
	}
	perm, ok := ecs.Get[Permanent](g.world, land)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotPermanent, obj.Name)
	}
	if perm.Tapped {
		return 0, fmt.Errorf("%w: %s", ErrTapped, obj.Name)
	}
	produced, ok := landMana(obj)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoManaAbility, obj.Name)
	}

	perm.Tapped = true
	g.emit(rules.EventTapped, p, land)
	player, _ := g.players.Get(p)
	id := player.ManaPool.Add(produced)
	g.logger.Debug("mana added",
		zap.String("game_id", g.id),
		zap.Stringer("player", p),
		zap.Stringer("source", land),
		zap.Stringer("mana", produced),
	)
	return id, nil
}

// ManaAbility reports the mana land would produce if tapped for mana.
func (g *Game) ManaAbility(land ecs.Entity) (mana.Mana, bool) {
	obj, ok := ecs.Get[Object](g.world, land)
	if !ok {
		return mana.Mana{}, false
	}
	return landMana(obj)
}

func landMana(obj *Object) (mana.Mana, bool) {
	if !obj.IsLand() {
		return mana.Mana{}, false
	}
	for _, st := range obj.Subtypes {
		if t, ok := basicLandMana[st]; ok {
			snow := false
			for _, sup := range obj.Supertypes {
				if sup == catalog.SupertypeSnow {
					snow = true
				}
			}
			return mana.Mana{Type: t, Snow: snow}, true
		}
	}
	return mana.Mana{}, false
}

// AddMana puts mana straight into p's pool, as an effect would.
func (g *Game) AddMana(p PlayerID, t mana.ManaType, amount int) []mana.ManaID {
	player, ok := g.players.Get(p)
	if !ok {
		return nil
	}
	return player.ManaPool.AddType(t, amount)
}
