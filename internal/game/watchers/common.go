// Package watchers holds the per-turn watchers registered with every game.
package watchers

import (
	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// Registry keys.
const (
	SpellsCastKey        = "SpellsCastWatcher"
	CreaturesDiedKey     = "CreaturesDiedWatcher"
	CardsDrawnKey        = "CardsDrawnWatcher"
	PermanentsEnteredKey = "PermanentsEnteredWatcher"
)

// SpellsCastWatcher tracks spells cast by players.
type SpellsCastWatcher struct {
	rules.BaseWatcher
	spellsCast map[int][]ecs.Entity // player -> spells
}

// NewSpellsCastWatcher creates a new spells cast watcher.
func NewSpellsCastWatcher() *SpellsCastWatcher {
	return &SpellsCastWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, SpellsCastKey),
		spellsCast:  make(map[int][]ecs.Entity),
	}
}

// Watch implements the Watcher interface.
func (w *SpellsCastWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventSpellCast || event.Player == rules.NoPlayer {
		return
	}
	w.spellsCast[event.Player] = append(w.spellsCast[event.Player], event.Object)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *SpellsCastWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.spellsCast = make(map[int][]ecs.Entity)
}

// SpellsCast returns the spells player cast this turn, in order.
func (w *SpellsCastWatcher) SpellsCast(player int) []ecs.Entity {
	return append([]ecs.Entity(nil), w.spellsCast[player]...)
}

// Count returns how many spells player cast this turn.
func (w *SpellsCastWatcher) Count(player int) int {
	return len(w.spellsCast[player])
}

// CreaturesDiedWatcher counts creatures put into a graveyard from the
// battlefield, by owner.
type CreaturesDiedWatcher struct {
	rules.BaseWatcher
	byOwner map[int]int
}

// NewCreaturesDiedWatcher creates a new creatures died watcher.
func NewCreaturesDiedWatcher() *CreaturesDiedWatcher {
	return &CreaturesDiedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, CreaturesDiedKey),
		byOwner:     make(map[int]int),
	}
}

// Watch implements the Watcher interface. Dies events carry the owner.
func (w *CreaturesDiedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventPermanentDies || event.Data != "creature" {
		return
	}
	w.byOwner[event.Player]++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CreaturesDiedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.byOwner = make(map[int]int)
}

// AmountByOwner returns how many of owner's creatures died this turn.
func (w *CreaturesDiedWatcher) AmountByOwner(owner int) int {
	return w.byOwner[owner]
}

// TotalAmount returns how many creatures died this turn.
func (w *CreaturesDiedWatcher) TotalAmount() int {
	total := 0
	for _, n := range w.byOwner {
		total += n
	}
	return total
}

// CardsDrawnWatcher counts cards drawn by each player.
type CardsDrawnWatcher struct {
	rules.BaseWatcher
	drawn map[int]int
}

// NewCardsDrawnWatcher creates a new cards drawn watcher.
func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	return &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopePlayer, CardsDrawnKey),
		drawn:       make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventDrewCard {
		return
	}
	w.drawn[event.Player]++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsDrawnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.drawn = make(map[int]int)
}

// Count returns how many cards player drew this turn.
func (w *CardsDrawnWatcher) Count(player int) int {
	return w.drawn[player]
}

// PermanentsEnteredWatcher records permanents entering the battlefield, by
// controller.
type PermanentsEnteredWatcher struct {
	rules.BaseWatcher
	entered map[int][]ecs.Entity
}

// NewPermanentsEnteredWatcher creates a new permanents entered watcher.
func NewPermanentsEnteredWatcher() *PermanentsEnteredWatcher {
	return &PermanentsEnteredWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, PermanentsEnteredKey),
		entered:     make(map[int][]ecs.Entity),
	}
}

// Watch implements the Watcher interface.
func (w *PermanentsEnteredWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventEntersTheBattlefield {
		return
	}
	w.entered[event.Player] = append(w.entered[event.Player], event.Object)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *PermanentsEnteredWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.entered = make(map[int][]ecs.Entity)
}

// PermanentsEntered returns what entered under controller this turn.
func (w *PermanentsEnteredWatcher) PermanentsEntered(controller int) []ecs.Entity {
	return append([]ecs.Entity(nil), w.entered[controller]...)
}

// Register adds every common watcher to registry.
func Register(registry *rules.WatcherRegistry) {
	registry.Add(NewSpellsCastWatcher())
	registry.Add(NewCreaturesDiedWatcher())
	registry.Add(NewCardsDrawnWatcher())
	registry.Add(NewPermanentsEnteredWatcher())
}
