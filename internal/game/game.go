// Package game is the rules engine: the game aggregate, its zone index, the
// action dispatcher and the turn, priority, casting and combat workflows.
//
// A Game is not safe for concurrent use. Every call runs to completion,
// including state-based actions, before the next one may start.
package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/magefree/mage-rules-go/internal/catalog"
	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/ecs"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"github.com/magefree/mage-rules-go/internal/game/watchers"
	"go.uber.org/zap"
)

const (
	DefaultStartingLife = 20
	DefaultMaxHandSize  = 7
)

// Options configures a new match.
type Options struct {
	// Players lists player names in turn order. At least two are required.
	Players      []string
	StartingLife int
	MaxHandSize  int
	// Catalog defaults to the embedded catalog.
	Catalog *catalog.Catalog
	Logger  *zap.Logger
	// Seed drives library shuffling.
	Seed uint64
}

// Game is the aggregate root of one match.
type Game struct {
	id      string
	logger  *zap.Logger
	catalog *catalog.Catalog

	world   *ecs.World
	zones   map[ZoneID]*Zone
	players *Players
	turn    *rules.TurnManager

	state  State
	passed map[PlayerID]bool
	// cleanupAgain is set when state-based actions were performed during a
	// cleanup step, which then repeats.
	cleanupAgain bool

	events        *rules.EventBus
	watchers      *rules.WatcherRegistry
	spellsCast    *watchers.SpellsCastWatcher
	cardsDrawn    *watchers.CardsDrawnWatcher
	creaturesDied *watchers.CreaturesDiedWatcher
	resolver      *effects.ExprResolver

	maxHandSize int
	timestamp   uint64
	rng         *rand.Rand
}

// New creates a match at turn 1, upkeep step, with the first player holding
// priority.
func New(opts Options) (*Game, error) {
	if len(opts.Players) < 2 {
		return nil, fmt.Errorf("a match needs at least 2 players, got %d", len(opts.Players))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.StartingLife <= 0 {
		opts.StartingLife = DefaultStartingLife
	}
	if opts.MaxHandSize <= 0 {
		opts.MaxHandSize = DefaultMaxHandSize
	}
	if opts.Catalog == nil {
		c, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("load default catalog: %w", err)
		}
		opts.Catalog = c
	}
	resolver, err := effects.NewExprResolver()
	if err != nil {
		return nil, err
	}

	players := newPlayers(opts.Players, opts.StartingLife)
	g := &Game{
		id:          uuid.New().String(),
		logger:      opts.Logger,
		catalog:     opts.Catalog,
		world:       ecs.NewWorld(),
		zones:       newZones(players.IDs()),
		players:     players,
		turn:        rules.NewTurnManager(players.Len()),
		passed:      make(map[PlayerID]bool),
		events:      rules.NewEventBus(),
		watchers:    rules.NewWatcherRegistry(),
		resolver:    resolver,
		maxHandSize: opts.MaxHandSize,
		rng:         rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}
	watchers.Register(g.watchers)
	g.spellsCast = g.watchers.Get(watchers.SpellsCastKey).(*watchers.SpellsCastWatcher)
	g.cardsDrawn = g.watchers.Get(watchers.CardsDrawnKey).(*watchers.CardsDrawnWatcher)
	g.creaturesDied = g.watchers.Get(watchers.CreaturesDiedKey).(*watchers.CreaturesDiedWatcher)
	g.events.Subscribe(g.watchers.Notify)
	g.state = waiting(g.ActivePlayer(), CategoryPriority)

	g.logger.Debug("game created",
		zap.String("game_id", g.id),
		zap.Strings("players", opts.Players),
		zap.Int("starting_life", opts.StartingLife),
	)
	return g, nil
}

// ID returns the match ID.
func (g *Game) ID() string { return g.id }

// Catalog returns the card catalog the match was created with.
func (g *Game) Catalog() *catalog.Catalog { return g.catalog }

// State returns the protocol state.
func (g *Game) State() State { return g.state }

// Step returns the current step.
func (g *Game) Step() rules.Step { return g.turn.CurrentStep() }

// Phase returns the current phase.
func (g *Game) Phase() rules.Phase { return g.turn.CurrentPhase() }

// TurnNumber counts laps of the turn order, starting at 1.
func (g *Game) TurnNumber() int { return g.turn.TurnNumber() }

// ActivePlayer returns the player whose turn it is.
func (g *Game) ActivePlayer() PlayerID { return PlayerID(g.turn.ActiveIndex()) }

// Players returns every player in turn order.
func (g *Game) Players() []*Player { return g.players.All() }

// Player returns the player with the given ID.
func (g *Game) Player(id PlayerID) (*Player, bool) { return g.players.Get(id) }

// PriorityPlayer returns the player holding priority, if any.
func (g *Game) PriorityPlayer() (PlayerID, bool) {
	if g.state.Complete || g.state.Category != CategoryPriority {
		return 0, false
	}
	return g.state.Player, true
}

// Zone returns the zone with the given ID.
func (g *Game) Zone(id ZoneID) (*Zone, bool) {
	z, ok := g.zones[id.canonical()]
	return z, ok
}

// Object returns a copy of e's Object component.
func (g *Game) Object(e ecs.Entity) (Object, bool) {
	obj, ok := ecs.Get[Object](g.world, e)
	if !ok {
		return Object{}, false
	}
	return *obj, true
}

// Permanent returns a copy of e's Permanent component.
func (g *Game) Permanent(e ecs.Entity) (Permanent, bool) {
	perm, ok := ecs.Get[Permanent](g.world, e)
	if !ok {
		return Permanent{}, false
	}
	return *perm, true
}

// Exists reports whether e is a live entity.
func (g *Game) Exists(e ecs.Entity) bool { return g.world.Contains(e) }

// Subscribe registers a listener for every rules event and returns a handle
// for Unsubscribe.
func (g *Game) Subscribe(listener rules.Listener) int { return g.events.Subscribe(listener) }

// Unsubscribe removes a listener registered with Subscribe.
func (g *Game) Unsubscribe(handle int) { g.events.Unsubscribe(handle) }

// SpellsCastThisTurn returns how many spells p has finished casting this turn.
func (g *Game) SpellsCastThisTurn(p PlayerID) int { return g.spellsCast.Count(int(p)) }

// CardsDrawnThisTurn returns how many cards p has drawn this turn.
func (g *Game) CardsDrawnThisTurn(p PlayerID) int { return g.cardsDrawn.Count(int(p)) }

// CreaturesDiedThisTurn returns how many creatures owned by p died this turn.
func (g *Game) CreaturesDiedThisTurn(p PlayerID) int { return g.creaturesDied.AmountByOwner(int(p)) }

// Watcher returns the registered watcher with the given key, or nil.
func (g *Game) Watcher(key string) rules.Watcher { return g.watchers.Get(key) }

// DoAction validates and applies one player action. Rejected actions are
// logged and leave the game unchanged; callers inspect State afterwards.
func (g *Game) DoAction(player PlayerID, action Action) {
	if err := g.do(player, action); err != nil {
		name := "nil"
		if action != nil {
			name = action.Name()
		}
		g.logger.Warn("action rejected",
			zap.String("game_id", g.id),
			zap.Stringer("player", player),
			zap.String("action", name),
			zap.Error(err),
		)
	}
}

// Apply is DoAction for callers that handle the rejection themselves: the
// error is returned instead of logged.
func (g *Game) Apply(player PlayerID, action Action) error {
	return g.do(player, action)
}

func (g *Game) do(player PlayerID, action Action) error {
	if g.state.Complete {
		return ErrGameOver
	}
	p, ok := g.players.Get(player)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, player)
	}
	if p.HasLost {
		return fmt.Errorf("%w: %s", ErrPlayerLost, player)
	}

	switch a := action.(type) {
	case Concede:
		return g.concede(player)
	case PassPriority:
		return g.passPriority(player)
	case ChooseAttackers:
		return g.chooseAttackers(player, a.Attackers)
	case ChooseBlockers:
		return g.chooseBlockers(player, a.Blockers)
	case PlayLand:
		return g.playLand(player, a.Card)
	case StartCastingSpell:
		return g.startCastingSpell(player, a.Spell)
	case PayIncompleteSpellMana:
		return g.paySpellMana(player, a.Spell, a.Mana)
	case FinishCastingSpell:
		return g.finishCastingSpell(player, a.Spell)
	case CancelCastingSpell:
		return g.cancelCastingSpell(player, a.Spell)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}
}

// nextTimestamp orders effects by creation.
func (g *Game) nextTimestamp() uint64 {
	g.timestamp++
	return g.timestamp
}

func (g *Game) publish(ev rules.Event) {
	ev.Turn = g.turn.TurnNumber()
	ev.Step = g.turn.CurrentStep()
	g.events.Publish(ev)
}

func (g *Game) emit(eventType rules.EventType, player PlayerID, object ecs.Entity) {
	g.publish(rules.NewEvent(eventType, int(player), object))
}

// CreateCard instantiates a catalog card into zone under owner.
func (g *Game) CreateCard(id catalog.CardID, zone ZoneID, owner PlayerID) (ecs.Entity, error) {
	desc, ok := g.catalog.Card(id)
	if !ok {
		return ecs.Nil, fmt.Errorf("%w: card id %d", ErrUnknownCard, id)
	}
	if _, ok := g.players.Get(owner); !ok {
		return ecs.Nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, owner)
	}
	zone = zone.canonical()
	dest, ok := g.zones[zone]
	if !ok {
		return ecs.Nil, fmt.Errorf("%w: %s", ErrUnknownZone, zone)
	}

	obj := Object{
		Name:       desc.Name,
		Types:      append(catalog.Types(nil), desc.Types...),
		Supertypes: append([]catalog.Supertype(nil), desc.Supertypes...),
		Subtypes:   append([]catalog.Subtype(nil), desc.Subtypes...),
		ManaCost:   desc.ManaCost,
		HasCost:    desc.HasCost,
		Zone:       zone,
		Owner:      owner,
	}
	if desc.PT != nil {
		pt := *desc.PT
		obj.PT = &pt
	}
	if controlledIn(zone) {
		obj.Controller = owner
		obj.HasController = true
	}

	e := g.world.Spawn()
	ecs.Insert(g.world, e, obj)
	ecs.Insert(g.world, e, Card{ID: id})
	dest.push(e)
	if zone == BattlefieldZone {
		ecs.Insert(g.world, e, Permanent{})
		g.emit(rules.EventEntersTheBattlefield, owner, e)
	}
	return e, nil
}

// CreateCardByName instantiates the named catalog card.
func (g *Game) CreateCardByName(name string, zone ZoneID, owner PlayerID) (ecs.Entity, error) {
	id, ok := g.catalog.Lookup(name)
	if !ok {
		return ecs.Nil, fmt.Errorf("%w: %q", ErrUnknownCard, name)
	}
	return g.CreateCard(id, zone, owner)
}

func controlledIn(zone ZoneID) bool {
	return zone.Kind == ZoneStack || zone.Kind == ZoneBattlefield
}

// moveObjectToZone moves e to zone, keeping the zone index, the controller
// and the Permanent component consistent. Moving to the current zone or to a
// zone that does not exist is a logged no-op.
func (g *Game) moveObjectToZone(e ecs.Entity, zone ZoneID) bool {
	zone = zone.canonical()
	obj, ok := ecs.Get[Object](g.world, e)
	if !ok {
		g.logger.Warn("move of unknown object", zap.String("game_id", g.id), zap.Stringer("object", e))
		return false
	}
	dest, ok := g.zones[zone]
	if !ok {
		g.logger.Warn("move to unknown zone",
			zap.String("game_id", g.id),
			zap.Stringer("object", e),
			zap.Stringer("zone", zone),
		)
		return false
	}
	from := obj.Zone
	if from == zone {
		g.logger.Debug("object already in zone",
			zap.String("game_id", g.id),
			zap.Stringer("object", e),
			zap.Stringer("zone", zone),
		)
		return false
	}
	src, ok := g.zones[from]
	if !ok || !src.remove(e) {
		panic(fmt.Sprintf("zone index out of sync: %s not in %s", e, from))
	}

	obj.Zone = zone
	obj.Controller = obj.Owner
	obj.HasController = controlledIn(zone)
	dest.push(e)

	if from == BattlefieldZone {
		g.leaveBattlefield(e)
	}
	if from == StackZone {
		ecs.Remove[IncompleteSpell](g.world, e)
	}
	if zone == BattlefieldZone {
		ecs.Insert(g.world, e, Permanent{})
	}

	ev := rules.NewEvent(rules.EventZoneChange, int(obj.Owner), e)
	ev.Data = from.String() + "->" + zone.String()
	g.publish(ev)

	switch {
	case zone == BattlefieldZone:
		g.emit(rules.EventEntersTheBattlefield, obj.Controller, e)
	case from == BattlefieldZone && zone.Kind == ZoneGraveyard:
		dies := rules.NewEvent(rules.EventPermanentDies, int(obj.Owner), e)
		if obj.IsCreature() {
			dies.Data = "creature"
		}
		g.publish(dies)
	}
	return true
}

// leaveBattlefield strips everything that only exists on the battlefield.
func (g *Game) leaveBattlefield(e ecs.Entity) {
	ecs.Remove[Permanent](g.world, e)
	ecs.Remove[Damage](g.world, e)
	ecs.Remove[counters.Counters](g.world, e)
	g.removeFromCombat(e)
}

// RebuildZoneIndex recomputes every zone's membership from the objects' zone
// attributes. Objects that stay in a zone keep their relative order; newly
// indexed objects are appended in entity order.
func (g *Game) RebuildZoneIndex() {
	byZone := make(map[ZoneID][]ecs.Entity, len(g.zones))
	seen := make(map[ecs.Entity]bool)
	for id, z := range g.zones {
		for _, e := range z.members {
			obj, ok := ecs.Get[Object](g.world, e)
			if ok && obj.Zone == id && !seen[e] {
				byZone[id] = append(byZone[id], e)
				seen[e] = true
			}
		}
	}
	ecs.Each(g.world, func(e ecs.Entity, obj *Object) {
		if seen[e] {
			return
		}
		if _, ok := g.zones[obj.Zone]; !ok {
			panic(fmt.Sprintf("object %s is in unknown zone %s", e, obj.Zone))
		}
		byZone[obj.Zone] = append(byZone[obj.Zone], e)
	})
	for id, z := range g.zones {
		z.members = byZone[id]
	}
}

// ValidateZoneIndex reports the first disagreement between the zone index and
// the objects' zone attributes.
func (g *Game) ValidateZoneIndex() error {
	indexed := make(map[ecs.Entity]ZoneID)
	for id, z := range g.zones {
		for _, e := range z.members {
			if prev, dup := indexed[e]; dup {
				return fmt.Errorf("%s is indexed in both %s and %s", e, prev, id)
			}
			indexed[e] = id
		}
	}
	var err error
	ecs.Each(g.world, func(e ecs.Entity, obj *Object) {
		if err != nil {
			return
		}
		id, ok := indexed[e]
		switch {
		case !ok:
			err = fmt.Errorf("%s (zone %s) is not indexed", e, obj.Zone)
		case id != obj.Zone:
			err = fmt.Errorf("%s is indexed in %s but its zone is %s", e, id, obj.Zone)
		}
		delete(indexed, e)
	})
	if err != nil {
		return err
	}
	for e, id := range indexed {
		return fmt.Errorf("%s is indexed in %s but is not an object", e, id)
	}
	return nil
}
