package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magefree/mage-rules-go/internal/game/ecs"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Game/Turn events
	EventBeginTurn   EventType = "BEGIN_TURN"
	EventStepChanged EventType = "STEP_CHANGED"
	EventEmptyMana   EventType = "EMPTY_MANA_POOL"

	// Zone events
	EventZoneChange EventType = "ZONE_CHANGE"
	EventDrewCard   EventType = "DREW_CARD"

	// Land/Spell events
	EventLandPlayed    EventType = "LAND_PLAYED"
	EventSpellCast     EventType = "SPELL_CAST"
	EventSpellResolved EventType = "SPELL_RESOLVED"
	EventCastCanceled  EventType = "CAST_CANCELED"

	// Permanent events
	EventTapped               EventType = "TAPPED"
	EventUntapped             EventType = "UNTAPPED"
	EventEntersTheBattlefield EventType = "ENTERS_THE_BATTLEFIELD"
	EventPermanentDies        EventType = "DIES"

	// Combat events
	EventAttackersDeclared EventType = "DECLARED_ATTACKERS"
	EventBlockersDeclared  EventType = "DECLARED_BLOCKERS"
	EventDamagedPlayer     EventType = "DAMAGED_PLAYER"
	EventDamagedPermanent  EventType = "DAMAGED_PERMANENT"

	// Player events
	EventLostLife   EventType = "LOST_LIFE"
	EventPlayerLost EventType = "LOST"
	EventGameOver   EventType = "GAME_OVER"

	// State-based actions event
	EventStateBasedActions EventType = "STATE_BASED_ACTIONS"
)

// NoPlayer marks an event that does not concern a particular player.
const NoPlayer = -1

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type      EventType
	ID        string     // Unique event ID
	Turn      int        // Turn number when the event occurred
	Step      Step       // Step when the event occurred
	Player    int        // Turn-order index of the player concerned, or NoPlayer
	Object    ecs.Entity // Object concerned, if any
	Amount    int        // Numeric value (damage, life, count)
	Data      string     // Additional string data, e.g. a zone name
	Timestamp time.Time
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // empty for all events
	callback  Listener
}

// EventBus provides a synchronous publish/subscribe implementation with type
// filtering. Listeners run in subscription order.
type EventBus struct {
	mu         sync.RWMutex
	subs       []subscription
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.add("", listener)
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	return bus.add(eventType, listener)
}

func (bus *EventBus) add(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, eventType: eventType, callback: listener})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subs {
		if sub.handle == handle {
			bus.subs = append(bus.subs[:i:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to all matching listeners synchronously. A
// listener may subscribe or unsubscribe; the change applies to the next event.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := make([]subscription, len(bus.subs))
	copy(subs, bus.subs)
	bus.mu.RUnlock()

	for _, sub := range subs {
		if sub.eventType == "" || sub.eventType == event.Type {
			sub.callback(event)
		}
	}
}

// NewEvent creates a new event with a fresh ID and timestamp.
func NewEvent(eventType EventType, player int, object ecs.Entity) Event {
	return Event{
		Type:      eventType,
		ID:        uuid.NewString(),
		Player:    player,
		Object:    object,
		Timestamp: time.Now(),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, player int, object ecs.Entity, amount int) Event {
	evt := NewEvent(eventType, player, object)
	evt.Amount = amount
	return evt
}
