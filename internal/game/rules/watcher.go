package rules

import (
	"sort"
	"sync"
)

// WatcherScope defines the scope of a watcher's tracking.
type WatcherScope int

const (
	// WatcherScopeGame tracks events for the entire game.
	WatcherScopeGame WatcherScope = iota
	// WatcherScopePlayer tracks events for a specific player.
	WatcherScopePlayer
)

// String returns the string representation of the watcher scope.
func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeGame:
		return "GAME"
	case WatcherScopePlayer:
		return "PLAYER"
	default:
		return "UNKNOWN"
	}
}

// Watcher observes events and tracks a condition, typically for one turn.
type Watcher interface {
	// Watch is called for every event published while the watcher is registered.
	Watch(event Event)
	// Reset clears the tracked state; called at the start of each turn.
	Reset()
	ConditionMet() bool
	Scope() WatcherScope
	// Key is unique within a registry.
	Key() string
}

// BaseWatcher provides the condition flag and identity shared by watchers.
type BaseWatcher struct {
	scope     WatcherScope
	key       string
	condition bool
}

// NewBaseWatcher creates a new base watcher with the specified scope and key.
func NewBaseWatcher(scope WatcherScope, key string) BaseWatcher {
	return BaseWatcher{scope: scope, key: key}
}

func (bw *BaseWatcher) Scope() WatcherScope { return bw.scope }
func (bw *BaseWatcher) Key() string         { return bw.key }
func (bw *BaseWatcher) ConditionMet() bool  { return bw.condition }

// SetCondition sets the condition flag.
func (bw *BaseWatcher) SetCondition(condition bool) {
	bw.condition = condition
}

// Reset clears the condition.
func (bw *BaseWatcher) Reset() {
	bw.condition = false
}

// WatcherRegistry manages watchers for a game.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
}

// NewWatcherRegistry creates a new watcher registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{
		watchers: make(map[string]Watcher),
	}
}

// Add registers a watcher, replacing any watcher with the same key.
func (wr *WatcherRegistry) Add(watcher Watcher) {
	if watcher == nil {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.watchers[watcher.Key()] = watcher
}

// Remove removes a watcher from the registry.
func (wr *WatcherRegistry) Remove(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	delete(wr.watchers, key)
}

// Get retrieves a watcher by key.
func (wr *WatcherRegistry) Get(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.watchers[key]
}

// ByScope returns the watchers of a given scope ordered by key.
func (wr *WatcherRegistry) ByScope(scope WatcherScope) []Watcher {
	var out []Watcher
	for _, w := range wr.ordered() {
		if w.Scope() == scope {
			out = append(out, w)
		}
	}
	return out
}

// Reset resets every watcher.
func (wr *WatcherRegistry) Reset() {
	for _, w := range wr.ordered() {
		w.Reset()
	}
}

// Notify delivers an event to every watcher in key order.
func (wr *WatcherRegistry) Notify(event Event) {
	for _, w := range wr.ordered() {
		w.Watch(event)
	}
}

func (wr *WatcherRegistry) ordered() []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	keys := make([]string, 0, len(wr.watchers))
	for k := range wr.watchers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Watcher, len(keys))
	for i, k := range keys {
		out[i] = wr.watchers[k]
	}
	return out
}
