// Package ecs provides a sparse object store: opaque entity handles with an
// independently attachable set of typed components.
package ecs

import (
	"fmt"
	"reflect"
	"sort"
)

// Entity is an opaque handle into a World. The generation distinguishes a
// live entity from an earlier one that occupied the same slot.
type Entity struct {
	index      uint32
	generation uint32
}

// Nil is the zero handle. It never refers to a live entity.
var Nil = Entity{}

// IsNil reports whether e is the zero handle.
func (e Entity) IsNil() bool {
	return e == Nil
}

// Index returns the slot used by the entity. Slots are reused after despawn.
func (e Entity) Index() uint32 {
	return e.index
}

func (e Entity) String() string {
	if e.IsNil() {
		return "entity(nil)"
	}
	return fmt.Sprintf("entity(%d.%d)", e.index, e.generation)
}

// anyStore provides type-erased operations so the World can manage all
// component tables uniformly, for example when despawning.
type anyStore interface {
	remove(e Entity) bool
	has(e Entity) bool
	count() int
}

// World owns every entity and every component table.
type World struct {
	generations []uint32 // per slot; odd = live
	free        []uint32
	live        int
	stores      map[reflect.Type]anyStore
}

// NewWorld constructs an empty world.
func NewWorld() *World {
	return &World{
		// slot 0 is reserved so that the zero Entity is never live
		generations: []uint32{0},
		stores:      make(map[reflect.Type]anyStore),
	}
}

// Spawn allocates a new entity with no components.
func (w *World) Spawn() Entity {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.generations))
		w.generations = append(w.generations, 0)
	}
	w.generations[idx]++
	w.live++
	return Entity{index: idx, generation: w.generations[idx]}
}

// Contains reports whether e refers to a live entity.
func (w *World) Contains(e Entity) bool {
	if e.index == 0 || int(e.index) >= len(w.generations) {
		return false
	}
	gen := w.generations[e.index]
	return gen == e.generation && gen%2 == 1
}

// Despawn removes e and all of its components. It returns false if e was not
// live.
func (w *World) Despawn(e Entity) bool {
	if !w.Contains(e) {
		return false
	}
	for _, store := range w.stores {
		store.remove(e)
	}
	w.generations[e.index]++
	w.free = append(w.free, e.index)
	w.live--
	return true
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.live
}

// Entities returns every live entity ordered by slot.
func (w *World) Entities() []Entity {
	out := make([]Entity, 0, w.live)
	for idx := 1; idx < len(w.generations); idx++ {
		gen := w.generations[idx]
		if gen%2 == 1 {
			out = append(out, Entity{index: uint32(idx), generation: gen})
		}
	}
	return out
}

func storeFor[T any](w *World) *Store[T] {
	key := reflect.TypeFor[T]()
	if s, ok := w.stores[key]; ok {
		return s.(*Store[T])
	}
	s := newStore[T]()
	w.stores[key] = s
	return s
}

// Insert attaches component c to e, replacing any existing component of the
// same type. It returns false if e is not live.
func Insert[T any](w *World, e Entity, c T) bool {
	if !w.Contains(e) {
		return false
	}
	storeFor[T](w).set(e, c)
	return true
}

// Get returns a pointer to e's component of type T. The pointer is valid until
// the next structural change to that component table.
func Get[T any](w *World, e Entity) (*T, bool) {
	if !w.Contains(e) {
		return nil, false
	}
	return storeFor[T](w).get(e)
}

// Has reports whether e carries a component of type T.
func Has[T any](w *World, e Entity) bool {
	if !w.Contains(e) {
		return false
	}
	return storeFor[T](w).has(e)
}

// Remove detaches e's component of type T and reports whether one was present.
func Remove[T any](w *World, e Entity) bool {
	if !w.Contains(e) {
		return false
	}
	return storeFor[T](w).remove(e)
}

// Count returns how many entities carry a component of type T.
func Count[T any](w *World) int {
	return storeFor[T](w).count()
}

// Query returns, ordered by slot, every entity carrying a component of type T.
// The returned slice is a copy, so callers may mutate the world while ranging
// over it.
func Query[T any](w *World) []Entity {
	s := storeFor[T](w)
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}

// Each calls fn for every entity carrying T, ordered by slot. fn must not add
// or remove components of type T.
func Each[T any](w *World, fn func(e Entity, c *T)) {
	s := storeFor[T](w)
	for _, e := range Query[T](w) {
		if c, ok := s.get(e); ok {
			fn(e, c)
		}
	}
}

// With filters entities down to those that also carry a component of type T.
func With[T any](w *World, entities []Entity) []Entity {
	s := storeFor[T](w)
	out := entities[:0:0]
	for _, e := range entities {
		if s.has(e) {
			out = append(out, e)
		}
	}
	return out
}
