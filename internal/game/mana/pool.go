package mana

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ManaType represents a type of mana.
type ManaType string

const (
	ManaWhite     ManaType = "WHITE"
	ManaBlue      ManaType = "BLUE"
	ManaBlack     ManaType = "BLACK"
	ManaRed       ManaType = "RED"
	ManaGreen     ManaType = "GREEN"
	ManaColorless ManaType = "COLORLESS"
)

// Colors lists the five colored mana types in WUBRG order.
var Colors = []ManaType{ManaWhite, ManaBlue, ManaBlack, ManaRed, ManaGreen}

// IsColored reports whether t is one of the five colors.
func (t ManaType) IsColored() bool {
	switch t {
	case ManaWhite, ManaBlue, ManaBlack, ManaRed, ManaGreen:
		return true
	}
	return false
}

// Symbol returns the single-letter cost symbol for t.
func (t ManaType) Symbol() string {
	switch t {
	case ManaWhite:
		return "W"
	case ManaBlue:
		return "U"
	case ManaBlack:
		return "B"
	case ManaRed:
		return "R"
	case ManaGreen:
		return "G"
	case ManaColorless:
		return "C"
	}
	return "?"
}

// Mana is one discrete unit of mana in a pool.
type Mana struct {
	Type ManaType
	// Snow marks mana produced by a snow source.
	Snow bool
}

func (m Mana) String() string {
	if m.Snow {
		return "{" + m.Type.Symbol() + "}(snow)"
	}
	return "{" + m.Type.Symbol() + "}"
}

// ManaID is a stable handle for a unit in a Pool. IDs are never reused by the
// pool that issued them, so spending one unit never renumbers another.
type ManaID uint32

var (
	// ErrUnknownMana is returned when a ManaID is not in the pool.
	ErrUnknownMana = errors.New("mana not in pool")
	// ErrDuplicateMana is returned when a payment names the same unit twice.
	ErrDuplicateMana = errors.New("mana referenced more than once")
)

// Unit pairs a mana unit with its handle.
type Unit struct {
	ID   ManaID
	Mana Mana
}

// Pool is a player's mana pool: an arena of mana units addressed by ManaID.
type Pool struct {
	mu sync.RWMutex

	units  map[ManaID]Mana
	nextID ManaID
}

// NewPool creates a new empty mana pool.
func NewPool() *Pool {
	return &Pool{
		units: make(map[ManaID]Mana),
	}
}

// Add puts one unit into the pool and returns its handle.
func (p *Pool) Add(m Mana) ManaID {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.units[id] = m
	return id
}

// AddType adds amount units of plain mana of type t.
func (p *Pool) AddType(t ManaType, amount int) []ManaID {
	if amount <= 0 {
		return nil
	}
	ids := make([]ManaID, 0, amount)
	for i := 0; i < amount; i++ {
		ids = append(ids, p.Add(Mana{Type: t}))
	}
	return ids
}

// Get returns the unit behind id.
func (p *Pool) Get(id ManaID) (Mana, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.units[id]
	return m, ok
}

// Len returns the number of unspent units.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.units)
}

// IsEmpty reports whether the pool holds no mana.
func (p *Pool) IsEmpty() bool {
	return p.Len() == 0
}

// Units returns every unit ordered by handle.
func (p *Pool) Units() []Unit {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Unit, 0, len(p.units))
	for id, m := range p.units {
		out = append(out, Unit{ID: id, Mana: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns how many units of type t are in the pool.
func (p *Pool) Count(t ManaType) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, m := range p.units {
		if m.Type == t {
			n++
		}
	}
	return n
}

// Spend removes every listed unit. Either all are removed or, if any id is
// unknown or repeated, none are.
func (p *Pool) Spend(ids []ManaID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen := make(map[ManaID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateMana, id)
		}
		seen[id] = struct{}{}
		if _, ok := p.units[id]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownMana, id)
		}
	}
	for _, id := range ids {
		delete(p.units, id)
	}
	return nil
}

// Empty removes all mana from the pool.
func (p *Pool) Empty() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.units = make(map[ManaID]Mana)
}

// Copy creates a deep copy of the pool. Handles are preserved.
func (p *Pool) Copy() *Pool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cp := &Pool{
		units:  make(map[ManaID]Mana, len(p.units)),
		nextID: p.nextID,
	}
	for id, m := range p.units {
		cp.units[id] = m
	}
	return cp
}
