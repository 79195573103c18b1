// Package counters tracks named counters on permanents and players.
package counters

import (
	"sort"
	"strconv"
	"strings"
)

// CounterType names a kind of counter.
type CounterType string

const (
	CounterTypePoison  CounterType = "poison"
	CounterTypeLoyalty CounterType = "loyalty"
	CounterTypeCharge  CounterType = "charge"

	// Power/toughness boost counters
	CounterTypeP1P1 CounterType = "+1/+1"
	CounterTypeM1M1 CounterType = "-1/-1"
	CounterTypeP1P0 CounterType = "+1/+0"
	CounterTypeP0P1 CounterType = "+0/+1"
)

// Counter is a named count, as returned by Counters.All.
type Counter struct {
	Type  CounterType
	Count int
}

// Counters is a collection of counters. The zero value is ready to use.
type Counters struct {
	counts map[CounterType]int
}

// New creates a Counters collection with the given initial counters.
func New(initial ...Counter) Counters {
	var cs Counters
	for _, c := range initial {
		cs.Add(c.Type, c.Count)
	}
	return cs
}

// Add adds amount counters of type t. Non-positive amounts are ignored.
func (cs *Counters) Add(t CounterType, amount int) {
	if amount <= 0 {
		return
	}
	if cs.counts == nil {
		cs.counts = make(map[CounterType]int)
	}
	cs.counts[t] += amount
}

// Remove removes up to amount counters of type t. It reports whether any
// counters were removed.
func (cs *Counters) Remove(t CounterType, amount int) bool {
	if amount <= 0 {
		return false
	}
	n, ok := cs.counts[t]
	if !ok {
		return false
	}
	if n <= amount {
		delete(cs.counts, t)
	} else {
		cs.counts[t] = n - amount
	}
	return true
}

// Count returns how many counters of type t there are.
func (cs Counters) Count(t CounterType) int {
	return cs.counts[t]
}

// Has reports whether at least one counter of type t is present.
func (cs Counters) Has(t CounterType) bool {
	return cs.counts[t] > 0
}

// Total returns the total number of all counters.
func (cs Counters) Total() int {
	total := 0
	for _, n := range cs.counts {
		total += n
	}
	return total
}

// All returns every counter sorted by type name.
func (cs Counters) All() []Counter {
	out := make([]Counter, 0, len(cs.counts))
	for t, n := range cs.counts {
		out = append(out, Counter{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Copy creates a deep copy of the collection.
func (cs Counters) Copy() Counters {
	var cp Counters
	for t, n := range cs.counts {
		cp.Add(t, n)
	}
	return cp
}

// BoostTotals sums every power/toughness boost counter ("+1/+1", "-1/-1",
// "+2/+0", ...) weighted by its count.
func (cs Counters) BoostTotals() (power, toughness int) {
	for t, n := range cs.counts {
		p, tough, ok := ParseBoost(t)
		if !ok {
			continue
		}
		power += p * n
		toughness += tough * n
	}
	return power, toughness
}

// ParseBoost parses a boost counter name such as "+1/+1" into its
// power/toughness deltas.
func ParseBoost(t CounterType) (power, toughness int, ok bool) {
	left, right, found := strings.Cut(string(t), "/")
	if !found {
		return 0, 0, false
	}
	power, ok = parseBoostValue(left)
	if !ok {
		return 0, 0, false
	}
	toughness, ok = parseBoostValue(right)
	if !ok {
		return 0, 0, false
	}
	return power, toughness, true
}

// BoostType returns the counter type for a boost of the given size.
func BoostType(power, toughness int) CounterType {
	return CounterType(formatBoost(power) + "/" + formatBoost(toughness))
}

// parseBoostValue requires an explicit sign so that names like "1/2" are not
// mistaken for boosts.
func parseBoostValue(s string) (int, bool) {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return 0, false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatBoost(value int) string {
	if value < 0 {
		return strconv.Itoa(value)
	}
	return "+" + strconv.Itoa(value)
}
