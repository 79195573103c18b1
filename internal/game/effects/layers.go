// Package effects holds power/toughness characteristics, the modifier
// components effects attach to the object store, and the layer pipeline that
// combines them.
package effects

import (
	"sort"

	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/ecs"
)

// Layer is one step of power/toughness resolution.
type Layer int

const (
	// LayerPTDefining is the object's own characteristic, possibly
	// characteristic-defining.
	LayerPTDefining Layer = 1 + iota
	// LayerPTSet applies effects that set power/toughness to a value.
	LayerPTSet
	// LayerPTAdjust applies effects that add to power/toughness.
	LayerPTAdjust
	// LayerPTCounters applies boost counters.
	LayerPTCounters
	// LayerPTSwitch applies effects that switch power and toughness.
	LayerPTSwitch
)

// layerOrder is fixed; each layer is applied to the output of the previous one.
var layerOrder = []Layer{
	LayerPTDefining,
	LayerPTSet,
	LayerPTAdjust,
	LayerPTCounters,
	LayerPTSwitch,
}

var layerNames = map[Layer]string{
	LayerPTDefining: "characteristic",
	LayerPTSet:      "set",
	LayerPTAdjust:   "adjust",
	LayerPTCounters: "counters",
	LayerPTSwitch:   "switch",
}

func (l Layer) String() string {
	if name, ok := layerNames[l]; ok {
		return name
	}
	return "unknown"
}

// SetPT sets the target's power/toughness to Value.
type SetPT struct {
	Target    ecs.Entity
	Value     PT
	Timestamp uint64
}

// AdjustPT adds Adjustment to the target's power/toughness.
type AdjustPT struct {
	Target     ecs.Entity
	Adjustment PT
	Timestamp  uint64
}

// SwitchPT switches the target's power and toughness.
type SwitchPT struct {
	Target    ecs.Entity
	Timestamp uint64
}

// UntilEndOfTurn tags an entity to be despawned during the cleanup step.
type UntilEndOfTurn struct{}

// AttachedTo anchors an entity to another. When the target no longer exists
// the entity is despawned as a state-based action.
type AttachedTo struct {
	Target ecs.Entity
}

// Modifiers is every active modifier affecting one object, grouped by layer.
type Modifiers struct {
	// Sets is ordered by timestamp. Ties keep store order, which is arbitrary.
	Sets     []SetPT
	Adjusts  []AdjustPT
	Counters PT
	Switches int
}

// Collect gathers the modifiers targeting target. Counters are read from the
// counters.Counters component on target itself.
func Collect(w *ecs.World, target ecs.Entity) Modifiers {
	var m Modifiers

	ecs.Each(w, func(_ ecs.Entity, s *SetPT) {
		if s.Target == target {
			m.Sets = append(m.Sets, *s)
		}
	})
	sort.SliceStable(m.Sets, func(i, j int) bool { return m.Sets[i].Timestamp < m.Sets[j].Timestamp })

	ecs.Each(w, func(_ ecs.Entity, a *AdjustPT) {
		if a.Target == target {
			m.Adjusts = append(m.Adjusts, *a)
		}
	})

	if cs, ok := ecs.Get[counters.Counters](w, target); ok {
		m.Counters.Power, m.Counters.Toughness = cs.BoostTotals()
	}

	ecs.Each(w, func(_ ecs.Entity, s *SwitchPT) {
		if s.Target == target {
			m.Switches++
		}
	})
	return m
}

// Apply runs the layer pipeline over base.
func (m Modifiers) Apply(base PT) PT {
	pt := base
	for _, layer := range layerOrder {
		pt = m.applyLayer(layer, pt)
	}
	return pt
}

func (m Modifiers) applyLayer(layer Layer, pt PT) PT {
	switch layer {
	case LayerPTSet:
		if n := len(m.Sets); n > 0 {
			pt = m.Sets[n-1].Value
		}
	case LayerPTAdjust:
		for _, a := range m.Adjusts {
			pt.Power += a.Adjustment.Power
			pt.Toughness += a.Adjustment.Toughness
		}
	case LayerPTCounters:
		pt.Power += m.Counters.Power
		pt.Toughness += m.Counters.Toughness
	case LayerPTSwitch:
		if m.Switches%2 == 1 {
			pt.Power, pt.Toughness = pt.Toughness, pt.Power
		}
	}
	return pt
}
