package mana

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CostKind identifies the kind of a single cost item.
type CostKind int

const (
	// CostGeneric ({1}) can be paid with any mana.
	CostGeneric CostKind = iota
	// CostColored ({G}) can be paid only with mana of its color.
	CostColored
	// CostColorless ({C}) can be paid only with colorless mana.
	CostColorless
	// CostHybrid ({W/U}) can be paid with either color.
	CostHybrid
	// CostMonoHybrid ({2/B}) can be paid with one mana of its color. The
	// two-generic alternative is not modeled.
	CostMonoHybrid
	// CostPhyrexian ({R/P}) can be paid with one mana of its color. Paying
	// life instead is not modeled.
	CostPhyrexian
	// CostSnow ({S}) can be paid with any mana from a snow source.
	CostSnow
	// CostX ({X}) is a variable generic amount chosen on cast.
	CostX
)

var costKindNames = map[CostKind]string{
	CostGeneric:    "Generic",
	CostColored:    "Colored",
	CostColorless:  "Colorless",
	CostHybrid:     "Hybrid",
	CostMonoHybrid: "MonoHybrid",
	CostPhyrexian:  "Phyrexian",
	CostSnow:       "Snow",
	CostX:          "X",
}

func (k CostKind) String() string {
	if name, ok := costKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// CostItem is one symbol of a mana cost.
type CostItem struct {
	Kind CostKind
	// Color is the required color for colored, mono-hybrid, Phyrexian and the
	// first half of hybrid items.
	Color ManaType
	// Alt is the second half of a hybrid item.
	Alt ManaType
}

// Generic returns a {1} cost item.
func Generic() CostItem { return CostItem{Kind: CostGeneric} }

// Colored returns a single colored cost item.
func Colored(t ManaType) CostItem { return CostItem{Kind: CostColored, Color: t} }

// CanBePaidWith reports whether m satisfies the item on its own.
func (c CostItem) CanBePaidWith(m Mana) bool {
	switch c.Kind {
	case CostGeneric:
		return true
	case CostColored, CostMonoHybrid, CostPhyrexian:
		return m.Type == c.Color
	case CostColorless:
		return m.Type == ManaColorless
	case CostHybrid:
		return m.Type == c.Color || m.Type == c.Alt
	case CostSnow:
		return m.Snow
	}
	return false
}

func (c CostItem) String() string {
	switch c.Kind {
	case CostGeneric:
		return "{1}"
	case CostColored:
		return "{" + c.Color.Symbol() + "}"
	case CostColorless:
		return "{C}"
	case CostHybrid:
		return "{" + c.Color.Symbol() + "/" + c.Alt.Symbol() + "}"
	case CostMonoHybrid:
		return "{2/" + c.Color.Symbol() + "}"
	case CostPhyrexian:
		return "{" + c.Color.Symbol() + "/P}"
	case CostSnow:
		return "{S}"
	case CostX:
		return "{X}"
	}
	return "{?}"
}

// Cost is an ordered sequence of cost items. Payment is positional: item i
// must be paid before item i+1.
type Cost []CostItem

// ManaValue returns the number of mana the cost requires with X = 0.
func (c Cost) ManaValue() int {
	n := 0
	for _, item := range c {
		switch item.Kind {
		case CostX:
		case CostMonoHybrid:
			n += 2
		default:
			n++
		}
	}
	return n
}

// WithoutX returns a copy of c with every {X} item removed.
func (c Cost) WithoutX() Cost {
	out := make(Cost, 0, len(c))
	for _, item := range c {
		if item.Kind != CostX {
			out = append(out, item)
		}
	}
	return out
}

// String returns the cost in symbol form, collapsing leading generic items
// into a single number.
func (c Cost) String() string {
	var b strings.Builder
	generic := 0
	flush := func() {
		if generic > 0 {
			fmt.Fprintf(&b, "{%d}", generic)
			generic = 0
		}
	}
	for _, item := range c {
		if item.Kind == CostGeneric {
			generic++
			continue
		}
		flush()
		b.WriteString(item.String())
	}
	flush()
	return b.String()
}

var symbolPattern = regexp.MustCompile(`\{([^}]+)\}`)

// ParseCost parses a mana cost string (e.g., "{1}{G}", "{2}{R}{R}", "{X}{R}")
// into items in the order written. A numeric symbol {N} expands into N
// generic items.
// Supports:
// - Generic: {1}, {2}, {3}, etc.
// - Colored: {W}, {U}, {B}, {R}, {G}, colorless {C}, snow {S}
// - X costs: {X}
// - Hybrid: {W/U}, monocolored hybrid {2/B}, Phyrexian {G/P}
func ParseCost(costStr string) (Cost, error) {
	costStr = strings.TrimSpace(costStr)
	if costStr == "" {
		return Cost{}, nil
	}

	matches := symbolPattern.FindAllStringSubmatchIndex(costStr, -1)
	cost := Cost{}
	end := 0
	for _, match := range matches {
		if match[0] != end {
			return nil, fmt.Errorf("unexpected text %q in mana cost %q", costStr[end:match[0]], costStr)
		}
		end = match[1]

		symbol := strings.ToUpper(strings.TrimSpace(costStr[match[2]:match[3]]))
		items, err := parseSymbol(symbol)
		if err != nil {
			return nil, err
		}
		cost = append(cost, items...)
	}
	if end != len(costStr) {
		return nil, fmt.Errorf("unexpected text %q in mana cost %q", costStr[end:], costStr)
	}
	return cost, nil
}

// MustParseCost is ParseCost for literals known to be valid.
func MustParseCost(costStr string) Cost {
	cost, err := ParseCost(costStr)
	if err != nil {
		panic(err)
	}
	return cost
}

func parseSymbol(symbol string) ([]CostItem, error) {
	switch symbol {
	case "X":
		return []CostItem{{Kind: CostX}}, nil
	case "C":
		return []CostItem{{Kind: CostColorless}}, nil
	case "S":
		return []CostItem{{Kind: CostSnow}}, nil
	}
	if t, ok := parseColor(symbol); ok {
		return []CostItem{Colored(t)}, nil
	}
	if num, err := strconv.Atoi(symbol); err == nil && num >= 0 {
		items := make([]CostItem, num)
		for i := range items {
			items[i] = Generic()
		}
		return items, nil
	}
	if strings.Contains(symbol, "/") {
		item, err := parseHybrid(symbol)
		if err != nil {
			return nil, err
		}
		return []CostItem{item}, nil
	}
	return nil, fmt.Errorf("unknown mana symbol: {%s}", symbol)
}

// parseHybrid parses a hybrid mana symbol like "W/U", "2/B" or "G/P".
func parseHybrid(symbol string) (CostItem, error) {
	parts := strings.Split(symbol, "/")
	if len(parts) != 2 {
		return CostItem{}, fmt.Errorf("unknown mana symbol: {%s}", symbol)
	}
	left := strings.TrimSpace(parts[0])
	right := strings.TrimSpace(parts[1])

	if left == "2" {
		if t, ok := parseColor(right); ok {
			return CostItem{Kind: CostMonoHybrid, Color: t}, nil
		}
	}
	if right == "P" {
		if t, ok := parseColor(left); ok {
			return CostItem{Kind: CostPhyrexian, Color: t}, nil
		}
	}
	a, okA := parseColor(left)
	b, okB := parseColor(right)
	if okA && okB && a != b {
		return CostItem{Kind: CostHybrid, Color: a, Alt: b}, nil
	}
	return CostItem{}, fmt.Errorf("unknown mana symbol: {%s}", symbol)
}

func parseColor(s string) (ManaType, bool) {
	switch s {
	case "W":
		return ManaWhite, true
	case "U":
		return ManaBlue, true
	case "B":
		return ManaBlack, true
	case "R":
		return ManaRed, true
	case "G":
		return ManaGreen, true
	}
	return "", false
}
