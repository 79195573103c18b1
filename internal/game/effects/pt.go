package effects

import (
	"fmt"
	"strconv"
	"strings"
)

// PT is a power/toughness pair.
type PT struct {
	Power     int
	Toughness int
}

func (pt PT) String() string {
	return fmt.Sprintf("%d/%d", pt.Power, pt.Toughness)
}

// PTValue is one half of a printed power/toughness: either a fixed number or
// an expression evaluated against the game state (e.g. "*").
type PTValue struct {
	Fixed int
	Expr  string
}

// ParsePTValue reads a printed value. Integers become fixed values; anything
// else is kept as an expression.
func ParsePTValue(s string) (PTValue, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PTValue{}, fmt.Errorf("empty power/toughness value")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return PTValue{Fixed: n}, nil
	}
	return PTValue{Expr: s}, nil
}

// IsExpr reports whether the value depends on game state.
func (v PTValue) IsExpr() bool {
	return v.Expr != ""
}

func (v PTValue) String() string {
	if v.IsExpr() {
		return v.Expr
	}
	return strconv.Itoa(v.Fixed)
}

// PTCharacteristic is an object's own power/toughness before any effects.
type PTCharacteristic struct {
	Power     PTValue
	Toughness PTValue
}

// FixedPT returns a characteristic with constant values.
func FixedPT(power, toughness int) PTCharacteristic {
	return PTCharacteristic{
		Power:     PTValue{Fixed: power},
		Toughness: PTValue{Fixed: toughness},
	}
}

// IsDynamic reports whether either half is characteristic-defining.
func (c PTCharacteristic) IsDynamic() bool {
	return c.Power.IsExpr() || c.Toughness.IsExpr()
}

func (c PTCharacteristic) String() string {
	return c.Power.String() + "/" + c.Toughness.String()
}

// Resolve computes the base value. vars is only consulted for expression
// halves, and r may be nil when the characteristic is fixed.
func (c PTCharacteristic) Resolve(r *ExprResolver, vars Vars) (PT, error) {
	power, err := c.Power.resolve(r, vars)
	if err != nil {
		return PT{}, fmt.Errorf("power: %w", err)
	}
	toughness, err := c.Toughness.resolve(r, vars)
	if err != nil {
		return PT{}, fmt.Errorf("toughness: %w", err)
	}
	return PT{Power: power, Toughness: toughness}, nil
}

func (v PTValue) resolve(r *ExprResolver, vars Vars) (int, error) {
	if !v.IsExpr() {
		return v.Fixed, nil
	}
	if r == nil {
		return 0, fmt.Errorf("no resolver for expression %q", v.Expr)
	}
	return r.Eval(v.Expr, vars)
}
