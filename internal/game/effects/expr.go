package effects

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Variables available to characteristic-defining expressions.
const (
	VarGraveyardCards       = "graveyard_cards"
	VarGraveyardCreatures   = "graveyard_creatures"
	VarBattlefieldCreatures = "battlefield_creatures"
	VarControllerLife       = "controller_life"
	VarControllerHand       = "controller_hand"
)

// Vars is the game-state context an expression is evaluated against.
type Vars struct {
	// GraveyardCards counts cards in all graveyards.
	GraveyardCards int
	// GraveyardCreatures counts creature cards in all graveyards.
	GraveyardCreatures   int
	BattlefieldCreatures int
	ControllerLife       int
	ControllerHand       int
}

func (v Vars) activation() map[string]any {
	return map[string]any{
		VarGraveyardCards:       int64(v.GraveyardCards),
		VarGraveyardCreatures:   int64(v.GraveyardCreatures),
		VarBattlefieldCreatures: int64(v.BattlefieldCreatures),
		VarControllerLife:       int64(v.ControllerLife),
		VarControllerHand:       int64(v.ControllerHand),
	}
}

// ExprResolver evaluates power/toughness expressions with CEL. Compiled
// programs are cached per expression.
type ExprResolver struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewExprResolver creates a CEL environment declaring every game-state
// variable as an int.
func NewExprResolver() (*ExprResolver, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarGraveyardCards, cel.IntType),
		cel.Variable(VarGraveyardCreatures, cel.IntType),
		cel.Variable(VarBattlefieldCreatures, cel.IntType),
		cel.Variable(VarControllerLife, cel.IntType),
		cel.Variable(VarControllerHand, cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &ExprResolver{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Compile checks that expr is a valid integer expression and caches it.
func (r *ExprResolver) Compile(expr string) error {
	_, err := r.program(expr)
	return err
}

// Eval evaluates expr against vars.
func (r *ExprResolver) Eval(expr string, vars Vars) (int, error) {
	prg, err := r.program(expr)
	if err != nil {
		return 0, err
	}
	out, _, err := prg.Eval(vars.activation())
	if err != nil {
		return 0, fmt.Errorf("CEL eval error in %q: %w", expr, err)
	}
	n, ok := out.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("expression %q evaluated to %T, want int", expr, out.Value())
	}
	return int(n), nil
}

func (r *ExprResolver) program(expr string) (cel.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prg, ok := r.programs[expr]; ok {
		return prg, nil
	}

	ast, issues := r.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error in %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.IntType) {
		return nil, fmt.Errorf("expression %q has type %s, want int", expr, ast.OutputType())
	}
	prg, err := r.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program error in %q: %w", expr, err)
	}
	r.programs[expr] = prg
	return prg, nil
}
