package game

import "fmt"

// AdvanceWithNoActions makes the player the game is waiting on do nothing:
// pass priority or declare no attackers or blockers. It fails while a spell
// is being paid for.
func AdvanceWithNoActions(g *Game) error {
	s := g.State()
	if s.Complete {
		return nil
	}
	switch s.Category {
	case CategoryPriority:
		return g.do(s.Player, PassPriority{})
	case CategoryChooseAttackers:
		return g.do(s.Player, ChooseAttackers{})
	case CategoryChooseBlockers:
		return g.do(s.Player, ChooseBlockers{})
	default:
		return fmt.Errorf("%w: cannot advance without acting in %s", ErrWrongState, s)
	}
}

// AdvanceUntil calls AdvanceWithNoActions until done reports true, the game
// ends, or limit actions have been taken. It reports whether done was met.
func AdvanceUntil(g *Game, limit int, done func(*Game) bool) (bool, error) {
	for range limit {
		if done(g) {
			return true, nil
		}
		if g.State().Complete {
			return false, nil
		}
		if err := AdvanceWithNoActions(g); err != nil {
			return false, err
		}
	}
	return done(g), nil
}
