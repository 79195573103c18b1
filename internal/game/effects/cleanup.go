package effects

import "github.com/magefree/mage-rules-go/internal/game/ecs"

// CleanupEndOfTurnEffects despawns every entity tagged UntilEndOfTurn and
// returns what was removed.
func CleanupEndOfTurnEffects(w *ecs.World) []ecs.Entity {
	expired := ecs.Query[UntilEndOfTurn](w)
	for _, e := range expired {
		w.Despawn(e)
	}
	return expired
}

// CleanupOrphanedEffects despawns every entity whose AttachedTo target no
// longer exists and returns what was removed. Entities attached to a removed
// entity are only caught by the next call.
func CleanupOrphanedEffects(w *ecs.World) []ecs.Entity {
	var orphans []ecs.Entity
	ecs.Each(w, func(e ecs.Entity, a *AttachedTo) {
		if !w.Contains(a.Target) {
			orphans = append(orphans, e)
		}
	})
	for _, e := range orphans {
		w.Despawn(e)
	}
	return orphans
}
