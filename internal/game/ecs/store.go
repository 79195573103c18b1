package ecs

// Store is a sparse set holding one component type. Components live in a
// dense slice; removal swaps the last element into the vacated slot.
type Store[T any] struct {
	dense    []T
	entities []Entity
	sparse   map[Entity]int
}

func newStore[T any]() *Store[T] {
	return &Store[T]{
		sparse: make(map[Entity]int),
	}
}

func (s *Store[T]) set(e Entity, c T) {
	if i, ok := s.sparse[e]; ok {
		s.dense[i] = c
		return
	}
	s.sparse[e] = len(s.dense)
	s.dense = append(s.dense, c)
	s.entities = append(s.entities, e)
}

func (s *Store[T]) get(e Entity) (*T, bool) {
	i, ok := s.sparse[e]
	if !ok {
		return nil, false
	}
	return &s.dense[i], true
}

func (s *Store[T]) has(e Entity) bool {
	_, ok := s.sparse[e]
	return ok
}

func (s *Store[T]) remove(e Entity) bool {
	i, ok := s.sparse[e]
	if !ok {
		return false
	}
	last := len(s.dense) - 1
	if i != last {
		s.dense[i] = s.dense[last]
		s.entities[i] = s.entities[last]
		s.sparse[s.entities[i]] = i
	}
	var zero T
	s.dense[last] = zero
	s.dense = s.dense[:last]
	s.entities = s.entities[:last]
	delete(s.sparse, e)
	return true
}

func (s *Store[T]) count() int {
	return len(s.dense)
}
