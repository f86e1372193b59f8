package cache

import "maps"

// Data returns the attribute bag for the object currently bound to id. The
// identifier is resolved through Get first, so a dead slot is pruned on the
// way. Returns an empty bag when the slot is absent, the referent is gone,
// or no bag was ever attached — never an error.
func (s *Store[K, V]) Data(id K) Bag {
	v := s.Get(id)
	if v == nil {
		return Bag{}
	}
	return s.DataOf(v)
}

// DataOf returns the attribute bag attached to v's identity. Because the
// side-data table is keyed by identity rather than by identifier, every
// identifier bound to v observes the same bag. The returned bag is a copy;
// mutating it does not write through.
func (s *Store[K, V]) DataOf(v *V) Bag {
	if v == nil {
		return Bag{}
	}

	// Wrapping v again yields a handle equal to the stored one, so the
	// handle doubles as the identity token.
	ref := s.maker.Make(v)

	s.mu.Lock()
	bag := s.side[ref]
	s.mu.Unlock()

	if len(bag) == 0 {
		return Bag{}
	}
	return maps.Clone(bag)
}
