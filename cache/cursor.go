package cache

import "slices"

// Cursor is a resumable traversal over the slot table that accepts an
// explicit remove directive between steps. The key sequence is captured
// when Walk is called, so removing the current slot never perturbs which
// slots are visited next: every snapshot key is yielded exactly once, in
// insertion order. This makes a single-pass filter/compact safe:
//
//	c := store.Walk()
//	for id, v, ok := c.Next(); ok; id, v, ok = c.Next() {
//	    if v == nil || unwanted(id, v) {
//	        c.Remove()
//	    }
//	}
//
// A Cursor holds no lock between steps. It is not safe against another
// in-flight traversal mutating the same store.
type Cursor[K comparable, V any] struct {
	store *Store[K, V]
	keys  []K
	pos   int
	cur   K
	on    bool
}

// Walk starts a traversal over the store's current contents.
func (s *Store[K, V]) Walk() *Cursor[K, V] {
	s.mu.Lock()
	keys := slices.Clone(s.order)
	s.mu.Unlock()

	return &Cursor[K, V]{store: s, keys: keys}
}

// Next advances to the next snapshot key and resolves its slot lazily,
// without pruning. The resolved object is nil when the referent has been
// reclaimed or the slot was removed since the snapshot. Returns false once
// the snapshot is exhausted.
func (c *Cursor[K, V]) Next() (K, *V, bool) {
	if c.pos >= len(c.keys) {
		var zero K
		c.on = false
		return zero, nil, false
	}

	c.cur = c.keys[c.pos]
	c.pos++
	c.on = true
	return c.cur, c.store.peek(c.cur), true
}

// Remove is the remove directive: it deletes the current slot, with Remove
// semantics, before the traversal resumes. Valid once per step; calls
// before the first Next, after exhaustion, or repeated within one step are
// no-ops, as is removing a slot that is already gone.
func (c *Cursor[K, V]) Remove() {
	if !c.on {
		return
	}
	c.on = false
	c.store.Remove(c.cur)
}
