// Package cache implements a keyed object cache whose entries do not keep
// their referents alive. Each slot binds an identifier to a weak handle on
// an object owned elsewhere, so entries become naturally invalid once
// nothing else references the object. Alongside the slot table, a side-data
// table associates an attribute bag with an object's identity (not with any
// identifier); side entries live exactly as long as the object does.
//
//	store, err := cache.New[string, Session](&cfg)
//	store.Set("sess-1", sess, cache.Bag{"owner": "alice"})
//	if s := store.Get("sess-1"); s != nil {
//	    // still alive somewhere else
//	}
//
// Dead slots are pruned lazily: a Get that observes a reclaimed referent
// removes the slot as a side effect, and Clean sweeps the whole table once.
// Exists reports structural presence regardless of liveness; Valid reports
// presence plus liveness. The two deliberately disagree for a slot whose
// referent is gone but not yet pruned, as do Len and Count.
package cache

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/weakcache/observability"
	"github.com/tailored-agentic-units/weakcache/weakref"
)

// Bag is the attribute bag attached to an object's identity: an open
// string-keyed mapping with heterogeneous values.
type Bag map[string]any

// Store is a keyed cache of weak handles. A Store assumes a single logical
// owner; it takes an internal lock only because reclamation callbacks from
// a weakref.Runtime maker arrive on a runtime goroutine. Concurrent
// traversals of one store remain undefined behavior.
type Store[K comparable, V any] struct {
	id       string
	maker    weakref.Maker[V]
	observer observability.Observer
	keyOK    func(K) bool

	mu    sync.Mutex
	slots map[K]weakref.Ref[V]
	order []K // insertion order of live slot keys
	side  map[weakref.Ref[V]]Bag
}

// Option configures a Store after config-driven initialization.
type Option[K comparable, V any] func(*Store[K, V])

// WithMaker overrides the default weakref.Runtime maker. Tests and hosts
// with explicit lifetime management inject a weakref.Manual here.
func WithMaker[K comparable, V any](m weakref.Maker[V]) Option[K, V] {
	return func(s *Store[K, V]) { s.maker = m }
}

// WithObserver overrides the config-resolved observer.
func WithObserver[K comparable, V any](o observability.Observer) Option[K, V] {
	return func(s *Store[K, V]) { s.observer = o }
}

// WithKeyCheck overrides the default key check, which rejects the zero
// value of K. Stores keyed by integers where 0 is a legitimate identifier
// supply their own predicate here.
func WithKeyCheck[K comparable, V any](valid func(K) bool) Option[K, V] {
	return func(s *Store[K, V]) { s.keyOK = valid }
}

// New creates an empty Store from configuration. The observer is resolved
// by name through the observability registry; an empty name means no
// observation. Functional options applied after initialization can override
// the maker, observer, or key check.
func New[K comparable, V any](cfg *Config, opts ...Option[K, V]) (*Store[K, V], error) {
	if cfg == nil {
		cfg = &Config{}
	}

	observer := observability.Observer(observability.NoOpObserver{})
	if cfg.Observer != "" {
		obs, err := observability.GetObserver(cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		observer = obs
	}

	s := &Store[K, V]{
		id:       uuid.Must(uuid.NewV7()).String(),
		maker:    weakref.Runtime[V]{},
		observer: observer,
		keyOK:    nonZeroKey[K],
		slots:    make(map[K]weakref.Ref[V], max(cfg.Capacity, 0)),
		side:     make(map[weakref.Ref[V]]Bag),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the store's unique instance identifier.
func (s *Store[K, V]) ID() string {
	return s.id
}

// Set binds id to a fresh weak handle on v, overwriting any existing slot.
// Overwriting keeps the slot's original position in insertion order. When a
// bag is given it is written to the side-data table under v's identity,
// replacing any bag previously attached to v (by this or any other id).
// Returns ErrInvalidKey for an invalid key; never fails otherwise.
func (s *Store[K, V]) Set(id K, v *V, data ...Bag) error {
	if !s.keyOK(id) {
		return fmt.Errorf("%w: %v", ErrInvalidKey, id)
	}

	ref := s.maker.Make(v)

	s.mu.Lock()
	if _, exists := s.slots[id]; !exists {
		s.order = append(s.order, id)
	}
	s.slots[id] = ref

	if len(data) > 0 && v != nil {
		if _, exists := s.side[ref]; !exists {
			// First bag for this object: drop the entry when the
			// object itself goes away. The callback captures only
			// the handle, never the object.
			s.maker.OnReclaim(v, func() { s.dropSide(ref) })
		}
		s.side[ref] = maps.Clone(data[0])
	}
	s.mu.Unlock()

	s.emit(EventSet, map[string]any{"key": id, "data": len(data) > 0})
	return nil
}

// Get resolves the slot for id. A slot whose referent has been reclaimed is
// removed as a side effect of this read; a missing slot is returned as nil
// with no side effect.
func (s *Store[K, V]) Get(id K) *V {
	s.mu.Lock()
	ref, ok := s.slots[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}

	v := ref.Get()
	if v == nil {
		s.dropSlot(id)
		s.mu.Unlock()
		s.emit(EventPrune, map[string]any{"key": id})
		return nil
	}
	s.mu.Unlock()
	return v
}

// GetRef returns the raw weak handle for id without resolving or pruning,
// or nil if no slot is present.
func (s *Store[K, V]) GetRef(id K) weakref.Ref[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[id]
}

// Exists reports whether a slot is present for id, regardless of whether
// its referent is still alive. Structural check only; never prunes.
func (s *Store[K, V]) Exists(id K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.slots[id]
	return ok
}

// Valid reports whether a slot is present for id and its referent is
// currently alive. Never mutates the store.
func (s *Store[K, V]) Valid(id K) bool {
	return s.peek(id) != nil
}

// Remove resolves the slot for id and deletes it unconditionally, returning
// whatever was resolved: the object, or nil if the slot was absent or its
// referent already reclaimed. The side-data entry for the object, if any,
// stays; side data is bound to the object's lifetime, not to any slot.
func (s *Store[K, V]) Remove(id K) *V {
	s.mu.Lock()
	ref, ok := s.slots[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}

	v := ref.Get()
	s.dropSlot(id)
	s.mu.Unlock()

	s.emit(EventRemove, map[string]any{"key": id, "live": v != nil})
	return v
}

// Unset deletes the slot for id without resolving its handle. Missing ids
// are ignored.
func (s *Store[K, V]) Unset(id K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[id]; ok {
		s.dropSlot(id)
	}
}

// Clean sweeps the whole slot table once, removing every slot whose
// referent has been reclaimed. Live slots are untouched. This is the only
// bulk pruning operation; all other pruning is incidental to single-key
// reads.
func (s *Store[K, V]) Clean() {
	s.mu.Lock()
	removed := 0
	for _, id := range slices.Clone(s.order) {
		if s.slots[id].Get() == nil {
			s.dropSlot(id)
			removed++
		}
	}
	remaining := len(s.slots)
	s.mu.Unlock()

	s.emit(EventClean, map[string]any{"removed": removed, "remaining": remaining})
}

// Len returns the number of slots present, dead or alive.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Count returns the number of slots whose referent is currently alive.
// Resolves every handle but never prunes, so Count <= Len, with equality
// exactly when no slot is currently dead.
func (s *Store[K, V]) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, ref := range s.slots {
		if ref.Get() != nil {
			n++
		}
	}
	return n
}

// All returns an iterator over (identifier, raw weak handle) pairs in
// insertion order. The key sequence is snapshotted when iteration starts,
// so slots removed mid-iteration are skipped and slots added are not seen.
// Handles are not resolved and nothing is pruned; resolving is the
// consumer's business.
func (s *Store[K, V]) All() iter.Seq2[K, weakref.Ref[V]] {
	return func(yield func(K, weakref.Ref[V]) bool) {
		s.mu.Lock()
		keys := slices.Clone(s.order)
		s.mu.Unlock()

		for _, id := range keys {
			s.mu.Lock()
			ref, ok := s.slots[id]
			s.mu.Unlock()
			if !ok {
				continue
			}
			if !yield(id, ref) {
				return
			}
		}
	}
}

// peek resolves the slot for id without pruning. Nil for absent and dead
// slots alike.
func (s *Store[K, V]) peek(id K) *V {
	s.mu.Lock()
	ref, ok := s.slots[id]
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return ref.Get()
}

// dropSlot removes id from the slot table and the insertion-order list.
// Callers must hold s.mu and have checked presence.
func (s *Store[K, V]) dropSlot(id K) {
	delete(s.slots, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

// dropSide removes the side-data entry keyed by ref. Runs from reclamation
// callbacks, possibly on a runtime goroutine.
func (s *Store[K, V]) dropSide(ref weakref.Ref[V]) {
	s.mu.Lock()
	_, ok := s.side[ref]
	delete(s.side, ref)
	s.mu.Unlock()

	if ok {
		s.emit(EventSideReclaim, nil)
	}
}

func (s *Store[K, V]) emit(t observability.EventType, data map[string]any) {
	if data == nil {
		data = make(map[string]any, 1)
	}
	data["store_id"] = s.id

	s.observer.OnEvent(context.Background(), observability.Event{
		Type:      t,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "cache",
		Data:      data,
	})
}

func nonZeroKey[K comparable](id K) bool {
	var zero K
	return id != zero
}
