package weakref

import (
	"sync"
	"sync/atomic"
)

// Manual is a Maker whose referents are reclaimed only by an explicit call
// to Reclaim. It is meant for hosts that manage object lifetimes themselves,
// and for deterministic tests that must not depend on garbage collector
// timing. The zero value is not usable; call NewManual.
type Manual[T any] struct {
	mu    sync.Mutex
	cells map[*T]*manualCell[T]
}

type manualCell[T any] struct {
	v   atomic.Pointer[T]
	fns []func() // guarded by the owning Manual's mu
}

type manualRef[T any] struct {
	cell *manualCell[T]
}

func (r manualRef[T]) Get() *T {
	if r.cell == nil {
		return nil
	}
	return r.cell.v.Load()
}

// NewManual creates an empty Manual maker.
func NewManual[T any]() *Manual[T] {
	return &Manual[T]{
		cells: make(map[*T]*manualCell[T]),
	}
}

// Make returns a Ref for v. Repeated calls with the same pointer return
// equal Refs backed by one shared cell.
func (m *Manual[T]) Make(v *T) Ref[T] {
	if v == nil {
		return manualRef[T]{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return manualRef[T]{cell: m.cell(v)}
}

// OnReclaim registers fn to run when Reclaim(v) is called.
func (m *Manual[T]) OnReclaim(v *T, fn func()) {
	if v == nil || fn == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.cell(v)
	c.fns = append(c.fns, fn)
}

// Reclaim marks v as reclaimed: every Ref made from v resolves to nil from
// now on, and registered callbacks run synchronously, in registration order.
// Reclaiming an unknown or already-reclaimed pointer is a no-op.
func (m *Manual[T]) Reclaim(v *T) {
	m.mu.Lock()
	c, ok := m.cells[v]
	if ok {
		delete(m.cells, v)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	c.v.Store(nil)
	for _, fn := range c.fns {
		fn()
	}
}

// cell returns the shared cell for v, creating it on first use.
// Callers must hold m.mu.
func (m *Manual[T]) cell(v *T) *manualCell[T] {
	c, ok := m.cells[v]
	if !ok {
		c = &manualCell[T]{}
		c.v.Store(v)
		m.cells[v] = c
	}
	return c
}
