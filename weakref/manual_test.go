package weakref_test

import (
	"testing"

	"github.com/tailored-agentic-units/weakcache/weakref"
)

type thing struct {
	name string
}

func TestManual_MakeAndGet(t *testing.T) {
	m := weakref.NewManual[thing]()
	v := &thing{name: "a"}

	ref := m.Make(v)
	if got := ref.Get(); got != v {
		t.Errorf("Get() = %p, want %p", got, v)
	}
}

func TestManual_MakeNil(t *testing.T) {
	m := weakref.NewManual[thing]()

	ref := m.Make(nil)
	if got := ref.Get(); got != nil {
		t.Errorf("Get() = %p, want nil", got)
	}
}

func TestManual_RefsForSamePointerCompareEqual(t *testing.T) {
	m := weakref.NewManual[thing]()
	v := &thing{name: "a"}
	other := &thing{name: "b"}

	r1 := m.Make(v)
	r2 := m.Make(v)
	r3 := m.Make(other)

	if r1 != r2 {
		t.Error("refs for the same pointer should compare equal")
	}
	if r1 == r3 {
		t.Error("refs for different pointers should not compare equal")
	}
}

func TestManual_Reclaim(t *testing.T) {
	m := weakref.NewManual[thing]()
	v := &thing{name: "a"}
	ref := m.Make(v)

	m.Reclaim(v)

	if got := ref.Get(); got != nil {
		t.Errorf("Get() after Reclaim = %p, want nil", got)
	}
	// Stable "gone" signal on repeated resolution.
	if got := ref.Get(); got != nil {
		t.Errorf("second Get() after Reclaim = %p, want nil", got)
	}
}

func TestManual_ReclaimRunsCallbacksInOrder(t *testing.T) {
	m := weakref.NewManual[thing]()
	v := &thing{name: "a"}

	var order []int
	m.OnReclaim(v, func() { order = append(order, 1) })
	m.OnReclaim(v, func() { order = append(order, 2) })

	m.Reclaim(v)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("callback order = %v, want [1 2]", order)
	}
}

func TestManual_ReclaimTwice(t *testing.T) {
	m := weakref.NewManual[thing]()
	v := &thing{name: "a"}

	calls := 0
	m.OnReclaim(v, func() { calls++ })

	m.Reclaim(v)
	m.Reclaim(v)

	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
}

func TestManual_ReclaimUnknownPointer(t *testing.T) {
	m := weakref.NewManual[thing]()
	m.Reclaim(&thing{name: "never seen"})
}

func TestManual_RefEqualityStableAfterReclaim(t *testing.T) {
	m := weakref.NewManual[thing]()
	v := &thing{name: "a"}

	r1 := m.Make(v)
	r2 := m.Make(v)
	m.Reclaim(v)

	if r1 != r2 {
		t.Error("refs should still compare equal after reclamation")
	}
}
