package cache_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/weakcache/cache"
	"github.com/tailored-agentic-units/weakcache/weakref"
)

func TestStore_Data_RoundTrip(t *testing.T) {
	s, _ := newStore(t)
	obj := &object{name: "a"}
	bag := cache.Bag{"owner": "alice", "weight": 3}

	require.NoError(t, s.Set("x", obj, bag))

	if diff := cmp.Diff(bag, s.Data("x")); diff != "" {
		t.Errorf("Data(x) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(bag, s.DataOf(obj)); diff != "" {
		t.Errorf("DataOf(obj) mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Data_EmptyBagOnMiss(t *testing.T) {
	s, m := newStore(t)
	obj := &object{name: "a"}
	require.NoError(t, s.Set("x", obj)) // no data attached

	assert.Empty(t, s.Data("x"), "no bag attached")
	assert.Empty(t, s.Data("never-set"), "absent identifier")
	assert.Empty(t, s.DataOf(nil), "nil object")
	assert.Empty(t, s.DataOf(&object{name: "stranger"}), "unknown object")

	m.Reclaim(obj)
	assert.Empty(t, s.Data("x"), "reclaimed referent")
}

func TestStore_Data_SharedByIdentity(t *testing.T) {
	s, _ := newStore(t)
	obj := &object{name: "a"}
	d1 := cache.Bag{"v": 1}
	d2 := cache.Bag{"v": 2}

	require.NoError(t, s.Set("k1", obj, d1))
	require.NoError(t, s.Set("k2", obj, d2))

	// One object, one bag: the second write replaced the first, and both
	// identifiers observe it.
	assert.Equal(t, d2, s.Data("k1"))
	assert.Equal(t, d2, s.Data("k2"))
	assert.Equal(t, d2, s.DataOf(obj))
}

func TestStore_Data_ReturnsCopy(t *testing.T) {
	s, _ := newStore(t)
	obj := &object{name: "a"}
	require.NoError(t, s.Set("x", obj, cache.Bag{"n": 1}))

	got := s.Data("x")
	got["n"] = 99
	got["extra"] = true

	assert.Equal(t, cache.Bag{"n": 1}, s.Data("x"), "mutating a returned bag must not write through")
}

func TestStore_Data_WriteIsCopy(t *testing.T) {
	s, _ := newStore(t)
	obj := &object{name: "a"}
	bag := cache.Bag{"n": 1}
	require.NoError(t, s.Set("x", obj, bag))

	bag["n"] = 99

	assert.Equal(t, cache.Bag{"n": 1}, s.Data("x"), "mutating the caller's bag must not reach the store")
}

func TestStore_Data_DroppedOnReclaim(t *testing.T) {
	s, m := newStore(t)
	obj := &object{name: "a"}
	require.NoError(t, s.Set("x", obj, cache.Bag{"n": 1}))

	m.Reclaim(obj)

	// The side entry followed the object, independent of the slot table.
	assert.Empty(t, s.DataOf(obj))
}

func TestStore_Data_SurvivesSlotRemoval(t *testing.T) {
	s, _ := newStore(t)
	obj := &object{name: "a"}
	require.NoError(t, s.Set("x", obj, cache.Bag{"n": 1}))

	s.Remove("x")

	// Slot gone, object alive: the bag is still reachable through the
	// object, and through any identifier re-bound to it.
	assert.Equal(t, cache.Bag{"n": 1}, s.DataOf(obj))

	require.NoError(t, s.Set("y", obj))
	assert.Equal(t, cache.Bag{"n": 1}, s.Data("y"))
}

func TestStore_Data_PrunesThroughIdentifier(t *testing.T) {
	s, m := newStore(t)
	obj := &object{name: "a"}
	require.NoError(t, s.Set("x", obj, cache.Bag{"n": 1}))

	m.Reclaim(obj)

	assert.Empty(t, s.Data("x"))
	assert.False(t, s.Exists("x"), "Data resolves through Get, which prunes dead slots")
}

func TestStore_Data_NilObjectSet(t *testing.T) {
	m := weakref.NewManual[object]()
	s, err := cache.New[string, object](nil, cache.WithMaker[string, object](m))
	require.NoError(t, err)

	// A nil object gets a slot that never resolves; data has no identity
	// to attach to and is dropped.
	require.NoError(t, s.Set("x", nil, cache.Bag{"n": 1}))

	assert.True(t, s.Exists("x"))
	assert.False(t, s.Valid("x"))
	assert.Empty(t, s.Data("x"))
}
