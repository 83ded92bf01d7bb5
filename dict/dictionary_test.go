package dict

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_Empty(t *testing.T) {
	d := New(nil)

	require.Equal(t, NoSlot, d.Lookup("anything"))
	val, ok := d.At(0)
	require.False(t, ok)
	require.Empty(t, val)
}

func TestLookupOrInsert_MissThenHit(t *testing.T) {
	d := New(nil)

	slot, hit := d.LookupOrInsert("temperature")
	require.False(t, hit)
	require.Equal(t, 0, slot)

	again, hit := d.LookupOrInsert("temperature")
	require.True(t, hit)
	require.Equal(t, slot, again)

	val, ok := d.At(slot)
	require.True(t, ok)
	require.Equal(t, "temperature", val)
}

func TestLookupOrInsert_FillsSlotsInOrder(t *testing.T) {
	d := New(nil)

	for i := 0; i < SlotCount; i++ {
		slot, hit := d.LookupOrInsert(fmt.Sprintf("field-%d", i))
		require.False(t, hit)
		require.Equal(t, i, slot)
	}
}

func TestLookupOrInsert_EvictsLRUWhenFull(t *testing.T) {
	var evicted []int
	d := New(func(slot int) { evicted = append(evicted, slot) })

	for i := 0; i < SlotCount; i++ {
		d.LookupOrInsert(fmt.Sprintf("field-%d", i))
	}
	require.Empty(t, evicted)

	// Touch every slot except 0 so it becomes the LRU victim.
	for i := 1; i < SlotCount; i++ {
		d.Touch(i)
	}

	slot, hit := d.LookupOrInsert("field-new")
	require.False(t, hit)
	require.Equal(t, 0, slot)
	require.Equal(t, []int{0}, evicted)

	val, ok := d.At(0)
	require.True(t, ok)
	require.Equal(t, "field-new", val)
}

func TestLookupOrInsert_RecencyPreventsEviction(t *testing.T) {
	d := New(nil)

	for i := 0; i < SlotCount; i++ {
		d.LookupOrInsert(fmt.Sprintf("field-%d", i))
	}

	// Re-touch slot 0 via a hit so it is not the LRU victim.
	d.LookupOrInsert("field-0")

	slot, hit := d.LookupOrInsert("field-evictee")
	require.False(t, hit)
	require.NotEqual(t, 0, slot)
}

func TestInsert_EvictsAndReturnsSlot(t *testing.T) {
	var evictedSlot = -1
	d := New(func(slot int) { evictedSlot = slot })

	first := d.Insert("a")
	require.Equal(t, 0, first)
	require.Equal(t, -1, evictedSlot)

	second := d.Insert("b")
	require.Equal(t, 1, second)
}

func TestReset_ClearsWithoutEvictHook(t *testing.T) {
	called := false
	d := New(func(slot int) { called = true })

	d.LookupOrInsert("x")
	d.Reset()

	require.False(t, called)
	require.Equal(t, NoSlot, d.Lookup("x"))

	slot, hit := d.LookupOrInsert("x")
	require.False(t, hit)
	require.Equal(t, 0, slot)
}
