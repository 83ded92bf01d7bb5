package scalar

import (
	"testing"

	"github.com/jaylikesbunda/PACKR/mac"
	"github.com/stretchr/testify/require"
)

func TestFieldName_RefAfterFirstInsert(t *testing.T) {
	e := NewEncoder()
	defer e.Release()

	slot1 := e.FieldName("temperature")
	slot2 := e.FieldName("temperature")
	require.Equal(t, slot1, slot2)

	d := NewDecoder(e.Bytes())
	ev1, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, EventFieldName, ev1.Kind)
	require.Equal(t, slot1, ev1.FieldSlot)

	ev2, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, EventFieldName, ev2.Kind)
	require.Equal(t, slot1, ev2.FieldSlot)
}

func TestInt_AbsoluteThenDeltaTiers(t *testing.T) {
	e := NewEncoder()
	defer e.Release()

	slot := e.FieldName("count")
	e.Int(slot, 100)
	e.Int(slot, 100) // delta zero
	e.Int(slot, 101) // delta one
	e.Int(slot, 100) // delta neg one
	e.Int(slot, 105) // delta small (+5)
	e.Int(slot, 150) // delta medium (+45)
	e.Int(slot, 100000) // delta large

	d := NewDecoder(e.Bytes())

	fieldEv, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, EventFieldName, fieldEv.Kind)
	fslot := fieldEv.FieldSlot

	want := []int64{100, 100, 101, 100, 105, 150, 100000}
	for _, w := range want {
		ev, err := d.NextNumeric(fslot)
		require.NoError(t, err)
		require.Equal(t, EventInt, ev.Kind)
		require.Equal(t, w, ev.Int)
	}
	require.True(t, d.Done())
}

func TestFloat_PicksNarrowestExactRepresentation(t *testing.T) {
	e := NewEncoder()
	defer e.Release()

	slot := e.FieldName("ratio")
	e.Float(slot, 1.5)       // exact in 8.8 fixed point
	e.Float(slot, 3.14159)   // needs float32 or double

	d := NewDecoder(e.Bytes())
	fieldEv, _ := d.Next()
	fslot := fieldEv.FieldSlot

	ev1, err := d.NextNumeric(fslot)
	require.NoError(t, err)
	require.InDelta(t, 1.5, ev1.Float, 1e-9)

	ev2, err := d.NextNumeric(fslot)
	require.NoError(t, err)
	require.InDelta(t, 3.14159, ev2.Float, 1e-4)
}

func TestStringValue_RefAfterFirstInsert(t *testing.T) {
	e := NewEncoder()
	defer e.Release()

	e.StringValue("hello")
	e.StringValue("hello")

	d := NewDecoder(e.Bytes())
	ev1, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, "hello", ev1.Str)

	ev2, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, "hello", ev2.Str)
}

func TestMACValue_RoundTrips(t *testing.T) {
	e := NewEncoder()
	defer e.Release()

	raw, err := mac.Parse("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)

	e.MACValue(raw)
	e.MACValue(raw)

	d := NewDecoder(e.Bytes())
	ev1, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, raw, ev1.MAC)

	ev2, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, raw, ev2.MAC)
}

func TestNullBoolBinary_RoundTrip(t *testing.T) {
	e := NewEncoder()
	defer e.Release()

	e.Null()
	e.Bool(true)
	e.Bool(false)
	e.BinaryValue([]byte{1, 2, 3})

	d := NewDecoder(e.Bytes())

	ev, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, EventNull, ev.Kind)

	ev, err = d.Next()
	require.NoError(t, err)
	require.Equal(t, EventBool, ev.Kind)
	require.True(t, ev.Bool)

	ev, err = d.Next()
	require.NoError(t, err)
	require.Equal(t, EventBool, ev.Kind)
	require.False(t, ev.Bool)

	ev, err = d.Next()
	require.NoError(t, err)
	require.Equal(t, EventBinary, ev.Kind)
	require.Equal(t, []byte{1, 2, 3}, ev.Bin)
}

func TestObjectAndArrayStructure_RoundTrip(t *testing.T) {
	e := NewEncoder()
	defer e.Release()

	e.ObjectStart()
	e.FieldName("tags")
	e.ArrayStart(2)
	e.StringValue("a")
	e.StringValue("b")
	e.ArrayEnd()
	e.ObjectEnd()

	d := NewDecoder(e.Bytes())

	kinds := []EventKind{}
	for !d.Done() {
		ev, err := d.Next()
		require.NoError(t, err)
		kinds = append(kinds, ev.Kind)
	}

	require.Equal(t, []EventKind{
		EventObjectStart,
		EventFieldName,
		EventArrayStart,
		EventString,
		EventString,
		EventArrayEnd,
		EventObjectEnd,
	}, kinds)
}

func TestDictionaryEviction_ResetsFieldState(t *testing.T) {
	e := NewEncoder()
	defer e.Release()

	var slots []int
	for i := 0; i < 64; i++ {
		slots = append(slots, e.FieldName(stringField(i)))
	}
	// Touch every field except 0 so it is the LRU victim.
	for i := 1; i < 64; i++ {
		e.FieldName(stringField(i))
	}
	e.Int(slots[0], 42) // establishes a baseline on the about-to-be-evicted slot

	newSlot := e.FieldName("brand-new-field")
	require.Equal(t, slots[0], newSlot, "new field should recycle the LRU slot")

	_, ok := e.state.IntBaseline(newSlot)
	require.False(t, ok, "recycled slot must have cleared delta state")
}

func stringField(i int) string {
	return "field-" + string(rune('A'+i%26)) + string(rune('0'+i/26))
}
