// Package dict implements the three fixed-size, 64-slot LRU dictionaries
// PACKR uses to replace repeated field names, string values, and MAC
// addresses with single-byte references (spec §3, §4.2).
//
// The lookup/insert/evict shape is grounded on the teacher's
// internal/collision.Tracker (a hash-keyed map paired with an ordered
// list), generalized from "detect and flag a collision" to "evict the
// least-recently-used slot and hand the caller back its index." The
// xxHash64 prefilter follows the same reasoning Tracker applies to
// metric name hashes: compare hashes before comparing bytes.
package dict

import "github.com/jaylikesbunda/PACKR/internal/hash"

// SlotCount is the fixed number of entries each dictionary holds (spec §3).
const SlotCount = 64

// NoSlot is returned by Lookup when the entry is not present.
const NoSlot = -1

type entry struct {
	value    string
	hash     uint64
	occupied bool
	lastUsed uint64
}

// Dictionary is a fixed 64-slot LRU map from byte strings to reference
// indices. It never grows past SlotCount; once full, inserting a new
// value evicts whichever occupied slot was least recently touched.
type Dictionary struct {
	slots   [SlotCount]entry
	clock   uint64
	onEvict func(slot int)
}

// New creates an empty dictionary. onEvict, if non-nil, is called with
// the slot index whenever an occupied slot is reused for a new value —
// the hook the scalar/column encoders use to reset per-field delta
// state when a FIELD_REF slot is recycled (spec §3 invariant: "eviction
// of a field's dictionary slot clears its delta state").
func New(onEvict func(slot int)) *Dictionary {
	return &Dictionary{onEvict: onEvict}
}

// Lookup returns the slot holding value, or NoSlot if it is not present.
// It does not update recency; call Touch or LookupOrInsert for that.
func (d *Dictionary) Lookup(value string) int {
	h := hash.ID(value)
	for i := range d.slots {
		s := &d.slots[i]
		if s.occupied && s.hash == h && s.value == value {
			return i
		}
	}
	return NoSlot
}

// Touch marks slot as most-recently-used.
func (d *Dictionary) Touch(slot int) {
	d.clock++
	d.slots[slot].lastUsed = d.clock
}

// LookupOrInsert returns the slot for value, inserting it (evicting the
// LRU slot if full) when not already present. hit reports whether value
// was already in the dictionary.
func (d *Dictionary) LookupOrInsert(value string) (slot int, hit bool) {
	if s := d.Lookup(value); s != NoSlot {
		d.Touch(s)
		return s, true
	}

	slot = d.victim()
	if d.slots[slot].occupied && d.onEvict != nil {
		d.onEvict(slot)
	}

	d.clock++
	d.slots[slot] = entry{
		value:    value,
		hash:     hash.ID(value),
		occupied: true,
		lastUsed: d.clock,
	}

	return slot, false
}

// Insert forces value into slot, evicting whatever occupied it and
// invoking onEvict if it was occupied. Used by the decoder, which
// receives explicit NEW_FIELD/NEW_STRING/NEW_MAC events naming no slot —
// the decoder always inserts at the encoder's chosen victim, which it
// recomputes identically since both sides run the same LRU policy.
func (d *Dictionary) Insert(value string) (slot int) {
	slot = d.victim()
	if d.slots[slot].occupied && d.onEvict != nil {
		d.onEvict(slot)
	}

	d.clock++
	d.slots[slot] = entry{
		value:    value,
		hash:     hash.ID(value),
		occupied: true,
		lastUsed: d.clock,
	}

	return slot
}

// At returns the value stored in slot and whether that slot is occupied.
func (d *Dictionary) At(slot int) (string, bool) {
	s := &d.slots[slot]
	return s.value, s.occupied
}

// Occupancy returns the number of slots currently holding a value.
func (d *Dictionary) Occupancy() int {
	n := 0
	for i := range d.slots {
		if d.slots[i].occupied {
			n++
		}
	}
	return n
}

// Reset clears every slot without invoking onEvict (spec §4.7: a dict
// reset flag starts both sides from an empty dictionary, not an evicted
// one — callers that need the eviction hook run should call Insert/
// LookupOrInsert in a loop instead).
func (d *Dictionary) Reset() {
	for i := range d.slots {
		d.slots[i] = entry{}
	}
	d.clock = 0
}

// victim returns the first unoccupied slot, or the least-recently-used
// occupied slot if the dictionary is full.
func (d *Dictionary) victim() int {
	for i := range d.slots {
		if !d.slots[i].occupied {
			return i
		}
	}

	oldest := 0
	for i := 1; i < SlotCount; i++ {
		if d.slots[i].lastUsed < d.slots[oldest].lastUsed {
			oldest = i
		}
	}
	return oldest
}
