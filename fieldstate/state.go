// Package fieldstate tracks the per-field numeric baseline PACKR's delta
// tokens are computed against (spec §3, §4.3): for each of the 64 field
// dictionary slots, the last value written and the numeric kind it was
// written as, so DELTA_ZERO/ONE/NEG_ONE/SMALL/MEDIUM/LARGE tokens can be
// chosen and later replayed deterministically on both sides of the
// stream.
package fieldstate

// Kind identifies which numeric representation a field's baseline was
// last written in. Deltas are only valid against a baseline of the same
// kind; a kind change forces a fresh non-delta token (spec §4.3).
type Kind uint8

const (
	// KindNone means the slot has no baseline yet — a delta token
	// cannot be emitted until some absolute value establishes one.
	KindNone Kind = iota
	KindInt
	KindFloat16
	KindFloat32
	KindDouble
)

type slot struct {
	lastValue float64
	lastRaw   int64 // exact integer baseline, used when kind == KindInt or KindFloat32
	kind      Kind
}

// Table holds the (last_value, last_kind) baseline for every field
// dictionary slot (spec §3). It is indexed 1:1 with a dict.Dictionary's
// FIELD_REF slots and must be reset for a slot whenever that dictionary
// slot is evicted (spec §3 invariant).
type Table struct {
	slots [64]slot
}

// NewTable creates a table with every slot unset.
func NewTable() *Table {
	return &Table{}
}

// Reset clears the baseline for slot, called when the dictionary evicts
// the field occupying it.
func (t *Table) Reset(fieldSlot int) {
	t.slots[fieldSlot] = slot{}
}

// Kind returns the numeric kind currently baselined at fieldSlot.
func (t *Table) Kind(fieldSlot int) Kind {
	return t.slots[fieldSlot].kind
}

// IntBaseline returns the integer baseline at fieldSlot and whether one
// is set with KindInt.
func (t *Table) IntBaseline(fieldSlot int) (int64, bool) {
	s := &t.slots[fieldSlot]
	return s.lastRaw, s.kind == KindInt
}

// FloatBaseline returns the floating-point baseline at fieldSlot and
// whether one is set with a float-family kind (Float16/Float32/Double).
func (t *Table) FloatBaseline(fieldSlot int) (float64, bool) {
	s := &t.slots[fieldSlot]
	return s.lastValue, s.kind == KindFloat16 || s.kind == KindFloat32 || s.kind == KindDouble
}

// SetInt records an integer baseline, as either an absolute value (from
// an INT token) or the decoder-reconstructed result of a delta token.
//
// The encoder must call this with the value it RECONSTRUCTS the delta
// against (i.e. what the decoder will compute), not the raw input value
// it was asked to encode, to keep encoder and decoder baselines in
// lockstep over a long delta chain. For KindInt this distinction is moot
// (integers round-trip exactly) but the same call path is used for
// uniformity with SetFixed1616, where it matters.
func (t *Table) SetInt(fieldSlot int, value int64) {
	t.slots[fieldSlot] = slot{lastRaw: value, lastValue: float64(value), kind: KindInt}
}

// SetFloat records a floating-point baseline of the given kind, again
// using the reconstructed value rather than the raw input (see SetInt).
// Use SetFixed1616 instead when kind is KindFloat32, so the exact scaled
// integer baseline is preserved for delta math.
func (t *Table) SetFloat(fieldSlot int, kind Kind, value float64) {
	t.slots[fieldSlot] = slot{lastValue: value, kind: kind}
}

// Fixed1616Baseline returns the exact Q16.16 scaled-integer baseline at
// fieldSlot and whether one is set with KindFloat32 — the only floating
// point kind spec §3's `last_kind ∈ {none, int, fixed16_16}` allows to
// carry delta state. Deltas over this baseline are computed in the exact
// scaled-integer domain (like IntBaseline) so encoder and decoder never
// drift from float rounding.
func (t *Table) Fixed1616Baseline(fieldSlot int) (int64, bool) {
	s := &t.slots[fieldSlot]
	return s.lastRaw, s.kind == KindFloat32
}

// SetFixed1616 records a fixed16_16 baseline: raw is the exact Q16.16
// scaled integer the delta math reconstructs against, value is its
// float64 form for FloatBaseline/general reporting.
func (t *Table) SetFixed1616(fieldSlot int, raw int64, value float64) {
	t.slots[fieldSlot] = slot{lastRaw: raw, lastValue: value, kind: KindFloat32}
}
