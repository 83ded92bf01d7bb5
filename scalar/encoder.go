// Package scalar implements PACKR's per-value token encoder and decoder
// (spec §4.3): the layer that turns individual JSON values (field names,
// numbers, strings, MAC addresses, booleans, null, and container
// boundaries) into the single-byte token grammar the token package
// defines, threading every numeric write through the per-field delta
// state the fieldstate package tracks.
//
// The encoder/decoder pairing and the buffer-backed Bytes()/Reset() shape
// follow the teacher's encoding.TimestampDeltaEncoder: a small struct
// wrapping a pooled buffer, an inline temp array for varint scratch, and
// running state that must be updated identically on encode and decode.
package scalar

import (
	"math"

	"github.com/jaylikesbunda/PACKR/dict"
	"github.com/jaylikesbunda/PACKR/endian"
	"github.com/jaylikesbunda/PACKR/fieldstate"
	"github.com/jaylikesbunda/PACKR/internal/options"
	"github.com/jaylikesbunda/PACKR/internal/pool"
	"github.com/jaylikesbunda/PACKR/internal/varint"
	"github.com/jaylikesbunda/PACKR/mac"
	"github.com/jaylikesbunda/PACKR/token"
)

// Encoder turns scalar values and container boundaries into PACKR's
// token stream. It owns the three dictionaries (fields, strings, MACs)
// and the per-field delta state table; a single Encoder's dictionaries
// must not be shared across independent streams.
type Encoder struct {
	buf     *pool.ByteBuffer
	fields  *dict.Dictionary
	strings *dict.Dictionary
	macs    *dict.Dictionary
	state   *fieldstate.Table
	endian  endian.EndianEngine
}

// EncoderOption configures an Encoder at construction time
// (internal/options' functional-options pattern).
type EncoderOption = options.Option[*Encoder]

// WithEndian overrides the byte order used for FLOAT16/FLOAT32/DOUBLE
// payloads. The wire format fixes little-endian (spec §6.1); this knob
// exists for big-endian interop testing, matching the teacher's
// WithBigEndian().
func WithEndian(e endian.EndianEngine) EncoderOption {
	return options.NoError(func(enc *Encoder) {
		enc.endian = e
	})
}

// NewEncoder creates an encoder with fresh dictionaries and delta state.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{
		buf:     pool.GetFrameBuffer(),
		strings: dict.New(nil),
		macs:    dict.New(nil),
		state:   fieldstate.NewTable(),
		endian:  endian.GetLittleEndianEngine(),
	}
	e.fields = dict.New(e.state.Reset)
	_ = options.Apply(e, opts...)
	return e
}

// Bytes returns the bytes written so far. The slice is valid until the
// encoder is reused or released.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return e.buf.Len() }

// Cap returns the output buffer's current capacity, for peak-allocation
// reporting (spec §5).
func (e *Encoder) Cap() int { return e.buf.Cap() }

// DictionaryOccupancy returns how many of the 64 slots are currently
// occupied in each of the three dictionaries, for Stats reporting (spec §5).
func (e *Encoder) DictionaryOccupancy() (fields, strings, macs int) {
	return e.fields.Occupancy(), e.strings.Occupancy(), e.macs.Occupancy()
}

// Release returns the encoder's output buffer to the pool. The encoder
// must not be used afterward.
func (e *Encoder) Release() {
	pool.PutFrameBuffer(e.buf)
	e.buf = nil
}

func (e *Encoder) writeByte(b byte) {
	e.buf.Grow(1)
	e.buf.MustWrite([]byte{b})
}

// WriteRawByte appends b directly to the stream. Used by the column
// package to write ULTRA_BATCH column strategy flags and payload bytes
// into the same unified stream a scalar.Encoder maintains.
func (e *Encoder) WriteRawByte(b byte) { e.writeByte(b) }

// WriteRawBytes appends b directly to the stream.
func (e *Encoder) WriteRawBytes(b []byte) {
	e.buf.Grow(len(b))
	e.buf.MustWrite(b)
}

// WriteUvarint appends the unsigned varint encoding of v.
func (e *Encoder) WriteUvarint(v uint32) {
	e.buf.Grow(varint.MaxLen32)
	e.buf.MustWrite(varint.AppendUvarint(nil, v))
}

// WriteVarint64 appends the ZigZag varint encoding of v.
func (e *Encoder) WriteVarint64(v int64) { e.writeVarint64(v) }

// FieldName emits a FIELD_REF or NEW_FIELD token for name and returns
// the dictionary slot now holding it, for use by the value-writing
// methods below.
func (e *Encoder) FieldName(name string) (slot int) {
	slot, hit := e.fields.LookupOrInsert(name)
	if hit {
		e.writeByte(byte(token.FieldRefToken(slot)))
		return slot
	}

	e.writeByte(byte(token.NewField))
	e.writeVarstring(name)
	return slot
}

// StringValue emits a STRING_REF or NEW_STRING token for s.
func (e *Encoder) StringValue(s string) {
	slot, hit := e.strings.LookupOrInsert(s)
	if hit {
		e.writeByte(byte(token.StringRefToken(slot)))
		return
	}

	e.writeByte(byte(token.NewString))
	e.writeVarstring(s)
}

// MACValue emits a MAC_REF or NEW_MAC token for raw.
func (e *Encoder) MACValue(raw [mac.Size]byte) {
	text := mac.String(raw)
	slot, hit := e.macs.LookupOrInsert(text)
	if hit {
		e.writeByte(byte(token.MacRefToken(slot)))
		return
	}

	e.writeByte(byte(token.NewMac))
	e.buf.Grow(mac.Size)
	e.buf.MustWrite(raw[:])
}

// Null emits a NULL token.
func (e *Encoder) Null() { e.writeByte(byte(token.Null)) }

// Bool emits a BOOL_TRUE or BOOL_FALSE token.
func (e *Encoder) Bool(v bool) {
	if v {
		e.writeByte(byte(token.BoolTrue))
	} else {
		e.writeByte(byte(token.BoolFalse))
	}
}

// BinaryValue emits a BINARY token followed by varint length and raw bytes.
func (e *Encoder) BinaryValue(b []byte) {
	e.writeByte(byte(token.Binary))
	e.writeVarBytes(b)
}

// ObjectStart/ObjectEnd/ArrayStart/ArrayEnd emit the corresponding
// structural tokens (spec §3: containers are explicitly bracketed so the
// decoder can validate balance).
func (e *Encoder) ObjectStart() { e.writeByte(byte(token.ObjectStart)) }
func (e *Encoder) ObjectEnd()   { e.writeByte(byte(token.ObjectEnd)) }

// ArrayStart emits ARRAY_START with the element count. count must be
// known up front; use the column package's streaming path when it is not.
func (e *Encoder) ArrayStart(count int) {
	e.writeByte(byte(token.ArrayStart))
	e.buf.Grow(varint.MaxLen32)
	e.buf.MustWrite(varint.AppendUvarint(nil, uint32(count)))
}
func (e *Encoder) ArrayEnd() { e.writeByte(byte(token.ArrayEnd)) }

// Int emits the smallest applicable token for v against slot's current
// baseline: DELTA_ZERO/ONE/NEG_ONE for the three most common deltas,
// DELTA_SMALL for the rest of [-8,7], DELTA_MEDIUM for [-64,63], and
// DELTA_LARGE (zigzag varint) otherwise — falling back to an absolute
// INT token when slot has no integer baseline yet (spec §4.3).
//
// The baseline recorded afterward is always the value actually
// reconstructable from the token just written, which for integers is v
// itself.
func (e *Encoder) Int(slot int, v int64) {
	base, ok := e.state.IntBaseline(slot)
	if !ok {
		e.writeByte(byte(token.Int))
		e.writeVarint64(v)
		e.state.SetInt(slot, v)
		return
	}

	delta := v - base
	e.writeIntDelta(delta)
	e.state.SetInt(slot, base+delta)
}

// writeIntDelta emits the tightest DELTA_* token for an already-computed
// integer delta (spec §4.3's tier table), with no baseline bookkeeping of
// its own.
func (e *Encoder) writeIntDelta(delta int64) {
	switch {
	case delta == 0:
		e.writeByte(byte(token.DeltaZero))
	case delta == 1:
		e.writeByte(byte(token.DeltaOne))
	case delta == -1:
		e.writeByte(byte(token.DeltaNegOne))
	case delta >= -8 && delta <= 7:
		e.writeByte(byte(token.EncodeDeltaSmall(int(delta))))
	case delta >= -64 && delta <= 63:
		e.writeByte(byte(token.DeltaMedium))
		e.writeByte(byte(int8(delta + 64)))
	default:
		e.writeByte(byte(token.DeltaLarge))
		e.writeVarint64(delta)
	}
}

// WriteIntDelta emits the tightest delta token for delta with no field
// baseline of its own. The column package's scalar-delta fallback
// strategy (spec §4.4) uses this: it tracks a running baseline across a
// column's values directly rather than threading them through the field
// dictionary's per-slot state.
func (e *Encoder) WriteIntDelta(delta int64) { e.writeIntDelta(delta) }

// Float emits the narrowest lossless-enough representation of v against
// slot's current baseline. When slot already carries a fixed16_16
// baseline (spec §3) and v is itself exactly representable in Q16.16,
// the value is delta-encoded through the same DELTA_* tier table Int
// uses, computed over the exact scaled integer so encoder and decoder
// never drift. Otherwise an absolute token is emitted: FLOAT16 (8.8
// fixed point) when v round-trips through it exactly, else FLOAT32
// (16.16 fixed point), else DOUBLE.
func (e *Encoder) Float(slot int, v float64) {
	if base, ok := e.state.Fixed1616Baseline(slot); ok {
		if raw, ok := fixed1616(v); ok {
			e.writeIntDelta(int64(raw) - base)
			e.state.SetFixed1616(slot, int64(raw), v)
			return
		}
	}

	if f16, ok := encodeFloat16(v); ok {
		e.writeByte(byte(token.Float16))
		var tmp [2]byte
		e.endian.PutUint16(tmp[:], f16)
		e.buf.Grow(2)
		e.buf.MustWrite(tmp[:])
		e.state.SetFloat(slot, fieldstate.KindFloat16, v)
		return
	}

	if raw, ok := fixed1616(v); ok {
		e.writeByte(byte(token.Float32))
		var tmp [4]byte
		e.endian.PutUint32(tmp[:], uint32(raw))
		e.buf.Grow(4)
		e.buf.MustWrite(tmp[:])
		e.state.SetFixed1616(slot, int64(raw), v)
		return
	}

	e.writeByte(byte(token.Double))
	var tmp [8]byte
	e.endian.PutUint64(tmp[:], math.Float64bits(v))
	e.buf.Grow(8)
	e.buf.MustWrite(tmp[:])
	e.state.SetFloat(slot, fieldstate.KindDouble, v)
}

// IntAbsolute emits an INT token for v without consulting or updating any
// field's delta baseline. Used for numeric values with no repeating field
// identity to baseline against — bare top-level JSON numbers and array
// elements (spec §6.2: only object field values participate in delta
// tiering), and the column package's Constant strategy (spec §4.4).
func (e *Encoder) IntAbsolute(v int64) {
	e.writeByte(byte(token.Int))
	e.writeVarint64(v)
}

// FloatAbsolute emits the narrowest lossless representation of v (see
// Float) without consulting or updating any field's delta baseline.
func (e *Encoder) FloatAbsolute(v float64) {
	if f16, ok := encodeFloat16(v); ok {
		e.writeByte(byte(token.Float16))
		var tmp [2]byte
		e.endian.PutUint16(tmp[:], f16)
		e.buf.Grow(2)
		e.buf.MustWrite(tmp[:])
		return
	}

	if raw, ok := fixed1616(v); ok {
		e.writeByte(byte(token.Float32))
		var tmp [4]byte
		e.endian.PutUint32(tmp[:], uint32(raw))
		e.buf.Grow(4)
		e.buf.MustWrite(tmp[:])
		return
	}

	e.writeByte(byte(token.Double))
	var tmp [8]byte
	e.endian.PutUint64(tmp[:], math.Float64bits(v))
	e.buf.Grow(8)
	e.buf.MustWrite(tmp[:])
}

func (e *Encoder) writeVarstring(s string) {
	e.writeVarBytes([]byte(s))
}

func (e *Encoder) writeVarBytes(b []byte) {
	e.buf.Grow(varint.MaxLen32 + len(b))
	e.buf.MustWrite(varint.AppendUvarint(nil, uint32(len(b))))
	e.buf.MustWrite(b)
}

func (e *Encoder) writeVarint64(v int64) {
	e.buf.Grow(10)
	e.buf.MustWrite(varint.AppendVarint64(nil, v))
}

// encodeFloat16 attempts an 8.8 fixed-point encoding of v (spec §6.1:
// "FLOAT16: 2 bytes, 8.8 fixed-point"), succeeding only when v round-
// trips exactly — this is a lossless tier selector, not a lossy
// compression choice.
func encodeFloat16(v float64) (uint16, bool) {
	scaled := v * 256
	if scaled != math.Trunc(scaled) {
		return 0, false
	}
	if scaled < math.MinInt16 || scaled > math.MaxInt16 {
		return 0, false
	}
	return uint16(int16(scaled)), true
}

func decodeFloat16(raw uint16) float64 {
	return float64(int16(raw)) / 256
}

// fixedScale is the Q16.16 scale factor FLOAT32 values are encoded at
// (spec §4.1, §6.1: "16.16 fixed-point").
const fixedScale = 65536

// fixed1616 attempts a 16.16 fixed-point encoding of v, succeeding only
// when v round-trips exactly and fits a signed 32-bit scaled integer —
// the same lossless tier-selector contract as encodeFloat16.
func fixed1616(v float64) (int32, bool) {
	scaled := v * fixedScale
	if scaled != math.Trunc(scaled) {
		return 0, false
	}
	if scaled < math.MinInt32 || scaled > math.MaxInt32 {
		return 0, false
	}
	return int32(scaled), true
}

func decodeFixed1616(raw int32) float64 {
	return float64(raw) / fixedScale
}
