package scalar

import (
	"math"

	"github.com/jaylikesbunda/PACKR/dict"
	"github.com/jaylikesbunda/PACKR/endian"
	"github.com/jaylikesbunda/PACKR/errs"
	"github.com/jaylikesbunda/PACKR/fieldstate"
	"github.com/jaylikesbunda/PACKR/internal/options"
	"github.com/jaylikesbunda/PACKR/internal/varint"
	"github.com/jaylikesbunda/PACKR/mac"
	"github.com/jaylikesbunda/PACKR/token"
)

// EventKind identifies the shape of a decoded Event.
type EventKind uint8

const (
	EventFieldName EventKind = iota
	EventNull
	EventBool
	EventInt
	EventFloat
	EventString
	EventMAC
	EventBinary
	EventObjectStart
	EventObjectEnd
	EventArrayStart
	EventArrayEnd
	// EventBatchStart marks a consumed ULTRA_BATCH token (spec §4.4): the
	// caller should hand control to column.Decoder.ReadBatch next, which
	// reads the row/column counts and per-column payloads that follow.
	EventBatchStart
)

// Event is one decoded value or structural marker from the token stream.
type Event struct {
	Kind       EventKind
	FieldSlot  int
	Bool       bool
	Int        int64
	Float      float64
	Str        string
	MAC        [mac.Size]byte
	Bin        []byte
	ArrayCount int
}

// Decoder reads PACKR's token stream back into a sequence of Events,
// replaying the same dictionary and delta-state transitions the Encoder
// applied so the two stay in lockstep byte-for-byte (spec §4.3).
type Decoder struct {
	data    []byte
	pos     int
	fields  *dict.Dictionary
	strings *dict.Dictionary
	macs    *dict.Dictionary
	state   *fieldstate.Table
	endian  endian.EndianEngine
}

// DecoderOption configures a Decoder at construction time.
type DecoderOption = options.Option[*Decoder]

// WithDecoderEndian overrides the byte order used to read FLOAT16/
// FLOAT32/DOUBLE payloads; must match the Encoder's WithEndian.
func WithDecoderEndian(e endian.EndianEngine) DecoderOption {
	return options.NoError(func(d *Decoder) {
		d.endian = e
	})
}

// NewDecoder creates a decoder over data with fresh dictionaries and
// delta state, matching a freshly created Encoder. opts must match
// whatever Option the producing Encoder was built with (e.g. WithEndian).
func NewDecoder(data []byte, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		data:    data,
		strings: dict.New(nil),
		macs:    dict.New(nil),
		state:   fieldstate.NewTable(),
		endian:  endian.GetLittleEndianEngine(),
	}
	d.fields = dict.New(d.state.Reset)
	_ = options.Apply(d, opts...)
	return d
}

// Pos returns the current read offset into the input.
func (d *Decoder) Pos() int { return d.pos }

// ReadRawByte reads one raw byte, bypassing token interpretation. Used by
// the column package to read ULTRA_BATCH strategy flags and payload
// bytes from the same unified stream a scalar.Decoder maintains.
func (d *Decoder) ReadRawByte() (byte, error) { return d.readByte() }

// ReadRawBytes reads n raw bytes.
func (d *Decoder) ReadRawBytes(n int) ([]byte, error) { return d.readN(n) }

// ReadUvarint reads an unsigned varint.
func (d *Decoder) ReadUvarint() (uint32, error) { return d.readUvarint() }

// ReadVarint64 reads a ZigZag varint.
func (d *Decoder) ReadVarint64() (int64, error) { return d.readVarint64() }

// ReadToken reads the next raw token byte without dispatching it. Used
// by the column package, which must inspect an ULTRA_BATCH column's
// leading payload token (BITPACK_COL, RICE_COLUMN, MFV_COLUMN, or a
// scalar literal) before deciding how to read what follows (spec §4.5).
func (d *Decoder) ReadToken() (token.Token, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	return token.Token(b), nil
}

// DispatchToken runs the normal (non-field) dispatch for a token the
// caller has already read off the stream via ReadToken. Used by the
// column package to decode a column's leading scalar literal (the
// Constant payload, or the base value of a scalar-delta/RLE fallback
// stream) through the same logic Next uses, instead of duplicating it.
func (d *Decoder) DispatchToken(t token.Token) (Event, error) { return d.dispatch(t) }

// ReadIntDeltaPayload decodes the payload following an already-read
// DELTA_ZERO/ONE/NEG_ONE/SMALL/MEDIUM/LARGE token and returns the delta.
// Used by the column package's scalar-delta fallback strategy, which
// manages its own running baseline rather than a fieldstate.Table slot.
func (d *Decoder) ReadIntDeltaPayload(t token.Token) (int64, error) {
	return d.readDeltaPayload(t)
}

// FieldNameAt returns the field name currently occupying dictionary slot,
// for callers (e.g. the adapter package) that need to recover a field's
// name from the FieldSlot an Event carries.
func (d *Decoder) FieldNameAt(slot int) (string, bool) { return d.fields.At(slot) }

// Done reports whether the input has been fully consumed.
func (d *Decoder) Done() bool { return d.pos >= len(d.data) }

func (d *Decoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, errs.ErrTruncated
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *Decoder) readN(n int) ([]byte, error) {
	if d.pos+n > len(d.data) {
		return nil, errs.ErrTruncated
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) readUvarint() (uint32, error) {
	v, n := varint.Uvarint(d.data[d.pos:])
	if n <= 0 {
		return 0, errs.ErrTruncated
	}
	d.pos += n
	return v, nil
}

func (d *Decoder) readVarint64() (int64, error) {
	v, n := varint.Varint64(d.data[d.pos:])
	if n <= 0 {
		return 0, errs.ErrTruncated
	}
	d.pos += n
	return v, nil
}

func (d *Decoder) readVarBytes() ([]byte, error) {
	n, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	return d.readN(int(n))
}

// Next decodes the next Event from the stream.
func (d *Decoder) Next() (Event, error) {
	b, err := d.readByte()
	if err != nil {
		return Event{}, err
	}
	return d.dispatch(token.Token(b))
}

// NextFieldValue decodes the value following a field name known to occupy
// fieldSlot. Unlike Next, it recognizes delta and absolute numeric tokens
// in that field's context, so callers walking object values (e.g. the
// adapter package) don't need to special-case numeric fields themselves.
func (d *Decoder) NextFieldValue(fieldSlot int) (Event, error) {
	b, err := d.readByte()
	if err != nil {
		return Event{}, err
	}
	t := token.Token(b)
	if isNumericToken(t) {
		return d.dispatchNumeric(t, fieldSlot)
	}
	return d.dispatch(t)
}

func isNumericToken(t token.Token) bool {
	switch {
	case t == token.Int, t == token.Float16, t == token.Float32, t == token.Double:
		return true
	case t == token.DeltaZero, t == token.DeltaOne, t == token.DeltaNegOne, t == token.DeltaMedium, t == token.DeltaLarge:
		return true
	case token.IsDeltaSmall(t):
		return true
	default:
		return false
	}
}

func (d *Decoder) dispatch(t token.Token) (Event, error) {
	if slot, ok := token.IsFieldRef(t); ok {
		if _, occupied := d.fields.At(slot); !occupied {
			return Event{}, errs.ErrDictOverflow
		}
		d.fields.Touch(slot)
		return Event{Kind: EventFieldName, FieldSlot: slot}, nil
	}

	if slot, ok := token.IsStringRef(t); ok {
		s, occupied := d.strings.At(slot)
		if !occupied {
			return Event{}, errs.ErrDictOverflow
		}
		d.strings.Touch(slot)
		return Event{Kind: EventString, Str: s}, nil
	}

	if slot, ok := token.IsMacRef(t); ok {
		s, occupied := d.macs.At(slot)
		if !occupied {
			return Event{}, errs.ErrDictOverflow
		}
		d.macs.Touch(slot)
		raw, perr := mac.Parse(s)
		if perr != nil {
			return Event{}, perr
		}
		return Event{Kind: EventMAC, MAC: raw}, nil
	}

	if token.IsDeltaSmall(t) {
		return Event{}, errs.ErrDeltaWithoutBase
	}

	switch t {
	case token.Int:
		v, err := d.readVarint64()
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: EventInt, Int: v}, nil

	case token.Float16:
		raw, err := d.readN(2)
		if err != nil {
			return Event{}, err
		}
		v := decodeFloat16(d.endian.Uint16(raw))
		return Event{Kind: EventFloat, Float: v}, nil

	case token.Float32:
		raw, err := d.readN(4)
		if err != nil {
			return Event{}, err
		}
		v := decodeFixed1616(int32(d.endian.Uint32(raw)))
		return Event{Kind: EventFloat, Float: v}, nil

	case token.Double:
		raw, err := d.readN(8)
		if err != nil {
			return Event{}, err
		}
		v := math.Float64frombits(d.endian.Uint64(raw))
		return Event{Kind: EventFloat, Float: v}, nil

	case token.DeltaLarge:
		return Event{}, errs.ErrDeltaWithoutBase

	case token.NewString:
		raw, err := d.readVarBytes()
		if err != nil {
			return Event{}, err
		}
		d.strings.Insert(string(raw))
		return Event{Kind: EventString, Str: string(raw)}, nil

	case token.NewField:
		raw, err := d.readVarBytes()
		if err != nil {
			return Event{}, err
		}
		slot := d.fields.Insert(string(raw))
		return Event{Kind: EventFieldName, FieldSlot: slot}, nil

	case token.NewMac:
		raw, err := d.readN(mac.Size)
		if err != nil {
			return Event{}, err
		}
		var arr [mac.Size]byte
		copy(arr[:], raw)
		d.macs.Insert(mac.String(arr))
		return Event{Kind: EventMAC, MAC: arr}, nil

	case token.BoolTrue:
		return Event{Kind: EventBool, Bool: true}, nil
	case token.BoolFalse:
		return Event{Kind: EventBool, Bool: false}, nil
	case token.Null:
		return Event{Kind: EventNull}, nil

	case token.ArrayStart:
		n, err := d.readUvarint()
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: EventArrayStart, ArrayCount: int(n)}, nil
	case token.ArrayEnd:
		return Event{Kind: EventArrayEnd}, nil
	case token.ObjectStart:
		return Event{Kind: EventObjectStart}, nil
	case token.ObjectEnd:
		return Event{Kind: EventObjectEnd}, nil

	case token.Binary:
		raw, err := d.readVarBytes()
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: EventBinary, Bin: raw}, nil

	case token.UltraBatch:
		return Event{Kind: EventBatchStart}, nil

	default:
		return Event{}, errs.ErrBadToken
	}
}

// NextNumeric decodes a numeric token (absolute or delta-tiered) for
// fieldSlot and returns the reconstructed integer or float value. Callers
// that know a token is one of INT/DELTA_ZERO/.../DELTA_LARGE/FLOAT16/
// FLOAT32/DOUBLE should call this instead of Next, which treats bare
// delta tokens as errors (they are only meaningful in a field context).
func (d *Decoder) NextNumeric(fieldSlot int) (Event, error) {
	b, err := d.readByte()
	if err != nil {
		return Event{}, err
	}
	return d.dispatchNumeric(token.Token(b), fieldSlot)
}

func (d *Decoder) dispatchNumeric(t token.Token, fieldSlot int) (Event, error) {
	switch {
	case t == token.Int:
		v, err := d.readVarint64()
		if err != nil {
			return Event{}, err
		}
		d.state.SetInt(fieldSlot, v)
		return Event{Kind: EventInt, Int: v}, nil

	case t == token.DeltaZero, t == token.DeltaOne, t == token.DeltaNegOne, token.IsDeltaSmall(t), t == token.DeltaMedium, t == token.DeltaLarge:
		delta, err := d.readDeltaPayload(t)
		if err != nil {
			return Event{}, err
		}

		// A delta token's meaning depends on which kind is currently
		// baselined at this slot (spec §3: last_kind ∈ {none, int,
		// fixed16_16}) — the same token bytes serve both integer and
		// fixed-point fields.
		if base, ok := d.state.Fixed1616Baseline(fieldSlot); ok {
			raw := base + delta
			v := decodeFixed1616(int32(raw))
			d.state.SetFixed1616(fieldSlot, raw, v)
			return Event{Kind: EventFloat, Float: v}, nil
		}

		base, ok := d.state.IntBaseline(fieldSlot)
		if !ok {
			return Event{}, errs.ErrDeltaWithoutBase
		}
		v := base + delta
		d.state.SetInt(fieldSlot, v)
		return Event{Kind: EventInt, Int: v}, nil

	case t == token.Float16:
		raw, err := d.readN(2)
		if err != nil {
			return Event{}, err
		}
		v := decodeFloat16(d.endian.Uint16(raw))
		d.state.SetFloat(fieldSlot, fieldstate.KindFloat16, v)
		return Event{Kind: EventFloat, Float: v}, nil

	case t == token.Float32:
		raw, err := d.readN(4)
		if err != nil {
			return Event{}, err
		}
		fx := int32(d.endian.Uint32(raw))
		v := decodeFixed1616(fx)
		d.state.SetFixed1616(fieldSlot, int64(fx), v)
		return Event{Kind: EventFloat, Float: v}, nil

	case t == token.Double:
		raw, err := d.readN(8)
		if err != nil {
			return Event{}, err
		}
		v := math.Float64frombits(d.endian.Uint64(raw))
		d.state.SetFloat(fieldSlot, fieldstate.KindDouble, v)
		return Event{Kind: EventFloat, Float: v}, nil

	default:
		return Event{}, errs.ErrBadToken
	}
}

// readDeltaPayload reads the payload following an already-consumed
// DELTA_* token and returns the delta it encodes (spec §4.3's tier
// table), independent of what kind of baseline it will be applied to.
func (d *Decoder) readDeltaPayload(t token.Token) (int64, error) {
	switch {
	case t == token.DeltaZero:
		return 0, nil
	case t == token.DeltaOne:
		return 1, nil
	case t == token.DeltaNegOne:
		return -1, nil
	case token.IsDeltaSmall(t):
		return int64(token.DecodeDeltaSmall(t)), nil
	case t == token.DeltaMedium:
		raw, err := d.readByte()
		if err != nil {
			return 0, err
		}
		return int64(int8(raw)) - 64, nil
	case t == token.DeltaLarge:
		return d.readVarint64()
	default:
		return 0, errs.ErrBadToken
	}
}
