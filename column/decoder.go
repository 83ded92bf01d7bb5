package column

import (
	"github.com/jaylikesbunda/PACKR/errs"
	"github.com/jaylikesbunda/PACKR/internal/bitio"
	"github.com/jaylikesbunda/PACKR/scalar"
	"github.com/jaylikesbunda/PACKR/token"
)

// Decoder reads ULTRA_BATCH columns back from a shared scalar.Decoder's
// stream. The caller must have already consumed the ULTRA_BATCH token
// itself via scalar.Decoder.Next before calling ReadBatch.
type Decoder struct {
	s *scalar.Decoder
}

// NewDecoder wraps s.
func NewDecoder(s *scalar.Decoder) *Decoder {
	return &Decoder{s: s}
}

// ReadBatch reads rowCount and the columns that follow an already-
// consumed ULTRA_BATCH token (spec §4.4). The decoder dispatches purely
// on the real token that leads each column's payload — it never re-
// derives the encoder's strategy heuristic, and it never needs the
// column's NUMERIC flag either: BITPACK_COL/RICE_COLUMN/MFV_COLUMN are
// self-identifying tokens, and a Constant or scalar-delta-fallback
// column's leading scalar literal already reveals int vs. string.
func (d *Decoder) ReadBatch() (rowCount int, cols []Column, err error) {
	rc, err := d.s.ReadUvarint()
	if err != nil {
		return 0, nil, err
	}
	colCount, err := d.s.ReadUvarint()
	if err != nil {
		return 0, nil, err
	}

	cols = make([]Column, colCount)
	for i := range cols {
		cols[i], err = d.readColumn(int(rc))
		if err != nil {
			return 0, nil, err
		}
	}

	return int(rc), cols, nil
}

func (d *Decoder) readColumn(rowCount int) (Column, error) {
	fieldEv, err := d.s.Next()
	if err != nil {
		return Column{}, err
	}
	if fieldEv.Kind != scalar.EventFieldName {
		return Column{}, errs.ErrColumnPayload
	}

	flags, err := d.s.ReadRawByte()
	if err != nil {
		return Column{}, err
	}

	var valid []bool
	if flags&FlagHasNulls != 0 {
		raw, err := d.s.ReadRawBytes((rowCount + 7) / 8)
		if err != nil {
			return Column{}, err
		}
		valid = readValidityBytes(raw, rowCount)
	}
	constant := flags&FlagConstant != 0

	col := Column{FieldSlot: fieldEv.FieldSlot, Valid: valid}

	t, err := d.s.ReadToken()
	if err != nil {
		return Column{}, err
	}

	switch t {
	case token.BitpackCol:
		values, err := d.readBitpackPayload()
		if err != nil {
			return Column{}, err
		}
		col.Numeric = true
		col.Values = values

	case token.RiceColumn:
		values, err := d.readRicePayload()
		if err != nil {
			return Column{}, err
		}
		col.Numeric = true
		col.Values = values

	case token.MFVColumn:
		if err := d.readMFVPayload(rowCount, &col); err != nil {
			return Column{}, err
		}

	default:
		// The leading scalar literal reveals the rest: a lone Constant
		// value, or the first element of a numeric scalar-delta stream
		// or a string RLE run (spec §4.4, §4.5).
		ev, err := d.s.DispatchToken(t)
		if err != nil {
			return Column{}, err
		}
		switch ev.Kind {
		case scalar.EventInt:
			col.Numeric = true
			if constant {
				col.Values = repeatInt(ev.Int, rowCount)
			} else {
				values, err := d.readScalarDeltaRest(ev.Int, rowCount)
				if err != nil {
					return Column{}, err
				}
				col.Values = values
			}
		case scalar.EventString:
			if constant {
				col.Raw = repeatStr(ev.Str, rowCount)
			} else {
				raw, err := d.readStringRLERest(ev.Str, rowCount)
				if err != nil {
					return Column{}, err
				}
				col.Raw = raw
			}
		default:
			return Column{}, errs.ErrColumnPayload
		}
	}

	return col, nil
}

func repeatInt(v int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func repeatStr(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// readExceptionBitmap reads the ceil(n/8)-byte LSB-first MFV exception
// bitmap (spec §4.4) and reports which of the n row indices are
// exceptions, in ascending order.
func (d *Decoder) readExceptionBitmap(n int) ([]int, error) {
	raw, err := d.s.ReadRawBytes((n + 7) / 8)
	if err != nil {
		return nil, err
	}
	var exceptions []int
	for i := 0; i < n; i++ {
		if raw[i/8]&(1<<uint(i%8)) != 0 {
			exceptions = append(exceptions, i)
		}
	}
	return exceptions, nil
}

// readBitpackPayload reads a BITPACK_COL payload whose leading token has
// already been consumed (spec §4.4): a base value, a delta count, and
// count nibble-packed signed deltas in [-8, 7].
func (d *Decoder) readBitpackPayload() ([]int64, error) {
	base, err := d.s.ReadVarint64()
	if err != nil {
		return nil, err
	}
	n, err := d.s.ReadUvarint()
	if err != nil {
		return nil, err
	}

	out := make([]int64, n+1)
	out[0] = base

	nBytes := (int(n) + 1) / 2
	raw, err := d.s.ReadRawBytes(nBytes)
	if err != nil {
		return nil, err
	}

	nibbles := make([]byte, 0, nBytes*2)
	for _, b := range raw {
		nibbles = append(nibbles, b>>4, b&0xF)
	}

	prev := base
	for i := 0; i < int(n); i++ {
		delta := int64(nibbles[i]) - 8
		prev += delta
		out[i+1] = prev
	}
	return out, nil
}

// readRicePayload reads a RICE_COLUMN payload whose leading token has
// already been consumed (spec §4.4): a base value, Rice parameter K, a
// delta count, and a ZigZag/Rice-coded bitstream.
func (d *Decoder) readRicePayload() ([]int64, error) {
	base, err := d.s.ReadVarint64()
	if err != nil {
		return nil, err
	}
	kByte, err := d.s.ReadRawByte()
	if err != nil {
		return nil, err
	}
	k := int(kByte)

	deltaCount, err := d.s.ReadUvarint()
	if err != nil {
		return nil, err
	}
	payloadLen, err := d.s.ReadUvarint()
	if err != nil {
		return nil, err
	}
	payload, err := d.s.ReadRawBytes(int(payloadLen))
	if err != nil {
		return nil, err
	}

	br := bitio.NewReader(payload)
	out := make([]int64, deltaCount+1)
	out[0] = base
	prev := base
	for i := uint32(0); i < deltaCount; i++ {
		q, ok := br.ReadUnary()
		if !ok {
			return nil, errs.ErrRiceUnderflow
		}
		var r uint64
		if k > 0 {
			r, ok = br.ReadBits(k)
			if !ok {
				return nil, errs.ErrRiceUnderflow
			}
		}
		zz := (uint64(q) << uint(k)) | r
		prev += unzigzag64(zz)
		out[i+1] = prev
	}
	return out, nil
}

// readMFVPayload reads an MFV_COLUMN payload whose leading token has
// already been consumed (spec §4.4): count, mode value, an exception
// bitmap, then one literal exception value per set bit, in row order.
// Applies to both int and string columns; col.Numeric is set from the
// mode value's own token.
func (d *Decoder) readMFVPayload(rowCount int, col *Column) error {
	count, err := d.s.ReadUvarint()
	if err != nil {
		return err
	}

	t, err := d.s.ReadToken()
	if err != nil {
		return err
	}
	modeEv, err := d.s.DispatchToken(t)
	if err != nil {
		return err
	}

	exceptions, err := d.readExceptionBitmap(int(count))
	if err != nil {
		return err
	}

	switch modeEv.Kind {
	case scalar.EventInt:
		col.Numeric = true
		out := repeatInt(modeEv.Int, int(count))
		for _, idx := range exceptions {
			v, err := d.s.ReadVarint64()
			if err != nil {
				return err
			}
			if idx >= len(out) {
				return errs.ErrColumnPayload
			}
			out[idx] = v
		}
		col.Values = out
		return nil

	case scalar.EventString:
		out := repeatStr(modeEv.Str, int(count))
		for _, idx := range exceptions {
			v, err := d.readStringLiteral()
			if err != nil {
				return err
			}
			if idx >= len(out) {
				return errs.ErrColumnPayload
			}
			out[idx] = v
		}
		col.Raw = out
		return nil

	default:
		return errs.ErrColumnPayload
	}
}

// readScalarDeltaRest reads the remainder of a numeric scalar-delta
// fallback stream after its leading absolute value base, until rowCount
// values are collected (spec §4.4): a mix of per-value delta tokens and
// RLE_REPEAT(run) collapses of zero-delta runs.
func (d *Decoder) readScalarDeltaRest(base int64, rowCount int) ([]int64, error) {
	out := make([]int64, 0, rowCount)
	out = append(out, base)
	prev := base

	for len(out) < rowCount {
		tag, err := d.s.ReadToken()
		if err != nil {
			return nil, err
		}

		if tag == token.RLERepeat {
			run, err := d.s.ReadUvarint()
			if err != nil {
				return nil, err
			}
			for i := uint32(0); i < run; i++ {
				out = append(out, prev)
			}
			continue
		}

		delta, err := d.s.ReadIntDeltaPayload(tag)
		if err != nil {
			return nil, err
		}
		prev += delta
		out = append(out, prev)
	}
	return out, nil
}

// readStringRLERest reads the remainder of a string/bool RLE stream
// after its leading literal value, until rowCount values are collected
// (spec §4.4): a self-terminating mix of literal values and
// RLE_REPEAT(run) run collapses.
func (d *Decoder) readStringRLERest(first string, rowCount int) ([]string, error) {
	out := make([]string, 0, rowCount)
	out = append(out, first)
	prev := first

	for len(out) < rowCount {
		tag, err := d.s.ReadToken()
		if err != nil {
			return nil, err
		}
		if tag == token.RLERepeat {
			run, err := d.s.ReadUvarint()
			if err != nil {
				return nil, err
			}
			for i := uint32(0); i < run; i++ {
				out = append(out, prev)
			}
			continue
		}
		v, err := d.s.DispatchToken(tag)
		if err != nil {
			return nil, err
		}
		if v.Kind != scalar.EventString {
			return nil, errs.ErrColumnPayload
		}
		out = append(out, v.Str)
		prev = v.Str
	}
	return out, nil
}

// readStringLiteral reads a single scalar string literal through the
// scalar decoder's normal token dispatch (STRING_REF/NEW_STRING). Used
// only by the MFV exception list, whose leading token was not already
// consumed by the caller.
func (d *Decoder) readStringLiteral() (string, error) {
	t, err := d.s.ReadToken()
	if err != nil {
		return "", err
	}
	ev, err := d.s.DispatchToken(t)
	if err != nil {
		return "", err
	}
	if ev.Kind != scalar.EventString {
		return "", errs.ErrColumnPayload
	}
	return ev.Str, nil
}
