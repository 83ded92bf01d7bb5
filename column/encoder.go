package column

import (
	"github.com/jaylikesbunda/PACKR/scalar"
	"github.com/jaylikesbunda/PACKR/token"

	"github.com/jaylikesbunda/PACKR/internal/bitio"
	"github.com/jaylikesbunda/PACKR/internal/pool"
)

// Encoder writes a batch of columns as a single ULTRA_BATCH token
// followed by one encoded column per field, appending directly onto a
// shared scalar.Encoder's stream (spec §4.4).
type Encoder struct {
	s *scalar.Encoder
}

// NewEncoder wraps s, PACKR's unified scalar/column token stream.
func NewEncoder(s *scalar.Encoder) *Encoder {
	return &Encoder{s: s}
}

// WriteBatch encodes rows of columns as ULTRA_BATCH. Every Column in
// cols must have the same number of values (the batch's row count).
func (e *Encoder) WriteBatch(rowCount int, cols []Column) {
	e.s.WriteRawByte(byte(token.UltraBatch))
	e.s.WriteUvarint(uint32(rowCount))
	e.s.WriteUvarint(uint32(len(cols)))

	for _, c := range cols {
		e.writeColumn(rowCount, c)
	}
}

func (e *Encoder) writeColumn(rowCount int, c Column) {
	e.s.FieldName(c.Name)

	validity := validityBytes(c.Valid)
	flags := byte(0)
	if validity != nil {
		flags |= FlagHasNulls
	}

	var strategy Strategy
	if c.Numeric {
		strategy = analyzeNumeric(c.Values)
	} else {
		strategy = analyzeRaw(c.Raw)
	}
	if strategy == StrategyConstant {
		flags |= FlagConstant
	}
	if strategy == StrategyRLE {
		flags |= FlagRLE
	}
	// NUMERIC marks only the strategies whose payload is an opaque
	// delta/bit-packed stream the decoder cannot self-describe from a
	// token alone (spec §4.4). Constant and MFV payloads lead with a
	// normal scalar literal, so the decoder learns int-vs-string from
	// the token itself and needs no flag (spec §8 scenario 3: a
	// constant numeric column's flags are just CONSTANT, `0x01`).
	if c.Numeric && (strategy == StrategyBitpack || strategy == StrategyRice || strategy == StrategyScalarDelta) {
		flags |= FlagNumeric
	}

	e.s.WriteRawByte(flags)
	if validity != nil {
		e.s.WriteRawBytes(validity)
	}

	if c.Numeric {
		e.writeNumericPayload(strategy, c.Values)
	} else {
		e.writeRawPayload(strategy, c.Raw)
	}
}

// writeNumericPayload emits a column's payload using the real spec
// tokens the decoder dispatches on (spec §4.4, §4.5): BITPACK_COL/
// RICE_COLUMN/MFV_COLUMN lead their own payload, while Constant and the
// scalar-delta fallback lead with a plain scalar literal (INT) that the
// decoder's normal dispatch already knows how to read.
func (e *Encoder) writeNumericPayload(strategy Strategy, values []int64) {
	switch strategy {
	case StrategyConstant:
		e.s.IntAbsolute(values[0])

	case StrategyMFV:
		mfv, _ := majorityValue(values)
		e.s.WriteRawByte(byte(token.MFVColumn))
		e.s.WriteUvarint(uint32(len(values)))
		e.s.IntAbsolute(mfv)
		e.writeExceptionBitmap(len(values), func(i int) bool { return values[i] != mfv })
		for _, v := range values {
			if v != mfv {
				e.s.WriteVarint64(v)
			}
		}

	case StrategyBitpack:
		e.s.WriteRawByte(byte(token.BitpackCol))
		e.s.WriteVarint64(values[0])
		n := len(values) - 1
		nibbles := make([]byte, n)
		for i := 1; i < len(values); i++ {
			delta := values[i] - values[i-1]
			nibbles[i-1] = byte(delta + 8)
		}
		e.s.WriteUvarint(uint32(n))
		for i := 0; i < len(nibbles); i += 2 {
			hi := nibbles[i]
			lo := byte(8) // padding nibble when count is odd
			if i+1 < len(nibbles) {
				lo = nibbles[i+1]
			}
			e.s.WriteRawByte(hi<<4 | lo)
		}

	case StrategyRice:
		e.s.WriteRawByte(byte(token.RiceColumn))
		e.s.WriteVarint64(values[0])

		var maxAbs uint64
		deltas, deltasDone := pool.GetInt64Slice(len(values) - 1)
		defer deltasDone()
		for i := 1; i < len(values); i++ {
			d := values[i] - values[i-1]
			deltas[i-1] = d
			if a := absInt64(d); a > maxAbs {
				maxAbs = a
			}
		}
		k := riceK(maxAbs)
		e.s.WriteRawByte(byte(k))
		e.s.WriteUvarint(uint32(len(deltas)))

		bw := bitio.NewWriter()
		for _, d := range deltas {
			zz := zigzag64(d)
			q := zz >> uint(k)
			r := zz & ((1 << uint(k)) - 1)
			bw.WriteUnary(int(q))
			if k > 0 {
				bw.WriteBits(r, k)
			}
		}
		payload := bw.Flush()
		e.s.WriteUvarint(uint32(len(payload)))
		e.s.WriteRawBytes(payload)
		bw.Release()

	case StrategyScalarDelta:
		e.s.IntAbsolute(values[0])
		i := 1
		for i < len(values) {
			delta := values[i] - values[i-1]
			if delta == 0 {
				run := 1
				for i+run < len(values) && values[i+run] == values[i+run-1] {
					run++
				}
				if run > 3 {
					// RLE_REPEAT collapse: one token plus a run length
					// replaces `run` individual DELTA_ZERO tokens (spec
					// §4.4).
					e.s.WriteRawByte(byte(token.RLERepeat))
					e.s.WriteUvarint(uint32(run))
					i += run
					continue
				}
			}
			e.s.WriteIntDelta(delta)
			i++
		}
	}
}

// writeRawPayload emits a string/bool column's payload. Values route
// through the scalar encoder's real STRING_REF/NEW_STRING dictionary
// tokens rather than a column-private length-prefixed format, so the
// decoder's normal string dispatch reads them back unchanged.
func (e *Encoder) writeRawPayload(strategy Strategy, values []string) {
	switch strategy {
	case StrategyConstant:
		e.s.StringValue(values[0])

	case StrategyMFV:
		mfv, _ := majorityValueStr(values)
		e.s.WriteRawByte(byte(token.MFVColumn))
		e.s.WriteUvarint(uint32(len(values)))
		e.s.StringValue(mfv)
		e.writeExceptionBitmap(len(values), func(i int) bool { return values[i] != mfv })
		for _, v := range values {
			if v != mfv {
				e.s.StringValue(v)
			}
		}

	default: // StrategyRLE: value once, then RLE_REPEAT|(run-1) per run.
		e.s.StringValue(values[0])
		i := 1
		for i < len(values) {
			if values[i] == values[i-1] {
				run := 1
				for i+run < len(values) && values[i+run] == values[i-1] {
					run++
				}
				e.s.WriteRawByte(byte(token.RLERepeat))
				e.s.WriteUvarint(uint32(run))
				i += run
				continue
			}
			e.s.StringValue(values[i])
			i++
		}
	}
}

// writeExceptionBitmap emits the ceil(n/8)-byte LSB-first MFV exception
// bitmap spec §4.4 specifies, with bit i set when isException(i).
func (e *Encoder) writeExceptionBitmap(n int, isException func(i int) bool) {
	bitmap := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		if isException(i) {
			bitmap[i/8] |= 1 << uint(i%8)
		}
	}
	e.s.WriteRawBytes(bitmap)
}
