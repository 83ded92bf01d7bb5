// Package codec is PACKR's public encode/decode surface: it ties the
// scalar, column, frame, lz77, and compress packages together the way
// mebo's blob package ties its section/encoding packages together behind
// NumericEncoder/NumericDecoder.
package codec

import (
	"github.com/jaylikesbunda/PACKR/adapter"
	"github.com/jaylikesbunda/PACKR/column"
	"github.com/jaylikesbunda/PACKR/compress"
	"github.com/jaylikesbunda/PACKR/format"
	"github.com/jaylikesbunda/PACKR/frame"
	"github.com/jaylikesbunda/PACKR/internal/options"
	"github.com/jaylikesbunda/PACKR/scalar"
)

// Stats reports allocation and dictionary-occupancy counters (spec §5:
// "SHOULD expose current/peak allocation counters"), read from the
// pool.ByteBuffer and dict.Dictionary an Encoder already owns.
type Stats struct {
	BufferLen       int
	BufferCap       int
	FieldSlotsUsed  int
	StringSlotsUsed int
	MacSlotsUsed    int
}

// Encoder accumulates scalar values and column batches into a single
// token stream and seals them into a framed, optionally LZ77-wrapped and
// at-rest-compressed byte slice via Finish.
type Encoder struct {
	cfg         EncoderConfig
	scalar      *scalar.Encoder
	column      *column.Encoder
	symbolCount int
}

// NewEncoder creates an Encoder with fresh dictionaries and delta state.
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	cfg := defaultEncoderConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	s := scalar.NewEncoder()
	return &Encoder{
		cfg:    cfg,
		scalar: s,
		column: column.NewEncoder(s),
	}, nil
}

// EncodeJSON walks one JSON document and writes it as PACKR tokens (spec
// §6.2), threading repeated object fields through their own delta state.
func (e *Encoder) EncodeJSON(data []byte) error {
	if err := adapter.Encode(e.scalar, data); err != nil {
		return err
	}
	e.symbolCount++
	return nil
}

// WriteBatch encodes rowCount rows of cols as a single ULTRA_BATCH token
// (spec §4.4), for callers that already have same-shaped rows in columnar
// form rather than per-row JSON documents.
func (e *Encoder) WriteBatch(rowCount int, cols []column.Column) {
	e.column.WriteBatch(rowCount, cols)
	e.symbolCount++
}

// Finish seals the accumulated token stream into a complete frame (spec
// §6.1, §4.7): magic/version/flags/symbol-count header, the body
// (optionally LZ77-wrapped), a trailing CRC32, and — if configured — an
// outer at-rest codec over the whole framed result.
func (e *Encoder) Finish() ([]byte, error) {
	framed := frame.Encode(frame.Header{SymbolCount: e.symbolCount}, e.scalar.Bytes(), e.cfg.useLZ77)

	if e.cfg.compression == format.CompressionNone {
		return framed, nil
	}

	codec, err := compress.GetCodec(e.cfg.compression)
	if err != nil {
		return nil, err
	}
	return codec.Compress(framed)
}

// Stats reports the encoder's current allocation and dictionary state.
func (e *Encoder) Stats() Stats {
	fields, strings, macs := e.scalar.DictionaryOccupancy()
	return Stats{
		BufferLen:       e.scalar.Len(),
		BufferCap:       e.scalar.Cap(),
		FieldSlotsUsed:  fields,
		StringSlotsUsed: strings,
		MacSlotsUsed:    macs,
	}
}

// Release returns the encoder's output buffer to the shared pool. The
// encoder must not be used after Release.
func (e *Encoder) Release() { e.scalar.Release() }
