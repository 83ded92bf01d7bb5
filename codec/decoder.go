package codec

import (
	"github.com/jaylikesbunda/PACKR/adapter"
	"github.com/jaylikesbunda/PACKR/column"
	"github.com/jaylikesbunda/PACKR/compress"
	"github.com/jaylikesbunda/PACKR/errs"
	"github.com/jaylikesbunda/PACKR/format"
	"github.com/jaylikesbunda/PACKR/frame"
	"github.com/jaylikesbunda/PACKR/internal/options"
	"github.com/jaylikesbunda/PACKR/scalar"
)

// Decoder reads a framed PACKR byte slice back into JSON documents and/or
// column batches, in the order they were written.
type Decoder struct {
	cfg    DecoderConfig
	header frame.Header
	scalar *scalar.Decoder
	column *column.Decoder
}

// NewDecoder reverses any configured at-rest compression, verifies and
// parses the frame, and returns a Decoder ready to replay its body.
func NewDecoder(framed []byte, opts ...DecoderOption) (*Decoder, error) {
	cfg := defaultDecoderConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	raw := framed
	if cfg.compression != format.CompressionNone {
		codec, err := compress.GetCodec(cfg.compression)
		if err != nil {
			return nil, err
		}
		raw, err = codec.Decompress(framed)
		if err != nil {
			return nil, err
		}
	}

	header, body, err := frame.Decode(raw)
	if err != nil {
		return nil, err
	}

	s := scalar.NewDecoder(body)
	return &Decoder{cfg: cfg, header: header, scalar: s, column: column.NewDecoder(s)}, nil
}

// SymbolCount returns the number of top-level symbols (JSON documents or
// column batches) the frame header declares.
func (d *Decoder) SymbolCount() int { return d.header.SymbolCount }

// Done reports whether the frame body has been fully consumed.
func (d *Decoder) Done() bool { return d.scalar.Done() }

// DecodeJSON reads one complete JSON value from the stream and renders it
// as JSON bytes.
func (d *Decoder) DecodeJSON() ([]byte, error) {
	return adapter.Decode(d.scalar)
}

// ReadBatch reads one ULTRA_BATCH symbol's row count and columns. Callers
// must know from their own framing convention (or SymbolCount bookkeeping)
// which stream position holds a batch versus a JSON document; the
// returned error is errs.ErrBadToken if the next symbol is not a batch.
func (d *Decoder) ReadBatch() (rowCount int, cols []column.Column, err error) {
	ev, err := d.scalar.Next()
	if err != nil {
		return 0, nil, err
	}
	if ev.Kind != scalar.EventBatchStart {
		return 0, nil, errs.ErrBadToken
	}
	return d.column.ReadBatch()
}
