// Package packr provides a structure-aware streaming codec for JSON
// telemetry targeting MCU-class devices.
//
// PACKR replaces repeated field names, string values, and MAC addresses
// with single-byte dictionary references, delta-encodes repeated numeric
// fields against their own running baseline, and offers a columnar
// ULTRA_BATCH path for same-shaped row batches. A mandatory LZ77
// post-transform and an optional outer at-rest codec (Zstd/S2/LZ4) sit on
// top of the resulting frame.
//
// # Core Features
//
//   - Three 64-slot LRU dictionaries (fields, strings, MAC addresses)
//   - Per-field delta tiering (DELTA_ZERO/ONE/NEG_ONE/SMALL/MEDIUM/LARGE)
//   - Columnar ULTRA_BATCH strategies (constant, most-frequent-value,
//     nibble bit-pack, Rice coding, RLE, scalar-delta fallback)
//   - A hand-written LZ77 transform tuned for small, repetitive streams
//   - Optional at-rest compression (None, Zstd, S2, LZ4)
//   - Allocation and dictionary-occupancy counters for constrained targets
//
// # Basic Usage
//
// Encoding a sequence of JSON telemetry readings:
//
//	import "github.com/jaylikesbunda/PACKR"
//
//	enc, _ := packr.NewEncoder()
//	defer enc.Release()
//
//	enc.EncodeJSON([]byte(`{"temp":21.5,"device":"AA:BB:CC:DD:EE:FF"}`))
//	enc.EncodeJSON([]byte(`{"temp":21.5,"device":"AA:BB:CC:DD:EE:FF"}`))
//	framed, _ := enc.Finish()
//
// Decoding:
//
//	dec, _ := packr.NewDecoder(framed)
//	for i := 0; i < dec.SymbolCount(); i++ {
//	    doc, _ := dec.DecodeJSON()
//	    fmt.Println(string(doc))
//	}
//
// # Package Structure
//
// This package is a thin convenience wrapper around the codec package.
// For column-batch encoding, allocation statistics, and compression
// configuration, use codec.Encoder/codec.Decoder directly.
package packr

import (
	"github.com/jaylikesbunda/PACKR/codec"
)

// NewEncoder creates a codec.Encoder with PACKR's default settings:
// LZ77 enabled, no outer at-rest compression.
func NewEncoder(opts ...codec.EncoderOption) (*codec.Encoder, error) {
	return codec.NewEncoder(opts...)
}

// NewDecoder creates a codec.Decoder over a complete framed byte slice.
func NewDecoder(framed []byte, opts ...codec.DecoderOption) (*codec.Decoder, error) {
	return codec.NewDecoder(framed, opts...)
}

// EncodeJSON is a one-shot convenience wrapper: encode a single JSON
// document and return its finished, framed bytes. For multiple documents
// sharing one dictionary and delta state, use NewEncoder directly.
func EncodeJSON(data []byte, opts ...codec.EncoderOption) ([]byte, error) {
	enc, err := codec.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}
	defer enc.Release()

	if err := enc.EncodeJSON(data); err != nil {
		return nil, err
	}
	return enc.Finish()
}

// DecodeJSON is a one-shot convenience wrapper: decode a single-document
// framed byte slice back into JSON bytes.
func DecodeJSON(framed []byte, opts ...codec.DecoderOption) ([]byte, error) {
	dec, err := codec.NewDecoder(framed, opts...)
	if err != nil {
		return nil, err
	}
	return dec.DecodeJSON()
}
