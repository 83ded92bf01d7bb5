// Package varint implements the unsigned and ZigZag varint formats spec
// §4.1 requires: little-endian base-128 with MSB continuation, 1-5 bytes
// for 32-bit values, ZigZag-mapped for signed deltas.
//
// PACKR reuses encoding/binary's Uvarint/PutUvarint directly rather than
// hand-rolling the continuation-bit loop — this is the same choice the
// teacher's own encoding.TimestampDeltaEncoder makes for delta-of-delta
// timestamps, and it is the idiomatic way to produce exactly the format
// spec §4.1 describes.
package varint

import "encoding/binary"

// MaxLen32 is the maximum number of bytes a 32-bit varint can occupy.
const MaxLen32 = binary.MaxVarintLen32

// AppendUvarint appends the unsigned varint encoding of v to buf.
func AppendUvarint(buf []byte, v uint32) []byte {
	var tmp [binary.MaxVarintLen32]byte
	n := binary.PutUvarint(tmp[:], uint64(v))
	return append(buf, tmp[:n]...)
}

// AppendVarint appends the ZigZag + varint encoding of a signed value to buf.
//
// ZigZag maps signed n to unsigned via (n << 1) ^ (n >> 31), so small
// magnitude negatives cost as few bytes as small positives.
func AppendVarint(buf []byte, v int32) []byte {
	zz := (uint32(v) << 1) ^ uint32(v>>31)
	return AppendUvarint(buf, zz)
}

// AppendVarint64 appends the ZigZag + varint encoding of a 64-bit signed value to buf.
func AppendVarint64(buf []byte, v int64) []byte {
	zz := (uint64(v) << 1) ^ uint64(v>>63)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], zz)
	return append(buf, tmp[:n]...)
}

// Uvarint decodes an unsigned varint from data, returning the value and
// the number of bytes consumed (0 on error).
func Uvarint(data []byte) (uint32, int) {
	v, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, n
	}
	return uint32(v), n
}

// Varint decodes a ZigZag + varint encoded signed value from data.
func Varint(data []byte) (int32, int) {
	zz, n := Uvarint(data)
	if n <= 0 {
		return 0, n
	}
	v := int32(zz>>1) ^ -int32(zz&1)
	return v, n
}

// Varint64 decodes a ZigZag + varint encoded 64-bit signed value from data.
func Varint64(data []byte) (int64, int) {
	zz, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, n
	}
	v := int64(zz>>1) ^ -int64(zz&1)
	return v, n
}
