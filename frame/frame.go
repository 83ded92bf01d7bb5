// Package frame implements PACKR's outer container (spec §4.7, §6.1):
// magic, version, flags, a varint symbol count, the token-stream body
// (optionally LZ77-wrapped), and a trailing CRC32.
//
// The buffered-vs-streaming split and the Finish()-returns-bytes shape
// are grounded on the teacher's blob-level encoders (e.g.
// NumericEncoder), which accumulate into a pooled buffer and expose a
// single terminal call that seals the header, checksums the body, and
// hands back the finished blob.
package frame

import (
	"github.com/jaylikesbunda/PACKR/crc"
	"github.com/jaylikesbunda/PACKR/errs"
	"github.com/jaylikesbunda/PACKR/internal/varint"
	"github.com/jaylikesbunda/PACKR/lz77"
	"github.com/jaylikesbunda/PACKR/token"
)

// Magic identifies a PACKR frame (spec §6.1): "PKR1".
var Magic = [4]byte{0x50, 0x4B, 0x52, 0x31}

// Version is the only frame version this package writes and reads.
const Version = 1

// Flag bits (spec §4.7, §6.1). Bits 3-7 are reserved and must be zero.
const (
	FlagDictUpdate = 1 << 0
	FlagRiceUsed   = 1 << 1
	FlagDictReset  = 1 << 2
	reservedMask   = 0xF8
)

// Header is the metadata that precedes a frame's body.
type Header struct {
	Flags       byte
	SymbolCount int
}

// Encode assembles a complete frame: header, the body (LZ77-wrapped
// when useLZ77 is true and lz77.ShouldAttempt approves), and a trailing
// CRC32 computed over everything before it.
func Encode(h Header, body []byte, useLZ77 bool) []byte {
	wrapped := body
	prefixLen := 0
	var prefix [2]byte
	if useLZ77 && lz77.ShouldAttempt(body) {
		compressed := lz77.Compress(body)
		if len(compressed) < len(body) {
			wrapped = compressed
			prefix = token.LZ77TransformPrefix
			prefixLen = 2
		}
	}

	out := make([]byte, 0, 4+1+1+varint.MaxLen32+prefixLen+len(wrapped)+4)
	out = append(out, Magic[:]...)
	out = append(out, Version)
	out = append(out, h.Flags&^reservedMask)
	out = varint.AppendUvarint(out, uint32(h.SymbolCount))
	if prefixLen > 0 {
		out = append(out, prefix[0], prefix[1])
	}
	out = append(out, wrapped...)
	out = crc.AppendLE(out, out)

	return out
}

// Decode parses a frame, verifying its CRC32 and reversing any LZ77
// wrapping, returning the header and the plain token-stream body.
func Decode(framed []byte) (Header, []byte, error) {
	if !crc.Verify(framed) {
		return Header{}, nil, errs.ErrCRCMismatch
	}
	data := framed[:len(framed)-4]

	if len(data) < 6 {
		return Header{}, nil, errs.ErrTruncated
	}
	if [4]byte(data[0:4]) != Magic {
		return Header{}, nil, errs.ErrBadMagic
	}
	if data[4] != Version {
		return Header{}, nil, errs.ErrBadVersion
	}
	flags := data[5]
	if flags&reservedMask != 0 {
		return Header{}, nil, errs.ErrReservedFlags
	}

	pos := 6
	symbolCount, n := varint.Uvarint(data[pos:])
	if n <= 0 {
		return Header{}, nil, errs.ErrTruncated
	}
	pos += n

	body := data[pos:]
	if len(body) >= 2 && body[0] == token.LZ77TransformPrefix[0] && body[1] == token.LZ77TransformPrefix[1] {
		plain, err := lz77.Decompress(body[2:])
		if err != nil {
			return Header{}, nil, err
		}
		body = plain
	}

	return Header{Flags: flags, SymbolCount: int(symbolCount)}, body, nil
}
