// Package lz77 implements PACKR's mandatory post-processing transform
// (spec §4.6): a small, streaming-friendly LZ77 variant tuned for the
// repetitive token stream the scalar/column packages already produce,
// run over the frame body before CRC32 and optional at-rest compression.
//
// This transform's wire format is normative and byte-exact — nothing in
// the retrieval pack's general-purpose compressors (klauspost/compress,
// pierrec/lz4) reproduces it, so unlike the optional compress package
// (grounded on those libraries) this one is hand-written. Its interface
// shape (Compress/Decompress returning ([]byte, error)) still follows
// the teacher's compress.Codec pattern so the two compression layers
// read the same way to a caller.
package lz77

import (
	"github.com/jaylikesbunda/PACKR/errs"
	"github.com/jaylikesbunda/PACKR/internal/varint"
)

// Block format bytes (spec §4.6): a stored block is emitted whenever
// compression would expand the input.
const (
	formatStored byte = 0x00
	formatLZ77   byte = 0x02
)

const (
	windowSize   = 4096
	minMatchLen  = 3
	maxMatchLen  = 258
	maxChainLen  = 32
	hashTableLen = 4096
	hashBits     = 12
)

// ShouldAttempt is a cheap entropy pre-check: data whose first 1KiB is
// already close to uniformly distributed (high unique-byte ratio) is
// unlikely to compress, so callers can skip the LZ77 pass entirely
// (spec §4.6).
func ShouldAttempt(data []byte) bool {
	sampleLen := len(data)
	if sampleLen > 1024 {
		sampleLen = 1024
	}
	if sampleLen == 0 {
		return false
	}

	var seen [256]bool
	unique := 0
	for _, b := range data[:sampleLen] {
		if !seen[b] {
			seen[b] = true
			unique++
		}
	}

	return unique*100 < sampleLen*80
}

func hash4(data []byte) uint32 {
	v := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	h := (v * 0x1e35a7bd) ^ (v >> 16)
	return h & (hashTableLen - 1)
}

// Compress runs PACKR's LZ77 transform over data, falling back to a
// stored block if the compressed form would not be smaller.
func Compress(data []byte) []byte {
	compressed := compressBlock(data)
	if len(compressed) >= len(data) {
		stored := make([]byte, 0, len(data)+1+varint.MaxLen32)
		stored = append(stored, formatStored)
		stored = varint.AppendUvarint(stored, uint32(len(data)))
		stored = append(stored, data...)
		return stored
	}

	lz := make([]byte, 0, len(compressed)+1+varint.MaxLen32)
	lz = append(lz, formatLZ77)
	lz = varint.AppendUvarint(lz, uint32(len(data)))
	lz = append(lz, compressed...)
	return lz
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, errs.ErrLZ77BadBlock
	}
	format := data[0]
	rest := data[1:]

	origLen, n := varint.Uvarint(rest)
	if n <= 0 {
		return nil, errs.ErrTruncated
	}
	rest = rest[n:]

	switch format {
	case formatStored:
		if len(rest) < int(origLen) {
			return nil, errs.ErrTruncated
		}
		out := make([]byte, origLen)
		copy(out, rest[:origLen])
		return out, nil

	case formatLZ77:
		return decompressBlock(rest, int(origLen))

	default:
		return nil, errs.ErrLZ77BadBlock
	}
}

// compressBlock produces the tuple stream (without the outer format
// byte / length prefix) for data using a bounded hash-chain match finder
// over a 4KiB lookback window (spec §4.6).
func compressBlock(data []byte) []byte {
	return compressRange(data, 0)
}

// compressRange is compressBlock generalized with a lookback prefix:
// data[:start] is hash-filled as match context but never itself emitted
// as literals or a match target start — the StreamWriter uses this to
// let a chunk's matches reach back into the previous chunk's tail
// without re-encoding that tail (spec §4.6 streaming window).
func compressRange(data []byte, start int) []byte {
	out := make([]byte, 0, len(data)-start)

	head := make([]int, hashTableLen)
	for i := range head {
		head[i] = -1
	}
	prevChain := make([]int, len(data))

	for i := 0; i < start && i+4 <= len(data); i++ {
		h := hash4(data[i:])
		prevChain[i] = head[h]
		head[h] = i
	}

	pos := start
	var literals []byte

	flushLiteralsAndMatch := func(matchLen, matchOffset int) {
		out = appendTuple(out, literals, matchLen, matchOffset)
		literals = literals[:0]
	}

	for pos < len(data) {
		bestLen, bestOffset := 0, 0

		if pos+4 <= len(data) {
			h := hash4(data[pos:])
			candidate := head[h]
			chainLen := 0
			for candidate >= 0 && chainLen < maxChainLen {
				if pos-candidate <= windowSize {
					l := matchLength(data, candidate, pos)
					if l > bestLen {
						bestLen = l
						bestOffset = pos - candidate
					}
				}
				candidate = prevChain[candidate]
				chainLen++
			}
		}

		minLen := minMatchLen
		if len(literals) == 0 {
			minLen = 4
		}

		if bestLen >= minLen {
			flushLiteralsAndMatch(bestLen, bestOffset)

			end := pos + bestLen
			for pos < end {
				if pos+4 <= len(data) {
					h := hash4(data[pos:])
					prevChain[pos] = head[h]
					head[h] = pos
				}
				pos++
			}
			continue
		}

		literals = append(literals, data[pos])
		if pos+4 <= len(data) {
			h := hash4(data[pos:])
			prevChain[pos] = head[h]
			head[h] = pos
		}
		pos++

		if len(literals) >= 4096 {
			flushLiteralsAndMatch(0, 0)
		}
	}

	if len(literals) > 0 {
		out = appendTuple(out, literals, 0, 0)
	}

	return out
}

func matchLength(data []byte, a, b int) int {
	n := 0
	for b+n < len(data) && data[a+n] == data[b+n] && n < maxMatchLen {
		n++
	}
	return n
}

// appendTuple writes one control-nibble-led tuple: literal run (its
// length encoded in the high nibble, extended via a 255-terminated
// continuation chain) followed by the literal bytes, then — if
// matchLen > 0 — the low nibble's match length code, a 2-byte
// little-endian back-offset, and any match-length continuation bytes
// (spec §4.6).
func appendTuple(out []byte, literals []byte, matchLen, matchOffset int) []byte {
	litCode, litExtra := lengthCode(len(literals))
	var matchCode int
	var matchExtra []byte
	if matchLen > 0 {
		matchCode, matchExtra = lengthCode(matchLen - minMatchLen)
	}

	out = append(out, byte(litCode<<4)|byte(matchCode))
	out = append(out, litExtra...)
	out = append(out, literals...)
	if matchLen > 0 {
		out = append(out, byte(matchOffset), byte(matchOffset>>8))
		out = append(out, matchExtra...)
	}
	return out
}

// lengthCode splits a length value into a 4-bit code (0-14 direct, 15
// meaning "read a continuation chain") and the continuation bytes that
// chain uses: each extra byte adds its value to the running length;
// 255 means "more bytes follow", any value <255 terminates the chain.
func lengthCode(value int) (code int, extra []byte) {
	if value < 15 {
		return value, nil
	}

	remaining := value - 14
	for remaining >= 255 {
		extra = append(extra, 255)
		remaining -= 255
	}
	extra = append(extra, byte(remaining))
	return 15, extra
}

func readLengthCode(code int, data []byte, pos int) (length int, newPos int, ok bool) {
	if code < 15 {
		return code, pos, true
	}

	length = 14
	for {
		if pos >= len(data) {
			return 0, pos, false
		}
		b := data[pos]
		pos++
		length += int(b)
		if b < 255 {
			break
		}
	}
	return length, pos, true
}

// decompressBlock reverses compressBlock, accumulating exactly origLen
// bytes of output.
func decompressBlock(data []byte, origLen int) ([]byte, error) {
	out := make([]byte, 0, origLen)
	pos := 0

	for len(out) < origLen {
		if pos >= len(data) {
			return nil, errs.ErrTruncated
		}
		control := data[pos]
		pos++
		litCode := int(control >> 4)
		matchCode := int(control & 0x0F)

		litLen, newPos, ok := readLengthCode(litCode, data, pos)
		if !ok {
			return nil, errs.ErrTruncated
		}
		pos = newPos

		if pos+litLen > len(data) {
			return nil, errs.ErrTruncated
		}
		out = append(out, data[pos:pos+litLen]...)
		pos += litLen

		// matchCode == 0 means this tuple is a literal-only flush (the
		// encoder only passes matchLen > 0 to appendTuple when a real
		// match was found); no offset/length fields follow.
		if matchCode == 0 {
			continue
		}

		if pos+2 > len(data) {
			return nil, errs.ErrTruncated
		}
		offset := int(data[pos]) | int(data[pos+1])<<8
		pos += 2

		matchLen, newPos2, ok := readLengthCode(matchCode, data, pos)
		if !ok {
			return nil, errs.ErrTruncated
		}
		pos = newPos2
		matchLen += minMatchLen

		if offset <= 0 || offset > len(out) {
			return nil, errs.ErrLZ77BadOffset
		}
		start := len(out) - offset
		for i := 0; i < matchLen; i++ {
			out = append(out, out[start+i])
		}
	}

	if len(out) != origLen {
		return nil, errs.ErrLZ77Overflow
	}

	return out, nil
}
