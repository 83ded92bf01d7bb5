// Package format defines small shared enumerations used across PACKR's
// optional at-rest storage layer.
package format

// CompressionType selects the optional codec applied to a finished PACKR
// frame for at-rest storage. It has nothing to do with the mandatory
// LZ77 post-transform described in spec §4.6 — that transform is always
// addressed through the 0xFE 0x03 wrapper prefix, never through this
// enum. CompressionType instead selects a second, outer, opt-in codec a
// caller can apply when persisting or transmitting the finished bytes.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone applies no additional codec.
	CompressionZstd CompressionType = 0x2 // CompressionZstd applies Zstandard.
	CompressionS2   CompressionType = 0x3 // CompressionS2 applies S2 (Snappy-compatible, faster).
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 applies LZ4.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
