// Package compress provides the optional at-rest compression codecs for a
// finished PACKR frame (spec §6.2). This sits outside the mandatory LZ77
// post-transform (spec §4.6, package lz77): a caller persisting or
// transmitting framed bytes may additionally run them through one of
// these general-purpose algorithms.
//
// # Overview
//
// PACKR applies compression in at most two stages:
//
//  1. **LZ77 transform**: applied inside the frame itself when the token
//     stream's entropy profile favors it (spec §4.6)
//  2. **At-rest codec**: this package's outer, opt-in layer over the
//     complete framed bytes
//
// The compress package implements the second stage, supporting:
//   - None: No compression (fastest, largest)
//   - Zstd: Best compression ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fastest decompression, moderate compression
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported Algorithms
//
// **NoOp Compression** (format.CompressionNone)
//
//	codec := compress.NewNoOpCompressor()
//	compressed, _ := codec.Compress(data)  // Returns data unchanged
//	original, _ := codec.Decompress(compressed)
//
// Use when the token stream is already dense (small integers, repeated
// dictionary references) and an outer codec wouldn't earn back its CPU
// cost on an MCU-class sender.
//
// **Zstandard (Zstd)** (format.CompressionZstd)
//
//	codec := compress.NewZstdCompressor()
//	compressed, _ := codec.Compress(data)
//	original, _ := codec.Decompress(compressed)
//
// Best for archival of recorded frames on the receiving/aggregation side,
// where compression ratio matters more than latency.
//
// **S2 (Snappy Alternative)** (format.CompressionS2)
//
//	codec := compress.NewS2Compressor()
//	compressed, _ := codec.Compress(data)
//	original, _ := codec.Decompress(compressed)
//
// Balances compression and speed; suited to a gateway re-compressing
// frames in a live ingestion path.
//
// **LZ4** (format.CompressionLZ4)
//
//	codec := compress.NewLZ4Compressor()
//	compressed, _ := codec.Compress(data)
//	original, _ := codec.Decompress(compressed)
//
// Fastest decompression of the three; suited to a read-heavy query path
// over stored frames.
//
// # Algorithm Selection Guide
//
// | Workload               | Recommended | Reason                         |
// |------------------------|-------------|--------------------------------|
// | Cold storage / archive | Zstd        | Best compression ratio         |
// | Live ingestion gateway | S2          | Balanced speed and compression |
// | Query-heavy reads      | LZ4         | Fastest decompression          |
// | MCU-adjacent sender    | None        | No compression overhead        |
//
// # Thread Safety
//
// All codec implementations are safe to share across goroutines; pooled
// internal state (encoders, decoders, compressor handles) is synchronized
// with sync.Pool.
//
// # Integration with codec Package
//
// The top-level codec package selects one of these via format.CompressionType
// when a caller opts into at-rest compression on top of a finished frame:
//
//	enc, err := codec.NewEncoder(codec.WithCompression(format.CompressionZstd))
package compress
