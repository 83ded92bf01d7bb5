// Package bitio provides MSB-first bit accumulation on top of a byte
// buffer, used by the column package's Rice coder (spec §4.4). The
// accumulator shape is grounded on mebo's internal Gorilla encoder
// (internal/encoding.NumericGorillaEncoder's bitBuf/writeBits), generalized
// into a standalone writer/reader pair since PACKR needs the same bit-level
// primitive from two different callers (Rice quotient/remainder streams).
package bitio

import (
	"encoding/binary"

	"github.com/jaylikesbunda/PACKR/internal/pool"
)

// Writer accumulates bits MSB-first into a pooled byte buffer, padding the
// final byte with zero bits on Flush (spec §4.1).
type Writer struct {
	buf      *pool.ByteBuffer
	bitBuf   uint64
	bitCount int
}

// NewWriter creates a bit writer backed by a pooled buffer.
func NewWriter() *Writer {
	return &Writer{buf: pool.GetFrameBuffer()}
}

// WriteBit writes a single bit (0 or 1).
func (w *Writer) WriteBit(bit uint64) {
	w.WriteBits(bit&1, 1)
}

// WriteBits writes the low numBits bits of value, most significant first.
func (w *Writer) WriteBits(value uint64, numBits int) {
	if numBits <= 0 {
		return
	}
	if numBits < 64 {
		value &= (1 << numBits) - 1
	}

	available := 64 - w.bitCount
	if numBits <= available {
		w.bitBuf = (w.bitBuf << numBits) | value
		w.bitCount += numBits
		if w.bitCount == 64 {
			w.flush64()
		}
		return
	}

	highBits := numBits - available
	w.bitBuf = (w.bitBuf << available) | (value >> highBits)
	w.bitCount = 64
	w.flush64()

	w.bitBuf = value & ((1 << highBits) - 1)
	w.bitCount = highBits
}

// WriteUnary writes q one-bits followed by a terminating zero bit — the
// Rice quotient encoding spec §4.4 calls for.
func (w *Writer) WriteUnary(q int) {
	for q >= 32 {
		w.WriteBits(0xFFFFFFFF, 32)
		q -= 32
	}
	if q > 0 {
		w.WriteBits((uint64(1)<<q)-1, q)
	}
	w.WriteBit(0)
}

func (w *Writer) flush64() {
	w.buf.Grow(8)
	startLen := w.buf.Len()
	w.buf.ExtendOrGrow(8)
	binary.BigEndian.PutUint64(w.buf.Slice(startLen, startLen+8), w.bitBuf)
	w.bitBuf = 0
	w.bitCount = 0
}

// Flush pads any partial final byte with zero bits and returns the
// accumulated bytes. The returned slice is valid until the writer is
// reused or released.
func (w *Writer) Flush() []byte {
	if w.bitCount > 0 {
		numBytes := (w.bitCount + 7) / 8
		aligned := w.bitBuf << (64 - w.bitCount)

		w.buf.Grow(numBytes)
		startLen := w.buf.Len()
		w.buf.ExtendOrGrow(numBytes)

		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], aligned)
		copy(w.buf.Slice(startLen, startLen+numBytes), tmp[:numBytes])

		w.bitBuf = 0
		w.bitCount = 0
	}

	return w.buf.Bytes()
}

// Release returns the underlying buffer to the pool. The writer must not
// be used afterward.
func (w *Writer) Release() {
	pool.PutFrameBuffer(w.buf)
	w.buf = nil
}
