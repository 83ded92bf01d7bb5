package lz77

// StreamWriter applies PACKR's LZ77 transform incrementally, for input
// whose total length isn't known up front, where tuples must be emitted
// as data arrives rather than buffered into one final Compress call.
//
// It keeps up to 2*windowSize bytes of input buffered: everything
// already encoded stays only as match context, and once the buffer
// grows past that, the older half is dropped by sliding the retained
// windowSize-byte tail down to the front — the same "keep one window of
// lookback, forget the rest" policy compressBlock applies to a whole
// buffer at once, just amortized across Write calls.
type StreamWriter struct {
	buf        []byte
	flushedPos int
	out        []byte
	totalIn    int
}

// NewStreamWriter creates an empty streaming LZ77 encoder.
func NewStreamWriter() *StreamWriter {
	return &StreamWriter{}
}

// Write appends chunk to the stream, encoding everything not yet
// encoded and appending the resulting tuples to the internal output.
func (w *StreamWriter) Write(chunk []byte) {
	w.buf = append(w.buf, chunk...)
	w.totalIn += len(chunk)
	w.encodePending()
	w.maybeSlide()
}

// TotalInputLen returns the number of input bytes written so far
// (across the stream's lifetime, including bytes since dropped from the
// retained window) — callers need this to frame the decompressed length
// since, unlike Compress, no single buffer ever holds the whole input.
func (w *StreamWriter) TotalInputLen() int { return w.totalIn }

// Bytes returns the tuple stream produced so far. Call Close first to
// flush any buffered-but-unencoded tail.
func (w *StreamWriter) Bytes() []byte { return w.out }

// Close flushes any remaining buffered bytes as a final tuple.
func (w *StreamWriter) Close() {
	w.encodePending()
}

func (w *StreamWriter) encodePending() {
	if w.flushedPos >= len(w.buf) {
		return
	}
	w.out = append(w.out, compressRange(w.buf, w.flushedPos)...)
	w.flushedPos = len(w.buf)
}

func (w *StreamWriter) maybeSlide() {
	if len(w.buf) <= 2*windowSize || w.flushedPos < len(w.buf) {
		return
	}

	keepFrom := len(w.buf) - windowSize
	tail := make([]byte, windowSize)
	copy(tail, w.buf[keepFrom:])
	w.buf = tail
	w.flushedPos = windowSize
}

// StreamReader reverses StreamWriter's tuple stream, given the total
// decompressed length separately (the writer's TotalInputLen): unlike
// Compress's block format, the tuple stream carries no leading length.
type StreamReader struct {
	data []byte
	pos  int
	out  []byte
}

// NewStreamReader creates a reader over a full tuple stream, decoding up
// to origLen bytes of output.
func NewStreamReader(data []byte, origLen int) (*StreamReader, error) {
	out, err := decompressBlock(data, origLen)
	if err != nil {
		return nil, err
	}
	return &StreamReader{data: data, out: out}, nil
}

// Bytes returns the fully decoded output.
func (r *StreamReader) Bytes() []byte { return r.out }
