package lz77

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamWriter_MultipleWritesRoundTrip(t *testing.T) {
	w := NewStreamWriter()
	chunks := [][]byte{
		[]byte("the quick brown fox "),
		[]byte("jumps over the lazy dog. "),
		bytes.Repeat([]byte("the quick brown fox jumps "), 20),
	}

	var want []byte
	for _, c := range chunks {
		w.Write(c)
		want = append(want, c...)
	}
	w.Close()

	require.Equal(t, len(want), w.TotalInputLen())

	r, err := NewStreamReader(w.Bytes(), len(want))
	require.NoError(t, err)
	require.Equal(t, want, r.Bytes())
}

func TestStreamWriter_SlidesPastWindow(t *testing.T) {
	w := NewStreamWriter()
	chunk := bytes.Repeat([]byte("0123456789"), 100) // 1000 bytes per write

	var want []byte
	for i := 0; i < 10; i++ { // 10,000 bytes total, several times windowSize
		w.Write(chunk)
		want = append(want, chunk...)
	}
	w.Close()

	r, err := NewStreamReader(w.Bytes(), len(want))
	require.NoError(t, err)
	require.Equal(t, want, r.Bytes())
}

func TestStreamWriter_EmptyClose(t *testing.T) {
	w := NewStreamWriter()
	w.Close()
	require.Empty(t, w.Bytes())
	require.Equal(t, 0, w.TotalInputLen())
}
