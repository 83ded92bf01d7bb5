package column

import (
	"testing"

	"github.com/jaylikesbunda/PACKR/scalar"
	"github.com/jaylikesbunda/PACKR/token"
	"github.com/stretchr/testify/require"
)

func TestConstantColumn_RoundTrip(t *testing.T) {
	se := scalar.NewEncoder()
	defer se.Release()

	ce := NewEncoder(se)
	ce.WriteBatch(5, []Column{
		{Name: "status", Numeric: true, Values: []int64{1, 1, 1, 1, 1}},
	})

	data := se.Bytes()
	require.Equal(t, byte(token.UltraBatch), data[0])

	sd := scalar.NewDecoder(data[1:])
	cd := NewDecoder(sd)

	rows, cols, err := cd.ReadBatch()
	require.NoError(t, err)
	require.Equal(t, 5, rows)
	require.Len(t, cols, 1)
	require.Equal(t, []int64{1, 1, 1, 1, 1}, cols[0].Values)
}

// TestConstantColumn_LiteralBytes pins down spec scenario 3: a constant
// numeric column's flags byte is exactly CONSTANT (0x01) — the NUMERIC
// bit stays clear because the payload's own INT token already tells the
// decoder it is an integer — and the payload is a bare INT literal.
func TestConstantColumn_LiteralBytes(t *testing.T) {
	se := scalar.NewEncoder()
	defer se.Release()

	ce := NewEncoder(se)
	ce.WriteBatch(4, []Column{
		{Name: "k", Numeric: true, Values: []int64{7, 7, 7, 7}},
	})

	data := se.Bytes()
	require.Equal(t, byte(token.UltraBatch), data[0])
	require.Equal(t, byte(4), data[1]) // row_count varint
	require.Equal(t, byte(1), data[2]) // col_count varint

	// field name "k": NEW_FIELD | len(1) | "k"
	require.Equal(t, byte(token.NewField), data[3])
	require.Equal(t, byte(1), data[4])
	require.Equal(t, byte('k'), data[5])

	flags := data[6]
	require.Equal(t, byte(FlagConstant), flags, "flags must be exactly CONSTANT per spec §8 scenario 3")

	require.Equal(t, byte(token.Int), data[7])
	require.Equal(t, byte(14), data[8]) // zigzag(7) = 14

	sd := scalar.NewDecoder(data[1:])
	cd := NewDecoder(sd)
	rows, cols, err := cd.ReadBatch()
	require.NoError(t, err)
	require.Equal(t, 4, rows)
	require.Equal(t, []int64{7, 7, 7, 7}, cols[0].Values)
}

func TestMFVColumn_RoundTrip(t *testing.T) {
	se := scalar.NewEncoder()
	defer se.Release()

	values := []int64{7, 7, 7, 7, 7, 7, 99}
	ce := NewEncoder(se)
	ce.WriteBatch(len(values), []Column{
		{Name: "code", Numeric: true, Values: values},
	})

	sd := scalar.NewDecoder(se.Bytes()[1:])
	cd := NewDecoder(sd)

	_, cols, err := cd.ReadBatch()
	require.NoError(t, err)
	require.Equal(t, values, cols[0].Values)
}

// TestMFVColumn_StringLiteralBytes pins down spec scenario 6: 10 rows,
// mode "ok" 7 times and "err" 3 times, encoded as MFV_COLUMN with a
// 2-byte exception bitmap and three literal "err" values.
func TestMFVColumn_StringLiteralBytes(t *testing.T) {
	values := []string{"ok", "ok", "ok", "err", "ok", "ok", "err", "ok", "ok", "err"}

	se := scalar.NewEncoder()
	defer se.Release()
	ce := NewEncoder(se)
	ce.WriteBatch(len(values), []Column{
		{Name: "status", Raw: values},
	})

	data := se.Bytes()

	// UltraBatch | row_count(10) | col_count(1) | NEW_FIELD "status" |
	// flags(0, no constant/rle/nulls since MFV is the chosen strategy) |
	// MFV_COLUMN | count(10) | NEW_STRING "ok" | bitmap(2 bytes) | ...
	pos := 1                     // skip UltraBatch
	pos++                        // row_count varint (10 fits in one byte)
	pos++                        // col_count varint (1)
	require.Equal(t, byte(token.NewField), data[pos])
	pos++
	nameLen := int(data[pos])
	pos++
	require.Equal(t, "status", string(data[pos:pos+nameLen]))
	pos += nameLen

	flags := data[pos]
	require.Equal(t, byte(0), flags, "MFV string column carries no flag bits")
	pos++

	require.Equal(t, byte(token.MFVColumn), data[pos])
	pos++
	require.Equal(t, byte(10), data[pos]) // count varint
	pos++

	require.Equal(t, byte(token.NewString), data[pos])
	pos++
	modeLen := int(data[pos])
	pos++
	require.Equal(t, "ok", string(data[pos:pos+modeLen]))
	pos += modeLen

	bitmap := data[pos : pos+2]
	pos += 2
	var exceptionBits int
	for _, b := range bitmap {
		for i := 0; i < 8; i++ {
			if b&(1<<uint(i)) != 0 {
				exceptionBits++
			}
		}
	}
	require.Equal(t, 3, exceptionBits, "exactly 3 exception bits for the 3 \"err\" rows")
	// err positions are 3, 6, 9 (0-indexed) → bitmap byte0 bits 3 and 6
	// (0x08|0x40=0x48), byte1 bit 1 (row 9 is bit 9-8=1 → 0x02).
	require.Equal(t, byte(0x48), bitmap[0])
	require.Equal(t, byte(0x02), bitmap[1])

	require.Equal(t, byte(token.NewString), data[pos]) // first "err": dictionary insert
	pos++
	errLen := int(data[pos])
	pos++
	require.Equal(t, "err", string(data[pos:pos+errLen]))
	pos += errLen

	sd := scalar.NewDecoder(data[1:])
	cd := NewDecoder(sd)
	_, cols, err := cd.ReadBatch()
	require.NoError(t, err)
	require.Equal(t, values, cols[0].Raw)
}

func TestBitpackColumn_RoundTrip(t *testing.T) {
	values := []int64{100, 102, 101, 103, 104, 100, 99}

	se := scalar.NewEncoder()
	defer se.Release()
	ce := NewEncoder(se)
	ce.WriteBatch(len(values), []Column{
		{Name: "temp", Numeric: true, Values: values},
	})

	sd := scalar.NewDecoder(se.Bytes()[1:])
	cd := NewDecoder(sd)

	_, cols, err := cd.ReadBatch()
	require.NoError(t, err)
	require.Equal(t, values, cols[0].Values)
}

// TestBitpackColumn_LiteralBytes pins down spec scenario 4: deltas
// +1,-1,-1 pack into BITPACK_COL count=3 then bytes 0x97, 0x78.
func TestBitpackColumn_LiteralBytes(t *testing.T) {
	values := []int64{100, 101, 100, 99}

	se := scalar.NewEncoder()
	defer se.Release()
	ce := NewEncoder(se)
	ce.WriteBatch(len(values), []Column{
		{Name: "x", Numeric: true, Values: values},
	})

	data := se.Bytes()
	pos := 1 // skip UltraBatch
	pos++    // row_count(4)
	pos++    // col_count(1)
	require.Equal(t, byte(token.NewField), data[pos])
	pos++
	nameLen := int(data[pos])
	pos++
	pos += nameLen // "x"

	flags := data[pos]
	require.Equal(t, byte(FlagNumeric), flags, "bitpack columns keep the NUMERIC flag")
	pos++

	require.Equal(t, byte(token.BitpackCol), data[pos])
	pos++
	// base 100 → ZigZag 200, which needs two continuation-bit varint
	// bytes: low 7 bits (0x48) with the continuation bit set (0xC8),
	// then the remaining high bit (0x01).
	require.Equal(t, byte(0xC8), data[pos])
	pos++
	require.Equal(t, byte(0x01), data[pos])
	pos++
	require.Equal(t, byte(3), data[pos]) // delta count
	pos++
	require.Equal(t, byte(0x97), data[pos])
	pos++
	require.Equal(t, byte(0x78), data[pos])

	sd := scalar.NewDecoder(se.Bytes()[1:])
	cd := NewDecoder(sd)
	_, cols, err := cd.ReadBatch()
	require.NoError(t, err)
	require.Equal(t, values, cols[0].Values)
}

func TestRiceColumn_RoundTrip(t *testing.T) {
	values := []int64{1000, 1005, 980, 1100, 700, 1600, 1700, 1750}

	se := scalar.NewEncoder()
	defer se.Release()
	ce := NewEncoder(se)
	ce.WriteBatch(len(values), []Column{
		{Name: "load", Numeric: true, Values: values},
	})

	sd := scalar.NewDecoder(se.Bytes()[1:])
	cd := NewDecoder(sd)

	_, cols, err := cd.ReadBatch()
	require.NoError(t, err)
	require.Equal(t, values, cols[0].Values)
}

func TestScalarDeltaFallback_WithRLERun_RoundTrip(t *testing.T) {
	values := []int64{2, 1000, -500, 123456, 1, 1, 1, 1, 1, 1, 900000}

	se := scalar.NewEncoder()
	defer se.Release()
	ce := NewEncoder(se)
	ce.WriteBatch(len(values), []Column{
		{Name: "jitter", Numeric: true, Values: values},
	})

	sd := scalar.NewDecoder(se.Bytes()[1:])
	cd := NewDecoder(sd)

	_, cols, err := cd.ReadBatch()
	require.NoError(t, err)
	require.Equal(t, values, cols[0].Values)
}

func TestStringRLEColumn_RoundTrip(t *testing.T) {
	values := []string{"ok", "ok", "ok", "err", "err", "err"}

	se := scalar.NewEncoder()
	defer se.Release()
	ce := NewEncoder(se)
	ce.WriteBatch(len(values), []Column{
		{Name: "state", Raw: values},
	})

	sd := scalar.NewDecoder(se.Bytes()[1:])
	cd := NewDecoder(sd)

	_, cols, err := cd.ReadBatch()
	require.NoError(t, err)
	require.Equal(t, values, cols[0].Raw)
}

func TestColumnWithNulls_RoundTrip(t *testing.T) {
	values := []int64{1, 2, 0, 4, 5}
	valid := []bool{true, true, false, true, true}

	se := scalar.NewEncoder()
	defer se.Release()
	ce := NewEncoder(se)
	ce.WriteBatch(len(values), []Column{
		{Name: "reading", Numeric: true, Values: values, Valid: valid},
	})

	sd := scalar.NewDecoder(se.Bytes()[1:])
	cd := NewDecoder(sd)

	_, cols, err := cd.ReadBatch()
	require.NoError(t, err)
	require.Equal(t, valid, cols[0].Valid)
}
