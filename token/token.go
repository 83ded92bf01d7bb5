// Package token defines PACKR's single-byte token grammar (spec §3,
// §6.1). A token is a byte whose high bits select a class, with optional
// trailing payload; the byte assignments here are normative.
package token

// Token is a single stream byte identifying a structural, scalar, or
// dictionary-reference event.
type Token byte

// Dictionary-reference ranges. The low bits of the byte are the slot
// index (0..63).
const (
	FieldRefBase  Token = 0x00 // 0x00-0x3F: FIELD_REF, slot = byte
	StringRefBase Token = 0x40 // 0x40-0x7F: STRING_REF, slot = byte & 0x3F
	MacRefBase    Token = 0x80 // 0x80-0xBF: MAC_REF, slot = byte & 0x3F
)

// Scalar, dictionary-insert, structural, and column tokens.
const (
	Int         Token = 0xC0 // INT: signed varint follows
	Float16     Token = 0xC1 // FLOAT16: 2 bytes, 8.8 fixed-point
	Float32     Token = 0xC2 // FLOAT32: 4 bytes, 16.16 fixed-point
	deltaSmallLo Token = 0xC3 // DELTA_SMALL range starts here (0xC3-0xD2)
	deltaSmallHi Token = 0xD2
	DeltaLarge  Token = 0xD3 // DELTA_LARGE: signed varint follows
	NewString   Token = 0xD4 // NEW_STRING: varint len + UTF-8
	NewField    Token = 0xD5 // NEW_FIELD: varint len + ASCII
	NewMac      Token = 0xD6 // NEW_MAC: 6 raw bytes
	BoolTrue    Token = 0xD7
	BoolFalse   Token = 0xD8
	Null        Token = 0xD9
	ArrayStart  Token = 0xDA // varint count follows
	ArrayEnd    Token = 0xDB
	ObjectStart Token = 0xDC
	ObjectEnd   Token = 0xDD
	Double      Token = 0xDE // 8 bytes, IEEE-754 LE
	Binary      Token = 0xDF // varint len + bytes

	RLERepeat   Token = 0xE5 // varint run follows
	DeltaZero   Token = 0xE6
	DeltaOne    Token = 0xE7
	DeltaNegOne Token = 0xE8
	UltraBatch  Token = 0xE9
	BitpackCol  Token = 0xEB
	DeltaMedium Token = 0xEC // +1 byte, value-64
	RiceColumn  Token = 0xED
	MFVColumn   Token = 0xEE
	ArrayStream Token = 0xEF
	BatchPartial Token = 0xF0
)

// LZ77TransformPrefix marks the start of an LZ77-wrapped frame (spec
// §3, §6.1). It is a two-byte prefix, not itself a token.
var LZ77TransformPrefix = [2]byte{0xFE, 0x03}

// deltaSmallBias is the offset applied to a DELTA_SMALL delta before it
// is added to 0xC3 to form the token byte: token = 0xC3 + (delta + 8).
const deltaSmallBias = 8

// EncodeDeltaSmall returns the token byte for delta, which must be in
// [-8, 7].
func EncodeDeltaSmall(delta int) Token {
	return deltaSmallLo + Token(delta+deltaSmallBias)
}

// DecodeDeltaSmall recovers the delta encoded by a DELTA_SMALL token.
func DecodeDeltaSmall(t Token) int {
	return int(t-deltaSmallLo) - deltaSmallBias
}

// IsDeltaSmall reports whether t is in the DELTA_SMALL range.
func IsDeltaSmall(t Token) bool {
	return t >= deltaSmallLo && t <= deltaSmallHi
}

// IsFieldRef reports whether t is a FIELD_REF token and returns its slot.
func IsFieldRef(t Token) (slot int, ok bool) {
	if t <= 0x3F {
		return int(t), true
	}
	return 0, false
}

// IsStringRef reports whether t is a STRING_REF token and returns its slot.
func IsStringRef(t Token) (slot int, ok bool) {
	if t >= StringRefBase && t <= 0x7F {
		return int(t & 0x3F), true
	}
	return 0, false
}

// IsMacRef reports whether t is a MAC_REF token and returns its slot.
func IsMacRef(t Token) (slot int, ok bool) {
	if t >= MacRefBase && t <= 0xBF {
		return int(t & 0x3F), true
	}
	return 0, false
}

// FieldRefToken returns the FIELD_REF token for slot (0..63).
func FieldRefToken(slot int) Token { return FieldRefBase + Token(slot) }

// StringRefToken returns the STRING_REF token for slot (0..63).
func StringRefToken(slot int) Token { return StringRefBase + Token(slot) }

// MacRefToken returns the MAC_REF token for slot (0..63).
func MacRefToken(slot int) Token { return MacRefBase + Token(slot) }

func (t Token) String() string {
	if slot, ok := IsFieldRef(t); ok {
		return "FIELD_REF(" + itoa(slot) + ")"
	}
	if slot, ok := IsStringRef(t); ok {
		return "STRING_REF(" + itoa(slot) + ")"
	}
	if slot, ok := IsMacRef(t); ok {
		return "MAC_REF(" + itoa(slot) + ")"
	}
	if IsDeltaSmall(t) {
		return "DELTA_SMALL"
	}

	switch t {
	case Int:
		return "INT"
	case Float16:
		return "FLOAT16"
	case Float32:
		return "FLOAT32"
	case DeltaLarge:
		return "DELTA_LARGE"
	case NewString:
		return "NEW_STRING"
	case NewField:
		return "NEW_FIELD"
	case NewMac:
		return "NEW_MAC"
	case BoolTrue:
		return "BOOL_TRUE"
	case BoolFalse:
		return "BOOL_FALSE"
	case Null:
		return "NULL"
	case ArrayStart:
		return "ARRAY_START"
	case ArrayEnd:
		return "ARRAY_END"
	case ObjectStart:
		return "OBJECT_START"
	case ObjectEnd:
		return "OBJECT_END"
	case Double:
		return "DOUBLE"
	case Binary:
		return "BINARY"
	case RLERepeat:
		return "RLE_REPEAT"
	case DeltaZero:
		return "DELTA_ZERO"
	case DeltaOne:
		return "DELTA_ONE"
	case DeltaNegOne:
		return "DELTA_NEG_ONE"
	case UltraBatch:
		return "ULTRA_BATCH"
	case BitpackCol:
		return "BITPACK_COL"
	case DeltaMedium:
		return "DELTA_MEDIUM"
	case RiceColumn:
		return "RICE_COLUMN"
	case MFVColumn:
		return "MFV_COLUMN"
	case ArrayStream:
		return "ARRAY_STREAM"
	case BatchPartial:
		return "BATCH_PARTIAL"
	default:
		return "UNKNOWN"
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
