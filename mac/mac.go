// Package mac converts between textual MAC addresses and the 6-byte form
// PACKR's NEW_MAC token stores on the wire (spec §3, §6.1).
//
// The field package's job elsewhere in the corpus is identifying a value's
// shape up front and branching on it; mac.Parse plays the same role for
// telemetry payloads that carry MAC-looking strings, accepting either
// colon- or hyphen-separated hex octets and always rendering colon-
// separated uppercase hex on decode, per spec §9's resolved ambiguity.
package mac

import (
	"fmt"

	"github.com/jaylikesbunda/PACKR/errs"
)

// Size is the number of raw bytes a MAC address occupies (spec §6.1
// NEW_MAC: "6 raw bytes").
const Size = 6

const hexDigits = "0123456789ABCDEF"

// Parse converts a textual MAC address ("aa:bb:cc:dd:ee:ff" or
// "aa-bb-cc-dd-ee-ff", case-insensitive) into its 6-byte form.
func Parse(text string) ([Size]byte, error) {
	var out [Size]byte

	if len(text) != 17 {
		return out, errs.ErrInvalidMAC
	}

	sep := text[2]
	if sep != ':' && sep != '-' {
		return out, errs.ErrInvalidMAC
	}

	for i := 0; i < Size; i++ {
		start := i * 3
		if i < Size-1 && text[start+2] != sep {
			return out, errs.ErrInvalidMAC
		}

		hi, ok := hexVal(text[start])
		if !ok {
			return out, errs.ErrInvalidMAC
		}
		lo, ok := hexVal(text[start+1])
		if !ok {
			return out, errs.ErrInvalidMAC
		}

		out[i] = hi<<4 | lo
	}

	return out, nil
}

// LooksLikeMAC reports whether text has the shape Parse accepts, without
// allocating an error. The adapter package makes the same decision (MAC
// dictionary instead of string dictionary for a JSON string value) by
// calling Parse directly.
func LooksLikeMAC(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// String renders raw as colon-separated uppercase hex, PACKR's canonical
// decode-side rendering regardless of which separator the original text
// used (spec §9).
func String(raw [Size]byte) string {
	buf := make([]byte, 0, 17)
	for i, b := range raw {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, hexDigits[b>>4], hexDigits[b&0xF])
	}
	return string(buf)
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// mustParse is used only by tests and examples to build literals without
// error-checking boilerplate.
func mustParse(text string) [Size]byte {
	v, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("mac: invalid literal %q", text))
	}
	return v
}
