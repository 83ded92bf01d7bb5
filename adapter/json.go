// Package adapter bridges PACKR's scalar/column token encoders to JSON
// (spec §6.2): stdlib encoding/json is the external tokenizer/emitter
// collaborator this layer is built around, not reimplemented. Its
// Decoder with UseNumber already gives this layer exactly what it needs
// — a value tree that preserves integer-vs-float distinction via
// json.Number — without a hand-rolled JSON parser.
package adapter

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/jaylikesbunda/PACKR/errs"
	"github.com/jaylikesbunda/PACKR/mac"
	"github.com/jaylikesbunda/PACKR/scalar"
)

// Encode walks the JSON document in data and writes it to enc as PACKR
// tokens. Object keys become FIELD_REF/NEW_FIELD tokens, and the numeric
// value of each object field is threaded through that field's own delta
// state (scalar.Encoder.Int/Float); bare top-level values and array
// elements have no repeating field identity to baseline against, so they
// are always written absolute (scalar.Encoder.IntAbsolute/FloatAbsolute).
// Strings shaped like a MAC address (spec §9) are routed to the MAC
// dictionary instead of the string dictionary.
func Encode(enc *scalar.Encoder, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	writeBare(enc, v)
	return nil
}

// writeBare writes a value with no field context: array elements and the
// top-level document itself.
func writeBare(enc *scalar.Encoder, v any) {
	switch val := v.(type) {
	case nil:
		enc.Null()
	case bool:
		enc.Bool(val)
	case json.Number:
		writeNumberBare(enc, val)
	case string:
		writeString(enc, val)
	case map[string]any:
		writeObject(enc, val)
	case []any:
		writeArray(enc, val)
	}
}

// writeField writes an object field's value, threading numeric values
// through slot's delta state.
func writeField(enc *scalar.Encoder, slot int, v any) {
	switch val := v.(type) {
	case nil:
		enc.Null()
	case bool:
		enc.Bool(val)
	case json.Number:
		writeNumberField(enc, slot, val)
	case string:
		writeString(enc, val)
	case map[string]any:
		writeObject(enc, val)
	case []any:
		writeArray(enc, val)
	}
}

func writeObject(enc *scalar.Encoder, obj map[string]any) {
	enc.ObjectStart()
	for k, v := range obj {
		slot := enc.FieldName(k)
		writeField(enc, slot, v)
	}
	enc.ObjectEnd()
}

func writeArray(enc *scalar.Encoder, arr []any) {
	enc.ArrayStart(len(arr))
	for _, elem := range arr {
		writeBare(enc, elem)
	}
	enc.ArrayEnd()
}

func writeNumberBare(enc *scalar.Encoder, n json.Number) {
	if i, ok := asInt64(n); ok {
		enc.IntAbsolute(i)
		return
	}
	f, _ := n.Float64()
	enc.FloatAbsolute(f)
}

func writeNumberField(enc *scalar.Encoder, slot int, n json.Number) {
	if i, ok := asInt64(n); ok {
		enc.Int(slot, i)
		return
	}
	f, _ := n.Float64()
	enc.Float(slot, f)
}

func asInt64(n json.Number) (int64, bool) {
	i, err := strconv.ParseInt(n.String(), 10, 64)
	return i, err == nil
}

func writeString(enc *scalar.Encoder, s string) {
	if raw, err := mac.Parse(s); err == nil {
		enc.MACValue(raw)
		return
	}
	enc.StringValue(s)
}

// Decode reads one complete JSON value back out of dec's token stream and
// renders it as JSON bytes.
func Decode(dec *scalar.Decoder) ([]byte, error) {
	v, err := readBare(dec)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// readBare decodes a value with no field context (array elements, the
// top-level document).
func readBare(dec *scalar.Decoder) (any, error) {
	ev, err := dec.Next()
	if err != nil {
		return nil, err
	}
	return valueFromEvent(dec, ev)
}

func valueFromEvent(dec *scalar.Decoder, ev scalar.Event) (any, error) {
	switch ev.Kind {
	case scalar.EventNull:
		return nil, nil
	case scalar.EventBool:
		return ev.Bool, nil
	case scalar.EventInt:
		return ev.Int, nil
	case scalar.EventFloat:
		return ev.Float, nil
	case scalar.EventString:
		return ev.Str, nil
	case scalar.EventMAC:
		return mac.String(ev.MAC), nil
	case scalar.EventBinary:
		return ev.Bin, nil

	case scalar.EventObjectStart:
		return readObject(dec)

	case scalar.EventArrayStart:
		return readArray(dec, ev.ArrayCount)

	default:
		return nil, errs.ErrBadToken
	}
}

func readObject(dec *scalar.Decoder) (map[string]any, error) {
	out := make(map[string]any)
	for {
		keyEv, err := dec.Next()
		if err != nil {
			return nil, err
		}
		if keyEv.Kind == scalar.EventObjectEnd {
			return out, nil
		}
		if keyEv.Kind != scalar.EventFieldName {
			return nil, errs.ErrBadToken
		}

		name, ok := dec.FieldNameAt(keyEv.FieldSlot)
		if !ok {
			return nil, errs.ErrDictOverflow
		}

		valEv, err := dec.NextFieldValue(keyEv.FieldSlot)
		if err != nil {
			return nil, err
		}
		v, err := valueFromEvent(dec, valEv)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
}

func readArray(dec *scalar.Decoder, count int) ([]any, error) {
	out := make([]any, 0, count)
	for i := 0; i < count; i++ {
		v, err := readBare(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	end, err := dec.Next()
	if err != nil {
		return nil, err
	}
	if end.Kind != scalar.EventArrayEnd {
		return nil, errs.ErrUnbalancedContainer
	}
	return out, nil
}
