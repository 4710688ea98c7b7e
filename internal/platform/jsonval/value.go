// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package jsonval models arbitrary JSON values as a closed tagged union.

The backend attaches free-form diagnostic maps to error envelopes
(`error.details`). Rather than bridging those through `any` and runtime type
assertions, this package gives every JSON shape a statically-typed home:

	Null | Bool | Number | String | Array | Object

Values are immutable after decoding and safe to share across goroutines.
*/
package jsonval

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind discriminates the JSON shape held by a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a single JSON value of any shape.
//
// The zero Value is JSON null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// # Constructors

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a JSON boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a JSON number.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String wraps a JSON string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array wraps a JSON array.
func Array(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// Object wraps a JSON object.
func Object(fields map[string]Value) Value { return Value{kind: KindObject, obj: fields} }

// # Accessors

// Kind reports the JSON shape of the value.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload. ok is false for any other kind.
func (v Value) AsBool() (value bool, ok bool) { return v.b, v.kind == KindBool }

// AsNumber returns the numeric payload. ok is false for any other kind.
func (v Value) AsNumber() (value float64, ok bool) { return v.n, v.kind == KindNumber }

// AsString returns the string payload. ok is false for any other kind.
func (v Value) AsString() (value string, ok bool) { return v.s, v.kind == KindString }

// AsArray returns the array payload. ok is false for any other kind.
func (v Value) AsArray() (items []Value, ok bool) { return v.arr, v.kind == KindArray }

// AsObject returns the object payload. ok is false for any other kind.
func (v Value) AsObject() (fields map[string]Value, ok bool) { return v.obj, v.kind == KindObject }

// Field returns the named member of an object value.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	value, ok := v.obj[name]
	return value, ok
}

// # Codec

// MarshalJSON implements [json.Marshaler] with explicit recursion over the union.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.n)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("jsonval: invalid kind %d", v.kind)
	}
}

// UnmarshalJSON implements [json.Unmarshaler], dispatching on the leading token.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("jsonval: empty input")
	}

	switch trimmed[0] {
	case 'n':
		*v = Null()
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return fmt.Errorf("jsonval_decode_bool_failed: %w", err)
		}
		*v = Bool(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("jsonval_decode_string_failed: %w", err)
		}
		*v = String(s)
		return nil
	case '[':
		var items []Value
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("jsonval_decode_array_failed: %w", err)
		}
		*v = Array(items...)
		return nil
	case '{':
		var fields map[string]Value
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return fmt.Errorf("jsonval_decode_object_failed: %w", err)
		}
		*v = Object(fields)
		return nil
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("jsonval_decode_number_failed: %w", err)
		}
		*v = Number(n)
		return nil
	}
}
