// Package jsonval models arbitrary decoded JSON as an explicit tagged union.
//
// Google Maps embeds its client state as deeply nested, positionally encoded
// arrays whose layout drifts between deployments. Everything downstream of the
// decoder therefore works through Value's safe accessors: a lookup that steps
// out of range, hits a missing key, or descends into the wrong kind yields
// "absent" rather than a panic or a partial result.
package jsonval

import (
	"encoding/json"
	"sort"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is an immutable decoded JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	boolVal bool
	numVal  float64
	strVal  string
	arrVal  []Value
	objVal  map[string]Value
}

// Decode parses text as JSON and converts it into a Value tree.
func Decode(text string) (Value, error) {
	var raw any
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	return fromAny(raw), nil
}

func fromAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{kind: KindNull}
	case bool:
		return Value{kind: KindBool, boolVal: v}
	case float64:
		return Value{kind: KindNumber, numVal: v}
	case string:
		return Value{kind: KindString, strVal: v}
	case []any:
		arr := make([]Value, len(v))
		for i, el := range v {
			arr[i] = fromAny(el)
		}
		return Value{kind: KindArray, arrVal: arr}
	case map[string]any:
		obj := make(map[string]Value, len(v))
		for k, el := range v {
			obj[k] = fromAny(el)
		}
		return Value{kind: KindObject, objVal: obj}
	default:
		return Value{kind: KindNull}
	}
}

// Constructors, mainly for tests.

func Null() Value           { return Value{kind: KindNull} }
func Bool(b bool) Value     { return Value{kind: KindBool, boolVal: b} }
func Num(n float64) Value   { return Value{kind: KindNumber, numVal: n} }
func Str(s string) Value    { return Value{kind: KindString, strVal: s} }
func Arr(el ...Value) Value { return Value{kind: KindArray, arrVal: el} }

func Obj(fields map[string]Value) Value {
	obj := make(map[string]Value, len(fields))
	for k, v := range fields {
		obj[k] = v
	}
	return Value{kind: KindObject, objVal: obj}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload, reporting whether the value is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.strVal, true
}

// Num returns the numeric payload, reporting whether the value is a number.
func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.numVal, true
}

// Int returns the numeric payload truncated to int.
func (v Value) Int() (int, bool) {
	n, ok := v.Num()
	return int(n), ok
}

// Bool returns the boolean payload, reporting whether the value is a bool.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolVal, true
}

// Len returns the element count for arrays and the field count for objects,
// and 0 for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arrVal)
	case KindObject:
		return len(v.objVal)
	default:
		return 0
	}
}

// Index returns the i-th array element. Non-arrays and out-of-range indices
// report absent.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arrVal) {
		return Value{}, false
	}
	return v.arrVal[i], true
}

// Key returns the named object field. Non-objects and missing keys report
// absent.
func (v Value) Key(k string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	el, ok := v.objVal[k]
	return el, ok
}

// Elems returns the array elements, or nil for non-arrays. Callers must not
// mutate the returned slice.
func (v Value) Elems() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arrVal
}

// At walks the given path of int indices and string keys. The walk yields
// absent as soon as any step is out of range, missing, mistyped, or not an
// int/string.
func (v Value) At(path ...any) (Value, bool) {
	cur := v
	for _, step := range path {
		var ok bool
		switch s := step.(type) {
		case int:
			cur, ok = cur.Index(s)
		case string:
			cur, ok = cur.Key(s)
		default:
			return Value{}, false
		}
		if !ok {
			return Value{}, false
		}
	}
	return cur, true
}

// sortedKeys returns object keys in ascending order so traversal is
// deterministic despite Go's randomized map iteration.
func (v Value) sortedKeys() []string {
	keys := make([]string, 0, len(v.objVal))
	for k := range v.objVal {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
