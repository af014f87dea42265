// Package rawjson models untyped JSON value trees as an explicit tagged union.
// Generator output is decoded into Value before any validation so that every
// "is this actually an object here?" question is an exhaustive switch on Kind
// rather than an interface type assertion scattered through the engine.
package rawjson

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind discriminates the six JSON value shapes.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindArray
	KindObject
)

// String returns the lowercase kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is one node of an untyped JSON tree. The zero value is JSON null.
// Values are treated as immutable; mutating helpers return copies.
type Value struct {
	kind   Kind
	b      bool
	num    float64
	text   string
	items  []Value
	fields map[string]Value
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Text wraps a string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Array wraps a list of values.
func Array(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindArray, items: out}
}

// Object wraps a field map. The map is copied so later caller mutation
// cannot leak into the value.
func Object(fields map[string]Value) Value {
	out := make(map[string]Value, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return Value{kind: KindObject, fields: out}
}

// Kind returns the value's shape tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload. ok is false for non-bool values.
func (v Value) AsBool() (b bool, ok bool) {
	return v.b, v.kind == KindBool
}

// AsNumber returns the numeric payload. ok is false for non-number values.
func (v Value) AsNumber() (n float64, ok bool) {
	return v.num, v.kind == KindNumber
}

// AsText returns the string payload. ok is false for non-text values.
func (v Value) AsText() (s string, ok bool) {
	return v.text, v.kind == KindText
}

// Items returns the array elements, or nil for non-arrays.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.items
}

// Field looks up a single object field.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Null(), false
	}
	f, ok := v.fields[name]
	return f, ok
}

// Len returns the element count for arrays and the field count for objects.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.fields)
	default:
		return 0
	}
}

// Keys returns object field names in sorted order for deterministic walks.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup resolves a dot-separated path ("phases.analysis") through nested
// objects. It does not index into arrays.
func (v Value) Lookup(path string) (Value, bool) {
	cur := v
	for _, seg := range strings.Split(path, ".") {
		next, ok := cur.Field(seg)
		if !ok {
			return Null(), false
		}
		cur = next
	}
	return cur, true
}

// WithField returns an object copy with one field set. Calling it on a
// non-object returns a fresh single-field object.
func (v Value) WithField(name string, field Value) Value {
	out := make(map[string]Value, v.Len()+1)
	for k, f := range v.fields {
		out[k] = f
	}
	out[name] = field
	return Value{kind: KindObject, fields: out}
}

// WithoutField returns an object copy with one field removed.
func (v Value) WithoutField(name string) Value {
	if v.kind != KindObject {
		return v
	}
	out := make(map[string]Value, v.Len())
	for k, f := range v.fields {
		if k != name {
			out[k] = f
		}
	}
	return Value{kind: KindObject, fields: out}
}

// FromAny converts a value produced by encoding/json into a Value.
// Unrecognized Go types are mapped to null rather than rejected; the
// validation layer treats them like any other wrong-shaped input.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Text(t.String())
		}
		return Number(f)
	case string:
		return Text(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromAny(e)
		}
		return Value{kind: KindArray, items: items}
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			fields[k] = FromAny(e)
		}
		return Value{kind: KindObject, fields: fields}
	default:
		return Null()
	}
}

// ToAny converts back to the encoding/json generic representation.
func (v Value) ToAny() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	case KindArray:
		out := make([]any, len(v.items))
		for i, e := range v.items {
			out[i] = e.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.fields))
		for k, e := range v.fields {
			out[k] = e.ToAny()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes the value as standard JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToAny())
}

// Decode parses raw JSON bytes into a Value.
func Decode(data []byte) (Value, error) {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return Null(), fmt.Errorf("rawjson: decode failed: %w", err)
	}
	return FromAny(generic), nil
}

// Equal reports deep equality of two value trees.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindText:
		return a.text == b.text
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for k, av := range a.fields {
			bv, ok := b.fields[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
