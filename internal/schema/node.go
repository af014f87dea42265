// Package schema implements the declarative shape engine for generator
// documents. A Node describes the expected shape at one tree position; the
// validation walk (validate.go) turns an untrusted rawjson.Value into a
// canonical value with every declared field present, every enum constrained
// to its allowed set, and every number clamped into range.
//
// The engine is pure: nodes are built once at startup, never mutated, and
// safe for concurrent use from any number of goroutines.
package schema

import (
	"sparlo/internal/rawjson"
)

type nodeKind int

const (
	kindEnum nodeKind = iota
	kindNumber
	kindText
	kindBool
	kindObject
	kindArray
	kindOptional
)

// EnumSpec constrains a leaf to a closed set of canonical values.
// Allowed order matters: fuzzy matching ties break on first declared.
type EnumSpec struct {
	// Allowed holds the canonical values in declaration order.
	Allowed []string

	// Default is returned when nothing matches. Must be in Allowed.
	Default string

	// Synonyms maps recurring off-vocabulary model output to allowed values.
	// A synonym whose target is not in Allowed is skipped, not an error.
	Synonyms map[string]string
}

// NumberSpec constrains a numeric leaf. Min/Max are inclusive; nil means
// unbounded on that side.
type NumberSpec struct {
	Default float64
	Min     *float64
	Max     *float64
}

// Field is one declared object member. Every field carries a derivable
// default: leaves default per their spec, objects default recursively,
// arrays default empty, optional wrappers default to absent.
type Field struct {
	Name string
	Node *Node
}

// Node is one position in a document schema: a leaf spec, an object with
// declared fields, an array of a single element shape, or an optional
// wrapper around an object. Immutable after construction.
type Node struct {
	kind   nodeKind
	enum   EnumSpec
	number NumberSpec
	text   string
	truth  bool
	fields []Field
	elem   *Node
	inner  *Node
}

// Enum builds an enum leaf.
func Enum(spec EnumSpec) *Node { return &Node{kind: kindEnum, enum: spec} }

// Number builds a numeric leaf.
func Number(spec NumberSpec) *Node { return &Node{kind: kindNumber, number: spec} }

// Text builds a free-text leaf with a default.
func Text(def string) *Node { return &Node{kind: kindText, text: def} }

// Bool builds a boolean leaf with a default.
func Bool(def bool) *Node { return &Node{kind: kindBool, truth: def} }

// Object builds an object node from declared fields. Unknown keys in raw
// input are ignored during validation, never rejected.
func Object(fields ...Field) *Node {
	out := make([]Field, len(fields))
	copy(out, fields)
	return &Node{kind: kindObject, fields: out}
}

// Array builds an array node. Non-array input validates to empty.
func Array(elem *Node) *Node { return &Node{kind: kindArray, elem: elem} }

// Optional wraps an object section that may legitimately be absent.
// Validation failure of the inner shape collapses to absent instead of
// propagating; callers must read absence as "could not be produced or was
// malformed", not "explicitly empty".
func Optional(inner *Node) *Node { return &Node{kind: kindOptional, inner: inner} }

// Bound returns a pointer for NumberSpec Min/Max literals.
func Bound(f float64) *float64 { return &f }

// Inner returns the wrapped node of an Optional, or nil.
func (n *Node) Inner() *Node {
	if n.kind != kindOptional {
		return nil
	}
	return n.inner
}

// DefaultValue synthesizes the fully-defaulted value for this node: the
// value that validating an absent input would produce. Optional nodes have
// no default (absent); their DefaultValue is the inner shape's default so
// callers that must materialize the section (the migrator) can do so.
func (n *Node) DefaultValue() rawjson.Value {
	switch n.kind {
	case kindEnum:
		return rawjson.Text(n.enum.Default)
	case kindNumber:
		return rawjson.Number(clamp(n.number.Default, n.number.Min, n.number.Max))
	case kindText:
		return rawjson.Text(n.text)
	case kindBool:
		return rawjson.Bool(n.truth)
	case kindArray:
		return rawjson.Array()
	case kindObject:
		fields := make(map[string]rawjson.Value, len(n.fields))
		for _, f := range n.fields {
			if f.Node.kind == kindOptional {
				continue
			}
			fields[f.Name] = f.Node.DefaultValue()
		}
		return rawjson.Object(fields)
	case kindOptional:
		return n.inner.DefaultValue()
	default:
		return rawjson.Null()
	}
}
