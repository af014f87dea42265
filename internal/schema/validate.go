package schema

import (
	"fmt"

	"sparlo/internal/rawjson"
)

// StructuralError is the only error the engine ever propagates: raw input
// was not a traversable object where an object was expected. Leaf
// mismatches and optional-section failures are absorbed as defaults and
// never surface here.
type StructuralError struct {
	// Path is the offending tree position, "$" for the root.
	Path string

	// Expected names the shape the schema declared at Path.
	Expected string

	// Got names the shape actually found.
	Got string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural mismatch at %s: expected %s, got %s", e.Path, e.Expected, e.Got)
}

// Options controls the strictness of a validation walk.
type Options struct {
	// Lenient confines structural failure to the document root: a
	// wrong-shaped nested section falls back to its declared default
	// instead of failing the walk. Used for the resolver's last-resort
	// attempt; variant matching runs strict so a shape mismatch advances
	// the resolver to the next variant.
	Lenient bool
}

// Validate walks raw against the schema rooted at n and returns the
// canonical value. The returned error, when non-nil, is always a
// *StructuralError; every other irregularity is absorbed into defaults.
func Validate(raw rawjson.Value, n *Node, opts Options) (rawjson.Value, error) {
	return walk(raw, n, "$", true, opts.Lenient)
}

// ValidateOptional applies the optional-object guard: null, absent,
// non-object, or empty-object input is absent; a non-empty object that
// fails validation is also absent. The bool result reports presence.
func ValidateOptional(raw rawjson.Value, inner *Node) (rawjson.Value, bool) {
	if raw.Kind() != rawjson.KindObject || raw.Len() == 0 {
		return rawjson.Null(), false
	}
	out, err := walk(raw, inner, "$", true, false)
	if err != nil {
		// Robustness over completeness: a malformed optional section
		// collapses to absent rather than failing the document.
		return rawjson.Null(), false
	}
	return out, true
}

// walk validates one tree position. atRoot marks positions where a
// structural mismatch must fail even in lenient mode.
func walk(raw rawjson.Value, n *Node, path string, atRoot bool, lenient bool) (rawjson.Value, error) {
	switch n.kind {
	case kindEnum:
		return rawjson.Text(NormalizeEnum(raw, n.enum)), nil

	case kindNumber:
		return rawjson.Number(CoerceNumber(raw, n.number)), nil

	case kindText:
		return rawjson.Text(normalizeText(raw, n.text)), nil

	case kindBool:
		return rawjson.Bool(normalizeBool(raw, n.truth)), nil

	case kindObject:
		return walkObject(raw, n, path, atRoot, lenient)

	case kindArray:
		return walkArray(raw, n, path, lenient)

	case kindOptional:
		out, present := ValidateOptional(raw, n.inner)
		if !present {
			return rawjson.Null(), nil
		}
		return out, nil

	default:
		return rawjson.Null(), &StructuralError{Path: path, Expected: "known node kind", Got: "unknown"}
	}
}

func walkObject(raw rawjson.Value, n *Node, path string, atRoot bool, lenient bool) (rawjson.Value, error) {
	if raw.Kind() != rawjson.KindObject {
		if lenient && !atRoot {
			return n.DefaultValue(), nil
		}
		return rawjson.Null(), &StructuralError{Path: path, Expected: "object", Got: raw.Kind().String()}
	}

	out := make(map[string]rawjson.Value, len(n.fields))
	for _, f := range n.fields {
		fieldPath := path + "." + f.Name
		fv, present := raw.Field(f.Name)

		// Null is indistinguishable from absent for an untrusted
		// producer: both take the declared default.
		if !present || fv.IsNull() {
			if f.Node.kind == kindOptional {
				continue
			}
			out[f.Name] = f.Node.DefaultValue()
			continue
		}

		if f.Node.kind == kindOptional {
			section, sectionPresent := ValidateOptional(fv, f.Node.inner)
			if sectionPresent {
				out[f.Name] = section
			}
			continue
		}

		validated, err := walk(fv, f.Node, fieldPath, false, lenient)
		if err != nil {
			return rawjson.Null(), err
		}
		out[f.Name] = validated
	}
	// Unknown keys in raw are ignored: forward-compatible with producer drift.
	return rawjson.Object(out), nil
}

func walkArray(raw rawjson.Value, n *Node, path string, lenient bool) (rawjson.Value, error) {
	items := raw.Items()
	if items == nil {
		// Non-array input defaults to empty in every mode.
		return rawjson.Array(), nil
	}

	out := make([]rawjson.Value, 0, len(items))
	for i, item := range items {
		// Drop filler the generator emits between real entries.
		if item.IsNull() || (item.Kind() == rawjson.KindObject && item.Len() == 0) {
			continue
		}
		validated, err := walk(item, n.elem, fmt.Sprintf("%s[%d]", path, i), false, lenient)
		if err != nil {
			// A structurally broken element is dropped, not fatal.
			continue
		}
		out = append(out, validated)
	}
	return rawjson.Array(out...), nil
}
