// Package resolver picks which accepted format variant a raw generator
// document matches and validates it under that variant's schema. Attempts
// are ordered newest-first and composed by first success; every expected
// miss is a returned value, never a thrown error. Only the terminal
// lenient attempt can fail, and only structurally.
package resolver

import (
	"sparlo/internal/rawjson"
	"sparlo/internal/schema"
)

// Lift pre-transforms a raw document into the canonical field layout
// before validation (unwrapping envelopes, flattening phase wrappers).
// A nil Lift means the variant's raw layout is already canonical.
type Lift func(rawjson.Value) rawjson.Value

// FormatVariant is one accepted top-level shape for a logical document.
type FormatVariant struct {
	// Name identifies the variant in outcomes and logs.
	Name string

	// AnyOf lists discriminator field paths (dot-separated, resolved on
	// the raw document before lifting). The variant claims the document
	// when at least one path is present.
	AnyOf []string

	// Schema is the canonical schema this variant validates under.
	Schema *schema.Node

	// Lift optionally rearranges the raw layout into canonical form.
	Lift Lift
}

// Resolution is a successful resolver outcome.
type Resolution struct {
	// Variant names the matched variant; for the last-resort attempt it
	// names the oldest variant.
	Variant string

	// Doc is the validated, fully-defaulted document.
	Doc rawjson.Value

	// Raw is the lifted raw document the variant validated, in canonical
	// field layout but untouched by defaulting. Version detection reads
	// this tree, since validated output masks absence signals.
	Raw rawjson.Value

	// Lenient marks a document produced by the last-resort attempt,
	// meaning unmatched fields were defaulted wholesale.
	Lenient bool
}

// Resolver tries an ordered list of variants, newest first. Immutable
// after construction and safe for concurrent use.
type Resolver struct {
	variants []FormatVariant
}

// New builds a resolver. The variant list must be non-empty; the last
// entry doubles as the oldest/default shape for the lenient fallback.
func New(variants []FormatVariant) *Resolver {
	out := make([]FormatVariant, len(variants))
	copy(out, variants)
	return &Resolver{variants: out}
}

// Resolve walks the variant list and returns the first successful
// validation. When every variant misses, the raw root is validated once
// against the oldest variant's schema with full defaulting; only a
// *schema.StructuralError at that point reaches the caller.
func (r *Resolver) Resolve(raw rawjson.Value) (Resolution, error) {
	for _, v := range r.variants {
		if res, ok := tryVariant(raw, v); ok {
			return res, nil
		}
	}

	oldest := r.variants[len(r.variants)-1]
	doc := raw
	if oldest.Lift != nil {
		doc = oldest.Lift(doc)
	}
	validated, err := schema.Validate(doc, oldest.Schema, schema.Options{Lenient: true})
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Variant: oldest.Name, Doc: validated, Raw: doc, Lenient: true}, nil
}

// tryVariant is a single attempt: discriminator check, lift, strict
// validation. A miss at any step advances the resolver.
func tryVariant(raw rawjson.Value, v FormatVariant) (Resolution, bool) {
	if !discriminatorPresent(raw, v.AnyOf) {
		return Resolution{}, false
	}

	doc := raw
	if v.Lift != nil {
		doc = v.Lift(doc)
	}

	validated, err := schema.Validate(doc, v.Schema, schema.Options{})
	if err != nil {
		return Resolution{}, false
	}
	return Resolution{Variant: v.Name, Doc: validated, Raw: doc}, true
}

func discriminatorPresent(raw rawjson.Value, paths []string) bool {
	for _, p := range paths {
		if v, ok := raw.Lookup(p); ok && !v.IsNull() {
			return true
		}
	}
	return false
}
