package catalog

import (
	"sparlo/internal/rawjson"
	"sparlo/internal/resolver"
)

// buildVariants declares the accepted top-level shapes, newest first.
// The "flat" variant is last so it doubles as the lenient fallback shape.
func (c *Catalog) buildVariants() []resolver.FormatVariant {
	return []resolver.FormatVariant{
		{
			Name:   "phased",
			AnyOf:  []string{"phases"},
			Schema: c.root,
			Lift:   liftPhased,
		},
		{
			Name:   "enveloped",
			AnyOf:  []string{"report"},
			Schema: c.root,
			Lift:   liftEnveloped,
		},
		{
			Name:   "flat",
			AnyOf:  []string{"solution_concepts", "problem_analysis"},
			Schema: c.root,
		},
	}
}

// phaseSections maps phase envelope keys to canonical section names, in
// application order. The generator has emitted both short and canonical keys
// inside the envelope; listing the canonical key after its alias makes it
// win when both are present.
var phaseSections = []struct {
	key     string
	section string
}{
	{"analysis", "problem_analysis"},
	{"problem_analysis", "problem_analysis"},
	{"assessment", "assessment"},
	{"commercialization", SectionCommercialization},
	{SectionCommercialization, SectionCommercialization},
	{"recommendations", "recommendations"},
}

// liftPhased flattens a phases envelope into the canonical layout.
// Top-level fields outside the envelope pass through; envelope sections
// win over same-named top-level fields.
func liftPhased(raw rawjson.Value) rawjson.Value {
	phases, ok := raw.Field("phases")
	if !ok || phases.Kind() != rawjson.KindObject {
		return raw
	}

	out := raw.WithoutField("phases")
	for _, ps := range phaseSections {
		if v, ok := phases.Field(ps.key); ok {
			out = out.WithField(ps.section, v)
		}
	}

	if concepts, ok := phases.Field("concepts"); ok {
		// The concepts phase arrives either as a bare array or as an
		// object holding solution_concepts.
		if inner, ok := concepts.Field("solution_concepts"); ok {
			out = out.WithField("solution_concepts", inner)
		} else {
			out = out.WithField("solution_concepts", concepts)
		}
	}
	if sc, ok := phases.Field("solution_concepts"); ok {
		out = out.WithField("solution_concepts", sc)
	}
	return out
}

// liftEnveloped unwraps the {"report": {...}} envelope API poll responses
// use, keeping envelope-level version/mode markers when the inner document
// lacks them.
func liftEnveloped(raw rawjson.Value) rawjson.Value {
	report, ok := raw.Field("report")
	if !ok || report.Kind() != rawjson.KindObject {
		return raw
	}
	for _, marker := range []string{"version", "mode", "title"} {
		if _, inner := report.Field(marker); inner {
			continue
		}
		if v, ok := raw.Field(marker); ok {
			report = report.WithField(marker, v)
		}
	}
	return report
}
