package schema

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"sparlo/internal/rawjson"
)

// Leaf normalizers. All of these are total: no input, however malformed,
// produces an error. Unusable input degrades silently to the declared
// default, which is the routine path for generator drift and is never
// reported to callers.

// annotationMarkers are the separators models append after an enum value,
// as in "WEAK (needs improvement)" or "MODERATE - some concerns".
var annotationMarkers = []string{" - ", " (", ": "}

// NormalizeEnum maps arbitrary raw input onto one of spec.Allowed,
// returning the canonically-cased allowed value. Resolution order: exact
// match, synonym table, prefix match, substring match, declared default.
// Ties at the fuzzy steps break on Allowed declaration order.
func NormalizeEnum(raw rawjson.Value, spec EnumSpec) string {
	text, ok := raw.AsText()
	if !ok {
		text = ""
	}

	// Strip any trailing annotation before matching.
	cut := len(text)
	for _, marker := range annotationMarkers {
		if i := strings.Index(text, marker); i >= 0 && i < cut {
			cut = i
		}
	}
	folded := strings.ToLower(strings.TrimSpace(text[:cut]))

	if folded != "" {
		// Exact, case-insensitive.
		for _, allowed := range spec.Allowed {
			if strings.ToLower(allowed) == folded {
				return allowed
			}
		}

		// Synonym lookup. The mapped value must itself be allowed;
		// otherwise the step is skipped and matching continues.
		for key, target := range spec.Synonyms {
			if strings.ToLower(key) != folded {
				continue
			}
			for _, allowed := range spec.Allowed {
				if strings.EqualFold(allowed, target) {
					return allowed
				}
			}
		}

		// Prefix in either direction.
		for _, allowed := range spec.Allowed {
			af := strings.ToLower(allowed)
			if strings.HasPrefix(folded, af) || strings.HasPrefix(af, folded) {
				return allowed
			}
		}

		// Substring in either direction.
		for _, allowed := range spec.Allowed {
			af := strings.ToLower(allowed)
			if strings.Contains(folded, af) || strings.Contains(af, folded) {
				return allowed
			}
		}
	}

	return spec.Default
}

// numberRun matches the first contiguous numeric run in text: optional
// sign, digits, optional fractional part. "3/5" and "3 out of 5" both
// yield 3; "score: -3" yields -3 (the sign is part of the run).
var numberRun = regexp.MustCompile(`[-+]?[0-9]+(?:\.[0-9]+)?`)

// CoerceNumber extracts a finite number from raw and clamps it into the
// spec's range. Booleans, composites, NaN/Infinity, and text without a
// numeric run all fall through to the clamped default.
func CoerceNumber(raw rawjson.Value, spec NumberSpec) float64 {
	if n, ok := raw.AsNumber(); ok {
		if !math.IsNaN(n) && !math.IsInf(n, 0) {
			return clamp(n, spec.Min, spec.Max)
		}
		return clamp(spec.Default, spec.Min, spec.Max)
	}

	if text, ok := raw.AsText(); ok {
		if run := numberRun.FindString(text); run != "" {
			if n, err := strconv.ParseFloat(run, 64); err == nil && !math.IsInf(n, 0) {
				return clamp(n, spec.Min, spec.Max)
			}
		}
	}

	return clamp(spec.Default, spec.Min, spec.Max)
}

// normalizeText keeps text as-is and degrades every other kind to the
// default. Numbers are deliberately not stringified: a number where prose
// is expected is treated as generator drift, not data.
func normalizeText(raw rawjson.Value, def string) string {
	if s, ok := raw.AsText(); ok {
		return s
	}
	return def
}

// normalizeBool accepts booleans and the literal text forms.
func normalizeBool(raw rawjson.Value, def bool) bool {
	if b, ok := raw.AsBool(); ok {
		return b
	}
	if s, ok := raw.AsText(); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes":
			return true
		case "false", "no":
			return false
		}
	}
	return def
}

func clamp(n float64, min, max *float64) float64 {
	if min != nil && n < *min {
		n = *min
	}
	if max != nil && n > *max {
		n = *max
	}
	return n
}
