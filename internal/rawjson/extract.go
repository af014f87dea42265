package rawjson

import (
	"strings"
)

// ExtractJSON pulls the first JSON object or array out of mixed model output.
// Generators frequently wrap the document in prose or a ```json fence; this
// strips either. Returns "" when no balanced object/array is found.
func ExtractJSON(text string) string {
	if fenced := extractFencedBlock(text); fenced != "" {
		if balanced := extractBalanced(fenced); balanced != "" {
			return balanced
		}
	}
	return extractBalanced(text)
}

// DecodeLoose decodes text that may contain a JSON document surrounded by
// prose or markdown. Direct decode is tried first so well-formed payloads
// never pay the scanning cost.
func DecodeLoose(text string) (Value, error) {
	if v, err := Decode([]byte(text)); err == nil {
		return v, nil
	}
	extracted := ExtractJSON(text)
	if extracted == "" {
		// Fall through to Decode for a consistent error shape.
		return Decode([]byte(text))
	}
	return Decode([]byte(extracted))
}

// extractFencedBlock returns the content of the first ```json (or bare ```)
// code fence, or "".
func extractFencedBlock(s string) string {
	start := strings.Index(s, "```json")
	if start == -1 {
		start = strings.Index(s, "```")
		if start == -1 {
			return ""
		}
	}
	nl := strings.Index(s[start:], "\n")
	if nl == -1 {
		return ""
	}
	body := s[start+nl+1:]
	end := strings.Index(body, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(body[:end])
}

// extractBalanced returns the first brace/bracket-balanced object or array,
// respecting string literals and escapes.
func extractBalanced(text string) string {
	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
