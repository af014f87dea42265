package rawjson

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"prose prefix", `Here is the report: {"a":1} hope it helps`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"nested braces", `{"a":{"b":{"c":1}}}`, `{"a":{"b":{"c":1}}}`},
		{"brace in string", `{"a":"}{"}`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"say \"hi\" {"}`, `{"a":"say \"hi\" {"}`},
		{"array root", `noise [1,2,3] more`, `[1,2,3]`},
		{"no json", "nothing here", ""},
		{"unbalanced", `{"a":1`, ""},
	}
	for _, tt := range tests {
		if got := ExtractJSON(tt.input); got != tt.want {
			t.Errorf("%s: ExtractJSON(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
		}
	}
}

func TestDecodeLoose(t *testing.T) {
	v, err := DecodeLoose("The model says:\n```json\n{\"title\":\"x\"}\n```\nDone.")
	if err != nil {
		t.Fatalf("DecodeLoose failed: %v", err)
	}
	title, _ := v.Lookup("title")
	if s, ok := title.AsText(); !ok || s != "x" {
		t.Fatalf("expected title=x, got %q", s)
	}

	if _, err := DecodeLoose("no json at all"); err == nil {
		t.Fatalf("expected error when no JSON present")
	}
}
