package llm

import (
	"context"
	"strings"
	"testing"

	"sparlo/internal/catalog"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("reduce pump cavitation at high RPM", catalog.ModeInvent)
	for _, want := range []string{
		"TRIZ",
		catalog.CurrentVersion,
		catalog.SectionCommercialization,
		"reduce pump cavitation at high RPM",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	dd := BuildPrompt("x", catalog.ModeDD)
	if !strings.Contains(dd, "due diligence") {
		t.Error("dd prompt missing mode instructions")
	}
	// Unknown modes fall back to invention instructions.
	if got := BuildPrompt("x", "mystery"); !strings.Contains(got, "invention") {
		t.Error("unknown mode did not fall back to invent")
	}
}

func TestGeneratorFunc(t *testing.T) {
	var gotChallenge, gotMode string
	g := GeneratorFunc(func(ctx context.Context, challenge, mode string) (string, error) {
		gotChallenge, gotMode = challenge, mode
		return `{"title": "stub"}`, nil
	})

	out, err := g.GenerateReport(context.Background(), "c", catalog.ModeDD)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if out != `{"title": "stub"}` || gotChallenge != "c" || gotMode != catalog.ModeDD {
		t.Fatalf("adapter mismatch: out=%q challenge=%q mode=%q", out, gotChallenge, gotMode)
	}
}

func TestNewGenAIGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenAIGenerator(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
