package catalog

import (
	"strings"
	"testing"

	"sparlo/internal/rawjson"
	"sparlo/internal/schema"
)

func TestDefaultValueShape(t *testing.T) {
	def := Default().Schema().DefaultValue()
	if def.Kind() != rawjson.KindObject {
		t.Fatalf("default document kind = %v, want object", def.Kind())
	}

	for _, name := range []string{
		"version", "mode", "title", "executive_summary",
		"problem_analysis", "solution_concepts", "assessment",
		"recommendations", "citations",
	} {
		if _, ok := def.Field(name); !ok {
			t.Errorf("default document missing field %q", name)
		}
	}

	// Optional sections have no place in a defaulted document.
	if _, ok := def.Field(SectionCommercialization); ok {
		t.Errorf("default document contains optional section %s", SectionCommercialization)
	}

	if v, _ := def.Field("version"); !rawjson.Equal(v, rawjson.Text(CurrentVersion)) {
		t.Errorf("default version = %v, want %s", v, CurrentVersion)
	}
	if m, _ := def.Field("mode"); !rawjson.Equal(m, rawjson.Text(ModeInvent)) {
		t.Errorf("default mode = %v, want %s", m, ModeInvent)
	}

	assessment, _ := def.Field("assessment")
	if s, _ := assessment.Field("understanding"); !rawjson.Equal(s, rawjson.Number(5)) {
		t.Errorf("default understanding score = %v, want 5", s)
	}
	if q, _ := assessment.Field("evidence_quality"); !rawjson.Equal(q, rawjson.Text("ADEQUATE")) {
		t.Errorf("default evidence_quality = %v, want ADEQUATE", q)
	}
}

func TestCommercializationDefaultUsesSentinel(t *testing.T) {
	cat := Default()
	def := cat.CommercializationSchema().DefaultValue()

	checks := []string{"recommended_path", "cost_outlook"}
	for _, name := range checks {
		v, ok := def.Field(name)
		if !ok {
			t.Fatalf("synthesized section missing %q", name)
		}
		text, _ := v.AsText()
		if text != SentinelNotAnalyzed {
			t.Errorf("%s = %q, want sentinel", name, text)
		}
	}

	patents, ok := def.Field("patent_landscape")
	if !ok {
		t.Fatal("synthesized section missing patent_landscape")
	}
	if fto, _ := patents.Field("freedom_to_operate"); !rawjson.Equal(fto, rawjson.Text(SentinelNotAnalyzed)) {
		t.Errorf("freedom_to_operate = %v, want sentinel", fto)
	}
	if _, ok := def.Field("competitive_landscape"); ok {
		t.Error("synthesized section contains optional competitive_landscape")
	}
}

func TestCustomSentinel(t *testing.T) {
	tables := DefaultTables()
	tables.Sentinel = "pending analysis"
	cat := New(tables)

	def := cat.CommercializationSchema().DefaultValue()
	if v, _ := def.Field("recommended_path"); !rawjson.Equal(v, rawjson.Text("pending analysis")) {
		t.Errorf("recommended_path = %v, want custom sentinel", v)
	}
	if cat.Sentinel() != "pending analysis" {
		t.Errorf("Sentinel() = %q", cat.Sentinel())
	}
}

func TestEmptySentinelFallsBack(t *testing.T) {
	cat := New(Tables{})
	if cat.Sentinel() != SentinelNotAnalyzed {
		t.Errorf("Sentinel() = %q, want package default", cat.Sentinel())
	}
}

func TestSynonymsApplyPerLeaf(t *testing.T) {
	cat := Default()

	// MODERATE maps to SIGNIFICANT, but only where SIGNIFICANT is allowed.
	// On a concept's novelty leaf the mapping fires; on its feasibility
	// leaf MODERATE is already canonical and the mapping must not.
	raw := rawjson.FromAny(map[string]any{
		"solution_concepts": []any{
			map[string]any{
				"name":        "test",
				"feasibility": "MODERATE",
				"novelty":     "MODERATE",
			},
		},
	})

	doc, err := schema.Validate(raw, cat.Schema(), schema.Options{Lenient: true})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	concepts, _ := doc.Field("solution_concepts")
	if concepts.Len() != 1 {
		t.Fatalf("concepts len = %d, want 1", concepts.Len())
	}
	concept := concepts.Items()[0]
	if v, _ := concept.Field("feasibility"); !rawjson.Equal(v, rawjson.Text("MODERATE")) {
		t.Errorf("feasibility = %v, want MODERATE (exact match beats synonym)", v)
	}
	if v, _ := concept.Field("novelty"); !rawjson.Equal(v, rawjson.Text("SIGNIFICANT")) {
		t.Errorf("novelty = %v, want SIGNIFICANT (synonym applied)", v)
	}
}

func TestVariantsOrderedNewestFirst(t *testing.T) {
	var names []string
	for _, v := range Default().Variants() {
		names = append(names, v.Name)
	}
	want := "phased,enveloped,flat"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("variant order = %s, want %s", got, want)
	}
}
