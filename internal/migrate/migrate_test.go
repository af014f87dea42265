package migrate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"sparlo/internal/catalog"
	"sparlo/internal/rawjson"
)

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want Version
	}{
		{"explicit v2", map[string]any{"version": "2.0.0"}, V2},
		{"explicit v2 minor", map[string]any{"version": "2.1.0"}, V2},
		{"explicit v2 padded", map[string]any{"version": "  2.0.0 "}, V2},
		{"explicit v1", map[string]any{"version": "1.0.0"}, V1},
		{"marker beats probe", map[string]any{
			"version":                    "1.0.0",
			"commercialization_analysis": map[string]any{},
		}, V1},
		{"unrecognized marker falls to probe", map[string]any{
			"version":                    "beta",
			"commercialization_analysis": map[string]any{},
		}, V2},
		{"non-text marker falls to probe", map[string]any{"version": 2}, V1},
		{"section presence implies v2", map[string]any{
			"commercialization_analysis": map[string]any{"market_readiness": "MATURE"},
		}, V2},
		{"null section does not imply v2", map[string]any{
			"commercialization_analysis": nil,
		}, V1},
		{"bare document", map[string]any{"title": "x"}, V1},
		{"empty document", map[string]any{}, V1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectVersion(rawjson.FromAny(tt.raw)); got != tt.want {
				t.Fatalf("DetectVersion = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectVersionNonObject(t *testing.T) {
	for _, raw := range []rawjson.Value{
		rawjson.Null(),
		rawjson.Text("2.0.0"),
		rawjson.Array(rawjson.Number(1)),
	} {
		if got := DetectVersion(raw); got != V1 {
			t.Errorf("DetectVersion(%v) = %s, want %s", raw, got, V1)
		}
	}
}

func TestMigrateV1SynthesizesSection(t *testing.T) {
	cat := catalog.Default()
	m := New(cat)

	doc := rawjson.FromAny(map[string]any{
		"version": "1.0.0",
		"title":   "Legacy report",
		"assessment": map[string]any{
			"novelty": float64(8),
		},
	})

	res := m.Migrate(doc, V1)
	if !res.Migrated || res.From != V1 {
		t.Fatalf("Result = %+v, want migrated from %s", res, V1)
	}

	if v, _ := res.Doc.Field("version"); !rawjson.Equal(v, rawjson.Text(string(Current))) {
		t.Errorf("version = %v, want %s", v, Current)
	}

	section, ok := res.Doc.Field(catalog.SectionCommercialization)
	if !ok {
		t.Fatal("migrated document missing synthesized section")
	}
	if v, _ := section.Field("recommended_path"); !rawjson.Equal(v, rawjson.Text(cat.Sentinel())) {
		t.Errorf("recommended_path = %v, want sentinel", v)
	}

	// Everything the document already had is carried over untouched.
	got := res.Doc.WithoutField(catalog.SectionCommercialization).WithoutField("version")
	want := doc.WithoutField("version")
	if diff := cmp.Diff(want.ToAny(), got.ToAny()); diff != "" {
		t.Errorf("migration altered existing fields (-want +got):\n%s", diff)
	}
}

func TestMigrateCurrentIsIdentity(t *testing.T) {
	m := New(catalog.Default())
	doc := rawjson.FromAny(map[string]any{
		"version":                    "2.0.0",
		"commercialization_analysis": map[string]any{"cost_outlook": "cheap"},
	})

	res := m.Migrate(doc, Current)
	if res.Migrated {
		t.Fatal("current document reported as migrated")
	}
	if !rawjson.Equal(res.Doc, doc) {
		t.Fatalf("current document changed: %v", res.Doc)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	m := New(catalog.Default())
	doc := rawjson.FromAny(map[string]any{"title": "x"})

	first := m.Migrate(doc, V1)
	second := m.Migrate(first.Doc, DetectVersion(first.Doc))
	if second.Migrated {
		t.Fatal("second migration ran on already-current document")
	}
	if !rawjson.Equal(first.Doc, second.Doc) {
		t.Fatal("migration is not idempotent")
	}
}

func TestMigrateUnknownVersionTreatedAsOldest(t *testing.T) {
	m := New(catalog.Default())
	res := m.Migrate(rawjson.FromAny(map[string]any{}), Version("0.9.0"))
	if !res.Migrated || res.From != V1 {
		t.Fatalf("Result = %+v, want migrated from %s", res, V1)
	}
	if _, ok := res.Doc.Field(catalog.SectionCommercialization); !ok {
		t.Fatal("unknown-version migration skipped synthesis")
	}
}

func TestMigratePreservesExistingSection(t *testing.T) {
	m := New(catalog.Default())
	doc := rawjson.FromAny(map[string]any{
		"commercialization_analysis": map[string]any{"cost_outlook": "low"},
	})

	res := m.Migrate(doc, V1)
	section, _ := res.Doc.Field(catalog.SectionCommercialization)
	if v, _ := section.Field("cost_outlook"); !rawjson.Equal(v, rawjson.Text("low")) {
		t.Fatalf("existing section overwritten: %v", section)
	}
}

func TestEnsureSections(t *testing.T) {
	m := New(catalog.Default())

	with := rawjson.FromAny(map[string]any{
		"commercialization_analysis": map[string]any{},
	})
	if doc, synthesized := m.EnsureSections(with); synthesized || !rawjson.Equal(doc, with) {
		t.Fatal("EnsureSections touched a complete document")
	}

	without := rawjson.FromAny(map[string]any{"version": "2.0.0"})
	doc, synthesized := m.EnsureSections(without)
	if !synthesized {
		t.Fatal("EnsureSections did not synthesize missing section")
	}
	if _, ok := doc.Field(catalog.SectionCommercialization); !ok {
		t.Fatal("section still missing after EnsureSections")
	}
}
