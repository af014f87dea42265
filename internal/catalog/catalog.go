// Package catalog holds the declarative shape tables for generator report
// documents: the canonical schema, the accepted format variants, and the
// normalization tables (synonyms, sentinel text). A Catalog is built once at
// startup and shared read-only; tests inject their own tables instead of
// touching process-wide state.
package catalog

import (
	"sparlo/internal/resolver"
	"sparlo/internal/schema"
)

// Versions of the canonical report shape.
const (
	// LegacyVersion is the original shape, without commercialization.
	LegacyVersion = "1.0.0"

	// CurrentVersion adds the commercialization_analysis section.
	CurrentVersion = "2.0.0"
)

// SectionCommercialization is the top-level section introduced in 2.0.0.
// Its presence on a raw document is a version marker.
const SectionCommercialization = "commercialization_analysis"

// SentinelNotAnalyzed fills sections synthesized during migration. An
// explicit placeholder is used instead of null so renderers written against
// the canonical shape never need null branches.
const SentinelNotAnalyzed = "Not analyzed - regenerate this report for full detail."

// Report modes.
const (
	ModeInvent = "invent"
	ModeDD     = "dd"
)

// Tables carries the injectable normalization configuration.
type Tables struct {
	// Synonyms maps recurring off-vocabulary generator output onto
	// canonical enum values. Applied to every enum leaf; a mapping whose
	// target is not in that leaf's allowed set is skipped there.
	Synonyms map[string]string

	// Sentinel is the placeholder text for synthesized sections.
	Sentinel string
}

// DefaultTables returns the production tables. The synonym list is the
// drift actually observed in generator output, not a thesaurus.
func DefaultTables() Tables {
	return Tables{
		Synonyms: map[string]string{
			"MODERATE": "SIGNIFICANT",
			"MEDIUM":   "SIGNIFICANT",
			"GOOD":     "ADEQUATE",
			"AVERAGE":  "MODERATE",
			"MED":      "MEDIUM",
			"NOVEL":    "SIGNIFICANT",
			"WEAK FIT": "WEAK",
			"H":        "HIGH",
			"M":        "MODERATE",
			"L":        "LOW",
		},
		Sentinel: SentinelNotAnalyzed,
	}
}

// Catalog is the immutable bundle of schema, variants, and tables for the
// report document family.
type Catalog struct {
	tables            Tables
	root              *schema.Node
	commercialization *schema.Node
	variants          []resolver.FormatVariant
}

// New builds a catalog from explicit tables.
func New(tables Tables) *Catalog {
	if tables.Sentinel == "" {
		tables.Sentinel = SentinelNotAnalyzed
	}
	b := builder{tables: tables}
	commercialization := b.commercializationSchema()
	root := b.reportSchema(commercialization)

	c := &Catalog{
		tables:            tables,
		root:              root,
		commercialization: commercialization,
	}
	c.variants = c.buildVariants()
	return c
}

// Default builds the production catalog.
func Default() *Catalog { return New(DefaultTables()) }

// Schema returns the canonical report schema (current version).
func (c *Catalog) Schema() *schema.Node { return c.root }

// CommercializationSchema returns the section schema introduced in 2.0.0,
// used by the migrator to synthesize placeholder instances.
func (c *Catalog) CommercializationSchema() *schema.Node { return c.commercialization }

// Variants returns the accepted format variants, newest first.
func (c *Catalog) Variants() []resolver.FormatVariant { return c.variants }

// Sentinel returns the placeholder text in effect.
func (c *Catalog) Sentinel() string { return c.tables.Sentinel }

// builder threads the injected tables through schema construction.
type builder struct {
	tables Tables
}

func (b builder) enum(def string, allowed ...string) *schema.Node {
	return schema.Enum(schema.EnumSpec{
		Allowed:  allowed,
		Default:  def,
		Synonyms: b.tables.Synonyms,
	})
}

func score(def float64) *schema.Node {
	return schema.Number(schema.NumberSpec{Default: def, Min: schema.Bound(1), Max: schema.Bound(10)})
}

func textList() *schema.Node { return schema.Array(schema.Text("")) }

// reportSchema declares the canonical document shape. Field names and
// nesting are a wire contract shared with renderers and the generator
// prompt; changing them is a version bump, not a refactor.
func (b builder) reportSchema(commercialization *schema.Node) *schema.Node {
	return schema.Object(
		schema.Field{Name: "version", Node: schema.Text(CurrentVersion)},
		schema.Field{Name: "mode", Node: b.enum(ModeInvent, ModeInvent, ModeDD)},
		schema.Field{Name: "title", Node: schema.Text("Untitled design report")},
		schema.Field{Name: "executive_summary", Node: schema.Text("")},
		schema.Field{Name: "problem_analysis", Node: schema.Object(
			schema.Field{Name: "core_contradiction", Node: schema.Text("")},
			schema.Field{Name: "problem_framing", Node: schema.Text("")},
			schema.Field{Name: "constraints", Node: textList()},
			schema.Field{Name: "success_metrics", Node: textList()},
			schema.Field{Name: "triz_principles", Node: textList()},
		)},
		schema.Field{Name: "solution_concepts", Node: schema.Array(b.conceptSchema())},
		schema.Field{Name: "assessment", Node: schema.Object(
			schema.Field{Name: "understanding", Node: score(5)},
			schema.Field{Name: "novelty", Node: score(5)},
			schema.Field{Name: "relevance", Node: score(5)},
			schema.Field{Name: "credibility", Node: score(5)},
			schema.Field{Name: "actionability", Node: score(5)},
			schema.Field{Name: "citations", Node: score(5)},
			schema.Field{Name: "evidence_quality", Node: b.enum("ADEQUATE", "STRONG", "ADEQUATE", "WEAK")},
			schema.Field{Name: "overall_strength", Node: b.enum("MODERATE", "WEAK", "MODERATE", "STRONG")},
		)},
		schema.Field{Name: SectionCommercialization, Node: schema.Optional(commercialization)},
		schema.Field{Name: "recommendations", Node: schema.Object(
			schema.Field{Name: "pursue_first", Node: textList()},
			schema.Field{Name: "resources_needed", Node: schema.Text("")},
			schema.Field{Name: "timeline_90_day", Node: schema.Text("")},
		)},
		schema.Field{Name: "citations", Node: schema.Array(schema.Object(
			schema.Field{Name: "reference", Node: schema.Text("")},
			schema.Field{Name: "kind", Node: b.enum("OTHER", "PAPER", "PATENT", "PRODUCT", "STANDARD", "OTHER")},
			schema.Field{Name: "url", Node: schema.Text("")},
		))},
	)
}

func (b builder) conceptSchema() *schema.Node {
	return schema.Object(
		schema.Field{Name: "name", Node: schema.Text("Unnamed concept")},
		schema.Field{Name: "mechanism", Node: schema.Text("")},
		schema.Field{Name: "source_domain", Node: schema.Text("General engineering")},
		schema.Field{Name: "feasibility", Node: b.enum("MODERATE", "HIGH", "MODERATE", "LOW")},
		schema.Field{Name: "novelty", Node: b.enum("INCREMENTAL", "BREAKTHROUGH", "SIGNIFICANT", "INCREMENTAL", "KNOWN")},
		schema.Field{Name: "confidence", Node: schema.Number(schema.NumberSpec{
			Default: 3, Min: schema.Bound(1), Max: schema.Bound(5),
		})},
		schema.Field{Name: "risks", Node: textList()},
		schema.Field{Name: "first_test", Node: schema.Text("")},
		schema.Field{Name: "cross_domain", Node: schema.Bool(false)},
	)
}

// commercializationSchema declares the 2.0.0 section. Text defaults use the
// sentinel so a migrated document reads as "not analyzed" rather than empty.
func (b builder) commercializationSchema() *schema.Node {
	sentinel := b.tables.Sentinel
	return schema.Object(
		schema.Field{Name: "market_readiness", Node: b.enum("EMERGING", "EMBRYONIC", "EMERGING", "ESTABLISHED", "MATURE")},
		schema.Field{Name: "recommended_path", Node: schema.Text(sentinel)},
		schema.Field{Name: "cost_outlook", Node: schema.Text(sentinel)},
		schema.Field{Name: "patent_landscape", Node: schema.Object(
			schema.Field{Name: "crowding", Node: b.enum("MEDIUM", "CRITICAL", "HIGH", "MEDIUM", "LOW")},
			schema.Field{Name: "freedom_to_operate", Node: schema.Text(sentinel)},
			schema.Field{Name: "representative_filings", Node: textList()},
		)},
		schema.Field{Name: "competitive_landscape", Node: schema.Optional(schema.Object(
			schema.Field{Name: "nearest_competitors", Node: textList()},
			schema.Field{Name: "differentiation", Node: schema.Text("")},
		))},
	)
}
