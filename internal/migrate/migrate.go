// Package migrate detects which historical version of the canonical report
// shape a document carries and brings older documents up to the current
// version by synthesizing placeholder instances of the sections they
// predate. Migration is pure, deterministic, and idempotent.
package migrate

import (
	"strings"

	"sparlo/internal/catalog"
	"sparlo/internal/rawjson"
)

// Version tags a canonical shape revision.
type Version string

const (
	// V1 is the original report shape.
	V1 = Version(catalog.LegacyVersion)

	// V2 adds commercialization_analysis.
	V2 = Version(catalog.CurrentVersion)

	// Current is the version every migrated document carries.
	Current = V2
)

// DetectVersion determines the shape version of a raw (pre-validation)
// document. Priority: explicit version marker, then presence of fields
// introduced only in newer versions, then the oldest known version.
// Detection must run on the raw tree: validation defaults would mask the
// absence signals it relies on.
func DetectVersion(raw rawjson.Value) Version {
	if v, ok := raw.Field("version"); ok {
		if text, ok := v.AsText(); ok {
			switch {
			case strings.HasPrefix(strings.TrimSpace(text), "2"):
				return V2
			case strings.HasPrefix(strings.TrimSpace(text), "1"):
				return V1
			}
			// Unrecognized marker text: fall through to field probes.
		}
	}

	if section, ok := raw.Field(catalog.SectionCommercialization); ok && !section.IsNull() {
		return V2
	}

	return V1
}

// Result reports a migration outcome.
type Result struct {
	// Doc is the document at the current version.
	Doc rawjson.Value

	// Migrated is false when the input was already current.
	Migrated bool

	// From is the version the document arrived at.
	From Version
}

// Migrator upgrades validated documents to the current version.
// Immutable after construction; safe for concurrent use.
type Migrator struct {
	cat *catalog.Catalog
}

// New builds a migrator over the given catalog.
func New(cat *catalog.Catalog) *Migrator {
	return &Migrator{cat: cat}
}

// Migrate brings a validated document at version from up to Current.
// A current document is returned unchanged. Unknown versions are treated
// as the oldest known version rather than rejected: migration is
// best-effort, and an over-synthesized placeholder beats a crash.
func (m *Migrator) Migrate(doc rawjson.Value, from Version) Result {
	if from == Current {
		return Result{Doc: doc, Migrated: false, From: Current}
	}
	if from != V1 {
		from = V1
	}

	out := doc
	if _, ok := out.Field(catalog.SectionCommercialization); !ok {
		out = out.WithField(catalog.SectionCommercialization, m.cat.CommercializationSchema().DefaultValue())
	}
	out = out.WithField("version", rawjson.Text(string(Current)))

	return Result{Doc: out, Migrated: true, From: from}
}

// EnsureSections guarantees the sections downstream renderers rely on are
// present even on a current-version document, covering the case where an
// optional section collapsed during validation. Returns the (possibly
// unchanged) document and whether anything was synthesized.
func (m *Migrator) EnsureSections(doc rawjson.Value) (rawjson.Value, bool) {
	if _, ok := doc.Field(catalog.SectionCommercialization); ok {
		return doc, false
	}
	return doc.WithField(catalog.SectionCommercialization, m.cat.CommercializationSchema().DefaultValue()), true
}
