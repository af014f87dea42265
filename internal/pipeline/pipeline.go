// Package pipeline composes the validation engine into a single entry
// point: raw generator bytes in, a resolved, validated, current-version
// document out, or an explicit structural failure. The pipeline never
// retries and never panics on wrong-shaped input; regeneration decisions
// belong to the caller.
package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"sparlo/internal/catalog"
	"sparlo/internal/logging"
	"sparlo/internal/migrate"
	"sparlo/internal/rawjson"
	"sparlo/internal/resolver"
)

// Outcome is a fully processed document plus its provenance.
type Outcome struct {
	// ID is a fresh identifier for this validation, used as the archive key.
	ID string

	// Doc is the canonical, fully-defaulted, current-version document.
	Doc rawjson.Value

	// Variant names the format variant that claimed the raw input.
	Variant string

	// Lenient marks output produced by the resolver's last-resort attempt.
	Lenient bool

	// From is the shape version detected on the raw input.
	From migrate.Version

	// Migrated is true when the document was upgraded to the current version.
	Migrated bool

	// Synthesized is true when a missing section was filled with sentinel
	// placeholders outside of migration (a current-version document whose
	// optional section collapsed during validation).
	Synthesized bool
}

// Pipeline wires resolver and migrator over one catalog. Immutable after
// construction; safe for concurrent use from any number of goroutines.
type Pipeline struct {
	res *resolver.Resolver
	mig *migrate.Migrator
}

// New builds a pipeline over the given catalog.
func New(cat *catalog.Catalog) *Pipeline {
	return &Pipeline{
		res: resolver.New(cat.Variants()),
		mig: migrate.New(cat),
	}
}

// Process decodes raw JSON bytes and runs ProcessValue. A decode failure
// is a plain error; it is the caller's document-level signal to request
// regeneration, same as a structural failure.
func (p *Pipeline) Process(data []byte) (*Outcome, error) {
	raw, err := rawjson.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return p.ProcessValue(raw)
}

// ProcessText extracts a JSON document from mixed model output (prose,
// code fences) and runs ProcessValue.
func (p *Pipeline) ProcessText(text string) (*Outcome, error) {
	raw, err := rawjson.DecodeLoose(text)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return p.ProcessValue(raw)
}

// ProcessValue runs the full pipeline on a decoded value tree. The only
// returned error is the resolver's terminal *schema.StructuralError.
func (p *Pipeline) ProcessValue(raw rawjson.Value) (*Outcome, error) {
	timer := logging.StartTimer(logging.CategoryPipeline, "Pipeline.ProcessValue")
	defer timer.Stop()

	res, err := p.res.Resolve(raw)
	if err != nil {
		logging.Pipeline("resolution failed: %v", err)
		return nil, err
	}
	logging.Resolver("resolved variant=%s lenient=%v", res.Variant, res.Lenient)

	// Version detection reads the lifted raw tree, not the validated
	// output: validation defaults would erase the absence signals it
	// keys on.
	from := migrate.DetectVersion(res.Raw)

	migResult := p.mig.Migrate(res.Doc, from)
	doc, synthesized := p.mig.EnsureSections(migResult.Doc)
	if migResult.Migrated {
		logging.Migrate("migrated document from=%s to=%s", migResult.From, migrate.Current)
	}

	return &Outcome{
		ID:          uuid.NewString(),
		Doc:         doc,
		Variant:     res.Variant,
		Lenient:     res.Lenient,
		From:        migResult.From,
		Migrated:    migResult.Migrated,
		Synthesized: synthesized,
	}, nil
}
