// Package report defines the typed canonical document. The JSON tags are
// the wire contract: they match the field names the validation engine
// produces, so a pipeline outcome round-trips into a Document losslessly.
package report

import (
	"encoding/json"
	"fmt"

	"sparlo/internal/rawjson"
)

// Document is a validated, current-version design report.
type Document struct {
	Version           string             `json:"version"`
	Mode              string             `json:"mode"`
	Title             string             `json:"title"`
	ExecutiveSummary  string             `json:"executive_summary"`
	ProblemAnalysis   ProblemAnalysis    `json:"problem_analysis"`
	SolutionConcepts  []Concept          `json:"solution_concepts"`
	Assessment        Assessment         `json:"assessment"`
	Commercialization *Commercialization `json:"commercialization_analysis,omitempty"`
	Recommendations   Recommendations    `json:"recommendations"`
	Citations         []Citation         `json:"citations"`
}

// ProblemAnalysis frames the engineering contradiction the report attacks.
type ProblemAnalysis struct {
	CoreContradiction string   `json:"core_contradiction"`
	ProblemFraming    string   `json:"problem_framing"`
	Constraints       []string `json:"constraints"`
	SuccessMetrics    []string `json:"success_metrics"`
	TrizPrinciples    []string `json:"triz_principles"`
}

// Concept is one candidate solution.
type Concept struct {
	Name         string   `json:"name"`
	Mechanism    string   `json:"mechanism"`
	SourceDomain string   `json:"source_domain"`
	Feasibility  string   `json:"feasibility"`
	Novelty      string   `json:"novelty"`
	Confidence   float64  `json:"confidence"`
	Risks        []string `json:"risks"`
	FirstTest    string   `json:"first_test"`
	CrossDomain  bool     `json:"cross_domain"`
}

// Assessment scores the report itself, 1 to 10 per axis.
type Assessment struct {
	Understanding   float64 `json:"understanding"`
	Novelty         float64 `json:"novelty"`
	Relevance       float64 `json:"relevance"`
	Credibility     float64 `json:"credibility"`
	Actionability   float64 `json:"actionability"`
	Citations       float64 `json:"citations"`
	EvidenceQuality string  `json:"evidence_quality"`
	OverallStrength string  `json:"overall_strength"`
}

// Commercialization is the section introduced in version 2.0.0.
type Commercialization struct {
	MarketReadiness      string                `json:"market_readiness"`
	RecommendedPath      string                `json:"recommended_path"`
	CostOutlook          string                `json:"cost_outlook"`
	PatentLandscape      PatentLandscape       `json:"patent_landscape"`
	CompetitiveLandscape *CompetitiveLandscape `json:"competitive_landscape,omitempty"`
}

// PatentLandscape summarizes filing density around the concepts.
type PatentLandscape struct {
	Crowding              string   `json:"crowding"`
	FreedomToOperate      string   `json:"freedom_to_operate"`
	RepresentativeFilings []string `json:"representative_filings"`
}

// CompetitiveLandscape lists who is already in the space.
type CompetitiveLandscape struct {
	NearestCompetitors []string `json:"nearest_competitors"`
	Differentiation    string   `json:"differentiation"`
}

// Recommendations is the action plan section.
type Recommendations struct {
	PursueFirst     []string `json:"pursue_first"`
	ResourcesNeeded string   `json:"resources_needed"`
	Timeline90Day   string   `json:"timeline_90_day"`
}

// Citation is one supporting reference.
type Citation struct {
	Reference string `json:"reference"`
	Kind      string `json:"kind"`
	URL       string `json:"url"`
}

// FromValue builds a Document from a validated value tree. It is meant for
// pipeline output; feeding it unvalidated input works but gives zero values
// where the engine would have given defaults.
func FromValue(v rawjson.Value) (*Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("report: encoding value tree: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("report: decoding document: %w", err)
	}
	return &doc, nil
}

// Analyzed reports whether the commercialization section holds real
// generator output rather than a migration placeholder.
func (d *Document) Analyzed(sentinel string) bool {
	c := d.Commercialization
	if c == nil {
		return false
	}
	return c.RecommendedPath != sentinel || c.CostOutlook != sentinel
}
