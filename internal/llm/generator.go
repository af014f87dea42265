// Package llm talks to the report generator model. The Generator
// interface isolates the rest of sparlo from the API; the pipeline treats
// whatever comes back as untrusted bytes either way.
package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"sparlo/internal/catalog"
	"sparlo/internal/logging"
)

// Generator produces a raw report for an engineering challenge. The
// returned string is unparsed model output: usually JSON, often wrapped
// in prose or code fences.
type Generator interface {
	GenerateReport(ctx context.Context, challenge, mode string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, challenge, mode string) (string, error)

// GenerateReport calls f.
func (f GeneratorFunc) GenerateReport(ctx context.Context, challenge, mode string) (string, error) {
	return f(ctx, challenge, mode)
}

// Options configures the GenAI generator.
type Options struct {
	APIKey      string
	Model       string
	Temperature float64
}

// GenAIGenerator generates reports through Google's Gemini API.
type GenAIGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGenAIGenerator creates a generator client.
func NewGenAIGenerator(ctx context.Context, opts Options) (*GenAIGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.0-flash"
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.7
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIGenerator{
		client:      client,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
	}, nil
}

// GenerateReport asks the model for a design report. The raw text is
// returned as-is; callers run it through the validation pipeline.
func (g *GenAIGenerator) GenerateReport(ctx context.Context, challenge, mode string) (string, error) {
	prompt := BuildPrompt(challenge, mode)
	logging.API("generate model=%s mode=%s challenge_len=%d", g.model, mode, len(challenge))

	result, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(g.temperature),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		logging.APIError("generate failed: %v", err)
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("no content returned")
	}
	return text, nil
}

// BuildPrompt assembles the generation prompt. The shape instructions
// describe the canonical layout, but the validation pipeline assumes the
// model will drift from them anyway.
func BuildPrompt(challenge, mode string) string {
	var b strings.Builder
	b.WriteString("You are an engineering design analyst. Produce a design report as a single JSON object.\n\n")

	switch mode {
	case catalog.ModeDD:
		b.WriteString("Mode: due diligence. Assess the proposed solution critically; score evidence quality and cite sources.\n")
	default:
		b.WriteString("Mode: invention. Propose solution concepts across domains using TRIZ contradiction analysis.\n")
	}

	b.WriteString("\nRequired top-level fields: version (\"")
	b.WriteString(catalog.CurrentVersion)
	b.WriteString("\"), mode, title, executive_summary, problem_analysis, solution_concepts, assessment, ")
	b.WriteString(catalog.SectionCommercialization)
	b.WriteString(", recommendations, citations.\n")
	b.WriteString("Scores are integers 1-10. Respond with JSON only, no surrounding prose.\n\n")
	b.WriteString("Challenge:\n")
	b.WriteString(challenge)
	return b.String()
}
