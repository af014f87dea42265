package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sparlo/internal/catalog"
	"sparlo/internal/llm"
	"sparlo/internal/store"
)

var (
	generateMode    string
	generateOutput  string
	generateRetries int
)

var generateCmd = &cobra.Command{
	Use:   "generate [challenge]",
	Short: "Generate and validate a design report for an engineering challenge",
	Long: `Asks the generator model for a design report, then validates the raw
output through the pipeline. Structurally hopeless output triggers a
regeneration, up to the retry limit. The validated report is archived.

Example:
  sparlo generate "reduce brake fade on repeated alpine descents" --mode invent`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateMode, "mode", catalog.ModeInvent, "Report mode: invent or dd")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Also write the canonical document to this file")
	generateCmd.Flags().IntVar(&generateRetries, "retries", 2, "Regeneration attempts after a structural failure")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generateMode != catalog.ModeInvent && generateMode != catalog.ModeDD {
		return fmt.Errorf("invalid mode %q (valid: %s, %s)", generateMode, catalog.ModeInvent, catalog.ModeDD)
	}
	if err := cfg.ValidateGenerator(); err != nil {
		return err
	}
	challenge := strings.Join(args, " ")

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GetGeneratorTimeout())
	defer cancel()

	gen, err := llm.NewGenAIGenerator(ctx, llm.Options{
		APIKey:      cfg.Generator.APIKey,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
	})
	if err != nil {
		return err
	}

	pipe := newPipeline()
	attempts := generateRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := gen.GenerateReport(ctx, challenge, generateMode)
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}

		out, err := pipe.ProcessText(raw)
		if err != nil {
			logger.Warn("structural failure, regenerating",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		archive, err := store.NewStore(cfg.Store.DatabasePath)
		if err != nil {
			return err
		}
		defer archive.Close()
		entry, err := archive.SaveOutcome(out, "api")
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "report %s archived (variant=%s", entry.ID, out.Variant)
		if out.Lenient {
			fmt.Fprint(os.Stderr, ", lenient")
		}
		fmt.Fprintln(os.Stderr, ")")

		if generateOutput != "" {
			return writeDocument(out, generateOutput)
		}
		return nil
	}
	return fmt.Errorf("generator produced no usable report in %d attempts", attempts)
}
