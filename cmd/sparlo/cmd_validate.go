package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sparlo/internal/store"
)

var (
	validateOutput  string
	validateArchive bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate raw generator output into a canonical report",
	Long: `Reads raw generator output (a file, or stdin for "-"), resolves its
format variant, validates and defaults every field, and migrates the
result to the current document version.

Exit status is non-zero only when the input is structurally hopeless;
that is the signal to regenerate.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "-", "Write the canonical document to this file (\"-\" for stdout)")
	validateCmd.Flags().BoolVar(&validateArchive, "archive", false, "Also save the report to the archive")
}

func runValidate(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	out, err := newPipeline().ProcessText(text)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	logger.Info("validated report",
		zap.String("id", out.ID),
		zap.String("variant", out.Variant),
		zap.Bool("lenient", out.Lenient),
		zap.String("from", string(out.From)),
		zap.Bool("migrated", out.Migrated))

	if validateArchive {
		archive, err := store.NewStore(cfg.Store.DatabasePath)
		if err != nil {
			return err
		}
		defer archive.Close()
		if _, err := archive.SaveOutcome(out, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "archived as %s\n", out.ID)
	}

	return writeDocument(out, validateOutput)
}

// readInput reads a file argument, with "-" meaning stdin.
func readInput(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
