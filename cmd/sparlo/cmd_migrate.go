package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sparlo/internal/migrate"
)

var migrateOutput string

var migrateCmd = &cobra.Command{
	Use:   "migrate [file]",
	Short: "Upgrade a stored report to the current document version",
	Long: `Runs a report file through the full pipeline and reports what version
it arrived at. A current-version document passes through unchanged, so
migrating twice is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateOutput, "output", "o", "-", "Write the migrated document to this file (\"-\" for stdout)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	out, err := newPipeline().ProcessText(text)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if out.Migrated {
		fmt.Fprintf(os.Stderr, "migrated %s -> %s\n", out.From, migrate.Current)
	} else {
		fmt.Fprintf(os.Stderr, "already at %s\n", migrate.Current)
	}
	if out.Synthesized {
		fmt.Fprintln(os.Stderr, "synthesized placeholder for missing section")
	}

	return writeDocument(out, migrateOutput)
}
