package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sparlo/internal/catalog"
	"sparlo/internal/config"
	"sparlo/internal/logging"
	"sparlo/internal/pipeline"
)

// Version is the sparlo build version.
const Version = "2.0.0"

var (
	// Global flags
	verbose bool
	cfgPath string

	// Shared state
	logger *zap.Logger
	cfg    *config.Config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "sparlo",
	Short: "sparlo - engineering design report generator and validator",
	Long: `sparlo generates engineering design reports with an LLM and turns the
model's unreliable JSON into canonical, versioned documents.

Raw generator output is resolved against the accepted format variants,
validated and defaulted field by field, and migrated to the current
document version. Structurally hopeless output is rejected so the caller
can regenerate; everything else comes out whole.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := logging.Initialize(cfg.LogConfig()); err != nil {
			return err
		}
		logging.Boot("sparlo %s starting, command=%s", Version, cmd.Name())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sparlo version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sparlo %s (document version %s)\n", Version, catalog.CurrentVersion)
	},
}

// newPipeline builds the pipeline from the loaded configuration.
func newPipeline() *pipeline.Pipeline {
	return pipeline.New(catalog.New(cfg.Tables()))
}

// writeDocument writes canonical document JSON to path, or stdout for "-".
func writeDocument(out *pipeline.Outcome, path string) error {
	data, err := json.MarshalIndent(out.Doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Config file path")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
