package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mailflow/internal/classify"
	"mailflow/internal/config"
	"mailflow/internal/knowledge"
	"mailflow/internal/respond"
	"mailflow/internal/workflow"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mailflow",
	Short: "mailflow - inbound support message processing pipeline",
	Long: `mailflow classifies inbound support messages, retrieves matching
knowledge documents, synthesizes draft replies, and tracks each item
through a priority-aware processing queue.

Classification and retrieval are keyword based by design; no model
inference or network call is ever made.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Local overrides (.env) load before config so MAILFLOW_* vars win.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		logger, err = buildLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if !lc.JSON {
		zcfg = zap.NewDevelopmentConfig()
	}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else if level, err := zapcore.ParseLevel(lc.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

// buildPipeline assembles the processing components from configuration.
func buildPipeline(seedPath string) (*workflow.Coordinator, *knowledge.MemoryIndex, *classify.Engine, *respond.Synthesizer, error) {
	index := knowledge.NewMemoryIndex(logger)
	if seedPath != "" {
		count, err := knowledge.LoadSeedFile(index, seedPath)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		logger.Info("Loaded knowledge seed file",
			zap.String("path", seedPath),
			zap.Int("documents", count))
	} else {
		knowledge.SeedDefaults(index)
	}

	engine := classify.NewEngine(cfg.Vocabulary)
	synth := respond.NewSynthesizer(index, cfg.Vocabulary, cfg.Templates, logger)
	coord := workflow.NewCoordinator(engine, synth, cfg.Queue, logger)
	return coord, index, engine, synth, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "mailflow.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(respondCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
