package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ethoscope/internal/alignment"
	"ethoscope/internal/config"
	"ethoscope/internal/friction"
	"ethoscope/internal/llm"
	"ethoscope/internal/review"
	"ethoscope/internal/server"
	"ethoscope/internal/transparency"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	verbose    bool
	configPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ethoscope",
	Short: "ethoscope - structured ethical review analysis",
	Long: `ethoscope turns free-form ethical review text produced by language
models into structured, comparable judgments: per-dimension scores, alignment
and friction metrics, constraint transparency, multi-agent consensus, and
voluntary-agreement compliance tracking.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
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

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		registry := llm.NewRegistry(map[llm.Provider][]string{
			llm.ProviderGemini:    cfg.Models.Gemini,
			llm.ProviderAnthropic: cfg.Models.Anthropic,
			llm.ProviderOpenAI:    cfg.Models.OpenAI,
		}, logger.Named("llm"))
		engine := llm.NewEngine(registry, logger.Named("llm"))

		srv := server.New(cfg, engine, logger)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Parse a raw ethical analysis text into a structured report",
	Long: `Reads ethical analysis text from the given file (or stdin when no
file is named) and prints the structured report as JSON: summary, validated
scores, alignment result, transparency report, and friction measurement.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("read analysis text: %w", err)
		}

		parser := review.NewParser(logger.Named("parser"))
		summary, scores := parser.Parse(string(raw))
		welfare, _ := scores.Welfare()

		detector := alignment.NewDetector(logger.Named("alignment"))
		engine := transparency.NewEngine(logger.Named("transparency"))
		monitor := friction.NewMonitor(0, logger.Named("friction"))

		report := map[string]any{
			"summary":      summary,
			"scores":       scores,
			"alignment":    detector.Analyze("", "", scores),
			"transparency": engine.Explain(welfare),
			"ai_welfare":   monitor.Measure("", "", welfare),
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ethoscope %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ethoscope.yaml", "path to config file")
	rootCmd.AddCommand(serveCmd, analyzeCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
