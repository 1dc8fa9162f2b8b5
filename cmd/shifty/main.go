package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cylon-model-15/shifty/internal/backend"
	"github.com/cylon-model-15/shifty/internal/batch"
	"github.com/cylon-model-15/shifty/internal/config"
	"github.com/cylon-model-15/shifty/internal/notes"
	"github.com/cylon-model-15/shifty/internal/pipeline"
	"github.com/cylon-model-15/shifty/internal/watch"
)

var (
	// Global flags
	configFile     string
	provider       string
	model          string
	ollamaHost     string
	apiKey         string
	pass1File      string
	pass2File      string
	styleGuideFile string
	shorthandFile  string
	notesFile      string
	outputFile     string
	force          bool
	verbose        bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shifty",
	Short: "Turn timestamped shift notes into polished narratives via a two-pass LLM pipeline",
	Long: `shifty lints raw shift notes, extracts observed facts with a first
model pass, and turns them into prose with a second pass. Outputs are cached
by modification time, so unchanged notes are never re-generated.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
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

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "shifty.yaml", "Path to an optional YAML config file")
	pf.StringVar(&provider, "provider", "", "Backend provider: ollama, openai, or gemini")
	pf.StringVar(&model, "model", "", "Model to use (default qwen2.5:32b)")
	pf.StringVar(&ollamaHost, "ollama-host", "", "Backend host / base URL")
	pf.StringVar(&apiKey, "api-key", "", "API key for openai or gemini backends")
	pf.StringVar(&pass1File, "prompt-file-pass1", "", "Prompt template for pass 1 (fact extraction)")
	pf.StringVar(&pass2File, "prompt-file-pass2", "", "Prompt template for pass 2 (narrative generation)")
	pf.StringVar(&styleGuideFile, "style-guide-file", "", "Optional style guide injected into pass 2")
	pf.StringVar(&shorthandFile, "shorthand-file", "", "Optional JSON shorthand mapping injected into pass 2")
	pf.BoolVar(&force, "force", false, "Regenerate even when the output is up to date")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	for _, cmd := range []*cobra.Command{runCmd, lintCmd, watchCmd} {
		cmd.Flags().StringVar(&notesFile, "notes-file", "", "Path to the raw notes file")
		_ = cmd.MarkFlagRequired("notes-file")
	}
	runCmd.Flags().StringVar(&outputFile, "output-file", "", "Where to save the narrative (default: notes path with .shifty extension)")
	watchCmd.Flags().StringVar(&outputFile, "output-file", "", "Where to save the narrative (default: notes path with .shifty extension)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
}

// resolve performs the one-shot layered configuration resolution:
// flags > environment > config file > defaults.
func resolve() (config.Config, error) {
	return config.Resolve(configFile, os.Getenv, config.Flags{
		Provider:       provider,
		Model:          model,
		Host:           ollamaHost,
		APIKey:         apiKey,
		Pass1File:      pass1File,
		Pass2File:      pass2File,
		StyleGuideFile: styleGuideFile,
		ShorthandFile:  shorthandFile,
		NotesFile:      notesFile,
		OutputFile:     outputFile,
		Force:          force,
		Verbose:        verbose,
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Lint one notes file and generate its narrative",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, err := resolve()
		if err != nil {
			return err
		}

		completer, err := backend.New(ctx, backend.Options{
			Provider: cfg.Provider,
			Host:     cfg.Host,
			APIKey:   cfg.APIKey,
		})
		if err != nil {
			return err
		}

		if err := pipeline.New(cfg, completer, logger).Run(ctx); err != nil {
			return err
		}
		return nil
	},
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint a notes file without calling the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(notesFile)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", notesFile, err)
		}

		doc, report := notes.Parse(string(data))
		for _, w := range report.Warnings {
			fmt.Printf("⚠️  %s:%d: %s\n", notesFile, w.Line, w.Message)
		}
		if !report.OK {
			for _, v := range report.Violations {
				fmt.Printf("❌ %s:%d: %s\n", notesFile, v.Line, v.Message)
			}
			return fmt.Errorf("lint failed with %d violation(s)", len(report.Violations))
		}

		fmt.Printf("✅ %s lints clean: %s, %d entries.\n", notesFile, doc.Participant, len(doc.Entries))
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Process every notes file under a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		ctx, stop := signalContext()
		defer stop()

		// Batch resolves config without a single notes file; per-file paths
		// are filled in by the driver.
		cfg, err := config.Resolve(configFile, os.Getenv, config.Flags{
			Provider:       provider,
			Model:          model,
			Host:           ollamaHost,
			APIKey:         apiKey,
			Pass1File:      pass1File,
			Pass2File:      pass2File,
			StyleGuideFile: styleGuideFile,
			ShorthandFile:  shorthandFile,
			NotesFile:      root, // placeholder for validation; replaced per file
			Force:          force,
			Verbose:        verbose,
		})
		if err != nil {
			return err
		}

		completer, err := backend.New(ctx, backend.Options{
			Provider: cfg.Provider,
			Host:     cfg.Host,
			APIKey:   cfg.APIKey,
		})
		if err != nil {
			return err
		}

		sum, err := batch.NewDriver(cfg, completer, logger).Run(ctx, root)
		if err != nil {
			return err
		}
		if sum.Failed > 0 {
			return fmt.Errorf("%d file(s) failed", sum.Failed)
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-generate the narrative whenever an input file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, err := resolve()
		if err != nil {
			return err
		}

		completer, err := backend.New(ctx, backend.Options{
			Provider: cfg.Provider,
			Host:     cfg.Host,
			APIKey:   cfg.APIKey,
		})
		if err != nil {
			return err
		}

		runner := pipeline.New(cfg, completer, logger)
		return watch.Run(ctx, cfg.InputPaths(), logger, runner.Run)
	},
}
