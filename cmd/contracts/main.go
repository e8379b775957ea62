package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"contract-analyzer-backend/config"
	"contract-analyzer-backend/extract"
	"contract-analyzer-backend/llm"
	"contract-analyzer-backend/logging"
	"contract-analyzer-backend/models"
	"contract-analyzer-backend/service"
	"contract-analyzer-backend/validation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose      bool
	timeout      time.Duration
	contractType string
	clauseType   string
	requirements string
	outPath      string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Analyze, compare and draft contracts from the command line",
	Long: `contracts runs the contract analysis pipeline against the configured
LLM provider (LLM_PROVIDER, see .env) without starting the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotEnv()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, "console")
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a contract and print the export JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var compareCmd = &cobra.Command{
	Use:   "compare [file] [file]...",
	Short: "Compare two or more contracts",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCompare,
}

var clauseCmd = &cobra.Command{
	Use:   "clause",
	Short: "Generate a contract clause",
	RunE:  runClause,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a contract analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := validation.AnalysisJSONSchema()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "Operation timeout")

	analyzeCmd.Flags().StringVarP(&contractType, "type", "t", "", "Contract type hint (service, employment, nda, lease, purchase or free text)")
	analyzeCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the export to this file instead of stdout")

	clauseCmd.Flags().StringVar(&clauseType, "type", "", "Clause type (required)")
	clauseCmd.Flags().StringVar(&requirements, "requirements", "", "Clause requirements (required)")
	clauseCmd.MarkFlagRequired("type")
	clauseCmd.MarkFlagRequired("requirements")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(clauseCmd)
	rootCmd.AddCommand(schemaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newContractService(ctx context.Context) (*service.ContractService, error) {
	backend, err := llm.NewBackend(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	return service.NewContractService(service.WithBackend(backend), service.WithLogger(logger)), nil
}

func readContract(ctx context.Context, extractor *extract.Extractor, path string) (*extract.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := extractor.Extract(ctx, filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	extractor, err := extract.NewExtractor(ctx, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}
	doc, err := readContract(ctx, extractor, args[0])
	if err != nil {
		return err
	}

	svc, err := newContractService(ctx)
	if err != nil {
		return err
	}

	res := svc.Analyze(ctx, service.AnalyzeRequest{
		Text:         doc.Text,
		ContractType: contractType,
		FileName:     doc.FileName,
	})
	if !res.Success() {
		return fmt.Errorf("%s", res.Error())
	}

	data, err := models.MarshalExport(models.NewExport(res.Value(), time.Now()))
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Analysis written to %s\n", outPath)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	extractor, err := extract.NewExtractor(ctx, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	texts := make([]string, 0, len(args))
	for _, path := range args {
		doc, err := readContract(ctx, extractor, path)
		if err != nil {
			return err
		}
		texts = append(texts, doc.Text)
	}

	svc, err := newContractService(ctx)
	if err != nil {
		return err
	}

	res := svc.Compare(ctx, texts)
	if !res.Success() {
		return fmt.Errorf("%s", res.Error())
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Value())
	return nil
}

func runClause(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	svc, err := newContractService(ctx)
	if err != nil {
		return err
	}

	res := svc.GenerateClause(ctx, clauseType, requirements)
	if !res.Success() {
		return fmt.Errorf("%s", res.Error())
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Value())
	return nil
}
