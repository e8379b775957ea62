package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contract-analyzer-backend/llm"
	"contract-analyzer-backend/models"
	"contract-analyzer-backend/prompt"
	"contract-analyzer-backend/result"
	"contract-analyzer-backend/validation"

	"go.uber.org/zap"
)

// User-safe failure messages returned by the contract operations
const (
	MsgAnalyzeFailed        = "Failed to analyze contract. Please try again."
	MsgCompareFailed        = "Failed to compare contracts. Please try again."
	MsgGenerateClauseFailed = "Failed to generate clause. Please try again."
	MsgClauseArgsRequired   = "Clause type and requirements are required"
	MsgTooFewContracts      = "At least 2 contracts required for comparison"
	MsgContractTextRequired = "Contract text is required"
)

// ContractService runs analysis, comparison and clause generation against
// the reasoning backend. It holds no per-call state and is safe for
// concurrent use.
type ContractService struct {
	backend llm.Backend
	logger  *zap.Logger
	now     func() time.Time
}

// ContractServiceOption is a functional option for ContractService
type ContractServiceOption func(*ContractService)

// WithBackend sets the reasoning backend
func WithBackend(backend llm.Backend) ContractServiceOption {
	return func(s *ContractService) {
		s.backend = backend
	}
}

// WithLogger sets the logger used for failure causes
func WithLogger(logger *zap.Logger) ContractServiceOption {
	return func(s *ContractService) {
		s.logger = logger
	}
}

// WithClock sets the time source for ids and timestamps
func WithClock(now func() time.Time) ContractServiceOption {
	return func(s *ContractService) {
		s.now = now
	}
}

// NewContractService creates a new contract service
func NewContractService(opts ...ContractServiceOption) *ContractService {
	s := &ContractService{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeRequest represents a request to analyze one contract
type AnalyzeRequest struct {
	Text         string
	ContractType string // Optional hint
	FileName     string
}

var errBackendNotSet = errors.New("reasoning backend not set")

// Analyze extracts a validated ContractAnalysis from contract text
func (s *ContractService) Analyze(ctx context.Context, req AnalyzeRequest) result.Result[*models.ContractAnalysis] {
	if strings.TrimSpace(req.Text) == "" {
		return result.Fail[*models.ContractAnalysis](result.FaultClient, MsgContractTextRequired)
	}

	jsonSchema, err := validation.AnalysisJSONSchema()
	if err != nil {
		return backendFailure[*models.ContractAnalysis](s.logger, "analyze", MsgAnalyzeFailed, err)
	}

	raw, err := s.generate(ctx, llm.Request{
		Prompt: prompt.BuildAnalysisPrompt(req.Text, req.ContractType),
		Schema: &llm.Schema{
			Name:   validation.AnalysisSchemaName,
			Params: validation.AnalysisSchema(),
			JSON:   jsonSchema,
		},
	})
	if err != nil {
		return backendFailure[*models.ContractAnalysis](s.logger, "analyze", MsgAnalyzeFailed, err)
	}

	analysis, err := validation.Validate([]byte(raw))
	if err != nil {
		return backendFailure[*models.ContractAnalysis](s.logger, "analyze", MsgAnalyzeFailed, err)
	}

	now := s.now()
	analysis.ID = fmt.Sprintf("analysis-%d", now.UnixMilli())
	analysis.FileName = req.FileName
	analysis.UploadDate = now.UTC()

	s.logger.Info("contract analyzed",
		zap.String("analysis_id", analysis.ID),
		zap.String("contract_type", analysis.ContractType),
		zap.Float64("compliance_score", analysis.ComplianceScore),
		zap.Int("high_risks", analysis.HighRiskCount()),
	)

	return result.Ok(analysis)
}

// Compare returns a narrative comparison of two or more contracts
func (s *ContractService) Compare(ctx context.Context, contractTexts []string) result.Result[string] {
	p, err := prompt.BuildComparisonPrompt(contractTexts)
	if err != nil {
		var insufficient *prompt.InsufficientInputError
		if errors.As(err, &insufficient) {
			return result.Fail[string](result.FaultClient, MsgTooFewContracts)
		}
		return backendFailure[string](s.logger, "compare", MsgCompareFailed, err)
	}

	text, err := s.generate(ctx, llm.Request{Prompt: p})
	if err != nil {
		return backendFailure[string](s.logger, "compare", MsgCompareFailed, err)
	}
	return result.Ok(text)
}

// GenerateClause drafts a clause of the given type meeting the requirements
func (s *ContractService) GenerateClause(ctx context.Context, clauseType, requirements string) result.Result[string] {
	p, err := prompt.BuildClauseGenerationPrompt(clauseType, requirements)
	if err != nil {
		var missing *prompt.MissingArgumentError
		if errors.As(err, &missing) {
			return result.Fail[string](result.FaultClient, MsgClauseArgsRequired)
		}
		return backendFailure[string](s.logger, "generate_clause", MsgGenerateClauseFailed, err)
	}

	text, err := s.generate(ctx, llm.Request{Prompt: p})
	if err != nil {
		return backendFailure[string](s.logger, "generate_clause", MsgGenerateClauseFailed, err)
	}
	return result.Ok(text)
}

// Now returns the service clock's current time
func (s *ContractService) Now() time.Time {
	return s.now()
}

func (s *ContractService) generate(ctx context.Context, req llm.Request) (string, error) {
	if s.backend == nil {
		return "", errBackendNotSet
	}
	return s.backend.Generate(ctx, req)
}

// backendFailure logs the detailed cause and returns only the user-safe message
func backendFailure[T any](logger *zap.Logger, op, msg string, cause error) result.Result[T] {
	fields := []zap.Field{zap.String("operation", op), zap.Error(cause)}

	var violation *validation.SchemaViolation
	var backendErr *llm.BackendError
	switch {
	case errors.As(cause, &violation):
		fields = append(fields, zap.String("kind", "schema_violation"), zap.String("field", violation.Field))
	case errors.As(cause, &backendErr):
		fields = append(fields, zap.String("kind", "backend"), zap.String("provider", backendErr.Provider))
	case errors.Is(cause, context.Canceled), errors.Is(cause, context.DeadlineExceeded):
		fields = append(fields, zap.String("kind", "cancelled"))
	}

	logger.Error("contract operation failed", fields...)
	return result.Fail[T](result.FaultBackend, msg)
}
