package handlers

import (
	"errors"
	"net/http"
	"strings"

	"contract-analyzer-backend/extract"
	"contract-analyzer-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// isoMillis matches the millisecond ISO-8601 timestamps clients expect
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// multipartOverhead allows for form fields and part headers on top of the file
const multipartOverhead = 1 << 20

const (
	msgNoFile          = "No file provided"
	msgFileTooLarge    = "File too large"
	msgUnsupportedType = "Unsupported file type"
	msgNoText          = "No text found in file"
	msgInvalidUserID   = "Invalid user_id format"
	msgInvalidBody     = "Invalid request body"
	msgInternal        = "Internal server error"
)

// ContractHandler serves analysis, comparison and clause generation
type ContractHandler struct {
	contracts *service.ContractService
	history   *service.HistoryService
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewContractHandler creates a new contract handler. history may be nil.
func NewContractHandler(
	contracts *service.ContractService,
	history *service.HistoryService,
	extractor *extract.Extractor,
	logger *zap.Logger,
) *ContractHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractHandler{
		contracts: contracts,
		history:   history,
		extractor: extractor,
		logger:    logger,
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

func (h *ContractHandler) timestamp() string {
	return h.contracts.Now().UTC().Format(isoMillis)
}

// Analyze handles POST /api/analyze
func (h *ContractHandler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.extractor.MaxBytes()+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusBadRequest, msgFileTooLarge)
			return
		}
		respondError(c, http.StatusBadRequest, msgNoFile)
		return
	}

	var userID *uuid.UUID
	if raw := strings.TrimSpace(c.PostForm("user_id")); raw != "" {
		uid, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, msgInvalidUserID)
			return
		}
		userID = &uid
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open upload", zap.String("file_name", fileHeader.Filename), zap.Error(err))
		respondError(c, http.StatusInternalServerError, msgInternal)
		return
	}
	defer file.Close()

	doc, err := h.extractor.Extract(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrTooLarge):
			respondError(c, http.StatusBadRequest, msgFileTooLarge)
		case errors.Is(err, extract.ErrUnsupportedType):
			respondError(c, http.StatusBadRequest, msgUnsupportedType)
		case errors.Is(err, extract.ErrNoText):
			respondError(c, http.StatusBadRequest, msgNoText)
		default:
			h.logger.Error("failed to extract contract text", zap.String("file_name", fileHeader.Filename), zap.Error(err))
			respondError(c, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	res := h.contracts.Analyze(c.Request.Context(), service.AnalyzeRequest{
		Text:         doc.Text,
		ContractType: c.PostForm("contractType"),
		FileName:     fileHeader.Filename,
	})
	if !res.Success() {
		c.JSON(res.Status(), res.Envelope("data"))
		return
	}

	metadata := gin.H{
		"fileName":           fileHeader.Filename,
		"fileSize":           doc.Size(),
		"processedAt":        h.timestamp(),
		"aiInsights":         c.PostForm("aiInsights") == "true",
		"complianceChecking": c.PostForm("complianceChecking") == "true",
	}

	if userID != nil && h.history.Enabled() {
		saved := h.history.Save(c.Request.Context(), service.SaveRequest{
			Analysis:    res.Value(),
			UserID:      *userID,
			FileSize:    doc.Size(),
			Document:    doc.Data,
			ContentType: doc.ContentType,
		})
		if saved.Success() {
			metadata["recordId"] = saved.Value().ID
		}
	}

	body := res.Envelope("data")
	body["metadata"] = metadata
	c.JSON(http.StatusOK, body)
}

// CompareRequest represents the request body for comparing contracts
type CompareRequest struct {
	Contracts []string `json:"contracts"`
}

// Compare handles POST /api/compare
func (h *ContractHandler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res := h.contracts.Compare(c.Request.Context(), req.Contracts)
	body := res.Envelope("comparison")
	if res.Success() {
		body["processedAt"] = h.timestamp()
	}
	c.JSON(res.Status(), body)
}

// GenerateClauseRequest represents the request body for clause generation
type GenerateClauseRequest struct {
	ClauseType   string `json:"clauseType"`
	Requirements string `json:"requirements"`
}

// GenerateClause handles POST /api/generate-clause
func (h *ContractHandler) GenerateClause(c *gin.Context) {
	var req GenerateClauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res := h.contracts.GenerateClause(c.Request.Context(), req.ClauseType, req.Requirements)
	body := res.Envelope("clause")
	if res.Success() {
		body["generatedAt"] = h.timestamp()
	}
	c.JSON(res.Status(), body)
}
