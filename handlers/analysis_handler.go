package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"contract-analyzer-backend/models"
	"contract-analyzer-backend/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgMissingUserID     = "user_id is required"
	msgInvalidAnalysisID = "Invalid analysis id format"
)

// AnalysisHandler serves saved analyses
type AnalysisHandler struct {
	history *service.HistoryService
	now     func() time.Time
	logger  *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(history *service.HistoryService, now func() time.Time, logger *zap.Logger) *AnalysisHandler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{history: history, now: now, logger: logger}
}

func (h *AnalysisHandler) recordID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidAnalysisID)
		return uuid.Nil, false
	}
	return id, true
}

// ListAnalyses handles GET /api/analyses?user_id=
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	raw := c.Query("user_id")
	if raw == "" {
		respondError(c, http.StatusBadRequest, msgMissingUserID)
		return
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidUserID)
		return
	}

	res := h.history.ListByUser(c.Request.Context(), userID)
	c.JSON(res.Status(), res.Envelope("data"))
}

// GetAnalysis handles GET /api/analyses/:id
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	res := h.history.Get(c.Request.Context(), id)
	c.JSON(res.Status(), res.Envelope("data"))
}

// ExportAnalysis handles GET /api/analyses/:id/export
func (h *AnalysisHandler) ExportAnalysis(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	res := h.history.Get(c.Request.Context(), id)
	if !res.Success() {
		c.JSON(res.Status(), res.Envelope("data"))
		return
	}

	now := h.now()
	rec := res.Value()
	data, err := models.MarshalExport(models.NewExport(&rec.Analysis.ContractAnalysis, now))
	if err != nil {
		h.logger.Error("failed to render export", zap.Stringer("record_id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, msgInternal)
		return
	}

	filename := models.ExportFilename(rec.FileName, now)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json", data)
}

// DownloadDocument handles GET /api/analyses/:id/document
func (h *AnalysisHandler) DownloadDocument(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	res := h.history.OpenDocument(c.Request.Context(), id)
	if !res.Success() {
		c.JSON(res.Status(), res.Envelope("data"))
		return
	}

	doc := res.Value()
	defer doc.Body.Close()

	data, err := io.ReadAll(doc.Body)
	if err != nil {
		h.logger.Error("failed to read document", zap.Stringer("record_id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, msgInternal)
		return
	}

	filename := models.SafeFileName(path.Base(doc.Record.FileName))
	if filename == "" {
		filename = "document"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
