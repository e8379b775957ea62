package service

import (
	"context"
	"errors"
	"io"

	"contract-analyzer-backend/models"
	"contract-analyzer-backend/result"
	"contract-analyzer-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// User-safe history messages
const (
	MsgHistoryDisabled  = "Analysis history is not enabled"
	MsgSaveFailed       = "Failed to save analysis"
	MsgFetchFailed      = "Failed to fetch analyses"
	MsgAnalysisNotFound = "Analysis not found"
	MsgDocumentNotFound = "Document not found"
)

// ErrAnalysisNotFound may be returned by an AnalysisStore for a missing record
var ErrAnalysisNotFound = errors.New("analysis not found")

// AnalysisStore persists analysis records
type AnalysisStore interface {
	Create(ctx context.Context, rec *models.AnalysisRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.AnalysisRecord, error)
	SetStoragePath(ctx context.Context, id uuid.UUID, path string) error
}

// HistoryService saves analyses per user and serves them back
type HistoryService struct {
	store     AnalysisStore
	documents storage.Storage
	logger    *zap.Logger
}

// HistoryServiceOption is a functional option for HistoryService
type HistoryServiceOption func(*HistoryService)

// HistoryWithStore sets the analysis store
func HistoryWithStore(store AnalysisStore) HistoryServiceOption {
	return func(s *HistoryService) {
		s.store = store
	}
}

// HistoryWithDocuments sets the document archive
func HistoryWithDocuments(documents storage.Storage) HistoryServiceOption {
	return func(s *HistoryService) {
		s.documents = documents
	}
}

// HistoryWithLogger sets the logger
func HistoryWithLogger(logger *zap.Logger) HistoryServiceOption {
	return func(s *HistoryService) {
		s.logger = logger
	}
}

// NewHistoryService creates a new history service. Without a store every
// operation fails with MsgHistoryDisabled.
func NewHistoryService(opts ...HistoryServiceOption) *HistoryService {
	s := &HistoryService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether analyses can be persisted
func (s *HistoryService) Enabled() bool {
	return s != nil && s.store != nil
}

// SaveRequest represents a request to persist an analysis
type SaveRequest struct {
	Analysis *models.ContractAnalysis
	UserID   uuid.UUID
	FileSize int64
	// Document is the original upload; archived when storage is configured
	Document    []byte
	ContentType string
}

// Save persists the analysis and archives its document. An archive failure
// is logged and the saved record is still returned.
func (s *HistoryService) Save(ctx context.Context, req SaveRequest) result.Result[*models.AnalysisRecord] {
	if !s.Enabled() {
		return result.Fail[*models.AnalysisRecord](result.FaultUnavailable, MsgHistoryDisabled)
	}
	if req.Analysis == nil {
		return result.Fail[*models.AnalysisRecord](result.FaultClient, MsgSaveFailed)
	}

	rec := models.NewAnalysisRecord(req.Analysis, req.UserID, req.FileSize)
	if err := s.store.Create(ctx, rec); err != nil {
		s.logger.Error("failed to save analysis",
			zap.String("analysis_id", req.Analysis.ID),
			zap.Stringer("user_id", req.UserID),
			zap.Error(err),
		)
		return result.Fail[*models.AnalysisRecord](result.FaultBackend, MsgSaveFailed)
	}

	if s.documents != nil && len(req.Document) > 0 {
		s.archive(ctx, rec, req)
	}

	s.logger.Info("analysis saved",
		zap.Stringer("record_id", rec.ID),
		zap.Stringer("user_id", rec.UserID),
	)
	return result.Ok(rec)
}

func (s *HistoryService) archive(ctx context.Context, rec *models.AnalysisRecord, req SaveRequest) {
	key, err := s.documents.Put(ctx, storage.Document{
		UserID:     rec.UserID,
		AnalysisID: rec.ID,
		FileName:   rec.FileName,
		MediaType:  req.ContentType,
		Data:       req.Document,
	})
	if err != nil {
		s.logger.Warn("failed to archive document", zap.Stringer("record_id", rec.ID), zap.Error(err))
		return
	}

	if err := s.store.SetStoragePath(ctx, rec.ID, key); err != nil {
		s.logger.Warn("failed to record storage path", zap.Stringer("record_id", rec.ID), zap.Error(err))
		if delErr := s.documents.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned document", zap.String("key", key), zap.Error(delErr))
		}
		return
	}
	rec.StoragePath = &key
}

// ListByUser returns a user's analyses, newest first
func (s *HistoryService) ListByUser(ctx context.Context, userID uuid.UUID) result.Result[[]*models.AnalysisRecord] {
	if !s.Enabled() {
		return result.Fail[[]*models.AnalysisRecord](result.FaultUnavailable, MsgHistoryDisabled)
	}

	records, err := s.store.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list analyses", zap.Stringer("user_id", userID), zap.Error(err))
		return result.Fail[[]*models.AnalysisRecord](result.FaultBackend, MsgFetchFailed)
	}
	if records == nil {
		records = []*models.AnalysisRecord{}
	}
	return result.Ok(records)
}

// Get returns one saved analysis
func (s *HistoryService) Get(ctx context.Context, id uuid.UUID) result.Result[*models.AnalysisRecord] {
	if !s.Enabled() {
		return result.Fail[*models.AnalysisRecord](result.FaultUnavailable, MsgHistoryDisabled)
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrAnalysisNotFound) {
			return result.Fail[*models.AnalysisRecord](result.FaultNotFound, MsgAnalysisNotFound)
		}
		s.logger.Error("failed to get analysis", zap.Stringer("record_id", id), zap.Error(err))
		return result.Fail[*models.AnalysisRecord](result.FaultBackend, MsgFetchFailed)
	}
	return result.Ok(rec)
}

// StoredDocument is an archived upload opened for reading. Callers close Body.
type StoredDocument struct {
	Record *models.AnalysisRecord
	Body   io.ReadCloser
}

// OpenDocument opens the archived upload of a saved analysis
func (s *HistoryService) OpenDocument(ctx context.Context, id uuid.UUID) result.Result[*StoredDocument] {
	got := s.Get(ctx, id)
	if !got.Success() {
		return result.Fail[*StoredDocument](got.Fault(), got.Error())
	}

	rec := got.Value()
	if s.documents == nil || rec.StoragePath == nil {
		return result.Fail[*StoredDocument](result.FaultNotFound, MsgDocumentNotFound)
	}

	body, err := s.documents.Get(ctx, *rec.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return result.Fail[*StoredDocument](result.FaultNotFound, MsgDocumentNotFound)
		}
		s.logger.Error("failed to open document", zap.Stringer("record_id", id), zap.Error(err))
		return result.Fail[*StoredDocument](result.FaultBackend, MsgFetchFailed)
	}
	return result.Ok(&StoredDocument{Record: rec, Body: body})
}
