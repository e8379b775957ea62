package repository

import (
	"context"
	"time"

	"contract-analyzer-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repositories use
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AnalysisRepository handles database operations for saved analyses
type AnalysisRepository struct {
	db DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const analysisColumns = `id, user_id, file_name, file_size, contract_type, analysis_data,
			compliance_score, storage_path, created_at, updated_at`

// Create inserts an analysis record
func (r *AnalysisRepository) Create(ctx context.Context, rec *models.AnalysisRecord) error {
	query := `
		INSERT INTO contract_analyses (
			id, user_id, file_name, file_size, contract_type, analysis_data,
			compliance_score, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		rec.ID,
		rec.UserID,
		rec.FileName,
		rec.FileSize,
		rec.ContractType,
		rec.Analysis,
		rec.ComplianceScore,
		rec.StoragePath,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

// GetByID retrieves an analysis record by ID. Returns pgx.ErrNoRows when
// there is no such record.
func (r *AnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM contract_analyses
		WHERE id = $1`

	rec, err := scanAnalysis(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByUserID retrieves a user's analyses, newest first
func (r *AnalysisRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.AnalysisRecord, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM contract_analyses
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.AnalysisRecord, 0)
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// SetStoragePath records where the uploaded document was archived
func (r *AnalysisRepository) SetStoragePath(ctx context.Context, id uuid.UUID, path string) error {
	query := `
		UPDATE contract_analyses
		SET storage_path = $2, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteOlderThan removes analyses created before cutoff and returns the
// storage paths of their archived documents
func (r *AnalysisRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `
		DELETE FROM contract_analyses
		WHERE created_at < $1
		RETURNING storage_path`

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path *string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		if path != nil && *path != "" {
			paths = append(paths, *path)
		}
	}

	return paths, rows.Err()
}

func scanAnalysis(row pgx.Row) (*models.AnalysisRecord, error) {
	rec := &models.AnalysisRecord{}
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.FileName,
		&rec.FileSize,
		&rec.ContractType,
		&rec.Analysis,
		&rec.ComplianceScore,
		&rec.StoragePath,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
