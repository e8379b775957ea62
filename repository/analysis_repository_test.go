package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"contract-analyzer-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordColumns = []string{
	"id", "user_id", "file_name", "file_size", "contract_type", "analysis_data",
	"compliance_score", "storage_path", "created_at", "updated_at",
}

func sampleAnalysis() *models.ContractAnalysis {
	return &models.ContractAnalysis{
		ID:              "analysis-1714566600000",
		FileName:        "lease.txt",
		UploadDate:      time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		Summary:         "Office lease.",
		ContractType:    "Lease Agreement",
		ComplianceScore: 74,
		KeyTerms:        models.KeyTerms{Parties: []string{"Landlord", "Tenant"}},
		Clauses:         []models.Clause{},
		Obligations:     []models.Obligation{},
		Risks: []models.Risk{
			{Description: "Rent escalation", Severity: models.LevelMedium, Mitigation: "Cap increases", Probability: 0.5},
		},
		Recommendations:     []models.Recommendation{},
		NegotiationInsights: models.NegotiationInsights{Favorability: 40, KeyNegotiationPoints: []string{}},
	}
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestAnalysisRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewAnalysisRepository(mock)

	rec := models.NewAnalysisRecord(sampleAnalysis(), uuid.New(), 2048)
	created := time.Date(2024, 5, 1, 12, 30, 1, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO contract_analyses`).
		WithArgs(rec.ID, rec.UserID, "lease.txt", int64(2048), "Lease Agreement",
			pgxmock.AnyArg(), 74.0, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))

	require.NoError(t, repo.Create(context.Background(), rec))
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, created, rec.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewAnalysisRepository(mock)

	id, userID := uuid.New(), uuid.New()
	payload, err := json.Marshal(sampleAnalysis())
	require.NoError(t, err)
	path := "contracts/" + userID.String() + "/" + id.String() + "_lease.txt"
	now := time.Now().UTC().Truncate(time.Second)

	mock.ExpectQuery(`FROM contract_analyses\s+WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(recordColumns).
			AddRow(id, userID, "lease.txt", int64(2048), "Lease Agreement", payload, 74.0, &path, now, now))

	rec, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, userID, rec.UserID)
	assert.Equal(t, "Lease Agreement", rec.Analysis.ContractType)
	assert.Equal(t, 0.5, rec.Analysis.Risks[0].Probability)
	require.NotNil(t, rec.StoragePath)
	assert.Equal(t, path, *rec.StoragePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewAnalysisRepository(mock)

	id := uuid.New()
	mock.ExpectQuery(`FROM contract_analyses`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(recordColumns))

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepository_ListByUserID(t *testing.T) {
	mock := newMock(t)
	repo := NewAnalysisRepository(mock)

	userID := uuid.New()
	payload, err := json.Marshal(sampleAnalysis())
	require.NoError(t, err)
	newer := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery(`WHERE user_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(recordColumns).
			AddRow(first, userID, "b.txt", int64(10), "Lease Agreement", payload, 74.0, (*string)(nil), newer, newer).
			AddRow(second, userID, "a.txt", int64(20), "Lease Agreement", payload, 74.0, (*string)(nil), older, older))

	records, err := repo.ListByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first, records[0].ID)
	assert.Equal(t, second, records[1].ID)
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepository_ListByUserID_Empty(t *testing.T) {
	mock := newMock(t)
	repo := NewAnalysisRepository(mock)

	userID := uuid.New()
	mock.ExpectQuery(`FROM contract_analyses`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(recordColumns))

	records, err := repo.ListByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestAnalysisRepository_SetStoragePath(t *testing.T) {
	mock := newMock(t)
	repo := NewAnalysisRepository(mock)

	id := uuid.New()
	mock.ExpectExec(`UPDATE contract_analyses`).
		WithArgs(id, "contracts/x/y.txt").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.SetStoragePath(context.Background(), id, "contracts/x/y.txt"))

	mock.ExpectExec(`UPDATE contract_analyses`).
		WithArgs(id, "contracts/x/y.txt").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.SetStoragePath(context.Background(), id, "contracts/x/y.txt"), pgx.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepository_DeleteOlderThan(t *testing.T) {
	mock := newMock(t)
	repo := NewAnalysisRepository(mock)

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	kept := "contracts/u/1_a.pdf"
	empty := ""

	mock.ExpectQuery(`DELETE FROM contract_analyses\s+WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"storage_path"}).
			AddRow(&kept).
			AddRow((*string)(nil)).
			AddRow(&empty))

	paths, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, []string{kept}, paths)
	assert.NoError(t, mock.ExpectationsWereMet())
}
