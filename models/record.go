package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnalysisPayload stores a full ContractAnalysis in a JSONB column
type AnalysisPayload struct {
	ContractAnalysis
}

// Value implements driver.Valuer for JSONB
func (p AnalysisPayload) Value() (driver.Value, error) {
	return json.Marshal(p.ContractAnalysis)
}

// Scan implements sql.Scanner for JSONB
func (p *AnalysisPayload) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported analysis payload type %T", value)
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, &p.ContractAnalysis)
}

// AnalysisRecord is a persisted analysis owned by a user
type AnalysisRecord struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	FileName        string          `json:"file_name"`
	FileSize        int64           `json:"file_size"`
	ContractType    string          `json:"contract_type"`
	Analysis        AnalysisPayload `json:"analysis_data"`
	ComplianceScore float64         `json:"compliance_score"`
	StoragePath     *string         `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewAnalysisRecord builds a record for a freshly produced analysis
func NewAnalysisRecord(analysis *ContractAnalysis, userID uuid.UUID, fileSize int64) *AnalysisRecord {
	return &AnalysisRecord{
		ID:              uuid.New(),
		UserID:          userID,
		FileName:        analysis.FileName,
		FileSize:        fileSize,
		ContractType:    analysis.ContractType,
		Analysis:        AnalysisPayload{ContractAnalysis: *analysis},
		ComplianceScore: analysis.ComplianceScore,
	}
}
