package repository

import (
	"context"
	"fmt"
)

// schemaStatements create the contract_analyses table and its indexes.
// Every statement is idempotent.
var schemaStatements = []struct {
	name string
	sql  string
}{
	{"contract_analyses table", `
CREATE TABLE IF NOT EXISTS contract_analyses (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL,
    file_name TEXT NOT NULL,
    file_size BIGINT NOT NULL DEFAULT 0,
    contract_type TEXT,
    analysis_data JSONB NOT NULL,
    compliance_score DOUBLE PRECISION NOT NULL
        CHECK (compliance_score >= 0 AND compliance_score <= 100),
    storage_path TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`},
	{"user/created_at index", `
CREATE INDEX IF NOT EXISTS idx_contract_analyses_user_created
    ON contract_analyses (user_id, created_at DESC);`},
	{"created_at index", `
CREATE INDEX IF NOT EXISTS idx_contract_analyses_created
    ON contract_analyses (created_at);`},
}

// CreateSchema creates the analysis history schema
func CreateSchema(ctx context.Context, db DB, logf func(format string, args ...any)) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
		if logf != nil {
			logf("✓ Created %s", stmt.name)
		}
	}
	return nil
}
