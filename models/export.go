package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ExportVersion is stamped on every exported analysis
const ExportVersion = "2.0"

// AnalysisExport is the downloadable form of an analysis: the analysis fields
// flattened alongside the export stamp
type AnalysisExport struct {
	ContractAnalysis
	ExportDate    time.Time `json:"exportDate"`
	ExportVersion string    `json:"exportVersion"`
}

// NewExport wraps an analysis for download
func NewExport(analysis *ContractAnalysis, at time.Time) AnalysisExport {
	return AnalysisExport{
		ContractAnalysis: *analysis,
		ExportDate:       at.UTC(),
		ExportVersion:    ExportVersion,
	}
}

// MarshalExport renders the export as indented JSON
func MarshalExport(export AnalysisExport) ([]byte, error) {
	return json.MarshalIndent(export, "", "  ")
}

// ParseExport reads an exported analysis back
func ParseExport(data []byte) (*AnalysisExport, error) {
	var export AnalysisExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse analysis export: %w", err)
	}
	if export.ExportVersion == "" {
		return nil, fmt.Errorf("analysis export has no exportVersion")
	}
	return &export, nil
}

// ExportFilename builds the attachment name used for downloads
func ExportFilename(fileName string, at time.Time) string {
	name := SafeFileName(fileName)
	if name == "" {
		name = "contract"
	}
	return fmt.Sprintf("contract-analysis-%s-%d.json", name, at.UnixMilli())
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFileName reduces a client supplied file name to characters that are
// safe in object keys and Content-Disposition headers. It may return "".
func SafeFileName(name string) string {
	return strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "._")
}
