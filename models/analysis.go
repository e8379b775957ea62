package models

import (
	"time"
)

// Level is the high/medium/low scale shared by clause importance, clause risk,
// risk severity and recommendation priority
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// ObligationStatus represents the status of a party obligation
type ObligationStatus string

const (
	ObligationPending   ObligationStatus = "pending"
	ObligationCompleted ObligationStatus = "completed"
	ObligationOverdue   ObligationStatus = "overdue"
)

// RecommendationType represents the kind of recommendation
type RecommendationType string

const (
	RecommendationImprovement    RecommendationType = "improvement"
	RecommendationRiskMitigation RecommendationType = "risk-mitigation"
	RecommendationCompliance     RecommendationType = "compliance"
)

// ContractAnalysis is the structured result of analyzing one contract.
// A value is produced once per analysis and never mutated afterwards.
type ContractAnalysis struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	UploadDate time.Time `json:"uploadDate"`

	Summary             string              `json:"summary"`
	ContractType        string              `json:"contractType"`
	ComplianceScore     float64             `json:"complianceScore"`
	KeyTerms            KeyTerms            `json:"keyTerms"`
	Clauses             []Clause            `json:"clauses"`
	Obligations         []Obligation        `json:"obligations"`
	Risks               []Risk              `json:"risks"`
	Recommendations     []Recommendation    `json:"recommendations"`
	NegotiationInsights NegotiationInsights `json:"negotiationInsights"`
}

// KeyTerms holds the headline terms extracted from the contract
type KeyTerms struct {
	Parties           []string `json:"parties"`
	EffectiveDate     string   `json:"effectiveDate"`
	ExpirationDate    string   `json:"expirationDate"`
	PaymentTerms      string   `json:"paymentTerms"`
	TerminationClause string   `json:"terminationClause"`
	GoverningLaw      string   `json:"governingLaw"`
	ContractValue     string   `json:"contractValue"`
}

// Clause is a single contractual provision with its assessment
type Clause struct {
	Type             string   `json:"type"`
	Content          string   `json:"content"`
	Importance       Level    `json:"importance"`
	Risk             Level    `json:"risk"`
	Suggestions      []string `json:"suggestions"`
	ComplianceIssues []string `json:"complianceIssues"`
}

// Obligation is a duty owed by one party
type Obligation struct {
	Party      string           `json:"party"`
	Obligation string           `json:"obligation"`
	Deadline   *string          `json:"deadline,omitempty"`
	Status     ObligationStatus `json:"status"`
}

// Risk is an entry in the risk register
type Risk struct {
	Description string  `json:"description"`
	Severity    Level   `json:"severity"`
	Mitigation  string  `json:"mitigation"`
	Probability float64 `json:"probability"`
}

// Recommendation is an actionable suggestion for the contract
type Recommendation struct {
	Type        RecommendationType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    Level              `json:"priority"`
}

// NegotiationInsights summarizes the negotiating position
type NegotiationInsights struct {
	Favorability         float64  `json:"favorability"`
	KeyNegotiationPoints []string `json:"keyNegotiationPoints"`
	MarketComparison     string   `json:"marketComparison"`
}

// HighRiskCount returns the number of risks rated high severity
func (a *ContractAnalysis) HighRiskCount() int {
	n := 0
	for _, r := range a.Risks {
		if r.Severity == LevelHigh {
			n++
		}
	}
	return n
}
