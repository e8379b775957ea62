// Package prompt builds the instructions sent to the reasoning backend for
// contract analysis, comparison and clause generation.
package prompt

import (
	"fmt"
	"strings"
)

// MinComparisonContracts is the fewest contracts a comparison accepts
const MinComparisonContracts = 2

// MissingArgumentError reports a required input that was empty
type MissingArgumentError struct {
	Argument string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.Argument)
}

// InsufficientInputError reports a comparison with too few contracts
type InsufficientInputError struct {
	Got  int
	Want int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("at least %d contracts required for comparison, got %d", e.Want, e.Got)
}

// contractTypeLabels maps the upload form's contract type options to the
// label placed in the prompt
var contractTypeLabels = map[string]string{
	"service":    "Service Agreement",
	"employment": "Employment Contract",
	"nda":        "Non-Disclosure Agreement",
	"lease":      "Lease Agreement",
	"purchase":   "Purchase Agreement",
}

// ContractTypeLabel resolves a contract type hint. Known option keys become
// their display label; anything else is passed through trimmed.
func ContractTypeLabel(hint string) string {
	hint = strings.TrimSpace(hint)
	if label, ok := contractTypeLabels[strings.ToLower(hint)]; ok {
		return label
	}
	return hint
}

// BuildAnalysisPrompt returns the instructions for a full contract analysis
func BuildAnalysisPrompt(contractText, contractTypeHint string) string {
	var b strings.Builder

	b.WriteString("Analyze the following legal contract and provide a comprehensive analysis:\n\n")
	b.WriteString("Contract Text:\n")
	b.WriteString(contractText)
	b.WriteString("\n\n")

	if label := ContractTypeLabel(contractTypeHint); label != "" {
		fmt.Fprintf(&b, "Expected Contract Type: %s\n\n", label)
	}

	b.WriteString(`Please provide:
1. A detailed summary of the contract
2. Identification of contract type
3. Compliance score (0-100) based on legal best practices
4. Key terms extraction
5. Detailed clause analysis with suggestions and compliance issues
6. Party obligations with deadlines and status
7. Risk assessment with probability scoring
8. Actionable recommendations for improvement
9. Negotiation insights and market comparison

Focus on:
- Legal compliance and regulatory requirements
- Risk identification and mitigation strategies
- Negotiation leverage points
- Practical business implications
- Industry-specific considerations
`)

	return b.String()
}

// BuildComparisonPrompt returns the instructions for comparing contracts.
// Each contract is labelled by its 1-based position.
func BuildComparisonPrompt(contractTexts []string) (string, error) {
	if len(contractTexts) < MinComparisonContracts {
		return "", &InsufficientInputError{Got: len(contractTexts), Want: MinComparisonContracts}
	}

	var b strings.Builder
	b.WriteString("Compare the following contracts and provide a detailed comparison analysis:\n\n")

	for i, text := range contractTexts {
		fmt.Fprintf(&b, "Contract %d:\n%s\n\n", i+1, text)
	}

	b.WriteString(`Please provide:
1. Side-by-side comparison of key terms
2. Differences in risk profiles
3. Compliance variations
4. Negotiation advantages/disadvantages
5. Recommendations for harmonization
6. Best practices from each contract
`)

	return b.String(), nil
}

// BuildClauseGenerationPrompt returns the instructions for drafting a clause
func BuildClauseGenerationPrompt(clauseType, requirements string) (string, error) {
	if strings.TrimSpace(clauseType) == "" {
		return "", &MissingArgumentError{Argument: "clauseType"}
	}
	if strings.TrimSpace(requirements) == "" {
		return "", &MissingArgumentError{Argument: "requirements"}
	}

	return fmt.Sprintf(`Generate a professional %s clause for a legal contract with the following requirements:

Requirements: %s

Please provide:
1. The complete clause text
2. Alternative variations
3. Legal considerations
4. Potential risks and mitigations
5. Industry best practices

Ensure the clause is legally sound and professionally drafted.
`, clauseType, requirements), nil
}
