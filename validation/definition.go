package validation

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// AnalysisSchemaName names the schema when a backend asks for one
const AnalysisSchemaName = "ContractAnalysis"

var (
	levelEnum          = []string{"high", "medium", "low"}
	statusEnum         = []string{"pending", "completed", "overdue"}
	recommendationEnum = []string{"improvement", "risk-mitigation", "compliance"}
)

func str(desc string) *schema.ParameterInfo {
	return &schema.ParameterInfo{Type: schema.String, Desc: desc, Required: true}
}

func num(desc string) *schema.ParameterInfo {
	return &schema.ParameterInfo{Type: schema.Number, Desc: desc, Required: true}
}

func enum(desc string, values []string) *schema.ParameterInfo {
	return &schema.ParameterInfo{Type: schema.String, Desc: desc, Enum: values, Required: true}
}

func list(desc string, elem *schema.ParameterInfo) *schema.ParameterInfo {
	return &schema.ParameterInfo{Type: schema.Array, Desc: desc, ElemInfo: elem, Required: true}
}

func object(desc string, fields map[string]*schema.ParameterInfo) *schema.ParameterInfo {
	return &schema.ParameterInfo{Type: schema.Object, Desc: desc, SubParams: fields, Required: true}
}

// AnalysisSchema returns the ContractAnalysis shape as a schema tree that
// backends translate into their own structured-output format. Numeric ranges
// are stated in the descriptions; Validate enforces them.
func AnalysisSchema() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"summary":         str("A detailed summary of the contract"),
		"contractType":    str("The contract classification, e.g. Service Agreement"),
		"complianceScore": num("Compliance score from 0 to 100 based on legal best practices"),
		"keyTerms": object("Key terms extracted from the contract", map[string]*schema.ParameterInfo{
			"parties":           list("Contracting parties", str("Party name")),
			"effectiveDate":     str("Effective date"),
			"expirationDate":    str("Expiration date"),
			"paymentTerms":      str("Payment terms"),
			"terminationClause": str("Termination conditions"),
			"governingLaw":      str("Governing law"),
			"contractValue":     str("Total contract value"),
		}),
		"clauses": list("Clause-by-clause analysis", object("Clause", map[string]*schema.ParameterInfo{
			"type":             str("Clause type"),
			"content":          str("Clause text or synopsis"),
			"importance":       enum("Clause importance", levelEnum),
			"risk":             enum("Clause risk", levelEnum),
			"suggestions":      list("Improvement suggestions, may be empty", str("Suggestion")),
			"complianceIssues": list("Compliance issues, may be empty", str("Issue")),
		})),
		"obligations": list("Party obligations", object("Obligation", map[string]*schema.ParameterInfo{
			"party":      str("Obligated party"),
			"obligation": str("What the party must do"),
			"deadline":   {Type: schema.String, Desc: "Deadline if the contract states one"},
			"status":     enum("Obligation status", statusEnum),
		})),
		"risks": list("Risk register", object("Risk", map[string]*schema.ParameterInfo{
			"description": str("Risk description"),
			"severity":    enum("Risk severity", levelEnum),
			"mitigation":  str("Mitigation strategy"),
			"probability": num("Probability from 0 to 1"),
		})),
		"recommendations": list("Actionable recommendations", object("Recommendation", map[string]*schema.ParameterInfo{
			"type":        enum("Recommendation type", recommendationEnum),
			"title":       str("Short title"),
			"description": str("Recommendation detail"),
			"priority":    enum("Recommendation priority", levelEnum),
		})),
		"negotiationInsights": object("Negotiation insights", map[string]*schema.ParameterInfo{
			"favorability":         num("Favorability from 0 to 100"),
			"keyNegotiationPoints": list("Negotiation leverage points", str("Point")),
			"marketComparison":     str("Comparison with market terms"),
		}),
	}
}

var (
	jsonSchemaOnce sync.Once
	jsonSchemaText string
	jsonSchemaErr  error
)

// AnalysisJSONSchema renders AnalysisSchema as JSON Schema text for backends
// that only accept schema instructions inside the prompt
func AnalysisJSONSchema() (string, error) {
	jsonSchemaOnce.Do(func() {
		js, err := schema.NewParamsOneOfByParams(AnalysisSchema()).ToJSONSchema()
		if err != nil {
			jsonSchemaErr = fmt.Errorf("failed to build analysis JSON schema: %w", err)
			return
		}
		b, err := json.Marshal(js)
		if err != nil {
			jsonSchemaErr = fmt.Errorf("failed to encode analysis JSON schema: %w", err)
			return
		}
		jsonSchemaText = string(b)
	})
	return jsonSchemaText, jsonSchemaErr
}
