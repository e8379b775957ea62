// Package validation checks structured model output against the
// ContractAnalysis shape before it is trusted.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"contract-analyzer-backend/models"

	"github.com/go-playground/validator/v10"
)

// SchemaViolation reports the first field that failed the analysis schema
type SchemaViolation struct {
	Field      string
	Constraint string
	// Others counts further violations found in the same payload
	Others int
}

func (e *SchemaViolation) Error() string {
	if e.Field == "" {
		return "schema violation: " + e.Constraint
	}
	msg := fmt.Sprintf("%s %s", e.Field, e.Constraint)
	if e.Others > 0 {
		msg += fmt.Sprintf(" (and %d more)", e.Others)
	}
	return msg
}

// The wire types mirror models.ContractAnalysis with pointer fields so that a
// missing key can be told apart from a zero value.
type wireAnalysis struct {
	Summary             *string                 `json:"summary" validate:"required"`
	ContractType        *string                 `json:"contractType" validate:"required"`
	ComplianceScore     *float64                `json:"complianceScore" validate:"required,gte=0,lte=100"`
	KeyTerms            *wireKeyTerms           `json:"keyTerms" validate:"required"`
	Clauses             []*wireClause           `json:"clauses" validate:"required,dive,required"`
	Obligations         []*wireObligation       `json:"obligations" validate:"required,dive,required"`
	Risks               []*wireRisk             `json:"risks" validate:"required,dive,required"`
	Recommendations     []*wireRecommendation   `json:"recommendations" validate:"required,dive,required"`
	NegotiationInsights *wireNegotiationInsight `json:"negotiationInsights" validate:"required"`
}

type wireKeyTerms struct {
	Parties           []*string `json:"parties" validate:"required,dive,required"`
	EffectiveDate     *string   `json:"effectiveDate" validate:"required"`
	ExpirationDate    *string   `json:"expirationDate" validate:"required"`
	PaymentTerms      *string   `json:"paymentTerms" validate:"required"`
	TerminationClause *string   `json:"terminationClause" validate:"required"`
	GoverningLaw      *string   `json:"governingLaw" validate:"required"`
	ContractValue     *string   `json:"contractValue" validate:"required"`
}

type wireClause struct {
	Type             *string   `json:"type" validate:"required"`
	Content          *string   `json:"content" validate:"required"`
	Importance       *string   `json:"importance" validate:"required,oneof=high medium low"`
	Risk             *string   `json:"risk" validate:"required,oneof=high medium low"`
	Suggestions      []*string `json:"suggestions" validate:"required,dive,required"`
	ComplianceIssues []*string `json:"complianceIssues" validate:"required,dive,required"`
}

type wireObligation struct {
	Party      *string `json:"party" validate:"required"`
	Obligation *string `json:"obligation" validate:"required"`
	Deadline   *string `json:"deadline"`
	Status     *string `json:"status" validate:"required,oneof=pending completed overdue"`
}

type wireRisk struct {
	Description *string  `json:"description" validate:"required"`
	Severity    *string  `json:"severity" validate:"required,oneof=high medium low"`
	Mitigation  *string  `json:"mitigation" validate:"required"`
	Probability *float64 `json:"probability" validate:"required,gte=0,lte=1"`
}

type wireRecommendation struct {
	Type        *string `json:"type" validate:"required,oneof=improvement risk-mitigation compliance"`
	Title       *string `json:"title" validate:"required"`
	Description *string `json:"description" validate:"required"`
	Priority    *string `json:"priority" validate:"required,oneof=high medium low"`
}

type wireNegotiationInsight struct {
	Favorability         *float64  `json:"favorability" validate:"required,gte=0,lte=100"`
	KeyNegotiationPoints []*string `json:"keyNegotiationPoints" validate:"required,dive,required"`
	MarketComparison     *string   `json:"marketComparison" validate:"required"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func schemaValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate decodes raw backend output and checks it against the
// ContractAnalysis schema. Unknown keys are ignored; missing keys, enum values
// outside their set and out-of-range numbers are rejected. The returned
// analysis has no id, file name or upload date; callers stamp those.
func Validate(raw []byte) (*models.ContractAnalysis, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, &SchemaViolation{Constraint: "empty payload"}
	}

	var wire wireAnalysis
	raw = dropUndeclaredKeys(raw, reflect.TypeOf(wire))
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, decodeViolation(err)
	}

	if err := schemaValidator().Struct(&wire); err != nil {
		return nil, toViolation(err)
	}

	return wire.toModel(), nil
}

// dropUndeclaredKeys removes object keys that do not exactly match a json tag
// of t. encoding/json folds case when matching keys, so "SUMMARY" would
// otherwise satisfy a required "summary". Input that does not have the shape
// of t is returned unchanged for the decoder to report.
func dropUndeclaredKeys(raw []byte, t reflect.Type) []byte {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			return raw
		}
		fields := make(map[string]reflect.Type, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			fields[strings.SplitN(f.Tag.Get("json"), ",", 2)[0]] = f.Type
		}
		for key, value := range obj {
			ft, ok := fields[key]
			if !ok {
				delete(obj, key)
				continue
			}
			obj[key] = dropUndeclaredKeys(value, ft)
		}
		out, err := json.Marshal(obj)
		if err != nil {
			return raw
		}
		return out

	case reflect.Slice:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil || items == nil {
			return raw
		}
		for i, item := range items {
			items[i] = dropUndeclaredKeys(item, t.Elem())
		}
		out, err := json.Marshal(items)
		if err != nil {
			return raw
		}
		return out
	}

	return raw
}

// ValidateValue checks an already decoded value, such as the map produced by
// unmarshalling into interface{}
func ValidateValue(v interface{}) (*models.ContractAnalysis, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &SchemaViolation{Constraint: "value is not JSON encodable"}
	}
	return Validate(raw)
}

func decodeViolation(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "$"
		}
		return &SchemaViolation{
			Field:      field,
			Constraint: fmt.Sprintf("must be %s, got %s", jsonKind(typeErr.Type), typeErr.Value),
		}
	}
	return &SchemaViolation{Constraint: "malformed JSON: " + err.Error()}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	case reflect.Slice:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.Kind().String()
	}
}

func toViolation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &SchemaViolation{Constraint: err.Error()}
	}

	first := verrs[0]
	return &SchemaViolation{
		Field:      fieldPath(first.Namespace()),
		Constraint: describe(first),
		Others:     len(verrs) - 1,
	}
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("out of range %s, got %v", rangeFor(fe.StructField()), fe.Value())
	default:
		return fmt.Sprintf("failed %s constraint", fe.Tag())
	}
}

func rangeFor(field string) string {
	if field == "Probability" {
		return "[0,1]"
	}
	return "[0,100]"
}

func (w *wireAnalysis) toModel() *models.ContractAnalysis {
	a := &models.ContractAnalysis{
		Summary:         *w.Summary,
		ContractType:    *w.ContractType,
		ComplianceScore: *w.ComplianceScore,
		KeyTerms: models.KeyTerms{
			Parties:           strs(w.KeyTerms.Parties),
			EffectiveDate:     *w.KeyTerms.EffectiveDate,
			ExpirationDate:    *w.KeyTerms.ExpirationDate,
			PaymentTerms:      *w.KeyTerms.PaymentTerms,
			TerminationClause: *w.KeyTerms.TerminationClause,
			GoverningLaw:      *w.KeyTerms.GoverningLaw,
			ContractValue:     *w.KeyTerms.ContractValue,
		},
		Clauses:         make([]models.Clause, 0, len(w.Clauses)),
		Obligations:     make([]models.Obligation, 0, len(w.Obligations)),
		Risks:           make([]models.Risk, 0, len(w.Risks)),
		Recommendations: make([]models.Recommendation, 0, len(w.Recommendations)),
		NegotiationInsights: models.NegotiationInsights{
			Favorability:         *w.NegotiationInsights.Favorability,
			KeyNegotiationPoints: strs(w.NegotiationInsights.KeyNegotiationPoints),
			MarketComparison:     *w.NegotiationInsights.MarketComparison,
		},
	}

	for _, c := range w.Clauses {
		a.Clauses = append(a.Clauses, models.Clause{
			Type:             *c.Type,
			Content:          *c.Content,
			Importance:       models.Level(*c.Importance),
			Risk:             models.Level(*c.Risk),
			Suggestions:      strs(c.Suggestions),
			ComplianceIssues: strs(c.ComplianceIssues),
		})
	}
	for _, o := range w.Obligations {
		a.Obligations = append(a.Obligations, models.Obligation{
			Party:      *o.Party,
			Obligation: *o.Obligation,
			Deadline:   o.Deadline,
			Status:     models.ObligationStatus(*o.Status),
		})
	}
	for _, r := range w.Risks {
		a.Risks = append(a.Risks, models.Risk{
			Description: *r.Description,
			Severity:    models.Level(*r.Severity),
			Mitigation:  *r.Mitigation,
			Probability: *r.Probability,
		})
	}
	for _, r := range w.Recommendations {
		a.Recommendations = append(a.Recommendations, models.Recommendation{
			Type:        models.RecommendationType(*r.Type),
			Title:       *r.Title,
			Description: *r.Description,
			Priority:    models.Level(*r.Priority),
		})
	}

	return a
}

func strs(in []*string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, *s)
	}
	return out
}
