package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/iwvelando/project-appraisal/internal/project"
)

// requiredFields are the keys an extraction must carry, in prompt order.
var requiredFields = []string{
	"initial_investment",
	"lifespan_years",
	"annual_revenue",
	"annual_operating_cost",
	"wacc",
	"tax_rate",
}

// fieldAliases maps the Vietnamese keys some models answer with.
var fieldAliases = map[string]string{
	"von_dau_tu":     "initial_investment",
	"dong_doi_du_an": "lifespan_years",
	"doanh_thu_nam":  "annual_revenue",
	"chi_phi_nam":    "annual_operating_cost",
	"thue_suat":      "tax_rate",
}

// ParseExtraction turns a model response into a validated, sanitized project.
// Markdown fences are stripped and malformed JSON is repaired before decoding.
func ParseExtraction(response string) (project.Input, error) {
	fields, err := decodeObject(stripFences(response))
	if err != nil {
		return project.Input{}, err
	}

	normalized := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		key = strings.ToLower(strings.TrimSpace(key))
		if canonical, ok := fieldAliases[key]; ok {
			key = canonical
		}
		normalized[key] = value
	}

	var missing []string
	for _, name := range requiredFields {
		if _, ok := normalized[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return project.Input{}, &MissingFieldsError{Fields: missing}
	}

	numbers := make(map[string]float64, len(requiredFields))
	for _, name := range requiredFields {
		n, err := toNumber(normalized[name])
		if err != nil {
			return project.Input{}, fmt.Errorf("%w: field %s: %v", ErrInvalidValue, name, err)
		}
		numbers[name] = n
	}

	lifespan := numbers["lifespan_years"]
	if lifespan != math.Trunc(lifespan) {
		return project.Input{}, fmt.Errorf("%w: field lifespan_years: %v is not a whole number of years", ErrInvalidValue, lifespan)
	}

	in := project.Input{
		InitialInvestment:   numbers["initial_investment"],
		LifespanYears:       int(lifespan),
		AnnualRevenue:       numbers["annual_revenue"],
		AnnualOperatingCost: numbers["annual_operating_cost"],
		WACC:                numbers["wacc"],
		TaxRate:             numbers["tax_rate"],
	}
	if err := project.Validate(in); err != nil {
		return project.Input{}, err
	}
	return project.Sanitize(in), nil
}

func stripFences(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```JSON", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// decodeObject tries strict JSON, then json-repair, then Hjson.
func decodeObject(text string) (map[string]interface{}, error) {
	var obj map[string]interface{}
	err := json.Unmarshal([]byte(text), &obj)
	if err == nil && obj != nil {
		return obj, nil
	}
	strictErr := err
	if strictErr == nil {
		strictErr = fmt.Errorf("top-level value is not an object")
	}

	if repaired, rerr := jsonrepair.RepairJSON(text); rerr == nil {
		obj = nil
		if err := json.Unmarshal([]byte(repaired), &obj); err == nil && obj != nil {
			return obj, nil
		}
	}

	obj = nil
	if err := hjson.Unmarshal([]byte(text), &obj); err == nil && obj != nil {
		return obj, nil
	}

	return nil, &MalformedResponseError{Response: text, Err: strictErr}
}

// toNumber accepts JSON numbers and numeric strings such as "5,000,000" or "12.5%".
func toNumber(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		cleaned := strings.TrimSpace(v)
		cleaned = strings.TrimSuffix(cleaned, "%")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		cleaned = strings.ReplaceAll(cleaned, " ", "")
		if cleaned == "" {
			return 0, nil
		}
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected value of type %T", value)
	}
}
