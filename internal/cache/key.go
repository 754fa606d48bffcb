package cache

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/project-appraisal/internal/appraisal"
)

const (
	appraisalPrefix  = "appraisal:"
	extractionPrefix = "extraction:"
)

// Key identifies a parameter set. Every field takes part, so two parameter
// sets share a key only when they would produce the same appraisal.
func Key(params appraisal.ProjectParameters) string {
	return appraisalPrefix + hash(canonical(params))
}

// TextKey identifies an extraction by the exact business-plan text and model.
func TextKey(model, text string) string {
	return extractionPrefix + hash(model+"\x00"+text)
}

func canonical(p appraisal.ProjectParameters) string {
	fields := []string{
		formatFloat(p.InitialInvestment),
		strconv.Itoa(p.LifespanYears),
		formatFloat(p.AnnualRevenue),
		formatFloat(p.AnnualOperatingCost),
		formatFloat(p.DiscountRate),
		formatFloat(p.TaxRate),
		strconv.FormatBool(p.DepreciationAddBack),
	}
	return strings.Join(fields, "|")
}

func formatFloat(v float64) string {
	if v == 0 {
		v = 0 // fold -0 into 0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func hash(s string) string {
	return strconv.FormatUint(xxhash.Sum64String(s), 16)
}
