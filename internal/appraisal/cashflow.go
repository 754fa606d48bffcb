// Package appraisal builds the year-by-year cash-flow table of a project and
// derives the capital-budgeting metrics (NPV, IRR, PP and DPP) from it.
//
// Everything in this package is pure: no I/O, no shared state. Rates are
// fractions (0.12 for 12%); percent conversion belongs to the callers.
package appraisal

import "math"

// ProjectParameters are the validated inputs of an appraisal.
type ProjectParameters struct {
	InitialInvestment   float64 `json:"initialInvestment"`
	LifespanYears       int     `json:"lifespanYears"`
	AnnualRevenue       float64 `json:"annualRevenue"`
	AnnualOperatingCost float64 `json:"annualOperatingCost"`
	DiscountRate        float64 `json:"discountRate"`
	TaxRate             float64 `json:"taxRate"`

	// DepreciationAddBack selects the variant that deducts straight-line
	// depreciation before tax and adds it back into the net cash flow.
	DepreciationAddBack bool `json:"depreciationAddBack,omitempty"`
}

// CashFlowRow holds every line item of one year of the table.
type CashFlowRow struct {
	Year                     int     `json:"year"`
	Revenue                  float64 `json:"revenue"`
	OperatingCost            float64 `json:"operatingCost"`
	Depreciation             float64 `json:"depreciation"`
	ProfitBeforeTax          float64 `json:"profitBeforeTax"`
	Tax                      float64 `json:"tax"`
	ProfitAfterTax           float64 `json:"profitAfterTax"`
	NetCashFlow              float64 `json:"netCashFlow"`
	DiscountedCashFlow       float64 `json:"discountedCashFlow"`
	CumulativeDiscountedFlow float64 `json:"cumulativeDiscountedCashFlow"`
}

// AnnualDepreciation returns the straight-line depreciation charged in each
// operating year, or zero when the variant is off.
func (p ProjectParameters) AnnualDepreciation() float64 {
	if !p.DepreciationAddBack || p.LifespanYears <= 0 {
		return 0
	}
	return p.InitialInvestment / float64(p.LifespanYears)
}

// BuildCashFlowTable returns LifespanYears+1 rows, year 0 first.
func BuildCashFlowTable(params ProjectParameters) []CashFlowRow {
	years := params.LifespanYears
	if years < 0 {
		years = 0
	}

	rows := make([]CashFlowRow, 0, years+1)
	rows = append(rows, CashFlowRow{
		Year:        0,
		NetCashFlow: -params.InitialInvestment,
	})

	depreciation := params.AnnualDepreciation()
	for year := 1; year <= years; year++ {
		profit := params.AnnualRevenue - params.AnnualOperatingCost - depreciation

		tax := 0.0
		if profit > 0 {
			tax = profit * params.TaxRate
		}
		afterTax := profit - tax

		rows = append(rows, CashFlowRow{
			Year:            year,
			Revenue:         params.AnnualRevenue,
			OperatingCost:   params.AnnualOperatingCost,
			Depreciation:    depreciation,
			ProfitBeforeTax: profit,
			Tax:             tax,
			ProfitAfterTax:  afterTax,
			NetCashFlow:     afterTax + depreciation,
		})
	}

	cumulative := 0.0
	for i := range rows {
		rows[i].DiscountedCashFlow = discount(rows[i].NetCashFlow, params.DiscountRate, rows[i].Year)
		cumulative += rows[i].DiscountedCashFlow
		rows[i].CumulativeDiscountedFlow = cumulative
	}

	return rows
}

// discount brings a year-end cash flow back to year 0. NPV and the table both
// go through here so the final cumulative value and NPV agree bit for bit.
func discount(cashFlow, rate float64, year int) float64 {
	return cashFlow / math.Pow(1+rate, float64(year))
}

// NetCashFlows extracts the NCF column.
func NetCashFlows(rows []CashFlowRow) []float64 {
	flows := make([]float64, len(rows))
	for i, row := range rows {
		flows[i] = row.NetCashFlow
	}
	return flows
}

// DiscountedCashFlows extracts the discounted cash-flow column.
func DiscountedCashFlows(rows []CashFlowRow) []float64 {
	flows := make([]float64, len(rows))
	for i, row := range rows {
		flows[i] = row.DiscountedCashFlow
	}
	return flows
}
