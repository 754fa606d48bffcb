package appraisal

import (
	"github.com/iwvelando/project-appraisal/pkg/mathutil"
)

// NetPresentValue discounts every flow at rate, flow i falling at year i.
func NetPresentValue(rate float64, flows []float64) float64 {
	total := 0.0
	for year, flow := range flows {
		total += discount(flow, rate, year)
	}
	return total
}

// PaybackPeriod returns the fractional year in which cumulative undiscounted
// cash flow turns non-negative.
func PaybackPeriod(rows []CashFlowRow) Payback {
	flows := NetCashFlows(rows)
	return payback(flows, cumulativeSum(flows))
}

// DiscountedPaybackPeriod is PaybackPeriod over the discounted columns.
func DiscountedPaybackPeriod(rows []CashFlowRow) Payback {
	cumulative := make([]float64, len(rows))
	for i, row := range rows {
		cumulative[i] = row.CumulativeDiscountedFlow
	}
	return payback(DiscountedCashFlows(rows), cumulative)
}

// payback finds the last year k whose cumulative value is still negative and
// interpolates linearly inside year k+1.
func payback(flows, cumulative []float64) Payback {
	n := len(cumulative)
	if n == 0 || len(flows) != n {
		return NeverRecovers()
	}

	last := cumulative[n-1]
	if !mathutil.IsFinite(last) || last < 0 {
		return NeverRecovers()
	}

	lastNegative := -1
	for year := n - 1; year >= 0; year-- {
		if cumulative[year] < 0 {
			lastNegative = year
			break
		}
	}
	if lastNegative < 0 {
		return Recovered(0)
	}

	recoveryYear := lastNegative + 1
	if recoveryYear >= n {
		return NeverRecovers()
	}

	recoveryNeeded := -cumulative[lastNegative]
	recoveryFlow := flows[recoveryYear]
	// Written as a negation so NaN also falls through to the sentinel.
	if !(recoveryFlow > 0) {
		return NeverRecovers()
	}

	years := float64(lastNegative) + recoveryNeeded/recoveryFlow
	if !mathutil.IsFinite(years) {
		return NeverRecovers()
	}
	return Recovered(years)
}

func cumulativeSum(flows []float64) []float64 {
	out := make([]float64, len(flows))
	running := 0.0
	for i, flow := range flows {
		running += flow
		out[i] = running
	}
	return out
}

// ComputeMetrics derives NPV, IRR, PP and DPP from a table built for params.
// Each metric is computed on its own; a sentinel in one never affects the others.
func ComputeMetrics(rows []CashFlowRow, params ProjectParameters) Metrics {
	flows := NetCashFlows(rows)
	return Metrics{
		NPV: NetPresentValue(params.DiscountRate, flows),
		IRR: InternalRateOfReturn(flows),
		PP:  PaybackPeriod(rows),
		DPP: DiscountedPaybackPeriod(rows),
	}
}

// Appraise builds the table for params and computes its metrics.
func Appraise(params ProjectParameters) Appraisal {
	rows := BuildCashFlowTable(params)
	return Appraisal{
		Parameters: params,
		Rows:       rows,
		Metrics:    ComputeMetrics(rows, params),
	}
}
