// Package report renders an appraisal as text, CSV, JSON or an XLSX workbook.
package report

import (
	"strings"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
	"github.com/iwvelando/project-appraisal/pkg/constants"
	"github.com/iwvelando/project-appraisal/pkg/format"
	"github.com/iwvelando/project-appraisal/pkg/mathutil"
)

// Options controls the display of monetary values and labels.
type Options struct {
	Currency string
	Locale   string
	Decimals int32
}

// DefaultOptions returns VND amounts without decimals and English labels.
func DefaultOptions() Options {
	return Options{
		Currency: constants.DefaultCurrency,
		Locale:   constants.DefaultLocale,
	}
}

// MetricsText is the display form of the four metrics. Sentinels are spelled
// out, never left blank.
type MetricsText struct {
	NPV      string `json:"npv"`
	IRR      string `json:"irr"`
	PP       string `json:"pp"`
	DPP      string `json:"dpp"`
	Decision string `json:"decision"`
}

// IRRText renders an IRR as a percentage or the uncomputable label.
func IRRText(irr appraisal.IRR, l format.Labels) string {
	if pct, ok := irr.Percent(); ok {
		return format.Percent(pct)
	}
	return l.Uncomputable
}

// PaybackText renders a payback period in years or the never-recovers label.
func PaybackText(p appraisal.Payback, l format.Labels) string {
	if years, ok := p.Value(); ok {
		return format.Years(years, l)
	}
	return l.NeverRecovers
}

// FormatMetrics renders every metric for display.
func FormatMetrics(a appraisal.Appraisal, opts Options) MetricsText {
	l := format.LabelsFor(opts.Locale)
	m := a.Metrics
	return MetricsText{
		NPV:      Money(m.NPV, opts),
		IRR:      IRRText(m.IRR, l),
		PP:       PaybackText(m.PP, l),
		DPP:      PaybackText(m.DPP, l),
		Decision: decisionText(a, opts.Locale),
	}
}

// decisionText applies the NPV rule and compares IRR against the discount rate.
func decisionText(a appraisal.Appraisal, locale string) string {
	vi := strings.EqualFold(locale, "vi")
	m := a.Metrics

	var verdict string
	switch {
	case m.NPV > 0 && vi:
		verdict = "Dự án khả thi (NPV > 0)"
	case m.NPV > 0:
		verdict = "Accept: NPV is positive"
	case vi:
		verdict = "Dự án không khả thi (NPV <= 0)"
	default:
		verdict = "Reject: NPV is not positive"
	}

	rate, ok := m.IRR.Value()
	if !ok {
		return verdict
	}
	wacc := format.Percent(mathutil.FractionToPercent(a.Parameters.DiscountRate))
	irr := format.Percent(mathutil.FractionToPercent(rate))
	relation := "="
	if rate > a.Parameters.DiscountRate {
		relation = ">"
	} else if rate < a.Parameters.DiscountRate {
		relation = "<"
	}
	return verdict + "; IRR " + irr + " " + relation + " WACC " + wacc
}

// Column headers in table order. Depreciation is only shown for the add-back variant.
type columns struct {
	Year, Revenue, OperatingCost, Depreciation, ProfitBeforeTax, Tax,
	ProfitAfterTax, NetCashFlow, Discounted, Cumulative string
	Metric, Value string
}

var headers = map[string]columns{
	"en": {
		Year:            "Year",
		Revenue:         "Revenue",
		OperatingCost:   "Operating cost",
		Depreciation:    "Depreciation",
		ProfitBeforeTax: "Profit before tax",
		Tax:             "Corporate income tax",
		ProfitAfterTax:  "Profit after tax",
		NetCashFlow:     "Net cash flow (NCF)",
		Discounted:      "Discounted cash flow",
		Cumulative:      "Cumulative discounted cash flow",
		Metric:          "Metric",
		Value:           "Value",
	},
	"vi": {
		Year:            "Năm",
		Revenue:         "Doanh thu",
		OperatingCost:   "Chi phí",
		Depreciation:    "Khấu hao",
		ProfitBeforeTax: "Lợi nhuận trước thuế",
		Tax:             "Thuế TNDN",
		ProfitAfterTax:  "Lợi nhuận sau thuế",
		NetCashFlow:     "Dòng tiền thuần (NCF)",
		Discounted:      "Dòng tiền chiết khấu",
		Cumulative:      "Dòng tiền chiết khấu lũy kế",
		Metric:          "Chỉ số",
		Value:           "Giá trị",
	},
}

func headersFor(locale string) columns {
	if h, ok := headers[strings.ToLower(locale)]; ok {
		return h
	}
	return headers["en"]
}

func (c columns) row(withDepreciation bool) []string {
	out := []string{c.Year, c.Revenue, c.OperatingCost}
	if withDepreciation {
		out = append(out, c.Depreciation)
	}
	return append(out, c.ProfitBeforeTax, c.Tax, c.ProfitAfterTax, c.NetCashFlow, c.Discounted, c.Cumulative)
}

// values returns the monetary columns of row in header order, year excluded.
func values(row appraisal.CashFlowRow, withDepreciation bool) []float64 {
	out := []float64{row.Revenue, row.OperatingCost}
	if withDepreciation {
		out = append(out, row.Depreciation)
	}
	return append(out, row.ProfitBeforeTax, row.Tax, row.ProfitAfterTax,
		row.NetCashFlow, row.DiscountedCashFlow, row.CumulativeDiscountedFlow)
}

// Money formats an amount with the configured unit and decimals.
func Money(amount float64, opts Options) string {
	return format.Currency(amount, opts.Currency, opts.Decimals)
}
