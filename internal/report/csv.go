package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
)

// CSV writes the cash-flow table in comma-separated value format. Amounts keep
// two decimals and no grouping so the output stays machine-readable.
func CSV(w io.Writer, a appraisal.Appraisal) error {
	withDep := a.Parameters.DepreciationAddBack
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader(withDep)); err != nil {
		return err
	}
	for _, row := range a.Rows {
		record := []string{strconv.Itoa(row.Year)}
		for _, v := range values(row, withDep) {
			record = append(record, strconv.FormatFloat(v, 'f', 2, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvHeader(withDepreciation bool) []string {
	out := []string{"year", "revenue", "operating_cost"}
	if withDepreciation {
		out = append(out, "depreciation")
	}
	return append(out, "profit_before_tax", "tax", "profit_after_tax",
		"net_cash_flow", "discounted_cash_flow", "cumulative_discounted_cash_flow")
}
