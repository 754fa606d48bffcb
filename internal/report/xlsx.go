package report

import (
	"fmt"
	"io"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
	"github.com/xuri/excelize/v2"
)

const (
	cashFlowSheet = "Cash Flow"
	metricsSheet  = "Metrics"
)

// XLSX writes a workbook with the cash-flow table on one sheet and the metrics
// on another. Sentinel metrics carry their label and an empty value cell.
func XLSX(w io.Writer, a appraisal.Appraisal, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), cashFlowSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(metricsSheet); err != nil {
		return fmt.Errorf("create metrics sheet: %w", err)
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return fmt.Errorf("create number style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeCashFlowSheet(f, a, opts, amountStyle, headerStyle); err != nil {
		return err
	}
	if err := writeMetricsSheet(f, a, opts, amountStyle, headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeCashFlowSheet(f *excelize.File, a appraisal.Appraisal, opts Options, amountStyle, headerStyle int) error {
	withDep := a.Parameters.DepreciationAddBack
	header := headersFor(opts.Locale).row(withDep)

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(cashFlowSheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(cashFlowSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, row := range a.Rows {
		record := []interface{}{row.Year}
		for _, v := range values(row, withDep) {
			record = append(record, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(cashFlowSheet, cell, &record); err != nil {
			return fmt.Errorf("write year %d: %w", row.Year, err)
		}
	}

	if len(a.Rows) > 0 {
		end := fmt.Sprintf("%s%d", lastCol, len(a.Rows)+1)
		if err := f.SetCellStyle(cashFlowSheet, "B2", end, amountStyle); err != nil {
			return err
		}
	}
	return f.SetColWidth(cashFlowSheet, "A", lastCol, 22)
}

func writeMetricsSheet(f *excelize.File, a appraisal.Appraisal, opts Options, amountStyle, headerStyle int) error {
	h := headersFor(opts.Locale)
	text := FormatMetrics(a, opts)
	m := a.Metrics

	irrValue, irrOK := m.IRR.Value()
	ppValue, ppOK := m.PP.Value()
	dppValue, dppOK := m.DPP.Value()

	rows := [][]interface{}{
		{h.Metric, h.Value, "Display"},
		{"NPV", m.NPV, text.NPV},
		{"IRR", optional(irrValue, irrOK), text.IRR},
		{"PP", optional(ppValue, ppOK), text.PP},
		{"DPP", optional(dppValue, dppOK), text.DPP},
		{"Decision", nil, text.Decision},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		record := row
		if err := f.SetSheetRow(metricsSheet, cell, &record); err != nil {
			return fmt.Errorf("write metric row %d: %w", i, err)
		}
	}

	if err := f.SetCellStyle(metricsSheet, "A1", "C1", headerStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(metricsSheet, "B2", "B2", amountStyle); err != nil {
		return err
	}
	return f.SetColWidth(metricsSheet, "A", "C", 28)
}

func optional(v float64, ok bool) interface{} {
	if !ok {
		return nil
	}
	return v
}
