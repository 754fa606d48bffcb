package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Pretty writes a human-readable rather than machine-readable table followed
// by the metrics.
func Pretty(w io.Writer, a appraisal.Appraisal, opts Options) error {
	p := message.NewPrinter(printerTag(opts.Locale))
	h := headersFor(opts.Locale)
	withDep := a.Parameters.DepreciationAddBack
	amount := fmt.Sprintf("%%.%df", opts.Decimals)

	if _, err := fmt.Fprintf(w, "--- Cash flow (%s) ---\n", opts.Currency); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := h.row(withDep)
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	fmt.Fprintln(tw, strings.Join(underline(header), "\t")+"\t")
	for _, row := range a.Rows {
		cells := []string{p.Sprintf("%d", row.Year)}
		for _, v := range values(row, withDep) {
			cells = append(cells, p.Sprintf(amount, v))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	text := FormatMetrics(a, opts)
	_, err := fmt.Fprintf(w, "\n--- %s ---\nNPV | %s\nIRR | %s\nPP  | %s\nDPP | %s\n%s\n",
		h.Metric, text.NPV, text.IRR, text.PP, text.DPP, text.Decision)
	return err
}

func underline(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.Repeat("_", len([]rune(h)))
	}
	return out
}

func printerTag(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}
