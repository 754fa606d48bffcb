package report

import (
	"encoding/json"
	"io"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
)

// Document is the JSON form of an appraisal: the raw tagged metrics plus their
// display text.
type Document struct {
	appraisal.Appraisal
	Display MetricsText `json:"display"`
}

// NewDocument pairs a with its display text.
func NewDocument(a appraisal.Appraisal, opts Options) Document {
	return Document{Appraisal: a, Display: FormatMetrics(a, opts)}
}

// JSON writes the indented document.
func JSON(w io.Writer, a appraisal.Appraisal, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(a, opts))
}
