// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
)

// FindRow finds the row for year in rows.
// Returns a pointer to the row if found, nil otherwise.
func FindRow(rows []appraisal.CashFlowRow, year int) *appraisal.CashFlowRow {
	for i := range rows {
		if rows[i].Year == year {
			return &rows[i]
		}
	}
	return nil
}

// Reporter is the subset of testing.TB used by the assertions.
type Reporter interface {
	Helper()
	Errorf(format string, args ...interface{})
}

// AssertClose fails t when got and want differ by more than tolerance.
func AssertClose(t Reporter, label string, got, want, tolerance float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tolerance {
		t.Errorf("%s = %v, expected %v (±%v)", label, got, want, tolerance)
	}
}
