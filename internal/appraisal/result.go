package appraisal

import (
	"encoding/json"
	"fmt"

	"github.com/iwvelando/project-appraisal/pkg/mathutil"
)

// IRRStatus tags an IRR result.
type IRRStatus int

const (
	// IRRComputed means Rate holds a real root of the NPV function.
	IRRComputed IRRStatus = iota
	// IRRUncomputable means no real root exists or the solver failed.
	IRRUncomputable
)

// IRR is the internal rate of return, or the uncomputable sentinel.
type IRR struct {
	Status IRRStatus
	Rate   float64 // fraction, only meaningful when Status == IRRComputed
}

// ComputedIRR wraps a solved rate.
func ComputedIRR(rate float64) IRR {
	return IRR{Status: IRRComputed, Rate: rate}
}

// UncomputableIRR is the sentinel for a missing root.
func UncomputableIRR() IRR {
	return IRR{Status: IRRUncomputable}
}

// Value returns the rate as a fraction and whether it was computed.
func (i IRR) Value() (float64, bool) {
	return i.Rate, i.Status == IRRComputed
}

// Percent returns the rate in percent and whether it was computed.
func (i IRR) Percent() (float64, bool) {
	return mathutil.FractionToPercent(i.Rate), i.Status == IRRComputed
}

// PaybackStatus tags a PP or DPP result.
type PaybackStatus int

const (
	// PaybackRecovered means Years holds the fractional payback time.
	PaybackRecovered PaybackStatus = iota
	// PaybackNeverRecovers means the investment is not recovered within the lifespan.
	PaybackNeverRecovers
)

// Payback is a payback period in years, or the never-recovers sentinel.
type Payback struct {
	Status PaybackStatus
	Years  float64
}

// Recovered wraps a payback time.
func Recovered(years float64) Payback {
	return Payback{Status: PaybackRecovered, Years: years}
}

// NeverRecovers is the sentinel for a project that does not pay back.
func NeverRecovers() Payback {
	return Payback{Status: PaybackNeverRecovers}
}

// Value returns the payback time and whether the project recovers.
func (p Payback) Value() (float64, bool) {
	return p.Years, p.Status == PaybackRecovered
}

// Metrics groups the four appraisal results.
type Metrics struct {
	NPV float64 `json:"npv"`
	IRR IRR     `json:"irr"`
	PP  Payback `json:"pp"`
	DPP Payback `json:"dpp"`
}

// Appraisal is the full output for one parameter set.
type Appraisal struct {
	Parameters ProjectParameters `json:"parameters"`
	Rows       []CashFlowRow     `json:"rows"`
	Metrics    Metrics           `json:"metrics"`
}

const (
	statusComputed      = "computed"
	statusUncomputable  = "uncomputable"
	statusRecovered     = "recovered"
	statusNeverRecovers = "never_recovers"
)

type taggedValue struct {
	Status string   `json:"status"`
	Value  *float64 `json:"value,omitempty"`
}

// MarshalJSON encodes {"status":"computed","value":0.14} or {"status":"uncomputable"}.
func (i IRR) MarshalJSON() ([]byte, error) {
	if i.Status == IRRComputed {
		rate := i.Rate
		return json.Marshal(taggedValue{Status: statusComputed, Value: &rate})
	}
	return json.Marshal(taggedValue{Status: statusUncomputable})
}

// UnmarshalJSON decodes the tagged form written by MarshalJSON.
func (i *IRR) UnmarshalJSON(data []byte) error {
	var tv taggedValue
	if err := json.Unmarshal(data, &tv); err != nil {
		return err
	}
	switch tv.Status {
	case statusComputed:
		if tv.Value == nil {
			return fmt.Errorf("irr: computed status without value")
		}
		*i = ComputedIRR(*tv.Value)
	case statusUncomputable:
		*i = UncomputableIRR()
	default:
		return fmt.Errorf("irr: unknown status %q", tv.Status)
	}
	return nil
}

// MarshalJSON encodes {"status":"recovered","value":4.17} or {"status":"never_recovers"}.
func (p Payback) MarshalJSON() ([]byte, error) {
	if p.Status == PaybackRecovered {
		years := p.Years
		return json.Marshal(taggedValue{Status: statusRecovered, Value: &years})
	}
	return json.Marshal(taggedValue{Status: statusNeverRecovers})
}

// UnmarshalJSON decodes the tagged form written by MarshalJSON.
func (p *Payback) UnmarshalJSON(data []byte) error {
	var tv taggedValue
	if err := json.Unmarshal(data, &tv); err != nil {
		return err
	}
	switch tv.Status {
	case statusRecovered:
		if tv.Value == nil {
			return fmt.Errorf("payback: recovered status without value")
		}
		*p = Recovered(*tv.Value)
	case statusNeverRecovers:
		*p = NeverRecovers()
	default:
		return fmt.Errorf("payback: unknown status %q", tv.Status)
	}
	return nil
}
