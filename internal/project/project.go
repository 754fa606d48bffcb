// Package project holds the user-facing description of a project: the figures
// a business plan states, with rates in percent. It validates and cleans that
// input and converts it into the parameters the appraisal engine uses.
package project

import (
	"errors"
	"fmt"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
	"github.com/iwvelando/project-appraisal/pkg/constants"
	"github.com/iwvelando/project-appraisal/pkg/mathutil"
	"github.com/iwvelando/project-appraisal/pkg/validation"
)

// ErrIncomplete is returned when both the investment and the revenue are zero.
var ErrIncomplete = errors.New("project data is incomplete: initial_investment and annual_revenue are both 0")

// Input is a project as entered or extracted. WACC and TaxRate are percents.
type Input struct {
	InitialInvestment   float64 `json:"initial_investment" yaml:"initial_investment" mapstructure:"initial_investment" validate:"gte=0,lte=1e15"`
	LifespanYears       int     `json:"lifespan_years" yaml:"lifespan_years" mapstructure:"lifespan_years" validate:"between=1:100"`
	AnnualRevenue       float64 `json:"annual_revenue" yaml:"annual_revenue" mapstructure:"annual_revenue" validate:"gte=0,lte=1e15"`
	AnnualOperatingCost float64 `json:"annual_operating_cost" yaml:"annual_operating_cost" mapstructure:"annual_operating_cost" validate:"gte=0,lte=1e15"`
	WACC                float64 `json:"wacc" yaml:"wacc" mapstructure:"wacc" validate:"between=0:100"`
	TaxRate             float64 `json:"tax_rate" yaml:"tax_rate" mapstructure:"tax_rate" validate:"between=0:100"`
	DepreciationAddBack bool    `json:"depreciation_add_back,omitempty" yaml:"depreciation_add_back,omitempty" mapstructure:"depreciation_add_back"`
}

// Validate reports every rule the input violates. Field rule failures come
// back as validation.FieldErrors; the completeness rule as ErrIncomplete.
func Validate(in Input) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.InitialInvestment == 0 && in.AnnualRevenue == 0 {
		return ErrIncomplete
	}
	if !finite(in) {
		return fmt.Errorf("project data contains a non-finite number")
	}
	return nil
}

func finite(in Input) bool {
	for _, v := range []float64{in.InitialInvestment, in.AnnualRevenue, in.AnnualOperatingCost, in.WACC, in.TaxRate} {
		if !mathutil.IsFinite(v) {
			return false
		}
	}
	return true
}

// Sanitize clamps every field into its legal range: amounts to 0..MaxAmount, the
// lifespan to >= 1 and both rates into 0..100.
func Sanitize(in Input) Input {
	out := in
	out.InitialInvestment = amount(in.InitialInvestment)
	out.AnnualRevenue = amount(in.AnnualRevenue)
	out.AnnualOperatingCost = amount(in.AnnualOperatingCost)
	if out.LifespanYears < constants.MinLifespanYears {
		out.LifespanYears = constants.MinLifespanYears
	}
	out.WACC = mathutil.Clamp(in.WACC, 0, constants.MaxPercentage)
	out.TaxRate = mathutil.Clamp(in.TaxRate, 0, constants.MaxPercentage)
	return out
}

func amount(v float64) float64 {
	return mathutil.Clamp(v, 0, constants.MaxAmount)
}

// Parameters converts the percent rates into fractions.
func (in Input) Parameters() appraisal.ProjectParameters {
	return appraisal.ProjectParameters{
		InitialInvestment:   in.InitialInvestment,
		LifespanYears:       in.LifespanYears,
		AnnualRevenue:       in.AnnualRevenue,
		AnnualOperatingCost: in.AnnualOperatingCost,
		DiscountRate:        mathutil.PercentToFraction(in.WACC),
		TaxRate:             mathutil.PercentToFraction(in.TaxRate),
		DepreciationAddBack: in.DepreciationAddBack,
	}
}

// FromParameters is the inverse of Input.Parameters, used for display.
func FromParameters(p appraisal.ProjectParameters) Input {
	return Input{
		InitialInvestment:   p.InitialInvestment,
		LifespanYears:       p.LifespanYears,
		AnnualRevenue:       p.AnnualRevenue,
		AnnualOperatingCost: p.AnnualOperatingCost,
		WACC:                mathutil.FractionToPercent(p.DiscountRate),
		TaxRate:             mathutil.FractionToPercent(p.TaxRate),
		DepreciationAddBack: p.DepreciationAddBack,
	}
}

// Prepare validates in and returns its engine parameters.
func Prepare(in Input) (appraisal.ProjectParameters, error) {
	if err := Validate(in); err != nil {
		return appraisal.ProjectParameters{}, fmt.Errorf("invalid project: %w", err)
	}
	return in.Parameters(), nil
}
