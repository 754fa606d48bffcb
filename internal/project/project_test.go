package project

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
	"github.com/iwvelando/project-appraisal/pkg/constants"
	"github.com/iwvelando/project-appraisal/pkg/validation"
)

func validInput() Input {
	return Input{
		InitialInvestment:   5_000_000_000,
		LifespanYears:       10,
		AnnualRevenue:       2_000_000_000,
		AnnualOperatingCost: 1_200_000_000,
		WACC:                12,
		TaxRate:             20,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Input)
		message string
	}{
		{name: "Valid", modify: func(*Input) {}},
		{name: "Zero investment with revenue", modify: func(in *Input) { in.InitialInvestment = 0 }},
		{name: "Hundred percent rates", modify: func(in *Input) { in.WACC, in.TaxRate = 100, 100 }},
		{name: "Lifespan zero", modify: func(in *Input) { in.LifespanYears = 0 }, message: "lifespan_years must be between 1 and 100"},
		{name: "Lifespan too long", modify: func(in *Input) { in.LifespanYears = 101 }, message: "lifespan_years must be between 1 and 100"},
		{name: "Negative investment", modify: func(in *Input) { in.InitialInvestment = -1 }, message: "initial_investment must be at least 0"},
		{name: "Negative revenue", modify: func(in *Input) { in.AnnualRevenue = -5 }, message: "annual_revenue must be at least 0"},
		{name: "Negative cost", modify: func(in *Input) { in.AnnualOperatingCost = -5 }, message: "annual_operating_cost must be at least 0"},
		{name: "WACC above 100", modify: func(in *Input) { in.WACC = 120 }, message: "wacc must be between 0 and 100"},
		{name: "Negative tax rate", modify: func(in *Input) { in.TaxRate = -1 }, message: "tax_rate must be between 0 and 100"},
		{name: "NaN revenue", modify: func(in *Input) { in.AnnualRevenue = math.NaN() }, message: "annual_revenue"},
		{name: "Infinite investment", modify: func(in *Input) { in.InitialInvestment = math.Inf(1) }, message: "initial_investment must be at most"},
		{
			name:    "Investment above ceiling",
			modify:  func(in *Input) { in.InitialInvestment = 1e308 },
			message: "initial_investment must be at most 1000000000000000",
		},
		{
			name:    "Revenue above ceiling",
			modify:  func(in *Input) { in.AnnualRevenue = 1e16 },
			message: "annual_revenue must be at most 1000000000000000",
		},
		{
			name:    "Cost above ceiling",
			modify:  func(in *Input) { in.AnnualOperatingCost = 1e308 },
			message: "annual_operating_cost must be at most 1000000000000000",
		},
		{
			name:    "Incomplete",
			modify:  func(in *Input) { in.InitialInvestment, in.AnnualRevenue = 0, 0 },
			message: "incomplete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)
			err := Validate(in)

			if tt.message == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.message)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.message)
			}
		})
	}
}

func TestValidateErrorTypes(t *testing.T) {
	err := Validate(Input{LifespanYears: 5, WACC: 10})
	if !errors.Is(err, ErrIncomplete) {
		t.Errorf("expected ErrIncomplete, got %v", err)
	}

	err = Validate(Input{LifespanYears: 0, WACC: 200, InitialInvestment: 1})
	var ferrs validation.FieldErrors
	if !errors.As(err, &ferrs) {
		t.Fatalf("expected FieldErrors, got %T", err)
	}
	fields := strings.Join(ferrs.Fields(), ",")
	if fields != "lifespan_years,wacc" {
		t.Errorf("failing fields = %s, expected lifespan_years,wacc", fields)
	}

	if _, err := Prepare(Input{}); err == nil || !strings.HasPrefix(err.Error(), "invalid project: ") {
		t.Errorf("Prepare should reject an empty input with a wrapped error, got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	in := Input{
		InitialInvestment:   -100,
		LifespanYears:       0,
		AnnualRevenue:       -1,
		AnnualOperatingCost: -2,
		WACC:                150,
		TaxRate:             -10,
		DepreciationAddBack: true,
	}
	got := Sanitize(in)
	expected := Input{LifespanYears: 1, WACC: 100, DepreciationAddBack: true}
	if got != expected {
		t.Errorf("Sanitize = %+v, expected %+v", got, expected)
	}

	if in.InitialInvestment != -100 {
		t.Error("Sanitize must not modify its argument")
	}

	valid := validInput()
	if Sanitize(valid) != valid {
		t.Error("Sanitize should leave a valid input untouched")
	}
}

func TestAmountCeilingKeepsMetricsFinite(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		valid bool
	}{
		{
			name:  "Huge amounts at zero WACC",
			input: Input{InitialInvestment: 1e308, LifespanYears: 10, AnnualRevenue: 1e308},
		},
		{
			name: "Ceiling amounts over the longest lifespan",
			input: Input{
				InitialInvestment: constants.MaxAmount,
				LifespanYears:     constants.MaxLifespanYears,
				AnnualRevenue:     constants.MaxAmount,
			},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if !tt.valid {
				var ferrs validation.FieldErrors
				if !errors.As(err, &ferrs) {
					t.Fatalf("expected FieldErrors, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			m := appraisal.Appraise(tt.input.Parameters()).Metrics
			if math.IsInf(m.NPV, 0) || math.IsNaN(m.NPV) {
				t.Errorf("NPV = %v, expected a finite value", m.NPV)
			}
			if _, ok := m.PP.Value(); !ok {
				t.Error("expected the investment to be recovered")
			}
		})
	}
}

func TestSanitizeClampsHugeAmounts(t *testing.T) {
	got := Sanitize(Input{InitialInvestment: 1e308, AnnualRevenue: math.Inf(1), AnnualOperatingCost: 2e15, LifespanYears: 3})
	for name, v := range map[string]float64{
		"initial_investment":    got.InitialInvestment,
		"annual_revenue":        got.AnnualRevenue,
		"annual_operating_cost": got.AnnualOperatingCost,
	} {
		if v != constants.MaxAmount {
			t.Errorf("%s = %v, expected %v", name, v, constants.MaxAmount)
		}
	}
	if err := Validate(got); err != nil {
		t.Errorf("sanitized input should validate: %v", err)
	}
}

func TestParametersRoundTrip(t *testing.T) {
	in := validInput()
	in.DepreciationAddBack = true
	params := in.Parameters()

	if params.DiscountRate != 0.12 || params.TaxRate != 0.2 {
		t.Errorf("rates = %v/%v, expected 0.12/0.2", params.DiscountRate, params.TaxRate)
	}
	if params.LifespanYears != 10 || params.InitialInvestment != 5_000_000_000 || !params.DepreciationAddBack {
		t.Errorf("unexpected parameters %+v", params)
	}

	back := FromParameters(params)
	if math.Abs(back.WACC-in.WACC) > 1e-9 || math.Abs(back.TaxRate-in.TaxRate) > 1e-9 {
		t.Errorf("round trip rates = %v/%v", back.WACC, back.TaxRate)
	}
}

func TestSamples(t *testing.T) {
	all := Samples()
	if len(all) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(all))
	}
	for _, s := range all {
		if err := Validate(s.Input); err != nil {
			t.Errorf("sample %s is invalid: %v", s.Key, err)
		}
	}

	all[0].Input.LifespanYears = 99
	if Samples()[0].Input.LifespanYears != 10 {
		t.Error("Samples must return a copy")
	}

	retail, err := SampleByKey("retail-store")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retail.Input.InitialInvestment != 500_000_000 || retail.Input.WACC != 15 {
		t.Errorf("unexpected retail sample %+v", retail.Input)
	}

	if _, err := SampleByKey("shipyard"); err == nil {
		t.Error("expected error for an unknown sample")
	}

	keys := strings.Join(SampleKeys(), ",")
	if keys != "manufacturing-plant,real-estate,retail-store,tech-startup" {
		t.Errorf("SampleKeys = %s", keys)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected Input
	}{
		{
			name: "Top level",
			content: `initial_investment: 500000000
lifespan_years: 7
annual_revenue: 350000000
annual_operating_cost: 200000000
wacc: 15
tax_rate: 20
`,
			expected: Input{500_000_000, 7, 350_000_000, 200_000_000, 15, 20, false},
		},
		{
			name: "Under project key",
			content: `project:
  initial_investment: 2000000000
  lifespan_years: 5
  annual_revenue: 1500000000
  annual_operating_cost: 900000000
  wacc: 18
  tax_rate: 20
  depreciation_add_back: true
`,
			expected: Input{2_000_000_000, 5, 1_500_000_000, 900_000_000, 18, 20, true},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "project"+string(rune('a'+i))+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write project file: %v", err)
			}

			got, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile returned error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("LoadFile = %+v, expected %+v", got, tt.expected)
			}
		})
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}
