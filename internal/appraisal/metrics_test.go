package appraisal

import (
	"encoding/json"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNetPresentValue(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		flows    []float64
		expected float64
	}{
		{"Zero rate sums flows", 0, []float64{-100, 60, 60}, 20},
		{"Single flow at year 0 is undiscounted", 0.5, []float64{-100}, -100},
		{"Ten percent", 0.10, []float64{-100, 110}, 0},
		{"Manufacturing plant at 12%", 0.12, append([]float64{-5e9}, repeat(640e6, 10)...), -1383857261.817047},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NetPresentValue(tt.rate, tt.flows)
			if math.Abs(result-tt.expected) > 1e-3 {
				t.Errorf("NetPresentValue() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestNPVEqualsFinalCumulativeDiscountedFlow(t *testing.T) {
	cases := []ProjectParameters{
		manufacturingPlant(),
		retailStore(),
		{InitialInvestment: 2e9, LifespanYears: 5, AnnualRevenue: 1.5e9, AnnualOperatingCost: 9e8, DiscountRate: 0.18, TaxRate: 0.2},
		{InitialInvestment: 5e10, LifespanYears: 15, AnnualRevenue: 8e9, AnnualOperatingCost: 4.5e9, DiscountRate: 0.105, TaxRate: 0.2, DepreciationAddBack: true},
	}

	for _, params := range cases {
		rows := BuildCashFlowTable(params)
		metrics := ComputeMetrics(rows, params)
		final := rows[len(rows)-1].CumulativeDiscountedFlow
		if metrics.NPV != final {
			t.Errorf("NPV %v != final cumulative discounted flow %v for %+v", metrics.NPV, final, params)
		}
	}
}

func TestWorkedScenarios(t *testing.T) {
	t.Run("Manufacturing plant", func(t *testing.T) {
		m := Appraise(manufacturingPlant()).Metrics

		pp, ok := m.PP.Value()
		if !ok {
			t.Fatalf("expected PP to be recovered, got %+v", m.PP)
		}
		if math.Abs(pp-7.8125) > 1e-9 {
			t.Errorf("PP = %v, expected 7.8125", pp)
		}

		// 640M a year for ten years does not cover 5B at 12%.
		if m.NPV >= 0 {
			t.Errorf("NPV = %v, expected negative at 12%%", m.NPV)
		}
		if m.DPP.Status != PaybackNeverRecovers {
			t.Errorf("DPP = %+v, expected never recovers when NPV is negative", m.DPP)
		}

		rate, ok := m.IRR.Value()
		if !ok {
			t.Fatalf("expected IRR to be computed")
		}
		if math.Abs(rate-0.0476007775) > 1e-6 {
			t.Errorf("IRR = %v, expected about 0.0476", rate)
		}
	})

	t.Run("Retail store", func(t *testing.T) {
		m := Appraise(retailStore()).Metrics

		pp, ok := m.PP.Value()
		if !ok {
			t.Fatalf("expected PP to be recovered, got %+v", m.PP)
		}
		if math.Abs(pp-(4+20.0/120.0)) > 1e-9 {
			t.Errorf("PP = %v, expected about 4.17", pp)
		}

		rate, ok := m.IRR.Value()
		if !ok || math.Abs(rate-0.1495000774) > 1e-6 {
			t.Errorf("IRR = %v (%v), expected about 0.1495", rate, ok)
		}
	})

	t.Run("Depreciation add-back shortens payback", func(t *testing.T) {
		params := manufacturingPlant()
		params.DepreciationAddBack = true
		m := Appraise(params).Metrics

		pp, ok := m.PP.Value()
		if !ok {
			t.Fatalf("expected PP to be recovered")
		}
		// 5B / 740M: six full years leave 560M, recovered 560/740 into year 7.
		if math.Abs(pp-(6+560.0/740.0)) > 1e-9 {
			t.Errorf("PP = %v, expected %v", pp, 6+560.0/740.0)
		}
	})
}

func TestDegenerateScenario(t *testing.T) {
	params := ProjectParameters{
		InitialInvestment:   1_000_000,
		LifespanYears:       8,
		AnnualRevenue:       200_000,
		AnnualOperatingCost: 350_000,
		DiscountRate:        0.1,
		TaxRate:             0.2,
	}
	m := Appraise(params).Metrics

	if m.PP.Status != PaybackNeverRecovers {
		t.Errorf("PP = %+v, expected never recovers", m.PP)
	}
	if m.DPP.Status != PaybackNeverRecovers {
		t.Errorf("DPP = %+v, expected never recovers", m.DPP)
	}
	if m.IRR.Status != IRRUncomputable {
		t.Errorf("IRR = %+v, expected uncomputable", m.IRR)
	}
	if m.NPV >= 0 {
		t.Errorf("NPV = %v, expected negative", m.NPV)
	}
}

func TestInstantPayback(t *testing.T) {
	params := ProjectParameters{
		InitialInvestment:   0,
		LifespanYears:       5,
		AnnualRevenue:       1000,
		AnnualOperatingCost: 400,
		DiscountRate:        0.1,
		TaxRate:             0.2,
	}
	m := Appraise(params).Metrics

	if years, ok := m.PP.Value(); !ok || years != 0 {
		t.Errorf("PP = %+v, expected instant payback", m.PP)
	}
	if years, ok := m.DPP.Value(); !ok || years != 0 {
		t.Errorf("DPP = %+v, expected instant payback", m.DPP)
	}
	// No negative flow, so no rate can zero the NPV.
	if m.IRR.Status != IRRUncomputable {
		t.Errorf("IRR = %+v, expected uncomputable", m.IRR)
	}
}

func TestPaybackEdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		flows      []float64
		cumulative []float64
		expected   Payback
	}{
		{
			name:     "Empty table",
			expected: NeverRecovers(),
		},
		{
			name:       "Mismatched columns",
			flows:      []float64{-1, 2},
			cumulative: []float64{-1},
			expected:   NeverRecovers(),
		},
		{
			name:       "Final cumulative negative",
			flows:      []float64{-100, 30, 30},
			cumulative: []float64{-100, -70, -40},
			expected:   NeverRecovers(),
		},
		{
			name:       "Recovered exactly at year end",
			flows:      []float64{-100, 50, 50},
			cumulative: []float64{-100, -50, 0},
			expected:   Recovered(2),
		},
		{
			name:       "Dips negative again before recovering",
			flows:      []float64{-100, 150, -80, 60},
			cumulative: []float64{-100, 50, -30, 30},
			expected:   Recovered(2 + 30.0/60.0),
		},
		{
			name:       "Zero flow year before recovery",
			flows:      []float64{-100, 0, 100},
			cumulative: []float64{-100, -100, 10},
			expected:   Recovered(1 + 100.0/100.0),
		},
		{
			name:       "Zero recovery flow with inconsistent cumulative",
			flows:      []float64{-100, 0},
			cumulative: []float64{-100, 0},
			expected:   NeverRecovers(),
		},
		{
			name:       "NaN recovery flow",
			flows:      []float64{-100, math.NaN()},
			cumulative: []float64{-100, 5},
			expected:   NeverRecovers(),
		},
		{
			name:       "Infinite cumulative",
			flows:      []float64{-100, 1},
			cumulative: []float64{-100, math.Inf(1)},
			expected:   NeverRecovers(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := payback(tt.flows, tt.cumulative)
			if result.Status != tt.expected.Status {
				t.Fatalf("payback() status = %v, expected %v", result.Status, tt.expected.Status)
			}
			if math.Abs(result.Years-tt.expected.Years) > 1e-12 {
				t.Errorf("payback() years = %v, expected %v", result.Years, tt.expected.Years)
			}
		})
	}
}

func TestPaybackProperties(t *testing.T) {
	for _, rate := range []float64{0.01, 0.05, 0.1, 0.2} {
		for _, lifespan := range []int{1, 3, 7, 20} {
			for _, revenue := range []float64{200, 500, 1500} {
				params := ProjectParameters{
					InitialInvestment:   1000,
					LifespanYears:       lifespan,
					AnnualRevenue:       revenue,
					AnnualOperatingCost: 100,
					DiscountRate:        rate,
					TaxRate:             0.2,
				}
				rows := BuildCashFlowTable(params)
				m := ComputeMetrics(rows, params)

				pp, ppOK := m.PP.Value()
				dpp, dppOK := m.DPP.Value()
				if ppOK && dppOK && dpp < pp {
					t.Errorf("DPP %v < PP %v for %+v", dpp, pp, params)
				}
				if !ppOK && dppOK {
					t.Errorf("DPP recovered while PP did not for %+v", params)
				}

				if ppOK {
					// Recovery completes in the first year k whose cumulative NCF is non-negative.
					cumulative := 0.0
					k := -1
					for _, row := range rows {
						cumulative += row.NetCashFlow
						if cumulative >= 0 {
							k = row.Year
							break
						}
					}
					if pp <= float64(k-1) || pp > float64(k) {
						t.Errorf("PP %v outside (%d, %d] for %+v", pp, k-1, k, params)
					}
				}

				final := 0.0
				for _, row := range rows {
					final += row.NetCashFlow
				}
				if final < 0 && ppOK {
					t.Errorf("PP recovered with negative final cumulative for %+v", params)
				}
				if rows[len(rows)-1].CumulativeDiscountedFlow < 0 && dppOK {
					t.Errorf("DPP recovered with negative final cumulative for %+v", params)
				}
			}
		}
	}
}

func TestDiscountedPaybackPeriod(t *testing.T) {
	params := ProjectParameters{
		InitialInvestment: 1000,
		LifespanYears:     5,
		AnnualRevenue:     300,
		DiscountRate:      0.05,
	}
	rows := BuildCashFlowTable(params)

	pp, _ := PaybackPeriod(rows).Value()
	if math.Abs(pp-(3+100.0/300.0)) > 1e-9 {
		t.Errorf("PP = %v, expected 3.3333", pp)
	}

	dpp, ok := DiscountedPaybackPeriod(rows).Value()
	if !ok {
		t.Fatalf("expected DPP to be recovered")
	}
	expected := 3 + (-rows[3].CumulativeDiscountedFlow)/rows[4].DiscountedCashFlow
	if math.Abs(dpp-expected) > 1e-12 {
		t.Errorf("DPP = %v, expected %v", dpp, expected)
	}
	if math.Abs(dpp-3.741564) > 1e-5 {
		t.Errorf("DPP = %v, expected about 3.7416", dpp)
	}
}

func TestInternalRateOfReturn(t *testing.T) {
	tests := []struct {
		name       string
		flows      []float64
		computable bool
		expected   float64
	}{
		{"Single period", []float64{-100, 110}, true, 0.10},
		{"Annuity", []float64{-1000, 300, 300, 300, 300, 300}, true, 0.1523823712},
		{"Two roots picks the one nearest 10%", []float64{-100, 230, -132}, true, 0.10},
		{"Two roots far from the guess picks the nearer", []float64{-1, 5, -6}, true, 1.0},
		{"Negative rate", []float64{-100, 50, 40}, true, -0.0699265},
		{"All negative", []float64{-100, -10, -10}, false, 0},
		{"All positive", []float64{100, 10}, false, 0},
		{"All zero", []float64{0, 0, 0}, false, 0},
		{"Empty", nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := InternalRateOfReturn(tt.flows)
			rate, ok := result.Value()
			if ok != tt.computable {
				t.Fatalf("InternalRateOfReturn() computable = %v, expected %v", ok, tt.computable)
			}
			if !ok {
				return
			}
			if math.Abs(rate-tt.expected) > 1e-4 {
				t.Errorf("InternalRateOfReturn() = %v, expected %v", rate, tt.expected)
			}
			if npv := NetPresentValue(rate, tt.flows); math.Abs(npv) > 1e-6 {
				t.Errorf("NPV at IRR = %v, expected 0", npv)
			}
		})
	}
}

func TestSignChanges(t *testing.T) {
	tests := []struct {
		name     string
		flows    []float64
		expected int
	}{
		{"Conventional", []float64{-100, 30, 30, 30}, 1},
		{"Two changes", []float64{-1, 5, -6}, 2},
		{"Zeros skipped", []float64{-1, 0, 0, 2, 0, -3}, 2},
		{"None", []float64{1, 2, 3}, 0},
		{"Empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := signChanges(tt.flows); got != tt.expected {
				t.Errorf("signChanges() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestBracketRootsFindsBothRoots(t *testing.T) {
	roots := bracketRoots([]float64{-100, 230, -132})
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %v", roots)
	}
	if math.Abs(roots[0]-0.1) > 1e-9 || math.Abs(roots[1]-0.2) > 1e-9 {
		t.Errorf("roots = %v, expected [0.1 0.2]", roots)
	}
}

func TestMetricsJSON(t *testing.T) {
	m := Metrics{
		NPV: 1500,
		IRR: ComputedIRR(0.125),
		PP:  Recovered(4.5),
		DPP: NeverRecovers(),
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	expected := `{"npv":1500,"irr":{"status":"computed","value":0.125},"pp":{"status":"recovered","value":4.5},"dpp":{"status":"never_recovers"}}`
	if string(data) != expected {
		t.Errorf("json.Marshal() = %s, expected %s", data, expected)
	}

	var decoded Metrics
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded != m {
		t.Errorf("decoded %+v, expected %+v", decoded, m)
	}

	uncomputable, _ := json.Marshal(UncomputableIRR())
	if string(uncomputable) != `{"status":"uncomputable"}` {
		t.Errorf("uncomputable IRR encoded as %s", uncomputable)
	}

	var bad IRR
	if err := json.Unmarshal([]byte(`{"status":"computed"}`), &bad); err == nil {
		t.Errorf("expected error for computed IRR without value")
	}
	var unknown Payback
	if err := json.Unmarshal([]byte(`{"status":"soon"}`), &unknown); err == nil {
		t.Errorf("expected error for unknown payback status")
	}
}

func TestIRRPercent(t *testing.T) {
	percent, ok := ComputedIRR(0.1495).Percent()
	if !ok || math.Abs(percent-14.95) > 1e-9 {
		t.Errorf("Percent() = %v (%v), expected 14.95", percent, ok)
	}
	if _, ok := UncomputableIRR().Percent(); ok {
		t.Errorf("expected uncomputable IRR to report not ok")
	}
}

func TestComputeMetricsEmptyRows(t *testing.T) {
	m := ComputeMetrics(nil, ProjectParameters{DiscountRate: 0.1})
	if m.NPV != 0 {
		t.Errorf("NPV = %v, expected 0", m.NPV)
	}
	if m.IRR.Status != IRRUncomputable || m.PP.Status != PaybackNeverRecovers || m.DPP.Status != PaybackNeverRecovers {
		t.Errorf("expected sentinels for empty rows, got %+v", m)
	}
}

func TestEngineLogsSentinels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	engine := NewEngine(zap.New(core))

	engine.Appraise(ProjectParameters{
		InitialInvestment:   100,
		LifespanYears:       2,
		AnnualRevenue:       10,
		AnnualOperatingCost: 20,
	})

	if n := logs.FilterMessage("irr has no real root for this cash flow").Len(); n != 1 {
		t.Errorf("expected 1 irr log entry, got %d", n)
	}
	if n := logs.FilterMessage("investment not recovered within lifespan").Len(); n != 2 {
		t.Errorf("expected 2 payback log entries, got %d", n)
	}
	if n := logs.FilterMessage("appraisal computed").Len(); n != 1 {
		t.Errorf("expected 1 summary log entry, got %d", n)
	}
}

func TestNewEngineNilLogger(t *testing.T) {
	result := NewEngine(nil).Appraise(retailStore())
	if len(result.Rows) != 8 {
		t.Errorf("expected 8 rows, got %d", len(result.Rows))
	}
}

func repeat(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}
