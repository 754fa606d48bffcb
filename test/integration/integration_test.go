package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
	"github.com/iwvelando/project-appraisal/internal/cache"
	"github.com/iwvelando/project-appraisal/internal/config"
	"github.com/iwvelando/project-appraisal/internal/project"
	"github.com/iwvelando/project-appraisal/internal/report"
	"github.com/iwvelando/project-appraisal/pkg/testutil"
	"go.uber.org/zap"
)

// TestMainIntegrationBaseline runs the test configuration through the same
// steps as the command line tool and checks the resulting appraisal.
func TestMainIntegrationBaseline(t *testing.T) {
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if err := conf.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if conf.Project == nil {
		t.Fatal("expected a project section in the test configuration")
	}
	if conf.Cache.TTL != 10*time.Minute {
		t.Errorf("expected cache ttl 10m, got %v", conf.Cache.TTL)
	}

	params, err := project.Prepare(*conf.Project)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	store, err := cache.NewStore(conf.CacheOptions())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	memo := cache.NewMemoizer(store, conf.Cache.TTL, appraisal.NewEngine(zap.NewNop()), zap.NewNop())
	result, cached := memo.Appraise(context.Background(), params)
	if cached {
		t.Error("first appraisal should not be cached")
	}

	testutil.AssertClose(t, "NPV", result.Metrics.NPV, -749_631.94, 0.01)
	if irr, ok := result.Metrics.IRR.Percent(); !ok {
		t.Error("expected a computed IRR")
	} else {
		testutil.AssertClose(t, "IRR", irr, 14.95, 0.005)
	}
	if pp, ok := result.Metrics.PP.Value(); !ok {
		t.Error("expected the project to pay back")
	} else {
		testutil.AssertClose(t, "PP", pp, 4.1667, 0.0001)
	}
	if _, ok := result.Metrics.DPP.Value(); ok {
		t.Error("expected the discounted payback to never recover")
	}

	var buf bytes.Buffer
	if err := report.CSV(&buf, result); err != nil {
		t.Fatalf("CSV() error = %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to read csv output: %v", err)
	}
	if len(records) != 9 {
		t.Fatalf("expected header plus 8 rows, got %d", len(records))
	}
	if records[1][0] != "0" || records[8][0] != "7" {
		t.Errorf("unexpected year column: first %q last %q", records[1][0], records[8][0])
	}
}

// TestSampleBaselines pins the metrics of every built-in sample.
func TestSampleBaselines(t *testing.T) {
	type expected struct {
		ncf       float64
		npv       float64
		irrPct    float64
		pp        float64
		recovered bool
	}

	baselines := map[string]expected{
		"manufacturing-plant": {ncf: 640_000_000, npv: -1_383_857_261.82, irrPct: 4.7601, pp: 7.8125, recovered: true},
		"real-estate":         {ncf: 2_800_000_000, npv: -29_297_291_135.54, irrPct: -2.1042, recovered: false},
		"retail-store":        {ncf: 120_000_000, npv: -749_631.94, irrPct: 14.95, pp: 25.0 / 6.0, recovered: true},
		"tech-startup":        {ncf: 480_000_000, npv: -498_957_909.95, irrPct: 6.4022, pp: 25.0 / 6.0, recovered: true},
	}

	engine := appraisal.NewEngine(zap.NewNop())
	for _, sample := range project.Samples() {
		want, ok := baselines[sample.Key]
		if !ok {
			t.Errorf("no baseline for sample %s", sample.Key)
			continue
		}

		t.Run(sample.Key, func(t *testing.T) {
			params, err := project.Prepare(sample.Input)
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			result := engine.Appraise(params)

			last := testutil.FindRow(result.Rows, sample.Input.LifespanYears)
			if last == nil {
				t.Fatalf("missing row for final year %d", sample.Input.LifespanYears)
			}
			testutil.AssertClose(t, "NCF", last.NetCashFlow, want.ncf, 1e-6)
			testutil.AssertClose(t, "NPV", result.Metrics.NPV, want.npv, 0.01)

			irr, ok := result.Metrics.IRR.Percent()
			if !ok {
				t.Fatal("expected a computed IRR")
			}
			testutil.AssertClose(t, "IRR", irr, want.irrPct, 0.0001)

			pp, recovered := result.Metrics.PP.Value()
			if recovered != want.recovered {
				t.Fatalf("PP recovered = %v, expected %v", recovered, want.recovered)
			}
			if recovered {
				testutil.AssertClose(t, "PP", pp, want.pp, 1e-9)
			}

			if result.Metrics.NPV < 0 {
				if _, ok := result.Metrics.DPP.Value(); ok {
					t.Error("a negative NPV project cannot recover its discounted investment")
				}
			}
		})
	}
}
