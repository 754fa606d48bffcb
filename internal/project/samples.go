package project

import (
	"fmt"
	"sort"
)

// Sample is a built-in example project.
type Sample struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Input Input  `json:"project"`
}

var samples = []Sample{
	{
		Key:  "manufacturing-plant",
		Name: "Manufacturing plant",
		Input: Input{
			InitialInvestment:   5_000_000_000,
			LifespanYears:       10,
			AnnualRevenue:       2_000_000_000,
			AnnualOperatingCost: 1_200_000_000,
			WACC:                12,
			TaxRate:             20,
		},
	},
	{
		Key:  "real-estate",
		Name: "Real estate development",
		Input: Input{
			InitialInvestment:   50_000_000_000,
			LifespanYears:       15,
			AnnualRevenue:       8_000_000_000,
			AnnualOperatingCost: 4_500_000_000,
			WACC:                10.5,
			TaxRate:             20,
		},
	},
	{
		Key:  "retail-store",
		Name: "Retail store",
		Input: Input{
			InitialInvestment:   500_000_000,
			LifespanYears:       7,
			AnnualRevenue:       350_000_000,
			AnnualOperatingCost: 200_000_000,
			WACC:                15,
			TaxRate:             20,
		},
	},
	{
		Key:  "tech-startup",
		Name: "Technology startup",
		Input: Input{
			InitialInvestment:   2_000_000_000,
			LifespanYears:       5,
			AnnualRevenue:       1_500_000_000,
			AnnualOperatingCost: 900_000_000,
			WACC:                18,
			TaxRate:             20,
		},
	},
}

// Samples returns a copy of the built-in projects in display order.
func Samples() []Sample {
	out := make([]Sample, len(samples))
	copy(out, samples)
	return out
}

// SampleByKey looks a sample up by its key.
func SampleByKey(key string) (Sample, error) {
	for _, s := range samples {
		if s.Key == key {
			return s, nil
		}
	}
	return Sample{}, fmt.Errorf("unknown sample %q, expected one of %v", key, SampleKeys())
}

// SampleKeys lists the sample keys alphabetically.
func SampleKeys() []string {
	keys := make([]string, len(samples))
	for i, s := range samples {
		keys[i] = s.Key
	}
	sort.Strings(keys)
	return keys
}
