package format

import (
	"fmt"
	"strings"
)

// Labels holds the locale-dependent words used around the metrics.
type Labels struct {
	Uncomputable  string
	NeverRecovers string
	Years         string
}

var labels = map[string]Labels{
	"en": {
		Uncomputable:  "cannot be computed",
		NeverRecovers: "never recovers",
		Years:         "years",
	},
	"vi": {
		Uncomputable:  "Không thể tính",
		NeverRecovers: "Không hoàn vốn",
		Years:         "năm",
	},
}

// LabelsFor returns the labels of locale; unknown locales fall back to English.
func LabelsFor(locale string) Labels {
	if l, ok := labels[strings.ToLower(locale)]; ok {
		return l
	}
	return labels["en"]
}

// SupportedLocale reports whether locale has its own labels.
func SupportedLocale(locale string) bool {
	_, ok := labels[strings.ToLower(locale)]
	return ok
}

// Percent formats a percentage value with two decimals (e.g., "14.95%").
func Percent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// Years formats a duration in years with two decimals (e.g., "4.17 years").
func Years(value float64, l Labels) string {
	return fmt.Sprintf("%.2f %s", value, l.Years)
}
