// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/project-appraisal/pkg/constants"
)

var supportedFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatJSON,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, supported := range supportedFormats {
		if format == supported {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %s",
		strings.Join(supportedFormats, ", "), format)
}

// ValidateAPIKey rejects keys that are empty or implausibly short.
func ValidateAPIKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return fmt.Errorf("api key must not be empty")
	}
	if len(trimmed) < constants.MinAPIKeyLength {
		return fmt.Errorf("api key looks too short (%d characters, expected at least %d)",
			len(trimmed), constants.MinAPIKeyLength)
	}
	return nil
}
