package extract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyText is returned when the business plan has no content.
	ErrEmptyText = errors.New("business plan text is empty")

	// ErrEmptyResponse is returned when the provider answers with nothing.
	ErrEmptyResponse = errors.New("ai provider returned an empty response")

	// ErrProviderDisabled is returned when no provider is configured.
	ErrProviderDisabled = errors.New("ai provider is not configured")

	// ErrInvalidValue is returned when an extracted field is not a usable number.
	ErrInvalidValue = errors.New("invalid extracted value")
)

// MissingFieldsError lists the required fields absent from an extraction.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("extraction is missing fields: %s", strings.Join(e.Fields, ", "))
}

// MalformedResponseError wraps a response that is not JSON even after repair.
type MalformedResponseError struct {
	Response string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("ai response is not valid json: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
