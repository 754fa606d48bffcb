// Package extract asks an AI model to read a business plan and return the
// project figures, and to write a narrative analysis of computed metrics.
package extract

import "context"

// Request is one prompt sent to a provider.
type Request struct {
	Prompt string
	// JSON asks the model for a JSON-only answer.
	JSON bool
}

// Provider generates text from a prompt.
type Provider interface {
	GenerateContent(ctx context.Context, req Request) (string, error)
	// Name identifies the provider and model, e.g. "gemini/gemini-2.5-flash".
	Name() string
}
