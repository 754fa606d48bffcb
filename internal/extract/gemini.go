package extract

import (
	"context"
	"fmt"

	"github.com/iwvelando/project-appraisal/pkg/constants"
	"github.com/iwvelando/project-appraisal/pkg/validation"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider with Google's Gemini models.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider validates apiKey and creates the GenAI client.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if err := validation.ValidateAPIKey(apiKey); err != nil {
		return nil, fmt.Errorf("invalid gemini api key: %w", err)
	}
	if model == "" {
		model = constants.DefaultAIModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{
		client:      client,
		model:       model,
		temperature: 0.1,
	}, nil
}

// Name returns "gemini/<model>".
func (p *GeminiProvider) Name() string {
	return constants.DefaultAIProvider + "/" + p.model
}

// GenerateContent sends a generateContent request and returns the response text.
func (p *GeminiProvider) GenerateContent(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.temperature),
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}
