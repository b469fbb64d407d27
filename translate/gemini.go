package translate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// newGeminiCompleter returns a completeFunc backed by the Google Gen AI SDK
// using the Gemini API backend.
func newGeminiCompleter(ctx context.Context, prov Provider) (completeFunc, error) {
	config := &genai.ClientConfig{
		APIKey:     prov.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: makeHTTPClient(prov.Proxy, prov.Timeout),
	}
	if prov.BaseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(prov.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI client: %w", err)
	}
	model := prov.Model

	return func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		gc := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.3),
		}
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(userPrompt), gc)
		if err != nil {
			return "", fmt.Errorf("gemini generate content: %w", err)
		}
		text := resp.Text()
		if text == "" {
			return "", fmt.Errorf("gemini generate content: empty response")
		}
		return text, nil
	}, nil
}
