package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// newOpenAICompleter returns a completeFunc backed by the official OpenAI
// client. The client performs its own 429/5xx retries.
func newOpenAICompleter(prov Provider) completeFunc {
	opts := []option.RequestOption{
		option.WithAPIKey(prov.APIKey),
		option.WithHTTPClient(makeHTTPClient(prov.Proxy, prov.Timeout)),
		option.WithMaxRetries(DefaultHTTPRetries),
	}
	if prov.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(prov.BaseURL))
	}
	client := openai.NewClient(opts...)
	model := prov.Model

	return func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		params := openai.ChatCompletionNewParams{
			Model: openai.ChatModel(model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(userPrompt),
			},
			Temperature: openai.Float(0.3),
		}
		resp, err := client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("openai chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("openai chat completion: empty response")
		}
		return resp.Choices[0].Message.Content, nil
	}
}
