package translate

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderOpenAI         = "openai"
	ProviderGoogle         = "google"
	ProviderGroq           = "groq"
	ProviderOllama         = "ollama"
	ProviderCustomOpenAI   = "custom-openai"
	ProviderLibreTranslate = "libretranslate"
	ProviderEcho           = "echo"
)

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for a translation service.
type Provider struct {
	// ID is the provider identifier (openai, google, groq, etc.).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for local services).
	APIKey string
	// Model is the model identifier.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
	// NeedsKey reports whether the service requires an API key.
	NeedsKey bool
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderOpenAI: {
			ID:       ProviderOpenAI,
			Name:     "OpenAI",
			BaseURL:  "https://api.openai.com/v1",
			Model:    "gpt-4o-mini",
			Timeout:  120 * time.Second,
			NeedsKey: true,
		},
		ProviderGoogle: {
			ID:       ProviderGoogle,
			Name:     "Google AI (Gemini)",
			BaseURL:  "https://generativelanguage.googleapis.com",
			Model:    "gemini-2.0-flash",
			Timeout:  120 * time.Second,
			NeedsKey: true,
		},
		ProviderGroq: {
			ID:       ProviderGroq,
			Name:     "Groq",
			BaseURL:  "https://api.groq.com/openai/v1",
			Model:    "llama-3.3-70b-versatile",
			Timeout:  60 * time.Second,
			NeedsKey: true,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434/v1",
			Model:   "llama3.2",
			Timeout: 300 * time.Second,
		},
		ProviderCustomOpenAI: {
			ID:      ProviderCustomOpenAI,
			Name:    "Custom OpenAI",
			Timeout: 60 * time.Second,
		},
		ProviderLibreTranslate: {
			ID:      ProviderLibreTranslate,
			Name:    "LibreTranslate",
			BaseURL: "http://localhost:5000",
			Timeout: 120 * time.Second,
		},
		ProviderEcho: {
			ID:   ProviderEcho,
			Name: "Echo (no translation)",
		},
	}
}

// ProviderIDs returns the known provider IDs in sorted order.
func ProviderIDs() []string {
	var ids []string
	for id := range DefaultProviders() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LookupProvider returns the default definition for id.
func LookupProvider(id string) (Provider, error) {
	prov, ok := DefaultProviders()[id]
	if !ok {
		return Provider{}, fmt.Errorf("unknown provider %q (available: %v)", id, ProviderIDs())
	}
	return prov, nil
}

// DefaultHTTPRetries is the number of HTTP-level retries on 429/5xx. These
// happen inside one batch attempt, independently of Options.MaxRetries.
const DefaultHTTPRetries = 3

// EngineOptions configures engines created by NewTranslator.
type EngineOptions struct {
	// SystemPrompt overrides the built-in prompt for LLM providers.
	SystemPrompt string
	// MaxRetries is the number of HTTP-level retries on 429/5xx.
	// Default: DefaultHTTPRetries.
	MaxRetries int
	// Verbose enables request debug logging.
	Verbose bool
}

// NewTranslator builds the engine for prov. The returned Translator is safe
// for concurrent use; HTTP-based engines share a rate-limit pause across
// all callers.
func NewTranslator(ctx context.Context, prov Provider, eo EngineOptions) (Translator, error) {
	if prov.NeedsKey && prov.APIKey == "" {
		return nil, fmt.Errorf("provider %s requires an API key", prov.ID)
	}
	if prov.Timeout <= 0 {
		prov.Timeout = 120 * time.Second
	}
	prompt := eo.SystemPrompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	if eo.MaxRetries <= 0 {
		eo.MaxRetries = DefaultHTTPRetries
	}

	switch prov.ID {
	case ProviderEcho:
		return Echo{}, nil
	case ProviderLibreTranslate:
		return newLibreTranslate(prov, eo.Verbose), nil
	case ProviderOpenAI:
		return &llmTranslator{prompt: prompt, complete: newOpenAICompleter(prov)}, nil
	case ProviderGoogle:
		complete, err := newGeminiCompleter(ctx, prov)
		if err != nil {
			return nil, err
		}
		return &llmTranslator{prompt: prompt, complete: complete}, nil
	case ProviderGroq, ProviderOllama, ProviderCustomOpenAI:
		if prov.BaseURL == "" {
			return nil, fmt.Errorf("provider %s requires a base URL", prov.ID)
		}
		return &llmTranslator{prompt: prompt, complete: newHTTPCompleter(prov, eo.MaxRetries, eo.Verbose)}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", prov.ID)
	}
}

// ---------------------------------------------------------------------------
// LLM-backed translator
// ---------------------------------------------------------------------------

// completeFunc sends a system and user prompt to a chat model and returns
// the response text.
type completeFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

type llmTranslator struct {
	prompt   string
	complete completeFunc
}

func (t *llmTranslator) TranslateBatch(ctx context.Context, items []string, source, target string) ([]string, error) {
	if len(items) == 0 {
		return []string{}, nil
	}
	text, err := t.complete(ctx, resolvePrompt(t.prompt, source, target), buildUserPrompt(items, source, target))
	if err != nil {
		return nil, err
	}
	return parseTranslations(text, len(items))
}

// ---------------------------------------------------------------------------
// Echo
// ---------------------------------------------------------------------------

// Echo returns every batch unchanged. It is used for dry runs and to check
// that a document survives the pipeline intact.
type Echo struct{}

// TranslateBatch returns a copy of items.
func (Echo) TranslateBatch(_ context.Context, items []string, _, _ string) ([]string, error) {
	out := make([]string, len(items))
	copy(out, items)
	return out, nil
}
