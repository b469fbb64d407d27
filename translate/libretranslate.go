package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// libreTranslate talks to a LibreTranslate server, which translates a whole
// batch in one request without any prompt.
type libreTranslate struct {
	prov    Provider
	client  *http.Client
	rl      *rateLimitState
	verbose bool
}

func newLibreTranslate(prov Provider, verbose bool) *libreTranslate {
	return &libreTranslate{
		prov:    prov,
		client:  makeHTTPClient(prov.Proxy, prov.Timeout),
		rl:      &rateLimitState{},
		verbose: verbose,
	}
}

func (t *libreTranslate) TranslateBatch(ctx context.Context, items []string, source, target string) ([]string, error) {
	if len(items) == 0 {
		return []string{}, nil
	}
	req := struct {
		Q      []string `json:"q"`
		Source string   `json:"source"`
		Target string   `json:"target"`
		Format string   `json:"format"`
		APIKey string   `json:"api_key,omitempty"`
	}{
		Q:      items,
		Source: baseLang(source),
		Target: baseLang(target),
		Format: "text",
		APIKey: t.prov.APIKey,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	endpoint := strings.TrimRight(t.prov.BaseURL, "/") + "/translate"
	prov := t.prov
	prov.APIKey = "" // sent in the body
	respBody, err := postWithRetry(ctx, t.client, prov, endpoint, body, t.rl, 2, t.verbose)
	if err != nil {
		return nil, err
	}

	var resp struct {
		TranslatedText []string `json:"translatedText"`
		Error          string   `json:"error"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("API error: %s", resp.Error)
	}
	return resp.TranslatedText, nil
}

// baseLang strips the region from a language tag ("pt-BR" -> "pt").
func baseLang(code string) string {
	code = strings.ReplaceAll(code, "_", "-")
	if i := strings.Index(code, "-"); i > 0 {
		return strings.ToLower(code[:i])
	}
	return strings.ToLower(code)
}
