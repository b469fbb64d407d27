package translate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/minios-linux/jsontrans/langmeta"
	"github.com/minios-linux/jsontrans/settings"
)

// ---------------------------------------------------------------------------
// System prompts
// ---------------------------------------------------------------------------

// DefaultSystemPrompt is the system prompt for LLM providers. {{sourceLang}}
// and {{targetLang}} are replaced with language names.
const DefaultSystemPrompt = `You are a professional translator specializing in software and product localization. You are translating string values of a JSON resource file from {{sourceLang}} to {{targetLang}}.

IMPORTANT TRANSLATION PRINCIPLES:
- Translate for NATURALNESS and FLUENCY in {{targetLang}}, not word-for-word
- Use established IT terminology in {{targetLang}}
- Maintain the original tone and intent
- Keep brand names and proper nouns unchanged

PLACEHOLDER MARKERS:
- Some strings contain markers like ⟨PLACEHOLDER_0⟩, ⟨PLACEHOLDER_1⟩. They stand for values inserted at runtime.
- Copy every marker EXACTLY as-is: same brackets, same digits, no spaces added, never translated.
- Every marker of a source string must appear exactly once in its translation. Move it where the grammar of {{targetLang}} needs it.

TECHNICAL REQUIREMENTS:
- Return ONLY a JSON array of translated strings, one for each input entry, in the same order.
- Preserve leading/trailing whitespace, newlines, and punctuation patterns.
- An empty input string stays empty.
- Return ONLY the JSON array, no explanations or markdown code blocks.`

// PromptsConfig holds system prompts loaded from prompts.json.
type PromptsConfig struct {
	Prompts map[string]string `json:"prompts"`
}

// Prompt returns the prompt called name, or DefaultSystemPrompt.
func (c *PromptsConfig) Prompt(name string) string {
	if c != nil {
		if p, ok := c.Prompts[name]; ok && p != "" {
			return p
		}
	}
	return DefaultSystemPrompt
}

// LoadPromptsFromFile loads system prompts from a JSON file. A missing
// file yields a nil config and no error.
func LoadPromptsFromFile(path string) (*PromptsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var config PromptsConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	return &config, nil
}

// createDefaultPromptsFile writes the built-in prompts to path as a formatted JSON file.
func createDefaultPromptsFile(path string) error {
	config := PromptsConfig{
		Prompts: map[string]string{"default": DefaultSystemPrompt},
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling default prompts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating prompts directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing default prompts file: %w", err)
	}
	return nil
}

// LoadPromptsFromDefaultLocations loads prompts from the user data directory
// ($XDG_DATA_HOME/jsontrans/prompts.json), creating the file with the
// built-in prompt when it does not exist.
func LoadPromptsFromDefaultLocations() (string, *PromptsConfig, error) {
	path, err := settings.PromptsFilePath()
	if err != nil {
		return "", nil, fmt.Errorf("cannot determine prompts file path: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefaultPromptsFile(path); err != nil {
			return "", nil, fmt.Errorf("creating default prompts file: %w", err)
		}
	}

	config, err := LoadPromptsFromFile(path)
	if err != nil {
		return "", nil, err
	}
	return path, config, nil
}

// resolvePrompt replaces language variables in prompt.
func resolvePrompt(prompt, source, target string) string {
	r := strings.NewReplacer(
		"{{sourceLang}}", languageLabel(source),
		"{{targetLang}}", languageLabel(target),
	)
	return r.Replace(prompt)
}

func languageLabel(code string) string {
	if code == "" {
		return "the source language"
	}
	if name := langmeta.EnglishName(code); name != "" && name != code {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}

// ---------------------------------------------------------------------------
// User prompt and response parsing
// ---------------------------------------------------------------------------

// buildUserPrompt lists items as numbered JSON string literals.
func buildUserPrompt(items []string, source, target string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate these strings from %s to %s:\n\n", languageLabel(source), languageLabel(target))
	for i, s := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, escapeForPrompt(s))
	}
	fmt.Fprintf(&b, "\nReturn a JSON array with exactly %d translated strings.", len(items))
	return b.String()
}

// escapeForPrompt renders s as a JSON string literal so newlines and quotes
// stay unambiguous.
func escapeForPrompt(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseTranslations extracts a JSON array of strings from the AI response text.
func parseTranslations(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)

	// Strip markdown code blocks if present
	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	startIdx := strings.Index(content, "[")
	endIdx := strings.LastIndex(content, "]")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	var translations []string
	if err := json.Unmarshal([]byte(content), &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation response as JSON array: %w\nResponse: %s", err, truncate(content, 300))
	}

	if len(translations) == 0 {
		return nil, fmt.Errorf("got 0 translations, expected %d", expected)
	}

	return translations, nil
}

// truncate truncates a string to maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
