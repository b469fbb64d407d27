package translate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// parseTranslations
// ---------------------------------------------------------------------------

func TestParseTranslations(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"plain", `["a", "b"]`, []string{"a", "b"}, false},
		{"code block", "```json\n[\"a ⟨PLACEHOLDER_0⟩\"]\n```", []string{"a ⟨PLACEHOLDER_0⟩"}, false},
		{"prose around", "Here you go:\n[\"uno\"]\nHope it helps.", []string{"uno"}, false},
		{"escaped newline", `["línea\nnueva"]`, []string{"línea\nnueva"}, false},
		{"empty array", `[]`, nil, true},
		{"not json", `no array here`, nil, true},
		{"objects", `[{"a": 1}]`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTranslations(tt.in, 1)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTranslations: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Prompts
// ---------------------------------------------------------------------------

func TestBuildUserPrompt(t *testing.T) {
	p := buildUserPrompt([]string{"Hola ⟨PLACEHOLDER_0⟩", "dos\nlíneas <b>"}, "es", "en")
	for _, want := range []string{
		`1. "Hola ⟨PLACEHOLDER_0⟩"`,
		`2. "dos\nlíneas <b>"`,
		"exactly 2 translated strings",
		"Spanish (es)",
		"English (en)",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt lacks %q:\n%s", want, p)
		}
	}
}

func TestResolvePrompt(t *testing.T) {
	got := resolvePrompt("from {{sourceLang}} to {{targetLang}}", "es", "ca")
	if got != "from Spanish (es) to Catalan (ca)" {
		t.Errorf("resolvePrompt = %q", got)
	}
	if got := resolvePrompt("{{sourceLang}}", "", "x"); got != "the source language" {
		t.Errorf("empty source = %q", got)
	}
}

func TestDefaultPromptMentionsMarkers(t *testing.T) {
	if !strings.Contains(DefaultSystemPrompt, "⟨PLACEHOLDER_0⟩") {
		t.Error("default prompt does not describe placeholder markers")
	}
}

func TestPromptsConfig(t *testing.T) {
	var nilCfg *PromptsConfig
	if nilCfg.Prompt("default") != DefaultSystemPrompt {
		t.Error("nil config should fall back to the built-in prompt")
	}
	cfg := &PromptsConfig{Prompts: map[string]string{"default": "custom", "empty": ""}}
	if cfg.Prompt("default") != "custom" {
		t.Error("custom prompt not used")
	}
	if cfg.Prompt("empty") != DefaultSystemPrompt {
		t.Error("empty prompt should fall back")
	}
}

func TestLoadPromptsFromFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadPromptsFromFile(filepath.Join(dir, "missing.json"))
	if err != nil || cfg != nil {
		t.Errorf("missing file: cfg=%v err=%v", cfg, err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{"), 0644)
	if _, err := LoadPromptsFromFile(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadPromptsFromDefaultLocations(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	path, cfg, err := LoadPromptsFromDefaultLocations()
	if err != nil {
		t.Fatalf("LoadPromptsFromDefaultLocations: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("jsontrans", "prompts.json")) {
		t.Errorf("path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("prompts file not created: %v", err)
	}
	if cfg.Prompt("default") != DefaultSystemPrompt {
		t.Error("created file does not hold the default prompt")
	}
}
