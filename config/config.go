// Package config resolves jsontrans run settings from built-in defaults,
// the .jsontrans.yaml project file and JSONTRANS_* environment variables.
// Command-line flags are applied last by the caller.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/jsontrans/langmeta"
)

// Built-in defaults.
const (
	DefaultInput      = "input/es.json"
	DefaultOutputDir  = "output"
	DefaultSourceLang = "es"
	DefaultBatchSize  = 32
	DefaultIndent     = 2
	DefaultMaxRetries = 3
	DefaultProvider   = "openai"
)

// DefaultLanguages are the target languages used when none are configured.
var DefaultLanguages = []string{"en", "fr", "ca"}

// Settings is the effective configuration of one run.
type Settings struct {
	SourceLang string
	Languages  []string
	Input      string
	OutputDir  string
	BatchSize  int
	Indent     int
	Normalize  bool
	MaxRetries int

	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Proxy    string
	Prompt   string

	Pairs map[string]PairEngine
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		SourceLang: DefaultSourceLang,
		Languages:  append([]string(nil), DefaultLanguages...),
		Input:      DefaultInput,
		OutputDir:  DefaultOutputDir,
		BatchSize:  DefaultBatchSize,
		Indent:     DefaultIndent,
		MaxRetries: DefaultMaxRetries,
		Provider:   DefaultProvider,
	}
}

// ApplyFile overlays the values set in a project file. A nil file is a no-op.
func (s *Settings) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.SourceLang != "" {
		s.SourceLang = f.SourceLang
	}
	if len(f.Languages) > 0 {
		s.Languages = append([]string(nil), f.Languages...)
	}
	if f.Input != "" {
		s.Input = f.Input
	}
	if f.OutputDir != "" {
		s.OutputDir = f.OutputDir
	}
	if f.BatchSize > 0 {
		s.BatchSize = f.BatchSize
	}
	if f.Indent != nil {
		s.Indent = *f.Indent
	}
	if f.Normalize {
		s.Normalize = true
	}
	if f.MaxRetries != nil {
		s.MaxRetries = *f.MaxRetries
	}
	if f.Provider != "" {
		s.Provider = f.Provider
	}
	if f.Model != "" {
		s.Model = f.Model
	}
	if f.BaseURL != "" {
		s.BaseURL = f.BaseURL
	}
	if f.Prompt != "" {
		s.Prompt = f.Prompt
	}
	if len(f.Pairs) > 0 {
		s.Pairs = make(map[string]PairEngine, len(f.Pairs))
		for k, v := range f.Pairs {
			s.Pairs[k] = v
		}
	}
}

// ApplyEnv overlays the variables set in e. A nil Env is a no-op.
func (s *Settings) ApplyEnv(e *Env) {
	if e == nil {
		return
	}
	if e.SourceLang != "" {
		s.SourceLang = langmeta.Canonicalize(e.SourceLang)
	}
	if len(e.Languages) > 0 {
		s.Languages = ParseLanguages(strings.Join(e.Languages, ","))
	}
	if e.BatchSize > 0 {
		s.BatchSize = e.BatchSize
	}
	if e.Provider != "" {
		s.Provider = e.Provider
	}
	if e.Model != "" {
		s.Model = e.Model
	}
	if e.BaseURL != "" {
		s.BaseURL = e.BaseURL
	}
	if e.APIKey != "" {
		s.APIKey = e.APIKey
	}
	if e.Proxy != "" {
		s.Proxy = e.Proxy
	}
}

// Engine is the provider selection for one language pair.
type Engine struct {
	Provider string
	Model    string
	BaseURL  string
}

// EngineFor returns the engine for source -> target: the pair override
// when one is configured, the global selection otherwise. Fields left
// empty by the override inherit the global value only when the override
// keeps the global provider.
func (s *Settings) EngineFor(source, target string) Engine {
	global := Engine{Provider: s.Provider, Model: s.Model, BaseURL: s.BaseURL}
	override, ok := s.Pairs[langmeta.Canonicalize(source)+"-"+langmeta.Canonicalize(target)]
	if !ok {
		return global
	}
	if override.Provider == "" || override.Provider == global.Provider {
		if override.Model != "" {
			global.Model = override.Model
		}
		if override.BaseURL != "" {
			global.BaseURL = override.BaseURL
		}
		return global
	}
	return Engine{Provider: override.Provider, Model: override.Model, BaseURL: override.BaseURL}
}

// OutputPath returns the output file for a language.
func (s *Settings) OutputPath(lang string) string {
	return filepath.Join(s.OutputDir, lang+".json")
}

// ParseLanguages splits a comma-separated language list, canonicalizing and
// de-duplicating codes while keeping their order.
func ParseLanguages(list string) []string {
	seen := make(map[string]bool)
	var langs []string
	for _, part := range strings.Split(list, ",") {
		lang := langmeta.Canonicalize(part)
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		langs = append(langs, lang)
	}
	return langs
}

// DetectLanguages finds language codes from <lang>.json files in dir.
func DetectLanguages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		lang := strings.TrimSuffix(name, ".json")
		if langmeta.Validate(lang) == nil {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}
