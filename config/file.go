package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/jsontrans/langmeta"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .jsontrans.yaml structure.
type File struct {
	// SourceLang is the language of the input document.
	SourceLang string `yaml:"source_lang,omitempty"`
	// Languages is the default list of target languages.
	Languages []string `yaml:"languages,omitempty"`
	// Input is the source JSON document, relative to the config file.
	Input string `yaml:"input,omitempty"`
	// OutputDir receives one <lang>.json per target language.
	OutputDir string `yaml:"output_dir,omitempty"`
	BatchSize int    `yaml:"batch_size,omitempty"`
	// Indent is a pointer so that an explicit 0 (no indentation) survives.
	Indent    *int `yaml:"indent,omitempty"`
	Normalize bool `yaml:"normalize,omitempty"`
	// MaxRetries is the number of retries per failed batch; 0 disables them.
	MaxRetries *int `yaml:"max_retries,omitempty"`

	// Provider and Model select the default translation engine.
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	// Prompt overrides the system prompt for LLM providers.
	Prompt string `yaml:"prompt,omitempty"`

	// Pairs overrides the engine per language pair, keyed "es-en".
	Pairs map[string]PairEngine `yaml:"pairs,omitempty"`
}

// PairEngine selects the engine used for one language pair.
type PairEngine struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the default config file name.
const FileName = ".jsontrans.yaml"

// LoadFile loads and validates .jsontrans.yaml from the given directory.
// Returns nil if no .jsontrans.yaml exists.
func LoadFile(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// Paths are relative to the config file, not the working directory.
	if f.Input != "" && !filepath.IsAbs(f.Input) {
		f.Input = filepath.Join(rootDir, f.Input)
	}
	if f.OutputDir != "" && !filepath.IsAbs(f.OutputDir) {
		f.OutputDir = filepath.Join(rootDir, f.OutputDir)
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.SourceLang != "" {
		if err := langmeta.Validate(f.SourceLang); err != nil {
			return fmt.Errorf("source_lang: %w", err)
		}
		f.SourceLang = langmeta.Canonicalize(f.SourceLang)
	}
	for i, lang := range f.Languages {
		if err := langmeta.Validate(lang); err != nil {
			return fmt.Errorf("languages[%d]: %w", i, err)
		}
		f.Languages[i] = langmeta.Canonicalize(lang)
	}
	if f.BatchSize < 0 {
		return fmt.Errorf("batch_size must be positive, got %d", f.BatchSize)
	}
	if f.Indent != nil && (*f.Indent < 0 || *f.Indent > 8) {
		return fmt.Errorf("indent must be between 0 and 8, got %d", *f.Indent)
	}
	if f.MaxRetries != nil && *f.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", *f.MaxRetries)
	}

	if len(f.Pairs) == 0 {
		return nil
	}
	normalized := make(map[string]PairEngine, len(f.Pairs))
	for key, engine := range f.Pairs {
		pair, err := langmeta.ParsePair(key)
		if err != nil {
			return fmt.Errorf("pairs: %w", err)
		}
		if engine.Provider == "" && engine.Model == "" && engine.BaseURL == "" {
			return fmt.Errorf("pairs: %q selects no provider or model", key)
		}
		normalized[pair.String()] = engine
	}
	f.Pairs = normalized
	return nil
}

// PairKeys returns the configured pair keys, sorted.
func (f *File) PairKeys() []string {
	keys := make([]string, 0, len(f.Pairs))
	for k := range f.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
