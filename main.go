// jsontrans translates the string values of JSON documents while keeping
// structure and interpolation placeholders intact.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/minios-linux/jsontrans/config"
	"github.com/minios-linux/jsontrans/document"
	"github.com/minios-linux/jsontrans/i18n"
	"github.com/minios-linux/jsontrans/langmeta"
	"github.com/minios-linux/jsontrans/lockfile"
	"github.com/minios-linux/jsontrans/protect"
	"github.com/minios-linux/jsontrans/settings"
	"github.com/minios-linux/jsontrans/translate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

// logMu serializes log lines from parallel translations.
var logMu sync.Mutex

func logLine(prefix, format string, args ...any) {
	logMu.Lock()
	defer logMu.Unlock()
	fmt.Fprintf(os.Stderr, prefix+" "+format+"\n", args...)
}

func logInfo(format string, args ...any) {
	logLine(colorBlue+"[INFO]"+colorReset, i18n.T(format), args...)
}

func logSuccess(format string, args ...any) {
	logLine(colorGreen+"[OK]"+colorReset, i18n.T(format), args...)
}

func logWarning(format string, args ...any) {
	logLine(colorYellow+"[WARN]"+colorReset, i18n.T(format), args...)
}

func logError(format string, args ...any) {
	logLine(colorRed+"[ERROR]"+colorReset, i18n.T(format), args...)
}

// errReported signals a failure that has already been logged.
var errReported = errors.New("failure already reported")

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jsontrans",
		Short: "Translate JSON string values, keeping structure and placeholders intact",
		Long: `jsontrans translates every string value of a JSON document into other
languages. Keys, nesting, element order and non-string values are kept as
they are, and interpolation placeholders ({name}, %s, %(count)d) survive
translation unchanged.

Commands:
  translate   Translate a JSON document into one or more languages
  inspect     Show the strings and placeholders that would be translated
  normalize   Rewrite a JSON document with sorted keys
  languages   List target languages and supported language pairs
  auth        Manage provider credentials

Providers:
  openai          OpenAI (API key)
  google          Google AI Gemini (API key)
  groq            Groq (API key)
  ollama          Ollama local server
  custom-openai   Any OpenAI-compatible endpoint
  libretranslate  LibreTranslate server
  echo            No translation (pipeline check)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory (holds .jsontrans.yaml, .env and jsontrans.lock)")

	root.AddCommand(
		newTranslateCmd(),
		newInspectCmd(),
		newNormalizeCmd(),
		newLanguagesCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			logError("%v", err)
		}
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "jsontrans version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// loadSettings layers defaults, .jsontrans.yaml and JSONTRANS_* variables.
// Flags are applied afterwards by each command.
func loadSettings(root string) (config.Settings, error) {
	s := config.Defaults()
	s.Input = filepath.Join(root, s.Input)
	s.OutputDir = filepath.Join(root, s.OutputDir)

	file, err := config.LoadFile(root)
	if err != nil {
		return s, err
	}
	s.ApplyFile(file)

	env, err := config.LoadEnv(root)
	if err != nil {
		return s, err
	}
	s.ApplyEnv(env)
	return s, nil
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	langs, sourceLang, input, outDir string
	batchSize, indent, maxChars      int
	normalize                        bool
	updateSource, outputSource       bool
	incremental, dryRun              bool

	provider, model, apiKey, baseURL string
	proxy, prompt                    string
	timeout                          time.Duration
	maxRetries                       int

	parallel      bool
	maxConcurrent int
	requestDelay  time.Duration
	verbose       bool
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a JSON document into one or more languages",
		Long: `Translate every string value of a JSON document.

Settings are read from built-in defaults, then .jsontrans.yaml, then
JSONTRANS_* environment variables (a .env file in the project root is
loaded), then flags. One <lang>.json is written per target language.

Examples:
  # Translate input/es.json into the configured languages
  jsontrans translate --provider openai

  # Translate into German and Catalan with Gemini, in parallel
  jsontrans translate --provider google --lang de,ca --parallel

  # Only send strings that changed since the last run
  jsontrans translate --incremental

  # Show what would be translated
  jsontrans translate --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(rootDir)
			if err != nil {
				return err
			}
			applyTranslateFlags(&s, cmd.Flags(), a)
			return runTranslate(cmd.Context(), s, a)
		},
	}

	// Input and output
	cmd.Flags().StringVar(&a.langs, "lang", "", "Target languages (comma-separated, default: configured languages)")
	cmd.Flags().StringVar(&a.sourceLang, "source-lang", "", "Source language (default: es)")
	cmd.Flags().StringVar(&a.input, "input", "", "Source JSON document (default: input/es.json)")
	cmd.Flags().StringVar(&a.outDir, "out-dir", "", "Output directory (default: output)")
	cmd.Flags().IntVar(&a.indent, "indent", document.DefaultIndent, "Output indentation in spaces per level")

	// Translation behavior
	cmd.Flags().IntVar(&a.batchSize, "batch-size", config.DefaultBatchSize, "Strings per engine request")
	cmd.Flags().BoolVar(&a.normalize, "normalize", false, "Sort object keys before translating")
	cmd.Flags().BoolVar(&a.updateSource, "update-source", false, "Rewrite the input file normalized (implies --normalize)")
	cmd.Flags().BoolVar(&a.outputSource, "output-source", false, "Also write the normalized source into the output directory (implies --normalize)")
	cmd.Flags().BoolVar(&a.incremental, "incremental", false, "Reuse translations of strings unchanged since the last run")
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Show what would be translated without calling any provider")
	cmd.Flags().IntVar(&a.maxChars, "max-chars", 512, "Warn about strings longer than this (0 = off)")
	cmd.Flags().StringVar(&a.prompt, "prompt", "", "Custom system prompt (use {{sourceLang}} and {{targetLang}})")
	cmd.Flags().BoolVar(&a.verbose, "verbose", false, "Enable detailed logging")

	// Provider selection
	cmd.Flags().StringVar(&a.provider, "provider", "", "Translation provider: "+strings.Join(translate.ProviderIDs(), ", "))
	cmd.Flags().StringVar(&a.model, "model", "", "Model name (default: provider default)")
	cmd.Flags().StringVar(&a.apiKey, "api-key", "", "API key (or JSONTRANS_API_KEY env var)")
	cmd.Flags().StringVar(&a.baseURL, "base-url", "", "Custom API base URL")

	// Parallelization
	cmd.Flags().BoolVar(&a.parallel, "parallel", false, "Translate languages in parallel")
	cmd.Flags().IntVar(&a.maxConcurrent, "max-concurrent", 3, "Maximum languages translated at once (with --parallel)")
	cmd.Flags().DurationVar(&a.requestDelay, "request-delay", 0, "Delay between starting parallel languages")

	// Network
	cmd.Flags().DurationVar(&a.timeout, "timeout", 0, "Request timeout (0 = provider default)")
	cmd.Flags().StringVar(&a.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().IntVar(&a.maxRetries, "max-retries", config.DefaultMaxRetries, "Retries per failed batch (0 = none)")

	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, id := range translate.ProviderIDs() {
			p, _ := translate.LookupProvider(id)
			out = append(out, id+"\t"+p.Name)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	_ = cmd.RegisterFlagCompletionFunc("model", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		p, _ := cmd.Flags().GetString("provider")
		switch p {
		case translate.ProviderOpenAI:
			return []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"}, cobra.ShellCompDirectiveNoFileComp
		case translate.ProviderGoogle:
			return []string{"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro"}, cobra.ShellCompDirectiveNoFileComp
		case translate.ProviderGroq:
			return []string{"llama-3.3-70b-versatile", "mixtral-8x7b-32768"}, cobra.ShellCompDirectiveNoFileComp
		case translate.ProviderOllama:
			return []string{"llama3.2", "qwen2.5", "mistral"}, cobra.ShellCompDirectiveNoFileComp
		default:
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	})

	return cmd
}

// applyTranslateFlags overlays the flags the user actually set.
func applyTranslateFlags(s *config.Settings, flags *pflag.FlagSet, a translateArgs) {
	if flags.Changed("lang") {
		s.Languages = config.ParseLanguages(a.langs)
	}
	if flags.Changed("source-lang") {
		s.SourceLang = langmeta.Canonicalize(a.sourceLang)
	}
	if flags.Changed("input") {
		s.Input = a.input
	}
	if flags.Changed("out-dir") {
		s.OutputDir = a.outDir
	}
	if flags.Changed("indent") {
		s.Indent = a.indent
	}
	if flags.Changed("batch-size") {
		s.BatchSize = a.batchSize
	}
	if a.normalize || a.updateSource || a.outputSource {
		s.Normalize = true
	}
	if flags.Changed("max-retries") {
		s.MaxRetries = a.maxRetries
	}
	if flags.Changed("provider") {
		s.Provider = a.provider
	}
	if flags.Changed("model") {
		s.Model = a.model
	}
	if flags.Changed("base-url") {
		s.BaseURL = a.baseURL
	}
	if flags.Changed("api-key") {
		s.APIKey = a.apiKey
	}
	if flags.Changed("proxy") {
		s.Proxy = a.proxy
	}
	if flags.Changed("prompt") {
		s.Prompt = a.prompt
	}
}

func runTranslate(parent context.Context, s config.Settings, a translateArgs) error {
	if parent == nil {
		parent = context.Background()
	}
	if err := langmeta.Validate(s.SourceLang); err != nil {
		return fmt.Errorf("source language: %w", err)
	}
	targets, err := targetLanguages(s)
	if err != nil {
		return err
	}
	if s.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", s.BatchSize)
	}

	root, err := document.ParseFile(s.Input)
	if err != nil {
		return err
	}
	if s.Normalize {
		root = document.Normalize(root)
	}
	if a.updateSource && !a.dryRun {
		if err := document.WriteFile(s.Input, root, s.Indent); err != nil {
			return fmt.Errorf("updating source: %w", err)
		}
		logInfo("Source file normalized: %s", s.Input)
	}
	if a.outputSource && !a.dryRun {
		path := s.OutputPath(s.SourceLang)
		if err := document.WriteFile(path, root, s.Indent); err != nil {
			return fmt.Errorf("writing normalized source: %w", err)
		}
		logInfo("Normalized source saved: %s", path)
	}

	prepared := protect.Prepare(root)
	sources := make(map[string]string, len(prepared.Items))
	for i, loc := range prepared.Locators {
		sources[loc.Key()] = prepared.Items[i].Source
	}

	lock, err := lockfile.Load(rootDir)
	if err != nil {
		return err
	}
	if lock.Source != s.SourceLang {
		for _, lang := range lock.Languages() {
			lock.RemoveLanguage(lang)
		}
		lock.Source = s.SourceLang
	}

	reuse := make(map[string]map[string]string, len(targets))
	if a.incremental {
		for _, lang := range targets {
			reuse[lang] = lock.Reusable(lang, sources, existingTranslations(s.OutputPath(lang)))
		}
	}

	if a.dryRun {
		printDryRun(s, targets, prepared, reuse)
		return nil
	}

	prompt, err := systemPrompt(s)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt)
	defer cancel()

	engines := make(map[config.Engine]translate.Translator)
	var jobs []translate.Job
	for _, lang := range targets {
		engine := s.EngineFor(s.SourceLang, lang)
		tr, ok := engines[engine]
		if !ok {
			prov, err := resolveProvider(engine, s, a.timeout)
			if err != nil {
				return err
			}
			if err := validateProvider(prov); err != nil {
				return err
			}
			tr, err = translate.NewTranslator(ctx, prov, translate.EngineOptions{
				SystemPrompt: prompt,
				Verbose:      a.verbose,
			})
			if err != nil {
				return err
			}
			engines[engine] = tr
			logInfo("%s -> %s: %s (%s)", s.SourceLang, lang, prov.Name, modelLabel(prov))
		}
		if engine.Provider == translate.ProviderLibreTranslate && !langmeta.SupportsPair(s.SourceLang, lang) {
			logWarning("%s -> %s is not a known machine-translation pair; the server may reject it", s.SourceLang, lang)
		}
		jobs = append(jobs, translate.Job{
			Language:   lang,
			Translator: tr,
			Root:       root,
			Reuse:      reuse[lang],
		})
	}

	width := langColumnWidth(targets)
	progress := &progressPrinter{width: width}
	opts := translate.Options{
		SourceLang:    s.SourceLang,
		BatchSize:     s.BatchSize,
		MaxRetries:    batchRetries(s.MaxRetries),
		RetryDelay:    time.Second,
		MaxChars:      a.maxChars,
		Parallel:      a.parallel,
		MaxConcurrent: a.maxConcurrent,
		RequestDelay:  a.requestDelay,
		Verbose:       a.verbose,
		OnProgress:    progress.update,
		OnLog:         func(format string, args ...any) {
			logInfo(format, args...)
		},
		OnError: func(format string, args ...any) {
			logError(format, args...)
		},
	}

	logInfo("Translating %s (%s) into: %s", s.Input, plural("%d string", "%d strings", len(prepared.Items)), strings.Join(targets, ", "))
	results, runErr := translate.TranslateAll(ctx, jobs, opts)

	for _, res := range results {
		if res.Err != nil {
			logError("%s: %v", res.Language, res.Err)
			continue
		}
		path := s.OutputPath(res.Language)
		if err := document.WriteFile(path, res.Document, s.Indent); err != nil {
			logError("Writing %s: %v", path, err)
			res.Err = err
			continue
		}
		recordLock(lock, res, sources)
		warnings := len(res.Issues) - countKind(res.Issues, protect.PortFailure)
		logSuccess("%s %s: %d translated, %d reused, %d failed, %d warnings -> %s",
			langFlag(res.Language), res.Language, res.Translated, res.Reused, res.Failed, warnings, path)
	}

	if err := lock.Save(); err != nil {
		logWarning("Could not save lock file: %v", err)
	} else if a.verbose {
		logInfo("Lock file %s: %s", lock.Path(), lock.Summary())
	}

	if runErr != nil {
		logWarning("Translation interrupted, unfinished languages were not written")
		return errReported
	}

	summary := translate.Summary(results)
	if failed := translate.FailedLanguages(results); len(failed) > 0 {
		logError("Summary: %s", summary)
		return errReported
	}
	logSuccess("Summary: %s", summary)
	return nil
}

// targetLanguages validates the configured targets and drops the source
// language.
func targetLanguages(s config.Settings) ([]string, error) {
	for _, lang := range s.Languages {
		if err := langmeta.Validate(lang); err != nil {
			return nil, fmt.Errorf("target language: %w", err)
		}
	}
	targets := filterOutLang(s.Languages, s.SourceLang)
	if len(targets) < len(s.Languages) {
		logWarning("Skipping %s: it is the source language", s.SourceLang)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no target languages; use --lang, e.g. --lang en,fr,ca")
	}
	return targets, nil
}

// existingTranslations returns the string leaves of a previous output file,
// keyed by locator key. A missing or unreadable file yields nil.
func existingTranslations(path string) map[string]string {
	root, err := document.ParseFile(path)
	if err != nil {
		return nil
	}
	out := make(map[string]string)
	for _, leaf := range document.Collect(root) {
		out[leaf.Locator.Key()] = leaf.Text
	}
	return out
}

// recordLock stores the source checksums of every leaf that now has a
// correct translation in the output. Leaves left untranslated or with
// broken placeholders are forgotten so the next incremental run retries them.
func recordLock(lock *lockfile.LockFile, res *translate.Result, sources map[string]string) {
	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	lock.Clean(res.Language, keys)

	retry := append(append([]string(nil), res.Untranslated...), res.Mismatched...)
	skip := make(map[string]bool, len(retry))
	for _, k := range retry {
		skip[k] = true
	}
	done := make(map[string]string, len(sources))
	for k, src := range sources {
		if !skip[k] {
			done[k] = src
		}
	}
	lock.Forget(res.Language, retry)
	lock.UpdateBatch(res.Language, done)
}

// batchRetries maps the configured retry count to translate.Options, where
// zero selects the default.
func batchRetries(n int) int {
	if n == 0 {
		return -1
	}
	return n
}

func countKind(issues []protect.Issue, kind protect.IssueKind) int {
	n := 0
	for _, iss := range issues {
		if iss.Kind == kind {
			n++
		}
	}
	return n
}

func printDryRun(s config.Settings, targets []string, p *protect.Prepared, reuse map[string]map[string]string) {
	logInfo("Input: %s", s.Input)
	logInfo("Strings: %d, placeholders: %d, unsafe: %d", len(p.Items), p.Placeholders(), len(p.Skipped))
	for _, iss := range p.Skipped {
		logWarning("%v", iss)
	}
	width := langColumnWidth(targets)
	for _, lang := range targets {
		pending := len(p.Items) - len(reuse[lang])
		batches := len(protect.Split(pending, s.BatchSize))
		engine := s.EngineFor(s.SourceLang, lang)
		logInfo("%s %d to translate, %d reused, %s (%s) -> %s",
			langCell(lang, width), pending, len(reuse[lang]),
			plural("%d batch", "%d batches", batches), engine.Provider, s.OutputPath(lang))
	}
}

// ---------------------------------------------------------------------------
// Progress
// ---------------------------------------------------------------------------

// progressPrinter renders translate.Progress updates. It is safe for the
// concurrent callbacks of parallel mode.
type progressPrinter struct {
	mu    sync.Mutex
	width int
}

func (p *progressPrinter) update(pr translate.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	percent := 100
	if pr.Total > 0 {
		percent = pr.Done * 100 / pr.Total
	}
	logLine("  ", "%s %s %d/%d", langCell(pr.Language, p.width), progressBar(percent, 20), pr.Done, pr.Total)
}

// progressBar draws a colored bar followed by the percentage.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + colorReset + fmt.Sprintf(" %3d%%", percent)
}

// ---------------------------------------------------------------------------
// Language helpers
// ---------------------------------------------------------------------------

func langFlag(lang string) string {
	return langmeta.Resolve(lang).Flag
}

// langColumnWidth returns the width of the widest language code.
func langColumnWidth(langs []string) int {
	w := 0
	for _, l := range langs {
		if len(l) > w {
			w = len(l)
		}
	}
	return w
}

// langCell renders a flag and a padded language code.
func langCell(lang string, width int) string {
	flag := langFlag(lang)
	if flag == "" {
		flag = "  "
	}
	return fmt.Sprintf("%s %-*s", flag, width, lang)
}

// filterOutLang removes every occurrence of lang.
func filterOutLang(langs []string, lang string) []string {
	var out []string
	for _, l := range langs {
		if l != lang {
			out = append(out, l)
		}
	}
	return out
}

// plural formats n with the translated singular or plural form.
func plural(singular, pluralForm string, n int) string {
	return fmt.Sprintf(i18n.N(singular, pluralForm, n), n)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ---------------------------------------------------------------------------
// Providers
// ---------------------------------------------------------------------------

// systemPrompt picks the prompt for LLM providers: the configured one, or
// the user's prompts.json, or the built-in default.
func systemPrompt(s config.Settings) (string, error) {
	if s.Prompt != "" {
		return s.Prompt, nil
	}
	path, prompts, err := translate.LoadPromptsFromDefaultLocations()
	if err != nil {
		logWarning("Using built-in prompt: %v", err)
		return translate.DefaultSystemPrompt, nil
	}
	if prompts != nil && prompts.Prompt("default") != translate.DefaultSystemPrompt {
		logInfo("Using custom prompt from %s", path)
	}
	return prompts.Prompt("default"), nil
}

func resolveProvider(engine config.Engine, s config.Settings, timeout time.Duration) (translate.Provider, error) {
	prov, err := translate.LookupProvider(strings.ToLower(engine.Provider))
	if err != nil {
		return prov, err
	}

	stored := settings.Get(prov.ID)
	switch {
	case engine.BaseURL != "":
		prov.BaseURL = engine.BaseURL
	case stored != nil && stored.BaseURL != "":
		prov.BaseURL = stored.BaseURL
	}
	switch {
	case engine.Model != "":
		prov.Model = engine.Model
	case stored != nil && stored.Model != "":
		prov.Model = stored.Model
	}

	prov.APIKey = settings.ResolveAPIKey(prov.ID, s.APIKey)
	if s.Proxy != "" {
		prov.Proxy = s.Proxy
	}
	if timeout > 0 {
		prov.Timeout = timeout
	}
	return prov, nil
}

func validateProvider(prov translate.Provider) error {
	switch prov.ID {
	case translate.ProviderOpenAI, translate.ProviderGoogle, translate.ProviderGroq:
		if prov.APIKey == "" {
			env := settings.EnvVarForProvider(prov.ID)
			return fmt.Errorf("provider '%s' requires an API key\n\n"+
				"Option 1: Store your API key:\n"+
				"  jsontrans auth login --provider %s\n\n"+
				"Option 2: Pass key directly:\n"+
				"  --api-key YOUR_KEY or export %s=YOUR_KEY", prov.ID, prov.ID, env)
		}
	case translate.ProviderCustomOpenAI:
		if prov.BaseURL == "" {
			return fmt.Errorf("provider 'custom-openai' requires an endpoint URL\n\n" +
				"Option 1: Configure via auth:\n" +
				"  jsontrans auth login --provider custom-openai\n\n" +
				"Option 2: Pass directly:\n" +
				"  --base-url https://api.example.com/v1")
		}
		if prov.Model == "" {
			return fmt.Errorf("provider 'custom-openai' requires --model")
		}
	}
	return nil
}

func modelLabel(prov translate.Provider) string {
	if prov.Model == "" {
		return prov.ID
	}
	return prov.Model
}

// ---------------------------------------------------------------------------
// inspect (read-only: leaves, masked text, recovery lists)
// ---------------------------------------------------------------------------

func newInspectCmd() *cobra.Command {
	var normalize bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the strings and placeholders that would be translated",
		Long: `Print every string leaf of a JSON document with its locator, the masked
text sent to providers and the protected placeholders. Strings that cannot
be masked safely are reported. Does not modify any files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				s, err := loadSettings(rootDir)
				if err != nil {
					return err
				}
				path = s.Input
				normalize = normalize || s.Normalize
			}
			return runInspect(cmd, path, normalize)
		},
	}
	cmd.Flags().BoolVar(&normalize, "normalize", false, "Sort object keys first")
	return cmd
}

func runInspect(cmd *cobra.Command, path string, normalize bool) error {
	root, err := document.ParseFile(path)
	if err != nil {
		return err
	}
	if normalize {
		root = document.Normalize(root)
	}

	p := protect.Prepare(root)
	out := cmd.OutOrStdout()
	for i, loc := range p.Locators {
		it := p.Items[i]
		ptr := loc.String()
		if ptr == "" {
			ptr = "/"
		}
		fmt.Fprintf(out, "%s%s%s\n", colorBlue, ptr, colorReset)
		fmt.Fprintf(out, "  source: %q\n", it.Source)
		if it.Unsafe {
			fmt.Fprintf(out, "  %sunsafe: sent unmasked%s\n", colorYellow, colorReset)
			continue
		}
		if len(it.Recovery) > 0 {
			fmt.Fprintf(out, "  masked: %q\n", it.Masked)
			fmt.Fprintf(out, "  placeholders: %s\n", strings.Join(it.Recovery, " "))
		}
	}
	fmt.Fprintf(out, "\n%s, %s, %d unsafe\n",
		plural("%d string", "%d strings", len(p.Items)),
		plural("%d placeholder", "%d placeholders", p.Placeholders()),
		len(p.Skipped))
	return nil
}

// ---------------------------------------------------------------------------
// normalize
// ---------------------------------------------------------------------------

func newNormalizeCmd() *cobra.Command {
	var (
		output  string
		inPlace bool
		indent  int
	)

	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Rewrite a JSON document with sorted keys",
		Long: `Sort the keys of every object recursively. Arrays keep their order and
values are not changed. The result is printed to stdout unless --output or
--in-place is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := document.ParseFile(args[0])
			if err != nil {
				return err
			}
			root = document.Normalize(root)

			switch {
			case inPlace:
				output = args[0]
			case output == "":
				data, err := document.Marshal(root, indent)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := document.WriteFile(output, root, indent); err != nil {
				return err
			}
			logSuccess("Normalized document written to %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "Rewrite the input file")
	cmd.Flags().IntVar(&indent, "indent", document.DefaultIndent, "Indentation in spaces per level")
	cmd.MarkFlagsMutuallyExclusive("output", "in-place")
	return cmd
}

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	var pairs bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List target languages and supported language pairs",
		Long: `List the configured target languages with the provider used for each
pair, whether an output file exists and what the lock file tracks for
incremental runs. With --pairs, list the language
pairs covered by dedicated machine-translation models.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if pairs {
				for _, p := range langmeta.Pairs() {
					fmt.Fprintf(out, "%s %s -> %s %s\n", langFlag(p.Source), p.Source, langFlag(p.Target), p.Target)
				}
				return nil
			}

			s, err := loadSettings(rootDir)
			if err != nil {
				return err
			}
			existing := make(map[string]bool)
			for _, l := range config.DetectLanguages(s.OutputDir) {
				existing[l] = true
			}

			src := langmeta.Resolve(s.SourceLang)
			fmt.Fprintf(out, "%s: %s %s (%s)\n\n", i18n.T("Source"), src.Flag, src.Code, src.Name)
			width := langColumnWidth(s.Languages)
			for _, lang := range s.Languages {
				m := langmeta.Resolve(lang)
				engine := s.EngineFor(s.SourceLang, lang)
				status := colorRed + i18n.T("missing") + colorReset
				if existing[lang] {
					status = colorGreen + i18n.T("translated") + colorReset
				}
				fmt.Fprintf(out, "%s  %-20s %-16s %s\n", langCell(lang, width), m.Name, engine.Provider, status)
			}

			lock, err := lockfile.Load(rootDir)
			if err != nil {
				return err
			}
			if langs, _ := lock.Stats(); langs > 0 {
				fmt.Fprintf(out, "\n%s: %s\n", i18n.T("Lock file"), lock.Summary())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pairs, "pairs", false, "List machine-translation language pairs")
	return cmd
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider credentials",
		Long: `Manage API keys and endpoints for translation providers.

API key providers (paste your key):
  openai          OpenAI
  google          Google AI Studio (Gemini API key)
  groq            Groq Cloud (free tier available)
  libretranslate  LibreTranslate (only if your server requires a key)
  custom-openai   Custom OpenAI-compatible endpoint (URL, key and model)

No auth required:
  ollama          Local Ollama server
  echo            No translation

Examples:
  jsontrans auth login --provider google      Store Google AI API key
  jsontrans auth logout --provider google     Remove Google API key
  jsontrans auth logout                       Remove all credentials
  jsontrans auth list                         Show all stored credentials`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

// authProviders is the ordered list of providers that store credentials.
var authProviders = []struct {
	id      string
	name    string
	helpURL string
}{
	{translate.ProviderOpenAI, "OpenAI", "https://platform.openai.com/api-keys"},
	{translate.ProviderGoogle, "Google AI Studio", "https://aistudio.google.com/apikey"},
	{translate.ProviderGroq, "Groq Cloud", "https://console.groq.com/keys"},
	{translate.ProviderLibreTranslate, "LibreTranslate", "https://portal.libretranslate.com"},
	{translate.ProviderCustomOpenAI, "Custom OpenAI", ""},
}

func isAuthProvider(id string) bool {
	for _, p := range authProviders {
		if p.id == id {
			return true
		}
	}
	return false
}

func authProviderCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, len(authProviders))
	for _, p := range authProviders {
		out = append(out, p.id+"\t"+p.name)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func newAuthLoginCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store credentials for a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isAuthProvider(provider) {
				return fmt.Errorf("provider %q does not store credentials (use one of: %s)", provider, strings.Join(authProviderIDs(), ", "))
			}
			in := bufio.NewScanner(cmd.InOrStdin())
			if provider == translate.ProviderCustomOpenAI {
				return authLoginCustomOpenAI(in)
			}
			return authLoginAPIKey(in, provider)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Provider to configure (required)")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.RegisterFlagCompletionFunc("provider", authProviderCompletion)
	return cmd
}

func authProviderIDs() []string {
	ids := make([]string, len(authProviders))
	for i, p := range authProviders {
		ids[i] = p.id
	}
	return ids
}

// prompt asks a question on stderr and reads one trimmed line.
func prompt(in *bufio.Scanner, format string, args ...any) (string, error) {
	fmt.Fprintf(os.Stderr, "  "+i18n.T(format), args...)
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no input received")
	}
	return strings.TrimSpace(in.Text()), nil
}

func authLoginAPIKey(in *bufio.Scanner, providerID string) error {
	var name, helpURL string
	for _, p := range authProviders {
		if p.id == providerID {
			name, helpURL = p.name, p.helpURL
		}
	}

	fmt.Fprintf(os.Stderr, "\n%s%s API Key Setup%s\n", colorBlue, name, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	if helpURL != "" {
		fmt.Fprintf(os.Stderr, "  Get your API key from: %s%s%s\n\n", colorGreen, helpURL, colorReset)
	}

	existing := settings.Get(providerID)
	var key string
	var err error
	if existing != nil && existing.Key != "" {
		fmt.Fprintf(os.Stderr, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(existing.Key), colorReset)
		key, err = prompt(in, "Enter new key to replace, or press Enter to keep: ")
	} else {
		key, err = prompt(in, "Enter API key: ")
	}
	if err != nil {
		return err
	}

	if key == "" {
		if existing != nil && existing.Key != "" {
			logInfo("Keeping existing key")
			return nil
		}
		return fmt.Errorf("no API key provided")
	}

	info := &settings.Info{Key: key}
	if existing != nil {
		info.BaseURL, info.Model = existing.BaseURL, existing.Model
	}
	if err := settings.Set(providerID, info); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}

	logSuccess("%s API key saved!", name)
	fmt.Fprintf(os.Stderr, "\n  You can now use: jsontrans translate --provider %s\n\n", providerID)
	return nil
}

func authLoginCustomOpenAI(in *bufio.Scanner) error {
	fmt.Fprintf(os.Stderr, "\n%sCustom OpenAI-Compatible Endpoint%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	existing := settings.Get(translate.ProviderCustomOpenAI)
	if existing == nil {
		existing = &settings.Info{}
	}

	ask := func(label, current string, required bool) (string, error) {
		var v string
		var err error
		if current != "" {
			v, err = prompt(in, "%s [%s]: ", label, current)
		} else {
			v, err = prompt(in, "%s: ", label)
		}
		if err != nil {
			return "", err
		}
		if v == "" {
			v = current
		}
		if v == "" && required {
			return "", fmt.Errorf("%s is required", strings.ToLower(label))
		}
		return v, nil
	}

	baseURL, err := ask("Endpoint URL (e.g., https://api.example.com/v1)", existing.BaseURL, true)
	if err != nil {
		return err
	}
	model, err := ask("Model", existing.Model, true)
	if err != nil {
		return err
	}
	masked := ""
	if existing.Key != "" {
		masked = settings.MaskKey(existing.Key)
	}
	key, err := ask("API key (optional)", masked, false)
	if err != nil {
		return err
	}
	if key == masked {
		key = existing.Key
	}

	if err := settings.Set(translate.ProviderCustomOpenAI, &settings.Info{Key: key, BaseURL: baseURL, Model: model}); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	logSuccess("Custom OpenAI endpoint saved!")
	fmt.Fprintf(os.Stderr, "\n  You can now use: jsontrans translate --provider custom-openai\n\n")
	return nil
}

func newAuthLogoutCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long: `Remove stored credentials for one or all providers.

If --provider is not specified, credentials for ALL providers are removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				logSuccess("All stored credentials removed")
				return nil
			}
			if !isAuthProvider(provider) {
				return fmt.Errorf("unknown provider '%s'. Run 'jsontrans auth list' to see providers", provider)
			}
			if err := settings.Remove(provider); err != nil {
				return fmt.Errorf("removing %s credentials: %w", provider, err)
			}
			logSuccess("%s credentials removed", provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to logout (default: all)")
	_ = cmd.RegisterFlagCompletionFunc("provider", authProviderCompletion)
	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored credentials and status",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			store := settings.Load()

			fmt.Fprintf(out, "\n%s%s%s (%s)\n", colorBlue, i18n.T("Stored Credentials"), colorReset, settings.FilePath())
			fmt.Fprintln(out, strings.Repeat("─", 60))
			for _, p := range authProviders {
				entry := store[p.id]
				switch {
				case entry != nil && entry.Key != "":
					fmt.Fprintf(out, "  %-15s %sconfigured%s (key: %s)\n", p.id, colorGreen, colorReset, settings.MaskKey(entry.Key))
				case entry != nil && entry.BaseURL != "":
					fmt.Fprintf(out, "  %-15s %sconfigured%s (no key)\n", p.id, colorGreen, colorReset)
				default:
					fmt.Fprintf(out, "  %-15s %snot configured%s\n", p.id, colorRed, colorReset)
					continue
				}
				if entry.BaseURL != "" {
					fmt.Fprintf(out, "  %15s endpoint: %s\n", "", entry.BaseURL)
				}
				if entry.Model != "" {
					fmt.Fprintf(out, "  %15s model: %s\n", "", entry.Model)
				}
			}

			fmt.Fprintf(out, "\n  %s%s%s\n", colorYellow, i18n.T("Environment Variables"), colorReset)
			seen := make(map[string]bool)
			for _, env := range append([]string{"JSONTRANS_API_KEY"}, envVarsOf(authProviderIDs())...) {
				if seen[env] {
					continue
				}
				seen[env] = true
				if v := os.Getenv(env); v != "" {
					fmt.Fprintf(out, "  %-24s %s%s%s\n", env, colorGreen, settings.MaskKey(v), colorReset)
				} else {
					fmt.Fprintf(out, "  %-24s %snot set%s\n", env, colorRed, colorReset)
				}
			}
			fmt.Fprintln(out)
		},
	}
}

func envVarsOf(providerIDs []string) []string {
	var vars []string
	for _, id := range providerIDs {
		if env := settings.EnvVarForProvider(id); env != "" {
			vars = append(vars, env)
		}
	}
	return vars
}
