// Package translate drives the translation of JSON documents through a
// pluggable translation engine (the Translator interface), batch by batch,
// with retries, progress reporting and partial-failure semantics.
//
// Engines are provided for OpenAI (openai-go), Google Gemini (genai),
// OpenAI-compatible HTTP services (Groq, Ollama, custom endpoints) and
// LibreTranslate. An echo engine returns its input unchanged.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/minios-linux/jsontrans/document"
	"github.com/minios-linux/jsontrans/protect"
)

// Translator translates an ordered batch of strings. The result must have
// the same length and order as items.
type Translator interface {
	TranslateBatch(ctx context.Context, items []string, source, target string) ([]string, error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(ctx context.Context, items []string, source, target string) ([]string, error)

// TranslateBatch calls f.
func (f TranslatorFunc) TranslateBatch(ctx context.Context, items []string, source, target string) ([]string, error) {
	return f(ctx, items, source, target)
}

// ErrPortFailure marks a batch that could not be translated: the engine
// returned an error or a result of the wrong length.
var ErrPortFailure = errors.New("translation engine failure")

// BatchError is returned when a batch still fails after all retries.
type BatchError struct {
	// Batch is the zero-based batch index within the language.
	Batch    int
	Attempts int
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d failed after %d attempt(s): %v", e.Batch+1, e.Attempts, e.Err)
}

func (e *BatchError) Unwrap() []error { return []error{ErrPortFailure, e.Err} }

// ---------------------------------------------------------------------------
// Translation options
// ---------------------------------------------------------------------------

// Progress is reported after every batch.
type Progress struct {
	Language string
	Done     int
	Total    int
}

// Options controls the translation run.
type Options struct {
	// SourceLang is the language of the input document (e.g., "es").
	SourceLang string
	// BatchSize is how many strings are sent per engine call (0 = all at once).
	BatchSize int
	// MaxRetries is how many times a failed batch is retried. Default: 3;
	// a negative value disables retries.
	MaxRetries int
	// RetryDelay is the pause before retrying a failed batch.
	RetryDelay time.Duration
	// MaxChars, if positive, warns about strings longer than this many
	// characters. Nothing is truncated.
	MaxChars int
	// Parallel translates languages concurrently.
	Parallel bool
	// MaxConcurrent is the number of languages translated at once in
	// parallel mode. Default: 3.
	MaxConcurrent int
	// RequestDelay is the delay between launching parallel languages.
	RequestDelay time.Duration
	// OnProgress is called after each batch. It must not block.
	OnProgress func(Progress)
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits error messages during translation.
	OnError func(format string, args ...any)
	// Verbose enables detailed logging.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveBatchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return 0 // 0 means all at once
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	if o.MaxRetries < 0 {
		return 0
	}
	return 3
}

func (o *Options) effectiveMaxConcurrent() int {
	if o.MaxConcurrent > 0 {
		return o.MaxConcurrent
	}
	return 3
}

// ---------------------------------------------------------------------------
// Jobs and results
// ---------------------------------------------------------------------------

// Job is the translation of one document into one target language.
type Job struct {
	Language   string
	Translator Translator
	Root       document.Value
	// Reuse maps locator keys (document.Locator.Key) to existing
	// translations that are kept instead of being sent to the engine.
	Reuse map[string]string
}

// Result is the outcome of a Job.
type Result struct {
	Language string
	// Document is the translated document. It is the zero Value when Err
	// is set.
	Document document.Value
	Issues   []protect.Issue
	// Translated, Reused and Failed count string leaves.
	Translated int
	Reused     int
	Failed     int
	// Untranslated holds the locator keys of leaves left in the source
	// language because their batch failed.
	Untranslated []string
	// Mismatched holds the locator keys of leaves whose placeholders could
	// not be restored exactly.
	Mismatched []string
	// Err is a fatal error for this language; no output should be written.
	Err error
}

// OK reports whether the language was translated without failed batches.
func (r *Result) OK() bool {
	return r.Err == nil && r.Failed == 0
}

// TranslateDocument translates every string leaf of job.Root.
//
// Batches are sent one at a time and the context is checked between them.
// A batch that keeps failing is left untranslated and recorded as a
// PortFailure issue; the run continues with the next batch. On
// cancellation the partial document is discarded and ctx.Err() returned.
func TranslateDocument(ctx context.Context, job Job, opts Options) (*Result, error) {
	res := &Result{Language: job.Language}
	p := protect.Prepare(job.Root)
	res.Issues = append(res.Issues, p.Skipped...)
	for _, iss := range p.Skipped {
		opts.log("Warning: %s: %v", job.Language, iss)
	}

	// Failed batches keep the masked source, which unmasks back to the source.
	translated := p.Texts()
	reuse := make(document.Replacements)
	var pending []int
	for i, loc := range p.Locators {
		if text, ok := job.Reuse[loc.Key()]; ok {
			reuse[loc.Key()] = text
			continue
		}
		pending = append(pending, i)
		if opts.MaxChars > 0 {
			if n := utf8.RuneCountInString(p.Items[i].Source); n > opts.MaxChars {
				opts.log("Warning: %s: %s is %d characters long (limit %d)", job.Language, displayLocator(loc), n, opts.MaxChars)
			}
		}
	}
	res.Reused = len(reuse)

	total := len(p.Items)
	done := res.Reused
	batches := protect.Split(len(pending), opts.effectiveBatchSize())
	for bi, span := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items := make([]string, span.Len())
		for j := range items {
			items[j] = translated[pending[span.Start+j]]
		}

		if opts.Verbose {
			opts.log("  %s: batch %d/%d (%d strings)", job.Language, bi+1, len(batches), len(items))
		}

		out, err := translateBatch(ctx, job.Translator, items, bi, job.Language, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			opts.logError("Error translating %s: %v", job.Language, err)
			res.Issues = append(res.Issues, protect.Issue{Kind: protect.PortFailure, Batch: bi, Err: err})
			res.Failed += len(items)
			for j := span.Start; j < span.End; j++ {
				res.Untranslated = append(res.Untranslated, p.Locators[pending[j]].Key())
			}
		} else {
			for j, text := range out {
				translated[pending[span.Start+j]] = text
			}
			res.Translated += len(items)
		}

		done += len(items)
		if opts.OnProgress != nil {
			opts.OnProgress(Progress{Language: job.Language, Done: done, Total: total})
		}
	}

	out, issues, err := protect.Finalize(job.Root, p, translated)
	if err != nil {
		return nil, fmt.Errorf("rebuilding %s: %w", job.Language, err)
	}
	for _, iss := range issues {
		opts.log("Warning: %s: %v", job.Language, iss)
		if iss.Kind == protect.RestorationMismatch {
			res.Mismatched = append(res.Mismatched, iss.Locator.Key())
		}
	}
	res.Issues = append(res.Issues, issues...)

	if len(reuse) > 0 {
		if out, err = document.Rebuild(out, reuse); err != nil {
			return nil, fmt.Errorf("applying existing translations for %s: %w", job.Language, err)
		}
	}
	res.Document = out
	return res, nil
}

// translateBatch calls the engine, retrying on errors and wrong-length
// results.
func translateBatch(ctx context.Context, tr Translator, items []string, batch int, lang string, opts Options) ([]string, error) {
	maxRetries := opts.effectiveMaxRetries()
	var lastErr error
	attempt := 0
	for ; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if opts.Verbose {
				opts.log("  %s: retrying batch %d (attempt %d/%d): %v", lang, batch+1, attempt+1, maxRetries+1, lastErr)
			}
			if opts.RetryDelay > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(opts.RetryDelay):
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := tr.TranslateBatch(ctx, items, opts.SourceLang, lang)
		if err == nil && len(out) == len(items) {
			return out, nil
		}
		if err == nil {
			err = fmt.Errorf("got %d translations, expected %d", len(out), len(items))
		}
		lastErr = err
	}
	return nil, &BatchError{Batch: batch, Attempts: attempt, Err: lastErr}
}

func displayLocator(loc document.Locator) string {
	if s := loc.String(); s != "" {
		return s
	}
	return "/"
}

// ---------------------------------------------------------------------------
// Multi-language translation
// ---------------------------------------------------------------------------

// TranslateAll runs jobs sequentially, or concurrently when opts.Parallel
// is set. Results are returned in job order. A language that fails with a
// fatal error gets a Result with Err set; the other languages continue.
// The returned error is non-nil only when ctx was cancelled.
func TranslateAll(ctx context.Context, jobs []Job, opts Options) ([]*Result, error) {
	if opts.Parallel {
		return translateParallel(ctx, jobs, opts)
	}
	return translateSequential(ctx, jobs, opts)
}

func translateSequential(ctx context.Context, jobs []Job, opts Options) ([]*Result, error) {
	var results []*Result
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		res, err := TranslateDocument(ctx, job, opts)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			opts.logError("Error translating %s: %v", job.Language, err)
			res = &Result{Language: job.Language, Err: err}
		}
		results = append(results, res)
	}
	return results, nil
}

func translateParallel(ctx context.Context, jobs []Job, opts Options) ([]*Result, error) {
	type indexedJob struct {
		idx int
		job Job
	}
	tasks := make([]indexedJob, len(jobs))
	for i, job := range jobs {
		tasks[i] = indexedJob{idx: i, job: job}
	}

	results := make([]*Result, len(jobs))
	err := runParallelGeneric(ctx, tasks, opts.effectiveMaxConcurrent(), opts.RequestDelay, func(ctx context.Context, t indexedJob) error {
		res, err := TranslateDocument(ctx, t.job, opts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			opts.logError("Error translating %s: %v", t.job.Language, err)
			res = &Result{Language: t.job.Language, Err: err}
		}
		results[t.idx] = res
		return nil
	})

	if ctx.Err() != nil {
		return compact(results), ctx.Err()
	}
	return results, err
}

func compact(results []*Result) []*Result {
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// FailedLanguages returns the languages whose result is not OK.
func FailedLanguages(results []*Result) []string {
	var failed []string
	for _, r := range results {
		if !r.OK() {
			failed = append(failed, r.Language)
		}
	}
	return failed
}

// Summary describes results in one line, e.g. "2 succeeded, 1 failed: fr".
func Summary(results []*Result) string {
	failed := FailedLanguages(results)
	ok := len(results) - len(failed)
	if len(failed) == 0 {
		return fmt.Sprintf("%d succeeded", ok)
	}
	return fmt.Sprintf("%d succeeded, %d failed: %s", ok, len(failed), strings.Join(failed, ", "))
}

// ---------------------------------------------------------------------------
// Generic parallel runner
// ---------------------------------------------------------------------------

// runParallelGeneric runs any typed tasks in parallel with concurrency limit and delay.
func runParallelGeneric[T any](ctx context.Context, tasks []T, maxConcurrent int, delay time.Duration, fn func(context.Context, T) error) error {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

launch:
	for i, task := range tasks {
		if ctx.Err() != nil {
			break
		}

		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				break launch
			case <-time.After(delay):
			}
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(t T) {
			defer func() {
				<-sem
				wg.Done()
			}()

			if err := fn(ctx, t); err != nil {
				errOnce.Do(func() {
					firstErr = err
				})
			}
		}(task)
	}

	wg.Wait()
	return firstErr
}
