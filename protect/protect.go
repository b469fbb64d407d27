// Package protect composes document traversal with placeholder masking.
//
// Prepare turns a document into an ordered list of masked strings ready to
// be sent to a translation engine in batches. Finalize takes the translated
// strings back in the same order, restores placeholders and rebuilds the
// document. Per-string problems never abort a document; they are returned
// as Issues attributable to a locator.
package protect

import (
	"errors"
	"fmt"

	"github.com/minios-linux/jsontrans/document"
	"github.com/minios-linux/jsontrans/placeholder"
)

// ErrLengthMismatch is returned by Finalize when the number of translated
// strings differs from the number of prepared items.
var ErrLengthMismatch = errors.New("translated strings do not match prepared items")

// IssueKind classifies a non-fatal problem.
type IssueKind int

const (
	// UnsafeMarkerCollision: the source already contained marker text and
	// was sent unmasked.
	UnsafeMarkerCollision IssueKind = iota
	// RestorationMismatch: markers were lost or reordered; the best-effort
	// text was kept.
	RestorationMismatch
	// PortFailure: a batch could not be translated and its source strings
	// were kept.
	PortFailure
)

func (k IssueKind) String() string {
	switch k {
	case UnsafeMarkerCollision:
		return "unsafe marker collision"
	case RestorationMismatch:
		return "restoration mismatch"
	case PortFailure:
		return "translation failure"
	}
	return "unknown"
}

// Issue is a per-string or per-batch problem.
type Issue struct {
	Kind IssueKind
	// Locator is set for per-string issues.
	Locator document.Locator
	// Batch is the zero-based batch index, or -1 when not batch related.
	Batch int
	Err   error
}

func (i Issue) Error() string {
	switch {
	case i.Batch >= 0:
		return fmt.Sprintf("batch %d: %s: %v", i.Batch+1, i.Kind, i.Err)
	case i.Locator != nil:
		loc := i.Locator.String()
		if loc == "" {
			loc = "/"
		}
		return fmt.Sprintf("%s: %s: %v", loc, i.Kind, i.Err)
	}
	return fmt.Sprintf("%s: %v", i.Kind, i.Err)
}

func (i Issue) Unwrap() error { return i.Err }

// Item is one string leaf prepared for translation.
type Item struct {
	// Masked is the text to send to the translation engine.
	Masked   string
	Recovery []string
	// Source is the original leaf text.
	Source string
	// Unsafe is set when Source could not be masked; Masked equals Source.
	Unsafe bool
}

// Prepared is the result of Prepare. Locators[i] belongs to Items[i].
type Prepared struct {
	Locators []document.Locator
	Items    []Item
	Skipped  []Issue
}

// Texts returns the masked texts in item order.
func (p *Prepared) Texts() []string {
	out := make([]string, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.Masked
	}
	return out
}

// Placeholders returns the total number of masked placeholders.
func (p *Prepared) Placeholders() int {
	n := 0
	for _, it := range p.Items {
		n += len(it.Recovery)
	}
	return n
}

// Prepare collects every string leaf of root in traversal order and masks
// its placeholders.
func Prepare(root document.Value) *Prepared {
	leaves := document.Collect(root)
	p := &Prepared{
		Locators: make([]document.Locator, len(leaves)),
		Items:    make([]Item, len(leaves)),
	}
	for i, leaf := range leaves {
		p.Locators[i] = leaf.Locator
		m, err := placeholder.Mask(leaf.Text)
		if err != nil {
			p.Items[i] = Item{Masked: leaf.Text, Source: leaf.Text, Unsafe: true}
			p.Skipped = append(p.Skipped, Issue{
				Kind:    UnsafeMarkerCollision,
				Locator: leaf.Locator,
				Batch:   -1,
				Err:     err,
			})
			continue
		}
		p.Items[i] = Item{Masked: m.Text, Recovery: m.Recovery, Source: leaf.Text}
	}
	return p
}

// Span is a half-open range [Start, End) of item indexes forming a batch.
type Span struct {
	Start, End int
}

// Len returns the number of items in the span.
func (s Span) Len() int { return s.End - s.Start }

// Split divides n items into consecutive batches of at most size items.
// A size <= 0 puts everything into a single batch.
func Split(n, size int) []Span {
	if n <= 0 {
		return nil
	}
	if size <= 0 || size > n {
		size = n
	}
	spans := make([]Span, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

// Finalize restores placeholders in translated (index i corresponds to
// p.Items[i]) and rebuilds root with the results.
//
// Restoration mismatches keep the best-effort text and are reported as
// issues. The returned error is reserved for integration failures: a
// length mismatch or a locator that does not belong to root.
func Finalize(root document.Value, p *Prepared, translated []string) (document.Value, []Issue, error) {
	if len(translated) != len(p.Items) {
		return document.Value{}, nil, fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(translated), len(p.Items))
	}

	var issues []Issue
	repl := make(document.Replacements, len(p.Items))
	for i, it := range p.Items {
		text := translated[i]
		if !it.Unsafe {
			restored, err := placeholder.Unmask(text, it.Recovery)
			if err != nil {
				issues = append(issues, Issue{
					Kind:    RestorationMismatch,
					Locator: p.Locators[i],
					Batch:   -1,
					Err:     err,
				})
			}
			text = restored
		}
		repl.Set(p.Locators[i], text)
	}

	out, err := document.Rebuild(root, repl)
	if err != nil {
		return document.Value{}, issues, err
	}
	return out, issues, nil
}
