// Package placeholder protects interpolation placeholders inside strings
// that are about to be machine translated.
//
// Three placeholder families are recognized:
//
//	brace         {name}        identifier [A-Za-z_][A-Za-z0-9_]*
//	printf        %s %d %i %f %g %c %r
//	named-printf  %(name)s      same identifier and conversion set
//
// Mask replaces every placeholder with an opaque marker ⟨PLACEHOLDER_i⟩
// and returns the original placeholder texts in left-to-right order.
// Unmask puts them back after translation and reports when the translation
// engine dropped, duplicated or reordered markers.
package placeholder

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies a placeholder grammar.
type Kind int

const (
	Brace Kind = iota
	Printf
	NamedPrintf
)

func (k Kind) String() string {
	switch k {
	case Brace:
		return "brace"
	case Printf:
		return "printf"
	case NamedPrintf:
		return "named-printf"
	}
	return "unknown"
}

// Span is a placeholder found in a source string.
type Span struct {
	Kind Kind
	// Start is the byte offset of the placeholder in the source string.
	Start int
	Text  string
}

// Masked is a string with its placeholders replaced by markers.
type Masked struct {
	Text string
	// Recovery holds the original placeholder texts; Recovery[i] belongs
	// to marker i.
	Recovery []string
}

var (
	// ErrUnsafeMarkerCollision is returned by Mask when the source string
	// already contains marker text, so masking could not be undone safely.
	ErrUnsafeMarkerCollision = errors.New("source text already contains placeholder marker")

	// ErrRestorationMismatch is returned by Unmask when the markers found in
	// a translated string do not match the recovery list.
	ErrRestorationMismatch = errors.New("placeholder markers lost or reordered in translation")
)

const (
	markerOpen  = "⟨"
	markerWord  = "PLACEHOLDER_"
	markerClose = "⟩"
)

// Patterns are anchored and only tried at '%' or '{'. Order is precedence.
var grammars = []struct {
	kind Kind
	re   *regexp.Regexp
}{
	{NamedPrintf, regexp.MustCompile(`^%\([A-Za-z_][A-Za-z0-9_]*\)[sdifgcr]`)},
	{Printf, regexp.MustCompile(`^%[sdifgcr]`)},
	{Brace, regexp.MustCompile(`^\{[A-Za-z_][A-Za-z0-9_]*\}`)},
}

// markerPattern matches markers, tolerating whitespace an engine may insert.
// \p{Zs} covers the no-break spaces French typography puts inside brackets.
var markerPattern = regexp.MustCompile(`⟨[\s\p{Zs}]*PLACEHOLDER_(\d+)[\s\p{Zs}]*⟩`)

// Marker returns the marker text for recovery index i.
func Marker(i int) string {
	return markerOpen + markerWord + strconv.Itoa(i) + markerClose
}

// match returns the placeholder starting at s[i:], if any.
func match(s string, i int) (Kind, int, bool) {
	if s[i] != '%' && s[i] != '{' {
		return 0, 0, false
	}
	for _, g := range grammars {
		if loc := g.re.FindStringIndex(s[i:]); loc != nil {
			return g.kind, loc[1], true
		}
	}
	return 0, 0, false
}

// Find returns the placeholders of s in left-to-right order. Spans never
// overlap; when grammars compete at the same offset, named-printf wins over
// printf, which wins over brace.
func Find(s string) []Span {
	var spans []Span
	for i := 0; i < len(s); {
		kind, n, ok := match(s, i)
		if !ok {
			i++
			continue
		}
		spans = append(spans, Span{Kind: kind, Start: i, Text: s[i : i+n]})
		i += n
	}
	return spans
}

// Mask replaces each placeholder of s with a marker.
func Mask(s string) (Masked, error) {
	if strings.Contains(s, markerOpen+markerWord) || markerPattern.MatchString(s) {
		return Masked{Text: s}, ErrUnsafeMarkerCollision
	}

	spans := Find(s)
	if len(spans) == 0 {
		return Masked{Text: s}, nil
	}

	var b strings.Builder
	recovery := make([]string, 0, len(spans))
	prev := 0
	for i, sp := range spans {
		b.WriteString(s[prev:sp.Start])
		b.WriteString(Marker(i))
		recovery = append(recovery, sp.Text)
		prev = sp.Start + len(sp.Text)
	}
	b.WriteString(s[prev:])
	return Masked{Text: b.String(), Recovery: recovery}, nil
}

// MismatchError describes how the markers of a translated string differ
// from the recovery list.
type MismatchError struct {
	// Expected is the number of placeholders that were masked.
	Expected int
	// Found is the number of markers present in the translated text.
	Found int
	// OutOfOrder is set when markers appear out of index sequence.
	OutOfOrder bool
	// Unknown counts markers whose index has no recovery entry.
	Unknown int
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("expected %d placeholder(s), found %d", e.Expected, e.Found)
	if e.OutOfOrder {
		msg += ", out of order"
	}
	if e.Unknown > 0 {
		msg += fmt.Sprintf(", %d unknown", e.Unknown)
	}
	return msg + ": " + ErrRestorationMismatch.Error()
}

func (e *MismatchError) Unwrap() error { return ErrRestorationMismatch }

// Unmask restores the placeholders of a masked (and possibly translated)
// string. Each marker is replaced by the recovery entry with its index.
//
// When markers are missing, duplicated, out of sequence or carry an
// unknown index, Unmask still returns the best-effort restored text along
// with a *MismatchError; markers with unknown indexes are left verbatim.
// The caller decides whether to keep that text.
func Unmask(s string, recovery []string) (string, error) {
	matches := markerPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		if len(recovery) == 0 {
			return s, nil
		}
		return s, &MismatchError{Expected: len(recovery)}
	}

	mm := MismatchError{Expected: len(recovery), Found: len(matches)}
	var b strings.Builder
	prev := 0
	for k, m := range matches {
		b.WriteString(s[prev:m[0]])
		prev = m[1]

		idx, err := strconv.Atoi(s[m[2]:m[3]])
		if err != nil || idx >= len(recovery) {
			mm.Unknown++
			b.WriteString(s[m[0]:m[1]])
			continue
		}
		if idx != k {
			mm.OutOfOrder = true
		}
		b.WriteString(recovery[idx])
	}
	b.WriteString(s[prev:])

	if mm.Found != mm.Expected || mm.OutOfOrder || mm.Unknown > 0 {
		return b.String(), &mm
	}
	return b.String(), nil
}
