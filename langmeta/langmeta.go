// Package langmeta provides language metadata (names, emoji flags, tag
// validation) and the table of language pairs supported by dedicated
// machine-translation engines.
package langmeta

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Code is the canonical BCP 47 tag (e.g., "pt-BR").
	Code string
	// Name is the language's own name for itself (e.g., "Español").
	Name string
	// English is the English name (e.g., "Spanish").
	English string
	Flag    string
}

// Canonicalize normalizes a language code: underscores become hyphens and
// casing follows BCP 47 ("pt_br" -> "pt-BR").
func Canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	tag, err := language.Parse(normalized)
	if err != nil {
		return normalized
	}
	return tag.String()
}

// Validate reports whether lang is a well-formed language tag with a known
// base language.
func Validate(lang string) error {
	if strings.TrimSpace(lang) == "" {
		return fmt.Errorf("empty language code")
	}
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return fmt.Errorf("invalid language code %q: %w", lang, err)
	}
	if base, conf := tag.Base(); conf == language.No || base.String() == "und" {
		return fmt.Errorf("unknown language %q", lang)
	}
	return nil
}

// Resolve returns best-effort language metadata for lang. Unknown codes
// yield the code itself as name and no flag.
func Resolve(lang string) Meta {
	code := Canonicalize(lang)
	tag, err := language.Parse(code)
	if err != nil {
		return Meta{Code: lang, Name: lang, English: lang}
	}
	m := Meta{
		Code:    code,
		Name:    display.Self.Name(tag),
		English: display.English.Tags().Name(tag),
		Flag:    flagFor(tag),
	}
	if m.Name == "" {
		m.Name = code
	}
	if m.English == "" {
		m.English = code
	}
	return m
}

// EnglishName returns the English name of lang, or lang when unknown.
func EnglishName(lang string) string {
	return Resolve(lang).English
}

// NativeName returns the name of lang in that language, or lang when unknown.
func NativeName(lang string) string {
	return Resolve(lang).Name
}

// Some base languages map to a region whose flag would be misleading.
var flagOverrides = map[string]string{
	"ca": "AD",
	"eu": "ES",
	"gl": "ES",
	"cy": "GB",
	"eo": "",
}

// flagFor returns the emoji flag of the tag's region, or of the most likely
// region for its language.
func flagFor(tag language.Tag) string {
	region, conf := tag.Region()
	code := region.String()
	if conf != language.Exact {
		base, _ := tag.Base()
		if override, ok := flagOverrides[base.String()]; ok {
			code = override
		}
	}
	return FlagFromRegion(code)
}

// FlagFromRegion converts an ISO 3166-1 alpha-2 region to its emoji flag.
func FlagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	region = strings.ToUpper(region)
	var b strings.Builder
	for _, c := range region {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Machine-translation pairs
// ---------------------------------------------------------------------------

// MTPairs lists, per source language, the target languages that dedicated
// machine-translation models cover.
var MTPairs = map[string][]string{
	"es": {"en", "fr", "ca", "de"},
	"en": {"es", "fr", "de", "ca"},
	"fr": {"es", "en", "de"},
	"ca": {"es", "en"},
	"de": {"es", "en", "fr"},
}

// SupportsPair reports whether MTPairs covers source -> target. Regions
// are ignored ("pt-BR" is treated as "pt").
func SupportsPair(source, target string) bool {
	src, tgt := baseOf(source), baseOf(target)
	for _, t := range MTPairs[src] {
		if t == tgt {
			return true
		}
	}
	return false
}

// Pair is a source -> target language pair.
type Pair struct {
	Source, Target string
}

func (p Pair) String() string { return p.Source + "-" + p.Target }

// Pairs returns every pair in MTPairs sorted by source, then target.
func Pairs() []Pair {
	var pairs []Pair
	for src, targets := range MTPairs {
		for _, tgt := range targets {
			pairs = append(pairs, Pair{Source: src, Target: tgt})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Source != pairs[j].Source {
			return pairs[i].Source < pairs[j].Source
		}
		return pairs[i].Target < pairs[j].Target
	})
	return pairs
}

// ParsePair parses "es-en" (or "es:en") into a Pair.
func ParsePair(s string) (Pair, error) {
	sep := strings.Index(s, ":")
	if sep < 0 {
		// "pt-BR-en" is ambiguous; regional pairs need the colon form.
		sep = strings.Index(s, "-")
	}
	if sep <= 0 || sep == len(s)-1 {
		return Pair{}, fmt.Errorf("invalid language pair %q (want source-target)", s)
	}
	p := Pair{Source: Canonicalize(s[:sep]), Target: Canonicalize(s[sep+1:])}
	if err := Validate(p.Source); err != nil {
		return Pair{}, err
	}
	if err := Validate(p.Target); err != nil {
		return Pair{}, err
	}
	return p, nil
}

func baseOf(lang string) string {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return strings.ToLower(lang)
	}
	base, _ := tag.Base()
	return base.String()
}
