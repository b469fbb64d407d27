// Package i18n translates the jsontrans command-line interface.
//
// It wraps gotext with T() and N() helpers. Catalogues are embedded in the
// binary and loaded once by Init():
//
//	i18n.Init("")  // auto-detect from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	fmt.Println(i18n.T("Translation complete"))
//	fmt.Println(i18n.N("%d string", "%d strings", count))
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"

	"github.com/minios-linux/jsontrans/langmeta"
)

// Directory structure: locales/{lang}/LC_MESSAGES/jsontrans.po
//
//go:embed all:locales
var locales embed.FS

const domain = "jsontrans"

var po *gotext.Locale

// Init loads the catalogue for lang. If lang is empty, it is detected from
// LANGUAGE, LC_ALL, LC_MESSAGES and LANG in GNU gettext order.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(localeDir(lang), locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// localeDir maps a locale name to its catalogue directory: the canonical
// language tag in gettext form, so "ES" and "pt_br" find "es" and "pt_BR".
func localeDir(lang string) string {
	return strings.ReplaceAll(langmeta.Canonicalize(lang), "-", "_")
}

// T translates a string, returning msgid when no translation exists.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a string with plural forms. The singular form is used
// when n == 1, the plural form otherwise (exact rules depend on the
// target language's plural formula).
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage reads environment variables to determine the user's
// preferred language, following GNU gettext conventions.
func detectLanguage() string {
	// GNU gettext priority: LANGUAGE > LC_ALL > LC_MESSAGES > LANG
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			// LANGUAGE can be a colon-separated list; take the first
			if env == "LANGUAGE" {
				parts := strings.SplitN(val, ":", 2)
				val = parts[0]
			}
			// Strip encoding suffix (e.g. "ru_RU.UTF-8" -> "ru_RU")
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			// "C" and "POSIX" mean no translation
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}
