package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}

	if got := N("file", "files", 1); got != "file" {
		t.Fatalf("N singular fallback = %q, want %q", got, "file")
	}

	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural fallback = %q, want %q", got, "files")
	}
}

func TestInitLoadsEmbeddedCatalogue(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	Init("ES")
	if got := T("Summary: %s"); got != "Resumen: %s" {
		t.Fatalf("T = %q, want %q", got, "Resumen: %s")
	}
	if got := N("%d string", "%d strings", 3); got != "%d cadenas" {
		t.Fatalf("N plural = %q, want %q", got, "%d cadenas")
	}
	if got := T("not in the catalogue"); got != "not in the catalogue" {
		t.Fatalf("T untranslated = %q", got)
	}
}

func TestLocaleDir(t *testing.T) {
	tests := map[string]string{
		"es":    "es",
		"ES":    "es",
		"pt_br": "pt_BR",
		"ru_RU": "ru_RU",
		"zh-TW": "zh_TW",
	}
	for in, want := range tests {
		if got := localeDir(in); got != want {
			t.Errorf("localeDir(%q) = %q, want %q", in, got, want)
		}
	}
}
