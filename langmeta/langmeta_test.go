package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := Canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	for _, ok := range []string{"es", "en", "pt_BR", "ca", "zh-Hans"} {
		if err := Validate(ok); err != nil {
			t.Errorf("Validate(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "  ", "not a language", "e$"} {
		if err := Validate(bad); err == nil {
			t.Errorf("Validate(%q) succeeded, want error", bad)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("english names", func(t *testing.T) {
		for code, want := range map[string]string{
			"es": "Spanish",
			"en": "English",
			"ca": "Catalan",
			"fr": "French",
			"de": "German",
		} {
			if got := EnglishName(code); got != want {
				t.Errorf("EnglishName(%q) = %q, want %q", code, got, want)
			}
		}
	})

	t.Run("native name", func(t *testing.T) {
		if got := NativeName("es"); got != "español" {
			t.Fatalf("NativeName(es) = %q", got)
		}
	})

	t.Run("regional flag", func(t *testing.T) {
		got := Resolve("pt_br")
		if got.Code != "pt-BR" || got.Flag != "🇧🇷" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("override flag", func(t *testing.T) {
		if got := Resolve("ca"); got.Flag != "🇦🇩" {
			t.Fatalf("Resolve(ca).Flag = %q", got.Flag)
		}
	})

	t.Run("unknown passthrough", func(t *testing.T) {
		got := Resolve("zz-ZZ")
		if got.Name != "zz-ZZ" || got.English != "zz-ZZ" || got.Flag != "" {
			t.Fatalf("unexpected unknown result: %#v", got)
		}
	})
}

func TestFlagFromRegion(t *testing.T) {
	if got := FlagFromRegion("es"); got != "🇪🇸" {
		t.Errorf("FlagFromRegion(es) = %q", got)
	}
	for _, bad := range []string{"", "E", "ESP", "1A"} {
		if got := FlagFromRegion(bad); got != "" {
			t.Errorf("FlagFromRegion(%q) = %q, want empty", bad, got)
		}
	}
}

func TestSupportsPair(t *testing.T) {
	cases := []struct {
		src, tgt string
		want     bool
	}{
		{"es", "en", true},
		{"es", "ca", true},
		{"en", "ca", true},
		{"ca", "fr", false},
		{"es-ES", "en_US", true},
		{"ja", "en", false},
	}
	for _, tc := range cases {
		if got := SupportsPair(tc.src, tc.tgt); got != tc.want {
			t.Errorf("SupportsPair(%q, %q) = %v, want %v", tc.src, tc.tgt, got, tc.want)
		}
	}
}

func TestPairsSorted(t *testing.T) {
	pairs := Pairs()
	if len(pairs) != 16 {
		t.Fatalf("len(Pairs()) = %d, want 16", len(pairs))
	}
	if pairs[0].String() != "ca-en" || pairs[len(pairs)-1].String() != "fr-es" {
		t.Fatalf("unexpected order: first=%s last=%s", pairs[0], pairs[len(pairs)-1])
	}
}

func TestParsePair(t *testing.T) {
	p, err := ParsePair("es-en")
	if err != nil || p != (Pair{"es", "en"}) {
		t.Fatalf("ParsePair(es-en) = %v, %v", p, err)
	}
	p, err = ParsePair("pt_BR:en")
	if err != nil || p != (Pair{"pt-BR", "en"}) {
		t.Fatalf("ParsePair(pt_BR:en) = %v, %v", p, err)
	}
	for _, bad := range []string{"es", "-en", "es-", "es-??"} {
		if _, err := ParsePair(bad); err == nil {
			t.Errorf("ParsePair(%q) succeeded, want error", bad)
		}
	}
}
