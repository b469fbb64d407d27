package placeholder

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Find
// ---------------------------------------------------------------------------

func TestFind(t *testing.T) {
	tests := []struct {
		in   string
		want []Span
	}{
		{"Hola {name}", []Span{{Brace, 5, "{name}"}}},
		{"Tienes %d mensajes", []Span{{Printf, 7, "%d"}}},
		{"%(count)s items", []Span{{NamedPrintf, 0, "%(count)s"}}},
		{"{a}{b}", []Span{{Brace, 0, "{a}"}, {Brace, 3, "{b}"}}},
		{"%%s", []Span{{Printf, 1, "%s"}}},
		{"{%s}", []Span{{Printf, 1, "%s"}}},
		{"%(name)x %z {0} {} { a }", nil},
		{"100% seguro", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := Find(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Find(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestFindPrecedence(t *testing.T) {
	// named-printf must not be split into "%(" + ... + printf
	spans := Find("%(user_1)d")
	if len(spans) != 1 || spans[0].Kind != NamedPrintf {
		t.Fatalf("Find = %+v, want single named-printf span", spans)
	}
}

func TestKindString(t *testing.T) {
	if Brace.String() != "brace" || Printf.String() != "printf" || NamedPrintf.String() != "named-printf" {
		t.Errorf("unexpected kind names: %s %s %s", Brace, Printf, NamedPrintf)
	}
}

// ---------------------------------------------------------------------------
// Mask
// ---------------------------------------------------------------------------

func TestMaskScenario(t *testing.T) {
	m, err := Mask("Hola {name}")
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	if m.Text != "Hola ⟨PLACEHOLDER_0⟩" {
		t.Errorf("Text = %q", m.Text)
	}
	if !reflect.DeepEqual(m.Recovery, []string{"{name}"}) {
		t.Errorf("Recovery = %q", m.Recovery)
	}

	m, err = Mask("Tienes %d mensajes de %(who)s en {box}")
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	want := "Tienes ⟨PLACEHOLDER_0⟩ mensajes de ⟨PLACEHOLDER_1⟩ en ⟨PLACEHOLDER_2⟩"
	if m.Text != want {
		t.Errorf("Text = %q, want %q", m.Text, want)
	}
	if !reflect.DeepEqual(m.Recovery, []string{"%d", "%(who)s", "{box}"}) {
		t.Errorf("Recovery = %q", m.Recovery)
	}
}

func TestMaskWithoutPlaceholders(t *testing.T) {
	m, err := Mask("Buenos días")
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	if m.Text != "Buenos días" || len(m.Recovery) != 0 {
		t.Errorf("Mask = %+v", m)
	}
}

func TestMaskCollision(t *testing.T) {
	for _, s := range []string{
		"ya tiene ⟨PLACEHOLDER_0⟩",
		"⟨PLACEHOLDER",
		"⟨ PLACEHOLDER_3 ⟩ {x}",
	} {
		m, err := Mask(s)
		if !errors.Is(err, ErrUnsafeMarkerCollision) {
			t.Errorf("Mask(%q) error = %v, want ErrUnsafeMarkerCollision", s, err)
		}
		if m.Text != s || len(m.Recovery) != 0 {
			t.Errorf("Mask(%q) = %+v, want text unchanged", s, m)
		}
	}
}

func TestMarkersMatchNoGrammar(t *testing.T) {
	if spans := Find(Marker(0) + Marker(12)); len(spans) != 0 {
		t.Errorf("markers detected as placeholders: %+v", spans)
	}
}

// ---------------------------------------------------------------------------
// Unmask
// ---------------------------------------------------------------------------

func TestUnmaskTranslated(t *testing.T) {
	got, err := Unmask("Hello ⟨PLACEHOLDER_0⟩", []string{"{name}"})
	if err != nil {
		t.Fatalf("Unmask: %v", err)
	}
	if got != "Hello {name}" {
		t.Errorf("Unmask = %q", got)
	}
}

func TestUnmaskToleratesWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii spaces", "You have ⟨ PLACEHOLDER_0 ⟩ messages", "You have %d messages"},
		{"no-break space", "Vous avez ⟨\u00a0PLACEHOLDER_0\u00a0⟩ messages", "Vous avez %d messages"},
		{"narrow no-break space", "Vous avez ⟨PLACEHOLDER_0\u202f⟩ messages", "Vous avez %d messages"},
	}
	for _, tc := range tests {
		got, err := Unmask(tc.in, []string{"%d"})
		if err != nil {
			t.Fatalf("%s: Unmask: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: Unmask = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestUnmaskMismatch(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		recovery []string
		want     string
		mm       MismatchError
	}{
		{
			name:     "dropped",
			in:       "Hello",
			recovery: []string{"{name}"},
			want:     "Hello",
			mm:       MismatchError{Expected: 1, Found: 0},
		},
		{
			name:     "duplicated",
			in:       "⟨PLACEHOLDER_0⟩ and ⟨PLACEHOLDER_0⟩",
			recovery: []string{"{a}"},
			want:     "{a} and {a}",
			mm:       MismatchError{Expected: 1, Found: 2, OutOfOrder: true},
		},
		{
			name:     "reordered",
			in:       "⟨PLACEHOLDER_1⟩ de ⟨PLACEHOLDER_0⟩",
			recovery: []string{"{a}", "{b}"},
			want:     "{b} de {a}",
			mm:       MismatchError{Expected: 2, Found: 2, OutOfOrder: true},
		},
		{
			name:     "unknown index",
			in:       "x ⟨PLACEHOLDER_5⟩",
			recovery: []string{"{a}"},
			want:     "x ⟨PLACEHOLDER_5⟩",
			mm:       MismatchError{Expected: 1, Found: 1, Unknown: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmask(tt.in, tt.recovery)
			if got != tt.want {
				t.Errorf("Unmask text = %q, want %q", got, tt.want)
			}
			if !errors.Is(err, ErrRestorationMismatch) {
				t.Fatalf("error = %v, want ErrRestorationMismatch", err)
			}
			var mm *MismatchError
			if !errors.As(err, &mm) {
				t.Fatalf("error %T is not *MismatchError", err)
			}
			if *mm != tt.mm {
				t.Errorf("MismatchError = %+v, want %+v", *mm, tt.mm)
			}
		})
	}
}

func TestMismatchErrorMessage(t *testing.T) {
	err := &MismatchError{Expected: 2, Found: 1, OutOfOrder: true}
	msg := err.Error()
	if !strings.Contains(msg, "expected 2") || !strings.Contains(msg, "found 1") || !strings.Contains(msg, "out of order") {
		t.Errorf("Error() = %q", msg)
	}
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

var fragments = []string{
	"{name}", "%d", "%s", "%(count)s", "%(user_id)i", "%", "%%", "{", "}",
	"(", ")", "{0}", "%z", "texto ", "ñandú", " ", "€", "{_x9}",
}

func randomText(r *rand.Rand) string {
	var b strings.Builder
	n := r.Intn(8)
	for i := 0; i < n; i++ {
		b.WriteString(fragments[r.Intn(len(fragments))])
	}
	return b.String()
}

func TestMaskUnmaskIdentity(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		s := randomText(r)
		m, err := Mask(s)
		if err != nil {
			t.Fatalf("Mask(%q): %v", s, err)
		}
		got, err := Unmask(m.Text, m.Recovery)
		if err != nil {
			t.Fatalf("Unmask(Mask(%q)): %v", s, err)
		}
		if got != s {
			t.Fatalf("Unmask(Mask(%q)) = %q", s, got)
		}
	}
}

func TestRecoveryFollowsSourceOrder(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		s := randomText(r)
		m, err := Mask(s)
		if err != nil {
			t.Fatalf("Mask(%q): %v", s, err)
		}
		var want []string
		for _, sp := range Find(s) {
			want = append(want, sp.Text)
		}
		if len(want) != len(m.Recovery) {
			t.Fatalf("Mask(%q) recovered %d placeholders, want %d", s, len(m.Recovery), len(want))
		}
		for j := range want {
			if m.Recovery[j] != want[j] {
				t.Fatalf("Mask(%q).Recovery[%d] = %q, want %q", s, j, m.Recovery[j], want[j])
			}
		}
		if spans := Find(m.Text); len(spans) != 0 {
			t.Fatalf("masked text %q still has placeholders %+v", m.Text, spans)
		}
	}
}
