package protect

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/minios-linux/jsontrans/document"
	"github.com/minios-linux/jsontrans/placeholder"
)

func mustParse(t *testing.T, s string) document.Value {
	t.Helper()
	v, err := document.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return v
}

// ---------------------------------------------------------------------------
// Prepare / Finalize
// ---------------------------------------------------------------------------

func TestScenarioEchoRestoresPlaceholders(t *testing.T) {
	root := mustParse(t, `{"a": "Hola {name}", "b": {"c": "Tienes %d mensajes"}}`)
	p := Prepare(root)

	if len(p.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(p.Items))
	}
	if got := p.Locators[0].String(); got != "/a" {
		t.Errorf("locator[0] = %q", got)
	}
	if got := p.Locators[1].String(); got != "/b/c" {
		t.Errorf("locator[1] = %q", got)
	}
	if p.Items[0].Masked != "Hola ⟨PLACEHOLDER_0⟩" {
		t.Errorf("masked[0] = %q", p.Items[0].Masked)
	}
	if !reflect.DeepEqual(p.Items[0].Recovery, []string{"{name}"}) {
		t.Errorf("recovery[0] = %q", p.Items[0].Recovery)
	}

	out, issues, err := Finalize(root, p, p.Texts())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
	a, _ := out.Get("a")
	if a.Str != "Hola {name}" {
		t.Errorf("a = %q", a.Str)
	}
	if !document.Equal(out, root) {
		t.Error("echo pipeline is not an identity transform")
	}
}

func TestEchoPipelineIdentityNested(t *testing.T) {
	src := `{
  "menu": {
    "items": ["Abrir {file}", "Guardar %s", {"tip": "%(count)d de %(total)d"}],
    "empty": [],
    "flags": {"on": true, "n": 3.50, "nil": null}
  },
  "title": "Sin marcadores",
  "x": {}
}`
	root := mustParse(t, src)
	p := Prepare(root)

	var translated []string
	for _, span := range Split(len(p.Items), 2) {
		translated = append(translated, p.Texts()[span.Start:span.End]...)
	}

	out, issues, err := Finalize(root, p, translated)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
	if !document.Equal(out, root) {
		t.Fatal("echo pipeline changed the document")
	}
	want, _ := document.Marshal(root, 2)
	got, _ := document.Marshal(out, 2)
	if string(got) != string(want) {
		t.Errorf("serialized output differs:\n%s\nwant:\n%s", got, want)
	}
}

func TestFinalizeTranslatedText(t *testing.T) {
	root := mustParse(t, `["Hola {name}", "Adiós"]`)
	p := Prepare(root)
	translated := []string{"Hello ⟨PLACEHOLDER_0⟩", "Goodbye"}

	out, issues, err := Finalize(root, p, translated)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
	if out.Items[0].Str != "Hello {name}" || out.Items[1].Str != "Goodbye" {
		t.Errorf("out = %q, %q", out.Items[0].Str, out.Items[1].Str)
	}
	if root.Items[0].Str != "Hola {name}" {
		t.Error("root was modified")
	}
}

func TestUnsafeStringPassesThrough(t *testing.T) {
	root := mustParse(t, `{"ok": "{a}", "bad": "ya ⟨PLACEHOLDER_0⟩ {b}"}`)
	p := Prepare(root)

	if len(p.Skipped) != 1 {
		t.Fatalf("got %d skipped, want 1", len(p.Skipped))
	}
	iss := p.Skipped[0]
	if iss.Kind != UnsafeMarkerCollision || iss.Locator.String() != "/bad" {
		t.Errorf("issue = %+v", iss)
	}
	if !errors.Is(iss, placeholder.ErrUnsafeMarkerCollision) {
		t.Errorf("issue does not wrap ErrUnsafeMarkerCollision: %v", iss)
	}
	if !p.Items[1].Unsafe || p.Items[1].Masked != p.Items[1].Source {
		t.Errorf("unsafe item = %+v", p.Items[1])
	}

	out, issues, err := Finalize(root, p, p.Texts())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
	if !document.Equal(out, root) {
		t.Error("unsafe string was not passed through unchanged")
	}
}

func TestRestorationMismatchKeepsBestEffort(t *testing.T) {
	root := mustParse(t, `{"a": {"b": "Hola {name}, tienes %d"}, "c": "fin"}`)
	p := Prepare(root)
	translated := []string{"Hello ⟨PLACEHOLDER_0⟩", "end"}

	out, issues, err := Finalize(root, p, translated)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	iss := issues[0]
	if iss.Kind != RestorationMismatch || iss.Locator.String() != "/a/b" {
		t.Errorf("issue = %+v", iss)
	}
	var mm *placeholder.MismatchError
	if !errors.As(iss, &mm) || mm.Expected != 2 || mm.Found != 1 {
		t.Errorf("issue error = %v", iss.Err)
	}
	if !strings.Contains(iss.Error(), "/a/b") {
		t.Errorf("Error() = %q, want locator", iss.Error())
	}

	b, _ := document.Resolve(out, p.Locators[0])
	if b.Str != "Hello {name}" {
		t.Errorf("best-effort text = %q", b.Str)
	}
	c, _ := out.Get("c")
	if c.Str != "end" {
		t.Errorf("c = %q", c.Str)
	}
}

func TestFinalizeLengthMismatch(t *testing.T) {
	root := mustParse(t, `["a", "b"]`)
	p := Prepare(root)
	_, _, err := Finalize(root, p, []string{"a"})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestFinalizeForeignDocument(t *testing.T) {
	p := Prepare(mustParse(t, `{"a": "x"}`))
	_, _, err := Finalize(mustParse(t, `{"b": "y"}`), p, p.Texts())
	if !errors.Is(err, document.ErrLocatorMismatch) {
		t.Errorf("err = %v, want ErrLocatorMismatch", err)
	}
}

func TestPrepareEmptyDocument(t *testing.T) {
	p := Prepare(mustParse(t, `{"n": 1, "l": [], "o": {}}`))
	if len(p.Items) != 0 || len(p.Locators) != 0 {
		t.Errorf("Prepare = %+v, want no items", p)
	}
	if Split(len(p.Items), 10) != nil {
		t.Error("Split of zero items should be nil")
	}
}

func TestPlaceholderCount(t *testing.T) {
	p := Prepare(mustParse(t, `["{a} {b}", "%s", "nada"]`))
	if got := p.Placeholders(); got != 3 {
		t.Errorf("Placeholders() = %d, want 3", got)
	}
}

// ---------------------------------------------------------------------------
// Split
// ---------------------------------------------------------------------------

func TestSplit(t *testing.T) {
	tests := []struct {
		n, size int
		want    []Span
	}{
		{5, 2, []Span{{0, 2}, {2, 4}, {4, 5}}},
		{4, 2, []Span{{0, 2}, {2, 4}}},
		{3, 10, []Span{{0, 3}}},
		{3, 0, []Span{{0, 3}}},
		{3, -1, []Span{{0, 3}}},
		{1, 1, []Span{{0, 1}}},
		{0, 5, nil},
	}
	for _, tt := range tests {
		got := Split(tt.n, tt.size)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%d, %d) = %v, want %v", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestSplitCoversEveryItemOnce(t *testing.T) {
	for n := 1; n < 40; n++ {
		for size := 1; size <= n+1; size++ {
			next := 0
			for _, s := range Split(n, size) {
				if s.Start != next || s.Len() <= 0 || s.Len() > size {
					t.Fatalf("Split(%d, %d) produced bad span %v", n, size, s)
				}
				next = s.End
			}
			if next != n {
				t.Fatalf("Split(%d, %d) covers %d items", n, size, next)
			}
		}
	}
}

func TestIssueError(t *testing.T) {
	iss := Issue{Kind: PortFailure, Batch: 2, Err: errors.New("boom")}
	if got := iss.Error(); got != "batch 3: translation failure: boom" {
		t.Errorf("Error() = %q", got)
	}
}
