package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultIndent is the indentation width used when none is configured.
const DefaultIndent = 2

// Marshal renders v as pretty-printed JSON: one member or element per line,
// indent spaces per nesting level, empty containers as {} and [], literal
// non-ASCII text, and a trailing newline.
//
// The layout depends only on structure, so two documents that differ only
// in string leaf values always render to the same number of lines.
func Marshal(v Value, indent int) ([]byte, error) {
	if indent < 0 {
		indent = DefaultIndent
	}
	var b bytes.Buffer
	if err := writeValue(&b, v, 0, strings.Repeat(" ", indent)); err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// WriteFile marshals v and writes it to path, creating parent directories.
func WriteFile(path string, v Value, indent int) error {
	data, err := Marshal(v, indent)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func writeValue(b *bytes.Buffer, v Value, depth int, unit string) error {
	switch v.Kind {
	case Null:
		b.WriteString("null")
	case Bool:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Number:
		if v.Num == "" {
			return fmt.Errorf("empty number literal")
		}
		b.WriteString(string(v.Num))
	case String:
		b.WriteString(quote(v.Str))
	case Array:
		if len(v.Items) == 0 {
			b.WriteString("[]")
			return nil
		}
		b.WriteString("[\n")
		for i, it := range v.Items {
			writeIndent(b, depth+1, unit)
			if err := writeValue(b, it, depth+1, unit); err != nil {
				return err
			}
			if i < len(v.Items)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, depth, unit)
		b.WriteByte(']')
	case Object:
		if len(v.Members) == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{\n")
		for i, m := range v.Members {
			writeIndent(b, depth+1, unit)
			b.WriteString(quote(m.Key))
			b.WriteString(": ")
			if err := writeValue(b, m.Value, depth+1, unit); err != nil {
				return fmt.Errorf("key %q: %w", m.Key, err)
			}
			if i < len(v.Members)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, depth, unit)
		b.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %v", v.Kind)
	}
	return nil
}

func writeIndent(b *bytes.Buffer, depth int, unit string) {
	for i := 0; i < depth; i++ {
		b.WriteString(unit)
	}
}

// quote returns s as a JSON string literal without HTML escaping.
// Non-ASCII characters are written as-is.
func quote(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}
