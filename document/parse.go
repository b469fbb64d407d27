package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned by Parse when the input is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("document is not valid UTF-8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile reads and parses a JSON document from disk.
func ParseFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Value{}, fmt.Errorf("reading %s: %w", path, err)
	}
	v, err := Parse(data)
	if err != nil {
		return Value{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return v, nil
}

// Parse parses a single JSON value. Object key order is preserved and
// duplicate keys are collapsed (last value wins, first position kept).
func Parse(data []byte) (Value, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return Value{}, ErrInvalidUTF8
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, fmt.Errorf("parsing JSON: empty document")
		}
		return Value{}, fmt.Errorf("parsing JSON: %w", err)
	}
	v, err := parseValue(dec, tok)
	if err != nil {
		return Value{}, fmt.Errorf("parsing JSON: %w", err)
	}

	// Anything after the root value is an error.
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return Value{}, fmt.Errorf("parsing JSON: %w", err)
		}
		return Value{}, fmt.Errorf("parsing JSON: unexpected %v after top-level value", tok)
	}
	return v, nil
}

func parseValue(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return Value{Kind: Number, Num: t}, nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		switch t {
		case '[':
			return parseArray(dec)
		case '{':
			return parseObject(dec)
		}
		return Value{}, fmt.Errorf("unexpected delimiter %v", t)
	}
	return Value{}, fmt.Errorf("unexpected token %v (%T)", tok, tok)
}

func parseArray(dec *json.Decoder) (Value, error) {
	items := []Value{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		it, err := parseValue(dec, tok)
		if err != nil {
			return Value{}, err
		}
		items = append(items, it)
	}
	// Closing ']'.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Value{Kind: Array, Items: items}, nil
}

func parseObject(dec *json.Decoder) (Value, error) {
	members := []Member{}
	index := make(map[string]int)
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := kt.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected string key, got %T", kt)
		}

		vt, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		val, err := parseValue(dec, vt)
		if err != nil {
			return Value{}, fmt.Errorf("value for key %q: %w", key, err)
		}

		if i, dup := index[key]; dup {
			members[i].Value = val
			continue
		}
		index[key] = len(members)
		members = append(members, Member{Key: key, Value: val})
	}
	// Closing '}'.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Value{Kind: Object, Members: members}, nil
}
