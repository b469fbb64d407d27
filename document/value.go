// Package document implements the JSON document model used by jsontrans:
// an explicit tagged union for JSON values, an order-preserving parser,
// a fixed-indent printer, and the walker/rebuilder pair that extracts
// string leaves and puts replacements back without touching structure.
//
// Object members keep the order in which they were read. Duplicate keys
// are collapsed while parsing: the last value wins and keeps the position
// of the first occurrence.
package document

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which variant of the union a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a JSON value. Only the fields matching Kind are meaningful.
type Value struct {
	Kind Kind
	// Bool holds the value of a Bool.
	Bool bool
	// Num holds the literal text of a Number, exactly as read.
	Num json.Number
	// Str holds the text of a String.
	Str string
	// Items holds the elements of an Array.
	Items []Value
	// Members holds the members of an Object in document order.
	Members []Member
}

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// NullValue returns a JSON null.
func NullValue() Value { return Value{Kind: Null} }

// BoolValue returns a JSON boolean.
func BoolValue(b bool) Value { return Value{Kind: Bool, Bool: b} }

// NumberValue returns a JSON number with the given literal text.
func NumberValue(lit string) Value { return Value{Kind: Number, Num: json.Number(lit)} }

// StringValue returns a JSON string.
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// ArrayValue returns a JSON array holding items.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: Array, Items: items}
}

// ObjectValue returns a JSON object holding members in the given order.
func ObjectValue(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{Kind: Object, Members: members}
}

// Get returns the value stored under key in an Object.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != Object {
		return Value{}, false
	}
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Keys returns the member keys of an Object in document order.
func (v Value) Keys() []string {
	if v.Kind != Object {
		return nil
	}
	keys := make([]string, len(v.Members))
	for i, m := range v.Members {
		keys[i] = m.Key
	}
	return keys
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.Kind {
	case Array:
		items := make([]Value, len(v.Items))
		for i, it := range v.Items {
			items[i] = it.Clone()
		}
		return Value{Kind: Array, Items: items}
	case Object:
		members := make([]Member, len(v.Members))
		for i, m := range v.Members {
			members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
		return Value{Kind: Object, Members: members}
	default:
		return v
	}
}

// Equal reports whether a and b are structurally identical, including
// object member order and number literals.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Null:
		return true
	case Bool:
		return a.Bool == b.Bool
	case Number:
		return a.Num == b.Num
	case String:
		return a.Str == b.Str
	case Array:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if a.Members[i].Key != b.Members[i].Key {
				return false
			}
			if !Equal(a.Members[i].Value, b.Members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
