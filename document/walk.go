package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrLocatorMismatch is returned by Rebuild when a replacement targets a
// locator that does not resolve to a string leaf of the document.
var ErrLocatorMismatch = errors.New("locator does not resolve to a string leaf")

// Segment is one step of a Locator: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySegment returns an object-key segment.
func KeySegment(key string) Segment { return Segment{Key: key} }

// IndexSegment returns an array-index segment.
func IndexSegment(i int) Segment { return Segment{Index: i, IsIndex: true} }

// Locator identifies a single string leaf within a document.
// The root of a document that is itself a string has the empty locator.
type Locator []Segment

// Key returns a canonical encoding of the locator, suitable as a map key.
// Distinct locators always have distinct keys.
func (l Locator) Key() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range l {
		if i > 0 {
			b.WriteByte(',')
		}
		if s.IsIndex {
			b.WriteString(strconv.Itoa(s.Index))
		} else {
			data, _ := json.Marshal(s.Key)
			b.Write(data)
		}
	}
	b.WriteByte(']')
	return b.String()
}

// String renders the locator as a JSON Pointer (RFC 6901), e.g. "/b/c/0".
func (l Locator) String() string {
	if len(l) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range l {
		b.WriteByte('/')
		if s.IsIndex {
			b.WriteString(strconv.Itoa(s.Index))
			continue
		}
		k := strings.ReplaceAll(s.Key, "~", "~0")
		b.WriteString(strings.ReplaceAll(k, "/", "~1"))
	}
	return b.String()
}

// child returns a new locator extended by seg. The receiver is never
// modified, so locators handed out by Collect do not share backing arrays.
func (l Locator) child(seg Segment) Locator {
	out := make(Locator, len(l)+1)
	copy(out, l)
	out[len(l)] = seg
	return out
}

// Leaf is a string leaf together with its locator.
type Leaf struct {
	Locator Locator
	Text    string
}

// Collect returns every string leaf of root in pre-order, depth-first
// order, visiting container children in document order. Numbers, booleans,
// nulls and empty containers contribute no leaves.
func Collect(root Value) []Leaf {
	var leaves []Leaf
	collect(root, Locator{}, &leaves)
	return leaves
}

func collect(v Value, loc Locator, out *[]Leaf) {
	switch v.Kind {
	case String:
		*out = append(*out, Leaf{Locator: loc, Text: v.Str})
	case Array:
		for i, it := range v.Items {
			collect(it, loc.child(IndexSegment(i)), out)
		}
	case Object:
		for _, m := range v.Members {
			collect(m.Value, loc.child(KeySegment(m.Key)), out)
		}
	}
}

// Count returns the number of string leaves in v.
func Count(v Value) int {
	switch v.Kind {
	case String:
		return 1
	case Array:
		n := 0
		for _, it := range v.Items {
			n += Count(it)
		}
		return n
	case Object:
		n := 0
		for _, m := range v.Members {
			n += Count(m.Value)
		}
		return n
	}
	return 0
}

// Resolve returns the value at loc.
func Resolve(root Value, loc Locator) (Value, bool) {
	cur := root
	for _, s := range loc {
		switch {
		case s.IsIndex:
			if cur.Kind != Array || s.Index < 0 || s.Index >= len(cur.Items) {
				return Value{}, false
			}
			cur = cur.Items[s.Index]
		default:
			next, ok := cur.Get(s.Key)
			if !ok {
				return Value{}, false
			}
			cur = next
		}
	}
	return cur, true
}

// Replacements maps locators (by Locator.Key) to replacement strings.
type Replacements map[string]string

// Set records text as the replacement for loc.
func (r Replacements) Set(loc Locator, text string) {
	r[loc.Key()] = text
}

// LocatorError reports a replacement whose locator is foreign to the document.
type LocatorError struct {
	// Key is the canonical locator key (see Locator.Key).
	Key string
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("rebuild: %s: %v", e.Key, ErrLocatorMismatch)
}

func (e *LocatorError) Unwrap() error { return ErrLocatorMismatch }

// Rebuild returns a deep copy of root in which every string leaf whose
// locator appears in replacements carries the replacement text. Leaves not
// mentioned are copied unchanged and the structure is identical to root.
// Root itself is never modified.
func Rebuild(root Value, replacements Replacements) (Value, error) {
	used := make(map[string]bool, len(replacements))
	out := rebuild(root, Locator{}, replacements, used)
	if len(used) != len(replacements) {
		return Value{}, foreignLocator(root, replacements)
	}
	return out, nil
}

func rebuild(v Value, loc Locator, r Replacements, used map[string]bool) Value {
	switch v.Kind {
	case String:
		if len(r) > 0 {
			key := loc.Key()
			if s, ok := r[key]; ok {
				used[key] = true
				return StringValue(s)
			}
		}
		return v
	case Array:
		items := make([]Value, len(v.Items))
		for i, it := range v.Items {
			items[i] = rebuild(it, loc.child(IndexSegment(i)), r, used)
		}
		return Value{Kind: Array, Items: items}
	case Object:
		members := make([]Member, len(v.Members))
		for i, m := range v.Members {
			members[i] = Member{Key: m.Key, Value: rebuild(m.Value, loc.child(KeySegment(m.Key)), r, used)}
		}
		return Value{Kind: Object, Members: members}
	default:
		return v
	}
}

// foreignLocator finds the first (in key order) replacement that did not
// match any leaf, for a deterministic error message.
func foreignLocator(root Value, r Replacements) error {
	known := make(map[string]bool)
	for _, l := range Collect(root) {
		known[l.Locator.Key()] = true
	}
	var missing []string
	for k := range r {
		if !known[k] {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	if len(missing) == 0 {
		return &LocatorError{}
	}
	return &LocatorError{Key: missing[0]}
}
