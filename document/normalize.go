package document

import "sort"

// Normalize returns a copy of v in which every object, at any depth, has
// duplicate keys collapsed (last value wins) and its members sorted by key.
//
// Normalize changes structure and therefore gives up the line-count and
// key-order guarantees of Rebuild. It is never applied implicitly.
func Normalize(v Value) Value {
	switch v.Kind {
	case Array:
		items := make([]Value, len(v.Items))
		for i, it := range v.Items {
			items[i] = Normalize(it)
		}
		return Value{Kind: Array, Items: items}
	case Object:
		last := make(map[string]Value, len(v.Members))
		for _, m := range v.Members {
			last[m.Key] = m.Value
		}
		keys := make([]string, 0, len(last))
		for k := range last {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, len(keys))
		for i, k := range keys {
			members[i] = Member{Key: k, Value: Normalize(last[k])}
		}
		return Value{Kind: Object, Members: members}
	default:
		return v
	}
}
