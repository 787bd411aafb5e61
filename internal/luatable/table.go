// Package luatable decodes and encodes the Lua table literals that the mission editor uses to
// persist mission and dictionary documents.
//
// Decoded values are one of *Table, string, float64, bool or nil. Table keys are strings,
// float64 or bool; Go integer keys passed to the accessors are normalized to float64.
package luatable

import (
	"math"
	"sort"
)

// Entry is a single key/value pair of a Table in insertion order.
type Entry struct {
	Key   any
	Value any
}

// Table is an insertion-ordered Lua table.
type Table struct {
	entries []Entry
	index   map[any]int

	// number of items written positionally ({a, b, c})
	positional int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[any]int)}
}

func normalizeKey(key any) any {
	switch k := key.(type) {
	case int:
		return float64(k)
	case int32:
		return float64(k)
	case int64:
		return float64(k)
	case uint:
		return float64(k)
	case float32:
		return float64(k)
	}
	return key
}

// Set assigns value to key. An existing key keeps its original position.
func (t *Table) Set(key, value any) {
	if t.index == nil {
		t.index = make(map[any]int)
	}
	key = normalizeKey(key)
	if i, ok := t.index[key]; ok {
		t.entries[i].Value = value
		return
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, Entry{Key: key, Value: value})
}

// Append adds value at the next positional index, as an unkeyed item in a constructor would.
func (t *Table) Append(value any) {
	t.positional++
	t.Set(float64(t.positional), value)
}

// Get returns the value stored under key.
func (t *Table) Get(key any) (any, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[normalizeKey(key)]
	if !ok {
		return nil, false
	}
	return t.entries[i].Value, true
}

// Has reports whether key is present.
func (t *Table) Has(key any) bool {
	_, ok := t.Get(key)
	return ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// IsArray reports whether every entry was written positionally. An empty table is not an array.
func (t *Table) IsArray() bool {
	return t != nil && len(t.entries) > 0 && t.positional == len(t.entries)
}

// Entries returns the entries in insertion order. The slice must not be modified.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return t.entries
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []any {
	keys := make([]any, 0, t.Len())
	for _, e := range t.Entries() {
		keys = append(keys, e.Key)
	}
	return keys
}

// SortedKeys returns the keys in ascending order: numbers first, then strings, then booleans.
func (t *Table) SortedKeys() []any {
	keys := t.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return keyLess(keys[i], keys[j])
	})
	return keys
}

func keyRank(k any) int {
	switch k.(type) {
	case float64:
		return 0
	case string:
		return 1
	default:
		return 2
	}
}

func keyLess(a, b any) bool {
	ra, rb := keyRank(a), keyRank(b)
	if ra != rb {
		return ra < rb
	}
	switch av := a.(type) {
	case float64:
		return av < b.(float64)
	case string:
		return av < b.(string)
	case bool:
		return !av && b.(bool)
	}
	return false
}

// SortedValues returns the values ordered by SortedKeys.
func (t *Table) SortedValues() []any {
	keys := t.SortedKeys()
	values := make([]any, 0, len(keys))
	for _, k := range keys {
		v, _ := t.Get(k)
		values = append(values, v)
	}
	return values
}

// Table returns the nested table stored under key.
func (t *Table) Table(key any) (*Table, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Table)
	return sub, ok
}

// String returns the string stored under key.
func (t *Table) String(key any) (string, bool) {
	v, ok := t.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Number returns the number stored under key.
func (t *Table) Number(key any) (float64, bool) {
	v, ok := t.Get(key)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// Int returns the number stored under key truncated toward zero.
func (t *Table) Int(key any) (int, bool) {
	f, ok := t.Number(key)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// Bool returns the boolean stored under key.
func (t *Table) Bool(key any) (bool, bool) {
	v, ok := t.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Path walks nested tables following keys and returns the final value.
func (t *Table) Path(keys ...any) (any, bool) {
	var cur any = t
	for _, k := range keys {
		tbl, ok := cur.(*Table)
		if !ok {
			return nil, false
		}
		if cur, ok = tbl.Get(k); !ok {
			return nil, false
		}
	}
	return cur, true
}
