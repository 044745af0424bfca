package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Entry is one key/value pair of a Meta.
type Entry struct {
	Key   string
	Value any
}

// Meta is the insertion-ordered configuration of a single form. Values are
// already decoded: blobs are map[string]any, lists are []any, everything else
// is a string. The zero value is an empty, usable Meta.
type Meta struct {
	entries []Entry
	index   map[string]int
}

// NewMeta builds a Meta from entries. A repeated key keeps its first position
// and takes the last value.
func NewMeta(entries ...Entry) *Meta {
	m := &Meta{}
	for _, entry := range entries {
		m.Set(entry.Key, entry.Value)
	}
	return m
}

// Len returns the number of entries.
func (m *Meta) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Get returns the value stored under key.
func (m *Meta) Get(key string) (any, bool) {
	if m == nil || m.index == nil {
		return nil, false
	}
	pos, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[pos].Value, true
}

// String returns the scalar value stored under key, or "" when the key is
// missing or holds a blob.
func (m *Meta) String(key string) string {
	value, ok := m.Get(key)
	if !ok {
		return ""
	}
	if s, isString := value.(string); isString {
		return s
	}
	return ""
}

// Set stores value under key. Existing keys keep their position.
func (m *Meta) Set(key string, value any) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if pos, ok := m.index[key]; ok {
		m.entries[pos].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Delete removes key, preserving the order of the remaining entries.
func (m *Meta) Delete(key string) {
	if m == nil || m.index == nil {
		return
	}
	pos, ok := m.index[key]
	if !ok {
		return
	}
	m.entries = append(m.entries[:pos], m.entries[pos+1:]...)
	delete(m.index, key)
	for i := pos; i < len(m.entries); i++ {
		m.index[m.entries[i].Key] = i
	}
}

// Keys returns the keys in insertion order.
func (m *Meta) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		keys = append(keys, entry.Key)
	}
	return keys
}

// Entries returns a copy of the entries in insertion order.
func (m *Meta) Entries() []Entry {
	if m == nil || len(m.entries) == 0 {
		return nil
	}
	return append([]Entry{}, m.entries...)
}

// Fields returns the field definitions held under `field*` keys, in insertion
// order. Entries under that prefix that are not blobs are skipped.
func (m *Meta) Fields() []Field {
	if m == nil {
		return nil
	}
	var out []Field
	for _, entry := range m.entries {
		if !strings.HasPrefix(entry.Key, FieldKeyPrefix) {
			continue
		}
		field, ok := FieldFromBlob(entry.Key, entry.Value)
		if !ok {
			continue
		}
		out = append(out, field)
	}
	return out
}

// CustomCSS returns the operator supplied stylesheet, if any.
func (m *Meta) CustomCSS() string {
	return m.String(KeyCustomCSS)
}

// Clone returns a shallow copy whose ordering can be changed independently.
func (m *Meta) Clone() *Meta {
	if m == nil {
		return &Meta{}
	}
	return NewMeta(m.entries...)
}

// MarshalJSON encodes the Meta as a JSON object, keys in insertion order.
func (m *Meta) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m != nil {
		for i, entry := range m.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(entry.Key)
			if err != nil {
				return nil, err
			}
			value, err := json.Marshal(entry.Value)
			if err != nil {
				return nil, fmt.Errorf("model: encode meta %q: %w", entry.Key, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
func (m *Meta) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("model: decode meta: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("model: decode meta: expected object")
	}

	out := Meta{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("model: decode meta: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.New("model: decode meta: expected string key")
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("model: decode meta %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("model: decode meta: %w", err)
	}
	*m = out
	return nil
}

func sortedKeys(in map[string]any) []string {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
