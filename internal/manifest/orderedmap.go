package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OrderedMap is a JSON object that remembers first-seen key order
// across repeated merges, so C1's project-manifest write-back (§4.1
// "Persistence") doesn't reshuffle a developer's hand-authored
// lucee.json every time the CLI touches it.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]any)}
}

// Set inserts or updates a key, appending it to the key order only if new.
func (m *OrderedMap) Set(key string, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes a key, if present.
func (m *OrderedMap) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// SetPath sets a dot-notation path, creating intermediate OrderedMaps
// as needed and preserving first-seen key order at every level. Used
// to write CLI overrides back into the on-disk project manifest
// without reshuffling keys the developer authored by hand.
func (m *OrderedMap) SetPath(path string, value any) {
	parts := strings.Split(path, ".")
	cur := m
	for i, part := range parts {
		if i == len(parts)-1 {
			cur.Set(part, value)
			return
		}
		next, ok := cur.values[part].(*OrderedMap)
		if !ok {
			next = NewOrderedMap()
			cur.Set(part, next)
		}
		cur = next
	}
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in first-seen order.
func (m *OrderedMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// ToMap returns a plain (unordered) copy, for feeding into the merge pipeline.
func (m *OrderedMap) ToMap() map[string]any {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler, recording key order as it decodes.
func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("ordered map: expected object, got %v", tok)
	}

	m.keys = nil
	m.values = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ordered map: expected string key, got %v", keyTok)
		}

		var value any
		if err := decodeValue(dec, &value); err != nil {
			return err
		}

		m.Set(key, value)
	}

	_, err = dec.Token() // closing '}'
	return err
}

// decodeValue decodes the next JSON value from dec, recursing into nested
// objects via OrderedMap so order is preserved at every depth.
func decodeValue(dec *json.Decoder, out *any) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			nested := NewOrderedMap()
			nested.keys = nil
			nested.values = make(map[string]any)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key := keyTok.(string) //nolint:forcetypeassert // object key per JSON grammar
				var val any
				if err := decodeValue(dec, &val); err != nil {
					return err
				}
				nested.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return err
			}
			*out = nested
			return nil
		case '[':
			var arr []any
			for dec.More() {
				var val any
				if err := decodeValue(dec, &val); err != nil {
					return err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return err
			}
			*out = arr
			return nil
		}
	default:
		*out = tok
	}
	return nil
}

// MarshalJSON implements json.Marshaler, writing keys back in recorded order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
