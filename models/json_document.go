package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONDocument is a free-form jsonb column. It is the serialization boundary for
// typed payloads; domain code should decode it into a concrete type before use.
type JSONDocument map[string]any

// Value implements the driver.Valuer interface for JSONDocument
func (d JSONDocument) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// Scan implements the sql.Scanner interface for JSONDocument
func (d *JSONDocument) Scan(value any) error {
	if value == nil {
		*d = JSONDocument{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONDocument", value)
	}

	doc := JSONDocument{}
	if err := json.Unmarshal(bytes, &doc); err != nil {
		return err
	}
	*d = doc
	return nil
}

// Clone returns a deep copy of the document
func (d JSONDocument) Clone() JSONDocument {
	if d == nil {
		return nil
	}
	out := make(JSONDocument, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case JSONDocument:
		return map[string]any(t.Clone())
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// StringSlice reads a list of strings stored under key, skipping non-string items
func (d JSONDocument) StringSlice(key string) []string {
	raw, ok := d[key]
	if !ok || raw == nil {
		return nil
	}
	switch t := raw.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
