package metadata

import (
	"encoding/json"
	"reflect"
)

// Document is a single aspect payload: an arbitrary JSON object as DataHub
// returns it. Values follow encoding/json conventions (maps, slices,
// strings, float64, bool, nil).
type Document map[string]any

// String returns the string value for a key, if present and non-empty.
func (d Document) String(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	if s, ok := d[key].(string); ok && s != "" {
		return s, true
	}
	return "", false
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(d).(Document)
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case Document:
		out := make(Document, len(typed))
		for k, val := range typed {
			out[k] = cloneValue(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// Aspects is a named collection of aspect documents.
type Aspects map[string]Document

// Equal reports deep equality of two aspect collections.
func (a Aspects) Equal(b Aspects) bool {
	return reflect.DeepEqual(a, b)
}

// DocumentFromJSON decodes a JSON object into a Document.
func DocumentFromJSON(data []byte) (Document, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// JSON encodes the document as compact JSON.
func (d Document) JSON() ([]byte, error) {
	return json.Marshal(d)
}
