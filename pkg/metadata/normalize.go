package metadata

import (
	"encoding/json"
	"strings"
)

// timestampKeys are aspect fields that DataHub stamps on write. They differ
// between environments even when the metadata itself is identical, so the
// classifier strips them before comparing documents.
var timestampKeys = map[string]bool{
	"created":              true,
	"createdAt":            true,
	"lastModified":         true,
	"lastUpdated":          true,
	"lastUpdatedTimestamp": true,
	"updatedAt":            true,
	"lastObserved":         true,
	"auditStamp":           true,
	"systemMetadata":       true,
}

// NormalizeAspects returns a normalized deep copy of the aspect map suitable
// for equivalence comparison: timestamp and audit fields are stripped,
// string values are whitespace-trimmed with line endings unified, numeric
// values are widened to float64, and empty values collapse to absent.
// The result is never nil.
func NormalizeAspects(aspects map[string]Document) Aspects {
	normalized := make(Aspects, len(aspects))
	for name, doc := range aspects {
		if norm := NormalizeDocument(doc); len(norm) > 0 {
			normalized[name] = norm
		}
	}
	return normalized
}

// NormalizeDocument returns a normalized deep copy of a single document.
func NormalizeDocument(doc Document) Document {
	out, _ := normalizeValue(map[string]any(doc)).(map[string]any)
	if out == nil {
		return nil
	}
	return Document(out)
}

func normalizeValue(v any) any {
	switch typed := v.(type) {
	case Document:
		return normalizeValue(map[string]any(typed))
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			if timestampKeys[key] {
				continue
			}
			norm := normalizeValue(val)
			if isEmpty(norm) {
				continue
			}
			out[key] = norm
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, val := range typed {
			norm := normalizeValue(val)
			if isEmpty(norm) {
				continue
			}
			out = append(out, norm)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		s := strings.ReplaceAll(typed, "\r\n", "\n")
		return strings.TrimSpace(s)
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case float32:
		return float64(typed)
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return typed.String()
		}
		return f
	default:
		return v
	}
}

func isEmpty(v any) bool {
	switch typed := v.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case map[string]any:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	}
	return false
}
