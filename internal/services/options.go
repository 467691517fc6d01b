package services

import "fmt"

const (
	// maxOptionValueLen is the longest string persisted verbatim into a
	// job's options document
	maxOptionValueLen = 1000
	// optionPreviewLen is how much of an oversized value survives as a preview
	optionPreviewLen = 256
)

// truncateString shortens oversized values to a preview annotated with the
// original length. Raw large payloads, base64 especially, must never be
// written verbatim into the options document.
func truncateString(s string) string {
	if len(s) <= maxOptionValueLen {
		return s
	}
	return fmt.Sprintf("%s... [truncated, %d chars total]", s[:optionPreviewLen], len(s))
}

// truncateValue walks maps and slices applying truncateString to every
// string leaf.
func truncateValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return truncateString(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = truncateValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = truncateValue(item)
		}
		return out
	default:
		return v
	}
}
