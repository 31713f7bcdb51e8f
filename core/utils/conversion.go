package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToString converts various types to string.
// Floats are rendered without exponent so that numeric identifiers decoded from JSON
// (e.g. 2141438171) keep their natural form.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NormalizeKey converts a raw identifier into a natural key.
// Surrounding whitespace is dropped; an empty result means the value carries no key.
func NormalizeKey(val any) string {
	return strings.TrimSpace(ToString(val))
}
