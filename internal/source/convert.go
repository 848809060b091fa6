package source

import (
	"encoding/json"
	"strings"
)

// NormalizeValue converts a driver-scanned value into the JSON-ish value
// set the profilers understand.
//
// Rules:
//   - []byte becomes string (after an optional JSON decode, see below).
//   - Strings and []byte that look like JSON containers are decoded, so
//     document columns stored as text (sqlite, mssql) profile the same as
//     natively-decoded jsonb.
//   - Everything else passes through; profile.KindOf handles the numeric
//     and time types drivers produce.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return normalizeString(string(t))
	case string:
		return normalizeString(t)
	default:
		return v
	}
}

func normalizeString(s string) any {
	if v, ok := DecodeJSONText(s); ok {
		return v
	}
	return s
}

// DecodeJSONText decodes s when it is a JSON array or object literal.
// Scalar JSON ("5", `"x"`, "true") is left alone on purpose: a text
// column holding "123" is text, not a number.
func DecodeJSONText(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 {
		return nil, false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, false
	}
	return v, true
}
