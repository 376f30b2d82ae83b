// Package names implements the bidirectional key-name convention between
// caller-idiomatic lowercase-hyphenated keys and Docker's CamelCase JSON
// wire format.
package names

import "strings"

// opaque lists the subtree keys (Docker's own wire name) whose inner keys
// are user- or daemon-defined data and must never be rewritten.
var opaque = map[string]bool{
	"Labels":     true,
	"Containers": true,
}

// ToDocker recursively rewrites a generic JSON value (produced by
// encoding/json's map[string]any/[]any/scalar decoding) from caller style
// into Docker's wire style: capitalize the first letter, then strip each
// hyphen and capitalize the character that followed it.
func ToDocker(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			wireKey := hyphenToCamel(k)
			if opaque[wireKey] || strings.Contains(k, ".") {
				out[wireKeyOrOriginal(k, wireKey)] = inner
				continue
			}
			out[wireKey] = ToDocker(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = ToDocker(inner)
		}
		return out
	default:
		return v
	}
}

// wireKeyOrOriginal keeps dotted caller keys (domain-qualified labels)
// exactly as written instead of camel-casing them.
func wireKeyOrOriginal(original, camel string) string {
	if strings.Contains(original, ".") {
		return original
	}
	return camel
}

// FromDocker recursively rewrites a decoded Docker JSON value into caller
// style: insert a hyphen before each run of uppercase letters and lowercase
// the result, while leaving the Labels/Containers opaque subtrees and
// dotted keys byte-for-byte untouched.
func FromDocker(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if opaque[k] || strings.Contains(k, ".") {
				out[k] = inner
				continue
			}
			out[camelToHyphen(k)] = FromDocker(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = FromDocker(inner)
		}
		return out
	default:
		return v
	}
}

// hyphenToCamel turns "host-config" into "HostConfig".
func hyphenToCamel(s string) string {
	parts := strings.Split(s, "-")
	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	return sb.String()
}

// camelToHyphen turns "HostConfig" into "host-config", treating each
// maximal run of uppercase letters followed by lowercase letters as one
// word boundary (so "IPAddress" becomes "ip-address", not "i-p-address").
func camelToHyphen(s string) string {
	if s == "" {
		return s
	}
	var sb strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper {
			prevLower := i > 0 && !(runes[i-1] >= 'A' && runes[i-1] <= 'Z')
			nextLower := i+1 < len(runes) && !(runes[i+1] >= 'A' && runes[i+1] <= 'Z')
			if i > 0 && (prevLower || nextLower) {
				sb.WriteByte('-')
			}
			sb.WriteRune(r - 'A' + 'a')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
