// Package codec converts between the gateway's wire shape and internal values.
//
// Internally fields are snake_case; on the wire every key is camelCase. The
// transforms here operate on generic JSON value trees (map[string]any, []any
// and scalars) so the same rules apply to any payload.
package codec

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	wordSplit      = regexp.MustCompile(`[-_]`)
	camelBoundary1 = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	camelBoundary2 = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// CamelCase renames a snake_case or kebab-case key to camelCase. The first
// word is kept verbatim; each following word gets an upper-case first letter
// and lower-case remainder. Keys without separators come back unchanged.
func CamelCase(s string) string {
	words := wordSplit.Split(s, -1)
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(words[0])
	for _, w := range words[1:] {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// SnakeCase renames a camelCase key to snake_case.
func SnakeCase(s string) string {
	s = camelBoundary1.ReplaceAllString(s, "${1}_${2}")
	s = camelBoundary2.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

func capitalize(w string) string {
	if w == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}

// CamelKeys returns a copy of the value tree with every object key renamed by
// CamelCase. Object entries holding nil are dropped.
func CamelKeys(v any) any {
	return renameKeys(v, CamelCase)
}

// SnakeKeys is the inverse of CamelKeys.
func SnakeKeys(v any) any {
	return renameKeys(v, SnakeCase)
}

func renameKeys(v any, rename func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if val == nil {
				continue
			}
			out[rename(k)] = renameKeys(val, rename)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = renameKeys(val, rename)
		}
		return out
	default:
		return v
	}
}
