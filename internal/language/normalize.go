// Package language handles the loose BCP 47 style tags accepted from forms
// and flags ("pt", "pt_BR", "EN-us").
package language

import "strings"

func isTagSeparator(r rune) bool { return r == '-' || r == '_' }

// subtags lowercases raw and splits it on '-' or '_'. It returns nil when
// any subtag holds something other than ASCII letters.
func subtags(raw string) []string {
	parts := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(raw)), isTagSeparator)
	for _, part := range parts {
		if strings.TrimLeft(part, "abcdefghijklmnopqrstuvwxyz") != "" {
			return nil
		}
	}
	return parts
}

// NormalizeTag returns raw as lowercase '-' separated subtags, or "" when it
// is blank or malformed.
func NormalizeTag(raw string) string {
	return strings.Join(subtags(raw), "-")
}

// NormalizeCode returns the primary subtag, "en" for "en-US".
func NormalizeCode(raw string) string {
	if parts := subtags(raw); len(parts) > 0 {
		return parts[0]
	}
	return ""
}

// SameLanguage reports whether a and b share a primary subtag. Blank or
// malformed tags never match.
func SameLanguage(a, b string) bool {
	code := NormalizeCode(a)
	return code != "" && code == NormalizeCode(b)
}

// Region returns the first two-letter subtag after the primary one, "gb"
// for "en_GB" and "cn" for "zh-Hans-CN".
func Region(raw string) string {
	parts := subtags(raw)
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) == 2 {
			return parts[i]
		}
	}
	return ""
}
