package util

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var reSpaces = regexp.MustCompile(`\s+`)

// CanonicalKey lowercases a header label and strips all whitespace,
// producing the key used for column lookups.
func CanonicalKey(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeName replaces every occurrence of the invalid characters with the
// placeholder and trims the result. Idempotent as long as the placeholder
// is not itself in the invalid set.
func SanitizeName(name, invalid string, placeholder rune) string {
	out := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalid, r) {
			return placeholder
		}
		return r
	}, name)
	return strings.TrimSpace(out)
}

// NormalizeBase strips everything after the first dot and collapses purely
// numeric bases to their minimal decimal form ("01" -> "1", "000" -> "0").
// Non-numeric bases pass through unchanged.
func NormalizeBase(name string) string {
	base := name
	if idx := strings.Index(base, "."); idx >= 0 {
		base = base[:idx]
	}
	if isDigits(base) || (strings.HasPrefix(base, "0") && isDigits(base[1:])) {
		if n, err := strconv.ParseUint(base, 10, 64); err == nil {
			return strconv.FormatUint(n, 10)
		}
	}
	return base
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeSpaces collapses runs of whitespace into single spaces.
func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}
