package insights

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]+`)

// MerchantKey canonicalizes a free-text merchant or transaction description
// into a stable grouping key: lower-cased, punctuation stripped, whitespace
// collapsed, truncated to the first three tokens. An empty key means the
// input is ungroupable and must be skipped downstream.
func MerchantKey(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = nonAlphanumeric.ReplaceAllString(s, "")
	fields := strings.Fields(s)
	if len(fields) > 3 {
		fields = fields[:3]
	}
	return strings.Join(fields, " ")
}

// DisplayName renders a merchant key as a title-cased human-readable name.
func DisplayName(raw string) string {
	key := MerchantKey(raw)
	if key == "" {
		return ""
	}
	// cases.Caser is stateful, so build one per call.
	return cases.Title(language.English).String(key)
}
