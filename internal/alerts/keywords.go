package alerts

import "strings"

// ParseKeywords turns raw comma-separated form input into the keyword list
// the server expects: split on commas, trim whitespace, drop empties.
// Duplicates are kept; the matcher treats them as one. "ai, ml" yields
// ["ai" "ml"]; "", " , , " and all-whitespace input yield nil.
func ParseKeywords(raw string) []string {
	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
