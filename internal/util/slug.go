package util

import "strings"

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single underscore, trimming underscores at either end.
// "Jane Doe" becomes "jane_doe"; "  O'Brien & Sons " becomes "o_brien_sons".
func Slugify(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
