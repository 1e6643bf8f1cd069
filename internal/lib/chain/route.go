package chain

import "strings"

// NormalizeRouteRef canonicalizes a free-text route identifier for
// comparison: uppercase with separators removed, so "I-80", "I 80" and "i80"
// all compare equal. Kept as a named rule; upstream feeds disagree on route
// naming more than on anything else.
func NormalizeRouteRef(ref string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(ref)) {
		switch r {
		case ' ', '-', '_', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SameRoute reports whether two free-text route identifiers name the same
// route.
func SameRoute(a, b string) bool {
	na, nb := NormalizeRouteRef(a), NormalizeRouteRef(b)
	return na != "" && na == nb
}
