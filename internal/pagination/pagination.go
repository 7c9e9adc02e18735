// Package pagination turns raw page/limit/sort query parameters into bounded,
// deterministic fetch parameters. It is pure: the same input always gives the
// same Params, and nothing here touches the store.
package pagination

import "strings"

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// SortOldest is the only recognised sort value; anything else is newest-first.
	SortOldest = "oldest"
	SortNewest = "newest"
)

// Params are the normalized fetch parameters for one list request.
type Params struct {
	Page   int
	Limit  int
	Skip   int
	Oldest bool // ascending creation time when true
}

// Resolve normalizes raw query values.
//
//	page  = max(page, 1)            default 1
//	limit = clamp(limit, 1, 100)    default 20
//	skip  = (page-1) * limit
//
// A missing, non-numeric or zero value falls back to the default. Unknown sort
// values are not rejected; they silently mean newest-first.
func Resolve(page, limit, sort string) Params {
	p := parseOr(page, DefaultPage)
	if p < 1 {
		p = 1
	}

	l := parseOr(limit, DefaultLimit)
	switch {
	case l < 1:
		l = 1
	case l > MaxLimit:
		l = MaxLimit
	}

	return Params{
		Page:   p,
		Limit:  l,
		Skip:   (p - 1) * l,
		Oldest: sort == SortOldest,
	}
}

// parseOr reads a leading base-10 integer ("12", "-3", "7abc" -> 7).
// It returns def when there is no leading integer or the value is 0.
func parseOr(s string, def int) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		// Saturate instead of overflowing; anything this large is clamped anyway.
		if n < 1_000_000_000 {
			n = n*10 + int(c-'0')
		}
		digits++
	}

	if digits == 0 || n == 0 {
		return def
	}
	if neg {
		return -n
	}
	return n
}
