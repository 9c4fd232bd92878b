package util

import "strings"

// MaskEmail hides most of an address so a requester learns only a hint
// of where the access code went, e.g. "joh***@example.com"
func MaskEmail(e string) string {
	at := strings.IndexByte(e, '@')
	if at <= 0 {
		return "***"
	}

	visible := 3
	if at < visible {
		visible = at
	}

	return e[:visible] + "***@" + e[at+1:]
}
