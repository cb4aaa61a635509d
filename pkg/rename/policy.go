package rename

import (
	"fmt"
	"strings"
	"unicode"
)

// Policy normalises a trimmed, non-empty answer before it is recorded.
type Policy func(string) string

// Verbatim keeps the answer as typed.
func Verbatim(name string) string {
	return name
}

// Slug lowercases the answer and replaces each run of whitespace with a
// single underscore, e.g. "Walk In Robe" becomes "walk_in_robe".
func Slug(name string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteByte('_')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Policy names accepted by [ParsePolicy].
const (
	PolicyVerbatim = "verbatim"
	PolicySlug     = "slug"
)

// ParsePolicy returns the policy called name. An empty name selects Verbatim.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", PolicyVerbatim:
		return Verbatim, nil
	case PolicySlug:
		return Slug, nil
	}
	return nil, fmt.Errorf("invalid rename policy: %q (must be one of: %s, %s)", name, PolicyVerbatim, PolicySlug)
}
