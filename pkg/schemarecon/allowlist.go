package schemarecon

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/recon-engine/pkg/apperrors"
)

// AllowList maps a normalized source type token to the ordered list of
// target type tokens it is declared compatible with. The lists preserve
// specification order, accumulate across entries sharing a source key, and
// are never deduplicated.
type AllowList map[string][]string

// Allows reports whether targetType is declared compatible with sourceType.
// Both arguments must already be whitespace-normalized. Compatibility is
// asymmetric: a rule A:B says nothing about B:A.
func (a AllowList) Allows(sourceType, targetType string) bool {
	for _, t := range a[sourceType] {
		if t == targetType {
			return true
		}
	}
	return false
}

// ParseAllowList parses a compact textual allow-list specification into a
// fully expanded AllowList.
//
// The specification is a comma-separated sequence of source:target entries,
// where each side is a type token that may use decimal(p,s) range notation
// (see ExpandTypeRange). Whitespace anywhere in the specification is
// insignificant. An empty specification yields an empty mapping. Parsing is
// all-or-nothing: any malformed entry fails the whole call with an error
// wrapping apperrors.ErrMalformedAllowList that names the offending entry.
func ParseAllowList(spec string) (AllowList, error) {
	allowed := make(AllowList)
	normalized := stripWhitespace(spec)
	if normalized == "" {
		return allowed, nil
	}

	for _, entry := range splitEntries(normalized) {
		parts := strings.Split(entry, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: entry %q must be exactly source:target", apperrors.ErrMalformedAllowList, entry)
		}
		for _, part := range parts {
			if strings.Count(part, "(") != strings.Count(part, ")") {
				return nil, fmt.Errorf("%w: entry %q has unbalanced parentheses", apperrors.ErrMalformedAllowList, entry)
			}
		}

		sources, err := ExpandTypeRange(parts[0])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", apperrors.ErrMalformedAllowList, entry, err)
		}
		targets, err := ExpandTypeRange(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", apperrors.ErrMalformedAllowList, entry, err)
		}

		// Cross product over this entry's own expansion lists only.
		for _, s := range sources {
			for _, t := range targets {
				allowed[s] = append(allowed[s], t)
			}
		}
	}

	return allowed, nil
}

// splitEntries splits a specification on commas, ignoring commas nested
// inside parentheses so decimal(38,0) stays intact.
func splitEntries(spec string) []string {
	var entries []string
	var current strings.Builder
	depth := 0

	for _, ch := range spec {
		switch ch {
		case '(':
			depth++
			current.WriteRune(ch)
		case ')':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				entries = append(entries, current.String())
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}
	entries = append(entries, current.String())

	return entries
}
