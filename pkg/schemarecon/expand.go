package schemarecon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PrecisionScaleRangePattern matches the compact range notation "a-b" used
// for decimal precision and scale bounds in allow-list specifications. A
// trailing ')' is tolerated because range tokens are often sliced out of a
// decimal type declaration at the comma.
var PrecisionScaleRangePattern = regexp.MustCompile(`^(\d+)-(\d+)\)?$`)

// decimalTypePattern matches a whitespace-normalized decimal type token with
// explicit precision and scale, either of which may use range notation.
// Single-argument forms like decimal(10) deliberately do not match and pass
// through unchanged.
var decimalTypePattern = regexp.MustCompile(`^decimal\((\d+(?:-\d+)?),(\d+(?:-\d+)?)\)$`)

// MaxRangeSpan caps how many discrete values a single a-b range may expand
// to. Allow-list parsing is the only place unbounded work could occur, so a
// pathological range like 0-1000000 is rejected instead of expanded.
const MaxRangeSpan = 1000

// ExpandPrecisionRange expands a precision/scale range token into the
// inclusive run of integers it denotes, rendered as decimal strings.
//
// The token may carry a trailing ')' when it was sliced out of a decimal
// type declaration at the comma; a bare "a-b" expands the same way, and the
// parenthesis never appears in the output. Tokens without range notation (a
// bare integer, the empty string, an identifier) are returned unchanged,
// parenthesis and all. No case or whitespace normalization is performed.
func ExpandPrecisionRange(token string) ([]string, error) {
	m := PrecisionScaleRangePattern.FindStringSubmatch(token)
	if m == nil {
		return []string{token}, nil
	}

	return expandBounds(m[1], m[2])
}

// expandBounds renders the inclusive integer run [first, second] as decimal
// strings. Reversed or oversized ranges are errors, never silently reversed.
func expandBounds(first, second string) ([]string, error) {
	lo, err := strconv.Atoi(first)
	if err != nil {
		return nil, fmt.Errorf("invalid range bound %q: %w", first, err)
	}
	hi, err := strconv.Atoi(second)
	if err != nil {
		return nil, fmt.Errorf("invalid range bound %q: %w", second, err)
	}
	if lo > hi {
		return nil, fmt.Errorf("reversed range %d-%d: first bound must not exceed second", lo, hi)
	}
	if hi-lo+1 > MaxRangeSpan {
		return nil, fmt.Errorf("range %d-%d expands to %d values, exceeding the limit of %d", lo, hi, hi-lo+1, MaxRangeSpan)
	}

	values := make([]string, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		values = append(values, strconv.Itoa(v))
	}
	return values, nil
}

// typeToken is the parsed form of a single allow-list type token: either a
// plain opaque token or a decimal shape with precision/scale specs, each
// optionally carrying the '!' negation marker.
type typeToken struct {
	negated   bool
	plain     string // set when the token is not a decimal shape
	precision string // decimal only; integer or a-b range
	scale     string // decimal only; integer or a-b range
}

// parseTypeToken normalizes and classifies a type token. Whitespace anywhere
// inside the token is insignificant and removed first.
func parseTypeToken(raw string) typeToken {
	normalized := stripWhitespace(raw)

	tok := typeToken{}
	body, negated := strings.CutPrefix(normalized, "!")
	tok.negated = negated

	m := decimalTypePattern.FindStringSubmatch(body)
	if m == nil {
		tok.plain = body
		return tok
	}
	tok.precision = m[1]
	tok.scale = m[2]
	return tok
}

// ExpandTypeRange expands a type token into the explicit list of type
// strings it denotes.
//
// A decimal token whose precision and/or scale uses range notation expands
// to the full cross product, precision ascending in the outer loop and scale
// ascending in the inner loop, e.g. decimal(4-5,1-2) yields decimal(4,1),
// decimal(4,2), decimal(5,1), decimal(5,2). A leading '!' negation marker is
// preserved on every expanded value. Any other token is returned as a
// single-element slice containing the whitespace-normalized input.
func ExpandTypeRange(raw string) ([]string, error) {
	tok := parseTypeToken(raw)

	prefix := ""
	if tok.negated {
		prefix = "!"
	}

	if tok.precision == "" {
		return []string{prefix + tok.plain}, nil
	}

	precisions, err := expandRangeOrInt(tok.precision)
	if err != nil {
		return nil, fmt.Errorf("decimal precision: %w", err)
	}
	scales, err := expandRangeOrInt(tok.scale)
	if err != nil {
		return nil, fmt.Errorf("decimal scale: %w", err)
	}

	expanded := make([]string, 0, len(precisions)*len(scales))
	for _, p := range precisions {
		for _, s := range scales {
			expanded = append(expanded, fmt.Sprintf("%sdecimal(%s,%s)", prefix, p, s))
		}
	}
	return expanded, nil
}

// expandRangeOrInt expands an a-b range to its integer run, or returns a
// plain integer value as-is. Unlike ExpandPrecisionRange this operates on a
// value already isolated by explicit comma/paren delimiters, so there is no
// trailing parenthesis to consume.
func expandRangeOrInt(value string) ([]string, error) {
	m := PrecisionScaleRangePattern.FindStringSubmatch(value)
	if m == nil {
		return []string{value}, nil
	}
	return expandBounds(m[1], m[2])
}

// stripWhitespace removes every whitespace character, wherever it appears.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return -1
		}
		return r
	}, s)
}
