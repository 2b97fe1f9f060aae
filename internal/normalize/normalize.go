// Package normalize canonicalizes raw location codes and matches glob
// patterns against them. Every function here is pure: no I/O, no shared
// state, safe to call from any goroutine.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	tenantPrefix = regexp.MustCompile(`^(USER_[A-Z0-9]+_|WH_|DEFAULT_)`)
	dashRuns     = regexp.MustCompile(`-{2,}`)
	sepRuns      = regexp.MustCompile(`[_\s]+`)
	structured   = regexp.MustCompile(`^(\d{1,2})-([A-Z])-(\d{1,3})-?([A-Z])$`)
)

// Canonical canonicalizes a raw location code: trims whitespace, uppercases,
// unifies separators, strips a single known tenant prefix, collapses
// repeated dashes, and zero-pads structured storage codes to AA-R-PPP-L.
//
// Canonical never panics on unrecognized input; anything that doesn't match
// a known shape is returned trimmed/upper/dash-collapsed. Canonical is
// idempotent: Canonical(Canonical(x)) == Canonical(x).
func Canonical(raw string) string {
	c := strings.ToUpper(strings.TrimSpace(raw))
	c = tenantPrefix.ReplaceAllString(c, "")
	c = sepRuns.ReplaceAllString(c, "-")
	c = dashRuns.ReplaceAllString(c, "-")
	c = strings.Trim(c, "-")

	if m := structured.FindStringSubmatch(c); m != nil {
		aisle, _ := strconv.Atoi(m[1])
		position, _ := strconv.Atoi(m[3])
		return fmtStructured(aisle, m[2], position, m[4])
	}
	return c
}

func fmtStructured(aisle int, rack string, position int, level string) string {
	return padInt(aisle, 2) + "-" + rack + "-" + padInt(position, 3) + "-" + level
}

func padInt(v, width int) string {
	s := strconv.Itoa(v)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// Decoded is the structural decomposition of a code matching the
// `AA-R-PPP-L` storage shape (spec §4.A's structured re-emit pattern).
type Decoded struct {
	Aisle    int
	Rack     string
	Position int
	Level    string
}

// Decode parses a canonical code's structured storage shape. ok is
// false for codes that don't match the `AA-R-PPP-L` pattern at all —
// evaluators use that to distinguish "not structured" from "structured
// but out of bounds".
func Decode(canonicalCode string) (Decoded, bool) {
	m := structured.FindStringSubmatch(canonicalCode)
	if m == nil {
		return Decoded{}, false
	}
	aisle, _ := strconv.Atoi(m[1])
	position, _ := strconv.Atoi(m[3])
	return Decoded{Aisle: aisle, Rack: m[2], Position: position, Level: m[4]}, true
}

// GlobMatch reports whether code matches pattern, where '*' matches any run
// of characters (including none), '?' matches exactly one character, and
// '[...]' matches one character from the enclosed class. Matching is
// anchored: the whole of code must match the whole of pattern.
func GlobMatch(pattern, code string) bool {
	return globMatch([]rune(pattern), []rune(code))
}

func globMatch(pattern, code []rune) bool {
	if len(pattern) == 0 {
		return len(code) == 0
	}
	switch pattern[0] {
	case '*':
		// Try consuming zero or more runes of code for this '*'.
		for i := 0; i <= len(code); i++ {
			if globMatch(pattern[1:], code[i:]) {
				return true
			}
		}
		return false
	case '?':
		if len(code) == 0 {
			return false
		}
		return globMatch(pattern[1:], code[1:])
	case '[':
		end := indexRune(pattern, ']')
		if end < 0 {
			// Unterminated class: treat '[' as a literal.
			if len(code) == 0 || code[0] != '[' {
				return false
			}
			return globMatch(pattern[1:], code[1:])
		}
		if len(code) == 0 {
			return false
		}
		if !classMatch(pattern[1:end], code[0]) {
			return false
		}
		return globMatch(pattern[end+1:], code[1:])
	default:
		if len(code) == 0 || code[0] != pattern[0] {
			return false
		}
		return globMatch(pattern[1:], code[1:])
	}
}

func classMatch(class []rune, r rune) bool {
	negate := false
	if len(class) > 0 && (class[0] == '^' || class[0] == '!') {
		negate = true
		class = class[1:]
	}
	matched := false
	for i := 0; i < len(class); i++ {
		if i+2 < len(class) && class[i+1] == '-' {
			if class[i] <= r && r <= class[i+2] {
				matched = true
			}
			i += 2
			continue
		}
		if class[i] == r {
			matched = true
		}
	}
	return matched != negate
}

func indexRune(s []rune, r rune) int {
	for i, c := range s {
		if c == r {
			return i
		}
	}
	return -1
}
