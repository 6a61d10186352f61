// SPDX-License-Identifier: MPL-2.0

package constraint

import (
	"regexp"
	"strings"
)

const (
	matchAny matcherKind = iota
	matchLiteral
	matchPattern
)

type (
	matcherKind int

	// Matcher tests a string against a literal, a glob, or a /regex/ pattern.
	// Matchers are immutable once built.
	Matcher struct {
		kind    matcherKind
		literal string
		pattern *regexp.Regexp
		source  string
	}
)

// NewMatcher builds a Matcher from its textual form:
//
//	""  or "*"     matches anything
//	"foo"          literal
//	"foo*", "b?r"  glob, converted to an anchored regexp
//	"/^foo/i"      regexp used as-is, "i" enables case-insensitive matching
func NewMatcher(text string) (Matcher, error) {
	switch {
	case text == "" || text == "*":
		return Matcher{kind: matchAny, source: text}, nil
	case isRegexLiteral(text):
		re, err := compileRegexLiteral(text)
		if err != nil {
			return Matcher{}, err
		}
		return Matcher{kind: matchPattern, pattern: re, source: text}, nil
	case strings.ContainsAny(text, "*?"):
		re, err := regexp.Compile(GlobToRegexp(text))
		if err != nil {
			return Matcher{}, &MalformedConstraintError{Value: text, Reason: err.Error()}
		}
		return Matcher{kind: matchPattern, pattern: re, source: text}, nil
	default:
		return Matcher{kind: matchLiteral, literal: text, source: text}, nil
	}
}

// Match reports whether s matches.
func (m Matcher) Match(s string) bool {
	switch m.kind {
	case matchAny:
		return true
	case matchLiteral:
		return s == m.literal
	case matchPattern:
		return m.pattern.MatchString(s)
	default:
		return false
	}
}

// IsAny reports whether the matcher accepts every string.
func (m Matcher) IsAny() bool { return m.kind == matchAny }

// IsLiteral reports whether the matcher is an exact string comparison.
func (m Matcher) IsLiteral() bool { return m.kind == matchLiteral }

// String returns the textual form the matcher was built from.
func (m Matcher) String() string {
	if m.kind == matchAny {
		return "*"
	}
	return m.source
}

// GlobToRegexp converts glob syntax into an anchored regular expression.
// "*" becomes ".*", "?" becomes "." and every other metacharacter, including
// ".", is escaped.
func GlobToRegexp(glob string) string {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}

func isRegexLiteral(text string) bool {
	if len(text) < 2 || text[0] != '/' {
		return false
	}
	return strings.LastIndexByte(text, '/') > 0
}

func compileRegexLiteral(text string) (*regexp.Regexp, error) {
	end := strings.LastIndexByte(text, '/')
	body, flags := text[1:end], text[end+1:]
	prefix := ""
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			prefix += string(f)
		default:
			return nil, &MalformedConstraintError{Value: text, Reason: "unknown regexp flag " + string(f)}
		}
	}
	if prefix != "" {
		body = "(?" + prefix + ")" + body
	}
	re, err := regexp.Compile(body)
	if err != nil {
		return nil, &MalformedConstraintError{Value: text, Reason: err.Error()}
	}
	return re, nil
}
