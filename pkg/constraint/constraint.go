// SPDX-License-Identifier: MPL-2.0

package constraint

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"cabar-cli/pkg/version"
)

const (
	// AttrType is the attribute that the "type:name" prefix matches.
	AttrType = "type"

	attrName    = "name"
	attrVersion = "version"
)

var (
	// ErrMalformedConstraint is the sentinel error wrapped by MalformedConstraintError.
	ErrMalformedConstraint = errors.New("malformed constraint")

	typePrefixRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*):`)
	attrClauseRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.-]*)=(.*)$`)

	// compiled memoizes Compile by spec text.
	compiled sync.Map // map[string]*Constraint

	always = &Constraint{kind: kindAlways, text: "*"}
	never  = &Constraint{kind: kindNever, text: "<never>"}
)

const (
	kindMatch constraintKind = iota
	kindAlways
	kindNever
)

type (
	constraintKind int

	// Subject is anything a Constraint can be tested against.
	Subject interface {
		Name() string
		Version() version.Version
		// Attribute returns the named attribute and whether the subject has it.
		Attribute(key string) (string, bool)
	}

	// Spec is the structured, uncompiled form of a constraint.
	Spec struct {
		// Name is a literal, glob or /regex/ name matcher. Empty matches any name.
		Name string
		// Requirement restricts versions. Nil accepts any version.
		Requirement *version.Requirement
		// Attributes maps attribute names to literal, glob or /regex/ matchers.
		Attributes map[string]string
	}

	// Constraint is a compiled predicate over name, version and attributes.
	// Constraints are immutable and safe to share.
	Constraint struct {
		kind  constraintKind
		spec  Spec
		name  Matcher
		attrs []attrMatcher
		text  string
	}

	attrMatcher struct {
		key     string
		matcher Matcher
	}

	// MalformedConstraintError is returned when a constraint spec cannot be
	// compiled. It wraps ErrMalformedConstraint for errors.Is() compatibility.
	MalformedConstraintError struct {
		Value  string
		Reason string
		Cause  error
	}
)

// Error implements the error interface.
func (e *MalformedConstraintError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("malformed constraint %q: %v", e.Value, e.Cause)
	case e.Reason != "":
		return fmt.Sprintf("malformed constraint %q: %s", e.Value, e.Reason)
	default:
		return fmt.Sprintf("malformed constraint %q", e.Value)
	}
}

// Unwrap returns ErrMalformedConstraint so callers can use errors.Is for programmatic detection.
func (e *MalformedConstraintError) Unwrap() error { return ErrMalformedConstraint }

// Always returns the constraint that matches every subject.
func Always() *Constraint { return always }

// Never returns the constraint that matches nothing.
func Never() *Constraint { return never }

// Compile parses and compiles a constraint spec of the form
//
//	[type:]name[/requirement][,clause...]
//
// where each clause is either "key=value" (an attribute matcher) or another
// requirement term. Results are memoized per spec text.
//
//	Compile("ruby")                   // any version of ruby
//	Compile("ruby/>= 1.8, < 2.0")     // ruby in [1.8, 2.0)
//	Compile("lib:foo*/~> 1.2,arch=x86*")
func Compile(text string) (*Constraint, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "*" {
		return always, nil
	}
	if cached, ok := compiled.Load(trimmed); ok {
		return cached.(*Constraint), nil
	}

	spec, err := ParseSpec(trimmed)
	if err != nil {
		return nil, err
	}
	c, err := New(spec)
	if err != nil {
		var mcErr *MalformedConstraintError
		if errors.As(err, &mcErr) {
			mcErr.Value = trimmed
		}
		return nil, err
	}

	actual, _ := compiled.LoadOrStore(trimmed, c)
	return actual.(*Constraint), nil
}

// MustCompile is like Compile but panics on malformed input.
func MustCompile(text string) *Constraint {
	c, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseSpec splits constraint text into its structured form without compiling
// the matchers.
func ParseSpec(text string) (Spec, error) {
	spec := Spec{Attributes: map[string]string{}}
	rest := strings.TrimSpace(text)

	if m := typePrefixRegex.FindStringSubmatch(rest); m != nil {
		spec.Attributes[AttrType] = m[1]
		rest = rest[len(m[0]):]
	}

	nameEnd, err := nameTokenEnd(rest)
	if err != nil {
		return Spec{}, &MalformedConstraintError{Value: text, Cause: err}
	}
	spec.Name = strings.TrimSpace(rest[:nameEnd])
	if strings.ContainsAny(spec.Name, " \t\n") && !isRegexLiteral(spec.Name) {
		return Spec{}, &MalformedConstraintError{Value: text, Reason: "whitespace in name " + strconv.Quote(spec.Name)}
	}
	rest = rest[nameEnd:]

	var terms []string
	if strings.HasPrefix(rest, "/") {
		rest = rest[1:]
		end := strings.IndexByte(rest, ',')
		if end < 0 {
			end = len(rest)
		}
		terms = append(terms, rest[:end])
		rest = rest[end:]
	}

	if rest != "" {
		if rest[0] != ',' {
			return Spec{}, &MalformedConstraintError{Value: text, Reason: "unexpected " + rest}
		}
		for _, clause := range strings.Split(rest[1:], ",") {
			clause = strings.TrimSpace(clause)
			if clause == "" {
				continue
			}
			m := attrClauseRegex.FindStringSubmatch(clause)
			if m == nil {
				terms = append(terms, clause)
				continue
			}
			switch key, value := m[1], strings.TrimSpace(m[2]); key {
			case attrName:
				spec.Name = value
			case attrVersion:
				terms = append(terms, value)
			default:
				spec.Attributes[key] = value
			}
		}
	}

	if len(terms) > 0 {
		req, err := version.ParseRequirementList(terms)
		if err != nil {
			return Spec{}, &MalformedConstraintError{Value: text, Cause: err}
		}
		spec.Requirement = req
	}
	return spec, nil
}

// New compiles a structured spec.
func New(spec Spec) (*Constraint, error) {
	name, err := NewMatcher(spec.Name)
	if err != nil {
		return nil, err
	}

	c := &Constraint{kind: kindMatch, spec: spec, name: name}
	for _, key := range slices.Sorted(maps.Keys(spec.Attributes)) {
		m, err := NewMatcher(spec.Attributes[key])
		if err != nil {
			return nil, err
		}
		c.attrs = append(c.attrs, attrMatcher{key: key, matcher: m})
	}
	c.text = c.render()
	return c, nil
}

// Match reports whether the subject's name, version and attributes all match.
// A subject lacking a constrained attribute does not match.
func (c *Constraint) Match(s Subject) bool {
	switch c.kind {
	case kindAlways:
		return true
	case kindNever:
		return false
	}
	if s == nil || !c.name.Match(s.Name()) {
		return false
	}
	if c.spec.Requirement != nil && !c.spec.Requirement.SatisfiedBy(s.Version()) {
		return false
	}
	for _, a := range c.attrs {
		value, ok := s.Attribute(a.key)
		if !ok || !a.matcher.Match(value) {
			return false
		}
	}
	return true
}

// MatchesName reports whether the name matcher accepts name, ignoring
// version and attributes.
func (c *Constraint) MatchesName(name string) bool {
	switch c.kind {
	case kindAlways:
		return true
	case kindNever:
		return false
	}
	return c.name.Match(name)
}

// Name returns the textual name matcher ("*" for any).
func (c *Constraint) Name() string {
	if c.kind != kindMatch {
		return "*"
	}
	return c.name.String()
}

// HasLiteralName reports whether the name matcher is an exact name.
func (c *Constraint) HasLiteralName() bool {
	return c.kind == kindMatch && c.name.IsLiteral()
}

// Requirement returns the version requirement, or nil when unconstrained.
func (c *Constraint) Requirement() *version.Requirement {
	return c.spec.Requirement
}

// Attributes returns a copy of the attribute matcher texts.
func (c *Constraint) Attributes() map[string]string {
	return maps.Clone(c.spec.Attributes)
}

// WithRequirement returns a copy of c whose requirement is req.
func (c *Constraint) WithRequirement(req *version.Requirement) *Constraint {
	if c.kind != kindMatch {
		return c
	}
	spec := c.spec
	spec.Requirement = req
	// The name and attribute matchers were already valid for c.
	out, _ := New(spec)
	return out
}

// String renders the constraint in Compile syntax.
func (c *Constraint) String() string {
	return c.text
}

func (c *Constraint) render() string {
	var sb strings.Builder
	sb.WriteString(c.name.String())
	if c.spec.Requirement != nil && !c.spec.Requirement.IsDefault() {
		sb.WriteString("/")
		sb.WriteString(c.spec.Requirement.String())
	}
	for _, a := range c.attrs {
		sb.WriteString(",")
		sb.WriteString(a.key)
		sb.WriteString("=")
		sb.WriteString(a.matcher.String())
	}
	return sb.String()
}

// nameTokenEnd returns the index where the name token ends: the first "/" or
// ",", or the end of a leading /regex/flags literal.
func nameTokenEnd(s string) (int, error) {
	if strings.HasPrefix(s, "/") {
		closing := -1
		for i := 1; i < len(s); i++ {
			if s[i] == '\\' {
				i++
				continue
			}
			if s[i] == '/' {
				closing = i
				break
			}
		}
		if closing < 0 {
			return 0, errors.New("unterminated regexp name")
		}
		end := closing + 1
		for end < len(s) && s[end] >= 'a' && s[end] <= 'z' {
			end++
		}
		return end, nil
	}
	if i := strings.IndexAny(s, "/,"); i >= 0 {
		return i, nil
	}
	return len(s), nil
}
