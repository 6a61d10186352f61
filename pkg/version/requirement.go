// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// OpEqual matches exactly the stated version.
	OpEqual Operator = "="
	// OpNotEqual matches anything but the stated version.
	OpNotEqual Operator = "!="
	// OpGreater matches versions above the stated version.
	OpGreater Operator = ">"
	// OpLess matches versions below the stated version.
	OpLess Operator = "<"
	// OpGreaterEqual matches the stated version and above.
	OpGreaterEqual Operator = ">="
	// OpLessEqual matches the stated version and below.
	OpLessEqual Operator = "<="
	// OpPessimistic matches the stated version up to, but excluding, its Bump.
	OpPessimistic Operator = "~>"
)

// ErrMalformedRequirement is the sentinel error wrapped by MalformedRequirementError.
var ErrMalformedRequirement = errors.New("malformed requirement")

// operators is ordered longest-first so prefix matching picks ">=" over ">".
var operators = []Operator{OpPessimistic, OpGreaterEqual, OpLessEqual, OpNotEqual, OpEqual, OpGreater, OpLess}

type (
	// Operator is a requirement comparison operator.
	Operator string

	// Pair is one (operator, version) term of a Requirement.
	Pair struct {
		Op      Operator
		Version Version
	}

	// Requirement is a conjunction of pairs. A Requirement is never mutated
	// after construction.
	Requirement struct {
		pairs []Pair
	}

	// MalformedRequirementError is returned when a requirement term cannot be
	// parsed. It wraps ErrMalformedRequirement for errors.Is() compatibility.
	MalformedRequirementError struct {
		Value string
		Cause error
	}
)

// Error implements the error interface.
func (e *MalformedRequirementError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed requirement %q: %v", e.Value, e.Cause)
	}
	return fmt.Sprintf("malformed requirement %q", e.Value)
}

// Unwrap returns ErrMalformedRequirement so callers can use errors.Is for programmatic detection.
func (e *MalformedRequirementError) Unwrap() error { return ErrMalformedRequirement }

// DefaultRequirement returns ">= 0", which every version satisfies.
func DefaultRequirement() *Requirement {
	return &Requirement{pairs: []Pair{{Op: OpGreaterEqual, Version: Version{}}}}
}

// NewRequirement builds a Requirement from already parsed pairs.
// An empty pair list yields DefaultRequirement.
func NewRequirement(pairs ...Pair) *Requirement {
	if len(pairs) == 0 {
		return DefaultRequirement()
	}
	return &Requirement{pairs: append([]Pair(nil), pairs...)}
}

// ParseRequirement parses a comma separated list of terms, e.g. ">= 1.0, < 2".
// An empty string yields DefaultRequirement.
func ParseRequirement(s string) (*Requirement, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultRequirement(), nil
	}
	return ParseRequirementList(strings.Split(s, ","))
}

// ParseRequirementList parses one term per element. Each term is either
// "<op> <version>", a bare version (meaning "= version") or a bare operator
// (meaning "<op> 0").
func ParseRequirementList(terms []string) (*Requirement, error) {
	pairs := make([]Pair, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		p, err := ParsePair(term)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return NewRequirement(pairs...), nil
}

// ParsePair parses a single requirement term.
func ParsePair(term string) (Pair, error) {
	raw := strings.TrimSpace(term)
	op := OpEqual
	rest := raw
	for _, candidate := range operators {
		if strings.HasPrefix(raw, string(candidate)) {
			op = candidate
			rest = strings.TrimSpace(raw[len(candidate):])
			break
		}
	}
	if rest == "" {
		if raw == "" {
			return Pair{}, &MalformedRequirementError{Value: term}
		}
		return Pair{Op: op, Version: Version{}}, nil
	}
	v, err := Parse(rest)
	if err != nil {
		return Pair{}, &MalformedRequirementError{Value: term, Cause: err}
	}
	return Pair{Op: op, Version: v}, nil
}

// MustParseRequirement is like ParseRequirement but panics on malformed input.
func MustParseRequirement(s string) *Requirement {
	r, err := ParseRequirement(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Pairs returns a copy of the requirement terms.
func (r *Requirement) Pairs() []Pair {
	if r == nil {
		return nil
	}
	return append([]Pair(nil), r.pairs...)
}

// SatisfiedBy reports whether v satisfies every term. A nil Requirement is
// satisfied by any version.
func (r *Requirement) SatisfiedBy(v Version) bool {
	if r == nil {
		return true
	}
	for _, p := range r.pairs {
		if !p.SatisfiedBy(v) {
			return false
		}
	}
	return true
}

// IsDefault reports whether r is the always-true ">= 0" requirement.
func (r *Requirement) IsDefault() bool {
	if r == nil {
		return true
	}
	return len(r.pairs) == 1 && r.pairs[0].Op == OpGreaterEqual && Compare(r.pairs[0].Version, Version{}) == 0
}

// String renders the requirement as a comma separated term list.
func (r *Requirement) String() string {
	if r == nil {
		return DefaultRequirement().String()
	}
	parts := make([]string, len(r.pairs))
	for i, p := range r.pairs {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// SatisfiedBy reports whether v satisfies this single term.
func (p Pair) SatisfiedBy(v Version) bool {
	c := Compare(v, p.Version)
	switch p.Op {
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	case OpGreater:
		return c > 0
	case OpLess:
		return c < 0
	case OpGreaterEqual:
		return c >= 0
	case OpLessEqual:
		return c <= 0
	case OpPessimistic:
		return c >= 0 && Compare(v, p.Version.Bump()) < 0
	default:
		return false
	}
}

// String renders the term as "<op> <version>".
func (p Pair) String() string {
	return string(p.Op) + " " + p.Version.String()
}
