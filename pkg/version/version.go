// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrMalformedVersion is the sentinel error wrapped by MalformedVersionError.
var ErrMalformedVersion = errors.New("malformed version")

// versionRegex splits "[epoch:]upstream[-revision]". The lazy upstream group
// makes the last hyphen start the revision.
var versionRegex = regexp.MustCompile(`^(?:(\d+):)?([0-9A-Za-z](?:[0-9A-Za-z.+~_-]*?[0-9A-Za-z.+~_])?)(?:-([0-9A-Za-z.+~_]+))?$`)

type (
	// Version is an immutable, totally ordered version value.
	// The zero value is equivalent to "0".
	Version struct {
		epoch    int
		upstream tokens
		revision tokens
		original string
	}

	// MalformedVersionError is returned when a string does not match the
	// version grammar. It wraps ErrMalformedVersion for errors.Is() compatibility.
	MalformedVersionError struct {
		Value string
	}

	// tokens is an alternating run sequence. Even indexes hold non-digit runs,
	// odd indexes hold digit runs normalized without leading zeros.
	tokens []string
)

// Error implements the error interface.
func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed version %q", e.Value)
}

// Unwrap returns ErrMalformedVersion so callers can use errors.Is for programmatic detection.
func (e *MalformedVersionError) Unwrap() error { return ErrMalformedVersion }

// Parse parses s into a Version.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	m := versionRegex.FindStringSubmatch(raw)
	if m == nil {
		return Version{}, &MalformedVersionError{Value: s}
	}

	v := Version{original: raw}
	if m[1] != "" {
		epoch, err := strconv.Atoi(m[1])
		if err != nil {
			return Version{}, &MalformedVersionError{Value: s}
		}
		v.epoch = epoch
	}
	v.upstream = tokenize(m[2])
	v.revision = tokenize(m[3])
	return v, nil
}

// MustParse is like Parse but panics on malformed input.
// It is intended for tests and package-level literals.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Epoch returns the epoch component.
func (v Version) Epoch() int { return v.epoch }

// String returns the text the version was parsed from.
func (v Version) String() string {
	if v.original == "" {
		return "0"
	}
	return v.original
}

// IsZero reports whether v is the zero value.
func (v Version) IsZero() bool {
	return v.original == "" && v.epoch == 0 && len(v.upstream) == 0 && len(v.revision) == 0
}

// Compare returns -1, 0 or 1 when v is lower than, equal to, or greater than other.
func (v Version) Compare(other Version) int {
	return Compare(v, other)
}

// Equal reports whether v and other have the same epoch, upstream and revision.
func (v Version) Equal(other Version) bool { return Compare(v, other) == 0 }

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool { return Compare(v, other) < 0 }

// Bump returns the version used as the exclusive upper bound of "~>":
// the least-significant digit run of the upstream part is incremented and
// everything after it is dropped, together with the revision.
//
//	1.2   -> 1.3
//	1.2.3 -> 1.2.4
//	2:1.0 -> 2:1.1
func (v Version) Bump() Version {
	up := v.upstreamTokens()
	last := -1
	for i := len(up) - 1; i >= 0; i-- {
		if i%2 == 1 {
			last = i
			break
		}
	}
	if last < 0 {
		// No numeric run to increment: append one.
		up = append(slices.Clone(up), "1")
		last = len(up) - 1
	} else {
		up = slices.Clone(up[:last+1])
		up[last] = incrementDecimal(up[last])
	}

	bumped := Version{epoch: v.epoch, upstream: up}
	bumped.original = bumped.render()
	return bumped
}

// Compare orders two versions by (epoch, upstream, revision).
func Compare(a, b Version) int {
	switch {
	case a.epoch < b.epoch:
		return -1
	case a.epoch > b.epoch:
		return 1
	}
	if c := compareTokens(a.upstreamTokens(), b.upstreamTokens()); c != 0 {
		return c
	}
	return compareTokens(a.revision, b.revision)
}

// SortDescending sorts versions highest first. Equal versions keep their order.
func SortDescending(vs []Version) {
	slices.SortStableFunc(vs, func(a, b Version) int { return Compare(b, a) })
}

// upstreamTokens treats the zero Version as "0".
func (v Version) upstreamTokens() tokens {
	if v.upstream == nil && v.original == "" {
		return tokens{"", "0"}
	}
	return v.upstream
}

func (v Version) render() string {
	var sb strings.Builder
	if v.epoch != 0 {
		sb.WriteString(strconv.Itoa(v.epoch))
		sb.WriteByte(':')
	}
	for _, t := range v.upstream {
		sb.WriteString(t)
	}
	if len(v.revision) > 0 {
		sb.WriteByte('-')
		for _, t := range v.revision {
			sb.WriteString(t)
		}
	}
	return sb.String()
}

func tokenize(s string) tokens {
	if s == "" {
		return nil
	}
	var out tokens
	i := 0
	for i < len(s) {
		j := i
		for j < len(s) && !isDigit(s[j]) {
			j++
		}
		out = append(out, s[i:j])
		if j == len(s) {
			break
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		out = append(out, normalizeDigits(s[j:k]))
		i = k
	}
	return out
}

func compareTokens(a, b tokens) int {
	n := max(len(a), len(b))
	for i := range n {
		numeric := i%2 == 1
		ta, okA := at(a, i)
		tb, okB := at(b, i)
		if numeric {
			// A missing digit run sorts below any present one.
			switch {
			case !okA && !okB:
				continue
			case !okA:
				return -1
			case !okB:
				return 1
			}
			if c := compareDecimal(ta, tb); c != 0 {
				return c
			}
			continue
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
	}
	return 0
}

func at(t tokens, i int) (string, bool) {
	if i < len(t) {
		return t[i], true
	}
	return "", false
}

// compareDecimal compares two normalized digit strings of any length.
func compareDecimal(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func normalizeDigits(s string) string {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}

func incrementDecimal(s string) string {
	b := []byte(s)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "1" + string(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
