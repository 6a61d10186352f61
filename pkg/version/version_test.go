// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		epoch int
	}{
		{input: "1.0", epoch: 0},
		{input: "1.0-1", epoch: 0},
		{input: "2:0.1-1", epoch: 2},
		{input: "1.2.3rc4", epoch: 0},
		{input: "1.0-beta-2", epoch: 0},
		{input: "20240101", epoch: 0},
		{input: " 3.4 ", epoch: 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if v.Epoch() != tt.epoch {
				t.Errorf("Parse(%q).Epoch() = %d, want %d", tt.input, v.Epoch(), tt.epoch)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "-1", "1.0-", "a:1.0", "1 0", "1.0/2", ":1.0"} {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", input)
			}
			if !errors.Is(err, ErrMalformedVersion) {
				t.Errorf("Parse(%q) error does not wrap ErrMalformedVersion: %v", input, err)
			}
			var mvErr *MalformedVersionError
			if !errors.As(err, &mvErr) {
				t.Errorf("Parse(%q) error is not *MalformedVersionError: %T", input, err)
			}
		})
	}
}

func TestCompare_Ordering(t *testing.T) {
	t.Parallel()

	// Each entry must sort strictly after the previous one.
	ordered := []string{
		"0.9",
		"1.0",
		"1.0-1",
		"1.0-2",
		"1.0.0",
		"1.1-1",
		"1.2",
		"1.2.9",
		"1.2a",
		"1.10",
		"99999999999999999999999",
		"1:0.1",
		"2:0.1-1",
	}

	for i := 1; i < len(ordered); i++ {
		a := MustParse(ordered[i-1])
		b := MustParse(ordered[i])
		if Compare(a, b) != -1 {
			t.Errorf("Compare(%s, %s) = %d, want -1", a, b, Compare(a, b))
		}
		if Compare(b, a) != 1 {
			t.Errorf("Compare(%s, %s) = %d, want 1", b, a, Compare(b, a))
		}
	}

	// Transitivity across the whole chain.
	for i := range ordered {
		for j := i + 1; j < len(ordered); j++ {
			if !MustParse(ordered[i]).Less(MustParse(ordered[j])) {
				t.Errorf("expected %s < %s", ordered[i], ordered[j])
			}
		}
	}
}

func TestCompare_LeadingZerosAreEqual(t *testing.T) {
	t.Parallel()

	a := MustParse("1.002")
	b := MustParse("1.2")
	if !a.Equal(b) {
		t.Errorf("expected %s == %s", a, b)
	}
	if a.String() != "1.002" {
		t.Errorf("String() = %q, want original text", a.String())
	}
}

func TestZeroValue(t *testing.T) {
	t.Parallel()

	var zero Version
	if !zero.IsZero() {
		t.Error("expected zero value to report IsZero")
	}
	if !zero.Equal(MustParse("0")) {
		t.Error("expected zero value to equal \"0\"")
	}
	if !zero.Less(MustParse("0.1")) {
		t.Error("expected zero value to sort before 0.1")
	}
	if zero.String() != "0" {
		t.Errorf("zero String() = %q, want \"0\"", zero.String())
	}
}

func TestBump(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "1.2", want: "1.3"},
		{input: "1.2.3", want: "1.2.4"},
		{input: "1.9", want: "1.10"},
		{input: "2:1.0-5", want: "2:1.1"},
		{input: "1.2rc", want: "1.3"},
		{input: "7", want: "8"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got := MustParse(tt.input).Bump()
			if !got.Equal(MustParse(tt.want)) {
				t.Errorf("Bump(%s) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestSortDescending(t *testing.T) {
	t.Parallel()

	vs := []Version{MustParse("1.0"), MustParse("2.0"), MustParse("1.5"), MustParse("1.00")}
	SortDescending(vs)

	want := []string{"2.0", "1.5", "1.0", "1.00"}
	for i, v := range vs {
		if v.String() != want[i] {
			t.Errorf("SortDescending()[%d] = %s, want %s", i, v, want[i])
		}
	}
}
