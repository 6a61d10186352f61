// SPDX-License-Identifier: MPL-2.0

package render

import (
	"errors"
	"fmt"
	"io"

	"cabar-cli/pkg/resolver"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// EnvFormatShell writes "export NAME=value" lines.
	EnvFormatShell EnvFormat = "sh"
	// EnvFormatDotenv writes "NAME=value" lines.
	EnvFormatDotenv EnvFormat = "dotenv"
)

var (
	// ErrInvalidEnvFormat is returned for unknown EnvFormat values.
	ErrInvalidEnvFormat = errors.New("invalid env format")
	// ErrInvalidEnvName is returned for variable names the shell cannot assign.
	ErrInvalidEnvName = errors.New("invalid environment variable name")
)

type (
	// EnvFormat selects the assignment syntax.
	EnvFormat string

	// EnvOptions configures Env.
	EnvOptions struct {
		Format EnvFormat
	}
)

// Env writes one assignment per composed env-backed facet, in composition
// order. Values are quoted for bash.
func Env(w io.Writer, m *resolver.FacetMap, opts EnvOptions) error {
	prefix := ""
	switch opts.Format {
	case "", EnvFormatShell:
		prefix = "export "
	case EnvFormatDotenv:
	default:
		return fmt.Errorf("%w: %q (valid: sh, dotenv)", ErrInvalidEnvFormat, opts.Format)
	}

	for _, a := range m.Environment() {
		line, err := assignment(a)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, prefix+line); err != nil {
			return err
		}
	}
	return nil
}

func assignment(a resolver.EnvAssignment) (string, error) {
	if !syntax.ValidName(a.Name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEnvName, a.Name)
	}
	quoted, err := syntax.Quote(a.Value, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("quote %s: %w", a.Name, err)
	}
	return a.Name + "=" + quoted, nil
}
