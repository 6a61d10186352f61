// SPDX-License-Identifier: MPL-2.0

package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// FormatYAML selects YAML output.
	FormatYAML Format = "yaml"
	// FormatTOML selects TOML output.
	FormatTOML Format = "toml"
)

// ErrInvalidFormat is returned for unknown document formats.
var ErrInvalidFormat = errors.New("invalid document format")

// Format names a document encoding.
type Format string

// Write encodes doc in the given format.
func Write(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatYAML:
		return YAML(w, doc)
	case FormatTOML:
		return TOML(w, doc)
	default:
		return fmt.Errorf("%w: %q (valid: yaml, toml)", ErrInvalidFormat, format)
	}
}

// YAML writes doc as YAML with two-space indentation.
func YAML(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// TOML writes doc as TOML.
func TOML(w io.Writer, doc *Document) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	return nil
}
