// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"cabar-cli/pkg/constraint"
	"cabar-cli/pkg/version"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme selects the output palette.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// every field-level error.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// SearchPath lists the directories scanned for component manifests.
		SearchPath []string `json:"search_path" mapstructure:"search_path"`
		// Require lists top-level constraints.
		Require []string `json:"require" mapstructure:"require"`
		// Select lists constraints applied to the available pool before resolution.
		Select []string `json:"select" mapstructure:"select"`
		// DefaultVersions maps component names to preferred version requirements.
		DefaultVersions map[string]string `json:"default_versions" mapstructure:"default_versions"`
		// UnresolvedOK turns unresolved dependencies into warnings.
		UnresolvedOK bool `json:"unresolved_ok" mapstructure:"unresolved_ok"`
		// EnvOverlay composes the process environment over component facets.
		EnvOverlay bool `json:"env_overlay" mapstructure:"env_overlay"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and rendered issue guidance
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate reports an unknown color scheme. The empty value means auto.
func (c ColorScheme) Validate() error {
	switch c {
	case "", ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		SearchPath:      []string{},
		Require:         []string{},
		Select:          []string{},
		DefaultVersions: map[string]string{},
		EnvOverlay:      true,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Validate checks the fields CUE cannot: constraint and requirement syntax.
func (c *Config) Validate() error {
	var errs []error
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	for i, spec := range c.Require {
		if _, err := constraint.Compile(spec); err != nil {
			errs = append(errs, fmt.Errorf("require[%d]: %w", i, err))
		}
	}
	for i, spec := range c.Select {
		if _, err := constraint.Compile(spec); err != nil {
			errs = append(errs, fmt.Errorf("select[%d]: %w", i, err))
		}
	}
	if _, err := c.DefaultVersionRequirements(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// DefaultVersionRequirements parses DefaultVersions.
func (c *Config) DefaultVersionRequirements() (map[string]*version.Requirement, error) {
	out := make(map[string]*version.Requirement, len(c.DefaultVersions))
	for name, text := range c.DefaultVersions {
		req, err := version.ParseRequirement(text)
		if err != nil {
			return nil, fmt.Errorf("default_versions.%s: %w", name, err)
		}
		out[name] = req
	}
	return out, nil
}
