// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"cabar-cli/internal/issue"
	"cabar-cli/pkg/cueutil"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "cabar"
	// ConfigFileName is the name of the config file inside the config directory.
	ConfigFileName = "config.cue"
	// LocalConfigFileName is looked up in the working directory.
	LocalConfigFileName = "cabar.config.cue"

	// EnvSearchPath holds extra search directories separated by os.PathListSeparator.
	EnvSearchPath = "CABAR_PATH"
	// EnvRequire holds extra top-level constraints separated by whitespace.
	EnvRequire = "CABAR_REQUIRE"
	// EnvSelect holds extra select constraints separated by whitespace.
	EnvSelect = "CABAR_SELECT"
)

var (
	//go:embed config_schema.cue
	configSchema []byte

	schema = cueutil.MustCompileSchema(configSchema, "#Config")

	// scalarEnv binds scalar settings to environment variables through viper.
	scalarEnv = map[string]string{
		"unresolved_ok": "CABAR_UNRESOLVED_OK",
		"env_overlay":   "CABAR_ENV_OVERLAY",
		"ui.verbose":    "CABAR_VERBOSE",
	}
)

// ConfigDir returns the cabar configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string
	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions returns the loaded configuration and the path it was read
// from, empty when only defaults apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("search_path", defaults.SearchPath)
	v.SetDefault("require", defaults.Require)
	v.SetDefault("select", defaults.Select)
	v.SetDefault("unresolved_ok", defaults.UnresolvedOK)
	v.SetDefault("env_overlay", defaults.EnvOverlay)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	for key, env := range scalarEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, "", fmt.Errorf("bind %s: %w", env, err)
		}
	}

	path, err := locate(opts)
	if err != nil {
		return nil, "", err
	}

	var raw map[string]any
	if path != "" {
		raw, err = loadCUEIntoViper(v, path)
		if err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the #Config schema").
				WithSuggestion("Run 'cabar config show' to see the effective configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	// viper lowercases map keys; component names are case sensitive.
	cfg.DefaultVersions = stringMap(raw["default_versions"])

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.SearchPath = append(cfg.SearchPath, filepath.SplitList(getenv(EnvSearchPath))...)
	cfg.Require = append(cfg.Require, strings.Fields(getenv(EnvRequire))...)
	cfg.Select = append(cfg.Select, strings.Fields(getenv(EnvSelect))...)

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check constraint syntax: [type:]name[/requirement][,key=value]").
			WithIssue(issue.MalformedConstraintId).
			Wrap(err).
			BuildError()
	}
	return &cfg, path, nil
}

// locate applies the lookup order. A missing --config file is an error; the
// other locations are optional.
func locate(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		cfgDir = dir
	}
	if path := filepath.Join(cfgDir, ConfigFileName); fileExists(path) {
		return path, nil
	}
	if path := filepath.Join(opts.WorkDir, LocalConfigFileName); fileExists(path) {
		return path, nil
	}
	return "", nil
}

// loadCUEIntoViper validates the file against #Config and merges it into v.
// Concrete values are not required since every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) (map[string]any, error) {
	result, err := cueutil.DecodeFile[map[string]any](schema, path, cueutil.WithConcrete(false))
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(*result.Value); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	return *result.Value, nil
}

func stringMap(value any) map[string]string {
	out := map[string]string{}
	m, ok := value.(map[string]any)
	if !ok {
		return out
	}
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to the config
// directory unless a file is already there. It returns the file path.
func CreateDefaultConfig() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName)
	if fileExists(cfgPath) {
		return cfgPath, nil
	}
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE renders cfg as a config file.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// cabar configuration\n\n")
	writeList(&sb, "search_path", cfg.SearchPath)
	writeList(&sb, "require", cfg.Require)
	writeList(&sb, "select", cfg.Select)

	if len(cfg.DefaultVersions) > 0 {
		names := make([]string, 0, len(cfg.DefaultVersions))
		for name := range cfg.DefaultVersions {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString("default_versions: {\n")
		for _, name := range names {
			fmt.Fprintf(&sb, "\t%q: %q\n", name, cfg.DefaultVersions[name])
		}
		sb.WriteString("}\n")
	}

	fmt.Fprintf(&sb, "unresolved_ok: %v\n", cfg.UnresolvedOK)
	fmt.Fprintf(&sb, "env_overlay: %v\n", cfg.EnvOverlay)

	sb.WriteString("\nui: {\n")
	if cfg.UI.ColorScheme != "" {
		fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	}
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeList(sb *strings.Builder, key string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(sb, "%s: []\n", key)
		return
	}
	fmt.Fprintf(sb, "%s: [\n", key)
	for _, value := range values {
		fmt.Fprintf(sb, "\t%q,\n", value)
	}
	sb.WriteString("]\n")
}
