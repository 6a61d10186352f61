// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"cabar-cli/internal/config"
)

// newConfigCommand creates the `cabar config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cabar configuration",
		Long: `Manage cabar configuration.

Configuration is read from the first of:
  - the file given with --config
  - Linux: ~/.config/cabar/config.cue
    macOS: ~/Library/Application Support/cabar/config.cue
    Windows: %APPDATA%\cabar\config.cue
  - ./cabar.config.cue

CABAR_PATH, CABAR_REQUIRE and CABAR_SELECT extend the configured lists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := showConfig(cmd.Context(), app, flags); err != nil {
				return app.fail(cmd, flags.verbose, err)
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return app.fail(cmd, flags.verbose, fmt.Errorf("failed to create config: %w", err))
			}
			fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return app.fail(cmd, flags.verbose, err)
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), app.loadOptions(flags))
			if err != nil {
				return app.fail(cmd, flags.verbose, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, flags *rootFlags) error {
	opts := app.loadOptions(flags)

	var (
		cfg    *config.Config
		source string
	)
	if sp, ok := app.Config.(config.SourceProvider); ok {
		loaded, err := sp.LoadWithSource(ctx, opts)
		if err != nil {
			return err
		}
		cfg, source = loaded.Config, loaded.Path
	} else {
		var err error
		if cfg, err = app.Config.Load(ctx, opts); err != nil {
			return err
		}
	}

	w := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if source != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	writeConfigList(w, "search_path", cfg.SearchPath)
	writeConfigList(w, "require", cfg.Require)
	writeConfigList(w, "select", cfg.Select)

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("default_versions"))
	if len(cfg.DefaultVersions) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.DefaultVersions)) {
		fmt.Fprintf(w, "  %s: %s\n", name, valueStyle.Render(cfg.DefaultVersions[name]))
	}

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("unresolved_ok"), valueStyle.Render(fmt.Sprintf("%v", cfg.UnresolvedOK)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("env_overlay"), valueStyle.Render(fmt.Sprintf("%v", cfg.EnvOverlay)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	return nil
}

func writeConfigList(w io.Writer, key string, values []string) {
	fmt.Fprintf(w, "%s:\n", CmdStyle.Render(key))
	if len(values) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
		return
	}
	for _, v := range values {
		fmt.Fprintf(w, "  - %s\n", SuccessStyle.Render(v))
	}
}
