// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the cabar command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "cabar",
		Short: "Resolve component dependencies and compose their environment",
		Long: TitleStyle.Render("cabar") + SubtitleStyle.Render(" - component backplane resolver") + `

cabar discovers versioned components on a search path, resolves the
constraints you require against them and composes the environment the
selected components contribute.

Each component lives in <name>/<version>/ and describes itself in a
cabar.cue manifest.

` + SubtitleStyle.Render("Examples:") + `
  cabar list                          List available components
  cabar resolve 'ruby/~> 1.9'         Resolve ruby 1.9.x and its requirements
  eval "$(cabar env ruby)"            Load the composed environment
  cabar show --format toml ruby       Describe the resolution as TOML
  cabar config show                   Show current configuration`,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/cabar/config.cue)")
	pf.StringArrayVarP(&flags.paths, "path", "p", nil, "directory to search for components (repeatable, searched before the configured path)")
	pf.BoolVar(&flags.unresolvedOK, "unresolved-ok", false, "report unresolved constraints instead of failing")
	pf.BoolVar(&flags.noEnv, "no-env", false, "ignore the current environment when composing variables")

	rootCmd.AddCommand(
		newResolveCommand(app, flags),
		newEnvCommand(app, flags),
		newListCommand(app, flags),
		newShowCommand(app, flags),
		newFacetsCommand(app, flags),
		newActionsCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the cabar command tree. It is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(ExitFailure))
	}
}
