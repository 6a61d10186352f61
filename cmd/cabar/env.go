// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"cabar-cli/internal/render"
)

func newEnvCommand(app *App, flags *rootFlags) *cobra.Command {
	var format string

	envCmd := &cobra.Command{
		Use:   "env [constraint...]",
		Short: "Print the environment composed by the required components",
		Long: `Resolve the constraints and print one assignment per composed
environment variable. Path lists are joined with the platform list
separator; values are quoted for bash.

Unless --no-env is given, PRE_<VAR> values are placed in front of each
composed path list and the current value of <VAR> is kept after it.`,
		Example: `  eval "$(cabar env ruby)"
  cabar env --format dotenv ruby > .env`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, m, err := app.compose(cmd.Context(), flags, args)
			if err != nil {
				return app.fail(cmd, s.isVerbose(flags), err)
			}
			if err := render.Env(app.stdout, m, render.EnvOptions{Format: render.EnvFormat(format)}); err != nil {
				return app.fail(cmd, s.isVerbose(flags), err)
			}
			return nil
		},
	}

	envCmd.Flags().StringVarP(&format, "format", "f", string(render.EnvFormatShell), "output format: sh or dotenv")
	return envCmd
}
