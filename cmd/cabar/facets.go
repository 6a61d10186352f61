// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cabar-cli/pkg/resolver"
)

func newFacetsCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "facets [constraint...]",
		Short: "List the composed facets and the components contributing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, m, err := app.compose(cmd.Context(), flags, args)
			if err != nil {
				return app.fail(cmd, s.isVerbose(flags), err)
			}
			writeFacets(app.stdout, m)
			return nil
		},
	}
}

func writeFacets(w io.Writer, m *resolver.FacetMap) {
	for _, f := range m.Facets() {
		fmt.Fprintf(w, "%s = %s\n", TitleStyle.Render(f.CompositionKey()), f.RenderValue())
		fmt.Fprintf(w, "  %s\n", VerboseStyle.Render("from "+f.Source()))
	}
}
