package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/blight/internal/action"
	"github.com/rnwolfe/blight/internal/actions"
	"github.com/rnwolfe/blight/internal/ui"
)

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the bundled actions and their settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			ui.Header(out, "Actions")
			for _, spec := range actions.Registry().Specs() {
				ui.Kv(out, spec.Name, fmt.Sprintf("[%s] %s", spec.Kinds, spec.Doc))
				for _, k := range spec.Keys {
					req := ""
					if k.Required {
						req = " (required)"
					}
					fmt.Fprintf(out, "      %s=%s%s\n", k.Name, k.Doc, req)
				}
				if len(spec.Keys) > 0 {
					fmt.Fprintf(out, "      set via %s\n", action.EnvVar(spec.Name))
				}
			}
			return nil
		},
	}
}
