package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rnwolfe/blight/internal/swizzle"
	"github.com/rnwolfe/blight/internal/ui"
)

func newEnvCmd() *cobra.Command {
	var (
		flags launchFlags
		shell string
		unset bool
	)
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print shell lines that route the build tools through blight",
		Long: `Print export lines for CC, CXX and friends, and optionally a swizzled PATH.
Evaluate the output in your shell:

  eval "$(blight env --guess-wrapped --swizzle-path)"

With --swizzle-path the shim directory is left in place; remove it with
eval "$(blight env --unset)" once the build is done.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sh, err := swizzle.ParseShell(shell)
			if err != nil {
				return err
			}
			logger := launcherLogger()

			var adjust func(*swizzle.Request)
			if unset {
				adjust = func(r *swizzle.Request) {
					r.Swizzle, r.Shims, r.Stubs = false, nil, nil
				}
			}
			env, _, err := flags.build(logger, adjust)
			if err != nil {
				return err
			}

			lines := env.ExportLines(sh)
			if unset {
				if p := os.Getenv("PATH"); swizzle.UnswizzledPath(p) != p {
					for _, dir := range splitSwizzleDirs(p) {
						logger.Info().Str("dir", dir).Msg("removing swizzle directory")
						if err := os.RemoveAll(dir); err != nil {
							ui.Warn(fmt.Sprintf("could not remove %s: %v", dir, err))
						}
					}
					env.Path = p
				}
				lines = env.UnsetLines(sh)
			}

			out := cmd.OutOrStdout()
			for _, l := range lines {
				fmt.Fprintln(out, l)
			}
			if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				ui.Tip(fmt.Sprintf("these lines only print; apply them with eval \"$(blight %s)\"", joinArgs(os.Args[1:])))
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&shell, "shell", "posix", "Output syntax: posix or fish")
	cmd.Flags().BoolVar(&unset, "unset", false, "Print lines that undo a previous blight env")
	return cmd
}

func splitSwizzleDirs(path string) []string {
	var out []string
	for _, dir := range filepath.SplitList(path) {
		if swizzle.IsSwizzleDir(dir) {
			out = append(out, dir)
		}
	}
	return out
}
