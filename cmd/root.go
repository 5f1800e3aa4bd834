package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/blight/internal/actions"
	"github.com/rnwolfe/blight/internal/config"
	"github.com/rnwolfe/blight/internal/errs"
	"github.com/rnwolfe/blight/internal/logging"
	"github.com/rnwolfe/blight/internal/runner"
	"github.com/rnwolfe/blight/internal/tool"
	"github.com/rnwolfe/blight/internal/ui"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "blight",
		Short: "Instrument native builds without touching the build system",
		Long: `blight points CC, CXX, LD and friends at thin wrappers that run
configured actions before and after the real tool.

  eval "$(blight env --guess-wrapped --swizzle-path)"
  blight exec --guess-wrapped --action Record -- make`,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEnvCmd())
	root.AddCommand(newExecCmd())
	root.AddCommand(newActionsCmd())
	root.AddCommand(newJournalCmd())
	root.AddCommand(newLinkCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// exitStatus carries a child's exit code out of a command without printing
// anything.
type exitStatus struct{ code int }

func (e *exitStatus) Error() string { return "exit status" }

func Execute() {
	os.Exit(Main(os.Args))
}

// Main runs blight for argv and returns the process exit code. Invoked
// through a blight-<tool> name, it is the wrapper for that tool and parses
// no flags of its own.
func Main(argv []string) int {
	return run(argv, os.Stdout)
}

func run(argv []string, stdout io.Writer) int {
	if kind, ok := tool.KindForWrapper(filepath.Base(argv[0])); ok {
		return runWrapper(kind, argv[1:])
	}

	root := newRootCmd()
	root.SetArgs(argv[1:])
	root.SetOut(stdout)
	err := root.Execute()
	if err == nil {
		return 0
	}
	var st *exitStatus
	if errors.As(err, &st) {
		return st.code
	}
	ui.Err(err.Error())
	return errs.ExitCode(err)
}

func runWrapper(kind tool.Kind, args []string) int {
	cfg := config.FromProcess()
	logger := logging.New(cfg.LogLevel(), os.Stderr)
	return runner.New(cfg, actions.Registry(), logger).Run(context.Background(), kind, args)
}
