package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/blight/internal/config"
	"github.com/rnwolfe/blight/internal/runner"
	"github.com/rnwolfe/blight/internal/swizzle"
)

func newExecCmd() *cobra.Command {
	var flags launchFlags
	cmd := &cobra.Command{
		Use:   "exec [flags] TARGET [ARGS...]",
		Short: "Run a build command under the blight environment",
		Long: `Run TARGET with the environment blight env would print, wait for it, and
exit with its status. The swizzle directory is removed afterwards.

  blight exec --guess-wrapped --swizzle-path --action Record -- make -j8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := launcherLogger()
			env, base, err := flags.build(logger, nil)
			if err != nil {
				return err
			}
			defer func() {
				if err := env.Cleanup(); err != nil {
					logger.Warn().Err(err).Msg("cleaning up")
				}
			}()

			environ := env.Apply(base)
			target, err := swizzle.LookPath(args[0], config.FromEnviron(environ).Getenv("PATH"))
			if err != nil {
				return fmt.Errorf("finding %s: %w", args[0], err)
			}

			code, err := runTarget(target, args, environ)
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitStatus{code: code}
			}
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	flags.register(cmd.Flags())
	return cmd
}

// runTarget runs the build command with inherited streams, forwarding
// SIGINT and SIGTERM to it, and returns its exit status.
func runTarget(path string, args, environ []string) (int, error) {
	c := &exec.Cmd{
		Path:   path,
		Args:   args,
		Env:    environ,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if err := c.Start(); err != nil {
		return 0, fmt.Errorf("starting %s: %w", path, err)
	}
	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigs:
				c.Process.Signal(sig) //nolint:errcheck
			case <-done:
				return
			}
		}
	}()
	err := c.Wait()
	close(done)
	return runner.ExitStatus(err), nil
}
