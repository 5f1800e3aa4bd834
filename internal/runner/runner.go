// Package runner is the wrapper process: it resolves the real tool, fires
// the configured actions around it, and exits with the tool's status.
package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"

	"github.com/rnwolfe/blight/internal/action"
	"github.com/rnwolfe/blight/internal/config"
	"github.com/rnwolfe/blight/internal/errs"
	"github.com/rnwolfe/blight/internal/journal"
	"github.com/rnwolfe/blight/internal/logging"
	"github.com/rnwolfe/blight/internal/swizzle"
	"github.com/rnwolfe/blight/internal/tool"
)

// Runner runs one wrapped tool invocation.
type Runner struct {
	Config   *config.Config
	Registry *action.Registry

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    *log.Logger
}

// New returns a Runner on the process's standard streams.
func New(cfg *config.Config, reg *action.Registry, logger *log.Logger) *Runner {
	return &Runner{
		Config:   cfg,
		Registry: reg,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Log:      logger,
	}
}

// Run executes the invocation and returns the exit code the wrapper should
// exit with: the real tool's code, 128+N when it died from signal N, or one
// of the errs exit codes when setup failed and nothing was run.
func (r *Runner) Run(ctx context.Context, kind tool.Kind, args []string) int {
	logger := r.logger()

	path, err := Resolve(r.Config, kind)
	if err != nil {
		logger.Error().Str("kind", string(kind)).Err(err).Msg("no real tool to run")
		return errs.ExitCode(err)
	}

	instances, err := r.Registry.Resolve(r.Config.Actions(), r.Config.ActionSettings)
	if err != nil {
		logger.Error().Err(err).Msg("invalid action configuration")
		return errs.ExitCode(err)
	}

	inv, err := tool.New(kind, path, args)
	if err != nil {
		logger.Error().Err(err).Msg("invalid invocation")
		return errs.ExitCode(err)
	}

	p := action.NewPipeline(instances, journal.Open(r.Config.JournalPath()), logger)
	p.Stderr = r.Stderr

	skip, _ := p.Before(inv)
	inv.Freeze()

	res := action.Result{Skipped: skip}
	if skip {
		logger.Debug().Str("tool", inv.Path()).Msg("real tool skipped by an action")
	} else {
		start := time.Now()
		res.ExitCode = r.execute(ctx, inv)
		res.Elapsed = time.Since(start)
	}

	p.After(inv, res)
	return res.ExitCode
}

// execute runs the real tool with inherited streams and the swizzle
// directories removed from its PATH.
func (r *Runner) execute(ctx context.Context, inv *tool.Invocation) int {
	cmd := exec.CommandContext(ctx, inv.Path(), inv.Args()...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = swizzle.UnswizzleEnviron(r.Config.Environ())

	// SIGINT reaches the child through the process group. SIGTERM does not,
	// so it is forwarded. Either way the wrapper stays up for the after hooks.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if err := cmd.Start(); err != nil {
		r.logger().Error().Str("tool", inv.Path()).Err(err).Msg("starting real tool")
		return errs.ExitResolution
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigs:
				if sig == syscall.SIGTERM {
					cmd.Process.Signal(sig) //nolint:errcheck
				}
			case <-done:
				return
			}
		}
	}()
	err := cmd.Wait()
	close(done)
	return ExitStatus(err)
}

// ExitStatus maps the error of a finished command to a shell-style exit
// status.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return 1
	}
	if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ee.ExitCode()
}

func (r *Runner) logger() *log.Logger {
	if r.Log == nil {
		return logging.Nop()
	}
	return r.Log
}
