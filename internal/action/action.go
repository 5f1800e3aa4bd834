// Package action runs configured actions around one real tool invocation.
//
// Every wrapper process resolves its action list once, then fires each
// action's BeforeRun hook in list order, runs the real tool, and fires each
// AfterRun hook in the same order. Actions that do not apply to the
// invocation's tool kind are skipped. A failing or panicking hook is reported
// and never stops the remaining hooks or the real tool.
package action

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/phuslu/log"

	"github.com/rnwolfe/blight/internal/journal"
	"github.com/rnwolfe/blight/internal/tool"
)

// ErrSkipRun is returned by a BeforeRun hook to ask the runner not to execute
// the real tool. After hooks still fire, with Result.Skipped set.
var ErrSkipRun = errors.New("skip the real tool")

// Action is the hook protocol every action implements.
type Action interface {
	BeforeRun(ctx *Context) error
	AfterRun(ctx *Context, res Result) error
}

// Base provides no-op hooks for embedding.
type Base struct{}

func (Base) BeforeRun(*Context) error        { return nil }
func (Base) AfterRun(*Context, Result) error { return nil }

// Result is what an after hook learns about the real tool's run.
type Result struct {
	ExitCode int
	Skipped  bool
	Elapsed  time.Duration
}

// Context is handed to one hook call.
type Context struct {
	Tool   *tool.Invocation
	RunID  string
	Log    *log.Logger
	Stderr io.Writer

	action  string
	phase   journal.Phase
	journal *journal.Journal
	payload any
}

// Action returns the name of the action being called.
func (c *Context) Action() string { return c.action }

// Phase returns the hook phase being run.
func (c *Context) Phase() journal.Phase { return c.phase }

// Journaling reports whether a shared journal is configured for this run.
func (c *Context) Journaling() bool { return c.journal.Enabled() }

// SetResult attaches v as the payload of the journal entry written for this
// hook call. It is a no-op when journaling is off.
func (c *Context) SetResult(v any) { c.payload = v }

// HookError reports a failed hook. It never changes the build outcome.
type HookError struct {
	Action string
	Phase  journal.Phase
	Err    error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("action %q (%s): %v", e.Action, e.Phase, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }
