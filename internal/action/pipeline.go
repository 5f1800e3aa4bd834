package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/rnwolfe/blight/internal/journal"
	"github.com/rnwolfe/blight/internal/tool"
)

// Pipeline fires a resolved action list around one invocation.
type Pipeline struct {
	Actions []Instance
	Journal *journal.Journal
	Log     *log.Logger
	Stderr  io.Writer

	// RunID pairs the before and after entries of one wrapper process.
	RunID string
}

// NewPipeline returns a pipeline with a fresh run ID.
func NewPipeline(actions []Instance, j *journal.Journal, logger *log.Logger) *Pipeline {
	return &Pipeline{
		Actions: actions,
		Journal: j,
		Log:     logger,
		Stderr:  os.Stderr,
		RunID:   uuid.NewString(),
	}
}

// Before fires every applicable BeforeRun hook in order. skip is true when
// any hook returned ErrSkipRun.
func (p *Pipeline) Before(inv *tool.Invocation) (skip bool, failed []*HookError) {
	for _, inst := range p.Actions {
		if !inst.Kinds.Has(inv.Kind()) {
			continue
		}
		err := p.fire(inst, inv, journal.PhaseBefore, func(ctx *Context) error {
			return inst.Action.BeforeRun(ctx)
		})
		if errors.Is(err, ErrSkipRun) {
			skip = true
			err = withoutSkip(err)
		}
		if he := p.report(inst, journal.PhaseBefore, err); he != nil {
			failed = append(failed, he)
		}
	}
	return skip, failed
}

// After fires every applicable AfterRun hook in the same order as Before.
func (p *Pipeline) After(inv *tool.Invocation, res Result) []*HookError {
	var failed []*HookError
	for _, inst := range p.Actions {
		if !inst.Kinds.Has(inv.Kind()) {
			continue
		}
		err := p.fire(inst, inv, journal.PhaseAfter, func(ctx *Context) error {
			return inst.Action.AfterRun(ctx, res)
		})
		if he := p.report(inst, journal.PhaseAfter, err); he != nil {
			failed = append(failed, he)
		}
	}
	return failed
}

// withoutSkip drops ErrSkipRun from err, keeping any failure joined to it.
func withoutSkip(err error) error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		if errors.Is(err, ErrSkipRun) {
			return nil
		}
		return err
	}
	var rest []error
	for _, e := range joined.Unwrap() {
		if !errors.Is(e, ErrSkipRun) {
			rest = append(rest, e)
		}
	}
	return errors.Join(rest...)
}

// fire runs one hook, recovering a panic into an error, and journals it.
func (p *Pipeline) fire(inst Instance, inv *tool.Invocation, phase journal.Phase, hook func(*Context) error) (err error) {
	ctx := &Context{
		Tool:    inv,
		RunID:   p.RunID,
		Log:     p.logger(),
		Stderr:  p.stderr(),
		action:  inst.Name,
		phase:   phase,
		journal: p.Journal,
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = hook(ctx)
	}()

	if !p.Journal.Enabled() {
		return err
	}
	entry := journal.Entry{
		RunID:    p.RunID,
		Action:   inst.Name,
		ToolKind: string(inv.Kind()),
		Phase:    phase,
	}
	if err != nil && !errors.Is(err, ErrSkipRun) {
		entry.Error = err.Error()
	}
	if ctx.payload != nil {
		raw, merr := json.Marshal(ctx.payload)
		if merr != nil {
			return errors.Join(err, fmt.Errorf("encoding journal payload: %w", merr))
		}
		entry.Payload = raw
	}
	if jerr := p.Journal.Record(entry); jerr != nil {
		return errors.Join(err, jerr)
	}
	return err
}

func (p *Pipeline) report(inst Instance, phase journal.Phase, err error) *HookError {
	if err == nil {
		return nil
	}
	he := &HookError{Action: inst.Name, Phase: phase, Err: err}
	p.logger().Warn().Str("action", inst.Name).Str("phase", string(phase)).Err(err).Msg("action hook failed")
	return he
}

func (p *Pipeline) logger() *log.Logger {
	if p.Log == nil {
		return &log.Logger{Level: log.ErrorLevel, Writer: &log.IOWriter{Writer: io.Discard}}
	}
	return p.Log
}

func (p *Pipeline) stderr() io.Writer {
	if p.Stderr == nil {
		return os.Stderr
	}
	return p.Stderr
}
