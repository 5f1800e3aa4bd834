package actions

import (
	"time"

	"github.com/rnwolfe/blight/internal/action"
	"github.com/rnwolfe/blight/internal/journal"
	"github.com/rnwolfe/blight/internal/tool"
)

// record is one line written by Record.
type record struct {
	RunID      string        `json:"run_id"`
	Phase      journal.Phase `json:"phase"`
	Tool       tool.Snapshot `json:"tool"`
	ExitCode   *int          `json:"exit_code,omitempty"`
	RunSkipped bool          `json:"run_skipped"`
}

type recordAction struct {
	output string
}

func newRecord(cfg action.Config) (action.Action, error) {
	return &recordAction{output: cfg.Get("output")}, nil
}

func (r *recordAction) BeforeRun(ctx *action.Context) error {
	rec := record{RunID: ctx.RunID, Phase: journal.PhaseBefore, Tool: ctx.Tool.Snapshot()}
	ctx.SetResult(rec.Tool)
	return journal.AppendJSON(r.output, rec)
}

func (r *recordAction) AfterRun(ctx *action.Context, res action.Result) error {
	code := res.ExitCode
	rec := record{
		RunID:      ctx.RunID,
		Phase:      journal.PhaseAfter,
		Tool:       ctx.Tool.Snapshot(),
		ExitCode:   &code,
		RunSkipped: res.Skipped,
	}
	ctx.SetResult(rec.Tool)
	return journal.AppendJSON(r.output, rec)
}

type benchmark struct {
	output string
	start  time.Time
}

func newBenchmark(cfg action.Config) (action.Action, error) {
	return &benchmark{output: cfg.Get("output")}, nil
}

func (b *benchmark) BeforeRun(*action.Context) error {
	b.start = time.Now()
	return nil
}

func (b *benchmark) AfterRun(ctx *action.Context, res action.Result) error {
	elapsed := time.Since(b.start).Microseconds()
	rec := struct {
		RunID      string        `json:"run_id"`
		Tool       tool.Snapshot `json:"tool"`
		Elapsed    int64         `json:"elapsed"`
		RunSkipped bool          `json:"run_skipped"`
	}{ctx.RunID, ctx.Tool.Snapshot(), elapsed, res.Skipped}
	ctx.SetResult(map[string]int64{"elapsed": elapsed})
	return journal.AppendJSON(b.output, rec)
}
