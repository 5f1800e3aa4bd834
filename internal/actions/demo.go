package actions

import (
	"fmt"

	"github.com/rnwolfe/blight/internal/action"
)

type demo struct{}

func (demo) BeforeRun(ctx *action.Context) error {
	_, err := fmt.Fprintf(ctx.Stderr, "[demo] before-run: %s\n", ctx.Tool.Path())
	return err
}

func (demo) AfterRun(ctx *action.Context, _ action.Result) error {
	_, err := fmt.Fprintf(ctx.Stderr, "[demo] after-run: %s\n", ctx.Tool.Path())
	return err
}
